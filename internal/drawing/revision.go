package drawing

import "fmt"

// Layout is the revision marking scheme a drawing filename uses. The
// values are ordered oldest scheme first: any stage-marked revision is
// newer than any numeric one, which is newer than any lettered one.
type Layout int

const (
	LayoutLettered Layout = iota
	LayoutNumeric
	LayoutStaged
)

// Revision is the revision marker parsed from a drawing filename.
// Exactly one of Letter, Number or Stage+Number is meaningful,
// depending on Layout. A lettered revision with an empty Letter is the
// unrevised original and sorts below RevA.
type Revision struct {
	Layout Layout
	Stage  string
	Number int
	Letter string
}

func (r Revision) String() string {
	switch r.Layout {
	case LayoutStaged:
		return fmt.Sprintf("%s%02d", r.Stage, r.Number)
	case LayoutNumeric:
		return fmt.Sprintf("Rev%d", r.Number)
	default:
		if r.Letter == "" {
			return "unrevised"
		}
		return "Rev" + r.Letter
	}
}

// CompareRevisions orders two revision markers: -1 when a is older than
// b, 0 when they are the same marker, 1 when a is newer. Markers from
// different layouts order by layout. Within the staged layout the stage
// orders first (by its position in stageOrder), then the number; a
// stage missing from stageOrder sorts after every known stage.
func CompareRevisions(a, b Revision, stageOrder []string) int {
	if a.Layout != b.Layout {
		return compareInt(int(a.Layout), int(b.Layout))
	}
	switch a.Layout {
	case LayoutStaged:
		if c := compareInt(stageIndex(stageOrder, a.Stage), stageIndex(stageOrder, b.Stage)); c != 0 {
			return c
		}
		return compareInt(a.Number, b.Number)
	case LayoutNumeric:
		return compareInt(a.Number, b.Number)
	default:
		return compareLetters(a.Letter, b.Letter)
	}
}

// compareLetters orders lettered revisions: shorter before longer, then
// alphabetical. The empty string (unrevised) is oldest; Z sorts before
// AA.
func compareLetters(a, b string) int {
	if len(a) != len(b) {
		return compareInt(len(a), len(b))
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func stageIndex(order []string, stage string) int {
	for i, s := range order {
		if s == stage {
			return i
		}
	}
	return len(order)
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
