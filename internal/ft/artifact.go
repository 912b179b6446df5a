package ft

import (
	"fmt"
	"strings"
)

// Kind classifies an artifact for routing purposes.
type Kind int

const (
	// KindDocument is anything that is not a recognized drawing.
	KindDocument Kind = iota
	// KindDrawing is a file whose name parses under the drawing
	// naming convention for its job.
	KindDrawing
	// KindGeneratedPDF is a PDF rendered from an email body rather
	// than received as an attachment.
	KindGeneratedPDF
)

func (k Kind) String() string {
	switch k {
	case KindDrawing:
		return "drawing"
	case KindGeneratedPDF:
		return "generated-pdf"
	default:
		return "document"
	}
}

// Direction is the flow of an item relative to the practice.
type Direction int

const (
	DirectionUnknown Direction = iota
	DirectionIn
	DirectionOut
)

func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// ParseDirection converts user input like "in" or "OUT" to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "IN":
		return DirectionIn, nil
	case "OUT":
		return DirectionOut, nil
	case "":
		return DirectionUnknown, nil
	default:
		return DirectionUnknown, fmt.Errorf("unknown direction %q, want IN or OUT", s)
	}
}

// Confidence describes how a job number was obtained.
type Confidence int

const (
	// ConfidenceNone means no identifier was found.
	ConfidenceNone Confidence = iota
	// ConfidenceMapped means the identifier came through the custom
	// reference mapping.
	ConfidenceMapped
	// ConfidencePattern means the identifier matched the job number
	// pattern directly.
	ConfidencePattern
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceMapped:
		return "mapped"
	case ConfidencePattern:
		return "pattern"
	default:
		return "none"
	}
}

// Artifact is a single item being filed: a loose file, an email
// attachment, or a PDF generated from an email body.
type Artifact struct {
	// Source is the artifact's current location on disk. Nil for
	// artifacts that exist only in memory, such as attachments not
	// yet written anywhere or generated PDFs.
	Source *Path

	// Name is the filename the artifact should be filed under.
	Name string

	// Size in bytes.
	Size int64

	// Data holds the content for in-memory artifacts. Nil when
	// Source is set; the executor reads from disk in that case.
	Data []byte

	Kind          Kind
	Direction     Direction
	Job           string
	JobConfidence Confidence
}
