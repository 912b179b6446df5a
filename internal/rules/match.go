package rules

import (
	"regexp"
	"sort"
	"strings"
)

// fuzzyThreshold is the minimum similarity ratio a fuzzy word match
// must reach to count.
const fuzzyThreshold = 0.85

// Match is one rule suggestion for a piece of text, with the keyword
// that triggered it.
type Match struct {
	Rule    Rule
	Score   float64
	Keyword string
}

var wordRe = regexp.MustCompile(`[\w-]+`)

// Match scores text against every rule and returns the suggestions
// sorted by score, best first. Only the text is consulted, never file
// contents. Keywords alone trigger a match; a descriptor raises the
// score of an existing match but never creates one.
func (s *Set) Match(text string) []Match {
	name := strings.ToLower(text)
	if i := strings.LastIndex(name, "."); i > 0 {
		name = name[:i]
	}

	words := make(map[string]bool)
	for _, w := range wordRe.FindAllString(name, -1) {
		if len(w) >= 3 {
			words[w] = true
		}
	}

	var matches []Match
	for _, rule := range s.rules {
		best := 0.0
		matched := ""

		for _, kw := range rule.Keywords {
			score := scoreKeyword(kw, name, words)
			if score > best {
				best = score
				matched = kw
			}
		}

		if best == 0 {
			continue
		}
		for _, d := range rule.Descriptors {
			if strings.Contains(name, d) || words[d] {
				best += 0.05
				if best > 1.0 {
					best = 1.0
				}
				break
			}
		}
		matches = append(matches, Match{Rule: rule, Score: best, Keyword: matched})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches
}

// scoreKeyword scores one keyword against the text, from the strongest
// form of match down to fuzzy word similarity.
func scoreKeyword(kw, name string, words map[string]bool) float64 {
	// The keyword appears verbatim.
	if strings.Contains(name, kw) {
		return 1.0
	}

	kwWords := strings.Fields(kw)
	if len(kwWords) > 1 {
		all := true
		for _, w := range kwWords {
			if !words[w] {
				all = false
				break
			}
		}
		if all {
			return 0.95
		}
		// Acronym, three letters or more so short fragments cannot
		// masquerade as one.
		if acr := acronym(kwWords); len(acr) >= 3 && words[acr] {
			return 0.95
		}
	}

	if words[kw] {
		return 0.9
	}

	// The keyword with separators removed, against each word likewise.
	squashed := squash(kw)
	if len(squashed) >= 3 {
		if words[squashed] {
			return 0.95
		}
		for w := range words {
			if squash(w) == squashed {
				return 0.95
			}
		}
	}

	best := 0.0
	if len(kw) >= 5 {
		for w := range words {
			if len(w) < 5 || abs(len(w)-len(kw)) > 3 {
				continue
			}
			if r := similarity(kw, w); r >= fuzzyThreshold && r > best {
				best = r
			}
		}
	}
	return best
}

func acronym(words []string) string {
	var b strings.Builder
	for _, w := range words {
		b.WriteByte(w[0])
	}
	return b.String()
}

func squash(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_':
			return -1
		}
		return r
	}, s)
}

// similarity is the Ratcliff-Obershelp ratio between two strings: twice
// the number of matching characters over the combined length.
func similarity(a, b string) float64 {
	ar, br := []rune(a), []rune(b)
	total := len(ar) + len(br)
	if total == 0 {
		return 1.0
	}
	return 2 * float64(matching(ar, br)) / float64(total)
}

// matching counts characters in common: the longest common block, plus
// the blocks recursively found on either side of it.
func matching(a, b []rune) int {
	ai, bi, size := longestBlock(a, b)
	if size == 0 {
		return 0
	}
	return size + matching(a[:ai], b[:bi]) + matching(a[ai+size:], b[bi+size:])
}

func longestBlock(a, b []rune) (ai, bi, size int) {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] != b[j-1] {
				cur[j] = 0
				continue
			}
			cur[j] = prev[j-1] + 1
			if cur[j] > size {
				size = cur[j]
				ai = i - size
				bi = j - size
			}
		}
		prev, cur = cur, prev
		for j := range cur {
			cur[j] = 0
		}
	}
	return ai, bi, size
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
