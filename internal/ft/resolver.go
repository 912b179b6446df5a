package ft

import (
	"fmt"
	"regexp"
	"strings"

	"ft-go/internal/project"
)

// Resolution is the outcome of one identifier lookup. A zero
// Resolution means nothing was found; resolution failures are not
// errors, the caller decides whether to ask the user.
type Resolution struct {
	Job        string
	Confidence Confidence
}

var subjectPrefixRe = regexp.MustCompile(`(?i)^(?:(?:re|fw|fwd)\s*:\s*)+`)

// Resolver extracts job numbers from filenames, subject lines and
// explicit references, using the job number pattern and the custom
// reference mapping.
type Resolver struct {
	index         *project.Index
	mapping       *project.Mapping
	prefixRe      *regexp.Regexp
	anchoredRe    *regexp.Regexp
	anywhereRe    *regexp.Regexp
	preferMapping bool
}

// NewResolver builds a Resolver. jobPattern is the unanchored job
// number pattern; preferMapping resolves ties between a mapped
// reference and a pattern hit in the mapping's favor.
func NewResolver(index *project.Index, mapping *project.Mapping, jobPattern string, preferMapping bool) (*Resolver, error) {
	if jobPattern == "" {
		jobPattern = project.DefaultJobPattern
	}
	prefixRe, err := regexp.Compile(`^(` + jobPattern + `)(?:[\s_.\-–]|$)`)
	if err != nil {
		return nil, fmt.Errorf("compiling job pattern: %w", err)
	}
	anchoredRe, err := regexp.Compile(`^(` + jobPattern + `)\s*[-–]?\s*`)
	if err != nil {
		return nil, fmt.Errorf("compiling job pattern: %w", err)
	}
	anywhereRe, err := regexp.Compile(`\b(` + jobPattern + `)\b`)
	if err != nil {
		return nil, fmt.Errorf("compiling job pattern: %w", err)
	}
	return &Resolver{
		index:         index,
		mapping:       mapping,
		prefixRe:      prefixRe,
		anchoredRe:    anchoredRe,
		anywhereRe:    anywhereRe,
		preferMapping: preferMapping,
	}, nil
}

// FromReference resolves an explicitly supplied reference: either a
// bare job number or a custom reference from the mapping.
func (r *Resolver) FromReference(ref string) Resolution {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Resolution{}
	}
	if r.index.IsJobToken(ref) {
		return Resolution{Job: ref, Confidence: ConfidencePattern}
	}
	if r.mapping != nil {
		if job, ok := r.mapping.Lookup(ref); ok {
			return Resolution{Job: job, Confidence: ConfidenceMapped}
		}
	}
	return Resolution{}
}

// FromFilename resolves a job number from a filename. A pattern match
// must lead the name and stop at a separator; a mapped reference must
// lead the name. Pattern hits are not required to name a known
// project, that check happens during planning.
func (r *Resolver) FromFilename(name string) Resolution {
	pattern := r.filenamePattern(name)
	mapped := r.filenameMapped(name)
	return r.pick(pattern, mapped)
}

// FromSubject resolves a job number from an email subject line.
// Reply and forward prefixes are stripped first. Pattern hits must
// name a known project; a bare number in prose is too weak a signal
// otherwise.
func (r *Resolver) FromSubject(subject string) Resolution {
	subject = strings.TrimSpace(subjectPrefixRe.ReplaceAllString(strings.TrimSpace(subject), ""))
	if subject == "" {
		return Resolution{}
	}
	pattern := r.subjectPattern(subject)
	mapped := r.subjectMapped(subject)
	return r.pick(pattern, mapped)
}

func (r *Resolver) filenamePattern(name string) Resolution {
	m := r.prefixRe.FindStringSubmatch(name)
	if m == nil {
		return Resolution{}
	}
	return Resolution{Job: m[1], Confidence: ConfidencePattern}
}

func (r *Resolver) filenameMapped(name string) Resolution {
	if r.mapping == nil {
		return Resolution{}
	}
	job, ok := r.mapping.MatchPrefix(name)
	if !ok {
		return Resolution{}
	}
	return Resolution{Job: job, Confidence: ConfidenceMapped}
}

func (r *Resolver) subjectPattern(subject string) Resolution {
	if m := r.anchoredRe.FindStringSubmatch(subject); m != nil && r.index.Has(m[1]) {
		return Resolution{Job: m[1], Confidence: ConfidencePattern}
	}
	for _, m := range r.anywhereRe.FindAllStringSubmatch(subject, -1) {
		if r.index.Has(m[1]) {
			return Resolution{Job: m[1], Confidence: ConfidencePattern}
		}
	}
	return Resolution{}
}

func (r *Resolver) subjectMapped(subject string) Resolution {
	if r.mapping == nil {
		return Resolution{}
	}
	job, ok := r.mapping.FindInText(subject)
	if !ok {
		return Resolution{}
	}
	return Resolution{Job: job, Confidence: ConfidenceMapped}
}

// pick applies the precedence policy when both sources produced a hit.
func (r *Resolver) pick(pattern, mapped Resolution) Resolution {
	if r.preferMapping {
		if mapped.Job != "" {
			return mapped
		}
		return pattern
	}
	if pattern.Job != "" {
		return pattern
	}
	return mapped
}
