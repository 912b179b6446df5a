package ft

import (
	"strings"

	"ft-go/internal/drawing"
	"ft-go/internal/email"
)

// Classifier decides what an artifact is and which way an email
// flowed.
type Classifier struct {
	conv *drawing.Convention
	own  []string
}

// NewClassifier builds a Classifier. ownAddresses are the practice's
// addresses or domain suffixes, matched case-insensitively as
// substrings.
func NewClassifier(conv *drawing.Convention, ownAddresses []string) *Classifier {
	own := make([]string, 0, len(ownAddresses))
	for _, a := range ownAddresses {
		if a = strings.ToLower(strings.TrimSpace(a)); a != "" {
			own = append(own, a)
		}
	}
	return &Classifier{conv: conv, own: own}
}

// Kind reports whether a filename is a drawing under the naming
// convention for the given job.
func (c *Classifier) Kind(name, job string) Kind {
	if _, ok := c.conv.Parse(name, job); ok {
		return KindDrawing
	}
	return KindDocument
}

// IsOwnAddress reports whether addr belongs to the practice.
func (c *Classifier) IsOwnAddress(addr string) bool {
	addr = strings.ToLower(addr)
	for _, own := range c.own {
		if strings.Contains(addr, own) {
			return true
		}
	}
	return false
}

// Direction infers an email's direction from its addresses. A message
// from the practice to others is outgoing; a message from others to
// the practice is incoming. Anything else, including practice-internal
// mail, stays unknown and must be resolved by the caller.
func (c *Classifier) Direction(msg *email.Message) Direction {
	fromOwn := false
	for _, a := range msg.From {
		if c.IsOwnAddress(a.Addr) {
			fromOwn = true
			break
		}
	}
	toOwn := false
	for _, a := range append(append([]email.Address(nil), msg.To...), msg.Cc...) {
		if c.IsOwnAddress(a.Addr) {
			toOwn = true
			break
		}
	}

	switch {
	case fromOwn && !toOwn:
		return DirectionOut
	case toOwn && !fromOwn:
		return DirectionIn
	default:
		return DirectionUnknown
	}
}
