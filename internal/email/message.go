// Package email parses .eml files into the fields the filing pipeline
// consumes: addresses, subject, body text, attachments and embedded
// images.
package email

import (
	"regexp"
	"sort"
	"strings"
	"time"
)

// Address is one mailbox from an address header.
type Address struct {
	Name string
	Addr string
}

// Attachment is a decoded message part carrying a payload. Embedded
// inline images use the same shape; ContentID is set when the part was
// referenced from the HTML body.
type Attachment struct {
	Filename    string
	ContentType string
	ContentID   string
	Data        []byte
}

func (a Attachment) Size() int64 {
	return int64(len(a.Data))
}

// Message is a parsed email.
type Message struct {
	MessageID   string
	Subject     string
	Date        time.Time
	From        []Address
	To          []Address
	Cc          []Address
	Body        string
	HTMLBody    string
	Attachments []Attachment
	Embedded    []Attachment
}

// signOffPatterns are checked longest first so "kind regards" is not
// reported as "regards".
var signOffPatterns = []string{
	"kind regards",
	"yours sincerely",
	"yours faithfully",
	"best wishes",
	"best regards",
	"warm regards",
	"with thanks",
	"many thanks",
	"cheers",
	"regards",
	"thanks",
}

// TrimmedSubject strips reply and forward prefixes, however deeply
// nested.
func (m *Message) TrimmedSubject() string {
	s := m.Subject
	for {
		t := strings.TrimSpace(s)
		lower := strings.ToLower(t)
		stripped := false
		for _, p := range []string{"re:", "fw:", "fwd:"} {
			if strings.HasPrefix(lower, p) {
				s = t[len(p):]
				stripped = true
				break
			}
		}
		if !stripped {
			return t
		}
	}
}

// FirstBodyLine returns the first non-empty line of the body.
func (m *Message) FirstBodyLine() string {
	for _, line := range strings.Split(m.Body, "\n") {
		if t := strings.TrimSpace(line); t != "" {
			return t
		}
	}
	return ""
}

// SplitSignoff splits the body at the first sign-off line. It returns
// the text above the sign-off and the sign-off phrase as it appeared;
// when no sign-off is found the whole body comes back with an empty
// phrase.
func (m *Message) SplitSignoff() (string, string) {
	if m.Body == "" {
		return "", ""
	}
	var kept []string
	for _, line := range strings.Split(m.Body, "\n") {
		t := strings.TrimSpace(line)
		lower := strings.ToLower(t)
		for _, p := range signOffPatterns {
			if lower == p || strings.HasPrefix(lower, p) {
				return strings.TrimSpace(strings.Join(kept, "\n")), t[:len(p)]
			}
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(m.Body), ""
}

// Counterpart returns the other party of the exchange: the first
// recipient for an outbound message, the first sender otherwise.
func (m *Message) Counterpart(outbound bool) (Address, bool) {
	list := m.From
	if outbound {
		list = m.To
	}
	if len(list) == 0 {
		return Address{}, false
	}
	return list[0], true
}

var (
	imageSeqRe = regexp.MustCompile(`^image\d+$`)
	digitRunRe = regexp.MustCompile(`^\d{10,}$`)
	hashNameRe = regexp.MustCompile(`^[a-f0-9-]{20,}$`)
)

// IsEmbeddedName reports whether a filename looks like a mail client's
// autogenerated name for an inline image, such as image1769415576585.png,
// a bare timestamp, or a content hash.
func IsEmbeddedName(filename string) bool {
	name := strings.ToLower(filename)
	if i := strings.LastIndex(name, "."); i > 0 {
		name = name[:i]
	}
	return imageSeqRe.MatchString(name) || digitRunRe.MatchString(name) || hashNameRe.MatchString(name)
}

var domainSuffixes = []string{
	".com", ".co.uk", ".org", ".net", ".io", ".co",
	".uk", ".org.uk", ".gov.uk", ".ac.uk",
}

var genericDomains = map[string]bool{
	"gmail": true, "googlemail": true, "yahoo": true, "hotmail": true,
	"outlook": true, "icloud": true, "aol": true, "mail": true,
	"email": true, "live": true, "msn": true, "btinternet": true,
	"sky": true, "virginmedia": true, "protonmail": true, "zoho": true,
	"ymail": true, "rocketmail": true, "fastmail": true, "tutanota": true,
	"gmx": true, "web": true, "me": true, "mac": true, "pm": true,
	"proton": true,
}

// BusinessFromDomain derives a business name from an address's domain:
// john@smitharchitects.co.uk becomes "smitharchitects". Personal mail
// providers yield "".
func BusinessFromDomain(addr string) string {
	at := strings.LastIndex(addr, "@")
	if at < 0 || at == len(addr)-1 {
		return ""
	}
	domain := strings.ToLower(addr[at+1:])

	suffixes := append([]string(nil), domainSuffixes...)
	sort.Slice(suffixes, func(i, j int) bool { return len(suffixes[i]) > len(suffixes[j]) })
	for _, s := range suffixes {
		if strings.HasSuffix(domain, s) {
			domain = domain[:len(domain)-len(s)]
			break
		}
	}

	business := strings.NewReplacer(".", "-", "_", "-").Replace(domain)
	if business == "" || genericDomains[business] {
		return ""
	}
	return business
}
