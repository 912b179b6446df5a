package email

import (
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"strings"

	"golang.org/x/net/html"
)

// Parse reads one RFC 5322 message. Multipart trees are walked to any
// depth; the first text/plain part becomes the body, with stripped HTML
// as the fallback. Parts that cannot be decoded are dropped rather than
// failing the whole message.
func Parse(r io.Reader) (*Message, error) {
	src, err := mail.ReadMessage(r)
	if err != nil {
		return nil, fmt.Errorf("reading message: %w", err)
	}

	msg := &Message{
		MessageID: strings.TrimSpace(strings.Trim(strings.TrimSpace(src.Header.Get("Message-ID")), "<>")),
		Subject:   decodeHeader(src.Header.Get("Subject")),
		From:      addressList(src.Header, "From"),
		To:        addressList(src.Header, "To"),
		Cc:        addressList(src.Header, "Cc"),
	}
	if d, err := src.Header.Date(); err == nil {
		msg.Date = d
	}

	mediaType, params := partType(src.Header.Get("Content-Type"))
	var c collector
	if strings.HasPrefix(mediaType, "multipart/") {
		if err := c.walk(multipart.NewReader(src.Body, params["boundary"])); err != nil {
			return nil, err
		}
	} else {
		data, err := io.ReadAll(transferDecoder(src.Body, src.Header.Get("Content-Transfer-Encoding")))
		if err != nil {
			return nil, fmt.Errorf("reading message body: %w", err)
		}
		text := decodeCharset(data, params["charset"])
		if mediaType == "text/html" {
			c.html = text
		} else {
			c.plain = text
		}
	}

	msg.Body = strings.TrimSpace(c.plain)
	msg.HTMLBody = c.html
	if msg.Body == "" && c.html != "" {
		msg.Body = strings.TrimSpace(htmlToText(c.html))
	}
	msg.Attachments = c.attachments
	msg.Embedded = c.embedded
	return msg, nil
}

// collector accumulates what the multipart walk finds.
type collector struct {
	plain       string
	html        string
	attachments []Attachment
	embedded    []Attachment
}

func (c *collector) walk(r *multipart.Reader) error {
	for {
		p, err := r.NextPart()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading message part: %w", err)
		}
		c.part(p)
	}
}

func (c *collector) part(p *multipart.Part) {
	mediaType, params := partType(p.Header.Get("Content-Type"))

	if strings.HasPrefix(mediaType, "multipart/") {
		// Errors inside a nested container lose that container only.
		_ = c.walk(multipart.NewReader(p, params["boundary"]))
		return
	}

	data, err := io.ReadAll(transferDecoder(p, p.Header.Get("Content-Transfer-Encoding")))
	if err != nil {
		return
	}

	disposition, _ := partType(p.Header.Get("Content-Disposition"))
	filename := p.FileName()
	if filename == "" {
		filename = params["name"]
	}
	filename = decodeHeader(filename)
	contentID := strings.TrimSpace(strings.Trim(strings.TrimSpace(p.Header.Get("Content-Id")), "<>"))

	switch {
	case strings.HasPrefix(mediaType, "image/") && disposition == "inline":
		c.embedded = append(c.embedded, Attachment{
			Filename:    filename,
			ContentType: mediaType,
			ContentID:   contentID,
			Data:        data,
		})
	case disposition == "attachment" || filename != "":
		if filename == "" {
			return
		}
		c.attachments = append(c.attachments, Attachment{
			Filename:    filename,
			ContentType: mediaType,
			Data:        data,
		})
	case mediaType == "text/plain" && c.plain == "":
		c.plain = decodeCharset(data, params["charset"])
	case mediaType == "text/html" && c.html == "":
		c.html = decodeCharset(data, params["charset"])
	}
}

// partType parses a Content-Type or Content-Disposition value, treating
// a missing or malformed one as text/plain with no parameters.
func partType(v string) (string, map[string]string) {
	if v == "" {
		return "text/plain", nil
	}
	mediaType, params, err := mime.ParseMediaType(v)
	if err != nil {
		return "text/plain", nil
	}
	return mediaType, params
}

func transferDecoder(r io.Reader, encoding string) io.Reader {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "base64":
		return base64.NewDecoder(base64.StdEncoding, r)
	case "quoted-printable":
		return quotedprintable.NewReader(r)
	}
	return r
}

func decodeCharset(data []byte, charset string) string {
	switch strings.ToLower(charset) {
	case "iso-8859-1", "latin1", "windows-1252":
		runes := make([]rune, len(data))
		for i, b := range data {
			runes[i] = rune(b)
		}
		return string(runes)
	}
	return string(data)
}

func decodeHeader(s string) string {
	dec := new(mime.WordDecoder)
	if decoded, err := dec.DecodeHeader(s); err == nil {
		return decoded
	}
	return s
}

func addressList(h mail.Header, key string) []Address {
	raw := h.Get(key)
	if raw == "" {
		return nil
	}
	parsed, err := h.AddressList(key)
	if err != nil {
		return []Address{{Addr: strings.TrimSpace(raw)}}
	}
	out := make([]Address, len(parsed))
	for i, a := range parsed {
		out[i] = Address{Name: a.Name, Addr: a.Address}
	}
	return out
}

// htmlToText strips markup for the plain-text fallback body. Block
// elements become line breaks; script and style contents are dropped.
func htmlToText(src string) string {
	z := html.NewTokenizer(strings.NewReader(src))
	var b strings.Builder
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return collapseBlankLines(b.String())
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "script", "style", "head":
				skip++
			case "br", "p", "div", "tr", "li":
				b.WriteByte('\n')
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "script", "style", "head":
				if skip > 0 {
					skip--
				}
			case "p", "div", "tr", "li", "table":
				b.WriteByte('\n')
			}
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}
}

func collapseBlankLines(s string) string {
	var out []string
	blanks := 0
	for _, line := range strings.Split(s, "\n") {
		t := strings.TrimSpace(line)
		if t == "" {
			blanks++
			if blanks > 1 {
				continue
			}
		} else {
			blanks = 0
		}
		out = append(out, t)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
