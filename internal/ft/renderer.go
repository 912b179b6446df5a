package ft

import "ft-go/internal/email"

// Renderer turns a parsed email into a PDF document. A nil Renderer
// disables the PDF offer entirely.
type Renderer interface {
	Render(msg *email.Message) ([]byte, error)
}
