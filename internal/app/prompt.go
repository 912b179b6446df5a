package app

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"ft-go/internal/ft"
)

// NewConfirmer returns the confirmer CLI commands should plan with: a
// terminal prompter when stdin is a terminal, the conservative
// auto-policy otherwise (piped input, scripts).
func NewConfirmer() ft.Confirmer {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return ft.AutoPolicy{}
	}
	return &TerminalConfirmer{in: bufio.NewReader(os.Stdin), out: os.Stdout}
}

// TerminalConfirmer answers planning questions by prompting on the
// terminal, one line per answer. A blank answer takes the default shown
// in the prompt.
type TerminalConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

// readLine prints the prompt and returns one trimmed line of input.
// EOF counts as a blank answer.
func (c *TerminalConfirmer) readLine(prompt string) (string, error) {
	fmt.Fprint(c.out, prompt)
	line, err := c.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// ResolveIdentifier shows what is known about the item and asks for a
// job number. Blank abandons the item.
func (c *TerminalConfirmer) ResolveIdentifier(q ft.IdentifierQuery) (string, error) {
	switch {
	case q.Artifact != nil:
		fmt.Fprintf(c.out, "\nNo job number found for %s\n", q.Artifact.Name)
	case q.Subject != "":
		fmt.Fprintf(c.out, "\nNo job number found for email %q\n", q.Subject)
	default:
		fmt.Fprintf(c.out, "\nNo job number found\n")
	}
	if q.Resolved != "" {
		fmt.Fprintf(c.out, "Resolved %s, but no project folder matches it\n", q.Resolved)
	}
	if len(q.Candidates) > 0 {
		fmt.Fprintf(c.out, "Known jobs: %s\n", strings.Join(q.Candidates, ", "))
	}
	return c.readLine("Job number (blank to skip): ")
}

// ResolveDirection asks whether the items were received or sent. An
// answer that is not in or out abandons the batch.
func (c *TerminalConfirmer) ResolveDirection(q ft.DirectionQuery) (ft.Direction, error) {
	if q.Subject != "" {
		fmt.Fprintf(c.out, "\nCould not tell whether %q is incoming or outgoing\n", q.Subject)
		fmt.Fprintf(c.out, "From %s to %s\n", q.Sender, strings.Join(q.Recipients, ", "))
	} else {
		fmt.Fprintf(c.out, "\nThese files need a filing direction\n")
	}
	ans, err := c.readLine("Direction [in/out]: ")
	if err != nil {
		return ft.DirectionUnknown, err
	}
	dir, err := ft.ParseDirection(ans)
	if err != nil {
		return ft.DirectionUnknown, nil
	}
	return dir, nil
}

// ResolveConflict lists the existing copies and asks what to do with
// the incoming file. Skipping is the default.
func (c *TerminalConfirmer) ResolveConflict(q ft.ConflictQuery) (ft.ConflictAnswer, error) {
	fmt.Fprintf(c.out, "\n%s already exists in the project:\n", q.Artifact.Name)
	for _, m := range q.Matches {
		fmt.Fprintf(c.out, "  %s\n", m)
	}
	fmt.Fprintf(c.out, "Destination: %s\n", q.Dir)

	ans, err := c.readLine(fmt.Sprintf("[s]kip, [r]ename to %s, [o]verwrite, [f]ile anyway: ", q.Suggestion))
	if err != nil {
		return ft.ConflictAnswer{Decision: ft.DecisionSkip}, err
	}
	switch strings.ToLower(ans) {
	case "r", "rename":
		name, err := c.readLine(fmt.Sprintf("New name (blank for %s): ", q.Suggestion))
		if err != nil {
			return ft.ConflictAnswer{Decision: ft.DecisionSkip}, err
		}
		return ft.ConflictAnswer{Decision: ft.DecisionRename, Name: name}, nil
	case "o", "overwrite":
		return ft.ConflictAnswer{Decision: ft.DecisionOverwrite}, nil
	case "f", "file":
		return ft.ConflictAnswer{Decision: ft.DecisionProceed}, nil
	}
	return ft.ConflictAnswer{Decision: ft.DecisionSkip}, nil
}

// ConfirmSupersede lists the older revisions that would move aside and
// asks for a yes. Yes is the default.
func (c *TerminalConfirmer) ConfirmSupersede(q ft.SupersedeQuery) (bool, error) {
	if q.NewerExisting != "" {
		fmt.Fprintf(c.out, "\nNote: a newer revision is already filed: %s\n", q.NewerExisting)
	}
	fmt.Fprintf(c.out, "\nFiling %s supersedes:\n", q.Artifact.Name)
	for _, p := range q.Stale {
		fmt.Fprintf(c.out, "  %s\n", p)
	}
	ans, err := c.readLine("Move these to the superseded folder? [Y/n]: ")
	if err != nil {
		return false, err
	}
	return ans == "" || yes(ans), nil
}

// OfferPDF asks whether to keep the email body as a PDF. No is the
// default.
func (c *TerminalConfirmer) OfferPDF(q ft.PDFOfferQuery) (bool, error) {
	fmt.Fprintf(c.out, "\n%q carries %d embedded images (%d KB)\n",
		q.Subject, q.EmbeddedImages, q.TotalImageSize/1024)
	ans, err := c.readLine("Save the email body as a PDF too? [y/N]: ")
	if err != nil {
		return false, err
	}
	return yes(ans), nil
}

// ConfirmRefile asks whether to file an already-filed email again. No
// is the default.
func (c *TerminalConfirmer) ConfirmRefile(q ft.RefileQuery) (bool, error) {
	fmt.Fprintf(c.out, "\n%q was already filed at %s\n", q.Subject, q.FiledAt)
	ans, err := c.readLine("File it again? [y/N]: ")
	if err != nil {
		return false, err
	}
	return yes(ans), nil
}

func yes(ans string) bool {
	switch strings.ToLower(ans) {
	case "y", "yes":
		return true
	}
	return false
}
