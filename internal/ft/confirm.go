package ft

// IdentifierQuery asks the user for a job number after resolution
// failed or resolved to an unknown project.
type IdentifierQuery struct {
	// Artifact is the item that needs a job number. Nil when the
	// query covers a whole email rather than one attachment.
	Artifact *Artifact

	// Subject is the email subject line, when there is one.
	Subject string

	// Resolved is the job number resolution produced, when it
	// produced one that has no project folder. Empty otherwise.
	Resolved string

	// Candidates are known job numbers worth offering, such as
	// near-matches from the project index.
	Candidates []string
}

// DirectionQuery asks the user whether an email is incoming or
// outgoing after the address check could not tell.
type DirectionQuery struct {
	Subject    string
	Sender     string
	Recipients []string
}

// ConflictQuery asks the user what to do about a filename collision.
type ConflictQuery struct {
	Artifact *Artifact

	// Dir is the destination folder the collision is in.
	Dir string

	// Matches are absolute paths across the project tree carrying
	// the same filename. The first is the destination's own copy
	// when it has one.
	Matches []string

	// Suggestion is the lowest unused versioned name at the
	// destination, offered for the rename choice.
	Suggestion string
}

// ConflictAnswer is the user's decision for one collision.
type ConflictAnswer struct {
	Decision Decision

	// Name is the filename to use when the decision is a rename.
	// Empty means accept the suggestion.
	Name string
}

// SupersedeQuery asks the user to confirm moving stale drawing
// revisions aside before a newer one lands.
type SupersedeQuery struct {
	Artifact *Artifact

	// Stale are absolute paths of the older revisions that would
	// move to the superseded folder.
	Stale []string

	// NewerExisting is the path of a revision newer than the
	// incoming file, when one already exists. The incoming file is
	// the stale one in that case.
	NewerExisting string
}

// PDFOfferQuery asks the user whether to render an email body to PDF
// and file it alongside the attachments.
type PDFOfferQuery struct {
	Subject        string
	EmbeddedImages int
	TotalImageSize int64
}

// RefileQuery asks the user to confirm filing an email that was
// already filed before.
type RefileQuery struct {
	MessageID string
	Subject   string
	FiledAt   string
}

// Confirmer answers the questions planning cannot decide on its own.
// All prompting goes through this interface, so a plan carries every
// answer before commit starts.
type Confirmer interface {
	// ResolveIdentifier returns the job number to use, or empty to
	// abandon the item.
	ResolveIdentifier(q IdentifierQuery) (string, error)

	// ResolveDirection returns the direction to use, or
	// DirectionUnknown to abandon.
	ResolveDirection(q DirectionQuery) (Direction, error)

	// ResolveConflict returns the decision for one collision.
	ResolveConflict(q ConflictQuery) (ConflictAnswer, error)

	// ConfirmSupersede reports whether to move the stale revisions.
	// Declining files the new revision without touching them.
	ConfirmSupersede(q SupersedeQuery) (bool, error)

	// OfferPDF reports whether to render the email body to PDF.
	OfferPDF(q PDFOfferQuery) (bool, error)

	// ConfirmRefile reports whether to file an already-filed email
	// again.
	ConfirmRefile(q RefileQuery) (bool, error)
}

// AutoPolicy is the Confirmer for unattended runs. It never blocks:
// unresolvable items are abandoned, collisions are skipped, and offers
// are declined. Superseding proceeds only when the incoming revision
// is genuinely the newest.
type AutoPolicy struct{}

func (AutoPolicy) ResolveIdentifier(q IdentifierQuery) (string, error) {
	return "", nil
}

func (AutoPolicy) ResolveDirection(q DirectionQuery) (Direction, error) {
	return DirectionUnknown, nil
}

func (AutoPolicy) ResolveConflict(q ConflictQuery) (ConflictAnswer, error) {
	return ConflictAnswer{Decision: DecisionSkip}, nil
}

func (AutoPolicy) ConfirmSupersede(q SupersedeQuery) (bool, error) {
	return q.NewerExisting == "", nil
}

func (AutoPolicy) OfferPDF(q PDFOfferQuery) (bool, error) {
	return false, nil
}

func (AutoPolicy) ConfirmRefile(q RefileQuery) (bool, error) {
	return false, nil
}
