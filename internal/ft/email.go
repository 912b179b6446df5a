package ft

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ft-go/internal/email"
)

// EmailOptions adjust how an email is planned.
type EmailOptions struct {
	FileOptions

	// IncludeSmall keeps attachments below the minimum size
	// instead of setting them aside.
	IncludeSmall bool

	// GeneratePDF renders the body to PDF without waiting to be
	// offered.
	GeneratePDF bool

	// Screenshots saves large embedded images from outgoing emails
	// as screenshot files.
	Screenshots bool
}

// PlanEmail resolves an email into a committable Plan covering its
// attachments and, when wanted, a rendered body PDF and screenshots of
// embedded images. A nil plan with a nil error means the user declined
// to file the email again.
func (s *FilingService) PlanEmail(ctx context.Context, msg *email.Message, opts EmailOptions) (*Plan, error) {
	s.logger.Info("planning email", "subject", msg.Subject, "attachments", len(msg.Attachments))

	if msg.MessageID != "" {
		prior, err := s.database.FindEmailByMessageID(msg.MessageID)
		if err != nil {
			return nil, fmt.Errorf("checking for prior filing: %w", err)
		}
		if prior != nil {
			again, err := s.confirm.ConfirmRefile(RefileQuery{
				MessageID: msg.MessageID,
				Subject:   prior.Subject,
				FiledAt:   prior.FiledAt.Format("2006-01-02 15:04"),
			})
			if err != nil {
				return nil, fmt.Errorf("confirming refile: %w", err)
			}
			if !again {
				s.logger.Info("email already filed, leaving it", "message_id", msg.MessageID)
				return nil, nil
			}
		}
	}

	dir := opts.Direction
	if dir == DirectionUnknown {
		dir = s.classifier.Direction(msg)
	}
	if dir == DirectionUnknown {
		var err error
		dir, err = s.confirmDirection(DirectionQuery{
			Subject:    msg.Subject,
			Sender:     senderAddr(msg),
			Recipients: recipientAddrs(msg),
		})
		if err != nil {
			return nil, err
		}
	}

	res, err := s.emailJob(msg, opts.Reference)
	if err != nil {
		return nil, err
	}
	proj, _ := s.index.Find(res.Job)

	if err := s.acquire(proj.Path); err != nil {
		return nil, err
	}
	planned := false
	defer func() {
		if !planned {
			s.release(proj.Path)
		}
	}()

	date := msg.Date
	if date.IsZero() {
		date = s.clock.Now()
	}
	contact := opts.Contact
	if contact == "" {
		contact = counterpartName(msg, dir == DirectionOut)
	}
	desc := opts.Description
	if desc == "" {
		desc = msg.TrimmedSubject()
	}
	if desc == "" {
		desc = msg.FirstBodyLine()
	}

	datedDir, err := s.planner.DatedFolder(proj.Path, proj.Job, dir, date, contact, desc)
	if err != nil {
		return nil, err
	}

	batch, unplanned := s.emailArtifacts(msg, opts, res, dir, date, desc)
	if len(batch) == 0 {
		return nil, fmt.Errorf("nothing to file from %q", msg.Subject)
	}

	fileOpts := opts.FileOptions
	fileOpts.Contact = contact
	fileOpts.Description = desc
	bc, err := s.batchContextFor(proj.Path, proj.Job, datedDir, dir, date, fileOpts)
	if err != nil {
		return nil, err
	}

	plannedArts, err := s.buildBatch(ctx, bc, batch)
	if err != nil {
		return nil, err
	}

	plan := &Plan{
		OperationID:   s.idgen.NewID(),
		Job:           proj.Job,
		JobConfidence: res.Confidence,
		ProjectRoot:   proj.Path,
		Batch:         plannedArts,
		Unplanned:     unplanned,
		Email: &EmailSource{
			MessageID:  msg.MessageID,
			Subject:    msg.Subject,
			Sender:     senderAddr(msg),
			Recipients: recipientAddrs(msg),
			SentAt:     msg.Date,
			Direction:  dir,
			Contact:    contact,
			FiledTo:    datedDir,
		},
	}
	planned = true
	s.logger.Info("plan ready", "operation", plan.OperationID, "job", proj.Job, "items", len(plannedArts))
	return plan, nil
}

// emailJob settles which job the email files under: explicit
// reference, then the subject line, then attachment filenames, then
// the user.
func (s *FilingService) emailJob(msg *email.Message, reference string) (Resolution, error) {
	res := s.resolver.FromReference(reference)
	if reference != "" && res.Job == "" {
		return s.confirmJob(IdentifierQuery{Subject: msg.Subject, Resolved: reference, Candidates: s.index.Jobs()})
	}
	if res.Job == "" {
		res = s.resolver.FromSubject(msg.Subject)
	}
	if res.Job == "" {
		for _, att := range msg.Attachments {
			if r := s.resolver.FromFilename(att.Filename); r.Job != "" {
				res = r
				break
			}
		}
	}
	if res.Job == "" {
		return s.confirmJob(IdentifierQuery{Subject: msg.Subject, Candidates: s.index.Jobs()})
	}
	if !s.index.Has(res.Job) {
		return s.confirmJob(IdentifierQuery{Subject: msg.Subject, Resolved: res.Job, Candidates: s.index.Jobs()})
	}
	return res, nil
}

// emailArtifacts collects what the email yields: attachments over the
// size floor, a rendered body PDF when accepted, and screenshots of
// embedded images for outgoing mail.
func (s *FilingService) emailArtifacts(msg *email.Message, opts EmailOptions, res Resolution, dir Direction, date time.Time, desc string) ([]*Artifact, []UnplannedArtifact) {
	var batch []*Artifact
	var unplanned []UnplannedArtifact

	add := func(a *Artifact) {
		a.Job = res.Job
		a.JobConfidence = res.Confidence
		a.Direction = dir
		batch = append(batch, a)
	}

	for _, att := range msg.Attachments {
		art := &Artifact{
			Name: att.Filename,
			Size: att.Size(),
			Data: att.Data,
			Kind: s.classifier.Kind(att.Filename, res.Job),
		}
		switch {
		case email.IsEmbeddedName(att.Filename):
			unplanned = append(unplanned, UnplannedArtifact{Artifact: art, Reason: fmt.Errorf("looks like an inline image")})
		case !opts.IncludeSmall && att.Size() < s.settings.MinAttachmentSize:
			unplanned = append(unplanned, UnplannedArtifact{Artifact: art, Reason: fmt.Errorf("below minimum size %d", s.settings.MinAttachmentSize)})
		default:
			add(art)
		}
	}

	if s.renderer != nil && s.pdfWanted(msg, opts) {
		data, err := s.renderer.Render(msg)
		if err != nil {
			s.logger.Warn("rendering email to pdf failed", "subject", msg.Subject, "error", err)
			unplanned = append(unplanned, UnplannedArtifact{
				Artifact: &Artifact{Name: EmailPDFName(res.Job, date, desc), Kind: KindGeneratedPDF},
				Reason:   fmt.Errorf("rendering pdf: %w", err),
			})
		} else {
			add(&Artifact{
				Name: EmailPDFName(res.Job, date, desc),
				Size: int64(len(data)),
				Data: data,
				Kind: KindGeneratedPDF,
			})
		}
	}

	if opts.Screenshots && dir == DirectionOut {
		n := 1
		for _, img := range msg.Embedded {
			if img.Size() < s.settings.MinEmbeddedImageSize {
				continue
			}
			add(&Artifact{
				Name: ScreenshotName(res.Job, date, n, imageExt(img)),
				Size: img.Size(),
				Data: img.Data,
				Kind: KindDocument,
			})
			n++
		}
	}

	return batch, unplanned
}

// pdfWanted decides whether to render the body: forced by flag, or
// offered when an embedded image is big enough to carry content that
// would otherwise be lost.
func (s *FilingService) pdfWanted(msg *email.Message, opts EmailOptions) bool {
	if opts.GeneratePDF {
		return true
	}
	var total int64
	worthOffering := false
	for _, img := range msg.Embedded {
		total += img.Size()
		if img.Size() >= s.settings.MinEmbeddedImageSize {
			worthOffering = true
		}
	}
	if !worthOffering {
		return false
	}
	want, err := s.confirm.OfferPDF(PDFOfferQuery{
		Subject:        msg.Subject,
		EmbeddedImages: len(msg.Embedded),
		TotalImageSize: total,
	})
	if err != nil {
		s.logger.Warn("pdf offer failed", "error", err)
		return false
	}
	return want
}

func senderAddr(msg *email.Message) string {
	if len(msg.From) == 0 {
		return ""
	}
	return msg.From[0].Addr
}

func recipientAddrs(msg *email.Message) []string {
	var out []string
	for _, a := range msg.To {
		out = append(out, a.Addr)
	}
	for _, a := range msg.Cc {
		out = append(out, a.Addr)
	}
	return out
}

// counterpartName is the display name of the other party, falling back
// to a business name derived from their address's domain.
func counterpartName(msg *email.Message, outbound bool) string {
	other, ok := msg.Counterpart(outbound)
	if !ok {
		return ""
	}
	if other.Name != "" {
		return other.Name
	}
	return email.BusinessFromDomain(other.Addr)
}

func imageExt(img email.Attachment) string {
	if ext := strings.TrimPrefix(strings.ToLower(img.ContentType), "image/"); ext != "" && ext != strings.ToLower(img.ContentType) {
		if ext == "jpeg" {
			return "jpg"
		}
		return ext
	}
	if i := strings.LastIndex(img.Filename, "."); i >= 0 && i < len(img.Filename)-1 {
		return strings.ToLower(img.Filename[i+1:])
	}
	return "png"
}
