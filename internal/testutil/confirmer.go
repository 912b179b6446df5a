package testutil

import (
	"ft-go/internal/ft"
)

// ScriptedConfirmer answers confirmation queries from pre-loaded
// scripts and records every query it was asked. Exhausted scripts fall
// back to the unattended defaults: abandon, skip, decline.
type ScriptedConfirmer struct {
	Jobs       []string
	Directions []ft.Direction
	Conflicts  []ft.ConflictAnswer
	Supersedes []bool
	PDFOffers  []bool
	Refiles    []bool

	IdentifierQueries []ft.IdentifierQuery
	DirectionQueries  []ft.DirectionQuery
	ConflictQueries   []ft.ConflictQuery
	SupersedeQueries  []ft.SupersedeQuery
	PDFOfferQueries   []ft.PDFOfferQuery
	RefileQueries     []ft.RefileQuery
}

func (c *ScriptedConfirmer) ResolveIdentifier(q ft.IdentifierQuery) (string, error) {
	c.IdentifierQueries = append(c.IdentifierQueries, q)
	return pop(&c.Jobs, ""), nil
}

func (c *ScriptedConfirmer) ResolveDirection(q ft.DirectionQuery) (ft.Direction, error) {
	c.DirectionQueries = append(c.DirectionQueries, q)
	return pop(&c.Directions, ft.DirectionUnknown), nil
}

func (c *ScriptedConfirmer) ResolveConflict(q ft.ConflictQuery) (ft.ConflictAnswer, error) {
	c.ConflictQueries = append(c.ConflictQueries, q)
	return pop(&c.Conflicts, ft.ConflictAnswer{Decision: ft.DecisionSkip}), nil
}

func (c *ScriptedConfirmer) ConfirmSupersede(q ft.SupersedeQuery) (bool, error) {
	c.SupersedeQueries = append(c.SupersedeQueries, q)
	return pop(&c.Supersedes, q.NewerExisting == ""), nil
}

func (c *ScriptedConfirmer) OfferPDF(q ft.PDFOfferQuery) (bool, error) {
	c.PDFOfferQueries = append(c.PDFOfferQueries, q)
	return pop(&c.PDFOffers, false), nil
}

func (c *ScriptedConfirmer) ConfirmRefile(q ft.RefileQuery) (bool, error) {
	c.RefileQueries = append(c.RefileQueries, q)
	return pop(&c.Refiles, false), nil
}

func pop[T any](script *[]T, def T) T {
	if len(*script) == 0 {
		return def
	}
	v := (*script)[0]
	*script = (*script)[1:]
	return v
}

// Compile-time check
var _ ft.Confirmer = (*ScriptedConfirmer)(nil)
