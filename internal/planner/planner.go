// Package planner owns the scheduling and completion rules of the task board.
//
// All mutation goes through Apply: the intent runs against a private copy of
// the document and the copy replaces the committed document only when the
// intent succeeds, so a failed intent never leaves a half-applied change.
package planner

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"planboard/internal/dates"
	"planboard/internal/document"
)

var (
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidKey         = errors.New("invalid task key")
	ErrProjectNotFound    = errors.New("project not found")
	ErrTaskNotFound       = errors.New("task not found")
	ErrSubtaskNotFound    = errors.New("subtask not found")
	ErrStandaloneNotFound = errors.New("standalone task not found")
	ErrNotOnDate          = errors.New("task is not on that date")
	ErrCrossDateReorder   = errors.New("tasks can only be reordered within one day")
	ErrEmptyTitle         = errors.New("title cannot be empty")
)

type Planner struct {
	doc   *document.Document
	now   func() time.Time
	newID func() string
}

type Option func(*Planner)

func WithClock(now func() time.Time) Option {
	return func(p *Planner) { p.now = now }
}

func WithIDs(newID func() string) Option {
	return func(p *Planner) { p.newID = newID }
}

// New wraps doc. A nil doc starts an empty board.
func New(doc *document.Document, opts ...Option) *Planner {
	p := &Planner{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	if doc == nil {
		doc = document.New(p.now())
	}
	document.Migrate(doc)
	p.doc = doc
	return p
}

// Document returns the committed document. Callers must not modify it.
func (p *Planner) Document() *document.Document {
	return p.doc
}

// Snapshot returns a copy safe to hand to another goroutine.
func (p *Planner) Snapshot() *document.Document {
	return p.doc.Clone()
}

func (p *Planner) Today() string {
	return dates.Today(p.now())
}

func (p *Planner) Now() time.Time {
	return p.now()
}

// Apply runs one intent and commits the result.
func (p *Planner) Apply(in Intent) (Result, error) {
	e := &edit{
		doc:   p.doc.Clone(),
		now:   p.now(),
		newID: p.newID,
	}
	res, err := in.apply(e)
	if err != nil {
		return Result{}, err
	}
	e.doc.Touch(e.now)
	p.doc = e.doc
	return res, nil
}

// edit is one in-flight change against a draft document.
type edit struct {
	doc   *document.Document
	now   time.Time
	newID func() string
}

func requireDate(date string) error {
	if !dates.Valid(date) {
		return errorf(ErrInvalidDate, "%q", date)
	}
	return nil
}

func errorf(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{sentinel}, args...)...)
}
