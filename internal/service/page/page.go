package page

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/zhouzirui/z-notes/web/internal/model/note"
	"github.com/zhouzirui/z-notes/web/internal/model/session"
	"github.com/zhouzirui/z-notes/web/internal/service/api"
)

var (
	ErrVerificationFailed = errors.New("Token verification failed")
	ErrInvalidDraft       = errors.New("invalid note")
)

// API is the subset of the notes API the page depends on.
type API interface {
	Verify(ctx context.Context, token string) (*session.User, error)
	ListNotes(ctx context.Context, token string) ([]note.Note, error)
	CreateNote(ctx context.Context, token string, draft note.Draft) error
}

var validate = validator.New()

// Page drives one instance of the notes page.
//
// A Page is not safe for concurrent use. Each caller owns its Page and
// drives it from a single goroutine; operations complete before the next
// one starts.
type Page struct {
	api      API
	token    string
	observer func(State)
	log      logrus.FieldLogger
	state    State
}

// Option customises a Page.
type Option func(*Page)

// WithObserver registers fn to receive a snapshot after every transition.
func WithObserver(fn func(State)) Option {
	return func(p *Page) {
		p.observer = fn
	}
}

// WithLogger sets the page logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(p *Page) {
		if log != nil {
			p.log = log
		}
	}
}

// New creates a page for token. An empty token yields the anonymous view on Mount.
func New(client API, token string, opts ...Option) *Page {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	p := &Page{
		api:   client,
		token: token,
		log:   discard,
		state: initialState(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Snapshot returns a copy of the current state.
func (p *Page) Snapshot() State {
	return p.state.clone()
}

// Mount runs the session gate. Verification happens on every mount.
func (p *Page) Mount(ctx context.Context) error {
	if p.token == "" {
		p.state.Loading = false
		p.state.Phase = PhaseAnonymous
		p.notify()
		return nil
	}

	user, err := p.api.Verify(ctx, p.token)
	if err != nil {
		p.state.Err = fmt.Sprintf("%s: %v", ErrVerificationFailed, err)
		p.state.Loading = false
		p.state.Phase = PhaseAnonymous
		p.notify()
		p.log.WithError(err).Warn("session verification failed")
		return fmt.Errorf("%w: %w", ErrVerificationFailed, err)
	}

	p.state.User = user
	p.state.Phase = PhaseReady
	p.notify()

	return p.Load(ctx)
}

// Load replaces the note list with the server's. On failure the previous
// list is kept. Loading is cleared whatever the outcome.
func (p *Page) Load(ctx context.Context) error {
	p.state.Err = ""
	defer func() {
		p.state.Loading = false
		p.notify()
	}()

	if p.token == "" {
		p.state.Err = api.ErrMissingToken.Error()
		return api.ErrMissingToken
	}

	notes, err := p.api.ListNotes(ctx, p.token)
	if err != nil {
		p.state.Err = err.Error()
		p.log.WithError(err).Warn("loading notes failed")
		return fmt.Errorf("load notes: %w", err)
	}

	p.state.Notes = notes
	return nil
}

// SetDraft updates the creation form.
func (p *Page) SetDraft(d note.Draft) {
	p.state.Draft = d
	p.notify()
}

// Submit creates a note from the draft, then reloads the list. The draft is
// kept when creation fails.
func (p *Page) Submit(ctx context.Context) error {
	p.state.Err = ""

	if p.token == "" {
		p.state.Err = api.ErrMissingToken.Error()
		p.notify()
		return api.ErrMissingToken
	}

	if err := validate.Struct(p.state.Draft); err != nil {
		p.state.Err = draftMessage(err)
		p.notify()
		return fmt.Errorf("%w: %s", ErrInvalidDraft, p.state.Err)
	}

	if err := p.api.CreateNote(ctx, p.token, p.state.Draft); err != nil {
		p.state.Err = err.Error()
		p.notify()
		p.log.WithError(err).Warn("creating note failed")
		return fmt.Errorf("create note: %w", err)
	}

	p.state.Draft = note.Draft{}
	p.notify()

	return p.Load(ctx)
}

// Select opens the modal on the note with id. It reports false and leaves
// the modal untouched when no loaded note has that id.
func (p *Page) Select(id note.ID) bool {
	for _, n := range p.state.Notes {
		if n.ID == id {
			p.SelectNote(n)
			return true
		}
	}
	return false
}

// SelectNote opens the modal on n.
func (p *Page) SelectNote(n note.Note) {
	p.state.Selected = &n
	p.notify()
}

// Close closes the modal.
func (p *Page) Close() {
	p.state.Selected = nil
	p.notify()
}

func (p *Page) notify() {
	if p.observer != nil {
		p.observer(p.state.clone())
	}
}

func draftMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := strings.ToLower(fe.Field())
		if fe.Tag() == "required" {
			msgs = append(msgs, field+" is required")
			continue
		}
		msgs = append(msgs, fmt.Sprintf("%s is invalid (%s)", field, fe.Tag()))
	}
	return strings.Join(msgs, "; ")
}
