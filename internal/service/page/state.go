package page

import (
	"github.com/zhouzirui/z-notes/web/internal/model/note"
	"github.com/zhouzirui/z-notes/web/internal/model/session"
)

// Phase is the coarse lifecycle of a page instance.
type Phase string

const (
	// PhaseMounting is the state before the session gate has run.
	PhaseMounting Phase = "mounting"
	// PhaseAnonymous means no token, or a token that failed verification.
	PhaseAnonymous Phase = "anonymous"
	// PhaseReady means the user is verified and notes may be shown.
	PhaseReady Phase = "ready"
)

// State is everything the page renders from.
//
// Notes is replaced wholesale by each successful load and never edited in
// place. Selected is nil when the modal is closed.
type State struct {
	Phase    Phase         `json:"phase"`
	User     *session.User `json:"user,omitempty"`
	Notes    []note.Note   `json:"notes"`
	Loading  bool          `json:"loading"`
	Err      string        `json:"error,omitempty"`
	Draft    note.Draft    `json:"draft"`
	Selected *note.Note    `json:"selected,omitempty"`
}

func initialState() State {
	return State{
		Phase:   PhaseMounting,
		Notes:   []note.Note{},
		Loading: true,
	}
}

// ModalOpen reports whether a note is selected.
func (s State) ModalOpen() bool {
	return s.Selected != nil
}

func (s State) clone() State {
	out := s
	out.Notes = append([]note.Note(nil), s.Notes...)
	if out.Notes == nil {
		out.Notes = []note.Note{}
	}
	if s.User != nil {
		u := *s.User
		out.User = &u
	}
	if s.Selected != nil {
		n := *s.Selected
		out.Selected = &n
	}
	return out
}
