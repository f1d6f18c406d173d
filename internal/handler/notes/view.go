package notes

import (
	"net/url"
	"time"

	"github.com/zhouzirui/z-notes/web/internal/model/note"
	"github.com/zhouzirui/z-notes/web/internal/service/page"
)

type card struct {
	ID        string
	Title     string
	Excerpt   string
	CreatedAt string
	Href      string
	Even      bool
}

type modal struct {
	Title     string
	Content   string
	CreatedAt string
}

type pageView struct {
	Authenticated bool
	FirstName     string
	LoginURL      string
	Error         string
	Draft         note.Draft
	Cards         []card
	Modal         *modal
}

func buildView(s page.State, loc *time.Location, loginURL string) pageView {
	v := pageView{
		Authenticated: s.Phase == page.PhaseReady && s.User != nil,
		LoginURL:      loginURL,
		Error:         s.Err,
		Draft:         s.Draft,
	}
	if s.User != nil {
		v.FirstName = s.User.FirstName()
	}

	v.Cards = make([]card, 0, len(s.Notes))
	for i, n := range s.Notes {
		v.Cards = append(v.Cards, card{
			ID:        string(n.ID),
			Title:     n.Title,
			Excerpt:   note.Excerpt(n.Content),
			CreatedAt: note.FormatTimestamp(n.CreatedAt, loc),
			Href:      "/?note=" + url.QueryEscape(string(n.ID)),
			Even:      i%2 == 0,
		})
	}

	if s.Selected != nil {
		v.Modal = &modal{
			Title:     s.Selected.Title,
			Content:   s.Selected.Content,
			CreatedAt: note.FormatTimestamp(s.Selected.CreatedAt, loc),
		}
	}
	return v
}
