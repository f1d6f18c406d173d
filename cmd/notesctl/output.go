package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zhouzirui/z-notes/web/internal/model/note"
	"github.com/zhouzirui/z-notes/web/internal/service/page"
)

// noteOutput is what json and yaml print: the stored note plus its rendered timestamp.
type noteOutput struct {
	ID        note.ID `json:"id" yaml:"id"`
	Title     string  `json:"title" yaml:"title"`
	Content   string  `json:"content" yaml:"content"`
	CreatedAt string  `json:"created_at" yaml:"created_at"`
}

func toOutput(n note.Note, loc *time.Location) noteOutput {
	return noteOutput{
		ID:        n.ID,
		Title:     n.Title,
		Content:   n.Content,
		CreatedAt: note.FormatTimestamp(n.CreatedAt, loc),
	}
}

func writeNotes(w io.Writer, format string, s page.State, loc *time.Location) error {
	out := make([]noteOutput, 0, len(s.Notes))
	for _, n := range s.Notes {
		out = append(out, toOutput(n, loc))
	}

	switch format {
	case "json":
		return writeJSON(w, out)
	case "yaml":
		return yaml.NewEncoder(w).Encode(out)
	case "text", "":
	default:
		return fmt.Errorf("unknown output format %q", format)
	}

	if len(out) == 0 {
		_, err := fmt.Fprintln(w, "No notes available.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tEXCERPT\tCREATED")
	for _, n := range out {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", n.ID, n.Title, note.Excerpt(n.Content), n.CreatedAt)
	}
	return tw.Flush()
}

func writeNote(w io.Writer, format string, n note.Note, loc *time.Location) error {
	out := toOutput(n, loc)

	switch format {
	case "json":
		return writeJSON(w, out)
	case "yaml":
		return yaml.NewEncoder(w).Encode(out)
	case "text", "":
	default:
		return fmt.Errorf("unknown output format %q", format)
	}

	_, err := fmt.Fprintf(w, "%s\n\n%s\n\nCreated at: %s\n", out.Title, out.Content, out.CreatedAt)
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
