package note

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ID is the opaque note identifier assigned by the notes API.
type ID string

// UnmarshalJSON accepts both string and numeric identifiers.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("note id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// Note is a user-authored record owned by the notes API.
type Note struct {
	ID        ID        `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	Content   string    `json:"content" yaml:"content"`
	CreatedAt Timestamp `json:"created_at" yaml:"created_at"`
}

// Draft is the creation form payload.
type Draft struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`
}

// IsZero reports whether both fields are empty.
func (d Draft) IsZero() bool {
	return d.Title == "" && d.Content == ""
}
