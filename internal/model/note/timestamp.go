package note

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// zonedLayouts carry an offset and are parsed as absolute instants.
var zonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05 -0700",
	time.RFC1123Z,
	time.RFC1123,
}

// floatingLayouts have no offset. Their wall clock is shown as written.
var floatingLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Timestamp is a creation time as sent by the notes API. Values that match
// no known layout keep their raw text so one odd record never fails a list.
type Timestamp struct {
	Time time.Time
	Raw  string

	floating bool
}

// At wraps an absolute time.
func At(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// ParseTimestamp never fails; an unknown layout yields a Timestamp with only Raw set.
func ParseTimestamp(s string) Timestamp {
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: t, Raw: s}
		}
	}
	for _, layout := range floatingLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: t, Raw: s, floating: true}
		}
	}
	return Timestamp{Raw: s}
}

// IsZero reports whether the API sent no timestamp at all.
func (ts Timestamp) IsZero() bool {
	return ts.Time.IsZero() && ts.Raw == ""
}

// Valid reports whether the value was understood.
func (ts Timestamp) Valid() bool {
	return !ts.Time.IsZero()
}

// UnmarshalJSON accepts strings in the layouts above and numbers as Unix milliseconds.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*ts = Timestamp{}
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*ts = ParseTimestamp(s)
		return nil
	}

	if ms, err := strconv.ParseInt(string(data), 10, 64); err == nil {
		*ts = Timestamp{Time: time.UnixMilli(ms).UTC(), Raw: string(data)}
		return nil
	}
	*ts = Timestamp{Raw: string(data)}
	return nil
}

// MarshalJSON writes RFC 3339 when understood and the raw text otherwise.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	switch {
	case ts.floating && ts.Raw != "":
		return json.Marshal(ts.Raw)
	case ts.Valid():
		return json.Marshal(ts.Time.Format(time.RFC3339Nano))
	case ts.Raw != "":
		return json.Marshal(ts.Raw)
	default:
		return []byte("null"), nil
	}
}

// MarshalYAML mirrors MarshalJSON.
func (ts Timestamp) MarshalYAML() (any, error) {
	switch {
	case ts.floating && ts.Raw != "":
		return ts.Raw, nil
	case ts.Valid():
		return ts.Time.Format(time.RFC3339Nano), nil
	default:
		return ts.Raw, nil
	}
}
