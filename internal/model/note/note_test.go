package note

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestNoteDecodesStringAndNumericIDs(t *testing.T) {
	payload := `[
		{"id":"abc123","title":"a","content":"x","created_at":"2024-03-05T14:07:09Z"},
		{"id":42,"title":"b","content":"y","created_at":"2024-03-05T14:07:09Z"}
	]`

	var notes []Note
	if err := json.Unmarshal([]byte(payload), &notes); err != nil {
		t.Fatalf("Unmarshal err: %v", err)
	}

	if notes[0].ID != "abc123" {
		t.Fatalf("unexpected string id: %q", notes[0].ID)
	}
	if notes[1].ID != "42" {
		t.Fatalf("unexpected numeric id: %q", notes[1].ID)
	}
	if !notes[0].CreatedAt.Time.Equal(time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)) {
		t.Fatalf("unexpected created_at: %s", notes[0].CreatedAt.Time)
	}
}

func TestNoteRejectsObjectID(t *testing.T) {
	var n Note
	if err := json.Unmarshal([]byte(`{"id":{"oid":"x"}}`), &n); err == nil {
		t.Fatal("expected error for object id")
	}
}

func TestDraftEncodesTitleAndContentOnly(t *testing.T) {
	data, err := json.Marshal(Draft{Title: "T", Content: "C"})
	if err != nil {
		t.Fatalf("Marshal err: %v", err)
	}
	if string(data) != `{"title":"T","content":"C"}` {
		t.Fatalf("unexpected body: %s", data)
	}
}

func TestExcerpt(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    string
	}{
		{"short", "hello", "hello"},
		{"exactly limit", strings.Repeat("a", 27), strings.Repeat("a", 27)},
		{"one over", strings.Repeat("a", 28), strings.Repeat("a", 27) + "..."},
		{"multibyte", strings.Repeat("é", 30), strings.Repeat("é", 27) + "..."},
		{"empty", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Excerpt(tc.content); got != tc.want {
				t.Fatalf("Excerpt(%q) = %q, want %q", tc.content, got, tc.want)
			}
		})
	}
}

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)
	if got := FormatTimestamp(At(ts), time.UTC); got != "3/5/2024, 2:07:09 PM" {
		t.Fatalf("unexpected format: %s", got)
	}

	tokyo := time.FixedZone("JST", 9*60*60)
	if got := FormatTimestamp(At(ts), tokyo); got != "3/5/2024, 11:07:09 PM" {
		t.Fatalf("unexpected zoned format: %s", got)
	}

	if got := FormatTimestamp(Timestamp{}, time.UTC); got != "" {
		t.Fatalf("expected empty string for zero time, got %q", got)
	}
}

func TestTimestampAcceptsCommonLayouts(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"rfc3339", `"2024-03-05T14:07:09Z"`, "3/5/2024, 11:07:09 PM"},
		{"rfc3339 fraction", `"2024-03-05T14:07:09.123456Z"`, "3/5/2024, 11:07:09 PM"},
		{"sql with offset", `"2024-03-05 14:07:09+00:00"`, "3/5/2024, 11:07:09 PM"},
		{"sql without offset", `"2024-01-02 10:00:00"`, "1/2/2024, 10:00:00 AM"},
		{"iso without offset", `"2024-01-02T10:00:00"`, "1/2/2024, 10:00:00 AM"},
		{"date only", `"2024-01-02"`, "1/2/2024, 12:00:00 AM"},
		{"unix millis", `1709647629000`, "3/5/2024, 11:07:09 PM"},
		{"garbage", `"yesterday-ish"`, InvalidTimestamp},
		{"wrong type", `true`, InvalidTimestamp},
		{"null", `null`, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var ts Timestamp
			if err := json.Unmarshal([]byte(tc.raw), &ts); err != nil {
				t.Fatalf("Unmarshal(%s) err: %v", tc.raw, err)
			}
			if got := FormatTimestamp(ts, tokyo); got != tc.want {
				t.Fatalf("FormatTimestamp(%s) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}

func TestTimestampMarshalKeepsUnknownText(t *testing.T) {
	cases := map[string]string{
		`"2024-03-05T14:07:09Z"`: `"2024-03-05T14:07:09Z"`,
		`"2024-01-02 10:00:00"`:  `"2024-01-02 10:00:00"`,
		`"yesterday-ish"`:        `"yesterday-ish"`,
		`null`:                   `null`,
	}

	for in, want := range cases {
		var ts Timestamp
		if err := json.Unmarshal([]byte(in), &ts); err != nil {
			t.Fatalf("Unmarshal(%s) err: %v", in, err)
		}
		got, err := json.Marshal(ts)
		if err != nil {
			t.Fatalf("Marshal err: %v", err)
		}
		if string(got) != want {
			t.Fatalf("Marshal(%s) = %s, want %s", in, got, want)
		}
	}
}
