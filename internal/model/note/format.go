package note

import "time"

// ExcerptLength is the number of characters a card shows before the ellipsis.
const ExcerptLength = 27

// TimestampLayout mirrors the en-US locale string the page has always shown.
const TimestampLayout = "1/2/2006, 3:04:05 PM"

// Excerpt shortens content for a grid card.
func Excerpt(content string) string {
	runes := []rune(content)
	if len(runes) <= ExcerptLength {
		return content
	}
	return string(runes[:ExcerptLength]) + "..."
}

// InvalidTimestamp is shown for a created_at value no layout understood.
const InvalidTimestamp = "Invalid Date"

// FormatTimestamp renders ts in loc. A nil loc means time.Local. Times sent
// without an offset keep their wall clock.
func FormatTimestamp(ts Timestamp, loc *time.Location) string {
	switch {
	case ts.IsZero():
		return ""
	case !ts.Valid():
		return InvalidTimestamp
	case ts.floating:
		return ts.Time.Format(TimestampLayout)
	}
	if loc == nil {
		loc = time.Local
	}
	return ts.Time.In(loc).Format(TimestampLayout)
}
