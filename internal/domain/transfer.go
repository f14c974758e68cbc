package domain

import (
	"strconv"
	"strings"
	"time"
)

// ImportFormat identifies the shape an import file arrived in.
type ImportFormat string

const (
	// FormatJSONObject is {"user": {...}, "sessions": [...]}, the export shape.
	FormatJSONObject ImportFormat = "json-object"
	// FormatJSONArray is a bare array of sessions.
	FormatJSONArray ImportFormat = "json-array"
	// FormatCSV is date,clockInTime,clockOutTime,duration rows.
	FormatCSV ImportFormat = "csv"
)

// ImportEntry is one raw session as read from a file. Fields hold the text
// found in the file; numbers are kept in their decimal form.
type ImportEntry struct {
	UserID   string
	ClockIn  string
	ClockOut string
	Duration string
}

// ImportBatch is a parsed import file ready for reconciliation.
type ImportBatch struct {
	Format  ImportFormat
	User    *User
	Entries []ImportEntry
	// SkippedRows counts CSV rows dropped for having too few fields.
	SkippedRows int
}

// Normalize validates entry i and converts it to a session. The returned
// session has no id and no user; Date is derived from ClockIn in loc.
func (b ImportBatch) Normalize(i int, loc *time.Location) (Session, error) {
	e := b.Entries[i]
	if b.Format != FormatCSV && strings.TrimSpace(e.UserID) == "" {
		return Session{}, &ValidationError{Field: "userId", Reason: "required"}
	}
	if strings.TrimSpace(e.ClockIn) == "" {
		return Session{}, &ValidationError{Field: "clockIn", Reason: "required"}
	}
	in, err := ParseTimestamp(e.ClockIn, loc)
	if err != nil {
		return Session{}, &ValidationError{Field: "clockIn", Reason: "unparseable timestamp " + strconv.Quote(e.ClockIn)}
	}
	s := Session{
		ClockIn:  in,
		Duration: ParseDurationSeconds(e.Duration),
		Date:     in.In(loc).Format(DayLayout),
	}
	if out, err := ParseTimestamp(e.ClockOut, loc); err == nil {
		s.ClockOut = &out
	}
	return s, nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"Mon Jan 02 2006 15:04:05",
	"Mon Jan 2 2006 15:04:05",
}

// ParseTimestamp reads an ISO-8601 timestamp, a zone-less local timestamp
// (interpreted in loc) or a whole number of epoch milliseconds.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, &ValidationError{Field: "timestamp", Reason: "empty"}
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).In(loc), nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &ValidationError{Field: "timestamp", Reason: "unrecognized format"}
}

var dayLayouts = []string{
	DayLayout,
	"Mon Jan 02 2006",
	"Mon Jan 2 2006",
	"01/02/2006",
	"1/2/2006",
}

// ParseDayLabel normalizes a calendar day written as 2006-01-02, as a
// "Mon Jan 02 2006" label or as month/day/year.
func ParseDayLabel(s string) (string, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dayLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(DayLayout), nil
		}
	}
	return "", &ValidationError{Field: "date", Reason: "unrecognized day " + strconv.Quote(s)}
}

// ParseDurationSeconds reads seconds as a decimal number or HH:MM:SS.
// Anything else yields 0.
func ParseDurationSeconds(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if f < 0 {
			return 0
		}
		return int64(f)
	}
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0
	}
	var total int64
	for _, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil || n < 0 {
			return 0
		}
		total = total*60 + n
	}
	return total
}

// ExportDocument is the portable JSON backup of one user's data.
type ExportDocument struct {
	User       ExportUser `json:"user"`
	Sessions   []Session  `json:"sessions"`
	ExportDate time.Time  `json:"exportDate"`
}

// ExportUser is the user record as exported; the password is left out.
type ExportUser struct {
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}
