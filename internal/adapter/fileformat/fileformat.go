// Package fileformat reads import files into domain batches and writes the
// JSON export document.
package fileformat

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"clockin/internal/domain"
)

// Parse picks the parser from the file extension.
func Parse(name string, r io.Reader) (domain.ImportBatch, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return ParseJSON(r)
	case ".csv":
		return ParseCSV(r)
	default:
		return domain.ImportBatch{}, &domain.FormatError{Reason: fmt.Sprintf("unsupported file type %q (use .json or .csv)", filepath.Ext(name))}
	}
}

// ParseJSON reads either an export document {"sessions": [...], "user": {...}}
// or a bare array of sessions.
func ParseJSON(r io.Reader) (domain.ImportBatch, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return domain.ImportBatch{}, &domain.FormatError{Reason: "read file", Err: err}
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return domain.ImportBatch{}, &domain.FormatError{Reason: "empty file"}
	}

	var (
		batch   domain.ImportBatch
		records []json.RawMessage
	)
	switch raw[0] {
	case '[':
		batch.Format = domain.FormatJSONArray
		if err := json.Unmarshal(raw, &records); err != nil {
			return domain.ImportBatch{}, &domain.FormatError{Reason: "invalid JSON", Err: err}
		}
	case '{':
		batch.Format = domain.FormatJSONObject
		var doc struct {
			User     *domain.User      `json:"user"`
			Sessions []json.RawMessage `json:"sessions"`
		}
		if err := json.Unmarshal(raw, &doc); err != nil {
			return domain.ImportBatch{}, &domain.FormatError{Reason: "invalid JSON", Err: err}
		}
		if doc.Sessions == nil {
			return domain.ImportBatch{}, &domain.FormatError{Reason: "no sessions list found"}
		}
		batch.User = doc.User
		records = doc.Sessions
	default:
		return domain.ImportBatch{}, &domain.FormatError{Reason: "invalid JSON: expected an object or an array"}
	}

	batch.Entries = make([]domain.ImportEntry, 0, len(records))
	for _, rec := range records {
		batch.Entries = append(batch.Entries, decodeEntry(rec))
	}
	return batch, nil
}

// decodeEntry reads one session object leniently. Anything that is not an
// object yields an empty entry, which fails validation later.
func decodeEntry(rec json.RawMessage) domain.ImportEntry {
	dec := json.NewDecoder(bytes.NewReader(rec))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return domain.ImportEntry{}
	}
	return domain.ImportEntry{
		UserID:   text(fields["userId"]),
		ClockIn:  text(fields["clockIn"]),
		ClockOut: text(fields["clockOut"]),
		Duration: text(fields["duration"]),
	}
}

func text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return ""
	default:
		return fmt.Sprint(x)
	}
}

var clockLayouts = []string{"15:04:05", "15:04", "3:04:05 PM", "3:04 PM", "3:04:05PM", "3:04PM"}

// ParseCSV reads date,clockInTime,clockOutTime[,duration] rows. A first row
// mentioning "date" is a header. Rows with fewer than three fields are
// counted in SkippedRows.
func ParseCSV(r io.Reader) (domain.ImportBatch, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	batch := domain.ImportBatch{Format: domain.FormatCSV, Entries: make([]domain.ImportEntry, 0)}
	for row := 0; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return domain.ImportBatch{}, &domain.FormatError{Reason: "invalid CSV", Err: err}
		}
		if row == 0 && isHeader(rec) {
			continue
		}
		if len(rec) < 3 {
			batch.SkippedRows++
			continue
		}

		day, err := domain.ParseDayLabel(rec[0])
		if err != nil {
			day = strings.TrimSpace(rec[0])
		}
		e := domain.ImportEntry{
			ClockIn:  combine(day, rec[1]),
			ClockOut: combine(day, rec[2]),
		}
		if len(rec) > 3 {
			e.Duration = strings.TrimSpace(rec[3])
		}
		batch.Entries = append(batch.Entries, e)
	}
	return batch, nil
}

func isHeader(rec []string) bool {
	for _, f := range rec {
		if strings.Contains(strings.ToLower(f), "date") {
			return true
		}
	}
	return false
}

// combine joins a day label and a clock time into a local timestamp. Empty
// times stay empty so an open session imports as active.
func combine(day, clock string) string {
	clock = strings.TrimSpace(clock)
	if clock == "" {
		return ""
	}
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, strings.ToUpper(clock)); err == nil {
			return day + "T" + t.Format("15:04:05")
		}
	}
	return day + "T" + clock
}

// WriteExport writes doc as indented JSON.
func WriteExport(w io.Writer, doc domain.ExportDocument) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// ExportFilename names an export file for email on day t.
func ExportFilename(email string, t time.Time) string {
	return fmt.Sprintf("clockin-data-%s-%s.json", email, t.Format(domain.DayLayout))
}
