// Package sqlstore implements the domain repositories over database/sql. The
// postgres and sqlite packages open the connection, run their schema and
// hand it to New.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"clockin/internal/domain"
)

// Dialect selects placeholder and time encoding rules.
type Dialect int

const (
	// Postgres uses $n placeholders and native TIMESTAMPTZ columns.
	Postgres Dialect = iota
	// SQLite uses ? placeholders and fixed-width UTC text timestamps.
	SQLite
)

// textTimeLayout sorts lexically in time order when every value is UTC.
const textTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store implements every domain repository on one *sql.DB.
type Store struct {
	db       *sql.DB
	dialect  Dialect
	isUnique func(error) bool
}

// New wraps an open, migrated database. isUnique reports whether a driver
// error is a unique-constraint violation.
func New(db *sql.DB, dialect Dialect, isUnique func(error) bool) *Store {
	if isUnique == nil {
		isUnique = func(error) bool { return false }
	}
	return &Store{db: db, dialect: dialect, isUnique: isUnique}
}

// Ensure interfaces are met.
var _ domain.SessionRepository = (*Store)(nil)
var _ domain.UserRepository = (*Store)(nil)
var _ domain.AuthSessionRepository = (*Store)(nil)
var _ domain.SettingsRepository = (*Store)(nil)

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// rebind rewrites ? placeholders as $1, $2, ... for Postgres.
func (s *Store) rebind(query string) string {
	if s.dialect != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

func (s *Store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, s.rebind(query), args...)
}

func (s *Store) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, s.rebind(query), args...)
}

func (s *Store) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.db.QueryRowContext(ctx, s.rebind(query), args...)
}

// timeArg encodes t for a timestamp column.
func (s *Store) timeArg(t time.Time) any {
	if s.dialect == SQLite {
		return t.UTC().Format(textTimeLayout)
	}
	return t.UTC()
}

func (s *Store) nullTimeArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return s.timeArg(*t)
}

// scanTime reads a timestamp column stored either natively or as text.
type scanTime struct {
	Time  time.Time
	Valid bool
}

func (st *scanTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		st.Time, st.Valid = time.Time{}, false
		return nil
	case time.Time:
		st.Time, st.Valid = v, true
		return nil
	case string:
		return st.parse(v)
	case []byte:
		return st.parse(string(v))
	}
	return fmt.Errorf("scan time: unsupported type %T", src)
}

func (st *scanTime) parse(v string) error {
	for _, layout := range []string{textTimeLayout, time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00"} {
		if t, err := time.Parse(layout, v); err == nil {
			st.Time, st.Valid = t, true
			return nil
		}
	}
	return fmt.Errorf("scan time: unrecognized %q", v)
}

func (st scanTime) ptr() *time.Time {
	if !st.Valid {
		return nil
	}
	t := st.Time
	return &t
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
