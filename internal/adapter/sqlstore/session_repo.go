package sqlstore

import (
	"context"
	"database/sql"

	"clockin/internal/domain"
)

const sessionColumns = "id, user_id, clock_in, clock_out, duration, day"

// AddSession inserts a work session and returns its id.
func (s *Store) AddSession(ctx context.Context, sess domain.Session) (int64, error) {
	var id int64
	err := s.queryRow(ctx,
		"INSERT INTO work_sessions(user_id, clock_in, clock_out, duration, day) VALUES(?, ?, ?, ?, ?) RETURNING id;",
		sess.UserID, s.timeArg(sess.ClockIn), s.nullTimeArg(sess.ClockOut), sess.Duration, sess.Date,
	).Scan(&id)
	return id, err
}

// GetSession retrieves a work session by id.
func (s *Store) GetSession(ctx context.Context, id int64) (*domain.Session, error) {
	row := s.queryRow(ctx, "SELECT "+sessionColumns+" FROM work_sessions WHERE id = ?;", id)
	sess, err := scanSession(row)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

// UpdateSession replaces a work session by id.
func (s *Store) UpdateSession(ctx context.Context, sess domain.Session) error {
	res, err := s.exec(ctx,
		"UPDATE work_sessions SET user_id = ?, clock_in = ?, clock_out = ?, duration = ?, day = ? WHERE id = ?;",
		sess.UserID, s.timeArg(sess.ClockIn), s.nullTimeArg(sess.ClockOut), sess.Duration, sess.Date, sess.ID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteSession removes a work session by id.
func (s *Store) DeleteSession(ctx context.Context, id int64) error {
	_, err := s.exec(ctx, "DELETE FROM work_sessions WHERE id = ?;", id)
	return err
}

// ListSessionsByUser returns a user's work sessions in id order.
func (s *Store) ListSessionsByUser(ctx context.Context, userID string, limit int) ([]domain.Session, error) {
	q := "SELECT " + sessionColumns + " FROM work_sessions WHERE user_id = ? ORDER BY id"
	args := []any{userID}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.query(ctx, q+";", args...)
	if err != nil {
		return nil, err
	}
	return collectSessions(rows)
}

// ListSessionsByDate returns a user's work sessions for one day label.
func (s *Store) ListSessionsByDate(ctx context.Context, userID, day string) ([]domain.Session, error) {
	rows, err := s.query(ctx,
		"SELECT "+sessionColumns+" FROM work_sessions WHERE user_id = ? AND day = ? ORDER BY id;", userID, day)
	if err != nil {
		return nil, err
	}
	return collectSessions(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(r rowScanner) (domain.Session, error) {
	var (
		sess domain.Session
		in   scanTime
		out  scanTime
	)
	if err := r.Scan(&sess.ID, &sess.UserID, &in, &out, &sess.Duration, &sess.Date); err != nil {
		return domain.Session{}, err
	}
	sess.ClockIn = in.Time
	sess.ClockOut = out.ptr()
	return sess, nil
}

func collectSessions(rows *sql.Rows) ([]domain.Session, error) {
	defer rows.Close() //nolint:errcheck

	out := make([]domain.Session, 0)
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}
