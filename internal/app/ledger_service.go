package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"clockin/internal/domain"
)

var (
	// ErrActiveSessionExists is returned by ClockIn when the user is already clocked in.
	ErrActiveSessionExists = errors.New("already clocked in")
	// ErrNoActiveSession is returned by ClockOut when the user is not clocked in.
	ErrNoActiveSession = errors.New("no active session")
)

// Actor identifies the user an operation runs on behalf of.
type Actor struct {
	UserID string
}

// BulkDeleteError lists the ids a bulk removal could not delete.
type BulkDeleteError struct {
	Failed map[int64]error
}

func (e *BulkDeleteError) Error() string {
	ids := make([]int64, 0, len(e.Failed))
	for id := range e.Failed {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatInt(id, 10))
	}
	return fmt.Sprintf("failed to delete %d session(s): %s", len(ids), strings.Join(parts, ", "))
}

func (e *BulkDeleteError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failed))
	for _, err := range e.Failed {
		errs = append(errs, err)
	}
	return errs
}

// LedgerService owns session records. Every mutation runs under one lock so
// a read-modify-write never interleaves with another.
type LedgerService struct {
	mu       sync.Mutex
	repo     domain.SessionRepository
	schedule domain.Schedule
	notifier domain.Notifier
	now      func() time.Time
}

// NewLedgerService creates a LedgerService. notifier may be nil.
func NewLedgerService(repo domain.SessionRepository, schedule domain.Schedule, notifier domain.Notifier) *LedgerService {
	return &LedgerService{repo: repo, schedule: schedule, notifier: notifier, now: time.Now}
}

// WithClock replaces the time source.
func (s *LedgerService) WithClock(now func() time.Time) *LedgerService {
	s.now = now
	return s
}

// Schedule returns the business-hours schedule durations are computed with.
func (s *LedgerService) Schedule() domain.Schedule {
	return s.schedule
}

func (s *LedgerService) notify(ctx context.Context, n domain.Notice) {
	if s.notifier != nil {
		s.notifier.Notify(ctx, n)
	}
}

// AddSession stores a session and returns its id. Date is derived from ClockIn.
func (s *LedgerService) AddSession(ctx context.Context, sess domain.Session) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.add(ctx, sess)
}

func (s *LedgerService) add(ctx context.Context, sess domain.Session) (int64, error) {
	if err := s.check(sess); err != nil {
		return 0, err
	}
	sess.Date = s.schedule.Day(sess.ClockIn)
	id, err := s.repo.AddSession(ctx, sess)
	if err != nil {
		return 0, domain.Storage("add session", err)
	}
	return id, nil
}

// UpdateSession replaces the stored session with the same id. An unknown id
// is a NotFoundError; nothing is created.
func (s *LedgerService) UpdateSession(ctx context.Context, sess domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.update(ctx, sess)
}

func (s *LedgerService) update(ctx context.Context, sess domain.Session) error {
	if err := s.check(sess); err != nil {
		return err
	}
	existing, err := s.repo.GetSession(ctx, sess.ID)
	if err != nil {
		return domain.Storage("get session", err)
	}
	if existing == nil {
		return &domain.NotFoundError{Kind: "session", ID: strconv.FormatInt(sess.ID, 10)}
	}
	sess.Date = s.schedule.Day(sess.ClockIn)
	if err := s.repo.UpdateSession(ctx, sess); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &domain.NotFoundError{Kind: "session", ID: strconv.FormatInt(sess.ID, 10)}
		}
		return domain.Storage("update session", err)
	}
	return nil
}

func (s *LedgerService) check(sess domain.Session) error {
	if strings.TrimSpace(sess.UserID) == "" {
		return &domain.ValidationError{Field: "userId", Reason: "required"}
	}
	if sess.ClockIn.IsZero() {
		return &domain.ValidationError{Field: "clockIn", Reason: "required"}
	}
	if sess.ClockOut != nil && sess.ClockOut.Before(sess.ClockIn) {
		return &domain.ValidationError{Field: "clockOut", Reason: "must not be before clockIn"}
	}
	if sess.Duration < 0 {
		return &domain.ValidationError{Field: "duration", Reason: "must not be negative"}
	}
	return nil
}

// RemoveSession deletes a session. Removing an unknown id succeeds.
func (s *LedgerService) RemoveSession(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.repo.DeleteSession(ctx, id); err != nil {
		return domain.Storage("delete session", err)
	}
	return nil
}

// RemoveSessions deletes ids one at a time and keeps going past failures.
// It returns the number removed and a *BulkDeleteError naming the ids that
// could not be deleted.
func (s *LedgerService) RemoveSessions(ctx context.Context, ids []int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	var failed map[int64]error
	for _, id := range ids {
		if err := s.repo.DeleteSession(ctx, id); err != nil {
			if failed == nil {
				failed = make(map[int64]error)
			}
			failed[id] = domain.Storage("delete session", err)
			continue
		}
		removed++
	}
	if failed != nil {
		return removed, &BulkDeleteError{Failed: failed}
	}
	return removed, nil
}

// GetSession returns a session or a NotFoundError.
func (s *LedgerService) GetSession(ctx context.Context, id int64) (*domain.Session, error) {
	sess, err := s.repo.GetSession(ctx, id)
	if err != nil {
		return nil, domain.Storage("get session", err)
	}
	if sess == nil {
		return nil, &domain.NotFoundError{Kind: "session", ID: strconv.FormatInt(id, 10)}
	}
	return sess, nil
}

// ListByUser returns a user's sessions in storage order. limit <= 0 means all.
func (s *LedgerService) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Session, error) {
	items, err := s.repo.ListSessionsByUser(ctx, userID, limit)
	if err != nil {
		return nil, domain.Storage("list sessions", err)
	}
	return items, nil
}

// GroupByCalendarDay groups sessions by day label, each group in clock-in order.
func (s *LedgerService) GroupByCalendarDay(sessions []domain.Session) map[string][]domain.Session {
	return domain.GroupByDay(sessions)
}

// DaySummaries returns up to limit day rows for a user, newest day first.
func (s *LedgerService) DaySummaries(ctx context.Context, userID string, limit int) ([]domain.DaySummary, error) {
	items, err := s.ListByUser(ctx, userID, 0)
	if err != nil {
		return nil, err
	}
	rows := domain.DaySummaries(items)
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

// FindActiveSession returns the first open session in storage order, or nil.
func (s *LedgerService) FindActiveSession(ctx context.Context, userID string) (*domain.Session, error) {
	return s.findActive(ctx, userID)
}

func (s *LedgerService) findActive(ctx context.Context, userID string) (*domain.Session, error) {
	items, err := s.ListByUser(ctx, userID, 0)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].Active() {
			return &items[i], nil
		}
	}
	return nil, nil
}

// ClockIn opens a session at the current time. Clocking in outside business
// hours is allowed and only produces a warning.
func (s *LedgerService) ClockIn(ctx context.Context, actor Actor) (domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	active, err := s.findActive(ctx, actor.UserID)
	if err != nil {
		return domain.Session{}, err
	}
	if active != nil {
		return domain.Session{}, ErrActiveSessionExists
	}

	now := s.now()
	if !s.schedule.IsWithinBusinessHours(now) {
		s.notify(ctx, domain.Warning("Clocking in outside business hours; only time inside business hours will count."))
	}
	sess := domain.Session{UserID: actor.UserID, ClockIn: now}
	id, err := s.add(ctx, sess)
	if err != nil {
		return domain.Session{}, err
	}
	sess.ID = id
	sess.Date = s.schedule.Day(now)
	s.notify(ctx, domain.Success("Clocked in at "+now.In(s.schedule.Loc()).Format("15:04")))
	return sess, nil
}

// ClockOut closes the active session with its billable duration.
func (s *LedgerService) ClockOut(ctx context.Context, actor Actor) (domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	active, err := s.findActive(ctx, actor.UserID)
	if err != nil {
		return domain.Session{}, err
	}
	if active == nil {
		return domain.Session{}, ErrNoActiveSession
	}

	now := s.now()
	if now.Before(active.ClockIn) {
		now = active.ClockIn
	}
	sess := *active
	sess.ClockOut = &now
	sess.Duration = s.schedule.BillableSeconds(sess.ClockIn, now)
	if err := s.update(ctx, sess); err != nil {
		return domain.Session{}, err
	}
	sess.Date = s.schedule.Day(sess.ClockIn)
	if !s.schedule.IsWithinBusinessHours(now) {
		s.notify(ctx, domain.Warning("Clocked out outside business hours; the duration was adjusted."))
	}
	s.notify(ctx, domain.Success("Clocked out"))
	return sess, nil
}

// ManualEntry is a session typed in by hand: a day label and HH:MM times in
// the schedule's location. ClockOut may be empty for an open session.
type ManualEntry struct {
	Day      string `json:"day"`
	ClockIn  string `json:"clockIn"`
	ClockOut string `json:"clockOut"`
}

// AddManual records a hand-entered session.
func (s *LedgerService) AddManual(ctx context.Context, actor Actor, e ManualEntry) (domain.Session, error) {
	day, err := domain.ParseDayLabel(e.Day)
	if err != nil {
		return domain.Session{}, err
	}
	in, err := s.parseClock(day, e.ClockIn, "clockIn")
	if err != nil {
		return domain.Session{}, err
	}
	sess := domain.Session{UserID: actor.UserID, ClockIn: in}
	if strings.TrimSpace(e.ClockOut) != "" {
		out, err := s.parseClock(day, e.ClockOut, "clockOut")
		if err != nil {
			return domain.Session{}, err
		}
		if !out.After(in) {
			return domain.Session{}, &domain.ValidationError{Field: "clockOut", Reason: "must be after clockIn"}
		}
		sess.ClockOut = &out
		sess.Duration = s.schedule.BillableSeconds(in, out)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id, err := s.add(ctx, sess)
	if err != nil {
		return domain.Session{}, err
	}
	sess.ID = id
	sess.Date = day
	s.warnOutside(ctx, sess)
	s.notify(ctx, domain.Success("Session added"))
	return sess, nil
}

// Retime changes a session's times and recomputes its duration. Sessions
// owned by another user are reported as not found.
func (s *LedgerService) Retime(ctx context.Context, actor Actor, id int64, clockIn time.Time, clockOut *time.Time) (domain.Session, error) {
	if clockOut != nil && !clockOut.After(clockIn) {
		return domain.Session{}, &domain.ValidationError{Field: "clockOut", Reason: "must be after clockIn"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	existing, err := s.repo.GetSession(ctx, id)
	if err != nil {
		return domain.Session{}, domain.Storage("get session", err)
	}
	if existing == nil || existing.UserID != actor.UserID {
		return domain.Session{}, &domain.NotFoundError{Kind: "session", ID: strconv.FormatInt(id, 10)}
	}
	sess := *existing
	sess.ClockIn = clockIn
	sess.ClockOut = clockOut
	sess.Duration = 0
	if clockOut != nil {
		sess.Duration = s.schedule.BillableSeconds(clockIn, *clockOut)
	}
	if err := s.update(ctx, sess); err != nil {
		return domain.Session{}, err
	}
	sess.Date = s.schedule.Day(clockIn)
	s.warnOutside(ctx, sess)
	s.notify(ctx, domain.Success("Session updated"))
	return sess, nil
}

func (s *LedgerService) warnOutside(ctx context.Context, sess domain.Session) {
	if !s.schedule.IsWithinBusinessHours(sess.ClockIn) ||
		(sess.ClockOut != nil && !s.schedule.IsWithinBusinessHours(*sess.ClockOut)) {
		s.notify(ctx, domain.Warning("Session extends outside business hours; only time inside business hours counts."))
	}
}

func (s *LedgerService) parseClock(day, hhmm, field string) (time.Time, error) {
	t, err := time.ParseInLocation(domain.DayLayout+" 15:04", day+" "+strings.TrimSpace(hhmm), s.schedule.Loc())
	if err != nil {
		return time.Time{}, &domain.ValidationError{Field: field, Reason: "expected HH:MM"}
	}
	return t, nil
}

// TodaySummary is the running total for the current day.
type TodaySummary struct {
	Day          string          `json:"day"`
	TotalSeconds int64           `json:"totalSeconds"`
	Sessions     int             `json:"sessions"`
	Active       *domain.Session `json:"active"`
	LiveSeconds  int64           `json:"liveSeconds"`
}

// TodaySummary totals today's closed sessions and reports the live
// billable seconds of an open one.
func (s *LedgerService) TodaySummary(ctx context.Context, actor Actor) (TodaySummary, error) {
	day := s.schedule.Day(s.now())
	items, err := s.repo.ListSessionsByDate(ctx, actor.UserID, day)
	if err != nil {
		return TodaySummary{}, domain.Storage("list sessions by date", err)
	}
	sum := TodaySummary{Day: day, Sessions: len(items)}
	for i := range items {
		sum.TotalSeconds += items[i].Duration
		if items[i].Active() && sum.Active == nil {
			sum.Active = &items[i]
			sum.LiveSeconds = s.LiveSeconds(items[i])
		}
	}
	return sum, nil
}

// LiveSeconds returns the billable seconds of sess as of now for an open
// session, or its stored duration once closed.
func (s *LedgerService) LiveSeconds(sess domain.Session) int64 {
	if !sess.Active() {
		return sess.Duration
	}
	return s.schedule.BillableSeconds(sess.ClockIn, s.now())
}
