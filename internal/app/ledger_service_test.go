package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"clockin/internal/app"
	"clockin/internal/domain"
)

const user = "ada@example.com"

func newLedger(repo domain.SessionRepository, now time.Time) (*app.LedgerService, *recordingNotifier) {
	n := &recordingNotifier{}
	return app.NewLedgerService(repo, utcSchedule(), n).WithClock(fixedClock(now)), n
}

func TestLedger_AddSessionDerivesDate(t *testing.T) {
	repo := newFakeSessionRepo()
	l, _ := newLedger(repo, at("2025-06-03", "09:00"))

	id, err := l.AddSession(context.Background(), domain.Session{UserID: user, ClockIn: at("2025-06-03", "23:30"), Date: "bogus"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := repo.GetSession(context.Background(), id)
	if got.Date != "2025-06-03" {
		t.Errorf("Date = %q; want 2025-06-03", got.Date)
	}
}

func TestLedger_AddSessionStorageError(t *testing.T) {
	repo := newFakeSessionRepo()
	repo.addFn = func(context.Context, domain.Session) (int64, error) { return 0, errBoom }
	l, _ := newLedger(repo, time.Now())

	_, err := l.AddSession(context.Background(), domain.Session{UserID: user, ClockIn: time.Now()})
	var se *domain.StorageError
	if !errors.As(err, &se) || !errors.Is(err, errBoom) {
		t.Errorf("expected StorageError wrapping boom, got %v", err)
	}
}

func TestLedger_AddSessionValidation(t *testing.T) {
	l, _ := newLedger(newFakeSessionRepo(), time.Now())
	_, err := l.AddSession(context.Background(), domain.Session{ClockIn: time.Now()})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestLedger_UpdateUnknownID(t *testing.T) {
	repo := newFakeSessionRepo()
	l, _ := newLedger(repo, time.Now())

	err := l.UpdateSession(context.Background(), domain.Session{ID: 42, UserID: user, ClockIn: time.Now()})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(repo.items) != 0 {
		t.Error("update must not create a session")
	}
}

func TestLedger_RemoveSessionIsIdempotent(t *testing.T) {
	repo := newFakeSessionRepo(domain.Session{ID: 1, UserID: user})
	l, _ := newLedger(repo, time.Now())

	for i := 0; i < 2; i++ {
		if err := l.RemoveSession(context.Background(), 1); err != nil {
			t.Fatalf("remove #%d: %v", i+1, err)
		}
	}
}

func TestLedger_RemoveSessionsReportsFailures(t *testing.T) {
	repo := newFakeSessionRepo(
		domain.Session{ID: 1, UserID: user},
		domain.Session{ID: 2, UserID: user},
		domain.Session{ID: 3, UserID: user},
	)
	repo.deleteFn = func(_ context.Context, id int64) error {
		if id == 2 {
			return errBoom
		}
		repo.mu.Lock()
		defer repo.mu.Unlock()
		delete(repo.items, id)
		return nil
	}
	l, _ := newLedger(repo, time.Now())

	removed, err := l.RemoveSessions(context.Background(), []int64{1, 2, 3})
	if removed != 2 {
		t.Errorf("removed = %d; want 2", removed)
	}
	var bulk *app.BulkDeleteError
	if !errors.As(err, &bulk) {
		t.Fatalf("expected BulkDeleteError, got %v", err)
	}
	if _, ok := bulk.Failed[2]; !ok || len(bulk.Failed) != 1 {
		t.Errorf("Failed = %v; want only id 2", bulk.Failed)
	}
	if !errors.Is(err, domain.ErrStorage) {
		t.Error("expected failures to be storage errors")
	}
	if _, ok := repo.items[2]; !ok {
		t.Error("session 2 should remain")
	}
	if len(repo.items) != 1 {
		t.Errorf("%d sessions left; want 1", len(repo.items))
	}
}

func TestLedger_FindActiveSessionFirstInStorageOrder(t *testing.T) {
	repo := newFakeSessionRepo(
		domain.Session{ID: 1, UserID: user, ClockIn: at("2025-06-03", "09:00"), ClockOut: ptr(at("2025-06-03", "10:00"))},
		domain.Session{ID: 2, UserID: user, ClockIn: at("2025-06-04", "09:00")},
		domain.Session{ID: 3, UserID: user, ClockIn: at("2025-06-02", "09:00")},
	)
	l, _ := newLedger(repo, time.Now())

	got, err := l.FindActiveSession(context.Background(), user)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.ID != 2 {
		t.Errorf("got %+v; want session 2", got)
	}

	none, err := l.FindActiveSession(context.Background(), "other@example.com")
	if err != nil || none != nil {
		t.Errorf("got %+v, %v; want nil, nil", none, err)
	}
}

func TestLedger_ClockInOut(t *testing.T) {
	repo := newFakeSessionRepo()
	l, n := newLedger(repo, at("2025-06-03", "07:00"))
	ctx := context.Background()
	actor := app.Actor{UserID: user}

	in, err := l.ClockIn(ctx, actor)
	if err != nil {
		t.Fatalf("clock in: %v", err)
	}
	if n.count(domain.SeverityWarning) != 1 {
		t.Error("expected an outside-hours warning")
	}
	if _, err := l.ClockIn(ctx, actor); !errors.Is(err, app.ErrActiveSessionExists) {
		t.Errorf("second clock in: got %v", err)
	}

	l.WithClock(fixedClock(at("2025-06-03", "13:30")))
	out, err := l.ClockOut(ctx, actor)
	if err != nil {
		t.Fatalf("clock out: %v", err)
	}
	if out.ID != in.ID {
		t.Errorf("closed session %d; want %d", out.ID, in.ID)
	}
	if out.Duration != 4*3600+1800 {
		t.Errorf("Duration = %d; want %d", out.Duration, 4*3600+1800)
	}
	if _, err := l.ClockOut(ctx, actor); !errors.Is(err, app.ErrNoActiveSession) {
		t.Errorf("second clock out: got %v", err)
	}
}

func TestLedger_AddManual(t *testing.T) {
	repo := newFakeSessionRepo()
	l, n := newLedger(repo, time.Now())
	actor := app.Actor{UserID: user}

	s, err := l.AddManual(context.Background(), actor, app.ManualEntry{Day: "2025-06-03", ClockIn: "11:30", ClockOut: "13:30"})
	if err != nil {
		t.Fatal(err)
	}
	if s.Duration != 3600 || s.Date != "2025-06-03" {
		t.Errorf("got %+v", s)
	}
	if n.count(domain.SeverityWarning) != 0 {
		t.Error("unexpected warning for a session inside business hours")
	}

	s, err = l.AddManual(context.Background(), actor, app.ManualEntry{Day: "Tue Jun 03 2025", ClockIn: "11:30", ClockOut: "12:30"})
	if err != nil {
		t.Fatal(err)
	}
	if s.Duration != 1800 {
		t.Errorf("Duration = %d; want 1800", s.Duration)
	}
	if n.count(domain.SeverityWarning) != 1 {
		t.Error("expected a warning for clock-out in the lunch gap")
	}

	_, err = l.AddManual(context.Background(), actor, app.ManualEntry{Day: "2025-06-03", ClockIn: "10:00", ClockOut: "09:00"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
	_, err = l.AddManual(context.Background(), actor, app.ManualEntry{Day: "2025-06-03", ClockIn: "9am"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestLedger_RetimeRecomputesAndChecksOwner(t *testing.T) {
	repo := newFakeSessionRepo(domain.Session{ID: 1, UserID: user, ClockIn: at("2025-06-03", "09:00"), Date: "2025-06-03"})
	l, _ := newLedger(repo, time.Now())
	ctx := context.Background()

	s, err := l.Retime(ctx, app.Actor{UserID: user}, 1, at("2025-06-04", "07:00"), ptr(at("2025-06-04", "09:00")))
	if err != nil {
		t.Fatal(err)
	}
	if s.Duration != 3600 || s.Date != "2025-06-04" {
		t.Errorf("got %+v", s)
	}

	_, err = l.Retime(ctx, app.Actor{UserID: "eve@example.com"}, 1, at("2025-06-04", "09:00"), nil)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound for foreign session, got %v", err)
	}
}

func TestLedger_DaySummariesAndToday(t *testing.T) {
	repo := newFakeSessionRepo(
		domain.Session{ID: 1, UserID: user, ClockIn: at("2025-06-03", "09:00"), ClockOut: ptr(at("2025-06-03", "09:30")), Duration: 1800, Date: "2025-06-03"},
		domain.Session{ID: 2, UserID: user, ClockIn: at("2025-06-03", "10:00"), Duration: 3600, Date: "2025-06-03"},
		domain.Session{ID: 3, UserID: user, ClockIn: at("2025-06-02", "10:00"), ClockOut: ptr(at("2025-06-02", "11:00")), Duration: 3600, Date: "2025-06-02"},
	)
	l, _ := newLedger(repo, at("2025-06-03", "11:00"))
	ctx := context.Background()

	rows, err := l.DaySummaries(ctx, user, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].TotalSeconds != 5400 || !rows[0].HasActive {
		t.Errorf("rows = %+v", rows)
	}

	today, err := l.TodaySummary(ctx, app.Actor{UserID: user})
	if err != nil {
		t.Fatal(err)
	}
	if today.Sessions != 2 || today.Active == nil || today.Active.ID != 2 {
		t.Errorf("today = %+v", today)
	}
	if today.LiveSeconds != 3600 {
		t.Errorf("LiveSeconds = %d; want 3600", today.LiveSeconds)
	}
}

func TestLedger_ConcurrentClockInCreatesOneSession(t *testing.T) {
	repo := newFakeSessionRepo()
	l, _ := newLedger(repo, at("2025-06-03", "09:00"))
	actor := app.Actor{UserID: user}

	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			_, err := l.ClockIn(context.Background(), actor)
			errs <- err
		}()
	}
	ok := 0
	for i := 0; i < 8; i++ {
		if err := <-errs; err == nil {
			ok++
		} else if !errors.Is(err, app.ErrActiveSessionExists) {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if ok != 1 {
		t.Errorf("%d clock-ins succeeded; want 1", ok)
	}
}
