package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"clockin/internal/app"
	"clockin/internal/domain"
)

func exportBatch(entries ...domain.ImportEntry) domain.ImportBatch {
	return domain.ImportBatch{Format: domain.FormatJSONObject, Entries: entries}
}

func entry(in, out, dur string) domain.ImportEntry {
	return domain.ImportEntry{UserID: "someone@else", ClockIn: in, ClockOut: out, Duration: dur}
}

func newTransfer(repo *fakeSessionRepo) *app.TransferService {
	ledger, _ := newLedger(repo, at("2025-06-10", "12:00"))
	users := &mockUserRepo{
		getUserFn: func(_ context.Context, email string) (*domain.User, error) {
			return &domain.User{Email: email, Name: "Ada", Password: "secret"}, nil
		},
	}
	return app.NewTransferService(ledger, users).WithClock(fixedClock(at("2025-06-10", "12:00")))
}

func TestImport_SkipDuplicatesIsIdempotent(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := newTransfer(repo)
	batch := exportBatch(
		entry("2025-06-03T09:00:00Z", "2025-06-03T10:00:00Z", "3600"),
		entry("2025-06-04T09:00:00Z", "", "0"),
	)
	opts := app.ImportOptions{SkipDuplicates: true}

	first, err := svc.Import(context.Background(), app.Actor{UserID: user}, batch, opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.Imported != 2 {
		t.Errorf("first run imported %d; want 2", first.Imported)
	}
	second, err := svc.Import(context.Background(), app.Actor{UserID: user}, batch, opts)
	if err != nil {
		t.Fatal(err)
	}
	if second.Imported != 0 || second.Skipped != 2 {
		t.Errorf("second run = %+v; want 0 imported, 2 skipped", second)
	}
	for _, s := range repo.items {
		if s.UserID != user {
			t.Errorf("session re-keyed to %q; want %q", s.UserID, user)
		}
	}
}

func TestImport_OverwriteSameClockIn(t *testing.T) {
	repo := newFakeSessionRepo(domain.Session{
		ID: 7, UserID: user, ClockIn: at("2025-06-03", "09:00"), ClockOut: ptr(at("2025-06-03", "10:00")), Duration: 3600, Date: "2025-06-03",
	})
	svc := newTransfer(repo)
	batch := exportBatch(entry("2025-06-03T09:00:00Z", "2025-06-03T11:00:00Z", "5000"))

	res, err := svc.Import(context.Background(), app.Actor{UserID: user}, batch, app.ImportOptions{SkipDuplicates: true, Overwrite: true})
	if err != nil {
		t.Fatal(err)
	}
	if res.Overwritten != 1 || res.Imported != 0 {
		t.Errorf("result = %+v", res)
	}
	if len(repo.items) != 1 {
		t.Fatalf("%d sessions; want exactly one", len(repo.items))
	}
	if got := repo.items[7]; got.Duration != 5000 {
		t.Errorf("Duration = %d; want imported 5000", got.Duration)
	}
}

func TestImport_SameClockInWithoutOverwriteSkips(t *testing.T) {
	repo := newFakeSessionRepo(domain.Session{
		ID: 1, UserID: user, ClockIn: at("2025-06-03", "09:00"), Duration: 0, Date: "2025-06-03",
	})
	svc := newTransfer(repo)
	batch := exportBatch(entry("2025-06-03T09:00:00Z", "2025-06-03T11:00:00Z", "7200"))

	res, _ := svc.Import(context.Background(), app.Actor{UserID: user}, batch, app.ImportOptions{})
	if res.Skipped != 1 || len(repo.items) != 1 {
		t.Errorf("result = %+v, %d sessions", res, len(repo.items))
	}
}

func TestImport_SnapshotTracksEntriesWithinBatch(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := newTransfer(repo)
	batch := exportBatch(
		entry("2025-06-03T09:00:00Z", "2025-06-03T10:00:00Z", "3600"),
		entry("2025-06-03T09:00:00Z", "2025-06-03T10:00:00Z", "3600"),
	)

	res, _ := svc.Import(context.Background(), app.Actor{UserID: user}, batch, app.ImportOptions{SkipDuplicates: true})
	if res.Imported != 1 || res.Skipped != 1 {
		t.Errorf("result = %+v", res)
	}
}

func TestImport_CountsErrorsAndContinues(t *testing.T) {
	repo := newFakeSessionRepo()
	calls := 0
	repo.addFn = func(_ context.Context, s domain.Session) (int64, error) {
		calls++
		if calls == 2 {
			return 0, errBoom
		}
		return int64(calls), nil
	}
	svc := newTransfer(repo)
	batch := domain.ImportBatch{
		Format:      domain.FormatJSONArray,
		SkippedRows: 0,
		Entries: []domain.ImportEntry{
			entry("2025-06-03T09:00:00Z", "", ""),
			{ClockIn: "2025-06-03T10:00:00Z"},
			entry("garbage", "", ""),
			entry("2025-06-03T11:00:00Z", "", ""),
			entry("2025-06-03T13:00:00Z", "2025-06-03T12:00:00Z", ""),
			entry("2025-06-03T14:00:00Z", "", ""),
		},
	}

	res, err := svc.Import(context.Background(), app.Actor{UserID: user}, batch, app.ImportOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Imported != 2 || res.Errored != 4 || res.Skipped != 0 || res.Overwritten != 0 {
		t.Errorf("result = %+v", res)
	}
	if len(res.Failures) != 4 || res.Failures[0].Index != 1 {
		t.Errorf("failures = %+v", res.Failures)
	}
}

func TestImport_RecomputeDurations(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := newTransfer(repo)
	batch := domain.ImportBatch{Format: domain.FormatCSV, SkippedRows: 2, Entries: []domain.ImportEntry{
		{ClockIn: "2025-06-03T07:00:00", ClockOut: "2025-06-03T09:00:00", Duration: "7200"},
	}}

	res, err := svc.Import(context.Background(), app.Actor{UserID: user}, batch, app.ImportOptions{RecomputeDurations: true})
	if err != nil {
		t.Fatal(err)
	}
	if res.Imported != 1 || res.Skipped != 2 {
		t.Errorf("result = %+v", res)
	}
	for _, s := range repo.items {
		if s.Duration != 3600 {
			t.Errorf("Duration = %d; want recomputed 3600", s.Duration)
		}
	}
}

func TestImport_ListFailureAborts(t *testing.T) {
	repo := newFakeSessionRepo()
	repo.listFn = func(context.Context, string, int) ([]domain.Session, error) { return nil, errBoom }
	svc := newTransfer(repo)

	_, err := svc.Import(context.Background(), app.Actor{UserID: user}, exportBatch(entry("2025-06-03T09:00:00Z", "", "")), app.ImportOptions{})
	if !errors.Is(err, domain.ErrStorage) {
		t.Errorf("expected storage error, got %v", err)
	}
}

func TestExport(t *testing.T) {
	repo := newFakeSessionRepo(
		domain.Session{ID: 1, UserID: user, ClockIn: at("2025-06-04", "09:00"), Date: "2025-06-04"},
		domain.Session{ID: 2, UserID: user, ClockIn: at("2025-06-03", "09:00"), Date: "2025-06-03"},
		domain.Session{ID: 3, UserID: "other@example.com", ClockIn: at("2025-06-03", "09:00")},
	)
	doc, err := newTransfer(repo).Export(context.Background(), app.Actor{UserID: user})
	if err != nil {
		t.Fatal(err)
	}
	if doc.User.Email != user || len(doc.Sessions) != 2 || doc.Sessions[0].ID != 2 {
		t.Errorf("doc = %+v", doc)
	}
	if !doc.ExportDate.Equal(at("2025-06-10", "12:00")) {
		t.Errorf("ExportDate = %v", doc.ExportDate)
	}
}

func TestExport_UnknownUser(t *testing.T) {
	ledger, _ := newLedger(newFakeSessionRepo(), time.Now())
	svc := app.NewTransferService(ledger, &mockUserRepo{})
	if _, err := svc.Export(context.Background(), app.Actor{UserID: user}); !errors.Is(err, app.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}
