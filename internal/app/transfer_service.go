package app

import (
	"context"
	"log"
	"time"

	"clockin/internal/domain"
)

// ImportOptions selects the merge policy for an import.
type ImportOptions struct {
	// SkipDuplicates skips entries whose clockIn and clockOut both match an
	// existing session.
	SkipDuplicates bool `json:"skipDuplicates"`
	// Overwrite replaces an existing session with the same clockIn.
	// Otherwise such entries are skipped.
	Overwrite bool `json:"overwrite"`
	// RecomputeDurations replaces imported durations of closed sessions with
	// their billable seconds.
	RecomputeDurations bool `json:"recomputeDurations"`
}

// ImportFailure describes one entry that could not be imported.
type ImportFailure struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// ImportResult counts the outcome of an import run.
type ImportResult struct {
	Imported    int             `json:"imported"`
	Overwritten int             `json:"overwritten"`
	Skipped     int             `json:"skipped"`
	Errored     int             `json:"errored"`
	Failures    []ImportFailure `json:"failures,omitempty"`
}

// TransferService imports and exports session data.
type TransferService struct {
	ledger *LedgerService
	users  domain.UserRepository
	now    func() time.Time
}

// NewTransferService creates a TransferService.
func NewTransferService(ledger *LedgerService, users domain.UserRepository) *TransferService {
	return &TransferService{ledger: ledger, users: users, now: time.Now}
}

// WithClock replaces the time source used for export dates.
func (s *TransferService) WithClock(now func() time.Time) *TransferService {
	s.now = now
	return s
}

// Import merges a parsed batch into the actor's sessions. Bad entries are
// counted and skipped; only a failure to read the existing sessions aborts
// the run. The ledger lock is held for the whole batch.
func (s *TransferService) Import(ctx context.Context, actor Actor, batch domain.ImportBatch, opts ImportOptions) (ImportResult, error) {
	l := s.ledger
	l.mu.Lock()
	defer l.mu.Unlock()

	res := ImportResult{Skipped: batch.SkippedRows}
	existing, err := l.ListByUser(ctx, actor.UserID, 0)
	if err != nil {
		return res, err
	}

	loc := l.schedule.Loc()
	for i := range batch.Entries {
		sess, err := batch.Normalize(i, loc)
		if err != nil {
			res.fail(i, err)
			continue
		}
		sess.UserID = actor.UserID
		if opts.RecomputeDurations && sess.ClockOut != nil {
			sess.Duration = l.schedule.BillableSeconds(sess.ClockIn, *sess.ClockOut)
		}

		match := -1
		duplicate := false
		for j := range existing {
			if !existing[j].ClockIn.Equal(sess.ClockIn) {
				continue
			}
			if match < 0 {
				match = j
			}
			if sameClockOut(existing[j].ClockOut, sess.ClockOut) {
				duplicate = true
			}
		}

		switch {
		case opts.SkipDuplicates && duplicate:
			res.Skipped++
		case match >= 0 && !opts.Overwrite:
			res.Skipped++
		case match >= 0:
			sess.ID = existing[match].ID
			if err := l.update(ctx, sess); err != nil {
				res.fail(i, err)
				continue
			}
			sess.Date = l.schedule.Day(sess.ClockIn)
			existing[match] = sess
			res.Overwritten++
		default:
			id, err := l.add(ctx, sess)
			if err != nil {
				res.fail(i, err)
				continue
			}
			sess.ID = id
			sess.Date = l.schedule.Day(sess.ClockIn)
			existing = append(existing, sess)
			res.Imported++
		}
	}

	log.Printf("import %s for %s: imported=%d overwritten=%d skipped=%d errored=%d",
		batch.Format, actor.UserID, res.Imported, res.Overwritten, res.Skipped, res.Errored)
	if res.Errored > 0 {
		l.notify(ctx, domain.Warning("Import finished with errors"))
	} else {
		l.notify(ctx, domain.Success("Import finished"))
	}
	return res, nil
}

func (r *ImportResult) fail(i int, err error) {
	r.Errored++
	r.Failures = append(r.Failures, ImportFailure{Index: i, Reason: err.Error()})
}

func sameClockOut(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// Export returns the actor's profile and all sessions in clock-in order.
func (s *TransferService) Export(ctx context.Context, actor Actor) (domain.ExportDocument, error) {
	user, err := s.users.GetUser(ctx, actor.UserID)
	if err != nil {
		return domain.ExportDocument{}, domain.Storage("get user", err)
	}
	if user == nil {
		return domain.ExportDocument{}, ErrUserNotFound
	}
	items, err := s.ledger.ListByUser(ctx, actor.UserID, 0)
	if err != nil {
		return domain.ExportDocument{}, err
	}
	domain.SortByClockIn(items, false)
	return domain.ExportDocument{
		User:       domain.ExportUser{Email: user.Email, Name: user.Name, CreatedAt: user.CreatedAt},
		Sessions:   items,
		ExportDate: s.now(),
	}, nil
}
