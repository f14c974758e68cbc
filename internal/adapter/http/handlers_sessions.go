package adapthttp

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"clockin/internal/app"
	"clockin/internal/domain"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleClockIn(w http.ResponseWriter, r *http.Request) {
	sess, err := s.ledger.ClockIn(r.Context(), actorFrom(r))
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

func (s *Server) handleClockOut(w http.ResponseWriter, r *http.Request) {
	sess, err := s.ledger.ClockOut(r.Context(), actorFrom(r))
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleClockActive(w http.ResponseWriter, r *http.Request) {
	sess, err := s.ledger.FindActiveSession(r.Context(), actorFrom(r).UserID)
	if err != nil {
		fail(w, err)
		return
	}
	resp := map[string]any{"active": sess, "liveSeconds": 0}
	if sess != nil {
		resp["liveSeconds"] = s.ledger.LiveSeconds(*sess)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSessionsList(w http.ResponseWriter, r *http.Request) {
	items, err := s.ledger.ListByUser(r.Context(), actorFrom(r).UserID, intQuery(r, "limit", 0))
	if err != nil {
		fail(w, err)
		return
	}
	if r.URL.Query().Get("order") == "newest" {
		domain.SortByClockIn(items, true)
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleSessionsAdd(w http.ResponseWriter, r *http.Request) {
	var req app.ManualEntry
	if err := parseJSON(r, &req); err != nil {
		fail(w, err)
		return
	}
	sess, err := s.ledger.AddManual(r.Context(), actorFrom(r), req)
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, &domain.ValidationError{Field: "id", Reason: "must be a positive integer"}
	}
	return id, nil
}

func (s *Server) handleSessionRetime(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, err)
		return
	}
	var req struct {
		ClockIn  time.Time  `json:"clockIn"`
		ClockOut *time.Time `json:"clockOut"`
	}
	if err := parseJSON(r, &req); err != nil {
		fail(w, err)
		return
	}
	if req.ClockIn.IsZero() {
		fail(w, &domain.ValidationError{Field: "clockIn", Reason: "required"})
		return
	}
	sess, err := s.ledger.Retime(r.Context(), actorFrom(r), id, req.ClockIn, req.ClockOut)
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// owned reports whether id belongs to the caller. Unknown ids report
// exists=false without error.
func (s *Server) owned(r *http.Request, id int64) (exists, mine bool, err error) {
	sess, err := s.ledger.GetSession(r.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		return false, false, nil
	}
	if err != nil {
		return false, false, err
	}
	return true, sess.UserID == actorFrom(r).UserID, nil
}

func (s *Server) handleSessionDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, err)
		return
	}
	exists, mine, err := s.owned(r, id)
	if err != nil {
		fail(w, err)
		return
	}
	if exists && !mine {
		fail(w, &domain.NotFoundError{Kind: "session", ID: strconv.FormatInt(id, 10)})
		return
	}
	if exists {
		if err := s.ledger.RemoveSession(r.Context(), id); err != nil {
			fail(w, err)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSessionsBulkDelete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []int64 `json:"ids"`
	}
	if err := parseJSON(r, &req); err != nil {
		fail(w, err)
		return
	}

	failed := make([]int64, 0)
	ids := make([]int64, 0, len(req.IDs))
	for _, id := range req.IDs {
		exists, mine, err := s.owned(r, id)
		switch {
		case err != nil || (exists && !mine):
			failed = append(failed, id)
		case exists:
			ids = append(ids, id)
		}
	}

	removed, err := s.ledger.RemoveSessions(r.Context(), ids)
	var bulk *app.BulkDeleteError
	if errors.As(err, &bulk) {
		for id := range bulk.Failed {
			failed = append(failed, id)
		}
	} else if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"removed": removed, "failed": failed})
}

func (s *Server) handleSessionsDays(w http.ResponseWriter, r *http.Request) {
	rows, err := s.ledger.DaySummaries(r.Context(), actorFrom(r).UserID, intQuery(r, "limit", 0))
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": rows})
}

func (s *Server) handleSessionsToday(w http.ResponseWriter, r *http.Request) {
	sum, err := s.ledger.TodaySummary(r.Context(), actorFrom(r))
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}
