package adapthttp

import (
	"net/http"
	"strconv"
)

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	rep, err := s.progress.Progress(r.Context(), actorFrom(r).UserID)
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleProgressCalendar(w http.ResponseWriter, r *http.Request) {
	cells, err := s.progress.Calendar(r.Context(), actorFrom(r).UserID, intQuery(r, "size", 0))
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cells": cells})
}

func (s *Server) handleProgressDaily(w http.ResponseWriter, r *http.Request) {
	points, err := s.progress.GetDaily(r.Context(), actorFrom(r).UserID, intQuery(r, "days", 30))
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"points": points})
}

func (s *Server) handleSettingsGet(w http.ResponseWriter, r *http.Request) {
	s.writeSettings(w, r)
}

func (s *Server) handleSettingsPut(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Theme     *string `json:"theme"`
		GoalDays  *int    `json:"goalDays"`
		StartDate *string `json:"startDate"`
	}
	if err := parseJSON(r, &req); err != nil {
		fail(w, err)
		return
	}

	if req.Theme != nil {
		if err := s.settings.SetTheme(r.Context(), *req.Theme); err != nil {
			fail(w, err)
			return
		}
	}
	if req.GoalDays != nil || req.StartDate != nil {
		goal, err := s.settings.Goal(r.Context())
		if err != nil {
			fail(w, err)
			return
		}
		days, start := goal.GoalBusinessDays, goal.StartDate.Format("2006-01-02")
		if req.GoalDays != nil {
			days = *req.GoalDays
		}
		if req.StartDate != nil {
			start = *req.StartDate
		}
		if err := s.settings.SetGoal(r.Context(), days, start); err != nil {
			fail(w, err)
			return
		}
	}
	s.writeSettings(w, r)
}

func (s *Server) writeSettings(w http.ResponseWriter, r *http.Request) {
	theme, err := s.settings.Theme(r.Context())
	if err != nil {
		fail(w, err)
		return
	}
	goal, err := s.settings.Goal(r.Context())
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"theme":     theme,
		"goalDays":  strconv.Itoa(goal.GoalBusinessDays),
		"startDate": goal.StartDate.Format("2006-01-02"),
	})
}
