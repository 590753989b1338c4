package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/meltforce/blockplan/internal/plan"
)

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.plans.List(r.Context(), r.URL.Query().Get("player"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if plans == nil {
		plans = []plan.WeekPlan{}
	}
	writeJSON(w, http.StatusOK, plans)
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	key, err := plan.ParseKey(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	p, err := s.plans.Get(r.Context(), key)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if p == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "week plan not found"})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// handlePutPlan stores a whole plan. The path id wins over ids in the body
// and totalRPE is always recomputed.
func (s *Server) handlePutPlan(w http.ResponseWriter, r *http.Request) {
	key, err := plan.ParseKey(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	var p plan.WeekPlan
	if err := decodeBody(r, &p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	p.PlayerID = key.PlayerID
	p.Week = key.Week
	saved, err := s.plans.Put(r.Context(), &p)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeletePlan(w http.ResponseWriter, r *http.Request) {
	key, err := plan.ParseKey(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	existed, err := s.plans.Delete(r.Context(), key)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !existed {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "week plan not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleLatestPlan(w http.ResponseWriter, r *http.Request) {
	p, err := s.plans.Latest(r.Context(), chi.URLParam(r, "playerID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if p == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "player has no week plan"})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleGetLog(w http.ResponseWriter, r *http.Request) {
	key, err := plan.ParseLogKey(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	l, err := s.logs.GetPlayerLog(r.Context(), key.String())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if l == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "player log not found"})
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// handlePutLog replaces the whole entry set of a log.
func (s *Server) handlePutLog(w http.ResponseWriter, r *http.Request) {
	key, err := plan.ParseLogKey(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	var body struct {
		Entries plan.Entries `json:"entries"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if body.Entries == nil {
		body.Entries = plan.Entries{}
	}
	saved, err := s.logs.UpsertPlayerLog(r.Context(), key.String(), body.Entries, time.Now().UTC())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}
