package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/meltforce/blockplan/internal/plan"
	"github.com/meltforce/blockplan/internal/planner"
	"github.com/meltforce/blockplan/internal/session"
)

// execution is one open execution view: a saved plan and the player's session.
type execution struct {
	plan    *plan.WeekPlan
	session *session.Session
}

type sessionState struct {
	ID     string          `json:"id"`
	Plan   *plan.WeekPlan  `json:"plan"`
	Badges []session.Badge `json:"badges"`
	Detail *session.Detail `json:"detail,omitempty"`
}

func sessionStateOf(id string, e *execution) sessionState {
	st := sessionState{ID: id, Plan: e.plan, Badges: e.session.Badges()}
	if d, err := e.session.Detail(); err == nil {
		st.Detail = d
	}
	return st
}

func (s *Server) execution(r *http.Request) (string, *execution, error) {
	id := chi.URLParam(r, "id")
	e, ok := s.sessions.get(id)
	if !ok {
		return id, nil, errNotOpen
	}
	return id, e, nil
}

// handleOpenSession opens a player's saved week for execution. Without a
// week the player's latest plan is used.
func (s *Server) handleOpenSession(w http.ResponseWriter, r *http.Request) {
	var body plan.Key
	if err := decodeBody(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	p, err := s.findPlan(r.Context(), body)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if p == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "week plan not found"})
		return
	}
	e := &execution{plan: p}
	e.session = session.New(p.PlayerID, s.catalog, s.logs, s.log.With("player", p.PlayerID), session.Options{TickInterval: s.tick})
	id := s.sessions.add(e)
	writeJSON(w, http.StatusCreated, sessionStateOf(id, e))
}

func (s *Server) findPlan(ctx context.Context, key plan.Key) (*plan.WeekPlan, error) {
	if key.Week == "" {
		if key.PlayerID == "" {
			return nil, fmt.Errorf("%w: player id is required", plan.ErrInvalidKey)
		}
		return s.plans.Latest(ctx, key.PlayerID)
	}
	return s.plans.Get(ctx, key)
}

func (s *Server) handleSessionState(w http.ResponseWriter, r *http.Request) {
	id, e, err := s.execution(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionStateOf(id, e))
}

func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	e, ok := s.sessions.remove(chi.URLParam(r, "id"))
	if !ok {
		s.writeError(w, errNotOpen)
		return
	}
	e.session.Close()
	w.WriteHeader(http.StatusNoContent)
}

// handleOpenBlock opens a block's detail. The block is either a placed block
// ({"day","index","level"}) whose duration is used for the timer, or a
// catalog block ({"blockId","level","duration"}).
func (s *Server) handleOpenBlock(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Day      plan.DayName `json:"day"`
		Index    int          `json:"index"`
		BlockID  string       `json:"blockId"`
		Level    string       `json:"level"`
		Duration int          `json:"duration"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	_, e, err := s.execution(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	blockID, duration := body.BlockID, body.Duration
	if body.Day != "" {
		b, err := placedBlock(e.plan, body.Day, body.Index)
		if err != nil {
			s.writeError(w, err)
			return
		}
		blockID, duration = b.BlockID, b.Duration
	}
	d, err := e.session.OpenBlock(r.Context(), body.Level, blockID, duration)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func placedBlock(p *plan.WeekPlan, d plan.DayName, index int) (plan.PlacedBlock, error) {
	day, ok := p.Days[d]
	if !ok {
		return plan.PlacedBlock{}, planner.ErrUnknownDay
	}
	if index < 0 || index >= len(day.Blocks) {
		return plan.PlacedBlock{}, planner.ErrNoSuchBlock
	}
	return day.Blocks[index], nil
}

func (s *Server) handleGetDetail(w http.ResponseWriter, r *http.Request) {
	_, e, err := s.execution(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	d, err := e.session.Detail()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleCloseDetail(w http.ResponseWriter, r *http.Request) {
	_, e, err := s.execution(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	e.session.CloseDetail()
	w.WriteHeader(http.StatusNoContent)
}

// handleSetEntry edits the local log of the open block: {"field":"weight"|"note","value":...}.
func (s *Server) handleSetEntry(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Field session.Field `json:"field"`
		Value string        `json:"value"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	_, e, err := s.execution(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := e.session.SetEntry(chi.URLParam(r, "exerciseID"), body.Field, body.Value); err != nil {
		s.writeError(w, err)
		return
	}
	d, err := e.session.Detail()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleSaveLog(w http.ResponseWriter, r *http.Request) {
	_, e, err := s.execution(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	saved, err := e.session.SaveLog(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleTimerAction(w http.ResponseWriter, r *http.Request) {
	_, e, err := s.execution(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	snap, err := e.session.Control(chi.URLParam(r, "level"), chi.URLParam(r, "blockID"), session.Action(chi.URLParam(r, "action")))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// handleNotices drains the pending notices, such as finished timers.
func (s *Server) handleNotices(w http.ResponseWriter, r *http.Request) {
	_, e, err := s.execution(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	notices := e.session.Notices()
	if notices == nil {
		notices = []session.Notice{}
	}
	writeJSON(w, http.StatusOK, notices)
}
