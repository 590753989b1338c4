package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/meltforce/blockplan/internal/catalog"
	"github.com/meltforce/blockplan/internal/plan"
	"github.com/meltforce/blockplan/internal/planner"
	"github.com/meltforce/blockplan/internal/session"
)

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

// handleWeekKey returns the ISO week key for ?date=YYYY-MM-DD, default today.
func (s *Server) handleWeekKey(w http.ResponseWriter, r *http.Request) {
	t := time.Now()
	if v := r.URL.Query().Get("date"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date format, use YYYY-MM-DD"})
			return
		}
		t = parsed
	}
	writeJSON(w, http.StatusOK, map[string]string{"week": plan.WeekKey(t)})
}

func (s *Server) handleBlocks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Listing())
}

func (s *Server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, planner.DescribeTemplates(s.catalog))
}

func (s *Server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	idx, err := intParam(r, "idx")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	t, err := s.catalog.Template(idx)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// handleTemplatePreview instantiates one template week without touching any plan.
func (s *Server) handleTemplatePreview(w http.ResponseWriter, r *http.Request) {
	idx, err := intParam(r, "idx")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	weekIdx, err := intParam(r, "week")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	preview, err := planner.Preview(s.catalog, idx, weekIdx)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

func (s *Server) handleExercises(w http.ResponseWriter, r *http.Request) {
	doc := s.catalog.Exercises()
	if doc == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no exercise document loaded"})
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleBlockExercises(w http.ResponseWriter, r *http.Request) {
	exs, err := s.catalog.ResolveExercises(chi.URLParam(r, "level"), chi.URLParam(r, "blockID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, exs)
}

func (s *Server) handleProgressions(w http.ResponseWriter, r *http.Request) {
	doc := s.catalog.Progressions()
	if doc == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no progression document loaded"})
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleWarmUps(w http.ResponseWriter, r *http.Request) {
	doc := s.catalog.WarmUps()
	if doc == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no warm-up document loaded"})
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func intParam(r *http.Request, name string) (int, error) {
	v, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		return 0, errors.New("invalid " + name)
	}
	return v, nil
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.New("invalid JSON: " + err.Error())
	}
	return nil
}

// writeError maps domain errors to status codes. Unexpected errors are logged.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errNotOpen),
		errors.Is(err, catalog.ErrTemplateNotFound),
		errors.Is(err, session.ErrNoTimer):
		status = http.StatusNotFound
	case errors.Is(err, planner.ErrConfirmRequired),
		errors.Is(err, planner.ErrWeekChoiceRequired),
		errors.Is(err, planner.ErrNoPendingTemplate),
		errors.Is(err, session.ErrStale),
		errors.Is(err, session.ErrInvalidTransition),
		errors.Is(err, session.ErrNoDetail),
		errors.Is(err, session.ErrClosed):
		status = http.StatusConflict
	case errors.Is(err, plan.ErrInvalidKey),
		errors.Is(err, planner.ErrUnknownDay),
		errors.Is(err, planner.ErrNoSuchBlock),
		errors.Is(err, planner.ErrInvalidValue),
		errors.Is(err, planner.ErrNoTemplateSelected),
		errors.Is(err, planner.ErrEmptyTemplate),
		errors.Is(err, planner.ErrWeekOutOfRange),
		errors.Is(err, catalog.ErrNoExerciseMapping),
		errors.Is(err, catalog.ErrNoExercisesForLevel),
		errors.Is(err, session.ErrBadField):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
