package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/meltforce/blockplan/internal/plan"
	"github.com/meltforce/blockplan/internal/planner"
)

type pendingTemplate struct {
	Name    string               `json:"name"`
	Options []planner.WeekOption `json:"options"`
}

type dragState struct {
	Source  string       `json:"source"`
	BlockID string       `json:"blockId,omitempty"`
	Code    string       `json:"code,omitempty"`
	Day     plan.DayName `json:"day,omitempty"`
	Index   int          `json:"index"`
}

type editorState struct {
	ID       string           `json:"id"`
	Key      plan.Key         `json:"key"`
	Days     plan.Week        `json:"days"`
	Summary  plan.Summary     `json:"summary"`
	Pick     string           `json:"pick,omitempty"`
	Drag     *dragState       `json:"drag,omitempty"`
	Template *pendingTemplate `json:"pendingTemplate,omitempty"`
}

func stateOf(id string, e *planner.Editor) editorState {
	st := editorState{ID: id, Key: e.Key(), Days: e.Week(), Summary: e.Summary()}
	st.Pick, _ = e.Pending()
	switch o := e.Dragging().(type) {
	case planner.CatalogOrigin:
		st.Drag = &dragState{Source: "catalog", BlockID: o.BlockID, Code: o.Code}
	case planner.PlacedOrigin:
		st.Drag = &dragState{Source: "day", Day: o.Day, Index: o.Index}
	}
	if t, ok := e.PendingTemplate(); ok {
		st.Template = &pendingTemplate{Name: t.Name, Options: planner.WeekOptions(t)}
	}
	return st
}

// editorAction runs fn on the editor named in the path and responds with its
// state afterwards.
func (s *Server) editorAction(w http.ResponseWriter, r *http.Request, fn func(*planner.Editor) error) {
	id := chi.URLParam(r, "id")
	var st editorState
	err := s.editors.with(id, func(e *planner.Editor) error {
		if err := fn(e); err != nil {
			return err
		}
		st = stateOf(id, e)
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// handleOpenEditor starts editing a player's week, seeded from the stored plan.
// The week defaults to the current ISO week.
func (s *Server) handleOpenEditor(w http.ResponseWriter, r *http.Request) {
	var body plan.Key
	if err := decodeBody(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if body.Week == "" {
		body.Week = plan.CurrentWeekKey()
	}
	e, err := s.plans.Open(r.Context(), body)
	if err != nil {
		s.writeError(w, err)
		return
	}
	id := s.editors.add(e)
	s.log.Info("editor opened", "id", id, "plan", body.String(), "user", userInfoFromContext(r).Login)
	writeJSON(w, http.StatusCreated, stateOf(id, e))
}

func (s *Server) handleEditorState(w http.ResponseWriter, r *http.Request) {
	s.editorAction(w, r, func(*planner.Editor) error { return nil })
}

func (s *Server) handleCloseEditor(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.editors.remove(chi.URLParam(r, "id")); !ok {
		s.writeError(w, errNotOpen)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePlaceBlock(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Day     plan.DayName `json:"day"`
		BlockID string       `json:"blockId"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	s.editorAction(w, r, func(e *planner.Editor) error {
		return e.PlaceBlock(body.Day, body.BlockID)
	})
}

func (s *Server) handleMoveBlock(w http.ResponseWriter, r *http.Request) {
	var body struct {
		From  plan.DayName `json:"from"`
		Index int          `json:"index"`
		To    plan.DayName `json:"to"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	s.editorAction(w, r, func(e *planner.Editor) error {
		return e.MoveBlock(body.From, body.Index, body.To)
	})
}

func (s *Server) handleRemoveBlock(w http.ResponseWriter, r *http.Request) {
	index, err := intParam(r, "index")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	day := plan.DayName(chi.URLParam(r, "day"))
	s.editorAction(w, r, func(e *planner.Editor) error {
		return e.RemoveBlock(day, index)
	})
}

func (s *Server) handleEditBlock(w http.ResponseWriter, r *http.Request) {
	index, err := intParam(r, "index")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	var body struct {
		RPE      int `json:"rpe"`
		Duration int `json:"duration"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	day := plan.DayName(chi.URLParam(r, "day"))
	s.editorAction(w, r, func(e *planner.Editor) error {
		return e.SetBlockValues(day, index, body.RPE, body.Duration)
	})
}

// handleEditorBlockDetail resolves the exercises of a placed block at ?level=.
func (s *Server) handleEditorBlockDetail(w http.ResponseWriter, r *http.Request) {
	index, err := intParam(r, "index")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	level := r.URL.Query().Get("level")
	if level == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "level parameter required"})
		return
	}
	day := plan.DayName(chi.URLParam(r, "day"))
	var detail planner.BlockDetail
	err = s.editors.with(chi.URLParam(r, "id"), func(e *planner.Editor) error {
		var err error
		detail, err = e.BlockDetail(day, index, level)
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleSetIntensity(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Intensity string `json:"intensity"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	day := plan.DayName(chi.URLParam(r, "day"))
	s.editorAction(w, r, func(e *planner.Editor) error {
		return e.SetIntensity(day, body.Intensity)
	})
}

func (s *Server) handlePick(w http.ResponseWriter, r *http.Request) {
	var body struct {
		BlockID string `json:"blockId"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	s.editorAction(w, r, func(e *planner.Editor) error {
		e.Pick(body.BlockID)
		return nil
	})
}

func (s *Server) handleCancelPick(w http.ResponseWriter, r *http.Request) {
	s.editorAction(w, r, func(e *planner.Editor) error {
		e.CancelPick()
		return nil
	})
}

func (s *Server) handlePickDay(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Day plan.DayName `json:"day"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	s.editorAction(w, r, func(e *planner.Editor) error {
		return e.PickDay(body.Day)
	})
}

// handleBeginDrag records a drag origin: {"source":"catalog","blockId":...}
// or {"source":"day","day":...,"index":...}.
func (s *Server) handleBeginDrag(w http.ResponseWriter, r *http.Request) {
	var body dragState
	if err := decodeBody(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	var origin planner.Origin
	switch body.Source {
	case "catalog":
		code := body.Code
		if code == "" {
			code = s.catalog.Code(body.BlockID)
		}
		origin = planner.CatalogOrigin{BlockID: body.BlockID, Code: code}
	case "day":
		origin = planner.PlacedOrigin{Day: body.Day, Index: body.Index}
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "source must be catalog or day, got " + strconv.Quote(body.Source)})
		return
	}
	s.editorAction(w, r, func(e *planner.Editor) error {
		e.BeginDrag(origin)
		return nil
	})
}

func (s *Server) handleCancelDrag(w http.ResponseWriter, r *http.Request) {
	s.editorAction(w, r, func(e *planner.Editor) error {
		e.CancelDrag()
		return nil
	})
}

func (s *Server) handleDrop(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Day plan.DayName `json:"day"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	s.editorAction(w, r, func(e *planner.Editor) error {
		return e.Drop(body.Day)
	})
}

// handleLoadTemplate responds with the template outcome; when a week choice
// is needed the options are in the response and the week is unchanged.
func (s *Server) handleLoadTemplate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Index *int `json:"index"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	idx := -1
	if body.Index != nil {
		idx = *body.Index
	}
	s.templateAction(w, r, func(e *planner.Editor) (planner.TemplateLoad, error) {
		return e.LoadTemplate(idx)
	})
}

func (s *Server) handleChooseTemplateWeek(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Week int `json:"week"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	s.templateAction(w, r, func(e *planner.Editor) (planner.TemplateLoad, error) {
		return e.ChooseTemplateWeek(body.Week)
	})
}

func (s *Server) templateAction(w http.ResponseWriter, r *http.Request, fn func(*planner.Editor) (planner.TemplateLoad, error)) {
	id := chi.URLParam(r, "id")
	var resp struct {
		Result planner.TemplateLoad `json:"result"`
		State  editorState          `json:"state"`
	}
	err := s.editors.with(id, func(e *planner.Editor) error {
		res, err := fn(e)
		if err != nil {
			return err
		}
		resp.Result = res
		resp.State = stateOf(id, e)
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCancelTemplate(w http.ResponseWriter, r *http.Request) {
	s.editorAction(w, r, func(e *planner.Editor) error {
		e.CancelTemplate()
		return nil
	})
}

func (s *Server) handleClearWeek(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Confirm bool `json:"confirm"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	s.editorAction(w, r, func(e *planner.Editor) error {
		return e.ClearWeek(body.Confirm)
	})
}

// handleSaveEditor persists the editor's week as of this request.
func (s *Server) handleSaveEditor(w http.ResponseWriter, r *http.Request) {
	var saved *plan.WeekPlan
	err := s.editors.with(chi.URLParam(r, "id"), func(e *planner.Editor) error {
		var err error
		saved, err = s.plans.Save(r.Context(), e)
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.log.Info("week plan saved", "id", saved.ID, "total_rpe", saved.TotalRPE, "user", userInfoFromContext(r).Login)
	writeJSON(w, http.StatusOK, saved)
}
