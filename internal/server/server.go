package server

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/meltforce/blockplan/internal/catalog"
	"github.com/meltforce/blockplan/internal/planner"
	"github.com/meltforce/blockplan/internal/session"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	plans    *planner.Service
	logs     session.LogStore
	catalog  *catalog.Catalog
	tick     time.Duration
	editors  *registry[*planner.Editor]
	sessions *registry[*execution]
	whois    WhoIser
	log      *slog.Logger
	router   chi.Router

	stopSweep context.CancelFunc
	sweepWG   sync.WaitGroup
}

// New creates a new Server with all routes configured. tick is the wall-clock
// length of one timer second in execution sessions.
func New(plans *planner.Service, logs session.LogStore, tick time.Duration, log *slog.Logger) *Server {
	s := &Server{
		plans:     plans,
		logs:      logs,
		catalog:   plans.Catalog(),
		tick:      tick,
		editors:   newRegistry[*planner.Editor](),
		sessions:  newRegistry[*execution](),
		log:       log,
		router:    chi.NewRouter(),
		stopSweep: func() {},
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SetTailscale resolves request identities through the tailnet instead of
// the local dev identity.
func (s *Server) SetTailscale(w WhoIser) {
	s.whois = w
}

// MountMCP serves an MCP transport under /mcp.
func (s *Server) MountMCP(h http.Handler) {
	s.router.Mount("/mcp", h)
}

// ExpireIdle starts a background sweep that closes execution sessions and
// drops planner editors not used for longer than ttl. A client that goes away
// without closing its session thereby stops its timers. Call it at most once.
func (s *Server) ExpireIdle(ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.stopSweep = cancel
	interval := max(min(ttl/2, time.Minute), time.Millisecond)
	s.sweepWG.Add(1)
	go func() {
		defer s.sweepWG.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep(ttl)
			}
		}
	}()
}

// sweep closes the sessions and drops the editors idle for longer than ttl.
func (s *Server) sweep(ttl time.Duration) {
	for _, e := range s.sessions.expire(ttl) {
		e.session.Close()
		s.log.Info("execution session expired", "player", e.session.PlayerID())
	}
	if n := len(s.editors.expire(ttl)); n > 0 {
		s.log.Info("planner editors expired", "count", n)
	}
}

// Close stops the idle sweep and ends every open execution session so no
// timer ticks after shutdown.
func (s *Server) Close() {
	s.stopSweep()
	s.sweepWG.Wait()
	for _, e := range s.sessions.drain() {
		e.session.Close()
	}
	s.editors.drain()
}

func (s *Server) routes() {
	s.router.Use(s.identity)
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Get("/api/v1/me", s.handleMe)
	s.router.Get("/api/v1/week-key", s.handleWeekKey)

	s.router.Route("/api/v1/catalog", func(r chi.Router) {
		r.Get("/blocks", s.handleBlocks)
		r.Get("/templates", s.handleTemplates)
		r.Get("/templates/{idx}", s.handleTemplate)
		r.Get("/templates/{idx}/weeks/{week}", s.handleTemplatePreview)
		r.Get("/exercises", s.handleExercises)
		r.Get("/exercises/{level}/{blockID}", s.handleBlockExercises)
		r.Get("/progressions", s.handleProgressions)
		r.Get("/warmups", s.handleWarmUps)
	})

	s.router.Route("/api/v1/week-plans", func(r chi.Router) {
		r.Get("/", s.handleListPlans)
		r.Get("/{id}", s.handleGetPlan)
		r.Put("/{id}", s.handlePutPlan)
		r.Delete("/{id}", s.handleDeletePlan)
	})
	s.router.Get("/api/v1/players/{playerID}/latest-plan", s.handleLatestPlan)

	s.router.Route("/api/v1/player-logs", func(r chi.Router) {
		r.Get("/{id}", s.handleGetLog)
		r.Put("/{id}", s.handlePutLog)
	})

	s.router.Route("/api/v1/planner", func(r chi.Router) {
		r.Post("/", s.handleOpenEditor)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleEditorState)
			r.Delete("/", s.handleCloseEditor)
			r.Post("/blocks", s.handlePlaceBlock)
			r.Post("/move", s.handleMoveBlock)
			r.Delete("/days/{day}/blocks/{index}", s.handleRemoveBlock)
			r.Patch("/days/{day}/blocks/{index}", s.handleEditBlock)
			r.Get("/days/{day}/blocks/{index}/detail", s.handleEditorBlockDetail)
			r.Put("/days/{day}/intensity", s.handleSetIntensity)
			r.Post("/pick", s.handlePick)
			r.Delete("/pick", s.handleCancelPick)
			r.Post("/pick/day", s.handlePickDay)
			r.Post("/drag", s.handleBeginDrag)
			r.Delete("/drag", s.handleCancelDrag)
			r.Post("/drop", s.handleDrop)
			r.Post("/template", s.handleLoadTemplate)
			r.Post("/template/week", s.handleChooseTemplateWeek)
			r.Delete("/template", s.handleCancelTemplate)
			r.Post("/clear", s.handleClearWeek)
			r.Post("/save", s.handleSaveEditor)
		})
	})

	s.router.Route("/api/v1/sessions", func(r chi.Router) {
		r.Post("/", s.handleOpenSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleSessionState)
			r.Delete("/", s.handleCloseSession)
			r.Post("/blocks", s.handleOpenBlock)
			r.Get("/detail", s.handleGetDetail)
			r.Delete("/detail", s.handleCloseDetail)
			r.Put("/detail/entries/{exerciseID}", s.handleSetEntry)
			r.Post("/detail/save", s.handleSaveLog)
			r.Post("/timers/{level}/{blockID}/{action}", s.handleTimerAction)
			r.Get("/notices", s.handleNotices)
		})
	})
}
