// Package session runs a player's execution of a saved week: per-block
// countdown timers and the weight/note log for the open block.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/meltforce/blockplan/internal/catalog"
	"github.com/meltforce/blockplan/internal/plan"
)

var (
	// ErrStale means a newer open or close superseded the request.
	ErrStale    = errors.New("stale response discarded")
	ErrNoDetail = errors.New("no block detail open")
	ErrNoTimer  = errors.New("no timer for block")
	ErrBadField = errors.New("unknown log field")
	ErrClosed   = errors.New("session closed")
)

// FinishedMessage is the notice text for a timer reaching zero.
const FinishedMessage = "Zeit abgelaufen! Übung beendet."

// LogStore persists player logs. A missing log is (nil, nil).
type LogStore interface {
	GetPlayerLog(ctx context.Context, id string) (*plan.PlayerLog, error)
	UpsertPlayerLog(ctx context.Context, id string, entries plan.Entries, updatedAt time.Time) (*plan.PlayerLog, error)
}

// TimerKey identifies one timer. The same block at the same level shares a
// timer across days.
type TimerKey struct {
	PlayerID string `json:"playerId"`
	Level    string `json:"level"`
	BlockID  string `json:"blockId"`
}

// Notice is a user-facing message raised outside a request, such as a timer finishing.
type Notice struct {
	Kind    string    `json:"kind"`
	Message string    `json:"message"`
	Timer   *TimerKey `json:"timer,omitempty"`
	At      time.Time `json:"at"`
}

// Field names one of the two free-text fields of a log entry.
type Field string

const (
	FieldWeight Field = "weight"
	FieldNote   Field = "note"
)

// Detail is the open block view: its exercises, the local log and the timer.
type Detail struct {
	Title     string             `json:"title"`
	Key       plan.LogKey        `json:"key"`
	Duration  int                `json:"duration"`
	Exercises []catalog.Exercise `json:"exercises"`
	Entries   plan.Entries       `json:"entries"`
	Timer     TimerSnapshot      `json:"timer"`
}

// Badge shows a timer's state next to its block.
type Badge struct {
	Level   string `json:"level"`
	BlockID string `json:"blockId"`
	Running bool   `json:"running"`
	Label   string `json:"label"`
}

// Options configure a Session.
type Options struct {
	// TickInterval is the wall-clock length of one timer second. Zero disables
	// the ticker; timers then only advance through Tick.
	TickInterval time.Duration
	// OnFinished is called once for every timer that reaches zero, outside the session lock.
	OnFinished func(TimerKey)
}

// Session is one player's execution state. Timers live as long as the session.
type Session struct {
	playerID string
	catalog  *catalog.Catalog
	logs     LogStore
	log      *slog.Logger
	opts     Options
	now      func() time.Time

	mu      sync.Mutex
	timers  map[TimerKey]*Timer
	detail  *Detail
	seq     uint64
	notices []Notice
	closed  bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New starts a session for playerID. Call Close to stop its ticker.
func New(playerID string, c *catalog.Catalog, logs LogStore, log *slog.Logger, opts Options) *Session {
	s := &Session{
		playerID: playerID,
		catalog:  c,
		logs:     logs,
		log:      log,
		opts:     opts,
		now:      time.Now,
		timers:   make(map[TimerKey]*Timer),
		cancel:   func() {},
	}
	if opts.TickInterval > 0 {
		ctx, cancel := context.WithCancel(context.Background())
		s.cancel = cancel
		s.wg.Add(1)
		go s.run(ctx)
	}
	return s
}

func (s *Session) PlayerID() string { return s.playerID }

func (s *Session) run(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.opts.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick()
		}
	}
}

// Close stops the ticker and waits for it to exit. No tick runs after Close returns.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cancel()
	s.wg.Wait()
}

// Tick advances every running timer by one second.
func (s *Session) Tick() {
	var finished []TimerKey
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	for key, t := range s.timers {
		if t.Tick() {
			finished = append(finished, key)
		}
	}
	sortKeys(finished)
	for i := range finished {
		k := finished[i]
		s.notices = append(s.notices, Notice{Kind: "success", Message: FinishedMessage, Timer: &k, At: s.now()})
	}
	s.mu.Unlock()

	for _, k := range finished {
		s.log.Info("timer finished", "player", k.PlayerID, "level", k.Level, "block", k.BlockID)
		if s.opts.OnFinished != nil {
			s.opts.OnFinished(k)
		}
	}
}

// OpenBlock shows the detail of blockID at level: resolves its exercises,
// loads the stored log and attaches the block's timer, creating it on first
// use. The timer keeps the duration of the first open, and Detail.Duration
// reports that duration. A later OpenBlock or CloseDetail makes this call
// return ErrStale.
func (s *Session) OpenBlock(ctx context.Context, level, blockID string, duration int) (*Detail, error) {
	logKey := plan.LogKey{PlayerID: s.playerID, BlockID: blockID, Level: level}
	if err := logKey.Validate(); err != nil {
		return nil, err
	}
	exs, err := s.catalog.ResolveExercises(level, blockID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	entries := plan.Entries{}
	stored, err := s.logs.GetPlayerLog(ctx, logKey.String())
	if err != nil {
		s.log.Error("loading player log", "id", logKey.String(), "error", err)
	} else if stored != nil {
		entries = stored.Entries.Clone()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq {
		return nil, ErrStale
	}
	tk := TimerKey{PlayerID: s.playerID, Level: level, BlockID: blockID}
	t, ok := s.timers[tk]
	if !ok {
		t = NewTimer(duration)
		s.timers[tk] = t
	}
	s.detail = &Detail{
		Title:     fmt.Sprintf("%s - Level %s", s.catalog.Code(blockID), level),
		Key:       logKey,
		Duration:  t.Snapshot().Total / 60,
		Exercises: exs,
		Entries:   entries,
	}
	return s.snapshotDetail(), nil
}

// CloseDetail hides the open block. Its timer keeps its state.
func (s *Session) CloseDetail() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.detail = nil
}

// Detail returns the open block, or ErrNoDetail.
func (s *Session) Detail() (*Detail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.detail == nil {
		return nil, ErrNoDetail
	}
	return s.snapshotDetail(), nil
}

func (s *Session) snapshotDetail() *Detail {
	d := *s.detail
	d.Entries = s.detail.Entries.Clone()
	d.Exercises = append([]catalog.Exercise(nil), s.detail.Exercises...)
	if t, ok := s.timers[s.detailTimerKey()]; ok {
		d.Timer = t.Snapshot()
	}
	return &d
}

func (s *Session) detailTimerKey() TimerKey {
	return TimerKey{PlayerID: s.playerID, Level: s.detail.Key.Level, BlockID: s.detail.Key.BlockID}
}

// SetEntry edits one field of the open block's local log. Nothing is stored until SaveLog.
func (s *Session) SetEntry(exerciseID string, f Field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.detail == nil {
		return ErrNoDetail
	}
	e := s.detail.Entries[exerciseID]
	switch f {
	case FieldWeight:
		e.Weight = value
	case FieldNote:
		e.Note = value
	default:
		return fmt.Errorf("%w: %q", ErrBadField, f)
	}
	s.detail.Entries[exerciseID] = e
	return nil
}

// SaveLog stores the open block's whole local log, replacing what was stored.
func (s *Session) SaveLog(ctx context.Context) (*plan.PlayerLog, error) {
	s.mu.Lock()
	if s.detail == nil {
		s.mu.Unlock()
		return nil, ErrNoDetail
	}
	key := s.detail.Key
	entries := s.detail.Entries.Clone()
	s.mu.Unlock()

	saved, err := s.logs.UpsertPlayerLog(ctx, key.String(), entries, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("saving player log %s: %w", key, err)
	}
	return saved, nil
}

// Action is a timer control.
type Action string

const (
	ActionStart  Action = "start"
	ActionPause  Action = "pause"
	ActionResume Action = "resume"
	ActionStop   Action = "stop"
)

// Control applies an action to the timer of blockID at level.
func (s *Session) Control(level, blockID string, a Action) (TimerSnapshot, error) {
	s.mu.Lock()
	t, ok := s.timers[TimerKey{PlayerID: s.playerID, Level: level, BlockID: blockID}]
	s.mu.Unlock()
	if !ok {
		return TimerSnapshot{}, fmt.Errorf("%w %s at level %s", ErrNoTimer, blockID, level)
	}
	var err error
	switch a {
	case ActionStart:
		err = t.Start()
	case ActionPause:
		err = t.Pause()
	case ActionResume:
		err = t.Resume()
	case ActionStop:
		t.Stop()
	default:
		err = fmt.Errorf("%w: unknown action %q", ErrInvalidTransition, a)
	}
	if err != nil {
		return TimerSnapshot{}, err
	}
	return t.Snapshot(), nil
}

// Timer returns the timer for blockID at level, if it was ever opened.
func (s *Session) Timer(level, blockID string) (TimerSnapshot, bool) {
	s.mu.Lock()
	t, ok := s.timers[TimerKey{PlayerID: s.playerID, Level: level, BlockID: blockID}]
	s.mu.Unlock()
	if !ok {
		return TimerSnapshot{}, false
	}
	return t.Snapshot(), true
}

// Badges lists every timer of the session in a stable order.
func (s *Session) Badges() []Badge {
	s.mu.Lock()
	keys := make([]TimerKey, 0, len(s.timers))
	for k := range s.timers {
		keys = append(keys, k)
	}
	sortKeys(keys)
	out := make([]Badge, 0, len(keys))
	for _, k := range keys {
		snap := s.timers[k].Snapshot()
		running := snap.State == Running
		icon := "⏸ "
		if running {
			icon = "⏱ "
		}
		out = append(out, Badge{Level: k.Level, BlockID: k.BlockID, Running: running, Label: icon + snap.Display})
	}
	s.mu.Unlock()
	return out
}

// Notices returns and clears the pending notices.
func (s *Session) Notices() []Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.notices
	s.notices = nil
	return out
}

func sortKeys(keys []TimerKey) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Level != keys[j].Level {
			return keys[i].Level < keys[j].Level
		}
		return keys[i].BlockID < keys[j].BlockID
	})
}
