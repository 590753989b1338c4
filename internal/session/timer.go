package session

import (
	"errors"
	"fmt"
	"sync"
)

// ErrInvalidTransition is returned for a timer action the current state does not allow.
var ErrInvalidTransition = errors.New("invalid timer transition")

// State of a countdown timer. It is derived from remaining, total and running.
type State int

const (
	Idle State = iota
	Running
	Paused
	Finished
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Finished:
		return "finished"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *State) UnmarshalText(text []byte) error {
	for _, st := range []State{Idle, Running, Paused, Finished} {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown timer state %q", text)
}

// Timer counts down a block's duration in whole seconds. Ticks come from
// outside; the timer itself never schedules anything.
type Timer struct {
	mu        sync.Mutex
	total     int
	remaining int
	running   bool
	// started is set from Start until Stop or reaching zero.
	started bool
}

// NewTimer returns an idle timer for a block of the given minutes.
func NewTimer(minutes int) *Timer {
	if minutes < 0 {
		minutes = 0
	}
	total := minutes * 60
	return &Timer{total: total, remaining: total}
}

func (t *Timer) state() State {
	switch {
	case t.running:
		return Running
	case t.total > 0 && t.remaining == 0:
		return Finished
	case t.started:
		return Paused
	default:
		return Idle
	}
}

// State returns the current state.
func (t *Timer) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state()
}

// Start begins counting. A finished timer restarts from the full duration and
// a paused timer resumes. A timer with no duration does not start.
func (t *Timer) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch t.state() {
	case Running:
		return fmt.Errorf("%w: start while running", ErrInvalidTransition)
	case Finished:
		t.remaining = t.total
	}
	if t.total == 0 {
		return nil
	}
	t.running = true
	t.started = true
	return nil
}

// Pause stops counting and keeps the remaining time.
func (t *Timer) Pause() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if st := t.state(); st != Running {
		return fmt.Errorf("%w: pause while %s", ErrInvalidTransition, st)
	}
	t.running = false
	return nil
}

// Resume continues a paused timer.
func (t *Timer) Resume() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if st := t.state(); st != Paused {
		return fmt.Errorf("%w: resume while %s", ErrInvalidTransition, st)
	}
	t.running = true
	return nil
}

// Stop resets the timer to idle from any state.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.running = false
	t.started = false
	t.remaining = t.total
}

// Tick counts one second off a running timer. It reports true on exactly the
// tick that reaches zero.
func (t *Timer) Tick() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return false
	}
	if t.remaining > 0 {
		t.remaining--
	}
	if t.remaining == 0 {
		t.running = false
		t.started = false
		return true
	}
	return false
}

// TimerSnapshot is a point-in-time view of a timer.
type TimerSnapshot struct {
	Total     int    `json:"total"`
	Remaining int    `json:"remaining"`
	State     State  `json:"state"`
	Display   string `json:"display"`
}

func (t *Timer) Snapshot() TimerSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return TimerSnapshot{
		Total:     t.total,
		Remaining: t.remaining,
		State:     t.state(),
		Display:   FormatClock(t.remaining),
	}
}

// FormatClock renders seconds as mm:ss.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
