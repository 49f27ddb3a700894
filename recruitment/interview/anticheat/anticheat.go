// Package anticheat keeps a fullscreen grace countdown and an interview
// countdown per running interview session, fed by events from the browser.
package anticheat

import (
	"errors"
	"math"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/kernel"
	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/logx"
)

const DefaultGracePeriod = 10 * time.Second

// EventType is a browser signal reported during the interview
type EventType string

const (
	EventFullscreenExit    EventType = "fullscreen_exit"
	EventFullscreenEnter   EventType = "fullscreen_enter"
	EventVisibilityHidden  EventType = "visibility_hidden"
	EventVisibilityVisible EventType = "visibility_visible"
)

var EventTypes = []EventType{EventFullscreenExit, EventFullscreenEnter, EventVisibilityHidden, EventVisibilityVisible}

func ParseEvent(s string) (EventType, bool) {
	e := EventType(strings.ToLower(strings.TrimSpace(s)))
	return e, slices.Contains(EventTypes, e)
}

// Flags recorded on a monitor
const (
	FlagTabSwitch    = "tab_switch"
	FlagGraceExpired = "fullscreen_grace_expired"
)

var ErrNotRunning = errors.New("no monitor running for session")

// Snapshot is a point-in-time view of a monitor
type Snapshot struct {
	SessionID           kernel.SessionID `json:"session_id"`
	FullscreenExitCount int              `json:"fullscreen_exit_count"`
	TabSwitches         int              `json:"tab_switches"`
	Flags               []string         `json:"flags"`
	RemainingSeconds    int              `json:"remaining_seconds"`
	GraceActive         bool             `json:"grace_active"`
	SecurityScore       int              `json:"security_score"`
	Ended               bool             `json:"ended"`
}

// Callbacks are invoked from timer goroutines, never under the registry lock
type Callbacks struct {
	// OnExpire fires once when the interview countdown runs out
	OnExpire func(id kernel.SessionID)
	// OnViolation fires when a grace countdown runs out
	OnViolation func(id kernel.SessionID, snap Snapshot)
}

type monitor struct {
	id        kernel.SessionID
	exits     int
	tabs      int
	flags     []string
	deadline  time.Time
	countdown *time.Timer
	grace     *time.Timer
	graceGen  int
	ended     bool
}

// Registry owns the monitors of every running session. Safe for concurrent use.
type Registry struct {
	mu       sync.Mutex
	monitors map[kernel.SessionID]*monitor
	grace    time.Duration
	cb       Callbacks
	now      func() time.Time
}

func NewRegistry(grace time.Duration, cb Callbacks) *Registry {
	if grace <= 0 {
		grace = DefaultGracePeriod
	}
	return &Registry{
		monitors: make(map[kernel.SessionID]*monitor),
		grace:    grace,
		cb:       cb,
		now:      time.Now,
	}
}

// Start arms the interview countdown for a session. Starting a session that
// already has a monitor leaves it untouched.
func (r *Registry) Start(id kernel.SessionID, duration time.Duration) Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m, ok := r.monitors[id]; ok {
		return r.snapshot(m)
	}

	m := &monitor{id: id, flags: []string{}}
	if duration > 0 {
		m.deadline = r.now().Add(duration)
		m.countdown = time.AfterFunc(duration, func() { r.expire(id) })
	}
	r.monitors[id] = m
	logx.Debugf("anticheat: monitor started for session %s (%s)", id, duration)
	return r.snapshot(m)
}

func (r *Registry) Running(id kernel.SessionID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.monitors[id]
	return ok
}

// Report applies a browser event. Events after the countdown ended change
// nothing and only return the snapshot.
func (r *Registry) Report(id kernel.SessionID, event EventType) (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.monitors[id]
	if !ok {
		return Snapshot{}, ErrNotRunning
	}
	if m.ended {
		return r.snapshot(m), nil
	}

	switch event {
	case EventFullscreenExit:
		m.exits++
		if m.grace == nil {
			m.graceGen++
			gen := m.graceGen
			m.grace = time.AfterFunc(r.grace, func() { r.graceExpired(id, gen) })
		}
	case EventFullscreenEnter:
		r.cancelGrace(m)
	case EventVisibilityHidden:
		m.tabs++
		m.addFlag(FlagTabSwitch)
	case EventVisibilityVisible:
	}
	return r.snapshot(m), nil
}

func (r *Registry) Snapshot(id kernel.SessionID) (Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.monitors[id]
	if !ok {
		return Snapshot{}, false
	}
	return r.snapshot(m), true
}

// Stop cancels both timers, forgets the session and returns its final state
func (r *Registry) Stop(id kernel.SessionID) (Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.monitors[id]
	if !ok {
		return Snapshot{}, false
	}
	r.cancelGrace(m)
	if m.countdown != nil {
		m.countdown.Stop()
	}
	snap := r.snapshot(m)
	snap.RemainingSeconds = 0
	delete(r.monitors, id)
	return snap, true
}

// StopAll cancels every monitor, used on shutdown
func (r *Registry) StopAll() {
	r.mu.Lock()
	ids := make([]kernel.SessionID, 0, len(r.monitors))
	for id := range r.monitors {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	for _, id := range ids {
		r.Stop(id)
	}
}

func (r *Registry) expire(id kernel.SessionID) {
	r.mu.Lock()
	m, ok := r.monitors[id]
	if !ok || m.ended {
		r.mu.Unlock()
		return
	}
	m.ended = true
	r.cancelGrace(m)
	r.mu.Unlock()

	logx.Infof("anticheat: interview countdown expired for session %s", id)
	if r.cb.OnExpire != nil {
		r.cb.OnExpire(id)
	}
}

func (r *Registry) graceExpired(id kernel.SessionID, gen int) {
	r.mu.Lock()
	m, ok := r.monitors[id]
	if !ok || m.ended || m.grace == nil || m.graceGen != gen {
		r.mu.Unlock()
		return
	}
	m.grace = nil
	m.addFlag(FlagGraceExpired)
	snap := r.snapshot(m)
	r.mu.Unlock()

	logx.Warnf("anticheat: fullscreen grace period expired for session %s (exits=%d)", id, snap.FullscreenExitCount)
	if r.cb.OnViolation != nil {
		r.cb.OnViolation(id, snap)
	}
}

func (r *Registry) cancelGrace(m *monitor) {
	if m.grace != nil {
		m.grace.Stop()
		m.grace = nil
		m.graceGen++
	}
}

func (r *Registry) snapshot(m *monitor) Snapshot {
	remaining := 0
	if !m.ended && !m.deadline.IsZero() {
		remaining = int(math.Ceil(m.deadline.Sub(r.now()).Seconds()))
		remaining = max(remaining, 0)
	}
	return Snapshot{
		SessionID:           m.id,
		FullscreenExitCount: m.exits,
		TabSwitches:         m.tabs,
		Flags:               slices.Clone(m.flags),
		RemainingSeconds:    remaining,
		GraceActive:         m.grace != nil,
		SecurityScore:       max(0, 100-10*m.exits),
		Ended:               m.ended,
	}
}

func (m *monitor) addFlag(flag string) {
	if !slices.Contains(m.flags, flag) {
		m.flags = append(m.flags, flag)
	}
}
