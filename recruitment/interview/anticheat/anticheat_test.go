package anticheat

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/kernel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEvent(t *testing.T) {
	tests := []struct {
		in   string
		want EventType
		ok   bool
	}{
		{"fullscreen_exit", EventFullscreenExit, true},
		{" FULLSCREEN_ENTER ", EventFullscreenEnter, true},
		{"visibility_hidden", EventVisibilityHidden, true},
		{"blur", "blur", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseEvent(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestReportCounts(t *testing.T) {
	r := NewRegistry(time.Hour, Callbacks{})
	id := kernel.NewSessionID("s1")
	r.Start(id, time.Hour)
	defer r.Stop(id)

	_, err := r.Report(id, EventFullscreenExit)
	require.NoError(t, err)
	snap, err := r.Report(id, EventFullscreenExit)
	require.NoError(t, err)

	assert.Equal(t, 2, snap.FullscreenExitCount)
	assert.True(t, snap.GraceActive)
	assert.Equal(t, 80, snap.SecurityScore)

	snap, _ = r.Report(id, EventFullscreenEnter)
	assert.False(t, snap.GraceActive)

	r.Report(id, EventVisibilityHidden)
	snap, _ = r.Report(id, EventVisibilityHidden)
	assert.Equal(t, 2, snap.TabSwitches)
	assert.Equal(t, []string{FlagTabSwitch}, snap.Flags)
	assert.InDelta(t, 3600, snap.RemainingSeconds, 2)
}

func TestReportUnknownSession(t *testing.T) {
	r := NewRegistry(0, Callbacks{})
	_, err := r.Report("missing", EventFullscreenExit)
	assert.ErrorIs(t, err, ErrNotRunning)
}

func TestGraceExpiry(t *testing.T) {
	var mu sync.Mutex
	var got []Snapshot
	r := NewRegistry(20*time.Millisecond, Callbacks{
		OnViolation: func(id kernel.SessionID, snap Snapshot) {
			mu.Lock()
			defer mu.Unlock()
			got = append(got, snap)
		},
	})
	id := kernel.NewSessionID("s2")
	r.Start(id, time.Hour)
	defer r.Stop(id)

	r.Report(id, EventFullscreenExit)
	// a second exit during the grace period does not arm a second countdown
	r.Report(id, EventFullscreenExit)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	}, time.Second, 5*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	assert.Len(t, got, 1)
	assert.Contains(t, got[0].Flags, FlagGraceExpired)
	assert.Equal(t, 2, got[0].FullscreenExitCount)
	mu.Unlock()

	snap, ok := r.Snapshot(id)
	require.True(t, ok)
	assert.False(t, snap.GraceActive)
}

func TestGraceCancelledByReentry(t *testing.T) {
	var fired atomic.Int32
	r := NewRegistry(30*time.Millisecond, Callbacks{
		OnViolation: func(kernel.SessionID, Snapshot) { fired.Add(1) },
	})
	id := kernel.NewSessionID("s3")
	r.Start(id, time.Hour)
	defer r.Stop(id)

	r.Report(id, EventFullscreenExit)
	r.Report(id, EventFullscreenEnter)

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())

	snap, _ := r.Snapshot(id)
	assert.NotContains(t, snap.Flags, FlagGraceExpired)
	assert.Equal(t, 1, snap.FullscreenExitCount)
}

func TestCountdownExpiry(t *testing.T) {
	expired := make(chan kernel.SessionID, 1)
	var violations atomic.Int32
	r := NewRegistry(time.Hour, Callbacks{
		OnExpire:    func(id kernel.SessionID) { expired <- id },
		OnViolation: func(kernel.SessionID, Snapshot) { violations.Add(1) },
	})
	id := kernel.NewSessionID("s4")
	r.Start(id, 20*time.Millisecond)
	r.Report(id, EventFullscreenExit)

	select {
	case got := <-expired:
		assert.Equal(t, id, got)
	case <-time.After(time.Second):
		t.Fatal("countdown did not expire")
	}

	snap, ok := r.Snapshot(id)
	require.True(t, ok)
	assert.True(t, snap.Ended)
	assert.False(t, snap.GraceActive)
	assert.Equal(t, 0, snap.RemainingSeconds)

	// ended monitors ignore further events
	snap, err := r.Report(id, EventFullscreenExit)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.FullscreenExitCount)
	assert.Equal(t, int32(0), violations.Load())

	_, ok = r.Stop(id)
	assert.True(t, ok)
	assert.False(t, r.Running(id))
}

func TestStopCancelsTimers(t *testing.T) {
	var expired, violations atomic.Int32
	r := NewRegistry(20*time.Millisecond, Callbacks{
		OnExpire:    func(kernel.SessionID) { expired.Add(1) },
		OnViolation: func(kernel.SessionID, Snapshot) { violations.Add(1) },
	})
	id := kernel.NewSessionID("s5")
	r.Start(id, 30*time.Millisecond)
	r.Report(id, EventFullscreenExit)

	snap, ok := r.Stop(id)
	require.True(t, ok)
	assert.Equal(t, 1, snap.FullscreenExitCount)

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(0), expired.Load())
	assert.Equal(t, int32(0), violations.Load())

	_, ok = r.Stop(id)
	assert.False(t, ok)
}

func TestStartIsIdempotent(t *testing.T) {
	r := NewRegistry(0, Callbacks{})
	id := kernel.NewSessionID("s6")
	r.Start(id, time.Hour)
	r.Report(id, EventVisibilityHidden)

	snap := r.Start(id, time.Minute)
	assert.Equal(t, 1, snap.TabSwitches)
	assert.Greater(t, snap.RemainingSeconds, 60)
	r.StopAll()
	assert.False(t, r.Running(id))
}

func TestConcurrentReports(t *testing.T) {
	r := NewRegistry(time.Hour, Callbacks{})
	id := kernel.NewSessionID("s7")
	r.Start(id, time.Hour)
	defer r.Stop(id)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Report(id, EventVisibilityHidden)
		}()
	}
	wg.Wait()

	snap, _ := r.Snapshot(id)
	assert.Equal(t, 50, snap.TabSwitches)
}
