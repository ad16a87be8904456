package logroute

import (
	"sync"
	"time"
)

// ThrottleStats reports writes dropped by the anti-flood throttle.
type ThrottleStats struct {
	// DroppedTotal is the number of writes dropped across all handles.
	DroppedTotal int
	// DroppedByHandle is the number of writes dropped per facility handle.
	DroppedByHandle map[string]int
}

// throttleWindow is one handle's fixed sliding window.
type throttleWindow struct {
	start time.Time
	count int
}

// throttle is a per-handle sliding-window rate limiter. A rejected write is
// dropped and counted; it is never queued or retried.
type throttle struct {
	mu              sync.Mutex
	limit           int
	window          time.Duration
	windows         map[string]*throttleWindow
	droppedTotal    int
	droppedByHandle map[string]int
}

func newThrottle(limit int, window time.Duration) *throttle {
	return &throttle{
		limit:           limit,
		window:          window,
		windows:         make(map[string]*throttleWindow),
		droppedByHandle: make(map[string]int),
	}
}

// admit reports whether a write to handle at time now is within the rate
// limit. Windows are created lazily on the first write to a handle.
func (t *throttle) admit(handle string, now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	w, ok := t.windows[handle]
	if !ok {
		w = &throttleWindow{}
		t.windows[handle] = w
	}

	if w.start.IsZero() || now.Sub(w.start) >= t.window {
		w.start = now
		w.count = 0
	}

	w.count++
	if w.count > t.limit {
		t.droppedTotal++
		t.droppedByHandle[handle]++

		return false
	}

	return true
}

// setLimits updates the admission limit and window length. Existing windows
// keep their counts; the new limit applies from the next admission check.
func (t *throttle) setLimits(limit int, window time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.limit = limit
	t.window = window
}

// stats returns a copy of the drop counters.
func (t *throttle) stats() ThrottleStats {
	t.mu.Lock()
	defer t.mu.Unlock()

	byHandle := make(map[string]int, len(t.droppedByHandle))
	for handle, n := range t.droppedByHandle {
		byHandle[handle] = n
	}

	return ThrottleStats{
		DroppedTotal:    t.droppedTotal,
		DroppedByHandle: byHandle,
	}
}
