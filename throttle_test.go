package logroute

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestThrottleAdmit(t *testing.T) {
	t.Parallel()

	th := newThrottle(2, time.Second)
	base := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	assert.True(t, th.admit("a", base))
	assert.True(t, th.admit("a", base.Add(10*time.Millisecond)))
	assert.False(t, th.admit("a", base.Add(20*time.Millisecond)))
	assert.False(t, th.admit("a", base.Add(30*time.Millisecond)))

	stats := th.stats()
	assert.Equal(t, 2, stats.DroppedTotal)
	assert.Equal(t, 2, stats.DroppedByHandle["a"])
}

func TestThrottleWindowReset(t *testing.T) {
	t.Parallel()

	th := newThrottle(1, time.Second)
	base := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	assert.True(t, th.admit("a", base))
	assert.False(t, th.admit("a", base.Add(500*time.Millisecond)))

	// A fresh window restores the full budget.
	assert.True(t, th.admit("a", base.Add(time.Second)))
	assert.False(t, th.admit("a", base.Add(1100*time.Millisecond)))
}

func TestThrottleHandlesIndependent(t *testing.T) {
	t.Parallel()

	th := newThrottle(1, time.Second)
	base := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	assert.True(t, th.admit("a", base))
	assert.True(t, th.admit("b", base))
	assert.False(t, th.admit("a", base.Add(time.Millisecond)))
	assert.True(t, th.admit("c", base.Add(time.Millisecond)))

	stats := th.stats()
	assert.Equal(t, 1, stats.DroppedTotal)
	assert.Equal(t, 1, stats.DroppedByHandle["a"])
	assert.Empty(t, stats.DroppedByHandle["b"])
}

func TestThrottleSetLimits(t *testing.T) {
	t.Parallel()

	th := newThrottle(1, time.Second)
	base := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	assert.True(t, th.admit("a", base))
	assert.False(t, th.admit("a", base.Add(time.Millisecond)))

	th.setLimits(10, time.Second)

	assert.True(t, th.admit("a", base.Add(2*time.Millisecond)))
}

func TestThrottleStatsIsACopy(t *testing.T) {
	t.Parallel()

	th := newThrottle(1, time.Second)
	base := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	th.admit("a", base)
	th.admit("a", base.Add(time.Millisecond))

	stats := th.stats()
	stats.DroppedByHandle["a"] = 99

	assert.Equal(t, 1, th.stats().DroppedByHandle["a"])
}
