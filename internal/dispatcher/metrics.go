package dispatcher

import (
	"cmp"
	"slices"
	"sync"
	"time"

	"github.com/dshills/mackerel/internal/input"
)

// Metrics collects per-kind dispatch timings. A dispatch lasts as long as
// the handler, so a triggering event includes its whole macro replay.
type Metrics struct {
	mu     sync.Mutex
	kinds  map[input.Kind]*KindMetrics
	global MetricsSnapshot
}

// KindMetrics holds timings for one event kind.
type KindMetrics struct {
	Kind          input.Kind
	DispatchCount uint64
	ErrorCount    uint64
	TotalDuration time.Duration
	MaxDuration   time.Duration
}

// AverageDuration returns the mean dispatch time for this kind.
func (km *KindMetrics) AverageDuration() time.Duration {
	if km.DispatchCount == 0 {
		return 0
	}
	return km.TotalDuration / time.Duration(km.DispatchCount)
}

// MetricsSnapshot is a point-in-time copy of the global counters.
type MetricsSnapshot struct {
	TotalDispatches uint64
	TotalErrors     uint64
	TotalPanics     uint64
	TotalDuration   time.Duration
	AverageDuration time.Duration
}

// NewMetrics creates an empty collector.
func NewMetrics() *Metrics {
	return &Metrics{kinds: make(map[input.Kind]*KindMetrics)}
}

// RecordDispatch records one processed event.
func (m *Metrics) RecordDispatch(kind input.Kind, duration time.Duration, failed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	km, ok := m.kinds[kind]
	if !ok {
		km = &KindMetrics{Kind: kind}
		m.kinds[kind] = km
	}
	km.DispatchCount++
	km.TotalDuration += duration
	km.MaxDuration = max(km.MaxDuration, duration)

	m.global.TotalDispatches++
	m.global.TotalDuration += duration
	if failed {
		km.ErrorCount++
		m.global.TotalErrors++
	}
}

// RecordPanic records a recovered handler panic.
func (m *Metrics) RecordPanic() {
	m.mu.Lock()
	m.global.TotalPanics++
	m.mu.Unlock()
}

// SlowestKinds returns copies of up to n kinds, slowest maximum first.
func (m *Metrics) SlowestKinds(n int) []KindMetrics {
	m.mu.Lock()
	out := make([]KindMetrics, 0, len(m.kinds))
	for _, km := range m.kinds {
		out = append(out, *km)
	}
	m.mu.Unlock()

	slices.SortFunc(out, func(a, b KindMetrics) int {
		return cmp.Compare(b.MaxDuration, a.MaxDuration)
	})
	return out[:min(n, len(out))]
}

// Snapshot returns the global counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.global
	if snap.TotalDispatches > 0 {
		snap.AverageDuration = snap.TotalDuration / time.Duration(snap.TotalDispatches)
	}
	return snap
}
