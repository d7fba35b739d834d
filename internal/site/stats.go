package site

import (
	"slices"
	"sync"
	"time"
)

type renderSample struct {
	at       time.Time
	duration time.Duration
}

// StatsSnapshot aggregates the render latencies inside the window.
type StatsSnapshot struct {
	Count     int     `json:"count"`
	CacheHits int64   `json:"cache_hits"`
	MinMs     float64 `json:"min_ms"`
	MaxMs     float64 `json:"max_ms"`
	AvgMs     float64 `json:"avg_ms"`
	P50Ms     float64 `json:"p50_ms"`
	P95Ms     float64 `json:"p95_ms"`
	P99Ms     float64 `json:"p99_ms"`
}

// Stats keeps recent article render latencies and cache hit counts.
type Stats struct {
	mu      sync.Mutex
	samples []renderSample
	window  time.Duration
	hits    int64
	now     func() time.Time
}

func NewStats(window time.Duration) *Stats {
	if window <= 0 {
		window = time.Hour
	}
	return &Stats{
		samples: make([]renderSample, 0, 128),
		window:  window,
		now:     time.Now,
	}
}

// Record adds one render duration. Negative durations count as zero.
func (s *Stats) Record(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.pruneLocked(now)
	s.samples = append(s.samples, renderSample{at: now, duration: max(d, 0)})
}

// Hit counts a request served from the render cache.
func (s *Stats) Hit() {
	s.mu.Lock()
	s.hits++
	s.mu.Unlock()
}

func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(s.now())
	snap := StatsSnapshot{CacheHits: s.hits}
	if len(s.samples) == 0 {
		return snap
	}

	ms := make([]float64, len(s.samples))
	var sum float64
	for i, sm := range s.samples {
		ms[i] = float64(sm.duration) / float64(time.Millisecond)
		sum += ms[i]
	}
	slices.Sort(ms)

	snap.Count = len(ms)
	snap.MinMs = ms[0]
	snap.MaxMs = ms[len(ms)-1]
	snap.AvgMs = sum / float64(len(ms))
	snap.P50Ms = percentile(ms, 50)
	snap.P95Ms = percentile(ms, 95)
	snap.P99Ms = percentile(ms, 99)
	return snap
}

func (s *Stats) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.window)
	s.samples = slices.DeleteFunc(s.samples, func(sm renderSample) bool {
		return sm.at.Before(cutoff)
	})
}

// percentile interpolates linearly between the closest ranks of sorted.
func percentile(sorted []float64, pct float64) float64 {
	switch {
	case len(sorted) == 0:
		return 0
	case pct <= 0:
		return sorted[0]
	case pct >= 100:
		return sorted[len(sorted)-1]
	}

	rank := float64(len(sorted)-1) * pct / 100
	lower := int(rank)
	if lower+1 >= len(sorted) {
		return sorted[lower]
	}
	frac := rank - float64(lower)
	return sorted[lower] + (sorted[lower+1]-sorted[lower])*frac
}
