// Package profiler - Accumulates per-stage timings across pipeline runs so a
// batch can report where its time went.
package profiler

import (
	"math"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultMaxSamples bounds the durations kept per stage for percentiles.
const DefaultMaxSamples = 1024

// StageStats summarizes the recorded durations of one stage.
type StageStats struct {
	Name  string        `json:"name"`
	Count int64         `json:"count"`
	Total time.Duration `json:"total"`
	Min   time.Duration `json:"min"`
	Max   time.Duration `json:"max"`
	// P95 is taken over the retained samples only.
	P95 time.Duration `json:"p95"`
}

// Average returns the mean duration, or zero before any sample.
func (s StageStats) Average() time.Duration {
	if s.Count == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Count)
}

// tracker holds the running statistics for one stage.
type tracker struct {
	durations []time.Duration
	total     time.Duration
	min       time.Duration
	max       time.Duration
	count     int64
}

// Profiler is safe for concurrent use by the batch workers.
type Profiler struct {
	mu         sync.Mutex
	maxSamples int
	stages     map[string]*tracker
}

// New returns an empty profiler. maxSamples <= 0 uses DefaultMaxSamples.
func New(maxSamples int) *Profiler {
	if maxSamples <= 0 {
		maxSamples = DefaultMaxSamples
	}
	return &Profiler{maxSamples: maxSamples, stages: make(map[string]*tracker)}
}

// StartOperation begins timing a stage.
//
// Arguments:
//   - name: The stage name.
//
// Returns:
//   - func(): Records the elapsed time when called.
//
// @example
// done := p.StartOperation("filters")
// defer done()
func (p *Profiler) StartOperation(name string) func() {
	start := time.Now()
	return func() {
		p.Record(name, time.Since(start))
	}
}

// Record adds one duration for name. Count, Total, Min and Max cover every
// sample; only the newest maxSamples are kept for P95.
func (p *Profiler) Record(name string, d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	t, ok := p.stages[name]
	if !ok {
		t = &tracker{min: d, max: d}
		p.stages[name] = t
	}

	t.durations = append(t.durations, d)
	if len(t.durations) > p.maxSamples {
		t.durations = t.durations[1:]
	}
	t.total += d
	t.count++
	if d < t.min {
		t.min = d
	}
	if d > t.max {
		t.max = d
	}
}

// Snapshot returns the statistics of every stage, slowest total first.
func (p *Profiler) Snapshot() []StageStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]StageStats, 0, len(p.stages))
	for name, t := range p.stages {
		out = append(out, StageStats{
			Name:  name,
			Count: t.count,
			Total: t.total,
			Min:   t.min,
			Max:   t.max,
			P95:   percentile(t.durations, 0.95),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Report logs one entry per stage.
func (p *Profiler) Report(log logrus.FieldLogger) {
	for _, s := range p.Snapshot() {
		log.WithFields(logrus.Fields{
			"op":    s.Name,
			"count": s.Count,
			"total": s.Total,
			"avg":   s.Average(),
			"min":   s.Min,
			"max":   s.Max,
			"p95":   s.P95,
		}).Info("stage timings")
	}
}

// percentile uses the nearest-rank method on a sorted copy.
func percentile(samples []time.Duration, q float64) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	sorted := slices.Clone(samples)
	slices.Sort(sorted)
	rank := int(math.Ceil(q*float64(len(sorted))-1e-9)) - 1
	if rank < 0 {
		rank = 0
	}
	if rank >= len(sorted) {
		rank = len(sorted) - 1
	}
	return sorted[rank]
}
