package profiler

import (
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord(t *testing.T) {
	p := New(0)
	for _, ms := range []int{30, 10, 20} {
		p.Record("filters", time.Duration(ms)*time.Millisecond)
	}
	p.Record("encode", 100*time.Millisecond)

	stats := p.Snapshot()
	require.Len(t, stats, 2)
	assert.Equal(t, "encode", stats[0].Name)

	f := stats[1]
	assert.Equal(t, "filters", f.Name)
	assert.Equal(t, int64(3), f.Count)
	assert.Equal(t, 60*time.Millisecond, f.Total)
	assert.Equal(t, 10*time.Millisecond, f.Min)
	assert.Equal(t, 30*time.Millisecond, f.Max)
	assert.Equal(t, 20*time.Millisecond, f.Average())
	assert.Equal(t, 30*time.Millisecond, f.P95)
}

func TestRecordKeepsTotalsPastSampleLimit(t *testing.T) {
	p := New(2)
	for i := 1; i <= 5; i++ {
		p.Record("geometry", time.Duration(i)*time.Second)
	}
	s := p.Snapshot()[0]
	assert.Equal(t, int64(5), s.Count)
	assert.Equal(t, 15*time.Second, s.Total)
	assert.Equal(t, time.Second, s.Min)
	assert.Equal(t, 5*time.Second, s.P95)
}

func TestStartOperationConcurrent(t *testing.T) {
	p := New(0)
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			done := p.StartOperation("meme")
			done()
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(16), p.Snapshot()[0].Count)
}

func TestPercentile(t *testing.T) {
	tests := []struct {
		name    string
		samples []time.Duration
		q       float64
		want    time.Duration
	}{
		{name: "empty", want: 0, q: 0.95},
		{name: "single", samples: []time.Duration{7}, q: 0.95, want: 7},
		{name: "median", samples: []time.Duration{4, 1, 3, 2}, q: 0.5, want: 2},
		{name: "p95 of 20", samples: []time.Duration{20, 19, 18, 17, 16, 15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1}, q: 0.95, want: 19},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, percentile(tt.samples, tt.q))
		})
	}
}

func TestReport(t *testing.T) {
	log, hook := test.NewNullLogger()
	p := New(0)
	p.Record("encode", time.Millisecond)
	p.Report(log)

	require.Len(t, hook.AllEntries(), 1)
	entry := hook.LastEntry()
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "encode", entry.Data["op"])
	assert.Equal(t, int64(1), entry.Data["count"])
}
