package stats

import (
	"sort"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

const (
	// histogram range in microseconds: 1us to 1h
	minTrackable = 1
	maxTrackable = int64(time.Hour / time.Microsecond)
	sigFigs      = 3

	// DefaultSlowest is the number of slowest cases kept
	DefaultSlowest = 5
)

// Entry is one finished case
type Entry struct {
	Suite    string
	Name     string
	Duration time.Duration
}

// Timings collects case durations across every worker of a session.
// It is safe for concurrent use.
type Timings struct {
	mu        sync.Mutex
	histogram *hdrhistogram.Histogram
	total     time.Duration
	slowest   []Entry
	limit     int
}

// New creates a collector keeping the limit slowest cases
func New(limit int) *Timings {
	if limit < 0 {
		limit = 0
	}
	return &Timings{
		histogram: hdrhistogram.New(minTrackable, maxTrackable, sigFigs),
		limit:     limit,
	}
}

// Record adds a finished case duration
func (t *Timings) Record(suite, name string, d time.Duration) {
	us := d.Microseconds()
	if us < minTrackable {
		us = minTrackable
	}
	if us > maxTrackable {
		us = maxTrackable
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	_ = t.histogram.RecordValue(us)
	t.total += d
	t.insertSlowest(Entry{Suite: suite, Name: name, Duration: d})
}

// insertSlowest keeps slowest sorted by duration, earlier arrivals first on ties
func (t *Timings) insertSlowest(e Entry) {
	if t.limit == 0 {
		return
	}
	idx := sort.Search(len(t.slowest), func(i int) bool {
		return t.slowest[i].Duration < e.Duration
	})
	if idx >= t.limit {
		return
	}
	t.slowest = append(t.slowest, Entry{})
	copy(t.slowest[idx+1:], t.slowest[idx:])
	t.slowest[idx] = e
	if len(t.slowest) > t.limit {
		t.slowest = t.slowest[:t.limit]
	}
}

// Summary holds the aggregated timings
type Summary struct {
	Count   int64
	Total   time.Duration
	Min     time.Duration
	Max     time.Duration
	Mean    time.Duration
	P50     time.Duration
	P95     time.Duration
	P99     time.Duration
	Slowest []Entry
}

// Summary returns the current aggregate
func (t *Timings) Summary() Summary {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := Summary{
		Count:   t.histogram.TotalCount(),
		Total:   t.total,
		Slowest: append([]Entry(nil), t.slowest...),
	}
	if s.Count == 0 {
		return s
	}

	s.Min = usToDuration(t.histogram.Min())
	s.Max = usToDuration(t.histogram.Max())
	s.Mean = time.Duration(t.histogram.Mean() * float64(time.Microsecond))
	s.P50 = usToDuration(t.histogram.ValueAtQuantile(50))
	s.P95 = usToDuration(t.histogram.ValueAtQuantile(95))
	s.P99 = usToDuration(t.histogram.ValueAtQuantile(99))
	return s
}

func usToDuration(us int64) time.Duration {
	return time.Duration(us) * time.Microsecond
}
