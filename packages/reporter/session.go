package reporter

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/abdul-hamid-achik/dromus/packages/core/config"
	"github.com/abdul-hamid-achik/dromus/packages/core/logging"
	"github.com/abdul-hamid-achik/dromus/packages/core/tracker"
	"github.com/abdul-hamid-achik/dromus/packages/output"
	"github.com/abdul-hamid-achik/dromus/packages/stats"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
)

// DefaultTitle is the banner text when no version is known
const DefaultTitle = "Running tests with dromus"

// ErrFinished is returned for events delivered after Finish
var ErrFinished = errors.New("session already finished")

// Session is one reporting run. Worker and Finish are safe for concurrent
// use, also while workers are still delivering events; each Worker must be
// driven from a single goroutine.
type Session struct {
	id        string
	title     string
	width     int
	profile   config.Profile
	formatter *output.Formatter
	sink      output.Sink
	logger    *slog.Logger
	clock     func() time.Time
	timings   *stats.Timings

	mu       sync.Mutex
	workers  map[string]*Worker
	order    []string
	counts   tracker.Counts
	started  time.Time
	finished bool
}

type Option func(*Session)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithClock sets the time source for node start times and the session
// duration
func WithClock(clock func() time.Time) Option {
	return func(s *Session) {
		s.clock = clock
	}
}

// WithVersion puts the version into the banner title
func WithVersion(version string) Option {
	return func(s *Session) {
		if version != "" {
			s.title = fmt.Sprintf("%s (version: %s)", DefaultTitle, version)
		}
	}
}

// WithWidth sets the banner width. Zero keeps the profile's terminal width
// or the detected one.
func WithWidth(width int) Option {
	return func(s *Session) {
		s.width = width
	}
}

func WithSessionID(id string) Option {
	return func(s *Session) {
		s.id = id
	}
}

// WithSlowest sets how many of the slowest cases the summary lists
func WithSlowest(n int) Option {
	return func(s *Session) {
		s.timings = stats.New(n)
	}
}

// NewSession creates a session writing to sink
func NewSession(profile config.Profile, sink output.Sink, opts ...Option) *Session {
	s := &Session{
		id:        uuid.NewString(),
		title:     DefaultTitle,
		profile:   profile,
		formatter: output.NewFormatter(profile),
		sink:      sink,
		logger:    logging.NewNop(),
		clock:     time.Now,
		timings:   stats.New(stats.DefaultSlowest),
		workers:   make(map[string]*Worker),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.width <= 0 {
		s.width = profile.TerminalWidth()
	}
	if s.width <= 0 {
		s.width = output.DefaultTerminalWidth
	}
	s.started = s.clock()
	s.logger = s.logger.With("session", s.id)
	return s
}

// ID returns the session identifier
func (s *Session) ID() string {
	return s.id
}

func (s *Session) Profile() config.Profile {
	return s.profile
}

// Start resets the session clock and writes the banner
func (s *Session) Start() error {
	s.mu.Lock()
	s.started = s.clock()
	s.mu.Unlock()

	s.logger.Debug("session started", "width", s.width)
	return s.write(s.formatter.Banner(s.title, s.width))
}

// Worker returns the worker registered under id, creating it on first use
func (s *Session) Worker(id string) *Worker {
	s.mu.Lock()
	defer s.mu.Unlock()

	if w, ok := s.workers[id]; ok {
		return w
	}
	logger := s.logger.With("worker", id)
	w := &Worker{
		id:      id,
		session: s,
		tracker: tracker.New(tracker.WithClock(s.clock), tracker.WithLogger(logger)),
		logger:  logger,
	}
	s.workers[id] = w
	s.order = append(s.order, id)
	return w
}

// Finish drains every worker, rendering still-open nodes as interrupted,
// then writes the summary. The returned error combines every protocol
// error recorded during the session and is nil for a clean stream.
func (s *Session) Finish() (output.Summary, error) {
	s.mu.Lock()
	s.finished = true
	workers := make([]*Worker, 0, len(s.order))
	for _, id := range s.order {
		workers = append(workers, s.workers[id])
	}
	s.mu.Unlock()

	var errs *multierror.Error
	for _, w := range workers {
		drained, err := w.drain()
		if len(drained) > 0 {
			var lines []output.Line
			for _, n := range drained {
				lines = append(lines, s.formatter.Interrupted(n)...)
			}
			s.closed(drained...)
			errs = multierror.Append(errs, s.write(lines))
		}
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("worker %s: %w", w.id, err))
		}
	}

	s.mu.Lock()
	summary := output.Summary{
		Counts:   s.counts,
		Duration: max(s.clock().Sub(s.started), 0),
		Timings:  s.timings.Summary(),
	}
	s.mu.Unlock()

	errs = multierror.Append(errs, s.write(s.formatter.Summary(summary)))
	s.logger.Debug("session finished",
		"total", summary.Counts.Total(),
		"failed", summary.Counts.Failed,
		"interrupted", summary.Counts.Interrupted,
	)
	return summary, errs.ErrorOrNil()
}

// closed adds nodes that left a worker's stack at the outermost level to
// the session totals
func (s *Session) closed(nodes ...*tracker.Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range nodes {
		if n.Parent == nil {
			s.counts.Add(n.Tally())
		}
	}
}

func (s *Session) isFinished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finished
}

func (s *Session) write(lines []output.Line) error {
	if len(lines) == 0 {
		return nil
	}
	if err := s.sink.Write(lines); err != nil {
		s.logger.Error("sink write failed", "error", err)
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}
