package gotest

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/dromus/packages/core/event"
	"github.com/abdul-hamid-achik/dromus/packages/core/logging"
	"github.com/abdul-hamid-achik/dromus/packages/reporter"
	"github.com/hashicorp/go-multierror"
	"github.com/tidwall/gjson"
)

// PackageCaseName names the case reported for a package that failed
// without any failing test, e.g. a panic in init or TestMain
const PackageCaseName = "[package]"

// maxLineSize bounds a single test2json line
const maxLineSize = 4 * 1024 * 1024

// test2json actions
const (
	actionStart  = "start"
	actionRun    = "run"
	actionOutput = "output"
	actionPass   = "pass"
	actionFail   = "fail"
	actionSkip   = "skip"
)

type testState struct {
	output []string
	// subtests sums the elapsed time of finished direct subtests
	subtests time.Duration
}

type packageState struct {
	worker *reporter.Worker
	tests  map[string]*testState
	done   map[string]bool
	output []string
	failed int
}

// Converter turns test2json lines into worker calls. It is not safe for
// concurrent use.
type Converter struct {
	session  *reporter.Session
	logger   *slog.Logger
	packages map[string]*packageState
	order    []string
}

type Option func(*Converter)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Converter) {
		c.logger = logger
	}
}

// NewConverter creates a converter reporting into session
func NewConverter(session *reporter.Session, opts ...Option) *Converter {
	c := &Converter{
		session:  session,
		logger:   logging.NewNop(),
		packages: make(map[string]*packageState),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Consume reads test2json lines from r until EOF or until ctx is done.
// Lines that are not JSON, such as build errors, are skipped.
func (c *Converter) Consume(ctx context.Context, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.HandleLine(scanner.Bytes()); err != nil {
			c.logger.Debug("event not applied", "error", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading test output: %w", err)
	}
	return nil
}

// HandleLine applies one test2json line. The returned error carries
// protocol and sink errors; the converter stays usable after it.
func (c *Converter) HandleLine(line []byte) error {
	if len(strings.TrimSpace(string(line))) == 0 {
		return nil
	}
	if !gjson.ValidBytes(line) {
		c.logger.Debug("skipping non-JSON line", "line", string(line))
		return nil
	}

	r := gjson.ParseBytes(line)
	pkg := r.Get("Package").String()
	if pkg == "" {
		return nil
	}
	action := r.Get("Action").String()
	test := r.Get("Test").String()
	elapsed := seconds(r.Get("Elapsed").Float())

	switch action {
	case actionStart:
		_, err := c.pkg(pkg)
		return err
	case actionRun:
		ps, err := c.pkg(pkg)
		if test != "" {
			delete(ps.done, test)
			ps.test(test)
		}
		return err
	case actionOutput:
		ps, err := c.pkg(pkg)
		out := strings.TrimRight(r.Get("Output").String(), "\r\n")
		if test != "" {
			if !ps.done[test] {
				ts := ps.test(test)
				ts.output = append(ts.output, out)
			}
		} else {
			ps.output = append(ps.output, out)
		}
		return err
	case actionPass, actionFail, actionSkip:
		ps, err := c.pkg(pkg)
		outcome := outcomeOf(action)
		if test != "" {
			return multierror.Append(err, c.finishTest(ps, test, outcome, elapsed)).ErrorOrNil()
		}
		return multierror.Append(err, c.finishPackage(pkg, ps, outcome, elapsed)).ErrorOrNil()
	default:
		return nil
	}
}

// Close reports the tests still running when the input ended as open
// cases, so the session drains them as interrupted
func (c *Converter) Close() error {
	var errs *multierror.Error
	for _, pkg := range c.order {
		ps, ok := c.packages[pkg]
		if !ok {
			continue
		}
		for _, name := range ps.running() {
			errs = multierror.Append(errs, ps.worker.OnCaseStart(name))
		}
		delete(c.packages, pkg)
	}
	c.order = nil
	return errs.ErrorOrNil()
}

// pkg returns the state of a package, opening its suite on first sight
func (c *Converter) pkg(name string) (*packageState, error) {
	if ps, ok := c.packages[name]; ok {
		return ps, nil
	}
	ps := &packageState{
		worker: c.session.Worker(name),
		tests:  make(map[string]*testState),
		done:   make(map[string]bool),
	}
	c.packages[name] = ps
	c.order = append(c.order, name)
	return ps, ps.worker.OnSuiteStart(name)
}

func (c *Converter) finishTest(ps *packageState, name string, outcome event.Outcome, elapsed time.Duration) error {
	ts := ps.test(name)
	delete(ps.tests, name)
	ps.done[name] = true

	// subtests are reported next to their parent, so the parent keeps only
	// the time not already counted by them
	if i := strings.LastIndexByte(name, '/'); i > 0 {
		if parent, ok := ps.tests[name[:i]]; ok {
			parent.subtests += elapsed
		}
	}
	if ts.subtests > 0 {
		elapsed = max(elapsed-ts.subtests, 0)
	}

	var failure *event.Failure
	if outcome == event.Failed {
		ps.failed++
		failure = ParseFailure(name, ts.output)
	}

	var errs *multierror.Error
	errs = multierror.Append(errs, ps.worker.OnCaseStart(name))
	errs = multierror.Append(errs, ps.worker.OnCaseFinish(outcome, failure, elapsed))
	return errs.ErrorOrNil()
}

func (c *Converter) finishPackage(pkg string, ps *packageState, outcome event.Outcome, elapsed time.Duration) error {
	var errs *multierror.Error

	if outcome == event.Failed && ps.failed == 0 && len(ps.tests) == 0 {
		failure := ParseFailure(PackageCaseName, ps.output)
		if failure.Message == "" {
			failure.Message = "package " + pkg + " failed"
		}
		errs = multierror.Append(errs, ps.worker.OnCaseStart(PackageCaseName))
		errs = multierror.Append(errs, ps.worker.OnCaseFinish(event.Failed, failure, elapsed))
	}

	// tests still running when the package ends, e.g. after a timeout
	// panic, are closed as interrupted by the suite finish
	running := ps.running()
	if len(running) > 0 {
		c.logger.Warn("package finished with running tests", "package", pkg, "running", len(running))
	}
	for _, name := range running {
		errs = multierror.Append(errs, ps.worker.OnCaseStart(name))
	}

	errs = multierror.Append(errs, ps.worker.OnSuiteFinish(elapsed))
	delete(c.packages, pkg)
	for i, name := range c.order {
		if name == pkg {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return errs.ErrorOrNil()
}

func (ps *packageState) test(name string) *testState {
	ts, ok := ps.tests[name]
	if !ok {
		ts = &testState{}
		ps.tests[name] = ts
	}
	return ts
}

// running returns the open tests sorted so that parents precede subtests
func (ps *packageState) running() []string {
	names := make([]string, 0, len(ps.tests))
	for name := range ps.tests {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func outcomeOf(action string) event.Outcome {
	switch action {
	case actionPass:
		return event.Passed
	case actionFail:
		return event.Failed
	default:
		return event.Skipped
	}
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second)).Round(time.Microsecond)
}
