package gotest

import (
	"regexp"
	"strings"

	"github.com/abdul-hamid-achik/dromus/packages/core/event"
	"github.com/acarl005/stripansi"
)

var (
	// "    calc_test.go:12: message"
	logLineRe = regexp.MustCompile(`^ {4}(\S+\.go:\d+): ?(.*)$`)
	// "goroutine 7 [running]:"
	goroutineRe = regexp.MustCompile(`^goroutine \d+ \[.*\]:$`)
)

// framing lines written by the testing package itself
var framingPrefixes = []string{
	"=== RUN", "=== PAUSE", "=== CONT", "=== NAME",
	"--- FAIL:", "--- PASS:", "--- SKIP:",
	"FAIL\t", "ok  \t", "exit status ",
}

// ParseFailure builds a failure from the output captured for one test.
// Panics become a message, a cause chain and the frames of the panicking
// goroutine. Otherwise each t.Error style entry contributes its text to the
// message and its location as a frame; testify blocks contribute their
// Error and Messages fields and every Error Trace location.
func ParseFailure(test string, output []string) *event.Failure {
	lines := clean(output)

	for i, l := range lines {
		if strings.HasPrefix(l, "panic: ") {
			return parsePanic(lines[i:])
		}
	}
	return parseLogEntries(test, lines)
}

func clean(output []string) []string {
	var lines []string
	for _, chunk := range output {
		chunk = strings.TrimSuffix(stripansi.Strip(chunk), "\n")
		for _, l := range strings.Split(chunk, "\n") {
			l = strings.TrimRight(l, "\r")
			if isFraming(l) {
				continue
			}
			lines = append(lines, l)
		}
	}
	return lines
}

func isFraming(l string) bool {
	if l == "FAIL" || l == "PASS" {
		return true
	}
	trimmed := strings.TrimLeft(l, " ")
	for _, p := range framingPrefixes {
		if strings.HasPrefix(trimmed, p) {
			return true
		}
	}
	return false
}

type logEntry struct {
	location string
	lines    []string
}

func parseLogEntries(test string, lines []string) *event.Failure {
	var entries []*logEntry
	var loose []string
	for _, l := range lines {
		if m := logLineRe.FindStringSubmatch(l); m != nil {
			entries = append(entries, &logEntry{location: m[1], lines: []string{m[2]}})
			continue
		}
		if len(entries) > 0 && strings.HasPrefix(l, "        ") {
			last := entries[len(entries)-1]
			last.lines = append(last.lines, strings.TrimPrefix(l, "        "))
			continue
		}
		if strings.TrimSpace(l) != "" {
			loose = append(loose, strings.TrimSpace(l))
		}
	}

	failure := &event.Failure{}
	var messages []string
	for _, e := range entries {
		if fields, ok := testifyFields(e.lines); ok {
			msg := strings.Join(fields["Error"], "\n")
			if m := fields["Messages"]; len(m) > 0 {
				msg += "\n" + strings.Join(m, "\n")
			}
			messages = append(messages, msg)
			traces := fields["Error Trace"]
			if len(traces) == 0 {
				traces = []string{e.location}
			}
			for _, loc := range traces {
				failure.Frames = appendFrame(failure.Frames, event.StackFrame{Symbol: test, Location: loc})
			}
			continue
		}
		messages = append(messages, strings.TrimSpace(strings.Join(e.lines, "\n")))
		failure.Frames = appendFrame(failure.Frames, event.StackFrame{Symbol: test, Location: e.location})
	}
	messages = append(messages, loose...)
	failure.Message = strings.TrimSpace(strings.Join(messages, "\n"))
	return failure
}

// testifyFields splits an assertion block of the form
// "\tError Trace:\t/x_test.go:15" into named fields
func testifyFields(lines []string) (map[string][]string, bool) {
	fields := make(map[string][]string)
	current := ""
	for _, l := range lines {
		l = strings.TrimLeft(l, "\t")
		head, value, found := strings.Cut(l, "\t")
		if !found {
			head, value = "", l
		}
		name := strings.TrimSpace(head)
		if strings.HasSuffix(name, ":") {
			current = strings.TrimSuffix(name, ":")
		} else if name != "" {
			value = l
		}
		if current == "" {
			continue
		}
		if v := strings.TrimSpace(value); v != "" {
			fields[current] = append(fields[current], v)
		}
	}
	_, hasError := fields["Error"]
	return fields, hasError
}

func parsePanic(lines []string) *event.Failure {
	failure := &event.Failure{Message: panicMessage(strings.TrimPrefix(lines[0], "panic: "))}

	i := 1
	for ; i < len(lines); i++ {
		l := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(l, "panic: ") {
			break
		}
		msg := panicMessage(strings.TrimPrefix(l, "panic: "))
		if msg != failure.Message && !hasCause(failure.Causes, msg) {
			failure.Causes = append(failure.Causes, event.Cause{Message: msg})
		}
	}

	for ; i < len(lines); i++ {
		if goroutineRe.MatchString(lines[i]) {
			failure.Frames = parseGoroutine(lines[i+1:])
			break
		}
	}
	return failure
}

// panicMessage drops the "[recovered]" marker the testing package adds
func panicMessage(s string) string {
	if i := strings.LastIndex(s, " [recovered"); i >= 0 && strings.HasSuffix(s, "]") {
		return s[:i]
	}
	return s
}

func hasCause(causes []event.Cause, msg string) bool {
	for _, c := range causes {
		if c.Message == msg {
			return true
		}
	}
	return false
}

// parseGoroutine reads function/location pairs until the end of the
// goroutine block. Frames of the recovery machinery above the panic call
// are dropped.
func parseGoroutine(lines []string) []event.StackFrame {
	var frames []event.StackFrame
	panicAt := -1
	for i := 0; i < len(lines); i++ {
		l := lines[i]
		if strings.TrimSpace(l) == "" || goroutineRe.MatchString(l) {
			break
		}
		if strings.HasPrefix(l, "\t") {
			continue
		}
		frame := event.StackFrame{Symbol: functionName(l)}
		if i+1 < len(lines) && strings.HasPrefix(lines[i+1], "\t") {
			frame.Location = frameLocation(lines[i+1])
			i++
		}
		if frame.Symbol == "panic" && panicAt < 0 {
			panicAt = len(frames)
		}
		frames = append(frames, frame)
	}
	if panicAt >= 0 {
		frames = frames[panicAt+1:]
	}
	return frames
}

func functionName(l string) string {
	l = strings.TrimSpace(l)
	if rest, ok := strings.CutPrefix(l, "created by "); ok {
		if i := strings.Index(rest, " in goroutine "); i >= 0 {
			rest = rest[:i]
		}
		return "created by " + rest
	}
	if strings.HasSuffix(l, ")") {
		if i := strings.LastIndex(l, "("); i > 0 {
			return l[:i]
		}
	}
	return l
}

func frameLocation(l string) string {
	l = strings.TrimSpace(l)
	if i := strings.Index(l, " +0x"); i >= 0 {
		return l[:i]
	}
	return l
}

func appendFrame(frames []event.StackFrame, f event.StackFrame) []event.StackFrame {
	for _, existing := range frames {
		if existing == f {
			return frames
		}
	}
	return append(frames, f)
}
