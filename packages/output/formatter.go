package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/dromus/packages/core/config"
	"github.com/abdul-hamid-achik/dromus/packages/core/event"
	"github.com/abdul-hamid-achik/dromus/packages/core/tracker"
	"github.com/abdul-hamid-achik/dromus/packages/exception"
	"github.com/mattn/go-runewidth"
)

// Formatter renders tracker nodes into lines. It holds no state besides the
// profile, so the same node always renders the same way.
type Formatter struct {
	profile     config.Profile
	symbolWidth int
}

// NewFormatter creates a formatter for the given profile
func NewFormatter(profile config.Profile) *Formatter {
	width := 0
	for _, s := range []string{profile.PassSymbol(), profile.FailSymbol(), profile.SkipSymbol(), profile.InterruptedSymbol()} {
		width = max(width, runewidth.StringWidth(s))
	}
	return &Formatter{profile: profile, symbolWidth: width}
}

// Profile returns the profile the formatter renders with
func (f *Formatter) Profile() config.Profile {
	return f.profile
}

// formatDuration renders elapsed time with fixed precision
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.3fs", d.Seconds())
}

// tint drops colour intents when colours are disabled
func (f *Formatter) tint(c Color) Color {
	if !f.profile.UseColors() {
		return ColorNone
	}
	return c
}

func (f *Formatter) symbol(o event.Outcome) string {
	var s string
	switch o {
	case event.Passed:
		s = f.profile.PassSymbol()
	case event.Failed:
		s = f.profile.FailSymbol()
	case event.Skipped:
		s = f.profile.SkipSymbol()
	case event.Interrupted:
		s = f.profile.InterruptedSymbol()
	default:
		s = "?"
	}
	return runewidth.FillRight(s, f.symbolWidth)
}

func outcomeColor(o event.Outcome) Color {
	switch o {
	case event.Passed:
		return ColorGreen
	case event.Failed, event.Interrupted:
		return ColorRed
	case event.Skipped:
		return ColorYellow
	default:
		return ColorGray
	}
}

func (f *Formatter) timing(d time.Duration) Segment {
	return Segment{Text: " (" + formatDuration(d) + ")", Color: f.tint(ColorGray)}
}

// SuiteHeader renders the line announcing a suite
func (f *Formatter) SuiteHeader(n *tracker.Node) []Line {
	return []Line{PlainLine(n.Depth, n.Name, f.tint(ColorBlue))}
}

// CaseResult renders a finished case, followed by its exception block one
// indent level deeper
func (f *Formatter) CaseResult(n *tracker.Node) []Line {
	class := f.tint(outcomeColor(n.Outcome))
	line := Line{
		Indent: n.Depth,
		Class:  class,
		Segments: []Segment{
			{Text: f.symbol(n.Outcome), Color: class},
		},
	}

	name := f.caseName(n)
	if name != "" {
		line.Segments = append(line.Segments, Segment{Text: " "})
		if n.Parent != nil && f.profile.ShowModuleNames() {
			module := n.Parent.ShortName()
			if f.profile.ShowMethodNames() {
				module += "."
			}
			line.Segments = append(line.Segments, Segment{Text: module, Color: f.tint(ColorGray)})
		}
		if f.profile.ShowMethodNames() {
			line.Segments = append(line.Segments, Segment{Text: n.Name})
		}
	}
	if n.Outcome == event.Interrupted {
		line.Segments = append(line.Segments, Segment{Text: " [interrupted]", Color: class})
	}
	if f.profile.ShowTimings() {
		line.Segments = append(line.Segments, f.timing(n.Duration))
	}

	lines := []Line{line}
	if n.Outcome != event.Failed {
		return lines
	}
	for i, text := range exception.Render(n.Failure, f.profile) {
		c := f.tint(ColorGray)
		if i == 0 {
			c = f.tint(ColorRed)
		}
		for _, part := range strings.Split(text, "\n") {
			lines = append(lines, PlainLine(n.Depth+1, part, c))
		}
	}
	return lines
}

func (f *Formatter) caseName(n *tracker.Node) string {
	if f.profile.ShowMethodNames() {
		return n.Name
	}
	if n.Parent != nil && f.profile.ShowModuleNames() {
		return n.Parent.ShortName()
	}
	return ""
}

// SuiteSummary renders the closing line of a suite with its case counts
// and, when timings are on, the total of its case durations
func (f *Formatter) SuiteSummary(n *tracker.Node) []Line {
	class := f.tint(outcomeColor(n.Outcome))
	line := Line{
		Indent: n.Depth,
		Class:  class,
		Segments: []Segment{
			{Text: f.symbol(n.Outcome), Color: class},
			{Text: " " + n.Name + ": "},
			{Text: countsText(n.Counts)},
		},
	}
	if n.Outcome == event.Interrupted {
		line.Segments = append(line.Segments, Segment{Text: " [interrupted]", Color: class})
	}
	if f.profile.ShowTimings() {
		line.Segments = append(line.Segments, f.timing(n.Total))
	}
	return []Line{line}
}

// Interrupted renders a node closed without its finish event
func (f *Formatter) Interrupted(n *tracker.Node) []Line {
	if n.Kind == event.Suite {
		return f.SuiteSummary(n)
	}
	return f.CaseResult(n)
}

func countsText(c tracker.Counts) string {
	parts := []string{
		fmt.Sprintf("%d passed", c.Passed),
		fmt.Sprintf("%d failed", c.Failed),
		fmt.Sprintf("%d skipped", c.Skipped),
	}
	if c.Interrupted > 0 {
		parts = append(parts, fmt.Sprintf("%d interrupted", c.Interrupted))
	}
	return strings.Join(parts, ", ")
}
