package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/dromus/packages/core/tracker"
	"github.com/abdul-hamid-achik/dromus/packages/stats"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-runewidth"
)

const (
	allPassedText   = "✨ All tests passed!"
	someFailedText  = "❌ Some tests failed."
	noTestsRunText  = "No tests were run."
	summaryTitle    = "Test Summary:"
	summaryRuleChar = "─"
)

// Summary is the session-wide result shown when reporting ends
type Summary struct {
	Counts   tracker.Counts
	Duration time.Duration
	Timings  stats.Summary
}

// Heading renders chr repeated across width columns
func (f *Formatter) Heading(chr string, width int, c Color) Line {
	w := runewidth.StringWidth(chr)
	if w == 0 || width <= 0 {
		return PlainLine(0, "", ColorNone)
	}
	return PlainLine(0, strings.Repeat(chr, width/w), f.tint(c))
}

// Banner renders the session opening block
func (f *Formatter) Banner(title string, width int) []Line {
	return []Line{
		PlainLine(0, "", ColorNone),
		f.Heading("=", width, ColorBrightGreen),
		PlainLine(0, title, f.tint(ColorGreen)),
		f.Heading("-", width, ColorBrightGreen),
	}
}

// Summary renders the final totals block
func (f *Formatter) Summary(s Summary) []Line {
	c := s.Counts
	lines := []Line{
		PlainLine(0, "", ColorNone),
		PlainLine(0, summaryTitle, f.tint(ColorBlue)),
		PlainLine(0, strings.Repeat(summaryRuleChar, runewidth.StringWidth(summaryTitle)), f.tint(ColorBlue)),
	}

	total := Line{Segments: []Segment{
		{Text: "Total:", Color: f.tint(ColorGray)},
		{Text: fmt.Sprintf(" %d tests, ", c.Total())},
		{Text: f.profile.PassSymbol(), Color: f.tint(ColorGreen)},
		{Text: fmt.Sprintf(" %d passed, ", c.Passed)},
		{Text: f.profile.FailSymbol(), Color: f.tint(ColorRed)},
		{Text: fmt.Sprintf(" %d failed, ", c.Failed)},
		{Text: f.profile.SkipSymbol(), Color: f.tint(ColorYellow)},
		{Text: fmt.Sprintf(" %d skipped", c.Skipped)},
	}}
	if c.Interrupted > 0 {
		total.Segments = append(total.Segments,
			Segment{Text: ", "},
			Segment{Text: f.profile.InterruptedSymbol(), Color: f.tint(ColorRed)},
			Segment{Text: fmt.Sprintf(" %d interrupted", c.Interrupted)},
		)
	}
	lines = append(lines, total, Line{Segments: []Segment{
		{Text: "Time:", Color: f.tint(ColorGray)},
		{Text: fmt.Sprintf(" %.3fs", s.Duration.Seconds())},
	}})

	if f.profile.ShowTimings() && s.Timings.Count > 0 {
		lines = append(lines, Line{Segments: []Segment{
			{Text: "Cases:", Color: f.tint(ColorGray)},
			{Text: fmt.Sprintf(" p50 %s, p95 %s, max %s",
				formatDuration(s.Timings.P50), formatDuration(s.Timings.P95), formatDuration(s.Timings.Max))},
		}})
		lines = append(lines, f.slowestTable(s.Timings.Slowest)...)
	}

	lines = append(lines, PlainLine(0, "", ColorNone))
	switch {
	case c.Total() == 0:
		lines = append(lines, PlainLine(0, noTestsRunText, f.tint(ColorYellow)))
	case c.Failed == 0 && c.Interrupted == 0:
		lines = append(lines, PlainLine(0, allPassedText, f.tint(ColorGreen)))
	default:
		lines = append(lines, PlainLine(0, someFailedText, f.tint(ColorRed)))
	}
	return lines
}

// slowestTable renders the slowest cases as a table
func (f *Formatter) slowestTable(entries []stats.Entry) []Line {
	if len(entries) == 0 {
		return nil
	}

	t := table.NewWriter()
	t.SetTitle("Slowest cases")
	t.AppendHeader(table.Row{"#", "Suite", "Case", "Duration"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "#", Align: text.AlignRight},
		{Name: "Duration", Align: text.AlignRight},
	})
	for i, e := range entries {
		t.AppendRow(table.Row{i + 1, e.Suite, e.Name, formatDuration(e.Duration)})
	}
	t.SetStyle(table.StyleLight)

	var lines []Line
	for _, row := range strings.Split(t.Render(), "\n") {
		lines = append(lines, PlainLine(0, row, f.tint(ColorGray)))
	}
	return lines
}

// Failed reports whether any case failed or was interrupted
func (s Summary) Failed() bool {
	return s.Counts.Failed > 0 || s.Counts.Interrupted > 0
}
