package output

import "strings"

// Color is a colour intent attached to rendered text. Sinks decide how,
// or whether, to show it.
type Color int

const (
	ColorNone Color = iota
	ColorGreen
	ColorRed
	ColorYellow
	ColorBlue
	ColorGray
	ColorBrightGreen
	ColorBold
)

func (c Color) String() string {
	switch c {
	case ColorGreen:
		return "green"
	case ColorRed:
		return "red"
	case ColorYellow:
		return "yellow"
	case ColorBlue:
		return "blue"
	case ColorGray:
		return "gray"
	case ColorBrightGreen:
		return "bright-green"
	case ColorBold:
		return "bold"
	default:
		return "none"
	}
}

// Segment is a run of text with one colour intent
type Segment struct {
	Text  string
	Color Color
}

// Line is one printable line. Indent counts indent units, not spaces.
// Class is the colour class of the whole line, ColorNone when colours are off.
type Line struct {
	Indent   int
	Class    Color
	Segments []Segment
}

// Text returns the line content without indentation or colour
func (l Line) Text() string {
	var b strings.Builder
	for _, s := range l.Segments {
		b.WriteString(s.Text)
	}
	return b.String()
}

// PlainLine builds a single-segment line
func PlainLine(indent int, text string, c Color) Line {
	return Line{Indent: indent, Class: c, Segments: []Segment{{Text: text, Color: c}}}
}

// Texts returns the plain text of each line, for tests and logs
func Texts(lines []Line) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Text()
	}
	return out
}
