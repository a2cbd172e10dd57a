package output

import (
	"bytes"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/acarl005/stripansi"
	"github.com/fatih/color"
)

// Sink receives rendered lines. Each call carries the block for one event
// and must be written without interleaving with other calls.
type Sink interface {
	Write(lines []Line) error
}

// DefaultIndent is one indent unit
const DefaultIndent = "  "

// ConsoleSink writes lines to a terminal, turning colour intents into ANSI
// sequences
type ConsoleSink struct {
	mu      sync.Mutex
	writer  io.Writer
	indent  string
	noColor bool
	colors  map[Color]*color.Color
}

type ConsoleOption func(*ConsoleSink)

func NewConsoleSink(opts ...ConsoleOption) *ConsoleSink {
	s := &ConsoleSink{
		writer: os.Stdout,
		indent: DefaultIndent,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.colors = map[Color]*color.Color{
		ColorGreen:       color.New(color.FgGreen),
		ColorRed:         color.New(color.FgRed),
		ColorYellow:      color.New(color.FgYellow),
		ColorBlue:        color.New(color.FgBlue),
		ColorGray:        color.New(color.FgHiBlack),
		ColorBrightGreen: color.New(color.FgHiGreen),
		ColorBold:        color.New(color.Bold),
	}
	// the profile already decided whether colours are wanted, so ignore
	// fatih/color's own terminal detection
	for _, c := range s.colors {
		if s.noColor {
			c.DisableColor()
		} else {
			c.EnableColor()
		}
	}
	return s
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(s *ConsoleSink) {
		s.writer = w
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(s *ConsoleSink) {
		s.noColor = nc
	}
}

func WithIndent(unit string) ConsoleOption {
	return func(s *ConsoleSink) {
		s.indent = unit
	}
}

// Write renders the whole block first and hands it to the writer in a
// single call under the sink lock
func (s *ConsoleSink) Write(lines []Line) error {
	var buf bytes.Buffer
	for _, l := range lines {
		buf.WriteString(strings.Repeat(s.indent, l.Indent))
		for _, seg := range l.Segments {
			buf.WriteString(s.paint(seg))
		}
		buf.WriteByte('\n')
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.writer.Write(buf.Bytes())
	return err
}

func (s *ConsoleSink) paint(seg Segment) string {
	if s.noColor {
		return stripansi.Strip(seg.Text)
	}
	c, ok := s.colors[seg.Color]
	if !ok {
		return seg.Text
	}
	return c.Sprint(seg.Text)
}
