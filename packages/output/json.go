package output

import (
	"encoding/json"
	"io"
	"os"
	"sync"
)

// JSONLine is the machine-readable form of one rendered line
type JSONLine struct {
	Session string `json:"session,omitempty"`
	Seq     int    `json:"seq"`
	Indent  int    `json:"indent"`
	Class   string `json:"class,omitempty"`
	Text    string `json:"text"`
}

// JSONSink writes one JSON object per line, keeping the colour class as
// data instead of escape codes
type JSONSink struct {
	mu      sync.Mutex
	writer  io.Writer
	session string
	seq     int
}

type JSONOption func(*JSONSink)

func NewJSONSink(opts ...JSONOption) *JSONSink {
	s := &JSONSink{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(s *JSONSink) {
		s.writer = w
	}
}

// JSONWithSession tags every line with a session ID
func JSONWithSession(id string) JSONOption {
	return func(s *JSONSink) {
		s.session = id
	}
}

func (s *JSONSink) Write(lines []Line) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	enc := json.NewEncoder(s.writer)
	enc.SetEscapeHTML(false)
	for _, l := range lines {
		s.seq++
		out := JSONLine{
			Session: s.session,
			Seq:     s.seq,
			Indent:  l.Indent,
			Text:    l.Text(),
		}
		if l.Class != ColorNone {
			out.Class = l.Class.String()
		}
		if err := enc.Encode(out); err != nil {
			return err
		}
	}
	return nil
}
