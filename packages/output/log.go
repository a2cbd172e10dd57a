package output

import (
	"context"
	"log/slog"
	"strings"
	"sync"
)

// LogSink forwards rendered lines to a structured logger, one record per
// non-blank line
type LogSink struct {
	mu     sync.Mutex
	logger *slog.Logger
	level  slog.Level
}

func NewLogSink(logger *slog.Logger, level slog.Level) *LogSink {
	return &LogSink{logger: logger, level: level}
}

func (s *LogSink) Write(lines []Line) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, l := range lines {
		if strings.TrimSpace(l.Text()) == "" {
			continue
		}
		s.logger.LogAttrs(context.Background(), s.level, l.Text(),
			slog.Int("indent", l.Indent),
			slog.String("class", l.Class.String()),
		)
	}
	return nil
}
