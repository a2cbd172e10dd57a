package gotest

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Follow reads path like Consume, then keeps reading lines appended to it
// until ctx is done or the file is removed or renamed
func (c *Converter) Follow(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	// watch the directory so removals and renames are seen too
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	t := &tail{reader: bufio.NewReader(f), handle: c.handle}
	if err := t.drain(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			t.flush()
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Has(fsnotify.Write) {
				if err := t.drain(); err != nil {
					return err
				}
			}
			if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
				c.logger.Debug("followed file went away", "path", path)
				if err := t.drain(); err != nil {
					return err
				}
				t.flush()
				return nil
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			c.logger.Warn("watcher error", "error", err)
		}
	}
}

func (c *Converter) handle(line []byte) {
	if err := c.HandleLine(line); err != nil {
		c.logger.Debug("event not applied", "error", err)
	}
}

// tail reads complete lines and keeps a trailing partial line until the
// rest of it is written
type tail struct {
	reader  *bufio.Reader
	partial []byte
	handle  func([]byte)
}

func (t *tail) drain() error {
	for {
		chunk, err := t.reader.ReadBytes('\n')
		t.partial = append(t.partial, chunk...)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("reading followed file: %w", err)
		}
		t.handle(bytes.TrimRight(t.partial, "\r\n"))
		t.partial = t.partial[:0]
	}
}

// flush hands over a final line that never got its newline
func (t *tail) flush() {
	if len(bytes.TrimSpace(t.partial)) > 0 {
		t.handle(t.partial)
	}
	t.partial = t.partial[:0]
}
