package logging

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const logFilePrefix = "assistant-"

// RotatingWriter writes to one log file per ISO week. A file that reaches
// maxSize is continued in a numbered sibling (assistant-2026-W42_01.log).
// Files older than the retention period are removed once a day.
type RotatingWriter struct {
	dir       string
	retention time.Duration
	maxSize   int64

	mu   sync.Mutex
	file *os.File
	week string
	part int
	size int64

	cancel context.CancelFunc
	done   chan struct{}
}

// NewRotatingWriter opens the current week's file in dir and starts the
// retention sweeper. maxSize <= 0 disables size rotation.
func NewRotatingWriter(dir string, retentionWeeks int, maxSize int64) (*RotatingWriter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &RotatingWriter{
		dir:       dir,
		retention: time.Duration(retentionWeeks) * 7 * 24 * time.Hour,
		maxSize:   maxSize,
		cancel:    cancel,
		done:      make(chan struct{}),
	}

	w.mu.Lock()
	err := w.open(weekKey(time.Now()))
	w.mu.Unlock()
	if err != nil {
		cancel()
		return nil, err
	}

	go w.sweep(ctx)
	return w, nil
}

// weekKey returns the ISO week in YYYY-Www format
func weekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

func (w *RotatingWriter) fileName(week string, part int) string {
	if part == 0 {
		return filepath.Join(w.dir, logFilePrefix+week+".log")
	}
	return filepath.Join(w.dir, fmt.Sprintf("%s%s_%02d.log", logFilePrefix, week, part))
}

// open selects the first file of the week with room left and opens it for
// appending. Caller holds mu.
func (w *RotatingWriter) open(week string) error {
	if w.file != nil {
		_ = w.file.Close()
		w.file = nil
	}

	part := 0
	if week == w.week {
		part = w.part
	}
	for {
		info, err := os.Stat(w.fileName(week, part))
		if err != nil || w.maxSize <= 0 || info.Size() < w.maxSize {
			break
		}
		part++
	}

	path := w.fileName(week, part)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	w.size = 0
	if info, err := f.Stat(); err == nil {
		w.size = info.Size()
	}
	w.file, w.week, w.part = f, week, part
	return nil
}

// Write implements io.Writer
func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	week := weekKey(time.Now())
	switch {
	case week != w.week:
		w.part = 0
		if err := w.open(week); err != nil {
			return 0, err
		}
	case w.maxSize > 0 && w.size > 0 && w.size+int64(len(p)) > w.maxSize:
		w.part++
		if err := w.open(week); err != nil {
			return 0, err
		}
	}

	if w.file == nil {
		return 0, fmt.Errorf("no log file available")
	}

	n, err := w.file.Write(p)
	w.size += int64(n)
	return n, err
}

// CurrentFile returns the path of the file being written
func (w *RotatingWriter) CurrentFile() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return ""
	}
	return w.file.Name()
}

func (w *RotatingWriter) sweep(ctx context.Context) {
	defer close(w.done)

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.removeExpired(time.Now()); err != nil {
				fmt.Fprintf(os.Stderr, "log retention sweep failed: %v\n", err)
			}
		}
	}
}

// removeExpired deletes log files last modified before now minus the
// retention period and returns how many were removed
func (w *RotatingWriter) removeExpired(now time.Time) (int, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read log directory: %w", err)
	}

	cutoff := now.Add(-w.retention)
	current := w.CurrentFile()
	removed := 0

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, logFilePrefix) || !strings.HasSuffix(name, ".log") {
			continue
		}
		path := filepath.Join(w.dir, name)
		if path == current {
			continue
		}

		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(path); err == nil {
			removed++
		}
	}

	return removed, nil
}

// Close stops the sweeper and closes the current file
func (w *RotatingWriter) Close() error {
	w.cancel()
	<-w.done

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}
