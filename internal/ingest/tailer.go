// Package ingest provides the live log source for watch mode.
package ingest

import (
	"fmt"

	"github.com/nxadm/tail"
	log "github.com/sirupsen/logrus"
)

// LogLine is a raw line from a tailed log source
type LogLine struct {
	Source    string
	Timestamp int64 // wall clock arrival
	Content   string
}

// FileTailer follows a single log file, surviving rotation
type FileTailer struct {
	path string
	t    *tail.Tail
}

// NewFileTailer creates a tailer for a path
func NewFileTailer(path string) *FileTailer {
	return &FileTailer{
		path: path,
	}
}

// Start begins tailing the file and returns a channel of lines
func (f *FileTailer) Start() (<-chan LogLine, error) {
	// Follow, reopen on rotate; poll as a fallback for filesystems
	// without inotify (container mounts).
	config := tail.Config{
		Follow:    true,
		ReOpen:    true,
		MustExist: false,
		Poll:      true,
		Logger:    tail.DiscardingLogger,
	}

	log.WithField("path", f.path).Info("starting tailer (waiting if not present)")

	t, err := tail.TailFile(f.path, config)
	if err != nil {
		return nil, fmt.Errorf("failed to tail file %s: %w", f.path, err)
	}
	f.t = t

	out := make(chan LogLine)

	go func() {
		defer close(out)
		for line := range t.Lines {
			if line.Err != nil {
				// Rotation churn produces transient errors; skip quietly.
				continue
			}
			out <- LogLine{
				Source:    f.path,
				Timestamp: line.Time.Unix(),
				Content:   line.Text,
			}
		}
	}()

	return out, nil
}

// Stop stops the tailing
func (f *FileTailer) Stop() error {
	if f.t != nil {
		return f.t.Stop()
	}
	return nil
}
