// Package audit appends alerts to a JSON-lines trail so findings from a
// live watch session survive for later review.
package audit

import (
	"fmt"
	"os"
	"sync"

	"github.com/goccy/go-json"

	"github.com/guendazorz/log-detective/internal/event"
)

// Logger appends alerts to the audit trail
type Logger struct {
	mu       sync.Mutex
	filePath string
}

// NewLogger creates an audit logger writing to filePath
func NewLogger(filePath string) *Logger {
	return &Logger{
		filePath: filePath,
	}
}

// LogAlert writes one alert to the audit trail in a thread-safe manner
func (l *Logger) LogAlert(a event.Alert) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	if err := encoder.Encode(a); err != nil {
		return fmt.Errorf("failed to encode alert: %w", err)
	}

	return nil
}
