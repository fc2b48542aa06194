package audit

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of audit event
type EventType string

const (
	// Vault events
	EventProfileCreate   EventType = "PROFILE_CREATE"
	EventProfileUpdate   EventType = "PROFILE_UPDATE"
	EventProfileActivate EventType = "PROFILE_ACTIVATE"
	EventProfileDelete   EventType = "PROFILE_DELETE"

	// System events
	EventError EventType = "ERROR"
)

// Severity represents the severity level of an audit event
type Severity string

const (
	SeverityInfo    Severity = "INFO"
	SeverityWarning Severity = "WARNING"
	SeverityError   Severity = "ERROR"
)

// AuditEvent represents a single audit log entry
type AuditEvent struct {
	ID        string                 `json:"id"`
	Timestamp time.Time              `json:"timestamp"`
	Type      EventType              `json:"type"`
	Severity  Severity               `json:"severity"`
	Source    string                 `json:"source"`
	User      string                 `json:"user,omitempty"`
	Profile   string                 `json:"profile,omitempty"`
	Action    string                 `json:"action"`
	Result    string                 `json:"result"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

// Logger appends audit events to a JSON-lines file.
// Writes are synchronous; a nil *Logger discards everything.
type Logger struct {
	mu       sync.Mutex
	file     *os.File
	filepath string
	maxSize  int64
	maxAge   time.Duration
	encoder  *json.Encoder
	user     string
}

// Config represents logger configuration
type Config struct {
	FilePath string
	MaxSize  int64         // Maximum file size in bytes before rotation
	MaxAge   time.Duration // Maximum age of rotated log files
}

// NewLogger creates a new audit logger
func NewLogger(config Config) (*Logger, error) {
	// Ensure directory exists
	dir := filepath.Dir(config.FilePath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create audit log directory: %w", err)
	}

	// Open log file
	file, err := os.OpenFile(config.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log file: %w", err)
	}

	logger := &Logger{
		file:     file,
		filepath: config.FilePath,
		maxSize:  config.MaxSize,
		maxAge:   config.MaxAge,
		encoder:  json.NewEncoder(file),
		user:     currentUser(),
	}

	logger.performMaintenance()

	return logger, nil
}

// Path returns the audit log file path
func (l *Logger) Path() string {
	if l == nil {
		return ""
	}
	return l.filepath
}

// Log writes an audit event
func (l *Logger) Log(event *AuditEvent) {
	if l == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if event.User == "" {
		event.User = l.user
	}

	l.writeEvent(event)
}

// LogProfileOperation logs a vault operation on a profile
func (l *Logger) LogProfileOperation(operation EventType, profile string, success bool, details map[string]interface{}) {
	result := "SUCCESS"
	severity := SeverityInfo

	if !success {
		result = "FAILED"
		severity = SeverityError
	}

	l.Log(&AuditEvent{
		Type:     operation,
		Severity: severity,
		Source:   "vault",
		Profile:  profile,
		Action:   string(operation),
		Result:   result,
		Details:  sanitizeDetails(details),
	})
}

// LogWarning logs a non-fatal condition observed during an operation
func (l *Logger) LogWarning(source, profile, message string) {
	l.Log(&AuditEvent{
		Type:     EventError,
		Severity: SeverityWarning,
		Source:   source,
		Profile:  profile,
		Action:   "warning",
		Result:   message,
	})
}

// LogError logs an error event
func (l *Logger) LogError(source, profile string, err error, details map[string]interface{}) {
	l.Log(&AuditEvent{
		Type:     EventError,
		Severity: SeverityError,
		Source:   source,
		Profile:  profile,
		Action:   "error",
		Result:   "ERROR",
		Error:    err.Error(),
		Details:  sanitizeDetails(details),
	})
}

// writeEvent writes an event to the log file
func (l *Logger) writeEvent(event *AuditEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.encoder.Encode(event); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write audit event: %v\n", err)
	}

	// Check if rotation is needed
	if l.maxSize > 0 {
		if info, err := l.file.Stat(); err == nil && info.Size() > l.maxSize {
			l.rotate()
		}
	}
}

// rotate performs log rotation
func (l *Logger) rotate() {
	// Close current file
	_ = l.file.Close()

	// Rename current file with timestamp
	timestamp := time.Now().Format("20060102-150405.000000000")
	rotatedPath := fmt.Sprintf("%s.%s", l.filepath, timestamp)
	_ = os.Rename(l.filepath, rotatedPath)

	// Open new file
	file, err := os.OpenFile(l.filepath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open new audit log file: %v\n", err)
		return
	}

	l.file = file
	l.encoder = json.NewEncoder(file)
}

// performMaintenance removes rotated log files older than maxAge
func (l *Logger) performMaintenance() {
	if l.maxAge <= 0 {
		return
	}

	dir := filepath.Dir(l.filepath)
	base := filepath.Base(l.filepath)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	cutoff := time.Now().Add(-l.maxAge)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		// Only rotated files; never the active log
		name := entry.Name()
		if !strings.HasPrefix(name, base+".") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		if info.ModTime().Before(cutoff) {
			_ = os.Remove(filepath.Join(dir, name))
		}
	}
}

// Close closes the audit logger
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	return l.file.Close()
}

// Query represents an audit log query
type Query struct {
	StartTime  time.Time
	EndTime    time.Time
	EventTypes []EventType
	Profiles   []string
	Limit      int // Keep only the most recent Limit events
}

// Search reads the audit log and returns matching events, oldest first
func (l *Logger) Search(query Query) ([]*AuditEvent, error) {
	if l == nil {
		return nil, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	return searchFile(l.filepath, query)
}

// SearchFile queries an audit log without opening it for writing
func SearchFile(path string, query Query) ([]*AuditEvent, error) {
	events, err := searchFile(path, query)
	if errors.Is(err, os.ErrNotExist) {
		return []*AuditEvent{}, nil
	}
	return events, err
}

func searchFile(path string, query Query) ([]*AuditEvent, error) {
	file, err := os.Open(path) // #nosec G304 - audit log path from configuration
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	defer file.Close()

	events := []*AuditEvent{}
	decoder := json.NewDecoder(file)

	for {
		var event AuditEvent
		if err := decoder.Decode(&event); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to parse audit log: %w", err)
		}

		// Apply filters
		if !query.StartTime.IsZero() && event.Timestamp.Before(query.StartTime) {
			continue
		}
		if !query.EndTime.IsZero() && event.Timestamp.After(query.EndTime) {
			continue
		}
		if len(query.EventTypes) > 0 && !contains(query.EventTypes, event.Type) {
			continue
		}
		if len(query.Profiles) > 0 && !containsString(query.Profiles, event.Profile) {
			continue
		}

		events = append(events, &event)
	}

	if query.Limit > 0 && len(events) > query.Limit {
		events = events[len(events)-query.Limit:]
	}

	return events, nil
}

// sanitizeDetails drops keys that may carry credential material
func sanitizeDetails(details map[string]interface{}) map[string]interface{} {
	if details == nil {
		return nil
	}

	sanitized := make(map[string]interface{}, len(details))
	for k, v := range details {
		if !isSensitiveKey(k) {
			sanitized[k] = v
		}
	}
	return sanitized
}

// isSensitiveKey checks if a key contains sensitive information
func isSensitiveKey(key string) bool {
	sensitiveKeys := []string{
		"password", "secret", "key", "token", "credential",
		"private", "passphrase", "content",
	}

	keyLower := strings.ToLower(key)
	for _, sensitive := range sensitiveKeys {
		if strings.Contains(keyLower, sensitive) {
			return true
		}
	}
	return false
}

func currentUser() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return os.Getenv("USERNAME")
}

// Helper functions
func contains(slice []EventType, item EventType) bool {
	for _, v := range slice {
		if v == item {
			return true
		}
	}
	return false
}

func containsString(slice []string, item string) bool {
	for _, v := range slice {
		if v == item {
			return true
		}
	}
	return false
}
