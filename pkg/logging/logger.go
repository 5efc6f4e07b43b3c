package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Logger writes leveled log lines for one mirror component.
//
// Every entry goes to the session log file (when one could be opened) and,
// filtered by the configured verbosity, to the console. Loggers derived with
// With share the same file and console.
type Logger struct {
	component string
	sink      *sink
}

// sink is the shared output state behind a family of component loggers.
type sink struct {
	mu        sync.Mutex
	sessionID string
	file      *os.File
	fileLog   *log.Logger
	console   *Console
	logPath   string
	closeOnce sync.Once
}

// Options configures a new Logger.
type Options struct {
	// Component names the root logger (e.g. "mirror")
	Component string

	// Dir is the log directory. Empty means ~/.mirror/logs
	Dir string

	// DisableFile turns off the session log file
	DisableFile bool

	// Console receives operator-facing lines. Nil means os.Stdout
	Console io.Writer

	// Level filters console output; zero is LevelNormal. The log file always
	// receives every entry
	Level Level
}

var (
	// Global session ID for the current run
	sessionID     string
	sessionIDOnce sync.Once
)

// getSessionID returns or creates the session ID for this run
func getSessionID() string {
	sessionIDOnce.Do(func() {
		sessionID = uuid.New().String()
	})
	return sessionID
}

// defaultLogDir returns ~/.mirror/logs
func defaultLogDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".mirror", "logs"), nil
}

// New creates a root logger.
// The log file is <dir>/<session-id>-mirror.log, opened in append mode.
//
// If the log directory cannot be created or the log file cannot be opened,
// New returns a console-only logger along with the error, so callers can
// warn and keep going.
func New(opts Options) (*Logger, error) {
	if opts.Component == "" {
		opts.Component = "mirror"
	}
	console := opts.Console
	if console == nil {
		console = os.Stdout
	}

	s := &sink{
		sessionID: getSessionID(),
		console:   NewConsole(console, opts.Level),
	}
	l := &Logger{component: opts.Component, sink: s}

	if opts.DisableFile {
		return l, nil
	}

	dir := opts.Dir
	if dir == "" {
		var err error
		dir, err = defaultLogDir()
		if err != nil {
			return l, err
		}
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return l, fmt.Errorf("failed to create log directory: %w", err)
	}

	logPath := filepath.Join(dir, fmt.Sprintf("%s-mirror.log", s.sessionID))
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return l, fmt.Errorf("failed to open log file: %w", err)
	}

	s.file = file
	s.fileLog = log.New(file, "", 0) // timestamps are formatted per entry
	s.logPath = logPath
	return l, nil
}

// With returns a logger for another component sharing this logger's outputs.
func (l *Logger) With(component string) *Logger {
	return &Logger{component: component, sink: l.sink}
}

// formatLogEntry creates a file log entry with timestamp, component, and level
func (l *Logger) formatLogEntry(level Level, message string) string {
	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	return fmt.Sprintf("[%s] [%s] [%s] %s", timestamp, l.component, level.label(), message)
}

func (l *Logger) write(level Level, format string, v ...interface{}) {
	message := fmt.Sprintf(format, v...)

	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()

	if l.sink.fileLog != nil {
		l.sink.fileLog.Println(l.formatLogEntry(level, message))
	}
	l.sink.console.Line(level, l.component, message)
}

// Debugf logs a debug-level message
func (l *Logger) Debugf(format string, v ...interface{}) {
	l.write(LevelDebug, format, v...)
}

// Infof logs an info-level message
func (l *Logger) Infof(format string, v ...interface{}) {
	l.write(LevelNormal, format, v...)
}

// Verbosef logs a per-action detail message
func (l *Logger) Verbosef(format string, v ...interface{}) {
	l.write(LevelVerbose, format, v...)
}

// Warnf logs a warning-level message
func (l *Logger) Warnf(format string, v ...interface{}) {
	l.write(LevelQuiet, format, v...)
}

// Errorf logs an error-level message
func (l *Logger) Errorf(format string, v ...interface{}) {
	l.write(levelError, format, v...)
}

// Header prints a prominent banner on the console and records it in the file.
func (l *Logger) Header(title string, lines ...string) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()

	if l.sink.fileLog != nil {
		l.sink.fileLog.Println(l.formatLogEntry(LevelNormal, title))
	}
	l.sink.console.Header(title, lines...)
}

// SessionID returns the current session ID
func (l *Logger) SessionID() string {
	return l.sink.sessionID
}

// LogPath returns the path to the log file, or "" when logging to console only
func (l *Logger) LogPath() string {
	return l.sink.logPath
}

// Close closes the log file. Safe to call multiple times.
func (l *Logger) Close() error {
	var err error
	l.sink.closeOnce.Do(func() {
		l.sink.mu.Lock()
		defer l.sink.mu.Unlock()
		if l.sink.file != nil {
			err = l.sink.file.Close()
			l.sink.fileLog = nil
		}
	})
	return err
}

// GetSessionID returns the current global session ID
func GetSessionID() string {
	return getSessionID()
}
