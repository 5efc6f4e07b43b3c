package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// newTestLogger creates a logger writing to a temp directory and a buffer
func newTestLogger(t *testing.T, level Level) (*Logger, *bytes.Buffer) {
	t.Helper()

	var console bytes.Buffer
	logger, err := New(Options{
		Component: "test",
		Dir:       t.TempDir(),
		Console:   &console,
		Level:     level,
	})
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	t.Cleanup(func() { logger.Close() })
	return logger, &console
}

func TestNew(t *testing.T) {
	logger, _ := newTestLogger(t, LevelNormal)

	if logger.component != "test" {
		t.Errorf("Expected component 'test', got %q", logger.component)
	}
	if logger.SessionID() == "" {
		t.Error("Expected non-empty session ID")
	}
	if logger.LogPath() == "" {
		t.Error("Expected non-empty log path")
	}
	if _, err := os.Stat(logger.LogPath()); os.IsNotExist(err) {
		t.Errorf("Log file does not exist at %s", logger.LogPath())
	}
}

func TestLoggerFileFormatting(t *testing.T) {
	logger, _ := newTestLogger(t, LevelQuiet)

	logger.Debugf("Debug message")
	logger.Infof("Info message %d", 123)
	logger.Verbosef("Verbose message")
	logger.Warnf("Warning message")
	logger.Errorf("Error message")

	content, err := os.ReadFile(logger.LogPath())
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	logContent := string(content)

	// The file receives every entry regardless of console level
	expectedPatterns := []string{
		"[test] [DEBUG] Debug message",
		"[test] [INFO] Info message 123",
		"[test] [INFO] Verbose message",
		"[test] [WARN] Warning message",
		"[test] [ERROR] Error message",
	}
	for _, pattern := range expectedPatterns {
		if !strings.Contains(logContent, pattern) {
			t.Errorf("Log content missing expected pattern: %q\nContent:\n%s", pattern, logContent)
		}
	}
}

func TestConsoleLevels(t *testing.T) {
	tests := []struct {
		level   Level
		visible []string
		hidden  []string
	}{
		{
			level:   LevelQuiet,
			visible: []string{"warn-line", "error-line"},
			hidden:  []string{"info-line", "verbose-line", "debug-line"},
		},
		{
			level:   LevelNormal,
			visible: []string{"info-line", "warn-line", "error-line"},
			hidden:  []string{"verbose-line", "debug-line"},
		},
		{
			level:   LevelVerbose,
			visible: []string{"info-line", "verbose-line", "warn-line", "error-line"},
			hidden:  []string{"debug-line"},
		},
		{
			level:   LevelDebug,
			visible: []string{"debug-line", "info-line", "verbose-line", "warn-line", "error-line"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			logger, console := newTestLogger(t, tt.level)

			logger.Debugf("debug-line")
			logger.Infof("info-line")
			logger.Verbosef("verbose-line")
			logger.Warnf("warn-line")
			logger.Errorf("error-line")

			out := console.String()
			for _, want := range tt.visible {
				if !strings.Contains(out, want) {
					t.Errorf("Console missing %q\nOutput:\n%s", want, out)
				}
			}
			for _, unwanted := range tt.hidden {
				if strings.Contains(out, unwanted) {
					t.Errorf("Console should not contain %q\nOutput:\n%s", unwanted, out)
				}
			}
		})
	}
}

func TestWithSharesOutputs(t *testing.T) {
	logger, console := newTestLogger(t, LevelNormal)

	drain := logger.With("drain")
	watcher := logger.With("watcher")

	if drain.SessionID() != watcher.SessionID() {
		t.Errorf("Expected same session ID, got %q and %q", drain.SessionID(), watcher.SessionID())
	}
	if drain.LogPath() != logger.LogPath() {
		t.Errorf("Expected same log path, got %q and %q", drain.LogPath(), logger.LogPath())
	}

	drain.Infof("Message from drain")
	watcher.Infof("Message from watcher")

	content, err := os.ReadFile(logger.LogPath())
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	for _, pattern := range []string{"[drain] [INFO] Message from drain", "[watcher] [INFO] Message from watcher"} {
		if !strings.Contains(string(content), pattern) {
			t.Errorf("Log missing %q", pattern)
		}
	}
	if !strings.Contains(console.String(), "[watcher]") {
		t.Error("Console missing watcher component tag")
	}
}

func TestHeader(t *testing.T) {
	logger, console := newTestLogger(t, LevelNormal)

	logger.Header("Mirror running", "Perform actions in the controlling window.")

	out := console.String()
	if !strings.Contains(out, "Mirror running") {
		t.Errorf("Header title missing:\n%s", out)
	}
	if !strings.Contains(out, "Perform actions in the controlling window.") {
		t.Errorf("Header guidance missing:\n%s", out)
	}

	quiet, quietConsole := newTestLogger(t, LevelQuiet)
	quiet.Header("Mirror running")
	if quietConsole.Len() != 0 {
		t.Errorf("Expected no header in quiet mode, got:\n%s", quietConsole.String())
	}
}

func TestDisableFile(t *testing.T) {
	var console bytes.Buffer
	logger, err := New(Options{Console: &console, DisableFile: true})
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Close()

	if logger.LogPath() != "" {
		t.Errorf("Expected empty log path, got %q", logger.LogPath())
	}

	logger.Infof("console only")
	if !strings.Contains(console.String(), "[mirror]") {
		t.Errorf("Expected default component tag, got:\n%s", console.String())
	}
}

func TestZeroLevelIsNormal(t *testing.T) {
	var level Level
	if level != LevelNormal {
		t.Fatalf("Expected zero Level to be normal, got %s", level)
	}

	var console bytes.Buffer
	logger, err := New(Options{Console: &console, DisableFile: true})
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Close()

	logger.Infof("status line")
	logger.Verbosef("detail line")
	if !strings.Contains(console.String(), "status line") {
		t.Errorf("Expected info line at default level, got:\n%s", console.String())
	}
	if strings.Contains(console.String(), "detail line") {
		t.Errorf("Expected verbose line to be filtered at default level, got:\n%s", console.String())
	}
}

func TestFallbackWhenDirUnusable(t *testing.T) {
	// A regular file where the directory should be forces MkdirAll to fail
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(blocker, []byte("x"), 0600); err != nil {
		t.Fatalf("Failed to create blocker file: %v", err)
	}

	var console bytes.Buffer
	logger, err := New(Options{Dir: filepath.Join(blocker, "logs"), Console: &console})
	if err == nil {
		t.Fatal("Expected error for unusable log directory")
	}
	if logger == nil {
		t.Fatal("Expected console-only fallback logger")
	}

	logger.Warnf("still visible")
	if !strings.Contains(console.String(), "still visible") {
		t.Errorf("Fallback logger did not write to console:\n%s", console.String())
	}
}

func TestLoggerClose(t *testing.T) {
	logger, _ := newTestLogger(t, LevelNormal)

	if err := logger.Close(); err != nil {
		t.Errorf("First close failed: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("Second close failed: %v", err)
	}

	// Writing after close must not panic
	logger.Infof("after close")
}

func TestLogPathFormat(t *testing.T) {
	logger, _ := newTestLogger(t, LevelNormal)

	// Verify log file name format: <session-id>-mirror.log
	fileName := filepath.Base(logger.LogPath())
	if !strings.HasSuffix(fileName, "-mirror.log") {
		t.Errorf("Expected log file to end with '-mirror.log', got %q", fileName)
	}

	sessionPart := strings.TrimSuffix(fileName, "-mirror.log")
	if sessionPart != GetSessionID() {
		t.Errorf("Expected session ID %q in file name, got %q", GetSessionID(), sessionPart)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    Level
		wantErr bool
	}{
		{"quiet", LevelQuiet, false},
		{"", LevelNormal, false},
		{"Normal", LevelNormal, false},
		{"verbose", LevelVerbose, false},
		{" debug ", LevelDebug, false},
		{"loud", LevelNormal, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
