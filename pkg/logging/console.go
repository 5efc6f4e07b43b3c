package logging

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Level represents the console verbosity level
type Level int

// The zero Level is LevelNormal.
const (
	levelError Level = iota - 2

	// LevelQuiet shows only errors and warnings
	LevelQuiet
	// LevelNormal shows status lines (default)
	LevelNormal
	// LevelVerbose also shows every replicated action
	LevelVerbose
	// LevelDebug shows all internal details
	LevelDebug
)

// ParseLevel converts a verbosity name (quiet, normal, verbose, debug) to a Level.
func ParseLevel(name string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "quiet":
		return LevelQuiet, nil
	case "", "normal":
		return LevelNormal, nil
	case "verbose":
		return LevelVerbose, nil
	case "debug":
		return LevelDebug, nil
	default:
		return LevelNormal, fmt.Errorf("invalid verbosity %q (must be quiet, normal, verbose, or debug)", name)
	}
}

// String returns the verbosity name.
func (l Level) String() string {
	switch l {
	case levelError:
		return "error"
	case LevelQuiet:
		return "quiet"
	case LevelNormal:
		return "normal"
	case LevelVerbose:
		return "verbose"
	case LevelDebug:
		return "debug"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// label is the tag written next to each entry.
func (l Level) label() string {
	switch l {
	case levelError:
		return "ERROR"
	case LevelQuiet:
		return "WARN"
	case LevelDebug:
		return "DEBUG"
	default:
		return "INFO"
	}
}

// Console renders operator-facing lines.
// Colors are chosen by the writer's terminal profile, so plain writers
// (files, buffers, pipes) receive uncolored text.
type Console struct {
	level  Level
	writer io.Writer

	component lipgloss.Style
	debug     lipgloss.Style
	info      lipgloss.Style
	verbose   lipgloss.Style
	warn      lipgloss.Style
	err       lipgloss.Style
	header    lipgloss.Style
	rule      lipgloss.Style
}

// NewConsole creates a console writing to w at the given level.
func NewConsole(w io.Writer, level Level) *Console {
	r := lipgloss.NewRenderer(w)
	return &Console{
		level:     level,
		writer:    w,
		component: r.NewStyle().Foreground(lipgloss.Color("8")),
		debug:     r.NewStyle().Foreground(lipgloss.Color("8")),
		info:      r.NewStyle().Foreground(lipgloss.Color("217")), // salmon
		verbose:   r.NewStyle().Foreground(lipgloss.Color("6")),
		warn:      r.NewStyle().Foreground(lipgloss.Color("3")),
		err:       r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		header:    r.NewStyle().Foreground(lipgloss.Color("15")).Bold(true),
		rule:      r.NewStyle().Foreground(lipgloss.Color("15")),
	}
}

// Enabled reports whether entries at level are printed.
func (c *Console) Enabled(level Level) bool {
	return level <= c.level
}

// Line prints one entry if its level is enabled.
func (c *Console) Line(level Level, component, message string) {
	if !c.Enabled(level) {
		return
	}

	var style lipgloss.Style
	prefix := ""
	switch level {
	case levelError:
		style = c.err
		prefix = "✗ "
	case LevelQuiet:
		style = c.warn
		prefix = "⚠ "
	case LevelVerbose:
		style = c.verbose
	case LevelDebug:
		style = c.debug
	default:
		style = c.info
	}

	fmt.Fprintf(c.writer, "%s %s %s\n",
		c.component.Render(time.Now().Format("15:04:05.000")),
		c.component.Render("["+component+"]"),
		style.Render(prefix+message),
	)
}

// Header prints a prominent banner followed by optional guidance lines.
// Headers are suppressed only in quiet mode.
func (c *Console) Header(title string, lines ...string) {
	if !c.Enabled(LevelNormal) {
		return
	}
	fmt.Fprintf(c.writer, "\n%s\n", c.rule.Render(strings.Repeat("=", 70)))
	fmt.Fprintf(c.writer, "%s\n", c.header.Render("  "+title))
	fmt.Fprintf(c.writer, "%s\n", c.rule.Render(strings.Repeat("=", 70)))
	for _, line := range lines {
		fmt.Fprintf(c.writer, "  %s\n", line)
	}
	if len(lines) > 0 {
		fmt.Fprintln(c.writer)
	}
}
