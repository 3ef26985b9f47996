package logger

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color" // Import the fatih/color package for colored console output
)

// Level is the semantic level of a console line.
type Level int

const (
	LevelHeader Level = iota
	LevelInfo
	LevelSuccess
	LevelWarn
	LevelError
	LevelDebug
)

// headerWidth is the width of the banner printed by Header.
const headerWidth = 60

// styles maps each level to its color attributes and line prefix.
// The color objects are never mutated after package init.
var styles = map[Level]struct {
	color  *color.Color
	prefix string
}{
	LevelHeader:  {color.New(color.FgHiMagenta, color.Bold), ""},
	LevelInfo:    {color.New(color.FgBlue), "ℹ "},
	LevelSuccess: {color.New(color.FgGreen), "✓ "},
	LevelWarn:    {color.New(color.FgYellow), "⚠ "},
	LevelError:   {color.New(color.FgRed), "✗ "},
	LevelDebug:   {color.New(color.FgCyan), "[DEBUG] "},
}

// Format returns msg styled for the given level.
// It is a pure function: the result only depends on its arguments
// (and on whether color output is enabled for the process).
func Format(level Level, msg string) string {
	s, ok := styles[level]
	if !ok {
		return msg
	}
	return s.color.Sprint(s.prefix + msg)
}

// FormatHeader returns the three-line banner used to open a section.
func FormatHeader(title string) string {
	rule := strings.Repeat("=", headerWidth)
	pad := (headerWidth - len([]rune(title))) / 2
	if pad < 0 {
		pad = 0
	}
	centered := strings.Repeat(" ", pad) + title
	return strings.Join([]string{
		Format(LevelHeader, rule),
		Format(LevelHeader, centered),
		Format(LevelHeader, rule),
	}, "\n")
}

// out is where every helper writes. It defaults to color.Output,
// which handles Windows consoles as well.
var out io.Writer = color.Output

// debugEnabled is toggled by Init.
var debugEnabled bool

// SetOutput redirects console output, mainly for tests.
// It returns the previous writer so callers can restore it.
func SetOutput(w io.Writer) io.Writer {
	prev := out
	out = w
	return prev
}

// Init initializes the logger package, enabling or disabling debug logging.
// When disabled, Debug silently ignores its arguments.
func Init(enableDebug bool) {
	debugEnabled = enableDebug
}

func emit(level Level, format string, a ...any) {
	msg := strings.TrimRight(fmt.Sprintf(format, a...), "\n")
	fmt.Fprintln(out, Format(level, msg))
}

// Header prints a section banner surrounded by blank lines.
func Header(title string) {
	fmt.Fprintf(out, "\n%s\n\n", FormatHeader(title))
}

// Info logs informational messages.
func Info(format string, a ...any) { emit(LevelInfo, format, a...) }

// Success logs a completed action.
func Success(format string, a ...any) { emit(LevelSuccess, format, a...) }

// Warn logs a warning; used for non-fatal problems and manual follow-ups.
func Warn(format string, a ...any) { emit(LevelWarn, format, a...) }

// Error logs an error message.
func Error(format string, a ...any) { emit(LevelError, format, a...) }

// Debug logs only when debug output was enabled with Init.
func Debug(format string, a ...any) {
	if !debugEnabled {
		return
	}
	emit(LevelDebug, format, a...)
}

// Plain prints an unstyled line, used for indented summary bullets.
func Plain(format string, a ...any) {
	fmt.Fprintf(out, format+"\n", a...)
}
