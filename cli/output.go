package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Stdout and Stderr receive all command output. Tests may replace them.
var (
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr
)

// Error prints an error message to stderr without exiting.
func Error(msg string, err error) {
	fmt.Fprintf(Stderr, "error: %s: %v\n", msg, err)
}

// Info prints an informational message to stdout.
func Info(msg string) {
	fmt.Fprintln(Stdout, msg)
}

// Infof prints a formatted informational message to stdout.
func Infof(format string, args ...any) {
	fmt.Fprintf(Stdout, format+"\n", args...)
}

// Success prints a success message to stdout.
func Success(msg string) {
	fmt.Fprintln(Stdout, "✓", msg)
}

// Successf prints a formatted success message to stdout.
func Successf(format string, args ...any) {
	fmt.Fprintf(Stdout, "✓ "+format+"\n", args...)
}

// Warn prints a warning message to stderr.
func Warn(msg string) {
	fmt.Fprintln(Stderr, "warning:", msg)
}

// Warnf prints a formatted warning message to stderr.
func Warnf(format string, args ...any) {
	fmt.Fprintf(Stderr, "warning: "+format+"\n", args...)
}

// Section prints a blank line, a title and an underline of the same width.
func Section(title string) {
	fmt.Fprintf(Stdout, "\n%s\n%s\n", title, strings.Repeat("=", len([]rune(title))))
}

// Bullet prints an indented list item.
func Bullet(format string, args ...any) {
	fmt.Fprintf(Stdout, "  - "+format+"\n", args...)
}
