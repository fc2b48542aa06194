package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

var (
	ColorGood  = lipgloss.Color("#22C55E")
	ColorWarn  = lipgloss.Color("#EAB308")
	ColorBad   = lipgloss.Color("#EF4444")
	ColorMuted = lipgloss.Color("#737373")

	DimStyle   = lipgloss.NewStyle().Foreground(ColorMuted)
	ErrorStyle = lipgloss.NewStyle().Foreground(ColorBad).Bold(true)

	SuccessPrefix = lipgloss.NewStyle().Foreground(ColorGood).SetString("✓")
	WarningPrefix = lipgloss.NewStyle().Foreground(ColorWarn).SetString("⚠️ ")
	InfoPrefix    = lipgloss.NewStyle().Foreground(ColorMuted).SetString("→")
)

// Console writes user-facing status lines. Results go to out, status and errors to err.
type Console struct {
	out   io.Writer
	err   io.Writer
	quiet bool
}

// NewConsole creates a console writing to the given streams
func NewConsole(out, err io.Writer) *Console {
	return &Console{out: out, err: err}
}

// DefaultConsole writes results to stdout and everything else to stderr
func DefaultConsole() *Console {
	return NewConsole(os.Stdout, os.Stderr)
}

// SetQuiet suppresses success and info lines; warnings and errors still print
func (c *Console) SetQuiet(quiet bool) {
	c.quiet = quiet
}

// Println writes a plain result line to the output stream
func (c *Console) Println(a ...interface{}) {
	fmt.Fprintln(c.out, a...)
}

// Out returns the result stream
func (c *Console) Out() io.Writer {
	return c.out
}

// DisplaySuccess displays a success message to the user
func (c *Console) DisplaySuccess(format string, args ...interface{}) {
	if c.quiet {
		return
	}
	fmt.Fprintf(c.err, "%s %s\n", SuccessPrefix.Render(), fmt.Sprintf(format, args...))
}

// DisplayInfo displays an informational message to the user
func (c *Console) DisplayInfo(format string, args ...interface{}) {
	if c.quiet {
		return
	}
	fmt.Fprintf(c.err, "%s %s\n", InfoPrefix.Render(), DimStyle.Render(fmt.Sprintf(format, args...)))
}

// DisplayWarning displays a warning message to the user
func (c *Console) DisplayWarning(format string, args ...interface{}) {
	fmt.Fprintf(c.err, "%s WARNING: %s\n", WarningPrefix.Render(), fmt.Sprintf(format, args...))
}

// DisplayError prints "<program>: <err>" with the program name in red bold
func (c *Console) DisplayError(program string, err error) {
	fmt.Fprintf(c.err, "%s: %v\n", ErrorStyle.Render(program), err)
}
