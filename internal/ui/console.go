package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

const (
	warningPrefixConstant   = "Warning:"
	errorPrefixConstant     = "Error:"
	prefixSeparatorConstant = " "
	lineTerminatorConstant  = "\n"
)

// Console writes human-readable messages to a writer.
type Console struct {
	writer        io.Writer
	warningPrefix *color.Color
	errorPrefix   *color.Color
}

// NewConsole creates a Console whose prefixes are colored when the
// terminal allows it.
func NewConsole(writer io.Writer) *Console {
	if writer == nil {
		writer = os.Stderr
	}
	return &Console{
		writer:        writer,
		warningPrefix: color.New(color.FgYellow, color.Bold),
		errorPrefix:   color.New(color.FgRed, color.Bold),
	}
}

// NewPlainConsole creates a Console that never emits color escapes.
func NewPlainConsole(writer io.Writer) *Console {
	console := NewConsole(writer)
	console.warningPrefix.DisableColor()
	console.errorPrefix.DisableColor()
	return console
}

// Warn prints message behind a warning prefix.
func (console *Console) Warn(message string) {
	console.printPrefixed(console.warningPrefix, warningPrefixConstant, message)
}

// Warnf formats and prints a warning.
func (console *Console) Warnf(format string, arguments ...any) {
	console.Warn(fmt.Sprintf(format, arguments...))
}

// Error prints message behind an error prefix.
func (console *Console) Error(message string) {
	console.printPrefixed(console.errorPrefix, errorPrefixConstant, message)
}

// Println prints message without decoration.
func (console *Console) Println(message string) {
	fmt.Fprint(console.writer, message+lineTerminatorConstant)
}

func (console *Console) printPrefixed(prefixColor *color.Color, prefix string, message string) {
	prefixColor.Fprint(console.writer, prefix)
	fmt.Fprint(console.writer, prefixSeparatorConstant+message+lineTerminatorConstant)
}
