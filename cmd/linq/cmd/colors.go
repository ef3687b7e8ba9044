package cmd

import (
	"os"
	"sync"

	"github.com/mattn/go-isatty"
)

// ANSI color codes
const (
	Reset = "\033[0m"
	Gray  = "\033[90m"
	Red   = "\033[31m"
	Green = "\033[32m"
)

var (
	colorsOnce    sync.Once
	colorsEnabled bool
)

// supportsColor reports whether stdout is a terminal that takes ANSI colors
func supportsColor() bool {
	colorsOnce.Do(func() {
		// https://no-color.org/
		if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
			return
		}
		if stdout != os.Stdout {
			return
		}
		colorsEnabled = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	})
	return colorsEnabled
}

func colorize(color, text string) string {
	if !supportsColor() {
		return text
	}
	return color + text + Reset
}

// Info returns text colored in gray for informational messages
func Info(text string) string { return colorize(Gray, text) }

// Warning returns text colored in red for warnings and critical messages
func Warning(text string) string { return colorize(Red, text) }

// Success returns text colored in green for success messages
func Success(text string) string { return colorize(Green, text) }
