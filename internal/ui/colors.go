package ui

import (
	"os"

	"github.com/mattn/go-isatty"
)

// ANSI color and style constants for CLI output
const (
	ColorReset = "\033[0m"
	ColorBold  = "\033[1m"
	ColorDim   = "\033[2m"

	ColorCyan   = "\033[36m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorWhite  = "\033[97m"
	ColorRed    = "\033[31m"
)

// Enabled turns styling on or off. It defaults to on for terminals unless NO_COLOR is set.
var Enabled = os.Getenv("NO_COLOR") == "" &&
	(isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()))

// Paint wraps s in the given style codes when styling is enabled
func Paint(style, s string) string {
	if !Enabled || style == "" {
		return s
	}
	return style + s + ColorReset
}

func Bold(s string) string {
	return Paint(ColorBold, s)
}

func Success(s string) string {
	return Paint(ColorGreen, s)
}

func Info(s string) string {
	return Paint(ColorDim+ColorYellow, s)
}

func Warn(s string) string {
	return Paint(ColorYellow, s)
}

func Dim(s string) string {
	return Paint(ColorDim, s)
}

func Error(s string) string {
	return Paint(ColorRed, s)
}
