// Package term provides color support detection and ANSI helpers for
// the CLI output path.
package term

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
)

// colorLevel caches the detected color support: 0=none, 1=basic(16), 256=256colors, 16777216=truecolor
var (
	colorLevelOnce sync.Once
	colorLevelVal  int
)

func detectColorLevel() int {
	// NO_COLOR convention: https://no-color.org/
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return 0
	}

	// Not a terminal
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return 0
	}

	term := os.Getenv("TERM")
	if term == "dumb" {
		return 0
	}

	colorTerm := os.Getenv("COLORTERM")
	if colorTerm == "truecolor" || colorTerm == "24bit" {
		return 16777216
	}

	if strings.Contains(term, "256color") {
		return 256
	}

	return 1
}

// ColorLevel returns the detected color support for stdout.
func ColorLevel() int {
	colorLevelOnce.Do(func() {
		colorLevelVal = detectColorLevel()
	})
	return colorLevelVal
}

func wrap(code, resetCode, s string) string {
	if ColorLevel() == 0 {
		return s
	}
	return code + s + resetCode
}

// Fg wraps s in a foreground color escape when the terminal supports it.
func Fg(colorCode int, s string) string {
	return wrap(fmt.Sprintf("\033[%dm", colorCode), "\033[39m", s)
}

// Bold wraps s in a bold escape when the terminal supports it.
func Bold(s string) string {
	return wrap("\033[1m", "\033[22m", s)
}

// Dim wraps s in a dim escape when the terminal supports it.
func Dim(s string) string {
	return wrap("\033[2m", "\033[22m", s)
}
