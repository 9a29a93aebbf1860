package errors

import (
	"os"
	"strings"
)

// ANSI color codes for terminal output.
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorWhite  = "\033[37m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

// colorEnabled controls whether ANSI colors are used.
var colorEnabled = true

// DisableColors disables ANSI color output.
func DisableColors() {
	colorEnabled = false
}

// EnableColors enables ANSI color output.
func EnableColors() {
	colorEnabled = true
}

func color(code, text string) string {
	if !colorEnabled {
		return text
	}
	return code + text + colorReset
}

func red(text string) string    { return color(colorRed, text) }
func yellow(text string) string { return color(colorYellow, text) }
func cyan(text string) string   { return color(colorCyan, text) }
func white(text string) string  { return color(colorWhite, text) }
func gray(text string) string   { return color(colorGray, text) }
func bold(text string) string   { return color(colorBold, text) }

// Format returns the error formatted for terminal display.
func (e *RuntimeError) Format() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(red(bold("ERROR ")))
	b.WriteString(white(bold(e.Message)))
	if e.Wrapped != nil {
		b.WriteString(white(": " + e.Wrapped.Error()))
	}
	b.WriteString("\n\n")

	if e.Component != "" {
		b.WriteString("  ")
		b.WriteString(gray("in "))
		b.WriteString(cyan(e.Component))
		b.WriteString("\n\n")
	}

	if e.Hint != "" {
		for i, line := range wrapText(e.Hint, 70) {
			b.WriteString("  ")
			if i == 0 {
				b.WriteString(yellow("Hint: "))
			} else {
				b.WriteString("        ")
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	return b.String()
}

// Print writes the formatted error to stderr.
func (e *RuntimeError) Print() {
	os.Stderr.WriteString(e.Format())
}

// wrapText wraps text at the given width on word boundaries.
func wrapText(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) > width {
			lines = append(lines, line)
			line = w
			continue
		}
		line += " " + w
	}
	return append(lines, line)
}
