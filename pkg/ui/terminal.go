package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Banner is printed at the start of verbose runs
const Banner = `
  ┌─┐┬┌┬┐┌─┐┌┬┐┬
  │ ┬││││├┤  │││
  └─┘┴┴ ┴└─┘─┴┘┴─┘  image search downloader
`

var (
	stdout       io.Writer = os.Stdout
	stderr       io.Writer = os.Stderr
	colorEnabled           = true
)

// Color functions for terminal output
var (
	Cyan    = colorize(lipgloss.NewStyle().Foreground(lipgloss.Color("6")))
	Yellow  = colorize(lipgloss.NewStyle().Foreground(lipgloss.Color("3")))
	Red     = colorize(lipgloss.NewStyle().Foreground(lipgloss.Color("1")))
	Green   = colorize(lipgloss.NewStyle().Foreground(lipgloss.Color("2")))
	Magenta = colorize(lipgloss.NewStyle().Foreground(lipgloss.Color("5")))
	Dim     = colorize(lipgloss.NewStyle().Faint(true))
	Bold    = colorize(lipgloss.NewStyle().Bold(true))
)

// colorize returns a function that renders text with style when color is on
func colorize(style lipgloss.Style) func(string) string {
	return func(text string) string {
		if !colorEnabled {
			return text
		}
		return style.Render(text)
	}
}

// SetOutput redirects normal and diagnostic output. Nil keeps the current writer.
func SetOutput(out, errOut io.Writer) {
	if out != nil {
		stdout = out
	}
	if errOut != nil {
		stderr = errOut
	}
}

// SetColor turns ANSI styling on or off
func SetColor(enabled bool) {
	colorEnabled = enabled
}

// PrintBanner prints the banner with color
func PrintBanner() {
	fmt.Fprint(stdout, Cyan(Banner))
}

// PrintError prints an error message in red
func PrintError(msg string, args ...interface{}) {
	if len(args) > 0 {
		fmt.Fprintln(stderr, Red(msg+": "+fmt.Sprintf("%v", args[0])))
	} else {
		fmt.Fprintln(stderr, Red(msg))
	}
}

// PrintSuccess prints a success message in green
func PrintSuccess(msg string) {
	fmt.Fprintln(stdout, Green(msg))
}

// PrintInfo prints a label and value pair
func PrintInfo(label string, value string) {
	fmt.Fprintf(stdout, "%s: %s\n", Cyan(label), Yellow(value))
}

// PrintWarning prints a warning message in yellow
func PrintWarning(msg string, args ...interface{}) {
	if len(args) > 0 {
		fmt.Fprintln(stderr, Yellow(msg+": "+fmt.Sprintf("%v", args[0])))
	} else {
		fmt.Fprintln(stderr, Yellow(msg))
	}
}

// PrintHighlight prints a highlighted message in magenta
func PrintHighlight(msg string) {
	fmt.Fprintln(stdout, Magenta(msg))
}
