package ui

import (
	"fmt"
	"strings"

	"github.com/MOYARU/uxaudit/internal/report"
)

const AsciiArt = `
██╗   ██╗██╗  ██╗ █████╗ ██╗   ██╗██████╗ ██╗████████╗
██║   ██║╚██╗██╔╝██╔══██╗██║   ██║██╔══██╗██║╚══██╔══╝
██║   ██║ ╚███╔╝ ███████║██║   ██║██║  ██║██║   ██║
██║   ██║ ██╔██╗ ██╔══██║██║   ██║██║  ██║██║   ██║
╚██████╔╝██╔╝ ██╗██║  ██║╚██████╔╝██████╔╝██║   ██║
 ╚═════╝ ╚═╝  ╚═╝╚═╝  ╚═╝ ╚═════╝ ╚═════╝ ╚═╝   ╚═╝
`

const (
	ColorReset  = "\033[0m"
	ColorGray   = "\033[90m"
	ColorWhite  = "\033[97m"
	ColorRed    = "\033[91m"
	ColorGreen  = "\033[92m"
	ColorYellow = "\033[93m"

	ColorSuggestion = "\033[36m" // cyan
	ColorMinor      = "\033[34m" // blue
	ColorMajor      = "\033[33m" // yellow/orange
	ColorCritical   = "\033[31m" // red
)

// SeverityColor returns the console colour of an issue severity.
func SeverityColor(s report.Severity) string {
	switch s {
	case report.SeverityCritical:
		return ColorCritical
	case report.SeverityMajor:
		return ColorMajor
	case report.SeverityMinor:
		return ColorMinor
	case report.SeveritySuggestion:
		return ColorSuggestion
	default:
		return ColorWhite
	}
}

// ScoreColor is green for good scores, yellow for average ones, red below.
func ScoreColor(score int) string {
	switch {
	case score >= 75:
		return ColorGreen
	case score >= 50:
		return ColorYellow
	default:
		return ColorRed
	}
}

// PrintGradientAsciiArt prints the ASCII art with a Magenta to Cyan gradient.
func PrintGradientAsciiArt() {
	lines := strings.Split(strings.Trim(AsciiArt, "\n"), "\n")
	for i, line := range lines {
		ratio := 0.0
		if len(lines) > 1 {
			ratio = float64(i) / float64(len(lines)-1)
		}
		// Magenta (255,0,255) -> Cyan (0,255,255)
		r := int(255 * (1 - ratio))
		g := int(255 * ratio)
		fmt.Printf("\033[38;2;%d;%d;255m%s\033[0m\n", r, g, line)
	}
}
