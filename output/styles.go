package output

import "github.com/charmbracelet/lipgloss"

// Color palette.
var (
	ColorCyan    = lipgloss.Color("14")
	ColorGreen   = lipgloss.Color("10")
	ColorYellow  = lipgloss.Color("220")
	ColorRed     = lipgloss.Color("196")
	ColorDimGray = lipgloss.Color("240")
	ColorBlue    = lipgloss.Color("12")
)

var (
	// StyleNoun styles identifiable nouns: modules, locales, files.
	StyleNoun = lipgloss.NewStyle().Foreground(ColorCyan)

	StyleSuccess = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleHeading = lipgloss.NewStyle().Bold(true).Foreground(ColorBlue)
	StyleDim     = lipgloss.NewStyle().Faint(true)
)

// ProgressStyle picks a color for a completion percentage.
func ProgressStyle(percent int) lipgloss.Style {
	switch {
	case percent >= 100:
		return lipgloss.NewStyle().Foreground(ColorGreen)
	case percent >= 50:
		return lipgloss.NewStyle().Foreground(ColorYellow)
	default:
		return lipgloss.NewStyle().Foreground(ColorRed)
	}
}
