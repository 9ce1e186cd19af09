package theme

import "github.com/charmbracelet/lipgloss"

// Theme defines all colors for the TUI and the line REPL
type Theme struct {
	// Primary colors
	Primary   lipgloss.Color
	Secondary lipgloss.Color

	// Text colors
	Text      lipgloss.Color
	TextMuted lipgloss.Color

	// Background colors
	Background          lipgloss.Color
	BackgroundSecondary lipgloss.Color

	// Status colors
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Info    lipgloss.Color

	// Border colors
	Border      lipgloss.Color
	BorderFocus lipgloss.Color
}

// Current is the active theme
var Current = DefaultTheme()

// DefaultTheme returns the default lfm theme, a cool teal on charcoal
func DefaultTheme() Theme {
	return Theme{
		Primary:   lipgloss.Color("#2DD4BF"), // Teal
		Secondary: lipgloss.Color("#0F766E"), // Deep teal

		Text:      lipgloss.Color("#E5E7EB"),
		TextMuted: lipgloss.Color("#8B949E"),

		Background:          lipgloss.Color("#161B22"),
		BackgroundSecondary: lipgloss.Color("#21262D"),

		Success: lipgloss.Color("#3FB950"),
		Warning: lipgloss.Color("#D29922"),
		Error:   lipgloss.Color("#F85149"), // used for "Error:" lines in the REPL
		Info:    lipgloss.Color("#58A6FF"),

		Border:      lipgloss.Color("#30363D"),
		BorderFocus: lipgloss.Color("#2DD4BF"),
	}
}

// ByName returns a named theme; unknown names yield the default
func ByName(name string) Theme {
	switch name {
	case "mono":
		return Mono()
	default:
		return DefaultTheme()
	}
}

// Mono returns a grayscale theme for terminals with poor color support
func Mono() Theme {
	return Theme{
		Primary:             lipgloss.Color("#FFFFFF"),
		Secondary:           lipgloss.Color("#BBBBBB"),
		Text:                lipgloss.Color("#EEEEEE"),
		TextMuted:           lipgloss.Color("#888888"),
		Background:          lipgloss.Color("#000000"),
		BackgroundSecondary: lipgloss.Color("#222222"),
		Success:             lipgloss.Color("#DDDDDD"),
		Warning:             lipgloss.Color("#BBBBBB"),
		Error:               lipgloss.Color("#FFFFFF"),
		Info:                lipgloss.Color("#AAAAAA"),
		Border:              lipgloss.Color("#444444"),
		BorderFocus:         lipgloss.Color("#FFFFFF"),
	}
}
