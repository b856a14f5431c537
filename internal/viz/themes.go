package viz

import "github.com/charmbracelet/lipgloss"

// Theme is the palette of the viewer.
type Theme struct {
	Name    string
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Safe    lipgloss.Color
	Warning lipgloss.Color
	Danger  lipgloss.Color
}

var (
	ThemeThermal = Theme{
		Name:    "thermal",
		Primary: lipgloss.Color("#ff8800"),
		Accent:  lipgloss.Color("#ffd700"),
		Text:    lipgloss.Color("#fff5f0"),
		Muted:   lipgloss.Color("#886655"),
		Safe:    lipgloss.Color("#00ff88"),
		Warning: lipgloss.Color("#ffcc00"),
		Danger:  lipgloss.Color("#ff4444"),
	}

	ThemeClinical = Theme{
		Name:    "clinical",
		Primary: lipgloss.Color("#0088ff"),
		Accent:  lipgloss.Color("#00ccff"),
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#888888"),
		Safe:    lipgloss.Color("#00ff00"),
		Warning: lipgloss.Color("#ffaa00"),
		Danger:  lipgloss.Color("#ff0000"),
	}

	ThemeMono = Theme{
		Name:    "mono",
		Primary: lipgloss.Color("#ffffff"),
		Accent:  lipgloss.Color("#cccccc"),
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#666666"),
		Safe:    lipgloss.Color("#cccccc"),
		Warning: lipgloss.Color("#ffffff"),
		Danger:  lipgloss.Color("#ffffff"),
	}

	Themes = []Theme{ThemeThermal, ThemeClinical, ThemeMono}
)

// GetTheme returns a theme by name, falling back to the first one.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
}

// NextTheme returns the theme after t, wrapping around.
func NextTheme(t Theme) Theme {
	for i, candidate := range Themes {
		if candidate.Name == t.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
