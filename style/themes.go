package style

import "github.com/charmbracelet/lipgloss"

// Theme defines a complete color palette for the TUI.
type Theme struct {
	Name                                        string
	Primary, Secondary, Success, Warning, Error lipgloss.TerminalColor
	Muted, Dim, Border                          lipgloss.TerminalColor
	MsgBorderUser, MsgBorderAgent               lipgloss.TerminalColor
	MsgBorderError                              lipgloss.TerminalColor
	// Markdown names the glamour style that suits the palette.
	Markdown string
}

// Built-in themes.
var (
	darkTheme = Theme{
		Name:           "dark",
		Primary:        lipgloss.Color("#F59E0B"), // amber-500
		Secondary:      lipgloss.Color("#06B6D4"), // cyan-500
		Success:        lipgloss.Color("#22C55E"), // green-500
		Warning:        lipgloss.Color("#F97316"), // orange-500
		Error:          lipgloss.Color("#EF4444"), // red-500
		Muted:          lipgloss.Color("#6B7280"), // gray-500
		Dim:            lipgloss.Color("#374151"), // gray-700
		Border:         lipgloss.Color("#4B5563"), // gray-600
		MsgBorderUser:  lipgloss.Color("#06B6D4"),
		MsgBorderAgent: lipgloss.Color("#F59E0B"),
		MsgBorderError: lipgloss.Color("#EF4444"),
		Markdown:       "dark",
	}

	lightTheme = Theme{
		Name:           "light",
		Primary:        lipgloss.Color("#B45309"), // amber-700
		Secondary:      lipgloss.Color("#0891B2"), // cyan-600
		Success:        lipgloss.Color("#16A34A"), // green-600
		Warning:        lipgloss.Color("#C2410C"), // orange-700
		Error:          lipgloss.Color("#DC2626"), // red-600
		Muted:          lipgloss.Color("#6B7280"), // gray-500
		Dim:            lipgloss.Color("#D1D5DB"), // gray-300
		Border:         lipgloss.Color("#9CA3AF"), // gray-400
		MsgBorderUser:  lipgloss.Color("#0891B2"),
		MsgBorderAgent: lipgloss.Color("#B45309"),
		MsgBorderError: lipgloss.Color("#DC2626"),
		Markdown:       "light",
	}

	catppuccinTheme = Theme{
		Name:           "catppuccin",
		Primary:        lipgloss.Color("#F9E2AF"), // yellow
		Secondary:      lipgloss.Color("#89DCEB"), // sky
		Success:        lipgloss.Color("#A6E3A1"), // green
		Warning:        lipgloss.Color("#FAB387"), // peach
		Error:          lipgloss.Color("#F38BA8"), // red
		Muted:          lipgloss.Color("#6C7086"), // overlay0
		Dim:            lipgloss.Color("#45475A"), // surface1
		Border:         lipgloss.Color("#585B70"), // surface2
		MsgBorderUser:  lipgloss.Color("#89DCEB"),
		MsgBorderAgent: lipgloss.Color("#F9E2AF"),
		MsgBorderError: lipgloss.Color("#F38BA8"),
		Markdown:       "dark",
	}

	// noColorTheme is used with --no-color and for dumb terminals.
	noColorTheme = Theme{
		Name:           "none",
		Primary:        lipgloss.NoColor{},
		Secondary:      lipgloss.NoColor{},
		Success:        lipgloss.NoColor{},
		Warning:        lipgloss.NoColor{},
		Error:          lipgloss.NoColor{},
		Muted:          lipgloss.NoColor{},
		Dim:            lipgloss.NoColor{},
		Border:         lipgloss.NoColor{},
		MsgBorderUser:  lipgloss.NoColor{},
		MsgBorderAgent: lipgloss.NoColor{},
		MsgBorderError: lipgloss.NoColor{},
		Markdown:       "notty",
	}
)

// Themes maps theme names to their definitions.
var Themes = map[string]Theme{
	"dark":       darkTheme,
	"light":      lightTheme,
	"catppuccin": catppuccinTheme,
	"none":       noColorTheme,
}

// ThemeNames lists available themes in display order.
var ThemeNames = []string{"dark", "light", "catppuccin", "none"}

// CurrentThemeName tracks the active theme name.
var CurrentThemeName = "dark"

// SetTheme switches the palette and rebuilds every style. "auto" picks dark
// or light from the terminal background. It reports false for an unknown
// name and leaves the current theme in place.
func SetTheme(name string) bool {
	if name == "auto" || name == "" {
		name = "light"
		if lipgloss.HasDarkBackground() {
			name = "dark"
		}
	}
	t, ok := Themes[name]
	if !ok {
		return false
	}
	Primary, Secondary, Success, Warning, Error = t.Primary, t.Secondary, t.Success, t.Warning, t.Error
	Muted, Dim, Border = t.Muted, t.Dim, t.Border
	MsgBorderUser, MsgBorderAgent, MsgBorderError = t.MsgBorderUser, t.MsgBorderAgent, t.MsgBorderError
	CurrentThemeName = t.Name
	rebuild()
	return true
}

// Current returns the active theme.
func Current() Theme {
	return Themes[CurrentThemeName]
}
