package viz

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/compmath/internal/plot"
)

// Theme colors the terminal views. Primary and Secondary style titles and
// the braille raster; the remaining fields color plot items by role.
type Theme struct {
	Name      string
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Muted     lipgloss.Color

	Graph   lipgloss.Color // function graphs
	Iterate lipgloss.Color // chords, tangents and the current approximation
	Shape   lipgloss.Color // quadrature panels
	Marker  lipgloss.Color // interval ends and roots
	Guide   lipgloss.Color // construction lines
}

var (
	ThemeChalkboard = Theme{
		Name:      "chalkboard",
		Primary:   lipgloss.Color("#f2f2e9"),
		Secondary: lipgloss.Color("#9fd3c7"),
		Muted:     lipgloss.Color("#5b6b63"),
		Graph:     lipgloss.Color("#e8e6d9"),
		Iterate:   lipgloss.Color("#f7a072"),
		Shape:     lipgloss.Color("#8fc1a9"),
		Marker:    lipgloss.Color("#f4d35e"),
		Guide:     lipgloss.Color("#7d8c84"),
	}

	ThemeBlueprint = Theme{
		Name:      "blueprint",
		Primary:   lipgloss.Color("#dbe9ff"),
		Secondary: lipgloss.Color("#7fb2ff"),
		Muted:     lipgloss.Color("#3d5a80"),
		Graph:     lipgloss.Color("#a9cbff"),
		Iterate:   lipgloss.Color("#ffffff"),
		Shape:     lipgloss.Color("#4f86c6"),
		Marker:    lipgloss.Color("#ffd166"),
		Guide:     lipgloss.Color("#5c7ea8"),
	}

	ThemePaper = Theme{
		Name:      "paper",
		Primary:   lipgloss.Color("#1b1b1b"),
		Secondary: lipgloss.Color("#1f4e79"),
		Muted:     lipgloss.Color("#8a8a8a"),
		Graph:     lipgloss.Color("#1f4e79"),
		Iterate:   lipgloss.Color("#b22222"),
		Shape:     lipgloss.Color("#2e7d32"),
		Marker:    lipgloss.Color("#a66f00"),
		Guide:     lipgloss.Color("#9e9e9e"),
	}

	ThemeSolarized = Theme{
		Name:      "solarized",
		Primary:   lipgloss.Color("#268bd2"),
		Secondary: lipgloss.Color("#2aa198"),
		Muted:     lipgloss.Color("#586e75"),
		Graph:     lipgloss.Color("#268bd2"),
		Iterate:   lipgloss.Color("#dc322f"),
		Shape:     lipgloss.Color("#859900"),
		Marker:    lipgloss.Color("#b58900"),
		Guide:     lipgloss.Color("#657b83"),
	}

	ThemeMono = Theme{
		Name:      "mono",
		Primary:   lipgloss.Color("#ffffff"),
		Secondary: lipgloss.Color("#d0d0d0"),
		Muted:     lipgloss.Color("#6c6c6c"),
		Graph:     lipgloss.Color("#ffffff"),
		Iterate:   lipgloss.Color("#d0d0d0"),
		Shape:     lipgloss.Color("#9e9e9e"),
		Marker:    lipgloss.Color("#ffffff"),
		Guide:     lipgloss.Color("#6c6c6c"),
	}

	CurrentTheme = ThemeChalkboard

	Themes = []Theme{
		ThemeChalkboard,
		ThemeBlueprint,
		ThemePaper,
		ThemeSolarized,
		ThemeMono,
	}
)

// PlotColor maps a plot item color name onto the theme role it plays.
func (t Theme) PlotColor(name string) lipgloss.Color {
	switch name {
	case plot.ColorBlue:
		return t.Graph
	case plot.ColorRed:
		return t.Iterate
	case plot.ColorGreen:
		return t.Shape
	case plot.ColorYellow:
		return t.Marker
	case plot.ColorGray:
		return t.Guide
	default:
		return t.Primary
	}
}

// GetTheme returns a theme by name, falling back to the default.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeChalkboard
}

func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

// NextTheme returns the theme after t in Themes, wrapping around.
func NextTheme(t Theme) Theme {
	for i, th := range Themes {
		if th.Name == t.Name {
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
