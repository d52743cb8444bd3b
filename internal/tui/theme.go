package tui

import "github.com/charmbracelet/lipgloss"

// Catppuccin Mocha palette.
const (
	colorPink     lipgloss.Color = "#f5c2e7"
	colorMauve    lipgloss.Color = "#cba6f7"
	colorRed      lipgloss.Color = "#f38ba8"
	colorPeach    lipgloss.Color = "#fab387"
	colorYellow   lipgloss.Color = "#f9e2af"
	colorGreen    lipgloss.Color = "#a6e3a1"
	colorTeal     lipgloss.Color = "#94e2d5"
	colorSky      lipgloss.Color = "#89dceb"
	colorLavender lipgloss.Color = "#b4befe"

	colorText     lipgloss.Color = "#cdd6f4"
	colorSubtext0 lipgloss.Color = "#a6adc8"
	colorOverlay1 lipgloss.Color = "#7f849c"
	colorSurface1 lipgloss.Color = "#45475a"
	colorBase     lipgloss.Color = "#1e1e2e"
)

const (
	colorBrand   = colorPink
	colorFocus   = colorLavender
	colorError   = colorRed
	colorWarning = colorYellow
	colorInfo    = colorTeal
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorBrand)
	subtitleStyle = lipgloss.NewStyle().Foreground(colorSubtext0)
	mutedStyle    = lipgloss.NewStyle().Foreground(colorOverlay1)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorBase).Background(colorFocus)
	statusStyle   = lipgloss.NewStyle().Foreground(colorInfo)
	errorStyle    = lipgloss.NewStyle().Foreground(colorError)
	warningStyle  = lipgloss.NewStyle().Foreground(colorWarning)
	gpStyle       = lipgloss.NewStyle().Foreground(colorGreen)
	categoryStyle = lipgloss.NewStyle().Foreground(colorPeach)
	authorStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorMauve)
	mediaStyle    = lipgloss.NewStyle().Foreground(colorSky).Underline(true)
	floorStyle    = lipgloss.NewStyle().Foreground(colorText)
	nickStyle     = lipgloss.NewStyle().Reverse(true)
	loadingStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBrand).
			Background(colorSurface1).
			Foreground(colorText).
			Padding(0, 3)
)
