package cli

import "github.com/charmbracelet/lipgloss"

// Broadcast palette, dark theme.
var (
	Primary   = lipgloss.Color("#FF6B35")
	Secondary = lipgloss.Color("#1E88E5")
	Success   = lipgloss.Color("#4CAF50")
	Warning   = lipgloss.Color("#FFB74D")
	Error     = lipgloss.Color("#F44336")
	Text      = lipgloss.Color("#E0E0E0")
	Muted     = lipgloss.Color("#90A4AE")
	OnAir     = lipgloss.Color("#FF1744")

	BorderColor = lipgloss.AdaptiveColor{Light: "#DDDDDD", Dark: "#30363D"}
)

var (
	HeaderStyle = lipgloss.NewStyle().
		Foreground(Primary).
		Bold(true)

	PanelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderColor).
		Padding(0, 1)

	LabelStyle = lipgloss.NewStyle().
		Foreground(Muted).
		Width(14)

	ValueStyle = lipgloss.NewStyle().
		Foreground(Text)

	// TimecodeStyle renders the timecode itself, large and bright.
	TimecodeStyle = lipgloss.NewStyle().
		Foreground(Secondary).
		Bold(true)

	NegativeStyle = lipgloss.NewStyle().
		Foreground(OnAir).
		Bold(true)

	DropFrameStyle = lipgloss.NewStyle().
		Foreground(Warning)

	SuccessStyle = lipgloss.NewStyle().
		Foreground(Success)

	ErrorStyle = lipgloss.NewStyle().
		Foreground(Error).
		Bold(true)

	HelpStyle = lipgloss.NewStyle().
		Foreground(Muted).
		Italic(true)

	PromptStyle = lipgloss.NewStyle().
		Foreground(Primary).
		Bold(true)
)

func styledTimecode(s string, negative bool) string {
	if negative {
		return NegativeStyle.Render(s)
	}
	return TimecodeStyle.Render(s)
}

func row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, LabelStyle.Render(label), ValueStyle.Render(value))
}
