package style

import "github.com/charmbracelet/lipgloss"

// Colors. SetTheme replaces them and rebuilds the styles below.
var (
	Primary   lipgloss.TerminalColor = lipgloss.Color("#F59E0B") // amber-500
	Secondary lipgloss.TerminalColor = lipgloss.Color("#06B6D4") // cyan-500
	Success   lipgloss.TerminalColor = lipgloss.Color("#22C55E") // green-500
	Warning   lipgloss.TerminalColor = lipgloss.Color("#F97316") // orange-500
	Error     lipgloss.TerminalColor = lipgloss.Color("#EF4444") // red-500
	Muted     lipgloss.TerminalColor = lipgloss.Color("#6B7280") // gray-500
	Dim       lipgloss.TerminalColor = lipgloss.Color("#374151") // gray-700
	Border    lipgloss.TerminalColor = lipgloss.Color("#4B5563") // gray-600

	MsgBorderUser  lipgloss.TerminalColor = lipgloss.Color("#06B6D4")
	MsgBorderAgent lipgloss.TerminalColor = lipgloss.Color("#F59E0B")
	MsgBorderError lipgloss.TerminalColor = lipgloss.Color("#EF4444")
)

// Styles.
var (
	Bold      lipgloss.Style
	Faint     lipgloss.Style
	ErrorText lipgloss.Style

	HeaderTitle  lipgloss.Style
	HeaderDetail lipgloss.Style

	PromptChar lipgloss.Style

	UserLabel  lipgloss.Style
	AgentLabel lipgloss.Style
	MsgMeta    lipgloss.Style
	UserBody   lipgloss.Style
	AgentBody  lipgloss.Style
	Pending    lipgloss.Style
	ImageHint  lipgloss.Style

	SpinnerStyle lipgloss.Style
	StatusBar    lipgloss.Style
	StatusActive lipgloss.Style

	SidebarBox    lipgloss.Style
	SidebarTitle  lipgloss.Style
	SidebarItem   lipgloss.Style
	SidebarActive lipgloss.Style
	SidebarCursor lipgloss.Style
	SidebarMeta   lipgloss.Style

	DialogBox   lipgloss.Style
	DialogTitle lipgloss.Style
	AlertBox    lipgloss.Style

	Hint lipgloss.Style
)

func init() { rebuild() }

func rebuild() {
	Bold = lipgloss.NewStyle().Bold(true)
	Faint = lipgloss.NewStyle().Foreground(Muted)
	ErrorText = lipgloss.NewStyle().Foreground(Error).Bold(true)

	HeaderTitle = lipgloss.NewStyle().
		Foreground(Primary).
		Bold(true)
	HeaderDetail = lipgloss.NewStyle().
		Foreground(Muted)

	PromptChar = lipgloss.NewStyle().
		Foreground(Primary).
		Bold(true)

	UserLabel = lipgloss.NewStyle().
		Foreground(Secondary).
		Bold(true)
	AgentLabel = lipgloss.NewStyle().
		Foreground(Primary).
		Bold(true)
	MsgMeta = lipgloss.NewStyle().
		Foreground(Muted).
		Italic(true)
	UserBody = lipgloss.NewStyle().
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(MsgBorderUser).
		PaddingLeft(1)
	AgentBody = lipgloss.NewStyle().
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(MsgBorderAgent)
	Pending = lipgloss.NewStyle().
		Foreground(Muted).
		Italic(true)
	ImageHint = lipgloss.NewStyle().
		Foreground(Secondary)

	SpinnerStyle = lipgloss.NewStyle().
		Foreground(Primary)
	StatusBar = lipgloss.NewStyle().
		Foreground(Muted).
		PaddingLeft(1)
	StatusActive = lipgloss.NewStyle().
		Foreground(Primary)

	SidebarBox = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)
	SidebarTitle = lipgloss.NewStyle().
		Foreground(Primary).
		Bold(true)
	SidebarItem = lipgloss.NewStyle()
	SidebarActive = lipgloss.NewStyle().
		Foreground(Primary).
		Bold(true)
	SidebarCursor = lipgloss.NewStyle().
		Foreground(Secondary).
		Bold(true)
	SidebarMeta = lipgloss.NewStyle().
		Foreground(Muted)

	DialogBox = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(1, 2)
	DialogTitle = lipgloss.NewStyle().
		Foreground(Primary).
		Bold(true)
	AlertBox = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Error).
		Padding(1, 2)

	Hint = lipgloss.NewStyle().
		Foreground(Dim)
}
