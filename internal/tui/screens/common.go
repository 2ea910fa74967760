package screens

import (
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/emilianohg/spbuadmin/internal/ledger"
	"github.com/emilianohg/spbuadmin/internal/logging"
	"github.com/emilianohg/spbuadmin/internal/resource"
)

// callTimeout bounds every ledger call started from a screen.
const callTimeout = 30 * time.Second

const (
	ScreenDashboard = "dashboard"
	ScreenList      = "list"
	ScreenForm      = "form"
	ScreenDetail    = "detail"
)

// Deps is what every screen needs from the app.
type Deps struct {
	Client        ledger.Client
	Registry      *resource.Registry
	Log           logging.Logger
	PageSize      int
	RedirectDelay time.Duration

	// Endpoint and Signer describe the ledger on the dashboard.
	Endpoint string
	Signer   string
}

// Screen is one page of the app.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) tea.Cmd
	View() string
	SetSize(width, height int)
}

// NavigateMsg is sent when navigation to another screen is requested
type NavigateMsg struct {
	Screen   string
	Resource string
	ID       uint64
	Filters  map[string]uint64
}

func Navigate(screen string) tea.Cmd {
	return func() tea.Msg {
		return NavigateMsg{Screen: screen}
	}
}

func NavigateList(res string, filters map[string]uint64) tea.Cmd {
	return func() tea.Msg {
		return NavigateMsg{Screen: ScreenList, Resource: res, Filters: filters}
	}
}

// NavigateForm opens the create form, or the edit form when id is set.
func NavigateForm(res string, id uint64) tea.Cmd {
	return func() tea.Msg {
		return NavigateMsg{Screen: ScreenForm, Resource: res, ID: id}
	}
}

func NavigateDetail(res string, id uint64) tea.Cmd {
	return func() tea.Msg {
		return NavigateMsg{Screen: ScreenDetail, Resource: res, ID: id}
	}
}

// generations are unique across screens, so a result that arrives after
// its screen was left or reloaded never matches the current one.
var generations atomic.Uint64

func nextGen() uint64 {
	return generations.Add(1)
}

// Styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginBottom(1)

	HelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1)

	SelectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	NormalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2)

	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1).
			Width(28)

	SelectedCardStyle = CardStyle.
				BorderForeground(lipgloss.Color("212"))

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("111"))

	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("214")).
			Padding(1, 2)
)

// truncate shortens s to width cells, ending in "…".
func truncate(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > width {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}

// pad right-fills s with spaces to width cells.
func pad(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
