package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/emilianohg/spbuadmin/internal/tui/screens"
)

type App struct {
	deps   screens.Deps
	width  int
	height int

	name    string
	current screens.Screen
}

func NewApp(deps screens.Deps) *App {
	return &App{
		deps:    deps,
		name:    screens.ScreenDashboard,
		current: screens.NewDashboard(deps),
	}
}

func (a *App) Init() tea.Cmd {
	return a.current.Init()
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return a, tea.Quit
		case "q":
			if a.name == screens.ScreenDashboard {
				return a, tea.Quit
			}
			// Let individual screens handle 'q' for going back
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.current.SetSize(msg.Width, msg.Height)
		return a, nil

	case screens.NavigateMsg:
		return a, a.navigate(msg)
	}

	return a, a.current.Update(msg)
}

// navigate builds a fresh screen for msg. Unknown resources fall back to
// the dashboard.
func (a *App) navigate(msg screens.NavigateMsg) tea.Cmd {
	next, name := a.build(msg)
	a.deps.Log.Debug(context.Background(), "navigate", "screen", name, "resource", msg.Resource, "id", msg.ID)
	a.name = name
	a.current = next
	a.current.SetSize(a.width, a.height)
	return a.current.Init()
}

func (a *App) build(msg screens.NavigateMsg) (screens.Screen, string) {
	if msg.Screen == screens.ScreenDashboard {
		return screens.NewDashboard(a.deps), screens.ScreenDashboard
	}
	res, ok := a.deps.Registry.Get(msg.Resource)
	if !ok {
		a.deps.Log.Warn(context.Background(), "unknown resource", "resource", msg.Resource)
		return screens.NewDashboard(a.deps), screens.ScreenDashboard
	}
	switch msg.Screen {
	case screens.ScreenList:
		return screens.NewList(a.deps, res, msg.Filters), screens.ScreenList
	case screens.ScreenForm:
		return screens.NewForm(a.deps, res, msg.ID), screens.ScreenForm
	case screens.ScreenDetail:
		return screens.NewDetail(a.deps, res, msg.ID), screens.ScreenDetail
	}
	return screens.NewDashboard(a.deps), screens.ScreenDashboard
}

// Current is the screen on display.
func (a *App) Current() screens.Screen {
	return a.current
}

func (a *App) View() string {
	return lipgloss.NewStyle().
		Width(a.width).
		Height(a.height).
		Render(a.current.View())
}

func Run(deps screens.Deps) error {
	app := NewApp(deps)
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
