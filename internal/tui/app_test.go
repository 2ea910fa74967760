package tui

import (
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilianohg/spbuadmin/internal/catalog"
	"github.com/emilianohg/spbuadmin/internal/db"
	"github.com/emilianohg/spbuadmin/internal/ledger/devnet"
	"github.com/emilianohg/spbuadmin/internal/logging"
	"github.com/emilianohg/spbuadmin/internal/tui/screens"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	database, err := db.OpenAndMigrate(filepath.Join(t.TempDir(), "devnet.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	contract, err := devnet.New(database, catalog.Resources(), logging.Discard())
	require.NoError(t, err)
	registry, err := catalog.New()
	require.NoError(t, err)

	return NewApp(screens.Deps{
		Client:        contract,
		Registry:      registry,
		Log:           logging.Discard(),
		PageSize:      10,
		RedirectDelay: time.Millisecond,
	})
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestAppNavigation(t *testing.T) {
	a := newTestApp(t)
	a.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	assert.IsType(t, &screens.Dashboard{}, a.Current())

	a.Update(screens.NavigateMsg{Screen: screens.ScreenList, Resource: "tags"})
	assert.IsType(t, &screens.List{}, a.Current())

	a.Update(screens.NavigateMsg{Screen: screens.ScreenForm, Resource: "tags", ID: 3})
	assert.IsType(t, &screens.Form{}, a.Current())

	a.Update(screens.NavigateMsg{Screen: screens.ScreenDetail, Resource: "units", ID: 1})
	assert.IsType(t, &screens.Detail{}, a.Current())

	a.Update(screens.NavigateMsg{Screen: screens.ScreenList, Resource: "nope"})
	assert.IsType(t, &screens.Dashboard{}, a.Current(), "unknown resources fall back to the dashboard")
}

func TestAppQuitKeys(t *testing.T) {
	a := newTestApp(t)

	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	assert.True(t, isQuit(cmd), "q quits from the dashboard")

	a.Update(screens.NavigateMsg{Screen: screens.ScreenList, Resource: "tags"})
	_, cmd = a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	assert.False(t, isQuit(cmd), "q goes back from other screens")

	_, cmd = a.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.True(t, isQuit(cmd))
}
