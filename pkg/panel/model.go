// Package panel is the terminal side panel: a bubbletea program that draws the mirrored
// window and turns keys and clicks into directory commands.
package panel

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
	"pkt.systems/pslog"

	"github.com/b/vertical-tabs/pkg/browser"
	"github.com/b/vertical-tabs/pkg/colors"
	"github.com/b/vertical-tabs/pkg/config"
	"github.com/b/vertical-tabs/pkg/controller"
	"github.com/b/vertical-tabs/pkg/mirror"
	"github.com/b/vertical-tabs/pkg/reconcile"
	"github.com/b/vertical-tabs/pkg/search"
)

// menuMargin keeps the context menu one cell off the pane edges.
const menuMargin = 1

// Options wires a panel model.
type Options struct {
	Mirror  *mirror.Mirror
	Surface *Surface
	Themes  *colors.Store
	// OSPreference is refreshed when the terminal reports a color scheme change.
	OSPreference colors.OSPreference
	Debounce     time.Duration
	// Reload re-reads the config file. Nil disables live reload.
	Reload func() (config.Config, error)
	// Resize is called with the configured panel width after a reload.
	Resize func(width int)
	Log    pslog.Logger
}

type eventMsg struct{ ev browser.Event }

type eventsClosedMsg struct{}

type resyncMsg struct {
	tabs []browser.Tab
	err  error
}

type searchSettledMsg struct{ query string }

type reloadConfigMsg struct{}

type osThemeMsg struct{}

// ReloadConfig asks a running panel to re-read its config.
func ReloadConfig() tea.Msg { return reloadConfigMsg{} }

// OSThemeChanged tells a running panel the terminal color scheme may have changed.
func OSThemeChanged() tea.Msg { return osThemeMsg{} }

type press struct {
	active bool
	tab    browser.TabID
	x, y   int
	moved  bool
}

// Model is the bubbletea model of the panel.
type Model struct {
	ctx     context.Context
	mirror  *mirror.Mirror
	surface *Surface
	themes  *colors.Store
	osPref  colors.OSPreference
	search  *search.Debouncer
	reload  func() (config.Config, error)
	resize  func(int)
	log     pslog.Logger

	input     textinput.Model
	searching bool

	themeOpen   bool
	themeCursor int

	zones  string
	press  press
	width  int
	height int
	offset int
	status string
}

// New returns a panel model. The mirror must have been built on opts.Surface.
func New(ctx context.Context, opts Options) Model {
	in := textinput.New()
	in.Placeholder = "Search tabs"
	in.Prompt = "/ "

	opts.Mirror.Controller().SetMenuMargin(menuMargin)
	return Model{
		ctx:     ctx,
		mirror:  opts.Mirror,
		surface: opts.Surface,
		themes:  opts.Themes,
		osPref:  opts.OSPreference,
		search:  search.NewDebouncer(opts.Debounce),
		reload:  opts.Reload,
		resize:  opts.Resize,
		log:     opts.Log,
		input:   in,
		zones:   zone.NewPrefix(),
		width:   40,
		height:  24,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		waitForEvent(m.mirror.Directory().Events()),
		waitForQuery(m.search.C()),
	)
}

func waitForEvent(events <-chan browser.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg{ev: ev}
	}
}

func waitForQuery(settled <-chan string) tea.Cmd {
	return func() tea.Msg {
		q, ok := <-settled
		if !ok {
			return nil
		}
		return searchSettledMsg{query: q}
	}
}

func (m Model) resync() tea.Cmd {
	mir, ctx := m.mirror, m.ctx
	return func() tea.Msg {
		tabs, err := mir.Query(ctx)
		return resyncMsg{tabs: tabs, err: err}
	}
}

// exec runs a directory command off the event loop. Its effects come back as events.
func (m Model) exec(cmd controller.Command) tea.Cmd {
	if cmd.IsZero() {
		return nil
	}
	mir, ctx := m.mirror, m.ctx
	return func() tea.Msg {
		mir.Exec(ctx, cmd)
		return nil
	}
}

func (m Model) rec() *reconcile.Reconciler {
	return m.mirror.Reconciler()
}

func (m Model) ctrl() *controller.Controller {
	return m.mirror.Controller()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ensureFocusVisible()
		return m, nil

	case eventMsg:
		next := waitForEvent(m.mirror.Directory().Events())
		if m.mirror.Handle(msg.ev) == reconcile.NeedsResync {
			return m, tea.Batch(next, m.resync())
		}
		m.clampOffset()
		return m, next

	case eventsClosedMsg:
		m.log.Info("tab source closed")
		m.search.Close()
		return m, tea.Quit

	case resyncMsg:
		if msg.err != nil {
			m.log.Debug("resync failed", "err", msg.err)
			return m, nil
		}
		m.mirror.ApplyResync(msg.tabs)
		m.clampOffset()
		return m, nil

	case searchSettledMsg:
		// A query settled before Escape or a later edit no longer matches the box.
		if search.Normalize(msg.query) != search.Normalize(m.input.Value()) {
			return m, waitForQuery(m.search.C())
		}
		m.rec().SetQuery(msg.query)
		m.offset = 0
		return m, waitForQuery(m.search.C())

	case reloadConfigMsg:
		return m.reloadConfig(), nil

	case osThemeMsg:
		if r, ok := m.osPref.(interface{ Refresh() bool }); ok {
			r.Refresh()
		}
		if _, changed := m.themes.OSPreferenceChanged(); changed {
			m.log.Debug("theme follows os preference", "dark", m.themes.Current().Dark)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)
	}
	return m, nil
}

func (m Model) reloadConfig() Model {
	if m.reload == nil {
		return m
	}
	cfg, err := m.reload()
	if err != nil {
		m.log.Warn("config reload failed", "err", err)
		m.status = "config error"
		return m
	}
	m.status = ""
	m.search.SetDelay(cfg.Search.Debounce)
	if m.resize != nil {
		m.resize(cfg.Panel.Width)
	}
	m.log.Info("config reloaded", "debounce", cfg.Search.Debounce.String(), "width", cfg.Panel.Width)
	return m
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.search.Close()
	return m, tea.Quit
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m.quit()
	}

	if _, open := m.ctrl().Menu(); open {
		if key == "esc" {
			m.ctrl().CloseMenu()
			return m, nil
		}
		cmd, _ := m.ctrl().ChooseKey(key)
		return m, m.exec(cmd)
	}

	if m.searching {
		return m.handleSearchKey(msg)
	}

	if m.themeOpen {
		return m.handleThemeKey(key)
	}

	switch key {
	case "q":
		return m.quit()
	case "j", "down":
		m.rec().MoveFocus(1)
		m.ensureFocusVisible()
	case "k", "up":
		m.rec().MoveFocus(-1)
		m.ensureFocusVisible()
	case "enter":
		if id, ok := m.rec().Focused(); ok {
			return m, m.exec(m.ctrl().Activate(id))
		}
	case "x", "delete", "backspace":
		if id, ok := m.rec().Focused(); ok {
			return m, m.exec(m.ctrl().Close(id))
		}
	case "z":
		if id, ok := m.rec().Focused(); ok {
			if t, ok := m.mirror.Cache().Tab(id); ok {
				if gid, grouped := t.Group.ID(); grouped && m.mirror.GroupsAvailable() {
					m.rec().ToggleCollapsed(gid)
				}
			}
		}
	case "m":
		if id, ok := m.rec().Focused(); ok {
			y := headerHeight + m.focusLine() - m.offset
			m.ctrl().OpenMenu(id, 2, y+1, m.width, m.height)
		}
	case "n":
		return m, m.exec(m.ctrl().NewTab())
	case "/":
		m.searching = true
		cmd := m.input.Focus()
		return m, cmd
	case "t":
		m.openThemes()
	case "esc":
		if m.input.Value() != "" {
			return m.clearSearch()
		}
		m.rec().ClearFocus()
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m.clearSearch()
	case "enter":
		m.searching = false
		m.input.Blur()
		m.search.Flush()
		return m, nil
	case "down":
		m.searching = false
		m.input.Blur()
		m.search.Flush()
		m.rec().MoveFocus(1)
		return m, nil
	}
	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.search.Push(m.input.Value())
	}
	return m, cmd
}

func (m Model) clearSearch() (tea.Model, tea.Cmd) {
	m.searching = false
	m.input.Blur()
	m.input.SetValue("")
	m.search.Cancel()
	m.rec().SetQuery("")
	m.offset = 0
	return m, nil
}

func (m *Model) openThemes() {
	m.themeOpen = true
	id, _ := m.themes.Selection()
	m.themeCursor = 0
	for i, p := range colors.Presets {
		if p.ID == id {
			m.themeCursor = i
		}
	}
}

func (m Model) handleThemeKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q":
		return m.quit()
	case "esc", "t":
		m.themeOpen = false
	case "j", "down":
		m.themeCursor = min(len(colors.Presets)-1, m.themeCursor+1)
	case "k", "up":
		m.themeCursor = max(0, m.themeCursor-1)
	case "enter", " ":
		m.themes.SetPreset(m.ctx, colors.Presets[m.themeCursor].ID)
	case "a":
		m.themes.SetMode(m.ctx, colors.ThemeModeAuto)
	case "d":
		m.themes.SetMode(m.ctx, colors.ThemeModeDark)
	case "l":
		m.themes.SetMode(m.ctx, colors.ThemeModeLight)
	}
	return m, nil
}

// ensureFocusVisible scrolls so the focused row is on screen.
func (m *Model) ensureFocusVisible() {
	line := m.focusLine()
	if line < 0 {
		m.clampOffset()
		return
	}
	rows := m.listHeight()
	switch {
	case line < m.offset:
		m.offset = line
	case line >= m.offset+rows:
		m.offset = line - rows + 1
	}
	m.clampOffset()
}

func (m *Model) clampOffset() {
	total := len(m.listLines().lines)
	m.offset = max(0, min(m.offset, total-m.listHeight()))
}

func (m Model) focusLine() int {
	return m.listLines().focus
}
