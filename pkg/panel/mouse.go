package panel

import (
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"github.com/b/vertical-tabs/pkg/browser"
	"github.com/b/vertical-tabs/pkg/colors"
	"github.com/b/vertical-tabs/pkg/controller"
	"github.com/b/vertical-tabs/pkg/reconcile"
)

type hitKind int

const (
	hitNone hitKind = iota
	hitTab
	hitGroup
	hitNewTab
	hitSearch
)

type hit struct {
	kind  hitKind
	tab   browser.TabID
	group browser.GroupID
}

func inZone(id string, msg tea.MouseMsg) bool {
	return zone.Get(id).InBounds(msg)
}

// hitTest finds the drawn element under the pointer.
func (m Model) hitTest(msg tea.MouseMsg) hit {
	v := m.surface.View()
	for _, r := range v.Pinned {
		if inZone(m.tabZone(r.Tab.ID), msg) {
			return hit{kind: hitTab, tab: r.Tab.ID}
		}
	}
	for _, sec := range v.Sections {
		if inZone(m.groupZone(sec.Group.ID), msg) {
			return hit{kind: hitGroup, group: sec.Group.ID}
		}
		if sec.Collapsed {
			continue
		}
		for _, r := range sec.Rows {
			if inZone(m.tabZone(r.Tab.ID), msg) {
				return hit{kind: hitTab, tab: r.Tab.ID}
			}
		}
	}
	for _, r := range v.Ungrouped {
		if inZone(m.tabZone(r.Tab.ID), msg) {
			return hit{kind: hitTab, tab: r.Tab.ID}
		}
	}
	switch {
	case inZone(m.newTabZone(), msg):
		return hit{kind: hitNewTab}
	case inZone(m.searchZone(), msg):
		return hit{kind: hitSearch}
	}
	return hit{}
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if menu, open := m.ctrl().Menu(); open {
		return m.handleMenuMouse(msg, menu)
	}
	if m.themeOpen {
		return m.handleThemeMouse(msg)
	}

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.offset--
		m.clampOffset()
		return m, nil
	case tea.MouseButtonWheelDown:
		m.offset++
		m.clampOffset()
		return m, nil
	}

	switch msg.Action {
	case tea.MouseActionPress:
		return m.mousePress(msg)
	case tea.MouseActionMotion:
		return m.mouseMotion(msg), nil
	case tea.MouseActionRelease:
		return m.mouseRelease(msg)
	}
	return m, nil
}

func (m Model) mousePress(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	h := m.hitTest(msg)
	switch msg.Button {
	case tea.MouseButtonLeft:
		switch h.kind {
		case hitTab:
			m.press = press{active: true, tab: h.tab, x: msg.X, y: msg.Y}
		case hitGroup:
			m.rec().ToggleCollapsed(h.group)
			m.clampOffset()
		case hitNewTab:
			return m, m.exec(m.ctrl().NewTab())
		case hitSearch:
			m.searching = true
			cmd := m.input.Focus()
			return m, cmd
		}
	case tea.MouseButtonMiddle:
		if h.kind == hitTab {
			return m, m.exec(m.ctrl().Close(h.tab))
		}
	case tea.MouseButtonRight:
		if h.kind == hitTab {
			m.ctrl().OpenMenu(h.tab, msg.X, msg.Y, m.width, m.height)
		}
	}
	return m, nil
}

// mouseMotion turns a held press that leaves its cell into a drag, and tracks what the
// dragged tab hovers.
func (m Model) mouseMotion(msg tea.MouseMsg) Model {
	if !m.press.active || msg.Button != tea.MouseButtonLeft {
		return m
	}
	if !m.press.moved && (msg.X != m.press.x || msg.Y != m.press.y) {
		m.press.moved = m.rec().BeginDrag(m.press.tab)
	}
	if !m.press.moved {
		return m
	}
	h := m.hitTest(msg)
	switch h.kind {
	case hitTab:
		m.rec().DragOver(reconcile.DropTarget{Kind: reconcile.DropOnTab, TabID: h.tab})
	case hitGroup:
		m.rec().DragOver(reconcile.DropTarget{Kind: reconcile.DropOnGroup, GroupID: h.group})
	default:
		m.rec().DragOver(reconcile.DropTarget{})
	}
	return m
}

func (m Model) mouseRelease(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	p := m.press
	m.press = press{}
	if !p.active {
		return m, nil
	}
	if p.moved {
		session := m.rec().EndDrag()
		return m, m.exec(m.ctrl().Drop(session))
	}
	if h := m.hitTest(msg); h.kind == hitTab && h.tab == p.tab {
		return m, m.exec(m.ctrl().Activate(p.tab))
	}
	return m, nil
}

func (m Model) handleMenuMouse(msg tea.MouseMsg, menu controller.Menu) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress {
		return m, nil
	}
	for _, it := range menu.Selectable() {
		if inZone(m.menuZone(it.Action), msg) {
			return m, m.exec(m.ctrl().Choose(it.Action))
		}
	}
	m.ctrl().CloseMenu()
	return m, nil
}

func (m Model) handleThemeMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	for i, p := range colors.Presets {
		if inZone(m.presetZone(p.ID), msg) {
			m.themeCursor = i
			m.themes.SetPreset(m.ctx, p.ID)
			return m, nil
		}
	}
	for _, md := range []colors.ThemeMode{colors.ThemeModeAuto, colors.ThemeModeDark, colors.ThemeModeLight} {
		if inZone(m.modeZone(md), msg) {
			m.themes.SetMode(m.ctx, md)
			return m, nil
		}
	}
	return m, nil
}
