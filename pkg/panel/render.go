package panel

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/mattn/go-runewidth"

	"github.com/b/vertical-tabs/pkg/browser"
	"github.com/b/vertical-tabs/pkg/colors"
	"github.com/b/vertical-tabs/pkg/controller"
	"github.com/b/vertical-tabs/pkg/grouping"
	"github.com/b/vertical-tabs/pkg/icons"
	"github.com/b/vertical-tabs/pkg/reconcile"
)

const (
	headerHeight = 2 // search line and divider
	footerHeight = 1
	pinnedCell   = 4
	ungroupedTag = "Other tabs"
	untitled     = "Untitled group"
)

// Zone ids carry the model's prefix so several panels can share the zone manager.
func (m Model) newTabZone() string { return m.zones + "newtab" }
func (m Model) searchZone() string { return m.zones + "search" }
func (m Model) tabZone(id browser.TabID) string { return fmt.Sprintf("%stab:%d", m.zones, id) }
func (m Model) groupZone(id browser.GroupID) string { return fmt.Sprintf("%sgroup:%d", m.zones, id) }
func (m Model) menuZone(a controller.Action) string { return m.zones + "menu:" + string(a) }
func (m Model) presetZone(id string) string { return m.zones + "preset:" + id }
func (m Model) modeZone(md colors.ThemeMode) string { return m.zones + "mode:" + string(md) }

type listLayout struct {
	lines []string
	// focus is the line of the focused row, or -1.
	focus int
}

func (m Model) listHeight() int {
	return max(1, m.height-headerHeight-footerHeight)
}

func (m Model) palette() colors.Palette {
	return m.themes.Current().Palette
}

func (m Model) View() string {
	pal := m.palette()
	base := lipgloss.NewStyle().
		Foreground(lipgloss.Color(pal.Foreground)).
		Background(lipgloss.Color(pal.Background)).
		Width(m.width)

	var body []string
	if m.themeOpen {
		body = m.themeLines(base, pal)
	} else {
		l := m.listLines()
		end := min(len(l.lines), m.offset+m.listHeight())
		if m.offset < end {
			body = l.lines[m.offset:end]
		}
	}
	for len(body) < m.listHeight() {
		body = append(body, base.Render(""))
	}

	lines := make([]string, 0, m.height)
	lines = append(lines, m.searchLine(base, pal))
	lines = append(lines, base.Foreground(lipgloss.Color(pal.Divider)).Render(strings.Repeat("─", max(0, m.width))))
	lines = append(lines, body...)
	lines = append(lines, m.footerLine(base, pal))

	if menu, ok := m.ctrl().Menu(); ok {
		lines = m.overlayMenu(lines, menu, pal)
	}
	return zone.Scan(strings.Join(lines, "\n"))
}

func (m Model) searchLine(base lipgloss.Style, pal colors.Palette) string {
	if m.searching || m.input.Value() != "" {
		m.input.Width = max(1, m.width-runewidth.StringWidth(m.input.Prompt)-1)
		return zone.Mark(m.searchZone(), base.Render(m.input.View()))
	}
	return zone.Mark(m.searchZone(), base.Foreground(lipgloss.Color(pal.Muted)).Render("/ Search tabs"))
}

func (m Model) footerLine(base lipgloss.Style, pal colors.Palette) string {
	left := zone.Mark(m.newTabZone(), base.Width(0).Foreground(lipgloss.Color(pal.Accent)).Render("+ New tab"))
	right := m.status
	if right == "" {
		right = fmt.Sprintf("%d tabs", m.mirror.Cache().Len())
	}
	gap := max(1, m.width-runewidth.StringWidth("+ New tab")-runewidth.StringWidth(right))
	return left + base.Width(0).Foreground(lipgloss.Color(pal.Muted)).Render(strings.Repeat(" ", gap)+right)
}

// listLines renders the tab list from the surface, before scrolling.
func (m Model) listLines() listLayout {
	v := m.surface.View()
	pal := m.palette()
	dark := m.themes.Current().Dark
	focused, hasFocus := m.rec().Focused()
	drag := m.rec().Drag()

	out := listLayout{focus: -1}
	add := func(line string) { out.lines = append(out.lines, line) }

	if v.HasPinned() {
		for _, line := range m.pinnedGrid(v.Pinned, pal, drag) {
			add(line)
		}
		add(lipgloss.NewStyle().Width(m.width).Background(lipgloss.Color(pal.Background)).Render(""))
	}

	if v.Empty != "" {
		add(lipgloss.NewStyle().
			Width(m.width).
			Align(lipgloss.Center).
			Foreground(lipgloss.Color(pal.Muted)).
			Background(lipgloss.Color(pal.Background)).
			Render(v.Empty))
		return out
	}

	row := func(r reconcile.Row, indent int) {
		isFocused := hasFocus && r.Tab.ID == focused
		if isFocused {
			out.focus = len(out.lines)
		}
		isTarget := drag.Active && drag.Target.Kind == reconcile.DropOnTab && drag.Target.TabID == r.Tab.ID
		isDragged := drag.Active && drag.TabID == r.Tab.ID
		add(zone.Mark(m.tabZone(r.Tab.ID), m.tabRow(r, indent, pal, isFocused, isTarget, isDragged)))
	}

	for _, sec := range v.Sections {
		isTarget := drag.Active && drag.Target.Kind == reconcile.DropOnGroup && drag.Target.GroupID == sec.Group.ID
		add(zone.Mark(m.groupZone(sec.Group.ID), m.groupHeader(sec, dark, isTarget)))
		if sec.Collapsed {
			continue
		}
		for _, r := range sec.Rows {
			row(r, 2)
		}
	}
	if v.UngroupedLabel {
		add(lipgloss.NewStyle().
			Width(m.width).
			Bold(true).
			Foreground(lipgloss.Color(pal.Muted)).
			Background(lipgloss.Color(pal.Background)).
			Render(ungroupedTag))
	}
	for _, r := range v.Ungrouped {
		row(r, 0)
	}
	return out
}

func (m Model) pinnedGrid(rows []reconcile.Row, pal colors.Palette, drag reconcile.DragSession) []string {
	perLine := max(1, m.width/pinnedCell)
	var lines []string
	var cur []string
	used := 0
	flush := func() {
		pad := lipgloss.NewStyle().Background(lipgloss.Color(pal.Background)).Render(strings.Repeat(" ", max(0, m.width-used)))
		lines = append(lines, strings.Join(cur, "")+pad)
		cur, used = nil, 0
	}
	for _, r := range rows {
		bg := pal.Hover
		if r.Tab.Active {
			bg = pal.Active
		}
		style := lipgloss.NewStyle().
			Width(pinnedCell).
			Align(lipgloss.Center).
			Foreground(lipgloss.Color(pal.Foreground)).
			Background(lipgloss.Color(bg))
		if drag.Active && drag.Target.Kind == reconcile.DropOnTab && drag.Target.TabID == r.Tab.ID {
			style = style.Background(lipgloss.Color(pal.Accent)).Foreground(lipgloss.Color(pal.AccentText))
		}
		cur = append(cur, zone.Mark(m.tabZone(r.Tab.ID), style.Render(icons.Glyph(r.Icon, r.Tab.URL))))
		used += pinnedCell
		if len(cur) == perLine {
			flush()
		}
	}
	if len(cur) > 0 {
		flush()
	}
	return lines
}

func indicator(t browser.Tab) string {
	switch {
	case t.Muted:
		return "⊘"
	case t.Audible:
		return "♪"
	case t.Loading():
		return "◌"
	}
	return ""
}

// TruncateTitle fits a title into width cells.
func TruncateTitle(title string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(title, width, "…")
}

func (m Model) tabRow(r reconcile.Row, indent int, pal colors.Palette, focused, target, dragged bool) string {
	bg := pal.Background
	switch {
	case r.Tab.Active:
		bg = pal.Active
	case focused:
		bg = pal.Hover
	}
	fg := pal.Foreground
	if dragged {
		fg = pal.Muted
	}

	marker := " "
	if focused {
		marker = "›"
	}
	ind := indicator(r.Tab)
	prefix := marker + strings.Repeat(" ", indent) + icons.Glyph(r.Icon, r.Tab.URL) + " "
	avail := m.width - runewidth.StringWidth(prefix) - runewidth.StringWidth(ind) - 1
	title := TruncateTitle(r.Tab.DisplayTitle(), avail)
	gap := max(1, m.width-runewidth.StringWidth(prefix+title)-runewidth.StringWidth(ind))

	style := lipgloss.NewStyle().
		Width(m.width).
		Foreground(lipgloss.Color(fg)).
		Background(lipgloss.Color(bg))
	if r.Tab.Active {
		style = style.Bold(true)
	}
	if target {
		style = style.Underline(true).Foreground(lipgloss.Color(pal.Accent))
	}
	return style.Render(prefix + title + strings.Repeat(" ", gap) + ind)
}

func (m Model) groupHeader(sec reconcile.Section, dark, target bool) string {
	bg, fg := grouping.HeaderColors(sec.Group.Color, sec.Collapsed, dark)
	arrow := "▾"
	if sec.Collapsed {
		arrow = "▸"
	}
	title := sec.Group.Title
	if title == "" {
		title = untitled
	}
	count := fmt.Sprintf(" %d", len(sec.Rows))
	title = TruncateTitle(title, m.width-runewidth.StringWidth(arrow+" "+count)-1)
	style := lipgloss.NewStyle().
		Width(m.width).
		Bold(true).
		Foreground(lipgloss.Color(fg)).
		Background(lipgloss.Color(bg))
	if target {
		style = style.Reverse(true)
	}
	return style.Render(arrow + " " + title + count)
}

func (m Model) themeLines(base lipgloss.Style, pal colors.Palette) []string {
	selected, mode := m.themes.Selection()
	lines := []string{base.Bold(true).Render("Theme")}
	for i, p := range colors.Presets {
		cursor := "  "
		if i == m.themeCursor {
			cursor = "› "
		}
		check := ""
		if p.ID == selected {
			check = " ✓"
		}
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(p.Swatch)).Background(lipgloss.Color(pal.Background)).Render("██")
		label := base.Width(max(0, m.width-4)).Render(" " + TruncateTitle(p.Label+check, m.width-5))
		lines = append(lines, zone.Mark(m.presetZone(p.ID), base.Width(2).Render(cursor)+swatch+label))
	}
	lines = append(lines, base.Render(""))

	var modes []string
	for _, md := range []colors.ThemeMode{colors.ThemeModeAuto, colors.ThemeModeDark, colors.ThemeModeLight} {
		style := base.Width(0).Foreground(lipgloss.Color(pal.Muted))
		if md == mode {
			style = style.Foreground(lipgloss.Color(pal.AccentText)).Background(lipgloss.Color(pal.Accent))
		}
		modes = append(modes, zone.Mark(m.modeZone(md), style.Render(" "+string(md)+" ")))
	}
	lines = append(lines, base.Render("Mode "+strings.Join(modes, " ")))
	lines = append(lines, base.Foreground(lipgloss.Color(pal.Muted)).Render("enter pick · a/d/l mode · esc"))
	return lines
}

// overlayMenu draws the context menu over the rows it covers. The menu box replaces
// those rows from its column onward.
func (m Model) overlayMenu(lines []string, menu controller.Menu, pal colors.Palette) []string {
	inner := menu.Width - 2
	item := lipgloss.NewStyle().
		Width(inner).
		Foreground(lipgloss.Color(pal.Foreground)).
		Background(lipgloss.Color(pal.Background))
	var rows []string
	for _, it := range menu.Items {
		if it.Separator {
			rows = append(rows, item.Foreground(lipgloss.Color(pal.Divider)).Render(strings.Repeat("─", inner)))
			continue
		}
		key := lipgloss.NewStyle().Foreground(lipgloss.Color(pal.Accent)).Background(lipgloss.Color(pal.Background)).Render(" " + it.Key + " ")
		rows = append(rows, zone.Mark(m.menuZone(it.Action), key+item.Width(inner-3).Render(it.Label)))
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(pal.Accent)).
		BorderBackground(lipgloss.Color(pal.Background)).
		Render(strings.Join(rows, "\n"))

	out := append([]string(nil), lines...)
	pad := strings.Repeat(" ", max(0, menu.X))
	for i, l := range strings.Split(box, "\n") {
		y := menu.Y + i
		if y < 0 || y >= len(out) {
			continue
		}
		out[y] = pad + l
	}
	return out
}
