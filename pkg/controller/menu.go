package controller

import (
	"github.com/mattn/go-runewidth"

	"github.com/b/vertical-tabs/pkg/browser"
)

// MenuMargin is the default minimum distance between the menu and the viewport edge.
const MenuMargin = 4

// Action identifies a context menu entry.
type Action string

const (
	ActionPin             Action = "pin"
	ActionMute            Action = "mute"
	ActionDuplicate       Action = "duplicate"
	ActionMoveToNewWindow Action = "move_to_new_window"
	ActionAddToNewGroup   Action = "add_to_new_group"
	ActionClose           Action = "close"
	ActionCloseOthers     Action = "close_others"
	ActionCloseRight      Action = "close_right"
)

// MenuItem is one row of the context menu.
type MenuItem struct {
	Action    Action
	Label     string
	Key       string
	Separator bool
}

// Menu is an open context menu. Labels are fixed when it opens.
type Menu struct {
	TabID  browser.TabID
	Items  []MenuItem
	X, Y   int
	Width  int
	Height int
}

// Selectable returns the items that carry an action.
func (m Menu) Selectable() []MenuItem {
	var out []MenuItem
	for _, it := range m.Items {
		if !it.Separator {
			out = append(out, it)
		}
	}
	return out
}

// SetMenuMargin changes the viewport margin, for surfaces measured in cells.
func (c *Controller) SetMenuMargin(margin int) {
	c.menuMargin = max(0, margin)
}

// OpenMenu opens the context menu for id at (x, y), replacing any open menu. The menu
// is shifted left and up as needed to stay inside a viewW by viewH viewport.
func (c *Controller) OpenMenu(id browser.TabID, x, y, viewW, viewH int) (Menu, bool) {
	t, ok := c.cache.Tab(id)
	if !ok {
		c.CloseMenu()
		return Menu{}, false
	}

	pin := "Pin"
	if t.Pinned {
		pin = "Unpin"
	}
	mute := "Mute"
	if t.Muted {
		mute = "Unmute"
	}
	items := []MenuItem{
		{Action: ActionPin, Label: pin, Key: "p"},
		{Action: ActionMute, Label: mute, Key: "m"},
		{Action: ActionDuplicate, Label: "Duplicate", Key: "d"},
		{Action: ActionMoveToNewWindow, Label: "Move to new window", Key: "w"},
	}
	if c.groupsAvailable && !t.Pinned {
		items = append(items,
			MenuItem{Separator: true},
			MenuItem{Action: ActionAddToNewGroup, Label: "Add to new group", Key: "g"},
		)
	}
	items = append(items,
		MenuItem{Separator: true},
		MenuItem{Action: ActionClose, Label: "Close", Key: "x"},
		MenuItem{Action: ActionCloseOthers, Label: "Close other tabs", Key: "o"},
		MenuItem{Action: ActionCloseRight, Label: "Close tabs to the right", Key: "r"},
	)

	w, h := menuSize(items)
	mx, my := ClampMenuPosition(x, y, w, h, viewW, viewH, c.menuMargin)
	c.menu = Menu{TabID: id, Items: items, X: mx, Y: my, Width: w, Height: h}
	c.menuOpen = true
	return c.menu, true
}

// menuSize is the bordered box: one row per item, key column plus label.
func menuSize(items []MenuItem) (w, h int) {
	widest := 0
	for _, it := range items {
		widest = max(widest, runewidth.StringWidth(it.Label))
	}
	return widest + 6, len(items) + 2
}

// ClampMenuPosition keeps a w by h menu inside the viewport with at least margin on
// every side it can fit. A menu larger than the viewport is pinned to the top-left
// margin.
func ClampMenuPosition(x, y, w, h, viewW, viewH, margin int) (int, int) {
	return clampAxis(x, w, viewW, margin), clampAxis(y, h, viewH, margin)
}

func clampAxis(pos, size, view, margin int) int {
	if pos+size > view-margin {
		pos = view - margin - size
	}
	if pos < margin {
		pos = margin
	}
	return pos
}

// Menu returns the open menu.
func (c *Controller) Menu() (Menu, bool) {
	return c.menu, c.menuOpen
}

// CloseMenu closes the menu. Closing a closed menu is a no-op.
func (c *Controller) CloseMenu() {
	c.menu = Menu{}
	c.menuOpen = false
}

// Choose closes the menu and returns the command for action against the menu's tab.
func (c *Controller) Choose(action Action) Command {
	m, ok := c.Menu()
	c.CloseMenu()
	if !ok {
		return Command{}
	}
	return c.forAction(action, m.TabID)
}

// ChooseKey picks the item bound to key, if any.
func (c *Controller) ChooseKey(key string) (Command, bool) {
	m, ok := c.Menu()
	if !ok {
		return Command{}, false
	}
	for _, it := range m.Selectable() {
		if it.Key == key {
			return c.Choose(it.Action), true
		}
	}
	return Command{}, false
}

func (c *Controller) forAction(action Action, id browser.TabID) Command {
	switch action {
	case ActionPin:
		return c.TogglePin(id)
	case ActionMute:
		return c.ToggleMute(id)
	case ActionDuplicate:
		return c.Duplicate(id)
	case ActionMoveToNewWindow:
		return c.MoveToNewWindow(id)
	case ActionAddToNewGroup:
		return c.AddToNewGroup(id)
	case ActionClose:
		return c.Close(id)
	case ActionCloseOthers:
		return c.CloseOthers(id)
	case ActionCloseRight:
		return c.CloseRight(id)
	}
	return Command{}
}
