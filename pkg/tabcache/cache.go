// Package tabcache keeps the in-process mirror of one browser window's tabs and groups.
//
// The cache is not safe for concurrent use. It is owned by a single actor that applies
// directory events in delivery order.
package tabcache

import (
	"context"
	"fmt"
	"sort"

	"github.com/b/vertical-tabs/pkg/browser"
	"github.com/b/vertical-tabs/pkg/grouping"
)

// Cache mirrors the tabs and groups of the window the panel is attached to.
type Cache struct {
	windowID browser.WindowID
	tabs     map[browser.TabID]browser.Tab
	groups   map[browser.GroupID]browser.Group
}

// New returns an empty cache for windowID. The window never changes afterwards.
func New(windowID browser.WindowID) *Cache {
	return &Cache{
		windowID: windowID,
		tabs:     make(map[browser.TabID]browser.Tab),
		groups:   make(map[browser.GroupID]browser.Group),
	}
}

// WindowID returns the window the cache is scoped to.
func (c *Cache) WindowID() browser.WindowID {
	return c.windowID
}

// Len returns the number of cached tabs.
func (c *Cache) Len() int {
	return len(c.tabs)
}

// Tab returns a cached tab.
func (c *Cache) Tab(id browser.TabID) (browser.Tab, bool) {
	t, ok := c.tabs[id]
	return t, ok
}

// put stores t and keeps the single-active invariant: an active tab deactivates every
// other cached tab. It returns the tabs it deactivated.
func (c *Cache) put(t browser.Tab) []browser.TabID {
	var cleared []browser.TabID
	if t.Active {
		cleared = c.clearActive(t.ID)
	}
	c.tabs[t.ID] = t
	return cleared
}

func (c *Cache) clearActive(except browser.TabID) []browser.TabID {
	var cleared []browser.TabID
	for id, other := range c.tabs {
		if id != except && other.Active {
			other.Active = false
			c.tabs[id] = other
			cleared = append(cleared, id)
		}
	}
	return cleared
}

// OnCreated inserts a tab created in the cache's window.
func (c *Cache) OnCreated(t browser.Tab) bool {
	if t.WindowID != c.windowID {
		return false
	}
	c.put(t)
	return true
}

// OnRemoved drops a tab removed from the cache's window.
func (c *Cache) OnRemoved(id browser.TabID, windowID browser.WindowID) bool {
	if windowID != c.windowID {
		return false
	}
	if _, ok := c.tabs[id]; !ok {
		return false
	}
	delete(c.tabs, id)
	return true
}

// Update describes what OnUpdated did.
type Update struct {
	Applied  bool
	Inserted bool
	Before   browser.Tab
	After    browser.Tab
	// Deactivated lists tabs that lost the active flag because After became active.
	Deactivated []browser.TabID
}

// OnUpdated merges change into the cached tab, or inserts full when the creation event
// was missed. Updates for other windows are ignored.
func (c *Cache) OnUpdated(id browser.TabID, change browser.TabChange, full browser.Tab) Update {
	if full.WindowID != c.windowID {
		return Update{}
	}
	before, ok := c.tabs[id]
	if !ok {
		cleared := c.put(full)
		return Update{Applied: true, Inserted: true, After: c.tabs[id], Deactivated: cleared}
	}
	after := before
	change.Apply(&after)
	cleared := c.put(after)
	return Update{Applied: true, Before: before, After: c.tabs[id], Deactivated: cleared}
}

// OnActivated makes id the only active tab. It returns the previously active tab, if any.
func (c *Cache) OnActivated(id browser.TabID, windowID browser.WindowID) (browser.TabID, bool) {
	if windowID != c.windowID {
		return 0, false
	}
	var prev browser.TabID
	for otherID, other := range c.tabs {
		if other.Active && otherID != id {
			prev = otherID
		}
	}
	c.clearActive(id)
	if t, ok := c.tabs[id]; ok {
		t.Active = true
		c.tabs[id] = t
	}
	return prev, true
}

// OnMoved reports whether the move concerns this window. Moves shift the index of every
// tab, so the caller re-queries the window and calls Replace.
func (c *Cache) OnMoved(id browser.TabID, windowID browser.WindowID) bool {
	return windowID == c.windowID
}

// OnDetached reports whether a tab left this window and a re-query is needed.
func (c *Cache) OnDetached(id browser.TabID, oldWindowID browser.WindowID) bool {
	return oldWindowID == c.windowID
}

// OnAttached reports whether a tab joined this window and a re-query is needed.
func (c *Cache) OnAttached(id browser.TabID, newWindowID browser.WindowID) bool {
	return newWindowID == c.windowID
}

// Replace swaps the whole tab map for a fresh query result. Tabs of other windows are
// dropped; if the result reports several active tabs the last one in index order wins.
func (c *Cache) Replace(tabs []browser.Tab) {
	sorted := make([]browser.Tab, 0, len(tabs))
	for _, t := range tabs {
		if t.WindowID == c.windowID {
			sorted = append(sorted, t)
		}
	}
	sortByIndex(sorted)

	next := make(map[browser.TabID]browser.Tab, len(sorted))
	var active browser.TabID
	hasActive := false
	for _, t := range sorted {
		if t.Active {
			active, hasActive = t.ID, true
		}
		next[t.ID] = t
	}
	if hasActive {
		for id, t := range next {
			if t.Active && id != active {
				t.Active = false
				next[id] = t
			}
		}
	}
	c.tabs = next
}

// Resync queries the window from dir and replaces the tab map atomically.
func (c *Cache) Resync(ctx context.Context, dir browser.TabDirectory) error {
	tabs, err := dir.Query(ctx, c.windowID)
	if err != nil {
		return fmt.Errorf("failed to query window %d: %w", c.windowID, err)
	}
	c.Replace(tabs)
	return nil
}

// SortedTabs returns every cached tab ordered by index.
func (c *Cache) SortedTabs() []browser.Tab {
	out := make([]browser.Tab, 0, len(c.tabs))
	for _, t := range c.tabs {
		out = append(out, t)
	}
	sortByIndex(out)
	return out
}

// PinnedTabs returns pinned tabs accepted by filter, ordered by index. A nil filter
// accepts everything.
func (c *Cache) PinnedTabs(filter func(browser.Tab) bool) []browser.Tab {
	return c.selectTabs(func(t browser.Tab) bool {
		return t.Pinned && (filter == nil || filter(t))
	})
}

// UnpinnedTabs returns unpinned tabs accepted by filter, ordered by index.
func (c *Cache) UnpinnedTabs(filter func(browser.Tab) bool) []browser.Tab {
	return c.selectTabs(func(t browser.Tab) bool {
		return !t.Pinned && (filter == nil || filter(t))
	})
}

func (c *Cache) selectTabs(keep func(browser.Tab) bool) []browser.Tab {
	var out []browser.Tab
	for _, t := range c.SortedTabs() {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

// GroupsOf partitions already sorted unpinned tabs into groups and an ungrouped residual.
func (c *Cache) GroupsOf(unpinned []browser.Tab) grouping.Partition {
	return grouping.GroupTabs(unpinned)
}

func sortByIndex(tabs []browser.Tab) {
	sort.SliceStable(tabs, func(i, j int) bool {
		if tabs[i].Index != tabs[j].Index {
			return tabs[i].Index < tabs[j].Index
		}
		return tabs[i].ID < tabs[j].ID
	})
}
