package tabcache

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/b/vertical-tabs/pkg/browser"
)

// Group returns a cached group.
func (c *Cache) Group(id browser.GroupID) (browser.Group, bool) {
	g, ok := c.groups[id]
	return g, ok
}

// GroupOrPlaceholder returns the cached group, or an untitled grey stand-in when a tab
// references a group the cache has not seen yet.
func (c *Cache) GroupOrPlaceholder(id browser.GroupID) (browser.Group, bool) {
	if g, ok := c.groups[id]; ok {
		return g, true
	}
	g := browser.PlaceholderGroup(id)
	g.WindowID = c.windowID
	return g, false
}

// Groups returns the cached groups in id order.
func (c *Cache) Groups() []browser.Group {
	out := make([]browser.Group, 0, len(c.groups))
	for _, g := range c.groups {
		out = append(out, g)
	}
	sortGroups(out)
	return out
}

// OnGroupCreated upserts a group of this window.
func (c *Cache) OnGroupCreated(g browser.Group) bool {
	return c.upsertGroup(g)
}

// OnGroupUpdated upserts a group of this window.
func (c *Cache) OnGroupUpdated(g browser.Group) bool {
	return c.upsertGroup(g)
}

// OnGroupMoved upserts a group of this window. A group moved to another window is
// dropped from this one.
func (c *Cache) OnGroupMoved(g browser.Group) bool {
	if g.WindowID != c.windowID {
		if _, ok := c.groups[g.ID]; ok {
			delete(c.groups, g.ID)
			return true
		}
		return false
	}
	return c.upsertGroup(g)
}

// OnGroupRemoved drops a group of this window.
func (c *Cache) OnGroupRemoved(g browser.Group) bool {
	if g.WindowID != c.windowID {
		return false
	}
	if _, ok := c.groups[g.ID]; !ok {
		return false
	}
	delete(c.groups, g.ID)
	return true
}

func (c *Cache) upsertGroup(g browser.Group) bool {
	if g.WindowID != c.windowID {
		return false
	}
	c.groups[g.ID] = g
	return true
}

// ReplaceGroups swaps the whole group map.
func (c *Cache) ReplaceGroups(groups []browser.Group) {
	next := make(map[browser.GroupID]browser.Group, len(groups))
	for _, g := range groups {
		if g.WindowID == c.windowID {
			next[g.ID] = g
		}
	}
	c.groups = next
}

// ResyncGroups queries the window's groups and replaces the group map.
func (c *Cache) ResyncGroups(ctx context.Context, dir browser.GroupDirectory) error {
	groups, err := dir.QueryGroups(ctx, c.windowID)
	if err != nil {
		return fmt.Errorf("failed to query groups of window %d: %w", c.windowID, err)
	}
	c.ReplaceGroups(groups)
	return nil
}

func sortGroups(groups []browser.Group) {
	slices.SortFunc(groups, func(a, b browser.Group) int {
		return cmp.Compare(a.ID, b.ID)
	})
}
