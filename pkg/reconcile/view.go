package reconcile

import (
	"github.com/b/vertical-tabs/pkg/browser"
	"github.com/b/vertical-tabs/pkg/grouping"
	"github.com/b/vertical-tabs/pkg/search"
	"github.com/b/vertical-tabs/pkg/tabcache"
)

const (
	EmptyNoTabs    = "No open tabs"
	EmptyNoMatches = "No matching tabs"
)

// Row is one rendered tab.
type Row struct {
	Tab  browser.Tab
	Icon string
}

// Section is a group header and its rows.
type Section struct {
	Group browser.Group
	// Placeholder is set when the group is referenced by tabs but not cached yet.
	Placeholder bool
	Collapsed   bool
	Rows        []Row
}

// View is everything a surface needs to draw the panel from scratch.
type View struct {
	Query  string
	Pinned []Row
	// Sections are ordered by their lowest-index tab.
	Sections       []Section
	Ungrouped      []Row
	UngroupedLabel bool
	// Empty is the placeholder text for the tab list, or "" when tabs are shown.
	Empty string
	// Focusable lists the visible unpinned tabs in on-screen order. Tabs inside collapsed
	// groups are skipped.
	Focusable       []browser.TabID
	GroupsAvailable bool
}

// HasPinned reports whether the pinned grid is shown.
func (v View) HasPinned() bool {
	return len(v.Pinned) > 0
}

// Len returns the number of rendered tabs, collapsed ones included.
func (v View) Len() int {
	n := len(v.Pinned) + len(v.Ungrouped)
	for _, s := range v.Sections {
		n += len(s.Rows)
	}
	return n
}

// IconResolver picks an icon source for a tab.
type IconResolver interface {
	Resolve(favIconURL, pageURL string) string
	MarkFailed(src string) bool
}

func buildView(c *tabcache.Cache, query string, collapsed map[browser.GroupID]bool, groupsAvailable bool, icons IconResolver) View {
	v := View{Query: query, GroupsAvailable: groupsAvailable}
	keep := search.Filter(query)

	row := func(t browser.Tab) Row {
		return Row{Tab: t, Icon: icons.Resolve(t.FavIconURL, t.URL)}
	}

	for _, t := range c.PinnedTabs(keep) {
		v.Pinned = append(v.Pinned, row(t))
	}

	unpinned := c.UnpinnedTabs(keep)
	var part grouping.Partition
	if groupsAvailable {
		part = c.GroupsOf(unpinned)
	} else {
		part = grouping.Partition{Ungrouped: unpinned}
	}

	for _, g := range part.Groups {
		group, known := c.GroupOrPlaceholder(g.ID)
		sec := Section{
			Group:       group,
			Placeholder: !known,
			Collapsed:   collapsed[g.ID],
		}
		for _, t := range g.Tabs {
			sec.Rows = append(sec.Rows, row(t))
			if !sec.Collapsed {
				v.Focusable = append(v.Focusable, t.ID)
			}
		}
		v.Sections = append(v.Sections, sec)
	}
	for _, t := range part.Ungrouped {
		v.Ungrouped = append(v.Ungrouped, row(t))
		v.Focusable = append(v.Focusable, t.ID)
	}
	v.UngroupedLabel = part.ShowUngroupedLabel()

	switch {
	case c.Len() == 0:
		v.Empty = EmptyNoTabs
	case v.Len() == 0:
		v.Empty = EmptyNoMatches
	}
	return v
}
