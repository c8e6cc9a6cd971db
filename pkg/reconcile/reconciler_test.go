package reconcile

import (
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/b/vertical-tabs/pkg/browser"
	"github.com/b/vertical-tabs/pkg/icons"
	"github.com/b/vertical-tabs/pkg/logx"
	"github.com/b/vertical-tabs/pkg/tabcache"
)

type patchCall struct {
	tab   browser.Tab
	patch Patch
}

type recordingSurface struct {
	rebuilds  []View
	patches   []patchCall
	removed   []browser.TabID
	collapsed map[browser.GroupID]bool
}

func (s *recordingSurface) Rebuild(v View) { s.rebuilds = append(s.rebuilds, v) }
func (s *recordingSurface) PatchTab(t browser.Tab, p Patch) {
	s.patches = append(s.patches, patchCall{t, p})
}
func (s *recordingSurface) RemoveTab(id browser.TabID) { s.removed = append(s.removed, id) }
func (s *recordingSurface) SetCollapsed(id browser.GroupID, c bool) {
	if s.collapsed == nil {
		s.collapsed = make(map[browser.GroupID]bool)
	}
	s.collapsed[id] = c
}

func (s *recordingSurface) lastView(t *testing.T) View {
	t.Helper()
	require.NotEmpty(t, s.rebuilds)
	return s.rebuilds[len(s.rebuilds)-1]
}

func (s *recordingSurface) lastPatch(t *testing.T) patchCall {
	t.Helper()
	require.NotEmpty(t, s.patches)
	return s.patches[len(s.patches)-1]
}

func fixture(t *testing.T, tabs []browser.Tab, groups []browser.Group) (*Reconciler, *recordingSurface) {
	t.Helper()
	tabs = slices.Clone(tabs)
	groups = slices.Clone(groups)
	for i := range tabs {
		if tabs[i].WindowID == 0 {
			tabs[i].WindowID = 1
		}
	}
	for i := range groups {
		if groups[i].WindowID == 0 {
			groups[i].WindowID = 1
		}
	}
	c := tabcache.New(1)
	c.Replace(tabs)
	c.ReplaceGroups(groups)
	surface := &recordingSurface{}
	r := New(c, surface, icons.NewResolver("", time.Minute), true, logx.Discard())
	r.Rebuild()
	return r, surface
}

func rowIDs(rows []Row) []browser.TabID {
	var out []browser.TabID
	for _, row := range rows {
		out = append(out, row.Tab.ID)
	}
	return out
}

func updated(tab browser.Tab, change browser.TabChange) browser.TabUpdated {
	if tab.WindowID == 0 {
		tab.WindowID = 1
	}
	change.Apply(&tab)
	return browser.TabUpdated{TabID: tab.ID, Change: change, Tab: tab}
}

var mixed = []browser.Tab{
	{ID: 1, Index: 0, Title: "Mail", Pinned: true},
	{ID: 2, Index: 1, Title: "Docs", Group: browser.InGroup(7)},
	{ID: 3, Index: 2, Title: "Loose"},
	{ID: 4, Index: 3, Title: "Spec", Group: browser.InGroup(7)},
	{ID: 5, Index: 4, Title: "Ghost", Group: browser.InGroup(9)},
}

func TestRebuildLayout(t *testing.T) {
	_, s := fixture(t, mixed, []browser.Group{{ID: 7, Title: "Work", Color: browser.ColorBlue}})
	v := s.lastView(t)

	assert.Equal(t, []browser.TabID{1}, rowIDs(v.Pinned))
	require.Len(t, v.Sections, 2)
	assert.Equal(t, "Work", v.Sections[0].Group.Title)
	assert.Equal(t, []browser.TabID{2, 4}, rowIDs(v.Sections[0].Rows))
	assert.False(t, v.Sections[0].Placeholder)
	assert.True(t, v.Sections[1].Placeholder, "group 9 is not cached")
	assert.Equal(t, browser.ColorGrey, v.Sections[1].Group.Color)
	assert.Equal(t, []browser.TabID{3}, rowIDs(v.Ungrouped))
	assert.True(t, v.UngroupedLabel)
	assert.Equal(t, []browser.TabID{2, 4, 5, 3}, v.Focusable)
	assert.Empty(t, v.Empty)
}

func TestPatchInPlace(t *testing.T) {
	r, s := fixture(t, mixed, nil)
	rebuilds := len(s.rebuilds)

	action := r.Handle(updated(mixed[2], browser.TabChange{Title: browser.String("Loose ends")}))
	assert.Equal(t, Patched, action)
	call := s.lastPatch(t)
	assert.True(t, call.patch.TitleChanged)
	assert.Equal(t, "Loose ends", call.patch.Title)
	assert.False(t, call.patch.IconChanged)

	loading := browser.StatusLoading
	action = r.Handle(updated(mixed[2], browser.TabChange{Status: &loading}))
	assert.Equal(t, Patched, action)
	call = s.lastPatch(t)
	assert.True(t, call.patch.Loading)
	assert.False(t, call.patch.TitleChanged, "title unchanged since last patch")
	assert.Len(t, s.rebuilds, rebuilds)
}

func TestIconPatchedOnlyWhenSourceChanges(t *testing.T) {
	r, s := fixture(t, mixed, nil)
	tab, _ := r.Cache().Tab(3)

	r.Handle(updated(tab, browser.TabChange{FavIconURL: browser.String("https://x.test/a.png")}))
	assert.True(t, s.lastPatch(t).patch.IconChanged)
	tab, _ = r.Cache().Tab(3)

	r.Handle(updated(tab, browser.TabChange{FavIconURL: browser.String("https://x.test/a.png")}))
	assert.False(t, s.lastPatch(t).patch.IconChanged)
}

func TestCreatedRebuildsAndResetsFocus(t *testing.T) {
	r, s := fixture(t, mixed, nil)
	r.MoveFocus(1)
	require.Equal(t, 0, r.FocusIndex())

	action := r.Handle(browser.TabCreated{Tab: browser.Tab{ID: 6, WindowID: 1, Index: 5, Title: "New"}})
	assert.Equal(t, Rebuilt, action)
	assert.Equal(t, -1, r.FocusIndex())
	assert.Contains(t, rowIDs(s.lastView(t).Ungrouped), browser.TabID(6))

	assert.Equal(t, Ignored, r.Handle(browser.TabCreated{Tab: browser.Tab{ID: 7, WindowID: 2}}))
}

func TestSearchMatchTransitions(t *testing.T) {
	r, s := fixture(t, mixed, nil)
	r.SetQuery("mail")
	v := s.lastView(t)
	assert.Equal(t, []browser.TabID{1}, rowIDs(v.Pinned))
	assert.Empty(t, v.Ungrouped)
	assert.False(t, r.Rendered(3))

	action := r.Handle(updated(mixed[2], browser.TabChange{Title: browser.String("Mailbox")}))
	assert.Equal(t, Rebuilt, action, "newly matching tab needs an element")
	assert.True(t, r.Rendered(3))

	tab, _ := r.Cache().Tab(3)
	action = r.Handle(updated(tab, browser.TabChange{Title: browser.String("Other")}))
	assert.Equal(t, Removed, action)
	assert.Equal(t, []browser.TabID{3}, s.removed)

	tab, _ = r.Cache().Tab(3)
	assert.Equal(t, Ignored, r.Handle(updated(tab, browser.TabChange{Audible: browser.Bool(true)})))
}

func TestPinAndGroupChangesRebuild(t *testing.T) {
	r, _ := fixture(t, mixed, nil)

	assert.Equal(t, Rebuilt, r.Handle(updated(mixed[2], browser.TabChange{Pinned: browser.Bool(true)})))

	tab, _ := r.Cache().Tab(2)
	none := browser.NoGroup
	assert.Equal(t, Rebuilt, r.Handle(updated(tab, browser.TabChange{Group: &none})))
}

func TestRemoveAndEmptyState(t *testing.T) {
	r, s := fixture(t, []browser.Tab{{ID: 1, Title: "a"}, {ID: 2, Index: 1, Title: "b"}}, nil)

	assert.Equal(t, Removed, r.Handle(browser.TabRemoved{TabID: 1, WindowID: 1}))
	assert.Equal(t, Ignored, r.Handle(browser.TabRemoved{TabID: 1, WindowID: 1}))

	assert.Equal(t, Rebuilt, r.Handle(browser.TabRemoved{TabID: 2, WindowID: 1}))
	assert.Equal(t, EmptyNoTabs, s.lastView(t).Empty)
}

func TestNoMatchesAndHiddenPinnedSection(t *testing.T) {
	r, s := fixture(t, mixed, nil)

	r.SetQuery("zzz")
	v := s.lastView(t)
	assert.Equal(t, EmptyNoMatches, v.Empty)
	assert.False(t, v.HasPinned())

	r.SetQuery("spec")
	v = s.lastView(t)
	assert.Empty(t, v.Empty)
	assert.False(t, v.HasPinned(), "no pinned tab matches")

	r.SetQuery("")
	assert.True(t, s.lastView(t).HasPinned())
}

func TestMoveNeedsResync(t *testing.T) {
	r, s := fixture(t, mixed, nil)

	assert.Equal(t, NeedsResync, r.Handle(browser.TabMoved{TabID: 3, WindowID: 1, FromIndex: 2, ToIndex: 0}))
	assert.Equal(t, NeedsResync, r.Handle(browser.TabAttached{TabID: 8, NewWindowID: 1}))
	assert.Equal(t, NeedsResync, r.Handle(browser.TabDetached{TabID: 3, OldWindowID: 1}))
	assert.Equal(t, Ignored, r.Handle(browser.TabMoved{TabID: 3, WindowID: 2}))
	assert.Equal(t, NeedsResync, r.Handle(browser.WindowReset{WindowID: 1}))
	assert.Equal(t, Ignored, r.Handle(browser.WindowReset{WindowID: 2}))

	fresh := []browser.Tab{
		{ID: 3, WindowID: 1, Index: 0, Title: "Loose"},
		{ID: 1, WindowID: 1, Index: 1, Title: "Mail"},
	}
	assert.Equal(t, Rebuilt, r.ApplyResync(fresh))
	assert.Equal(t, []browser.TabID{3, 1}, rowIDs(s.lastView(t).Ungrouped))
}

func TestGroupRemovalDropsCollapsedState(t *testing.T) {
	group := browser.Group{ID: 7, WindowID: 1, Title: "Work"}
	r, _ := fixture(t, mixed, []browser.Group{group})

	require.True(t, r.ToggleCollapsed(7))
	assert.Equal(t, Rebuilt, r.Handle(browser.GroupRemoved{Group: group}))

	assert.False(t, r.Collapsed(7))
	_, ok := r.Cache().Group(7)
	assert.False(t, ok)
}

func TestGroupEventsRebuild(t *testing.T) {
	r, s := fixture(t, mixed, nil)

	assert.Equal(t, Rebuilt, r.Handle(browser.GroupCreated{Group: browser.Group{ID: 9, WindowID: 1, Title: "Later"}}))
	assert.False(t, s.lastView(t).Sections[1].Placeholder)

	assert.Equal(t, Rebuilt, r.Handle(browser.GroupUpdated{Group: browser.Group{ID: 9, WindowID: 1, Title: "Renamed"}}))
	assert.Equal(t, "Renamed", s.lastView(t).Sections[1].Group.Title)

	assert.Equal(t, Ignored, r.Handle(browser.GroupUpdated{Group: browser.Group{ID: 9, WindowID: 4}}))
}

func TestGroupsUnavailableRendersFlatList(t *testing.T) {
	c := tabcache.New(1)
	c.Replace([]browser.Tab{
		{ID: 1, WindowID: 1, Index: 0, Group: browser.InGroup(3)},
		{ID: 2, WindowID: 1, Index: 1},
	})
	s := &recordingSurface{}
	r := New(c, s, icons.NewResolver("", time.Minute), false, logx.Discard())
	r.Rebuild()

	v := s.lastView(t)
	assert.Empty(t, v.Sections)
	assert.False(t, v.UngroupedLabel)
	assert.Equal(t, []browser.TabID{1, 2}, rowIDs(v.Ungrouped))
}

func TestCollapseIsLocalAndSkipsFocus(t *testing.T) {
	r, s := fixture(t, mixed, []browser.Group{{ID: 7, Title: "Work"}})
	rebuilds := len(s.rebuilds)

	r.MoveFocus(1)
	r.MoveFocus(1)
	r.MoveFocus(1)
	focused, _ := r.Focused()
	require.Equal(t, browser.TabID(5), focused)

	assert.True(t, r.ToggleCollapsed(7))
	assert.True(t, s.collapsed[7])
	assert.Equal(t, []browser.TabID{5, 3}, r.Visible())
	focused, ok := r.Focused()
	require.True(t, ok, "focus follows the focused tab")
	assert.Equal(t, browser.TabID(5), focused)
	assert.Len(t, s.rebuilds, rebuilds, "collapse never rebuilds")

	assert.False(t, r.ToggleCollapsed(7))
	assert.Equal(t, []browser.TabID{2, 4, 5, 3}, r.Visible())
}

func TestFocusIsClamped(t *testing.T) {
	r, _ := fixture(t, mixed, nil)

	id, ok := r.MoveFocus(-1)
	require.True(t, ok)
	assert.Equal(t, browser.TabID(2), id)

	for i := 0; i < 10; i++ {
		r.MoveFocus(1)
	}
	id, _ = r.Focused()
	assert.Equal(t, browser.TabID(3), id, "no wraparound")
	assert.Equal(t, 3, r.FocusIndex())

	r.ClearFocus()
	_, ok = r.Focused()
	assert.False(t, ok)
}

func TestRemovalShiftsFocus(t *testing.T) {
	r, _ := fixture(t, mixed, nil)
	r.MoveFocus(1)
	r.MoveFocus(1)
	focused, _ := r.Focused()
	require.Equal(t, browser.TabID(4), focused)

	r.Handle(browser.TabRemoved{TabID: 2, WindowID: 1})
	focused, _ = r.Focused()
	assert.Equal(t, browser.TabID(4), focused)

	r.Handle(browser.TabRemoved{TabID: 4, WindowID: 1})
	_, ok := r.Focused()
	assert.False(t, ok)
}

func TestActivationPatchesBothTabs(t *testing.T) {
	tabs := []browser.Tab{{ID: 1, Title: "a", Active: true}, {ID: 2, Index: 1, Title: "b"}}
	r, s := fixture(t, tabs, nil)

	assert.Equal(t, Patched, r.Handle(browser.TabActivated{TabID: 2, WindowID: 1}))
	require.Len(t, s.patches, 2)
	assert.Equal(t, browser.TabID(1), s.patches[0].tab.ID)
	assert.False(t, s.patches[0].patch.Active)
	assert.Equal(t, browser.TabID(2), s.patches[1].tab.ID)
	assert.True(t, s.patches[1].patch.Active)
}

func TestUpdateToActiveRepaintsPreviousActive(t *testing.T) {
	tabs := []browser.Tab{{ID: 1, Title: "a", Active: true}, {ID: 2, Index: 1, Title: "b"}}
	r, s := fixture(t, tabs, nil)

	assert.Equal(t, Patched, r.Handle(updated(tabs[1], browser.TabChange{Active: browser.Bool(true)})))

	prev, ok := r.Cache().Tab(1)
	require.True(t, ok)
	assert.False(t, prev.Active)

	require.Len(t, s.patches, 2)
	assert.Equal(t, browser.TabID(2), s.patches[0].tab.ID)
	assert.True(t, s.patches[0].patch.Active)
	assert.Equal(t, browser.TabID(1), s.patches[1].tab.ID)
	assert.False(t, s.patches[1].patch.Active)
}

func TestIconFailurePatchesToPlaceholder(t *testing.T) {
	tabs := []browser.Tab{{ID: 1, Title: "a", URL: "https://a.test", FavIconURL: "https://a.test/i.png"}}
	r, s := fixture(t, tabs, nil)

	assert.Equal(t, Patched, r.Handle(browser.IconFailed{Src: "https://a.test/i.png"}))
	call := s.lastPatch(t)
	assert.True(t, call.patch.IconChanged)
	assert.Equal(t, icons.Placeholder, call.patch.Icon)

	assert.Equal(t, Ignored, r.Handle(browser.IconFailed{Src: icons.Placeholder}))
}

func TestDragSession(t *testing.T) {
	r, _ := fixture(t, mixed, nil)

	assert.False(t, r.BeginDrag(99))
	require.True(t, r.BeginDrag(3))
	r.DragOver(DropTarget{Kind: DropOnTab, TabID: 3})
	assert.Equal(t, DropNone, r.Drag().Target.Kind, "hovering itself is not a target")

	r.DragOver(DropTarget{Kind: DropOnGroup, GroupID: 7})
	s := r.EndDrag()
	assert.True(t, s.Active)
	assert.Equal(t, browser.TabID(3), s.TabID)
	assert.Equal(t, DropOnGroup, s.Target.Kind)
	assert.False(t, r.Drag().Active, "cleared unconditionally")
}
