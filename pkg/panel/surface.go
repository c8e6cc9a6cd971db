package panel

import (
	"slices"

	"github.com/b/vertical-tabs/pkg/browser"
	"github.com/b/vertical-tabs/pkg/reconcile"
)

// Surface holds what the panel draws. The reconciler rebuilds or patches it, and the
// model renders it every frame. It belongs to the bubbletea event loop.
type Surface struct {
	view     reconcile.View
	rebuilds int
	patches  int
}

// NewSurface returns an empty surface.
func NewSurface() *Surface {
	return &Surface{}
}

// Rebuild replaces everything drawn. The view is copied so later patches do not reach
// back into the reconciler's state.
func (s *Surface) Rebuild(v reconcile.View) {
	v.Pinned = slices.Clone(v.Pinned)
	v.Ungrouped = slices.Clone(v.Ungrouped)
	v.Focusable = slices.Clone(v.Focusable)
	sections := make([]reconcile.Section, len(v.Sections))
	for i, sec := range v.Sections {
		sec.Rows = slices.Clone(sec.Rows)
		sections[i] = sec
	}
	v.Sections = sections
	s.view = v
	s.rebuilds++
}

// PatchTab updates one drawn row with the tab's current state.
func (s *Surface) PatchTab(t browser.Tab, p reconcile.Patch) {
	row := s.row(t.ID)
	if row == nil {
		return
	}
	row.Tab = t
	if p.IconChanged {
		row.Icon = p.Icon
	}
	s.patches++
}

// RemoveTab drops one drawn row. A group section left without rows goes with it.
func (s *Surface) RemoveTab(id browser.TabID) {
	drop := func(rows []reconcile.Row) []reconcile.Row {
		return slices.DeleteFunc(rows, func(r reconcile.Row) bool { return r.Tab.ID == id })
	}
	s.view.Pinned = drop(s.view.Pinned)
	s.view.Ungrouped = drop(s.view.Ungrouped)
	for i := range s.view.Sections {
		s.view.Sections[i].Rows = drop(s.view.Sections[i].Rows)
	}
	s.view.Sections = slices.DeleteFunc(s.view.Sections, func(sec reconcile.Section) bool {
		return len(sec.Rows) == 0
	})
	s.view.Focusable = slices.DeleteFunc(s.view.Focusable, func(t browser.TabID) bool { return t == id })
	if len(s.view.Sections) == 0 || len(s.view.Ungrouped) == 0 {
		s.view.UngroupedLabel = false
	}
}

// SetCollapsed shows or hides a group's rows.
func (s *Surface) SetCollapsed(id browser.GroupID, collapsed bool) {
	for i := range s.view.Sections {
		if s.view.Sections[i].Group.ID == id {
			s.view.Sections[i].Collapsed = collapsed
		}
	}
}

// View returns what is currently drawn.
func (s *Surface) View() reconcile.View {
	return s.view
}

// Rebuilds counts full redraws.
func (s *Surface) Rebuilds() int {
	return s.rebuilds
}

func (s *Surface) row(id browser.TabID) *reconcile.Row {
	find := func(rows []reconcile.Row) *reconcile.Row {
		for i := range rows {
			if rows[i].Tab.ID == id {
				return &rows[i]
			}
		}
		return nil
	}
	if r := find(s.view.Pinned); r != nil {
		return r
	}
	for i := range s.view.Sections {
		if r := find(s.view.Sections[i].Rows); r != nil {
			return r
		}
	}
	return find(s.view.Ungrouped)
}

var _ reconcile.Surface = (*Surface)(nil)
