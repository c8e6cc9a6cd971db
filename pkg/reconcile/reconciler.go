// Package reconcile decides, for each change to the tab cache, whether the rendered
// panel can be patched in place or has to be rebuilt, and owns the view-local state
// layered on the cache: search query, collapsed groups, keyboard focus and drag session.
package reconcile

import (
	"slices"

	"pkt.systems/pslog"

	"github.com/b/vertical-tabs/pkg/browser"
	"github.com/b/vertical-tabs/pkg/perf"
	"github.com/b/vertical-tabs/pkg/search"
	"github.com/b/vertical-tabs/pkg/tabcache"
)

// Patch is an in-place update of one rendered tab.
type Patch struct {
	Active  bool
	Loading bool
	Audible bool
	Muted   bool
	// Icon is set only when the resolved source differs from what is rendered.
	Icon        string
	IconChanged bool
	// Title is set only when the display title changed.
	Title        string
	TitleChanged bool
}

// Surface draws the panel. Calls arrive on the reconciler's goroutine.
type Surface interface {
	Rebuild(View)
	PatchTab(browser.Tab, Patch)
	RemoveTab(browser.TabID)
	SetCollapsed(browser.GroupID, bool)
}

// Action is what the reconciler did with an event.
type Action int

const (
	Ignored Action = iota
	Patched
	Removed
	Rebuilt
	// NeedsResync means the window's tabs must be re-queried and passed to ApplyResync.
	NeedsResync
)

func (a Action) String() string {
	switch a {
	case Patched:
		return "patched"
	case Removed:
		return "removed"
	case Rebuilt:
		return "rebuilt"
	case NeedsResync:
		return "needs_resync"
	default:
		return "ignored"
	}
}

type renderedTab struct {
	pinned bool
	group  browser.GroupRef
	icon   string
	title  string
}

// Reconciler keeps a surface in step with a cache. It is not safe for concurrent use.
type Reconciler struct {
	cache   *tabcache.Cache
	surface Surface
	icons   IconResolver
	log     pslog.Logger

	groupsAvailable bool
	query           string
	rendered        map[browser.TabID]renderedTab
	collapsed       map[browser.GroupID]bool
	visible         []browser.TabID
	focus           int
	drag            DragSession
	last            View
}

// New returns a reconciler. Nothing is drawn until Rebuild.
func New(cache *tabcache.Cache, surface Surface, icons IconResolver, groupsAvailable bool, log pslog.Logger) *Reconciler {
	return &Reconciler{
		cache:           cache,
		surface:         surface,
		icons:           icons,
		log:             log,
		groupsAvailable: groupsAvailable,
		rendered:        make(map[browser.TabID]renderedTab),
		collapsed:       make(map[browser.GroupID]bool),
		focus:           -1,
	}
}

// Cache returns the cache the reconciler renders.
func (r *Reconciler) Cache() *tabcache.Cache {
	return r.cache
}

// GroupsAvailable reports whether group sections are drawn.
func (r *Reconciler) GroupsAvailable() bool {
	return r.groupsAvailable
}

// Handle applies ev to the cache and updates the surface.
func (r *Reconciler) Handle(ev browser.Event) Action {
	switch e := ev.(type) {
	case browser.TabCreated:
		if !r.cache.OnCreated(e.Tab) {
			return Ignored
		}
		return r.Rebuild()

	case browser.TabRemoved:
		if !r.cache.OnRemoved(e.TabID, e.WindowID) {
			return Ignored
		}
		return r.dropRendered(e.TabID)

	case browser.TabUpdated:
		res := r.cache.OnUpdated(e.TabID, e.Change, e.Tab)
		if !res.Applied {
			return Ignored
		}
		action := r.refresh(res.After)
		if a := r.refreshIDs(res.Deactivated...); a > action {
			action = a
		}
		return action

	case browser.TabActivated:
		prev, ok := r.cache.OnActivated(e.TabID, e.WindowID)
		if !ok {
			return Ignored
		}
		return r.refreshIDs(prev, e.TabID)

	case browser.TabMoved:
		if r.cache.OnMoved(e.TabID, e.WindowID) {
			return NeedsResync
		}
	case browser.TabDetached:
		if r.cache.OnDetached(e.TabID, e.OldWindowID) {
			return NeedsResync
		}
	case browser.TabAttached:
		if r.cache.OnAttached(e.TabID, e.NewWindowID) {
			return NeedsResync
		}
	case browser.WindowReset:
		if e.WindowID == r.cache.WindowID() {
			return NeedsResync
		}

	case browser.GroupCreated:
		return r.groupChanged(r.cache.OnGroupCreated(e.Group))
	case browser.GroupUpdated:
		return r.groupChanged(r.cache.OnGroupUpdated(e.Group))
	case browser.GroupMoved:
		if e.Group.WindowID != r.cache.WindowID() {
			delete(r.collapsed, e.Group.ID)
		}
		return r.groupChanged(r.cache.OnGroupMoved(e.Group))
	case browser.GroupRemoved:
		if e.Group.WindowID == r.cache.WindowID() {
			delete(r.collapsed, e.Group.ID)
		}
		return r.groupChanged(r.cache.OnGroupRemoved(e.Group))

	case browser.IconFailed:
		return r.iconFailed(e.Src)
	}
	return Ignored
}

func (r *Reconciler) groupChanged(applied bool) Action {
	if !applied || !r.groupsAvailable {
		return Ignored
	}
	return r.Rebuild()
}

// refresh brings one cached tab's element up to date: patch when it is rendered and its
// placement is unchanged, rebuild when it needs a new place, remove when it stopped
// matching the search.
// refreshIDs refreshes each cached tab in ids and returns the strongest action taken.
func (r *Reconciler) refreshIDs(ids ...browser.TabID) Action {
	action := Ignored
	for _, id := range ids {
		if t, ok := r.cache.Tab(id); ok {
			if a := r.refresh(t); a > action {
				action = a
			}
		}
	}
	return action
}

func (r *Reconciler) refresh(t browser.Tab) Action {
	shown, isRendered := r.rendered[t.ID]
	matches := search.Matches(t, r.query)

	switch {
	case !isRendered && !matches:
		return Ignored
	case !isRendered:
		return r.Rebuild()
	case !matches:
		return r.dropRendered(t.ID)
	case shown.pinned != t.Pinned:
		return r.Rebuild()
	case r.groupsAvailable && !t.Pinned && shown.group != t.Group:
		return r.Rebuild()
	}

	p := Patch{
		Active:  t.Active,
		Loading: t.Loading(),
		Audible: t.Audible,
		Muted:   t.Muted,
	}
	if icon := r.icons.Resolve(t.FavIconURL, t.URL); icon != shown.icon {
		p.Icon, p.IconChanged = icon, true
		shown.icon = icon
	}
	if title := t.DisplayTitle(); title != shown.title {
		p.Title, p.TitleChanged = title, true
		shown.title = title
	}
	r.rendered[t.ID] = shown
	r.surface.PatchTab(t, p)
	return Patched
}

// dropRendered removes a tab's element. An emptied cache or an emptied list rebuilds so
// the empty-state text shows.
func (r *Reconciler) dropRendered(id browser.TabID) Action {
	if r.cache.Len() == 0 {
		return r.Rebuild()
	}
	if _, ok := r.rendered[id]; !ok {
		return Ignored
	}
	delete(r.rendered, id)
	if len(r.rendered) == 0 {
		return r.Rebuild()
	}
	if i := slices.Index(r.visible, id); i >= 0 {
		r.visible = slices.Delete(r.visible, i, i+1)
		switch {
		case r.focus == i:
			r.focus = -1
		case r.focus > i:
			r.focus--
		}
	}
	if r.drag.Active && r.drag.Target.Kind == DropOnTab && r.drag.Target.TabID == id {
		r.drag.Target = DropTarget{}
	}
	r.surface.RemoveTab(id)
	return Removed
}

func (r *Reconciler) iconFailed(src string) Action {
	if !r.icons.MarkFailed(src) {
		return Ignored
	}
	action := Ignored
	for id, shown := range r.rendered {
		if shown.icon != src {
			continue
		}
		if t, ok := r.cache.Tab(id); ok {
			if a := r.refresh(t); a > action {
				action = a
			}
		}
	}
	return action
}

// Rebuild redraws everything from the cache. Keyboard focus is reset.
func (r *Reconciler) Rebuild() Action {
	timer := perf.Start("rebuild")
	v := buildView(r.cache, r.query, r.collapsed, r.groupsAvailable, r.icons)

	r.rendered = make(map[browser.TabID]renderedTab, v.Len())
	record := func(rows []Row) {
		for _, row := range rows {
			r.rendered[row.Tab.ID] = renderedTab{
				pinned: row.Tab.Pinned,
				group:  row.Tab.Group,
				icon:   row.Icon,
				title:  row.Tab.DisplayTitle(),
			}
		}
	}
	record(v.Pinned)
	for _, s := range v.Sections {
		record(s.Rows)
	}
	record(v.Ungrouped)

	r.visible = slices.Clone(v.Focusable)
	r.focus = -1
	r.last = v
	r.surface.Rebuild(v)
	timer.Stop("tabs", v.Len())
	return Rebuilt
}

// ApplyResync replaces the cache with a fresh query of the window and rebuilds.
func (r *Reconciler) ApplyResync(tabs []browser.Tab) Action {
	r.cache.Replace(tabs)
	return r.Rebuild()
}

// ApplyGroups replaces the cached groups and rebuilds.
func (r *Reconciler) ApplyGroups(groups []browser.Group) Action {
	r.cache.ReplaceGroups(groups)
	return r.Rebuild()
}

// View returns the view from the last rebuild.
func (r *Reconciler) View() View {
	return r.last
}

// Rendered reports whether a tab currently has an element.
func (r *Reconciler) Rendered(id browser.TabID) bool {
	_, ok := r.rendered[id]
	return ok
}

// Query returns the applied search query.
func (r *Reconciler) Query() string {
	return r.query
}

// SetQuery applies a settled search query and rebuilds.
func (r *Reconciler) SetQuery(query string) Action {
	r.query = search.Normalize(query)
	return r.Rebuild()
}

// Collapsed reports whether a group is collapsed.
func (r *Reconciler) Collapsed(id browser.GroupID) bool {
	return r.collapsed[id]
}

// ToggleCollapsed flips a group between collapsed and expanded. It only changes view
// state: the cache and the directory are not touched.
func (r *Reconciler) ToggleCollapsed(id browser.GroupID) bool {
	now := !r.collapsed[id]
	if now {
		r.collapsed[id] = true
	} else {
		delete(r.collapsed, id)
	}

	focused, hadFocus := r.Focused()
	r.visible = r.visible[:0:0]
	for i, s := range r.last.Sections {
		if s.Group.ID == id {
			r.last.Sections[i].Collapsed = now
		}
		if r.last.Sections[i].Collapsed {
			continue
		}
		for _, row := range s.Rows {
			r.visible = append(r.visible, row.Tab.ID)
		}
	}
	for _, row := range r.last.Ungrouped {
		r.visible = append(r.visible, row.Tab.ID)
	}
	r.last.Focusable = slices.Clone(r.visible)
	r.focus = -1
	if hadFocus {
		r.focus = slices.Index(r.visible, focused)
	}

	r.surface.SetCollapsed(id, now)
	return now
}
