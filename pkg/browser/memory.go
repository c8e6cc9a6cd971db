package browser

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Request records one command received by a Memory directory.
type Request struct {
	Op     string
	TabIDs []TabID
	Index  int
	Group  GroupID
	Props  UpdateProperties
}

// Memory is an in-process directory that behaves like the browser: every command
// mutates its state and emits the events the browser would. It backs the demo source
// and tests.
type Memory struct {
	mu       sync.Mutex
	current  WindowID
	tabs     map[TabID]*Tab
	groups   map[GroupID]*Group
	nextTab  TabID
	nextWin  WindowID
	nextGrp  GroupID
	noGroups bool
	failures map[string]error
	requests []Request

	pending []Event
	notify  chan struct{}
	events  chan Event
	done    chan struct{}
	once    sync.Once
}

// NewMemory returns an empty directory whose current window is windowID.
func NewMemory(windowID WindowID) *Memory {
	m := &Memory{
		current:  windowID,
		tabs:     make(map[TabID]*Tab),
		groups:   make(map[GroupID]*Group),
		nextTab:  1,
		nextWin:  windowID + 1,
		nextGrp:  1,
		failures: make(map[string]error),
		notify:   make(chan struct{}, 1),
		events:   make(chan Event),
		done:     make(chan struct{}),
	}
	go m.pump()
	return m
}

// Close stops event delivery.
func (m *Memory) Close() {
	m.once.Do(func() { close(m.done) })
}

func (m *Memory) pump() {
	defer close(m.events)
	for {
		m.mu.Lock()
		batch := m.pending
		m.pending = nil
		m.mu.Unlock()

		for _, ev := range batch {
			select {
			case m.events <- ev:
			case <-m.done:
				return
			}
		}

		select {
		case <-m.notify:
		case <-m.done:
			return
		}
	}
}

// emit queues an event. Callers hold m.mu.
func (m *Memory) emit(ev Event) {
	m.pending = append(m.pending, ev)
	select {
	case m.notify <- struct{}{}:
	default:
	}
}

// Emit injects an arbitrary event, as if the browser had sent it.
func (m *Memory) Emit(ev Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.emit(ev)
}

// SetGroupsAvailable toggles the group facility. It must be set before the panel starts.
func (m *Memory) SetGroupsAvailable(ok bool) {
	m.mu.Lock()
	m.noGroups = !ok
	m.mu.Unlock()
}

// GroupsAvailable reports whether the group facility is on.
func (m *Memory) GroupsAvailable() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.noGroups
}

// FailOn makes every later call of op ("update", "remove", "move", "group", ...) return err.
// A nil err clears the failure.
func (m *Memory) FailOn(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failures, op)
		return
	}
	m.failures[op] = err
}

// Requests returns the commands received so far.
func (m *Memory) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Seed installs tabs and groups without emitting events. Tab ids and indices are kept
// as given; later created tabs get ids above the highest seeded id.
func (m *Memory) Seed(tabs []Tab, groups []Group) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range tabs {
		t := tabs[i]
		if t.WindowID == 0 {
			t.WindowID = m.current
		}
		if t.Status == "" {
			t.Status = StatusComplete
		}
		m.tabs[t.ID] = &t
		if t.ID >= m.nextTab {
			m.nextTab = t.ID + 1
		}
	}
	for i := range groups {
		g := groups[i]
		if g.WindowID == 0 {
			g.WindowID = m.current
		}
		m.groups[g.ID] = &g
		if g.ID >= m.nextGrp {
			m.nextGrp = g.ID + 1
		}
	}
}

func (m *Memory) record(req Request) error {
	m.requests = append(m.requests, req)
	if err, ok := m.failures[req.Op]; ok {
		return err
	}
	return nil
}

// window returns the tabs of a window ordered by index. Callers hold m.mu.
func (m *Memory) window(id WindowID) []*Tab {
	var out []*Tab
	for _, t := range m.tabs {
		if t.WindowID == id {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Index != out[j].Index {
			return out[i].Index < out[j].Index
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// reindex assigns dense indices in the given order. Callers hold m.mu.
func reindex(ordered []*Tab) {
	for i, t := range ordered {
		t.Index = i
	}
}

func (m *Memory) CurrentWindow(ctx context.Context) (WindowID, error) {
	return m.current, nil
}

func (m *Memory) Query(ctx context.Context, windowID WindowID) ([]Tab, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failures["query"]; err != nil {
		return nil, err
	}
	win := m.window(windowID)
	out := make([]Tab, 0, len(win))
	for _, t := range win {
		out = append(out, *t)
	}
	return out, nil
}

func (m *Memory) Get(ctx context.Context, id TabID) (Tab, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tabs[id]
	if !ok {
		return Tab{}, fmt.Errorf("get tab %d: %w", id, ErrTabNotFound)
	}
	return *t, nil
}

func (m *Memory) QueryGroups(ctx context.Context, windowID WindowID) ([]Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.noGroups {
		return nil, ErrUnsupported
	}
	var out []Group
	for _, g := range m.groups {
		if g.WindowID == windowID {
			out = append(out, *g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) Create(ctx context.Context, opts CreateOptions) (Tab, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(Request{Op: "create"}); err != nil {
		return Tab{}, err
	}
	windowID := opts.WindowID
	if windowID == 0 {
		windowID = m.current
	}
	t := &Tab{
		ID:       m.nextTab,
		WindowID: windowID,
		Index:    len(m.window(windowID)),
		URL:      opts.URL,
		Status:   StatusLoading,
	}
	m.nextTab++
	m.tabs[t.ID] = t
	m.emit(TabCreated{Tab: *t})
	if opts.Active {
		m.activate(t)
	}
	return *t, nil
}

// activate makes t the only active tab in its window. Callers hold m.mu.
func (m *Memory) activate(t *Tab) {
	for _, other := range m.window(t.WindowID) {
		other.Active = false
	}
	t.Active = true
	m.emit(TabActivated{TabID: t.ID, WindowID: t.WindowID})
}

func (m *Memory) Update(ctx context.Context, id TabID, props UpdateProperties) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(Request{Op: "update", TabIDs: []TabID{id}, Props: props}); err != nil {
		return err
	}
	t, ok := m.tabs[id]
	if !ok {
		return fmt.Errorf("update tab %d: %w", id, ErrTabNotFound)
	}
	if props.Active != nil && *props.Active && !t.Active {
		m.activate(t)
	}
	if props.Muted != nil && *props.Muted != t.Muted {
		t.Muted = *props.Muted
		m.emit(TabUpdated{TabID: id, Change: TabChange{Muted: Bool(t.Muted)}, Tab: *t})
	}
	if props.Pinned != nil && *props.Pinned != t.Pinned {
		m.setPinned(t, *props.Pinned)
	}
	return nil
}

// setPinned flips the pinned flag and moves the tab to the edge of the pinned block, as
// the browser does. Callers hold m.mu.
func (m *Memory) setPinned(t *Tab, pinned bool) {
	win := m.window(t.WindowID)
	from := t.Index
	rest := make([]*Tab, 0, len(win))
	for _, o := range win {
		if o != t {
			rest = append(rest, o)
		}
	}
	t.Pinned = pinned
	if pinned {
		t.Group = NoGroup
	}
	boundary := 0
	for _, o := range rest {
		if o.Pinned {
			boundary++
		}
	}
	ordered := make([]*Tab, 0, len(win))
	ordered = append(ordered, rest[:boundary]...)
	ordered = append(ordered, t)
	ordered = append(ordered, rest[boundary:]...)
	reindex(ordered)

	change := TabChange{Pinned: Bool(pinned)}
	if pinned {
		none := NoGroup
		change.Group = &none
	}
	m.emit(TabUpdated{TabID: t.ID, Change: change, Tab: *t})
	if t.Index != from {
		m.emit(TabMoved{TabID: t.ID, WindowID: t.WindowID, FromIndex: from, ToIndex: t.Index})
	}
	m.dropEmptyGroups()
}

func (m *Memory) Remove(ctx context.Context, ids ...TabID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(Request{Op: "remove", TabIDs: append([]TabID(nil), ids...)}); err != nil {
		return err
	}
	for _, id := range ids {
		t, ok := m.tabs[id]
		if !ok {
			continue
		}
		delete(m.tabs, id)
		win := m.window(t.WindowID)
		reindex(win)
		m.emit(TabRemoved{TabID: id, WindowID: t.WindowID})
		if t.Active && len(win) > 0 {
			next := t.Index
			if next >= len(win) {
				next = len(win) - 1
			}
			m.activate(win[next])
		}
	}
	m.dropEmptyGroups()
	return nil
}

func (m *Memory) Move(ctx context.Context, id TabID, index int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(Request{Op: "move", TabIDs: []TabID{id}, Index: index}); err != nil {
		return err
	}
	t, ok := m.tabs[id]
	if !ok {
		return fmt.Errorf("move tab %d: %w", id, ErrTabNotFound)
	}
	win := m.window(t.WindowID)
	from := t.Index
	rest := make([]*Tab, 0, len(win))
	for _, o := range win {
		if o != t {
			rest = append(rest, o)
		}
	}
	if index < 0 || index > len(rest) {
		index = len(rest)
	}
	ordered := make([]*Tab, 0, len(win))
	ordered = append(ordered, rest[:index]...)
	ordered = append(ordered, t)
	ordered = append(ordered, rest[index:]...)
	reindex(ordered)
	if t.Index != from {
		m.emit(TabMoved{TabID: id, WindowID: t.WindowID, FromIndex: from, ToIndex: t.Index})
	}
	return nil
}

func (m *Memory) Duplicate(ctx context.Context, id TabID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(Request{Op: "duplicate", TabIDs: []TabID{id}}); err != nil {
		return err
	}
	src, ok := m.tabs[id]
	if !ok {
		return fmt.Errorf("duplicate tab %d: %w", id, ErrTabNotFound)
	}
	dup := *src
	dup.ID = m.nextTab
	dup.Active = false
	dup.Status = StatusLoading
	m.nextTab++

	win := m.window(src.WindowID)
	ordered := make([]*Tab, 0, len(win)+1)
	for _, o := range win {
		ordered = append(ordered, o)
		if o == src {
			ordered = append(ordered, &dup)
		}
	}
	reindex(ordered)
	m.tabs[dup.ID] = &dup
	m.emit(TabCreated{Tab: dup})
	m.activate(&dup)
	return nil
}

func (m *Memory) MoveToNewWindow(ctx context.Context, id TabID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(Request{Op: "move_to_new_window", TabIDs: []TabID{id}}); err != nil {
		return err
	}
	t, ok := m.tabs[id]
	if !ok {
		return fmt.Errorf("move tab %d: %w", id, ErrTabNotFound)
	}
	old := t.WindowID
	t.WindowID = m.nextWin
	m.nextWin++
	t.Index = 0
	t.Group = NoGroup
	reindex(m.window(old))
	m.emit(TabDetached{TabID: id, OldWindowID: old})
	m.emit(TabAttached{TabID: id, NewWindowID: t.WindowID})
	m.dropEmptyGroups()
	return nil
}

func (m *Memory) Group(ctx context.Context, ids []TabID, group GroupID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(Request{Op: "group", TabIDs: append([]TabID(nil), ids...), Group: group}); err != nil {
		return err
	}
	if m.noGroups {
		return ErrUnsupported
	}
	if len(ids) == 0 {
		return nil
	}
	first, ok := m.tabs[ids[0]]
	if !ok {
		return fmt.Errorf("group tab %d: %w", ids[0], ErrTabNotFound)
	}
	if group == 0 {
		g := &Group{ID: m.nextGrp, WindowID: first.WindowID, Color: ColorGrey}
		m.nextGrp++
		m.groups[g.ID] = g
		m.emit(GroupCreated{Group: *g})
		group = g.ID
	} else if _, ok := m.groups[group]; !ok {
		return fmt.Errorf("group %d: %w", group, ErrTabNotFound)
	}
	ref := InGroup(group)
	for _, id := range ids {
		t, ok := m.tabs[id]
		if !ok || t.Pinned {
			continue
		}
		t.Group = ref
		m.emit(TabUpdated{TabID: id, Change: TabChange{Group: &ref}, Tab: *t})
	}
	m.dropEmptyGroups()
	return nil
}

// UpdateGroup changes a group's title and color and emits the update.
func (m *Memory) UpdateGroup(id GroupID, title string, color Color) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.groups[id]
	if !ok {
		return
	}
	g.Title = title
	g.Color = color
	m.emit(GroupUpdated{Group: *g})
}

// SetTab applies a change to a tab and emits the update, the way a page load or audio
// state change would arrive.
func (m *Memory) SetTab(id TabID, change TabChange) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tabs[id]
	if !ok {
		return
	}
	change.Apply(t)
	m.emit(TabUpdated{TabID: id, Change: change, Tab: *t})
}

// dropEmptyGroups removes groups with no tabs left. Callers hold m.mu.
func (m *Memory) dropEmptyGroups() {
	used := make(map[GroupID]bool)
	for _, t := range m.tabs {
		if id, ok := t.Group.ID(); ok {
			used[id] = true
		}
	}
	ids := make([]GroupID, 0, len(m.groups))
	for id := range m.groups {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		if !used[id] {
			g := m.groups[id]
			delete(m.groups, id)
			m.emit(GroupRemoved{Group: *g})
		}
	}
}

func (m *Memory) Events() <-chan Event {
	return m.events
}
