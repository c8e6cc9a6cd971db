package browser

import (
	"context"
	"errors"
)

var (
	ErrUnsupported = errors.New("operation not supported by directory")
	ErrTabNotFound = errors.New("tab not found")
)

// CreateOptions describes a tab to open.
type CreateOptions struct {
	WindowID WindowID
	URL      string
	Active   bool
}

// UpdateProperties are the tab properties the panel may change. Nil fields are left alone.
type UpdateProperties struct {
	Active *bool
	Pinned *bool
	Muted  *bool
}

// TabDirectory is the host facility that owns tab state. Commands may complete in any
// order relative to the events they cause.
type TabDirectory interface {
	CurrentWindow(ctx context.Context) (WindowID, error)
	Query(ctx context.Context, windowID WindowID) ([]Tab, error)
	Get(ctx context.Context, id TabID) (Tab, error)
	Create(ctx context.Context, opts CreateOptions) (Tab, error)
	Update(ctx context.Context, id TabID, props UpdateProperties) error
	Remove(ctx context.Context, ids ...TabID) error
	Move(ctx context.Context, id TabID, index int) error
	Duplicate(ctx context.Context, id TabID) error
	MoveToNewWindow(ctx context.Context, id TabID) error
	// Group adds tabs to a group. A zero group id asks for a new group.
	Group(ctx context.Context, ids []TabID, group GroupID) error
	Events() <-chan Event
}

// GroupDirectory is the optional group facility.
type GroupDirectory interface {
	QueryGroups(ctx context.Context, windowID WindowID) ([]Group, error)
}

type groupsAvailability interface {
	GroupsAvailable() bool
}

// GroupsOf probes a directory for group support. It is called once at startup; a false
// result disables groups for the session.
func GroupsOf(dir TabDirectory) (GroupDirectory, bool) {
	groups, ok := dir.(GroupDirectory)
	if !ok {
		return nil, false
	}
	if avail, ok := dir.(groupsAvailability); ok && !avail.GroupsAvailable() {
		return nil, false
	}
	return groups, true
}
