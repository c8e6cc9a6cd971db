package bridge

import (
	"context"

	"github.com/b/vertical-tabs/pkg/browser"
)

// CurrentWindow waits for an extension and returns the window it is attached to.
func (s *Server) CurrentWindow(ctx context.Context) (browser.WindowID, error) {
	hello, err := s.Hello(ctx)
	if err != nil {
		return 0, err
	}
	return hello.WindowID, nil
}

// GroupsAvailable reports whether the extension announced the group API.
func (s *Server) GroupsAvailable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isReady && s.hello.Groups
}

// ExtensionID returns the id the extension announced, used for its favicon service.
func (s *Server) ExtensionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hello.ExtensionID
}

func (s *Server) Query(ctx context.Context, windowID browser.WindowID) ([]browser.Tab, error) {
	var tabs []browser.Tab
	if err := s.call(ctx, MethodTabsQuery, windowParams{WindowID: windowID}, &tabs); err != nil {
		return nil, err
	}
	return tabs, nil
}

func (s *Server) Get(ctx context.Context, id browser.TabID) (browser.Tab, error) {
	var tab browser.Tab
	if err := s.call(ctx, MethodTabsGet, tabParams{TabID: id}, &tab); err != nil {
		return browser.Tab{}, err
	}
	return tab, nil
}

func (s *Server) Create(ctx context.Context, opts browser.CreateOptions) (browser.Tab, error) {
	var tab browser.Tab
	params := createParams{WindowID: opts.WindowID, URL: opts.URL, Active: opts.Active}
	if err := s.call(ctx, MethodTabsCreate, params, &tab); err != nil {
		return browser.Tab{}, err
	}
	return tab, nil
}

func (s *Server) Update(ctx context.Context, id browser.TabID, props browser.UpdateProperties) error {
	return s.call(ctx, MethodTabsUpdate, updateParams{
		TabID:  id,
		Active: props.Active,
		Pinned: props.Pinned,
		Muted:  props.Muted,
	}, nil)
}

func (s *Server) Remove(ctx context.Context, ids ...browser.TabID) error {
	if len(ids) == 0 {
		return nil
	}
	return s.call(ctx, MethodTabsRemove, tabsParams{TabIDs: ids}, nil)
}

func (s *Server) Move(ctx context.Context, id browser.TabID, index int) error {
	return s.call(ctx, MethodTabsMove, moveParams{TabID: id, Index: index}, nil)
}

func (s *Server) Duplicate(ctx context.Context, id browser.TabID) error {
	return s.call(ctx, MethodTabsDuplicate, tabParams{TabID: id}, nil)
}

func (s *Server) MoveToNewWindow(ctx context.Context, id browser.TabID) error {
	return s.call(ctx, MethodWindowsCreate, tabParams{TabID: id}, nil)
}

func (s *Server) Group(ctx context.Context, ids []browser.TabID, group browser.GroupID) error {
	if !s.GroupsAvailable() {
		return browser.ErrUnsupported
	}
	return s.call(ctx, MethodTabsGroup, groupParams{TabIDs: ids, GroupID: group}, nil)
}

func (s *Server) QueryGroups(ctx context.Context, windowID browser.WindowID) ([]browser.Group, error) {
	if !s.GroupsAvailable() {
		return nil, browser.ErrUnsupported
	}
	var groups []browser.Group
	if err := s.call(ctx, MethodTabGroupsQuery, windowParams{WindowID: windowID}, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// Events streams extension events until the server is closed.
func (s *Server) Events() <-chan browser.Event {
	return s.events
}

var (
	_ browser.TabDirectory   = (*Server)(nil)
	_ browser.GroupDirectory = (*Server)(nil)
)
