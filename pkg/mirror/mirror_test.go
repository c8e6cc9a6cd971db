package mirror

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/b/vertical-tabs/pkg/browser"
	"github.com/b/vertical-tabs/pkg/icons"
	"github.com/b/vertical-tabs/pkg/logx"
	"github.com/b/vertical-tabs/pkg/reconcile"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type viewSurface struct {
	mu   sync.Mutex
	last reconcile.View
	n    int
}

func (s *viewSurface) Rebuild(v reconcile.View) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = v
	s.n++
}
func (s *viewSurface) PatchTab(browser.Tab, reconcile.Patch) {}
func (s *viewSurface) RemoveTab(browser.TabID) {}
func (s *viewSurface) SetCollapsed(browser.GroupID, bool) {}

func (s *viewSurface) ungrouped() []browser.TabID {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []browser.TabID
	for _, row := range s.last.Ungrouped {
		ids = append(ids, row.Tab.ID)
	}
	return ids
}

func seeded(t *testing.T) *browser.Memory {
	t.Helper()
	dir := browser.NewMemory(1)
	t.Cleanup(dir.Close)
	dir.Seed([]browser.Tab{
		{ID: 1, Index: 0, Title: "one", Active: true},
		{ID: 2, Index: 1, Title: "two"},
		{ID: 3, Index: 2, Title: "three", Group: browser.InGroup(4)},
	}, []browser.Group{{ID: 4, Title: "Work", Color: browser.ColorGreen}})
	return dir
}

func newMirror(t *testing.T, dir browser.TabDirectory, surface reconcile.Surface) *Mirror {
	t.Helper()
	m, err := New(context.Background(), dir, surface, icons.NewResolver("", time.Minute), logx.Discard())
	require.NoError(t, err)
	return m
}

func TestNewDrawsFirstView(t *testing.T) {
	s := &viewSurface{}
	m := newMirror(t, seeded(t), s)

	assert.Equal(t, browser.WindowID(1), m.Window())
	assert.True(t, m.GroupsAvailable())
	assert.Equal(t, 3, m.Cache().Len())
	assert.Equal(t, 1, s.n)
	require.Len(t, s.last.Sections, 1)
	assert.Equal(t, "Work", s.last.Sections[0].Group.Title)
}

func TestNewWithoutGroups(t *testing.T) {
	dir := seeded(t)
	dir.SetGroupsAvailable(false)
	s := &viewSurface{}
	m := newMirror(t, dir, s)

	assert.False(t, m.GroupsAvailable())
	assert.Empty(t, s.last.Sections)
	assert.Equal(t, []browser.TabID{1, 2, 3}, s.ungrouped())
}

func TestNewFailsWhenWindowCannotBeQueried(t *testing.T) {
	dir := seeded(t)
	dir.FailOn("query", errors.New("offline"))

	_, err := New(context.Background(), dir, &viewSurface{}, icons.NewResolver("", time.Minute), logx.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "offline")
}

func TestRunResyncsAfterMove(t *testing.T) {
	dir := seeded(t)
	s := &viewSurface{}
	m := newMirror(t, dir, s)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx, nil) }()

	require.NoError(t, dir.Move(ctx, 2, 0))
	require.Eventually(t, func() bool {
		ids := s.ungrouped()
		return len(ids) == 2 && ids[0] == 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestRunEndsWhenStreamCloses(t *testing.T) {
	dir := seeded(t)
	m := newMirror(t, dir, &viewSurface{})

	var mu sync.Mutex
	var actions []reconcile.Action
	done := make(chan error, 1)
	go func() {
		done <- m.Run(context.Background(), func(a reconcile.Action) {
			mu.Lock()
			actions = append(actions, a)
			mu.Unlock()
		})
	}()

	dir.SetTab(2, browser.TabChange{Title: browser.String("renamed")})
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(actions) == 1
	}, time.Second, 5*time.Millisecond)

	dir.Close()
	require.NoError(t, <-done)
	assert.Equal(t, reconcile.Patched, actions[0])
}

func TestExecRoutesThroughController(t *testing.T) {
	dir := seeded(t)
	m := newMirror(t, dir, &viewSurface{})

	m.Exec(context.Background(), m.Controller().CloseOthers(2))

	reqs := dir.Requests()
	require.Len(t, reqs, 1)
	assert.ElementsMatch(t, []browser.TabID{1, 3}, reqs[0].TabIDs)
}
