package cdp

import (
	"context"
	"testing"
	"time"

	"github.com/chromedp/cdproto/target"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/b/vertical-tabs/pkg/browser"
	"github.com/b/vertical-tabs/pkg/logx"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestDirectory(t *testing.T) *Directory {
	t.Helper()
	d := newDirectory(logx.Discard())
	t.Cleanup(d.Close)
	return d
}

func page(id target.ID, title, url string) *target.Info {
	return &target.Info{TargetID: id, Type: "page", Title: title, URL: url}
}

func next(t *testing.T, d *Directory) browser.Event {
	t.Helper()
	select {
	case ev := <-d.Events():
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestTabFromTarget(t *testing.T) {
	tab := TabFromTarget(page("A", "Docs", "https://docs.test"), 4, 2)

	assert.Equal(t, browser.TabID(4), tab.ID)
	assert.Equal(t, WindowID, tab.WindowID)
	assert.Equal(t, 2, tab.Index)
	assert.Equal(t, "Docs", tab.Title)
	assert.Equal(t, "https://docs.test", tab.URL)
	assert.True(t, tab.Group.IsNone())
	assert.False(t, tab.Loading())
}

func TestTargetEventsBecomeTabEvents(t *testing.T) {
	d := newTestDirectory(t)

	d.handle(&target.EventTargetCreated{TargetInfo: page("A", "a", "https://a.test")})
	d.handle(&target.EventTargetCreated{TargetInfo: &target.Info{TargetID: "W", Type: "service_worker"}})
	d.handle(&target.EventTargetCreated{TargetInfo: page("B", "b", "https://b.test")})

	created, ok := next(t, d).(browser.TabCreated)
	require.True(t, ok)
	assert.Equal(t, browser.TabID(1), created.Tab.ID)
	created, ok = next(t, d).(browser.TabCreated)
	require.True(t, ok)
	assert.Equal(t, browser.TabID(2), created.Tab.ID)
	assert.Equal(t, 1, created.Tab.Index)

	d.handle(&target.EventTargetInfoChanged{TargetInfo: page("A", "a2", "https://a.test")})
	updated, ok := next(t, d).(browser.TabUpdated)
	require.True(t, ok)
	require.NotNil(t, updated.Change.Title)
	assert.Equal(t, "a2", *updated.Change.Title)
	assert.Nil(t, updated.Change.URL)

	d.handle(&target.EventTargetInfoChanged{TargetInfo: page("A", "a2", "https://a.test")})
	d.handle(&target.EventTargetDestroyed{TargetID: "A"})
	assert.Equal(t, browser.TabRemoved{TabID: 1, WindowID: WindowID}, next(t, d), "unchanged info emits nothing")

	tabs, err := d.Query(context.Background(), WindowID)
	require.NoError(t, err)
	require.Len(t, tabs, 1)
	assert.Equal(t, browser.TabID(2), tabs[0].ID)
	assert.Equal(t, 0, tabs[0].Index, "indices close up after removal")
}

func TestTabIDsAreNotReused(t *testing.T) {
	d := newTestDirectory(t)

	d.handle(&target.EventTargetCreated{TargetInfo: page("A", "a", "")})
	d.handle(&target.EventTargetDestroyed{TargetID: "A"})
	d.handle(&target.EventTargetCreated{TargetInfo: page("B", "b", "")})
	next(t, d)
	next(t, d)

	created, ok := next(t, d).(browser.TabCreated)
	require.True(t, ok)
	assert.Equal(t, browser.TabID(2), created.Tab.ID)
}

func TestUnsupportedCommands(t *testing.T) {
	d := newTestDirectory(t)
	ctx := context.Background()

	assert.ErrorIs(t, d.Update(ctx, 1, browser.UpdateProperties{Pinned: browser.Bool(true)}), browser.ErrUnsupported)
	assert.ErrorIs(t, d.Update(ctx, 1, browser.UpdateProperties{Muted: browser.Bool(true)}), browser.ErrUnsupported)
	assert.ErrorIs(t, d.Move(ctx, 1, 0), browser.ErrUnsupported)
	assert.ErrorIs(t, d.MoveToNewWindow(ctx, 1), browser.ErrUnsupported)
	assert.ErrorIs(t, d.Group(ctx, []browser.TabID{1}, 0), browser.ErrUnsupported)

	_, ok := browser.GroupsOf(d)
	assert.False(t, ok)
}

func TestUnknownTabs(t *testing.T) {
	d := newTestDirectory(t)
	ctx := context.Background()

	_, err := d.Get(ctx, 9)
	assert.ErrorIs(t, err, browser.ErrTabNotFound)
	assert.ErrorIs(t, d.Remove(ctx, 9), browser.ErrTabNotFound)
	assert.ErrorIs(t, d.Update(ctx, 9, browser.UpdateProperties{Active: browser.Bool(true)}), browser.ErrTabNotFound)

	tabs, err := d.Query(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, tabs)

	window, err := d.CurrentWindow(ctx)
	require.NoError(t, err)
	assert.Equal(t, WindowID, window)
}
