package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pkt.systems/pslog"

	"github.com/b/vertical-tabs/pkg/browser"
	"github.com/b/vertical-tabs/pkg/logx"
	"github.com/b/vertical-tabs/pkg/reconcile"
	"github.com/b/vertical-tabs/pkg/tabcache"
)

func newController(t *testing.T, tabs []browser.Tab, groups []browser.Group) (*Controller, *browser.Memory) {
	t.Helper()
	dir := browser.NewMemory(1)
	t.Cleanup(dir.Close)
	dir.Seed(tabs, groups)

	cache := tabcache.New(1)
	require.NoError(t, cache.Resync(context.Background(), dir))
	return New(dir, cache, true, logx.Discard()), dir
}

func lastRequest(t *testing.T, dir *browser.Memory) browser.Request {
	t.Helper()
	reqs := dir.Requests()
	require.NotEmpty(t, reqs)
	return reqs[len(reqs)-1]
}

var window = []browser.Tab{
	{ID: 1, Index: 0, Title: "pinned", Pinned: true},
	{ID: 3, Index: 1, Title: "three"},
	{ID: 5, Index: 2, Title: "five", Muted: true},
	{ID: 8, Index: 3, Title: "eight"},
}

func TestCloseOthersUsesUnpinnedList(t *testing.T) {
	c, dir := newController(t, window, nil)

	c.Exec(context.Background(), c.CloseOthers(5))

	req := lastRequest(t, dir)
	assert.Equal(t, "remove", req.Op)
	assert.ElementsMatch(t, []browser.TabID{3, 8}, req.TabIDs)
}

func TestCloseRight(t *testing.T) {
	c, dir := newController(t, window, nil)

	c.Exec(context.Background(), c.CloseRight(3))
	assert.Equal(t, []browser.TabID{5, 8}, lastRequest(t, dir).TabIDs)

	assert.True(t, c.CloseRight(8).IsZero(), "nothing to the right")
	assert.True(t, c.CloseRight(42).IsZero(), "unknown tab")
}

func TestActivateAndClose(t *testing.T) {
	c, dir := newController(t, window, nil)
	ctx := context.Background()

	c.Exec(ctx, c.Activate(8))
	req := lastRequest(t, dir)
	assert.Equal(t, "update", req.Op)
	require.NotNil(t, req.Props.Active)
	assert.True(t, *req.Props.Active)

	c.Exec(ctx, c.Close(3))
	req = lastRequest(t, dir)
	assert.Equal(t, "remove", req.Op)
	assert.Equal(t, []browser.TabID{3}, req.TabIDs)
}

func TestTogglesReadCachedState(t *testing.T) {
	c, dir := newController(t, window, nil)
	ctx := context.Background()

	c.Exec(ctx, c.TogglePin(1))
	req := lastRequest(t, dir)
	require.NotNil(t, req.Props.Pinned)
	assert.False(t, *req.Props.Pinned)

	c.Exec(ctx, c.ToggleMute(5))
	req = lastRequest(t, dir)
	require.NotNil(t, req.Props.Muted)
	assert.False(t, *req.Props.Muted)

	c.Exec(ctx, c.ToggleMute(3))
	assert.True(t, *lastRequest(t, dir).Props.Muted)

	assert.True(t, c.TogglePin(99).IsZero())
}

func TestCommandsDoNotTouchCache(t *testing.T) {
	c, _ := newController(t, window, nil)

	c.Exec(context.Background(), c.TogglePin(3))

	tab, ok := c.cache.Tab(3)
	require.True(t, ok)
	assert.False(t, tab.Pinned, "only the resulting event may change the cache")
}

func TestDuplicateMoveAndNewTab(t *testing.T) {
	c, dir := newController(t, window, nil)
	ctx := context.Background()

	c.Exec(ctx, c.Duplicate(3))
	assert.Equal(t, "duplicate", lastRequest(t, dir).Op)

	c.Exec(ctx, c.MoveToNewWindow(8))
	assert.Equal(t, "move_to_new_window", lastRequest(t, dir).Op)

	c.Exec(ctx, c.NewTab())
	assert.Equal(t, "create", lastRequest(t, dir).Op)
}

func TestDropOnTabMovesToTargetIndex(t *testing.T) {
	c, dir := newController(t, window, nil)

	c.Exec(context.Background(), c.Drop(reconcile.DragSession{
		Active: true,
		TabID:  8,
		Target: reconcile.DropTarget{Kind: reconcile.DropOnTab, TabID: 3},
	}))

	req := lastRequest(t, dir)
	assert.Equal(t, "move", req.Op)
	assert.Equal(t, []browser.TabID{8}, req.TabIDs)
	assert.Equal(t, 1, req.Index)

	assert.True(t, c.Drop(reconcile.DragSession{Active: true, TabID: 8}).IsZero())
	assert.True(t, c.Drop(reconcile.DragSession{}).IsZero())
}

func TestDropOnGroupSwallowsFailure(t *testing.T) {
	c, dir := newController(t, window, nil)
	dir.FailOn("group", browser.ErrUnsupported)

	cmd := c.Drop(reconcile.DragSession{
		Active: true,
		TabID:  3,
		Target: reconcile.DropTarget{Kind: reconcile.DropOnGroup, GroupID: 4},
	})
	require.False(t, cmd.IsZero())
	assert.NotPanics(t, func() { c.Exec(context.Background(), cmd) })

	req := lastRequest(t, dir)
	assert.Equal(t, "group", req.Op)
	assert.Equal(t, browser.GroupID(4), req.Group)
	assert.Len(t, dir.Requests(), 1, "no fallback command")
}

func TestFailuresAreLoggedAtDebug(t *testing.T) {
	dir := browser.NewMemory(1)
	t.Cleanup(dir.Close)
	dir.Seed(window, nil)
	dir.FailOn("remove", errors.New("boom"))
	cache := tabcache.New(1)
	require.NoError(t, cache.Resync(context.Background(), dir))

	capture := newLogCapture()
	c := New(dir, cache, true, capture.logger)
	c.Exec(context.Background(), c.Close(3))

	entry := capture.firstEntry(t)
	assert.Equal(t, "close", entry["op"])
	assert.Contains(t, entry, "err")
}

func TestAddToNewGroup(t *testing.T) {
	c, dir := newController(t, window, nil)
	c.Exec(context.Background(), c.AddToNewGroup(3))
	req := lastRequest(t, dir)
	assert.Equal(t, "group", req.Op)
	assert.Equal(t, browser.GroupID(0), req.Group)

	c.groupsAvailable = false
	assert.True(t, c.AddToNewGroup(3).IsZero())
}

type logCapture struct {
	buf    bytes.Buffer
	logger pslog.Logger
}

func newLogCapture() *logCapture {
	c := &logCapture{}
	c.logger = pslog.NewWithOptions(&c.buf, pslog.Options{
		Mode:          pslog.ModeStructured,
		NoColor:       true,
		MinLevel:      pslog.DebugLevel,
		VerboseFields: true,
	})
	return c
}

func (c *logCapture) firstEntry(t *testing.T) map[string]any {
	t.Helper()
	data := c.buf.Bytes()
	idx := bytes.IndexByte(data, '\n')
	if idx == -1 {
		idx = len(data)
	}
	entry := map[string]any{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data[:idx]), &entry))
	return entry
}
