package browser

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupRefJSON(t *testing.T) {
	var tab Tab
	require.NoError(t, json.Unmarshal([]byte(`{"id":4,"groupId":-1}`), &tab))
	assert.True(t, tab.Group.IsNone())

	require.NoError(t, json.Unmarshal([]byte(`{"id":4,"groupId":12}`), &tab))
	id, ok := tab.Group.ID()
	assert.True(t, ok)
	assert.Equal(t, GroupID(12), id)

	require.NoError(t, json.Unmarshal([]byte(`{"id":4,"groupId":null}`), &tab))
	assert.True(t, tab.Group.IsNone())

	data, err := json.Marshal(Tab{ID: 1})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"groupId":-1`)
}

func TestGroupIDZeroIsARealGroup(t *testing.T) {
	ref := InGroup(0)
	assert.False(t, ref.IsNone())
	assert.NotEqual(t, NoGroup, ref)
}

func TestTabChangeApplyOnlyTouchesPresentFields(t *testing.T) {
	tab := Tab{ID: 1, Title: "Mail", URL: "https://mail", Active: true, Muted: true}
	TabChange{Title: String("Inbox")}.Apply(&tab)

	assert.Equal(t, "Inbox", tab.Title)
	assert.Equal(t, "https://mail", tab.URL)
	assert.True(t, tab.Active)
	assert.True(t, tab.Muted)
}

func TestDiffRoundTrip(t *testing.T) {
	before := Tab{ID: 1, Title: "a", Status: StatusLoading}
	after := before
	after.Title = "b"
	after.Status = StatusComplete
	after.Group = InGroup(3)

	change := Diff(before, after)
	require.NotNil(t, change.Title)
	require.NotNil(t, change.Status)
	require.NotNil(t, change.Group)
	assert.Nil(t, change.URL)

	change.Apply(&before)
	assert.Equal(t, after, before)
	assert.True(t, Diff(after, after).IsEmpty())
}

func TestDisplayTitleDefaults(t *testing.T) {
	assert.Equal(t, "New Tab", Tab{}.DisplayTitle())
	assert.Equal(t, "Docs", Tab{Title: "Docs"}.DisplayTitle())
}

func TestColorHexFallsBackToGrey(t *testing.T) {
	assert.Equal(t, "#1A73E8", ColorBlue.Hex())
	assert.Equal(t, "#5F6368", Color("magenta").Hex())
}

func nextEvent(t *testing.T, m *Memory) Event {
	t.Helper()
	select {
	case ev := <-m.Events():
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestMemoryCreateActivates(t *testing.T) {
	m := NewMemory(1)
	defer m.Close()
	ctx := context.Background()

	tab, err := m.Create(ctx, CreateOptions{URL: "https://a", Active: true})
	require.NoError(t, err)

	created, ok := nextEvent(t, m).(TabCreated)
	require.True(t, ok)
	assert.Equal(t, tab.ID, created.Tab.ID)

	activated, ok := nextEvent(t, m).(TabActivated)
	require.True(t, ok)
	assert.Equal(t, tab.ID, activated.TabID)
}

func TestMemoryPinMovesIntoPinnedBlock(t *testing.T) {
	m := NewMemory(1)
	defer m.Close()
	m.Seed([]Tab{
		{ID: 1, Index: 0, Pinned: true},
		{ID: 2, Index: 1},
		{ID: 3, Index: 2},
	}, nil)

	require.NoError(t, m.Update(context.Background(), 3, UpdateProperties{Pinned: Bool(true)}))

	updated, ok := nextEvent(t, m).(TabUpdated)
	require.True(t, ok)
	require.NotNil(t, updated.Change.Pinned)

	moved, ok := nextEvent(t, m).(TabMoved)
	require.True(t, ok)
	assert.Equal(t, 2, moved.FromIndex)
	assert.Equal(t, 1, moved.ToIndex)

	tabs, err := m.Query(context.Background(), 1)
	require.NoError(t, err)
	ids := []TabID{tabs[0].ID, tabs[1].ID, tabs[2].ID}
	assert.Equal(t, []TabID{1, 3, 2}, ids)
}

func TestMemoryGroupCreatesGroup(t *testing.T) {
	m := NewMemory(1)
	defer m.Close()
	m.Seed([]Tab{{ID: 1, Index: 0}}, nil)

	require.NoError(t, m.Group(context.Background(), []TabID{1}, 0))

	created, ok := nextEvent(t, m).(GroupCreated)
	require.True(t, ok)
	updated, ok := nextEvent(t, m).(TabUpdated)
	require.True(t, ok)
	assert.Equal(t, InGroup(created.Group.ID), updated.Tab.Group)
}

func TestMemoryFailOn(t *testing.T) {
	m := NewMemory(1)
	defer m.Close()
	boom := errors.New("boom")
	m.FailOn("remove", boom)

	err := m.Remove(context.Background(), 1)
	assert.ErrorIs(t, err, boom)
	assert.Len(t, m.Requests(), 1)
}

func TestGroupsOf(t *testing.T) {
	m := NewMemory(1)
	defer m.Close()

	_, ok := GroupsOf(m)
	assert.True(t, ok)

	m.SetGroupsAvailable(false)
	_, ok = GroupsOf(m)
	assert.False(t, ok)
}
