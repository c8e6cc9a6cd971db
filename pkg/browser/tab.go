// Package browser defines the tab and group model mirrored by the side panel and the
// directory services that own the real state.
package browser

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// TabID identifies a tab for the lifetime of the browser process.
type TabID int

// WindowID identifies a browser window.
type WindowID int

// GroupID identifies a tab group.
type GroupID int

// Status is the loading state reported for a tab.
type Status string

const (
	StatusLoading  Status = "loading"
	StatusComplete Status = "complete"
)

// DefaultTitle is shown for tabs that have no title yet.
const DefaultTitle = "New Tab"

// GroupRef is a tab's group membership: either no group or a concrete group id.
// The zero value is NoGroup.
type GroupRef struct {
	id GroupID
	ok bool
}

// NoGroup is the membership of an ungrouped tab.
var NoGroup = GroupRef{}

// InGroup returns a membership in the given group.
func InGroup(id GroupID) GroupRef {
	return GroupRef{id: id, ok: true}
}

// ID returns the group id and whether the tab is grouped at all.
func (g GroupRef) ID() (GroupID, bool) {
	return g.id, g.ok
}

// IsNone reports whether the tab is ungrouped.
func (g GroupRef) IsNone() bool {
	return !g.ok
}

func (g GroupRef) String() string {
	if !g.ok {
		return "none"
	}
	return strconv.Itoa(int(g.id))
}

// MarshalJSON writes -1 for ungrouped tabs, matching the browser's wire value.
func (g GroupRef) MarshalJSON() ([]byte, error) {
	if !g.ok {
		return []byte("-1"), nil
	}
	return []byte(strconv.Itoa(int(g.id))), nil
}

// UnmarshalJSON accepts null or any negative id as "no group".
func (g *GroupRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*g = NoGroup
		return nil
	}
	var id int
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	if id < 0 {
		*g = NoGroup
		return nil
	}
	*g = InGroup(GroupID(id))
	return nil
}

// Tab is one browser tab as seen by the panel.
type Tab struct {
	ID         TabID    `json:"id"`
	WindowID   WindowID `json:"windowId"`
	Index      int      `json:"index"`
	Title      string   `json:"title"`
	URL        string   `json:"url"`
	FavIconURL string   `json:"favIconUrl,omitempty"`
	Active     bool     `json:"active"`
	Pinned     bool     `json:"pinned"`
	Audible    bool     `json:"audible"`
	Muted      bool     `json:"muted"`
	Status     Status   `json:"status"`
	Group      GroupRef `json:"groupId"`
}

// DisplayTitle returns the title, or DefaultTitle when the page has none.
func (t Tab) DisplayTitle() string {
	if t.Title == "" {
		return DefaultTitle
	}
	return t.Title
}

// Loading reports whether the tab is still loading.
func (t Tab) Loading() bool {
	return t.Status == StatusLoading
}

// TabChange is a partial tab update. Only non-nil fields are applied.
type TabChange struct {
	Title      *string   `json:"title,omitempty"`
	URL        *string   `json:"url,omitempty"`
	FavIconURL *string   `json:"favIconUrl,omitempty"`
	Active     *bool     `json:"active,omitempty"`
	Pinned     *bool     `json:"pinned,omitempty"`
	Audible    *bool     `json:"audible,omitempty"`
	Muted      *bool     `json:"muted,omitempty"`
	Status     *Status   `json:"status,omitempty"`
	Group      *GroupRef `json:"groupId,omitempty"`
}

// Apply overwrites the fields present in the change.
func (c TabChange) Apply(t *Tab) {
	if c.Title != nil {
		t.Title = *c.Title
	}
	if c.URL != nil {
		t.URL = *c.URL
	}
	if c.FavIconURL != nil {
		t.FavIconURL = *c.FavIconURL
	}
	if c.Active != nil {
		t.Active = *c.Active
	}
	if c.Pinned != nil {
		t.Pinned = *c.Pinned
	}
	if c.Audible != nil {
		t.Audible = *c.Audible
	}
	if c.Muted != nil {
		t.Muted = *c.Muted
	}
	if c.Status != nil {
		t.Status = *c.Status
	}
	if c.Group != nil {
		t.Group = *c.Group
	}
}

// IsEmpty reports whether the change carries no fields.
func (c TabChange) IsEmpty() bool {
	return c == TabChange{}
}

// Diff builds the change that turns before into after.
func Diff(before, after Tab) TabChange {
	var c TabChange
	if before.Title != after.Title {
		c.Title = &after.Title
	}
	if before.URL != after.URL {
		c.URL = &after.URL
	}
	if before.FavIconURL != after.FavIconURL {
		c.FavIconURL = &after.FavIconURL
	}
	if before.Active != after.Active {
		c.Active = &after.Active
	}
	if before.Pinned != after.Pinned {
		c.Pinned = &after.Pinned
	}
	if before.Audible != after.Audible {
		c.Audible = &after.Audible
	}
	if before.Muted != after.Muted {
		c.Muted = &after.Muted
	}
	if before.Status != after.Status {
		c.Status = &after.Status
	}
	if before.Group != after.Group {
		c.Group = &after.Group
	}
	return c
}

// Bool returns a pointer to v, for building changes and update properties.
func Bool(v bool) *bool { return &v }

// String returns a pointer to v.
func String(v string) *string { return &v }
