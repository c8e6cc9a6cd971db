package bridge

import (
	"encoding/json"
	"fmt"

	"github.com/b/vertical-tabs/pkg/browser"
)

// Frame types.
const (
	TypeHello      = "hello"
	TypeEvent      = "event"
	TypeRequest    = "request"
	TypeResponse   = "response"
	TypeIconFailed = "icon_failed"
)

// Request methods understood by the extension.
const (
	MethodTabsQuery      = "tabs.query"
	MethodTabsGet        = "tabs.get"
	MethodTabsCreate     = "tabs.create"
	MethodTabsUpdate     = "tabs.update"
	MethodTabsRemove     = "tabs.remove"
	MethodTabsMove       = "tabs.move"
	MethodTabsDuplicate  = "tabs.duplicate"
	MethodTabsGroup      = "tabs.group"
	MethodWindowsCreate  = "windows.create"
	MethodTabGroupsQuery = "tabGroups.query"
)

// Message is one JSON text frame in either direction.
type Message struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Event   string          `json:"event,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
	OK      bool            `json:"ok,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Hello is the first frame an extension sends after connecting.
type Hello struct {
	WindowID    browser.WindowID `json:"windowId"`
	Groups      bool             `json:"groups"`
	ExtensionID string           `json:"extensionId,omitempty"`
}

type IconFailedPayload struct {
	Src string `json:"src"`
}

type windowParams struct {
	WindowID browser.WindowID `json:"windowId"`
}

type tabParams struct {
	TabID browser.TabID `json:"tabId"`
}

type tabsParams struct {
	TabIDs []browser.TabID `json:"tabIds"`
}

type createParams struct {
	WindowID browser.WindowID `json:"windowId,omitempty"`
	URL      string           `json:"url,omitempty"`
	Active   bool             `json:"active"`
}

type updateParams struct {
	TabID  browser.TabID `json:"tabId"`
	Active *bool         `json:"active,omitempty"`
	Pinned *bool         `json:"pinned,omitempty"`
	Muted  *bool         `json:"muted,omitempty"`
}

type moveParams struct {
	TabID browser.TabID `json:"tabId"`
	Index int           `json:"index"`
}

type groupParams struct {
	TabIDs  []browser.TabID `json:"tabIds"`
	GroupID browser.GroupID `json:"groupId,omitempty"`
}

type removedPayload struct {
	TabID    browser.TabID    `json:"tabId"`
	WindowID browser.WindowID `json:"windowId"`
}

type updatedPayload struct {
	TabID      browser.TabID     `json:"tabId"`
	ChangeInfo browser.TabChange `json:"changeInfo"`
	Tab        browser.Tab       `json:"tab"`
}

type movedPayload struct {
	TabID     browser.TabID    `json:"tabId"`
	WindowID  browser.WindowID `json:"windowId"`
	FromIndex int              `json:"fromIndex"`
	ToIndex   int              `json:"toIndex"`
}

type detachedPayload struct {
	TabID       browser.TabID    `json:"tabId"`
	OldWindowID browser.WindowID `json:"oldWindowId"`
}

type attachedPayload struct {
	TabID       browser.TabID    `json:"tabId"`
	NewWindowID browser.WindowID `json:"newWindowId"`
}

// DecodeEvent turns an event frame into a browser event. Tab payloads are the tab
// object itself; group payloads are the group object.
func DecodeEvent(name string, payload json.RawMessage) (browser.Event, error) {
	switch name {
	case "tabs.onCreated":
		var tab browser.Tab
		if err := json.Unmarshal(payload, &tab); err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
		return browser.TabCreated{Tab: tab}, nil
	case "tabs.onRemoved":
		var p removedPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
		return browser.TabRemoved{TabID: p.TabID, WindowID: p.WindowID}, nil
	case "tabs.onUpdated":
		var p updatedPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
		return browser.TabUpdated{TabID: p.TabID, Change: p.ChangeInfo, Tab: p.Tab}, nil
	case "tabs.onActivated":
		var p removedPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
		return browser.TabActivated{TabID: p.TabID, WindowID: p.WindowID}, nil
	case "tabs.onMoved":
		var p movedPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
		return browser.TabMoved{TabID: p.TabID, WindowID: p.WindowID, FromIndex: p.FromIndex, ToIndex: p.ToIndex}, nil
	case "tabs.onDetached":
		var p detachedPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
		return browser.TabDetached{TabID: p.TabID, OldWindowID: p.OldWindowID}, nil
	case "tabs.onAttached":
		var p attachedPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
		return browser.TabAttached{TabID: p.TabID, NewWindowID: p.NewWindowID}, nil
	case "tabGroups.onCreated", "tabGroups.onUpdated", "tabGroups.onRemoved", "tabGroups.onMoved":
		var g browser.Group
		if err := json.Unmarshal(payload, &g); err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
		switch name {
		case "tabGroups.onCreated":
			return browser.GroupCreated{Group: g}, nil
		case "tabGroups.onUpdated":
			return browser.GroupUpdated{Group: g}, nil
		case "tabGroups.onRemoved":
			return browser.GroupRemoved{Group: g}, nil
		default:
			return browser.GroupMoved{Group: g}, nil
		}
	}
	return nil, fmt.Errorf("unknown event %q", name)
}
