// Package controller turns panel gestures into directory commands.
//
// Commands are built on the event-handling goroutine, where the cache may be read, and
// executed elsewhere. Nothing is applied optimistically: the events a command causes are
// the only way its effect reaches the cache.
package controller

import (
	"context"

	"pkt.systems/pslog"

	"github.com/b/vertical-tabs/pkg/browser"
	"github.com/b/vertical-tabs/pkg/reconcile"
	"github.com/b/vertical-tabs/pkg/tabcache"
)

// Command is one directory call, ready to run. The zero Command does nothing.
type Command struct {
	Name string
	Tab  browser.TabID
	run  func(ctx context.Context) error
}

// IsZero reports whether the command has nothing to do.
func (c Command) IsZero() bool {
	return c.run == nil
}

// Controller builds commands against a directory from the cached state of one window.
type Controller struct {
	dir             browser.TabDirectory
	cache           *tabcache.Cache
	log             pslog.Logger
	groupsAvailable bool

	menu       Menu
	menuOpen   bool
	menuMargin int
}

// New returns a controller for the window mirrored by cache.
func New(dir browser.TabDirectory, cache *tabcache.Cache, groupsAvailable bool, log pslog.Logger) *Controller {
	return &Controller{
		dir:             dir,
		cache:           cache,
		log:             log,
		groupsAvailable: groupsAvailable,
		menuMargin:      MenuMargin,
	}
}

// Exec runs cmd. Failures are logged at debug and dropped: the next event from the
// directory reconciles whatever the command did or did not do.
func (c *Controller) Exec(ctx context.Context, cmd Command) {
	if cmd.IsZero() {
		return
	}
	if err := cmd.run(ctx); err != nil {
		c.log.Debug("directory command failed", "op", cmd.Name, "tab", int(cmd.Tab), "err", err)
	}
}

func (c *Controller) command(name string, id browser.TabID, run func(ctx context.Context) error) Command {
	return Command{Name: name, Tab: id, run: run}
}

// Activate asks the directory to make id the active tab.
func (c *Controller) Activate(id browser.TabID) Command {
	return c.command("activate", id, func(ctx context.Context) error {
		return c.dir.Update(ctx, id, browser.UpdateProperties{Active: browser.Bool(true)})
	})
}

// Close removes one tab.
func (c *Controller) Close(id browser.TabID) Command {
	return c.command("close", id, func(ctx context.Context) error {
		return c.dir.Remove(ctx, id)
	})
}

// CloseOthers removes every unpinned tab except id.
func (c *Controller) CloseOthers(id browser.TabID) Command {
	var ids []browser.TabID
	for _, t := range c.cache.UnpinnedTabs(nil) {
		if t.ID != id {
			ids = append(ids, t.ID)
		}
	}
	return c.removeMany("close_others", id, ids)
}

// CloseRight removes the unpinned tabs positioned after id.
func (c *Controller) CloseRight(id browser.TabID) Command {
	target, ok := c.cache.Tab(id)
	if !ok {
		return Command{}
	}
	var ids []browser.TabID
	for _, t := range c.cache.UnpinnedTabs(nil) {
		if t.Index > target.Index {
			ids = append(ids, t.ID)
		}
	}
	return c.removeMany("close_right", id, ids)
}

func (c *Controller) removeMany(name string, id browser.TabID, ids []browser.TabID) Command {
	if len(ids) == 0 {
		return Command{}
	}
	return c.command(name, id, func(ctx context.Context) error {
		return c.dir.Remove(ctx, ids...)
	})
}

// TogglePin inverts the cached pinned state.
func (c *Controller) TogglePin(id browser.TabID) Command {
	t, ok := c.cache.Tab(id)
	if !ok {
		return Command{}
	}
	pinned := !t.Pinned
	return c.command("toggle_pin", id, func(ctx context.Context) error {
		return c.dir.Update(ctx, id, browser.UpdateProperties{Pinned: &pinned})
	})
}

// ToggleMute inverts the cached muted state.
func (c *Controller) ToggleMute(id browser.TabID) Command {
	t, ok := c.cache.Tab(id)
	if !ok {
		return Command{}
	}
	muted := !t.Muted
	return c.command("toggle_mute", id, func(ctx context.Context) error {
		return c.dir.Update(ctx, id, browser.UpdateProperties{Muted: &muted})
	})
}

func (c *Controller) Duplicate(id browser.TabID) Command {
	return c.command("duplicate", id, func(ctx context.Context) error {
		return c.dir.Duplicate(ctx, id)
	})
}

func (c *Controller) MoveToNewWindow(id browser.TabID) Command {
	return c.command("move_to_new_window", id, func(ctx context.Context) error {
		return c.dir.MoveToNewWindow(ctx, id)
	})
}

// NewTab opens a blank tab in the mirrored window.
func (c *Controller) NewTab() Command {
	window := c.cache.WindowID()
	return c.command("new_tab", 0, func(ctx context.Context) error {
		_, err := c.dir.Create(ctx, browser.CreateOptions{WindowID: window, Active: true})
		return err
	})
}

// AddToNewGroup puts id into a fresh group. It does nothing when groups are unavailable.
func (c *Controller) AddToNewGroup(id browser.TabID) Command {
	if !c.groupsAvailable {
		return Command{}
	}
	return c.command("add_to_new_group", id, func(ctx context.Context) error {
		return c.dir.Group(ctx, []browser.TabID{id}, 0)
	})
}

// Drop resolves a finished drag. Dropping on a tab moves the dragged tab to that tab's
// current index; dropping on a group header adds it to the group.
func (c *Controller) Drop(s reconcile.DragSession) Command {
	if !s.Active {
		return Command{}
	}
	switch s.Target.Kind {
	case reconcile.DropOnTab:
		if s.Target.TabID == s.TabID {
			return Command{}
		}
		target, ok := c.cache.Tab(s.Target.TabID)
		if !ok {
			return Command{}
		}
		index := target.Index
		return c.command("move", s.TabID, func(ctx context.Context) error {
			return c.dir.Move(ctx, s.TabID, index)
		})
	case reconcile.DropOnGroup:
		group := s.Target.GroupID
		return c.command("group", s.TabID, func(ctx context.Context) error {
			return c.dir.Group(ctx, []browser.TabID{s.TabID}, group)
		})
	}
	return Command{}
}
