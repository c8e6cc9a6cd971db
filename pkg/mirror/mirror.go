// Package mirror owns the per-panel state: the window the panel is attached to, its
// cache, the reconciler drawing it and the controller acting on it. One Mirror is built
// at startup and everything else hangs off it.
package mirror

import (
	"context"
	"fmt"

	"pkt.systems/pslog"

	"github.com/b/vertical-tabs/pkg/browser"
	"github.com/b/vertical-tabs/pkg/controller"
	"github.com/b/vertical-tabs/pkg/logx"
	"github.com/b/vertical-tabs/pkg/reconcile"
	"github.com/b/vertical-tabs/pkg/tabcache"
)

// Mirror is the owned context of one panel. Handle, ApplyResync and the reconciler and
// controller it exposes must only be used from one goroutine.
type Mirror struct {
	dir             browser.TabDirectory
	groups          browser.GroupDirectory
	groupsAvailable bool
	window          browser.WindowID

	cache *tabcache.Cache
	rec   *reconcile.Reconciler
	ctrl  *controller.Controller
	log   pslog.Logger
}

// New resolves the current window, loads its tabs and groups, and draws the first view.
// The group directory is probed once; when it is missing or fails, groups stay off for
// the life of the mirror.
func New(ctx context.Context, dir browser.TabDirectory, surface reconcile.Surface, icons reconcile.IconResolver, log pslog.Logger) (*Mirror, error) {
	window, err := dir.CurrentWindow(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve current window: %w", err)
	}
	log = logx.WithWindow(log, window)

	cache := tabcache.New(window)
	if err := cache.Resync(ctx, dir); err != nil {
		return nil, err
	}

	groups, ok := browser.GroupsOf(dir)
	if ok {
		if err := cache.ResyncGroups(ctx, groups); err != nil {
			log.Debug("group directory unavailable", "err", err)
			groups, ok = nil, false
		}
	}

	m := &Mirror{
		dir:             dir,
		groups:          groups,
		groupsAvailable: ok,
		window:          window,
		cache:           cache,
		log:             log,
	}
	m.rec = reconcile.New(cache, surface, icons, ok, log)
	m.ctrl = controller.New(dir, cache, ok, log)
	m.rec.Rebuild()
	log.Info("mirror ready", "tabs", cache.Len(), "groups", ok)
	return m, nil
}

// Window returns the window the mirror is attached to.
func (m *Mirror) Window() browser.WindowID { return m.window }

// GroupsAvailable reports whether groups are shown this session.
func (m *Mirror) GroupsAvailable() bool { return m.groupsAvailable }

func (m *Mirror) Directory() browser.TabDirectory { return m.dir }

func (m *Mirror) Cache() *tabcache.Cache { return m.cache }

func (m *Mirror) Reconciler() *reconcile.Reconciler { return m.rec }

func (m *Mirror) Controller() *controller.Controller { return m.ctrl }

// Handle applies one directory event.
func (m *Mirror) Handle(ev browser.Event) reconcile.Action {
	action := m.rec.Handle(ev)
	if action != reconcile.Ignored {
		m.log.Trace("event applied", "event", fmt.Sprintf("%T", ev), "action", action.String())
	}
	return action
}

// Query fetches the window's tabs for a resync. It touches no mirror state and may run
// on any goroutine; its result goes to ApplyResync.
func (m *Mirror) Query(ctx context.Context) ([]browser.Tab, error) {
	tabs, err := m.dir.Query(ctx, m.window)
	if err != nil {
		return nil, fmt.Errorf("failed to query window %d: %w", m.window, err)
	}
	return tabs, nil
}

// ApplyResync replaces the cache with a query result and rebuilds.
func (m *Mirror) ApplyResync(tabs []browser.Tab) reconcile.Action {
	return m.rec.ApplyResync(tabs)
}

// Exec runs a controller command.
func (m *Mirror) Exec(ctx context.Context, cmd controller.Command) {
	m.ctrl.Exec(ctx, cmd)
}
