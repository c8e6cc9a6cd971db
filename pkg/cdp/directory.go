// Package cdp exposes the page targets of a Chromium browser, reached over the DevTools
// protocol, as a tab directory. The protocol has no windows, groups, pinning or muting:
// every page is a tab of one synthetic window and the unsupported commands fail with
// browser.ErrUnsupported.
package cdp

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"pkt.systems/pslog"

	"github.com/b/vertical-tabs/pkg/browser"
)

// WindowID is the one window every page target belongs to.
const WindowID browser.WindowID = 1

const pageType = "page"

// Directory is a browser.TabDirectory over DevTools targets. It has no group directory.
type Directory struct {
	log pslog.Logger

	browserCtx context.Context
	cancel     context.CancelFunc

	mu      sync.Mutex
	ids     map[target.ID]browser.TabID
	targets map[browser.TabID]target.ID
	tabs    map[browser.TabID]browser.Tab
	order   []browser.TabID
	nextID  browser.TabID
	active  browser.TabID

	pending []browser.Event
	notify  chan struct{}
	events  chan browser.Event
	done    chan struct{}
	once    sync.Once
}

func newDirectory(log pslog.Logger) *Directory {
	d := &Directory{
		log:     log,
		ids:     make(map[target.ID]browser.TabID),
		targets: make(map[browser.TabID]target.ID),
		tabs:    make(map[browser.TabID]browser.Tab),
		nextID:  1,
		notify:  make(chan struct{}, 1),
		events:  make(chan browser.Event),
		done:    make(chan struct{}),
	}
	go d.pump()
	return d
}

// Dial connects to the DevTools endpoint at url (a ws:// browser URL or an http://
// host:port) and loads the current page targets.
func Dial(ctx context.Context, url string, log pslog.Logger) (*Directory, error) {
	allocCtx, cancelAlloc := chromedp.NewRemoteAllocator(ctx, url)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	d := newDirectory(log)
	d.browserCtx = browserCtx
	d.cancel = func() {
		cancelBrowser()
		cancelAlloc()
	}

	if err := chromedp.Run(browserCtx); err != nil {
		d.Close()
		return nil, fmt.Errorf("failed to connect to devtools at %s: %w", url, err)
	}
	chromedp.ListenBrowser(browserCtx, d.handle)

	exec := d.executor()
	if err := target.SetDiscoverTargets(true).Do(exec); err != nil {
		d.Close()
		return nil, fmt.Errorf("failed to enable target discovery: %w", err)
	}
	infos, err := target.GetTargets().Do(exec)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("failed to list targets: %w", err)
	}

	d.mu.Lock()
	for _, info := range infos {
		d.trackLocked(info)
	}
	d.mu.Unlock()

	log.Info("devtools connected", "url", url, "tabs", len(infos))
	return d, nil
}

// executor runs target commands against the browser rather than an attached page.
func (d *Directory) executor() context.Context {
	return cdp.WithExecutor(d.browserCtx, chromedp.FromContext(d.browserCtx).Browser)
}

// Close disconnects and ends the event stream.
func (d *Directory) Close() {
	d.once.Do(func() {
		close(d.done)
		if d.cancel != nil {
			d.cancel()
		}
	})
}

func (d *Directory) pump() {
	defer close(d.events)
	for {
		d.mu.Lock()
		batch := d.pending
		d.pending = nil
		d.mu.Unlock()

		for _, ev := range batch {
			select {
			case d.events <- ev:
			case <-d.done:
				return
			}
		}

		select {
		case <-d.notify:
		case <-d.done:
			return
		}
	}
}

// emitLocked queues an event. Callers hold d.mu.
func (d *Directory) emitLocked(ev browser.Event) {
	d.pending = append(d.pending, ev)
	select {
	case d.notify <- struct{}{}:
	default:
	}
}

// idLocked returns the tab id of a target, assigning the next id on first sight. Ids
// are never reused.
func (d *Directory) idLocked(tid target.ID) browser.TabID {
	if id, ok := d.ids[tid]; ok {
		return id
	}
	id := d.nextID
	d.nextID++
	d.ids[tid] = id
	d.targets[id] = tid
	return id
}

// trackLocked records a page target and queues its creation. Non-page targets are ignored.
func (d *Directory) trackLocked(info *target.Info) {
	if info == nil || info.Type != pageType {
		return
	}
	id := d.idLocked(info.TargetID)
	if _, ok := d.tabs[id]; ok {
		return
	}
	tab := TabFromTarget(info, id, len(d.order))
	d.order = append(d.order, id)
	d.tabs[id] = tab
	d.emitLocked(browser.TabCreated{Tab: tab})
}

// handle maps DevTools target events. It runs on the protocol reader and must not block.
func (d *Directory) handle(ev any) {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch e := ev.(type) {
	case *target.EventTargetCreated:
		d.trackLocked(e.TargetInfo)

	case *target.EventTargetDestroyed:
		id, ok := d.ids[e.TargetID]
		if !ok {
			return
		}
		if _, ok := d.tabs[id]; !ok {
			return
		}
		delete(d.tabs, id)
		d.reorderLocked(id)
		if d.active == id {
			d.active = 0
		}
		d.emitLocked(browser.TabRemoved{TabID: id, WindowID: WindowID})

	case *target.EventTargetInfoChanged:
		info := e.TargetInfo
		if info == nil {
			return
		}
		id, ok := d.ids[info.TargetID]
		if !ok {
			d.trackLocked(info)
			return
		}
		before, ok := d.tabs[id]
		if !ok {
			d.trackLocked(info)
			return
		}
		after := TabFromTarget(info, id, before.Index)
		after.Active = before.Active
		change := browser.Diff(before, after)
		if change.IsEmpty() {
			return
		}
		d.tabs[id] = after
		d.emitLocked(browser.TabUpdated{TabID: id, Change: change, Tab: after})
	}
}

// reorderLocked drops id from the discovery order and closes the index gap.
func (d *Directory) reorderLocked(id browser.TabID) {
	kept := d.order[:0]
	for _, other := range d.order {
		if other != id {
			kept = append(kept, other)
		}
	}
	d.order = kept
	for i, other := range d.order {
		t := d.tabs[other]
		t.Index = i
		d.tabs[other] = t
	}
}

// TabFromTarget builds the tab for a page target.
func TabFromTarget(info *target.Info, id browser.TabID, index int) browser.Tab {
	return browser.Tab{
		ID:       id,
		WindowID: WindowID,
		Index:    index,
		Title:    info.Title,
		URL:      info.URL,
		Status:   browser.StatusComplete,
		Group:    browser.NoGroup,
	}
}

func (d *Directory) CurrentWindow(ctx context.Context) (browser.WindowID, error) {
	return WindowID, nil
}

func (d *Directory) Query(ctx context.Context, windowID browser.WindowID) ([]browser.Tab, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if windowID != WindowID {
		return nil, nil
	}
	out := make([]browser.Tab, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, d.tabs[id])
	}
	return out, nil
}

func (d *Directory) Get(ctx context.Context, id browser.TabID) (browser.Tab, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	t, ok := d.tabs[id]
	if !ok {
		return browser.Tab{}, fmt.Errorf("get tab %d: %w", id, browser.ErrTabNotFound)
	}
	return t, nil
}

func (d *Directory) targetID(id browser.TabID) (target.ID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	tid, ok := d.targets[id]
	if !ok {
		return "", fmt.Errorf("tab %d: %w", id, browser.ErrTabNotFound)
	}
	return tid, nil
}

func (d *Directory) Create(ctx context.Context, opts browser.CreateOptions) (browser.Tab, error) {
	url := opts.URL
	if url == "" {
		url = "about:blank"
	}
	tid, err := target.CreateTarget(url).Do(d.executor())
	if err != nil {
		return browser.Tab{}, fmt.Errorf("create target: %w", err)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return browser.Tab{ID: d.idLocked(tid), WindowID: WindowID, URL: url, Status: browser.StatusLoading}, nil
}

// Update can only activate. Pinning and muting are not part of the protocol.
func (d *Directory) Update(ctx context.Context, id browser.TabID, props browser.UpdateProperties) error {
	if props.Pinned != nil || props.Muted != nil {
		return browser.ErrUnsupported
	}
	if props.Active == nil || !*props.Active {
		return nil
	}
	tid, err := d.targetID(id)
	if err != nil {
		return err
	}
	if err := target.ActivateTarget(tid).Do(d.executor()); err != nil {
		return fmt.Errorf("activate target: %w", err)
	}
	d.markActive(id)
	return nil
}

// markActive records the activation and emits it; the protocol sends no event for it.
func (d *Directory) markActive(id browser.TabID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if prev, ok := d.tabs[d.active]; ok {
		prev.Active = false
		d.tabs[d.active] = prev
	}
	if t, ok := d.tabs[id]; ok {
		t.Active = true
		d.tabs[id] = t
		d.active = id
	}
	d.emitLocked(browser.TabActivated{TabID: id, WindowID: WindowID})
}

func (d *Directory) Remove(ctx context.Context, ids ...browser.TabID) error {
	var errs []error
	for _, id := range ids {
		tid, err := d.targetID(id)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := target.CloseTarget(tid).Do(d.executor()); err != nil {
			errs = append(errs, fmt.Errorf("close target %d: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

// Duplicate opens the tab's URL in a new target.
func (d *Directory) Duplicate(ctx context.Context, id browser.TabID) error {
	t, err := d.Get(ctx, id)
	if err != nil {
		return err
	}
	_, err = d.Create(ctx, browser.CreateOptions{URL: t.URL})
	return err
}

func (d *Directory) Move(ctx context.Context, id browser.TabID, index int) error {
	return browser.ErrUnsupported
}

func (d *Directory) MoveToNewWindow(ctx context.Context, id browser.TabID) error {
	return browser.ErrUnsupported
}

func (d *Directory) Group(ctx context.Context, ids []browser.TabID, group browser.GroupID) error {
	return browser.ErrUnsupported
}

func (d *Directory) Events() <-chan browser.Event {
	return d.events
}

var _ browser.TabDirectory = (*Directory)(nil)
