package mirror

import (
	"context"
	"sync"

	"github.com/b/vertical-tabs/pkg/browser"
	"github.com/b/vertical-tabs/pkg/reconcile"
)

type resyncResult struct {
	tabs []browser.Tab
	err  error
}

// Run applies directory events in delivery order until ctx is done or the event stream
// closes. Resync queries run on their own goroutine and are applied when they return,
// so events keep flowing while a query is in flight. after, when set, is called on the
// loop goroutine with every action taken.
func (m *Mirror) Run(ctx context.Context, after func(reconcile.Action)) error {
	ctx, cancel := context.WithCancel(ctx)
	results := make(chan resyncResult)
	var wg sync.WaitGroup
	defer wg.Wait()
	defer cancel()

	notify := func(a reconcile.Action) {
		if after != nil && a != reconcile.Ignored {
			after(a)
		}
	}

	events := m.dir.Events()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-events:
			if !ok {
				m.log.Info("directory event stream closed")
				return nil
			}
			action := m.Handle(ev)
			if action != reconcile.NeedsResync {
				notify(action)
				continue
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				tabs, err := m.Query(ctx)
				select {
				case results <- resyncResult{tabs: tabs, err: err}:
				case <-ctx.Done():
				}
			}()

		case res := <-results:
			if res.err != nil {
				m.log.Debug("resync failed", "err", res.err)
				continue
			}
			notify(m.ApplyResync(res.tabs))
		}
	}
}
