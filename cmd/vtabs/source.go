package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"golang.org/x/sync/errgroup"
	"pkt.systems/pslog"

	"github.com/b/vertical-tabs/pkg/bridge"
	"github.com/b/vertical-tabs/pkg/browser"
	"github.com/b/vertical-tabs/pkg/cdp"
	"github.com/b/vertical-tabs/pkg/config"
	"github.com/b/vertical-tabs/pkg/icons"
)

const demoActivityEvery = 3 * time.Second

// openSource connects the configured tab directory. Background work it needs runs in g.
// The returned func closes the directory and ends its event stream.
func openSource(ctx context.Context, g *errgroup.Group, cfg config.Config, resolver *icons.Resolver, log pslog.Logger, status io.Writer) (browser.TabDirectory, func(), error) {
	switch cfg.Source {
	case config.SourceBridge:
		token, err := bridge.LoadOrGenerateToken(bridge.DefaultTokenPath())
		if err != nil {
			return nil, nil, err
		}
		srv := bridge.NewServer(bridge.Config{
			Host:  cfg.Bridge.Host,
			Port:  cfg.Bridge.Port,
			Token: token,
		}, log.With("component", "bridge"))
		g.Go(func() error {
			return srv.ListenAndServe(ctx)
		})

		_, _ = fmt.Fprintf(status, "Waiting for the browser extension on ws://%s/ws ...\n", srv.Addr())
		hello, err := srv.Hello(ctx)
		if err != nil {
			srv.Close()
			return nil, nil, fmt.Errorf("failed to reach browser extension: %w", err)
		}
		if cfg.Icons.ExtensionID == "" {
			resolver.SetExtensionID(hello.ExtensionID)
		}
		log.Info("extension connected", "window", hello.WindowID, "groups", hello.Groups)
		return srv, srv.Close, nil

	case config.SourceCDP:
		dir, err := cdp.Dial(ctx, cfg.CDP.URL, log.With("component", "cdp"))
		if err != nil {
			return nil, nil, err
		}
		return dir, dir.Close, nil

	case config.SourceDemo:
		dir := browser.NewDemo()
		g.Go(func() error {
			dir.RunActivity(ctx, demoActivityEvery)
			return nil
		})
		return dir, dir.Close, nil
	}
	return nil, nil, fmt.Errorf("%w: %q", config.ErrUnknownSource, cfg.Source)
}
