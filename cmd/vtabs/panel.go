package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"pkt.systems/pslog"

	"github.com/b/vertical-tabs/pkg/colors"
	"github.com/b/vertical-tabs/pkg/config"
	"github.com/b/vertical-tabs/pkg/icons"
	"github.com/b/vertical-tabs/pkg/logx"
	"github.com/b/vertical-tabs/pkg/mirror"
	"github.com/b/vertical-tabs/pkg/panel"
	"github.com/b/vertical-tabs/pkg/paths"
	"github.com/b/vertical-tabs/pkg/perf"
	"github.com/b/vertical-tabs/pkg/prefs"
	"github.com/b/vertical-tabs/pkg/tmux"
)

func newPanelCmd(opts *globalOptions) *cobra.Command {
	var source string
	cmd := &cobra.Command{
		Use:   "panel",
		Short: "Run the tab side panel in this terminal",
		Long: `Run the side panel. Keys: j/k move, enter activates, x closes, m opens the
context menu, z collapses the focused group, n opens a new tab, / searches,
t picks a theme, q quits. Tabs can be clicked, middle-clicked to close,
right-clicked for the menu, and dragged onto other tabs or group headers.

Send SIGUSR1 after switching the terminal between light and dark to refresh
the auto theme.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if source != "" {
				cfg.Source = source
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			return runPanel(cmd.Context(), opts, cfg, cmd.ErrOrStderr())
		},
	}
	cmd.Flags().StringVarP(&source, "source", "s", "", "tab source: bridge, cdp or demo (default from config)")
	return cmd
}

func runPanel(ctx context.Context, opts *globalOptions, cfg config.Config, status io.Writer) error {
	log, closer, err := logx.New(logx.Options{
		Level:      cfg.Log.Level,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	defer func() { _ = closer.Close() }()
	log = logx.WithSource(log, cfg.Source)
	ctx = pslog.ContextWithLogger(ctx, log)
	perf.SetLogger(log)
	perf.Enable(os.Getenv("VTABS_PERF") != "")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	resolver := icons.NewResolver(cfg.Icons.ExtensionID, cfg.Icons.FailureTTL)
	dir, closeDir, err := openSource(ctx, g, cfg, resolver, log, status)
	if err != nil {
		cancel()
		if werr := g.Wait(); werr != nil {
			return werr
		}
		return err
	}
	defer closeDir()

	zone.NewGlobal()
	defer zone.Close()

	surface := panel.NewSurface()
	mir, err := mirror.New(ctx, dir, surface, resolver, log)
	if err != nil {
		cancel()
		_ = g.Wait()
		return err
	}

	detector := colors.NewBackgroundDetector()
	themes := colors.NewStore(prefs.NewFileStore(paths.StatePath(prefs.FileName)), detector, log)
	mode, _ := colors.ParseThemeMode(cfg.Theme.Mode)
	themes.Apply(cfg.Theme.Preset, mode)
	themes.Load(ctx)

	model := panel.New(ctx, panel.Options{
		Mirror:       mir,
		Surface:      surface,
		Themes:       themes,
		OSPreference: detector,
		Debounce:     cfg.Search.Debounce,
		Reload:       opts.load,
		Resize:       paneResizer(log),
		Log:          log,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))

	if err := config.Watch(ctx, opts.configFile(), log, func() { p.Send(panel.ReloadConfig()) }); err != nil {
		log.Warn("config hot reload disabled", "err", err)
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGUSR1)
	defer signal.Stop(sigs)
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-sigs:
				p.Send(panel.OSThemeChanged())
			}
		}
	})

	g.Go(func() error {
		defer cancel()
		_, err := p.Run()
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	})
	return g.Wait()
}

// paneResizer resizes the tmux pane the panel runs in. Outside tmux it does nothing.
func paneResizer(log pslog.Logger) func(int) {
	pane := tmux.CurrentPane()
	if pane == "" {
		return nil
	}
	client := tmux.NewClient()
	return func(width int) {
		if err := client.ResizePane(pane, width); err != nil {
			log.Debug("pane resize failed", "pane", pane, "err", err)
		}
	}
}
