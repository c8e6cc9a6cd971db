package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/b/vertical-tabs/pkg/grouping"
	"github.com/b/vertical-tabs/pkg/icons"
	"github.com/b/vertical-tabs/pkg/logx"
	"github.com/b/vertical-tabs/pkg/mirror"
	"github.com/b/vertical-tabs/pkg/panel"
	"github.com/b/vertical-tabs/pkg/reconcile"
)

const defaultListWidth = 80

func newTabsCmd(opts *globalOptions) *cobra.Command {
	var follow bool
	var source string
	var query string
	cmd := &cobra.Command{
		Use:   "tabs",
		Short: "Print the tabs of the current browser window",
		Args:  cobra.NoArgs,
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
			log := logx.WithSource(logx.Console(cmd.ErrOrStderr(), cfg.Log.Level), cfg.Source)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			g, ctx := errgroup.WithContext(ctx)

			resolver := icons.NewResolver(cfg.Icons.ExtensionID, cfg.Icons.FailureTTL)
			dir, closeDir, err := openSource(ctx, g, cfg, resolver, log, cmd.ErrOrStderr())
			if err != nil {
				cancel()
				_ = g.Wait()
				return err
			}
			defer closeDir()

			surface := panel.NewSurface()
			mir, err := mirror.New(ctx, dir, surface, resolver, log)
			if err != nil {
				cancel()
				_ = g.Wait()
				return err
			}
			if query != "" {
				mir.Reconciler().SetQuery(query)
			}

			out := cmd.OutOrStdout()
			style := listStyleFor(out)
			if err := writeView(out, surface.View(), style); err != nil {
				cancel()
				_ = g.Wait()
				return err
			}
			if !follow {
				cancel()
				return g.Wait()
			}

			g.Go(func() error {
				defer cancel()
				err := mir.Run(ctx, func(reconcile.Action) {
					_, _ = fmt.Fprintln(out)
					_ = writeView(out, surface.View(), style)
				})
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			})
			return g.Wait()
		},
	}
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "keep printing the window as it changes")
	cmd.Flags().StringVarP(&source, "source", "s", "", "tab source: bridge, cdp or demo (default from config)")
	cmd.Flags().StringVarP(&query, "query", "q", "", "only print tabs matching the search query")
	return cmd
}

// listStyle controls how writeView draws.
type listStyle struct {
	width  int
	styled bool
	dark   bool
}

// listStyleFor styles output for a terminal and keeps it plain for pipes and files.
func listStyleFor(w io.Writer) listStyle {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return listStyle{}
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		width = defaultListWidth
	}
	return listStyle{width: width, styled: true, dark: lipgloss.HasDarkBackground()}
}

// writeView prints a view in panel order: pinned tabs, group sections, ungrouped tabs.
func writeView(w io.Writer, v reconcile.View, style listStyle) error {
	var b strings.Builder
	if len(v.Pinned) > 0 {
		chips := make([]string, 0, len(v.Pinned))
		for _, r := range v.Pinned {
			chip := "[" + icons.Glyph(r.Icon, r.Tab.URL) + "]"
			if r.Tab.Active {
				chip = "*" + chip
			}
			chips = append(chips, chip)
		}
		b.WriteString("pinned: " + strings.Join(chips, " ") + "\n")
	}
	if v.Empty != "" {
		b.WriteString(v.Empty + "\n")
	}
	for _, sec := range v.Sections {
		b.WriteString(sectionHeader(sec, style) + "\n")
		if sec.Collapsed {
			continue
		}
		for _, r := range sec.Rows {
			b.WriteString(tabLine(r, "  ", style) + "\n")
		}
	}
	if v.UngroupedLabel && len(v.Ungrouped) > 0 {
		b.WriteString("Other tabs\n")
	}
	indent := ""
	if len(v.Sections) > 0 {
		indent = "  "
	}
	for _, r := range v.Ungrouped {
		b.WriteString(tabLine(r, indent, style) + "\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func sectionHeader(sec reconcile.Section, style listStyle) string {
	title := sec.Group.Title
	if title == "" {
		title = "Untitled group"
	}
	arrow := "▾"
	if sec.Collapsed {
		arrow = "▸"
	}
	text := fmt.Sprintf("%s %s (%d)", arrow, title, len(sec.Rows))
	if !style.styled {
		return text
	}
	bg, fg := grouping.HeaderColors(sec.Group.Color, sec.Collapsed, style.dark)
	return lipgloss.NewStyle().
		Background(lipgloss.Color(bg)).
		Foreground(lipgloss.Color(fg)).
		Bold(true).
		Render(" " + text + " ")
}

func tabLine(r reconcile.Row, indent string, style listStyle) string {
	marker := "  "
	if r.Tab.Active {
		marker = "* "
	}
	var flags []string
	if r.Tab.Loading() {
		flags = append(flags, "◌")
	}
	if r.Tab.Muted {
		flags = append(flags, "⊘")
	} else if r.Tab.Audible {
		flags = append(flags, "♪")
	}
	suffix := ""
	if len(flags) > 0 {
		suffix = " " + strings.Join(flags, " ")
	}

	title := r.Tab.DisplayTitle()
	if style.width > 0 {
		title = panel.TruncateTitle(title, style.width-len(indent)-len(marker)-len([]rune(suffix)))
	}
	line := fmt.Sprintf("%s%s%s%s", indent, marker, title, suffix)
	if style.styled && r.Tab.Active {
		return lipgloss.NewStyle().Bold(true).Render(line)
	}
	return line
}
