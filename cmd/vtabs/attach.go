package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/b/vertical-tabs/pkg/config"
	"github.com/b/vertical-tabs/pkg/tmux"
)

func newAttachCmd(opts *globalOptions) *cobra.Command {
	var width int
	var side string
	var source string
	cmd := &cobra.Command{
		Use:   "attach",
		Short: "Open the panel as a side pane of the current tmux window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !tmux.InSession() {
				return tmux.ErrNotInSession
			}
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if width > 0 {
				cfg.Panel.Width = width
			}
			if side != "" {
				cfg.Panel.Side = side
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			split := tmux.SplitOptions{
				Width:   cfg.Panel.Width,
				Left:    cfg.Panel.Side == config.SideLeft,
				Command: panelCommand(opts, source),
			}
			id, created, err := tmux.NewClient().OpenSidePane(split)
			if err != nil {
				return err
			}
			if created {
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "opened panel in pane %s\n", id)
			} else {
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "panel already open in pane %s\n", id)
			}
			return err
		},
	}
	cmd.Flags().IntVarP(&width, "width", "w", 0, "pane width in columns (default from config)")
	cmd.Flags().StringVar(&side, "side", "", "left or right (default from config)")
	cmd.Flags().StringVarP(&source, "source", "s", "", "tab source passed to the panel")
	return cmd
}

// panelCommand is the shell command the new pane runs. It points at this binary so an
// uninstalled build still works.
func panelCommand(opts *globalOptions, source string) string {
	bin := tmux.PaneCommand
	if exe, err := os.Executable(); err == nil {
		bin = exe
	}
	parts := []string{shellQuote(bin), "panel"}
	if opts.configPath != "" {
		parts = append(parts, "--config", shellQuote(opts.configPath))
	}
	if opts.logLevel != "" {
		parts = append(parts, "--log-level", shellQuote(opts.logLevel))
	}
	if source != "" {
		parts = append(parts, "--source", shellQuote(source))
	}
	return strings.Join(parts, " ")
}

func shellQuote(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\n'\"\\$`;&|<>()*?[]#~") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
