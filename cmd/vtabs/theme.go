package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/b/vertical-tabs/pkg/colors"
	"github.com/b/vertical-tabs/pkg/logx"
	"github.com/b/vertical-tabs/pkg/paths"
	"github.com/b/vertical-tabs/pkg/prefs"
)

func newThemeCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme",
		Short: "List or choose panel themes",
	}
	cmd.AddCommand(newThemeListCmd(opts))
	cmd.AddCommand(newThemeSetCmd(opts))
	return cmd
}

// themeStore opens the saved theme selection on top of the configured default.
func themeStore(cmd *cobra.Command, opts *globalOptions) (*colors.Store, *prefs.FileStore, error) {
	cfg, err := opts.load()
	if err != nil {
		return nil, nil, err
	}
	file := prefs.NewFileStore(paths.StatePath(prefs.FileName))
	log := logx.Console(cmd.ErrOrStderr(), cfg.Log.Level)
	store := colors.NewStore(file, colors.NewBackgroundDetector(), log)
	mode, _ := colors.ParseThemeMode(cfg.Theme.Mode)
	store.Apply(cfg.Theme.Preset, mode)
	store.Load(cmd.Context())
	return store, file, nil
}

func newThemeListCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List theme presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := themeStore(cmd, opts)
			if err != nil {
				return err
			}
			styled := listStyleFor(cmd.OutOrStdout()).styled
			return writePresets(cmd.OutOrStdout(), store, styled)
		},
	}
}

func writePresets(w io.Writer, store *colors.Store, styled bool) error {
	selected, mode := store.Selection()
	for _, p := range colors.Presets {
		mark := " "
		if p.ID == selected {
			mark = "*"
		}
		swatch := ""
		if styled {
			swatch = lipgloss.NewStyle().Foreground(lipgloss.Color(p.Swatch)).Render("██") + " "
		}
		note := ""
		if p.AlwaysDark {
			note = " (always dark)"
		}
		if _, err := fmt.Fprintf(w, "%s %s%-13s %s%s\n", mark, swatch, p.ID, p.Label, note); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "\nmode: %s (%s)\n", mode, store.Current().Effective())
	return err
}

func newThemeSetCmd(opts *globalOptions) *cobra.Command {
	var modeFlag string
	cmd := &cobra.Command{
		Use:       "set <preset>",
		Short:     "Select a theme preset and optionally the light/dark mode",
		Args:      cobra.ExactArgs(1),
		ValidArgs: colors.ListPresets(),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, ok := colors.GetPreset(args[0]); !ok {
				return fmt.Errorf("unknown preset %q (try: vtabs theme list)", args[0])
			}
			var mode colors.ThemeMode
			if modeFlag != "" {
				m, err := colors.ParseThemeMode(modeFlag)
				if err != nil {
					return err
				}
				mode = m
			}

			store, file, err := themeStore(cmd, opts)
			if err != nil {
				return err
			}
			resolved := store.Apply(args[0], mode)
			presetID, selectedMode := store.Selection()
			rec := prefs.Record{PresetID: presetID, Mode: string(selectedMode)}
			if err := file.Set(cmd.Context(), prefs.ThemeKey, rec); err != nil {
				return fmt.Errorf("failed to save theme: %w", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "theme set to %s (%s)\n", resolved.Label, selectedMode)
			return err
		},
	}
	cmd.Flags().StringVarP(&modeFlag, "mode", "m", "", "auto, dark or light")
	return cmd
}
