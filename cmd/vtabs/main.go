package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pkt.systems/psi"
	"pkt.systems/pslog"

	"github.com/b/vertical-tabs/pkg/config"
	"github.com/b/vertical-tabs/pkg/logx"
	"github.com/b/vertical-tabs/pkg/paths"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	psi.Run(submain)
}

func submain(ctx context.Context) int {
	logger := logx.Console(os.Stderr, os.Getenv("VTABS_LOG_LEVEL"))
	ctx = pslog.ContextWithLogger(ctx, logger)

	root := newRootCmd()
	root.SetArgs(os.Args[1:])

	if err := root.ExecuteContext(ctx); err != nil {
		pslog.Ctx(ctx).With("err", err).Error("vtabs command failed")
		return 1
	}
	return 0
}

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	logLevel   string
}

// load reads the config file and applies flag overrides.
func (o *globalOptions) load() (config.Config, error) {
	cfg, _, err := config.Load(o.configPath)
	if err != nil {
		return cfg, err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	return cfg, nil
}

// configFile is the config path in use, whether or not it exists yet.
func (o *globalOptions) configFile() string {
	if o.configPath != "" {
		return o.configPath
	}
	return paths.ConfigPath()
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	panel := newPanelCmd(opts)

	root := &cobra.Command{
		Use:   "vtabs",
		Short: "Browser tabs as a vertical terminal side panel",
		Long: `vtabs mirrors the tabs and tab groups of one browser window into a terminal
side panel. Tabs can be activated, closed, moved, grouped and searched from the panel.

Run without a command to start the panel.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE:          panel.RunE,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (default is $XDG_CONFIG_HOME/vtabs/config.yaml)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: trace, debug, info, error")
	root.Flags().AddFlagSet(panel.Flags())

	root.AddCommand(panel)
	root.AddCommand(newAttachCmd(opts))
	root.AddCommand(newTabsCmd(opts))
	root.AddCommand(newThemeCmd(opts))
	root.AddCommand(newConfigCmd(opts))
	root.AddCommand(newBridgeCmd(opts))
	root.AddCommand(newVersionCmd())

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "vtabs %s\n", version)
			return err
		},
	}
}
