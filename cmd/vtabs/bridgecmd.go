package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/b/vertical-tabs/pkg/bridge"
)

func newBridgeCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bridge",
		Short: "Browser extension bridge settings",
	}

	var regenerate bool
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Print the token the browser extension connects with",
		Long: `Print the shared token the companion extension must send when it connects.
The token is created on first use. --regenerate replaces it; connected
extensions keep working until they reconnect.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			path := bridge.DefaultTokenPath()
			var token string
			if regenerate {
				token, err = bridge.RegenerateToken(path)
			} else {
				token, err = bridge.LoadOrGenerateToken(path)
			}
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\nws://%s:%d/ws?token=%s\n", token, cfg.Bridge.Host, cfg.Bridge.Port, token)
			return err
		},
	}
	tokenCmd.Flags().BoolVar(&regenerate, "regenerate", false, "replace the token with a new one")

	cmd.AddCommand(tokenCmd)
	return cmd
}
