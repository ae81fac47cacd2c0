package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mithrel/marketmind/internal/config"
	"github.com/mithrel/marketmind/internal/wire"
)

type ctxKey string

const (
	appKey ctxKey = "app"
	cfgKey ctxKey = "cfg"

	// Commands annotated with skipApp only need the loaded config.
	skipApp = "marketmind/skip-app"
)

// Execute is the entrypoint: it builds the root cobra.Command
// and runs it under ctx.
func Execute(ctx context.Context) error {
	return executeRoot(ctx, NewRootCmd())
}

// executeRoot runs root and closes the App the executed command built,
// whether or not the command failed.
func executeRoot(ctx context.Context, root *cobra.Command) error {
	c, err := root.ExecuteContextC(ctx)
	if c != nil && c.Context() != nil {
		if app, ok := c.Context().Value(appKey).(*wire.App); ok {
			if cerr := app.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}
	}
	return err
}

// persistent flag name -> config key
var globalFlagKeys = map[string]string{
	"base-url":      "api.base_url",
	"origin":        "page.origin",
	"session":       "session.id",
	"session-store": "session.store",
	"log-file":      "log.file",
	"log-level":     "log.level",
	"style":         "tui.style",
}

// NewRootCmd constructs the Cobra root command and wires dependencies.
func NewRootCmd(opts ...wire.Option) *cobra.Command {
	var cfgPath string

	cmd := &cobra.Command{
		Use:           "marketmind-cli",
		Short:         "MarketMind: AI marketing, sales and lead scoring from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		Annotations:   map[string]string{skipApp: "true"},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v := viper.New()
			if cfgPath != "" {
				v.SetConfigFile(cfgPath)
			}
			if err := config.Load(cmd.Context(), v); err != nil {
				return err
			}
			applyConfigFlagOverrides(cmd, v, globalFlagKeys)
			ctx := context.WithValue(cmd.Context(), cfgKey, v)
			if needsApp(cmd) {
				if err := config.CheckConfigValidity(v); err != nil {
					return err
				}
				app, err := wire.BuildApp(ctx, v, opts...)
				if err != nil {
					return err
				}
				ctx = context.WithValue(ctx, appKey, app)
			}
			cmd.SetContext(ctx)
			return nil
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&cfgPath, "config", "", "path to config file (toml)")
	pf.String("base-url", "", "backend address, overrides origin resolution")
	pf.String("origin", "", "page origin the client acts as")
	pf.String("session", "", "session id (default derived per terminal)")
	pf.String("session-store", "", "session storage backend: sqlite|memory")
	pf.String("log-file", "", "write logs to this file")
	pf.String("log-level", "", "quiet|info")
	pf.String("style", "", "glamour style for pretty output")

	cmd.AddCommand(newGenerateCmd())
	cmd.AddCommand(newHistoryCmd())
	cmd.AddCommand(newTUICmd())
	cmd.AddCommand(newLoginCmd())
	cmd.AddCommand(newLogoutCmd())
	cmd.AddCommand(newWhoamiCmd())
	cmd.AddCommand(newSessionCmd())
	cmd.AddCommand(newTokenCmd())
	cmd.AddCommand(newCompletionCmd())
	cmd.AddCommand(newConfigCmd())

	cmd.Run = func(cmd *cobra.Command, args []string) { _ = cmd.Help() }

	return cmd
}

func needsApp(cmd *cobra.Command) bool {
	if cmd.Annotations[skipApp] != "" {
		return false
	}
	switch cmd.Name() {
	case "help", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
		return false
	}
	return true
}

func getApp(cmd *cobra.Command) *wire.App {
	v := cmd.Context().Value(appKey)
	if v == nil {
		fmt.Fprintln(os.Stderr, "internal error: app not initialized")
		os.Exit(1)
	}
	return v.(*wire.App)
}

func getConfig(cmd *cobra.Command) *viper.Viper {
	if v, ok := cmd.Context().Value(cfgKey).(*viper.Viper); ok {
		return v
	}
	return viper.New()
}
