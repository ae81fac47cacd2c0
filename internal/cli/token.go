package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mithrel/marketmind/internal/keys"
)

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the backend API token",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set [token]",
		Short: "Store the API token (reads stdin when omitted)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := tokenStore(cmd)
			if err != nil {
				return err
			}
			var tok string
			if len(args) == 1 {
				tok = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read token: %w", err)
				}
				tok = line
			}
			tok = strings.TrimSpace(tok)
			if tok == "" {
				return fmt.Errorf("empty token")
			}
			if err := store.Put(keys.DefaultTokenID, tok); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Token stored")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove the stored API token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := tokenStore(cmd)
			if err != nil {
				return err
			}
			if err := store.Delete(keys.DefaultTokenID); err != nil && !errors.Is(err, keys.ErrKeyNotFound) {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Token cleared")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Report whether a token is configured",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			provider := app.Cfg.GetString("api.token_provider")
			if provider == "keyring" && !keys.KeyringAvailable() {
				return errKeyringUnavailable
			}
			tok, err := keys.Source{Store: app.Tokens}.Token(cmd.Context())
			if err != nil {
				return err
			}
			state := "not set"
			if tok != "" {
				state = "set"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "provider=%s token=%s\n", provider, state)
			return nil
		},
	})
	return cmd
}

var errKeyringUnavailable = errors.New("system keyring unavailable: set api.token_provider to config and put the token in api.token")

func tokenStore(cmd *cobra.Command) (keys.TokenStore, error) {
	app := getApp(cmd)
	switch app.Cfg.GetString("api.token_provider") {
	case "keyring":
		if !keys.KeyringAvailable() {
			return nil, errKeyringUnavailable
		}
		return app.Tokens, nil
	case "config":
		return nil, fmt.Errorf("api.token_provider is config: edit api.token in the config file instead")
	default:
		return nil, fmt.Errorf("no token provider configured: set api.token_provider to keyring")
	}
}
