package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// applyDefaults seeds Viper with defaults defined in GetConfigOptions.
func applyDefaults(v *viper.Viper) {
	for _, o := range GetConfigOptions() {
		v.SetDefault(o.Key, o.Default)
	}
}

// Load resolves configuration with precedence: defaults < file < env.
// Flags are bound on top by the CLI.
func Load(ctx context.Context, v *viper.Viper) error {
	if v.ConfigFileUsed() == "" {
		v.SetConfigName("config")
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			v.AddConfigPath(filepath.Join(xdg, "marketmind"))
		}
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "marketmind"))
		}
		v.AddConfigPath(".")
	}

	applyDefaults(v)

	// A missing file is fine; a broken one is not.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	// MARKETMIND_API_BASE_URL etc.
	v.SetEnvPrefix("marketmind")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if v.GetString("data_dir") == "" {
		v.Set("data_dir", defaultDataDir())
	}
	if v.GetString("output.download_dir") == "" {
		v.Set("output.download_dir", defaultDownloadDir())
	}
	return nil
}

// defaultDataDir resolves $XDG_DATA_HOME/marketmind or ~/.local/share/marketmind.
func defaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "marketmind")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "marketmind")
}

func defaultDownloadDir() string {
	if xdg := os.Getenv("XDG_DOWNLOAD_DIR"); xdg != "" {
		return xdg
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, "Downloads")
}

// DefaultConfigPath resolves the standard config.toml location.
func DefaultConfigPath() string {
	xdg := os.Getenv("XDG_CONFIG_HOME")
	if xdg == "" {
		home, _ := os.UserHomeDir()
		xdg = filepath.Join(home, ".config")
	}
	return filepath.Join(xdg, "marketmind", "config.toml")
}

type ConfigOption struct {
	Key     string
	Default any
	Comment string
}

// GetConfigOptions returns the default configuration options and their meanings.
// This is the single source of truth for default values and generator output.
func GetConfigOptions() []ConfigOption {
	return []ConfigOption{
		{Key: "data_dir", Default: defaultDataDir(), Comment: "Directory for local state; session DB is data_dir/session.db"},

		{Key: "page.origin", Default: "", Comment: "Origin the client acts as; empty, file: and loopback origins use http://127.0.0.1:5001"},

		{Key: "api.base_url", Default: "", Comment: "Backend address; overrides origin resolution when set"},
		{Key: "api.timeout", Default: "90s", Comment: "Upper bound for one generation request (0 disables)"},
		{Key: "api.token_provider", Default: "none", Comment: "Where the bearer token comes from: none, config or keyring"},
		{Key: "api.token", Default: "", Comment: "Bearer token used when token_provider = config"},

		{Key: "session.id", Default: "", Comment: "Session id; empty derives one per terminal"},
		{Key: "session.store", Default: "sqlite", Comment: "Session storage backend: sqlite or memory"},
		{Key: "session.ttl", Default: "12h", Comment: "Idle sessions older than this are purged on start"},

		{Key: "history.limit", Default: 5, Comment: "Entries kept per output area"},

		{Key: "pipeline.stage_interval", Default: "1s", Comment: "Delay between progress steps while waiting"},
		{Key: "pipeline.discard_stale", Default: true, Comment: "Drop a response when a newer request for the same output started"},

		{Key: "output.feedback_duration", Default: "2s", Comment: "How long Copied!/Done! stay visible"},
		{Key: "output.download_dir", Default: defaultDownloadDir(), Comment: "Directory exports are written to"},
		{Key: "output.mode", Default: "pretty", Comment: "Default generate output: pretty, text, html or json"},
		{Key: "output.pager", Default: "", Comment: "Pager for history listings; empty uses $PAGER, then less -FRSX; off disables"},

		{Key: "log.file", Default: "", Comment: "Log file; empty logs to stderr (the TUI always needs a file to log)"},
		{Key: "log.level", Default: "quiet", Comment: "quiet or info"},

		{Key: "tui.style", Default: "dark", Comment: "Glamour style for rendered output: dark, light, notty or auto"},
	}
}

// ResolveDataDir expands a leading ~ in data_dir.
func ResolveDataDir(v *viper.Viper) string {
	return expandHome(v.GetString("data_dir"), defaultDataDir())
}

// ResolveSessionDSN returns the sqlite DSN of the session store.
func ResolveSessionDSN(v *viper.Viper) string {
	return "sqlite://" + filepath.Join(ResolveDataDir(v), "session.db")
}

// ResolveDownloadDir expands a leading ~ in output.download_dir.
func ResolveDownloadDir(v *viper.Viper) string {
	return expandHome(v.GetString("output.download_dir"), defaultDownloadDir())
}

func expandHome(dir, fallback string) string {
	if dir == "" {
		dir = fallback
	}
	if len(dir) > 0 && dir[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, dir[1:])
		}
	}
	return dir
}
