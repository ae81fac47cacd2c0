package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var (
	validTokenProviders = []string{"none", "config", "keyring"}
	validSessionStores  = []string{"sqlite", "memory"}
	validOutputModes    = []string{"pretty", "text", "html", "json"}
	validLogLevels      = []string{"quiet", "info"}
	validStyles         = []string{"dark", "light", "notty", "auto", "dracula", "pink", "tokyo-night", "ascii"}
)

// CheckConfigValidity reports every problem in v as one error.
func CheckConfigValidity(v *viper.Viper) error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if strings.TrimSpace(v.GetString("data_dir")) == "" {
		add("data_dir is required")
	}

	if origin := strings.TrimSpace(v.GetString("page.origin")); origin != "" && origin != "null" {
		if u, err := url.Parse(origin); err != nil || u.Scheme == "" {
			add("page.origin %q is not an origin", origin)
		}
	}
	if base := strings.TrimSpace(v.GetString("api.base_url")); base != "" {
		if u, err := url.Parse(base); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			add("api.base_url %q must be an http(s) url", base)
		}
	}

	checkDuration(v, "api.timeout", true, add)
	checkDuration(v, "session.ttl", false, add)
	checkDuration(v, "pipeline.stage_interval", false, add)
	checkDuration(v, "output.feedback_duration", false, add)

	provider := strings.ToLower(strings.TrimSpace(v.GetString("api.token_provider")))
	checkEnum(provider, "api.token_provider", validTokenProviders, add)
	if provider == "config" && strings.TrimSpace(v.GetString("api.token")) == "" {
		add("api.token is required when api.token_provider = config")
	}

	checkEnum(strings.ToLower(v.GetString("session.store")), "session.store", validSessionStores, add)
	checkEnum(strings.ToLower(v.GetString("output.mode")), "output.mode", validOutputModes, add)
	checkEnum(strings.ToLower(v.GetString("log.level")), "log.level", validLogLevels, add)
	checkEnum(strings.ToLower(v.GetString("tui.style")), "tui.style", validStyles, add)

	if v.GetInt("history.limit") <= 0 {
		add("history.limit must be greater than 0")
	}

	if len(problems) == 0 {
		return nil
	}
	return errors.New("invalid config:\n  - " + strings.Join(problems, "\n  - "))
}

func checkDuration(v *viper.Viper, key string, allowZero bool, add func(string, ...any)) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		add("%s is required", key)
		return
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		add("%s %q is not a duration", key, raw)
		return
	}
	if d < 0 || (d == 0 && !allowZero) {
		add("%s must be greater than 0", key)
	}
}

func checkEnum(val, key string, allowed []string, add func(string, ...any)) {
	for _, a := range allowed {
		if val == a {
			return
		}
	}
	add("%s must be one of %s (got %q)", key, strings.Join(allowed, ", "), val)
}
