package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate reúne todos os problemas encontrados num único erro.
func Validate(cfg *Config) error {
	var errs []error

	if strings.TrimSpace(cfg.Backend.URL) == "" {
		errs = append(errs, errors.New("backend.url is required"))
	} else if u, err := url.Parse(cfg.Backend.URL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("backend.url %q must be an absolute http(s) URL", cfg.Backend.URL))
	}
	if cfg.Backend.Timeout < 0 {
		errs = append(errs, errors.New("backend.timeout must be >= 0"))
	}

	if cfg.Session.TTL <= 0 {
		errs = append(errs, errors.New("session.ttl must be > 0"))
	}
	if cfg.Session.KeyBytes < 4 || cfg.Session.KeyBytes > 64 {
		errs = append(errs, fmt.Errorf("session.key_bytes must be between 4 and 64, got %d", cfg.Session.KeyBytes))
	}

	if cfg.Abuse.Window <= 0 {
		errs = append(errs, errors.New("abuse.window must be > 0"))
	}
	if cfg.Abuse.MaxFailures <= 0 {
		errs = append(errs, errors.New("abuse.max_failures must be > 0"))
	}
	if cfg.Abuse.BlockDuration <= 0 {
		errs = append(errs, errors.New("abuse.block_duration must be > 0"))
	}

	if cfg.Stats.Redis.Enabled && strings.TrimSpace(cfg.Stats.Redis.Addr) == "" {
		errs = append(errs, errors.New("stats.redis.addr is required when stats.redis.enabled=true"))
	}

	switch strings.ToLower(cfg.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q is not one of debug, info, warn, error", cfg.Log.Level))
	}
	switch strings.ToLower(cfg.Log.Format) {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is not one of json, text", cfg.Log.Format))
	}

	return errors.Join(errs...)
}
