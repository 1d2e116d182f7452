package config

import (
	"os"
	"strconv"
	"time"
)

// applyEnvOverrides aplica AUTHGATE_*; variável vazia ou inválida mantém o valor atual.
func applyEnvOverrides(cfg *Config) {
	cfg.ListenAddr = getenvDefault("AUTHGATE_LISTEN_ADDR", cfg.ListenAddr)
	cfg.TrustXForwardedFor = getenvBoolDefault("AUTHGATE_TRUST_XFF", cfg.TrustXForwardedFor)

	cfg.Backend.URL = getenvDefault("AUTHGATE_BACKEND_URL", cfg.Backend.URL)
	cfg.Backend.Timeout = getenvDurationDefault("AUTHGATE_BACKEND_TIMEOUT", cfg.Backend.Timeout)

	cfg.Session.TTL = getenvDurationDefault("AUTHGATE_SESSION_TTL", cfg.Session.TTL)

	cfg.UserRole.AttributeName = getenvDefault("AUTHGATE_ROLE_ATTRIBUTE", cfg.UserRole.AttributeName)
	cfg.UserRole.PermissionsFile = getenvDefault("AUTHGATE_PERMISSIONS_FILE", cfg.UserRole.PermissionsFile)

	cfg.Concurrency.Max = getenvIntDefault("AUTHGATE_CONCURRENCY_MAX", cfg.Concurrency.Max)
	cfg.Concurrency.AcquireTimeout = getenvDurationDefault("AUTHGATE_CONCURRENCY_TIMEOUT", cfg.Concurrency.AcquireTimeout)

	cfg.Stats.Redis.Enabled = getenvBoolDefault("AUTHGATE_STATS_REDIS_ENABLED", cfg.Stats.Redis.Enabled)
	cfg.Stats.Redis.Addr = getenvDefault("AUTHGATE_STATS_REDIS_ADDR", cfg.Stats.Redis.Addr)
	if v, ok := os.LookupEnv("AUTHGATE_STATS_REDIS_PASSWORD"); ok {
		cfg.Stats.Redis.Password = v
	}
	cfg.Stats.Redis.DB = getenvIntDefault("AUTHGATE_STATS_REDIS_DB", cfg.Stats.Redis.DB)

	cfg.Admin.ListenAddr = getenvDefault("AUTHGATE_ADMIN_LISTEN_ADDR", cfg.Admin.ListenAddr)

	cfg.Log.Level = getenvDefault("AUTHGATE_LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getenvDefault("AUTHGATE_LOG_FORMAT", cfg.Log.Format)
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvIntDefault(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getenvBoolDefault(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getenvDurationDefault(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
