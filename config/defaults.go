package config

import "time"

const (
	DefaultListenAddr    = ":8000"
	DefaultMaxBodyBytes  = 1 << 20
	DefaultAuthPath      = "/auth"
	DefaultRegisterPath  = "/register"
	DefaultKeyParam      = "KEY"
	DefaultKeyBytes      = 8
	DefaultConcurrency   = 100
	DefaultStatsPrefix   = "authgate:stats"
	DefaultMetricsPrefix = "authgate"
)

// ApplyDefaults preenche apenas os campos não definidos.
func ApplyDefaults(cfg *Config) {
	setString(&cfg.ListenAddr, DefaultListenAddr)
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}

	setDuration(&cfg.Backend.Timeout, 10*time.Second)
	setString(&cfg.Backend.AuthPath, DefaultAuthPath)
	setString(&cfg.Backend.RegisterPath, DefaultRegisterPath)

	setDuration(&cfg.Session.TTL, 24*time.Hour)
	setDuration(&cfg.Session.SweepInterval, 60*time.Second)
	setString(&cfg.Session.KeyParam, DefaultKeyParam)
	if cfg.Session.KeyBytes == 0 {
		cfg.Session.KeyBytes = DefaultKeyBytes
	}

	setDuration(&cfg.Abuse.Window, 5*time.Second)
	setDuration(&cfg.Abuse.BlockDuration, 24*time.Hour)
	setDuration(&cfg.Abuse.SweepInterval, time.Minute)
	if cfg.Abuse.MaxFailures == 0 {
		cfg.Abuse.MaxFailures = 5
	}

	if cfg.Concurrency.Max == 0 {
		cfg.Concurrency.Max = DefaultConcurrency
	}

	setString(&cfg.Stats.Redis.Prefix, DefaultStatsPrefix)
	setDuration(&cfg.Stats.Redis.TTL, 24*time.Hour)
	setString(&cfg.Stats.Redis.Bucket, "minute")

	setString(&cfg.Admin.MetricsNamespace, DefaultMetricsPrefix)

	setString(&cfg.Log.Level, "info")
	setString(&cfg.Log.Format, "json")
}

func setString(p *string, def string) {
	if *p == "" {
		*p = def
	}
}

func setDuration(p *time.Duration, def time.Duration) {
	if *p == 0 {
		*p = def
	}
}
