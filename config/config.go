package config

import "time"

type Config struct {
	ListenAddr         string `yaml:"listen_addr"`
	TrustXForwardedFor bool   `yaml:"trust_x_forwarded_for"`
	MaxBodyBytes       int64  `yaml:"max_body_bytes"`

	Backend     BackendConfig     `yaml:"backend"`
	Session     SessionConfig     `yaml:"session"`
	Abuse       AbuseConfig       `yaml:"abuse"`
	UserRole    UserRoleConfig    `yaml:"user_role"`
	Permissions Permissions       `yaml:"permissions"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Stats       StatsConfig       `yaml:"stats"`
	Admin       AdminConfig       `yaml:"admin"`
	Log         LogConfig         `yaml:"log"`
}

type BackendConfig struct {
	URL          string        `yaml:"url"`
	Timeout      time.Duration `yaml:"timeout"`
	AuthPath     string        `yaml:"auth_path"`
	RegisterPath string        `yaml:"register_path"`
}

type SessionConfig struct {
	TTL           time.Duration `yaml:"ttl"`
	KeyBytes      int           `yaml:"key_bytes"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
	KeyParam      string        `yaml:"key_param"`
}

type AbuseConfig struct {
	Window        time.Duration `yaml:"window"`
	MaxFailures   int           `yaml:"max_failures"`
	BlockDuration time.Duration `yaml:"block_duration"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// UserRoleConfig liga a autorização por papel. AttributeName vazio desliga
// tudo: sessões sem papel e nenhuma checagem de permissão.
type UserRoleConfig struct {
	AttributeName   string `yaml:"attribute_name"`
	PermissionsFile string `yaml:"permissions_file"`
}

// ConcurrencyConfig: Max negativo desliga o limite.
type ConcurrencyConfig struct {
	Max            int           `yaml:"max"`
	AcquireTimeout time.Duration `yaml:"acquire_timeout"`
}

type StatsConfig struct {
	Redis RedisStatsConfig `yaml:"redis"`
}

type RedisStatsConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"`
	Bucket   string        `yaml:"bucket"`
	TrackIPs bool          `yaml:"track_ips"`
}

// AdminConfig: ListenAddr vazio desliga /metrics e /healthz.
type AdminConfig struct {
	ListenAddr       string `yaml:"listen_addr"`
	MetricsNamespace string `yaml:"metrics_namespace"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// RoleAuthorization reporta se a autorização por papel está ligada.
func (c *Config) RoleAuthorization() bool {
	return c.UserRole.AttributeName != ""
}
