package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestLoad_AppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "gateway.yaml", "backend:\n  url: http://localhost:8081\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.ListenAddr)
	assert.Equal(t, 10*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, "/auth", cfg.Backend.AuthPath)
	assert.Equal(t, "/register", cfg.Backend.RegisterPath)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 8, cfg.Session.KeyBytes)
	assert.Equal(t, "KEY", cfg.Session.KeyParam)
	assert.Equal(t, 5*time.Second, cfg.Abuse.Window)
	assert.Equal(t, 5, cfg.Abuse.MaxFailures)
	assert.Equal(t, 24*time.Hour, cfg.Abuse.BlockDuration)
	assert.Equal(t, 100, cfg.Concurrency.Max)
	assert.Equal(t, "authgate", cfg.Admin.MetricsNamespace)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.False(t, cfg.RoleAuthorization())
}

func TestLoad_ParsesFullFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "gateway.yaml", `
listen_addr: ":9000"
trust_x_forwarded_for: true
backend:
  url: http://backend:8081/api
  timeout: 3s
session:
  ttl: 1h
  key_bytes: 16
abuse:
  window: 10s
  max_failures: 3
  block_duration: 30m
user_role:
  attribute_name: role
permissions:
  reports:
    GET: admin, analyst
    DELETE: [admin]
concurrency:
  max: -1
stats:
  redis:
    enabled: true
    addr: localhost:6379
    track_ips: true
admin:
  listen_addr: ":9090"
log:
  level: debug
  format: text
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.True(t, cfg.TrustXForwardedFor)
	assert.Equal(t, "http://backend:8081/api", cfg.Backend.URL)
	assert.Equal(t, 3*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, time.Hour, cfg.Session.TTL)
	assert.Equal(t, 16, cfg.Session.KeyBytes)
	assert.Equal(t, 3, cfg.Abuse.MaxFailures)
	assert.Equal(t, 30*time.Minute, cfg.Abuse.BlockDuration)
	assert.Equal(t, -1, cfg.Concurrency.Max)
	assert.True(t, cfg.RoleAuthorization())
	assert.Equal(t, RoleList{"admin", "analyst"}, cfg.Permissions["reports"]["GET"])
	assert.Equal(t, RoleList{"admin"}, cfg.Permissions["reports"]["DELETE"])
	assert.True(t, cfg.Stats.Redis.Enabled)
	assert.Equal(t, "authgate:stats", cfg.Stats.Redis.Prefix)
	assert.Equal(t, ":9090", cfg.Admin.ListenAddr)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "gateway.yaml", "backend:\n  url: http://file:8081\n  timeout: 3s\n")

	t.Setenv("AUTHGATE_BACKEND_URL", "http://env:8081")
	t.Setenv("AUTHGATE_BACKEND_TIMEOUT", "not-a-duration")
	t.Setenv("AUTHGATE_SESSION_TTL", "2h")
	t.Setenv("AUTHGATE_CONCURRENCY_MAX", "7")
	t.Setenv("AUTHGATE_TRUST_XFF", "true")
	t.Setenv("AUTHGATE_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://env:8081", cfg.Backend.URL)
	assert.Equal(t, 3*time.Second, cfg.Backend.Timeout, "invalid env values keep the file value")
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 7, cfg.Concurrency.Max)
	assert.True(t, cfg.TrustXForwardedFor)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_EnvOnly(t *testing.T) {
	t.Setenv("AUTHGATE_BACKEND_URL", "http://localhost:8081")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8081", cfg.Backend.URL)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read configuration file")

	bad := writeFile(t, dir, "bad.yaml", "backend: [\n")
	_, err = Load(bad)
	assert.ErrorContains(t, err, "failed to parse configuration file")

	noURL := writeFile(t, dir, "nourl.yaml", "listen_addr: ':1'\n")
	_, err = Load(noURL)
	assert.ErrorContains(t, err, "backend.url is required")
}

func TestLoad_PermissionsFileRelativeToConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "permission.yaml", `
reports:
  GET: analyst
  DELETE: admin
users:
  GET:
`)
	path := writeFile(t, dir, "gateway.yaml", `
backend:
  url: http://localhost:8081
user_role:
  attribute_name: role
  permissions_file: permission.yaml
permissions:
  reports:
    GET: [admin]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, RoleList{"admin"}, cfg.Permissions["reports"]["GET"], "inline entries win over the file")
	assert.Equal(t, RoleList{"admin"}, cfg.Permissions["reports"]["DELETE"])
	assert.Empty(t, cfg.Permissions["users"]["GET"])
}

func TestLoad_PermissionsIgnoredWithoutRoleAttribute(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "gateway.yaml", `
backend:
  url: http://localhost:8081
user_role:
  permissions_file: does-not-exist.yaml
`)

	_, err := Load(path)
	assert.NoError(t, err)
}

func TestLoad_MissingPermissionsFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "gateway.yaml", `
backend:
  url: http://localhost:8081
user_role:
  attribute_name: role
  permissions_file: does-not-exist.yaml
`)

	_, err := Load(path)
	assert.ErrorContains(t, err, "failed to read permissions file")
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	cfg.Backend.URL = "localhost:8081"
	cfg.Session.KeyBytes = 2
	cfg.Stats.Redis.Enabled = true
	cfg.Log.Format = "xml"

	err := Validate(cfg)
	require.Error(t, err)
	assert.ErrorContains(t, err, "backend.url")
	assert.ErrorContains(t, err, "session.key_bytes")
	assert.ErrorContains(t, err, "stats.redis.addr")
	assert.ErrorContains(t, err, "log.format")
}

func TestRoleList_RejectsMappings(t *testing.T) {
	var p Permissions
	err := yaml.Unmarshal([]byte("reports:\n  GET:\n    admin: true\n"), &p)
	assert.ErrorContains(t, err, "comma-separated string or a list")
}

func TestPermissions_TableAndMerge(t *testing.T) {
	base := Permissions{"reports": {"GET": {"analyst"}, "POST": {"admin"}}}
	over := Permissions{"reports": {"GET": {"admin"}}, "users": {"DELETE": {"root"}}}

	merged := base.Merge(over)
	assert.Equal(t, map[string]map[string][]string{
		"reports": {"GET": {"admin"}, "POST": {"admin"}},
		"users":   {"DELETE": {"root"}},
	}, merged.Table())

	assert.Equal(t, RoleList{"analyst"}, base["reports"]["GET"], "merge does not mutate its receiver")
}

func TestLoad_SampleConfiguration(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "gateway.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 16, cfg.Session.KeyBytes)
	assert.Equal(t, "role", cfg.UserRole.AttributeName)
	assert.Equal(t, RoleList{"admin", "analyst"}, cfg.Permissions["reports"]["GET"])
}
