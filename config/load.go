package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Load lê o arquivo YAML em path (path vazio: só ambiente + padrões), aplica as
// variáveis AUTHGATE_*, os padrões e valida. Com autorização por papel ligada,
// também carrega user_role.permissions_file; caminhos relativos partem do
// diretório do arquivo de configuração.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg)
	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	if cfg.RoleAuthorization() && cfg.UserRole.PermissionsFile != "" {
		permPath := cfg.UserRole.PermissionsFile
		if path != "" && !filepath.IsAbs(permPath) {
			permPath = filepath.Join(filepath.Dir(path), permPath)
		}
		fromFile, err := LoadPermissions(permPath)
		if err != nil {
			return nil, err
		}
		cfg.Permissions = fromFile.Merge(cfg.Permissions)
	}

	return &cfg, nil
}
