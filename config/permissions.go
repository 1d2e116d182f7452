package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// RoleList aceita tanto "admin, analyst" quanto [admin, analyst] no YAML.
type RoleList []string

func (l *RoleList) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		*l = splitRoles(n.Value)
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := n.Decode(&items); err != nil {
			return err
		}
		*l = items
		return nil
	default:
		return fmt.Errorf("line %d: roles must be a comma-separated string or a list", n.Line)
	}
}

func splitRoles(s string) RoleList {
	var out RoleList
	for _, r := range strings.Split(s, ",") {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}

// Permissions é endpoint -> método HTTP -> papéis permitidos.
//
//	reports:
//	  GET: admin, analyst
//	  DELETE: [admin]
type Permissions map[string]map[string]RoleList

// LoadPermissions lê um arquivo YAML só com a tabela de permissões.
func LoadPermissions(path string) (Permissions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read permissions file %q: %w", path, err)
	}
	var p Permissions
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse permissions file %q: %w", path, err)
	}
	return p, nil
}

// Merge devolve p com as entradas de over por cima (por endpoint+método).
func (p Permissions) Merge(over Permissions) Permissions {
	out := make(Permissions, len(p)+len(over))
	for _, src := range []Permissions{p, over} {
		for endpoint, methods := range src {
			if out[endpoint] == nil {
				out[endpoint] = make(map[string]RoleList, len(methods))
			}
			for method, roles := range methods {
				out[endpoint][method] = roles
			}
		}
	}
	return out
}

// Table converte para o formato aceito por infra.NewPermissionTable.
func (p Permissions) Table() map[string]map[string][]string {
	out := make(map[string]map[string][]string, len(p))
	for endpoint, methods := range p {
		m := make(map[string][]string, len(methods))
		for method, roles := range methods {
			m[method] = []string(roles)
		}
		out[endpoint] = m
	}
	return out
}
