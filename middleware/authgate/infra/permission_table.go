package infra

import (
	"slices"
	"strings"
)

type permissionKey struct {
	endpoint string
	method   string
}

// PermissionTable mapeia (endpoint, método) para os papéis permitidos.
//
// É montada uma vez na inicialização e nunca mais alterada, por isso leituras
// concorrentes dispensam lock.
type PermissionTable struct {
	entries map[permissionKey][]string
}

// NewPermissionTable monta a tabela a partir de endpoint -> método -> papéis.
//
// Métodos são normalizados para maiúsculas e papéis são aparados; uma lista que
// fica vazia depois disso não gera entrada (par irrestrito).
func NewPermissionTable(perms map[string]map[string][]string) *PermissionTable {
	t := &PermissionTable{entries: make(map[permissionKey][]string)}
	for endpoint, methods := range perms {
		for method, roles := range methods {
			clean := make([]string, 0, len(roles))
			for _, r := range roles {
				if r = strings.TrimSpace(r); r != "" && !slices.Contains(clean, r) {
					clean = append(clean, r)
				}
			}
			if len(clean) == 0 {
				continue
			}
			t.entries[newPermissionKey(endpoint, method)] = clean
		}
	}
	return t
}

func newPermissionKey(endpoint, method string) permissionKey {
	return permissionKey{
		endpoint: strings.Trim(strings.TrimSpace(endpoint), "/"),
		method:   strings.ToUpper(strings.TrimSpace(method)),
	}
}

// AllowedRoles retorna restricted=false quando o par não tem entrada.
func (t *PermissionTable) AllowedRoles(endpoint, method string) ([]string, bool) {
	roles, ok := t.entries[newPermissionKey(endpoint, method)]
	if !ok {
		return nil, false
	}
	return slices.Clone(roles), true
}

func (t *PermissionTable) IsAuthorized(endpoint, method, role string) bool {
	roles, ok := t.entries[newPermissionKey(endpoint, method)]
	if !ok {
		return true
	}
	if role == "" {
		return false
	}
	return slices.Contains(roles, role)
}

func (t *PermissionTable) Len() int { return len(t.entries) }
