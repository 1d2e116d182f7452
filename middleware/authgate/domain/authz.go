package domain

// Authorizer responde se um papel pode invocar um par (endpoint, método).
//
// Um par sem entrada configurada é irrestrito: qualquer chamador autenticado
// passa, inclusive sem papel.
type Authorizer interface {
	AllowedRoles(endpoint, method string) (roles []string, restricted bool)
	IsAuthorized(endpoint, method, role string) bool
}
