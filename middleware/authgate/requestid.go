package authgate

import (
	"net/http"

	"github.com/google/uuid"
)

// RequestIDHeader acompanha a requisição até o backend e volta na resposta.
const RequestIDHeader = "X-Request-ID"

// RequestID reaproveita o X-Request-ID do cliente ou gera um UUID v4.
// O valor é gravado no cabeçalho da requisição para ser repassado ao backend.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
			r.Header.Set(RequestIDHeader, id)
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}
