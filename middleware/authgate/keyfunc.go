package authgate

import (
	"net"
	"net/http"
	"strings"
)

// KeyFunc extrai a identidade do cliente usada no rastreamento de abuso.
type KeyFunc func(r *http.Request) string

// ClientIPFunc usa o host de RemoteAddr, ou o primeiro IP de X-Forwarded-For
// quando o gateway está atrás de um proxy confiável.
func ClientIPFunc(trustXFF bool) KeyFunc {
	return func(r *http.Request) string {
		if trustXFF {
			// pega o primeiro IP do X-Forwarded-For (cliente original)
			if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
				ip, _, _ := strings.Cut(xff, ",")
				if ip = strings.TrimSpace(ip); ip != "" {
					return ip
				}
			}
		}

		// fallback: RemoteAddr
		host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
		if err == nil && host != "" {
			return host
		}
		if r.RemoteAddr != "" {
			return r.RemoteAddr
		}
		return "unknown"
	}
}
