package infra

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"auth-gateway/middleware/authgate/domain"
)

// maxBackendBody limita o corpo lido do backend (respostas JSON de API).
const maxBackendBody = 10 << 20

// cabeçalhos que não atravessam o gateway (hop-by-hop + os que o transporte recalcula)
var skipHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Proxy-Connection",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
	"Host",
	"Content-Length",
}

// HTTPBackend implementa domain.Backend sobre net/http.
//
// Todo erro de transporte (incluindo timeout do client e cancelamento do ctx)
// é embrulhado em domain.ErrBackendUnavailable. Não há retry.
type HTTPBackend struct {
	base   *url.URL
	client *http.Client
}

type BackendOption func(*HTTPBackend)

// WithHTTPClient substitui o client inteiro (o timeout passa a ser o dele).
func WithHTTPClient(c *http.Client) BackendOption {
	return func(b *HTTPBackend) { b.client = c }
}

func WithBackendTimeout(d time.Duration) BackendOption {
	return func(b *HTTPBackend) { b.client.Timeout = d }
}

func NewHTTPBackend(baseURL string, opts ...BackendOption) (*HTTPBackend, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("invalid backend url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid backend url %q: scheme and host are required", baseURL)
	}

	b := &HTTPBackend{
		base:   u,
		client: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

func (b *HTTPBackend) URL() string { return b.base.String() }

// Post envia o corpo bruto para path (ex.: "/auth").
func (b *HTTPBackend) Post(ctx context.Context, path string, body []byte) (domain.BackendResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.base.JoinPath(path).String(), bytes.NewReader(body))
	if err != nil {
		return domain.BackendResponse{}, fmt.Errorf("%w: %v", domain.ErrBackendUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return b.roundTrip(req)
}

// Do repassa método, endpoint, parâmetros e cabeçalhos do cliente.
func (b *HTTPBackend) Do(ctx context.Context, r domain.BackendRequest) (domain.BackendResponse, error) {
	u := b.base.JoinPath(r.Endpoint)
	u.RawQuery = url.Values(r.Params).Encode()

	var body io.Reader
	if len(r.Body) > 0 {
		body = bytes.NewReader(r.Body)
	}
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return domain.BackendResponse{}, fmt.Errorf("%w: %v", domain.ErrBackendUnavailable, err)
	}
	req.Header = endToEndHeaders(http.Header(r.Header))
	return b.roundTrip(req)
}

func (b *HTTPBackend) roundTrip(req *http.Request) (domain.BackendResponse, error) {
	resp, err := b.client.Do(req)
	if err != nil {
		return domain.BackendResponse{}, fmt.Errorf("%w: %v", domain.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBackendBody))
	if err != nil {
		return domain.BackendResponse{}, fmt.Errorf("%w: reading response: %v", domain.ErrBackendUnavailable, err)
	}

	return domain.BackendResponse{
		Status: resp.StatusCode,
		Header: endToEndHeaders(resp.Header),
		Body:   data,
	}, nil
}

// endToEndHeaders copia os cabeçalhos sem os hop-by-hop, nos dois sentidos.
func endToEndHeaders(in http.Header) http.Header {
	out := in.Clone()
	if out == nil {
		return make(http.Header)
	}
	for _, h := range skipHeaders {
		out.Del(h)
	}
	return out
}
