package domain

import "context"

// BackendRequest é uma chamada genérica repassada ao backend.
//
// Params e Header usam o mesmo formato de url.Values / http.Header, sem
// amarrar este pacote a net/http.
type BackendRequest struct {
	Method   string
	Endpoint string
	Params   map[string][]string
	Header   map[string][]string
	Body     []byte
}

// BackendResponse é a resposta do backend, repassada ao cliente sem alterações.
type BackendResponse struct {
	Status int
	Header map[string][]string
	Body   []byte
}

// Backend é o serviço protegido pelo gateway.
//
// Falhas de transporte (conexão recusada, timeout, cancelamento) retornam erro
// que satisfaz errors.Is(err, ErrBackendUnavailable). Falhas de aplicação
// reportadas pelo backend (ex.: credenciais inválidas) são apenas respostas.
type Backend interface {
	Post(ctx context.Context, path string, body []byte) (BackendResponse, error)
	Do(ctx context.Context, req BackendRequest) (BackendResponse, error)
}
