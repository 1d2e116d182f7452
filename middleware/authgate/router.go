package authgate

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"auth-gateway/middleware/authgate/application"
	"auth-gateway/middleware/authgate/domain"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"
)

const blockedDetail = "IP blocked due to repeated invalid requests."

type Options struct {
	Engine             *application.Engine
	ClientIP           KeyFunc
	TrustXForwardedFor bool
	MaxBodyBytes       int64
	Concurrency        ConcurrencyOptions
	Logger             *slog.Logger
	// BlockedLogInterval espaça os logs de IP bloqueado; um cliente banido
	// insistindo não deve inundar o log.
	BlockedLogInterval time.Duration
}

type handler struct {
	engine     *application.Engine
	clientIP   KeyFunc
	maxBody    int64
	logger     *slog.Logger
	blockedLog *rate.Sometimes
}

// NewRouter monta as rotas públicas do gateway:
//
//	POST /auth        credenciais -> {"API_KEY": ...}
//	POST /register    repasse direto ao backend
//	*    /{endpoint}  repasse autenticado (?KEY=...)
func NewRouter(opts Options) chi.Router {
	if opts.ClientIP == nil {
		opts.ClientIP = ClientIPFunc(opts.TrustXForwardedFor)
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1 << 20
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.BlockedLogInterval <= 0 {
		opts.BlockedLogInterval = 10 * time.Second
	}

	h := &handler{
		engine:     opts.Engine,
		clientIP:   opts.ClientIP,
		maxBody:    opts.MaxBodyBytes,
		logger:     opts.Logger,
		blockedLog: &rate.Sometimes{First: 1, Interval: opts.BlockedLogInterval},
	}

	if opts.Concurrency.OnReject == nil {
		opts.Concurrency.OnReject = func(r *http.Request) {
			h.engine.Shed(r.Context(), h.clientIP(r), r.Method, strings.Trim(r.URL.Path, "/"))
		}
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(RequestID)
	r.Use(ConcurrencyMiddleware(opts.Concurrency))

	r.Post("/auth", h.auth)
	r.Post("/register", h.register)
	r.HandleFunc("/{endpoint}", h.forward)
	return r
}

func (h *handler) auth(w http.ResponseWriter, r *http.Request) {
	ip := h.clientIP(r)
	if !h.admit(w, r, ip, "/auth") {
		return
	}
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}

	key, err := h.engine.Authenticate(r.Context(), ip, body)
	if err != nil {
		h.fail(w, r, ip, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"API_KEY": string(key)})
}

func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	ip := h.clientIP(r)
	if !h.admit(w, r, ip, "/register") {
		return
	}
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}

	resp, err := h.engine.Register(r.Context(), ip, body)
	if err != nil {
		h.fail(w, r, ip, err)
		return
	}
	relay(w, resp)
}

func (h *handler) forward(w http.ResponseWriter, r *http.Request) {
	ip := h.clientIP(r)
	raw := chi.URLParam(r, "endpoint")
	if !h.admit(w, r, ip, raw) {
		return
	}

	endpoint, ok := canonicalEndpoint(raw)
	if !ok {
		writeDetail(w, http.StatusBadRequest, "invalid endpoint")
		return
	}
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}

	resp, err := h.engine.Forward(r.Context(), application.ForwardRequest{
		IP:       ip,
		Method:   r.Method,
		Endpoint: endpoint,
		Params:   r.URL.Query(),
		Header:   r.Header,
		Body:     body,
	})
	if err != nil {
		h.fail(w, r, ip, err)
		return
	}
	relay(w, resp)
}

// admit responde 403 a um IP bloqueado antes de qualquer outra etapa.
func (h *handler) admit(w http.ResponseWriter, r *http.Request, ip, endpoint string) bool {
	if err := h.engine.Admit(r.Context(), ip, r.Method, endpoint); err != nil {
		h.fail(w, r, ip, err)
		return false
	}
	return true
}

// canonicalEndpoint decodifica o segmento uma única vez; o mesmo valor vai para
// a autorização e para o backend. Um "/" codificado não forma um endpoint.
func canonicalEndpoint(raw string) (string, bool) {
	endpoint, err := url.PathUnescape(raw)
	if err != nil || endpoint == "" || strings.Contains(endpoint, "/") {
		return "", false
	}
	return endpoint, true
}

func (h *handler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	if r.Body == nil {
		return nil, true
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeDetail(w, http.StatusRequestEntityTooLarge, "request body too large")
			return nil, false
		}
		writeDetail(w, http.StatusBadRequest, "could not read request body")
		return nil, false
	}
	return body, true
}

// fail traduz os erros de domain para a resposta HTTP.
func (h *handler) fail(w http.ResponseWriter, r *http.Request, ip string, err error) {
	switch {
	case errors.Is(err, domain.ErrBlocked):
		if until, ok := h.engine.Abuse.BlockedUntil(ip); ok {
			secs := int(math.Ceil(until.Sub(h.engine.Now()).Seconds()))
			if secs > 0 {
				w.Header().Set("Retry-After", formatInt(secs))
			}
		}
		h.blockedLog.Do(func() {
			h.logger.Warn("rejected request from blocked ip", "ip", ip, "path", r.URL.Path)
		})
		writeDetail(w, http.StatusForbidden, blockedDetail)
	case errors.Is(err, domain.ErrMissingKey):
		writeError(w, "key not provided")
	case errors.Is(err, domain.ErrInvalidKey):
		writeError(w, "Invalid key")
	case errors.Is(err, domain.ErrNotAllowed):
		writeError(w, "Not allowed")
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeError(w, "Invalid credentials")
	case errors.Is(err, domain.ErrOverloaded):
		writeDetail(w, http.StatusServiceUnavailable, http.StatusText(http.StatusServiceUnavailable))
	case errors.Is(err, domain.ErrBackendUnavailable):
		h.logger.Error("backend call failed", "ip", ip, "path", r.URL.Path,
			"request_id", r.Header.Get(RequestIDHeader), "error", err)
		writeDetail(w, http.StatusBadGateway, "Error forwarding to backend: "+err.Error())
	default:
		h.logger.Error("request failed", "ip", ip, "path", r.URL.Path, "error", err)
		writeDetail(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}

// relay devolve status, cabeçalhos e corpo do backend sem alterações.
func relay(w http.ResponseWriter, resp domain.BackendResponse) {
	for k, vs := range resp.Header {
		w.Header()[k] = append([]string(nil), vs...)
	}
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json")
	}
	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = w.Write(resp.Body)
}
