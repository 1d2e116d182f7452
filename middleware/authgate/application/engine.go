package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"auth-gateway/middleware/authgate/domain"
)

const (
	DefaultAuthPath     = "/auth"
	DefaultRegisterPath = "/register"
	DefaultKeyParam     = "KEY"
)

// Engine orquestra, por requisição, bloqueio de IP, emissão e validação de
// API keys, autorização por papel e o repasse ao backend.
//
// Authz nil desliga a autorização por papel (nenhum atributo de papel
// configurado). Stats, Clock e Logger são opcionais.
type Engine struct {
	Sessions domain.SessionStore
	Abuse    domain.AbuseTracker
	Authz    domain.Authorizer
	Backend  domain.Backend
	Stats    domain.StatsStore
	Clock    domain.Clock
	Logger   *slog.Logger

	// RoleAttribute é o campo da resposta de /auth do backend que vira o papel da sessão.
	RoleAttribute string
	AuthPath      string
	RegisterPath  string
	// KeyParam é o parâmetro de query que carrega a API key.
	KeyParam string
}

// ForwardRequest é uma chamada genérica de cliente para /{endpoint}.
// Params ainda contém a API key; Forward a remove antes de repassar.
type ForwardRequest struct {
	IP       string
	Method   string
	Endpoint string
	Params   map[string][]string
	Header   map[string][]string
	Body     []byte
}

// Authenticate repassa as credenciais ao backend e, se ele responder com
// success verdadeiro, emite uma nova API key.
//
// Credenciais recusadas não contam como abuso do IP.
func (e *Engine) Authenticate(ctx context.Context, ip string, body []byte) (domain.Key, error) {
	ev := domain.StatsEvent{IP: ip, Method: "POST", Endpoint: e.authPath()}
	if e.Abuse.IsBlocked(ip) {
		e.record(ctx, ev, domain.OutcomeBlocked)
		return "", domain.ErrBlocked
	}

	resp, err := e.Backend.Post(ctx, e.authPath(), body)
	if err != nil {
		e.record(ctx, ev, domain.OutcomeBackendUnavailable)
		return "", err
	}

	var payload map[string]any
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		e.record(ctx, ev, domain.OutcomeBackendUnavailable)
		return "", fmt.Errorf("%w: undecodable auth response: %v", domain.ErrBackendUnavailable, err)
	}
	if !truthy(payload["success"]) {
		e.record(ctx, ev, domain.OutcomeInvalidCredentials)
		return "", domain.ErrInvalidCredentials
	}

	key, err := e.Sessions.Issue(e.roleFrom(payload))
	if err != nil {
		e.logger().Error("session issue failed", "ip", ip, "error", err)
		return "", err
	}
	e.record(ctx, ev, domain.OutcomeIssued)
	return key, nil
}

// Register repassa o corpo ao endpoint de registro do backend e devolve a
// resposta como veio. Não toca em sessões.
func (e *Engine) Register(ctx context.Context, ip string, body []byte) (domain.BackendResponse, error) {
	ev := domain.StatsEvent{IP: ip, Method: "POST", Endpoint: e.registerPath()}
	if e.Abuse.IsBlocked(ip) {
		e.record(ctx, ev, domain.OutcomeBlocked)
		return domain.BackendResponse{}, domain.ErrBlocked
	}

	resp, err := e.Backend.Post(ctx, e.registerPath(), body)
	if err != nil {
		e.record(ctx, ev, domain.OutcomeBackendUnavailable)
		return domain.BackendResponse{}, err
	}
	e.record(ctx, ev, domain.OutcomeRegistered)
	return resp, nil
}

// Forward aplica, nesta ordem: bloqueio do IP, presença da key, validade da
// key, autorização do papel. O backend só é chamado se todas passarem.
//
// Key ausente ou inválida conta como falha do IP; negação de autorização não.
func (e *Engine) Forward(ctx context.Context, req ForwardRequest) (domain.BackendResponse, error) {
	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		method = "GET"
	}
	ev := domain.StatsEvent{IP: req.IP, Method: method, Endpoint: req.Endpoint}

	if e.Abuse.IsBlocked(req.IP) {
		e.record(ctx, ev, domain.OutcomeBlocked)
		return domain.BackendResponse{}, domain.ErrBlocked
	}

	key := domain.Key(firstValue(req.Params, e.keyParam()))
	if key == "" {
		e.trackFailure(req.IP)
		e.record(ctx, ev, domain.OutcomeMissingKey)
		return domain.BackendResponse{}, domain.ErrMissingKey
	}

	sess, ok := e.Sessions.Validate(key)
	if !ok {
		e.trackFailure(req.IP)
		e.record(ctx, ev, domain.OutcomeInvalidKey)
		return domain.BackendResponse{}, domain.ErrInvalidKey
	}

	if e.Authz != nil && !e.Authz.IsAuthorized(req.Endpoint, method, sess.Role) {
		e.record(ctx, ev, domain.OutcomeNotAllowed)
		return domain.BackendResponse{}, domain.ErrNotAllowed
	}

	resp, err := e.Backend.Do(ctx, domain.BackendRequest{
		Method:   method,
		Endpoint: req.Endpoint,
		Params:   withoutParam(req.Params, e.keyParam()),
		Header:   req.Header,
		Body:     req.Body,
	})
	if err != nil {
		e.record(ctx, ev, domain.OutcomeBackendUnavailable)
		return domain.BackendResponse{}, err
	}
	e.record(ctx, ev, domain.OutcomeForwarded)
	return resp, nil
}

// Admit recusa de imediato um IP bloqueado, antes de qualquer leitura do corpo.
// Retorna domain.ErrBlocked (e registra o desfecho) ou nil.
func (e *Engine) Admit(ctx context.Context, ip, method, endpoint string) error {
	if !e.Abuse.IsBlocked(ip) {
		return nil
	}
	ev := domain.StatsEvent{IP: ip, Method: strings.ToUpper(method), Endpoint: endpoint}
	e.record(ctx, ev, domain.OutcomeBlocked)
	return domain.ErrBlocked
}

// Shed registra uma requisição recusada por falta de vaga de concorrência.
// Não conta como abuso do IP.
func (e *Engine) Shed(ctx context.Context, ip, method, endpoint string) {
	e.logger().Debug("request shed", "ip", ip, "method", method, "endpoint", endpoint)
	ev := domain.StatsEvent{IP: ip, Method: strings.ToUpper(method), Endpoint: endpoint}
	e.record(ctx, ev, domain.OutcomeOverloaded)
}

func (e *Engine) trackFailure(ip string) {
	if !e.Abuse.RecordFailure(ip) {
		return
	}
	until, _ := e.Abuse.BlockedUntil(ip)
	e.logger().Warn("ip blocked after repeated invalid requests", "ip", ip, "until", until)
}

// record é best-effort: erro do destino de estatísticas só vira log.
func (e *Engine) record(ctx context.Context, ev domain.StatsEvent, o domain.Outcome) {
	if e.Stats == nil {
		return
	}
	ev.Outcome = o
	ev.At = e.Now()
	if err := e.Stats.Record(ctx, ev); err != nil {
		e.logger().Debug("stats record failed", "outcome", o, "error", err)
	}
}

// roleFrom extrai o papel da resposta de /auth. Sem atributo configurado,
// ou com valor nulo/composto, a sessão fica sem papel.
func (e *Engine) roleFrom(payload map[string]any) string {
	if e.RoleAttribute == "" {
		return ""
	}
	switch v := payload[e.RoleAttribute].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// Now é o instante corrente segundo o Clock do engine (time.Now sem Clock).
func (e *Engine) Now() time.Time {
	if e.Clock == nil {
		return time.Now()
	}
	return e.Clock.Now()
}

func (e *Engine) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}

func (e *Engine) authPath() string     { return orDefault(e.AuthPath, DefaultAuthPath) }
func (e *Engine) registerPath() string { return orDefault(e.RegisterPath, DefaultRegisterPath) }
func (e *Engine) keyParam() string     { return orDefault(e.KeyParam, DefaultKeyParam) }

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// truthy segue a noção usual de JSON "verdadeiro": true, número diferente de
// zero, string/lista/objeto não vazios.
func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return false
	}
}

func firstValue(params map[string][]string, name string) string {
	if vs := params[name]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

func withoutParam(params map[string][]string, name string) map[string][]string {
	out := make(map[string][]string, len(params))
	for k, v := range params {
		if k == name {
			continue
		}
		out[k] = append([]string(nil), v...)
	}
	return out
}
