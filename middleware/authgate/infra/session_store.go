package infra

import (
	"fmt"
	"sync"
	"time"

	"auth-gateway/middleware/authgate/domain"
)

const maxIssueAttempts = 4

// SessionStore mantém as sessões vivas em memória, indexadas pela API key.
//
// O mapa tem seu próprio RWMutex: Validate de keys válidas só toma o lock de
// leitura. Nada aqui faz I/O.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[domain.Key]domain.Session

	ttl    time.Duration
	clock  domain.Clock
	newKey KeyGenerator
}

type SessionOption func(*SessionStore)

func WithSessionTTL(d time.Duration) SessionOption {
	return func(s *SessionStore) { s.ttl = d }
}

func WithSessionClock(c domain.Clock) SessionOption {
	return func(s *SessionStore) { s.clock = c }
}

func WithKeyGenerator(g KeyGenerator) SessionOption {
	return func(s *SessionStore) { s.newKey = g }
}

func NewSessionStore(opts ...SessionOption) *SessionStore {
	s := &SessionStore{
		sessions: make(map[domain.Key]domain.Session),
		ttl:      24 * time.Hour,
		clock:    SystemClock,
		newKey:   HexKeys(DefaultKeyBytes),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SessionStore) TTL() time.Duration { return s.ttl }

// Issue cria uma sessão nova com expiração now+TTL e retorna sua key.
//
// Uma key que colida com outra ainda viva é descartada e gerada de novo.
func (s *SessionStore) Issue(role string) (domain.Key, error) {
	for range maxIssueAttempts {
		key, err := s.newKey()
		if err != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrKeyGeneration, err)
		}

		s.mu.Lock()
		now := s.clock.Now()
		if cur, ok := s.sessions[key]; ok && cur.Valid(now) {
			s.mu.Unlock()
			continue
		}
		s.sessions[key] = domain.Session{Key: key, ExpiresAt: now.Add(s.ttl), Role: role}
		s.mu.Unlock()
		return key, nil
	}
	return "", fmt.Errorf("%w: %d consecutive collisions", domain.ErrKeyGeneration, maxIssueAttempts)
}

// Validate retorna a sessão da key se ela existir e não tiver expirado.
// Uma sessão expirada é removida antes de retornar false.
func (s *SessionStore) Validate(key domain.Key) (domain.Session, bool) {
	if key == "" {
		return domain.Session{}, false
	}

	s.mu.RLock()
	sess, ok := s.sessions[key]
	s.mu.RUnlock()
	if !ok {
		return domain.Session{}, false
	}

	now := s.clock.Now()
	if sess.Valid(now) {
		return sess, true
	}

	s.mu.Lock()
	// outra goroutine pode ter reemitido a mesma key entre os dois locks
	if cur, ok := s.sessions[key]; ok && !cur.Valid(now) {
		delete(s.sessions, key)
	}
	s.mu.Unlock()
	return domain.Session{}, false
}

// Sweep remove todas as sessões com ExpiresAt <= now e retorna quantas saíram.
func (s *SessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	removed := 0
	for k, sess := range s.sessions {
		if !sess.Valid(now) {
			delete(s.sessions, k)
			removed++
		}
	}
	return removed
}

// Len inclui sessões expiradas que ainda não foram varridas.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
