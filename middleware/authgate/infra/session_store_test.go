package infra

import (
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"auth-gateway/middleware/authgate/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequenceKeys(keys ...domain.Key) KeyGenerator {
	var mu sync.Mutex
	i := 0
	return func() (domain.Key, error) {
		mu.Lock()
		defer mu.Unlock()
		k := keys[i%len(keys)]
		i++
		return k, nil
	}
}

func TestHexKeys_DefaultIsSixteenLowercaseHex(t *testing.T) {
	gen := HexKeys(DefaultKeyBytes)
	re := regexp.MustCompile(`^[0-9a-f]{16}$`)

	seen := make(map[domain.Key]bool)
	for range 100 {
		k, err := gen()
		require.NoError(t, err)
		assert.Regexp(t, re, string(k))
		assert.False(t, seen[k], "duplicate key %q", k)
		seen[k] = true
	}
}

func TestHexKeys_NonPositiveFallsBackToDefault(t *testing.T) {
	k, err := HexKeys(0)()
	require.NoError(t, err)
	assert.Len(t, string(k), DefaultKeyBytes*2)
}

func TestSessionStore_IssuedKeyValidatesUntilExpiry(t *testing.T) {
	clock := newFakeClock()
	s := NewSessionStore(WithSessionClock(clock), WithSessionTTL(time.Hour))

	key, err := s.Issue("admin")
	require.NoError(t, err)

	sess, ok := s.Validate(key)
	require.True(t, ok)
	assert.Equal(t, key, sess.Key)
	assert.Equal(t, "admin", sess.Role)
	assert.Equal(t, clock.Now().Add(time.Hour), sess.ExpiresAt)

	clock.Advance(time.Hour - time.Nanosecond)
	_, ok = s.Validate(key)
	assert.True(t, ok, "expected key valid just before expiry")

	clock.Advance(time.Nanosecond)
	_, ok = s.Validate(key)
	assert.False(t, ok, "expected key invalid at expiry")
	assert.Equal(t, 0, s.Len(), "expired session should be removed on validate")
}

func TestSessionStore_ValidateIsIdempotent(t *testing.T) {
	clock := newFakeClock()
	s := NewSessionStore(WithSessionClock(clock))

	key, err := s.Issue("")
	require.NoError(t, err)

	first, ok := s.Validate(key)
	require.True(t, ok)
	for range 5 {
		clock.Advance(time.Minute)
		again, ok := s.Validate(key)
		require.True(t, ok)
		assert.Equal(t, first, again)
	}
}

func TestSessionStore_UnknownKeysNeverValidate(t *testing.T) {
	s := NewSessionStore()
	_, err := s.Issue("")
	require.NoError(t, err)

	for _, k := range []domain.Key{"", "0000000000000000", "not-a-key"} {
		_, ok := s.Validate(k)
		assert.False(t, ok, "key %q", k)
	}
}

func TestSessionStore_DefaultTTLIsOneDay(t *testing.T) {
	assert.Equal(t, 24*time.Hour, NewSessionStore().TTL())
}

func TestSessionStore_RegeneratesOnLiveCollision(t *testing.T) {
	s := NewSessionStore(WithKeyGenerator(sequenceKeys("aaaa", "aaaa", "bbbb")))

	k1, err := s.Issue("r1")
	require.NoError(t, err)
	k2, err := s.Issue("r2")
	require.NoError(t, err)

	assert.Equal(t, domain.Key("aaaa"), k1)
	assert.Equal(t, domain.Key("bbbb"), k2)

	sess, ok := s.Validate("aaaa")
	require.True(t, ok)
	assert.Equal(t, "r1", sess.Role, "collision must not overwrite the live session")
}

func TestSessionStore_ExpiredKeyMayBeReissued(t *testing.T) {
	clock := newFakeClock()
	s := NewSessionStore(
		WithSessionClock(clock),
		WithSessionTTL(time.Minute),
		WithKeyGenerator(sequenceKeys("aaaa")),
	)

	_, err := s.Issue("old")
	require.NoError(t, err)
	clock.Advance(time.Minute)

	k, err := s.Issue("new")
	require.NoError(t, err)
	sess, ok := s.Validate(k)
	require.True(t, ok)
	assert.Equal(t, "new", sess.Role)
}

func TestSessionStore_GivesUpAfterRepeatedCollisions(t *testing.T) {
	s := NewSessionStore(WithKeyGenerator(sequenceKeys("aaaa")))
	_, err := s.Issue("")
	require.NoError(t, err)

	_, err = s.Issue("")
	assert.ErrorIs(t, err, domain.ErrKeyGeneration)
}

func TestSessionStore_GeneratorErrorIsWrapped(t *testing.T) {
	boom := errors.New("entropy exhausted")
	s := NewSessionStore(WithKeyGenerator(func() (domain.Key, error) { return "", boom }))

	_, err := s.Issue("")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrKeyGeneration)
	assert.Contains(t, err.Error(), "entropy exhausted")
}

func TestSessionStore_SweepRemovesOnlyExpired(t *testing.T) {
	clock := newFakeClock()
	s := NewSessionStore(WithSessionClock(clock), WithSessionTTL(time.Hour))

	old, err := s.Issue("")
	require.NoError(t, err)
	clock.Advance(30 * time.Minute)
	fresh, err := s.Issue("")
	require.NoError(t, err)

	clock.Advance(30 * time.Minute)
	assert.Equal(t, 1, s.Sweep())
	assert.Equal(t, 1, s.Len())

	_, ok := s.Validate(old)
	assert.False(t, ok)
	_, ok = s.Validate(fresh)
	assert.True(t, ok)
}

func TestSessionStore_ConcurrentIssueAndValidate(t *testing.T) {
	s := NewSessionStore()

	var wg sync.WaitGroup
	keys := make(chan domain.Key, 64)
	for range 64 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			k, err := s.Issue("member")
			if err != nil {
				t.Errorf("issue: %v", err)
				return
			}
			if _, ok := s.Validate(k); !ok {
				t.Errorf("fresh key %q did not validate", k)
			}
			keys <- k
		}()
	}
	wg.Wait()
	close(keys)

	seen := make(map[domain.Key]bool)
	for k := range keys {
		assert.False(t, seen[k], "duplicate key %q", k)
		seen[k] = true
	}
	assert.Equal(t, 64, s.Len())
}
