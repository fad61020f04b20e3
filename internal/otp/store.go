package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"
	"time"
)

type entry struct {
	code      string
	expiresAt time.Time
}

// Store keeps one pending password-reset code per email with a fixed TTL.
// Expired entries are dropped both lazily on access and by a background
// sweep, so the map stays bounded.
type Store struct {
	mu    sync.Mutex
	ttl   time.Duration
	codes map[string]entry
	stop  chan struct{}
	once  sync.Once
	now   func() time.Time
}

func NewStore(ttl time.Duration) *Store {
	s := &Store{
		ttl:   ttl,
		codes: make(map[string]entry),
		stop:  make(chan struct{}),
		now:   time.Now,
	}
	go s.sweep()
	return s
}

// Generate creates a fresh six-digit code for the email, replacing any
// pending one.
func (s *Store) Generate(email string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("otp: %w", err)
	}
	code := fmt.Sprintf("%06d", n.Int64()+100000)

	s.mu.Lock()
	s.codes[email] = entry{code: code, expiresAt: s.now().Add(s.ttl)}
	s.mu.Unlock()

	return code, nil
}

// Verify consumes the pending code for the email. It reports false for an
// unknown email, a mismatched code, or an expired one.
func (s *Store) Verify(email, code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.codes[email]
	if !ok {
		return false
	}
	if s.now().After(e.expiresAt) {
		delete(s.codes, email)
		return false
	}
	if e.code != code {
		return false
	}
	delete(s.codes, email)
	return true
}

func (s *Store) Close() {
	s.once.Do(func() { close(s.stop) })
}

func (s *Store) sweep() {
	t := time.NewTicker(time.Minute)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			now := s.now()
			s.mu.Lock()
			for email, e := range s.codes {
				if now.After(e.expiresAt) {
					delete(s.codes, email)
				}
			}
			s.mu.Unlock()
		case <-s.stop:
			return
		}
	}
}
