package secret

import (
	"os"
	"strings"
	"sync"
)

// EnvPrefix prefixes the environment variable a secret key maps to.
const EnvPrefix = "PRODEXPORT_SECRET_"

// EnvStore reads secrets from the process environment. Values set through
// Set live in memory and shadow the environment.
type EnvStore struct {
	mu      sync.RWMutex
	overlay map[string][]byte
	lookup  func(string) (string, bool)
}

// NewEnvStore creates an EnvStore over os.LookupEnv.
func NewEnvStore() *EnvStore {
	return &EnvStore{overlay: map[string][]byte{}, lookup: os.LookupEnv}
}

// EnvName returns the variable name for key: "mongo-prod" → PRODEXPORT_SECRET_MONGO_PROD.
func EnvName(key string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		}
		return '_'
	}, key)
	return EnvPrefix + name
}

func (s *EnvStore) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overlay[key] = append([]byte(nil), value...)
	return nil
}

func (s *EnvStore) Get(key string) ([]byte, error) {
	s.mu.RLock()
	v, ok := s.overlay[key]
	s.mu.RUnlock()
	if ok {
		return v, nil
	}
	if env, ok := s.lookup(EnvName(key)); ok {
		return []byte(env), nil
	}
	return nil, nil
}

func (s *EnvStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.overlay, key)
	return nil
}
