package console

import (
	"fmt"
	"os"
	"sync"

	"github.com/spf13/viper"
)

// TokenStore keeps the session token and email across restarts.
type TokenStore interface {
	Token() string
	Email() string
	Save(token, email string) error
	Clear() error
}

const (
	tokenKey = "token"
	emailKey = "email"
)

// FileTokenStore persists the session in a YAML file.
type FileTokenStore struct {
	mu   sync.Mutex
	path string
	v    *viper.Viper
}

// NewFileTokenStore opens the session file at path. A missing file is an
// empty session.
func NewFileTokenStore(path string) (*FileTokenStore, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read session file %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("stat session file %s: %w", path, err)
	}

	return &FileTokenStore{path: path, v: v}, nil
}

func (s *FileTokenStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v.GetString(tokenKey)
}

func (s *FileTokenStore) Email() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v.GetString(emailKey)
}

func (s *FileTokenStore) Save(token, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.v.Set(tokenKey, token)
	s.v.Set(emailKey, email)
	return s.write()
}

func (s *FileTokenStore) Clear() error {
	return s.Save("", "")
}

func (s *FileTokenStore) write() error {
	if err := s.v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("write session file %s: %w", s.path, err)
	}
	return nil
}

// MemoryTokenStore keeps the session in memory only.
type MemoryTokenStore struct {
	mu    sync.RWMutex
	token string
	email string
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

func (s *MemoryTokenStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *MemoryTokenStore) Email() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.email
}

func (s *MemoryTokenStore) Save(token, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token, s.email = token, email
	return nil
}

func (s *MemoryTokenStore) Clear() error {
	return s.Save("", "")
}
