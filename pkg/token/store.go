// Package token persists per-user OAuth credential bundles and serializes
// refresh sequences so two sessions of the same user cannot race a refresh.
package token

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// ErrNoToken is returned when no usable credential exists for a user.
var ErrNoToken = errors.New("token: no stored credential")

// Credential is the serialized bundle kept per user id.
type Credential struct {
	AccessToken  string    `json:"access_token,omitempty"`
	RefreshToken string    `json:"refresh_token"`
	TokenURI     string    `json:"token_uri,omitempty"`
	ClientID     string    `json:"client_id,omitempty"`
	ClientSecret string    `json:"client_secret,omitempty"`
	Scopes       []string  `json:"scopes,omitempty"`
	Expiry       time.Time `json:"expiry,omitempty"`
}

// Token converts the bundle into an oauth2 token.
func (c *Credential) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  c.AccessToken,
		RefreshToken: c.RefreshToken,
		Expiry:       c.Expiry,
	}
}

// Store is a flat JSON file of credentials keyed by user id. Writes go
// through a temp file and an atomic rename.
type Store struct {
	path string

	mu sync.Mutex // guards the file

	lockMu sync.Mutex
	userMu map[string]*sync.Mutex
}

// NewStore creates a store backed by the given file path. The file is
// created on first Put.
func NewStore(path string) *Store {
	return &Store{path: path, userMu: make(map[string]*sync.Mutex)}
}

// Get returns the user's credential, or ErrNoToken.
func (s *Store) Get(userID string) (*Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	store, err := s.load()
	if err != nil {
		return nil, err
	}
	cred, ok := store[userID]
	if !ok {
		return nil, ErrNoToken
	}
	return &cred, nil
}

// Put stores the user's credential.
func (s *Store) Put(userID string, cred Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	store, err := s.load()
	if err != nil {
		return err
	}
	store[userID] = cred
	return s.save(store)
}

// Delete removes the user's credential. Missing entries are not an error.
func (s *Store) Delete(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	store, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := store[userID]; !ok {
		return nil
	}
	delete(store, userID)
	return s.save(store)
}

// WithUserLock runs fn holding the user's refresh lock, making the
// read-refresh-persist sequence atomic per user id.
func (s *Store) WithUserLock(userID string, fn func() error) error {
	s.lockMu.Lock()
	mu, ok := s.userMu[userID]
	if !ok {
		mu = &sync.Mutex{}
		s.userMu[userID] = mu
	}
	s.lockMu.Unlock()

	mu.Lock()
	defer mu.Unlock()
	return fn()
}

func (s *Store) load() (map[string]Credential, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]Credential{}, nil
		}
		return nil, fmt.Errorf("read token store: %w", err)
	}

	store := map[string]Credential{}
	if err := json.Unmarshal(data, &store); err != nil {
		return nil, fmt.Errorf("parse token store: %w", err)
	}
	return store, nil
}

func (s *Store) save(store map[string]Credential) (err error) {
	data, err := json.MarshalIndent(store, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal token store: %w", err)
	}

	// Temp file in the same directory so the rename is atomic.
	tmp, err := os.CreateTemp(filepath.Dir(s.path), "tokens-*.json.tmp")
	if err != nil {
		return fmt.Errorf("write token store: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write token store: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("write token store: %w", err)
	}
	if err = os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("write token store: %w", err)
	}
	return nil
}
