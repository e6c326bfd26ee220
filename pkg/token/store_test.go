package token

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "tokens.json"))
}

func TestGetMissingUser(t *testing.T) {
	s := tempStore(t)
	if _, err := s.Get("u1"); !errors.Is(err, ErrNoToken) {
		t.Errorf("err = %v, want ErrNoToken", err)
	}
}

func TestPutGetDelete(t *testing.T) {
	s := tempStore(t)

	cred := Credential{
		AccessToken:  "at",
		RefreshToken: "rt",
		Expiry:       time.Now().Add(time.Hour),
	}
	if err := s.Put("u1", cred); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := s.Get("u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.RefreshToken != "rt" {
		t.Errorf("refresh token = %q", got.RefreshToken)
	}

	if err := s.Delete("u1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get("u1"); !errors.Is(err, ErrNoToken) {
		t.Errorf("err after delete = %v", err)
	}
	// Deleting again is not an error.
	if err := s.Delete("u1"); err != nil {
		t.Errorf("second Delete: %v", err)
	}
}

func TestStoreFileIsFlatJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	s := NewStore(path)

	if err := s.Put("u1", Credential{RefreshToken: "rt"}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	var m map[string]Credential
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("parse file: %v", err)
	}
	if m["u1"].RefreshToken != "rt" {
		t.Errorf("file contents = %v", m)
	}
}

func TestWithUserLockSerializes(t *testing.T) {
	s := tempStore(t)

	var counter, max int
	var mu sync.Mutex

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.WithUserLock("u1", func() error {
				mu.Lock()
				counter++
				if counter > max {
					max = counter
				}
				mu.Unlock()

				time.Sleep(time.Millisecond)

				mu.Lock()
				counter--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	if max != 1 {
		t.Errorf("max concurrent holders = %d, want 1", max)
	}
}

func TestSourceRefreshPersistsRotatedToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "fresh-at",
			"refresh_token": "rotated-rt",
			"token_type":    "Bearer",
			"expires_in":    3600,
		})
	}))
	defer srv.Close()

	store := tempStore(t)
	if err := store.Put("u1", Credential{
		AccessToken:  "stale-at",
		RefreshToken: "old-rt",
		Expiry:       time.Now().Add(-time.Hour),
	}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	src := NewSource(store, &oauth2.Config{
		ClientID: "cid",
		Endpoint: oauth2.Endpoint{TokenURL: srv.URL},
	})

	tok, err := src.Token(t.Context(), "u1")
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if tok.AccessToken != "fresh-at" {
		t.Errorf("access token = %q", tok.AccessToken)
	}

	cred, err := store.Get("u1")
	if err != nil {
		t.Fatalf("Get after refresh: %v", err)
	}
	if cred.RefreshToken != "rotated-rt" {
		t.Errorf("refresh token = %q, want the rotated one persisted", cred.RefreshToken)
	}
	if cred.AccessToken != "fresh-at" {
		t.Errorf("access token = %q", cred.AccessToken)
	}
}

func TestSourceNoRefreshToken(t *testing.T) {
	store := tempStore(t)
	if err := store.Put("u1", Credential{
		AccessToken: "stale-at",
		Expiry:      time.Now().Add(-time.Hour),
	}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	src := NewSource(store, &oauth2.Config{})
	if _, err := src.Token(t.Context(), "u1"); !IsNoToken(err) {
		t.Errorf("err = %v, want ErrNoToken", err)
	}
}

func TestSourceValidTokenSkipsRefresh(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "should not be called", http.StatusInternalServerError)
	}))
	defer srv.Close()

	store := tempStore(t)
	if err := store.Put("u1", Credential{
		AccessToken:  "live-at",
		RefreshToken: "rt",
		Expiry:       time.Now().Add(time.Hour),
	}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	src := NewSource(store, &oauth2.Config{
		Endpoint: oauth2.Endpoint{TokenURL: srv.URL},
	})

	tok, err := src.Token(t.Context(), "u1")
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if tok.AccessToken != "live-at" {
		t.Errorf("access token = %q", tok.AccessToken)
	}
	if calls != 0 {
		t.Errorf("token endpoint called %d times", calls)
	}
}
