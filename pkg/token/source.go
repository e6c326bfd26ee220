package token

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
)

// Source resolves provider access tokens for users, refreshing through the
// stored refresh token when the cached access token is absent or expired.
// A failed or impossible refresh is reported as ErrNoToken; the caller maps
// that to its own auth-required outcome.
type Source struct {
	store *Store
	cfg   *oauth2.Config
}

// NewSource creates a token source over the store and the provider's oauth2
// configuration.
func NewSource(store *Store, cfg *oauth2.Config) *Source {
	return &Source{store: store, cfg: cfg}
}

// Token returns a valid oauth2 token for the user. Refresh-and-persist runs
// under the user's lock so concurrent sessions (e.g. Alexa and Telegram)
// cannot lose a rotated refresh token.
func (s *Source) Token(ctx context.Context, userID string) (*oauth2.Token, error) {
	var tok *oauth2.Token
	err := s.store.WithUserLock(userID, func() error {
		cred, err := s.store.Get(userID)
		if err != nil {
			return err
		}

		cached := cred.Token()
		if cached.Valid() {
			tok = cached
			return nil
		}
		if cred.RefreshToken == "" {
			return ErrNoToken
		}

		fresh, err := s.cfg.TokenSource(ctx, cached).Token()
		if err != nil {
			return fmt.Errorf("%w: refresh failed: %v", ErrNoToken, err)
		}

		cred.AccessToken = fresh.AccessToken
		cred.Expiry = fresh.Expiry
		if fresh.RefreshToken != "" {
			cred.RefreshToken = fresh.RefreshToken
		}
		if err := s.store.Put(userID, *cred); err != nil {
			return err
		}

		tok = fresh
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tok, nil
}

// AccessToken returns just the bearer token string.
func (s *Source) AccessToken(ctx context.Context, userID string) (string, error) {
	tok, err := s.Token(ctx, userID)
	if err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}

// Client returns an HTTP client authenticated as the user. The token was
// just validated, so a static source is enough; rotation stays in Token.
func (s *Source) Client(ctx context.Context, userID string) (*http.Client, error) {
	tok, err := s.Token(ctx, userID)
	if err != nil {
		return nil, err
	}
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(tok)), nil
}

// IsNoToken reports whether err means no usable credential exists.
func IsNoToken(err error) bool { return errors.Is(err, ErrNoToken) }
