package auth

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	return NewClient(Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		AuthURL:      "https://idp.example.com/oauth2/authorize",
		TokenURL:     "https://idp.example.com/oauth2/token",
		RedirectURL:  "http://localhost:8085/callback",
		Scopes:       []string{"openid", "profile"},
		TokenFile:    filepath.Join(t.TempDir(), "token.json"),
	})
}

func TestSaveAndLoadToken(t *testing.T) {
	client := newTestClient(t)
	tok := &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(time.Hour).Round(time.Second),
	}
	if err := client.SaveToken(tok); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := client.LoadToken()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.AccessToken != tok.AccessToken || got.RefreshToken != tok.RefreshToken {
		t.Fatalf("token roundtrip mismatch: %+v", got)
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(client.tokenFile)
		if err != nil {
			t.Fatalf("stat: %v", err)
		}
		if info.Mode().Perm() != 0o600 {
			t.Fatalf("token file must be owner-only, got %v", info.Mode().Perm())
		}
	}
}

func TestLoadTokenMissingFile(t *testing.T) {
	client := newTestClient(t)
	if _, err := client.LoadToken(); !errors.Is(err, ErrNoToken) {
		t.Fatalf("expected ErrNoToken, got %v", err)
	}
}

func TestTokenSourceRequiresStoredToken(t *testing.T) {
	client := newTestClient(t)
	if _, err := client.TokenSource(context.Background()); !errors.Is(err, ErrNoToken) {
		t.Fatalf("expected ErrNoToken, got %v", err)
	}
}

func TestAuthCodeURLCarriesState(t *testing.T) {
	client := newTestClient(t)
	url := client.AuthCodeURL("opaque-state")
	for _, want := range []string{"state=opaque-state", "client_id=client-id", "access_type=offline"} {
		if !containsParam(url, want) {
			t.Fatalf("auth URL missing %q: %s", want, url)
		}
	}
}

func containsParam(url, param string) bool {
	for i := 0; i+len(param) <= len(url); i++ {
		if url[i:i+len(param)] == param {
			return true
		}
	}
	return false
}

type staticSource struct {
	toks []*oauth2.Token
	i    int
}

func (s *staticSource) Token() (*oauth2.Token, error) {
	tok := s.toks[s.i]
	if s.i < len(s.toks)-1 {
		s.i++
	}
	return tok, nil
}

func TestPersistingSourceSavesRefreshedToken(t *testing.T) {
	client := newTestClient(t)
	src := &persistingSource{
		inner: &staticSource{toks: []*oauth2.Token{
			{AccessToken: "first", RefreshToken: "r1"},
			{AccessToken: "second", RefreshToken: "r2"},
		}},
		client: client,
		last:   "first",
	}

	if _, err := src.Token(); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if _, err := client.LoadToken(); !errors.Is(err, ErrNoToken) {
		t.Fatalf("unchanged token must not be rewritten")
	}

	tok, err := src.Token()
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if tok.AccessToken != "second" {
		t.Fatalf("expected refreshed token, got %q", tok.AccessToken)
	}
	saved, err := client.LoadToken()
	if err != nil {
		t.Fatalf("load after refresh: %v", err)
	}
	if saved.AccessToken != "second" || saved.RefreshToken != "r2" {
		t.Fatalf("refreshed token not persisted: %+v", saved)
	}
}
