// Package auth handles the identity provider's authorization-code flow
// and local token persistence. Tokens live in a JSON file readable only
// by the owner and are refreshed transparently through the token source.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"golang.org/x/oauth2"
)

// ErrNoToken reports that no stored token exists yet. Run the oauth-init
// command to obtain one.
var ErrNoToken = errors.New("no stored token")

// Config carries the provider endpoints and client credentials.
type Config struct {
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
	RedirectURL  string
	Scopes       []string
	TokenFile    string
}

// Client wraps the oauth2 flow for one provider configuration.
type Client struct {
	cfg       oauth2.Config
	tokenFile string
}

func NewClient(cfg Config) *Client {
	return &Client{
		cfg: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthURL,
				TokenURL: cfg.TokenURL,
				// The provider authenticates the token request with
				// basic auth, not form fields.
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		tokenFile: cfg.TokenFile,
	}
}

// AuthCodeURL builds the provider URL the user must visit to authorize.
func (c *Client) AuthCodeURL(state string) string {
	return c.cfg.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange trades an authorization code for a token and persists it.
func (c *Client) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	tok, err := c.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("token exchange: %w", err)
	}
	if err := c.SaveToken(tok); err != nil {
		return nil, err
	}
	return tok, nil
}

// LoadToken reads the persisted token.
func (c *Client) LoadToken() (*oauth2.Token, error) {
	b, err := os.ReadFile(c.tokenFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoToken, c.tokenFile)
		}
		return nil, fmt.Errorf("read token file: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(b, &tok); err != nil {
		return nil, fmt.Errorf("decode token file %s: %w", c.tokenFile, err)
	}
	return &tok, nil
}

// SaveToken writes the token to disk, owner-readable only.
func (c *Client) SaveToken(tok *oauth2.Token) error {
	b, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}
	if err := os.WriteFile(c.tokenFile, b, 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}

// TokenSource returns a source backed by the persisted token. Refreshed
// tokens are written back to the file so the next process start picks
// them up.
func (c *Client) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	tok, err := c.LoadToken()
	if err != nil {
		return nil, err
	}
	inner := c.cfg.TokenSource(ctx, tok)
	return &persistingSource{inner: inner, client: c, last: tok.AccessToken}, nil
}

type persistingSource struct {
	inner  oauth2.TokenSource
	client *Client
	last   string
}

func (s *persistingSource) Token() (*oauth2.Token, error) {
	tok, err := s.inner.Token()
	if err != nil {
		return nil, err
	}
	if tok.AccessToken != s.last {
		if err := s.client.SaveToken(tok); err != nil {
			return nil, err
		}
		s.last = tok.AccessToken
	}
	return tok, nil
}
