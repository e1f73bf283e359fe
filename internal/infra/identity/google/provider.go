package google

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"

	"github.com/yanqian/skycast/internal/domain/session"
	apperrors "github.com/yanqian/skycast/pkg/errors"
)

const (
	providerName     = "google"
	defaultIssuerURL = "https://accounts.google.com"
	defaultRevokeURL = "https://oauth2.googleapis.com/revoke"
)

// Config holds OAuth settings for Google sign-in.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	IssuerURL    string
	RevokeURL    string
}

type claims struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
}

// Provider implements session.IdentityProvider with Google OAuth2 + OIDC.
type Provider struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger

	mu       sync.Mutex
	verifier *oidc.IDTokenVerifier
}

// New constructs the Google identity provider.
func New(cfg Config, logger *slog.Logger) *Provider {
	if strings.TrimSpace(cfg.IssuerURL) == "" {
		cfg.IssuerURL = defaultIssuerURL
	}
	if strings.TrimSpace(cfg.RevokeURL) == "" {
		cfg.RevokeURL = defaultRevokeURL
	}
	return &Provider{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger.With("component", "identity.google"),
	}
}

func (p *Provider) Name() string {
	return providerName
}

// AuthURL builds the consent redirect with a PKCE S256 challenge.
func (p *Provider) AuthURL(ctx context.Context, state, codeChallenge string) (string, error) {
	cfg, err := p.oauthConfig()
	if err != nil {
		return "", err
	}
	opts := []oauth2.AuthCodeOption{
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
		oauth2.SetAuthURLParam("code_challenge", codeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	}
	return cfg.AuthCodeURL(state, opts...), nil
}

// Exchange trades the authorization code for a verified identity.
func (p *Provider) Exchange(ctx context.Context, cred session.Credential) (session.Identity, error) {
	cfg, err := p.oauthConfig()
	if err != nil {
		return session.Identity{}, err
	}
	token, err := cfg.Exchange(ctx, cred.Code, oauth2.VerifierOption(cred.CodeVerifier))
	if err != nil {
		return session.Identity{}, apperrors.Wrap(apperrors.CodeSignInFailed, "failed to exchange oauth code", err)
	}
	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return session.Identity{}, apperrors.Wrap(apperrors.CodeSignInFailed, "missing id_token in oauth response", nil)
	}
	verifier, err := p.idTokenVerifier(ctx)
	if err != nil {
		return session.Identity{}, err
	}
	idToken, err := verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return session.Identity{}, apperrors.Wrap(apperrors.CodeSignInFailed, "failed to verify id token", err)
	}
	var c claims
	if err := idToken.Claims(&c); err != nil {
		return session.Identity{}, apperrors.Wrap(apperrors.CodeSignInFailed, "failed to parse id token claims", err)
	}
	if c.Subject == "" {
		return session.Identity{}, apperrors.Wrap(apperrors.CodeSignInFailed, "missing google subject", nil)
	}
	p.logger.Debug("google identity verified", "subject", c.Subject, "email_verified", c.EmailVerified)
	return session.Identity{
		Provider:     providerName,
		Subject:      c.Subject,
		Email:        strings.ToLower(strings.TrimSpace(c.Email)),
		DisplayName:  displayName(c),
		RefreshToken: token.RefreshToken,
		UpdatedAt:    time.Now().UTC(),
	}, nil
}

// Revoke invalidates a refresh token at Google.
func (p *Provider) Revoke(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	form := url.Values{}
	form.Set("token", refreshToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.RevokeURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return fmt.Errorf("google revoke returned status %d", resp.StatusCode)
}

func (p *Provider) oauthConfig() (*oauth2.Config, error) {
	if strings.TrimSpace(p.cfg.ClientID) == "" || strings.TrimSpace(p.cfg.ClientSecret) == "" || strings.TrimSpace(p.cfg.RedirectURL) == "" {
		return nil, apperrors.Wrap(apperrors.CodeAuthNotConfigured, "google sign-in is not configured", nil)
	}
	return &oauth2.Config{
		ClientID:     p.cfg.ClientID,
		ClientSecret: p.cfg.ClientSecret,
		RedirectURL:  p.cfg.RedirectURL,
		Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
		Endpoint:     googleoauth.Endpoint,
	}, nil
}

// idTokenVerifier discovers the issuer once and reuses the verifier.
func (p *Provider) idTokenVerifier(ctx context.Context) (*oidc.IDTokenVerifier, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.verifier != nil {
		return p.verifier, nil
	}
	provider, err := oidc.NewProvider(ctx, p.cfg.IssuerURL)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeSignInFailed, "failed to initialize oidc provider", err)
	}
	p.verifier = provider.Verifier(&oidc.Config{ClientID: p.cfg.ClientID})
	return p.verifier, nil
}

func displayName(c claims) string {
	for _, candidate := range []string{c.Name, c.GivenName} {
		if trimmed := strings.TrimSpace(candidate); trimmed != "" {
			return trimmed
		}
	}
	if local, _, ok := strings.Cut(c.Email, "@"); ok && local != "" {
		return local
	}
	return "User"
}

var _ session.IdentityProvider = (*Provider)(nil)
