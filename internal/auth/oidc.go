package auth

import (
	"context"
	"errors"
	"fmt"
	"go-blog-app/internal/config"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// Identity is who the identity provider says signed in.
type Identity struct {
	Subject   string
	Username  string
	Email     string
	FirstName string
	LastName  string
}

// Authenticator holds the OIDC provider, OAuth2 config, and ID token verifier.
type Authenticator struct {
	*oidc.Provider
	*oauth2.Config
	*oidc.IDTokenVerifier
}

// NewAuthenticator discovers the provider at the configured issuer and builds
// the OAuth2 client for it.
func NewAuthenticator(ctx context.Context, cfg *config.OIDCConfig) (*Authenticator, error) {
	provider, err := oidc.NewProvider(ctx, cfg.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC provider: %w", err)
	}

	oauth2Config := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Endpoint:     provider.Endpoint(),
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
	}

	return &Authenticator{
		Provider:        provider,
		Config:          oauth2Config,
		IDTokenVerifier: provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
	}, nil
}

// Identify exchanges an authorization code, verifies the returned ID token
// and reads the profile claims from it.
func (a *Authenticator) Identify(ctx context.Context, code string) (*Identity, error) {
	token, err := a.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange token: %w", err)
	}
	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return nil, errors.New("no id_token field in oauth2 token")
	}
	idToken, err := a.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("failed to verify ID token: %w", err)
	}

	var claims struct {
		PreferredUsername string `json:"preferred_username"`
		Email             string `json:"email"`
		GivenName         string `json:"given_name"`
		FamilyName        string `json:"family_name"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to parse ID token claims: %w", err)
	}

	return &Identity{
		Subject:   idToken.Subject,
		Username:  usernameFor(idToken.Subject, claims.PreferredUsername, claims.Email),
		Email:     claims.Email,
		FirstName: claims.GivenName,
		LastName:  claims.FamilyName,
	}, nil
}

// usernameFor picks a URL-safe username from the claims, preferring the
// provider's username, then the email's local part, then the subject.
// Reserved names are skipped; "user" is the last resort.
func usernameFor(subject, preferred, email string) string {
	candidates := []string{preferred}
	if local, _, ok := strings.Cut(email, "@"); ok {
		candidates = append(candidates, local)
	}
	candidates = append(candidates, subject)
	for _, c := range candidates {
		c = strings.Map(func(r rune) rune {
			switch r {
			case '/', '?', '#', ' ', ':':
				return '_'
			}
			return r
		}, strings.TrimSpace(c))
		if c != "" && !IsReservedUsername(c) {
			return c
		}
	}
	return "user"
}
