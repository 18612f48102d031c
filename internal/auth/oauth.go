package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

const kakaoIssuer = "https://kauth.kakao.com"

// kakaoEndpoint is Kakao's OAuth 2.0 authorization and token endpoint pair.
var kakaoEndpoint = oauth2.Endpoint{
	AuthURL:  kakaoIssuer + "/oauth/authorize",
	TokenURL: kakaoIssuer + "/oauth/token",
}

// KakaoClaims contains the relevant claims from a Kakao OIDC id_token.
type KakaoClaims struct {
	Sub      string `json:"sub"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
}

// KakaoAuthenticator drives the authorization-code flow against Kakao. It
// exists so browser callers can obtain the access token the provisioning
// pipeline consumes; token-based callers skip it entirely.
type KakaoAuthenticator struct {
	config   *oauth2.Config
	verifier *oidc.IDTokenVerifier
}

// NewKakaoAuthenticator creates a KakaoAuthenticator. OIDC discovery runs
// against Kakao's issuer so id_tokens returned alongside access tokens can
// be verified.
func NewKakaoAuthenticator(ctx context.Context, clientID, clientSecret, redirectURL string) (*KakaoAuthenticator, error) {
	provider, err := oidc.NewProvider(ctx, kakaoIssuer)
	if err != nil {
		return nil, fmt.Errorf("oidc provider: %w", err)
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Endpoint:     kakaoEndpoint,
		Scopes:       []string{oidc.ScopeOpenID, "account_email", "profile_nickname"},
	}

	return &KakaoAuthenticator{
		config:   config,
		verifier: provider.Verifier(&oidc.Config{ClientID: clientID}),
	}, nil
}

// AuthURL generates the Kakao consent URL with the given state.
func (k *KakaoAuthenticator) AuthURL(state string) string {
	return k.config.AuthCodeURL(state)
}

// Exchange trades the authorization code for tokens. When Kakao issues an
// id_token (openid scope) it is verified and its claims returned; otherwise
// claims are nil and the caller should validate the access token through
// introspection instead.
func (k *KakaoAuthenticator) Exchange(ctx context.Context, code string) (*oauth2.Token, *KakaoClaims, error) {
	token, err := k.config.Exchange(ctx, code)
	if err != nil {
		return nil, nil, fmt.Errorf("token exchange: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return token, nil, nil
	}

	idToken, err := k.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, nil, fmt.Errorf("verify id_token: %w", err)
	}

	var claims KakaoClaims
	if err := idToken.Claims(&claims); err != nil {
		return nil, nil, fmt.Errorf("parse claims: %w", err)
	}

	return token, &claims, nil
}

// GenerateState generates a cryptographically secure random state string.
func GenerateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
