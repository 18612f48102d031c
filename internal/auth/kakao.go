package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultKakaoAPIURL = "https://kapi.kakao.com"

// TokenInfo is the provider's view of an access token, returned by the
// token-introspection endpoint.
type TokenInfo struct {
	ID        int64 `json:"id"`
	ExpiresIn int64 `json:"expires_in"`
	AppID     int64 `json:"app_id"`
}

// Account is the provider-native account object returned by /v2/user/me.
// Consent-gated fields are pointers so that "not consented" stays
// distinguishable from an empty string. Fields Kakao adds later are ignored.
type Account struct {
	ID           int64             `json:"id"`
	KakaoAccount KakaoAccount      `json:"kakao_account"`
	Properties   map[string]string `json:"properties"`
}

// KakaoAccount holds the consent-gated account section.
type KakaoAccount struct {
	Email   *string        `json:"email"`
	Profile AccountProfile `json:"profile"`
}

// AccountProfile holds the consent-gated profile section.
type AccountProfile struct {
	Nickname *string `json:"nickname"`
}

// KakaoClient talks to the Kakao REST API. It performs exactly one attempt
// per call; retry policy belongs to the caller. The access token is sent as
// a bearer credential and never logged or echoed in errors.
type KakaoClient struct {
	client  *http.Client
	baseURL string
}

// KakaoOption configures the KakaoClient during construction.
type KakaoOption func(*KakaoClient)

// WithKakaoAPIURL overrides the base URL for Kakao API requests.
func WithKakaoAPIURL(baseURL string) KakaoOption {
	return func(c *KakaoClient) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// NewKakaoClient constructs a KakaoClient.
func NewKakaoClient(client *http.Client, opts ...KakaoOption) *KakaoClient {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	c := &KakaoClient{
		client:  client,
		baseURL: defaultKakaoAPIURL,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// IntrospectToken validates an access token against
// GET /v1/user/access_token_info and returns the provider's token metadata.
// Any transport failure, non-2xx status, or body without the subject id
// fails with ErrTokenIntrospection.
func (c *KakaoClient) IntrospectToken(ctx context.Context, accessToken string) (TokenInfo, error) {
	if strings.TrimSpace(accessToken) == "" {
		return TokenInfo{}, fmt.Errorf("empty access token: %w", ErrTokenIntrospection)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/user/access_token_info", nil)
	if err != nil {
		return TokenInfo{}, fmt.Errorf("create introspection request: %w", ErrTokenIntrospection)
	}
	setKakaoHeaders(req, accessToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return TokenInfo{}, fmt.Errorf("call introspection endpoint: %v: %w", redactURLError(err), ErrTokenIntrospection)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return TokenInfo{}, fmt.Errorf("introspection endpoint returned status %d: %w", resp.StatusCode, ErrTokenIntrospection)
	}

	// Decode through RawMessage so a missing "id" is detectable; a zero
	// subject must never be handed back as a real identity.
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return TokenInfo{}, fmt.Errorf("decode introspection response: %w", ErrTokenIntrospection)
	}
	if _, ok := raw["id"]; !ok {
		return TokenInfo{}, fmt.Errorf("introspection response missing subject id: %w", ErrTokenIntrospection)
	}

	var info TokenInfo
	for key, field := range map[string]*int64{"id": &info.ID, "expires_in": &info.ExpiresIn, "app_id": &info.AppID} {
		value, ok := raw[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(value, field); err != nil {
			return TokenInfo{}, fmt.Errorf("malformed %s in introspection response: %w", key, ErrTokenIntrospection)
		}
	}

	return info, nil
}

// FetchAccount retrieves the token holder's account object from
// POST /v2/user/me. targetID, when non-zero, requests another member's
// account on behalf of the app (admin-key flows); zero means the token's own
// account. Transport failures, non-2xx statuses, and bodies that do not
// parse as the account shape fail with ErrAccountFetch.
func (c *KakaoClient) FetchAccount(ctx context.Context, accessToken string, targetID int64) (Account, error) {
	if strings.TrimSpace(accessToken) == "" {
		return Account{}, fmt.Errorf("empty access token: %w", ErrAccountFetch)
	}

	form := url.Values{}
	if targetID != 0 {
		form.Set("target_id_type", "user_id")
		form.Set("target_id", strconv.FormatInt(targetID, 10))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/user/me", strings.NewReader(form.Encode()))
	if err != nil {
		return Account{}, fmt.Errorf("create account request: %w", ErrAccountFetch)
	}
	setKakaoHeaders(req, accessToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return Account{}, fmt.Errorf("call account endpoint: %v: %w", redactURLError(err), ErrAccountFetch)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Account{}, fmt.Errorf("account endpoint returned status %d: %w", resp.StatusCode, ErrAccountFetch)
	}

	var account Account
	if err := json.NewDecoder(resp.Body).Decode(&account); err != nil {
		return Account{}, fmt.Errorf("decode account response: %w", ErrAccountFetch)
	}

	return account, nil
}

func setKakaoHeaders(req *http.Request, accessToken string) {
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded;charset=utf-8")
}

// redactURLError strips the URL from transport errors so error text never
// carries query material alongside the endpoint host.
func redactURLError(err error) string {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err.Error()
	}
	return err.Error()
}
