package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestIntrospectTokenParsesSubject(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if r.URL.Path != "/v1/user/access_token_info" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer token-abc" {
			t.Errorf("unexpected Authorization header %q", got)
		}
		if got := r.Header.Get("Content-Type"); !strings.HasPrefix(got, "application/x-www-form-urlencoded") {
			t.Errorf("unexpected Content-Type %q", got)
		}
		_, _ = w.Write([]byte(`{"id":123456789,"expires_in":7199,"app_id":1234}`))
	}))
	defer server.Close()

	client := NewKakaoClient(server.Client(), WithKakaoAPIURL(server.URL))

	info, err := client.IntrospectToken(context.Background(), "token-abc")
	if err != nil {
		t.Fatalf("IntrospectToken returned error: %v", err)
	}
	if info.ID != 123456789 {
		t.Fatalf("expected subject 123456789, got %d", info.ID)
	}
	if info.ExpiresIn != 7199 || info.AppID != 1234 {
		t.Fatalf("unexpected token info %+v", info)
	}
}

func TestIntrospectTokenRejectsNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"msg":"this access token does not exist","code":-401}`))
	}))
	defer server.Close()

	client := NewKakaoClient(server.Client(), WithKakaoAPIURL(server.URL))

	info, err := client.IntrospectToken(context.Background(), "expired-token")
	if !errors.Is(err, ErrTokenIntrospection) {
		t.Fatalf("expected ErrTokenIntrospection, got %v", err)
	}
	if info.ID != 0 {
		t.Fatalf("expected zero-value result on failure, got %+v", info)
	}
}

func TestIntrospectTokenRejectsBodyWithoutSubject(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"expires_in":7199,"app_id":1234}`))
	}))
	defer server.Close()

	client := NewKakaoClient(server.Client(), WithKakaoAPIURL(server.URL))

	_, err := client.IntrospectToken(context.Background(), "token-abc")
	if !errors.Is(err, ErrTokenIntrospection) {
		t.Fatalf("expected ErrTokenIntrospection for missing id, got %v", err)
	}
}

func TestIntrospectTokenRejectsMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer server.Close()

	client := NewKakaoClient(server.Client(), WithKakaoAPIURL(server.URL))

	_, err := client.IntrospectToken(context.Background(), "token-abc")
	if !errors.Is(err, ErrTokenIntrospection) {
		t.Fatalf("expected ErrTokenIntrospection for malformed body, got %v", err)
	}
}

func TestIntrospectTokenRejectsEmptyTokenWithoutCalling(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	client := NewKakaoClient(server.Client(), WithKakaoAPIURL(server.URL))

	_, err := client.IntrospectToken(context.Background(), "  ")
	if !errors.Is(err, ErrTokenIntrospection) {
		t.Fatalf("expected ErrTokenIntrospection, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("expected no outbound call for an empty token, got %d", calls)
	}
}

func TestIntrospectTokenMakesSingleAttempt(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewKakaoClient(server.Client(), WithKakaoAPIURL(server.URL))

	if _, err := client.IntrospectToken(context.Background(), "token-abc"); err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Fatalf("expected exactly one attempt, got %d", calls)
	}
}

func TestIntrospectTokenErrorOmitsTokenValue(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := NewKakaoClient(server.Client(), WithKakaoAPIURL(server.URL))

	const token = "super-secret-token"
	_, err := client.IntrospectToken(context.Background(), token)
	if err == nil {
		t.Fatal("expected error")
	}
	if strings.Contains(err.Error(), token) {
		t.Fatalf("error text leaks the access token: %v", err)
	}
}

func TestFetchAccountParsesConsentedFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/v2/user/me" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer token-abc" {
			t.Errorf("unexpected Authorization header %q", got)
		}
		_, _ = w.Write([]byte(`{
			"id": 123456789,
			"kakao_account": {
				"email": "a@x.com",
				"profile": {"nickname": "Kim"}
			},
			"properties": {"nickname": "KimTalk", "custom_field1": "23"}
		}`))
	}))
	defer server.Close()

	client := NewKakaoClient(server.Client(), WithKakaoAPIURL(server.URL))

	account, err := client.FetchAccount(context.Background(), "token-abc", 0)
	if err != nil {
		t.Fatalf("FetchAccount returned error: %v", err)
	}
	if account.ID != 123456789 {
		t.Fatalf("expected id 123456789, got %d", account.ID)
	}
	if account.KakaoAccount.Email == nil || *account.KakaoAccount.Email != "a@x.com" {
		t.Fatalf("expected consented email, got %+v", account.KakaoAccount.Email)
	}
	if account.KakaoAccount.Profile.Nickname == nil || *account.KakaoAccount.Profile.Nickname != "Kim" {
		t.Fatalf("expected profile nickname, got %+v", account.KakaoAccount.Profile.Nickname)
	}
	if account.Properties["nickname"] != "KimTalk" {
		t.Fatalf("expected properties nickname, got %q", account.Properties["nickname"])
	}
}

func TestFetchAccountDistinguishesWithheldEmail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id": 42, "kakao_account": {"profile": {"nickname": "Kim"}}}`))
	}))
	defer server.Close()

	client := NewKakaoClient(server.Client(), WithKakaoAPIURL(server.URL))

	account, err := client.FetchAccount(context.Background(), "token-abc", 0)
	if err != nil {
		t.Fatalf("FetchAccount returned error: %v", err)
	}
	if account.KakaoAccount.Email != nil {
		t.Fatalf("expected absent email to stay nil, got %q", *account.KakaoAccount.Email)
	}
}

func TestFetchAccountKeepsEmptyEmailDistinctFromAbsent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id": 42, "kakao_account": {"email": ""}}`))
	}))
	defer server.Close()

	client := NewKakaoClient(server.Client(), WithKakaoAPIURL(server.URL))

	account, err := client.FetchAccount(context.Background(), "token-abc", 0)
	if err != nil {
		t.Fatalf("FetchAccount returned error: %v", err)
	}
	if account.KakaoAccount.Email == nil || *account.KakaoAccount.Email != "" {
		t.Fatalf("expected present-but-empty email, got %+v", account.KakaoAccount.Email)
	}
}

func TestFetchAccountRejectsNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewKakaoClient(server.Client(), WithKakaoAPIURL(server.URL))

	_, err := client.FetchAccount(context.Background(), "token-abc", 0)
	if !errors.Is(err, ErrAccountFetch) {
		t.Fatalf("expected ErrAccountFetch, got %v", err)
	}
}

func TestFetchAccountRejectsMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[1,2,3]`))
	}))
	defer server.Close()

	client := NewKakaoClient(server.Client(), WithKakaoAPIURL(server.URL))

	_, err := client.FetchAccount(context.Background(), "token-abc", 0)
	if !errors.Is(err, ErrAccountFetch) {
		t.Fatalf("expected ErrAccountFetch for malformed body, got %v", err)
	}
}

func TestFetchAccountIgnoresUnknownFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"id": 7,
			"connected_at": "2024-06-01T00:00:00Z",
			"kakao_account": {"email": "b@x.com", "is_email_verified": true},
			"for_partner": {"uuid": "zzz"}
		}`))
	}))
	defer server.Close()

	client := NewKakaoClient(server.Client(), WithKakaoAPIURL(server.URL))

	account, err := client.FetchAccount(context.Background(), "token-abc", 0)
	if err != nil {
		t.Fatalf("FetchAccount returned error: %v", err)
	}
	if account.ID != 7 || account.KakaoAccount.Email == nil || *account.KakaoAccount.Email != "b@x.com" {
		t.Fatalf("unexpected account %+v", account)
	}
}

func TestFetchAccountSendsTargetParams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if got := r.PostForm.Get("target_id_type"); got != "user_id" {
			t.Errorf("expected target_id_type=user_id, got %q", got)
		}
		if got := r.PostForm.Get("target_id"); got != "99" {
			t.Errorf("expected target_id=99, got %q", got)
		}
		_, _ = w.Write([]byte(`{"id": 99}`))
	}))
	defer server.Close()

	client := NewKakaoClient(server.Client(), WithKakaoAPIURL(server.URL))

	account, err := client.FetchAccount(context.Background(), "token-abc", 99)
	if err != nil {
		t.Fatalf("FetchAccount returned error: %v", err)
	}
	if account.ID != 99 {
		t.Fatalf("expected id 99, got %d", account.ID)
	}
}
