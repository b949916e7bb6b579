package kis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Auth obtains and caches access tokens. It is safe for concurrent use.
type Auth struct {
	creds   Credentials
	baseURL string
	opts    options

	mu    sync.Mutex
	token *Token
}

func NewAuth(creds Credentials, baseURL string, opts ...Option) *Auth {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if baseURL == "" {
		baseURL = LiveURL
	}
	return &Auth{
		creds:   creds,
		baseURL: strings.TrimRight(baseURL, "/"),
		opts:    o,
	}
}

type tokenRequest struct {
	GrantType string `json:"grant_type"`
	AppKey    string `json:"appkey"`
	AppSecret string `json:"appsecret"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type errorResponse struct {
	Msg  string `json:"msg"`
	Msg1 string `json:"msg1"`
}

// AccessToken returns the cached token while it is valid and refreshes it
// otherwise.
func (a *Auth) AccessToken(ctx context.Context) (Token, error) {
	a.mu.Lock()
	if a.validLocked() {
		t := *a.token
		a.mu.Unlock()
		return t, nil
	}
	a.mu.Unlock()
	return a.Refresh(ctx)
}

// Refresh requests a new token from /oauth2/tokenP.
func (a *Auth) Refresh(ctx context.Context) (Token, error) {
	body, err := json.Marshal(tokenRequest{
		GrantType: "client_credentials",
		AppKey:    a.creds.AppKey,
		AppSecret: a.creds.AppSecret,
	})
	if err != nil {
		return Token{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/oauth2/tokenP", bytes.NewReader(body))
	if err != nil {
		return Token{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.opts.httpClient.Do(req)
	if err != nil {
		return Token{}, fmt.Errorf("failed to obtain access token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Token{}, fmt.Errorf("failed to obtain access token: %w", apiError(resp))
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return Token{}, fmt.Errorf("failed to obtain access token: decode response: %w", err)
	}
	if tr.AccessToken == "" {
		return Token{}, fmt.Errorf("failed to obtain access token: empty access_token")
	}

	t := Token{
		Value:     tr.AccessToken,
		ExpiresAt: a.opts.now().Add(time.Duration(tr.ExpiresIn)*time.Second - tokenBuffer),
	}

	a.mu.Lock()
	a.token = &t
	a.mu.Unlock()

	a.opts.logger.Debug().Time("expires_at", t.ExpiresAt).Msg("kis access token refreshed")
	return t, nil
}

// Valid reports whether a cached token exists and has not expired.
func (a *Auth) Valid() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.validLocked()
}

func (a *Auth) validLocked() bool {
	return a.token != nil && a.token.ExpiresAt.After(a.opts.now())
}

// Headers returns the authorization headers for API requests. It fails
// with ErrNoToken when no valid token is cached.
func (a *Auth) Headers() (http.Header, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.validLocked() {
		return nil, fmt.Errorf("%w: call AccessToken first", ErrNoToken)
	}
	h := http.Header{}
	h.Set("authorization", "Bearer "+a.token.Value)
	h.Set("appkey", a.creds.AppKey)
	h.Set("appsecret", a.creds.AppSecret)
	return h, nil
}

// Clear drops the cached token so the next request refreshes.
func (a *Auth) Clear() {
	a.mu.Lock()
	a.token = nil
	a.mu.Unlock()
}

// apiError builds an error from a non-2xx response, preferring the API's
// own message.
func apiError(resp *http.Response) error {
	if resp.StatusCode == http.StatusTooManyRequests {
		return ErrRateLimited
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var er errorResponse
	if json.Unmarshal(body, &er) == nil {
		if er.Msg != "" {
			return fmt.Errorf("API error (status %d): %s", resp.StatusCode, er.Msg)
		}
		if er.Msg1 != "" {
			return fmt.Errorf("API error (status %d): %s", resp.StatusCode, er.Msg1)
		}
	}
	return fmt.Errorf("API error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
}
