package kis

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t atomic.Int64 }

func newClock(t time.Time) *clock {
	c := &clock{}
	c.t.Store(t.UnixNano())
	return c
}

func (c *clock) now() time.Time          { return time.Unix(0, c.t.Load()).UTC() }
func (c *clock) advance(d time.Duration) { c.t.Add(int64(d)) }

var testCreds = Credentials{AppKey: "key", AppSecret: "secret", AccountNo: "12345678-01"}

func tokenHandler(t *testing.T, calls *atomic.Int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "client_credentials", body["grant_type"])
		assert.Equal(t, "key", body["appkey"])
		assert.Equal(t, "secret", body["appsecret"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok-1","token_type":"Bearer","expires_in":86400}`))
	}
}

func TestAuthRefreshAndCache(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/tokenP", tokenHandler(t, &calls))
	server := httptest.NewServer(mux)
	defer server.Close()

	start := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	clk := newClock(start)
	auth := NewAuth(testCreds, server.URL, WithClock(clk.now))

	assert.False(t, auth.Valid())
	_, err := auth.Headers()
	assert.ErrorIs(t, err, ErrNoToken)

	tok, err := auth.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok.Value)
	assert.True(t, start.Add(86400*time.Second-300*time.Second).Equal(tok.ExpiresAt))
	assert.True(t, auth.Valid())

	// cached
	_, err = auth.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())

	h, err := auth.Headers()
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-1", h.Get("authorization"))
	assert.Equal(t, "key", h.Get("appkey"))
	assert.Equal(t, "secret", h.Get("appsecret"))

	// inside the five minute buffer the token counts as expired
	clk.advance(86400*time.Second - 299*time.Second)
	assert.False(t, auth.Valid())
	_, err = auth.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())

	auth.Clear()
	assert.False(t, auth.Valid())
}

func TestAuthRefreshError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error_code":"EGW00103","msg":"invalid appkey"}`))
	}))
	defer server.Close()

	auth := NewAuth(testCreds, server.URL)
	_, err := auth.Refresh(context.Background())
	require.Error(t, err)
	assert.Equal(t, "failed to obtain access token: API error (status 403): invalid appkey", err.Error())
	assert.False(t, auth.Valid())
}

func TestAuthEmptyToken(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"expires_in":86400}`))
	}))
	defer server.Close()

	_, err := NewAuth(testCreds, server.URL).Refresh(context.Background())
	assert.ErrorContains(t, err, "empty access_token")
}

func TestNewAuthDefaultsBaseURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, LiveURL, NewAuth(testCreds, "").baseURL)
	assert.Equal(t, "http://x", NewAuth(testCreds, "http://x/").baseURL)
}
