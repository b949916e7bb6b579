// Package kis is a market-data client for the Korea Investment & Securities
// open API. It covers authentication and quotations only; order placement
// is not implemented.
package kis

import (
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const (
	// LiveURL is the production REST endpoint.
	LiveURL = "https://openapi.koreainvestment.com:9443"
	// PaperURL is the virtual trading endpoint.
	PaperURL = "https://openapivts.koreainvestment.com:29443"

	// tokenBuffer is subtracted from expires_in so a token is refreshed
	// before the server rejects it.
	tokenBuffer = 300 * time.Second
)

var (
	ErrRateLimited = errors.New("rate limit exceeded, please try again later")
	ErrNoToken     = errors.New("no valid access token available")
)

// Credentials identify the API client and trading account.
type Credentials struct {
	AppKey    string
	AppSecret string
	AccountNo string
}

// Token is an OAuth access token with its effective expiry.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// Option configures Auth and MarketAPI.
type Option func(*options)

type options struct {
	httpClient *http.Client
	logger     zerolog.Logger
	now        func() time.Time
}

func defaultOptions() options {
	return options{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     zerolog.Nop(),
		now:        time.Now,
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		if c != nil {
			o.httpClient = c
		}
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.httpClient = &http.Client{Timeout: d, Transport: o.httpClient.Transport}
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}
