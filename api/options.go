package api

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/MrEthical07/goSession/middleware"
)

// Refresher obtains a fresh access token after a 401. Implementations
// install the token themselves (typically through [Client.SetAccessToken])
// and return it.
type Refresher interface {
	Refresh(ctx context.Context) (string, error)
}

// RefresherFunc adapts a function to [Refresher].
type RefresherFunc func(ctx context.Context) (string, error)

func (f RefresherFunc) Refresh(ctx context.Context) (string, error) {
	return f(ctx)
}

// UnauthorizedHandler runs when a request ends in a 401 that no retry could
// fix. token is the credential the failed request carried.
type UnauthorizedHandler func(ctx context.Context, token string)

// Observer receives one call per completed round trip. status is 0 when the
// transport failed.
type Observer func(method, path string, status int, elapsed time.Duration)

// Option configures a [Client].
type Option func(*Client)

// WithHTTPClient takes transport, jar and timeout from hc.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc == nil {
			return
		}
		if hc.Transport != nil {
			c.transport = hc.Transport
		}
		if hc.Jar != nil {
			c.jar = hc.Jar
		}
		if hc.Timeout > 0 {
			c.timeout = hc.Timeout
		}
	}
}

// WithTransport sets the base RoundTripper below the middleware chain.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.transport = rt
	}
}

// WithMiddleware adds stages outside the built-in request id, bearer and
// logging stages. The first middleware sees the request first.
func WithMiddleware(mws ...middleware.Middleware) Option {
	return func(c *Client) {
		c.middlewares = append(c.middlewares, mws...)
	}
}

// WithRefresher enables one reissue-and-retry per request on 401.
func WithRefresher(r Refresher) Option {
	return func(c *Client) {
		c.refresher = r
	}
}

// WithUnauthorizedHandler sets the hook run on unrecoverable 401s.
func WithUnauthorizedHandler(h UnauthorizedHandler) Option {
	return func(c *Client) {
		c.onUnauthorized = h
	}
}

// WithObserver sets the round-trip observer.
func WithObserver(o Observer) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// WithLogger sets the logger used by the logging stage.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithTimeout bounds each round trip, retries included separately.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithCookieJar replaces the default jar that carries the refresh cookie.
func WithCookieJar(jar http.CookieJar) Option {
	return func(c *Client) {
		c.jar = jar
	}
}

// RequestOption adjusts a single call.
type RequestOption func(*requestOptions)

type requestOptions struct {
	skipAuth bool
	noRetry  bool
	noHook   bool
	headers  http.Header
	query    url.Values
}

// SkipAuth sends the request without a bearer token and disables the retry
// and the unauthorized hook. Sign-in and reissue use it.
func SkipAuth() RequestOption {
	return func(o *requestOptions) {
		o.skipAuth = true
	}
}

// NoRetry disables the reissue-and-retry for one call.
func NoRetry() RequestOption {
	return func(o *requestOptions) {
		o.noRetry = true
	}
}

// NoUnauthorizedHook keeps a 401 on this call from reaching the
// unauthorized handler.
func NoUnauthorizedHook() RequestOption {
	return func(o *requestOptions) {
		o.noHook = true
	}
}

// WithHeader sets a request header.
func WithHeader(key, value string) RequestOption {
	return func(o *requestOptions) {
		if o.headers == nil {
			o.headers = http.Header{}
		}
		o.headers.Set(key, value)
	}
}

// WithQuery adds a query parameter.
func WithQuery(key, value string) RequestOption {
	return func(o *requestOptions) {
		if o.query == nil {
			o.query = url.Values{}
		}
		o.query.Add(key, value)
	}
}
