package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/goSession/middleware"
	"golang.org/x/sync/singleflight"
)

const (
	defaultTimeout = 15 * time.Second
	maxBodyBytes   = 4 << 20
	reissueKey     = "reissue"
)

// Client issues JSON requests against one backend base URL.
//
// Client is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client

	token atomic.Pointer[string]

	transport      http.RoundTripper
	middlewares    []middleware.Middleware
	jar            http.CookieJar
	timeout        time.Duration
	logger         *slog.Logger
	refresher      Refresher
	onUnauthorized UnauthorizedHandler
	observer       Observer

	reissue singleflight.Group
}

// New builds a client for baseURL, e.g. "https://api.example.com".
func New(baseURL string, opts ...Option) (*Client, error) {
	parsed, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("api: invalid base url %q", baseURL)
	}

	c := &Client{
		baseURL: strings.TrimRight(parsed.String(), "/"),
		timeout: defaultTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.jar == nil {
		c.jar = NewCookieJar()
	}

	stages := append([]middleware.Middleware{}, c.middlewares...)
	stages = append(stages,
		middleware.RequestID(""),
		middleware.Bearer(c.bearerToken),
		middleware.Logging(c.logger),
	)
	c.http = &http.Client{
		Transport: middleware.Chain(c.transport, stages...),
		Jar:       c.jar,
		Timeout:   c.timeout,
	}
	return c, nil
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Jar returns the cookie jar holding the refresh cookie.
func (c *Client) Jar() http.CookieJar {
	return c.jar
}

// SetAccessToken replaces the live access token; "" clears it.
func (c *Client) SetAccessToken(token string) {
	if token == "" {
		c.token.Store(nil)
		return
	}
	c.token.Store(&token)
}

// AccessToken returns the live access token or "".
func (c *Client) AccessToken() string {
	if p := c.token.Load(); p != nil {
		return *p
	}
	return ""
}

// SetRefresher installs or replaces the refresher after construction.
func (c *Client) SetRefresher(r Refresher) {
	c.refresher = r
}

// SetUnauthorizedHandler installs or replaces the unauthorized hook after
// construction.
func (c *Client) SetUnauthorizedHandler(h UnauthorizedHandler) {
	c.onUnauthorized = h
}

type pinnedToken struct{}

// bearerToken reads the token pinned by send so the credential on the wire
// is the one the retry logic compares against.
func (c *Client) bearerToken(ctx context.Context) string {
	if tok, ok := ctx.Value(pinnedToken{}).(string); ok {
		return tok
	}
	return c.AccessToken()
}

// Do issues one request. body is JSON-encoded unless nil; a 2xx response is
// decoded into out unless out is nil. *[]byte receives the raw body.
func (c *Client) Do(ctx context.Context, method, path string, body, out any, opts ...RequestOption) error {
	ro := &requestOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(ro)
		}
	}

	payload, err := encodeBody(body)
	if err != nil {
		return err
	}

	used := ""
	if !ro.skipAuth {
		used = c.AccessToken()
	}

	err = c.send(ctx, method, path, payload, out, used, ro)
	if err == nil || ro.skipAuth || !errors.Is(err, ErrUnauthorized) {
		return err
	}

	if c.refresher == nil || ro.noRetry {
		c.unauthorized(ctx, used, ro)
		return err
	}

	next, rerr := c.refresh(ctx, used)
	if rerr != nil || next == "" {
		if rerr != nil {
			c.logger.DebugContext(ctx, "access token reissue failed", "error", rerr)
		}
		c.unauthorized(ctx, used, ro)
		return err
	}

	err = c.send(ctx, method, path, payload, out, next, ro)
	if errors.Is(err, ErrUnauthorized) {
		c.unauthorized(ctx, next, ro)
	}
	return err
}

// refresh returns a token to retry with. A token swapped in since the failed
// request went out is reused as is; otherwise concurrent callers share one
// reissue.
func (c *Client) refresh(ctx context.Context, used string) (string, error) {
	if current := c.AccessToken(); current != "" && current != used {
		return current, nil
	}

	v, err, _ := c.reissue.Do(reissueKey, func() (any, error) {
		return c.refresher.Refresh(context.WithoutCancel(ctx))
	})
	if err != nil {
		return "", err
	}
	token, _ := v.(string)
	return token, nil
}

func (c *Client) unauthorized(ctx context.Context, token string, ro *requestOptions) {
	if c.onUnauthorized != nil && !ro.noHook {
		c.onUnauthorized(ctx, token)
	}
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte, out any, token string, ro *requestOptions) error {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(context.WithValue(ctx, pinnedToken{}, token), method, c.url(path, ro.query), reader)
	if err != nil {
		return fmt.Errorf("api: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, values := range ro.headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(method, path, 0, time.Since(start))
		return fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	c.observe(method, path, resp.StatusCode, time.Since(start))
	if err != nil {
		return fmt.Errorf("api: %s %s: read body: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newError(method, path, resp.StatusCode, data)
	}
	return decodeBody(data, out)
}

func (c *Client) observe(method, path string, status int, elapsed time.Duration) {
	if c.observer != nil {
		c.observer(method, path, status, elapsed)
	}
}

func (c *Client) url(path string, query url.Values) string {
	u := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) == 0 {
		return u
	}
	sep := "?"
	if strings.Contains(u, "?") {
		sep = "&"
	}
	return u + sep + query.Encode()
}

func encodeBody(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	if raw, ok := body.([]byte); ok {
		return raw, nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("api: encode body: %w", err)
	}
	return data, nil
}

func decodeBody(data []byte, out any) error {
	if out == nil {
		return nil
	}
	if raw, ok := out.(*[]byte); ok {
		*raw = data
		return nil
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return nil
}
