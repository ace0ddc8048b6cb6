package goSession

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/MrEthical07/goSession/jwt"
)

// Config holds every Store setting. Start from [DefaultConfig].
type Config struct {
	API     APIConfig
	Session SessionConfig
	Token   TokenConfig
	Events  EventsConfig
	Metrics MetricsConfig
}

/*
====================================
API CONFIG
====================================
*/

// APIConfig configures the fetch client the Store builds.
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
	// RetryOnUnauthorized enables one reissue-and-retry per request on 401.
	RetryOnUnauthorized bool
	Endpoints           Endpoints
}

// Endpoints are the backend paths the Store calls.
type Endpoints struct {
	SignIn   string
	Logout   string
	Reissue  string
	Me       string
	Nickname string
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig configures the lifecycle.
type SessionConfig struct {
	Bootstrap BootstrapStrategy
	// RestoreTimeout bounds the restore round trips.
	RestoreTimeout time.Duration
	// LogoutTimeout bounds the best-effort backend notification.
	LogoutTimeout time.Duration
	// LoginPath is where Logout navigates.
	LoginPath string
	// HomePath is where a successful SignIn navigates.
	HomePath string
	// PublicRoutes settle without a restore round trip.
	PublicRoutes []string
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig configures access-token decoding. Without a SigningMethod
// the signature is not checked; the backend remains the authority.
type TokenConfig struct {
	SigningMethod   jwt.SigningMethod
	VerifyKey       []byte
	Issuer          string
	Leeway          time.Duration
	RequireNickname bool
}

/*
====================================
EVENTS / METRICS
====================================
*/

// EventsConfig configures the lifecycle event dispatcher.
type EventsConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig configures in-process counters.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultEndpoints returns the marketplace backend paths.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		SignIn:   "/api/auth/sign-in",
		Logout:   "/api/auth/logout",
		Reissue:  "/api/auth/reissue",
		Me:       "/api/users/me",
		Nickname: "/api/users/me/nickname",
	}
}

// DefaultPublicRoutes are the routes that never wait for a restore.
func DefaultPublicRoutes() []string {
	return []string{"/", "/login", "/signup"}
}

// DefaultConfig returns the production defaults. API.BaseURL must still be
// set.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Timeout:             15 * time.Second,
			RetryOnUnauthorized: true,
			Endpoints:           DefaultEndpoints(),
		},
		Session: SessionConfig{
			Bootstrap:      BootstrapDecode,
			RestoreTimeout: 10 * time.Second,
			LogoutTimeout:  5 * time.Second,
			LoginPath:      "/login",
			HomePath:       "/",
			PublicRoutes:   DefaultPublicRoutes(),
		},
		Token: TokenConfig{
			RequireNickname: true,
		},
		Events: EventsConfig{
			Enabled:    true,
			BufferSize: 64,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Token.VerifyKey = cloneBytes(cfg.Token.VerifyKey)
	if cfg.Session.PublicRoutes != nil {
		out.Session.PublicRoutes = append([]string(nil), cfg.Session.PublicRoutes...)
	}
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	// API
	base, err := url.Parse(strings.TrimSpace(c.API.BaseURL))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return errors.New("API BaseURL must be an absolute URL")
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return errors.New("API BaseURL scheme must be http or https")
	}
	if c.API.Timeout < 0 {
		return errors.New("API Timeout must be >= 0")
	}
	endpoints := []struct{ name, path string }{
		{"SignIn", c.API.Endpoints.SignIn},
		{"Logout", c.API.Endpoints.Logout},
		{"Reissue", c.API.Endpoints.Reissue},
		{"Me", c.API.Endpoints.Me},
		{"Nickname", c.API.Endpoints.Nickname},
	}
	for _, ep := range endpoints {
		if !strings.HasPrefix(ep.path, "/") {
			return errors.New("API Endpoints." + ep.name + " must start with /")
		}
	}

	// Session
	if c.Session.Bootstrap != BootstrapDecode && c.Session.Bootstrap != BootstrapProfile {
		return errors.New("Session Bootstrap must be BootstrapDecode or BootstrapProfile")
	}
	if c.Session.RestoreTimeout <= 0 {
		return errors.New("Session RestoreTimeout must be > 0")
	}
	if c.Session.LogoutTimeout <= 0 {
		return errors.New("Session LogoutTimeout must be > 0")
	}
	if !strings.HasPrefix(c.Session.LoginPath, "/") {
		return errors.New("Session LoginPath must start with /")
	}
	if !strings.HasPrefix(c.Session.HomePath, "/") {
		return errors.New("Session HomePath must start with /")
	}
	for _, r := range c.Session.PublicRoutes {
		if !strings.HasPrefix(r, "/") {
			return errors.New("Session PublicRoutes entries must start with /")
		}
	}

	// Token
	switch c.Token.SigningMethod {
	case jwt.MethodNone:
		if len(c.Token.VerifyKey) > 0 {
			return errors.New("Token VerifyKey requires a SigningMethod")
		}
	case jwt.MethodEd25519, jwt.MethodHS256:
		if len(c.Token.VerifyKey) == 0 {
			return errors.New("Token SigningMethod requires VerifyKey")
		}
	default:
		return errors.New("unsupported Token SigningMethod")
	}
	if c.Token.Leeway < 0 || c.Token.Leeway > 2*time.Minute {
		return errors.New("Token Leeway must be between 0 and 2m")
	}

	// Events
	if c.Events.Enabled && c.Events.BufferSize <= 0 {
		return errors.New("Events BufferSize must be > 0 when Events are enabled")
	}

	return nil
}
