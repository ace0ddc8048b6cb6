package goSession

import (
	"testing"
	"time"

	"github.com/MrEthical07/goSession/jwt"
)

func validTestConfig() Config {
	cfg := DefaultConfig()
	cfg.API.BaseURL = "https://api.example.com"
	return cfg
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantValid bool
	}{
		{
			name:      "defaults with base url",
			mutate:    func(*Config) {},
			wantValid: true,
		},
		{
			name: "missing base url",
			mutate: func(c *Config) {
				c.API.BaseURL = ""
			},
			wantValid: false,
		},
		{
			name: "relative base url",
			mutate: func(c *Config) {
				c.API.BaseURL = "/api"
			},
			wantValid: false,
		},
		{
			name: "ftp base url",
			mutate: func(c *Config) {
				c.API.BaseURL = "ftp://api.example.com"
			},
			wantValid: false,
		},
		{
			name: "negative api timeout",
			mutate: func(c *Config) {
				c.API.Timeout = -time.Second
			},
			wantValid: false,
		},
		{
			name: "endpoint without slash",
			mutate: func(c *Config) {
				c.API.Endpoints.Reissue = "api/auth/reissue"
			},
			wantValid: false,
		},
		{
			name: "profile bootstrap",
			mutate: func(c *Config) {
				c.Session.Bootstrap = BootstrapProfile
			},
			wantValid: true,
		},
		{
			name: "unknown bootstrap",
			mutate: func(c *Config) {
				c.Session.Bootstrap = BootstrapStrategy(9)
			},
			wantValid: false,
		},
		{
			name: "zero restore timeout",
			mutate: func(c *Config) {
				c.Session.RestoreTimeout = 0
			},
			wantValid: false,
		},
		{
			name: "zero logout timeout",
			mutate: func(c *Config) {
				c.Session.LogoutTimeout = 0
			},
			wantValid: false,
		},
		{
			name: "login path without slash",
			mutate: func(c *Config) {
				c.Session.LoginPath = "login"
			},
			wantValid: false,
		},
		{
			name: "home path without slash",
			mutate: func(c *Config) {
				c.Session.HomePath = ""
			},
			wantValid: false,
		},
		{
			name: "public route without slash",
			mutate: func(c *Config) {
				c.Session.PublicRoutes = []string{"/", "signup"}
			},
			wantValid: false,
		},
		{
			name: "verify key without method",
			mutate: func(c *Config) {
				c.Token.VerifyKey = []byte("secret")
			},
			wantValid: false,
		},
		{
			name: "hs256 with key",
			mutate: func(c *Config) {
				c.Token.SigningMethod = jwt.MethodHS256
				c.Token.VerifyKey = []byte("secret-secret-secret-secret")
			},
			wantValid: true,
		},
		{
			name: "ed25519 without key",
			mutate: func(c *Config) {
				c.Token.SigningMethod = jwt.MethodEd25519
			},
			wantValid: false,
		},
		{
			name: "unknown signing method",
			mutate: func(c *Config) {
				c.Token.SigningMethod = "rs256"
				c.Token.VerifyKey = []byte("x")
			},
			wantValid: false,
		},
		{
			name: "leeway valid",
			mutate: func(c *Config) {
				c.Token.Leeway = 45 * time.Second
			},
			wantValid: true,
		},
		{
			name: "leeway too large",
			mutate: func(c *Config) {
				c.Token.Leeway = 3 * time.Minute
			},
			wantValid: false,
		},
		{
			name: "events enabled without buffer",
			mutate: func(c *Config) {
				c.Events.BufferSize = 0
			},
			wantValid: false,
		},
		{
			name: "events disabled without buffer",
			mutate: func(c *Config) {
				c.Events.Enabled = false
				c.Events.BufferSize = 0
			},
			wantValid: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validTestConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantValid && err != nil {
				t.Fatalf("expected valid config, got %v", err)
			}
			if !tc.wantValid && err == nil {
				t.Fatal("expected invalid config, got nil")
			}
		})
	}
}

func TestCloneConfigDetachesSlices(t *testing.T) {
	cfg := validTestConfig()
	cfg.Token.SigningMethod = jwt.MethodHS256
	cfg.Token.VerifyKey = []byte("secret-secret-secret-secret")

	clone := cloneConfig(cfg)
	clone.Session.PublicRoutes[0] = "/changed"
	clone.Token.VerifyKey[0] = 'X'

	if cfg.Session.PublicRoutes[0] != "/" {
		t.Fatalf("public routes shared with clone: %v", cfg.Session.PublicRoutes)
	}
	if cfg.Token.VerifyKey[0] != 's' {
		t.Fatal("verify key shared with clone")
	}
}

func TestBuilderRejectsReuseAndBadConfig(t *testing.T) {
	if _, err := New().Build(); err == nil {
		t.Fatal("expected error without base url")
	}

	b := New().WithBaseURL("http://127.0.0.1:1")
	s, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer s.Close()

	if _, err := b.Build(); err == nil {
		t.Fatal("expected error on second Build")
	}
}
