package main

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "api:\n  base_url: https://auction.example.com\n")

	cfg, err := loadConfig(path, "", "/home/kim")
	require.NoError(t, err)
	assert.Equal(t, "file", cfg.Mirror.Backend)
	assert.Equal(t, filepath.Join("/home/kim", ".bidctl", "token.json"), cfg.Mirror.Path)
	assert.Equal(t, filepath.Join("/home/kim", ".bidctl", "cookies.json"), cfg.Cookies.Path)

	sc := cfg.storeConfig()
	assert.Equal(t, "https://auction.example.com", sc.API.BaseURL)
	assert.Equal(t, 15*time.Second, sc.API.Timeout)
	assert.Equal(t, goSession.BootstrapDecode, sc.Session.Bootstrap)
	assert.Empty(t, sc.Session.PublicRoutes)
	require.NoError(t, sc.Validate())
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "api:\n  base_url: https://auction.example.com\n  timeout: 3s\nsession:\n  bootstrap: profile\n")
	env := writeFile(t, dir, ".env", "BIDCTL_MIRROR=redis\nBIDCTL_REDIS_ADDR=127.0.0.1:6379\n")
	t.Setenv("BIDCTL_BASE_URL", "https://staging.example.com")
	t.Setenv("BIDCTL_LOG_LEVEL", "DEBUG")
	t.Cleanup(func() {
		os.Unsetenv("BIDCTL_MIRROR")
		os.Unsetenv("BIDCTL_REDIS_ADDR")
	})

	cfg, err := loadConfig(path, env, dir)
	require.NoError(t, err)
	assert.Equal(t, "https://staging.example.com", cfg.API.BaseURL)
	assert.Equal(t, "redis", cfg.Mirror.Backend)
	assert.Equal(t, "127.0.0.1:6379", cfg.Mirror.RedisAddr)
	assert.Equal(t, "debug", cfg.Log.Level)

	sc := cfg.storeConfig()
	assert.Equal(t, 3*time.Second, sc.API.Timeout)
	assert.Equal(t, goSession.BootstrapProfile, sc.Session.Bootstrap)
}

func TestLoadConfigValidation(t *testing.T) {
	cases := map[string]string{
		"missing base url": "mirror:\n  backend: file\n",
		"bad base url":     "api:\n  base_url: not a url\n",
		"unknown mirror":   "api:\n  base_url: https://a.example.com\nmirror:\n  backend: s3\n",
		"redis no addr":    "api:\n  base_url: https://a.example.com\nmirror:\n  backend: redis\n",
		"bad timeout":      "api:\n  base_url: https://a.example.com\n  timeout: soon\n",
		"bad log level":    "api:\n  base_url: https://a.example.com\nlog:\n  level: loud\n",
		"malformed yaml":   "api: [\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "config.yaml", body)
			_, err := loadConfig(path, "", "/home/kim")
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigMissingFileUsesEnv(t *testing.T) {
	t.Setenv("BIDCTL_BASE_URL", "https://env.example.com")

	cfg, err := loadConfig(filepath.Join(t.TempDir(), "absent.yaml"), "", "/home/kim")
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com", cfg.API.BaseURL)
}

func TestCookieFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cookies.json")
	cf, err := newCookieFile(path, "https://auction.example.com")
	require.NoError(t, err)

	jar := api.NewCookieJar()
	require.NoError(t, cf.Load(jar))
	jar.SetCookies(cf.base, []*http.Cookie{{Name: "refresh_token", Value: "r-1", Path: "/"}})
	require.NoError(t, cf.Save(jar))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	fresh := api.NewCookieJar()
	require.NoError(t, cf.Load(fresh))
	cookies := fresh.Cookies(cf.base)
	require.Len(t, cookies, 1)
	assert.Equal(t, "refresh_token", cookies[0].Name)
	assert.Equal(t, "r-1", cookies[0].Value)

	require.NoError(t, cf.Save(api.NewCookieJar()))
	assert.NoFileExists(t, path)
}

func TestCookieFileRejectsCorruptFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "cookies.json", "{not json")
	cf, err := newCookieFile(path, "https://auction.example.com")
	require.NoError(t, err)
	assert.Error(t, cf.Load(api.NewCookieJar()))
}
