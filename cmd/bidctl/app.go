package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/api"
	"github.com/MrEthical07/goSession/market"
	promexport "github.com/MrEthical07/goSession/metrics/export/prometheus"
	"github.com/MrEthical07/goSession/tokenstore"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

// route is what every command restores against; a CLI has no public pages.
const route = "/cli"

type app struct {
	cfg     fileConfig
	store   *goSession.Store
	market  *market.Client
	jar     http.CookieJar
	cookies *cookieFile
	logger  *slog.Logger
	out     io.Writer
	errOut  io.Writer
	closers []func()
}

func newApp(ctx context.Context, cfg fileConfig, stdout, stderr io.Writer) (*app, error) {
	logger := newLogger(cfg.Log, stderr)
	a := &app{cfg: cfg, logger: logger, out: stdout, errOut: stderr, jar: api.NewCookieJar()}

	cookies, err := newCookieFile(cfg.Cookies.Path, cfg.API.BaseURL)
	if err != nil {
		return nil, err
	}
	if err := cookies.Load(a.jar); err != nil {
		logger.Warn("ignoring unreadable cookie file", "path", cfg.Cookies.Path, "error", err)
	}
	a.cookies = cookies

	mirror, err := a.openMirror(ctx)
	if err != nil {
		a.close()
		return nil, err
	}

	b := goSession.New().
		WithConfig(cfg.storeConfig()).
		WithLogger(logger).
		WithEventSink(goSession.NewSlogSink(logger)).
		WithNavigator(goSession.NavigatorFunc(func(_ context.Context, path string) {
			logger.Debug("navigate", "path", path)
		})).
		WithAPIOptions(api.WithCookieJar(a.jar))
	if mirror != nil {
		b.WithTokenMirror(mirror)
	}
	store, err := b.Build()
	if err != nil {
		a.close()
		return nil, err
	}
	a.store = store
	a.market = market.New(store.API())
	return a, nil
}

func (a *app) openMirror(ctx context.Context) (tokenstore.Store, error) {
	switch a.cfg.Mirror.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: a.cfg.Mirror.RedisAddr, DB: a.cfg.Mirror.RedisDB})
		a.closers = append(a.closers, func() { _ = client.Close() })
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis mirror %s: %w", a.cfg.Mirror.RedisAddr, err)
		}
		return tokenstore.NewRedis(client, a.cfg.Mirror.RedisPrefix, ""), nil
	case "file", "":
		return tokenstore.NewFile(a.cfg.Mirror.Path, ""), nil
	default:
		return nil, nil
	}
}

// close persists cookies and metrics, then releases resources in reverse
// order of acquisition.
func (a *app) close() {
	if a.store != nil {
		a.store.Close()
		if err := a.cookies.Save(a.jar); err != nil {
			a.logger.Warn("cookie file write failed", "path", a.cfg.Cookies.Path, "error", err)
		}
		if a.cfg.Metrics.Path != "" {
			if err := a.dumpMetrics(); err != nil {
				a.logger.Warn("metrics dump failed", "path", a.cfg.Metrics.Path, "error", err)
			}
		}
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *app) dumpMetrics() error {
	exp := promexport.NewExporter(a.store, prometheus.Labels{"client": "bidctl"})
	rec := httptest.NewRecorder()
	exp.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if err := os.MkdirAll(filepath.Dir(a.cfg.Metrics.Path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(a.cfg.Metrics.Path, rec.Body.Bytes(), 0o600)
}

func newLogger(cfg logConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelWarn
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
