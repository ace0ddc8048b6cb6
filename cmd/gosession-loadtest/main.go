// Command gosession-loadtest drives many session stores against an
// in-process auction backend whose access tokens expire quickly, so the
// fetch phase exercises the 401 → reissue → retry path under concurrency.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"sync/atomic"
	"time"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/api"
	"github.com/MrEthical07/goSession/internal/testbackend"
	"github.com/MrEthical07/goSession/tokenstore"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type options struct {
	clients     int
	concurrency int
	ops         int
	ttl         time.Duration
	redisAddr   string
	prefix      string
}

func main() {
	var opts options
	flag.IntVar(&opts.clients, "clients", 64, "number of signed-in session stores")
	flag.IntVar(&opts.concurrency, "concurrency", 32, "number of concurrent workers")
	flag.IntVar(&opts.ops, "ops", 20000, "operations in the fetch phase")
	flag.DurationVar(&opts.ttl, "ttl", 3*time.Second, "access token lifetime issued by the backend (token expiry has one-second resolution)")
	flag.StringVar(&opts.redisAddr, "redis-addr", "", "redis address for token mirrors; if empty, REDIS_ADDR env or miniredis is used")
	flag.StringVar(&opts.prefix, "prefix", "gosession-lt:", "mirror key prefix")
	flag.Parse()

	if opts.clients <= 0 || opts.concurrency <= 0 || opts.ops <= 0 {
		fmt.Fprintln(os.Stderr, "clients, concurrency, and ops must be > 0")
		os.Exit(2)
	}
	if opts.ttl < 2*time.Second {
		fmt.Fprintln(os.Stderr, "ttl must be at least 2s")
		os.Exit(2)
	}
	if opts.redisAddr == "" {
		opts.redisAddr = os.Getenv("REDIS_ADDR")
	}

	if _, err := run(context.Background(), opts, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type report struct {
	fetch    phaseStats
	restore  phaseStats
	reissues int
	counters map[goSession.MetricID]uint64
}

type client struct {
	store  *goSession.Store
	jar    http.CookieJar
	mirror tokenstore.Store
}

func run(ctx context.Context, opts options, out io.Writer) (report, error) {
	var rep report

	rdb, cleanup, err := openRedis(opts.redisAddr, out)
	if err != nil {
		return rep, err
	}
	defer cleanup()

	backend, err := testbackend.NewDefault()
	if err != nil {
		return rep, err
	}
	backend.SetAccessTTL(opts.ttl)
	srv := httptest.NewServer(backend.Handler())
	defer srv.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	fmt.Fprintf(out, "signing in %d clients...\n", opts.clients)
	startSeed := time.Now()
	clients := make([]*client, opts.clients)
	for i := range clients {
		c := &client{
			jar:    api.NewCookieJar(),
			mirror: tokenstore.NewRedis(rdb, opts.prefix, fmt.Sprintf("client-%d", i)),
		}
		c.store, err = buildStore(srv.URL, c, logger)
		if err != nil {
			return rep, err
		}
		if _, err := c.store.SignIn(ctx, testbackend.UserAccount.Email, testbackend.UserAccount.Password); err != nil {
			return rep, fmt.Errorf("sign-in %d: %w", i, err)
		}
		clients[i] = c
	}
	fmt.Fprintf(out, "signed in in %s\n", time.Since(startSeed).Round(time.Millisecond))

	rep.fetch = runFetchPhase(ctx, clients, opts.ops, opts.concurrency)
	rep.restore, err = runRestorePhase(ctx, srv.URL, clients, opts.concurrency, logger)
	if err != nil {
		return rep, err
	}

	rep.reissues = backend.Calls("/api/auth/reissue")
	rep.counters = map[goSession.MetricID]uint64{}
	for _, c := range clients {
		for id, v := range c.store.MetricsSnapshot().Counters {
			rep.counters[id] += v
		}
		c.store.Close()
	}

	fmt.Fprintln(out, "---- results ----")
	printStats(out, "fetch", rep.fetch)
	printStats(out, "restore", rep.restore)
	fmt.Fprintf(out, "backend reissues=%d store refreshes=%d refresh failures=%d unauthorized=%d\n",
		rep.reissues,
		rep.counters[goSession.MetricRefreshSuccess],
		rep.counters[goSession.MetricRefreshFailure],
		rep.counters[goSession.MetricUnauthorized],
	)
	return rep, nil
}

func openRedis(addr string, out io.Writer) (redis.UniversalClient, func(), error) {
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to start miniredis: %w", err)
		}
		client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{mr.Addr()}})
		fmt.Fprintf(out, "using miniredis at %s\n", mr.Addr())
		return client, func() {
			_ = client.Close()
			mr.Close()
		}, nil
	}
	client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
	fmt.Fprintf(out, "using redis at %s\n", addr)
	return client, func() { _ = client.Close() }, nil
}

func buildStore(baseURL string, c *client, logger *slog.Logger) (*goSession.Store, error) {
	cfg := goSession.DefaultConfig()
	cfg.API.BaseURL = baseURL
	cfg.Events.Enabled = false
	return goSession.New().
		WithConfig(cfg).
		WithTokenMirror(c.mirror).
		WithLogger(logger).
		WithAPIOptions(api.WithCookieJar(c.jar)).
		Build()
}

func runFetchPhase(ctx context.Context, clients []*client, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				c := clients[r.Intn(len(clients))]
				t0 := time.Now()
				_, err := api.Get[goSession.User](ctx, c.store.API(), "/api/users/me")
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	return computeStats(time.Since(start), latencies, failures)
}

// runRestorePhase rebuilds every client from its mirror and cookies, the way
// a reopened app would, and times Restore.
func runRestorePhase(ctx context.Context, baseURL string, clients []*client, concurrency int, logger *slog.Logger) (phaseStats, error) {
	fresh := make([]*goSession.Store, len(clients))
	for i, c := range clients {
		s, err := buildStore(baseURL, c, logger)
		if err != nil {
			return phaseStats{}, err
		}
		fresh[i] = s
	}
	defer func() {
		for _, s := range fresh {
			s.Close()
		}
	}()

	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, len(fresh))
		mu        sync.Mutex
	)
	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= len(fresh) {
					return
				}
				t0 := time.Now()
				sess := fresh[i].Restore(ctx, "/mypage")
				d := time.Since(t0)
				if !sess.Authenticated() {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return computeStats(time.Since(start), latencies, failures), nil
}
