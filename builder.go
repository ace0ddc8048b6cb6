package goSession

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/MrEthical07/goSession/api"
	"github.com/MrEthical07/goSession/internal/events"
	"github.com/MrEthical07/goSession/internal/flows"
	"github.com/MrEthical07/goSession/jwt"
	"github.com/MrEthical07/goSession/tokenstore"
)

// Builder assembles a [Store]. Configure it during initialization and call
// Build once.
type Builder struct {
	config Config

	mirror     tokenstore.Store
	navigator  Navigator
	logger     *slog.Logger
	eventSink  EventSink
	apiOptions []api.Option

	built bool
}

// New returns a builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithBaseURL sets Config.API.BaseURL.
func (b *Builder) WithBaseURL(baseURL string) *Builder {
	b.config.API.BaseURL = baseURL
	return b
}

// WithTokenMirror persists the access token across restarts. Without one the
// token lives only in memory.
func (b *Builder) WithTokenMirror(mirror tokenstore.Store) *Builder {
	b.mirror = mirror
	return b
}

func (b *Builder) WithNavigator(n Navigator) *Builder {
	b.navigator = n
	return b
}

func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

func (b *Builder) WithEventSink(sink EventSink) *Builder {
	b.eventSink = sink
	return b
}

// WithAPIOptions passes options to the fetch client. The Store installs its
// own observer, refresher and unauthorized handler after them.
func (b *Builder) WithAPIOptions(opts ...api.Option) *Builder {
	b.apiOptions = append(b.apiOptions, opts...)
	return b
}

func (b *Builder) WithBootstrap(strategy BootstrapStrategy) *Builder {
	b.config.Session.Bootstrap = strategy
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and returns a Store in StateRestoring.
func (b *Builder) Build() (*Store, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	decoder, err := jwt.NewDecoder(jwt.Config{
		SigningMethod:   cfg.Token.SigningMethod,
		VerifyKey:       cloneBytes(cfg.Token.VerifyKey),
		Issuer:          cfg.Token.Issuer,
		Leeway:          cfg.Token.Leeway,
		RequireNickname: cfg.Token.RequireNickname,
	})
	if err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}
	navigator := b.navigator
	if navigator == nil {
		navigator = noopNavigator{}
	}

	s := &Store{
		config:      cfg,
		decoder:     decoder,
		mirror:      b.mirror,
		navigator:   navigator,
		logger:      logger,
		metrics:     NewMetrics(cfg.Metrics),
		state:       StateRestoring,
		loading:     true,
		restoreDone: make(chan struct{}),
	}
	s.events = events.NewDispatcher(events.Config{
		Enabled:    cfg.Events.Enabled,
		BufferSize: cfg.Events.BufferSize,
		DropIfFull: cfg.Events.DropIfFull,
	}, b.eventSink)

	opts := append([]api.Option{}, b.apiOptions...)
	opts = append(opts,
		api.WithLogger(logger),
		api.WithObserver(s.metrics.observeRequest),
		api.WithUnauthorizedHandler(s.handleUnauthorized),
	)
	if cfg.API.Timeout > 0 {
		opts = append(opts, api.WithTimeout(cfg.API.Timeout))
	}
	if cfg.API.RetryOnUnauthorized {
		opts = append(opts, api.WithRefresher(api.RefresherFunc(s.refresh)))
	}
	client, err := api.New(cfg.API.BaseURL, opts...)
	if err != nil {
		s.events.Close()
		return nil, err
	}
	s.client = client

	s.flows = flows.New(s.flowDeps())
	b.built = true
	return s, nil
}

func (s *Store) flowDeps() flows.Deps {
	ep := s.config.API.Endpoints
	client := s.client

	var loadMirror func(context.Context) (string, error)
	if s.mirror != nil {
		loadMirror = s.loadMirror
	}

	return flows.Deps{
		SignIn: flows.SignInDeps{
			PostSignIn: func(ctx context.Context, email, password string) (flows.SignInResponse, error) {
				body := map[string]string{"email": email, "password": password}
				return api.Post[flows.SignInResponse](ctx, client, ep.SignIn, body, api.SkipAuth())
			},
			DecodeUser: s.decodeUser,
		},
		Logout: flows.LogoutDeps{
			Notify: func(ctx context.Context) error {
				ctx, cancel := context.WithTimeout(ctx, s.config.Session.LogoutTimeout)
				defer cancel()
				return client.Do(ctx, http.MethodPost, ep.Logout, nil, nil, api.NoRetry(), api.NoUnauthorizedHook())
			},
			Clear: s.clearSession,
		},
		Restore: flows.RestoreDeps{
			LoadMirror: loadMirror,
			Reissue: flows.ReissueDeps{
				FetchProfile: s.config.Session.Bootstrap == BootstrapProfile,
				Reissue: func(ctx context.Context) (flows.ReissueResponse, error) {
					return api.Post[flows.ReissueResponse](ctx, client, ep.Reissue, nil, api.SkipAuth())
				},
				DecodeUser: s.decodeUser,
				Install:    s.installToken,
				Profile: func(ctx context.Context) (flows.UserRecord, error) {
					return api.Get[flows.UserRecord](ctx, client, ep.Me, api.NoRetry(), api.NoUnauthorizedHook())
				},
				ExpiresAt: func(token string) time.Time {
					return s.decoder.PeekExpiry(token)
				},
			},
		},
	}
}
