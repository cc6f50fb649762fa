// Package app wires the session store, the registry, both identity flows
// and the action gate into one value shared by the terminal UI and the
// command line.
package app

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"golang.org/x/oauth2"

	"github.com/dreamswag/ci5dev/internal/auth"
	"github.com/dreamswag/ci5dev/internal/browser"
	"github.com/dreamswag/ci5dev/internal/config"
	"github.com/dreamswag/ci5dev/internal/domain"
	"github.com/dreamswag/ci5dev/internal/gate"
	"github.com/dreamswag/ci5dev/internal/logger"
	"github.com/dreamswag/ci5dev/internal/metrics"
	"github.com/dreamswag/ci5dev/internal/poller"
	"github.com/dreamswag/ci5dev/internal/provider/ci5"
	"github.com/dreamswag/ci5dev/internal/provider/common"
	"github.com/dreamswag/ci5dev/internal/provider/github"
	"github.com/dreamswag/ci5dev/internal/registry"
	"github.com/dreamswag/ci5dev/internal/render"
	"github.com/dreamswag/ci5dev/internal/submission"
	"github.com/dreamswag/ci5dev/internal/telemetry"
	"github.com/dreamswag/ci5dev/internal/verify"
)

// ErrReloadSuperseded is returned by a reload that finished after a
// later one had already replaced the registry.
var ErrReloadSuperseded = errors.New("reload superseded by a newer one")

// URLOpener hands a URL to the desktop.
type URLOpener interface {
	Open(url string) error
}

type App struct {
	Config    *config.Config
	Store     domain.SessionRepository
	Metrics   *metrics.Metrics
	Poller    *poller.Supervisor
	Loader    *registry.Loader
	Sources   *SourceManager
	Auth      *auth.Flow
	Verify    *verify.Flow
	Gate      *gate.Gate
	Telemetry *telemetry.Service
	Composer  *submission.Composer

	browser URLOpener
	cancel  context.CancelFunc

	mu      sync.RWMutex
	reg     *domain.Registry
	issued  uint64
	applied uint64
}

type options struct {
	store      domain.SessionRepository
	httpClient *http.Client
	metrics    *metrics.Metrics
	browser    URLOpener
	authOpts   []auth.Option
	verifyOpts []verify.Option
}

type Option func(*options)

// WithStore replaces the file-backed session store.
func WithStore(store domain.SessionRepository) Option {
	return func(o *options) { o.store = store }
}

func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

func WithBrowser(b URLOpener) Option {
	return func(o *options) { o.browser = b }
}

// WithAuthOptions passes extra options to the device flow.
func WithAuthOptions(opts ...auth.Option) Option {
	return func(o *options) { o.authOpts = append(o.authOpts, opts...) }
}

// WithVerifyOptions passes extra options to the hardware verification flow.
func WithVerifyOptions(opts ...verify.Option) Option {
	return func(o *options) { o.verifyOpts = append(o.verifyOpts, opts...) }
}

// New builds the application from cfg. Background polls live until Close.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.metrics == nil {
		o.metrics = metrics.New()
	}
	if o.httpClient == nil {
		o.httpClient = common.NewHTTPClient(cfg.HTTPTimeout, o.metrics)
	}
	if o.store == nil {
		o.store = storageFor(cfg)
	}
	if o.browser == nil {
		o.browser = &browser.Opener{}
	}

	ctx, cancel := context.WithCancel(ctx)
	sup := poller.NewSupervisor(ctx)

	accounts := github.NewProvider(o.httpClient, cfg.GitHubAPIURL, cfg.IssueRepo)

	authFlow := auth.NewFlow(OAuthConfig(cfg), o.store, accounts, sup,
		append([]auth.Option{
			auth.WithHTTPClient(o.httpClient),
			auth.WithMetrics(o.metrics),
			auth.WithTimeout(cfg.AuthTimeout),
		}, o.authOpts...)...)

	verifyFlow := verify.NewFlow(ci5.NewClient(o.httpClient, cfg.APIBaseURL), o.store, sup,
		append([]verify.Option{
			verify.WithMetrics(o.metrics),
			verify.WithPollInterval(cfg.VerifyPollInterval),
			verify.WithTimeout(cfg.VerifyTimeout),
			verify.WithChallengeTTL(cfg.ChallengeTTL),
			verify.WithSessionTTL(cfg.SessionTTL),
		}, o.verifyOpts...)...)

	loader := registry.NewLoader(o.httpClient, cfg.ManifestURL,
		registry.WithConcurrency(cfg.SourceConcurrency),
		registry.WithMetrics(o.metrics))

	a := &App{
		Config:    cfg,
		Store:     o.store,
		Metrics:   o.metrics,
		Poller:    sup,
		Loader:    loader,
		Sources:   NewSourceManager(o.store),
		Auth:      authFlow,
		Verify:    verifyFlow,
		Gate:      gate.New(authFlow, verifyFlow),
		Telemetry: telemetry.NewService(accounts, o.store.Token),
		Composer:  submission.NewComposer(cfg.GitHubWebURL, cfg.IssueRepo),
		browser:   o.browser,
		cancel:    cancel,
		reg:       domain.NewRegistry(),
	}

	// A logout ends the verified session too.
	authFlow.Subscribe(func(ev auth.Event) {
		if ev.Kind == auth.EventLoggedOut {
			verifyFlow.Reset()
		}
	})

	return a, nil
}

// OAuthConfig is the device flow client configuration for cfg.
func OAuthConfig(cfg *config.Config) oauth2.Config {
	return oauth2.Config{
		ClientID: cfg.ClientID,
		Scopes:   []string{cfg.Scope},
		Endpoint: oauth2.Endpoint{
			DeviceAuthURL: cfg.DeviceCodeURL,
			TokenURL:      cfg.TokenURL,
			AuthStyle:     oauth2.AuthStyleInParams,
		},
	}
}

// Close stops every background poll.
func (a *App) Close() {
	a.Poller.StopAll()
	a.cancel()
}

// Registry is the most recently loaded registry.
func (a *App) Registry() *domain.Registry {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.reg
}

// Reload fetches the manifest and every enabled source. The registry is
// replaced even when the manifest is unreachable; it is then flagged
// offline and err is registry.ErrOffline. Overlapping reloads apply in
// the order they were issued: one that finishes after a later reload has
// been applied leaves the registry alone, returns it unchanged and
// reports ErrReloadSuperseded.
func (a *App) Reload(ctx context.Context) (*domain.Registry, error) {
	a.mu.Lock()
	a.issued++
	seq := a.issued
	a.mu.Unlock()

	reg, err := a.Loader.Load(ctx, a.Store.Sources())

	a.mu.Lock()
	defer a.mu.Unlock()
	if seq < a.applied {
		logger.Log("Registry: dropping reload %d, %d already applied", seq, a.applied)
		return a.reg, ErrReloadSuperseded
	}
	a.applied = seq
	a.reg = reg
	a.Sources.Track(reg.Sources)
	return reg, err
}

// Renderer returns a renderer over the current registry.
func (a *App) Renderer() *render.Renderer {
	return render.NewRenderer(a.Registry(), a.Config.GitHubWebURL)
}

// Startup restores identity from the previous run: the stored token is
// checked against GitHub and the session against the verification
// service. Neither failure is fatal.
func (a *App) Startup(ctx context.Context) {
	if _, err := a.Auth.CheckAuth(ctx); err != nil {
		logger.LogError("STARTUP_AUTH", "github", err)
	}
	if a.Auth.LoggedIn() {
		a.Verify.CheckExisting(ctx)
	}
}

func (a *App) Open(url string) error {
	return a.browser.Open(url)
}

// Login returns the signed-in GitHub login, or "" when logged out.
func (a *App) Login() string {
	if u := a.Auth.User(); u != nil {
		return u.Login
	}
	return ""
}
