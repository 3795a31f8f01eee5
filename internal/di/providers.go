package di

import (
	"fmt"

	"FXOptions/internal/domain/repository"
	"FXOptions/internal/handler/api"
	"FXOptions/internal/service/boe"
	"FXOptions/internal/service/ecb"
	"FXOptions/internal/service/provider"
	"FXOptions/internal/service/ratelimit"
	"FXOptions/internal/service/yahoo"
	"FXOptions/internal/services/volatility"
	"FXOptions/internal/usecase"
	"FXOptions/pkg/cache"
	"FXOptions/pkg/config"
	xhttp "FXOptions/pkg/http"
	"FXOptions/pkg/logger"
	"FXOptions/pkg/metrics"
	"FXOptions/pkg/server"
)

// Version is reported by /api/debug. Set at build time with -ldflags.
var Version = "dev"

// Fetchers holds one throttled fetcher per upstream provider.
type Fetchers struct {
	Yahoo *provider.Fetcher
	ECB   *provider.Fetcher
	BoE   *provider.Fetcher
}

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideHTTPClient creates the outbound client shared by every provider.
func ProvideHTTPClient(cfg *config.Config) *xhttp.Client {
	return xhttp.NewClient(
		xhttp.WithTimeout(cfg.HTTPClient.Timeout),
		xhttp.WithUserAgent(cfg.HTTPClient.UserAgent),
	)
}

// ProvideLimiter creates the outbound token bucket, keyed per provider.
func ProvideLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.RateLimit.Capacity, cfg.RateLimit.RefillPerSec)
}

// ProvideFetchers creates the per-provider fetchers.
func ProvideFetchers(client *xhttp.Client, limiter *ratelimit.Limiter, m repository.Metrics, l *logger.Logger) Fetchers {
	newFetcher := func(name string) *provider.Fetcher {
		return provider.New(name, client,
			provider.WithLimiter(limiter),
			provider.WithMetrics(m),
			provider.WithLogger(l),
		)
	}
	return Fetchers{
		Yahoo: newFetcher("yahoo"),
		ECB:   newFetcher("ecb"),
		BoE:   newFetcher("boe"),
	}
}

// ProvideCredentialStore creates the store for the Yahoo cookie and crumb.
// An unreachable Redis degrades to the in-process store.
func ProvideCredentialStore(cfg *config.Config, l *logger.Logger) (cache.Service, func(), error) {
	memory := func() (cache.Service, func(), error) {
		return cache.NewMemoryCache(cache.WithMemoryMaxSize(16)), func() {}, nil
	}
	if cfg.CredentialStore.Type != "redis" {
		return memory()
	}

	rc := cfg.CredentialStore.Redis
	store, err := cache.NewRedisCache(
		cache.WithRedisHost(rc.Host),
		cache.WithRedisPort(rc.Port),
		cache.WithRedisPassword(rc.Password),
		cache.WithRedisDB(rc.DB),
	)
	if err != nil {
		l.Warn("credential store: redis unavailable, using memory",
			logger.String("host", rc.Host),
			logger.Int("port", rc.Port),
			logger.Error(err),
		)
		return memory()
	}
	cleanup := func() {
		if err := store.Close(); err != nil {
			l.Warn("credential store: redis close error", logger.Error(err))
		}
	}
	return store, cleanup, nil
}

// ProvideYahooSession creates the shared cookie and crumb cell.
func ProvideYahooSession(f Fetchers, cfg *config.Config, store cache.Service, m repository.Metrics) *yahoo.Session {
	cs := cfg.CredentialStore
	return yahoo.NewSession(f.Yahoo, cfg.Providers.Yahoo.CookieURL, cfg.Providers.Yahoo.CrumbURL,
		yahoo.WithStore(store, cs.Key, cs.TTL),
		yahoo.WithSessionMetrics(m),
	)
}

// ProvideYahooClient creates the quote, history and options chain source.
func ProvideYahooClient(f Fetchers, cfg *config.Config, session *yahoo.Session) *yahoo.Client {
	y := cfg.Providers.Yahoo
	return yahoo.New(f.Yahoo, yahoo.Config{
		ChartURL:     y.ChartURL,
		OptionsURL:   y.OptionsURL,
		CookieURL:    y.CookieURL,
		CrumbURL:     y.CrumbURL,
		HistoryRange: y.HistoryRange,
	}, session)
}

// ProvideRateSources creates the central bank rate feeds.
func ProvideRateSources(f Fetchers, cfg *config.Config) usecase.RateSources {
	p := cfg.Providers
	return usecase.RateSources{
		ESTR: ecb.New(f.ECB, p.ECB.ESTRURL, "ESTR"),
		DFR:  ecb.New(f.ECB, p.ECB.DFRURL, "DFR"),
		BoE:  boe.New(f.BoE, p.BoE.URL),
	}
}

// ProvideMarketDataConfig maps the YAML market data section.
func ProvideMarketDataConfig(cfg *config.Config) usecase.MarketDataConfig {
	md := cfg.MarketData
	rv := md.ReferenceVol
	return usecase.MarketDataConfig{
		MetalFutures: md.MetalFutures,
		LeaseRates:   md.LeaseRates,
		DefaultRates: md.DefaultRates,
		RateMin:      md.RateMin,
		RateMax:      md.RateMax,
		History: volatility.Options{
			MinRawPoints:     md.History.MinRawPoints,
			MinReturns:       md.History.MinReturns,
			OutlierThreshold: md.History.OutlierThreshold,
			PeriodsPerYear:   md.History.PeriodsPerYear,
		},
		HistoryRange: cfg.Providers.Yahoo.HistoryRange,
		ReferenceVol: usecase.ReferenceVolConfig{
			Underlyings:   rv.Underlyings,
			AssumedRate:   rv.AssumedRate,
			MoneynessBand: rv.MoneynessBand,
			MinLastPrice:  rv.MinLastPrice,
			MinVol:        rv.MinVol,
			MaxVol:        rv.MaxVol,
		},
	}
}

// ProvideMarketDataAggregator creates the market data use case.
func ProvideMarketDataAggregator(
	y *yahoo.Client,
	rates usecase.RateSources,
	mdcfg usecase.MarketDataConfig,
	m repository.Metrics,
	l *logger.Logger,
) *usecase.MarketDataAggregator {
	return usecase.NewMarketDataAggregator(y, y, y, rates, mdcfg,
		usecase.WithAggregatorLogger(l),
		usecase.WithResolutionMetrics(m),
	)
}

// ProvidePricingService creates the pricing use case.
func ProvidePricingService(l *logger.Logger) *usecase.PricingService {
	return usecase.NewPricingService(l)
}

// ProvidePricingHandler creates the HTTP handler.
func ProvidePricingHandler(l *logger.Logger, svc *usecase.PricingService, agg *usecase.MarketDataAggregator) *api.PricingHandler {
	return api.NewPricingHandler(l, svc, agg, api.WithVersion(Version))
}

// ProvideHTTPServer creates the Echo server.
func ProvideHTTPServer(cfg *config.Config, h *api.PricingHandler, l *logger.Logger) *xhttp.Server {
	metricsPath := ""
	if cfg.MetricsEnabled() {
		metricsPath = cfg.Metrics.Path
	}
	return xhttp.NewServer(h,
		xhttp.WithLogger(l),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithMetrics(metricsPath, cfg.Server.SlowRequest),
	)
}

// ProvideApp creates the application server.
func ProvideApp(cfg *config.Config, srv *xhttp.Server, l *logger.Logger) *server.App {
	return server.New(cfg, srv, l)
}
