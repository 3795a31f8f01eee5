//go:build wireinject
// +build wireinject

package di

import (
	"FXOptions/internal/usecase"
	"FXOptions/pkg/config"
	"FXOptions/pkg/server"

	"github.com/google/wire"
)

// marketDataSet builds the aggregator and everything behind it.
var marketDataSet = wire.NewSet(
	ProvideLogger,
	ProvideMetrics,

	// Outbound infrastructure
	ProvideHTTPClient,
	ProvideLimiter,
	ProvideFetchers,
	ProvideCredentialStore,

	// Quote sources
	ProvideYahooSession,
	ProvideYahooClient,
	ProvideRateSources,

	ProvideMarketDataConfig,
	ProvideMarketDataAggregator,
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		marketDataSet,

		// Use cases
		ProvidePricingService,

		// HTTP
		ProvidePricingHandler,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return nil, nil, nil
}

// InitializeMarketData wires the aggregator alone, for one-shot commands.
func InitializeMarketData(cfg *config.Config) (*usecase.MarketDataAggregator, func(), error) {
	wire.Build(marketDataSet)
	return nil, nil, nil
}
