// Package di wires all application dependencies. The Container is the
// single source of truth for service instances and is handed to the
// server for handler construction.
package di

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/wealthscope/wealthscope/internal/clientdata"
	"github.com/wealthscope/wealthscope/internal/clients/fixedincome"
	"github.com/wealthscope/wealthscope/internal/clients/fxrates"
	"github.com/wealthscope/wealthscope/internal/clients/marketdata"
	"github.com/wealthscope/wealthscope/internal/config"
	"github.com/wealthscope/wealthscope/internal/database"
	"github.com/wealthscope/wealthscope/internal/modules/performance"
	"github.com/wealthscope/wealthscope/internal/modules/rebalancing"
	"github.com/wealthscope/wealthscope/internal/modules/risk"
	"github.com/wealthscope/wealthscope/internal/modules/stress"
)

// Container holds all dependencies for the application.
type Container struct {
	// Infrastructure
	ClientDataDB *database.DB
	CacheRepo    *clientdata.Repository
	CleanupJob   *clientdata.CleanupJob

	// External collaborator clients
	MarketDataClient  *marketdata.Client
	FxClient          *fxrates.Client
	FixedIncomeClient *fixedincome.Client

	// Engine services
	PerformanceService *performance.Service
	RiskService        *risk.Service
	StressEngine       *stress.Engine
	RebalancingAdvisor *rebalancing.Advisor
}

// Wire builds the full dependency graph.
func Wire(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	// Cache database for collaborator responses.
	clientDataDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "client_data.db"),
		Profile: database.ProfileCache,
		Name:    "client_data",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open client data database: %w", err)
	}

	cacheRepo := clientdata.NewRepository(clientDataDB.Conn())
	if err := cacheRepo.InitSchema(); err != nil {
		clientDataDB.Close()
		return nil, fmt.Errorf("failed to initialize cache schema: %w", err)
	}

	marketDataClient := marketdata.NewClient(cfg.MarketDataURL, cacheRepo, log)
	fxClient := fxrates.NewClient(cfg.FxServiceURL, cfg.ForeignCurrency, cfg.ReportingCurrency, cacheRepo, log)
	fixedIncomeClient := fixedincome.NewClient(cfg.FixedIncomeURL, cacheRepo, log)

	coordinator := performance.NewCoordinator(marketDataClient, fxClient, fixedIncomeClient, cfg.FetchWorkers, log)

	return &Container{
		ClientDataDB:      clientDataDB,
		CacheRepo:         cacheRepo,
		CleanupJob:        clientdata.NewCleanupJob(cacheRepo, log),
		MarketDataClient:  marketDataClient,
		FxClient:          fxClient,
		FixedIncomeClient: fixedIncomeClient,

		PerformanceService: performance.NewService(cfg, coordinator, marketDataClient, fxClient, log),
		RiskService:        risk.NewService(cfg.RiskFreeRate, log),
		StressEngine:       stress.NewEngine(cfg.StressDefaultSimulations, cfg.StressMaxSimulations, cfg.StressSeed, log),
		RebalancingAdvisor: rebalancing.NewAdvisor(cfg.RebalanceEpsilon, log),
	}, nil
}

// Close releases all held resources.
func (c *Container) Close() error {
	if c.ClientDataDB != nil {
		return c.ClientDataDB.Close()
	}
	return nil
}
