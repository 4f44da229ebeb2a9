package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/STTM-NSU/advisor-workspace/internal/advisor"
	"github.com/STTM-NSU/advisor-workspace/internal/cache"
	"github.com/STTM-NSU/advisor-workspace/internal/config"
	"github.com/STTM-NSU/advisor-workspace/internal/domainapi"
	"github.com/STTM-NSU/advisor-workspace/internal/logger"
	"github.com/STTM-NSU/advisor-workspace/internal/model"
	"github.com/STTM-NSU/advisor-workspace/internal/server"
	"github.com/STTM-NSU/advisor-workspace/internal/upstream"
	"github.com/STTM-NSU/advisor-workspace/internal/web"
	"github.com/STTM-NSU/advisor-workspace/internal/worker"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const (
	_domainCfgFilePath    = "./configs/domain.yaml"
	_poolShutdownDeadline = 30 * time.Second
)

var rootCmd = &cobra.Command{
	Use:   "domain-api",
	Short: "Advisor workspace public API",
	Long: `domain-api serves /api/v1 to advisor front ends. Reads go through a short lived
cache to the lfd-api service, or to built-in demo data when mock mode is on.`,
	Version: "0.1.0",
	RunE:    run,
}

func init() {
	rootCmd.Flags().String("config", _domainCfgFilePath, "path to the yaml config")
	rootCmd.Flags().String("log-level", "", "log level override (debug, info, warn, error)")
	rootCmd.Flags().Bool("mock", false, "serve demo data instead of calling lfd-api")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	cfgPath, _ := cmd.Flags().GetString("config")
	levelFlag, _ := cmd.Flags().GetString("log-level")

	envErr := godotenv.Load()

	cfg, err := config.LoadDomainConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("%w: can't load domain cfg", err)
	}
	if levelFlag != "" {
		cfg.Log.Level = levelFlag
	}
	if cmd.Flags().Changed("mock") {
		mock, _ := cmd.Flags().GetBool("mock")
		cfg.App.Mock.Enabled = &mock
	}
	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}

	zapLogger, loggerSync, err := logger.NewZapLogger(level)
	if err != nil {
		log.Fatalf("%s: can't init logger", err)
	}
	defer loggerSync()

	if envErr != nil {
		zapLogger.Warnf("can't detect .env file")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	health := map[string]web.HealthCheck{}
	var up upstream.Client
	if cfg.MockEnabled() {
		zapLogger.Warnf("mock mode is on, serving demo data")
		up = upstream.NewFixtureClient(time.Now(), zapLogger)
	} else {
		rest := upstream.NewRESTClient(cfg.LFD.API, zapLogger)
		defer func() {
			if err := rest.Close(); err != nil {
				zapLogger.Errorf("%s: can't close lfd client", err)
			}
		}()
		health["lfd"] = rest.Ping
		up = rest
	}

	clientsCache := cache.New[advisor.ClientPage](cache.AdvisorClients, cfg.Cache, zapLogger)
	searchCache := cache.New[advisor.ClientPage](cache.ClientSearch, cfg.Cache, zapLogger)
	holdingsCache := cache.New[model.HoldingsResponse](cache.AccountHoldings, cfg.Cache, zapLogger)
	summaryCache := cache.New[model.PortfolioSummary](cache.PortfolioSummary, cfg.Cache, zapLogger)

	general := worker.NewPool("general", cfg.Workers.General, worker.CallerRuns, zapLogger)
	export := worker.NewPool("export", cfg.Workers.Export, worker.Reject, zapLogger)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), _poolShutdownDeadline)
		defer cancel()
		for _, p := range []*worker.Pool{general, export} {
			if err := p.Shutdown(shutdownCtx); err != nil {
				zapLogger.Errorf("%s: can't drain %s pool", err, p.Name())
			}
		}
	}()

	h := domainapi.NewHandler(
		advisor.NewClientService(up, clientsCache, searchCache, zapLogger),
		advisor.NewHoldingsService(up, holdingsCache, summaryCache, general, zapLogger),
		advisor.NewExportService(export, zapLogger),
		zapLogger,
	)

	srv := server.NewHTTPServer(ctx, cfg.Server.Port, domainapi.NewRouter(h, health, zapLogger))
	zapLogger.Infof("%s listening on %s", domainapi.ServiceName, srv.Addr())
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("%w: can't run server", err)
	}
	zapLogger.Infof("%s stopped", domainapi.ServiceName)

	return nil
}
