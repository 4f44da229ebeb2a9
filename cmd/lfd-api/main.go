package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/STTM-NSU/advisor-workspace/internal/config"
	"github.com/STTM-NSU/advisor-workspace/internal/database"
	"github.com/STTM-NSU/advisor-workspace/internal/lfd"
	"github.com/STTM-NSU/advisor-workspace/internal/lfdapi"
	"github.com/STTM-NSU/advisor-workspace/internal/logger"
	"github.com/STTM-NSU/advisor-workspace/internal/metrics"
	"github.com/STTM-NSU/advisor-workspace/internal/server"
	"github.com/STTM-NSU/advisor-workspace/internal/storedproc"
	"github.com/STTM-NSU/advisor-workspace/internal/web"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const (
	_lfdCfgFilePath = "./configs/lfd.yaml"
)

var rootCmd = &cobra.Command{
	Use:   "lfd-api",
	Short: "Internal data service over the stored procedures",
	Long: `lfd-api exposes the /internal API used by the domain service. Every request
is answered by a stored procedure on the primary or read-only database.`,
	Version: "0.1.0",
	RunE:    run,
}

func init() {
	rootCmd.Flags().String("config", _lfdCfgFilePath, "path to the yaml config")
	rootCmd.Flags().String("log-level", "", "log level override (debug, info, warn, error)")
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

	cfg, err := config.LoadLFDConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("%w: can't load lfd cfg", err)
	}
	if levelFlag != "" {
		cfg.Log.Level = levelFlag
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

	primaryCfg, readOnlyCfg, err := database.NewConfigFromEnv()
	if err != nil {
		return fmt.Errorf("%w: can't read database env", err)
	}

	dbCfg := cfg.BNY.Database
	primary, err := database.Open(ctx, primaryCfg, database.Options{
		Name:       "primary",
		Pool:       dbCfg.Primary,
		Statements: dbCfg.PreparedStatements,
	}, zapLogger)
	if err != nil {
		return fmt.Errorf("%w: can't open primary pool", err)
	}
	defer func() {
		if err := primary.Close(); err != nil {
			zapLogger.Errorf("%s: can't close primary pool", err)
		}
	}()

	var readOnly *database.Pool
	if readOnlyCfg != nil {
		readOnly, err = database.Open(ctx, readOnlyCfg, database.Options{
			Name:       "read-only",
			Pool:       dbCfg.ReadOnly,
			Statements: dbCfg.PreparedStatements,
			ReadOnly:   true,
		}, zapLogger)
		if err != nil {
			return fmt.Errorf("%w: can't open read-only pool", err)
		}
		defer func() {
			if err := readOnly.Close(); err != nil {
				zapLogger.Errorf("%s: can't close read-only pool", err)
			}
		}()
	} else {
		zapLogger.Infof("DATABASE_READONLY_URL is not set, reads go to the primary")
	}

	health := map[string]web.HealthCheck{"database": primary.Ping}
	for _, p := range []*database.Pool{primary, readOnly} {
		if p == nil {
			continue
		}
		if err := metrics.RegisterDBStats(p.DB().DB, p.Name()); err != nil {
			zapLogger.Warnf("%s: can't register db stats for %s", err, p.Name())
		}
		go p.RunLeakDetector(ctx)
	}
	if readOnly != nil {
		health["database-read-only"] = readOnly.Ping
	}

	exec := storedproc.NewExecutor(primary, readOnly, storedproc.NewSchemaCatalog(), dbCfg.QueryTimeout, zapLogger)

	h := lfdapi.NewHandler(
		lfd.NewClientDataService(exec, zapLogger),
		lfd.NewHoldingsDataService(exec, zapLogger),
		lfd.NewAccountDataService(exec, zapLogger),
		zapLogger,
	)

	srv := server.NewHTTPServer(ctx, cfg.Server.Port, lfdapi.NewRouter(h, health, zapLogger))
	zapLogger.Infof("%s listening on %s", lfdapi.ServiceName, srv.Addr())
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("%w: can't run server", err)
	}
	zapLogger.Infof("%s stopped", lfdapi.ServiceName)

	return nil
}
