// Package app wires configuration, storage, and services into one unit
// shared by the server binary and integration tests.
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jortega/bolsillo/internal/common"
	"github.com/jortega/bolsillo/internal/interfaces"
	"github.com/jortega/bolsillo/internal/services/ledger"
	"github.com/jortega/bolsillo/internal/services/recurring"
	"github.com/jortega/bolsillo/internal/services/report"
	"github.com/jortega/bolsillo/internal/storage/surrealdb"
)

// App holds all initialized services and storage.
type App struct {
	Config           *common.Config
	Logger           *common.Logger
	Storage          interfaces.StorageManager
	LedgerService    interfaces.LedgerService
	RecurringService interfaces.RecurringService
	ReportService    interfaces.ReportService
	StartupTime      time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes configuration, logging, storage, and services.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	binDir := getBinaryDir()

	// Resolve config: provided path, BOLSILLO_CONFIG, binary dir, then dev fallback
	if configPath == "" {
		configPath = os.Getenv("BOLSILLO_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "bolsillo.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/bolsillo.toml"
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	storageManager, err := surrealdb.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	ledgerService := ledger.NewService(storageManager, logger)
	recurringService := recurring.NewService(storageManager, logger)
	reportService := report.NewService(storageManager, config.Reports, logger)

	a := &App{
		Config:           config,
		Logger:           logger,
		Storage:          storageManager,
		LedgerService:    ledgerService,
		RecurringService: recurringService,
		ReportService:    reportService,
		StartupTime:      startupStart,
	}

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")

	return a, nil
}

// Close releases all resources held by the App.
func (a *App) Close() {
	if a.Storage != nil {
		a.Storage.Close()
		a.Storage = nil
	}
}
