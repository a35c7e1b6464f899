// Lights Core - multi-user light inventory service.
//
// lightsd is the main entry point. It wires configuration, SQLite
// storage, the credential service, and the HTTP API, then waits for a
// shutdown signal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lumakit/lights-core/migrations"

	"github.com/lumakit/lights-core/internal/api"
	"github.com/lumakit/lights-core/internal/audit"
	"github.com/lumakit/lights-core/internal/auth"
	"github.com/lumakit/lights-core/internal/infrastructure/config"
	"github.com/lumakit/lights-core/internal/infrastructure/database"
	"github.com/lumakit/lights-core/internal/infrastructure/logging"
	"github.com/lumakit/lights-core/internal/light"
)

// Version information - set at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "unknown"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the application logic, separated from main for testability.
func run(ctx context.Context) error {
	// Use the default logger until config is loaded.
	log := logging.Default()
	log.Info("starting Lights Core", "version", version, "commit", commit)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised", "level", cfg.Logging.Level, "format", cfg.Logging.Format)

	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	log.Info("database migrations complete")

	// Repositories
	userRepo := auth.NewUserRepository(db.DB)
	lightRepo := light.NewSQLiteRepository(db.DB)
	auditRepo := audit.NewRepository(db.DB)

	// Credential stack
	hasher := auth.NewHasher(auth.HasherConfig{
		Time:    uint32(cfg.Security.Password.Argon2.Time),    //nolint:gosec // validated config
		Memory:  uint32(cfg.Security.Password.Argon2.Memory),  //nolint:gosec // validated config
		Threads: uint8(cfg.Security.Password.Argon2.Threads),  //nolint:gosec // validated config
	})

	var breach *auth.BreachChecker
	if cfg.Security.Password.Breach.Enabled {
		breach = auth.NewBreachChecker(
			cfg.Security.Password.Breach.Endpoint,
			cfg.GetBreachTimeout(),
			log.Logger,
		)
		log.Info("breach checking enabled", "timeout", cfg.GetBreachTimeout())
	} else {
		log.Info("breach checking disabled")
	}

	tokens := auth.NewTokenIssuer(
		[]byte(cfg.Security.JWT.Secret),
		cfg.Security.JWT.Issuer,
		cfg.GetTokenTTL(),
	)

	credentials := auth.NewCredentialService(auth.CredentialServiceDeps{
		Store:  userRepo,
		Hasher: hasher,
		Tokens: tokens,
		Breach: breach,
		Logger: log.Logger,
	})

	// First boot: create the admin account if no users exist.
	if _, err := auth.SeedAdmin(ctx, userRepo, hasher, log.Logger); err != nil {
		return fmt.Errorf("seeding admin account: %w", err)
	}

	server, err := api.New(api.Deps{
		Config:      cfg.API,
		Security:    cfg.Security,
		Logger:      log,
		Credentials: credentials,
		Users:       userRepo,
		Lights:      lightRepo,
		Audit:       auditRepo,
		Version:     version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	log.Info("initialisation complete, waiting for shutdown signal")
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")
	return nil
}

// getConfigPath returns the configuration file path. LIGHTS_CONFIG
// overrides the default.
func getConfigPath() string {
	if path := os.Getenv("LIGHTS_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
