package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"cosmossdk.io/log"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/calvinwijaya/blackjack/internal/api"
	"github.com/calvinwijaya/blackjack/internal/config"
	"github.com/calvinwijaya/blackjack/internal/db"
	"github.com/calvinwijaya/blackjack/internal/service"
	"github.com/calvinwijaya/blackjack/internal/store"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(v *viper.Viper) *cobra.Command {
	d := config.Default()
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and WebSocket server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, v)
			if err != nil {
				return err
			}
			logger, err := cfg.NewLogger(os.Stdout)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger)
		},
	}
	cmd.Flags().String(config.KeyPort, d.Port, "Server port")
	cmd.Flags().String(config.KeyDBDriver, d.DBDriver, "Storage driver (sqlite3, postgres, memory)")
	cmd.Flags().String(config.KeyDBDSN, d.DBDSN, "Database path or connection string")
	cmd.Flags().String(config.KeyFrontend, d.Frontend, "Frontend URL for CORS")
	return cmd
}

// openStore picks the storage backend. The returned close func is never nil.
func openStore(ctx context.Context, cfg config.Config, logger log.Logger) (store.Store, func() error, error) {
	if cfg.DBDriver == config.DriverMemory {
		logger.Info("in-memory store initialized")
		return store.NewMemoryStore(), func() error { return nil }, nil
	}

	if cfg.DBDriver == db.DriverSQLite {
		// Create data directory if it doesn't exist
		if err := os.MkdirAll(filepath.Dir(cfg.DBDSN), 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	database, err := db.NewDatabase(ctx, cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("database initialized", "driver", cfg.DBDriver)
	return store.NewDatabaseStore(database), database.Close, nil
}

func serve(ctx context.Context, cfg config.Config, logger log.Logger) error {
	logger = logger.With("module", "server")

	s, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	players := service.NewPlayerService(s, logger)
	games := service.NewGameService(s, players, logger, service.WithDefaultDecks(cfg.Decks))

	// Initialize WebSocket hub
	hub := api.NewHub(logger, cfg.Frontend)
	go hub.Run(ctx)

	handlers := api.NewHandlers(games, players, hub, logger)
	r := api.NewRouter(handlers, logger)

	// Configure CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.Frontend},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      c.Handler(r),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("starting server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
