package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/contact-qr/internal/config"
	"github.com/jonathan/contact-qr/internal/db"
	"github.com/jonathan/contact-qr/internal/server"
	"github.com/jonathan/contact-qr/internal/server/ratelimit"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start the HTTP API server for building vCards and QR codes.

Hosted cards need PostgreSQL via DATABASE_URL (or database_url in the config).
Set JWT_SECRET to require bearer tokens for storing, listing and deleting cards.

Example:
  contact_qr serve --addr :8080
  DATABASE_URL=postgres://... JWT_SECRET=... contact_qr serve --migrate`,
	RunE: runServe,
}

var (
	serveAddr    string
	serveMigrate bool
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, :8080)")
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "Apply database migrations before serving")
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if serveAddr != "" {
		settings.Addr = serveAddr
	}

	cfg := server.Config{
		Settings:  settings,
		RateLimit: ratelimit.LoadConfig(),
	}

	if os.Getenv("JWT_SECRET") != "" {
		jwtCfg, err := config.NewJWTConfig()
		if err != nil {
			return fmt.Errorf("failed to load JWT config: %w", err)
		}
		cfg.JWT = jwtCfg
	} else {
		log.Warn("JWT_SECRET not set; card routes are open to anyone")
	}

	if url := databaseURL(settings); url != "" {
		store, err := openStore(ctx, url, serveMigrate)
		if err != nil {
			return err
		}
		cfg.Store = store
	} else {
		log.Warn("no database configured; hosted card routes are disabled")
	}

	srv, err := server.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Listening on %s\n", settings.Addr)
	return srv.Start(ctx)
}

// databaseURL prefers DATABASE_URL over the config file.
func databaseURL(cfg *config.Config) string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	return cfg.DatabaseURL
}

func openStore(ctx context.Context, url string, migrate bool) (*db.DB, error) {
	store, err := db.Connect(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if migrate {
		if err := store.Migrate(ctx); err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}
	return store, nil
}
