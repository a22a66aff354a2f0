package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"momo/internal/config"
	"momo/internal/database"
	"momo/internal/server"
	"momo/pkg/rabbitmq"
)

func main() {
	// A missing .env is fine; the environment may already be set.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Could not load .env: %v", err)
	}

	if err := newRootCommand().Execute(); err != nil {
		log.Fatal(err)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "momo",
		Short:         "Momo storefront",
		Long:          "Online momo storefront: menu, cart, checkout and customer profiles.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(config.FromEnv())
		},
	}

	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newMigrateCommand())

	return cmd
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(config.FromEnv())
		},
	}
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrate(cmd, config.FromEnv())
		},
	}
}

func serve(cfg config.Config) error {
	if cfg.SecretKey == config.DefaultSecretKey {
		log.Println("WARNING: SECRET_KEY is not set; using the development fallback key")
	}

	app, mqClient, cleanup, err := server.Build(cfg)
	if err != nil {
		return fmt.Errorf("failed to build app: %w", err)
	}
	defer cleanup()

	if mqClient != nil {
		log.Println("Starting RabbitMQ consumer for storefront events...")
		if err := mqClient.ConsumeEvents(rabbitmq.LogEvent); err != nil {
			log.Printf("Failed to start RabbitMQ consumer: %v", err)
		}
	}

	log.Printf("Starting server on port %s", cfg.AppPort)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	listenErr := make(chan error, 1)
	go func() {
		listenErr <- app.Listen(cfg.AppPort)
	}()

	select {
	case err := <-listenErr:
		return fmt.Errorf("server failed to start: %w", err)
	case <-quit:
	}

	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
	return nil
}

func migrate(cmd *cobra.Command, cfg config.Config) error {
	if cfg.Database.Driver == database.DriverMemory {
		return fmt.Errorf("nothing to migrate for the %s driver", database.DriverMemory)
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("%w: %v", database.ErrConnection, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := database.Migrate(db); err != nil {
		return err
	}
	versions, err := database.AppliedVersions(db)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d (applied: %v)\n", database.LatestVersion(), versions)
	return nil
}
