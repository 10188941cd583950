package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"recipebox/internal/config"
	"recipebox/internal/database"
	"recipebox/internal/logging"
	"recipebox/internal/models"
	"recipebox/internal/repositories"
	"recipebox/internal/server"
	"recipebox/internal/services"
	"recipebox/pkg/gemini"
	"recipebox/pkg/rabbitmq"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "recipebox",
		Short:         "Recipe photo backend",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runServe()
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create or update the database schema and exit",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runMigrate()
			},
		},
		&cobra.Command{
			Use:   "events",
			Short: "Print recipe events from RabbitMQ until interrupted",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runEvents()
			},
		},
	)
	return root
}

func loadConfig() (config.Config, *logrus.Logger) {
	cfg := config.Load(viper.New())
	return cfg, logging.New(cfg.LogLevel, cfg.LogFormat)
}

func runServe() error {
	cfg, log := loadConfig()
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Error("invalid configuration")
		return err
	}

	db, err := database.Open(cfg.DBDriver, cfg.DatabaseDSN, log)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}

	// --- Optional recipe event publisher ---
	var events services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, log)
		if err != nil {
			return err
		}
		defer mqClient.Close()
		events = mqClient
	} else {
		log.Info("RABBITMQ_URL not set, recipe events are disabled")
	}

	accountRepo := repositories.NewGORMAccountRepository(db)
	recipeRepo := repositories.NewGORMRecipeRepository(db)

	authService, err := services.NewAuthService(accountRepo, services.AuthConfig{
		JWTSecret:  cfg.SecretKey,
		TokenTTL:   cfg.TokenTTL,
		BcryptCost: cfg.BcryptCost,
	}, log)
	if err != nil {
		return err
	}

	geminiClient, err := gemini.NewClient(gemini.Config{
		APIKey:  cfg.GoogleAPIKey,
		Model:   cfg.GeminiModel,
		BaseURL: cfg.GeminiBaseURL,
		Timeout: cfg.CaptionTimeout,
	})
	if err != nil {
		return err
	}

	app := server.New(server.Services{
		Auth:    authService,
		Recipes: services.NewRecipeService(accountRepo, recipeRepo, events, log),
		Caption: services.NewCaptionService(geminiClient, log),
	}, server.Options{
		RequireAuth: cfg.RequireAuth,
		BodyLimit:   cfg.BodyLimit,
		CORSOrigins: cfg.CORSOrigins,
		AccessLog:   true,
	}, log)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	listenErr := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{"addr": cfg.AppPort, "driver": cfg.DBDriver, "require_auth": cfg.RequireAuth}).Info("starting server")
		listenErr <- app.Listen(cfg.AppPort)
	}()

	select {
	case err := <-listenErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-quit:
	}

	log.Info("shutting down server")
	if err := app.Shutdown(); err != nil {
		log.WithError(err).Warn("error during Fiber shutdown")
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	log.Info("server gracefully stopped")
	return nil
}

func runMigrate() error {
	cfg, log := loadConfig()
	if err := cfg.ValidateDatabase(); err != nil {
		return err
	}

	db, err := database.Open(cfg.DBDriver, cfg.DatabaseDSN, log)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}
	log.WithField("driver", cfg.DBDriver).Info("database schema is up to date")
	return nil
}

func runEvents() error {
	cfg, log := loadConfig()
	if cfg.RabbitMQURL == "" {
		return fmt.Errorf("RABBITMQ_URL is required")
	}

	mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, log)
	if err != nil {
		return err
	}
	defer mqClient.Close()

	done, err := mqClient.ConsumeRecipeEvents(func(event models.RecipeEvent) error {
		log.WithFields(logrus.Fields{
			"type":        event.Type,
			"recipe_id":   event.RecipeID,
			"user_id":     event.UserID,
			"occurred_at": event.OccurredAt,
		}).Info("recipe event")
		return nil
	})
	if err != nil {
		return err
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
		return nil
	case <-done:
		return fmt.Errorf("recipe event consumer stopped: broker connection closed")
	}
}
