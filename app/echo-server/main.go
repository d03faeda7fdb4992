package main

import (
	"context"
	"fmt"
	"log"
	"myUserCatalog/app/echo-server/router"
	productService "myUserCatalog/business/product"
	userService "myUserCatalog/business/user"
	"myUserCatalog/internal/middleware"
	"myUserCatalog/internal/repository/notification"
	psqlRepo "myUserCatalog/internal/repository/postgres"
	redisRepo "myUserCatalog/internal/repository/redis"
	"myUserCatalog/internal/rest"
	"myUserCatalog/pkg/config"
	"myUserCatalog/pkg/database"
	"myUserCatalog/pkg/logger"
	"myUserCatalog/pkg/metrics"
	"myUserCatalog/pkg/utils"
	"myUserCatalog/pkg/validation"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "echo-server",
		Short:         "User and product catalog API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP server",
			RunE: func(cmd *cobra.Command, args []string) error {
				return serve()
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create or update the users, addresses and products tables",
			RunE: func(cmd *cobra.Command, args []string) error {
				return migrate()
			},
		},
	)

	return rootCmd
}

func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	return cfg
}

func migrate() error {
	cfg := loadConfig()
	defer logger.Sync()

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		return err
	}
	defer database.ClosePostgres(db)

	if err := database.Migrate(db); err != nil {
		logger.Error("Migration failed", "error", err)
		return err
	}

	logger.Info("Migration finished")
	return nil
}

func serve() error {
	cfg := loadConfig()
	defer logger.Sync()

	logger.Info("Starting "+cfg.App.Name, "version", cfg.App.Version)

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		return err
	}
	defer database.ClosePostgres(db)

	logger.Info("Database connected successfully")

	metrics.Init()

	jwtManager := utils.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.TTL)

	// Init repo
	userRepo := psqlRepo.NewUserRepository(db)
	productRepo := psqlRepo.NewProductRepository(db)

	var (
		userOpts []userService.Option
		authOpts []middleware.AuthOption
	)

	if cfg.Redis.Enabled() {
		client, err := database.InitRedis(cfg.Redis)
		if err != nil {
			logger.Error("Failed to connect to redis", "error", err)
			return err
		}
		defer client.Close()

		tokenRepo := redisRepo.NewTokenRepository(client)
		userOpts = append(userOpts, userService.WithTokenStore(tokenRepo))
		authOpts = append(authOpts, middleware.WithTokenValidator(tokenRepo))
		logger.Info("Redis token store enabled")
	}

	if cfg.Mailjet.Enabled() {
		mailjetEmail := notification.NewMailjetRepository(
			notification.MailjetConfig{
				MailjetBaseURL:           cfg.Mailjet.MailjetBaseUrl,
				MailjetBasicAuthUsername: cfg.Mailjet.MailjetBasicAuthUsername,
				MailjetBasicAuthPassword: cfg.Mailjet.MailjetBasicAuthPassword,
				MailjetSenderEmail:       cfg.Mailjet.MailjetSenderEmail,
				MailjetSenderName:        cfg.Mailjet.MailjetSenderName,
			},
		)
		userOpts = append(userOpts, userService.WithNotification(mailjetEmail))
	}

	// Init service
	users := userService.NewUserService(userRepo, jwtManager, userOpts...)
	products := productService.NewProductService(productRepo)

	// Init handler
	validate := validation.New()
	e := router.New(router.Handlers{
		User:    rest.NewUserHandler(users, validate, cfg.Server.RequestTimeout),
		Product: rest.NewProductHandler(products, validate, cfg.Server.RequestTimeout),
	}, middleware.AuthMiddleware(jwtManager, authOpts...), cfg.Server.AllowOrigins)

	errCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
	case err := <-errCh:
		logger.Error("Failed to start server", "error", err)
		return err
	}

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Server stopped")
	return nil
}
