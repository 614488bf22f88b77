package app

import (
	"database/sql"
	"embed"
	"fmt"
	"net/http"

	"github.com/go-redis/redis/v8"

	"artgen/internal/app/config"
	"artgen/internal/app/logger"
	"artgen/internal/app/service/generate"
	"artgen/internal/app/service/payment"
	"artgen/internal/app/session"
	"artgen/internal/app/storage"
	"artgen/internal/app/storage/postgres"
	"artgen/pkg/pixellab"
	"artgen/pkg/razorpay"
)

type App struct {
	config config.Config
	logger logger.Logger

	db    *sql.DB
	redis *redis.Client

	users        storage.UserRepository
	transactions storage.TransactionRepository
	session      session.Manager
	payments     *payment.Service
	generator    *generate.Service

	stopCh chan struct{}
}

func New(cfg config.Config, log logger.Logger, e embed.FS) (*App, error) {
	gw, err := razorpay.NewService(
		cfg.Gateway.BaseURL,
		cfg.Gateway.KeyID,
		cfg.Gateway.KeySecret,
		razorpay.WithLogger(log.Logger),
	)
	if err != nil {
		return nil, fmt.Errorf("gateway client init: %w", err)
	}

	provider, err := pixellab.NewService(
		cfg.Provider.BaseURL,
		cfg.Provider.APIKey,
		pixellab.WithLogger(log.Logger),
		pixellab.WithHTTPClient(&http.Client{Timeout: cfg.Provider.Timeout}),
	)
	if err != nil {
		return nil, fmt.Errorf("provider client init: %w", err)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}

	if err := applyMigrations(e, db); err != nil {
		return nil, fmt.Errorf("db migrate: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	users, err := postgres.NewUserRepository(db)
	if err != nil {
		return nil, fmt.Errorf("user repository init: %w", err)
	}

	transactions, err := postgres.NewTransactionRepository(db)
	if err != nil {
		return nil, fmt.Errorf("transaction repository init: %w", err)
	}

	a := &App{
		config:       cfg,
		logger:       log,
		db:           db,
		redis:        rdb,
		users:        users,
		transactions: transactions,
		session:      session.NewJWT(cfg.SecretKey, session.WithIssuer("artgen")),
		payments:     payment.New(users, transactions, gw),
		generator:    generate.New(users, provider),
		stopCh:       make(chan struct{}),
	}

	go func() {
		<-a.stopCh
		a.logger.Info().Msg("Shutting down application")
	}()

	return a, nil
}

func (a *App) Stop() {
	close(a.stopCh)
	if err := a.redis.Close(); err != nil {
		a.logger.Error().Err(err).Msg("Redis close failed")
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error().Err(err).Msg("DB close failed")
	}
}
