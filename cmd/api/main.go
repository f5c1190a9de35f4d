package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/CameronXie/pos-order-relay/internal/api/rest"
	"github.com/CameronXie/pos-order-relay/internal/api/rest/handler"
	"github.com/CameronXie/pos-order-relay/internal/api/rest/middleware"
	"github.com/CameronXie/pos-order-relay/internal/auth"
	"github.com/CameronXie/pos-order-relay/internal/config"
	"github.com/CameronXie/pos-order-relay/internal/dashboard"
	"github.com/CameronXie/pos-order-relay/internal/events"
	"github.com/CameronXie/pos-order-relay/internal/menu"
	"github.com/CameronXie/pos-order-relay/internal/metrics"
	"github.com/CameronXie/pos-order-relay/internal/relay"
	"github.com/CameronXie/pos-order-relay/internal/repository/mongo"
	"github.com/CameronXie/pos-order-relay/internal/repository/mysql"
	"github.com/CameronXie/pos-order-relay/internal/repository/postgres"
	"github.com/CameronXie/pos-order-relay/internal/upstream"
	"github.com/CameronXie/pos-order-relay/internal/version"
	"github.com/CameronXie/pos-order-relay/pkg/keyfetcher"
)

const (
	StartupTimeout  = 30 * time.Second
	ShutdownTimeout = 15 * time.Second
)

// relationalStores are the adapters backed by the configured SQL database.
type relationalStores struct {
	accounts     auth.AccountFinder
	dishes       menu.DishStore
	fulfillments fulfillmentStore
	close        func()
}

type fulfillmentStore interface {
	relay.FulfillmentStore
	handler.FulfillmentReader
	dashboard.Source
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger.Info("api_starting", "version", version.Version)

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		logger.Error("config_load_failed", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("config_invalid", "error", err)
		os.Exit(1)
	}

	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel()}))

	if err := run(cfg, logger); err != nil {
		logger.Error("api_failed", "error", err)
		os.Exit(1)
	}

	logger.Info("api_stopped")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startCtx, cancel := context.WithTimeout(ctx, StartupTimeout)
	defer cancel()

	// Relational store
	stores, err := openRelationalStores(startCtx, cfg, logger)
	if err != nil {
		return err
	}
	defer stores.close()

	// Document store
	mongoClient, err := mongo.Connect(startCtx, cfg.Mongo.URL)
	if err != nil {
		return fmt.Errorf("mongo_init: %w", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			logger.Warn("mongo_disconnect_failed", "error", err)
		}
	}()

	mongoDB := mongoClient.Database(cfg.Mongo.Database)
	orderRepo := mongo.NewOrderRepository(mongoDB)
	if err := orderRepo.EnsureIndexes(startCtx); err != nil {
		return fmt.Errorf("mongo_indexes: %w", err)
	}
	sessionRepo := mongo.NewSessionRepository(mongoDB)

	// Events
	publisher, err := newPublisher(cfg)
	if err != nil {
		return fmt.Errorf("events_init: %w", err)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("events_close_failed", "error", err)
		}
	}()

	// Auth
	secret, err := signingSecret(cfg).FetchSecret()
	if err != nil {
		return fmt.Errorf("jwt_secret: %w", err)
	}
	verifier, err := auth.NewPasswordVerifier(cfg.Auth.LegacyHash)
	if err != nil {
		return fmt.Errorf("password_verifier: %w", err)
	}
	tokens := auth.NewTokenIssuer(secret, auth.WithTTL(cfg.TokenTTL()))
	authenticator := auth.NewAuthenticator(stores.accounts, verifier)

	// Services
	registry := metrics.NewRegistry()
	upstreamClient := upstream.NewClient(upstream.Config{
		BaseURL: cfg.Upstream.BaseURL,
		APIKey:  cfg.Upstream.APIKey,
		Timeout: cfg.Upstream.Timeout,
	})
	relayService := relay.NewService(
		orderRepo,
		upstreamClient,
		logger,
		relay.WithPublisher(publisher),
		relay.WithMetrics(registry),
	)
	fulfillmentService := relay.NewFulfillmentService(stores.fulfillments, logger)
	menuService := menu.NewService(stores.dishes)
	aggregator := dashboard.NewAggregator(stores.fulfillments, cfg.Location(), logger)

	// Routing
	router := rest.NewRouter(&rest.RouterConfig{
		Orders: handler.NewOrderHandler(
			orderRepo,
			stores.fulfillments,
			logger,
			handler.WithOrderEvents(publisher),
			handler.WithOrderMetrics(registry),
		),
		Relay:        handler.NewRelayHandler(relayService, fulfillmentService, logger),
		Auth:         handler.NewAuthHandler(authenticator, tokens, sessionRepo, upstreamClient, logger),
		Menu:         handler.NewMenuHandler(menuService, logger),
		Dashboard:    handler.NewDashboardHandler(aggregator, logger),
		System:       handler.NewSystemHandler(upstreamClient.BaseURL()),
		UpstreamAuth: middleware.SharedSecretAuth(cfg.Upstream.APIKey, logger),
		SessionAuth:  middleware.NewJWTAuthMiddleware(tokens).Handler,
		Metrics:      registry,
		Logger:       logger,
		CORSOrigins:  cfg.Server.CORSOrigins,
	})

	// HTTP server with sensible timeouts; WriteTimeout leaves room for the upstream call
	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.Upstream.Timeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info(
			"api_listening",
			"addr", server.Addr,
			"relational_driver", cfg.Relational.Driver,
			"events_broker", cfg.Events.Broker,
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api_serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("api_shutting_down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// openRelationalStores connects the configured SQL driver and checks its schema.
func openRelationalStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*relationalStores, error) {
	switch cfg.Relational.Driver {
	case config.DriverPostgres:
		pool, err := initializeDatabase(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, fmt.Errorf("db_init: %w", err)
		}
		if err := postgres.CheckSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("db_schema: %w", err)
		}

		return &relationalStores{
			accounts:     postgres.NewAccountRepository(pool),
			dishes:       postgres.NewDishRepository(pool),
			fulfillments: postgres.NewFulfillmentRepository(pool),
			close:        pool.Close,
		}, nil

	case config.DriverMySQL:
		my := cfg.Relational.MySQL
		db, err := mysql.Open(ctx, mysql.Options{
			User:     my.User,
			Password: my.Password,
			Host:     my.Host,
			Port:     my.Port,
			Database: my.Database,
		})
		if err != nil {
			return nil, fmt.Errorf("db_init: %w", err)
		}
		if err := mysql.CheckSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("db_schema: %w", err)
		}

		return &relationalStores{
			accounts:     mysql.NewAccountRepository(db),
			dishes:       mysql.NewDishRepository(db),
			fulfillments: mysql.NewFulfillmentRepository(db),
			close: func() {
				if err := db.Close(); err != nil {
					logger.Warn("db_close_failed", "error", err)
				}
			},
		}, nil

	default:
		return nil, fmt.Errorf("unsupported relational driver %q", cfg.Relational.Driver)
	}
}

// initializeDatabase creates a pool and verifies connectivity.
func initializeDatabase(ctx context.Context, connectionString string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, connectionString)
	if err != nil {
		return nil, fmt.Errorf("create_pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping_db: %w", err)
	}

	return pool, nil
}

func newPublisher(cfg *config.Config) (events.Publisher, error) {
	switch cfg.Events.Broker {
	case config.BrokerRabbitMQ:
		p, err := events.NewRabbitMQPublisher(cfg.Events.RabbitMQURL, cfg.Events.Exchange)
		if err != nil {
			return nil, err
		}
		return p, nil
	case config.BrokerKafka:
		return events.NewKafkaPublisher(cfg.Events.KafkaBrokers, cfg.Events.KafkaTopic), nil
	default:
		return events.NopPublisher{}, nil
	}
}

// signingSecret prefers the plain secret and falls back to the base64 variable.
func signingSecret(cfg *config.Config) keyfetcher.SecretFetcher {
	if cfg.JWT.Secret != "" {
		return keyfetcher.FromString(cfg.JWT.Secret)
	}

	return keyfetcher.FromBase64Env("JWT_SECRET_BASE64")
}
