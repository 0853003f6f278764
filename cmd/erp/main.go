package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	_ "github.com/tair/manufacturing-erp/docs"
	"github.com/tair/manufacturing-erp/internal/config"
	"github.com/tair/manufacturing-erp/internal/inventory"
	invcommand "github.com/tair/manufacturing-erp/internal/inventory/usecase/command"
	"github.com/tair/manufacturing-erp/internal/procurement"
	pocommand "github.com/tair/manufacturing-erp/internal/procurement/usecase/command"
	"github.com/tair/manufacturing-erp/internal/production"
	"github.com/tair/manufacturing-erp/internal/production/domain"
	"github.com/tair/manufacturing-erp/internal/production/usecase/query"
	"github.com/tair/manufacturing-erp/internal/schema"
	"github.com/tair/manufacturing-erp/kafka"
	"github.com/tair/manufacturing-erp/pkg/auth"
	"github.com/tair/manufacturing-erp/pkg/cache"
	"github.com/tair/manufacturing-erp/pkg/database"
	"github.com/tair/manufacturing-erp/pkg/grpcserver"
	"github.com/tair/manufacturing-erp/pkg/httpx"
	"github.com/tair/manufacturing-erp/pkg/logger"
	"github.com/tair/manufacturing-erp/pkg/tracing"
)

func main() {
	configPath := flag.String("config", "", "path to a config file")
	flag.Parse()

	// Load configuration from file and environment
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Init("manufacturing-erp", true)
		logger.Logger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	logger.Init(cfg.Service.Name, cfg.Service.Development())
	logger.SetLevel(cfg.Log.Level)

	logger.Logger.Info().
		Str("service", cfg.Service.Name).
		Str("environment", cfg.Service.Environment).
		Str("log_level", cfg.Log.Level).
		Msg("Starting manufacturing ERP service")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize tracer
	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(cfg.Tracing)
		if err != nil {
			logger.Logger.Error().Err(err).Msg("Failed to initialize tracer")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := tracing.Shutdown(ctx, tp); err != nil {
					logger.Logger.Error().Err(err).Msg("Failed to shutdown tracer")
				}
			}()
		}
	}

	// Connect to database
	db, err := database.NewGormConnection(cfg.Database)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close(db)

	// Run migrations
	if err := schema.Migrate(db); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to run migrations")
	}
	logger.Logger.Info().Msg("Database initialized successfully")

	// Prometheus registry
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Redis cache for usage reports
	usageCache := cache.New(nil, "erp:", cfg.Redis.UsageTTL)
	if cfg.Redis.Enabled {
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			logger.Logger.Warn().Err(err).Msg("Redis unavailable, usage reports will not be cached")
		} else {
			defer client.Close()
			usageCache = cache.New(client, "erp:", cfg.Redis.UsageTTL)
		}
	}

	// Kafka publisher and goods received consumer
	var (
		publisher *kafka.Publisher
		consumer  *kafka.Consumer
	)
	if cfg.Kafka.Enabled {
		publisher, err = kafka.NewPublisher(cfg.Kafka.Brokers)
		if err != nil {
			logger.Logger.Fatal().Err(err).Msg("Failed to create Kafka publisher")
		}
		defer publisher.Close()

		consumer, err = kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, []string{kafka.TopicGoodsReceived})
		if err != nil {
			logger.Logger.Fatal().Err(err).Msg("Failed to create Kafka consumer")
		}
		defer consumer.Close()
	}

	// Initialize handlers with Wire DI
	handler, err := buildHandler(cfg, db, reg, usageCache, publisher, consumer)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize handlers")
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to get database instance")
	}
	grpcServer := grpcserver.New(cfg.Service.Name, reg)

	httpServer := &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	// Start HTTP server
	g.Go(func() error {
		logger.Logger.Info().
			Str("port", cfg.HTTP.Port).
			Str("metrics_endpoint", "/metrics").
			Str("swagger", "/swagger/index.html").
			Msg("HTTP server started")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Start gRPC server
	g.Go(func() error {
		lis, err := net.Listen("tcp", ":"+cfg.GRPC.Port)
		if err != nil {
			return err
		}
		return grpcServer.Serve(lis)
	})

	g.Go(func() error {
		grpcServer.Watch(gctx, 15*time.Second, func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
			defer cancel()
			return sqlDB.PingContext(ctx)
		})
		return nil
	})

	if consumer != nil {
		g.Go(func() error {
			return consumer.Run(gctx)
		})
	}

	// Wait for interrupt signal
	g.Go(func() error {
		<-gctx.Done()
		logger.Logger.Info().Msg("Shutting down servers...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		grpcServer.GracefulStop()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Logger.Error().Err(err).Msg("Server stopped with error")
		os.Exit(1)
	}
	logger.Logger.Info().Msg("Server stopped")
}

// buildHandler wires every bounded context onto one router
func buildHandler(
	cfg *config.Config,
	db *gorm.DB,
	reg *prometheus.Registry,
	usageCache *cache.Cache,
	publisher *kafka.Publisher,
	consumer *kafka.Consumer,
) (http.Handler, error) {
	tx := database.NewTxManager(db)

	var validator *auth.Validator
	if cfg.Auth.Enabled {
		validator = auth.NewValidator(cfg.Auth.Secret, cfg.Auth.Issuer)
	}
	authenticator := httpx.NewAuthenticator(validator)
	metrics := httpx.NewMetrics("erp", reg)

	// a nil publisher drops events
	var (
		stockEvents invcommand.StockEventPublisher = publisher
		totalEvents pocommand.TotalPublisher       = publisher
	)

	// inventory edits invalidate usage reports cached by production
	usageEvictor, err := production.InitializeUsageEvictor(db, usageCache)
	if err != nil {
		return nil, err
	}
	inventoryHandler, err := inventory.InitializeHTTPHandler(db, stockEvents, usageEvictor, authenticator, metrics)
	if err != nil {
		return nil, err
	}
	policy := domain.DemandPolicy{IncludeActiveOrders: cfg.Planning.IncludeActiveOrders}
	productionHandler, err := production.InitializeHTTPHandler(db, tx, policy, usageCache, query.NewMetrics(reg), stockEvents, authenticator, metrics)
	if err != nil {
		return nil, err
	}
	procurementHandler, err := procurement.InitializeHTTPHandler(db, tx, totalEvents, pocommand.NewMetrics(reg), authenticator, metrics)
	if err != nil {
		return nil, err
	}

	if consumer != nil {
		subscriber, err := procurement.InitializeGoodsReceivedSubscriber(db, tx)
		if err != nil {
			return nil, err
		}
		subscriber.Register(consumer)
	}

	// Setup router
	router := mux.NewRouter()

	// Register all middlewares
	middlewareConfig := httpx.DefaultMiddlewareConfig(cfg.Service.Name)
	middlewareConfig.EnableTracing = cfg.Tracing.Enabled
	middlewareConfig.TimeoutDuration = cfg.HTTP.Timeout
	middlewareConfig.CORSOptions.AllowedOrigins = cfg.HTTP.AllowedOrigins
	httpx.RegisterMiddlewares(router, middlewareConfig)

	// Register routes
	inventoryHandler.RegisterRoutes(router)
	productionHandler.RegisterRoutes(router)
	procurementHandler.RegisterRoutes(router)

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// Health check endpoint
	httpx.RegisterHealthCheck(router, sqlDB)

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	router.PathPrefix("/swagger/").Handler(httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// CORS middleware
	return httpx.SetupCORS(middlewareConfig)(router), nil
}
