package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fekuna/omnipos-trace-service/config"
	"github.com/fekuna/omnipos-trace-service/internal/auth"
	"github.com/fekuna/omnipos-trace-service/internal/broker"
	"github.com/fekuna/omnipos-trace-service/internal/cache"
	"github.com/fekuna/omnipos-trace-service/internal/cart"
	"github.com/fekuna/omnipos-trace-service/internal/catalog"
	"github.com/fekuna/omnipos-trace-service/internal/custody"
	"github.com/fekuna/omnipos-trace-service/internal/database"
	"github.com/fekuna/omnipos-trace-service/internal/logger"
	"github.com/fekuna/omnipos-trace-service/internal/search"
	"github.com/fekuna/omnipos-trace-service/internal/server"
	"github.com/fekuna/omnipos-trace-service/internal/verification"

	authH "github.com/fekuna/omnipos-trace-service/internal/auth/handler"
	authRepoPkg "github.com/fekuna/omnipos-trace-service/internal/auth/repository"
	authUCPkg "github.com/fekuna/omnipos-trace-service/internal/auth/usecase"

	cartH "github.com/fekuna/omnipos-trace-service/internal/cart/handler"
	cartRepoPkg "github.com/fekuna/omnipos-trace-service/internal/cart/repository"
	cartUCPkg "github.com/fekuna/omnipos-trace-service/internal/cart/usecase"

	catalogH "github.com/fekuna/omnipos-trace-service/internal/catalog/handler"
	catalogRepoPkg "github.com/fekuna/omnipos-trace-service/internal/catalog/repository"
	catalogUCPkg "github.com/fekuna/omnipos-trace-service/internal/catalog/usecase"

	custodyH "github.com/fekuna/omnipos-trace-service/internal/custody/handler"
	custodyListenerPkg "github.com/fekuna/omnipos-trace-service/internal/custody/listener"
	custodyPublisherPkg "github.com/fekuna/omnipos-trace-service/internal/custody/publisher"
	custodyRepoPkg "github.com/fekuna/omnipos-trace-service/internal/custody/repository"
	custodyUCPkg "github.com/fekuna/omnipos-trace-service/internal/custody/usecase"

	verificationH "github.com/fekuna/omnipos-trace-service/internal/verification/handler"
	verificationRepoPkg "github.com/fekuna/omnipos-trace-service/internal/verification/repository"
	verificationUCPkg "github.com/fekuna/omnipos-trace-service/internal/verification/usecase"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load()
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	appLogger := logger.NewZapLogger(&logger.ZapLoggerConfig{
		IsDevelopment:     cfg.IsDevelopment(),
		Encoding:          cfg.Logger.Encoding,
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	})
	defer appLogger.Sync()

	// 3. Connect to Database
	db, err := database.NewPostgres(&database.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))

	// 4. Initialize Redis. Every Redis-backed component has an in-process
	// fallback, so a missing Redis only costs caching and cross-instance locks.
	var (
		locker        *cache.RedisLocker
		snapshotCache verification.SnapshotCache
		invalidator   custody.CacheInvalidator
		recallCache   catalog.CacheInvalidator
		batchLists    catalog.ListCache
		cartStorage   cart.Storage = cartRepoPkg.NewMemoryStorage()
	)
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedisClient(&cache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			appLogger.Warn("Could not connect to Redis, using in-process fallbacks", zap.Error(err))
		} else {
			defer redisClient.Close()
			appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))

			snapshots := verificationRepoPkg.NewRedisSnapshotCache(redisClient, cfg.Verify.CacheTTL, appLogger)
			snapshotCache = snapshots
			invalidator = snapshots
			recallCache = snapshots
			locker = cache.NewRedisLocker(redisClient, appLogger)
			batchLists = catalogRepoPkg.NewRedisListCache(redisClient, cfg.Catalog.ListCacheTTL, appLogger)
			cartStorage = cartRepoPkg.NewRedisStorage(redisClient, cfg.Cart.TTL)
		}
	}

	// 5. Initialize Kafka
	var (
		publisher     custody.Publisher
		custodyReader *kafka.Reader
	)
	if cfg.Kafka.Enabled {
		brokerCfg := &broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.CustodyTopic,
			GroupID: cfg.Kafka.GroupID,
		}
		writer := broker.NewProducer(brokerCfg)
		defer writer.Close()
		publisher = custodyPublisherPkg.NewKafkaPublisher(writer)
		custodyReader = broker.NewConsumer(brokerCfg)
		appLogger.Info("Kafka configured", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.CustodyTopic))
	}

	// 6. Initialize Elasticsearch
	var searcher catalog.Searcher
	if cfg.Elastic.Enabled {
		esClient, err := search.NewClient(&search.Config{
			Addresses: cfg.Elastic.Addresses,
			Username:  cfg.Elastic.Username,
			Password:  cfg.Elastic.Password,
		})
		if err != nil {
			appLogger.Warn("Could not connect to Elasticsearch, batch search uses the database", zap.Error(err))
		} else {
			searcher = esClient
			appLogger.Info("Connected to Elasticsearch", zap.Strings("addresses", cfg.Elastic.Addresses))
		}
	}

	// 7. Initialize UseCases
	tokens := auth.NewTokenIssuer(cfg.JWT.SecretKey, cfg.JWT.TTL)

	catalogUC := catalogUCPkg.NewCatalogUseCase(catalogRepoPkg.NewPGRepository(db), searcher, cfg.Elastic.BatchIndex, batchLists, recallCache, appLogger)
	// an applied custody event drops verification snapshots first, then
	// refreshes the catalog's list cache and search document
	custodyInvalidators := custody.Invalidators{invalidator, custody.InvalidatorFunc(catalogUC.RefreshBatch)}
	var (
		custodyLocker custody.Locker
		cartLocker    cart.Locker
	)
	if locker != nil {
		custodyLocker = locker
		cartLocker = locker
	}
	custodyUC := custodyUCPkg.NewCustodyUseCase(custodyRepoPkg.NewPGRepository(db), custodyLocker, publisher, custodyInvalidators, appLogger)
	verificationUC := verificationUCPkg.NewVerificationUseCase(verificationRepoPkg.NewPGRepository(db), custodyUC, snapshotCache, cfg.Verify.LookupTimeout, appLogger)
	authUC := authUCPkg.NewAuthUseCase(authRepoPkg.NewPGRepository(db), tokens, appLogger)
	cartUC := cartUCPkg.NewCartUseCase(cartStorage, cartRepoPkg.NewPGProductRepository(db), cartLocker, appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if searcher != nil {
		go func() {
			n, err := catalogUC.Reindex(ctx)
			if err != nil {
				appLogger.Error("Batch reindex failed", zap.Error(err))
				return
			}
			appLogger.Info("Batch index rebuilt", zap.Int("documents", n))
		}()
	}

	// 8. Start Listener
	var listeners sync.WaitGroup
	if custodyReader != nil {
		custodyListener := custodyListenerPkg.NewCustodyListener(custodyReader, custodyUC, appLogger)
		listeners.Add(1)
		go func() {
			defer listeners.Done()
			custodyListener.Start(ctx)
		}()
	}

	// 9. Start HTTP Server
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := server.NewRouter(&server.Handlers{
		Verification: verificationH.NewVerificationHandler(verificationUC, appLogger),
		Custody:      custodyH.NewCustodyHandler(custodyUC, appLogger),
		Catalog:      catalogH.NewCatalogHandler(catalogUC, appLogger),
		Auth:         authH.NewAuthHandler(authUC, appLogger),
		Cart:         cartH.NewCartHandler(cartUC, appLogger),
		Ready:        db.PingContext,
	}, tokens, appLogger)

	httpServer := &http.Server{
		Addr:              normalizePort(cfg.Server.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		appLogger.Info("Starting HTTP server", zap.String("port", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("failed to serve HTTP", zap.Error(err))
		}
	}()

	// 10. Start gRPC Server
	grpcPort := normalizePort(cfg.Server.GRPCPort)
	lis, err := net.Listen("tcp", grpcPort)
	if err != nil {
		appLogger.Fatal("failed to listen", zap.String("port", grpcPort), zap.Error(err))
	}
	grpcServer, healthServer := server.NewGRPCServer(verificationH.NewVerificationGRPCHandler(verificationUC, appLogger), tokens, appLogger)
	go func() {
		appLogger.Info("Starting gRPC server", zap.String("port", grpcPort))
		if err := grpcServer.Serve(lis); err != nil {
			appLogger.Fatal("failed to serve gRPC", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	healthServer.Shutdown()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("HTTP server forced to shutdown", zap.Error(err))
	}
	grpcServer.GracefulStop()

	cancel()
	listeners.Wait()
	if custodyReader != nil {
		if err := custodyReader.Close(); err != nil {
			appLogger.Warn("failed to close kafka reader", zap.Error(err))
		}
	}
	appLogger.Info("Server stopped")
}

func normalizePort(port string) string {
	if !strings.HasPrefix(port, ":") && !strings.Contains(port, ":") {
		return ":" + port
	}
	return port
}
