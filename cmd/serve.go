package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/atsukitanaka0922/primeselect/config"
	"github.com/atsukitanaka0922/primeselect/internal/clients"
	"github.com/atsukitanaka0922/primeselect/internal/delivery"
	grpcHandler "github.com/atsukitanaka0922/primeselect/internal/delivery/grpc"
	"github.com/atsukitanaka0922/primeselect/internal/domain"
	"github.com/atsukitanaka0922/primeselect/internal/repository"
	"github.com/atsukitanaka0922/primeselect/internal/repository/cache"
	"github.com/atsukitanaka0922/primeselect/internal/usecase"
	"github.com/atsukitanaka0922/primeselect/pkg/db"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

func serve(parent context.Context, cfg *config.Config, logger *logrus.Logger) error {
	logger.Info("Starting PrimeSelect...")

	database, err := db.NewPostgresDB(cfg.DatabaseURL, db.PoolOptions{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	}, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Errorf("Error closing database connection: %v", err)
		} else {
			logger.Info("Database connection closed.")
		}
	}()

	uow := repository.NewTxManager(database, cfg.DBStatementTimeout, logger)
	productRepo := repository.NewPostgresProductRepository(database, logger)
	categoryRepo := repository.NewPostgresCategoryRepository(database, logger)
	stockRepo := repository.NewPostgresStockRepository(database, logger)
	orderRepo := repository.NewPostgresOrderRepository(database, logger)
	preorderRepo := repository.NewPostgresPreorderRepository(database, logger)
	cartRepo := repository.NewPostgresCartRepository(database, logger)
	paymentRepo := repository.NewPostgresPaymentRepository(database, logger)
	logger.Info("Repositories initialized.")

	// Catalog reads go through redis when configured. Checkout always reads
	// products from the database.
	var catalogRepo domain.ProductRepository = productRepo
	if cfg.RedisAddr != "" {
		redisClient, err := db.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, logger)
		if err != nil {
			logger.Warnf("Catalog cache disabled: %v", err)
		} else {
			defer redisClient.Close()
			catalogRepo = cache.NewCachedProductRepository(productRepo, redisClient, cfg.CatalogCacheTTL, logger)
		}
	}

	gateway := clients.NewStubPaymentGateway(cfg.PaymentDeclinedCards, logger)

	stockUseCase := usecase.NewStockUseCase(stockRepo, uow, logger)
	preorderUseCase := usecase.NewPreorderUseCase(preorderRepo, uow, nil, logger)
	cartUseCase := usecase.NewCartUseCase(cartRepo, catalogRepo, uow, logger)
	orderUseCase := usecase.NewOrderUseCase(orderRepo, paymentRepo, productRepo, stockUseCase, preorderUseCase, cartUseCase, gateway, uow, logger)
	productUseCase := usecase.NewProductUseCase(catalogRepo, categoryRepo, stockUseCase, uow, logger)
	categoryUseCase := usecase.NewCategoryUseCase(categoryRepo, logger)
	logger.Info("Use cases initialized.")

	gin.SetMode(gin.ReleaseMode)
	router := delivery.NewRouter(delivery.Handlers{
		Products:   delivery.NewProductHandler(productUseCase, logger),
		Categories: delivery.NewCategoryHandler(categoryUseCase, logger),
		Stock:      delivery.NewStockHandler(stockUseCase, logger),
		Cart:       delivery.NewCartHandler(cartUseCase, logger),
		Orders:     delivery.NewOrderHandler(orderUseCase, logger),
		Preorders:  delivery.NewPreorderHandler(preorderUseCase, logger),
	}, logger)
	httpServer := &http.Server{Addr: cfg.HTTPPort, Handler: router}

	grpcServer := grpc.NewServer()
	grpcHandler.RegisterAdminServiceServer(grpcServer, grpcHandler.NewAdminHandler(stockUseCase, orderUseCase, preorderUseCase, logger))
	healthServer := health.NewServer()
	healthServer.SetServingStatus(grpcHandler.AdminServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)
	logger.Info("gRPC admin, health and reflection services registered")

	lis, err := net.Listen("tcp", cfg.GrpcPort)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("HTTP server listening on %s", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		logger.Infof("gRPC server listening on %s", cfg.GrpcPort)
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Warn("Shutdown signal received...")
		healthServer.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Errorf("HTTP server shutdown: %v", err)
		}
		grpcServer.GracefulStop()
		logger.Info("Servers stopped.")
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Errorf("Server error: %v", err)
		return err
	}
	logger.Info("PrimeSelect shut down gracefully.")
	return nil
}
