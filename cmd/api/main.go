package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/Sereska7/Project-Shop/internal/auth"
	"github.com/Sereska7/Project-Shop/internal/basket"
	"github.com/Sereska7/Project-Shop/internal/catalog"
	"github.com/Sereska7/Project-Shop/internal/checkout"
	"github.com/Sereska7/Project-Shop/internal/config"
	"github.com/Sereska7/Project-Shop/internal/httpx"
	kafkax "github.com/Sereska7/Project-Shop/internal/kafka"
	"github.com/Sereska7/Project-Shop/internal/logging"
	"github.com/Sereska7/Project-Shop/internal/metrics"
	"github.com/Sereska7/Project-Shop/internal/postgres"
	"github.com/Sereska7/Project-Shop/internal/redisx"
	"github.com/Sereska7/Project-Shop/internal/shop"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	log, err := logging.New(cfg.ServiceName, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN, postgres.PoolOptions{})
	if err != nil {
		log.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()
	if cfg.AutoMigrate {
		if err := postgres.Migrate(ctx, db); err != nil {
			log.Fatal("db migrate", zap.Error(err))
		}
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer
	prod := kafkax.NewProducer(cfg.KafkaBrokers, shop.TopicOrderConfirmed, 1024, log)
	prod.Start()

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewServerMetrics(reg, "api")

	// Repos & services
	users := &postgres.UserRepo{DB: db}
	products := &postgres.ProductRepo{DB: db}
	baskets := &postgres.BasketRepo{DB: db}
	orders := &postgres.OrderRepo{DB: db}

	authSvc := &auth.Service{
		Users:  users,
		Tokens: &auth.Tokens{Secret: []byte(cfg.JWTSecret), TTL: cfg.JWTTTL},
	}
	catalogSvc := &catalog.Service{
		Products: products,
		Cache:    redisx.NewCache(rdb),
		TTL:      cfg.CatalogCacheTTL,
		PageSize: cfg.CatalogPageSize,
		Log:      log,
	}
	basketSvc := &basket.Service{Baskets: baskets, Products: products}
	checkoutSvc := &checkout.Service{
		Baskets:  baskets,
		Products: products,
		Orders:   orders,
		Producer: prod,
		Service:  cfg.ServiceName,
		Log:      log,
		Metrics:  m,
	}

	// Router & handlers
	router := httpx.NewRouter(log, m, reg)
	requireUser := httpx.RequireUser(authSvc, log)
	(&httpx.AuthHandler{Auth: authSvc, RequireUser: requireUser, CookieSecure: cfg.CookieSecure, Log: log}).Register(router)
	(&httpx.ProductHandler{Catalog: catalogSvc, Log: log}).Register(router)
	(&httpx.BasketHandler{Basket: basketSvc, RequireUser: requireUser, Log: log}).Register(router)
	(&httpx.OrdersHandler{Checkout: checkoutSvc, RequireUser: requireUser, Log: log}).Register(router)

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.Info("http listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close() // flush queued confirmations
	prod.WaitClosed()
}
