package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/baraddmarketing/cart-checkout/internal/cache"
	"github.com/baraddmarketing/cart-checkout/internal/cart"
	"github.com/baraddmarketing/cart-checkout/internal/catalog"
	"github.com/baraddmarketing/cart-checkout/internal/domain"
	h "github.com/baraddmarketing/cart-checkout/internal/http"
	"github.com/baraddmarketing/cart-checkout/internal/metrics"
	"github.com/baraddmarketing/cart-checkout/internal/pricing"
	"github.com/baraddmarketing/cart-checkout/internal/publisher"
	"github.com/baraddmarketing/cart-checkout/internal/repository"
	"github.com/baraddmarketing/cart-checkout/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Config struct {
	HTTPPort        string
	RedisAddr       string
	RedisPassword   string
	CartStorageKey  string
	Mongo           repository.MongoConfig
	CatalogDBPath   string
	KafkaBrokers    []string
	PaymentURL      string
	PaymentMethod   domain.RedirectMethod
	Policy          pricing.Policy
	Currency        string
	Locale          string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	// Carts untouched for this long are dropped from memory.
	SessionIdleTimeout time.Duration
	EvictionInterval   time.Duration
}

func loadConfig(logger *zap.Logger) *Config {
	defaults := pricing.DefaultPolicy()
	mongo := repository.DefaultMongoConfig()
	cfg := &Config{
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		CartStorageKey: getEnv("CART_STORAGE_KEY", cart.DefaultKey),
		Mongo: repository.MongoConfig{
			URI:                    getEnv("MONGO_URI", mongo.URI),
			Database:               getEnv("MONGO_DB_NAME", mongo.Database),
			MaxPoolSize:            getUint(logger, "MONGO_MAX_POOL_SIZE", mongo.MaxPoolSize),
			MinPoolSize:            getUint(logger, "MONGO_MIN_POOL_SIZE", mongo.MinPoolSize),
			ConnectTimeout:         getDuration(logger, "MONGO_CONNECT_TIMEOUT", mongo.ConnectTimeout),
			ServerSelectionTimeout: mongo.ServerSelectionTimeout,
		},
		CatalogDBPath:  getEnv("CATALOG_DB_PATH", "catalog.db"),
		PaymentURL:     getEnv("PAYMENT_URL", ""),
		PaymentMethod:  domain.RedirectMethod(strings.ToUpper(getEnv("PAYMENT_METHOD", "POST"))),
		Policy: pricing.Policy{
			FreeShippingThreshold: getDecimal(logger, "FREE_SHIPPING_THRESHOLD", defaults.FreeShippingThreshold),
			FlatShippingFee:       getDecimal(logger, "FLAT_SHIPPING_FEE", defaults.FlatShippingFee),
			TaxRate:               getDecimal(logger, "TAX_RATE", defaults.TaxRate),
		},
		Currency:        getEnv("CURRENCY", pricing.DefaultCurrency),
		Locale:          getEnv("LOCALE", pricing.DefaultLocale),
		RequestTimeout:     30 * time.Second,
		ShutdownTimeout:    10 * time.Second,
		SessionIdleTimeout: getDuration(logger, "SESSION_IDLE_TIMEOUT", 30*time.Minute),
		EvictionInterval:   time.Minute,
	}
	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}
	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDecimal(logger *zap.Logger, key string, defaultValue decimal.Decimal) decimal.Decimal {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		logger.Warn("ignoring malformed decimal setting", zap.String("key", key), zap.String("value", raw))
		return defaultValue
	}
	return d
}

func getUint(logger *zap.Logger, key string, defaultValue uint64) uint64 {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		logger.Warn("ignoring malformed integer setting", zap.String("key", key), zap.String("value", raw))
		return defaultValue
	}
	return n
}

func getDuration(logger *zap.Logger, key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		logger.Warn("ignoring malformed duration setting", zap.String("key", key), zap.String("value", raw))
		return defaultValue
	}
	return d
}

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	cfg := loadConfig(logger)
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Cart storage: Redis when reachable, otherwise process memory
	var storage cache.CartStorage
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unavailable, carts will not survive a restart", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		storage = cache.NewMemoryStorage()
	} else {
		logger.Info("redis ping succeeded", zap.String("addr", cfg.RedisAddr))
		storage = cache.NewRedisStorage(redisClient)
	}

	orders, err := repository.OpenMongoRepository(ctx, cfg.Mongo)
	if err != nil {
		logger.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	defer orders.Close(context.Background())
	if err := orders.CreateIndexes(ctx); err != nil {
		logger.Warn("failed to create order indexes", zap.Error(err))
	}
	logger.Info("connected to MongoDB",
		zap.String("db", cfg.Mongo.Database),
		zap.Uint64("max_pool", cfg.Mongo.MaxPoolSize))

	products, err := catalog.NewRepository(cfg.CatalogDBPath)
	if err != nil {
		logger.Fatal("failed to open catalog", zap.Error(err))
	}
	defer products.Close()
	if err := products.RunMigrations(); err != nil {
		logger.Fatal("failed to migrate catalog", zap.Error(err))
	}

	var events publisher.EventPublisher = publisher.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		kp := publisher.NewKafkaPublisher(cfg.KafkaBrokers...)
		defer kp.Close()
		events = kp
		logger.Info("publishing order events", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", publisher.OrdersTopic))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	registry := cart.NewRegistry(storage, cart.Options{
		Key:       cfg.CartStorageKey,
		Logger:    logger.Named("cart"),
		OnCommand: m.CartCommand,
	})
	m.RegisterActiveCarts(reg, registry.Len)

	orderService := service.NewOrderService(orders, events, service.PaymentConfig{
		URL:      cfg.PaymentURL,
		Method:   cfg.PaymentMethod,
		Currency: cfg.Currency,
	}, logger.Named("orders"))

	checkout := h.NewCheckoutHandler(orderService.CreateOrder, service.CheckoutOptions{
		Policy:    cfg.Policy,
		Logger:    logger.Named("checkout"),
		OnOutcome: m.CheckoutOutcome,
	})
	registry.OnEvict(checkout.Forget)
	go registry.RunEviction(ctx, cfg.EvictionInterval, cfg.SessionIdleTimeout)

	router := h.NewRouter(h.RouterConfig{
		Registry:       registry,
		Cart:           h.NewCartHandler(products, cfg.Policy, cfg.Currency, cfg.Locale, logger),
		Products:       h.NewProductHandler(products, logger),
		Checkout:       checkout,
		Orders:         h.NewOrdersHandler(orderService, logger),
		Metrics:        m,
		Logger:         logger.Named("http"),
		RequestTimeout: cfg.RequestTimeout,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("storefront starting", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}
