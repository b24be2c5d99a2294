package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tabin-ltd/kiosk/internal/api"
	"github.com/tabin-ltd/kiosk/internal/cart"
	"github.com/tabin-ltd/kiosk/internal/catalog"
	"github.com/tabin-ltd/kiosk/internal/checkout"
	"github.com/tabin-ltd/kiosk/internal/domain"
	"github.com/tabin-ltd/kiosk/internal/eftpos"
	"github.com/tabin-ltd/kiosk/internal/errlog"
	"github.com/tabin-ltd/kiosk/internal/localstore"
	"github.com/tabin-ltd/kiosk/internal/orders"
	"github.com/tabin-ltd/kiosk/internal/printing"
)

type Config struct {
	HTTPPort string

	RedisAddr     string
	MongoURI      string
	MongoDatabase string

	PostgresHost     string
	PostgresPort     int
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	MigrationsPath   string

	KafkaBrokers []string

	RegisterKey string
	UserID      string

	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:         getEnv("HTTP_PORT", "8080"),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		MongoURI:         getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:    getEnv("MONGO_DB", "kiosk"),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnvInt("POSTGRES_PORT", 5432),
		PostgresUser:     getEnv("POSTGRES_USER", "kiosk"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "kiosk"),
		PostgresDB:       getEnv("POSTGRES_DB", "kiosk_orders"),
		MigrationsPath:   getEnv("MIGRATIONS_PATH", "internal/orders/migrations"),
		KafkaBrokers:     strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
		RegisterKey:      getEnv("REGISTER_KEY", ""),
		UserID:           getEnv("USER_ID", ""),
		ShutdownTimeout:  10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Fatalf("invalid %s: %v", key, err)
	}
	return parsed
}

func main() {
	cfg := loadConfig()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	store := localstore.New(redisClient)

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("failed to connect to mongo: %v", err)
	}
	defer mongoClient.Disconnect(context.Background())

	catalogSvc := catalog.NewService(catalog.NewMongoRepository(mongoClient.Database(cfg.MongoDatabase)))

	orderRepo, err := orders.NewPostgresRepository(&orders.Credentials{
		Host:              cfg.PostgresHost,
		Port:              cfg.PostgresPort,
		User:              cfg.PostgresUser,
		Password:          cfg.PostgresPassword,
		DBName:            cfg.PostgresDB,
		MigrationsDirPath: cfg.MigrationsPath,
	})
	if err != nil {
		log.Fatalf("failed to set up order storage: %v", err)
	}
	defer orderRepo.Close()

	register, err := resolveRegister(ctx, cfg, store, catalogSvc)
	if err != nil {
		log.Fatalf("failed to resolve register: %v", err)
	}
	log.Printf("register %q (%s) on restaurant %s", register.Name, register.Type, register.RestaurantID)

	restaurant, err := catalogSvc.GetRestaurant(ctx, register.RestaurantID)
	if err != nil {
		log.Fatalf("failed to load restaurant: %v", err)
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}

	terminal, err := eftpos.ProviderFor(register, httpClient)
	if err != nil {
		log.Fatalf("failed to set up payment terminal: %v", err)
	}

	errLogger := errlog.New("kiosk")

	cartSvc := cart.NewService(restaurant, register.Type)
	creator := orders.NewCreator(orderRepo, errLogger)

	labelClient := printing.NewLabelClient(httpClient)
	dispatcher := printing.NewDispatcher(printing.NewWebPrinter(labelClient), store, errLogger)
	worker := printing.NewWorker(register, dispatcher, store, orderRepo, cfg.KafkaBrokers...)
	poller := orders.NewOutboxPoller(orderRepo, cfg.KafkaBrokers...)

	orchestrator := checkout.NewOrchestrator(
		cartSvc,
		register,
		terminal,
		creator,
		dispatcher,
		errLogger,
		cfg.UserID,
		func() { log.Println("order complete, returning to entry screen") },
	)

	go poller.Run(ctx)
	go dispatcher.RunRetryLoop(ctx)
	go worker.Run(ctx)

	router := api.NewRouter(
		api.NewCartHandler(cartSvc),
		api.NewCheckoutHandler(orchestrator),
		api.NewRegisterHandler(catalogSvc, store),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("kiosk starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}

// resolveRegister prefers the key persisted on the device and falls back to
// the REGISTER_KEY environment variable, persisting it for the next start.
func resolveRegister(ctx context.Context, cfg *Config, store *localstore.Store, catalogSvc *catalog.Service) (*domain.Register, error) {
	key, err := store.RegisterKey(ctx)
	if errors.Is(err, localstore.ErrNotFound) {
		key = cfg.RegisterKey
	} else if err != nil {
		return nil, err
	}
	if key == "" {
		return nil, errors.New("no register key stored and REGISTER_KEY not set")
	}

	reg, err := catalogSvc.RegisterByKey(ctx, key)
	if err != nil {
		return nil, err
	}

	if err := store.SetRegisterKey(ctx, key); err != nil {
		return nil, err
	}
	return reg, nil
}
