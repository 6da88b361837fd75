package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"

	"trustengine/src/cache"
	"trustengine/src/connectors"
	"trustengine/src/database"
	"trustengine/src/events"
	"trustengine/src/handler"
	"trustengine/src/reporting"
	"trustengine/src/repository"
	"trustengine/src/reputation"
	"trustengine/src/scoring"
	"trustengine/src/server"
	"trustengine/src/trading"
)

var APP_NAME = os.Getenv("APP_NAME")

func SetupLogger() {
	levelStr := strings.ToLower(os.Getenv("LOG_LEVEL"))

	level, err := logger.ParseLevel(levelStr)
	if err != nil {
		level = logger.InfoLevel
	}

	logger.SetLevel(level)
	logger.SetFormatter(&logger.TextFormatter{
		FullTimestamp: true,
	})
}

func main() {
	SetupLogger()
	defer handlePanic()

	if err := database.InitMainDB(); err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}

	cacheStore := BuildCache()
	service, generator := BuildEngine(cacheStore)

	handlers := server.Handlers{
		BuySignal:      handler.BuySignalHandler(service),
		SellSignal:     handler.SellSignalHandler(service),
		Recommendation: handler.RecommendationHandler(service),
		ListPositions:  handler.DefaultListOpenPositionsHandler(),
		Report:         handler.PortfolioReportHandler(generator),
	}

	server.StartServer(server.GetConfig(), server.NewRouter(handlers))
}

// BuildCache returns the Redis-backed cache when an address is configured,
// falling back to the in-memory cache so a missing Redis never blocks startup.
func BuildCache() cache.Cache {
	cacheConfig := cache.GetConfig()
	if cacheConfig.RedisAddr == "" {
		return cache.NewMemoryCache()
	}

	redisCache, err := cache.NewRedisCache(cacheConfig)
	if err != nil {
		logger.WithError(err).Warn("Redis unavailable, falling back to in-memory cache")
		return cache.NewMemoryCache()
	}
	logger.WithField("addr", cacheConfig.RedisAddr).Info("Using Redis cache")
	return redisCache
}

// BuildEngine assembles the trading service and report generator on top of
// the production repositories and the Birdeye gateway.
func BuildEngine(cacheStore cache.Cache) (*trading.Service, *reporting.Generator) {
	marketConfig := connectors.GetConfig()
	gateway := connectors.NewCachedGateway(connectors.NewBirdeyeClient(marketConfig), cacheStore, marketConfig)

	scoringConfig := scoring.GetConfig()
	tracker := reputation.NewTracker(repository.NewMetricsRepository(), scoringConfig)

	emitter := events.NewEmitter()
	emitter.Subscribe(events.PositionOpened, auditListener("position opened"))
	emitter.Subscribe(events.PositionClosed, auditListener("position closed"))

	service := trading.NewService(
		trading.GetConfig(),
		scoringConfig,
		gateway,
		cacheStore,
		trading.Stores{
			Tokens:          repository.NewTokenRepository(),
			Positions:       repository.NewPositionRepository(),
			Recommendations: repository.NewRecommendationRepository(),
			Transactions:    repository.NewTransactionRepository(),
		},
		tracker,
		emitter,
	)

	generator := reporting.NewGenerator(
		repository.NewPositionRepository(),
		repository.NewTokenRepository(),
		repository.NewTransactionRepository(),
	)
	return service, generator
}

func auditListener(message string) events.Listener {
	return func(e events.Event) {
		logger.WithFields(logger.Fields{
			"event_type": e.Type,
			"at":         e.At,
		}).Info("Audit: " + message)
	}
}

func handlePanic() {
	if r := recover(); r != nil {
		logger.WithError(fmt.Errorf("%+v", r)).Error(fmt.Sprintf("Application %s panic", APP_NAME))
	}
	//nolint
	time.Sleep(time.Second * 5)
}
