package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	logger "github.com/sirupsen/logrus"
	"github.com/urfave/cli"

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

var Version string

func main() {
	setupLogger()

	app := cli.NewApp()
	app.Name = "trustengine"
	app.Usage = "The trust engine command line interface"
	app.Version = Version

	app.Commands = []cli.Command{
		serverCMD,
		reportCMD,
	}

	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	serverCMD = cli.Command{
		Name:        "server",
		Usage:       "run the trust engine HTTP server",
		Action:      serverAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Serve the signal, recommendation, position and report endpoints`,
	}
	reportCMD = cli.Command{
		Name:      "report",
		Usage:     "print the portfolio report",
		Action:    reportAction,
		ArgsUsage: "",
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  "recommender",
				Usage: "only include positions opened by this recommender",
			},
		},
		Description: `Render the open-position portfolio report to stdout`,
	}
)

func serverAction(_ *cli.Context) error {
	logger.Info("Starting trust engine server")

	if err := database.InitMainDB(); err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}

	service, generator := buildEngine(buildCache())

	handlers := server.Handlers{
		BuySignal:      handler.BuySignalHandler(service),
		SellSignal:     handler.SellSignalHandler(service),
		Recommendation: handler.RecommendationHandler(service),
		ListPositions:  handler.DefaultListOpenPositionsHandler(),
		Report:         handler.PortfolioReportHandler(generator),
	}

	server.StartServer(server.GetConfig(), server.NewRouter(handlers))
	return nil
}

func reportAction(c *cli.Context) error {
	if err := database.InitMainDB(); err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}

	generator := reporting.NewGenerator(
		repository.NewPositionRepository(),
		repository.NewTokenRepository(),
		repository.NewTransactionRepository(),
	)

	fmt.Println(generator.FormattedReport(context.Background(), c.String("recommender")))
	return nil
}

func buildCache() cache.Cache {
	cacheConfig := cache.GetConfig()
	if cacheConfig.RedisAddr == "" {
		return cache.NewMemoryCache()
	}

	redisCache, err := cache.NewRedisCache(cacheConfig)
	if err != nil {
		logger.WithError(err).Warn("Redis unavailable, falling back to in-memory cache")
		return cache.NewMemoryCache()
	}
	return redisCache
}

func buildEngine(cacheStore cache.Cache) (*trading.Service, *reporting.Generator) {
	marketConfig := connectors.GetConfig()
	gateway := connectors.NewCachedGateway(connectors.NewBirdeyeClient(marketConfig), cacheStore, marketConfig)

	scoringConfig := scoring.GetConfig()
	tracker := reputation.NewTracker(repository.NewMetricsRepository(), scoringConfig)

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
		events.NewEmitter(),
	)

	generator := reporting.NewGenerator(
		repository.NewPositionRepository(),
		repository.NewTokenRepository(),
		repository.NewTransactionRepository(),
	)
	return service, generator
}

func setupLogger() {
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
