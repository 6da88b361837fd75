package connectors

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	BirdeyeBaseURL string        `envconfig:"BIRDEYE_BASE_URL" default:"https://public-api.birdeye.so"`
	BirdeyeAPIKey  string        `envconfig:"BIRDEYE_API_KEY" default:""`
	RequestTimeout time.Duration `envconfig:"MARKETDATA_REQUEST_TIMEOUT" default:"10s"`

	RetryCount       int           `envconfig:"MARKETDATA_RETRY_COUNT" default:"3"`
	RetryWaitTime    time.Duration `envconfig:"MARKETDATA_RETRY_WAIT" default:"500ms"`
	RetryMaxWaitTime time.Duration `envconfig:"MARKETDATA_RETRY_MAX_WAIT" default:"8s"`

	// TTL for the cached gateway decorator.
	OverviewTTL  time.Duration `envconfig:"MARKETDATA_OVERVIEW_TTL" default:"5m"`
	SecurityTTL  time.Duration `envconfig:"MARKETDATA_SECURITY_TTL" default:"30m"`
	TradeDataTTL time.Duration `envconfig:"MARKETDATA_TRADEDATA_TTL" default:"5m"`
	TickerTTL    time.Duration `envconfig:"MARKETDATA_TICKER_TTL" default:"1h"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
