package trading

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Token validation gates. Tokens carrying the simulation prefix bypass
	// all of them.
	MinLiquidityUSD       float64 `envconfig:"TRADING_MIN_LIQUIDITY_USD" default:"1000"`
	MaxMarketCapUSD       float64 `envconfig:"TRADING_MAX_MARKET_CAP_USD" default:"1000000000000"`
	MaxTop10HolderPercent float64 `envconfig:"TRADING_MAX_TOP10_HOLDER_PERCENT" default:"80"`
	MinVolume24hUSD       float64 `envconfig:"TRADING_MIN_VOLUME_24H_USD" default:"100"`

	SupportedChains  []string `envconfig:"TRADING_SUPPORTED_CHAINS" default:"solana,base,ethereum"`
	SimulationPrefix string   `envconfig:"TRADING_SIMULATION_PREFIX" default:"sim_"`

	// A 24h price drop at or below this percent marks the token as a rapid dump.
	RapidDumpThresholdPercent float64 `envconfig:"TRADING_RAPID_DUMP_THRESHOLD" default:"-80"`

	PerformanceCacheTTL time.Duration `envconfig:"TRADING_PERFORMANCE_CACHE_TTL" default:"5m"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
