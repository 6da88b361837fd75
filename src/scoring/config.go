package scoring

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config carries the scoring and sizing tuning constants. The trust blending
// weights are heuristic tuning values, not derived from a statistical model.
type Config struct {
	// Buy sizing, in base token units before decimal scaling.
	BaseAmount float64 `envconfig:"SCORING_BASE_AMOUNT" default:"1000"`
	MinAmount  float64 `envconfig:"SCORING_MIN_AMOUNT" default:"100"`
	MaxAmount  float64 `envconfig:"SCORING_MAX_AMOUNT" default:"10000"`

	// TrustWeight scales how strongly a recommender's trust score inflates
	// the buy amount: multiplier = 1 + trust/100 * TrustWeight.
	TrustWeight float64 `envconfig:"SCORING_TRUST_WEIGHT" default:"0.5"`

	ConvictionLowMultiplier    float64 `envconfig:"SCORING_CONVICTION_LOW_MULT" default:"0.5"`
	ConvictionMediumMultiplier float64 `envconfig:"SCORING_CONVICTION_MEDIUM_MULT" default:"1.0"`
	ConvictionHighMultiplier   float64 `envconfig:"SCORING_CONVICTION_HIGH_MULT" default:"1.5"`

	// Trust score update: intermediate = prior*PriorWeight + signal*SignalWeight,
	// final = intermediate*BlendTrust + successRate*BlendSuccess + consistency*BlendConsistency.
	TrustPriorWeight       float64 `envconfig:"SCORING_TRUST_PRIOR_WEIGHT" default:"0.7"`
	TrustSignalWeight      float64 `envconfig:"SCORING_TRUST_SIGNAL_WEIGHT" default:"0.3"`
	BlendTrustWeight       float64 `envconfig:"SCORING_BLEND_TRUST_WEIGHT" default:"0.6"`
	BlendSuccessWeight     float64 `envconfig:"SCORING_BLEND_SUCCESS_WEIGHT" default:"0.3"`
	BlendConsistencyWeight float64 `envconfig:"SCORING_BLEND_CONSISTENCY_WEIGHT" default:"0.1"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
