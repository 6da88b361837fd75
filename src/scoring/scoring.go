package scoring

import (
	"github.com/shopspring/decimal"

	"trustengine/src/model"
)

// Pure, deterministic scoring functions. They never fail: absent or zero
// inputs degrade to neutral defaults rather than errors.

const (
	riskBase              = 50
	riskFlagRugPull       = 30
	riskFlagScam          = 30
	riskFlagRapidDump     = 15
	riskFlagSuspiciousVol = 15
)

// CalculateRiskScore scores a token 0 (safest) to 100 (riskiest). Liquidity
// and volume reduce risk, very large market caps and fraud flags add risk.
// A missing token or missing liquidity takes the full illiquidity penalty.
func CalculateRiskScore(token *model.TokenPerformance) int {
	score := float64(riskBase)

	if token == nil {
		return clampInt(riskBase+riskFlagSuspiciousVol+riskFlagRapidDump, 0, 100)
	}

	switch {
	case token.Liquidity >= 500_000:
		score -= 20
	case token.Liquidity >= 100_000:
		score -= 15
	case token.Liquidity >= 50_000:
		score -= 10
	case token.Liquidity >= 10_000:
		score -= 5
	case token.Liquidity < 1_000:
		// Illiquid or unknown liquidity takes the full penalty.
		score += 20
	}

	switch {
	case token.MarketCap >= 1_000_000_000:
		score += 10
	case token.MarketCap >= 100_000_000:
		score += 5
	}

	switch {
	case token.Volume24h >= 1_000_000:
		score -= 10
	case token.Volume24h >= 100_000:
		score -= 5
	}

	if token.RugPull {
		score += riskFlagRugPull
	}
	if token.IsScam {
		score += riskFlagScam
	}
	if token.RapidDump {
		score += riskFlagRapidDump
	}
	if token.SuspiciousVolume {
		score += riskFlagSuspiciousVol
	}

	return clampInt(int(score), 0, 100)
}

// CalculateTrustScore recomputes a recommender's trust score after a resolved
// position. The metrics passed in must already carry the incremented counters
// while TrustScore still holds the prior value. The update is an EMA-like
// heuristic blend, tuned via Config, not a statistically rigorous estimator.
func CalculateTrustScore(cfg Config, metrics model.RecommenderMetrics, newPerformance float64) float64 {
	signal := 0.0
	if newPerformance > 0 {
		signal = 100.0
	}

	intermediate := metrics.TrustScore*cfg.TrustPriorWeight + signal*cfg.TrustSignalWeight

	successRate := 0.0
	if metrics.TotalRecommendations > 0 {
		successRate = float64(metrics.SuccessfulRecs) / float64(metrics.TotalRecommendations) * 100.0
	}

	score := intermediate*cfg.BlendTrustWeight +
		successRate*cfg.BlendSuccessWeight +
		metrics.ConsistencyScore*cfg.BlendConsistencyWeight

	return clampFloat(score, 0, 100)
}

// CalculateBuyAmount sizes a buy in the token's smallest denomination from
// the recommender's trust score, the stated conviction and the token's
// liquidity. The pre-scaling amount is clamped to [MinAmount, MaxAmount].
func CalculateBuyAmount(cfg Config, trustScore float64, conviction model.Conviction, token *model.TokenPerformance) int64 {
	trustScore = clampFloat(trustScore, 0, 100)

	amount := cfg.BaseAmount
	amount *= 1 + trustScore/100*cfg.TrustWeight
	amount *= convictionMultiplier(cfg, conviction)

	liquidity := 0.0
	decimals := 0
	if token != nil {
		liquidity = token.Liquidity
		decimals = token.Decimals
	}
	amount *= liquidityMultiplier(liquidity)

	amount = clampFloat(amount, cfg.MinAmount, cfg.MaxAmount)

	if decimals < 0 || decimals > 18 {
		decimals = 0
	}
	return decimal.NewFromFloat(amount).Shift(int32(decimals)).IntPart()
}

// CalculatePositionPerformance returns the percent change between the
// amount-weighted average buy price and the amount-weighted average sell
// price. While nothing has been sold the position's current market price is
// used instead. Missing prices degrade to zero, never to an error.
func CalculatePositionPerformance(position *model.Position, transactions []model.Transaction) float64 {
	if position == nil {
		return 0
	}

	var buyValue, buyAmount, sellValue, sellAmount float64
	for _, tx := range transactions {
		switch tx.Type {
		case model.TransactionTypeBuy:
			buyValue += tx.Price * tx.Amount
			buyAmount += tx.Amount
		case model.TransactionTypeSell:
			sellValue += tx.Price * tx.Amount
			sellAmount += tx.Amount
		}
	}

	avgBuy := position.InitialPrice
	if buyAmount > 0 {
		avgBuy = buyValue / buyAmount
	}
	if avgBuy <= 0 {
		return 0
	}

	exitPrice := position.CurrentPrice
	if sellAmount > 0 {
		exitPrice = sellValue / sellAmount
	}

	return (exitPrice - avgBuy) / avgBuy * 100.0
}

func convictionMultiplier(cfg Config, conviction model.Conviction) float64 {
	switch conviction {
	case model.ConvictionHigh:
		return cfg.ConvictionHighMultiplier
	case model.ConvictionMedium:
		return cfg.ConvictionMediumMultiplier
	case model.ConvictionLow:
		return cfg.ConvictionLowMultiplier
	default:
		return cfg.ConvictionLowMultiplier
	}
}

func liquidityMultiplier(liquidity float64) float64 {
	switch {
	case liquidity >= 100_000:
		return 1.5
	case liquidity >= 10_000:
		return 1.0
	default:
		return 0.5
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
