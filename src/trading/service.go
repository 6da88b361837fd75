package trading

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"

	"trustengine/src/cache"
	"trustengine/src/connectors"
	"trustengine/src/events"
	"trustengine/src/model"
	"trustengine/src/reputation"
	"trustengine/src/scoring"
)

// Narrow store interfaces over the repositories. The service depends only on
// what it calls, which keeps tests on plain sqlite-backed repositories.

type TokenStore interface {
	Upsert(ctx context.Context, token *model.TokenPerformance) error
	FindByChainAddress(ctx context.Context, chain, address string) (*model.TokenPerformance, error)
}

type PositionStore interface {
	Create(ctx context.Context, position *model.Position) error
	FindByID(ctx context.Context, id string) (*model.Position, error)
	Close(ctx context.Context, id string, currentPrice float64, closedAt time.Time) (bool, error)
}

type RecommendationStore interface {
	Create(ctx context.Context, rec *model.TokenRecommendation) error
	UpdateSnapshot(ctx context.Context, id string, price, marketCap, liquidity float64) error
}

type TransactionStore interface {
	Create(ctx context.Context, tx *model.Transaction) error
	FindByPosition(ctx context.Context, positionID string) ([]model.Transaction, error)
}

// BuySignal asks the engine to open a simulated position. Either TokenAddress
// or Ticker must be set; the ticker is resolved through the market data
// gateway when no address is given.
type BuySignal struct {
	Chain        string
	TokenAddress string
	Ticker       string
	Platform     string
	Conviction   model.Conviction
	Timestamp    time.Time
}

// Recommendation is a raw call from a recommender. BUY recommendations open a
// position; everything else is recorded for the reputation trail only.
type Recommendation struct {
	Chain        string
	TokenAddress string
	Ticker       string
	Platform     string
	Type         model.RecommendationType
	Conviction   model.Conviction
	Timestamp    time.Time
}

// Service is the trust engine core: it validates incoming signals, sizes and
// opens simulated positions, closes them exactly once, and settles the
// outcome into the recommender's reputation.
//
// Public methods never return errors. Infrastructure faults and rejected
// signals both collapse to nil/false at the boundary and are logged; callers
// only ever see "a position" or "nothing happened".
type Service struct {
	cfg        Config
	scoringCfg scoring.Config

	gateway connectors.MarketDataGateway
	cache   cache.Cache

	tokens          TokenStore
	positions       PositionStore
	recommendations RecommendationStore
	transactions    TransactionStore

	reputation *reputation.Tracker
	emitter    *events.Emitter

	now   func() time.Time
	newID func() string
}

// Stores bundles the persistence dependencies of the service.
type Stores struct {
	Tokens          TokenStore
	Positions       PositionStore
	Recommendations RecommendationStore
	Transactions    TransactionStore
}

func NewService(
	cfg Config,
	scoringCfg scoring.Config,
	gateway connectors.MarketDataGateway,
	cacheStore cache.Cache,
	stores Stores,
	tracker *reputation.Tracker,
	emitter *events.Emitter,
) *Service {
	return &Service{
		cfg:             cfg,
		scoringCfg:      scoringCfg,
		gateway:         gateway,
		cache:           cacheStore,
		tokens:          stores.Tokens,
		positions:       stores.Positions,
		recommendations: stores.Recommendations,
		transactions:    stores.Transactions,
		reputation:      tracker,
		emitter:         emitter,
		now:             time.Now,
		newID:           uuid.NewString,
	}
}

// ProcessBuySignal validates the signal and opens a simulated position.
// Returns nil both when the signal is rejected and when infrastructure fails.
func (s *Service) ProcessBuySignal(ctx context.Context, recommenderID string, signal BuySignal) *model.Position {
	position, err := s.openPosition(ctx, recommenderID, signal)
	if err != nil {
		logger.WithFields(logger.Fields{
			"recommender_id": recommenderID,
			"chain":          signal.Chain,
			"address":        signal.TokenAddress,
			"ticker":         signal.Ticker,
		}).WithError(err).Error("Buy signal failed")
		return nil
	}
	return position
}

// ProcessSellSignal closes the position and records a SELL transaction.
// Returns false when the position is missing, already closed, or anything
// fails; the close happens at most once regardless of how often the signal
// is replayed.
func (s *Service) ProcessSellSignal(ctx context.Context, positionID string) bool {
	closed, err := s.settlePosition(ctx, positionID, true)
	if err != nil {
		logger.WithFields(logger.Fields{
			"position_id": positionID,
		}).WithError(err).Error("Sell signal failed")
		return false
	}
	return closed
}

// HandleRecommendation routes a raw recommendation. BUY opens a position via
// the buy path; SELL and HOLD are recorded against the recommender without
// touching any position. Returns the opened position, or nil.
func (s *Service) HandleRecommendation(ctx context.Context, recommenderID string, rec Recommendation) *model.Position {
	recType := model.RecommendationType(strings.ToUpper(string(rec.Type)))

	if recType == model.RecommendationTypeBuy {
		return s.ProcessBuySignal(ctx, recommenderID, BuySignal{
			Chain:        rec.Chain,
			TokenAddress: rec.TokenAddress,
			Ticker:       rec.Ticker,
			Platform:     rec.Platform,
			Conviction:   rec.Conviction,
			Timestamp:    rec.Timestamp,
		})
	}

	if err := s.recordRecommendation(ctx, recommenderID, recType, rec); err != nil {
		logger.WithFields(logger.Fields{
			"recommender_id": recommenderID,
			"type":           recType,
		}).WithError(err).Error("Failed to record recommendation")
	}
	return nil
}

// ClosePosition is the administrative close: it exits the position at the
// current market price without recording a SELL transaction. Returns false
// when the position is missing or already closed.
func (s *Service) ClosePosition(ctx context.Context, positionID string) bool {
	closed, err := s.settlePosition(ctx, positionID, false)
	if err != nil {
		logger.WithFields(logger.Fields{
			"position_id": positionID,
		}).WithError(err).Error("Close position failed")
		return false
	}
	return closed
}

// ShouldTradeToken applies the tradability gates: liquidity floor, market cap
// ceiling, holder concentration and 24h volume floor. Simulation tokens
// always pass. Any gateway failure fails closed.
func (s *Service) ShouldTradeToken(ctx context.Context, chain, address string) bool {
	if s.isSimulated(address) {
		return true
	}

	chain = strings.ToLower(chain)
	if !s.chainSupported(chain) {
		return false
	}

	overview, err := s.gateway.FetchOverview(ctx, chain, address)
	if err != nil {
		logger.WithFields(logger.Fields{
			"chain":   chain,
			"address": address,
		}).WithError(err).Warn("Tradability check failed to fetch overview")
		return false
	}
	security, err := s.gateway.FetchSecurity(ctx, chain, address)
	if err != nil {
		logger.WithFields(logger.Fields{
			"chain":   chain,
			"address": address,
		}).WithError(err).Warn("Tradability check failed to fetch security")
		return false
	}
	tradeData, err := s.gateway.FetchTradeData(ctx, chain, address)
	if err != nil {
		logger.WithFields(logger.Fields{
			"chain":   chain,
			"address": address,
		}).WithError(err).Warn("Tradability check failed to fetch trade data")
		return false
	}

	var reason string
	switch {
	case overview.LiquidityUSD < s.cfg.MinLiquidityUSD:
		reason = "liquidity below floor"
	case s.cfg.MaxMarketCapUSD > 0 && overview.MarketCap > s.cfg.MaxMarketCapUSD:
		reason = "market cap above ceiling"
	case security.Top10HolderPercent > s.cfg.MaxTop10HolderPercent:
		reason = "holder concentration too high"
	case tradeData.Volume24hUSD < s.cfg.MinVolume24hUSD:
		reason = "24h volume below floor"
	default:
		return true
	}

	logger.WithFields(logger.Fields{
		"chain":      chain,
		"address":    address,
		"liquidity":  overview.LiquidityUSD,
		"market_cap": overview.MarketCap,
		"top10_pct":  security.Top10HolderPercent,
		"volume_24h": tradeData.Volume24hUSD,
	}).Warn("Token rejected: " + reason)
	return false
}

// RefreshTokenPerformance fetches the latest market snapshot, persists it and
// returns it. Returns nil on failure; a stale stored snapshot is served when
// the gateway is down.
func (s *Service) RefreshTokenPerformance(ctx context.Context, chain, address string) *model.TokenPerformance {
	token, err := s.refreshToken(ctx, strings.ToLower(chain), address)
	if err != nil {
		logger.WithFields(logger.Fields{
			"chain":   chain,
			"address": address,
		}).WithError(err).Error("Failed to refresh token performance")
		return nil
	}
	return token
}

func (s *Service) openPosition(ctx context.Context, recommenderID string, signal BuySignal) (*model.Position, error) {
	chain := strings.ToLower(signal.Chain)
	if !s.chainSupported(chain) {
		logger.WithFields(logger.Fields{
			"recommender_id": recommenderID,
			"chain":          signal.Chain,
		}).Warn("Buy signal rejected: unsupported chain")
		return nil, nil
	}

	address, err := s.resolveAddress(ctx, chain, signal.TokenAddress, signal.Ticker)
	if err != nil {
		return nil, err
	}
	if address == "" {
		logger.WithFields(logger.Fields{
			"recommender_id": recommenderID,
			"chain":          chain,
			"ticker":         signal.Ticker,
		}).Warn("Buy signal rejected: token address could not be resolved")
		return nil, nil
	}

	isSimulation := s.isSimulated(address)

	token, err := s.refreshToken(ctx, chain, address)
	if err != nil {
		return nil, err
	}

	if !isSimulation {
		if token.Flagged() {
			logger.WithFields(logger.Fields{
				"chain":   chain,
				"address": address,
			}).Warn("Buy signal rejected: token is flagged")
			return nil, nil
		}
		if !s.ShouldTradeToken(ctx, chain, address) {
			return nil, nil
		}
	}

	metrics, err := s.reputation.Initialize(ctx, recommenderID, signal.Platform)
	if err != nil {
		return nil, err
	}

	now := s.now()
	recommendedAt := signal.Timestamp
	if recommendedAt.IsZero() {
		recommendedAt = now
	}

	rec := &model.TokenRecommendation{
		ID:            s.newID(),
		RecommenderID: recommenderID,
		Chain:         chain,
		Address:       address,
		Type:          model.RecommendationTypeBuy,
		Conviction:    normalizeConviction(signal.Conviction),
		RiskScore:     scoring.CalculateRiskScore(token),

		InitialPrice:     token.Price,
		InitialMarketCap: token.MarketCap,
		InitialLiquidity: token.Liquidity,
		CurrentPrice:     token.Price,
		CurrentMarketCap: token.MarketCap,
		CurrentLiquidity: token.Liquidity,

		Status:        model.RecommendationStatusActive,
		RecommendedAt: recommendedAt,
	}
	if err := s.recommendations.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("record recommendation: %w", err)
	}
	s.emitter.Emit(events.RecommendationAdded, rec)

	amount := scoring.CalculateBuyAmount(s.scoringCfg, metrics.TrustScore, rec.Conviction, token)

	position := &model.Position{
		ID:               s.newID(),
		RecommendationID: rec.ID,
		RecommenderID:    recommenderID,
		Chain:            chain,
		Address:          address,
		Amount:           float64(amount),
		InitialPrice:     token.Price,
		CurrentPrice:     token.Price,
		IsSimulation:     isSimulation,
		Status:           model.PositionStatusOpen,
		OpenedAt:         now,
	}
	if err := s.positions.Create(ctx, position); err != nil {
		return nil, fmt.Errorf("create position: %w", err)
	}

	tx := &model.Transaction{
		ID:         s.newID(),
		PositionID: position.ID,
		Type:       model.TransactionTypeBuy,
		Amount:     position.Amount,
		Price:      token.Price,
		Timestamp:  now,
	}
	if err := s.transactions.Create(ctx, tx); err != nil {
		return nil, fmt.Errorf("record buy transaction: %w", err)
	}
	s.emitter.Emit(events.TransactionAdded, tx)
	s.emitter.Emit(events.PositionOpened, position)

	logger.WithFields(logger.Fields{
		"position_id":    position.ID,
		"recommender_id": recommenderID,
		"chain":          chain,
		"address":        address,
		"amount":         position.Amount,
		"price":          position.InitialPrice,
		"simulation":     isSimulation,
	}).Info("Opened position")

	return position, nil
}

// settlePosition closes an open position at the current market price and
// folds the realized performance into the recommender's reputation. The
// conditional close in the store guarantees at-most-once settlement; a lost
// race reports false without side effects.
func (s *Service) settlePosition(ctx context.Context, positionID string, recordSell bool) (bool, error) {
	position, err := s.positions.FindByID(ctx, positionID)
	if err != nil {
		return false, err
	}
	if position == nil {
		logger.WithFields(logger.Fields{
			"position_id": positionID,
		}).Warn("Cannot close: position not found")
		return false, nil
	}
	if !position.IsOpen() {
		logger.WithFields(logger.Fields{
			"position_id": positionID,
		}).Warn("Cannot close: position already closed")
		return false, nil
	}

	exitPrice, overview := s.exitPrice(ctx, position)
	closedAt := s.now()

	closed, err := s.positions.Close(ctx, position.ID, exitPrice, closedAt)
	if err != nil {
		return false, err
	}
	if !closed {
		return false, nil
	}
	position.Status = model.PositionStatusClosed
	position.CurrentPrice = exitPrice
	position.ClosedAt = &closedAt

	if recordSell {
		tx := &model.Transaction{
			ID:         s.newID(),
			PositionID: position.ID,
			Type:       model.TransactionTypeSell,
			Amount:     position.Amount,
			Price:      exitPrice,
			Timestamp:  closedAt,
		}
		if err := s.transactions.Create(ctx, tx); err != nil {
			return false, fmt.Errorf("record sell transaction: %w", err)
		}
		s.emitter.Emit(events.TransactionAdded, tx)
	}

	transactions, err := s.transactions.FindByPosition(ctx, position.ID)
	if err != nil {
		logger.WithFields(logger.Fields{
			"position_id": position.ID,
		}).WithError(err).Warn("Settling without transaction ledger")
		transactions = nil
	}
	performance := scoring.CalculatePositionPerformance(position, transactions)

	// The position is already closed at this point, so reputation and
	// snapshot failures are logged rather than reported as a failed close.
	if err := s.reputation.Update(ctx, position.RecommenderID, performance); err != nil {
		logger.WithFields(logger.Fields{
			"position_id":    position.ID,
			"recommender_id": position.RecommenderID,
		}).WithError(err).Error("Failed to update recommender metrics")
	}
	if overview != nil {
		if err := s.recommendations.UpdateSnapshot(ctx, position.RecommendationID, exitPrice, overview.MarketCap, overview.LiquidityUSD); err != nil {
			logger.WithFields(logger.Fields{
				"recommendation_id": position.RecommendationID,
			}).WithError(err).Warn("Failed to update recommendation snapshot")
		}
	}

	s.emitter.Emit(events.PositionClosed, position)

	logger.WithFields(logger.Fields{
		"position_id":    position.ID,
		"recommender_id": position.RecommenderID,
		"exit_price":     exitPrice,
		"performance":    performance,
	}).Info("Closed position")

	return true, nil
}

func (s *Service) recordRecommendation(ctx context.Context, recommenderID string, recType model.RecommendationType, input Recommendation) error {
	chain := strings.ToLower(input.Chain)
	if !s.chainSupported(chain) {
		logger.WithFields(logger.Fields{
			"recommender_id": recommenderID,
			"chain":          input.Chain,
		}).Warn("Recommendation rejected: unsupported chain")
		return nil
	}

	address, err := s.resolveAddress(ctx, chain, input.TokenAddress, input.Ticker)
	if err != nil {
		return err
	}
	if address == "" {
		logger.WithFields(logger.Fields{
			"recommender_id": recommenderID,
			"chain":          chain,
			"ticker":         input.Ticker,
		}).Warn("Recommendation rejected: token address could not be resolved")
		return nil
	}

	// Best effort: a recommendation is worth recording even when no market
	// snapshot can be fetched.
	token, err := s.refreshToken(ctx, chain, address)
	if err != nil {
		logger.WithFields(logger.Fields{
			"chain":   chain,
			"address": address,
		}).WithError(err).Warn("Recording recommendation without market snapshot")
		token = nil
	}

	if _, err := s.reputation.Initialize(ctx, recommenderID, input.Platform); err != nil {
		return err
	}

	recommendedAt := input.Timestamp
	if recommendedAt.IsZero() {
		recommendedAt = s.now()
	}

	rec := &model.TokenRecommendation{
		ID:            s.newID(),
		RecommenderID: recommenderID,
		Chain:         chain,
		Address:       address,
		Type:          recType,
		Conviction:    normalizeConviction(input.Conviction),
		RiskScore:     scoring.CalculateRiskScore(token),
		Status:        model.RecommendationStatusActive,
		RecommendedAt: recommendedAt,
	}
	if token != nil {
		rec.InitialPrice = token.Price
		rec.InitialMarketCap = token.MarketCap
		rec.InitialLiquidity = token.Liquidity
		rec.CurrentPrice = token.Price
		rec.CurrentMarketCap = token.MarketCap
		rec.CurrentLiquidity = token.Liquidity
	}
	if err := s.recommendations.Create(ctx, rec); err != nil {
		return fmt.Errorf("record recommendation: %w", err)
	}
	s.emitter.Emit(events.RecommendationAdded, rec)
	return nil
}

// refreshToken pulls the latest overview from the gateway, merges it with the
// stored snapshot (fraud flags and creation time survive refreshes), persists
// and caches the result. When the gateway is down a stored snapshot is served
// stale instead of failing.
func (s *Service) refreshToken(ctx context.Context, chain, address string) (*model.TokenPerformance, error) {
	stored, err := s.tokens.FindByChainAddress(ctx, chain, address)
	if err != nil {
		return nil, fmt.Errorf("load token: %w", err)
	}

	overview, err := s.gateway.FetchOverview(ctx, chain, address)
	if err != nil {
		if stored != nil {
			logger.WithFields(logger.Fields{
				"chain":   chain,
				"address": address,
			}).WithError(err).Warn("Gateway unavailable, serving stale token snapshot")
			return stored, nil
		}
		return nil, fmt.Errorf("fetch overview: %w", err)
	}

	token := &model.TokenPerformance{
		ID:       s.newID(),
		Chain:    chain,
		Address:  address,
		Symbol:   overview.Symbol,
		Name:     overview.Name,
		Decimals: overview.Decimals,

		Price:          overview.Price,
		Liquidity:      overview.LiquidityUSD,
		MarketCap:      overview.MarketCap,
		Volume24h:      overview.Volume24hUSD,
		PriceChange24h: overview.PriceChange24h,
		Holders:        overview.Holders,
	}
	if stored != nil {
		token.ID = stored.ID
		token.CreatedAt = stored.CreatedAt
		token.IsScam = stored.IsScam
		token.RugPull = stored.RugPull
		token.RapidDump = stored.RapidDump
		token.SuspiciousVolume = stored.SuspiciousVolume
		if stored.Volume24h > 0 {
			token.VolumeChange24h = (overview.Volume24hUSD - stored.Volume24h) / stored.Volume24h * 100
		}
	}
	if overview.PriceChange24h <= s.cfg.RapidDumpThresholdPercent {
		token.RapidDump = true
	}

	if err := s.tokens.Upsert(ctx, token); err != nil {
		return nil, fmt.Errorf("persist token: %w", err)
	}

	if payload, err := json.Marshal(token); err == nil {
		if err := s.cache.Set(ctx, cache.TokenPerformanceKey(chain, address), string(payload), s.cfg.PerformanceCacheTTL); err != nil {
			logger.WithFields(logger.Fields{
				"chain":   chain,
				"address": address,
			}).WithError(err).Debug("Failed to cache token performance")
		}
	}

	s.emitter.Emit(events.TokenPerformanceUpdated, token)
	return token, nil
}

// exitPrice returns the price a position settles at. The live market price is
// preferred; when the gateway is unavailable the last known mark survives so
// a close never blocks on market data.
func (s *Service) exitPrice(ctx context.Context, position *model.Position) (float64, *connectors.TokenOverview) {
	overview, err := s.gateway.FetchOverview(ctx, position.Chain, position.Address)
	if err == nil && overview.Price > 0 {
		return overview.Price, overview
	}
	if err != nil {
		logger.WithFields(logger.Fields{
			"position_id": position.ID,
			"chain":       position.Chain,
			"address":     position.Address,
		}).WithError(err).Warn("Closing at last known price, gateway unavailable")
	}
	if position.CurrentPrice > 0 {
		return position.CurrentPrice, nil
	}
	return position.InitialPrice, nil
}

func (s *Service) resolveAddress(ctx context.Context, chain, address, ticker string) (string, error) {
	if address != "" {
		return address, nil
	}
	if ticker == "" {
		return "", nil
	}
	resolved, err := s.gateway.ResolveTicker(ctx, chain, ticker)
	if err != nil {
		return "", fmt.Errorf("resolve ticker %q: %w", ticker, err)
	}
	return resolved, nil
}

func (s *Service) chainSupported(chain string) bool {
	for _, supported := range s.cfg.SupportedChains {
		if strings.EqualFold(supported, chain) {
			return true
		}
	}
	return false
}

func (s *Service) isSimulated(address string) bool {
	return s.cfg.SimulationPrefix != "" && strings.HasPrefix(address, s.cfg.SimulationPrefix)
}

func normalizeConviction(conviction model.Conviction) model.Conviction {
	switch model.Conviction(strings.ToUpper(string(conviction))) {
	case model.ConvictionHigh:
		return model.ConvictionHigh
	case model.ConvictionMedium:
		return model.ConvictionMedium
	default:
		return model.ConvictionLow
	}
}
