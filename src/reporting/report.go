package reporting

import (
	"context"
	"fmt"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"

	"trustengine/src/model"
)

const emptyReport = "No open positions found."

type positionStore interface {
	FindOpen(ctx context.Context, recommenderID string) ([]model.Position, error)
}

type tokenStore interface {
	FindByChainAddresses(ctx context.Context, chain string, addresses []string) ([]model.TokenPerformance, error)
}

type transactionStore interface {
	FindByPositions(ctx context.Context, positionIDs []string) ([]model.Transaction, error)
}

// Generator renders the portfolio of open positions as a plain-text report.
// It reads accumulated state only; it never mutates anything.
type Generator struct {
	positions    positionStore
	tokens       tokenStore
	transactions transactionStore
	now          func() time.Time
}

func NewGenerator(positions positionStore, tokens tokenStore, transactions transactionStore) *Generator {
	return &Generator{
		positions:    positions,
		tokens:       tokens,
		transactions: transactions,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// positionLine is one position's computed P&L breakdown.
type positionLine struct {
	position model.Position
	token    *model.TokenPerformance

	heldAmount   float64
	entryPrice   float64
	currentPrice float64
	currentValue float64
	costBasis    float64
	realizedPnL  float64
}

func (l positionLine) unrealizedPnL() float64 {
	return l.currentValue - l.costBasis
}

func (l positionLine) performancePercent() float64 {
	if l.entryPrice <= 0 {
		return 0
	}
	return (l.currentPrice - l.entryPrice) / l.entryPrice * 100
}

// FormattedReport renders open positions, optionally filtered by recommender,
// into a human-readable summary. Store failures and missing token metadata
// degrade to the empty report and zero values; the report never fails.
func (g *Generator) FormattedReport(ctx context.Context, recommenderID string) string {
	report, err := g.render(ctx, recommenderID)
	if err != nil {
		logger.WithFields(logger.Fields{
			"recommender_id": recommenderID,
		}).WithError(err).Error("Failed to generate portfolio report")
		return emptyReport
	}
	return report
}

func (g *Generator) render(ctx context.Context, recommenderID string) (string, error) {
	positions, err := g.positions.FindOpen(ctx, recommenderID)
	if err != nil {
		return "", fmt.Errorf("list open positions: %w", err)
	}
	if len(positions) == 0 {
		return emptyReport, nil
	}

	tokens := g.lookupTokens(ctx, positions)
	ledger := g.lookupTransactions(ctx, positions)

	lines := make([]positionLine, 0, len(positions))
	var totalValue, totalRealized, totalUnrealized float64
	for _, position := range positions {
		line := buildPositionLine(position, tokens[tokenKey(position.Chain, position.Address)], ledger[position.ID])
		totalValue += line.currentValue
		totalRealized += line.realizedPnL
		totalUnrealized += line.unrealizedPnL()
		lines = append(lines, line)
	}

	var sb strings.Builder
	sb.WriteString("Portfolio Report\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n", g.now().Format(time.RFC3339)))
	sb.WriteString("\n")

	sb.WriteString("Summary\n")
	sb.WriteString(fmt.Sprintf("  Open positions:  %d\n", len(positions)))
	sb.WriteString(fmt.Sprintf("  Current value:   %s\n", formatUSD(totalValue)))
	sb.WriteString(fmt.Sprintf("  Realized P&L:    %s\n", formatUSD(totalRealized)))
	sb.WriteString(fmt.Sprintf("  Unrealized P&L:  %s\n", formatUSD(totalUnrealized)))
	sb.WriteString(fmt.Sprintf("  Total P&L:       %s\n", formatUSD(totalRealized+totalUnrealized)))
	sb.WriteString("\n")

	sb.WriteString("Positions\n")
	for _, line := range lines {
		sb.WriteString(fmt.Sprintf("  %s (%s)\n", displayName(line.token, line.position.Address), line.position.Chain))
		sb.WriteString(fmt.Sprintf("    Amount:      %.0f\n", line.heldAmount))
		sb.WriteString(fmt.Sprintf("    Entry price: %s\n", formatUSD(line.entryPrice)))
		sb.WriteString(fmt.Sprintf("    Current:     %s (%+.2f%%)\n", formatUSD(line.currentPrice), line.performancePercent()))
		sb.WriteString(fmt.Sprintf("    Value:       %s\n", formatUSD(line.currentValue)))
		sb.WriteString(fmt.Sprintf("    Unrealized:  %s\n", formatUSD(line.unrealizedPnL())))
	}
	sb.WriteString("\n")

	sb.WriteString("Tokens\n")
	for _, line := range dedupeByToken(lines) {
		if line.token == nil {
			sb.WriteString(fmt.Sprintf("  %s (%s): no market data\n", shortAddress(line.position.Address), line.position.Chain))
			continue
		}
		sb.WriteString(fmt.Sprintf("  %s (%s): price %s, liquidity %s, market cap %s\n",
			displayName(line.token, line.position.Address),
			line.position.Chain,
			formatUSD(line.token.Price),
			formatUSD(line.token.Liquidity),
			formatUSD(line.token.MarketCap),
		))
	}

	return sb.String(), nil
}

// lookupTokens resolves the latest snapshot for every distinct (chain,
// address) held. Lookup failures leave tokens missing rather than failing
// the report.
func (g *Generator) lookupTokens(ctx context.Context, positions []model.Position) map[string]*model.TokenPerformance {
	byChain := make(map[string][]string)
	seen := make(map[string]bool)
	for _, position := range positions {
		key := tokenKey(position.Chain, position.Address)
		if seen[key] {
			continue
		}
		seen[key] = true
		byChain[position.Chain] = append(byChain[position.Chain], position.Address)
	}

	tokens := make(map[string]*model.TokenPerformance)
	for chain, addresses := range byChain {
		found, err := g.tokens.FindByChainAddresses(ctx, chain, addresses)
		if err != nil {
			logger.WithFields(logger.Fields{
				"chain": chain,
			}).WithError(err).Warn("Report rendering without token snapshots")
			continue
		}
		for i := range found {
			tokens[tokenKey(found[i].Chain, found[i].Address)] = &found[i]
		}
	}
	return tokens
}

func (g *Generator) lookupTransactions(ctx context.Context, positions []model.Position) map[string][]model.Transaction {
	ids := make([]string, 0, len(positions))
	for _, position := range positions {
		ids = append(ids, position.ID)
	}

	transactions, err := g.transactions.FindByPositions(ctx, ids)
	if err != nil {
		logger.WithError(err).Warn("Report rendering without transaction ledger")
		return nil
	}

	ledger := make(map[string][]model.Transaction)
	for _, tx := range transactions {
		ledger[tx.PositionID] = append(ledger[tx.PositionID], tx)
	}
	return ledger
}

func buildPositionLine(position model.Position, token *model.TokenPerformance, transactions []model.Transaction) positionLine {
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

	entryPrice := position.InitialPrice
	if buyAmount > 0 {
		entryPrice = buyValue / buyAmount
	}

	heldAmount := position.Amount
	if buyAmount > 0 {
		heldAmount = buyAmount - sellAmount
	}

	currentPrice := position.CurrentPrice
	if token != nil && token.Price > 0 {
		currentPrice = token.Price
	}
	if currentPrice <= 0 {
		currentPrice = entryPrice
	}

	return positionLine{
		position:     position,
		token:        token,
		heldAmount:   heldAmount,
		entryPrice:   entryPrice,
		currentPrice: currentPrice,
		currentValue: heldAmount * currentPrice,
		costBasis:    heldAmount * entryPrice,
		realizedPnL:  sellValue - entryPrice*sellAmount,
	}
}

func dedupeByToken(lines []positionLine) []positionLine {
	seen := make(map[string]bool)
	deduped := make([]positionLine, 0, len(lines))
	for _, line := range lines {
		key := tokenKey(line.position.Chain, line.position.Address)
		if seen[key] {
			continue
		}
		seen[key] = true
		deduped = append(deduped, line)
	}
	return deduped
}

func tokenKey(chain, address string) string {
	return chain + ":" + address
}

func displayName(token *model.TokenPerformance, address string) string {
	if token != nil && token.Symbol != "" {
		return token.Symbol
	}
	return shortAddress(address)
}

func shortAddress(address string) string {
	if len(address) <= 12 {
		return address
	}
	return address[:6] + "..." + address[len(address)-4:]
}

func formatUSD(v float64) string {
	if v < 0 {
		return fmt.Sprintf("-$%.2f", -v)
	}
	return fmt.Sprintf("$%.2f", v)
}
