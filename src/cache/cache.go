package cache

import "fmt"

// Keys follow deterministic string templates so the cache can be shared with
// other services reading the same namespace.

func TokenPerformanceKey(chain, address string) string {
	return fmt.Sprintf("token:%s:%s:performance", chain, address)
}

func TokenOverviewKey(chain, address string) string {
	return fmt.Sprintf("token:%s:%s:overview", chain, address)
}

func TokenSecurityKey(chain, address string) string {
	return fmt.Sprintf("token:%s:%s:security", chain, address)
}

func TokenTradeDataKey(chain, address string) string {
	return fmt.Sprintf("token:%s:%s:trade-data", chain, address)
}

func TickerKey(chain, ticker string) string {
	return fmt.Sprintf("ticker:%s:%s", chain, ticker)
}

func PositionKey(id string) string {
	return fmt.Sprintf("position:%s", id)
}

func MetricsKey(recommenderID string) string {
	return fmt.Sprintf("entity:%s:metrics", recommenderID)
}

func MetricsHistoryKey(recommenderID string) string {
	return fmt.Sprintf("entity:%s:history", recommenderID)
}
