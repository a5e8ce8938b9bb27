package common

const (
	RedisKeyStockDetail        = "stock_detail:%s:%s"
	RedisKeyStockDetailPattern = "stock_detail:*"

	CacheNameStockDetail = "stock_detail"
	CacheNameLatestDate  = "latest_date"

	MetricsNamespace = "stock_ranking"

	// DefaultAmountDisplayUnit is the number of storage units per caller-side amount unit.
	DefaultAmountDisplayUnit = 10000
)
