package analytics

import (
	"time"

	"golang-stock-ranking/internal/entity"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

func day(n int) time.Time {
	return time.Date(2024, time.March, n, 0, 0, 0, 0, time.UTC)
}

type recordOpt func(*entity.StockAnalysisResult)

func withClose(v string) recordOpt {
	return func(r *entity.StockAnalysisResult) {
		r.Close = decimal.NewNullDecimal(decimal.RequireFromString(v))
	}
}

func withRankingChange(v int) recordOpt {
	return func(r *entity.StockAnalysisResult) { r.RankingChange = &v }
}

func withScore(v string) recordOpt {
	return func(r *entity.StockAnalysisResult) { r.Score = decimal.RequireFromString(v) }
}

func withScoreChange(v string) recordOpt {
	return func(r *entity.StockAnalysisResult) {
		r.ScoreChange = decimal.NewNullDecimal(decimal.RequireFromString(v))
	}
}

func record(instrument string, date time.Time, opts ...recordOpt) entity.StockAnalysisResult {
	r := entity.StockAnalysisResult{
		ExchangeID:   "SSE",
		InstrumentID: instrument,
		StockType:    entity.StockTypeStock,
		TargetDate:   datatypes.Date(date),
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}
