package analytics

import (
	"golang-stock-ranking/internal/entity"

	"github.com/shopspring/decimal"
)

var half = decimal.NewFromFloat(0.5)

// Trend holds the metrics derived from an instrument's window history.
// A nil or invalid field means the metric could not be computed.
type Trend struct {
	// ConsecutiveRisingDays counts the latest run of days whose ranking
	// improved (positive ranking change).
	ConsecutiveRisingDays *int
	// CumulativeIncrease is the close-price change from the oldest record
	// in the window to the current record, in percent with 2 decimals.
	CumulativeIncrease decimal.NullDecimal
	// PeriodRankingChange is the sum of ranking changes over the window.
	PeriodRankingChange *int
}

// ComputeTrend derives the trend metrics of current from its window history,
// which must be sorted by target date ascending. current is not modified.
// An empty history leaves every metric unset.
func ComputeTrend(current *entity.StockAnalysisResult, history []entity.StockAnalysisResult) Trend {
	if len(history) == 0 {
		return Trend{}
	}

	return Trend{
		ConsecutiveRisingDays: risingStreak(current, history),
		CumulativeIncrease:    cumulativeIncrease(current, &history[0]),
		PeriodRankingChange:   rankingChangeSum(history),
	}
}

func cumulativeIncrease(current, start *entity.StockAnalysisResult) decimal.NullDecimal {
	if !start.Close.Valid || start.Close.Decimal.IsZero() || !current.Close.Valid {
		return decimal.NullDecimal{}
	}
	increase := current.Close.Decimal.Sub(start.Close.Decimal).Div(start.Close.Decimal)
	return decimal.NewNullDecimal(roundTo2(increase.Shift(2)))
}

func rankingChangeSum(history []entity.StockAnalysisResult) *int {
	sum := 0
	for _, r := range history {
		if r.RankingChange != nil {
			sum += *r.RankingChange
		}
	}
	return &sum
}

// risingStreak walks the history from the newest day backwards, ignoring
// days after current, and counts days with a positive ranking change until
// the first day without one.
func risingStreak(current *entity.StockAnalysisResult, history []entity.StockAnalysisResult) *int {
	anchor := current.Date()
	streak := 0
	for i := len(history) - 1; i >= 0; i-- {
		r := history[i]
		if r.Date().After(anchor) {
			continue
		}
		if r.RankingChange == nil || *r.RankingChange <= 0 {
			break
		}
		streak++
	}
	return &streak
}

// roundHalfUp rounds to an integer with ties going towards positive
// infinity.
func roundHalfUp(d decimal.Decimal) decimal.Decimal {
	return d.Add(half).Floor()
}

// roundTo2 rounds half up to two decimal places.
func roundTo2(d decimal.Decimal) decimal.Decimal {
	return roundHalfUp(d.Shift(2)).Shift(-2)
}
