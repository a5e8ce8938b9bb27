package analytics

import (
	"sort"

	"golang-stock-ranking/internal/entity"

	"github.com/shopspring/decimal"
)

// Trend labels derived from the latest score change.
const (
	TrendRising  = "RISING"
	TrendFalling = "FALLING"
	TrendStable  = "STABLE"
	TrendUnknown = "UNKNOWN"
)

// Summary describes an instrument's full history.
type Summary struct {
	Latest       entity.StockAnalysisResult
	History      []entity.StockAnalysisResult
	AverageScore decimal.Decimal
	Trend        string
}

// Summarize sorts a copy of history newest first (undated records last) and
// computes the average score and the trend label of the latest record.
// It reports false for an empty history.
func Summarize(history []entity.StockAnalysisResult) (Summary, bool) {
	if len(history) == 0 {
		return Summary{}, false
	}

	sorted := make([]entity.StockAnalysisResult, len(history))
	copy(sorted, history)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Date(), sorted[j].Date()
		if a.IsZero() || b.IsZero() {
			return !a.IsZero() && b.IsZero()
		}
		return a.After(b)
	})

	sum := decimal.Zero
	for _, r := range sorted {
		sum = sum.Add(r.Score)
	}
	avg := sum.Div(decimal.NewFromInt(int64(len(sorted))))

	return Summary{
		Latest:       sorted[0],
		History:      sorted,
		AverageScore: roundTo2(avg),
		Trend:        TrendLabel(sorted[0].ScoreChange),
	}, true
}

// TrendLabel maps the sign of a score change to a trend label.
func TrendLabel(change decimal.NullDecimal) string {
	if !change.Valid {
		return TrendUnknown
	}
	switch change.Decimal.Sign() {
	case 1:
		return TrendRising
	case -1:
		return TrendFalling
	default:
		return TrendStable
	}
}
