package dto

import (
	"strconv"
	"strings"
	"time"

	"golang-stock-ranking/internal/entity"
	"golang-stock-ranking/pkg/utils"

	"github.com/shopspring/decimal"
)

// SearchCriteria is a sparse filter over stock analysis results. Every field
// is optional; a nil field imposes no constraint. Amounts are in storage
// units. Values are built once and not modified afterwards.
type SearchCriteria struct {
	ExchangeID   *string
	InstrumentID *string
	StockType    *entity.StockType
	TargetDate   *time.Time
	MinRanking   *int
	MaxRanking   *int
	MinScore     *decimal.Decimal
	MaxScore     *decimal.Decimal
	MinAmount    *decimal.Decimal
	MaxAmount    *decimal.Decimal
	// WindowDays is the lookback length for trend metrics. Nil or <= 0
	// disables them.
	WindowDays *int
}

// HasRankingRange reports whether both ranking bounds are present. A single
// bound is ignored.
func (c SearchCriteria) HasRankingRange() bool {
	return c.MinRanking != nil && c.MaxRanking != nil
}

// HasScoreRange reports whether both score bounds are present. A single
// bound is ignored.
func (c SearchCriteria) HasScoreRange() bool {
	return c.MinScore != nil && c.MaxScore != nil
}

// Window returns the lookback length, or 0 when trend metrics are disabled.
func (c SearchCriteria) Window() int {
	if c.WindowDays == nil || *c.WindowDays <= 0 {
		return 0
	}
	return *c.WindowDays
}

// SearchRequest carries the raw query parameters of the search endpoint.
// Amounts are in display units.
type SearchRequest struct {
	ExchangeID   string `query:"exchange_id"`
	InstrumentID string `query:"instrument_id"`
	StockType    string `query:"stock_type" validate:"omitempty,oneof=STOCK INDEX"`
	TargetDate   string `query:"target_date" validate:"omitempty,datetime=2006-01-02"`
	MinRanking   string `query:"min_ranking" validate:"omitempty,number"`
	MaxRanking   string `query:"max_ranking" validate:"omitempty,number"`
	MinScore     string `query:"min_score" validate:"omitempty,numeric"`
	MaxScore     string `query:"max_score" validate:"omitempty,numeric"`
	MinAmount    string `query:"min_amount" validate:"omitempty,numeric"`
	MaxAmount    string `query:"max_amount" validate:"omitempty,numeric"`
	Days         string `query:"days" validate:"omitempty,numeric"`
}

// ToCriteria converts the request into criteria, multiplying amounts by
// displayUnit to get storage units. Blank parameters stay unset.
func (r *SearchRequest) ToCriteria(displayUnit decimal.Decimal) (SearchCriteria, error) {
	var (
		c   SearchCriteria
		err error
	)

	if s := strings.TrimSpace(r.ExchangeID); s != "" {
		c.ExchangeID = utils.ToPointer(s)
	}
	if s := strings.TrimSpace(r.InstrumentID); s != "" {
		c.InstrumentID = utils.ToPointer(s)
	}
	if r.StockType != "" {
		c.StockType = utils.ToPointer(entity.StockType(r.StockType))
	}
	if r.TargetDate != "" {
		date, err := utils.ParseDate(r.TargetDate)
		if err != nil {
			return SearchCriteria{}, err
		}
		c.TargetDate = &date
	}
	if c.MinRanking, err = optionalInt(r.MinRanking); err != nil {
		return SearchCriteria{}, err
	}
	if c.MaxRanking, err = optionalInt(r.MaxRanking); err != nil {
		return SearchCriteria{}, err
	}
	if c.MinScore, err = optionalDecimal(r.MinScore); err != nil {
		return SearchCriteria{}, err
	}
	if c.MaxScore, err = optionalDecimal(r.MaxScore); err != nil {
		return SearchCriteria{}, err
	}
	if c.MinAmount, err = optionalDecimal(r.MinAmount); err != nil {
		return SearchCriteria{}, err
	}
	if c.MaxAmount, err = optionalDecimal(r.MaxAmount); err != nil {
		return SearchCriteria{}, err
	}
	if c.MinAmount != nil {
		c.MinAmount = utils.ToPointer(c.MinAmount.Mul(displayUnit))
	}
	if c.MaxAmount != nil {
		c.MaxAmount = utils.ToPointer(c.MaxAmount.Mul(displayUnit))
	}
	if c.WindowDays, err = optionalInt(r.Days); err != nil {
		return SearchCriteria{}, err
	}

	return c, nil
}

func optionalInt(s string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func optionalDecimal(s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
