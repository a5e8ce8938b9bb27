package dto

import (
	"errors"
	"time"

	"golang-stock-ranking/internal/entity"
	"golang-stock-ranking/pkg/utils"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

var (
	ErrNegativeClose  = errors.New("close must not be negative")
	ErrNegativeAmount = errors.New("amount must not be negative")
)

// StockAnalysisRequest is the body of the create and update endpoints.
type StockAnalysisRequest struct {
	ExchangeID     string           `json:"exchange_id" validate:"required"`
	InstrumentID   string           `json:"instrument_id" validate:"required"`
	InstrumentName string           `json:"instrument_name"`
	StockType      string           `json:"stock_type" validate:"required,oneof=STOCK INDEX"`
	Close          *decimal.Decimal `json:"close" swaggertype:"number"`
	Amount         *decimal.Decimal `json:"amount" swaggertype:"number"`
	Score          decimal.Decimal  `json:"score" swaggertype:"number"`
	Ranking        int              `json:"ranking" validate:"gte=1"`
	ScoreChange    *decimal.Decimal `json:"score_change" swaggertype:"number"`
	RankingChange  *int             `json:"ranking_change"`
	TargetDate     string           `json:"target_date" validate:"required,datetime=2006-01-02"`
}

// StockAnalysisResultResponse is the API view of a stored record.
type StockAnalysisResultResponse struct {
	ID             uint                `json:"id"`
	ExchangeID     string              `json:"exchange_id"`
	InstrumentID   string              `json:"instrument_id"`
	InstrumentName string              `json:"instrument_name"`
	StockType      entity.StockType    `json:"stock_type"`
	Close          decimal.NullDecimal `json:"close" swaggertype:"number"`
	Amount         decimal.NullDecimal `json:"amount" swaggertype:"number"`
	Score          decimal.Decimal     `json:"score" swaggertype:"number"`
	Ranking        int                 `json:"ranking"`
	ScoreChange    decimal.NullDecimal `json:"score_change" swaggertype:"number"`
	RankingChange  *int                `json:"ranking_change"`
	TargetDate     string              `json:"target_date"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// StockSearchResult is a record enriched with trend metrics over a lookback
// window. The metrics are null when no window was requested or their inputs
// were missing.
type StockSearchResult struct {
	StockAnalysisResultResponse
	ConsecutiveRisingDays *int                `json:"consecutive_rising_days"`
	CumulativeIncrease    decimal.NullDecimal `json:"cumulative_increase" swaggertype:"number"`
	PeriodRankingChange   *int                `json:"period_ranking_change"`
}

// StockDetailResponse bundles an instrument's latest record, its full
// history (newest first) and summary indicators.
type StockDetailResponse struct {
	Latest       StockAnalysisResultResponse   `json:"latest"`
	History      []StockAnalysisResultResponse `json:"history"`
	AverageScore decimal.Decimal               `json:"average_score" swaggertype:"number"`
	Trend        string                        `json:"trend"`
}

// ToEntity converts the request into a record. The target date must already
// have passed validation. Close and amount must not be negative.
func (r *StockAnalysisRequest) ToEntity() (*entity.StockAnalysisResult, error) {
	date, err := utils.ParseDate(r.TargetDate)
	if err != nil {
		return nil, err
	}
	if r.Close != nil && r.Close.IsNegative() {
		return nil, ErrNegativeClose
	}
	if r.Amount != nil && r.Amount.IsNegative() {
		return nil, ErrNegativeAmount
	}
	return &entity.StockAnalysisResult{
		ExchangeID:     r.ExchangeID,
		InstrumentID:   r.InstrumentID,
		InstrumentName: r.InstrumentName,
		StockType:      entity.StockType(r.StockType),
		Close:          nullDecimal(r.Close),
		Amount:         nullDecimal(r.Amount),
		Score:          r.Score,
		Ranking:        r.Ranking,
		ScoreChange:    nullDecimal(r.ScoreChange),
		RankingChange:  r.RankingChange,
		TargetDate:     datatypes.Date(date),
	}, nil
}

// NewStockAnalysisResultResponse maps a record to its API view.
func NewStockAnalysisResultResponse(r *entity.StockAnalysisResult) StockAnalysisResultResponse {
	var date string
	if !r.Date().IsZero() {
		date = r.Date().Format(utils.DateLayout)
	}
	return StockAnalysisResultResponse{
		ID:             r.ID,
		ExchangeID:     r.ExchangeID,
		InstrumentID:   r.InstrumentID,
		InstrumentName: r.InstrumentName,
		StockType:      r.StockType,
		Close:          r.Close,
		Amount:         r.Amount,
		Score:          r.Score,
		Ranking:        r.Ranking,
		ScoreChange:    r.ScoreChange,
		RankingChange:  r.RankingChange,
		TargetDate:     date,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

// NewStockAnalysisResultResponses maps a slice of records. It never returns
// nil so empty results encode as [].
func NewStockAnalysisResultResponses(records []entity.StockAnalysisResult) []StockAnalysisResultResponse {
	out := make([]StockAnalysisResultResponse, 0, len(records))
	for i := range records {
		out = append(out, NewStockAnalysisResultResponse(&records[i]))
	}
	return out
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}
