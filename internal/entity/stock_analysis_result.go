package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// StockType classifies an instrument.
type StockType string

const (
	// StockTypeStock covers stocks and ETFs.
	StockTypeStock StockType = "STOCK"
	// StockTypeIndex covers broad market indices.
	StockTypeIndex StockType = "INDEX"
)

// Valid reports whether t is a known stock type.
func (t StockType) Valid() bool {
	return t == StockTypeStock || t == StockTypeIndex
}

// StockAnalysisResult is one instrument's score and rank on one day.
// (ExchangeID, InstrumentID, TargetDate) is the natural key.
type StockAnalysisResult struct {
	ID             uint                `gorm:"primaryKey" json:"id"`
	ExchangeID     string              `gorm:"not null;uniqueIndex:uq_stock_analysis_results_natural_key,priority:1" json:"exchange_id"`
	InstrumentID   string              `gorm:"not null;uniqueIndex:uq_stock_analysis_results_natural_key,priority:2" json:"instrument_id"`
	InstrumentName string              `json:"instrument_name"`
	StockType      StockType           `gorm:"type:varchar(16);index" json:"stock_type"`
	Close          decimal.NullDecimal `gorm:"type:numeric(24,8)" json:"close" swaggertype:"number"`
	Amount         decimal.NullDecimal `gorm:"type:numeric(24,4)" json:"amount" swaggertype:"number"`
	Score          decimal.Decimal     `gorm:"type:numeric(10,4)" json:"score" swaggertype:"number"`
	Ranking        int                 `json:"ranking"`
	ScoreChange    decimal.NullDecimal `gorm:"type:numeric(10,4)" json:"score_change" swaggertype:"number"`
	RankingChange  *int                `json:"ranking_change"`
	TargetDate     datatypes.Date      `gorm:"not null;uniqueIndex:uq_stock_analysis_results_natural_key,priority:3" json:"target_date" swaggertype:"string" format:"date"`
	CreatedAt      time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

func (StockAnalysisResult) TableName() string {
	return "stock_analysis_results"
}

// Date returns the target date as a time.Time. A zero value means the record
// carries no date.
func (r StockAnalysisResult) Date() time.Time {
	return time.Time(r.TargetDate)
}

// ReplaceFields copies every mutable and key field of src onto r, keeping
// r's identity and timestamps.
func (r *StockAnalysisResult) ReplaceFields(src *StockAnalysisResult) {
	r.ExchangeID = src.ExchangeID
	r.InstrumentID = src.InstrumentID
	r.InstrumentName = src.InstrumentName
	r.StockType = src.StockType
	r.Close = src.Close
	r.Amount = src.Amount
	r.Score = src.Score
	r.Ranking = src.Ranking
	r.ScoreChange = src.ScoreChange
	r.RankingChange = src.RankingChange
	r.TargetDate = src.TargetDate
}
