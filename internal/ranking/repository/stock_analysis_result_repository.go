package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang-stock-ranking/internal/entity"
	"golang-stock-ranking/internal/ranking/dto"

	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// naturalKeyColumns identify one logical observation. They are backed by the
// unique index uq_stock_analysis_results_natural_key.
var naturalKeyColumns = []clause.Column{
	{Name: "exchange_id"},
	{Name: "instrument_id"},
	{Name: "target_date"},
}

// upsertReturning reports through the inserted column whether the row came
// from the insert or from the conflict update.
var upsertReturning = clause.Returning{Columns: []clause.Column{
	{Name: "*", Raw: true},
	{Name: "(xmax = 0) AS inserted", Raw: true},
}}

// upsertRow receives the row returned by the conflict-resolving insert.
type upsertRow struct {
	entity.StockAnalysisResult
	Inserted bool `gorm:"->;-:migration"`
}

// replaceableColumns are rewritten when an upsert hits an existing row.
var replaceableColumns = []string{
	"instrument_name",
	"stock_type",
	"close",
	"amount",
	"score",
	"ranking",
	"score_change",
	"ranking_change",
	"updated_at",
}

// StockAnalysisResultRepository defines the data operations on stock
// analysis results. Lookups return nil without an error when nothing matches.
type StockAnalysisResultRepository interface {
	Update(ctx context.Context, result *entity.StockAnalysisResult) error
	Upsert(ctx context.Context, result *entity.StockAnalysisResult) (created bool, err error)
	Delete(ctx context.Context, id uint) (bool, error)
	DeleteAll(ctx context.Context) error
	FindByID(ctx context.Context, id uint) (*entity.StockAnalysisResult, error)
	FindAll(ctx context.Context) ([]entity.StockAnalysisResult, error)
	FindByExchangeAndInstrument(ctx context.Context, exchangeID, instrumentID string) ([]entity.StockAnalysisResult, error)
	FindByTargetDate(ctx context.Context, stockType *entity.StockType, targetDate time.Time) ([]entity.StockAnalysisResult, error)
	FindLatestDate(ctx context.Context, stockType *entity.StockType) (*time.Time, error)
	FindByInstrumentsBetween(ctx context.Context, instrumentIDs []string, start, end time.Time) ([]entity.StockAnalysisResult, error)
	Search(ctx context.Context, criteria dto.SearchCriteria) ([]entity.StockAnalysisResult, error)
}

// NewStockAnalysisResultRepository creates a new GORM-based repository.
func NewStockAnalysisResultRepository(db *gorm.DB) StockAnalysisResultRepository {
	return &stockAnalysisResultRepository{db: db}
}

type stockAnalysisResultRepository struct {
	db *gorm.DB
}

// Update writes every field of an existing record, identified by its ID.
func (r *stockAnalysisResultRepository) Update(ctx context.Context, result *entity.StockAnalysisResult) error {
	return r.db.WithContext(ctx).Save(result).Error
}

// Upsert replaces the record sharing result's natural key or inserts result
// as a new one. On return result carries the stored identity. The insert path
// resolves a concurrent insert of the same key through the unique index, so
// interleaved upserts never leave duplicates; a row taken over that way is
// reported as not created.
func (r *stockAnalysisResultRepository) Upsert(ctx context.Context, result *entity.StockAnalysisResult) (bool, error) {
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := findByNaturalKey(tx, result.ExchangeID, result.InstrumentID, result.TargetDate)
		if err != nil {
			return err
		}

		if existing != nil {
			existing.ReplaceFields(result)
			if err := tx.Save(existing).Error; err != nil {
				return err
			}
			*result = *existing
			return nil
		}

		row := upsertRow{StockAnalysisResult: *result}
		err = tx.Clauses(clause.OnConflict{
			Columns:   naturalKeyColumns,
			DoUpdates: clause.AssignmentColumns(replaceableColumns),
		}, upsertReturning).Create(&row).Error
		if err != nil {
			return err
		}
		*result = row.StockAnalysisResult
		created = row.Inserted
		return nil
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

// Delete removes a record by ID and reports whether it existed.
func (r *stockAnalysisResultRepository) Delete(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&entity.StockAnalysisResult{}, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DeleteAll removes every record.
func (r *stockAnalysisResultRepository) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&entity.StockAnalysisResult{}).Error
}

// FindByID retrieves a record by its ID.
func (r *stockAnalysisResultRepository) FindByID(ctx context.Context, id uint) (*entity.StockAnalysisResult, error) {
	var result entity.StockAnalysisResult
	if err := r.db.WithContext(ctx).Take(&result, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func findByNaturalKey(db *gorm.DB, exchangeID, instrumentID string, targetDate datatypes.Date) (*entity.StockAnalysisResult, error) {
	var result entity.StockAnalysisResult
	err := db.Where("exchange_id = ? AND instrument_id = ? AND target_date = ?", exchangeID, instrumentID, targetDate).
		Take(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

// FindAll retrieves every record.
func (r *stockAnalysisResultRepository) FindAll(ctx context.Context) ([]entity.StockAnalysisResult, error) {
	var results []entity.StockAnalysisResult
	if err := r.db.WithContext(ctx).Order("target_date DESC, ranking ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// FindByExchangeAndInstrument retrieves the full history of one instrument.
func (r *stockAnalysisResultRepository) FindByExchangeAndInstrument(ctx context.Context, exchangeID, instrumentID string) ([]entity.StockAnalysisResult, error) {
	var results []entity.StockAnalysisResult
	err := r.db.WithContext(ctx).
		Where("exchange_id = ? AND instrument_id = ?", exchangeID, instrumentID).
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// FindByTargetDate retrieves the records of one day, optionally restricted
// to a stock type.
func (r *stockAnalysisResultRepository) FindByTargetDate(ctx context.Context, stockType *entity.StockType, targetDate time.Time) ([]entity.StockAnalysisResult, error) {
	var results []entity.StockAnalysisResult
	q := r.db.WithContext(ctx).Where("target_date = ?", datatypes.Date(targetDate))
	if stockType != nil {
		q = q.Where("stock_type = ?", *stockType)
	}
	if err := q.Order("ranking ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// FindLatestDate returns the most recent target date, optionally for one
// stock type, or nil when there is no data.
func (r *stockAnalysisResultRepository) FindLatestDate(ctx context.Context, stockType *entity.StockType) (*time.Time, error) {
	var dates []datatypes.Date
	q := r.db.WithContext(ctx).Model(&entity.StockAnalysisResult{})
	if stockType != nil {
		q = q.Where("stock_type = ?", *stockType)
	}
	if err := q.Order("target_date DESC").Limit(1).Pluck("target_date", &dates).Error; err != nil {
		return nil, err
	}
	if len(dates) == 0 {
		return nil, nil
	}
	latest := time.Time(dates[0])
	return &latest, nil
}

// FindByInstrumentsBetween retrieves the records of the given instruments
// whose target date lies in [start, end], ordered by instrument then date.
func (r *stockAnalysisResultRepository) FindByInstrumentsBetween(ctx context.Context, instrumentIDs []string, start, end time.Time) ([]entity.StockAnalysisResult, error) {
	if len(instrumentIDs) == 0 {
		return nil, nil
	}

	var results []entity.StockAnalysisResult
	err := r.db.WithContext(ctx).
		Where("instrument_id = ANY(?) AND target_date BETWEEN ? AND ?",
			pq.Array(instrumentIDs), datatypes.Date(start), datatypes.Date(end)).
		Order("instrument_id ASC, target_date ASC").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// Search retrieves the records matching every constraint present in the
// criteria. Empty criteria match everything.
func (r *stockAnalysisResultRepository) Search(ctx context.Context, criteria dto.SearchCriteria) ([]entity.StockAnalysisResult, error) {
	var results []entity.StockAnalysisResult

	q := r.db.WithContext(ctx)
	qFilter, qFilterParam := compileCriteria(criteria)
	if len(qFilter) > 0 {
		q = q.Where(strings.Join(qFilter, " AND "), qFilterParam...)
	}

	if err := q.Order("target_date DESC, ranking ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// compileCriteria turns the present criteria fields into SQL conditions and
// their parameters. Ranking and score ranges apply only when both bounds are
// given.
func compileCriteria(c dto.SearchCriteria) ([]string, []interface{}) {
	qFilter := []string{}
	qFilterParam := []interface{}{}

	if c.ExchangeID != nil {
		qFilter = append(qFilter, "exchange_id = ?")
		qFilterParam = append(qFilterParam, *c.ExchangeID)
	}

	if c.InstrumentID != nil {
		qFilter = append(qFilter, "instrument_id ILIKE ?")
		qFilterParam = append(qFilterParam, "%"+escapeLike(*c.InstrumentID)+"%")
	}

	if c.StockType != nil {
		qFilter = append(qFilter, "stock_type = ?")
		qFilterParam = append(qFilterParam, string(*c.StockType))
	}

	if c.TargetDate != nil {
		qFilter = append(qFilter, "target_date = ?")
		qFilterParam = append(qFilterParam, datatypes.Date(*c.TargetDate))
	}

	if c.HasRankingRange() {
		qFilter = append(qFilter, "ranking BETWEEN ? AND ?")
		qFilterParam = append(qFilterParam, *c.MinRanking, *c.MaxRanking)
	}

	if c.HasScoreRange() {
		qFilter = append(qFilter, "score BETWEEN ? AND ?")
		qFilterParam = append(qFilterParam, *c.MinScore, *c.MaxScore)
	}

	if c.MinAmount != nil {
		qFilter = append(qFilter, "amount >= ?")
		qFilterParam = append(qFilterParam, *c.MinAmount)
	}

	if c.MaxAmount != nil {
		qFilter = append(qFilter, "amount <= ?")
		qFilterParam = append(qFilterParam, *c.MaxAmount)
	}

	return qFilter, qFilterParam
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
