package service

import (
	"context"
	"fmt"
	"time"

	"golang-stock-ranking/internal/entity"
	"golang-stock-ranking/internal/ranking/analytics"
	"golang-stock-ranking/internal/ranking/dto"
	"golang-stock-ranking/internal/ranking/repository"
	"golang-stock-ranking/pkg/common"
	"golang-stock-ranking/pkg/logger"
	"golang-stock-ranking/pkg/metrics"

	"github.com/patrickmn/go-cache"
)

const CACHE_KEY_LATEST_DATE = "latest_date:%s"

// StockAnalysisService defines the use cases around stock analysis results.
// Lookups that find nothing return nil without an error.
type StockAnalysisService interface {
	Search(ctx context.Context, criteria dto.SearchCriteria) ([]dto.StockSearchResult, error)
	SaveOrUpdate(ctx context.Context, result *entity.StockAnalysisResult) (*entity.StockAnalysisResult, bool, error)
	Update(ctx context.Context, id uint, result *entity.StockAnalysisResult) (*entity.StockAnalysisResult, error)
	GetByID(ctx context.Context, id uint) (*entity.StockAnalysisResult, error)
	GetAll(ctx context.Context) ([]entity.StockAnalysisResult, error)
	GetLatest(ctx context.Context, stockType *entity.StockType) ([]entity.StockAnalysisResult, error)
	LatestDate(ctx context.Context, stockType *entity.StockType) (*time.Time, error)
	GetDetail(ctx context.Context, exchangeID, instrumentID string) (*dto.StockDetailResponse, error)
	Delete(ctx context.Context, id uint) (bool, error)
	DeleteAll(ctx context.Context) error
}

// NewStockAnalysisService creates a new stock analysis service. detailCache
// may be nil, in which case details are always computed from the store.
func NewStockAnalysisService(
	repo repository.StockAnalysisResultRepository,
	detailCache repository.StockDetailCacheRepository,
	metricsRegistry *metrics.Registry,
	logger *logger.Logger,
	latestDateTTL time.Duration,
) StockAnalysisService {
	return &stockAnalysisService{
		repo:            repo,
		detailCache:     detailCache,
		metrics:         metricsRegistry,
		logger:          logger,
		latestDateCache: cache.New(latestDateTTL, 2*latestDateTTL),
	}
}

type stockAnalysisService struct {
	repo            repository.StockAnalysisResultRepository
	detailCache     repository.StockDetailCacheRepository
	metrics         *metrics.Registry
	logger          *logger.Logger
	latestDateCache *cache.Cache
}

// Search returns the records matching the criteria. When the criteria carry a
// positive window length, each result is enriched with trend metrics computed
// over the window ending at the criteria's target date, or at the latest
// available date when none is given.
func (s *stockAnalysisService) Search(ctx context.Context, criteria dto.SearchCriteria) ([]dto.StockSearchResult, error) {
	records, err := s.repo.Search(ctx, criteria)
	if err != nil {
		s.logger.Error("Failed to search stock analysis results", logger.ErrorField(err))
		return nil, err
	}

	results := make([]dto.StockSearchResult, 0, len(records))
	for i := range records {
		results = append(results, dto.StockSearchResult{
			StockAnalysisResultResponse: dto.NewStockAnalysisResultResponse(&records[i]),
		})
	}

	window, ok, err := s.resolveWindow(ctx, criteria, records)
	if err != nil {
		return nil, err
	}
	if !ok {
		return results, nil
	}

	instrumentIDs := analytics.InstrumentIDs(records)
	history, err := s.repo.FindByInstrumentsBetween(ctx, instrumentIDs, window.Start, window.End)
	if err != nil {
		s.logger.Error("Failed to fetch window history", logger.ErrorField(err),
			logger.IntField("instruments", len(instrumentIDs)))
		return nil, err
	}
	s.metrics.WindowFetches.Inc()

	groups := analytics.GroupByInstrument(history)
	for i := range records {
		trend := analytics.ComputeTrend(&records[i], groups[records[i].InstrumentID])
		results[i].ConsecutiveRisingDays = trend.ConsecutiveRisingDays
		results[i].CumulativeIncrease = trend.CumulativeIncrease
		results[i].PeriodRankingChange = trend.PeriodRankingChange
	}

	s.logger.DebugContext(ctx, "Computed trend metrics",
		logger.IntField("results", len(results)),
		logger.IntField("window_days", criteria.Window()),
		logger.Field("window_start", window.Start),
		logger.Field("window_end", window.End))

	return results, nil
}

// resolveWindow determines the lookback window of a search. It reports false
// when no window is requested, nothing matched or no anchor date exists.
func (s *stockAnalysisService) resolveWindow(ctx context.Context, criteria dto.SearchCriteria, records []entity.StockAnalysisResult) (analytics.Window, bool, error) {
	days := criteria.Window()
	if days == 0 || len(records) == 0 {
		return analytics.Window{}, false, nil
	}

	var end time.Time
	if criteria.TargetDate != nil {
		end = *criteria.TargetDate
	} else {
		latest, err := s.LatestDate(ctx, criteria.StockType)
		if err != nil {
			return analytics.Window{}, false, err
		}
		if latest == nil {
			return analytics.Window{}, false, nil
		}
		end = *latest
	}

	window, ok := analytics.ResolveWindow(end, days)
	return window, ok, nil
}

// SaveOrUpdate stores the record under its natural key, replacing the fields
// of an existing record or inserting a new one. It reports whether a new
// record was created.
func (s *stockAnalysisService) SaveOrUpdate(ctx context.Context, result *entity.StockAnalysisResult) (*entity.StockAnalysisResult, bool, error) {
	created, err := s.repo.Upsert(ctx, result)
	if err != nil {
		s.logger.Error("Failed to upsert stock analysis result", logger.ErrorField(err),
			logger.StringField("exchange_id", result.ExchangeID),
			logger.StringField("instrument_id", result.InstrumentID))
		return nil, false, err
	}

	outcome := "updated"
	if created {
		outcome = "created"
	}
	s.metrics.UpsertTotal.WithLabelValues(outcome).Inc()
	s.invalidate(ctx, result)

	return result, created, nil
}

// Update replaces every field of the record with the given ID.
func (s *stockAnalysisService) Update(ctx context.Context, id uint, result *entity.StockAnalysisResult) (*entity.StockAnalysisResult, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to find stock analysis result for update", logger.ErrorField(err), logger.Field("id", id))
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	previous := *existing
	existing.ReplaceFields(result)
	if err := s.repo.Update(ctx, existing); err != nil {
		s.logger.Error("Failed to update stock analysis result", logger.ErrorField(err), logger.Field("id", id))
		return nil, err
	}

	s.invalidate(ctx, &previous, existing)
	s.logger.Info("Stock analysis result updated", logger.Field("id", id))
	return existing, nil
}

// GetByID retrieves a record by ID.
func (s *stockAnalysisService) GetByID(ctx context.Context, id uint) (*entity.StockAnalysisResult, error) {
	return s.repo.FindByID(ctx, id)
}

// GetAll retrieves every record.
func (s *stockAnalysisService) GetAll(ctx context.Context) ([]entity.StockAnalysisResult, error) {
	return s.repo.FindAll(ctx)
}

// GetLatest retrieves the records of the most recent day, optionally for one
// stock type. It returns an empty slice when there is no data.
func (s *stockAnalysisService) GetLatest(ctx context.Context, stockType *entity.StockType) ([]entity.StockAnalysisResult, error) {
	latest, err := s.LatestDate(ctx, stockType)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return []entity.StockAnalysisResult{}, nil
	}
	return s.repo.FindByTargetDate(ctx, stockType, *latest)
}

// LatestDate returns the most recent target date, optionally for one stock
// type, or nil when there is no data.
func (s *stockAnalysisService) LatestDate(ctx context.Context, stockType *entity.StockType) (*time.Time, error) {
	key := latestDateKey(stockType)
	if cached, ok := s.latestDateCache.Get(key); ok {
		s.metrics.CacheRequests.WithLabelValues(common.CacheNameLatestDate, "hit").Inc()
		date := cached.(time.Time)
		return &date, nil
	}
	s.metrics.CacheRequests.WithLabelValues(common.CacheNameLatestDate, "miss").Inc()

	latest, err := s.repo.FindLatestDate(ctx, stockType)
	if err != nil {
		s.logger.Error("Failed to find latest date", logger.ErrorField(err), logger.StringField("cache_key", key))
		return nil, err
	}
	if latest != nil {
		s.latestDateCache.SetDefault(key, *latest)
	}
	return latest, nil
}

// GetDetail summarises the full history of one instrument. It returns nil
// when the instrument has no records.
func (s *stockAnalysisService) GetDetail(ctx context.Context, exchangeID, instrumentID string) (*dto.StockDetailResponse, error) {
	if s.detailCache != nil {
		cached, err := s.detailCache.Get(ctx, exchangeID, instrumentID)
		if err != nil {
			s.logger.Warn("Failed to read stock detail cache", logger.ErrorField(err),
				logger.StringField("exchange_id", exchangeID), logger.StringField("instrument_id", instrumentID))
		}
		if cached != nil {
			s.metrics.CacheRequests.WithLabelValues(common.CacheNameStockDetail, "hit").Inc()
			return cached, nil
		}
		s.metrics.CacheRequests.WithLabelValues(common.CacheNameStockDetail, "miss").Inc()
	}

	history, err := s.repo.FindByExchangeAndInstrument(ctx, exchangeID, instrumentID)
	if err != nil {
		s.logger.Error("Failed to fetch instrument history", logger.ErrorField(err),
			logger.StringField("exchange_id", exchangeID), logger.StringField("instrument_id", instrumentID))
		return nil, err
	}

	summary, ok := analytics.Summarize(history)
	if !ok {
		return nil, nil
	}

	detail := &dto.StockDetailResponse{
		Latest:       dto.NewStockAnalysisResultResponse(&summary.Latest),
		History:      dto.NewStockAnalysisResultResponses(summary.History),
		AverageScore: summary.AverageScore,
		Trend:        summary.Trend,
	}

	if s.detailCache != nil {
		if err := s.detailCache.Set(ctx, exchangeID, instrumentID, detail); err != nil {
			s.logger.Warn("Failed to write stock detail cache", logger.ErrorField(err),
				logger.StringField("exchange_id", exchangeID), logger.StringField("instrument_id", instrumentID))
		}
	}

	return detail, nil
}

// Delete removes a record by ID and reports whether it existed.
func (s *stockAnalysisService) Delete(ctx context.Context, id uint) (bool, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return false, err
	}
	if existing == nil {
		return false, nil
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		s.logger.Error("Failed to delete stock analysis result", logger.ErrorField(err), logger.Field("id", id))
		return false, err
	}
	if deleted {
		s.invalidate(ctx, existing)
		s.logger.Info("Stock analysis result deleted", logger.Field("id", id))
	}
	return deleted, nil
}

// DeleteAll removes every record.
func (s *stockAnalysisService) DeleteAll(ctx context.Context) error {
	if err := s.repo.DeleteAll(ctx); err != nil {
		s.logger.Error("Failed to delete all stock analysis results", logger.ErrorField(err))
		return err
	}

	s.latestDateCache.Flush()
	if s.detailCache != nil {
		if err := s.detailCache.InvalidateAll(ctx); err != nil {
			s.logger.Warn("Failed to clear stock detail cache", logger.ErrorField(err))
		}
	}
	s.logger.Info("All stock analysis results deleted")
	return nil
}

// invalidate drops cached values derived from the given records.
func (s *stockAnalysisService) invalidate(ctx context.Context, records ...*entity.StockAnalysisResult) {
	s.latestDateCache.Flush()
	if s.detailCache == nil {
		return
	}
	for _, r := range records {
		if err := s.detailCache.Invalidate(ctx, r.ExchangeID, r.InstrumentID); err != nil {
			s.logger.Warn("Failed to invalidate stock detail cache", logger.ErrorField(err),
				logger.StringField("exchange_id", r.ExchangeID), logger.StringField("instrument_id", r.InstrumentID))
		}
	}
}

func latestDateKey(stockType *entity.StockType) string {
	if stockType == nil {
		return fmt.Sprintf(CACHE_KEY_LATEST_DATE, "ALL")
	}
	return fmt.Sprintf(CACHE_KEY_LATEST_DATE, *stockType)
}
