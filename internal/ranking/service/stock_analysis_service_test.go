package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"golang-stock-ranking/internal/entity"
	"golang-stock-ranking/internal/ranking/analytics"
	"golang-stock-ranking/internal/ranking/dto"
	"golang-stock-ranking/pkg/logger"
	"golang-stock-ranking/pkg/metrics"
	"golang-stock-ranking/pkg/utils"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

// memoryRepository is an in-memory StockAnalysisResultRepository. Search
// ignores the criteria and returns searchResults.
type memoryRepository struct {
	mu            sync.Mutex
	nextID        uint
	records       map[uint]entity.StockAnalysisResult
	searchResults []entity.StockAnalysisResult
	windowCalls   int
	latestCalls   int
	err           error
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{records: map[uint]entity.StockAnalysisResult{}}
}

func (m *memoryRepository) add(r entity.StockAnalysisResult) entity.StockAnalysisResult {
	m.nextID++
	r.ID = m.nextID
	m.records[r.ID] = r
	return r
}

func (m *memoryRepository) sorted() []entity.StockAnalysisResult {
	out := make([]entity.StockAnalysisResult, 0, len(m.records))
	for _, r := range m.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memoryRepository) Update(_ context.Context, r *entity.StockAnalysisResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[r.ID] = *r
	return nil
}

func (m *memoryRepository) Upsert(_ context.Context, r *entity.StockAnalysisResult) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	for id, existing := range m.records {
		if existing.ExchangeID == r.ExchangeID && existing.InstrumentID == r.InstrumentID && existing.Date().Equal(r.Date()) {
			existing.ReplaceFields(r)
			m.records[id] = existing
			*r = existing
			return false, nil
		}
	}
	*r = m.add(*r)
	return true, nil
}

func (m *memoryRepository) Delete(_ context.Context, id uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.records[id]
	delete(m.records, id)
	return ok, nil
}

func (m *memoryRepository) DeleteAll(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = map[uint]entity.StockAnalysisResult{}
	return nil
}

func (m *memoryRepository) FindByID(_ context.Context, id uint) (*entity.StockAnalysisResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (m *memoryRepository) FindAll(_ context.Context) ([]entity.StockAnalysisResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(), nil
}

func (m *memoryRepository) FindByExchangeAndInstrument(_ context.Context, exchangeID, instrumentID string) ([]entity.StockAnalysisResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.StockAnalysisResult
	for _, r := range m.sorted() {
		if r.ExchangeID == exchangeID && r.InstrumentID == instrumentID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memoryRepository) FindByTargetDate(_ context.Context, stockType *entity.StockType, targetDate time.Time) ([]entity.StockAnalysisResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.StockAnalysisResult
	for _, r := range m.sorted() {
		if r.Date().Equal(targetDate) && (stockType == nil || r.StockType == *stockType) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memoryRepository) FindLatestDate(_ context.Context, stockType *entity.StockType) (*time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latestCalls++
	var latest *time.Time
	for _, r := range m.records {
		if stockType != nil && r.StockType != *stockType {
			continue
		}
		d := r.Date()
		if latest == nil || d.After(*latest) {
			latest = &d
		}
	}
	return latest, nil
}

func (m *memoryRepository) FindByInstrumentsBetween(_ context.Context, ids []string, start, end time.Time) ([]entity.StockAnalysisResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.windowCalls++
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var out []entity.StockAnalysisResult
	for _, r := range m.sorted() {
		if want[r.InstrumentID] && !r.Date().Before(start) && !r.Date().After(end) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memoryRepository) Search(_ context.Context, _ dto.SearchCriteria) ([]entity.StockAnalysisResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.searchResults, nil
}

// memoryDetailCache is an in-memory StockDetailCacheRepository.
type memoryDetailCache struct {
	mu      sync.Mutex
	entries map[string]*dto.StockDetailResponse
	err     error
}

func newMemoryDetailCache() *memoryDetailCache {
	return &memoryDetailCache{entries: map[string]*dto.StockDetailResponse{}}
}

func (c *memoryDetailCache) Get(_ context.Context, exchangeID, instrumentID string) (*dto.StockDetailResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	return c.entries[exchangeID+"/"+instrumentID], nil
}

func (c *memoryDetailCache) Set(_ context.Context, exchangeID, instrumentID string, d *dto.StockDetailResponse) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.entries[exchangeID+"/"+instrumentID] = d
	return nil
}

func (c *memoryDetailCache) Invalidate(_ context.Context, exchangeID, instrumentID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, exchangeID+"/"+instrumentID)
	return c.err
}

func (c *memoryDetailCache) InvalidateAll(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[string]*dto.StockDetailResponse{}
	return c.err
}

func day(n int) time.Time {
	return time.Date(2024, time.March, n, 0, 0, 0, 0, time.UTC)
}

func rec(exchange, instrument string, date time.Time, price string, rankingChange *int) entity.StockAnalysisResult {
	r := entity.StockAnalysisResult{
		ExchangeID:    exchange,
		InstrumentID:  instrument,
		StockType:     entity.StockTypeStock,
		Score:         decimal.NewFromInt(80),
		Ranking:       10,
		RankingChange: rankingChange,
		TargetDate:    datatypes.Date(date),
	}
	if price != "" {
		r.Close = decimal.NewNullDecimal(decimal.RequireFromString(price))
	}
	return r
}

func newTestService(repo *memoryRepository, detailCache *memoryDetailCache) *stockAnalysisService {
	svc := NewStockAnalysisService(repo, nil, metrics.NewRegistry("test"), logger.NewNop(), time.Minute)
	s := svc.(*stockAnalysisService)
	if detailCache != nil {
		s.detailCache = detailCache
	}
	return s
}

func TestSaveOrUpdate_IdempotentOnNaturalKey(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(repo, nil)
	ctx := context.Background()

	var firstID uint
	for i, price := range []string{"10", "11", "12.5", "9"} {
		in := rec("SSE", "600519", day(5), price, utils.ToPointer(i))
		in.InstrumentName = "payload " + price

		saved, created, err := svc.SaveOrUpdate(ctx, &in)
		require.NoError(t, err)
		assert.Equal(t, i == 0, created)
		if i == 0 {
			firstID = saved.ID
		}
		assert.Equal(t, firstID, saved.ID, "identity is preserved")
	}

	all, err := svc.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "payload 9", all[0].InstrumentName)
	assert.Equal(t, "9", all[0].Close.Decimal.String())
	require.NotNil(t, all[0].RankingChange)
	assert.Equal(t, 3, *all[0].RankingChange)
}

func TestSaveOrUpdate_DifferentKeysInsert(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(repo, nil)
	ctx := context.Background()

	for _, r := range []entity.StockAnalysisResult{
		rec("SSE", "600519", day(5), "1", nil),
		rec("SSE", "600519", day(6), "1", nil),
		rec("SZSE", "600519", day(5), "1", nil),
	} {
		_, created, err := svc.SaveOrUpdate(ctx, &r)
		require.NoError(t, err)
		assert.True(t, created)
	}

	all, err := svc.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSaveOrUpdate_StoreErrorPropagates(t *testing.T) {
	repo := newMemoryRepository()
	repo.err = errors.New("connection refused")
	svc := newTestService(repo, nil)

	in := rec("SSE", "600519", day(5), "10", nil)
	_, _, err := svc.SaveOrUpdate(context.Background(), &in)
	assert.EqualError(t, err, "connection refused")
}

func TestSearch_WindowSkipped(t *testing.T) {
	tests := []struct {
		name string
		days *int
	}{
		{name: "absent", days: nil},
		{name: "zero", days: utils.ToPointer(0)},
		{name: "negative", days: utils.ToPointer(-3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemoryRepository()
			current := repo.add(rec("SSE", "A", day(5), "11", utils.ToPointer(1)))
			repo.add(rec("SSE", "A", day(4), "10", utils.ToPointer(1)))
			repo.searchResults = []entity.StockAnalysisResult{current}
			svc := newTestService(repo, nil)

			results, err := svc.Search(context.Background(), dto.SearchCriteria{WindowDays: tt.days})
			require.NoError(t, err)
			require.Len(t, results, 1)
			assert.Nil(t, results[0].ConsecutiveRisingDays)
			assert.Nil(t, results[0].PeriodRankingChange)
			assert.False(t, results[0].CumulativeIncrease.Valid)
			assert.Zero(t, repo.windowCalls, "no bulk history fetch")
		})
	}
}

func TestSearch_EmptyResultSkipsWindow(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(repo, nil)

	results, err := svc.Search(context.Background(), dto.SearchCriteria{WindowDays: utils.ToPointer(5)})
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.NotNil(t, results)
	assert.Zero(t, repo.windowCalls)
	assert.Zero(t, repo.latestCalls)
}

func TestSearch_NoAnchorDateSkipsWindow(t *testing.T) {
	repo := newMemoryRepository()
	// the matched record is not in the store, so no latest date exists
	repo.searchResults = []entity.StockAnalysisResult{rec("SSE", "A", day(5), "11", nil)}
	svc := newTestService(repo, nil)

	results, err := svc.Search(context.Background(), dto.SearchCriteria{WindowDays: utils.ToPointer(5)})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Nil(t, results[0].PeriodRankingChange)
	assert.Zero(t, repo.windowCalls)
}

func TestSearch_EnrichesWithTrendMetrics(t *testing.T) {
	repo := newMemoryRepository()
	repo.add(rec("SSE", "A", day(1), "8", utils.ToPointer(9))) // outside window
	repo.add(rec("SSE", "A", day(3), "10", utils.ToPointer(2)))
	repo.add(rec("SSE", "A", day(4), "10.5", utils.ToPointer(-1)))
	repo.add(rec("SSE", "A", day(5), "10.8", utils.ToPointer(1)))
	currentA := repo.add(rec("SSE", "A", day(6), "11", utils.ToPointer(4)))

	repo.add(rec("SSE", "B", day(5), "", nil))
	currentB := repo.add(rec("SSE", "B", day(6), "20", nil))

	repo.searchResults = []entity.StockAnalysisResult{currentA, currentB}
	svc := newTestService(repo, nil)

	target := day(6)
	results, err := svc.Search(context.Background(), dto.SearchCriteria{
		TargetDate: &target,
		WindowDays: utils.ToPointer(3),
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 1, repo.windowCalls)
	assert.Zero(t, repo.latestCalls, "target date anchors the window")

	a := results[0]
	assert.Equal(t, "A", a.InstrumentID)
	require.True(t, a.CumulativeIncrease.Valid)
	assert.Equal(t, "10", a.CumulativeIncrease.Decimal.String())
	require.NotNil(t, a.PeriodRankingChange)
	assert.Equal(t, 6, *a.PeriodRankingChange)
	require.NotNil(t, a.ConsecutiveRisingDays)
	assert.Equal(t, 2, *a.ConsecutiveRisingDays)

	b := results[1]
	assert.Equal(t, "B", b.InstrumentID)
	assert.False(t, b.CumulativeIncrease.Valid, "baseline close is missing")
	require.NotNil(t, b.PeriodRankingChange)
	assert.Equal(t, 0, *b.PeriodRankingChange)
	require.NotNil(t, b.ConsecutiveRisingDays)
	assert.Equal(t, 0, *b.ConsecutiveRisingDays)

	// the stored record is not modified by the enrichment
	stored, err := repo.FindByID(context.Background(), currentA.ID)
	require.NoError(t, err)
	assert.Equal(t, currentA, *stored)
}

func TestSearch_AnchorsOnLatestDateOfStockType(t *testing.T) {
	repo := newMemoryRepository()
	repo.add(rec("SSE", "A", day(2), "10", utils.ToPointer(1)))
	current := repo.add(rec("SSE", "A", day(4), "12", utils.ToPointer(1)))
	index := rec("SSE", "000300", day(9), "4000", utils.ToPointer(1))
	index.StockType = entity.StockTypeIndex
	repo.add(index)

	repo.searchResults = []entity.StockAnalysisResult{current}
	svc := newTestService(repo, nil)

	stockType := entity.StockTypeStock
	results, err := svc.Search(context.Background(), dto.SearchCriteria{
		StockType:  &stockType,
		WindowDays: utils.ToPointer(2),
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 1, repo.latestCalls)
	require.True(t, results[0].CumulativeIncrease.Valid)
	assert.Equal(t, "20", results[0].CumulativeIncrease.Decimal.String())
	assert.Equal(t, 2, *results[0].ConsecutiveRisingDays)
}

func TestSearch_StoreErrorPropagates(t *testing.T) {
	repo := newMemoryRepository()
	repo.err = errors.New("timeout")
	svc := newTestService(repo, nil)

	_, err := svc.Search(context.Background(), dto.SearchCriteria{})
	assert.EqualError(t, err, "timeout")
}

func TestGetDetail(t *testing.T) {
	repo := newMemoryRepository()
	for i, score := range []int64{80, 90, 100} {
		r := rec("SSE", "A", day(i+1), "10", nil)
		r.Score = decimal.NewFromInt(score)
		r.ScoreChange = decimal.NewNullDecimal(decimal.Zero)
		repo.add(r)
	}
	repo.add(rec("SSE", "B", day(1), "10", nil))
	svc := newTestService(repo, nil)

	detail, err := svc.GetDetail(context.Background(), "SSE", "A")
	require.NoError(t, err)
	require.NotNil(t, detail)
	assert.Equal(t, "90", detail.AverageScore.String())
	assert.Equal(t, analytics.TrendStable, detail.Trend)
	assert.Equal(t, "2024-03-03", detail.Latest.TargetDate)
	require.Len(t, detail.History, 3)
	assert.Equal(t, "2024-03-01", detail.History[2].TargetDate)
}

func TestGetDetail_NotFound(t *testing.T) {
	svc := newTestService(newMemoryRepository(), nil)

	detail, err := svc.GetDetail(context.Background(), "SSE", "missing")
	require.NoError(t, err)
	assert.Nil(t, detail)
}

func TestGetDetail_CachedAndInvalidatedOnWrite(t *testing.T) {
	repo := newMemoryRepository()
	repo.add(rec("SSE", "A", day(1), "10", nil))
	detailCache := newMemoryDetailCache()
	svc := newTestService(repo, detailCache)
	ctx := context.Background()

	first, err := svc.GetDetail(ctx, "SSE", "A")
	require.NoError(t, err)
	require.Len(t, first.History, 1)
	assert.Contains(t, detailCache.entries, "SSE/A")

	in := rec("SSE", "A", day(2), "11", nil)
	_, created, err := svc.SaveOrUpdate(ctx, &in)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotContains(t, detailCache.entries, "SSE/A")

	second, err := svc.GetDetail(ctx, "SSE", "A")
	require.NoError(t, err)
	assert.Len(t, second.History, 2)
}

func TestGetDetail_CacheFailureFallsBackToStore(t *testing.T) {
	repo := newMemoryRepository()
	repo.add(rec("SSE", "A", day(1), "10", nil))
	detailCache := newMemoryDetailCache()
	detailCache.err = errors.New("circuit breaker is open")
	svc := newTestService(repo, detailCache)

	detail, err := svc.GetDetail(context.Background(), "SSE", "A")
	require.NoError(t, err)
	require.NotNil(t, detail)
	assert.Len(t, detail.History, 1)
}

func TestGetLatest(t *testing.T) {
	repo := newMemoryRepository()
	repo.add(rec("SSE", "A", day(1), "10", nil))
	repo.add(rec("SSE", "A", day(2), "10", nil))
	repo.add(rec("SSE", "B", day(2), "10", nil))
	index := rec("SSE", "000300", day(3), "4000", nil)
	index.StockType = entity.StockTypeIndex
	repo.add(index)
	svc := newTestService(repo, nil)
	ctx := context.Background()

	stocks := entity.StockTypeStock
	latest, err := svc.GetLatest(ctx, &stocks)
	require.NoError(t, err)
	assert.Len(t, latest, 2)

	all, err := svc.GetLatest(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "000300", all[0].InstrumentID)
}

func TestGetLatest_Empty(t *testing.T) {
	svc := newTestService(newMemoryRepository(), nil)

	latest, err := svc.GetLatest(context.Background(), nil)
	require.NoError(t, err)
	assert.NotNil(t, latest)
	assert.Empty(t, latest)
}

func TestLatestDate_CachedUntilWrite(t *testing.T) {
	repo := newMemoryRepository()
	repo.add(rec("SSE", "A", day(1), "10", nil))
	svc := newTestService(repo, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		latest, err := svc.LatestDate(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, day(1), *latest)
	}
	assert.Equal(t, 1, repo.latestCalls)

	in := rec("SSE", "A", day(7), "10", nil)
	_, _, err := svc.SaveOrUpdate(ctx, &in)
	require.NoError(t, err)

	latest, err := svc.LatestDate(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, day(7), *latest)
	assert.Equal(t, 2, repo.latestCalls)
}

func TestUpdate(t *testing.T) {
	repo := newMemoryRepository()
	stored := repo.add(rec("SSE", "A", day(1), "10", nil))
	svc := newTestService(repo, nil)
	ctx := context.Background()

	replacement := rec("SZSE", "B", day(2), "12", utils.ToPointer(3))
	updated, err := svc.Update(ctx, stored.ID, &replacement)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, stored.ID, updated.ID)
	assert.Equal(t, "SZSE", updated.ExchangeID)
	assert.Equal(t, "B", updated.InstrumentID)

	missing, err := svc.Update(ctx, 999, &replacement)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestDelete(t *testing.T) {
	repo := newMemoryRepository()
	stored := repo.add(rec("SSE", "A", day(1), "10", nil))
	svc := newTestService(repo, nil)
	ctx := context.Background()

	deleted, err := svc.Delete(ctx, stored.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = svc.Delete(ctx, stored.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestDeleteAll(t *testing.T) {
	repo := newMemoryRepository()
	repo.add(rec("SSE", "A", day(1), "10", nil))
	repo.add(rec("SSE", "B", day(1), "10", nil))
	detailCache := newMemoryDetailCache()
	detailCache.entries["SSE/A"] = &dto.StockDetailResponse{}
	svc := newTestService(repo, detailCache)

	require.NoError(t, svc.DeleteAll(context.Background()))
	all, err := svc.GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Empty(t, detailCache.entries)
}
