package http

import (
	"errors"
	"net/http"
	"strconv"

	"golang-stock-ranking/internal/entity"
	"golang-stock-ranking/internal/ranking/dto"
	"golang-stock-ranking/internal/ranking/service"
	"golang-stock-ranking/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// StockAnalysisHandler handles HTTP requests for stock analysis results.
type StockAnalysisHandler struct {
	stockAnalysisService service.StockAnalysisService
	amountDisplayUnit    decimal.Decimal
	logger               *logger.Logger
}

// NewStockAnalysisHandler creates a new StockAnalysisHandler. Amounts in
// search requests are multiplied by amountDisplayUnit before filtering.
func NewStockAnalysisHandler(stockAnalysisService service.StockAnalysisService, amountDisplayUnit int64, logger *logger.Logger) *StockAnalysisHandler {
	return &StockAnalysisHandler{
		stockAnalysisService: stockAnalysisService,
		amountDisplayUnit:    decimal.NewFromInt(amountDisplayUnit),
		logger:               logger,
	}
}

// RegisterRoutes registers the stock analysis routes to the Echo group.
// writeMiddleware wraps the routes that modify data.
func (h *StockAnalysisHandler) RegisterRoutes(g *echo.Group, writeMiddleware ...echo.MiddlewareFunc) {
	g.GET("", h.GetAll)
	g.GET("/latest", h.GetLatest)
	g.GET("/search", h.Search)
	g.GET("/detail/:exchange_id/:instrument_id", h.GetDetail)
	g.GET("/:id", h.GetByID)

	g.POST("", h.Create, writeMiddleware...)
	g.PUT("/:id", h.Update, writeMiddleware...)
	g.DELETE("/:id", h.Delete, writeMiddleware...)
	g.DELETE("", h.DeleteAll, writeMiddleware...)
}

// Create godoc
// @Summary Create or update a stock analysis result
// @Description Stores the result under (exchange_id, instrument_id, target_date). An existing result with the same key is replaced.
// @Tags stock-analysis
// @Accept  json
// @Produce  json
// @Param   result  body    dto.StockAnalysisRequest   true    "Result to store"
// @Success 200 {object} dto.StockAnalysisResultResponse "updated"
// @Success 201 {object} dto.StockAnalysisResultResponse "created"
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /stock-analysis [post]
func (h *StockAnalysisHandler) Create(c echo.Context) error {
	result, err := h.bindRecord(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	}

	saved, created, err := h.stockAnalysisService.SaveOrUpdate(c.Request().Context(), result)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to save stock analysis result"})
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	return c.JSON(status, dto.NewStockAnalysisResultResponse(saved))
}

// GetByID godoc
// @Summary Get a stock analysis result by ID
// @Tags stock-analysis
// @Produce  json
// @Param   id  path    int true    "Result ID"
// @Success 200 {object} dto.StockAnalysisResultResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /stock-analysis/{id} [get]
func (h *StockAnalysisHandler) GetByID(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid result ID"})
	}

	result, err := h.stockAnalysisService.GetByID(c.Request().Context(), id)
	if err != nil {
		h.logger.Error("Failed to get stock analysis result", logger.ErrorField(err), logger.Field("id", id))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to get stock analysis result"})
	}
	if result == nil {
		return c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "Stock analysis result not found"})
	}

	return c.JSON(http.StatusOK, dto.NewStockAnalysisResultResponse(result))
}

// GetAll godoc
// @Summary Get all stock analysis results
// @Tags stock-analysis
// @Produce  json
// @Success 200 {array} dto.StockAnalysisResultResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /stock-analysis [get]
func (h *StockAnalysisHandler) GetAll(c echo.Context) error {
	results, err := h.stockAnalysisService.GetAll(c.Request().Context())
	if err != nil {
		h.logger.Error("Failed to get all stock analysis results", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to get stock analysis results"})
	}
	return c.JSON(http.StatusOK, dto.NewStockAnalysisResultResponses(results))
}

// GetLatest godoc
// @Summary Get the results of the latest day
// @Description Returns every result on the most recent target date, optionally for one stock type.
// @Tags stock-analysis
// @Produce  json
// @Param   stock_type  query   string  false   "Stock type"    Enums(STOCK, INDEX)
// @Success 200 {array} dto.StockAnalysisResultResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /stock-analysis/latest [get]
func (h *StockAnalysisHandler) GetLatest(c echo.Context) error {
	var stockType *entity.StockType
	if raw := c.QueryParam("stock_type"); raw != "" {
		st := entity.StockType(raw)
		if !st.Valid() {
			return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid stock type"})
		}
		stockType = &st
	}

	results, err := h.stockAnalysisService.GetLatest(c.Request().Context(), stockType)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to get latest stock analysis results"})
	}
	return c.JSON(http.StatusOK, dto.NewStockAnalysisResultResponses(results))
}

// GetDetail godoc
// @Summary Get the detail of an instrument
// @Description Returns the latest result, the full history (newest first), the average score and the score trend.
// @Tags stock-analysis
// @Produce  json
// @Param   exchange_id     path    string  true    "Exchange ID"
// @Param   instrument_id   path    string  true    "Instrument ID"
// @Success 200 {object} dto.StockDetailResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /stock-analysis/detail/{exchange_id}/{instrument_id} [get]
func (h *StockAnalysisHandler) GetDetail(c echo.Context) error {
	detail, err := h.stockAnalysisService.GetDetail(c.Request().Context(), c.Param("exchange_id"), c.Param("instrument_id"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to get stock detail"})
	}
	if detail == nil {
		return c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "Stock not found"})
	}
	return c.JSON(http.StatusOK, detail)
}

// Search godoc
// @Summary Search stock analysis results
// @Description Filters results; every parameter is optional. Ranking and score ranges apply only when both bounds are given. Amounts are in units of 10,000. With days > 0 each result carries trend metrics over that many days back from target_date (or the latest date).
// @Tags stock-analysis
// @Produce  json
// @Param   exchange_id     query   string  false   "Exchange ID"
// @Param   instrument_id   query   string  false   "Instrument ID substring, case-insensitive"
// @Param   stock_type      query   string  false   "Stock type"    Enums(STOCK, INDEX)
// @Param   target_date     query   string  false   "Target date (YYYY-MM-DD)"
// @Param   min_ranking     query   int     false   "Minimum ranking"
// @Param   max_ranking     query   int     false   "Maximum ranking"
// @Param   min_score       query   number  false   "Minimum score"
// @Param   max_score       query   number  false   "Maximum score"
// @Param   min_amount      query   number  false   "Minimum amount (x10,000)"
// @Param   max_amount      query   number  false   "Maximum amount (x10,000)"
// @Param   days            query   int     false   "Lookback window in days"
// @Success 200 {array} dto.StockSearchResult
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /stock-analysis/search [get]
func (h *StockAnalysisHandler) Search(c echo.Context) error {
	var req dto.SearchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid query parameters"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	}

	criteria, err := req.ToCriteria(h.amountDisplayUnit)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	}

	results, err := h.stockAnalysisService.Search(c.Request().Context(), criteria)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to search stock analysis results"})
	}
	return c.JSON(http.StatusOK, results)
}

// Update godoc
// @Summary Replace a stock analysis result
// @Tags stock-analysis
// @Accept  json
// @Produce  json
// @Param   id      path    int                         true    "Result ID"
// @Param   result  body    dto.StockAnalysisRequest    true    "Replacement"
// @Success 200 {object} dto.StockAnalysisResultResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /stock-analysis/{id} [put]
func (h *StockAnalysisHandler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid result ID"})
	}

	result, err := h.bindRecord(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	}

	updated, err := h.stockAnalysisService.Update(c.Request().Context(), id, result)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to update stock analysis result"})
	}
	if updated == nil {
		return c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "Stock analysis result not found"})
	}
	return c.JSON(http.StatusOK, dto.NewStockAnalysisResultResponse(updated))
}

// Delete godoc
// @Summary Delete a stock analysis result
// @Tags stock-analysis
// @Param   id  path    int true    "Result ID"
// @Success 204 {object} nil
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /stock-analysis/{id} [delete]
func (h *StockAnalysisHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid result ID"})
	}

	deleted, err := h.stockAnalysisService.Delete(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to delete stock analysis result"})
	}
	if !deleted {
		return c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "Stock analysis result not found"})
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteAll godoc
// @Summary Delete all stock analysis results
// @Tags stock-analysis
// @Success 204 {object} nil
// @Failure 500 {object} dto.ErrorResponse
// @Router /stock-analysis [delete]
func (h *StockAnalysisHandler) DeleteAll(c echo.Context) error {
	if err := h.stockAnalysisService.DeleteAll(c.Request().Context()); err != nil {
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to delete stock analysis results"})
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *StockAnalysisHandler) bindRecord(c echo.Context) (*entity.StockAnalysisResult, error) {
	var req dto.StockAnalysisRequest
	if err := c.Bind(&req); err != nil {
		return nil, errors.New("Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return nil, err
	}
	return req.ToEntity()
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
