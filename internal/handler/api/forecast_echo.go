package api

import (
	"context"
	"errors"
	"io"
	"net/http"

	"RevenueCast/internal/domain/errs"
	models "RevenueCast/internal/domain/models"
	"RevenueCast/internal/services/projection"
	"RevenueCast/internal/usecase"
	xhttp "RevenueCast/pkg/http"
	xlogger "RevenueCast/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Forecaster is the use case behind the forecasting routes.
type Forecaster interface {
	Predict(ctx context.Context, large, small float64) (*usecase.ForecastResult, error)
	History(ctx context.Context, days int) ([]models.HistoryPoint, error)
}

// Ledger exposes the history workbook for download and health reporting.
type Ledger interface {
	WriteTo(w io.Writer) (int64, error)
	Len() int
}

// ForecastHandlerConfig carries presentation settings for the routes.
type ForecastHandlerConfig struct {
	ExportFilename string
	TargetDaily    float64
	Currency       string
	EngineKind     string
	SinkBackend    string
}

// ForecastEchoHandler serves the prediction, history, export and chart routes.
type ForecastEchoHandler struct {
	logger     *xlogger.Logger
	forecaster Forecaster
	ledger     Ledger
	cfg        ForecastHandlerConfig
	predictMW  []echo.MiddlewareFunc
}

func NewForecastEchoHandler(logger *xlogger.Logger, forecaster Forecaster, ledger Ledger, cfg ForecastHandlerConfig, predictMW ...echo.MiddlewareFunc) *ForecastEchoHandler {
	if cfg.ExportFilename == "" {
		cfg.ExportFilename = "Modeldata.xlsx"
	}
	return &ForecastEchoHandler{logger: logger, forecaster: forecaster, ledger: ledger, cfg: cfg, predictMW: predictMW}
}

func (h *ForecastEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/predict", h.Predict, h.predictMW...)
	e.GET("/revenue_history", h.RevenueHistory)
	e.GET("/export_data", h.ExportData)
	e.GET("/revenue_chart", h.RevenueChart)
	e.GET("/api/health", h.Health)
}

type predictResponse struct {
	Status string `json:"status"`
	*models.Report
}

type historyResponse struct {
	Status  string                `json:"status"`
	History []models.HistoryPoint `json:"history"`
}

func (h *ForecastEchoHandler) Predict(c echo.Context) error {
	req := &models.PredictRequest{}
	if err := xhttp.ReadAndValidateRequest(c, req); err != nil {
		h.logger.Warn("predict rejected", xlogger.Error(err))
		return xhttp.LegacyErrorResponse(c, err)
	}

	res, err := h.forecaster.Predict(c.Request().Context(), float64(req.LargeCount), float64(req.SmallCount))
	if err != nil {
		h.logger.Error("predict usecase error", xlogger.Error(err))
		return xhttp.LegacyErrorResponse(c, toAppError(err))
	}
	return c.JSON(http.StatusOK, predictResponse{Status: xhttp.StatusSuccess, Report: res.Report})
}

func (h *ForecastEchoHandler) RevenueHistory(c echo.Context) error {
	points, err := h.history(c)
	if err != nil {
		return xhttp.LegacyErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, historyResponse{Status: xhttp.StatusSuccess, History: points})
}

func (h *ForecastEchoHandler) RevenueChart(c echo.Context) error {
	points, err := h.history(c)
	if err != nil {
		return xhttp.LegacyErrorResponse(c, err)
	}
	line := projection.RevenueChart("Riwayat Pendapatan", h.cfg.Currency, points, h.cfg.TargetDaily)
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(http.StatusOK)
	return line.Render(c.Response())
}

func (h *ForecastEchoHandler) history(c echo.Context) ([]models.HistoryPoint, error) {
	req := &models.HistoryRequest{}
	if err := xhttp.ReadAndValidateRequest(c, req); err != nil {
		return nil, xhttp.BadRequestError("days harus berupa bilangan bulat positif").WithError(err)
	}
	points, err := h.forecaster.History(c.Request().Context(), req.Days)
	if err != nil {
		h.logger.Error("history usecase error", xlogger.Error(err))
		return nil, toAppError(err)
	}
	return points, nil
}

func (h *ForecastEchoHandler) ExportData(c echo.Context) error {
	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	resp.Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+h.cfg.ExportFilename+`"`)
	resp.WriteHeader(http.StatusOK)
	if _, err := h.ledger.WriteTo(resp); err != nil {
		h.logger.Error("export ledger failed", xlogger.Error(err))
		return err
	}
	return nil
}

func (h *ForecastEchoHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"history_rows": h.ledger.Len(),
		"engine":       h.cfg.EngineKind,
		"sink":         h.cfg.SinkBackend,
	})
}

// toAppError maps domain failures onto the legacy status codes: the
// prediction route has always answered 400 for anything it could not compute.
func toAppError(err error) error {
	if errors.Is(err, errs.ErrValidation) {
		return xhttp.BadRequestError(errs.Message(err)).WithError(err)
	}
	return xhttp.BadRequestError(err.Error()).WithError(err)
}
