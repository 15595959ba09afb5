package http

import (
	"errors"
	"net/http"

	"trading-console/internal/application/console"
	domainmarketdata "trading-console/internal/domain/entity/marketdata"
	"trading-console/internal/infrastructure/engine"

	"github.com/gin-gonic/gin"
)

// runBacktest replays history through the backtest engine
// @Summary      Run backtest
// @Tags         engines
// @Accept       json
// @Produce      json
// @Param        backtest  body      backtestPayload  true  "Backtest window"
// @Success      200       {object}  map[string]interface{}
// @Failure      400       {object}  map[string]string
// @Failure      500       {object}  map[string]interface{}
// @Failure      504       {object}  map[string]interface{}
// @Router       /backtest [post]
func (h *Handler) runBacktest(c *gin.Context) {
	var payload backtestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	tf := domainmarketdata.DefaultTimeframe
	if payload.Timeframe != "" {
		parsed, err := domainmarketdata.ParseTimeframe(payload.Timeframe)
		if err != nil {
			writeError(c, http.StatusBadRequest, err)
			return
		}
		tf = parsed
	}
	start, end := payload.window()
	data, err := h.engines.Backtest(c.Request.Context(), engine.BacktestRequest{
		Symbol:    payload.Symbol,
		StartDate: start,
		EndDate:   end,
		Timeframe: tf,
	})
	if err != nil {
		writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

// runTraining retrains the model
// @Summary      Train model
// @Tags         engines
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]interface{}
// @Router       /train [post]
func (h *Handler) runTraining(c *gin.Context) {
	output, err := h.engines.Train(c.Request.Context())
	if err != nil {
		writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "output": output})
}

// getContext returns the market news context
// @Summary      Market context
// @Description  Cached news engine report, refreshed hourly
// @Tags         engines
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]string
// @Router       /context [get]
func (h *Handler) getContext(c *gin.Context) {
	snap, err := h.console.News(c.Request.Context())
	if err != nil {
		if errors.Is(err, console.ErrNewsUnavailable) {
			writeError(c, http.StatusServiceUnavailable, err)
			return
		}
		writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "news": snap.Data, "fetched_at": snap.FetchedAt})
}

func writeEngineError(c *gin.Context, err error) {
	if errors.Is(err, engine.ErrMissingArgument) {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	var engErr *engine.EngineError
	if !errors.As(err, &engErr) {
		writeError(c, http.StatusInternalServerError, err)
		return
	}
	body := gin.H{"success": false, "error": engErr.Error(), "kind": engErr.Kind}
	if engErr.Stderr != "" {
		body["stderr"] = engErr.Stderr
	}
	if engErr.Raw != "" {
		body["raw"] = engErr.Raw
	}
	status := http.StatusInternalServerError
	if engErr.Kind == engine.KindTimeout {
		status = http.StatusGatewayTimeout
	}
	c.JSON(status, body)
}
