package http

import (
	"errors"
	"net/http"
	"time"

	"trading-console/internal/application/relay"
	appmarketdata "trading-console/internal/application/service/marketdata"
	"trading-console/internal/application/telemetry"
	control "trading-console/internal/domain/entity/control"
	domainmarketdata "trading-console/internal/domain/entity/marketdata"

	"github.com/gin-gonic/gin"
)

// postTick ingests a live telemetry sample
// @Summary      Ingest tick
// @Description  Overwrites the live tick and marks the feed alive
// @Tags         telemetry
// @Accept       json
// @Produce      json
// @Param        tick  body      tickPayload  true  "Tick sample"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Router       /tick [post]
func (h *Handler) postTick(c *gin.Context) {
	var payload tickPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	stored, err := h.console.IngestTick(payload.toDomain())
	if err != nil {
		if errors.Is(err, telemetry.ErrInvalidTick) {
			writeError(c, http.StatusBadRequest, err)
			return
		}
		writeError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "timestamp": stored.Timestamp})
}

// getTick returns the latest tick
// @Summary      Latest tick
// @Description  Latest telemetry sample or a zeroed default, with the live VWAP preview
// @Tags         telemetry
// @Produce      json
// @Success      200  {object}  tickResponse
// @Router       /tick [get]
func (h *Handler) getTick(c *gin.Context) {
	c.JSON(http.StatusOK, h.tickSnapshot())
}

func (h *Handler) tickSnapshot() tickResponse {
	tick, _ := h.console.LatestTick()
	resp := tickResponse{Tick: tick}
	if live, ok := h.console.LiveVWAP(); ok {
		resp.VWAPLive = &live
	}
	return resp
}

// postHistory upserts candles
// @Summary      Upsert candle history
// @Description  Replaces candles by (time, timeframe)
// @Tags         history
// @Accept       json
// @Produce      json
// @Param        history  body      historyPayload  true  "Candles and timeframe"
// @Success      200      {object}  map[string]interface{}
// @Failure      400      {object}  map[string]string
// @Failure      500      {object}  map[string]string
// @Router       /history [post]
func (h *Handler) postHistory(c *gin.Context) {
	var payload historyPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	tf, err := domainmarketdata.ParseTimeframe(payload.Timeframe)
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	if err := h.marketdata.UpsertCandles(c.Request.Context(), tf, payload.Candles); err != nil {
		if isValidationError(err) {
			writeError(c, http.StatusBadRequest, err)
			return
		}
		writeError(c, http.StatusInternalServerError, err)
		return
	}
	h.console.HistoryChanged(tf)
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(payload.Candles)})
}

// getHistory returns candles ascending
// @Summary      Candle history
// @Description  Full ascending series for a timeframe; empty on no data
// @Tags         history
// @Produce      json
// @Param        tf   query     string  false  "Timeframe (default M15)"
// @Success      200  {array}   domainmarketdata.Candle
// @Failure      400  {object}  map[string]string
// @Router       /history [get]
func (h *Handler) getHistory(c *gin.Context) {
	tf, err := timeframeQuery(c)
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	candles, err := h.marketdata.GetHistory(c.Request.Context(), tf)
	if err != nil {
		h.logger.WithError(err).WithField("timeframe", tf).Warn("history read failed")
		c.Set(skipCacheKey, true)
	}
	if candles == nil {
		candles = []domainmarketdata.Candle{}
	}
	c.JSON(http.StatusOK, candles)
}

// getVWAP returns the VWAP baseline and selects the live timeframe
// @Summary      VWAP series
// @Description  Cumulative VWAP aligned with the candle history of a timeframe
// @Tags         history
// @Produce      json
// @Param        tf   query     string  false  "Timeframe (default M15)"
// @Success      200  {array}   domainmarketdata.VWAPPoint
// @Failure      400  {object}  map[string]string
// @Router       /vwap [get]
func (h *Handler) getVWAP(c *gin.Context) {
	tf, err := timeframeQuery(c)
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	points, err := h.console.VWAP(c.Request.Context(), tf)
	if err != nil {
		h.logger.WithError(err).WithField("timeframe", tf).Warn("vwap baseline failed")
	}
	if points == nil {
		points = []domainmarketdata.VWAPPoint{}
	}
	c.JSON(http.StatusOK, points)
}

// getVWAPBaseline reports the accumulators behind vwap_live
// @Summary      VWAP baseline totals
// @Tags         history
// @Produce      json
// @Success      200  {object}  vwapBaselineResponse
// @Router       /vwap/baseline [get]
func (h *Handler) getVWAPBaseline(c *gin.Context) {
	tf, totals, ok := h.console.Baseline()
	resp := vwapBaselineResponse{Loaded: ok}
	if ok {
		resp.Timeframe = tf
		resp.Totals = &totals
	}
	c.JSON(http.StatusOK, resp)
}

// postCommand queues an operator command
// @Summary      Queue command
// @Description  Appends a command for the execution agent
// @Tags         commands
// @Accept       json
// @Produce      json
// @Param        command  body      commandPayload  true  "Command"
// @Success      200      {object}  map[string]interface{}
// @Failure      400      {object}  map[string]string
// @Failure      429      {object}  map[string]interface{}
// @Router       /command [post]
func (h *Handler) postCommand(c *gin.Context) {
	var payload commandPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	depth, err := h.console.EnqueueCommand(payload.Command)
	switch {
	case errors.Is(err, relay.ErrEmptyCommand):
		writeError(c, http.StatusBadRequest, err)
	case errors.Is(err, relay.ErrQueueFull):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error(), "queue_size": depth})
	case err != nil:
		writeError(c, http.StatusInternalServerError, err)
	default:
		c.JSON(http.StatusOK, gin.H{"success": true, "queue_size": depth})
	}
}

// getCommand hands the oldest command to the agent
// @Summary      Poll command
// @Description  Removes and returns the oldest queued command, or null
// @Tags         commands
// @Produce      json
// @Success      200  {object}  commandResponse
// @Router       /command [get]
func (h *Handler) getCommand(c *gin.Context) {
	var resp commandResponse
	if command, ok := h.console.DequeueCommand(); ok {
		resp.Command = &command
	}
	c.JSON(http.StatusOK, resp)
}

// restartBridge restarts the feed process
// @Summary      Restart bridge
// @Tags         watchdog
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]interface{}
// @Router       /bridge/restart [post]
func (h *Handler) restartBridge(c *gin.Context) {
	result := h.bridge.Restart(c.Request.Context(), control.RestartRequest{
		Reason:      restartReasonManual,
		RequestedAt: time.Now().UnixMilli(),
	})
	if result.Err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": result.Err.Error(), "output": result.Output})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Bridge restarting...", "output": result.Output})
}

// getBridgeStatus returns the outcome of the last restart
// @Summary      Last bridge restart
// @Tags         watchdog
// @Produce      json
// @Success      200  {object}  bridgeStatusResponse
// @Router       /bridge/status [get]
func (h *Handler) getBridgeStatus(c *gin.Context) {
	var resp bridgeStatusResponse
	if result, ok := h.bridge.LastResult(); ok {
		resp.LastRestart = newRestartView(result)
	}
	c.JSON(http.StatusOK, resp)
}

// getWatchdog returns feed health
// @Summary      Watchdog state
// @Tags         watchdog
// @Produce      json
// @Success      200  {object}  control.WatchdogState
// @Router       /watchdog [get]
func (h *Handler) getWatchdog(c *gin.Context) {
	c.JSON(http.StatusOK, h.console.WatchdogState())
}

// armWatchdog toggles stall detection
// @Summary      Arm or disarm watchdog
// @Tags         watchdog
// @Accept       json
// @Produce      json
// @Param        arm  body      armPayload  true  "Armed flag"
// @Success      200  {object}  control.WatchdogState
// @Failure      400  {object}  map[string]string
// @Router       /watchdog/arm [post]
func (h *Handler) armWatchdog(c *gin.Context) {
	var payload armPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	c.JSON(http.StatusOK, h.console.ArmWatchdog(*payload.Armed))
}

func isValidationError(err error) bool {
	return errors.Is(err, appmarketdata.ErrInvalidCandle) ||
		errors.Is(err, appmarketdata.ErrDuplicateCandle) ||
		errors.Is(err, appmarketdata.ErrInvalidTimeframe) ||
		errors.Is(err, appmarketdata.ErrInvalidTrade) ||
		errors.Is(err, appmarketdata.ErrNilTrade)
}
