package http

import (
	"errors"
	"net/http"

	"trading-console/internal/infrastructure/settings"

	"github.com/gin-gonic/gin"
)

// getSettings returns the bridge credentials with the password masked
// @Summary      Bridge settings
// @Tags         settings
// @Produce      json
// @Success      200  {object}  control.BridgeSettings
// @Failure      500  {object}  map[string]string
// @Router       /settings [get]
func (h *Handler) getSettings(c *gin.Context) {
	current, err := h.settings.Load()
	if err != nil {
		writeError(c, http.StatusInternalServerError, err)
		return
	}
	if current == nil {
		c.JSON(http.StatusOK, gin.H{"login": nil, "server": nil})
		return
	}
	c.JSON(http.StatusOK, current.Masked())
}

// saveSettings stores bridge credentials
// @Summary      Save bridge settings
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        settings  body      settingsPayload  true  "Credentials"
// @Success      200       {object}  map[string]interface{}
// @Failure      400       {object}  map[string]string
// @Failure      500       {object}  map[string]string
// @Router       /settings [post]
func (h *Handler) saveSettings(c *gin.Context) {
	var payload settingsPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, http.StatusBadRequest, settings.ErrMissingCredentials)
		return
	}
	if err := h.settings.Save(payload.toDomain()); err != nil {
		if errors.Is(err, settings.ErrMissingCredentials) {
			writeError(c, http.StatusBadRequest, err)
			return
		}
		writeError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Configuration saved"})
}

// getTrades returns the journal
// @Summary      Trade journal
// @Description  Last 50 trades, newest first
// @Tags         trades
// @Produce      json
// @Success      200  {array}   domainmarketdata.Trade
// @Failure      500  {object}  map[string]string
// @Router       /trades [get]
func (h *Handler) getTrades(c *gin.Context) {
	trades, err := h.marketdata.GetLastTrades(c.Request.Context(), defaultTradesLimit)
	if err != nil {
		writeError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, trades)
}

// addTrade records a trade
// @Summary      Record trade
// @Tags         trades
// @Accept       json
// @Produce      json
// @Param        trade  body      tradePayload  true  "Trade"
// @Success      201    {object}  domainmarketdata.Trade
// @Failure      400    {object}  map[string]string
// @Failure      500    {object}  map[string]string
// @Router       /trades [post]
func (h *Handler) addTrade(c *gin.Context) {
	var payload tradePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	trade := payload.toDomain()
	if err := h.marketdata.AddTrade(c.Request.Context(), trade); err != nil {
		if isValidationError(err) {
			writeError(c, http.StatusBadRequest, err)
			return
		}
		writeError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusCreated, trade)
}
