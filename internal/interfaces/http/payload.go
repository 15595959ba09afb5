package http

import (
	"sync"

	"trading-console/internal/application/vwap"
	control "trading-console/internal/domain/entity/control"
	domainmarketdata "trading-console/internal/domain/entity/marketdata"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var validatorsOnce sync.Once

// registerValidators adds the "timeframe" tag to gin's validator.
func registerValidators() {
	validatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("timeframe", func(fl validator.FieldLevel) bool {
			_, err := domainmarketdata.ParseTimeframe(fl.Field().String())
			return err == nil
		})
	})
}

type predictionPayload struct {
	Status    string  `json:"status"`
	Long      float64 `json:"long"`
	LongHold  float64 `json:"long_hold"`
	Short     float64 `json:"short"`
	ShortHold float64 `json:"short_hold"`
	Flat      float64 `json:"flat"`
	Neutral   float64 `json:"neutral"`
	Analysis  string  `json:"analysis"`
}

type tickPayload struct {
	Symbol     string             `json:"symbol" binding:"required"`
	Bid        float64            `json:"bid"`
	Ask        float64            `json:"ask"`
	Equity     float64            `json:"equity"`
	Balance    float64            `json:"balance"`
	Profit     float64            `json:"profit"`
	Prediction *predictionPayload `json:"prediction"`
}

func (p tickPayload) toDomain() domainmarketdata.Tick {
	tick := domainmarketdata.Tick{
		Symbol:  p.Symbol,
		Bid:     p.Bid,
		Ask:     p.Ask,
		Equity:  p.Equity,
		Balance: p.Balance,
		Profit:  p.Profit,
	}
	if p.Prediction != nil {
		pred := domainmarketdata.Prediction(*p.Prediction)
		tick.Prediction = &pred
	}
	return tick
}

type tickResponse struct {
	domainmarketdata.Tick
	VWAPLive *float64 `json:"vwap_live,omitempty"`
}

type vwapBaselineResponse struct {
	Loaded    bool                       `json:"loaded"`
	Timeframe domainmarketdata.Timeframe `json:"timeframe,omitempty"`
	Totals    *vwap.Totals               `json:"totals,omitempty"`
}

type restartView struct {
	Reason      string `json:"reason"`
	RequestedAt int64  `json:"requested_at"`
	Success     bool   `json:"success"`
	Error       string `json:"error,omitempty"`
	Output      string `json:"output,omitempty"`
}

func newRestartView(r control.RestartResult) *restartView {
	v := &restartView{
		Reason:      r.Request.Reason,
		RequestedAt: r.Request.RequestedAt,
		Success:     r.Err == nil,
		Output:      r.Output,
	}
	if r.Err != nil {
		v.Error = r.Err.Error()
	}
	return v
}

type bridgeStatusResponse struct {
	LastRestart *restartView `json:"last_restart"`
}

type historyPayload struct {
	Timeframe string                    `json:"timeframe" binding:"required,timeframe"`
	Candles   []domainmarketdata.Candle `json:"candles" binding:"required"`
}

type commandPayload struct {
	Command string `json:"command" binding:"required"`
}

type commandResponse struct {
	Command *string `json:"command"`
}

type armPayload struct {
	Armed *bool `json:"armed" binding:"required"`
}

// backtestPayload also accepts the camelCase date keys older dashboards send.
type backtestPayload struct {
	Symbol         string `json:"symbol" binding:"required"`
	StartDate      string `json:"start_date" binding:"required_without=StartDateCamel"`
	EndDate        string `json:"end_date" binding:"required_without=EndDateCamel"`
	StartDateCamel string `json:"startDate"`
	EndDateCamel   string `json:"endDate"`
	Timeframe      string `json:"timeframe" binding:"omitempty,timeframe"`
}

func (p backtestPayload) window() (start, end string) {
	start, end = p.StartDate, p.EndDate
	if start == "" {
		start = p.StartDateCamel
	}
	if end == "" {
		end = p.EndDateCamel
	}
	return start, end
}

type settingsPayload struct {
	Login    int64  `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
	Server   string `json:"server" binding:"required"`
}

func (p settingsPayload) toDomain() control.BridgeSettings {
	return control.BridgeSettings{Login: p.Login, Password: p.Password, Server: p.Server}
}

type tradePayload struct {
	Symbol  string  `json:"symbol" binding:"required"`
	Side    string  `json:"side" binding:"required"`
	Price   float64 `json:"price" binding:"gt=0"`
	Volume  float64 `json:"vol" binding:"gt=0"`
	Comment string  `json:"comment"`
}

func (p tradePayload) toDomain() *domainmarketdata.Trade {
	return &domainmarketdata.Trade{
		Symbol:  p.Symbol,
		Side:    domainmarketdata.TradeSide(p.Side),
		Price:   p.Price,
		Volume:  p.Volume,
		Comment: p.Comment,
	}
}
