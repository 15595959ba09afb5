package broker

import domain "trading-console/internal/domain/entity/marketdata"

// BaseMessage is the envelope published by the bridge. Tick messages carry
// Tick; candle messages carry Candles tagged with Timeframe.
type BaseMessage struct {
	Tick      *domain.Tick     `json:"tick,omitempty"`
	Timeframe domain.Timeframe `json:"timeframe,omitempty"`
	Candles   []domain.Candle  `json:"candles,omitempty"`
}
