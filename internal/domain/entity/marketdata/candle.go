package marketdata

// Candle is an OHLCV bar keyed by (Time, Timeframe). Time is the bar open in epoch seconds.
type Candle struct {
	Time      int64     `json:"time"`
	Timeframe Timeframe `json:"timeframe,omitempty"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// TypicalPrice returns (high+low+close)/3.
func (c Candle) TypicalPrice() float64 {
	return (c.High + c.Low + c.Close) / 3
}

// VWAPPoint is the cumulative VWAP at a candle time. Value is nil when no
// volume has been accumulated yet.
type VWAPPoint struct {
	Time  int64    `json:"time"`
	Value *float64 `json:"value,omitempty"`
}
