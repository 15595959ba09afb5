package marketdata

// DefaultSymbol is reported by the tick snapshot before any sample arrives.
const DefaultSymbol = "XAUUSD"

// Prediction is the strategy confidence payload the bridge attaches to a tick.
type Prediction struct {
	Status    string  `json:"status"`
	Long      float64 `json:"long"`
	LongHold  float64 `json:"long_hold"`
	Short     float64 `json:"short"`
	ShortHold float64 `json:"short_hold"`
	Flat      float64 `json:"flat"`
	Neutral   float64 `json:"neutral"`
	Analysis  string  `json:"analysis"`
}

// Tick is the latest quote and account telemetry sample. Timestamp is epoch
// milliseconds stamped on ingestion.
type Tick struct {
	Symbol     string      `json:"symbol"`
	Bid        float64     `json:"bid"`
	Ask        float64     `json:"ask"`
	Equity     float64     `json:"equity"`
	Balance    float64     `json:"balance,omitempty"`
	Profit     float64     `json:"profit"`
	Prediction *Prediction `json:"prediction,omitempty"`
	Timestamp  int64       `json:"timestamp"`
}

// Mid is the midpoint of bid and ask, or whichever side is set.
func (t Tick) Mid() float64 {
	switch {
	case t.Bid > 0 && t.Ask > 0:
		return (t.Bid + t.Ask) / 2
	case t.Bid > 0:
		return t.Bid
	default:
		return t.Ask
	}
}
