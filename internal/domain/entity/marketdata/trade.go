package marketdata

import (
	"time"

	"github.com/google/uuid"
)

// TradeSide represents BUY/SELL direction reported by the execution agent.
type TradeSide string

const (
	TradeSideBuy  TradeSide = "BUY"
	TradeSideSell TradeSide = "SELL"
)

// Trade is a journal entry for an order the agent executed.
type Trade struct {
	ID       uuid.UUID `json:"id"`
	Symbol   string    `json:"symbol"`
	Side     TradeSide `json:"side"`
	Price    float64   `json:"price"`
	Volume   float64   `json:"vol"`
	Comment  string    `json:"comment,omitempty"`
	TradedAt time.Time `json:"timestamp"`
}
