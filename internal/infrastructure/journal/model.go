package journal

import (
	"time"

	domain "trading-console/internal/domain/entity/marketdata"

	"github.com/google/uuid"
)

// TradeModel is the gorm mapping of a journal entry.
type TradeModel struct {
	ID       uuid.UUID `gorm:"primaryKey;column:id;type:uuid"`
	Symbol   string    `gorm:"column:symbol;type:varchar(32);not null;index"`
	Side     string    `gorm:"column:side;type:varchar(8);not null"`
	Price    float64   `gorm:"column:price;type:double precision;not null"`
	Volume   float64   `gorm:"column:vol;type:double precision;not null"`
	Comment  string    `gorm:"column:comment;type:varchar"`
	TradedAt time.Time `gorm:"column:traded_at;type:timestamptz;not null;index"`
}

func (TradeModel) TableName() string {
	return "trades"
}

func fromDomain(t *domain.Trade) TradeModel {
	return TradeModel{
		ID:       t.ID,
		Symbol:   t.Symbol,
		Side:     string(t.Side),
		Price:    t.Price,
		Volume:   t.Volume,
		Comment:  t.Comment,
		TradedAt: t.TradedAt,
	}
}

func (m TradeModel) toDomain() domain.Trade {
	return domain.Trade{
		ID:       m.ID,
		Symbol:   m.Symbol,
		Side:     domain.TradeSide(m.Side),
		Price:    m.Price,
		Volume:   m.Volume,
		Comment:  m.Comment,
		TradedAt: m.TradedAt,
	}
}
