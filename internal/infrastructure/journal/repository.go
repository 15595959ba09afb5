// Package journal stores the execution agent's trade journal through gorm.
package journal

import (
	"context"
	"errors"
	"fmt"

	domain "trading-console/internal/domain/entity/marketdata"
	interfaces "trading-console/internal/domain/interfaces"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var _ interfaces.TradeRepository = (*Repository)(nil)

type Repository struct {
	db *gorm.DB
}

// NewRepository opens a gorm connection and migrates the trades table.
func NewRepository(dsn string) (*Repository, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open gorm: %w", err)
	}
	return newRepository(db)
}

func newRepository(db *gorm.DB) (*Repository, error) {
	if err := db.AutoMigrate(&TradeModel{}); err != nil {
		return nil, fmt.Errorf("migrate trades: %w", err)
	}
	return &Repository{db: db}, nil
}

func (r *Repository) AddTrade(ctx context.Context, trade *domain.Trade) error {
	if trade == nil {
		return errors.New("nil trade")
	}
	model := fromDomain(trade)
	return r.db.WithContext(ctx).Create(&model).Error
}

func (r *Repository) GetLastTrades(ctx context.Context, limit int) ([]domain.Trade, error) {
	if limit <= 0 {
		return nil, errors.New("limit must be positive")
	}
	var models []TradeModel
	err := r.db.WithContext(ctx).
		Order("traded_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	trades := make([]domain.Trade, 0, len(models))
	for _, m := range models {
		trades = append(trades, m.toDomain())
	}
	return trades, nil
}

func (r *Repository) Close() {
	if r == nil || r.db == nil {
		return
	}
	sqlDB, err := r.db.DB()
	if err != nil {
		return
	}
	_ = sqlDB.Close()
}
