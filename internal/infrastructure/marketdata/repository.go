package marketdata

import (
	"context"
	"fmt"

	domain "trading-console/internal/domain/entity/marketdata"
	interfaces "trading-console/internal/domain/interfaces"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ interfaces.CandleRepository = (*Repository)(nil)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(ctx context.Context, dsn string) (*Repository, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pgx config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	r := &Repository{pool: pool}
	if err := r.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return r, nil
}

func (r *Repository) Close() {
	if r == nil || r.pool == nil {
		return
	}
	r.pool.Close()
}

const createCandlesTable = `
	CREATE TABLE IF NOT EXISTS candles (
		time      BIGINT           NOT NULL,
		timeframe TEXT             NOT NULL,
		open      DOUBLE PRECISION NOT NULL,
		high      DOUBLE PRECISION NOT NULL,
		low       DOUBLE PRECISION NOT NULL,
		close     DOUBLE PRECISION NOT NULL,
		volume    DOUBLE PRECISION NOT NULL DEFAULT 0,
		PRIMARY KEY (time, timeframe)
	)`

func (r *Repository) ensureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, createCandlesTable); err != nil {
		return fmt.Errorf("create candles table: %w", err)
	}
	return nil
}

const upsertCandleQuery = `
	INSERT INTO candles (time, timeframe, open, high, low, close, volume)
	VALUES ($1,$2,$3,$4,$5,$6,$7)
	ON CONFLICT (time, timeframe) DO UPDATE
	SET open = EXCLUDED.open,
	    high = EXCLUDED.high,
	    low = EXCLUDED.low,
	    close = EXCLUDED.close,
	    volume = EXCLUDED.volume`

// UpsertCandles writes the batch in one transaction, in the order given.
func (r *Repository) UpsertCandles(ctx context.Context, timeframe domain.Timeframe, candles []domain.Candle) error {
	if len(candles) == 0 {
		return nil
	}
	return pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, c := range candles {
			batch.Queue(upsertCandleQuery,
				c.Time,
				string(timeframe),
				c.Open,
				c.High,
				c.Low,
				c.Close,
				c.Volume,
			)
		}
		return execBatch(ctx, tx, batch)
	})
}

func (r *Repository) GetCandlesAscending(ctx context.Context, timeframe domain.Timeframe) ([]domain.Candle, error) {
	const query = `
		SELECT time, timeframe, open, high, low, close, volume
		FROM candles
		WHERE timeframe = $1
		ORDER BY time ASC`
	rows, err := r.pool.Query(ctx, query, string(timeframe))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	candles := make([]domain.Candle, 0)
	for rows.Next() {
		candle, err := scanCandle(rows)
		if err != nil {
			return nil, err
		}
		candles = append(candles, candle)
	}
	return candles, rows.Err()
}

func scanCandle(row pgx.Row) (domain.Candle, error) {
	var (
		candle    domain.Candle
		timeframe string
	)
	err := row.Scan(
		&candle.Time,
		&timeframe,
		&candle.Open,
		&candle.High,
		&candle.Low,
		&candle.Close,
		&candle.Volume,
	)
	if err != nil {
		return domain.Candle{}, err
	}
	candle.Timeframe = domain.Timeframe(timeframe)
	return candle, nil
}

type batchSender interface {
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

func execBatch(ctx context.Context, sender batchSender, batch *pgx.Batch) error {
	if batch.Len() == 0 {
		return nil
	}
	results := sender.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return fmt.Errorf("upsert candle %d: %w", i, err)
		}
	}
	return results.Close()
}
