package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"trading-console/internal/config"
	domain "trading-console/internal/domain/entity/marketdata"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const (
	reconnectDelay    = time.Second
	maxReconnectDelay = 30 * time.Second
)

// TickSink receives live ticks and transport health.
type TickSink interface {
	IngestTick(tick domain.Tick) (domain.Tick, error)
	ReportTransportFailure(err error) bool
}

// errDiscard marks payloads that can never be processed and must not be
// redelivered.
var errDiscard = errors.New("discard message")

// Consumer subscribes to the bridge's fanout exchanges: ticks go straight to
// the live state, candles are batched into history.
type Consumer struct {
	cfg     config.RabbitMQConfig
	ticks   TickSink
	batcher *BatchWriter
	logger  *logrus.Logger

	mu       sync.Mutex
	conn     *amqp.Connection
	channels []*amqp.Channel
	wg       sync.WaitGroup
}

// NewConsumer prepares a consumer for the given configuration.
func NewConsumer(cfg config.RabbitMQConfig, ticks TickSink, candles CandleSink, onFlush FlushFunc, logger *logrus.Logger) (*Consumer, error) {
	if cfg.URL == "" {
		return nil, errors.New("rabbitmq url is required")
	}
	batchCfg := BatchConfig{
		Size:    cfg.BatchSize,
		Timeout: cfg.BatchTimeout,
	}
	return &Consumer{
		cfg:     cfg,
		ticks:   ticks,
		batcher: NewBatchWriter(batchCfg, candles, onFlush, logger),
		logger:  logger,
	}, nil
}

// Run keeps the subscription alive until ctx is done. Every failed connect
// or dropped connection is reported to the tick sink.
func (c *Consumer) Run(ctx context.Context) error {
	c.batcher.Run(ctx)
	delay := reconnectDelay
	for {
		err := c.session(ctx)
		if ctx.Err() != nil {
			return nil
		}
		c.ticks.ReportTransportFailure(err)
		c.logger.WithError(err).WithField("retry_in", delay).Warn("rabbitmq session ended")

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
		if delay *= 2; delay > maxReconnectDelay {
			delay = maxReconnectDelay
		}
	}
}

// session consumes until the connection closes or ctx is done.
func (c *Consumer) session(ctx context.Context) error {
	conn, err := amqp.Dial(c.cfg.URL)
	if err != nil {
		return fmt.Errorf("connect to rabbitmq: %w", err)
	}
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	defer c.closeSession()

	closed := conn.NotifyClose(make(chan *amqp.Error, 1))

	if err := c.startStream(ctx, streamTick, c.cfg.TickExchange); err != nil {
		return err
	}
	if err := c.startStream(ctx, streamCandle, c.cfg.CandleExchange); err != nil {
		return err
	}
	c.logger.Infof("rabbitmq consumer started: exchanges=%s,%s", c.cfg.TickExchange, c.cfg.CandleExchange)

	select {
	case <-ctx.Done():
		return nil
	case amqpErr, ok := <-closed:
		if ok && amqpErr != nil {
			return fmt.Errorf("rabbitmq connection closed: %w", amqpErr)
		}
		return errors.New("rabbitmq connection closed")
	}
}

func (c *Consumer) closeSession() {
	c.mu.Lock()
	for _, ch := range c.channels {
		_ = ch.Close()
	}
	c.channels = nil
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	c.mu.Unlock()
	c.wg.Wait()
}

// Close flushes pending candles.
func (c *Consumer) Close(ctx context.Context) error {
	c.closeSession()
	return c.batcher.Stop(ctx)
}

func (c *Consumer) startStream(ctx context.Context, stream streamType, exchange string) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return errors.New("rabbitmq connection is closed")
	}

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel for %s: %w", stream, err)
	}
	if err := ch.ExchangeDeclare(exchange, "fanout", true, false, false, false, nil); err != nil {
		ch.Close()
		return fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	queue, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		ch.Close()
		return fmt.Errorf("declare queue for %s: %w", stream, err)
	}
	if err := ch.QueueBind(queue.Name, "", exchange, false, nil); err != nil {
		ch.Close()
		return fmt.Errorf("bind queue %s to %s: %w", queue.Name, exchange, err)
	}
	prefetch := c.cfg.Prefetch
	if prefetch <= 0 {
		prefetch = 1
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		ch.Close()
		return fmt.Errorf("set qos for %s: %w", stream, err)
	}
	deliveries, err := ch.Consume(queue.Name, "", false, true, false, false, nil)
	if err != nil {
		ch.Close()
		return fmt.Errorf("start consume for %s: %w", stream, err)
	}

	c.mu.Lock()
	c.channels = append(c.channels, ch)
	c.mu.Unlock()
	c.wg.Add(1)
	go c.consumeLoop(ctx, stream, deliveries)
	return nil
}

func (c *Consumer) consumeLoop(ctx context.Context, stream streamType, deliveries <-chan amqp.Delivery) {
	defer c.wg.Done()
	log := c.logger.WithField("stream", string(stream))
	for {
		select {
		case <-ctx.Done():
			return
		case delivery, ok := <-deliveries:
			if !ok {
				return
			}
			if err := c.handleDelivery(stream, delivery.Body); err != nil {
				log.WithError(err).Warn("failed to process message")
				_ = delivery.Nack(false, !errors.Is(err, errDiscard))
				continue
			}
			if err := delivery.Ack(false); err != nil {
				log.WithError(err).Warn("failed to ack delivery")
			}
		}
	}
}

func (c *Consumer) handleDelivery(stream streamType, body []byte) error {
	var payload BaseMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("%w: decode payload: %v", errDiscard, err)
	}
	switch stream {
	case streamTick:
		if payload.Tick == nil {
			return fmt.Errorf("%w: tick payload is nil", errDiscard)
		}
		if _, err := c.ticks.IngestTick(*payload.Tick); err != nil {
			return fmt.Errorf("%w: %v", errDiscard, err)
		}
		return nil
	case streamCandle:
		return c.addCandles(payload)
	default:
		return fmt.Errorf("unsupported stream: %s", stream)
	}
}

func (c *Consumer) addCandles(payload BaseMessage) error {
	if len(payload.Candles) == 0 {
		return fmt.Errorf("%w: candle payload is empty", errDiscard)
	}
	for _, candle := range payload.Candles {
		tf := payload.Timeframe
		if tf == "" {
			tf = candle.Timeframe
		}
		parsed, err := domain.ParseTimeframe(tf.String())
		if err != nil {
			return fmt.Errorf("%w: %v", errDiscard, err)
		}
		candle.Timeframe = parsed
		if err := c.batcher.AddCandle(candle); err != nil {
			return err
		}
	}
	return nil
}

type streamType string

func (s streamType) String() string {
	return string(s)
}

const (
	streamTick   streamType = "ticks"
	streamCandle streamType = "candles"
)
