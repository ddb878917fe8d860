package kafka

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/segmentio/kafka-go"
)

// MessageHandler handles messages from a specific topic.
type MessageHandler interface {
	Topic() string
	Handle(context.Context, []byte) error
}

var (
	consumerMsgsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "demandcast_kafka_consumer_messages_total",
			Help: "Total messages consumed from Kafka",
		},
		[]string{"topic", "result"},
	)
)

// Consumer wraps a Kafka reader with a worker pool.
type Consumer struct {
	cfg      *ConsumerConfig
	reader   *kafka.Reader
	handler  MessageHandler
	msgChan  chan []byte
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewConsumer creates a consumer for a single handler's topic.
func NewConsumer(opts ...ConsumerOption) (*Consumer, error) {
	cfg := &ConsumerConfig{
		GroupID:    "demandcast",
		Workers:    4,
		BufferSize: 256,
		RetryMax:   3,
		BackoffMin: 100 * time.Millisecond,
		BackoffMax: 2 * time.Second,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("brokers are required")
	}

	return &Consumer{
		cfg:      cfg,
		msgChan:  make(chan []byte, cfg.BufferSize),
		stopChan: make(chan struct{}),
	}, nil
}

// RegisterHandler sets the message handler; its Topic() is subscribed.
func (c *Consumer) RegisterHandler(h MessageHandler) {
	c.handler = h
}

// Start begins consuming; blocks until Stop is called or the reader fails.
func (c *Consumer) Start() error {
	if c.handler == nil {
		return fmt.Errorf("no handler registered")
	}

	c.reader = kafka.NewReader(kafka.ReaderConfig{
		Brokers: c.cfg.Brokers,
		GroupID: c.cfg.GroupID,
		Topic:   c.handler.Topic(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-c.stopChan
		cancel()
	}()

	for i := 0; i < c.cfg.Workers; i++ {
		c.wg.Add(1)
		go c.worker(ctx)
	}

	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("read message: %w", err)
		}
		select {
		case c.msgChan <- m.Value:
		case <-ctx.Done():
			return nil
		}
	}
}

func (c *Consumer) worker(ctx context.Context) {
	defer c.wg.Done()
	topic := c.handler.Topic()
	for {
		select {
		case data := <-c.msgChan:
			if err := c.handleWithRetry(ctx, data); err != nil {
				consumerMsgsTotal.WithLabelValues(topic, "error").Inc()
				log.Printf("kafka consumer: drop message after retries: %v", err)
				continue
			}
			consumerMsgsTotal.WithLabelValues(topic, "ok").Inc()
		case <-ctx.Done():
			return
		}
	}
}

func (c *Consumer) handleWithRetry(ctx context.Context, data []byte) error {
	var err error
	for attempt := 0; attempt <= c.cfg.RetryMax; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(c.backoff(attempt)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err = c.handler.Handle(ctx, data); err == nil {
			return nil
		}
	}
	return err
}

// backoff returns jittered exponential backoff bounded by BackoffMax.
func (c *Consumer) backoff(attempt int) time.Duration {
	d := c.cfg.BackoffMin << uint(attempt-1)
	if d > c.cfg.BackoffMax {
		d = c.cfg.BackoffMax
	}
	jitter := time.Duration(rand.Int63n(int64(d)/2 + 1))
	return d/2 + jitter
}

// Stop stops the consumer and waits for in-flight handlers.
func (c *Consumer) Stop() error {
	c.stopOnce.Do(func() {
		close(c.stopChan)
	})
	c.wg.Wait()
	if c.reader != nil {
		return c.reader.Close()
	}
	return nil
}
