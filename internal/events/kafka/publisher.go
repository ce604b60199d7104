// Package kafka publishes search events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/kailas-cloud/gamesearch/internal/domain/search/event"
	"github.com/kailas-cloud/gamesearch/internal/metrics"
)

// Config holds the producer settings.
type Config struct {
	Brokers  []string
	Topic    string
	ClientID string
	Version  string
}

// NewSaramaConfig builds a fire-and-forget producer config: local acks,
// snappy batches flushed every 500ms, errors reported, successes not.
func NewSaramaConfig(cfg Config) (*sarama.Config, error) {
	sc := sarama.NewConfig()
	if cfg.ClientID != "" {
		sc.ClientID = cfg.ClientID
	}
	if cfg.Version != "" {
		v, err := sarama.ParseKafkaVersion(cfg.Version)
		if err != nil {
			return nil, fmt.Errorf("parse kafka version %q: %w", cfg.Version, err)
		}
		sc.Version = v
	}

	sc.Producer.RequiredAcks = sarama.WaitForLocal
	sc.Producer.Compression = sarama.CompressionSnappy
	sc.Producer.Flush.Frequency = 500 * time.Millisecond
	sc.Producer.Return.Successes = false
	sc.Producer.Return.Errors = true
	return sc, nil
}

// DefaultQueueSize bounds the events waiting for the producer.
const DefaultQueueSize = 1024

// Publisher sends events through an async producer. Publish never blocks:
// when the queue is full the event is dropped and counted.
type Publisher struct {
	producer sarama.AsyncProducer
	topic    string
	logger   *zap.Logger

	mu        sync.RWMutex
	closed    bool
	queue     chan *sarama.ProducerMessage
	forwarded chan struct{}
	drained   chan struct{}
}

// New connects an async producer to the configured brokers.
func New(cfg Config, logger *zap.Logger) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka: no brokers configured")
	}
	if cfg.Topic == "" {
		return nil, errors.New("kafka: no topic configured")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	sarama.Logger = saramaLogger{l: logger.Named("sarama")}

	sc, err := NewSaramaConfig(cfg)
	if err != nil {
		return nil, err
	}
	producer, err := sarama.NewAsyncProducer(cfg.Brokers, sc)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer for %v: %w", cfg.Brokers, err)
	}

	logger.Info("Kafka event publisher started",
		zap.Strings("brokers", cfg.Brokers), zap.String("topic", cfg.Topic))
	return NewWithProducer(producer, cfg.Topic, logger), nil
}

// NewWithProducer wraps an existing producer.
func NewWithProducer(p sarama.AsyncProducer, topic string, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	pub := &Publisher{
		producer:  p,
		topic:     topic,
		logger:    logger,
		queue:     make(chan *sarama.ProducerMessage, DefaultQueueSize),
		forwarded: make(chan struct{}),
		drained:   make(chan struct{}),
	}
	go pub.forward()
	go pub.drainErrors()
	return pub
}

// Publish queues e keyed by its mode.
func (p *Publisher) Publish(_ context.Context, e event.Search) {
	payload, err := json.Marshal(e)
	if err != nil {
		metrics.EventsPublishedTotal.WithLabelValues("failed").Inc()
		p.logger.Warn("Failed to encode search event", zap.Error(err))
		return
	}

	msg := &sarama.ProducerMessage{
		Topic:     p.topic,
		Key:       sarama.StringEncoder(e.Mode),
		Value:     sarama.ByteEncoder(payload),
		Timestamp: e.At,
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		metrics.EventsPublishedTotal.WithLabelValues("dropped").Inc()
		return
	}

	select {
	case p.queue <- msg:
		metrics.EventsPublishedTotal.WithLabelValues("queued").Inc()
	default:
		metrics.EventsPublishedTotal.WithLabelValues("dropped").Inc()
		p.logger.Warn("Search event dropped, queue full", zap.String("topic", p.topic))
	}
}

// Close flushes buffered events and stops the producer.
func (p *Publisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	<-p.forwarded
	err := p.producer.Close()
	<-p.drained
	if err != nil {
		return fmt.Errorf("close kafka producer: %w", err)
	}
	return nil
}

func (p *Publisher) forward() {
	defer close(p.forwarded)
	for msg := range p.queue {
		p.producer.Input() <- msg
	}
}

func (p *Publisher) drainErrors() {
	defer close(p.drained)
	for perr := range p.producer.Errors() {
		metrics.EventsPublishedTotal.WithLabelValues("failed").Inc()
		p.logger.Warn("Failed to publish search event",
			zap.String("topic", p.topic), zap.Error(perr.Err))
	}
}
