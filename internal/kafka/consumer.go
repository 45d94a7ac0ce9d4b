package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/haven-shield/insight-engine/internal/config"
	"github.com/haven-shield/insight-engine/internal/database"
	"github.com/haven-shield/insight-engine/internal/metrics"
	"github.com/haven-shield/insight-engine/internal/signal"
)

// alertMessage is the wire shape of an alert on the ingestion topic.
// Category and severity arrive as free text and are normalized at this
// boundary; an unparseable timestamp degrades to the consume time.
type alertMessage struct {
	ID        string  `json:"id"`
	ChildName string  `json:"child_name"`
	Content   string  `json:"content"`
	Category  string  `json:"category"`
	Severity  string  `json:"severity"`
	Platform  string  `json:"platform"`
	HasImage  bool    `json:"has_image"`
	DNSMode   string  `json:"dns_mode"`
	Decision  float64 `json:"decision_score"`
	Timestamp string  `json:"timestamp"`
}

type eventMessage struct {
	ID         string   `json:"id"`
	ChildName  string   `json:"child_name"`
	Type       string   `json:"type"`
	Content    string   `json:"content"`
	Severity   string   `json:"severity"`
	Confidence float64  `json:"confidence"`
	Scenarios  []string `json:"scenarios"`
	Timestamp  string   `json:"timestamp"`
}

// Invalidator drops a child's cached analysis snapshot so the next read
// recomputes over the newly ingested data.
type Invalidator interface {
	Invalidate(ctx context.Context, childName string) error
}

// Consumer ingests alert and signal-event messages into the repository.
type Consumer struct {
	group     sarama.ConsumerGroup
	repo      *database.Repository
	snapshots Invalidator
	cfg       config.KafkaConfig
	logger    *zap.Logger
	collector *metrics.Collector
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewConsumer creates the ingestion consumer group. snapshots may be nil.
func NewConsumer(cfg config.KafkaConfig, repo *database.Repository, snapshots Invalidator, logger *zap.Logger, collector *metrics.Collector) (*Consumer, error) {
	kafkaConfig := sarama.NewConfig()
	kafkaConfig.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	kafkaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	kafkaConfig.Consumer.Group.Session.Timeout = 10 * time.Second
	kafkaConfig.Consumer.Group.Heartbeat.Interval = 3 * time.Second
	kafkaConfig.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.ConsumerGroup, kafkaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return &Consumer{
		group:     group,
		repo:      repo,
		snapshots: snapshots,
		cfg:       cfg,
		logger:    logger,
		collector: collector,
		done:      make(chan struct{}),
	}, nil
}

// Start begins consuming in the background until Stop or context
// cancellation.
func (c *Consumer) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)
	topics := []string{c.cfg.AlertsTopic, c.cfg.EventsTopic}

	go func() {
		defer close(c.done)
		for {
			if err := c.group.Consume(ctx, topics, c); err != nil {
				c.logger.Error("consumer group error", zap.Error(err))
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()

	go func() {
		for err := range c.group.Errors() {
			c.logger.Error("kafka consumer error", zap.Error(err))
		}
	}()

	c.logger.Info("kafka ingestion started", zap.Strings("topics", topics))
}

// Stop shuts the consumer down and waits for the consume loop to exit.
func (c *Consumer) Stop() error {
	if c.cancel != nil {
		c.cancel()
	}
	<-c.done
	return c.group.Close()
}

// Setup implements sarama.ConsumerGroupHandler.
func (c *Consumer) Setup(sarama.ConsumerGroupSession) error { return nil }

// Cleanup implements sarama.ConsumerGroupHandler.
func (c *Consumer) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim implements sarama.ConsumerGroupHandler.
func (c *Consumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		var err error
		switch message.Topic {
		case c.cfg.AlertsTopic:
			err = c.handleAlert(session.Context(), message.Value)
		case c.cfg.EventsTopic:
			err = c.handleEvent(session.Context(), message.Value)
		}
		if err != nil {
			// Bad messages are logged and skipped; the ingestion stream
			// must keep moving.
			c.logger.Warn("failed to ingest message",
				zap.String("topic", message.Topic),
				zap.Int64("offset", message.Offset),
				zap.Error(err))
		}
		session.MarkMessage(message, "")
	}
	return nil
}

func (c *Consumer) handleAlert(ctx context.Context, payload []byte) error {
	var msg alertMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return fmt.Errorf("failed to decode alert: %w", err)
	}
	if msg.ID == "" || msg.ChildName == "" {
		return fmt.Errorf("alert missing id or child_name")
	}

	alert := signal.Alert{
		ID:        msg.ID,
		ChildName: msg.ChildName,
		Content:   msg.Content,
		Category:  signal.NormalizeCategory(msg.Category),
		Severity:  signal.ParseSeverity(msg.Severity),
		Platform:  msg.Platform,
		HasImage:  msg.HasImage,
		Timestamp: parseTimestamp(msg.Timestamp),
	}
	if msg.DNSMode != "" {
		alert.DNS = &signal.DNSMeta{Mode: msg.DNSMode, DecisionScore: msg.Decision}
	}

	if err := c.repo.SaveAlert(ctx, alert); err != nil {
		return err
	}
	c.invalidate(ctx, alert.ChildName)
	c.count("alert")
	return nil
}

func (c *Consumer) handleEvent(ctx context.Context, payload []byte) error {
	var msg eventMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return fmt.Errorf("failed to decode event: %w", err)
	}
	if msg.ID == "" || msg.ChildName == "" {
		return fmt.Errorf("event missing id or child_name")
	}

	scenarios := make([]signal.Scenario, 0, len(msg.Scenarios))
	for _, s := range msg.Scenarios {
		scenarios = append(scenarios, signal.Scenario(s))
	}

	event := signal.Event{
		ID:         msg.ID,
		ChildName:  msg.ChildName,
		Type:       signal.EventType(msg.Type),
		Content:    msg.Content,
		Severity:   signal.ParseSeverity(msg.Severity),
		Confidence: msg.Confidence,
		Scenarios:  scenarios,
		Timestamp:  parseTimestamp(msg.Timestamp),
	}

	if err := c.repo.SaveEvent(ctx, event); err != nil {
		return err
	}
	c.invalidate(ctx, event.ChildName)
	c.count("event")
	return nil
}

func (c *Consumer) invalidate(ctx context.Context, childName string) {
	if c.snapshots == nil {
		return
	}
	if err := c.snapshots.Invalidate(ctx, childName); err != nil {
		c.logger.Warn("failed to invalidate cached snapshot",
			zap.String("child", childName), zap.Error(err))
	}
}

func (c *Consumer) count(kind string) {
	if c.collector != nil {
		c.collector.IngestedTotal.WithLabelValues(kind, "kafka").Inc()
	}
}

// parseTimestamp normalizes malformed upstream timestamps to "now"; this is
// a best-effort analytics feed, not a system of record.
func parseTimestamp(raw string) time.Time {
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts
	}
	if ts, err := time.Parse("2006-01-02 15:04:05", raw); err == nil {
		return ts
	}
	return time.Now().UTC()
}
