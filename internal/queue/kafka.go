package queue

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/smukkama/era5-sync/internal/logger"
	"github.com/smukkama/era5-sync/internal/planner"
	"github.com/smukkama/era5-sync/internal/protocol"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer wraps a Kafka producer
type Producer struct {
	writer messageWriter
	now    func() time.Time
}

// NewProducer creates a new Kafka producer
func NewProducer(brokers []string, topic string, compression kafka.Compression) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{}, // Partition by key (region/variable)
			RequiredAcks: kafka.RequireOne,
			Compression:  compression,
			Async:        false, // Synchronous for reliability
		},
		now: time.Now,
	}
}

// Publish sends a message to Kafka
func (p *Producer) Publish(ctx context.Context, key string, value []byte) error {
	msg := kafka.Message{
		Key:   []byte(key),
		Value: value,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

// PublishArchiveUpdated implements planner.Publisher
func (p *Producer) PublishArchiveUpdated(ctx context.Context, runID string, job planner.FetchJob) error {
	event := &protocol.ArchiveUpdated{
		Type:      protocol.EventArchiveUpdated,
		RunID:     runID,
		Region:    job.Region,
		Variable:  job.Variable,
		Year:      job.Year,
		Month:     job.Month,
		Area:      job.Area,
		Path:      job.Path,
		FetchedAt: p.now().UTC(),
	}

	data, err := protocol.EncodeArchiveUpdated(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	return p.Publish(ctx, event.Key(), data)
}

// Close closes the producer
func (p *Producer) Close() error {
	return p.writer.Close()
}

// ParseCompression maps a codec name to a Kafka compression codec.
// An empty name or "none" disables compression.
func ParseCompression(name string) (kafka.Compression, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return 0, nil
	case "gzip":
		return kafka.Gzip, nil
	case "snappy":
		return kafka.Snappy, nil
	case "lz4":
		return kafka.Lz4, nil
	case "zstd":
		return kafka.Zstd, nil
	default:
		return 0, fmt.Errorf("unknown kafka compression %q", name)
	}
}

// CreateTopic creates a Kafka topic with the specified number of partitions
func CreateTopic(ctx context.Context, brokers []string, topic string, numPartitions int, replicationFactor int) error {
	if len(brokers) == 0 {
		return fmt.Errorf("no kafka brokers configured")
	}

	var dialer kafka.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", brokers[0])
	if err != nil {
		return fmt.Errorf("failed to dial broker: %w", err)
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("failed to get controller: %w", err)
	}

	controllerConn, err := dialer.DialContext(ctx, "tcp", fmt.Sprintf("%s:%d", controller.Host, controller.Port))
	if err != nil {
		return fmt.Errorf("failed to dial controller: %w", err)
	}
	defer controllerConn.Close()

	topicConfigs := []kafka.TopicConfig{
		{
			Topic:             topic,
			NumPartitions:     numPartitions,
			ReplicationFactor: replicationFactor,
		},
	}

	err = controllerConn.CreateTopics(topicConfigs...)
	if err != nil {
		return fmt.Errorf("failed to create topic: %w", err)
	}

	logger.FromContext(ctx).Info().
		Str("topic", topic).
		Int("partitions", numPartitions).
		Msg("topic ready")
	return nil
}
