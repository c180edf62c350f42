package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v3/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/egannguyen/go-ordering-service/internal/entity"
)

const metadataAggregateID = "aggregate_id"

// Publisher publishes domain events to a Kafka topic, partitioned by
// aggregate id.
type Publisher struct {
	publisher message.Publisher
	topic     string
}

// NewPublisher creates a Kafka-backed event publisher.
func NewPublisher(brokers []string, topic string, logger watermill.LoggerAdapter) (*Publisher, error) {
	publisher, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers:               brokers,
		Marshaler:             marshaler(),
		OverwriteSaramaConfig: kafka.DefaultSaramaSyncPublisherConfig(),
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
	}
	return &Publisher{publisher: publisher, topic: topic}, nil
}

func (p *Publisher) Publish(ctx context.Context, event *entity.DomainEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", event.ID, err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.Metadata.Set("event_name", event.EventName)
	msg.Metadata.Set(metadataAggregateID, string(event.Aggregate.ID))
	msg.SetContext(ctx)

	return p.publisher.Publish(p.topic, msg)
}

func (p *Publisher) Close() error {
	return p.publisher.Close()
}

// NewSubscriber creates a consumer-group subscriber reading from the
// oldest offset, for the audit sink that feeds the event store.
func NewSubscriber(brokers []string, group string, logger watermill.LoggerAdapter) (message.Subscriber, error) {
	saramaConfig := kafka.DefaultSaramaSubscriberConfig()
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest

	subscriber, err := kafka.NewSubscriber(kafka.SubscriberConfig{
		Brokers:               brokers,
		Unmarshaler:           marshaler(),
		OverwriteSaramaConfig: saramaConfig,
		ConsumerGroup:         group,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka subscriber: %w", err)
	}
	return subscriber, nil
}

func marshaler() kafka.MarshalerUnmarshaler {
	return kafka.NewWithPartitioningMarshaler(func(topic string, msg *message.Message) (string, error) {
		return msg.Metadata.Get(metadataAggregateID), nil
	})
}
