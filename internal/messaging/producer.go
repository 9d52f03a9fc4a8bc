// Package messaging is the notification bus: business handlers publish
// NotificationEvents to a single kafka topic and the notifier consumes them.
// Trace context rides along in message headers so a send can be followed from
// the originating request through to the email call.
package messaging

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/emeraldlabs/storefront/internal/domain"
)

// Topic carries every notification kind; consumers dispatch on the event's
// Kind field rather than on separate topics.
const Topic = "storefront.notifications"

var publisherTracer = otel.Tracer("messaging/publisher")

type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(brokers []string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  Topic,
			Balancer:               &kafka.LeastBytes{},
			AllowAutoTopicCreation: true,
			BatchTimeout:           100 * time.Millisecond,
		},
	}
}

// Publish sends one notification event, keyed by its kind so notifications of
// the same kind stay ordered within a partition.
func (p *Publisher) Publish(ctx context.Context, event domain.NotificationEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.Kind),
		Value: data,
	}

	ctx, span := publisherTracer.Start(ctx, "send "+Topic,
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			semconv.MessagingSystemKafka,
			semconv.MessagingOperationName("send"),
			semconv.MessagingOperationTypePublish,
			semconv.MessagingDestinationName(Topic),
			semconv.MessagingKafkaMessageKey(string(event.Kind)),
		),
	)
	defer span.End()

	otel.GetTextMapPropagator().Inject(ctx, NewMessageCarrier(&msg))

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
