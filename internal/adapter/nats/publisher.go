package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("marketplace-service/nats")

type MessagePublisher interface {
	Publish(ctx context.Context, subject string, message interface{}) error
}

type natsPublisher struct {
	conn *nats.Conn
	log  logger.Logger
}

func NewNATSPublisher(conn *nats.Conn, log logger.Logger) (MessagePublisher, error) {
	if conn == nil {
		return nil, fmt.Errorf("NATS connection cannot be nil")
	}
	return &natsPublisher{
		conn: conn,
		log:  log.Named("NATSPublisher"),
	}, nil
}

func (p *natsPublisher) Publish(ctx context.Context, subject string, message interface{}) error {
	ctx, span := tracer.Start(ctx, "NATS.Publish "+subject,
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(attribute.String("messaging.destination", subject)),
	)
	defer span.End()

	data, err := json.Marshal(message)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "marshal failed")
		return fmt.Errorf("failed to marshal message to JSON for subject %s: %w", subject, err)
	}

	msg := nats.NewMsg(subject)
	msg.Data = data
	otel.GetTextMapPropagator().Inject(ctx, HeaderCarrier(msg.Header))

	if err := p.conn.PublishMsg(msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "publish failed")
		return fmt.Errorf("failed to publish message to NATS subject %s: %w", subject, err)
	}
	p.log.Debugf("published %s (%d bytes)", subject, len(data))
	return nil
}

type noopPublisher struct {
	log logger.Logger
}

// NewNoopPublisher drops every message; used when NATS is disabled.
func NewNoopPublisher(log logger.Logger) MessagePublisher {
	return &noopPublisher{log: log}
}

func (p *noopPublisher) Publish(_ context.Context, subject string, _ interface{}) error {
	p.log.Debugf("NATS disabled, dropping %s", subject)
	return nil
}

// HeaderCarrier adapts nats.Header to the OpenTelemetry TextMapCarrier.
type HeaderCarrier nats.Header

func (c HeaderCarrier) Get(key string) string {
	return nats.Header(c).Get(key)
}

func (c HeaderCarrier) Set(key string, value string) {
	nats.Header(c).Set(key, value)
}

func (c HeaderCarrier) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	return keys
}
