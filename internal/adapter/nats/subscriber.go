package nats

import (
	"context"
	"fmt"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

type MessageHandler func(ctx context.Context, subject string, data []byte)

type Subscriber struct {
	conn *nats.Conn
	log  logger.Logger
	subs []*nats.Subscription
}

func NewSubscriber(conn *nats.Conn, log logger.Logger) *Subscriber {
	return &Subscriber{conn: conn, log: log.Named("NATSSubscriber")}
}

// Subscribe delivers each message on subject to handler with the publisher's
// trace context restored.
func (s *Subscriber) Subscribe(subject string, handler MessageHandler) error {
	sub, err := s.conn.Subscribe(subject, func(msg *nats.Msg) {
		ctx := context.Background()
		if msg.Header != nil {
			ctx = otel.GetTextMapPropagator().Extract(ctx, HeaderCarrier(msg.Header))
		}
		ctx, span := tracer.Start(ctx, "NATS.Receive "+msg.Subject, trace.WithSpanKind(trace.SpanKindConsumer))
		defer span.End()
		handler(ctx, msg.Subject, msg.Data)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}
	s.subs = append(s.subs, sub)
	s.log.Infof("subscribed to %s", subject)
	return nil
}

func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		if err := sub.Unsubscribe(); err != nil {
			s.log.Warnf("failed to unsubscribe from %s: %v", sub.Subject, err)
		}
	}
	s.subs = nil
}
