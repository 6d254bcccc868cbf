package ws

import (
	"context"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/nats"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/service"
)

// RelayPublisher hands order events straight to the hub and forwards every
// message to next. It stands in for the broker round trip when NATS is
// disabled.
type RelayPublisher struct {
	hub  *Hub
	next nats.MessagePublisher
}

func NewRelayPublisher(hub *Hub, next nats.MessagePublisher) *RelayPublisher {
	return &RelayPublisher{hub: hub, next: next}
}

func (p *RelayPublisher) Publish(ctx context.Context, subject string, message interface{}) error {
	if event, ok := message.(service.OrderEvent); ok && IsOrderSubject(subject) {
		p.hub.SendOrderEvent(subject, event)
	}
	return p.next.Publish(ctx, subject, message)
}

// OrderSubjects are the broker subjects forwarded to websocket clients.
var OrderSubjects = []string{service.SubjectOrderStatusUpdated, service.SubjectOrderPaid}

func IsOrderSubject(subject string) bool {
	for _, s := range OrderSubjects {
		if s == subject {
			return true
		}
	}
	return false
}
