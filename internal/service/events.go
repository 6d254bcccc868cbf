package service

import (
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/entity"
)

const (
	SubjectOrderCreated       = "order.created"
	SubjectOrderStatusUpdated = "order.status.updated"
	SubjectOrderPaid          = "order.paid"
	SubjectBargainCreated     = "bargain.created"
	SubjectBargainUpdated     = "bargain.updated"
	SubjectChallengeCreated   = "challenge.created"
	SubjectChallengeResponded = "challenge.responded"
	SubjectChallengeAccepted  = "challenge.accepted"
)

// OrderEvent is published on every order subject. BuyerID and SellerUserID
// let subscribers route the event to the two parties.
type OrderEvent struct {
	OrderID       string               `json:"orderId"`
	BuyerID       string               `json:"buyerId"`
	SellerID      string               `json:"sellerId"`
	SellerUserID  string               `json:"sellerUserId,omitempty"`
	Status        entity.OrderStatus   `json:"status"`
	PaymentStatus entity.PaymentStatus `json:"paymentStatus"`
	Total         float64              `json:"total"`
	Notes         string               `json:"notes,omitempty"`
	OccurredAt    time.Time            `json:"occurredAt"`
}

func newOrderEvent(o *entity.Order, sellerUserID, notes string) OrderEvent {
	return OrderEvent{
		OrderID:       o.ID,
		BuyerID:       o.UserID,
		SellerID:      o.SellerID,
		SellerUserID:  sellerUserID,
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		Total:         o.Total,
		Notes:         notes,
		OccurredAt:    time.Now().UTC(),
	}
}

type BargainEvent struct {
	BargainID  string               `json:"bargainId"`
	ProductID  string               `json:"productId"`
	BuyerID    string               `json:"buyerId"`
	SellerID   string               `json:"sellerId"`
	Status     entity.BargainStatus `json:"status"`
	BuyerOffer float64              `json:"buyerOffer"`
	Counter    *float64             `json:"counterOffer,omitempty"`
	FinalPrice *float64             `json:"finalPrice,omitempty"`
	OccurredAt time.Time            `json:"occurredAt"`
}

func newBargainEvent(b *entity.Bargain) BargainEvent {
	return BargainEvent{
		BargainID:  b.ID,
		ProductID:  b.ProductID,
		BuyerID:    b.UserID,
		SellerID:   b.SellerID,
		Status:     b.Status,
		BuyerOffer: b.BuyerOffer,
		Counter:    b.SellerCounterOffer,
		FinalPrice: b.FinalPrice,
		OccurredAt: time.Now().UTC(),
	}
}

type ChallengeEvent struct {
	ChallengeID    string                 `json:"challengeId"`
	BuyerID        string                 `json:"buyerId"`
	Status         entity.ChallengeStatus `json:"status"`
	Category       string                 `json:"category,omitempty"`
	ChallengePrice float64                `json:"challengePrice"`
	SellerID       string                 `json:"sellerId,omitempty"`
	ResponseID     string                 `json:"responseId,omitempty"`
	OccurredAt     time.Time              `json:"occurredAt"`
}

func newChallengeEvent(c *entity.Challenge, sellerID, responseID string) ChallengeEvent {
	return ChallengeEvent{
		ChallengeID:    c.ID,
		BuyerID:        c.UserID,
		Status:         c.Status,
		Category:       c.Category,
		ChallengePrice: c.ChallengePrice,
		SellerID:       sellerID,
		ResponseID:     responseID,
		OccurredAt:     time.Now().UTC(),
	}
}
