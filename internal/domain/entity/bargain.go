package entity

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/pricing"
)

type BargainStatus string

const (
	BargainPending   BargainStatus = "pending"
	BargainCountered BargainStatus = "countered"
	BargainAccepted  BargainStatus = "accepted"
	BargainRejected  BargainStatus = "rejected"
	BargainExpired   BargainStatus = "expired"
)

func (s BargainStatus) IsOpen() bool {
	return s == BargainPending || s == BargainCountered
}

type Sender string

const (
	SenderBuyer  Sender = "buyer"
	SenderSeller Sender = "seller"
)

type BargainAction string

const (
	ActionAccept  BargainAction = "accept"
	ActionReject  BargainAction = "reject"
	ActionCounter BargainAction = "counter"
)

var (
	ErrBargainClosed     = errors.New("bargain is no longer open")
	ErrBargainExpired    = errors.New("bargain has expired")
	ErrBargainWrongTurn  = errors.New("bargain is not awaiting this response")
	ErrCounterBelowOffer = errors.New("counter offer cannot be lower than the buyer's offer")
	ErrCounterMissing    = errors.New("counter offer is required")
	ErrUnknownAction     = errors.New("unknown bargain action")
)

type BargainMessage struct {
	Sender    Sender    `json:"sender"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type Bargain struct {
	ID                 string           `json:"id"`
	ProductID          string           `json:"productId"`
	UserID             string           `json:"userId"`
	SellerID           string           `json:"sellerId"`
	OriginalPrice      float64          `json:"originalPrice"`
	BuyerOffer         float64          `json:"buyerOffer"`
	SellerCounterOffer *float64         `json:"sellerCounterOffer,omitempty"`
	FinalPrice         *float64         `json:"finalPrice,omitempty"`
	Status             BargainStatus    `json:"status"`
	Messages           []BargainMessage `json:"messages"`
	ExpiresAt          time.Time        `json:"expiresAt"`
	Version            int              `json:"-"`
	CreatedAt          time.Time        `json:"createdAt"`
	UpdatedAt          time.Time        `json:"updatedAt"`
}

// NewBargain opens a negotiation on product. The offer is checked against
// the product's bargaining rules.
func NewBargain(product *Product, buyerID string, offer float64, message string, ttl time.Duration) (*Bargain, error) {
	if product == nil {
		return nil, errors.New("product is required")
	}
	if buyerID == "" {
		return nil, errors.New("buyer ID cannot be empty")
	}
	if offer <= 0 {
		return nil, errors.New("offer must be positive")
	}
	if err := product.CheckBargainOffer(offer); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	b := &Bargain{
		ProductID:     product.ID,
		UserID:        buyerID,
		SellerID:      product.SellerID,
		OriginalPrice: product.SellingPrice,
		BuyerOffer:    pricing.Round2(offer),
		Status:        BargainPending,
		Messages:      make([]BargainMessage, 0, 1),
		ExpiresAt:     now.Add(ttl),
		CreatedAt:     now,
		UpdatedAt:     now,
		Version:       1,
	}
	b.addMessage(SenderBuyer, message, now)
	return b, nil
}

func (b *Bargain) addMessage(sender Sender, message string, at time.Time) {
	message = strings.TrimSpace(message)
	if message == "" {
		return
	}
	b.Messages = append(b.Messages, BargainMessage{Sender: sender, Message: message, Timestamp: at})
}

func (b *Bargain) IsExpiredAt(now time.Time) bool {
	return b.Status.IsOpen() && !now.Before(b.ExpiresAt)
}

// Expire marks an open bargain past its deadline as expired. It reports
// whether the status changed.
func (b *Bargain) Expire(now time.Time) bool {
	if !b.IsExpiredAt(now) {
		return false
	}
	b.Status = BargainExpired
	b.UpdatedAt = now.UTC()
	return true
}

func (b *Bargain) checkOpen(now time.Time) error {
	if b.IsExpiredAt(now) {
		return ErrBargainExpired
	}
	if !b.Status.IsOpen() {
		return fmt.Errorf("%w: %s", ErrBargainClosed, b.Status)
	}
	return nil
}

// SellerRespond applies the seller's accept, reject or counter.
func (b *Bargain) SellerRespond(action BargainAction, counterOffer *float64, message string) error {
	now := time.Now().UTC()
	if err := b.checkOpen(now); err != nil {
		return err
	}
	switch action {
	case ActionAccept:
		final := b.BuyerOffer
		b.FinalPrice = &final
		b.Status = BargainAccepted
	case ActionReject:
		b.Status = BargainRejected
	case ActionCounter:
		if counterOffer == nil {
			return ErrCounterMissing
		}
		counter := pricing.Round2(*counterOffer)
		if pricing.Less(counter, b.BuyerOffer) {
			return ErrCounterBelowOffer
		}
		b.SellerCounterOffer = &counter
		b.Status = BargainCountered
	default:
		return fmt.Errorf("%w %q", ErrUnknownAction, action)
	}
	b.addMessage(SenderSeller, message, now)
	b.UpdatedAt = now
	return nil
}

// BuyerRespond answers a seller's counter offer.
func (b *Bargain) BuyerRespond(action BargainAction, message string) error {
	now := time.Now().UTC()
	if err := b.checkOpen(now); err != nil {
		return err
	}
	if b.Status != BargainCountered || b.SellerCounterOffer == nil {
		return ErrBargainWrongTurn
	}
	switch action {
	case ActionAccept:
		final := *b.SellerCounterOffer
		b.FinalPrice = &final
		b.Status = BargainAccepted
	case ActionReject:
		b.Status = BargainRejected
	default:
		return fmt.Errorf("%w %q", ErrUnknownAction, action)
	}
	b.addMessage(SenderBuyer, message, now)
	b.UpdatedAt = now
	return nil
}

// AcceptedPriceFor returns the agreed price when the bargain is an accepted
// deal of buyerID on productID.
func (b *Bargain) AcceptedPriceFor(buyerID, productID string) (float64, bool) {
	if b.Status != BargainAccepted || b.FinalPrice == nil {
		return 0, false
	}
	if b.UserID != buyerID || b.ProductID != productID {
		return 0, false
	}
	return *b.FinalPrice, true
}

func (b *Bargain) IsParticipant(userID, sellerID string) bool {
	return (userID != "" && b.UserID == userID) || (sellerID != "" && b.SellerID == sellerID)
}
