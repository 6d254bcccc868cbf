package entity

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/pricing"
)

type ChallengeStatus string

const (
	ChallengeActive    ChallengeStatus = "active"
	ChallengeAccepted  ChallengeStatus = "accepted"
	ChallengeExpired   ChallengeStatus = "expired"
	ChallengeCancelled ChallengeStatus = "cancelled"
)

type ResponseStatus string

const (
	ResponsePending  ResponseStatus = "pending"
	ResponseAccepted ResponseStatus = "accepted"
	ResponseRejected ResponseStatus = "rejected"
)

// DefaultChallengeRatio caps a challenge price at 90% of the current price.
const DefaultChallengeRatio = 0.9

var (
	ErrChallengePriceTooHigh = errors.New("challenge price must be at most 90% of the current price")
	ErrChallengeNotActive    = errors.New("challenge is not active")
	ErrChallengeExpired      = errors.New("challenge has expired")
	ErrOfferAboveChallenge   = errors.New("offered price cannot exceed the challenge price")
	ErrResponseNotFound      = errors.New("challenge response not found")
	ErrOwnChallenge          = errors.New("cannot respond to your own challenge")
)

type ChallengeResponse struct {
	ID           string         `json:"id"`
	SellerID     string         `json:"sellerId"`
	ProductID    string         `json:"productId"`
	OfferedPrice float64        `json:"offeredPrice"`
	Message      string         `json:"message,omitempty"`
	Status       ResponseStatus `json:"status"`
	CreatedAt    time.Time      `json:"createdAt"`
}

type Challenge struct {
	ID                 string              `json:"id"`
	UserID             string              `json:"userId"`
	ProductName        string              `json:"productName"`
	Description        string              `json:"description,omitempty"`
	Category           string              `json:"category,omitempty"`
	ExternalPlatform   string              `json:"externalPlatform,omitempty"`
	ProductURL         string              `json:"productUrl,omitempty"`
	CurrentPrice       float64             `json:"currentPrice"`
	ChallengePrice     float64             `json:"challengePrice"`
	Status             ChallengeStatus     `json:"status"`
	Responses          []ChallengeResponse `json:"responses"`
	AcceptedBy         string              `json:"acceptedBy,omitempty"`
	AcceptedResponseID string              `json:"acceptedResponseId,omitempty"`
	ExpiresAt          time.Time           `json:"expiresAt"`
	Version            int                 `json:"-"`
	CreatedAt          time.Time           `json:"createdAt"`
	UpdatedAt          time.Time           `json:"updatedAt"`
}

type NewChallengeParams struct {
	UserID           string
	ProductName      string
	Description      string
	Category         string
	ExternalPlatform string
	ProductURL       string
	CurrentPrice     float64
	ChallengePrice   float64
}

func NewChallenge(p NewChallengeParams, ratio float64, ttl time.Duration) (*Challenge, error) {
	if p.UserID == "" {
		return nil, errors.New("user ID cannot be empty")
	}
	if strings.TrimSpace(p.ProductName) == "" {
		return nil, errors.New("product name cannot be empty")
	}
	if p.CurrentPrice <= 0 {
		return nil, errors.New("current price must be positive")
	}
	if p.ChallengePrice <= 0 {
		return nil, errors.New("challenge price must be positive")
	}
	if ratio <= 0 || ratio >= 1 {
		ratio = DefaultChallengeRatio
	}
	if pricing.Less(pricing.Ceiling(p.CurrentPrice, ratio), p.ChallengePrice) {
		return nil, ErrChallengePriceTooHigh
	}

	now := time.Now().UTC()
	return &Challenge{
		UserID:           p.UserID,
		ProductName:      strings.TrimSpace(p.ProductName),
		Description:      p.Description,
		Category:         p.Category,
		ExternalPlatform: p.ExternalPlatform,
		ProductURL:       p.ProductURL,
		CurrentPrice:     pricing.Round2(p.CurrentPrice),
		ChallengePrice:   pricing.Round2(p.ChallengePrice),
		Status:           ChallengeActive,
		Responses:        make([]ChallengeResponse, 0),
		ExpiresAt:        now.Add(ttl),
		CreatedAt:        now,
		UpdatedAt:        now,
		Version:          1,
	}, nil
}

func (c *Challenge) IsExpiredAt(now time.Time) bool {
	return c.Status == ChallengeActive && !now.Before(c.ExpiresAt)
}

func (c *Challenge) Expire(now time.Time) bool {
	if !c.IsExpiredAt(now) {
		return false
	}
	c.Status = ChallengeExpired
	c.UpdatedAt = now.UTC()
	return true
}

// CheckOpen fails unless the challenge is active and not past its deadline.
func (c *Challenge) CheckOpen(now time.Time) error {
	if c.IsExpiredAt(now) {
		return ErrChallengeExpired
	}
	if c.Status != ChallengeActive {
		return fmt.Errorf("%w: %s", ErrChallengeNotActive, c.Status)
	}
	return nil
}

// NewResponse validates a seller's offer against the challenge.
func (c *Challenge) NewResponse(responderUserID, sellerID string, product *Product, offeredPrice float64, message string) (*ChallengeResponse, error) {
	if err := c.CheckOpen(time.Now().UTC()); err != nil {
		return nil, err
	}
	if responderUserID == c.UserID {
		return nil, ErrOwnChallenge
	}
	if product == nil || !product.IsOwnedBy(sellerID) {
		return nil, errors.New("product must belong to the responding seller")
	}
	if offeredPrice <= 0 {
		return nil, errors.New("offered price must be positive")
	}
	if pricing.Less(c.ChallengePrice, offeredPrice) {
		return nil, ErrOfferAboveChallenge
	}
	return &ChallengeResponse{
		SellerID:     sellerID,
		ProductID:    product.ID,
		OfferedPrice: pricing.Round2(offeredPrice),
		Message:      strings.TrimSpace(message),
		Status:       ResponsePending,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

func (c *Challenge) HasResponseFrom(sellerID string) bool {
	for _, r := range c.Responses {
		if r.SellerID == sellerID {
			return true
		}
	}
	return false
}

func (c *Challenge) Response(id string) (*ChallengeResponse, bool) {
	for i := range c.Responses {
		if c.Responses[i].ID == id {
			return &c.Responses[i], true
		}
	}
	return nil, false
}

// Accept picks one response; the others are rejected.
func (c *Challenge) Accept(responseID string) error {
	now := time.Now().UTC()
	if err := c.CheckOpen(now); err != nil {
		return err
	}
	chosen, ok := c.Response(responseID)
	if !ok {
		return ErrResponseNotFound
	}
	for i := range c.Responses {
		if c.Responses[i].ID == responseID {
			c.Responses[i].Status = ResponseAccepted
		} else {
			c.Responses[i].Status = ResponseRejected
		}
	}
	c.Status = ChallengeAccepted
	c.AcceptedBy = chosen.SellerID
	c.AcceptedResponseID = chosen.ID
	c.UpdatedAt = now
	return nil
}

func (c *Challenge) Cancel() error {
	now := time.Now().UTC()
	if err := c.CheckOpen(now); err != nil {
		return err
	}
	c.Status = ChallengeCancelled
	c.UpdatedAt = now
	return nil
}

// AcceptedPriceFor returns the offered price of the accepted response when it
// covers productID and the challenge belongs to buyerID.
func (c *Challenge) AcceptedPriceFor(buyerID, productID string) (float64, bool) {
	if c.Status != ChallengeAccepted || c.UserID != buyerID {
		return 0, false
	}
	r, ok := c.Response(c.AcceptedResponseID)
	if !ok || r.ProductID != productID {
		return 0, false
	}
	return r.OfferedPrice, true
}
