package entity

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/pricing"
)

type Product struct {
	ID              string    `json:"id"`
	SellerID        string    `json:"sellerId"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	Category        string    `json:"category,omitempty"`
	Images          []string  `json:"images"`
	BasePrice       float64   `json:"basePrice"`
	SellingPrice    float64   `json:"sellingPrice"`
	PriceDiscount   float64   `json:"priceDiscount"`
	Stock           int       `json:"stock"`
	Sales           int       `json:"sales"`
	AllowBargaining bool      `json:"allowBargaining"`
	MinBargainPrice *float64  `json:"minBargainPrice,omitempty"`
	IsActive        bool      `json:"isActive"`
	Version         int       `json:"-"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// PriceInput carries the optional price fields of a create or update.
type PriceInput struct {
	BasePrice     float64
	PriceDiscount *float64
	SellingPrice  *float64
}

// ApplyPricing resolves and stores the price triple.
func (p *Product) ApplyPricing(in PriceInput) error {
	q, err := pricing.Resolve(in.BasePrice, in.PriceDiscount, in.SellingPrice)
	if err != nil {
		return err
	}
	p.BasePrice = q.BasePrice
	p.SellingPrice = q.SellingPrice
	p.PriceDiscount = q.PriceDiscount
	return nil
}

// Validate checks the invariants that hold for every stored product.
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("product name cannot be empty")
	}
	if p.SellerID == "" {
		return errors.New("product must belong to a seller")
	}
	if p.Stock < 0 {
		return errors.New("stock cannot be negative")
	}
	if !pricing.Consistent(p.BasePrice, p.SellingPrice, p.PriceDiscount) {
		return fmt.Errorf("selling price %.2f does not match base price %.2f with %.2f%% discount", p.SellingPrice, p.BasePrice, p.PriceDiscount)
	}
	if p.MinBargainPrice != nil {
		if *p.MinBargainPrice <= 0 {
			return errors.New("minimum bargain price must be positive")
		}
		if !pricing.Less(*p.MinBargainPrice, p.SellingPrice) {
			return errors.New("minimum bargain price must be below the selling price")
		}
	}
	return nil
}

func (p *Product) IsOwnedBy(sellerID string) bool {
	return sellerID != "" && p.SellerID == sellerID
}

func (p *Product) HasStock(quantity int) bool {
	return p.Stock >= quantity
}

// CheckBargainOffer enforces the bargaining rules of the product.
func (p *Product) CheckBargainOffer(offer float64) error {
	if !p.AllowBargaining {
		return ErrBargainingDisabled
	}
	if pricing.AtLeast(offer, p.SellingPrice) {
		return ErrOfferNotBelowPrice
	}
	if p.MinBargainPrice != nil && pricing.Less(offer, *p.MinBargainPrice) {
		return ErrOfferBelowMinimum
	}
	return nil
}

var (
	ErrBargainingDisabled = errors.New("bargaining is not allowed for this product")
	ErrOfferNotBelowPrice = errors.New("offer must be lower than the selling price")
	ErrOfferBelowMinimum  = errors.New("offer is below the minimum bargain price")
)
