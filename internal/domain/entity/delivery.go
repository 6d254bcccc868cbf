package entity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/pricing"
)

type DeliveryKind string

const (
	DeliverySellerPickup DeliveryKind = "seller_pickup"
	DeliveryMetro        DeliveryKind = "metro"
	DeliveryDabbawala    DeliveryKind = "dabbawala"
	DeliveryRapido       DeliveryKind = "rapido"
	DeliveryUber         DeliveryKind = "uber"
)

const (
	pickupCharge    = 0
	metroCharge     = 50
	dabbawalaCharge = 30
	courierCharge   = 100

	// FreePickupThreshold is the subtotal from which seller pickup is free.
	FreePickupThreshold = 500
)

var (
	ErrUnknownDelivery     = errors.New("unknown delivery option")
	ErrMetroStationMissing = errors.New("metro station is required for metro delivery")
	ErrAddressMissing      = errors.New("delivery address is required")
	ErrPickupNotOffered    = errors.New("pickup location does not belong to the seller")
)

// DeliveryInfo is the stored and wire form of a delivery choice.
type DeliveryInfo struct {
	Option           DeliveryKind `json:"option"`
	PickupLocationID string       `json:"pickupLocationId,omitempty"`
	MetroStation     string       `json:"metroStation,omitempty"`
	Address          string       `json:"address,omitempty"`
}

// DeliveryOption is one of SellerPickup, Metro, Dabbawala or Courier.
type DeliveryOption interface {
	Kind() DeliveryKind
	Charge(subtotal float64) float64
	Info() DeliveryInfo
	deliveryOption()
}

type SellerPickup struct {
	PickupLocationID string
}

func (SellerPickup) Kind() DeliveryKind { return DeliverySellerPickup }

func (SellerPickup) Charge(subtotal float64) float64 {
	if pricing.AtLeast(subtotal, FreePickupThreshold) {
		return 0
	}
	return pickupCharge
}

func (p SellerPickup) Info() DeliveryInfo {
	return DeliveryInfo{Option: DeliverySellerPickup, PickupLocationID: p.PickupLocationID}
}

func (SellerPickup) deliveryOption() {}

type Metro struct {
	Station string
}

func (Metro) Kind() DeliveryKind     { return DeliveryMetro }
func (Metro) Charge(float64) float64 { return metroCharge }
func (m Metro) Info() DeliveryInfo {
	return DeliveryInfo{Option: DeliveryMetro, MetroStation: m.Station}
}
func (Metro) deliveryOption() {}

type Dabbawala struct {
	Address string
}

func (Dabbawala) Kind() DeliveryKind     { return DeliveryDabbawala }
func (Dabbawala) Charge(float64) float64 { return dabbawalaCharge }
func (d Dabbawala) Info() DeliveryInfo {
	return DeliveryInfo{Option: DeliveryDabbawala, Address: d.Address}
}
func (Dabbawala) deliveryOption() {}

// Courier covers the ride-hailing providers.
type Courier struct {
	Provider DeliveryKind
	Address  string
}

func (c Courier) Kind() DeliveryKind   { return c.Provider }
func (Courier) Charge(float64) float64 { return courierCharge }
func (c Courier) Info() DeliveryInfo {
	return DeliveryInfo{Option: c.Provider, Address: c.Address}
}
func (Courier) deliveryOption() {}

// ParseDeliveryOption validates the request fields for the chosen option and
// returns the matching variant.
func ParseDeliveryOption(info DeliveryInfo) (DeliveryOption, error) {
	address := strings.TrimSpace(info.Address)
	kind := DeliveryKind(strings.ToLower(strings.TrimSpace(string(info.Option))))
	switch kind {
	case DeliverySellerPickup:
		return SellerPickup{PickupLocationID: strings.TrimSpace(info.PickupLocationID)}, nil
	case DeliveryMetro:
		station := strings.TrimSpace(info.MetroStation)
		if station == "" {
			return nil, ErrMetroStationMissing
		}
		return Metro{Station: station}, nil
	case DeliveryDabbawala:
		if address == "" {
			return nil, ErrAddressMissing
		}
		return Dabbawala{Address: address}, nil
	case DeliveryRapido, DeliveryUber:
		if address == "" {
			return nil, ErrAddressMissing
		}
		return Courier{Provider: kind, Address: address}, nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownDelivery, info.Option)
	}
}

// CheckPickupLocation verifies that a seller-pickup choice names one of the
// seller's own locations.
func CheckPickupLocation(opt DeliveryOption, seller *Seller) error {
	p, ok := opt.(SellerPickup)
	if !ok || p.PickupLocationID == "" {
		return nil
	}
	if seller == nil {
		return ErrPickupNotOffered
	}
	if _, found := seller.PickupLocation(p.PickupLocationID); !found {
		return ErrPickupNotOffered
	}
	return nil
}
