package entity

import (
	"errors"
	"strings"
	"time"
)

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationApproved VerificationStatus = "approved"
	VerificationRejected VerificationStatus = "rejected"
)

func (s VerificationStatus) Valid() bool {
	switch s {
	case VerificationPending, VerificationApproved, VerificationRejected:
		return true
	}
	return false
}

type PickupLocation struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Address string `json:"address"`
	City    string `json:"city"`
	Pincode string `json:"pincode,omitempty"`
}

type Seller struct {
	ID                 string             `json:"id"`
	UserID             string             `json:"userId"`
	BusinessName       string             `json:"businessName"`
	Description        string             `json:"description,omitempty"`
	Phone              string             `json:"phone,omitempty"`
	TaxID              string             `json:"taxId,omitempty"`
	IsCloseKnit        bool               `json:"isCloseKnit"`
	VerificationStatus VerificationStatus `json:"verificationStatus"`
	VerificationNotes  string             `json:"verificationNotes,omitempty"`
	PickupLocations    []PickupLocation   `json:"pickupLocations"`
	CreatedAt          time.Time          `json:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt"`
}

var ErrTaxIDRequired = errors.New("tax ID is required unless the seller is close-knit")

// NewSeller builds a seller profile. Close-knit sellers skip tax-ID
// verification and start approved; everyone else waits for an admin.
func NewSeller(userID, businessName, taxID string, isCloseKnit bool, pickups []PickupLocation) (*Seller, error) {
	if userID == "" {
		return nil, errors.New("user ID cannot be empty")
	}
	if strings.TrimSpace(businessName) == "" {
		return nil, errors.New("business name cannot be empty")
	}
	taxID = strings.TrimSpace(taxID)
	if !isCloseKnit && taxID == "" {
		return nil, ErrTaxIDRequired
	}

	status := VerificationPending
	if isCloseKnit {
		status = VerificationApproved
	}
	if pickups == nil {
		pickups = make([]PickupLocation, 0)
	}
	now := time.Now().UTC()
	return &Seller{
		UserID:             userID,
		BusinessName:       strings.TrimSpace(businessName),
		TaxID:              taxID,
		IsCloseKnit:        isCloseKnit,
		VerificationStatus: status,
		PickupLocations:    pickups,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}

func (s *Seller) IsApproved() bool {
	return s.VerificationStatus == VerificationApproved
}

func (s *Seller) PickupLocation(id string) (*PickupLocation, bool) {
	for i := range s.PickupLocations {
		if s.PickupLocations[i].ID == id {
			return &s.PickupLocations[i], true
		}
	}
	return nil, false
}
