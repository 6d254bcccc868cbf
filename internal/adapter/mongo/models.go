package mongo

import (
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/entity"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type userDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash,omitempty"`
	Phone        string             `bson:"phone,omitempty"`
	Role         string             `bson:"role"`
	IsSeller     bool               `bson:"is_seller"`
	GoogleID     string             `bson:"google_id,omitempty"`
	AvatarURL    string             `bson:"avatar_url,omitempty"`
	IsActive     bool               `bson:"is_active"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

func fromUser(u *entity.User) userDocument {
	return userDocument{
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Phone:        u.Phone,
		Role:         string(u.Role),
		IsSeller:     u.IsSeller,
		GoogleID:     u.GoogleID,
		AvatarURL:    u.AvatarURL,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (d userDocument) toEntity() *entity.User {
	return &entity.User{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Phone:        d.Phone,
		Role:         entity.Role(d.Role),
		IsSeller:     d.IsSeller,
		GoogleID:     d.GoogleID,
		AvatarURL:    d.AvatarURL,
		IsActive:     d.IsActive,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

type pickupLocationDocument struct {
	ID      string `bson:"id"`
	Label   string `bson:"label"`
	Address string `bson:"address"`
	City    string `bson:"city"`
	Pincode string `bson:"pincode,omitempty"`
}

type sellerDocument struct {
	ID                 primitive.ObjectID       `bson:"_id,omitempty"`
	UserID             string                   `bson:"user_id"`
	BusinessName       string                   `bson:"business_name"`
	Description        string                   `bson:"description,omitempty"`
	Phone              string                   `bson:"phone,omitempty"`
	TaxID              string                   `bson:"tax_id,omitempty"`
	IsCloseKnit        bool                     `bson:"is_close_knit"`
	VerificationStatus string                   `bson:"verification_status"`
	VerificationNotes  string                   `bson:"verification_notes,omitempty"`
	PickupLocations    []pickupLocationDocument `bson:"pickup_locations"`
	CreatedAt          time.Time                `bson:"created_at"`
	UpdatedAt          time.Time                `bson:"updated_at"`
}

func fromPickupLocations(in []entity.PickupLocation) []pickupLocationDocument {
	out := make([]pickupLocationDocument, 0, len(in))
	for _, l := range in {
		out = append(out, pickupLocationDocument(l))
	}
	return out
}

func fromSeller(s *entity.Seller) sellerDocument {
	return sellerDocument{
		UserID:             s.UserID,
		BusinessName:       s.BusinessName,
		Description:        s.Description,
		Phone:              s.Phone,
		TaxID:              s.TaxID,
		IsCloseKnit:        s.IsCloseKnit,
		VerificationStatus: string(s.VerificationStatus),
		VerificationNotes:  s.VerificationNotes,
		PickupLocations:    fromPickupLocations(s.PickupLocations),
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
}

func (d sellerDocument) toEntity() *entity.Seller {
	locations := make([]entity.PickupLocation, 0, len(d.PickupLocations))
	for _, l := range d.PickupLocations {
		locations = append(locations, entity.PickupLocation(l))
	}
	return &entity.Seller{
		ID:                 d.ID.Hex(),
		UserID:             d.UserID,
		BusinessName:       d.BusinessName,
		Description:        d.Description,
		Phone:              d.Phone,
		TaxID:              d.TaxID,
		IsCloseKnit:        d.IsCloseKnit,
		VerificationStatus: entity.VerificationStatus(d.VerificationStatus),
		VerificationNotes:  d.VerificationNotes,
		PickupLocations:    locations,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
}

type productDocument struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	SellerID        string             `bson:"seller_id"`
	Name            string             `bson:"name"`
	Description     string             `bson:"description,omitempty"`
	Category        string             `bson:"category,omitempty"`
	Images          []string           `bson:"images"`
	BasePrice       float64            `bson:"base_price"`
	SellingPrice    float64            `bson:"selling_price"`
	PriceDiscount   float64            `bson:"price_discount"`
	Stock           int                `bson:"stock"`
	Sales           int                `bson:"sales"`
	AllowBargaining bool               `bson:"allow_bargaining"`
	MinBargainPrice *float64           `bson:"min_bargain_price,omitempty"`
	IsActive        bool               `bson:"is_active"`
	Version         int                `bson:"version"`
	CreatedAt       time.Time          `bson:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at"`
}

func fromProduct(p *entity.Product) productDocument {
	images := p.Images
	if images == nil {
		images = make([]string, 0)
	}
	return productDocument{
		SellerID:        p.SellerID,
		Name:            p.Name,
		Description:     p.Description,
		Category:        p.Category,
		Images:          images,
		BasePrice:       p.BasePrice,
		SellingPrice:    p.SellingPrice,
		PriceDiscount:   p.PriceDiscount,
		Stock:           p.Stock,
		Sales:           p.Sales,
		AllowBargaining: p.AllowBargaining,
		MinBargainPrice: p.MinBargainPrice,
		IsActive:        p.IsActive,
		Version:         p.Version,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func (d productDocument) toEntity() *entity.Product {
	return &entity.Product{
		ID:              d.ID.Hex(),
		SellerID:        d.SellerID,
		Name:            d.Name,
		Description:     d.Description,
		Category:        d.Category,
		Images:          d.Images,
		BasePrice:       d.BasePrice,
		SellingPrice:    d.SellingPrice,
		PriceDiscount:   d.PriceDiscount,
		Stock:           d.Stock,
		Sales:           d.Sales,
		AllowBargaining: d.AllowBargaining,
		MinBargainPrice: d.MinBargainPrice,
		IsActive:        d.IsActive,
		Version:         d.Version,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

type orderItemDocument struct {
	ProductID   string  `bson:"product_id"`
	Name        string  `bson:"name"`
	Image       string  `bson:"image,omitempty"`
	Quantity    int     `bson:"quantity"`
	Price       float64 `bson:"price"`
	FinalPrice  float64 `bson:"final_price"`
	BargainID   string  `bson:"bargain_id,omitempty"`
	ChallengeID string  `bson:"challenge_id,omitempty"`
}

type deliveryDocument struct {
	Option           string `bson:"option"`
	PickupLocationID string `bson:"pickup_location_id,omitempty"`
	MetroStation     string `bson:"metro_station,omitempty"`
	Address          string `bson:"address,omitempty"`
}

type paymentDocument struct {
	GatewayOrderID string     `bson:"gateway_order_id,omitempty"`
	PaymentID      string     `bson:"payment_id,omitempty"`
	Signature      string     `bson:"signature,omitempty"`
	PaidAt         *time.Time `bson:"paid_at,omitempty"`
}

type statusEntryDocument struct {
	Status    string    `bson:"status"`
	Timestamp time.Time `bson:"timestamp"`
	Notes     string    `bson:"notes,omitempty"`
	By        string    `bson:"by,omitempty"`
}

type orderDocument struct {
	ID             primitive.ObjectID    `bson:"_id,omitempty"`
	UserID         string                `bson:"user_id"`
	SellerID       string                `bson:"seller_id"`
	Items          []orderItemDocument   `bson:"items"`
	Subtotal       float64               `bson:"subtotal"`
	DeliveryCharge float64               `bson:"delivery_charge"`
	Total          float64               `bson:"total"`
	Delivery       deliveryDocument      `bson:"delivery"`
	PaymentMethod  string                `bson:"payment_method"`
	PaymentStatus  string                `bson:"payment_status"`
	Payment        paymentDocument       `bson:"payment"`
	Status         string                `bson:"status"`
	StatusHistory  []statusEntryDocument `bson:"status_history"`
	DeliveredAt    *time.Time            `bson:"delivered_at,omitempty"`
	CancelledAt    *time.Time            `bson:"cancelled_at,omitempty"`
	CancelReason   string                `bson:"cancel_reason,omitempty"`
	Version        int                   `bson:"version"`
	CreatedAt      time.Time             `bson:"created_at"`
	UpdatedAt      time.Time             `bson:"updated_at"`
}

func fromStatusEntry(e entity.StatusEntry) statusEntryDocument {
	return statusEntryDocument{Status: string(e.Status), Timestamp: e.Timestamp, Notes: e.Notes, By: e.By}
}

func fromPayment(p entity.PaymentDetails) paymentDocument {
	return paymentDocument{GatewayOrderID: p.GatewayOrderID, PaymentID: p.PaymentID, Signature: p.Signature, PaidAt: p.PaidAt}
}

func fromOrder(o *entity.Order) orderDocument {
	items := make([]orderItemDocument, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderItemDocument(it))
	}
	history := make([]statusEntryDocument, 0, len(o.StatusHistory))
	for _, e := range o.StatusHistory {
		history = append(history, fromStatusEntry(e))
	}
	return orderDocument{
		UserID:         o.UserID,
		SellerID:       o.SellerID,
		Items:          items,
		Subtotal:       o.Subtotal,
		DeliveryCharge: o.DeliveryCharge,
		Total:          o.Total,
		Delivery: deliveryDocument{
			Option:           string(o.Delivery.Option),
			PickupLocationID: o.Delivery.PickupLocationID,
			MetroStation:     o.Delivery.MetroStation,
			Address:          o.Delivery.Address,
		},
		PaymentMethod: string(o.PaymentMethod),
		PaymentStatus: string(o.PaymentStatus),
		Payment:       fromPayment(o.Payment),
		Status:        string(o.Status),
		StatusHistory: history,
		DeliveredAt:   o.DeliveredAt,
		CancelledAt:   o.CancelledAt,
		CancelReason:  o.CancelReason,
		Version:       o.Version,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

func (d orderDocument) toEntity() *entity.Order {
	items := make([]entity.OrderItem, 0, len(d.Items))
	for _, it := range d.Items {
		items = append(items, entity.OrderItem(it))
	}
	history := make([]entity.StatusEntry, 0, len(d.StatusHistory))
	for _, e := range d.StatusHistory {
		history = append(history, entity.StatusEntry{Status: entity.OrderStatus(e.Status), Timestamp: e.Timestamp, Notes: e.Notes, By: e.By})
	}
	return &entity.Order{
		ID:             d.ID.Hex(),
		UserID:         d.UserID,
		SellerID:       d.SellerID,
		Items:          items,
		Subtotal:       d.Subtotal,
		DeliveryCharge: d.DeliveryCharge,
		Total:          d.Total,
		Delivery: entity.DeliveryInfo{
			Option:           entity.DeliveryKind(d.Delivery.Option),
			PickupLocationID: d.Delivery.PickupLocationID,
			MetroStation:     d.Delivery.MetroStation,
			Address:          d.Delivery.Address,
		},
		PaymentMethod: entity.PaymentMethod(d.PaymentMethod),
		PaymentStatus: entity.PaymentStatus(d.PaymentStatus),
		Payment: entity.PaymentDetails{
			GatewayOrderID: d.Payment.GatewayOrderID,
			PaymentID:      d.Payment.PaymentID,
			Signature:      d.Payment.Signature,
			PaidAt:         d.Payment.PaidAt,
		},
		Status:        entity.OrderStatus(d.Status),
		StatusHistory: history,
		DeliveredAt:   d.DeliveredAt,
		CancelledAt:   d.CancelledAt,
		CancelReason:  d.CancelReason,
		Version:       d.Version,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

type bargainMessageDocument struct {
	Sender    string    `bson:"sender"`
	Message   string    `bson:"message"`
	Timestamp time.Time `bson:"timestamp"`
}

type bargainDocument struct {
	ID                 primitive.ObjectID       `bson:"_id,omitempty"`
	ProductID          string                   `bson:"product_id"`
	UserID             string                   `bson:"user_id"`
	SellerID           string                   `bson:"seller_id"`
	OriginalPrice      float64                  `bson:"original_price"`
	BuyerOffer         float64                  `bson:"buyer_offer"`
	SellerCounterOffer *float64                 `bson:"seller_counter_offer,omitempty"`
	FinalPrice         *float64                 `bson:"final_price,omitempty"`
	Status             string                   `bson:"status"`
	Active             bool                     `bson:"active"`
	Messages           []bargainMessageDocument `bson:"messages"`
	ExpiresAt          time.Time                `bson:"expires_at"`
	Version            int                      `bson:"version"`
	CreatedAt          time.Time                `bson:"created_at"`
	UpdatedAt          time.Time                `bson:"updated_at"`
}

func fromBargainMessages(in []entity.BargainMessage) []bargainMessageDocument {
	out := make([]bargainMessageDocument, 0, len(in))
	for _, m := range in {
		out = append(out, bargainMessageDocument{Sender: string(m.Sender), Message: m.Message, Timestamp: m.Timestamp})
	}
	return out
}

func fromBargain(b *entity.Bargain) bargainDocument {
	return bargainDocument{
		ProductID:          b.ProductID,
		UserID:             b.UserID,
		SellerID:           b.SellerID,
		OriginalPrice:      b.OriginalPrice,
		BuyerOffer:         b.BuyerOffer,
		SellerCounterOffer: b.SellerCounterOffer,
		FinalPrice:         b.FinalPrice,
		Status:             string(b.Status),
		Active:             b.Status.IsOpen(),
		Messages:           fromBargainMessages(b.Messages),
		ExpiresAt:          b.ExpiresAt,
		Version:            b.Version,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}
}

func (d bargainDocument) toEntity() *entity.Bargain {
	messages := make([]entity.BargainMessage, 0, len(d.Messages))
	for _, m := range d.Messages {
		messages = append(messages, entity.BargainMessage{Sender: entity.Sender(m.Sender), Message: m.Message, Timestamp: m.Timestamp})
	}
	return &entity.Bargain{
		ID:                 d.ID.Hex(),
		ProductID:          d.ProductID,
		UserID:             d.UserID,
		SellerID:           d.SellerID,
		OriginalPrice:      d.OriginalPrice,
		BuyerOffer:         d.BuyerOffer,
		SellerCounterOffer: d.SellerCounterOffer,
		FinalPrice:         d.FinalPrice,
		Status:             entity.BargainStatus(d.Status),
		Messages:           messages,
		ExpiresAt:          d.ExpiresAt,
		Version:            d.Version,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
}

type challengeResponseDocument struct {
	ID           string    `bson:"id"`
	SellerID     string    `bson:"seller_id"`
	ProductID    string    `bson:"product_id"`
	OfferedPrice float64   `bson:"offered_price"`
	Message      string    `bson:"message,omitempty"`
	Status       string    `bson:"status"`
	CreatedAt    time.Time `bson:"created_at"`
}

type challengeDocument struct {
	ID                 primitive.ObjectID          `bson:"_id,omitempty"`
	UserID             string                      `bson:"user_id"`
	ProductName        string                      `bson:"product_name"`
	Description        string                      `bson:"description,omitempty"`
	Category           string                      `bson:"category,omitempty"`
	ExternalPlatform   string                      `bson:"external_platform,omitempty"`
	ProductURL         string                      `bson:"product_url,omitempty"`
	CurrentPrice       float64                     `bson:"current_price"`
	ChallengePrice     float64                     `bson:"challenge_price"`
	Status             string                      `bson:"status"`
	Responses          []challengeResponseDocument `bson:"responses"`
	AcceptedBy         string                      `bson:"accepted_by,omitempty"`
	AcceptedResponseID string                      `bson:"accepted_response_id,omitempty"`
	ExpiresAt          time.Time                   `bson:"expires_at"`
	Version            int                         `bson:"version"`
	CreatedAt          time.Time                   `bson:"created_at"`
	UpdatedAt          time.Time                   `bson:"updated_at"`
}

func fromChallengeResponse(r entity.ChallengeResponse) challengeResponseDocument {
	return challengeResponseDocument{
		ID:           r.ID,
		SellerID:     r.SellerID,
		ProductID:    r.ProductID,
		OfferedPrice: r.OfferedPrice,
		Message:      r.Message,
		Status:       string(r.Status),
		CreatedAt:    r.CreatedAt,
	}
}

func fromChallengeResponses(in []entity.ChallengeResponse) []challengeResponseDocument {
	out := make([]challengeResponseDocument, 0, len(in))
	for _, r := range in {
		out = append(out, fromChallengeResponse(r))
	}
	return out
}

func fromChallenge(c *entity.Challenge) challengeDocument {
	return challengeDocument{
		UserID:             c.UserID,
		ProductName:        c.ProductName,
		Description:        c.Description,
		Category:           c.Category,
		ExternalPlatform:   c.ExternalPlatform,
		ProductURL:         c.ProductURL,
		CurrentPrice:       c.CurrentPrice,
		ChallengePrice:     c.ChallengePrice,
		Status:             string(c.Status),
		Responses:          fromChallengeResponses(c.Responses),
		AcceptedBy:         c.AcceptedBy,
		AcceptedResponseID: c.AcceptedResponseID,
		ExpiresAt:          c.ExpiresAt,
		Version:            c.Version,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
}

func (d challengeDocument) toEntity() *entity.Challenge {
	responses := make([]entity.ChallengeResponse, 0, len(d.Responses))
	for _, r := range d.Responses {
		responses = append(responses, entity.ChallengeResponse{
			ID:           r.ID,
			SellerID:     r.SellerID,
			ProductID:    r.ProductID,
			OfferedPrice: r.OfferedPrice,
			Message:      r.Message,
			Status:       entity.ResponseStatus(r.Status),
			CreatedAt:    r.CreatedAt,
		})
	}
	return &entity.Challenge{
		ID:                 d.ID.Hex(),
		UserID:             d.UserID,
		ProductName:        d.ProductName,
		Description:        d.Description,
		Category:           d.Category,
		ExternalPlatform:   d.ExternalPlatform,
		ProductURL:         d.ProductURL,
		CurrentPrice:       d.CurrentPrice,
		ChallengePrice:     d.ChallengePrice,
		Status:             entity.ChallengeStatus(d.Status),
		Responses:          responses,
		AcceptedBy:         d.AcceptedBy,
		AcceptedResponseID: d.AcceptedResponseID,
		ExpiresAt:          d.ExpiresAt,
		Version:            d.Version,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
}
