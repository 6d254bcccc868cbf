package handler

import (
	"net/http"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/port/http/response"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/repository"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/service"
	"github.com/go-chi/chi/v5"
)

type pickupLocationRequest struct {
	ID      string `json:"id"`
	Label   string `json:"label" validate:"required,max=80"`
	Address string `json:"address" validate:"required"`
	City    string `json:"city" validate:"required"`
	Pincode string `json:"pincode" validate:"omitempty,max=12"`
}

func (p pickupLocationRequest) toEntity() entity.PickupLocation {
	return entity.PickupLocation{ID: p.ID, Label: p.Label, Address: p.Address, City: p.City, Pincode: p.Pincode}
}

func pickupLocations(in []pickupLocationRequest) []entity.PickupLocation {
	if in == nil {
		return nil
	}
	out := make([]entity.PickupLocation, 0, len(in))
	for _, p := range in {
		out = append(out, p.toEntity())
	}
	return out
}

type registerSellerRequest struct {
	BusinessName    string                  `json:"businessName" validate:"required,max=120"`
	Description     string                  `json:"description" validate:"max=2000"`
	Phone           string                  `json:"phone" validate:"omitempty,max=20"`
	TaxID           string                  `json:"taxId" validate:"required_unless=IsCloseKnit true"`
	IsCloseKnit     bool                    `json:"isCloseKnit"`
	PickupLocations []pickupLocationRequest `json:"pickupLocations" validate:"dive"`
}

type updateSellerRequest struct {
	BusinessName    *string                 `json:"businessName" validate:"omitempty,min=1,max=120"`
	Description     *string                 `json:"description" validate:"omitempty,max=2000"`
	Phone           *string                 `json:"phone" validate:"omitempty,max=20"`
	PickupLocations []pickupLocationRequest `json:"pickupLocations" validate:"omitempty,dive"`
}

type verifySellerRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
	Notes  string `json:"notes" validate:"max=1000"`
}

type SellerHandler struct {
	sellers service.SellerService
	out     *response.Writer
}

func NewSellerHandler(sellers service.SellerService, out *response.Writer) *SellerHandler {
	return &SellerHandler{sellers: sellers, out: out}
}

func (h *SellerHandler) Register(w http.ResponseWriter, r *http.Request) {
	actor, err := actorOf(r)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	var req registerSellerRequest
	if err := decodeJSON(r, &req); err != nil {
		h.out.Error(w, r, err)
		return
	}
	seller, err := h.sellers.Register(r.Context(), actor.UserID, service.RegisterSellerInput{
		BusinessName:    req.BusinessName,
		Description:     req.Description,
		Phone:           req.Phone,
		TaxID:           req.TaxID,
		IsCloseKnit:     req.IsCloseKnit,
		PickupLocations: pickupLocations(req.PickupLocations),
	})
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	h.out.JSON(w, http.StatusCreated, "seller registered", seller)
}

func (h *SellerHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor, err := actorOf(r)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	seller, err := h.sellers.Me(r.Context(), actor.UserID)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	h.out.JSON(w, http.StatusOK, "", seller)
}

func (h *SellerHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	actor, err := actorOf(r)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	var req updateSellerRequest
	if err := decodeJSON(r, &req); err != nil {
		h.out.Error(w, r, err)
		return
	}
	seller, err := h.sellers.UpdateMe(r.Context(), actor.UserID, service.UpdateSellerInput{
		BusinessName:    req.BusinessName,
		Description:     req.Description,
		Phone:           req.Phone,
		PickupLocations: pickupLocations(req.PickupLocations),
	})
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	h.out.JSON(w, http.StatusOK, "seller updated", seller)
}

func (h *SellerHandler) Get(w http.ResponseWriter, r *http.Request) {
	seller, err := h.sellers.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	h.out.JSON(w, http.StatusOK, "", seller)
}

func (h *SellerHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifySellerRequest
	if err := decodeJSON(r, &req); err != nil {
		h.out.Error(w, r, err)
		return
	}
	seller, err := h.sellers.Verify(r.Context(), chi.URLParam(r, "id"), entity.VerificationStatus(req.Status), req.Notes)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	h.out.JSON(w, http.StatusOK, "seller verification updated", seller)
}

func (h *SellerHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit, err := pagination(r)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	result, err := h.sellers.List(r.Context(), repository.ListSellersParams{
		Status:   r.URL.Query().Get("status"),
		Page:     page,
		PageSize: limit,
	})
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	h.out.Page(w, result.Sellers, response.NewMeta(result.CurrentPage, result.PageSize, result.TotalCount))
}
