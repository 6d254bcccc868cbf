package handler

import (
	"net/http"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/port/http/response"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/service"
	"github.com/go-chi/chi/v5"
)

type addCartItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=1"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

type deliveryRequest struct {
	Option           string `json:"option" validate:"required"`
	PickupLocationID string `json:"pickupLocationId"`
	MetroStation     string `json:"metroStation"`
	Address          string `json:"address"`
}

func (d deliveryRequest) toEntity() entity.DeliveryInfo {
	return entity.DeliveryInfo{
		Option:           entity.DeliveryKind(d.Option),
		PickupLocationID: d.PickupLocationID,
		MetroStation:     d.MetroStation,
		Address:          d.Address,
	}
}

type checkoutRequest struct {
	SellerID      string          `json:"sellerId"`
	PaymentMethod string          `json:"paymentMethod" validate:"required"`
	Delivery      deliveryRequest `json:"delivery"`
}

type CartHandler struct {
	carts service.CartService
	out   *response.Writer
}

func NewCartHandler(carts service.CartService, out *response.Writer) *CartHandler {
	return &CartHandler{carts: carts, out: out}
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, err := actorOf(r)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	view, err := h.carts.GetCart(r.Context(), actor.UserID)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	h.out.JSON(w, http.StatusOK, "", view)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	actor, err := actorOf(r)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	var req addCartItemRequest
	if err := decodeJSON(r, &req); err != nil {
		h.out.Error(w, r, err)
		return
	}
	view, err := h.carts.AddItem(r.Context(), actor.UserID, req.ProductID, req.Quantity)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	h.out.JSON(w, http.StatusOK, "item added", view)
}

func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	actor, err := actorOf(r)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	var req updateCartItemRequest
	if err := decodeJSON(r, &req); err != nil {
		h.out.Error(w, r, err)
		return
	}
	view, err := h.carts.UpdateItemQuantity(r.Context(), actor.UserID, chi.URLParam(r, "productId"), req.Quantity)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	h.out.JSON(w, http.StatusOK, "cart updated", view)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	actor, err := actorOf(r)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	view, err := h.carts.RemoveItem(r.Context(), actor.UserID, chi.URLParam(r, "productId"))
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	h.out.JSON(w, http.StatusOK, "item removed", view)
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	actor, err := actorOf(r)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	if err := h.carts.ClearCart(r.Context(), actor.UserID); err != nil {
		h.out.Error(w, r, err)
		return
	}
	h.out.JSON(w, http.StatusOK, "cart cleared", nil)
}

func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	actor, err := actorOf(r)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	var req checkoutRequest
	if err := decodeJSON(r, &req); err != nil {
		h.out.Error(w, r, err)
		return
	}
	order, err := h.carts.Checkout(r.Context(), actor.UserID, service.CheckoutInput{
		SellerID:      req.SellerID,
		PaymentMethod: req.PaymentMethod,
		Delivery:      req.Delivery.toEntity(),
	})
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	h.out.JSON(w, http.StatusCreated, "order placed", order)
}
