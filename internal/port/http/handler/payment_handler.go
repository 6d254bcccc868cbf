package handler

import (
	"net/http"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/port/http/response"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/service"
)

type createPaymentOrderRequest struct {
	OrderID string   `json:"orderId" validate:"required"`
	Amount  *float64 `json:"amount" validate:"omitempty,gt=0"`
}

type verifyPaymentRequest struct {
	OrderID        string `json:"orderId" validate:"required"`
	GatewayOrderID string `json:"gatewayOrderId" validate:"required"`
	PaymentID      string `json:"paymentId" validate:"required"`
	Signature      string `json:"signature" validate:"required"`
}

type PaymentHandler struct {
	payments service.PaymentService
	out      *response.Writer
}

func NewPaymentHandler(payments service.PaymentService, out *response.Writer) *PaymentHandler {
	return &PaymentHandler{payments: payments, out: out}
}

func (h *PaymentHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	actor, err := actorOf(r)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	var req createPaymentOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		h.out.Error(w, r, err)
		return
	}
	checkout, err := h.payments.CreateGatewayOrder(r.Context(), actor.UserID, req.OrderID, req.Amount)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	h.out.JSON(w, http.StatusOK, "payment order created", checkout)
}

func (h *PaymentHandler) Verify(w http.ResponseWriter, r *http.Request) {
	actor, err := actorOf(r)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	var req verifyPaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		h.out.Error(w, r, err)
		return
	}
	order, err := h.payments.Verify(r.Context(), actor.UserID, service.VerifyPaymentInput{
		OrderID:        req.OrderID,
		GatewayOrderID: req.GatewayOrderID,
		PaymentID:      req.PaymentID,
		Signature:      req.Signature,
	})
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	h.out.JSON(w, http.StatusOK, "payment verified", order)
}
