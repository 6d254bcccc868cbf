package handler

import (
	"net/http"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/port/http/response"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/repository"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/service"
	"github.com/go-chi/chi/v5"
)

type orderItemRequest struct {
	ProductID   string   `json:"productId" validate:"required"`
	Quantity    int      `json:"quantity" validate:"gte=1"`
	FinalPrice  *float64 `json:"finalPrice" validate:"omitempty,gt=0"`
	BargainID   string   `json:"bargainId"`
	ChallengeID string   `json:"challengeId"`
}

type createOrderRequest struct {
	Items         []orderItemRequest `json:"items" validate:"required,min=1,dive"`
	PaymentMethod string             `json:"paymentMethod" validate:"required"`
	Delivery      deliveryRequest    `json:"delivery"`
}

type updateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Notes  string `json:"notes" validate:"max=1000"`
}

type cancelOrderRequest struct {
	Reason string `json:"reason" validate:"max=1000"`
}

type OrderHandler struct {
	orders   service.OrderService
	receipts service.ReceiptService
	out      *response.Writer
}

func NewOrderHandler(orders service.OrderService, receipts service.ReceiptService, out *response.Writer) *OrderHandler {
	return &OrderHandler{orders: orders, receipts: receipts, out: out}
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := actorOf(r)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	var req createOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		h.out.Error(w, r, err)
		return
	}
	items := make([]service.OrderItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, service.OrderItemInput{
			ProductID:   it.ProductID,
			Quantity:    it.Quantity,
			FinalPrice:  it.FinalPrice,
			BargainID:   it.BargainID,
			ChallengeID: it.ChallengeID,
		})
	}
	order, err := h.orders.Create(r.Context(), actor.UserID, service.CreateOrderInput{
		Items:         items,
		PaymentMethod: req.PaymentMethod,
		Delivery:      req.Delivery.toEntity(),
	})
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	h.out.JSON(w, http.StatusCreated, "order placed", order)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, err := actorOf(r)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	order, err := h.orders.Get(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	h.out.JSON(w, http.StatusOK, "", order)
}

// Receipt streams a text receipt as an attachment.
func (h *OrderHandler) Receipt(w http.ResponseWriter, r *http.Request) {
	actor, err := actorOf(r)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	receipt, err := h.receipts.Render(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+receipt.FileName+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(receipt.Body)
}

func listOrdersParams(r *http.Request) (repository.ListOrdersParams, error) {
	page, limit, err := pagination(r)
	if err != nil {
		return repository.ListOrdersParams{}, err
	}
	sortBy, sortOrder := sortParam(r)
	return repository.ListOrdersParams{
		Status:    r.URL.Query().Get("status"),
		Page:      page,
		PageSize:  limit,
		SortBy:    sortBy,
		SortOrder: sortOrder,
	}, nil
}

type orderLister func(r *http.Request, actor service.Actor, params repository.ListOrdersParams) (*repository.ListOrdersResult, error)

func (h *OrderHandler) list(fetch orderLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorOf(r)
		if err != nil {
			h.out.Error(w, r, err)
			return
		}
		params, err := listOrdersParams(r)
		if err != nil {
			h.out.Error(w, r, err)
			return
		}
		result, err := fetch(r, actor, params)
		if err != nil {
			h.out.Error(w, r, err)
			return
		}
		h.out.Page(w, result.Orders, response.NewMeta(result.CurrentPage, result.PageSize, result.TotalCount))
	}
}

func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	h.list(func(r *http.Request, actor service.Actor, p repository.ListOrdersParams) (*repository.ListOrdersResult, error) {
		return h.orders.ListMine(r.Context(), actor.UserID, p)
	})(w, r)
}

func (h *OrderHandler) ListSeller(w http.ResponseWriter, r *http.Request) {
	h.list(func(r *http.Request, actor service.Actor, p repository.ListOrdersParams) (*repository.ListOrdersResult, error) {
		return h.orders.ListSeller(r.Context(), actor.UserID, p)
	})(w, r)
}

// ListAll is mounted behind RequireAdmin.
func (h *OrderHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	h.list(func(r *http.Request, _ service.Actor, p repository.ListOrdersParams) (*repository.ListOrdersResult, error) {
		p.UserID = r.URL.Query().Get("userId")
		p.SellerID = r.URL.Query().Get("sellerId")
		return h.orders.ListAll(r.Context(), p)
	})(w, r)
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor, err := actorOf(r)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	var req updateOrderStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		h.out.Error(w, r, err)
		return
	}
	order, err := h.orders.UpdateStatus(r.Context(), actor, chi.URLParam(r, "id"), req.Status, req.Notes)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	h.out.JSON(w, http.StatusOK, "order status updated", order)
}

func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	actor, err := actorOf(r)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	var req cancelOrderRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			h.out.Error(w, r, err)
			return
		}
	}
	order, err := h.orders.Cancel(r.Context(), actor.UserID, chi.URLParam(r, "id"), req.Reason)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	h.out.JSON(w, http.StatusOK, "order cancelled", order)
}
