package handler

import (
	"net/http"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/port/http/response"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/repository"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/service"
	"github.com/go-chi/chi/v5"
)

type createBargainRequest struct {
	ProductID string  `json:"productId" validate:"required"`
	Offer     float64 `json:"offerPrice" validate:"gt=0"`
	Message   string  `json:"message" validate:"max=1000"`
}

type sellerBargainRequest struct {
	Action       string   `json:"action" validate:"required"`
	CounterOffer *float64 `json:"counterOffer" validate:"omitempty,gt=0"`
	Message      string   `json:"message" validate:"max=1000"`
}

type buyerBargainRequest struct {
	Action  string `json:"action" validate:"required"`
	Message string `json:"message" validate:"max=1000"`
}

type BargainHandler struct {
	bargains service.BargainService
	out      *response.Writer
}

func NewBargainHandler(bargains service.BargainService, out *response.Writer) *BargainHandler {
	return &BargainHandler{bargains: bargains, out: out}
}

func (h *BargainHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := actorOf(r)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	var req createBargainRequest
	if err := decodeJSON(r, &req); err != nil {
		h.out.Error(w, r, err)
		return
	}
	bargain, err := h.bargains.Create(r.Context(), actor.UserID, req.ProductID, req.Offer, req.Message)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	h.out.JSON(w, http.StatusCreated, "bargain created", bargain)
}

// SellerRespond accepts, rejects or counters the buyer's offer.
func (h *BargainHandler) SellerRespond(w http.ResponseWriter, r *http.Request) {
	actor, err := actorOf(r)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	var req sellerBargainRequest
	if err := decodeJSON(r, &req); err != nil {
		h.out.Error(w, r, err)
		return
	}
	bargain, err := h.bargains.SellerRespond(r.Context(), actor.UserID, chi.URLParam(r, "id"), req.Action, req.CounterOffer, req.Message)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	h.out.JSON(w, http.StatusOK, "bargain updated", bargain)
}

// BuyerRespond answers a seller's counter offer.
func (h *BargainHandler) BuyerRespond(w http.ResponseWriter, r *http.Request) {
	actor, err := actorOf(r)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	var req buyerBargainRequest
	if err := decodeJSON(r, &req); err != nil {
		h.out.Error(w, r, err)
		return
	}
	bargain, err := h.bargains.BuyerRespond(r.Context(), actor.UserID, chi.URLParam(r, "id"), req.Action, req.Message)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	h.out.JSON(w, http.StatusOK, "bargain updated", bargain)
}

func (h *BargainHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, err := actorOf(r)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	bargain, err := h.bargains.Get(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	h.out.JSON(w, http.StatusOK, "", bargain)
}

func (h *BargainHandler) listParams(r *http.Request) (repository.ListBargainsParams, error) {
	page, limit, err := pagination(r)
	if err != nil {
		return repository.ListBargainsParams{}, err
	}
	return repository.ListBargainsParams{Status: r.URL.Query().Get("status"), Page: page, PageSize: limit}, nil
}

func (h *BargainHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	actor, err := actorOf(r)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	params, err := h.listParams(r)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	result, err := h.bargains.ListMine(r.Context(), actor.UserID, params)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	h.out.Page(w, result.Bargains, response.NewMeta(result.CurrentPage, result.PageSize, result.TotalCount))
}

func (h *BargainHandler) ListSeller(w http.ResponseWriter, r *http.Request) {
	actor, err := actorOf(r)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	params, err := h.listParams(r)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	result, err := h.bargains.ListSeller(r.Context(), actor.UserID, params)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	h.out.Page(w, result.Bargains, response.NewMeta(result.CurrentPage, result.PageSize, result.TotalCount))
}
