package handler

import (
	"net/http"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/port/http/response"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/service"
	"github.com/go-chi/chi/v5"
)

type createChallengeRequest struct {
	ProductName      string  `json:"productName" validate:"required,max=200"`
	Description      string  `json:"description" validate:"max=2000"`
	Category         string  `json:"category" validate:"max=100"`
	ExternalPlatform string  `json:"externalPlatform" validate:"max=100"`
	ProductURL       string  `json:"productUrl" validate:"omitempty,url"`
	CurrentPrice     float64 `json:"currentPrice" validate:"gt=0"`
	ChallengePrice   float64 `json:"challengePrice" validate:"gt=0"`
}

type respondChallengeRequest struct {
	ProductID    string  `json:"productId" validate:"required"`
	OfferedPrice float64 `json:"offeredPrice" validate:"gt=0"`
	Message      string  `json:"message" validate:"max=1000"`
}

type ChallengeHandler struct {
	challenges service.ChallengeService
	out        *response.Writer
}

func NewChallengeHandler(challenges service.ChallengeService, out *response.Writer) *ChallengeHandler {
	return &ChallengeHandler{challenges: challenges, out: out}
}

func (h *ChallengeHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := actorOf(r)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	var req createChallengeRequest
	if err := decodeJSON(r, &req); err != nil {
		h.out.Error(w, r, err)
		return
	}
	challenge, err := h.challenges.Create(r.Context(), actor.UserID, entity.NewChallengeParams{
		ProductName:      req.ProductName,
		Description:      req.Description,
		Category:         req.Category,
		ExternalPlatform: req.ExternalPlatform,
		ProductURL:       req.ProductURL,
		CurrentPrice:     req.CurrentPrice,
		ChallengePrice:   req.ChallengePrice,
	})
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	h.out.JSON(w, http.StatusCreated, "challenge created", challenge)
}

// ListActive is public: sellers browse it to find buyers to undercut for.
func (h *ChallengeHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	page, limit, err := pagination(r)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	result, err := h.challenges.ListActive(r.Context(), r.URL.Query().Get("category"), page, limit)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	h.out.Page(w, result.Challenges, response.NewMeta(result.CurrentPage, result.PageSize, result.TotalCount))
}

func (h *ChallengeHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	actor, err := actorOf(r)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	page, limit, err := pagination(r)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	result, err := h.challenges.ListMine(r.Context(), actor.UserID, page, limit)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	h.out.Page(w, result.Challenges, response.NewMeta(result.CurrentPage, result.PageSize, result.TotalCount))
}

func (h *ChallengeHandler) Get(w http.ResponseWriter, r *http.Request) {
	challenge, err := h.challenges.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	h.out.JSON(w, http.StatusOK, "", challenge)
}

func (h *ChallengeHandler) Respond(w http.ResponseWriter, r *http.Request) {
	actor, err := actorOf(r)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	var req respondChallengeRequest
	if err := decodeJSON(r, &req); err != nil {
		h.out.Error(w, r, err)
		return
	}
	challenge, err := h.challenges.Respond(r.Context(), actor.UserID, chi.URLParam(r, "id"), service.RespondChallengeInput{
		ProductID:    req.ProductID,
		OfferedPrice: req.OfferedPrice,
		Message:      req.Message,
	})
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	h.out.JSON(w, http.StatusCreated, "response submitted", challenge)
}

func (h *ChallengeHandler) Accept(w http.ResponseWriter, r *http.Request) {
	actor, err := actorOf(r)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	challenge, err := h.challenges.Accept(r.Context(), actor.UserID, chi.URLParam(r, "id"), chi.URLParam(r, "responseId"))
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	h.out.JSON(w, http.StatusOK, "response accepted", challenge)
}

func (h *ChallengeHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	actor, err := actorOf(r)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	challenge, err := h.challenges.Cancel(r.Context(), actor.UserID, chi.URLParam(r, "id"))
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	h.out.JSON(w, http.StatusOK, "challenge cancelled", challenge)
}
