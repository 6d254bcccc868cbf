package handler

import (
	"net/http"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/port/http/response"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/service"
)

type registerRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone" validate:"omitempty,max=20"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthHandler struct {
	auth service.AuthService
	out  *response.Writer
}

func NewAuthHandler(auth service.AuthService, out *response.Writer) *AuthHandler {
	return &AuthHandler{auth: auth, out: out}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		h.out.Error(w, r, err)
		return
	}
	result, err := h.auth.Register(r.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
	})
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	h.out.JSON(w, http.StatusCreated, "registered", result)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.out.Error(w, r, err)
		return
	}
	result, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	h.out.JSON(w, http.StatusOK, "logged in", result)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor, err := actorOf(r)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	profile, err := h.auth.Me(r.Context(), actor.UserID)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	h.out.JSON(w, http.StatusOK, "", profile)
}

func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	url, err := h.auth.GoogleAuthURL(r.Context())
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	redirect, err := h.auth.GoogleCallback(r.Context(), q.Get("code"), q.Get("state"))
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	http.Redirect(w, r, redirect, http.StatusTemporaryRedirect)
}
