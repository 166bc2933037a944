package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/saree_store/internal/domain"
	"github.com/fjod/saree_store/internal/service"
	"go.uber.org/zap"
)

type AuthService interface {
	Signup(ctx context.Context, in service.SignupInput) (*domain.User, error)
	SendOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email string, code string) (*domain.User, error)
}

type AuthHandler struct {
	auth    AuthService
	timeout time.Duration
	log     *zap.Logger
}

func NewAuthHandler(auth AuthService, timeout time.Duration, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		auth:    auth,
		timeout: timeout,
		log:     log,
	}
}

type SignupRequestDTO struct {
	Name  string `json:"name" validate:"required,max=100"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"omitempty,max=20"`
}

type SendOTPRequestDTO struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyOTPRequestDTO struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

type UserResponse struct {
	User *domain.User `json:"user"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	user, err := h.auth.Signup(ctx, service.SignupInput{Name: req.Name, Email: req.Email, Phone: req.Phone})
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, &UserResponse{User: user})
}

func (h *AuthHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req SendOTPRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	if err := h.auth.SendOTP(ctx, req.Email); err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]bool{"sent": true})
}

func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req VerifyOTPRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	user, err := h.auth.VerifyOTP(ctx, req.Email, req.Code)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, &UserResponse{User: user})
}
