package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/fjod/saree_store/internal/cache"
	"github.com/fjod/saree_store/internal/domain"
	"github.com/fjod/saree_store/internal/logger"
	"github.com/fjod/saree_store/internal/payment"
	"github.com/fjod/saree_store/internal/repository"
	"github.com/fjod/saree_store/internal/service"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json field names in validation errors
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Error("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// decodeJSON reads the body into dst and runs its validate tags.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			respondError(w, http.StatusRequestEntityTooLarge, "body_too_large", "request body too large")
			return false
		}
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.SplitN(fe.Namespace(), ".", 2)
		name := field[len(field)-1]
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s must satisfy %s=%s", name, fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s must satisfy %s", name, fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}

// handleServiceError maps domain and infrastructure errors onto HTTP statuses.
func handleServiceError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, repository.ErrProductNotFound):
		respondError(w, http.StatusNotFound, "product_not_found", err.Error())
	case errors.Is(err, repository.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, "order_not_found", err.Error())
	case errors.Is(err, repository.ErrNotificationNotFound):
		respondError(w, http.StatusNotFound, "notification_not_found", err.Error())
	case errors.Is(err, repository.ErrUserNotFound):
		respondError(w, http.StatusNotFound, "user_not_found", err.Error())
	case errors.Is(err, service.ErrCartItemNotFound):
		respondError(w, http.StatusNotFound, "cart_item_not_found", err.Error())

	case errors.Is(err, repository.ErrUserExists):
		respondError(w, http.StatusConflict, "user_exists", err.Error())
	case errors.Is(err, repository.ErrRatingConflict):
		respondError(w, http.StatusConflict, "conflict", "product was rated concurrently, try again")
	case errors.Is(err, service.ErrOrderPaid):
		respondError(w, http.StatusConflict, "order_paid", err.Error())
	case errors.Is(err, repository.ErrGatewayOrderBound):
		respondError(w, http.StatusConflict, "payment_mismatch", err.Error())

	case errors.Is(err, service.ErrInvalidSignature):
		respondError(w, http.StatusBadRequest, "invalid_signature", err.Error())
	case errors.Is(err, service.ErrPaymentMismatch):
		respondError(w, http.StatusBadRequest, "payment_mismatch", err.Error())
	case errors.Is(err, domain.ErrInvalidProduct),
		errors.Is(err, domain.ErrInvalidOrder),
		errors.Is(err, domain.ErrInvalidRating),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrAmountMismatch),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrUnknownColor),
		errors.Is(err, service.ErrInvalidSignup):
		respondError(w, http.StatusBadRequest, "invalid_request", strings.ReplaceAll(err.Error(), "\n", ": "))

	case errors.Is(err, service.ErrInvalidOTP):
		respondError(w, http.StatusUnauthorized, "invalid_otp", err.Error())
	case errors.Is(err, cache.ErrOTPTooManyAttempts):
		respondError(w, http.StatusTooManyRequests, "too_many_attempts", "too many attempts, request a new code")

	case errors.Is(err, service.ErrPaymentsDisabled):
		respondError(w, http.StatusServiceUnavailable, "payments_disabled", "online payments are not available")
	case errors.Is(err, payment.ErrCircuitOpen):
		respondError(w, http.StatusServiceUnavailable, "gateway_unavailable", "payment gateway temporarily unavailable")
	case errors.Is(err, payment.ErrGatewayUnavailable):
		logger.FromContext(r.Context(), log).Error("payment gateway error", zap.Error(err))
		respondError(w, http.StatusBadGateway, "gateway_error", "payment gateway error")

	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, "timeout", "request timeout")
	case errors.Is(err, context.Canceled):
		respondError(w, http.StatusServiceUnavailable, "unavailable", "request cancelled")
	default:
		logger.FromContext(r.Context(), log).Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
