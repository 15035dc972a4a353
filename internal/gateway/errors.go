package gateway

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	cartapp "github.com/econext/storefront/internal/cart/app"
	catalogapp "github.com/econext/storefront/internal/catalog/app"
	checkoutapp "github.com/econext/storefront/internal/checkout/app"
	checkoutdomain "github.com/econext/storefront/internal/checkout/domain"
	"github.com/econext/storefront/internal/commerce"
	predictionapp "github.com/econext/storefront/internal/prediction/app"
	"github.com/econext/storefront/pkg/money"
)

type errorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type errorView struct {
	Error errorBody `json:"error"`
}

func (s *Server) respondError(c *gin.Context, status int, code, message string, fields map[string]string) {
	c.AbortWithStatusJSON(status, errorView{Error: errorBody{
		Code:    code,
		Message: message,
		Fields:  fields,
	}})
}

// renderError translates domain and upstream errors into stable HTTP
// shapes. Upstream statuses pass through except 5xx, which become
// 502: the client's fault line is between this gateway and the
// commerce API, not inside it.
func (s *Server) renderError(c *gin.Context, err error) {
	var fields checkoutdomain.FieldErrors
	if errors.As(err, &fields) {
		s.respondError(c, http.StatusUnprocessableEntity, "VALIDATION", "validation failed", fields)
		return
	}

	var apiErr *commerce.APIError
	if errors.As(err, &apiErr) {
		status := apiErr.StatusCode
		if status >= http.StatusInternalServerError {
			status = http.StatusBadGateway
		}
		s.respondError(c, status, "UPSTREAM", apiErr.Message, apiErr.Fields)
		return
	}

	status, code := httpStatusFromErr(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", slog.Any("error", err))
		message = "internal error"
	}
	s.respondError(c, status, code, message, nil)
}

func (s *Server) renderBindError(c *gin.Context, err error) {
	s.respondError(c, http.StatusBadRequest, "INVALID_ARGUMENT", err.Error(), nil)
}

func httpStatusFromErr(err error) (int, string) {
	switch {
	case errors.Is(err, checkoutapp.ErrNotAuthenticated):
		return http.StatusUnauthorized, "UNAUTHENTICATED"
	case errors.Is(err, checkoutapp.ErrEmptyCart):
		return http.StatusConflict, "EMPTY_CART"
	case errors.Is(err, catalogapp.ErrSuperseded):
		return http.StatusConflict, "SUPERSEDED"
	case errors.Is(err, cartapp.ErrInvalidQuantity),
		errors.Is(err, cartapp.ErrCurrencyMismatch),
		errors.Is(err, money.ErrInvalidAmount),
		errors.Is(err, money.ErrCurrencyMismatch),
		errors.Is(err, predictionapp.ErrNilRecord),
		errors.Is(err, predictionapp.ErrInvalidPrice):
		return http.StatusBadRequest, "INVALID_ARGUMENT"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "TIMEOUT"
	default:
		return http.StatusInternalServerError, "INTERNAL"
	}
}
