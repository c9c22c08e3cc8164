package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/rtagency/mocktest-backend/internal/middleware"
	"github.com/rtagency/mocktest-backend/internal/model"
	"github.com/rtagency/mocktest-backend/internal/response"
	"github.com/rtagency/mocktest-backend/internal/service"
	"github.com/rtagency/mocktest-backend/internal/validator"
)

// PaymentHandler handles pack purchases through the payment gateway.
type PaymentHandler struct {
	paymentService *service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// CreateOrder godoc
// POST /api/v1/payments/orders
// Creates a gateway order for a paid pack and returns what the checkout
// widget needs to open.
func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.CreateOrderRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	order, err := h.paymentService.CreateOrder(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrPackIsFree):
			response.Fail(c, http.StatusConflict, response.ErrPackIsFree)
		case errors.Is(err, service.ErrPackUnavailable):
			response.Fail(c, http.StatusConflict, response.ErrPackUnavailable)
		default:
			response.Fail(c, http.StatusBadGateway, response.ErrGatewayFailure)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"order": order})
}

// CapturePayment godoc
// POST /api/v1/payments/capture
// Marks a purchase paid after the checkout widget reports success.
// Safe to call more than once for the same purchase.
func (h *PaymentHandler) CapturePayment(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.CapturePaymentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	purchase, err := h.paymentService.CapturePayment(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrPurchaseMismatch):
			response.Fail(c, http.StatusForbidden, response.ErrPurchaseMismatch)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"purchase": purchase})
}

// ListPurchases godoc
// GET /api/v1/payments/purchases
// Returns the calling user's purchase history.
func (h *PaymentHandler) ListPurchases(c *gin.Context) {
	claims := middleware.GetClaims(c)

	purchases, err := h.paymentService.ListPurchases(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"purchases": purchases})
}
