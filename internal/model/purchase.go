package model

import (
	"time"

	"github.com/google/uuid"
)

// PurchaseStatus enumerates payment lifecycle states.
type PurchaseStatus string

const (
	PurchaseStatusCreated PurchaseStatus = "CREATED"
	PurchaseStatusPaid    PurchaseStatus = "PAID"
)

// Purchase records one Razorpay order for a test pack.
type Purchase struct {
	ID              uuid.UUID      `json:"id"`
	UserID          int            `json:"user_id"`
	PackID          int64          `json:"pack_id"`
	RazorpayOrderID string         `json:"razorpay_order_id"`
	PaymentID       *string        `json:"payment_id,omitempty"`
	AmountPaise     int64          `json:"amount_paise"`
	Status          PurchaseStatus `json:"status"`
	CreatedAt       time.Time      `json:"created_at"`
	PaidAt          *time.Time     `json:"paid_at,omitempty"`
}

// CreateOrderRequest is the payload for creating a Razorpay order.
type CreateOrderRequest struct {
	PackID int64 `json:"pack_id" binding:"required"`
}

// CreateOrderResponse carries what the checkout widget needs.
type CreateOrderResponse struct {
	PurchaseID      uuid.UUID `json:"purchase_id"`
	RazorpayOrderID string    `json:"razorpay_order_id"`
	RazorpayKeyID   string    `json:"razorpay_key_id"`
	AmountPaise     int64     `json:"amount_paise"`
	Currency        string    `json:"currency"`
}

// CapturePaymentRequest is the payload reported back by the checkout widget.
type CapturePaymentRequest struct {
	PurchaseID uuid.UUID `json:"purchase_id" binding:"required"`
	PaymentID  string    `json:"payment_id" binding:"required,max=64"`
}
