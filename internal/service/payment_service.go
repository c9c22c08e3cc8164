package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rtagency/mocktest-backend/internal/config"
	"github.com/rtagency/mocktest-backend/internal/model"
	"github.com/rtagency/mocktest-backend/internal/repository"
)

// Payment errors.
var (
	ErrPackIsFree       = errors.New("pack is free, no purchase needed")
	ErrPackUnavailable  = errors.New("pack is not available for purchase")
	ErrPurchaseMismatch = errors.New("purchase does not belong to this user")
)

// PaymentService creates Razorpay orders and records captures. The gateway
// is reached over plain HTTP with basic auth; amounts are in paise
// throughout, matching what Razorpay expects.
type PaymentService struct {
	purchases *repository.PurchaseRepository
	packs     *repository.PackRepository
	cfg       *config.Config
	client    *http.Client
	log       zerolog.Logger
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(purchases *repository.PurchaseRepository, packs *repository.PackRepository, cfg *config.Config, log zerolog.Logger) *PaymentService {
	return &PaymentService{
		purchases: purchases,
		packs:     packs,
		cfg:       cfg,
		client:    &http.Client{Timeout: 10 * time.Second},
		log:       log.With().Str("component", "payment_service").Logger(),
	}
}

type razorpayOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type razorpayOrderResponse struct {
	ID string `json:"id"`
}

// CreateOrder opens a Razorpay order for a pack and records the pending
// purchase.
func (s *PaymentService) CreateOrder(ctx context.Context, userID int, req *model.CreateOrderRequest) (*model.CreateOrderResponse, error) {
	pack, err := s.packs.GetByID(ctx, req.PackID)
	if err != nil {
		return nil, err
	}
	if !pack.Active {
		return nil, ErrPackUnavailable
	}
	if pack.PricePaise == 0 {
		return nil, ErrPackIsFree
	}

	purchaseID := uuid.New()
	orderID, err := s.createRazorpayOrder(ctx, pack.PricePaise, purchaseID.String())
	if err != nil {
		return nil, fmt.Errorf("create gateway order: %w", err)
	}

	purchase := &model.Purchase{
		ID:              purchaseID,
		UserID:          userID,
		PackID:          pack.ID,
		RazorpayOrderID: orderID,
		AmountPaise:     pack.PricePaise,
		Status:          model.PurchaseStatusCreated,
	}
	if err := s.purchases.Create(ctx, purchase); err != nil {
		return nil, err
	}

	s.log.Info().
		Int("user_id", userID).
		Int64("pack_id", pack.ID).
		Str("order_id", orderID).
		Msg("Payment order created")

	return &model.CreateOrderResponse{
		PurchaseID:      purchase.ID,
		RazorpayOrderID: orderID,
		RazorpayKeyID:   s.cfg.RazorpayKeyID,
		AmountPaise:     pack.PricePaise,
		Currency:        "INR",
	}, nil
}

// CapturePayment marks a purchase paid after checkout reports success. The
// underlying update is idempotent, so a replayed capture is harmless.
func (s *PaymentService) CapturePayment(ctx context.Context, userID int, req *model.CapturePaymentRequest) (*model.Purchase, error) {
	purchase, err := s.purchases.GetByID(ctx, req.PurchaseID)
	if err != nil {
		return nil, err
	}
	if purchase.UserID != userID {
		return nil, ErrPurchaseMismatch
	}

	if err := s.purchases.MarkPaid(ctx, purchase.ID, req.PaymentID); err != nil {
		return nil, err
	}

	s.log.Info().
		Int("user_id", userID).
		Str("purchase_id", purchase.ID.String()).
		Msg("Payment captured")

	return s.purchases.GetByID(ctx, purchase.ID)
}

// ListPurchases returns the user's purchase history.
func (s *PaymentService) ListPurchases(ctx context.Context, userID int) ([]model.Purchase, error) {
	return s.purchases.ListByUser(ctx, userID)
}

func (s *PaymentService) createRazorpayOrder(ctx context.Context, amountPaise int64, receipt string) (string, error) {
	body, err := json.Marshal(razorpayOrderRequest{
		Amount:   amountPaise,
		Currency: "INR",
		Receipt:  receipt,
	})
	if err != nil {
		return "", err
	}

	url := s.cfg.RazorpayBaseURL + "/v1/orders"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.SetBasicAuth(s.cfg.RazorpayKeyID, s.cfg.RazorpayKeySecret)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	var order razorpayOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return "", err
	}
	if order.ID == "" {
		return "", errors.New("gateway returned no order id")
	}
	return order.ID, nil
}
