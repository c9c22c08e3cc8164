package model

import "time"

// TestPack represents a purchasable bundle of mock tests.
// A pack with PricePaise == 0 is free and needs no purchase record.
type TestPack struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ExamType    string    `json:"exam_type"`
	PricePaise  int64     `json:"price_paise"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreatePackRequest is the payload for creating a test pack.
type CreatePackRequest struct {
	Title       string `json:"title" binding:"required,min=3,max=255"`
	Description string `json:"description" binding:"omitempty,max=2000"`
	ExamType    string `json:"exam_type" binding:"required,oneof=jee_main mht_cet"`
	PricePaise  int64  `json:"price_paise" binding:"min=0"`
}

// UpdatePackRequest is the payload for updating a test pack.
type UpdatePackRequest struct {
	Title       string `json:"title" binding:"omitempty,min=3,max=255"`
	Description string `json:"description" binding:"omitempty,max=2000"`
	PricePaise  *int64 `json:"price_paise" binding:"omitempty,min=0"`
	Active      *bool  `json:"active" binding:"omitempty"`
}
