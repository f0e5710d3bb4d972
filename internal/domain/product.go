package domain

import (
	"errors"
	"time"
)

var (
	// ErrProductNotFound indicates that the loan product is not found.
	ErrProductNotFound = errors.New("loan product not found")
	// ErrProductInactive indicates that the loan product is no longer offered.
	ErrProductInactive = errors.New("loan product is inactive")
)

// Product is a read-only loan catalog entry.
type Product struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Tier          Tier      `json:"tier_eligibility"`
	Currency      string    `json:"currency"`
	AnnualRateBps int32     `json:"annual_rate_bps"`
	MinAmount     int64     `json:"min_amount"`
	MaxAmount     int64     `json:"max_amount"`
	MinTermMonths int32     `json:"min_term_months"`
	MaxTermMonths int32     `json:"max_term_months"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
}
