// Package domain provides definitions of all entities.
package domain

import (
	"errors"
	"time"
)

var (
	// ErrWalletNotFound indicates that the wallet is not found.
	ErrWalletNotFound = errors.New("wallet not found")
	// ErrWalletClosed indicates that the wallet has been soft-closed.
	ErrWalletClosed = errors.New("wallet is closed")
	// ErrCurrencyAlreadyExists indicates that the user already has a wallet with the given currency.
	ErrCurrencyAlreadyExists = errors.New("wallet currency already exists")
	// ErrInsufficientBalance indicates that the wallet does not have sufficient balance.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrCurrencyMismatch indicates that the wallets involved have different currencies.
	ErrCurrencyMismatch = errors.New("wallets currency mismatch")
	// ErrInvalidRecipient indicates that the recipient wallet is absent or closed.
	ErrInvalidRecipient = errors.New("invalid recipient")
	// ErrConcurrencyConflict indicates a lost serialization race; the operation is safe to retry.
	ErrConcurrencyConflict = errors.New("concurrent update conflict")
)

// WalletStatus is the lifecycle status of a wallet.
type WalletStatus string

// Wallets are never deleted, only soft-closed.
const (
	WalletOpen   WalletStatus = "open"
	WalletClosed WalletStatus = "closed"
)

// Wallet holds user balance data for a specific currency.
//
// Balance is stored in integer minor currency units and always equals the
// sum of the signed amounts of all committed transactions referencing the
// wallet. Version bumps on every balance write.
type Wallet struct {
	ID        string       `json:"id"`
	OwnerID   string       `json:"owner_id"`
	Currency  string       `json:"currency"`
	Balance   int64        `json:"balance"`
	Version   int64        `json:"version"`
	Status    WalletStatus `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
}
