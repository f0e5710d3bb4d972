package domain

import (
	"errors"
	"time"
)

var (
	// ErrInvalidAmount indicates a non-positive amount.
	ErrInvalidAmount = errors.New("amount must be positive")
	// ErrTransactionNotFound indicates that the transaction is not found.
	ErrTransactionNotFound = errors.New("transaction not found")
)

// TransactionType classifies a balance-changing event.
type TransactionType string

// Transaction types. A transfer produces a linked pair: a TransferOut row on
// the sender wallet and a TransferIn row on the recipient wallet sharing a
// correlation id.
const (
	TransactionDeposit     TransactionType = "deposit"
	TransactionWithdraw    TransactionType = "withdraw"
	TransactionTransferOut TransactionType = "transfer_out"
	TransactionTransferIn  TransactionType = "transfer_in"
)

// TransactionStatus marks whether the event committed.
type TransactionStatus string

// Only committed transactions contribute to the wallet balance. Failed rows
// are kept for audit and scoring (withdrawal bounce rate).
const (
	TransactionCommitted TransactionStatus = "committed"
	TransactionFailed    TransactionStatus = "failed"
)

// SignedAmount returns the amount with the sign implied by the transaction type.
func (t TransactionType) SignedAmount(amount int64) int64 {
	if t == TransactionWithdraw || t == TransactionTransferOut {
		return -amount
	}

	return amount
}

// Transaction is an immutable record of a single balance-changing event.
type Transaction struct {
	ID                   string            `json:"id"`
	WalletID             string            `json:"wallet_id"`
	CounterpartyWalletID string            `json:"counterparty_wallet_id,omitempty"`
	CorrelationID        string            `json:"correlation_id,omitempty"`
	Type                 TransactionType   `json:"type"`
	Amount               int64             `json:"amount"` // positive minor units
	Currency             string            `json:"currency"`
	Description          string            `json:"description,omitempty"`
	Status               TransactionStatus `json:"status"`
	CreatedAt            time.Time         `json:"created_at"`
}

// CreateTransactionParams is the input data to append a transaction row.
type CreateTransactionParams struct {
	WalletID             string
	CounterpartyWalletID string
	CorrelationID        string
	Type                 TransactionType
	Amount               int64
	Currency             string
	Description          string
	Status               TransactionStatus
}

// MoveResult is the result of a single-wallet ledger operation.
type MoveResult struct {
	Transaction Transaction `json:"transaction"`
	Wallet      Wallet      `json:"wallet"`
}

// TransferParams is the input data for the transfer transaction.
type TransferParams struct {
	SenderWalletID    string
	RecipientWalletID string
	Amount            int64
	Currency          string
	Description       string
}

// TransferResult is the result of the transfer transaction.
type TransferResult struct {
	Outgoing        Transaction `json:"outgoing"`
	Incoming        Transaction `json:"incoming"`
	SenderWallet    Wallet      `json:"sender_wallet"`
	RecipientWallet Wallet      `json:"recipient_wallet"`
}
