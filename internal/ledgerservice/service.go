// Package ledgerservice manages business logic layer of money movement.
package ledgerservice

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/kifaa/ledger-core/internal/domain"
	"github.com/kifaa/ledger-core/internal/walletdelivery"
	"github.com/kifaa/ledger-core/pkg/errorspkg"
	"github.com/kifaa/ledger-core/pkg/retrypkg"
)

// Repo provides data access layer interface needed by ledger service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package ledgerservice
type Repo interface {
	Deposit(ctx context.Context, walletID string, amount int64, description string) (domain.MoveResult, error)
	Withdraw(ctx context.Context, walletID string, amount int64, description string) (domain.MoveResult, error)
	Transfer(ctx context.Context, arg domain.TransferParams) (domain.TransferResult, error)
}

// TransactionRepo provides transaction log access needed by ledger service layer.
type TransactionRepo interface {
	Create(ctx context.Context, arg domain.CreateTransactionParams) (domain.Transaction, error)
	ListByUser(ctx context.Context, ownerID string, limit, offset int32) ([]domain.Transaction, error)
}

// Service facilitates ledger service layer logic.
type Service struct {
	repo          Repo
	transactions  TransactionRepo
	walletService walletdelivery.Service
}

// New returns ledger service struct to manage money movement business logic.
func New(lr Repo, tr TransactionRepo, ws walletdelivery.Service) *Service {
	return &Service{
		repo:          lr,
		transactions:  tr,
		walletService: ws,
	}
}

// Deposit credits the user's wallet for the given currency.
func (s *Service) Deposit(ctx context.Context, userID string, amount int64, currency, description string) (domain.MoveResult, error) {
	if amount <= 0 {
		return domain.MoveResult{}, domain.ErrInvalidAmount
	}

	wallet, err := s.walletService.GetByOwner(ctx, userID, currency)
	if err != nil {
		return domain.MoveResult{}, err
	}

	if wallet.Status != domain.WalletOpen {
		return domain.MoveResult{}, domain.ErrWalletClosed
	}

	var result domain.MoveResult

	err = s.retryConflicts(ctx, func() error {
		var err error
		result, err = s.repo.Deposit(ctx, wallet.ID, amount, description)

		return err
	})

	return result, err
}

// Withdraw debits the user's wallet for the given currency. A withdrawal
// rejected for insufficient balance is appended to the log as a failed
// transaction so scoring can observe the bounce.
func (s *Service) Withdraw(ctx context.Context, userID string, amount int64, currency, description string) (domain.MoveResult, error) {
	if amount <= 0 {
		return domain.MoveResult{}, domain.ErrInvalidAmount
	}

	wallet, err := s.walletService.GetByOwner(ctx, userID, currency)
	if err != nil {
		return domain.MoveResult{}, err
	}

	if wallet.Status != domain.WalletOpen {
		return domain.MoveResult{}, domain.ErrWalletClosed
	}

	var result domain.MoveResult

	err = s.retryConflicts(ctx, func() error {
		var err error
		result, err = s.repo.Withdraw(ctx, wallet.ID, amount, description)

		return err
	})

	if errors.Is(err, domain.ErrInsufficientBalance) {
		s.recordBounce(ctx, wallet, amount, description)
	}

	return result, err
}

// Transfer moves money from the sender's wallet of the given currency into
// the recipient wallet identified by id. Both legs commit atomically or
// neither does.
func (s *Service) Transfer(ctx context.Context, senderID, recipientWalletID string, amount int64, currency, description string) (domain.TransferResult, error) {
	l := zerolog.Ctx(ctx)

	if amount <= 0 {
		return domain.TransferResult{}, domain.ErrInvalidAmount
	}

	senderWallet, err := s.walletService.GetByOwner(ctx, senderID, currency)
	if err != nil {
		return domain.TransferResult{}, err
	}

	if senderWallet.Status != domain.WalletOpen {
		return domain.TransferResult{}, domain.ErrWalletClosed
	}

	if senderWallet.Balance < amount {
		return domain.TransferResult{}, domain.ErrInsufficientBalance
	}

	recipientWallet, err := s.walletService.Get(ctx, recipientWalletID)
	if err != nil {
		if errors.Is(err, domain.ErrWalletNotFound) {
			return domain.TransferResult{}, domain.ErrInvalidRecipient
		}

		return domain.TransferResult{}, err
	}

	if recipientWallet.Status != domain.WalletOpen || recipientWallet.ID == senderWallet.ID {
		return domain.TransferResult{}, domain.ErrInvalidRecipient
	}

	if senderWallet.Currency != recipientWallet.Currency {
		l.Warn().Str("sender", senderWallet.ID).Str("recipient", recipientWallet.ID).Msg("currency mismatch")
		return domain.TransferResult{}, domain.ErrCurrencyMismatch
	}

	var result domain.TransferResult

	err = s.retryConflicts(ctx, func() error {
		var err error
		result, err = s.repo.Transfer(ctx, domain.TransferParams{
			SenderWalletID:    senderWallet.ID,
			RecipientWalletID: recipientWallet.ID,
			Amount:            amount,
			Currency:          currency,
			Description:       description,
		})

		return err
	})

	return result, err
}

// ListTransactions returns the user's transactions ordered by created_at
// descending.
func (s *Service) ListTransactions(ctx context.Context, userID string, pageSize, pageID int32) ([]domain.Transaction, error) {
	limit := pageSize
	offset := (pageID - 1) * pageSize

	return s.transactions.ListByUser(ctx, userID, limit, offset)
}

// retryConflicts re-executes fn on lost serialization races only; exhausted
// retries surface as an internal error for the caller to retry with backoff.
func (s *Service) retryConflicts(ctx context.Context, fn func() error) error {
	err := retrypkg.Do(ctx, retrypkg.DefaultRetries, func(err error) bool {
		return errors.Is(err, domain.ErrConcurrencyConflict)
	}, fn)

	if errors.Is(err, domain.ErrConcurrencyConflict) {
		return errorspkg.ErrInternal
	}

	return err
}

// recordBounce appends a failed withdrawal row. Best effort: a logging
// failure must not mask the insufficient-balance error.
func (s *Service) recordBounce(ctx context.Context, wallet domain.Wallet, amount int64, description string) {
	l := zerolog.Ctx(ctx)

	_, err := s.transactions.Create(ctx, domain.CreateTransactionParams{
		WalletID:    wallet.ID,
		Type:        domain.TransactionWithdraw,
		Amount:      amount,
		Currency:    wallet.Currency,
		Description: description,
		Status:      domain.TransactionFailed,
	})
	if err != nil {
		l.Error().Err(err).Msg("recording failed withdrawal")
	}
}
