// Package ledgerrepo executes atomic money-movement transactions on top of
// the wallet and transaction-log repositories.
package ledgerrepo

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kifaa/ledger-core/internal/domain"
	"github.com/kifaa/ledger-core/internal/transactionrepo"
	"github.com/kifaa/ledger-core/internal/walletrepo"
	"github.com/kifaa/ledger-core/pkg/dbpkg"
	"github.com/kifaa/ledger-core/pkg/errorspkg"
)

// RepoPGS facilitates ledger repository layer logic.
type RepoPGS struct {
	db   dbpkg.SQLInterface
	conn *sql.DB
}

// NewRepoPGS returns ledger RepoPGS with a connection to start transactions.
func NewRepoPGS(conn *sql.DB) *RepoPGS {
	return &RepoPGS{
		db:   conn,
		conn: conn,
	}
}

// NewTxRepoPGS returns ledger RepoPGS scoped to an enclosing database
// transaction. Used by callers that must commit ledger writes together with
// their own state, such as loan disbursement and repayment.
func NewTxRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

// Deposit credits the wallet and appends the committed deposit row. Both
// writes commit atomically or not at all.
func (r *RepoPGS) Deposit(ctx context.Context, walletID string, amount int64, description string) (domain.MoveResult, error) {
	var result domain.MoveResult

	err := r.within(ctx, func(q dbpkg.SQLInterface) error {
		var err error
		result, err = applyMove(ctx, q, walletID, amount, domain.TransactionDeposit, description)

		return err
	})

	return result, err
}

// Withdraw debits the wallet and appends the committed withdraw row. The
// overdraft constraint surfaces as domain.ErrInsufficientBalance and aborts
// the whole transaction.
func (r *RepoPGS) Withdraw(ctx context.Context, walletID string, amount int64, description string) (domain.MoveResult, error) {
	var result domain.MoveResult

	err := r.within(ctx, func(q dbpkg.SQLInterface) error {
		var err error
		result, err = applyMove(ctx, q, walletID, amount, domain.TransactionWithdraw, description)

		return err
	})

	return result, err
}

// Transfer moves money between two wallets.
//
// It updates both balances and appends the linked transfer_out/transfer_in
// pair sharing one correlation id within a single database transaction.
func (r *RepoPGS) Transfer(ctx context.Context, arg domain.TransferParams) (domain.TransferResult, error) {
	var result domain.TransferResult

	err := r.within(ctx, func(q dbpkg.SQLInterface) error {
		var err error
		result, err = applyTransfer(ctx, q, arg)

		return err
	})

	return result, err
}

// within runs fn inside a fresh transaction when the repo owns a connection,
// or directly against the enclosing transaction otherwise.
func (r *RepoPGS) within(ctx context.Context, fn func(q dbpkg.SQLInterface) error) error {
	if r.conn == nil {
		return fn(r.db)
	}

	l := zerolog.Ctx(ctx)

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			l.Error().Err(rbErr).Send()
		}

		return err
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	return nil
}

func applyMove(ctx context.Context, q dbpkg.SQLInterface, walletID string, amount int64, txType domain.TransactionType, description string) (domain.MoveResult, error) {
	var result domain.MoveResult

	walletRepo := walletrepo.NewRepoPGS(q)
	transactionRepo := transactionrepo.NewRepoPGS(q)

	wallet, err := walletRepo.AddBalance(ctx, txType.SignedAmount(amount), walletID)
	if err != nil {
		return result, err
	}

	transaction, err := transactionRepo.Create(ctx, domain.CreateTransactionParams{
		WalletID:    walletID,
		Type:        txType,
		Amount:      amount,
		Currency:    wallet.Currency,
		Description: description,
		Status:      domain.TransactionCommitted,
	})
	if err != nil {
		return result, err
	}

	result.Wallet = wallet
	result.Transaction = transaction

	return result, nil
}

func applyTransfer(ctx context.Context, q dbpkg.SQLInterface, arg domain.TransferParams) (domain.TransferResult, error) {
	var result domain.TransferResult

	walletRepo := walletrepo.NewRepoPGS(q)
	transactionRepo := transactionrepo.NewRepoPGS(q)

	// To avoid deadlocks between concurrent opposite-direction transfers,
	// update balances in ascending wallet id order.
	var err error
	if arg.SenderWalletID < arg.RecipientWalletID {
		if result.SenderWallet, err = walletRepo.AddBalance(ctx, -arg.Amount, arg.SenderWalletID); err != nil {
			return result, err
		}

		if result.RecipientWallet, err = walletRepo.AddBalance(ctx, arg.Amount, arg.RecipientWalletID); err != nil {
			return result, err
		}
	} else {
		if result.RecipientWallet, err = walletRepo.AddBalance(ctx, arg.Amount, arg.RecipientWalletID); err != nil {
			return result, err
		}

		if result.SenderWallet, err = walletRepo.AddBalance(ctx, -arg.Amount, arg.SenderWalletID); err != nil {
			return result, err
		}
	}

	correlationID := uuid.NewString()

	result.Outgoing, err = transactionRepo.Create(ctx, domain.CreateTransactionParams{
		WalletID:             arg.SenderWalletID,
		CounterpartyWalletID: arg.RecipientWalletID,
		CorrelationID:        correlationID,
		Type:                 domain.TransactionTransferOut,
		Amount:               arg.Amount,
		Currency:             arg.Currency,
		Description:          arg.Description,
		Status:               domain.TransactionCommitted,
	})
	if err != nil {
		return result, err
	}

	result.Incoming, err = transactionRepo.Create(ctx, domain.CreateTransactionParams{
		WalletID:             arg.RecipientWalletID,
		CounterpartyWalletID: arg.SenderWalletID,
		CorrelationID:        correlationID,
		Type:                 domain.TransactionTransferIn,
		Amount:               arg.Amount,
		Currency:             arg.Currency,
		Description:          arg.Description,
		Status:               domain.TransactionCommitted,
	})
	if err != nil {
		return result, err
	}

	return result, nil
}
