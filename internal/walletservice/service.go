// Package walletservice manages business logic layer of wallets.
package walletservice

import (
	"context"

	"github.com/kifaa/ledger-core/internal/domain"
)

// Repo provides data access layer interface needed by wallet service layer.
type Repo interface {
	Create(ctx context.Context, ownerID, currency string) (domain.Wallet, error)
	Get(ctx context.Context, id string) (domain.Wallet, error)
	GetByOwner(ctx context.Context, ownerID, currency string) (domain.Wallet, error)
	List(ctx context.Context, ownerID string) ([]domain.Wallet, error)
	Close(ctx context.Context, id string) (domain.Wallet, error)
}

// Service facilitates wallet service layer logic.
type Service struct {
	repo Repo
}

// New returns wallet service struct to manage wallet business logic.
func New(wr Repo) *Service {
	return &Service{repo: wr}
}

// Create creates and returns an empty wallet for the given owner and currency.
func (s *Service) Create(ctx context.Context, ownerID, currency string) (domain.Wallet, error) {
	return s.repo.Create(ctx, ownerID, currency)
}

// Get returns the wallet with the given id.
func (s *Service) Get(ctx context.Context, id string) (domain.Wallet, error) {
	return s.repo.Get(ctx, id)
}

// GetByOwner returns the owner's wallet for the given currency.
func (s *Service) GetByOwner(ctx context.Context, ownerID, currency string) (domain.Wallet, error) {
	return s.repo.GetByOwner(ctx, ownerID, currency)
}

// List returns all wallets owned by the given user.
func (s *Service) List(ctx context.Context, ownerID string) ([]domain.Wallet, error) {
	return s.repo.List(ctx, ownerID)
}

// Close soft-closes the wallet with the given id.
func (s *Service) Close(ctx context.Context, id string) (domain.Wallet, error) {
	return s.repo.Close(ctx, id)
}
