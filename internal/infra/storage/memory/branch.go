package memory

import (
	"context"

	"github.com/m04kA/SMC-TableReservation/internal/domain"
	branchRepo "github.com/m04kA/SMC-TableReservation/internal/infra/storage/branch"
)

// BranchRepository филиалы в памяти
type BranchRepository struct {
	store *Store
}

func NewBranchRepository(store *Store) *BranchRepository {
	return &BranchRepository{store: store}
}

func (r *BranchRepository) GetByID(_ context.Context, id int64) (*domain.Branch, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	b, ok := r.store.branches[id]
	if !ok {
		return nil, branchRepo.ErrBranchNotFound
	}
	c := *b
	return &c, nil
}

// GetByIDForUpdate блокировка обеспечивается TxManager
func (r *BranchRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Branch, error) {
	return r.GetByID(ctx, id)
}
