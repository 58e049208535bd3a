package repositories

import (
	"context"

	"github.com/taskrally/taskrally-backend/taskrally/database/models"
	"github.com/uptrace/bun"
)

type LedgerRepository interface {
	// InsertTx appends entries to the ledger. The table is append-only; there
	// is deliberately no update or delete on this interface.
	InsertTx(ctx context.Context, tx bun.Tx, entries []*models.LedgerEntry) error
	GetByUserID(ctx context.Context, userID int64) ([]*models.LedgerEntry, error)
}

type ledgerRepository struct {
	*BaseRepository
}

func NewLedgerRepository(db *bun.DB) LedgerRepository {
	return &ledgerRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *ledgerRepository) InsertTx(ctx context.Context, tx bun.Tx, entries []*models.LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}
	_, err := tx.NewInsert().Model(&entries).Exec(ctx)
	return r.HandleError("insert", "ledger_entry", nil, err)
}

func (r *ledgerRepository) GetByUserID(ctx context.Context, userID int64) ([]*models.LedgerEntry, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	var entries []*models.LedgerEntry
	err := r.db.NewSelect().
		Model(&entries).
		Where("le.user_id = ?", userID).
		Order("le.created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, r.HandleError("list", "ledger_entry", userID, err)
	}
	return entries, nil
}
