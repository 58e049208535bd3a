package repositories

import (
	"context"

	"github.com/taskrally/taskrally-backend/taskrally/database/models"
	"github.com/uptrace/bun"
)

type FollowRepository interface {
	Exists(ctx context.Context, followerID, organizationID int64) (bool, error)
	// ExistsTx answers the same question under the caller's transaction, for
	// decisions that must see the transaction's snapshot.
	ExistsTx(ctx context.Context, tx bun.Tx, followerID, organizationID int64) (bool, error)
}

type followRepository struct {
	*BaseRepository
}

func NewFollowRepository(db *bun.DB) FollowRepository {
	return &followRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *followRepository) Exists(ctx context.Context, followerID, organizationID int64) (bool, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	exists, err := r.db.NewSelect().
		Model((*models.Follow)(nil)).
		Where("f.follower_id = ?", followerID).
		Where("f.organization_id = ?", organizationID).
		Exists(ctx)
	if err != nil {
		return false, r.HandleError("exists", "follow", followerID, err)
	}
	return exists, nil
}

func (r *followRepository) ExistsTx(ctx context.Context, tx bun.Tx, followerID, organizationID int64) (bool, error) {
	exists, err := tx.NewSelect().
		Model((*models.Follow)(nil)).
		Where("f.follower_id = ?", followerID).
		Where("f.organization_id = ?", organizationID).
		Exists(ctx)
	if err != nil {
		return false, r.HandleError("exists", "follow", followerID, err)
	}
	return exists, nil
}
