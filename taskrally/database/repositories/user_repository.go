package repositories

import (
	"context"
	"time"

	"github.com/taskrally/taskrally-backend/taskrally/database/models"
	"github.com/uptrace/bun"
)

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	// GetTx loads a user inside the caller's transaction so decisions derived
	// from the row (privacy default, role) see the transaction's snapshot.
	GetTx(ctx context.Context, tx bun.Tx, id int64) (*models.User, error)
	GetByToken(ctx context.Context, token string) (*models.User, error)
	// AddExperienceTx bumps the three cumulative counters in place. Deltas may
	// be zero; they are never negative on this path.
	AddExperienceTx(ctx context.Context, tx bun.Tx, userID, global, online, onsite int64) error
}

type userRepository struct {
	*BaseRepository
}

func NewUserRepository(db *bun.DB) UserRepository {
	return &userRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	user := new(models.User)
	err := r.db.NewSelect().Model(user).Where("u.id = ?", id).Scan(ctx)
	if err != nil {
		return nil, r.HandleError("get", "user", id, err)
	}
	return user, nil
}

func (r *userRepository) GetTx(ctx context.Context, tx bun.Tx, id int64) (*models.User, error) {
	user := new(models.User)
	err := tx.NewSelect().Model(user).Where("u.id = ?", id).Scan(ctx)
	if err != nil {
		return nil, r.HandleError("get", "user", id, err)
	}
	return user, nil
}

func (r *userRepository) GetByToken(ctx context.Context, token string) (*models.User, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	user := new(models.User)
	err := r.db.NewSelect().Model(user).Where("u.api_token = ?", token).Scan(ctx)
	if err != nil {
		return nil, r.HandleError("get_by_token", "user", "token", err)
	}
	return user, nil
}

func (r *userRepository) AddExperienceTx(ctx context.Context, tx bun.Tx, userID, global, online, onsite int64) error {
	res, err := tx.NewUpdate().
		Model((*models.User)(nil)).
		Set("xp = xp + ?", global).
		Set("online_xp = online_xp + ?", online).
		Set("onsite_xp = onsite_xp + ?", onsite).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", userID).
		Exec(ctx)
	if err != nil {
		return r.HandleError("add_experience", "user", userID, err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return &NotFoundError{Entity: "user", ID: userID}
	}
	return nil
}
