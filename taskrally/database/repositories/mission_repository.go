package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/taskrally/taskrally-backend/taskrally/database/models"
	"github.com/uptrace/bun"
)

var ErrMissionFull = errors.New("mission has no remaining slots")

type MissionRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Mission, error)
	GetTx(ctx context.Context, tx bun.Tx, id int64) (*models.Mission, error)
	// TakeSlotTx atomically claims one slot. The conditional update is the
	// serialization point that prevents overselling under concurrent accepts:
	// zero rows updated means the mission was already full.
	TakeSlotTx(ctx context.Context, tx bun.Tx, missionID int64) (slotsTaken, slotsMax int, err error)
	CloseTx(ctx context.Context, tx bun.Tx, missionID int64) error
}

type missionRepository struct {
	*BaseRepository
}

func NewMissionRepository(db *bun.DB) MissionRepository {
	return &missionRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *missionRepository) GetByID(ctx context.Context, id int64) (*models.Mission, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	mission := new(models.Mission)
	err := r.db.NewSelect().Model(mission).Where("m.id = ?", id).Scan(ctx)
	if err != nil {
		return nil, r.HandleError("get", "mission", id, err)
	}
	return mission, nil
}

func (r *missionRepository) GetTx(ctx context.Context, tx bun.Tx, id int64) (*models.Mission, error) {
	mission := new(models.Mission)
	err := tx.NewSelect().Model(mission).Where("m.id = ?", id).Scan(ctx)
	if err != nil {
		return nil, r.HandleError("get", "mission", id, err)
	}
	return mission, nil
}

func (r *missionRepository) TakeSlotTx(ctx context.Context, tx bun.Tx, missionID int64) (int, int, error) {
	var taken, max int
	err := tx.NewRaw(
		`UPDATE missions
		 SET slots_taken = slots_taken + 1, updated_at = ?
		 WHERE id = ? AND slots_taken < slots_max
		 RETURNING slots_taken, slots_max`,
		time.Now(), missionID,
	).Scan(ctx, &taken, &max)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, 0, ErrMissionFull
		}
		return 0, 0, r.HandleError("take_slot", "mission", missionID, err)
	}
	return taken, max, nil
}

func (r *missionRepository) CloseTx(ctx context.Context, tx bun.Tx, missionID int64) error {
	_, err := tx.NewUpdate().
		Model((*models.Mission)(nil)).
		Set("status = ?", models.MissionStatusClosed).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", missionID).
		Exec(ctx)
	return r.HandleError("close", "mission", missionID, err)
}
