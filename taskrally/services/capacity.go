package services

import (
	"context"
	"errors"

	"github.com/taskrally/taskrally-backend/taskrally/database/repositories"
	"github.com/uptrace/bun"
)

// CapacityTracker enforces slots_taken <= slots_max on missions and closes a
// mission the moment its last slot is taken.
type CapacityTracker struct {
	missions repositories.MissionRepository
}

func NewCapacityTracker(missions repositories.MissionRepository) *CapacityTracker {
	return &CapacityTracker{missions: missions}
}

// ApplyAcceptance claims one slot inside the enclosing transaction and closes
// the mission when it fills up. A full mission surfaces as a ConflictError so
// the loser of a capacity race gets a caller-correctable failure.
func (t *CapacityTracker) ApplyAcceptance(ctx context.Context, tx bun.Tx, missionID int64) (closed bool, err error) {
	taken, max, err := t.missions.TakeSlotTx(ctx, tx, missionID)
	if err != nil {
		if errors.Is(err, repositories.ErrMissionFull) {
			return false, &repositories.ConflictError{Entity: "mission", Reason: "no slots remaining", Err: err}
		}
		return false, err
	}

	if taken >= max {
		if err := t.missions.CloseTx(ctx, tx, missionID); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}
