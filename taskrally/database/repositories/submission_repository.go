package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/taskrally/taskrally-backend/taskrally/database/models"
	"github.com/uptrace/bun"
)

var ErrSubmissionDecided = errors.New("submission already decided")

type SubmissionRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Submission, error)
	// GetForUpdateTx loads the bare submission row under a row lock so the
	// PENDING guard holds against concurrent decisions.
	GetForUpdateTx(ctx context.Context, tx bun.Tx, id int64) (*models.Submission, error)
	UpdateDecisionTx(ctx context.Context, tx bun.Tx, submission *models.Submission) error
}

type submissionRepository struct {
	*BaseRepository
}

func NewSubmissionRepository(db *bun.DB) SubmissionRepository {
	return &submissionRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *submissionRepository) GetByID(ctx context.Context, id int64) (*models.Submission, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	submission := new(models.Submission)
	err := r.db.NewSelect().
		Model(submission).
		Relation("Mission").
		Where("s.id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, r.HandleError("get", "submission", id, err)
	}
	return submission, nil
}

func (r *submissionRepository) GetForUpdateTx(ctx context.Context, tx bun.Tx, id int64) (*models.Submission, error) {
	submission := new(models.Submission)
	err := tx.NewSelect().
		Model(submission).
		Where("s.id = ?", id).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		return nil, r.HandleError("lock", "submission", id, err)
	}
	return submission, nil
}

func (r *submissionRepository) UpdateDecisionTx(ctx context.Context, tx bun.Tx, submission *models.Submission) error {
	submission.UpdatedAt = time.Now()
	_, err := tx.NewUpdate().
		Model(submission).
		Column("status", "decision_at", "reward_media_ref", "updated_at").
		WherePK().
		Exec(ctx)
	return r.HandleError("update", "submission", submission.ID, err)
}
