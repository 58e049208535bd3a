package repositories

import (
	"context"

	"github.com/taskrally/taskrally-backend/taskrally/database/models"
	"github.com/uptrace/bun"
)

type ThreadRepository interface {
	// UpsertTx creates the thread for a submission if it does not exist yet
	// and returns the surviving row either way. Idempotent under the unique
	// submission_id constraint: a concurrent insert resolves to a no-op.
	UpsertTx(ctx context.Context, tx bun.Tx, thread *models.Thread) (*models.Thread, error)
	GetBySubmissionID(ctx context.Context, submissionID int64) (*models.Thread, error)
}

type threadRepository struct {
	*BaseRepository
}

func NewThreadRepository(db *bun.DB) ThreadRepository {
	return &threadRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *threadRepository) UpsertTx(ctx context.Context, tx bun.Tx, thread *models.Thread) (*models.Thread, error) {
	_, err := tx.NewInsert().
		Model(thread).
		On("CONFLICT (submission_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return nil, r.HandleError("upsert", "thread", thread.SubmissionID, err)
	}

	// Reread so callers always see the persisted row, including the ID of a
	// thread created by an earlier call.
	existing := new(models.Thread)
	err = tx.NewSelect().
		Model(existing).
		Where("t.submission_id = ?", thread.SubmissionID).
		Scan(ctx)
	if err != nil {
		return nil, r.HandleError("upsert", "thread", thread.SubmissionID, err)
	}
	return existing, nil
}

func (r *threadRepository) GetBySubmissionID(ctx context.Context, submissionID int64) (*models.Thread, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	thread := new(models.Thread)
	err := r.db.NewSelect().
		Model(thread).
		Where("t.submission_id = ?", submissionID).
		Scan(ctx)
	if err != nil {
		return nil, r.HandleError("get", "thread", submissionID, err)
	}
	return thread, nil
}
