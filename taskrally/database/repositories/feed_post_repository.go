package repositories

import (
	"context"

	"github.com/taskrally/taskrally-backend/taskrally/database/models"
	"github.com/uptrace/bun"
)

type FeedPostRepository interface {
	InsertTx(ctx context.Context, tx bun.Tx, post *models.FeedPost) error
	GetBySubmissionID(ctx context.Context, submissionID int64) (*models.FeedPost, error)
}

type feedPostRepository struct {
	*BaseRepository
}

func NewFeedPostRepository(db *bun.DB) FeedPostRepository {
	return &feedPostRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *feedPostRepository) InsertTx(ctx context.Context, tx bun.Tx, post *models.FeedPost) error {
	_, err := tx.NewInsert().Model(post).Exec(ctx)
	return r.HandleError("insert", "feed_post", post.SubmissionID, err)
}

func (r *feedPostRepository) GetBySubmissionID(ctx context.Context, submissionID int64) (*models.FeedPost, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	post := new(models.FeedPost)
	err := r.db.NewSelect().
		Model(post).
		Where("fp.submission_id = ?", submissionID).
		Scan(ctx)
	if err != nil {
		return nil, r.HandleError("get", "feed_post", submissionID, err)
	}
	return post, nil
}
