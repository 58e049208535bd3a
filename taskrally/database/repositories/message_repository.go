package repositories

import (
	"context"

	"github.com/taskrally/taskrally-backend/taskrally/database/models"
	"github.com/uptrace/bun"
)

type MessageRepository interface {
	InsertTx(ctx context.Context, tx bun.Tx, message *models.Message) error
	GetByThreadID(ctx context.Context, threadID int64) ([]*models.Message, error)
}

type messageRepository struct {
	*BaseRepository
}

func NewMessageRepository(db *bun.DB) MessageRepository {
	return &messageRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *messageRepository) InsertTx(ctx context.Context, tx bun.Tx, message *models.Message) error {
	_, err := tx.NewInsert().Model(message).Exec(ctx)
	return r.HandleError("insert", "message", message.ThreadID, err)
}

func (r *messageRepository) GetByThreadID(ctx context.Context, threadID int64) ([]*models.Message, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	var messages []*models.Message
	err := r.db.NewSelect().
		Model(&messages).
		Where("msg.thread_id = ?", threadID).
		Order("msg.created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, r.HandleError("list", "message", threadID, err)
	}
	return messages, nil
}
