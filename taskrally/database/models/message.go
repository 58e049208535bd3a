package models

import (
	"time"

	"github.com/uptrace/bun"
)

type MessageType string

const (
	MessageTypeText   MessageType = "TEXT"
	MessageTypeCode   MessageType = "CODE"
	MessageTypeReward MessageType = "REWARD"
)

type Message struct {
	bun.BaseModel `bun:"table:messages,alias:msg"`

	ID       int64       `bun:"id,pk,autoincrement" json:"id"`
	ThreadID int64       `bun:"thread_id,notnull" json:"thread_id"`
	AuthorID int64       `bun:"author_id,notnull" json:"author_id"`
	Type     MessageType `bun:"type,notnull,default:'TEXT'" json:"type"`
	Content  string      `bun:"content,notnull" json:"content"`

	// Structured media reference for REWARD messages. The rendering layer
	// resolves it to a preview; nothing is embedded in Content.
	MediaRef string `bun:"media_ref,nullzero" json:"media_ref,omitempty"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}
