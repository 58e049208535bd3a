package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Thread is the private conversation between the mission owner and a worker,
// keyed one-to-one to the worker's submission. It is created lazily when the
// submission is first decided.
type Thread struct {
	bun.BaseModel `bun:"table:threads,alias:t"`

	ID           int64     `bun:"id,pk,autoincrement" json:"id"`
	SubmissionID int64     `bun:"submission_id,notnull,unique" json:"submission_id"`
	OwnerID      int64     `bun:"owner_id,notnull" json:"owner_id"`
	WorkerID     int64     `bun:"worker_id,notnull" json:"worker_id"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}
