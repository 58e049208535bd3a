package models

import (
	"time"

	"github.com/uptrace/bun"
)

type SubmissionStatus string

const (
	SubmissionStatusPending  SubmissionStatus = "PENDING"
	SubmissionStatusAccepted SubmissionStatus = "ACCEPTED"
	SubmissionStatusRefused  SubmissionStatus = "REFUSED"
)

// FeedOverride is the per-submission visibility override chosen by the worker
// when submitting. INHERIT defers to the worker's account-level default.
type FeedOverride string

const (
	FeedOverrideInherit FeedOverride = "INHERIT"
	FeedOverrideAuto    FeedOverride = "AUTO"
	FeedOverrideAsk     FeedOverride = "ASK"
	FeedOverrideNever   FeedOverride = "NEVER"
)

type Submission struct {
	bun.BaseModel `bun:"table:submissions,alias:s"`

	ID           int64            `bun:"id,pk,autoincrement" json:"id"`
	MissionID    int64            `bun:"mission_id,notnull" json:"mission_id"`
	UserID       int64            `bun:"user_id,notnull" json:"user_id"`
	Status       SubmissionStatus `bun:"status,notnull,default:'PENDING'" json:"status"`
	FeedOverride FeedOverride     `bun:"feed_override,notnull,default:'INHERIT'" json:"feed_override"`
	DecisionAt   time.Time        `bun:"decision_at,nullzero" json:"decision_at,omitempty"`

	// Reward media attached by the advertiser during the accept call, kept on
	// the row so the worker can retrieve it later.
	RewardMediaRef string `bun:"reward_media_ref,nullzero" json:"reward_media_ref,omitempty"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`

	Mission *Mission `bun:"rel:belongs-to,join:mission_id=id" json:"mission,omitempty"`
	User    *User    `bun:"rel:belongs-to,join:user_id=id" json:"-"`
}

// Decided reports whether the submission already left PENDING. Both ACCEPTED
// and REFUSED are terminal.
func (s *Submission) Decided() bool {
	return s.Status != SubmissionStatusPending
}
