package models

import (
	"time"

	"github.com/uptrace/bun"
)

// FeedPost is the social post materialized when an accepted submission is
// allowed to appear on the public feed. At most one exists per submission.
type FeedPost struct {
	bun.BaseModel `bun:"table:feed_posts,alias:fp"`

	ID           int64 `bun:"id,pk,autoincrement" json:"id"`
	MissionID    int64 `bun:"mission_id,notnull" json:"mission_id"`
	SubmissionID int64 `bun:"submission_id,notnull,unique" json:"submission_id"`
	AuthorID     int64 `bun:"author_id,notnull" json:"author_id"`
	Space        Space `bun:"space,notnull" json:"space"`

	Published bool `bun:"published,notnull,default:false" json:"published"`

	// Set on draft posts only: the window during which the worker can enrich
	// and publish before the draft goes stale.
	EditableUntil time.Time `bun:"editable_until,nullzero" json:"editable_until,omitempty"`

	Text      string    `bun:"text" json:"text"`
	MediaURLs []string  `bun:"media_urls,type:jsonb" json:"media_urls"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}
