package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Follow links a user to an organization they follow. Read-only input for the
// acceptance engine: accepting a mission owned by a followed organization
// earns the worker the club-follow bonus.
type Follow struct {
	bun.BaseModel `bun:"table:follows,alias:f"`

	ID             int64     `bun:"id,pk,autoincrement" json:"id"`
	FollowerID     int64     `bun:"follower_id,notnull" json:"follower_id"`
	OrganizationID int64     `bun:"organization_id,notnull" json:"organization_id"`
	CreatedAt      time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}
