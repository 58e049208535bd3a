package models

import (
	"time"

	"github.com/uptrace/bun"
)

// FeedPrivacy is the account-level default for what happens to a worker's
// feed post when one of their submissions is accepted.
type FeedPrivacy string

const (
	FeedPrivacyAuto  FeedPrivacy = "AUTO"
	FeedPrivacyAsk   FeedPrivacy = "ASK"
	FeedPrivacyNever FeedPrivacy = "NEVER"
)

type UserRole string

const (
	RoleWorker     UserRole = "worker"
	RoleAdvertiser UserRole = "advertiser"
	RoleAdmin      UserRole = "admin"
)

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID       int64    `bun:"id,pk,autoincrement" json:"id"`
	Username string   `bun:"username,notnull,unique" json:"username"`
	Role     UserRole `bun:"role,notnull,default:'worker'" json:"role"`

	// Cumulative experience counters. Monotone; only the acceptance engine
	// increments them, with a matching ledger entry per increment.
	XP       int64 `bun:"xp,notnull,default:0" json:"xp"`
	OnlineXP int64 `bun:"online_xp,notnull,default:0" json:"online_xp"`
	OnsiteXP int64 `bun:"onsite_xp,notnull,default:0" json:"onsite_xp"`

	FeedPrivacyDefault FeedPrivacy `bun:"feed_privacy_default,notnull,default:'ASK'" json:"feed_privacy_default"`

	// Bearer token for API access. Issuance lives in the auth service; this
	// backend only resolves tokens to users.
	APIToken string `bun:"api_token,nullzero" json:"-"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

// IsAdmin reports whether the user holds the privileged role that may decide
// any submission regardless of mission ownership.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
