package models

import (
	"time"

	"github.com/uptrace/bun"
)

type LedgerKind string

const (
	LedgerKindMissionAccepted   LedgerKind = "MISSION_ACCEPTED"
	LedgerKindBonusClubFollowed LedgerKind = "BONUS_CLUB_FOLLOWED"
	LedgerKindBonusManual       LedgerKind = "BONUS_MANUAL"
	LedgerKindFollow            LedgerKind = "FOLLOW"
)

// LedgerEntry is one immutable experience-counter adjustment. The table is
// append-only and serves as the audit trail for the cumulative counters on
// users; rows are never updated or deleted.
type LedgerEntry struct {
	bun.BaseModel `bun:"table:ledger_entries,alias:le"`

	ID          int64      `bun:"id,pk,autoincrement" json:"id"`
	UserID      int64      `bun:"user_id,notnull" json:"user_id"`
	MissionID   int64      `bun:"mission_id,nullzero" json:"mission_id,omitempty"`
	Kind        LedgerKind `bun:"kind,notnull" json:"kind"`
	Delta       int64      `bun:"delta,notnull" json:"delta"`
	Track       Space      `bun:"track,nullzero" json:"track,omitempty"` // empty = global counter
	Description string     `bun:"description" json:"description"`
	CreatedAt   time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}
