package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Space is one of the two mutually exclusive mission categories. Each space
// feeds its own experience counter on the worker.
type Space string

const (
	SpaceOnline Space = "ONLINE"
	SpaceOnsite Space = "ONSITE"
)

type MissionStatus string

const (
	MissionStatusOpen     MissionStatus = "OPEN"
	MissionStatusClosed   MissionStatus = "CLOSED"
	MissionStatusArchived MissionStatus = "ARCHIVED"
	MissionStatusPending  MissionStatus = "PENDING"
)

type Mission struct {
	bun.BaseModel `bun:"table:missions,alias:m"`

	ID             int64         `bun:"id,pk,autoincrement" json:"id"`
	Title          string        `bun:"title,notnull" json:"title"`
	Space          Space         `bun:"space,notnull" json:"space"`
	Status         MissionStatus `bun:"status,notnull,default:'OPEN'" json:"status"`
	SlotsMax       int           `bun:"slots_max,notnull" json:"slots_max"`
	SlotsTaken     int           `bun:"slots_taken,notnull,default:0" json:"slots_taken"`
	BaseXP         int64         `bun:"base_xp,notnull,default:0" json:"base_xp"`
	BonusXP        int64         `bun:"bonus_xp,notnull,default:0" json:"bonus_xp"`
	OwnerID        int64         `bun:"owner_id,notnull" json:"owner_id"`
	OrganizationID int64         `bun:"organization_id,nullzero" json:"organization_id,omitempty"`

	// Sequestered reward, withheld until a submission is accepted.
	RewardText     string `bun:"reward_text,nullzero" json:"-"`
	RewardMediaRef string `bun:"reward_media_ref,nullzero" json:"-"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

// HasReward reports whether the mission carries sequestered reward content.
func (m *Mission) HasReward() bool {
	return m.RewardText != "" || m.RewardMediaRef != ""
}
