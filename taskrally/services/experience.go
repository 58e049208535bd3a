package services

import (
	"fmt"

	"github.com/taskrally/taskrally-backend/taskrally/database/models"
)

const (
	// Fallback XP for missions created without explicit XP configuration.
	// Missing mission config must never block an acceptance.
	DefaultBaseXP = 500

	// DefaultClubFollowBonus is the flat global-track bonus for completing a
	// mission owned by an organization the worker follows.
	DefaultClubFollowBonus = 10
)

// ExperienceGrant is the computed outcome of one acceptance: deltas for the
// three counters plus the ledger entries documenting them.
type ExperienceGrant struct {
	Global  int64
	Online  int64
	Onsite  int64
	Entries []*models.LedgerEntry
}

// ExperienceLedger computes experience deltas across the global and per-space
// tracks and produces the matching append-only ledger entries.
type ExperienceLedger struct {
	clubFollowBonus int64
}

func NewExperienceLedger(clubFollowBonus int64) *ExperienceLedger {
	if clubFollowBonus <= 0 {
		clubFollowBonus = DefaultClubFollowBonus
	}
	return &ExperienceLedger{clubFollowBonus: clubFollowBonus}
}

// Award computes the deltas for accepting a submission on mission. The global
// counter always receives base+bonus; the track matching the mission's space
// receives the same amount; the other track receives nothing. When the worker
// follows the owning organization, the club bonus lands on the global counter
// only, as its own ledger entry.
func (l *ExperienceLedger) Award(user *models.User, mission *models.Mission, clubFollowed bool) ExperienceGrant {
	base := mission.BaseXP
	bonus := mission.BonusXP
	if base <= 0 {
		base = DefaultBaseXP
		bonus = 0
	}
	total := base + bonus

	grant := ExperienceGrant{Global: total}
	switch mission.Space {
	case models.SpaceOnline:
		grant.Online = total
	case models.SpaceOnsite:
		grant.Onsite = total
	}

	grant.Entries = append(grant.Entries, &models.LedgerEntry{
		UserID:      user.ID,
		MissionID:   mission.ID,
		Kind:        models.LedgerKindMissionAccepted,
		Delta:       total,
		Description: fmt.Sprintf("Mission %q accepted", mission.Title),
	})

	// Track entry only when the track actually moved.
	trackDelta := grant.Online + grant.Onsite
	if trackDelta != 0 {
		grant.Entries = append(grant.Entries, &models.LedgerEntry{
			UserID:      user.ID,
			MissionID:   mission.ID,
			Kind:        models.LedgerKindMissionAccepted,
			Delta:       trackDelta,
			Track:       mission.Space,
			Description: fmt.Sprintf("Mission %q accepted (%s)", mission.Title, mission.Space),
		})
	}

	if clubFollowed {
		grant.Global += l.clubFollowBonus
		grant.Entries = append(grant.Entries, &models.LedgerEntry{
			UserID:      user.ID,
			MissionID:   mission.ID,
			Kind:        models.LedgerKindBonusClubFollowed,
			Delta:       l.clubFollowBonus,
			Description: "Bonus for a mission from a followed club",
		})
	}

	return grant
}
