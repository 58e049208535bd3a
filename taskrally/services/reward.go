package services

import (
	"github.com/taskrally/taskrally-backend/taskrally/database/models"
)

// RewardHeader opens every reward-disclosure message.
const RewardHeader = "Congratulations, your submission was accepted!"

// RewardEscrow decides whether the sequestered reward attached to a mission
// must be disclosed on acceptance and builds the disclosure message.
type RewardEscrow struct{}

func NewRewardEscrow() *RewardEscrow {
	return &RewardEscrow{}
}

// Release builds the REWARD message for the submission's thread, or returns
// nil when the mission holds no reward content and no media was uploaded
// inline during the accept call (a no-op, not an error).
//
// The mission-level media reference takes precedence over one uploaded inline;
// the persistence of an inline-only reference onto the submission row is the
// coordinator's job.
func (r *RewardEscrow) Release(thread *models.Thread, mission *models.Mission, inlineMediaRef string) *models.Message {
	if !mission.HasReward() && inlineMediaRef == "" {
		return nil
	}

	content := RewardHeader
	if mission.RewardText != "" {
		content += "\n\n" + mission.RewardText
	}

	mediaRef := mission.RewardMediaRef
	if mediaRef == "" {
		mediaRef = inlineMediaRef
	}

	return &models.Message{
		ThreadID: thread.ID,
		AuthorID: mission.OwnerID,
		Type:     models.MessageTypeReward,
		Content:  content,
		MediaRef: mediaRef,
	}
}
