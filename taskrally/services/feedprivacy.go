package services

import (
	"time"

	"github.com/taskrally/taskrally-backend/taskrally/database/models"
)

// DraftEditWindow is how long a worker can enrich and publish a draft feed
// post created by an ASK decision.
const DraftEditWindow = 60 * time.Minute

// EffectiveVisibility resolves what happens to the feed post for an accepted
// submission: the worker's per-submission override wins unless it defers to
// the account-level default. Pure function, no side effects.
func EffectiveVisibility(userDefault models.FeedPrivacy, override models.FeedOverride) models.FeedPrivacy {
	switch override {
	case models.FeedOverrideAuto:
		return models.FeedPrivacyAuto
	case models.FeedOverrideAsk:
		return models.FeedPrivacyAsk
	case models.FeedOverrideNever:
		return models.FeedPrivacyNever
	default: // INHERIT or unset
		return userDefault
	}
}

// ShouldCreatePost reports whether any feed post row is materialized.
func ShouldCreatePost(effective models.FeedPrivacy) bool {
	return effective != models.FeedPrivacyNever
}

// ShouldPublishImmediately reports whether the post goes live without any
// further action from the worker.
func ShouldPublishImmediately(effective models.FeedPrivacy) bool {
	return effective == models.FeedPrivacyAuto
}

// ShouldCreateAsDraft reports whether the post is created unpublished and the
// worker is prompted to publish it within the edit window.
func ShouldCreateAsDraft(effective models.FeedPrivacy) bool {
	return effective == models.FeedPrivacyAsk
}

// BuildFeedPost materializes the post row for an accepted submission. The
// worker authors the post, never the mission owner; text and media start
// empty and are enriched later.
func BuildFeedPost(mission *models.Mission, submission *models.Submission, effective models.FeedPrivacy, now time.Time) *models.FeedPost {
	if !ShouldCreatePost(effective) {
		return nil
	}

	post := &models.FeedPost{
		MissionID:    mission.ID,
		SubmissionID: submission.ID,
		AuthorID:     submission.UserID,
		Space:        mission.Space,
		Published:    ShouldPublishImmediately(effective),
		MediaURLs:    []string{},
	}
	if ShouldCreateAsDraft(effective) {
		post.EditableUntil = now.Add(DraftEditWindow)
	}
	return post
}
