package services

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/taskrally/taskrally-backend/taskrally/database/models"
	"github.com/taskrally/taskrally-backend/taskrally/database/repositories"
	"github.com/uptrace/bun"
)

// ErrNotMissionOwner is returned when the caller is neither the mission owner
// nor an admin.
var ErrNotMissionOwner = errors.New("caller is not the mission owner")

// TxRunner is the slice of bun.DB the coordinator needs. Satisfied by *bun.DB;
// tests substitute a runner that hands the callback a zero Tx.
type TxRunner interface {
	RunInTx(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context, tx bun.Tx) error) error
}

// AcceptanceResult carries what happened inside the transaction so the
// post-commit notification step knows what to announce.
type AcceptanceResult struct {
	Submission    *models.Submission
	Thread        *models.Thread
	RewardMessage *models.Message
	FeedPost      *models.FeedPost
	Grant         ExperienceGrant
	MissionClosed bool
}

// AcceptanceCoordinator owns the multi-entity state transition that fires
// when an advertiser accepts a worker's submission. It is the only component
// the HTTP boundary calls, and the only writer moving a submission out of
// PENDING.
type AcceptanceCoordinator struct {
	db          TxRunner
	submissions repositories.SubmissionRepository
	missions    repositories.MissionRepository
	users       repositories.UserRepository
	ledger      repositories.LedgerRepository
	threads     repositories.ThreadRepository
	messages    repositories.MessageRepository
	feedPosts   repositories.FeedPostRepository
	follows     repositories.FollowRepository

	experience *ExperienceLedger
	escrow     *RewardEscrow
	capacity   *CapacityTracker
	notifier   Notifier

	now func() time.Time
}

func NewAcceptanceCoordinator(
	db TxRunner,
	submissions repositories.SubmissionRepository,
	missions repositories.MissionRepository,
	users repositories.UserRepository,
	ledger repositories.LedgerRepository,
	threads repositories.ThreadRepository,
	messages repositories.MessageRepository,
	feedPosts repositories.FeedPostRepository,
	follows repositories.FollowRepository,
	experience *ExperienceLedger,
	notifier Notifier,
) *AcceptanceCoordinator {
	return &AcceptanceCoordinator{
		db:          db,
		submissions: submissions,
		missions:    missions,
		users:       users,
		ledger:      ledger,
		threads:     threads,
		messages:    messages,
		feedPosts:   feedPosts,
		follows:     follows,
		experience:  experience,
		escrow:      NewRewardEscrow(),
		capacity:    NewCapacityTracker(missions),
		notifier:    notifier,
		now:         time.Now,
	}
}

// Accept runs the whole acceptance as one atomic unit: submission transition,
// experience credit, thread upsert, reward escrow release, capacity claim and
// feed post creation either all commit or none do. inlineMediaRef is the
// stored reference of a media file uploaded with this call, or empty.
func (c *AcceptanceCoordinator) Accept(ctx context.Context, callerID, submissionID int64, inlineMediaRef string) (*models.Submission, error) {
	var result AcceptanceResult

	err := c.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		// Row lock first: the PENDING guard below must hold against a
		// concurrent decision on the same submission.
		submission, err := c.submissions.GetForUpdateTx(ctx, tx, submissionID)
		if err != nil {
			return err
		}

		mission, err := c.missions.GetTx(ctx, tx, submission.MissionID)
		if err != nil {
			return err
		}

		caller, err := c.users.GetTx(ctx, tx, callerID)
		if err != nil {
			return err
		}
		if mission.OwnerID != callerID && !caller.IsAdmin() {
			return ErrNotMissionOwner
		}

		if submission.Decided() {
			return &repositories.ConflictError{Entity: "submission", Reason: "already decided", Err: repositories.ErrSubmissionDecided}
		}

		// Worker loaded inside the transaction: the privacy default feeding the
		// feed-post decision must come from the transaction's snapshot.
		worker, err := c.users.GetTx(ctx, tx, submission.UserID)
		if err != nil {
			return err
		}
		effective := EffectiveVisibility(worker.FeedPrivacyDefault, submission.FeedOverride)

		now := c.now()
		submission.Status = models.SubmissionStatusAccepted
		submission.DecisionAt = now
		if inlineMediaRef != "" {
			submission.RewardMediaRef = inlineMediaRef
		}
		if err := c.submissions.UpdateDecisionTx(ctx, tx, submission); err != nil {
			return err
		}

		clubFollowed := false
		if mission.OrganizationID != 0 {
			clubFollowed, err = c.follows.ExistsTx(ctx, tx, worker.ID, mission.OrganizationID)
			if err != nil {
				return err
			}
		}

		grant := c.experience.Award(worker, mission, clubFollowed)
		if err := c.users.AddExperienceTx(ctx, tx, worker.ID, grant.Global, grant.Online, grant.Onsite); err != nil {
			return err
		}
		if err := c.ledger.InsertTx(ctx, tx, grant.Entries); err != nil {
			return err
		}

		thread, err := c.threads.UpsertTx(ctx, tx, &models.Thread{
			SubmissionID: submission.ID,
			OwnerID:      mission.OwnerID,
			WorkerID:     worker.ID,
		})
		if err != nil {
			return err
		}

		rewardMsg := c.escrow.Release(thread, mission, inlineMediaRef)
		if rewardMsg != nil {
			if err := c.messages.InsertTx(ctx, tx, rewardMsg); err != nil {
				return err
			}
		}

		closed, err := c.capacity.ApplyAcceptance(ctx, tx, mission.ID)
		if err != nil {
			return err
		}

		post := BuildFeedPost(mission, submission, effective, now)
		if post != nil {
			if err := c.feedPosts.InsertTx(ctx, tx, post); err != nil {
				return err
			}
		}

		result = AcceptanceResult{
			Submission:    submission,
			Thread:        thread,
			RewardMessage: rewardMsg,
			FeedPost:      post,
			Grant:         grant,
			MissionClosed: closed,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.dispatchAccepted(ctx, &result)
	return result.Submission, nil
}

// Refuse is the symmetric reject path: same guard and lock, terminal REFUSED
// state, no experience, reward, capacity or feed side effects.
func (c *AcceptanceCoordinator) Refuse(ctx context.Context, callerID, submissionID int64) (*models.Submission, error) {
	var refused *models.Submission

	err := c.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		submission, err := c.submissions.GetForUpdateTx(ctx, tx, submissionID)
		if err != nil {
			return err
		}

		mission, err := c.missions.GetTx(ctx, tx, submission.MissionID)
		if err != nil {
			return err
		}

		caller, err := c.users.GetTx(ctx, tx, callerID)
		if err != nil {
			return err
		}
		if mission.OwnerID != callerID && !caller.IsAdmin() {
			return ErrNotMissionOwner
		}

		if submission.Decided() {
			return &repositories.ConflictError{Entity: "submission", Reason: "already decided", Err: repositories.ErrSubmissionDecided}
		}

		submission.Status = models.SubmissionStatusRefused
		submission.DecisionAt = c.now()
		if err := c.submissions.UpdateDecisionTx(ctx, tx, submission); err != nil {
			return err
		}

		refused = submission
		return nil
	})
	if err != nil {
		return nil, err
	}

	NotifyBestEffort(ctx, c.notifier, refused.UserID, NotifySubmissionRefused, map[string]any{
		"submission_id": refused.ID,
		"mission_id":    refused.MissionID,
	})
	return refused, nil
}

// dispatchAccepted runs the post-commit, best-effort side channel. Failures
// here are logged and swallowed: the acceptance has already committed.
func (c *AcceptanceCoordinator) dispatchAccepted(ctx context.Context, result *AcceptanceResult) {
	sub := result.Submission

	NotifyBestEffort(ctx, c.notifier, sub.UserID, NotifySubmissionAccepted, map[string]any{
		"submission_id": sub.ID,
		"mission_id":    sub.MissionID,
		"xp_awarded":    result.Grant.Global,
	})

	if result.FeedPost != nil && !result.FeedPost.Published {
		NotifyBestEffort(ctx, c.notifier, sub.UserID, NotifyFeedPostDraft, map[string]any{
			"submission_id":  sub.ID,
			"feed_post_id":   result.FeedPost.ID,
			"editable_until": result.FeedPost.EditableUntil,
		})
	}

	slog.Info("Submission accepted",
		slog.String("type", "acceptance"),
		slog.Int64("submission_id", sub.ID),
		slog.Int64("mission_id", sub.MissionID),
		slog.Int64("worker_id", sub.UserID),
		slog.Bool("mission_closed", result.MissionClosed),
		slog.Bool("reward_released", result.RewardMessage != nil))
}
