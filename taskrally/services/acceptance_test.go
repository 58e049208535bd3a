package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/taskrally/taskrally-backend/taskrally/database/models"
	"github.com/taskrally/taskrally-backend/taskrally/database/repositories"
	"github.com/uptrace/bun"
)

// The fakes below satisfy the repository interfaces in memory so the
// coordinator's transaction script can be exercised without a database. The
// bun.Tx handed out by fakeTxRunner is a zero value the fakes never touch.

type fakeTxRunner struct{}

func (fakeTxRunner) RunInTx(ctx context.Context, _ *sql.TxOptions, fn func(context.Context, bun.Tx) error) error {
	return fn(ctx, bun.Tx{})
}

type fakeSubmissions struct {
	submission *models.Submission
	updates    int
}

func (f *fakeSubmissions) GetByID(ctx context.Context, id int64) (*models.Submission, error) {
	return f.GetForUpdateTx(ctx, bun.Tx{}, id)
}

func (f *fakeSubmissions) GetForUpdateTx(_ context.Context, _ bun.Tx, id int64) (*models.Submission, error) {
	if f.submission == nil || f.submission.ID != id {
		return nil, &repositories.NotFoundError{Entity: "submission", ID: id}
	}
	return f.submission, nil
}

func (f *fakeSubmissions) UpdateDecisionTx(_ context.Context, _ bun.Tx, submission *models.Submission) error {
	f.submission = submission
	f.updates++
	return nil
}

type fakeMissions struct {
	mission *models.Mission
}

func (f *fakeMissions) GetByID(ctx context.Context, id int64) (*models.Mission, error) {
	return f.GetTx(ctx, bun.Tx{}, id)
}

func (f *fakeMissions) GetTx(_ context.Context, _ bun.Tx, id int64) (*models.Mission, error) {
	if f.mission == nil || f.mission.ID != id {
		return nil, &repositories.NotFoundError{Entity: "mission", ID: id}
	}
	return f.mission, nil
}

func (f *fakeMissions) TakeSlotTx(_ context.Context, _ bun.Tx, missionID int64) (int, int, error) {
	if f.mission.SlotsTaken >= f.mission.SlotsMax {
		return 0, 0, repositories.ErrMissionFull
	}
	f.mission.SlotsTaken++
	return f.mission.SlotsTaken, f.mission.SlotsMax, nil
}

func (f *fakeMissions) CloseTx(_ context.Context, _ bun.Tx, missionID int64) error {
	f.mission.Status = models.MissionStatusClosed
	return nil
}

type xpGrant struct {
	userID                 int64
	global, online, onsite int64
}

type fakeUsers struct {
	users     map[int64]*models.User
	grants    []xpGrant
	nonTxGets int
}

func (f *fakeUsers) GetByID(ctx context.Context, id int64) (*models.User, error) {
	f.nonTxGets++
	return f.GetTx(ctx, bun.Tx{}, id)
}

func (f *fakeUsers) GetTx(_ context.Context, _ bun.Tx, id int64) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, &repositories.NotFoundError{Entity: "user", ID: id}
	}
	return user, nil
}

func (f *fakeUsers) GetByToken(_ context.Context, token string) (*models.User, error) {
	return nil, &repositories.NotFoundError{Entity: "user", ID: "token"}
}

func (f *fakeUsers) AddExperienceTx(_ context.Context, _ bun.Tx, userID, global, online, onsite int64) error {
	f.grants = append(f.grants, xpGrant{userID, global, online, onsite})
	return nil
}

type fakeLedger struct {
	entries []*models.LedgerEntry
}

func (f *fakeLedger) InsertTx(_ context.Context, _ bun.Tx, entries []*models.LedgerEntry) error {
	f.entries = append(f.entries, entries...)
	return nil
}

func (f *fakeLedger) GetByUserID(_ context.Context, userID int64) ([]*models.LedgerEntry, error) {
	return f.entries, nil
}

type fakeThreads struct {
	thread *models.Thread
}

func (f *fakeThreads) UpsertTx(_ context.Context, _ bun.Tx, thread *models.Thread) (*models.Thread, error) {
	if f.thread == nil {
		thread.ID = 77
		f.thread = thread
	}
	return f.thread, nil
}

func (f *fakeThreads) GetBySubmissionID(_ context.Context, submissionID int64) (*models.Thread, error) {
	if f.thread == nil {
		return nil, &repositories.NotFoundError{Entity: "thread", ID: submissionID}
	}
	return f.thread, nil
}

type fakeMessages struct {
	inserted []*models.Message
}

func (f *fakeMessages) InsertTx(_ context.Context, _ bun.Tx, message *models.Message) error {
	f.inserted = append(f.inserted, message)
	return nil
}

func (f *fakeMessages) GetByThreadID(_ context.Context, threadID int64) ([]*models.Message, error) {
	return f.inserted, nil
}

type fakeFeedPosts struct {
	inserted []*models.FeedPost
}

func (f *fakeFeedPosts) InsertTx(_ context.Context, _ bun.Tx, post *models.FeedPost) error {
	f.inserted = append(f.inserted, post)
	return nil
}

func (f *fakeFeedPosts) GetBySubmissionID(_ context.Context, submissionID int64) (*models.FeedPost, error) {
	for _, p := range f.inserted {
		if p.SubmissionID == submissionID {
			return p, nil
		}
	}
	return nil, &repositories.NotFoundError{Entity: "feed_post", ID: submissionID}
}

type fakeFollows struct {
	follows      bool
	nonTxExists  int
	txExistCalls int
}

func (f *fakeFollows) Exists(_ context.Context, _, _ int64) (bool, error) {
	f.nonTxExists++
	return f.follows, nil
}

func (f *fakeFollows) ExistsTx(_ context.Context, _ bun.Tx, _, _ int64) (bool, error) {
	f.txExistCalls++
	return f.follows, nil
}

type notifyCall struct {
	userID int64
	kind   string
}

type fakeNotifier struct {
	calls []notifyCall
	err   error
}

func (f *fakeNotifier) Notify(_ context.Context, userID int64, kind string, _ map[string]any) error {
	f.calls = append(f.calls, notifyCall{userID, kind})
	return f.err
}

type fixture struct {
	coordinator *AcceptanceCoordinator
	submissions *fakeSubmissions
	missions    *fakeMissions
	users       *fakeUsers
	ledger      *fakeLedger
	threads     *fakeThreads
	messages    *fakeMessages
	feedPosts   *fakeFeedPosts
	follows     *fakeFollows
	notifier    *fakeNotifier
	now         time.Time
}

const (
	ownerID  = int64(1)
	workerID = int64(2)
	adminID  = int64(3)
)

func newFixture(mission *models.Mission, submission *models.Submission, worker *models.User) *fixture {
	f := &fixture{
		submissions: &fakeSubmissions{submission: submission},
		missions:    &fakeMissions{mission: mission},
		users: &fakeUsers{users: map[int64]*models.User{
			ownerID:  {ID: ownerID, Role: models.RoleAdvertiser},
			workerID: worker,
			adminID:  {ID: adminID, Role: models.RoleAdmin},
		}},
		ledger:    &fakeLedger{},
		threads:   &fakeThreads{},
		messages:  &fakeMessages{},
		feedPosts: &fakeFeedPosts{},
		follows:   &fakeFollows{},
		notifier:  &fakeNotifier{},
		now:       time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	f.coordinator = NewAcceptanceCoordinator(
		fakeTxRunner{},
		f.submissions,
		f.missions,
		f.users,
		f.ledger,
		f.threads,
		f.messages,
		f.feedPosts,
		f.follows,
		NewExperienceLedger(DefaultClubFollowBonus),
		f.notifier,
	)
	f.coordinator.now = func() time.Time { return f.now }
	return f
}

func defaultMission() *models.Mission {
	return &models.Mission{
		ID: 10, Title: "Test mission", Space: models.SpaceOnline,
		Status: models.MissionStatusOpen, SlotsMax: 3, SlotsTaken: 0,
		BaseXP: 500, BonusXP: 50, OwnerID: ownerID,
	}
}

func defaultSubmission() *models.Submission {
	return &models.Submission{
		ID: 20, MissionID: 10, UserID: workerID,
		Status: models.SubmissionStatusPending, FeedOverride: models.FeedOverrideInherit,
	}
}

func defaultWorker() *models.User {
	return &models.User{ID: workerID, Role: models.RoleWorker, FeedPrivacyDefault: models.FeedPrivacyAuto}
}

func TestAcceptHappyPath(t *testing.T) {
	f := newFixture(defaultMission(), defaultSubmission(), defaultWorker())

	submission, err := f.coordinator.Accept(context.Background(), ownerID, 20, "")
	if err != nil {
		t.Fatalf("Accept() error = %v", err)
	}

	if submission.Status != models.SubmissionStatusAccepted {
		t.Errorf("status = %v, want ACCEPTED", submission.Status)
	}
	if !submission.DecisionAt.Equal(f.now) {
		t.Errorf("DecisionAt = %v, want %v", submission.DecisionAt, f.now)
	}
	if f.submissions.updates != 1 {
		t.Errorf("submission updates = %d, want 1", f.submissions.updates)
	}

	if len(f.users.grants) != 1 {
		t.Fatalf("xp grants = %d, want 1", len(f.users.grants))
	}
	grant := f.users.grants[0]
	if grant.userID != workerID || grant.global != 550 || grant.online != 550 || grant.onsite != 0 {
		t.Errorf("grant = %+v, want worker 550/550/0", grant)
	}
	if len(f.ledger.entries) != 2 {
		t.Errorf("ledger entries = %d, want 2", len(f.ledger.entries))
	}

	if f.missions.mission.SlotsTaken != 1 {
		t.Errorf("slots taken = %d, want 1", f.missions.mission.SlotsTaken)
	}
	if f.missions.mission.Status != models.MissionStatusOpen {
		t.Errorf("mission status = %v, want still OPEN", f.missions.mission.Status)
	}

	// Worker default was AUTO: post published immediately.
	if len(f.feedPosts.inserted) != 1 {
		t.Fatalf("feed posts = %d, want 1", len(f.feedPosts.inserted))
	}
	post := f.feedPosts.inserted[0]
	if !post.Published {
		t.Error("feed post should be published")
	}
	if post.AuthorID != workerID {
		t.Errorf("post author = %d, want worker %d", post.AuthorID, workerID)
	}

	// No reward configured: no message.
	if len(f.messages.inserted) != 0 {
		t.Errorf("messages = %d, want 0", len(f.messages.inserted))
	}

	if len(f.notifier.calls) != 1 || f.notifier.calls[0].kind != NotifySubmissionAccepted {
		t.Errorf("notifications = %+v, want single SUBMISSION_ACCEPTED", f.notifier.calls)
	}
	if f.notifier.calls[0].userID != workerID {
		t.Errorf("notified user = %d, want worker", f.notifier.calls[0].userID)
	}
}

func TestAcceptAlreadyDecided(t *testing.T) {
	submission := defaultSubmission()
	submission.Status = models.SubmissionStatusAccepted
	f := newFixture(defaultMission(), submission, defaultWorker())

	_, err := f.coordinator.Accept(context.Background(), ownerID, 20, "")
	if !repositories.IsConflict(err) {
		t.Fatalf("Accept() error = %v, want ConflictError", err)
	}

	if f.submissions.updates != 0 {
		t.Error("decided submission must not be updated")
	}
	if len(f.users.grants) != 0 || len(f.ledger.entries) != 0 {
		t.Error("no experience may be credited on conflict")
	}
	if f.missions.mission.SlotsTaken != 0 {
		t.Error("no slot may be taken on conflict")
	}
	if len(f.notifier.calls) != 0 {
		t.Error("no notification may fire on conflict")
	}
}

func TestAcceptAuthorization(t *testing.T) {
	t.Run("stranger is rejected", func(t *testing.T) {
		f := newFixture(defaultMission(), defaultSubmission(), defaultWorker())
		f.users.users[99] = &models.User{ID: 99, Role: models.RoleAdvertiser}

		_, err := f.coordinator.Accept(context.Background(), 99, 20, "")
		if !errors.Is(err, ErrNotMissionOwner) {
			t.Fatalf("Accept() error = %v, want ErrNotMissionOwner", err)
		}
	})

	t.Run("admin may decide any submission", func(t *testing.T) {
		f := newFixture(defaultMission(), defaultSubmission(), defaultWorker())

		if _, err := f.coordinator.Accept(context.Background(), adminID, 20, ""); err != nil {
			t.Fatalf("Accept() error = %v", err)
		}
	})
}

func TestAcceptUnknownSubmission(t *testing.T) {
	f := newFixture(defaultMission(), defaultSubmission(), defaultWorker())

	_, err := f.coordinator.Accept(context.Background(), ownerID, 999, "")
	if !repositories.IsNotFound(err) {
		t.Fatalf("Accept() error = %v, want NotFoundError", err)
	}
}

func TestAcceptClubFollowBonus(t *testing.T) {
	mission := defaultMission()
	mission.OrganizationID = 42
	f := newFixture(mission, defaultSubmission(), defaultWorker())
	f.follows.follows = true

	if _, err := f.coordinator.Accept(context.Background(), ownerID, 20, ""); err != nil {
		t.Fatalf("Accept() error = %v", err)
	}

	grant := f.users.grants[0]
	if grant.global != 560 {
		t.Errorf("global = %d, want 560 (500+50+10)", grant.global)
	}
	if grant.online != 550 {
		t.Errorf("online = %d, want 550", grant.online)
	}
	if grant.onsite != 0 {
		t.Errorf("onsite = %d, want 0", grant.onsite)
	}
	if len(f.ledger.entries) != 3 {
		t.Errorf("ledger entries = %d, want 3", len(f.ledger.entries))
	}
}

func TestAcceptFeedPrivacy(t *testing.T) {
	t.Run("never creates no post", func(t *testing.T) {
		worker := defaultWorker()
		worker.FeedPrivacyDefault = models.FeedPrivacyNever
		f := newFixture(defaultMission(), defaultSubmission(), worker)

		if _, err := f.coordinator.Accept(context.Background(), ownerID, 20, ""); err != nil {
			t.Fatalf("Accept() error = %v", err)
		}
		if len(f.feedPosts.inserted) != 0 {
			t.Errorf("feed posts = %d, want 0", len(f.feedPosts.inserted))
		}
	})

	t.Run("override never beats auto default", func(t *testing.T) {
		submission := defaultSubmission()
		submission.FeedOverride = models.FeedOverrideNever
		f := newFixture(defaultMission(), submission, defaultWorker())

		if _, err := f.coordinator.Accept(context.Background(), ownerID, 20, ""); err != nil {
			t.Fatalf("Accept() error = %v", err)
		}
		if len(f.feedPosts.inserted) != 0 {
			t.Errorf("feed posts = %d, want 0", len(f.feedPosts.inserted))
		}
	})

	t.Run("ask creates draft and prompts the worker", func(t *testing.T) {
		worker := defaultWorker()
		worker.FeedPrivacyDefault = models.FeedPrivacyAsk
		f := newFixture(defaultMission(), defaultSubmission(), worker)

		if _, err := f.coordinator.Accept(context.Background(), ownerID, 20, ""); err != nil {
			t.Fatalf("Accept() error = %v", err)
		}

		if len(f.feedPosts.inserted) != 1 {
			t.Fatalf("feed posts = %d, want 1", len(f.feedPosts.inserted))
		}
		post := f.feedPosts.inserted[0]
		if post.Published {
			t.Error("draft post should not be published")
		}
		want := f.now.Add(DraftEditWindow)
		if !post.EditableUntil.Equal(want) {
			t.Errorf("EditableUntil = %v, want %v", post.EditableUntil, want)
		}

		if len(f.notifier.calls) != 2 {
			t.Fatalf("notifications = %+v, want acceptance + draft prompt", f.notifier.calls)
		}
		if f.notifier.calls[1].kind != NotifyFeedPostDraft {
			t.Errorf("second notification = %s, want FEED_POST_DRAFT", f.notifier.calls[1].kind)
		}
	})
}

func TestAcceptRewardRelease(t *testing.T) {
	t.Run("reward text discloses into the thread", func(t *testing.T) {
		mission := defaultMission()
		mission.RewardText = "CODE123"
		f := newFixture(mission, defaultSubmission(), defaultWorker())

		if _, err := f.coordinator.Accept(context.Background(), ownerID, 20, ""); err != nil {
			t.Fatalf("Accept() error = %v", err)
		}

		if len(f.messages.inserted) != 1 {
			t.Fatalf("messages = %d, want 1", len(f.messages.inserted))
		}
		msg := f.messages.inserted[0]
		if msg.Type != models.MessageTypeReward {
			t.Errorf("message type = %v, want REWARD", msg.Type)
		}
		if msg.ThreadID != f.threads.thread.ID {
			t.Errorf("message thread = %d, want %d", msg.ThreadID, f.threads.thread.ID)
		}
		if msg.AuthorID != ownerID {
			t.Errorf("message author = %d, want mission owner", msg.AuthorID)
		}
	})

	t.Run("inline media is persisted and disclosed", func(t *testing.T) {
		f := newFixture(defaultMission(), defaultSubmission(), defaultWorker())

		submission, err := f.coordinator.Accept(context.Background(), ownerID, 20, "https://cdn/upload.png")
		if err != nil {
			t.Fatalf("Accept() error = %v", err)
		}

		if submission.RewardMediaRef != "https://cdn/upload.png" {
			t.Errorf("submission media ref = %q, want inline upload", submission.RewardMediaRef)
		}
		if len(f.messages.inserted) != 1 {
			t.Fatalf("messages = %d, want 1", len(f.messages.inserted))
		}
		if f.messages.inserted[0].MediaRef != "https://cdn/upload.png" {
			t.Errorf("message media ref = %q, want inline upload", f.messages.inserted[0].MediaRef)
		}
	})
}

func TestAcceptCapacity(t *testing.T) {
	t.Run("last slot closes the mission", func(t *testing.T) {
		mission := defaultMission()
		mission.SlotsMax = 2
		mission.SlotsTaken = 1
		f := newFixture(mission, defaultSubmission(), defaultWorker())

		if _, err := f.coordinator.Accept(context.Background(), ownerID, 20, ""); err != nil {
			t.Fatalf("Accept() error = %v", err)
		}

		if f.missions.mission.SlotsTaken != 2 {
			t.Errorf("slots taken = %d, want 2", f.missions.mission.SlotsTaken)
		}
		if f.missions.mission.Status != models.MissionStatusClosed {
			t.Errorf("mission status = %v, want CLOSED", f.missions.mission.Status)
		}
	})

	t.Run("full mission rejects with conflict", func(t *testing.T) {
		mission := defaultMission()
		mission.SlotsMax = 1
		mission.SlotsTaken = 1
		f := newFixture(mission, defaultSubmission(), defaultWorker())

		_, err := f.coordinator.Accept(context.Background(), ownerID, 20, "")
		if !repositories.IsConflict(err) {
			t.Fatalf("Accept() error = %v, want ConflictError", err)
		}
		if len(f.notifier.calls) != 0 {
			t.Error("no notification may fire when the transaction fails")
		}
	})
}

func TestAcceptReadsInsideTransaction(t *testing.T) {
	mission := defaultMission()
	mission.OrganizationID = 42
	f := newFixture(mission, defaultSubmission(), defaultWorker())
	f.follows.follows = true

	if _, err := f.coordinator.Accept(context.Background(), ownerID, 20, ""); err != nil {
		t.Fatalf("Accept() error = %v", err)
	}

	// The privacy default and club-follow inputs feed decisions committed by
	// this transaction, so their reads must go through it.
	if f.users.nonTxGets != 0 {
		t.Errorf("user reads outside the transaction = %d, want 0", f.users.nonTxGets)
	}
	if f.follows.nonTxExists != 0 {
		t.Errorf("follow reads outside the transaction = %d, want 0", f.follows.nonTxExists)
	}
	if f.follows.txExistCalls != 1 {
		t.Errorf("transactional follow reads = %d, want 1", f.follows.txExistCalls)
	}
}

func TestRefuseReadsInsideTransaction(t *testing.T) {
	f := newFixture(defaultMission(), defaultSubmission(), defaultWorker())

	if _, err := f.coordinator.Refuse(context.Background(), ownerID, 20); err != nil {
		t.Fatalf("Refuse() error = %v", err)
	}
	if f.users.nonTxGets != 0 {
		t.Errorf("user reads outside the transaction = %d, want 0", f.users.nonTxGets)
	}
}

func TestAcceptNotifierFailureSwallowed(t *testing.T) {
	f := newFixture(defaultMission(), defaultSubmission(), defaultWorker())
	f.notifier.err = errors.New("redis down")

	submission, err := f.coordinator.Accept(context.Background(), ownerID, 20, "")
	if err != nil {
		t.Fatalf("Accept() error = %v, notification failures must be swallowed", err)
	}
	if submission.Status != models.SubmissionStatusAccepted {
		t.Errorf("status = %v, want ACCEPTED", submission.Status)
	}
}

func TestRefuse(t *testing.T) {
	f := newFixture(defaultMission(), defaultSubmission(), defaultWorker())

	submission, err := f.coordinator.Refuse(context.Background(), ownerID, 20)
	if err != nil {
		t.Fatalf("Refuse() error = %v", err)
	}

	if submission.Status != models.SubmissionStatusRefused {
		t.Errorf("status = %v, want REFUSED", submission.Status)
	}
	if !submission.DecisionAt.Equal(f.now) {
		t.Errorf("DecisionAt = %v, want %v", submission.DecisionAt, f.now)
	}

	// Refusal carries none of the acceptance side effects.
	if len(f.users.grants) != 0 || len(f.ledger.entries) != 0 {
		t.Error("refusal must not credit experience")
	}
	if f.missions.mission.SlotsTaken != 0 {
		t.Error("refusal must not take a slot")
	}
	if len(f.feedPosts.inserted) != 0 || len(f.messages.inserted) != 0 {
		t.Error("refusal must not create posts or messages")
	}

	if len(f.notifier.calls) != 1 || f.notifier.calls[0].kind != NotifySubmissionRefused {
		t.Errorf("notifications = %+v, want single SUBMISSION_REFUSED", f.notifier.calls)
	}
}

func TestRefuseAlreadyDecided(t *testing.T) {
	submission := defaultSubmission()
	submission.Status = models.SubmissionStatusRefused
	f := newFixture(defaultMission(), submission, defaultWorker())

	_, err := f.coordinator.Refuse(context.Background(), ownerID, 20)
	if !repositories.IsConflict(err) {
		t.Fatalf("Refuse() error = %v, want ConflictError", err)
	}
}
