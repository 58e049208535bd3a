package services

import (
	"testing"
	"time"

	"github.com/taskrally/taskrally-backend/taskrally/database/models"
)

func TestEffectiveVisibility(t *testing.T) {
	tests := []struct {
		name        string
		userDefault models.FeedPrivacy
		override    models.FeedOverride
		want        models.FeedPrivacy
	}{
		{
			name:        "inherit uses user default",
			userDefault: models.FeedPrivacyAsk,
			override:    models.FeedOverrideInherit,
			want:        models.FeedPrivacyAsk,
		},
		{
			name:        "never override wins over auto default",
			userDefault: models.FeedPrivacyAuto,
			override:    models.FeedOverrideNever,
			want:        models.FeedPrivacyNever,
		},
		{
			name:        "never override wins over ask default",
			userDefault: models.FeedPrivacyAsk,
			override:    models.FeedOverrideNever,
			want:        models.FeedPrivacyNever,
		},
		{
			name:        "auto override wins over never default",
			userDefault: models.FeedPrivacyNever,
			override:    models.FeedOverrideAuto,
			want:        models.FeedPrivacyAuto,
		},
		{
			name:        "ask override",
			userDefault: models.FeedPrivacyAuto,
			override:    models.FeedOverrideAsk,
			want:        models.FeedPrivacyAsk,
		},
		{
			name:        "empty override treated as inherit",
			userDefault: models.FeedPrivacyNever,
			override:    "",
			want:        models.FeedPrivacyNever,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EffectiveVisibility(tt.userDefault, tt.override)
			if got != tt.want {
				t.Errorf("EffectiveVisibility() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVisibilityDecisions(t *testing.T) {
	tests := []struct {
		effective   models.FeedPrivacy
		create      bool
		publish     bool
		createDraft bool
	}{
		{models.FeedPrivacyAuto, true, true, false},
		{models.FeedPrivacyAsk, true, false, true},
		{models.FeedPrivacyNever, false, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.effective), func(t *testing.T) {
			if got := ShouldCreatePost(tt.effective); got != tt.create {
				t.Errorf("ShouldCreatePost() = %v, want %v", got, tt.create)
			}
			if got := ShouldPublishImmediately(tt.effective); got != tt.publish {
				t.Errorf("ShouldPublishImmediately() = %v, want %v", got, tt.publish)
			}
			if got := ShouldCreateAsDraft(tt.effective); got != tt.createDraft {
				t.Errorf("ShouldCreateAsDraft() = %v, want %v", got, tt.createDraft)
			}
		})
	}
}

func TestBuildFeedPost(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	mission := &models.Mission{ID: 10, Space: models.SpaceOnline, OwnerID: 1}
	submission := &models.Submission{ID: 20, MissionID: 10, UserID: 2}

	t.Run("never creates nothing", func(t *testing.T) {
		if post := BuildFeedPost(mission, submission, models.FeedPrivacyNever, now); post != nil {
			t.Errorf("BuildFeedPost() = %v, want nil", post)
		}
	})

	t.Run("auto creates published post", func(t *testing.T) {
		post := BuildFeedPost(mission, submission, models.FeedPrivacyAuto, now)
		if post == nil {
			t.Fatal("BuildFeedPost() = nil, want post")
		}
		if !post.Published {
			t.Error("post should be published")
		}
		if !post.EditableUntil.IsZero() {
			t.Errorf("published post should have no edit window, got %v", post.EditableUntil)
		}
		if post.AuthorID != submission.UserID {
			t.Errorf("post author = %d, want worker %d", post.AuthorID, submission.UserID)
		}
		if post.Space != mission.Space {
			t.Errorf("post space = %v, want %v", post.Space, mission.Space)
		}
	})

	t.Run("ask creates draft with edit window", func(t *testing.T) {
		post := BuildFeedPost(mission, submission, models.FeedPrivacyAsk, now)
		if post == nil {
			t.Fatal("BuildFeedPost() = nil, want post")
		}
		if post.Published {
			t.Error("draft post should not be published")
		}
		want := now.Add(60 * time.Minute)
		if !post.EditableUntil.Equal(want) {
			t.Errorf("EditableUntil = %v, want %v", post.EditableUntil, want)
		}
	})
}
