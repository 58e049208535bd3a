package services

import (
	"strings"
	"testing"

	"github.com/taskrally/taskrally-backend/taskrally/database/models"
)

func TestRewardEscrowRelease(t *testing.T) {
	escrow := NewRewardEscrow()
	thread := &models.Thread{ID: 7}

	tests := []struct {
		name         string
		mission      *models.Mission
		inlineRef    string
		wantNil      bool
		wantInBody   string
		wantMediaRef string
	}{
		{
			name:       "reward text only",
			mission:    &models.Mission{ID: 1, OwnerID: 9, RewardText: "CODE123"},
			wantInBody: "CODE123",
		},
		{
			name:    "no reward content is a no-op",
			mission: &models.Mission{ID: 2, OwnerID: 9},
			wantNil: true,
		},
		{
			name:         "mission media only",
			mission:      &models.Mission{ID: 3, OwnerID: 9, RewardMediaRef: "https://cdn/m.png"},
			wantMediaRef: "https://cdn/m.png",
		},
		{
			name:         "mission media wins over inline",
			mission:      &models.Mission{ID: 4, OwnerID: 9, RewardMediaRef: "https://cdn/m.png"},
			inlineRef:    "https://cdn/inline.png",
			wantMediaRef: "https://cdn/m.png",
		},
		{
			name:         "inline media alone triggers disclosure",
			mission:      &models.Mission{ID: 5, OwnerID: 9},
			inlineRef:    "https://cdn/inline.png",
			wantMediaRef: "https://cdn/inline.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := escrow.Release(thread, tt.mission, tt.inlineRef)

			if tt.wantNil {
				if msg != nil {
					t.Fatalf("Release() = %v, want nil", msg)
				}
				return
			}
			if msg == nil {
				t.Fatal("Release() = nil, want message")
			}

			if msg.ThreadID != thread.ID {
				t.Errorf("ThreadID = %d, want %d", msg.ThreadID, thread.ID)
			}
			if msg.AuthorID != tt.mission.OwnerID {
				t.Errorf("AuthorID = %d, want mission owner %d", msg.AuthorID, tt.mission.OwnerID)
			}
			if msg.Type != models.MessageTypeReward {
				t.Errorf("Type = %v, want REWARD", msg.Type)
			}
			if !strings.HasPrefix(msg.Content, RewardHeader) {
				t.Errorf("Content %q should start with the reward header", msg.Content)
			}
			if tt.wantInBody != "" && !strings.Contains(msg.Content, tt.wantInBody) {
				t.Errorf("Content %q should contain %q", msg.Content, tt.wantInBody)
			}
			if msg.MediaRef != tt.wantMediaRef {
				t.Errorf("MediaRef = %q, want %q", msg.MediaRef, tt.wantMediaRef)
			}
		})
	}
}
