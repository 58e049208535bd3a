package models

import (
	"github.com/taskrally/taskrally-backend/taskrally/database/repositories"
)

// Repositories groups the data-access interfaces the API serves from.
type Repositories struct {
	User       repositories.UserRepository
	Mission    repositories.MissionRepository
	Submission repositories.SubmissionRepository
	Ledger     repositories.LedgerRepository
	Thread     repositories.ThreadRepository
	Message    repositories.MessageRepository
	FeedPost   repositories.FeedPostRepository
	Follow     repositories.FollowRepository
}

func NewRepositories(
	user repositories.UserRepository,
	mission repositories.MissionRepository,
	submission repositories.SubmissionRepository,
	ledger repositories.LedgerRepository,
	thread repositories.ThreadRepository,
	message repositories.MessageRepository,
	feedPost repositories.FeedPostRepository,
	follow repositories.FollowRepository,
) *Repositories {
	return &Repositories{
		User:       user,
		Mission:    mission,
		Submission: submission,
		Ledger:     ledger,
		Thread:     thread,
		Message:    message,
		FeedPost:   feedPost,
		Follow:     follow,
	}
}
