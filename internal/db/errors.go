package db

import "errors"

var (
	// ErrUserNotFound is returned when no record exists for the user.
	ErrUserNotFound = errors.New("user not found")
	// ErrGoalNotSet is returned when progress is reported before the setup
	// dialog has stored a goal.
	ErrGoalNotSet = errors.New("goal not set")
)
