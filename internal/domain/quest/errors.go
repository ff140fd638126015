package quest

import "errors"

var (
	ErrNotFound         = errors.New("quest not found")
	ErrNotInstructor    = errors.New("user is not the course instructor")
	ErrInactive         = errors.New("quest is inactive")
	ErrExpired          = errors.New("quest is past its due date")
	ErrAlreadyCompleted = errors.New("quest already completed by student")
	ErrNonPositive      = errors.New("quest points must be positive")
)
