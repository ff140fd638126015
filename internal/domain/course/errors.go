package course

import "errors"

var (
	ErrNotFound        = errors.New("course not found")
	ErrInvalidJoinCode = errors.New("invalid join code")
	ErrAlreadyEnrolled = errors.New("student already enrolled")
	ErrNotInstructor   = errors.New("user is not the course instructor")
)
