package reward

import "errors"

var (
	ErrNotFound      = errors.New("reward not found")
	ErrNegativeCost  = errors.New("reward cost must not be negative")
	ErrNotInstructor = errors.New("only the course instructor can manage rewards")
	ErrInvalidImage  = errors.New("invalid reward image")
)
