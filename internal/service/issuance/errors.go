package issuance

import (
	"errors"
)

var (
	ErrEventNotFound   = errors.New("event not found")
	ErrBatchExists     = errors.New("batch already generated for this event and meal type")
	ErrInvalidCount    = errors.New("count must be between 1 and 1000")
	ErrInvalidMealType = errors.New("invalid meal type")
)
