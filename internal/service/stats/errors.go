package stats

import (
	"errors"
)

var (
	ErrEventNotFound = errors.New("event not found")
	ErrInvalidRange  = errors.New("invalid date range")
)
