package identity

import (
	"context"
	"errors"

	"github.com/sachin-raj-m/food-pass/internal/domain"
)

var (
	ErrNoIdentity      = errors.New("no identity")
	ErrInvalidIdentity = errors.New("invalid identity")
)

// Provider resolves a request credential to the acting staff identity.
// The service trusts the returned actor as ground truth for
// authorization decisions.
type Provider interface {
	Resolve(ctx context.Context, credential string) (domain.Actor, error)
}
