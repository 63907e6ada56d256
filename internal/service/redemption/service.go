package redemption

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sachin-raj-m/food-pass/internal/domain"
	"github.com/sachin-raj-m/food-pass/internal/repository"
	postgresrepo "github.com/sachin-raj-m/food-pass/internal/repository/postgres"
	redisrepo "github.com/sachin-raj-m/food-pass/internal/repository/redis"
	"github.com/sachin-raj-m/food-pass/internal/uow"
)

type Service struct {
	store   *postgresrepo.Store
	cache   *redisrepo.Cache
	pubsub  *redisrepo.RedemptionsPubSub
	limiter *redisrepo.SlidingWindowLimiter
	uow     *uow.UoW

	TimeNow func() time.Time
}

func New(
	store *postgresrepo.Store,
	cache *redisrepo.Cache,
	pubsub *redisrepo.RedemptionsPubSub,
	limiter *redisrepo.SlidingWindowLimiter,
) *Service {
	return &Service{
		store:   store,
		cache:   cache,
		pubsub:  pubsub,
		limiter: limiter,
		uow:     uow.NewUoW(store),
		TimeNow: time.Now,
	}
}

// Redeem transitions one coupon from unused to used, exactly once.
//
// The role gate and lookup validation run before the transaction; the
// rest is a single serializable transaction around a locked coupon read,
// so of N concurrent redeemers of the same coupon exactly one commits
// status=used and the rest observe used (or expired) through the lock.
// A lapsed expires_at persists status=expired inside the same
// transaction before the call fails, closing the race where a concurrent
// redeemer could still see unused after the deadline.
//
// Parameters:
//   - ctx: request-scoped context.
//   - lookup: coupon id, or ticket number optionally scoped to an event;
//     the id wins when both are present.
//   - actor: the staff identity, must hold the vendor or volunteer role.
//   - rlKey: rate-limit bucket for the caller, empty to skip.
//
// Returns:
//   - *domain.RedemptionReceipt: confirmation of the committed redemption.
//   - error: redemption.ErrForbiddenRole, redemption.ErrMissingLookup,
//     redemption.ErrCouponNotFound, redemption.ErrAlreadyRedeemed,
//     redemption.ErrCouponExpired, redemption.ErrAmbiguousTicket,
//     redemption.ErrRateLimited.
func (s *Service) Redeem(
	ctx context.Context,
	lookup domain.RedeemLookup,
	actor domain.Actor,
	rlKey string,
) (*domain.RedemptionReceipt, error) {
	const op = "service.redemption.Redeem"

	if !actor.Role.CanRedeem() {
		return nil, fmt.Errorf("%s:%w", op, ErrForbiddenRole)
	}

	if lookup.CouponID == nil && lookup.TicketNumber == nil {
		return nil, fmt.Errorf("%s:%w", op, ErrMissingLookup)
	}

	if s.limiter != nil && rlKey != "" {
		ok, _, _, err := s.limiter.Allow(ctx, rlKey)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, err)
		}
		if !ok {
			return nil, fmt.Errorf("%s:%w", op, ErrRateLimited)
		}
	}

	var receipt *domain.RedemptionReceipt
	var expired bool

	err := s.uow.Do(ctx, func(
		ctx context.Context,
		tx postgresrepo.DB,
		after func(uow.AfterCommit),
	) error {
		coupon, err := s.lockCoupon(ctx, tx, lookup)
		if err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}

		switch coupon.Status {
		case domain.CouponUsed:
			return fmt.Errorf("%s:%w", op, ErrAlreadyRedeemed)
		case domain.CouponExpired:
			return fmt.Errorf("%s:%w", op, ErrCouponExpired)
		}

		now := s.TimeNow()

		if now.After(coupon.ExpiresAt) {
			if err := s.store.Coupons().With(tx).MarkExpired(ctx, coupon.ID); err != nil {
				return fmt.Errorf("%s:%w", op, err)
			}

			// commit the expiry write, fail the call afterwards
			expired = true
			return nil
		}

		if err := s.store.Coupons().With(tx).MarkUsed(ctx, coupon.ID); err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}

		red := domain.Redemption{
			ID:         uuid.New(),
			CouponID:   coupon.ID,
			RedeemedBy: actor.ID,
			Role:       actor.Role,
			RedeemedAt: now,
		}
		if err := s.store.Redemptions().With(tx).Insert(ctx, red); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return fmt.Errorf("%s:%w", op, ErrAlreadyRedeemed)
			}

			return fmt.Errorf("%s:%w", op, err)
		}

		receipt = &domain.RedemptionReceipt{
			CouponID:     coupon.ID,
			TicketNumber: coupon.TicketNumber,
			MealType:     coupon.MealType,
			RedeemedAt:   now,
		}

		after(func(ctx context.Context) {
			if s.cache != nil {
				_ = s.cache.InvalidateEventStats(ctx, coupon.EventID)
			}
			if s.pubsub != nil {
				_ = s.pubsub.PublishCouponRedeemed(ctx, coupon.ID, coupon.EventID, coupon.MealType)
			}
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	if expired {
		return nil, fmt.Errorf("%s:%w", op, ErrCouponExpired)
	}

	return receipt, nil
}

func (s *Service) lockCoupon(
	ctx context.Context,
	tx postgresrepo.DB,
	lookup domain.RedeemLookup,
) (*domain.Coupon, error) {
	if lookup.CouponID != nil {
		coupon, err := s.store.Coupons().With(tx).GetForUpdate(ctx, *lookup.CouponID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrCouponNotFound
			}

			return nil, err
		}

		return coupon, nil
	}

	coupon, err := s.store.Coupons().
		With(tx).
		GetByTicketForUpdate(ctx, *lookup.TicketNumber, lookup.EventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCouponNotFound
		}
		if errors.Is(err, repository.ErrAmbiguousTicket) {
			return nil, ErrAmbiguousTicket
		}

		return nil, err
	}

	return coupon, nil
}
