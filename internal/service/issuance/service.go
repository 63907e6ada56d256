package issuance

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

const (
	MinBatchSize = 1
	MaxBatchSize = 1000
)

type Service struct {
	store *postgresrepo.Store
	cache *redisrepo.Cache
	uow   *uow.UoW

	TimeNow func() time.Time
}

func New(store *postgresrepo.Store, cache *redisrepo.Cache) *Service {
	return &Service{
		store:   store,
		cache:   cache,
		uow:     uow.NewUoW(store),
		TimeNow: time.Now,
	}
}

// GenerateBatch mints count coupons for one (event, meal type) pair.
//
// Ticket numbers are a contiguous run starting one past the event's
// current maximum across all meal types. The event row lock, batch guard
// insert, max read and bulk insert run in one transaction, so concurrent
// generators for the same event serialize on the event row and concurrent
// generators for the same pair lose on the batch guard's unique
// constraint.
//
// Parameters:
//   - ctx: request-scoped context.
//   - eventID: the event the coupons belong to.
//   - mealType: raw meal type string, validated here.
//   - count: number of coupons, in [1, 1000].
//   - createdBy: the admin actor recorded on the batch.
//
// Returns:
//   - []domain.Coupon: the freshly minted coupons, ticket order.
//   - error: issuance.ErrInvalidCount, issuance.ErrInvalidMealType,
//     issuance.ErrEventNotFound, issuance.ErrBatchExists.
func (s *Service) GenerateBatch(
	ctx context.Context,
	eventID uuid.UUID,
	mealType string,
	count int,
	createdBy uuid.UUID,
) ([]domain.Coupon, error) {
	const op = "service.issuance.GenerateBatch"

	if count < MinBatchSize || count > MaxBatchSize {
		return nil, fmt.Errorf("%s:%w", op, ErrInvalidCount)
	}

	meal, err := domain.ParseMealType(mealType)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, ErrInvalidMealType)
	}

	var coupons []domain.Coupon

	err = s.uow.Do(ctx, func(
		ctx context.Context,
		tx postgresrepo.DB,
		after func(uow.AfterCommit),
	) error {
		event, err := s.store.Events().With(tx).GetForUpdate(ctx, eventID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%s:%w", op, ErrEventNotFound)
			}

			return fmt.Errorf("%s:%w", op, err)
		}

		guard := domain.Batch{
			ID:        uuid.New(),
			EventID:   eventID,
			MealType:  meal,
			Quantity:  count,
			CreatedBy: createdBy,
		}
		if err := s.store.Coupons().With(tx).InsertBatchGuard(ctx, guard); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return fmt.Errorf("%s:%w", op, ErrBatchExists)
			}

			return fmt.Errorf("%s:%w", op, err)
		}

		maxNum, err := s.store.Coupons().With(tx).MaxTicketNumber(ctx, eventID)
		if err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}

		now := s.TimeNow()
		ids := make([]uuid.UUID, count)
		numbers := make([]int64, count)
		coupons = make([]domain.Coupon, count)
		for i := 0; i < count; i++ {
			ids[i] = uuid.New()
			numbers[i] = maxNum + int64(i) + 1
			coupons[i] = domain.Coupon{
				ID:           ids[i],
				EventID:      eventID,
				MealType:     meal,
				TicketNumber: numbers[i],
				ExpiresAt:    event.CouponExpiryTime,
				Status:       domain.CouponUnused,
				CreatedAt:    now,
			}
		}

		if err := s.store.Coupons().
			With(tx).
			BulkInsert(ctx, eventID, meal, event.CouponExpiryTime, ids, numbers); err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}

		if s.cache != nil {
			after(func(ctx context.Context) {
				_ = s.cache.InvalidateEventStats(ctx, eventID)
			})
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return coupons, nil
}

// ListCoupons returns an event's coupons in ticket order, optionally
// filtered by meal type.
//
// Returns:
//   - error: issuance.ErrEventNotFound if the event does not exist.
//   - error: issuance.ErrInvalidMealType if the filter is not a meal type.
func (s *Service) ListCoupons(
	ctx context.Context,
	eventID uuid.UUID,
	mealTypeFilter string,
) ([]domain.Coupon, error) {
	const op = "service.issuance.ListCoupons"

	var filter *domain.MealType
	if mealTypeFilter != "" {
		meal, err := domain.ParseMealType(mealTypeFilter)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, ErrInvalidMealType)
		}
		filter = &meal
	}

	if _, err := s.store.Events().Get(ctx, eventID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrEventNotFound)
		}

		return nil, fmt.Errorf("%s:%w", op, err)
	}

	coupons, err := s.store.Coupons().ListByEvent(ctx, eventID, filter)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return coupons, nil
}
