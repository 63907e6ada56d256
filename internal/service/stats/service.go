package stats

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sachin-raj-m/food-pass/internal/domain"
	"github.com/sachin-raj-m/food-pass/internal/repository"
	postgresrepo "github.com/sachin-raj-m/food-pass/internal/repository/postgres"
	redisrepo "github.com/sachin-raj-m/food-pass/internal/repository/redis"
)

type Config struct {
	EventStatsTTL  time.Duration
	GlobalStatsTTL time.Duration
}

// Service serves reporting counts. It is read-only and eventually
// consistent: a short cache TTL is acceptable here because nothing in
// the redemption path ever reads these numbers.
type Service struct {
	store *postgresrepo.Store
	cache *redisrepo.Cache
	cfg   Config
}

func New(store *postgresrepo.Store, cache *redisrepo.Cache, cfg Config) *Service {
	if cfg.EventStatsTTL <= 0 {
		cfg.EventStatsTTL = 15 * time.Second
	}

	if cfg.GlobalStatsTTL <= 0 {
		cfg.GlobalStatsTTL = 30 * time.Second
	}

	return &Service{
		store: store,
		cache: cache,
		cfg:   cfg,
	}
}

// EventStats returns per-meal-type generation and usage counts for one
// event.
//
// Returns:
//   - []domain.MealStat: one entry per meal type that has coupons.
//   - error: stats.ErrEventNotFound if the event does not exist.
func (s *Service) EventStats(ctx context.Context, eventID uuid.UUID) ([]domain.MealStat, error) {
	const op = "service.stats.EventStats"

	load := func(ctx context.Context) ([]domain.MealStat, error) {
		if _, err := s.store.Events().Get(ctx, eventID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrEventNotFound
			}

			return nil, err
		}

		return s.store.Stats().EventMealStats(ctx, eventID)
	}

	if s.cache == nil {
		out, err := load(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, err)
		}

		return out, nil
	}

	out, err := redisrepo.GetOrSetJSON(
		ctx,
		s.cache,
		redisrepo.KeyEventStats(eventID),
		s.cfg.EventStatsTTL,
		load,
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}

// GlobalStats counts coupons generated and redemptions recorded in an
// inclusive calendar-day window, plus the redemption rate percentage.
//
// Returns:
//   - error: stats.ErrInvalidRange if the window is inverted.
func (s *Service) GlobalStats(ctx context.Context, r domain.DateRange) (*domain.GlobalStats, error) {
	const op = "service.stats.GlobalStats"

	if r.End.Before(r.Start) {
		return nil, fmt.Errorf("%s:%w", op, ErrInvalidRange)
	}

	// inclusive days -> half-open timestamps
	from := r.Start.Truncate(24 * time.Hour)
	to := r.End.Truncate(24 * time.Hour).Add(24 * time.Hour)

	load := func(ctx context.Context) (domain.GlobalStats, error) {
		generated, redeemed, err := s.store.Stats().GlobalCounts(ctx, from, to)
		if err != nil {
			return domain.GlobalStats{}, err
		}

		var rate float64
		if generated > 0 {
			rate = math.Round(float64(redeemed)/float64(generated)*1000) / 10
		}

		return domain.GlobalStats{
			Generated: generated,
			Redeemed:  redeemed,
			Rate:      rate,
		}, nil
	}

	if s.cache == nil {
		out, err := load(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, err)
		}

		return &out, nil
	}

	key := redisrepo.KeyGlobalStats(
		from.Format("2006-01-02"),
		to.Format("2006-01-02"),
	)

	out, err := redisrepo.GetOrSetJSON(ctx, s.cache, key, s.cfg.GlobalStatsTTL, load)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return &out, nil
}
