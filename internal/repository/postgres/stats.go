package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sachin-raj-m/food-pass/internal/domain"
)

type StatsRepo struct {
	pool Pool
	db   DB
}

func (r *StatsRepo) With(db DB) *StatsRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *StatsRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// EventMealStats aggregates an event's coupons by meal type. Meal types
// with no coupons do not appear.
func (r *StatsRepo) EventMealStats(ctx context.Context, eventID uuid.UUID) ([]domain.MealStat, error) {
	const op = "postgres.StatsRepo.EventMealStats"

	db := r.handle()

	rows, err := db.Query(ctx,
		`SELECT meal_type,
       	 	COUNT(*),
       	 	COUNT(*) FILTER (WHERE status = 'used')
       	 FROM coupons
       	 WHERE event_id = $1
       	 GROUP BY meal_type
       	 ORDER BY meal_type`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer rows.Close()

	var out []domain.MealStat
	for rows.Next() {
		var ms domain.MealStat
		if err := rows.Scan(&ms.MealType, &ms.TotalCount, &ms.UsedCount); err != nil {
			return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}

		out = append(out, ms)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}

// GlobalCounts counts coupons created and redemptions recorded in the
// half-open window [from, to).
func (r *StatsRepo) GlobalCounts(ctx context.Context, from, to time.Time) (generated, redeemed int64, err error) {
	const op = "postgres.StatsRepo.GlobalCounts"

	db := r.handle()

	err = db.QueryRow(ctx,
		`SELECT
       	 	(SELECT COUNT(*) FROM coupons     WHERE created_at  >= $1 AND created_at  < $2),
       	 	(SELECT COUNT(*) FROM redemptions WHERE redeemed_at >= $1 AND redeemed_at < $2)`,
		from, to,
	).Scan(&generated, &redeemed)
	if err != nil {
		return 0, 0, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return generated, redeemed, nil
}
