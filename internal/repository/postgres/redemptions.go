package postgres

import (
	"context"
	"fmt"

	"github.com/sachin-raj-m/food-pass/internal/domain"
)

type RedemptionRepo struct {
	pool Pool
	db   DB
}

func (r *RedemptionRepo) With(db DB) *RedemptionRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *RedemptionRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// Insert records a redemption. The UNIQUE constraint on coupon_id
// guarantees at most one redemption row ever exists per coupon.
//
// Returns:
//   - error: repository.ErrConflict if the coupon already has a redemption.
func (r *RedemptionRepo) Insert(ctx context.Context, red domain.Redemption) error {
	const op = "postgres.RedemptionRepo.Insert"

	db := r.handle()

	_, err := db.Exec(ctx,
		`INSERT INTO redemptions(id, coupon_id, redeemed_by, role, redeemed_at)
       	 VALUES ($1, $2, $3, $4, $5)`,
		red.ID, red.CouponID, red.RedeemedBy, red.Role, red.RedeemedAt,
	)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return nil
}
