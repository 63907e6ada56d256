package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sachin-raj-m/food-pass/internal/domain"
)

type EventRepo struct {
	pool Pool
	db   DB
}

func (r *EventRepo) With(db DB) *EventRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *EventRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// Get retrieves an event by its ID.
//
// Returns:
//   - *domain.Event: the event when found.
//   - error: repository.ErrNotFound if the event is not found.
func (r *EventRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	const op = "postgres.EventRepo.Get"

	db := r.handle()

	var e domain.Event
	err := db.QueryRow(ctx,
		`SELECT id, title, venue, event_date, coupon_expiry_time, created_at
       	 FROM events WHERE id = $1`,
		id,
	).Scan(&e.ID, &e.Title, &e.Venue, &e.EventDate, &e.CouponExpiryTime, &e.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return &e, nil
}

// GetForUpdate reads the event row under a row lock. Batch generation
// serializes on this lock so ticket number runs for one event cannot
// interleave.
func (r *EventRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	const op = "postgres.EventRepo.GetForUpdate"

	db := r.handle()

	var e domain.Event
	err := db.QueryRow(ctx,
		`SELECT id, title, venue, event_date, coupon_expiry_time, created_at
       	 FROM events WHERE id = $1
         FOR UPDATE`,
		id,
	).Scan(&e.ID, &e.Title, &e.Venue, &e.EventDate, &e.CouponExpiryTime, &e.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return &e, nil
}
