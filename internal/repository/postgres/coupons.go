package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sachin-raj-m/food-pass/internal/domain"
	"github.com/sachin-raj-m/food-pass/internal/repository"
)

type CouponRepo struct {
	pool Pool
	db   DB
}

func (r *CouponRepo) With(db DB) *CouponRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *CouponRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// InsertBatchGuard records the generation batch for an (event, meal type)
// pair. The UNIQUE (event_id, meal_type) constraint is the serialization
// point for duplicate batches: the second concurrent inserter fails here.
//
// Returns:
//   - error: repository.ErrConflict if a batch already exists for the pair.
func (r *CouponRepo) InsertBatchGuard(ctx context.Context, b domain.Batch) error {
	const op = "postgres.CouponRepo.InsertBatchGuard"

	db := r.handle()

	_, err := db.Exec(ctx,
		`INSERT INTO coupon_batches(id, event_id, meal_type, quantity, created_by)
       	 VALUES ($1, $2, $3, $4, $5)`,
		b.ID, b.EventID, b.MealType, b.Quantity, b.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return nil
}

// MaxTicketNumber returns the highest ticket number assigned to the event
// across all meal types, or 0 when the event has no coupons. Callers must
// hold the event row lock for the result to stay stable until insert.
func (r *CouponRepo) MaxTicketNumber(ctx context.Context, eventID uuid.UUID) (int64, error) {
	const op = "postgres.CouponRepo.MaxTicketNumber"

	db := r.handle()

	var maxNum int64
	err := db.QueryRow(ctx,
		`SELECT COALESCE(MAX(ticket_number), 0)
       	 FROM coupons WHERE event_id = $1`,
		eventID,
	).Scan(&maxNum)
	if err != nil {
		return 0, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return maxNum, nil
}

// BulkInsert inserts a full batch of unused coupons in one statement.
// ids and ticketNumbers are parallel slices.
func (r *CouponRepo) BulkInsert(
	ctx context.Context,
	eventID uuid.UUID,
	mealType domain.MealType,
	expiresAt time.Time,
	ids []uuid.UUID,
	ticketNumbers []int64,
) error {
	const op = "postgres.CouponRepo.BulkInsert"

	db := r.handle()

	tag, err := db.Exec(ctx,
		`INSERT INTO coupons(id, event_id, meal_type, ticket_number, expires_at, status)
       	 SELECT c.id, $1, $2, c.ticket_number, $3, 'unused'
       	 FROM unnest($4::uuid[], $5::bigint[]) AS c(id, ticket_number)`,
		eventID, mealType, expiresAt, ids, ticketNumbers,
	)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	if int(tag.RowsAffected()) != len(ids) {
		return fmt.Errorf("%s: inserted %d of %d coupons", op, tag.RowsAffected(), len(ids))
	}

	return nil
}

// GetForUpdate reads a coupon by ID under a row lock, so concurrent
// redeemers of the same coupon queue behind each other.
//
// Returns:
//   - *domain.Coupon: the locked coupon row.
//   - error: repository.ErrNotFound if no coupon has this ID.
func (r *CouponRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Coupon, error) {
	const op = "postgres.CouponRepo.GetForUpdate"

	db := r.handle()

	var c domain.Coupon
	err := db.QueryRow(ctx,
		`SELECT id, event_id, meal_type, ticket_number, expires_at, status, created_at
       	 FROM coupons WHERE id = $1
       	 FOR UPDATE`,
		id,
	).Scan(&c.ID, &c.EventID, &c.MealType, &c.TicketNumber, &c.ExpiresAt, &c.Status, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return &c, nil
}

// GetByTicketForUpdate resolves a manually entered ticket number to its
// coupon row, locked. Ticket numbers are only unique per event, so an
// unscoped lookup that matches coupons in several events fails with
// repository.ErrAmbiguousTicket instead of guessing.
func (r *CouponRepo) GetByTicketForUpdate(
	ctx context.Context,
	ticketNumber int64,
	eventID *uuid.UUID,
) (*domain.Coupon, error) {
	const op = "postgres.CouponRepo.GetByTicketForUpdate"

	db := r.handle()

	sql := `SELECT id, event_id, meal_type, ticket_number, expires_at, status, created_at
       	 FROM coupons WHERE ticket_number = $1`
	args := []any{ticketNumber}

	if eventID != nil {
		sql += ` AND event_id = $2`
		args = append(args, *eventID)
	}

	sql += ` FOR UPDATE`

	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer rows.Close()

	var out []domain.Coupon
	for rows.Next() {
		var c domain.Coupon
		if err := rows.Scan(
			&c.ID,
			&c.EventID,
			&c.MealType,
			&c.TicketNumber,
			&c.ExpiresAt,
			&c.Status,
			&c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}

		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	switch len(out) {
	case 0:
		return nil, fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	case 1:
		return &out[0], nil
	default:
		return nil, fmt.Errorf("%s:%w", op, repository.ErrAmbiguousTicket)
	}
}

// MarkUsed flips the coupon to used. The caller holds the row lock and
// has already verified the current status is unused.
func (r *CouponRepo) MarkUsed(ctx context.Context, id uuid.UUID) error {
	return r.setStatus(ctx, "postgres.CouponRepo.MarkUsed", id, domain.CouponUsed)
}

// MarkExpired persists the lazy unused->expired transition.
func (r *CouponRepo) MarkExpired(ctx context.Context, id uuid.UUID) error {
	return r.setStatus(ctx, "postgres.CouponRepo.MarkExpired", id, domain.CouponExpired)
}

func (r *CouponRepo) setStatus(ctx context.Context, op string, id uuid.UUID, status domain.CouponStatus) error {
	db := r.handle()

	tag, err := db.Exec(ctx,
		`UPDATE coupons SET status = $2 WHERE id = $1 AND status = 'unused'`,
		id, status,
	)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrConflict)
	}

	return nil
}

// ListByEvent lists all coupons of an event, optionally filtered by meal
// type, in ticket number order.
func (r *CouponRepo) ListByEvent(
	ctx context.Context,
	eventID uuid.UUID,
	mealType *domain.MealType,
) ([]domain.Coupon, error) {
	const op = "postgres.CouponRepo.ListByEvent"

	db := r.handle()

	sql := `SELECT id, event_id, meal_type, ticket_number, expires_at, status, created_at
       	 FROM coupons WHERE event_id = $1`
	args := []any{eventID}

	if mealType != nil {
		sql += ` AND meal_type = $2`
		args = append(args, *mealType)
	}

	sql += ` ORDER BY ticket_number`

	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer rows.Close()

	var out []domain.Coupon
	for rows.Next() {
		var c domain.Coupon
		if err := rows.Scan(
			&c.ID,
			&c.EventID,
			&c.MealType,
			&c.TicketNumber,
			&c.ExpiresAt,
			&c.Status,
			&c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}

		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}
