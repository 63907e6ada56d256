package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealSnacks    MealType = "snacks"
	MealDinner    MealType = "dinner"
)

// MealTypes lists all valid meal types in serving order.
var MealTypes = []MealType{MealBreakfast, MealLunch, MealSnacks, MealDinner}

func ParseMealType(s string) (MealType, error) {
	switch MealType(s) {
	case MealBreakfast, MealLunch, MealSnacks, MealDinner:
		return MealType(s), nil
	}
	return "", fmt.Errorf("invalid meal type %q", s)
}

type CouponStatus string

const (
	CouponUnused  CouponStatus = "unused"
	CouponUsed    CouponStatus = "used"
	CouponExpired CouponStatus = "expired"
)

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleVendor    Role = "vendor"
	RoleVolunteer Role = "volunteer"
	RoleNone      Role = "none"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleVendor, RoleVolunteer:
		return Role(s), nil
	}
	return RoleNone, fmt.Errorf("invalid role %q", s)
}

// CanRedeem reports whether the role is allowed to redeem coupons.
func (r Role) CanRedeem() bool {
	return r == RoleVendor || r == RoleVolunteer
}

// Actor is the authenticated staff identity behind a request.
type Actor struct {
	ID   uuid.UUID `json:"id"`
	Role Role      `json:"role"`
}

type Coupon struct {
	ID           uuid.UUID    `json:"id"`
	EventID      uuid.UUID    `json:"event_id"`
	MealType     MealType     `json:"meal_type"`
	TicketNumber int64        `json:"ticket_number"`
	ExpiresAt    time.Time    `json:"expires_at"`
	Status       CouponStatus `json:"status"`
	CreatedAt    time.Time    `json:"created_at"`
}

// Batch records one GenerateBatch call for an (event, meal type) pair.
// Its uniqueness constraint is what forbids regenerating a batch.
type Batch struct {
	ID        uuid.UUID `json:"id"`
	EventID   uuid.UUID `json:"event_id"`
	MealType  MealType  `json:"meal_type"`
	Quantity  int       `json:"quantity"`
	CreatedBy uuid.UUID `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

type Redemption struct {
	ID         uuid.UUID `json:"id"`
	CouponID   uuid.UUID `json:"coupon_id"`
	RedeemedBy uuid.UUID `json:"redeemed_by"`
	Role       Role      `json:"role"`
	RedeemedAt time.Time `json:"redeemed_at"`
}

// RedemptionReceipt confirms a successful redemption to the scanning
// station. It deliberately carries nothing that would let the caller
// replay the redemption.
type RedemptionReceipt struct {
	CouponID     uuid.UUID `json:"coupon_id"`
	TicketNumber int64     `json:"ticket_number"`
	MealType     MealType  `json:"meal_type"`
	RedeemedAt   time.Time `json:"redeemed_at"`
}

// RedeemLookup identifies the coupon to redeem. CouponID wins when both
// are present; TicketNumber is the manual-entry path and may be scoped
// to an event to disambiguate per-event sequences.
type RedeemLookup struct {
	CouponID     *uuid.UUID
	TicketNumber *int64
	EventID      *uuid.UUID
}

// Event is owned outside this service; only read at issuance time.
type Event struct {
	ID               uuid.UUID `json:"id"`
	Title            string    `json:"title"`
	Venue            string    `json:"venue"`
	EventDate        time.Time `json:"event_date"`
	CouponExpiryTime time.Time `json:"coupon_expiry_time"`
	CreatedAt        time.Time `json:"created_at"`
}

type MealStat struct {
	MealType   MealType `json:"meal_type"`
	TotalCount int64    `json:"total_count"`
	UsedCount  int64    `json:"used_count"`
}

type GlobalStats struct {
	Generated int64   `json:"generated"`
	Redeemed  int64   `json:"redeemed"`
	Rate      float64 `json:"rate"`
}

// DateRange is an inclusive calendar-day window.
type DateRange struct {
	Start time.Time
	End   time.Time
}
