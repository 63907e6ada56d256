package redemption

import (
	"errors"
)

var (
	ErrCouponNotFound  = errors.New("coupon not found")
	ErrAlreadyRedeemed = errors.New("coupon already redeemed")
	ErrCouponExpired   = errors.New("coupon expired")
	ErrForbiddenRole   = errors.New("role not allowed to redeem")
	ErrMissingLookup   = errors.New("redeem request needs a coupon id or ticket number")
	ErrAmbiguousTicket = errors.New("ticket number matches several events, supply event_id")
	ErrRateLimited     = errors.New("rate limited")
)
