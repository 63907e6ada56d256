package repository

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrAmbiguousTicket = errors.New("ticket number matches more than one coupon")
)
