package httpgin

import (
	"github.com/sachin-raj-m/food-pass/internal/domain"
)

type GenerateCouponsRequest struct {
	Count    int    `json:"count" binding:"required"`
	MealType string `json:"meal_type" binding:"required"`
}

type GeneratedCoupon struct {
	ID      string `json:"id"`
	EventID string `json:"event_id"`
}

type GenerateCouponsResponse struct {
	Coupons []GeneratedCoupon `json:"coupons"`
}

type RedeemRequest struct {
	ID           string `json:"id"`
	TicketNumber int64  `json:"ticket_number"`
	EventID      string `json:"event_id"`
}

type RedeemResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type ListCouponsResponse struct {
	Coupons []domain.Coupon `json:"coupons"`
}

type EventStatsResponse struct {
	Stats []domain.MealStat `json:"stats"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
