package httpgin

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sachin-raj-m/food-pass/internal/domain"
	"github.com/sachin-raj-m/food-pass/internal/identity"
	redisrepo "github.com/sachin-raj-m/food-pass/internal/repository/redis"
	"github.com/sachin-raj-m/food-pass/internal/service"
	"github.com/sachin-raj-m/food-pass/internal/service/issuance"
	"github.com/sachin-raj-m/food-pass/internal/service/redemption"
	"github.com/sachin-raj-m/food-pass/internal/service/stats"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func NewRouter(
	svcs *service.Services,
	provider identity.Provider,
	idem *redisrepo.IdempotencyStore,
	logger *slog.Logger,
	middlewares ...gin.HandlerFunc,
) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery(), LoggingMiddleware(logger), RequestIDMiddleware(), CORS())
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	// Swagger UI
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// health
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := AuthMiddleware(provider)

	// Admin API
	admin := r.Group("/", auth, RequireRole(domain.RoleAdmin))
	{
		admin.POST("/events/:id/generate-coupons", handleGenerateCoupons(svcs, idem))
		admin.GET("/events/:id/coupons", handleListCoupons(svcs))
		admin.GET("/events/:id/stats", handleEventStats(svcs))
		admin.GET("/stats", handleGlobalStats(svcs))
	}

	// Scanner API. The role gate lives in the redemption service so the
	// forbidden case is decided next to the state machine it protects.
	r.POST("/redeem", auth, handleRedeem(svcs))

	return r
}

// --- Handlers with Swagger annotations ---

// @Summary  Generate a coupon batch for an event meal (idempotent via header)
// @Param    id  path  string  true  "Event ID (uuid)"
// @Param    req body  GenerateCouponsRequest true "payload"
// @Header   201 {string} Idempotency-Key "echo"
// @Success  201 {object} GenerateCouponsResponse
// @Failure  400 {object} ErrorResponse
// @Failure  404 {object} ErrorResponse "event not found"
// @Failure  409 {object} ErrorResponse "batch already generated / idem in progress"
// @Router   /events/{id}/generate-coupons [post]
func handleGenerateCoupons(
	svcs *service.Services,
	idem *redisrepo.IdempotencyStore,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		var req GenerateCouponsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		actor, _ := actorFrom(c)

		idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
		var idemStorageKey string
		if idem != nil && idemKey != "" {
			idemStorageKey = redisrepo.KeyIdemBatch(eventID, idemKey)

			if payload, ok, _ := idem.GetResult(
				c.Request.Context(),
				idemStorageKey,
			); ok {
				c.Header("Idempotency-Key", idemKey)
				c.Data(
					http.StatusCreated,
					"application/json; charset=utf-8",
					[]byte(payload),
				)
				return
			}

			locked, err := idem.AcquireLock(
				c.Request.Context(),
				idemStorageKey,
				60*time.Second,
			)
			if err != nil {
				respondErr(c, err)
				return
			}
			if !locked {
				if payload, ok, _ := idem.GetResult(
					c.Request.Context(),
					idemStorageKey,
				); ok {
					c.Header("Idempotency-Key", idemKey)
					c.Data(
						http.StatusCreated,
						"application/json; charset=utf-8",
						[]byte(payload),
					)
					return
				}
				c.Header("Retry-After", "1")
				c.JSON(
					http.StatusConflict,
					ErrorResponse{Error: "idempotency key in progress"},
				)
				return
			}
		}

		coupons, err := svcs.Issuance.GenerateBatch(
			c.Request.Context(),
			eventID,
			req.MealType,
			req.Count,
			actor.ID,
		)
		if err != nil {
			if idemStorageKey != "" && idem != nil {
				_ = idem.Release(c.Request.Context(), idemStorageKey)
			}
			respondErr(c, err)
			return
		}

		resp := GenerateCouponsResponse{
			Coupons: make([]GeneratedCoupon, 0, len(coupons)),
		}
		for _, cp := range coupons {
			resp.Coupons = append(resp.Coupons, GeneratedCoupon{
				ID:      cp.ID.String(),
				EventID: cp.EventID.String(),
			})
		}

		if idemStorageKey != "" && idem != nil {
			b, _ := json.Marshal(resp)
			_ = idem.SaveResult(c.Request.Context(), idemStorageKey, string(b))
			c.Header("Idempotency-Key", idemKey)
		}

		c.JSON(http.StatusCreated, resp)
	}
}

// @Summary  List an event's coupons
// @Param    id         path   string  true  "Event ID (uuid)"
// @Param    meal_type  query  string  false "filter by meal type"
// @Success  200 {object} ListCouponsResponse
// @Failure  404 {object} ErrorResponse
// @Router   /events/{id}/coupons [get]
func handleListCoupons(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}

		coupons, err := svcs.Issuance.ListCoupons(
			c.Request.Context(),
			eventID,
			c.Query("meal_type"),
		)
		if err != nil {
			respondErr(c, err)
			return
		}

		if coupons == nil {
			coupons = []domain.Coupon{}
		}

		c.JSON(http.StatusOK, ListCouponsResponse{Coupons: coupons})
	}
}

// @Summary  Per-meal-type counts for an event
// @Param    id  path  string  true  "Event ID (uuid)"
// @Success  200 {object} EventStatsResponse
// @Failure  404 {object} ErrorResponse
// @Router   /events/{id}/stats [get]
func handleEventStats(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}

		ms, err := svcs.Stats.EventStats(c.Request.Context(), eventID)
		if err != nil {
			respondErr(c, err)
			return
		}

		if ms == nil {
			ms = []domain.MealStat{}
		}

		// ETag + Cache-Control 15s
		writeJSONWithCache(c, http.StatusOK, EventStatsResponse{Stats: ms}, "public, max-age=15", true)
	}
}

// @Summary  Global generation/redemption counters over a date window
// @Param    start  query  string  false "YYYY-MM-DD (inclusive)"
// @Param    end    query  string  false "YYYY-MM-DD (inclusive)"
// @Success  200 {object} domain.GlobalStats
// @Failure  400 {object} ErrorResponse
// @Router   /stats [get]
func handleGlobalStats(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		r, err := parseDateRange(c.Query("start"), c.Query("end"))
		if err != nil {
			badRequest(c, err.Error())
			return
		}

		gs, err := svcs.Stats.GlobalStats(c.Request.Context(), r)
		if err != nil {
			respondErr(c, err)
			return
		}

		// ETag + Cache-Control 30s
		writeJSONWithCache(c, http.StatusOK, gs, "public, max-age=30", true)
	}
}

// @Summary  Redeem a coupon (scan or manual ticket entry)
// @Param    req body  RedeemRequest true "coupon id, or ticket_number with optional event_id"
// @Success  200 {object} RedeemResponse
// @Failure  400 {object} ErrorResponse
// @Failure  403 {object} ErrorResponse "role may not redeem"
// @Failure  404 {object} ErrorResponse
// @Failure  409 {object} ErrorResponse "already redeemed / expired"
// @Failure  429 {object} ErrorResponse "rate limited"
// @Router   /redeem [post]
func handleRedeem(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RedeemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}

		lookup, err := buildLookup(req)
		if err != nil {
			badRequest(c, err.Error())
			return
		}

		actor, _ := actorFrom(c)
		rlKey := "ip:" + c.ClientIP()

		_, err = svcs.Redemption.Redeem(c.Request.Context(), lookup, actor, rlKey)
		if err != nil {
			if errors.Is(err, redemption.ErrRateLimited) {
				c.Header("Retry-After", "60")
				c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "rate limited"})
				return
			}
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, RedeemResponse{
			Success: true,
			Message: "Coupon Redeemed!",
		})
	}
}

// --- Helpers ---

func buildLookup(req RedeemRequest) (domain.RedeemLookup, error) {
	var lookup domain.RedeemLookup

	if req.ID != "" {
		id, err := uuid.Parse(req.ID)
		if err != nil {
			return lookup, errors.New("invalid coupon id")
		}
		lookup.CouponID = &id
	}

	if req.TicketNumber != 0 {
		n := req.TicketNumber
		lookup.TicketNumber = &n
	}

	if req.EventID != "" {
		eid, err := uuid.Parse(req.EventID)
		if err != nil {
			return lookup, errors.New("invalid event id")
		}
		lookup.EventID = &eid
	}

	return lookup, nil
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	v, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return v, true
}

func parseDateRange(start, end string) (domain.DateRange, error) {
	r := domain.DateRange{
		Start: time.Unix(0, 0).UTC(),
		End:   time.Now().UTC(),
	}

	if start != "" {
		t, err := time.Parse("2006-01-02", start)
		if err != nil {
			return r, errors.New("invalid start date (YYYY-MM-DD)")
		}
		r.Start = t
	}

	if end != "" {
		t, err := time.Parse("2006-01-02", end)
		if err != nil {
			return r, errors.New("invalid end date (YYYY-MM-DD)")
		}
		r.End = t
	}

	return r, nil
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func respondErr(c *gin.Context, err error) {
	if err == nil {
		c.Status(http.StatusNoContent)
		return
	}

	switch {
	// issuance service
	case errors.Is(err, issuance.ErrInvalidCount):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "count must be between 1 and 1000"})
	case errors.Is(err, issuance.ErrInvalidMealType):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid meal type"})
	case errors.Is(err, issuance.ErrEventNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "event not found"})
	case errors.Is(err, issuance.ErrBatchExists):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "coupons already generated for this meal type"})
	// redemption service
	case errors.Is(err, redemption.ErrMissingLookup):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing coupon id or ticket number"})
	case errors.Is(err, redemption.ErrAmbiguousTicket):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "ticket number is ambiguous, supply event_id"})
	case errors.Is(err, redemption.ErrForbiddenRole):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "only vendors and volunteers can redeem"})
	case errors.Is(err, redemption.ErrCouponNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "coupon not found"})
	case errors.Is(err, redemption.ErrAlreadyRedeemed):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "coupon already redeemed"})
	case errors.Is(err, redemption.ErrCouponExpired):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "coupon expired"})
	// stats service
	case errors.Is(err, stats.ErrEventNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "event not found"})
	case errors.Is(err, stats.ErrInvalidRange):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid date range"})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
