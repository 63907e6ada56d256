package httpgin

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/suite"

	"github.com/sachin-raj-m/food-pass/internal/domain"
	"github.com/sachin-raj-m/food-pass/internal/identity"
	postgresrepo "github.com/sachin-raj-m/food-pass/internal/repository/postgres"
	"github.com/sachin-raj-m/food-pass/internal/service"
)

var txOpts = pgx.TxOptions{
	IsoLevel:   pgx.Serializable,
	AccessMode: pgx.ReadWrite,
}

type RouterTestSuite struct {
	suite.Suite
	mock     pgxmock.PgxPoolIface
	provider *identity.JWTProvider
	router   *gin.Engine

	admin  domain.Actor
	vendor domain.Actor
}

func (s *RouterTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	pool, err := pgxmock.NewPool()
	if err != nil {
		s.T().Fatalf("failed to create pgxmock pool: %v", err)
	}

	s.mock = pool
	s.provider = identity.NewJWTProvider("router-test-secret")

	svcs := service.NewServices(postgresrepo.NewStore(pool), nil, nil, nil, service.Config{})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.router = NewRouter(svcs, s.provider, nil, logger)

	s.admin = domain.Actor{ID: uuid.New(), Role: domain.RoleAdmin}
	s.vendor = domain.Actor{ID: uuid.New(), Role: domain.RoleVendor}
}

func (s *RouterTestSuite) TearDownTest() {
	s.mock.Close()
}

func TestRouterTestSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}

func (s *RouterTestSuite) do(method, path string, body any, actor *domain.Actor) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	if actor != nil {
		token, err := s.provider.IssueToken(*actor, time.Hour)
		s.Require().NoError(err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *RouterTestSuite) eventRows(eventID uuid.UUID, expiry time.Time) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows([]string{
		"id", "title", "venue", "event_date", "coupon_expiry_time", "created_at",
	}).AddRow(eventID, "DevConf", "Hall A", now, expiry, now)
}

func (s *RouterTestSuite) couponRows(couponID, eventID uuid.UUID, status domain.CouponStatus, expiresAt time.Time) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "event_id", "meal_type", "ticket_number", "expires_at", "status", "created_at",
	}).AddRow(couponID, eventID, domain.MealLunch, int64(1), expiresAt, status, time.Now())
}

func (s *RouterTestSuite) TestHealthz() {
	rec := s.do(http.MethodGet, "/healthz", nil, nil)
	s.Equal(http.StatusOK, rec.Code)
}

func (s *RouterTestSuite) TestGenerateCouponsRequiresAuth() {
	eventID := uuid.New()

	rec := s.do(
		http.MethodPost,
		"/events/"+eventID.String()+"/generate-coupons",
		GenerateCouponsRequest{Count: 10, MealType: "lunch"},
		nil,
	)
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *RouterTestSuite) TestGenerateCouponsRequiresAdmin() {
	eventID := uuid.New()

	rec := s.do(
		http.MethodPost,
		"/events/"+eventID.String()+"/generate-coupons",
		GenerateCouponsRequest{Count: 10, MealType: "lunch"},
		&s.vendor,
	)
	s.Equal(http.StatusForbidden, rec.Code)
}

func (s *RouterTestSuite) TestGenerateCouponsSuccess() {
	eventID := uuid.New()
	expiry := time.Now().Add(6 * time.Hour)

	s.mock.ExpectBeginTx(txOpts)
	s.mock.ExpectQuery("FROM events").
		WithArgs(eventID).
		WillReturnRows(s.eventRows(eventID, expiry))
	s.mock.ExpectExec("INSERT INTO coupon_batches").
		WithArgs(pgxmock.AnyArg(), eventID, domain.MealLunch, 2, s.admin.ID).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	s.mock.ExpectQuery("COALESCE").
		WithArgs(eventID).
		WillReturnRows(pgxmock.NewRows([]string{"coalesce"}).AddRow(int64(0)))
	s.mock.ExpectExec("INSERT INTO coupons").
		WithArgs(eventID, domain.MealLunch, pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))
	s.mock.ExpectCommit()

	rec := s.do(
		http.MethodPost,
		"/events/"+eventID.String()+"/generate-coupons",
		GenerateCouponsRequest{Count: 2, MealType: "lunch"},
		&s.admin,
	)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	var resp GenerateCouponsResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Len(resp.Coupons, 2)
	for _, c := range resp.Coupons {
		s.Equal(eventID.String(), c.EventID)
	}

	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *RouterTestSuite) TestGenerateCouponsInvalidCount() {
	eventID := uuid.New()

	rec := s.do(
		http.MethodPost,
		"/events/"+eventID.String()+"/generate-coupons",
		GenerateCouponsRequest{Count: 2000, MealType: "lunch"},
		&s.admin,
	)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *RouterTestSuite) TestGenerateCouponsBadEventID() {
	rec := s.do(
		http.MethodPost,
		"/events/not-a-uuid/generate-coupons",
		GenerateCouponsRequest{Count: 10, MealType: "lunch"},
		&s.admin,
	)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *RouterTestSuite) TestRedeemSuccess() {
	couponID := uuid.New()
	eventID := uuid.New()

	s.mock.ExpectBeginTx(txOpts)
	s.mock.ExpectQuery("FOR UPDATE").
		WithArgs(couponID).
		WillReturnRows(s.couponRows(couponID, eventID, domain.CouponUnused, time.Now().Add(time.Hour)))
	s.mock.ExpectExec("UPDATE coupons SET status").
		WithArgs(couponID, domain.CouponUsed).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	s.mock.ExpectExec("INSERT INTO redemptions").
		WithArgs(pgxmock.AnyArg(), couponID, s.vendor.ID, s.vendor.Role, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	s.mock.ExpectCommit()

	rec := s.do(http.MethodPost, "/redeem", RedeemRequest{ID: couponID.String()}, &s.vendor)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var resp RedeemResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.True(resp.Success)
	s.Equal("Coupon Redeemed!", resp.Message)

	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *RouterTestSuite) TestRedeemAlreadyRedeemed() {
	couponID := uuid.New()
	eventID := uuid.New()

	s.mock.ExpectBeginTx(txOpts)
	s.mock.ExpectQuery("FOR UPDATE").
		WithArgs(couponID).
		WillReturnRows(s.couponRows(couponID, eventID, domain.CouponUsed, time.Now().Add(time.Hour)))

	rec := s.do(http.MethodPost, "/redeem", RedeemRequest{ID: couponID.String()}, &s.vendor)
	s.Equal(http.StatusConflict, rec.Code)

	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *RouterTestSuite) TestRedeemMissingLookup() {
	rec := s.do(http.MethodPost, "/redeem", RedeemRequest{}, &s.vendor)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *RouterTestSuite) TestRedeemForbiddenForAdmin() {
	rec := s.do(
		http.MethodPost,
		"/redeem",
		RedeemRequest{ID: uuid.New().String()},
		&s.admin,
	)
	s.Equal(http.StatusForbidden, rec.Code)
}

func (s *RouterTestSuite) TestRedeemNotFound() {
	couponID := uuid.New()

	s.mock.ExpectBeginTx(txOpts)
	s.mock.ExpectQuery("FOR UPDATE").
		WithArgs(couponID).
		WillReturnError(pgx.ErrNoRows)

	rec := s.do(http.MethodPost, "/redeem", RedeemRequest{ID: couponID.String()}, &s.vendor)
	s.Equal(http.StatusNotFound, rec.Code)

	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *RouterTestSuite) TestEventStats() {
	eventID := uuid.New()

	s.mock.ExpectQuery("FROM events").
		WithArgs(eventID).
		WillReturnRows(s.eventRows(eventID, time.Now().Add(time.Hour)))
	s.mock.ExpectQuery("GROUP BY meal_type").
		WithArgs(eventID).
		WillReturnRows(pgxmock.NewRows([]string{"meal_type", "count", "count"}).
			AddRow(domain.MealLunch, int64(100), int64(60)))

	rec := s.do(http.MethodGet, "/events/"+eventID.String()+"/stats", nil, &s.admin)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.NotEmpty(rec.Header().Get("ETag"))

	var resp EventStatsResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Require().Len(resp.Stats, 1)
	s.Equal(domain.MealLunch, resp.Stats[0].MealType)
	s.Equal(int64(100), resp.Stats[0].TotalCount)
	s.Equal(int64(60), resp.Stats[0].UsedCount)

	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *RouterTestSuite) TestGlobalStatsBadDate() {
	rec := s.do(http.MethodGet, "/stats?start=March-1", nil, &s.admin)
	s.Equal(http.StatusBadRequest, rec.Code)
}
