package redemption

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/suite"

	"github.com/sachin-raj-m/food-pass/internal/domain"
	postgresrepo "github.com/sachin-raj-m/food-pass/internal/repository/postgres"
)

var txOpts = pgx.TxOptions{
	IsoLevel:   pgx.Serializable,
	AccessMode: pgx.ReadWrite,
}

type RedemptionServiceTestSuite struct {
	suite.Suite
	mock pgxmock.PgxPoolIface
	svc  *Service

	now      time.Time
	couponID uuid.UUID
	eventID  uuid.UUID
	vendor   domain.Actor
}

func (s *RedemptionServiceTestSuite) SetupTest() {
	pool, err := pgxmock.NewPool()
	if err != nil {
		s.T().Fatalf("failed to create pgxmock pool: %v", err)
	}

	s.mock = pool
	s.svc = New(postgresrepo.NewStore(pool), nil, nil, nil)

	s.now = time.Date(2025, 3, 14, 12, 30, 0, 0, time.UTC)
	s.svc.TimeNow = func() time.Time { return s.now }

	s.couponID = uuid.New()
	s.eventID = uuid.New()
	s.vendor = domain.Actor{ID: uuid.New(), Role: domain.RoleVendor}
}

func (s *RedemptionServiceTestSuite) TearDownTest() {
	s.mock.Close()
}

func TestRedemptionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(RedemptionServiceTestSuite))
}

func (s *RedemptionServiceTestSuite) lookupByID() domain.RedeemLookup {
	return domain.RedeemLookup{CouponID: &s.couponID}
}

func (s *RedemptionServiceTestSuite) couponRows(status domain.CouponStatus, expiresAt time.Time) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "event_id", "meal_type", "ticket_number", "expires_at", "status", "created_at",
	}).AddRow(
		s.couponID, s.eventID, domain.MealLunch, int64(42), expiresAt, status, s.now.Add(-time.Hour),
	)
}

func (s *RedemptionServiceTestSuite) TestRedeemForbiddenRole() {
	for _, role := range []domain.Role{domain.RoleAdmin, domain.RoleNone} {
		_, err := s.svc.Redeem(
			context.Background(),
			s.lookupByID(),
			domain.Actor{ID: uuid.New(), Role: role},
			"",
		)
		s.ErrorIs(err, ErrForbiddenRole, "role %s", role)
	}

	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *RedemptionServiceTestSuite) TestRedeemMissingLookup() {
	_, err := s.svc.Redeem(context.Background(), domain.RedeemLookup{}, s.vendor, "")
	s.ErrorIs(err, ErrMissingLookup)

	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *RedemptionServiceTestSuite) TestRedeemSuccess() {
	s.mock.ExpectBeginTx(txOpts)
	s.mock.ExpectQuery("FOR UPDATE").
		WithArgs(s.couponID).
		WillReturnRows(s.couponRows(domain.CouponUnused, s.now.Add(time.Hour)))
	s.mock.ExpectExec("UPDATE coupons SET status").
		WithArgs(s.couponID, domain.CouponUsed).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	s.mock.ExpectExec("INSERT INTO redemptions").
		WithArgs(pgxmock.AnyArg(), s.couponID, s.vendor.ID, s.vendor.Role, s.now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	s.mock.ExpectCommit()

	receipt, err := s.svc.Redeem(context.Background(), s.lookupByID(), s.vendor, "")
	s.Require().NoError(err)
	s.Require().NotNil(receipt)
	s.Equal(s.couponID, receipt.CouponID)
	s.Equal(int64(42), receipt.TicketNumber)
	s.Equal(domain.MealLunch, receipt.MealType)
	s.Equal(s.now, receipt.RedeemedAt)

	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *RedemptionServiceTestSuite) TestRedeemAlreadyRedeemed() {
	s.mock.ExpectBeginTx(txOpts)
	s.mock.ExpectQuery("FOR UPDATE").
		WithArgs(s.couponID).
		WillReturnRows(s.couponRows(domain.CouponUsed, s.now.Add(time.Hour)))

	_, err := s.svc.Redeem(context.Background(), s.lookupByID(), s.vendor, "")
	s.ErrorIs(err, ErrAlreadyRedeemed)

	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *RedemptionServiceTestSuite) TestRedeemExpiredStatus() {
	s.mock.ExpectBeginTx(txOpts)
	s.mock.ExpectQuery("FOR UPDATE").
		WithArgs(s.couponID).
		WillReturnRows(s.couponRows(domain.CouponExpired, s.now.Add(-time.Hour)))

	_, err := s.svc.Redeem(context.Background(), s.lookupByID(), s.vendor, "")
	s.ErrorIs(err, ErrCouponExpired)

	s.NoError(s.mock.ExpectationsWereMet())
}

// A coupon past its deadline but still marked unused gets its expired
// status committed even though the call itself fails.
func (s *RedemptionServiceTestSuite) TestRedeemLapsedDeadlinePersistsExpiry() {
	s.mock.ExpectBeginTx(txOpts)
	s.mock.ExpectQuery("FOR UPDATE").
		WithArgs(s.couponID).
		WillReturnRows(s.couponRows(domain.CouponUnused, s.now.Add(-time.Minute)))
	s.mock.ExpectExec("UPDATE coupons SET status").
		WithArgs(s.couponID, domain.CouponExpired).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	s.mock.ExpectCommit()

	receipt, err := s.svc.Redeem(context.Background(), s.lookupByID(), s.vendor, "")
	s.ErrorIs(err, ErrCouponExpired)
	s.Nil(receipt)

	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *RedemptionServiceTestSuite) TestRedeemNotFound() {
	s.mock.ExpectBeginTx(txOpts)
	s.mock.ExpectQuery("FOR UPDATE").
		WithArgs(s.couponID).
		WillReturnError(pgx.ErrNoRows)

	_, err := s.svc.Redeem(context.Background(), s.lookupByID(), s.vendor, "")
	s.ErrorIs(err, ErrCouponNotFound)

	s.NoError(s.mock.ExpectationsWereMet())
}

// Two concurrent markers race past the status check only in theory; the
// row lock means the loser sees 0 rows updated and fails.
func (s *RedemptionServiceTestSuite) TestRedeemMarkUsedLosesRace() {
	s.mock.ExpectBeginTx(txOpts)
	s.mock.ExpectQuery("FOR UPDATE").
		WithArgs(s.couponID).
		WillReturnRows(s.couponRows(domain.CouponUnused, s.now.Add(time.Hour)))
	s.mock.ExpectExec("UPDATE coupons SET status").
		WithArgs(s.couponID, domain.CouponUsed).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	_, err := s.svc.Redeem(context.Background(), s.lookupByID(), s.vendor, "")
	s.Error(err)

	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *RedemptionServiceTestSuite) TestRedeemByTicketNumber() {
	ticket := int64(42)
	lookup := domain.RedeemLookup{TicketNumber: &ticket, EventID: &s.eventID}

	s.mock.ExpectBeginTx(txOpts)
	s.mock.ExpectQuery("ticket_number").
		WithArgs(ticket, s.eventID).
		WillReturnRows(s.couponRows(domain.CouponUnused, s.now.Add(time.Hour)))
	s.mock.ExpectExec("UPDATE coupons SET status").
		WithArgs(s.couponID, domain.CouponUsed).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	s.mock.ExpectExec("INSERT INTO redemptions").
		WithArgs(pgxmock.AnyArg(), s.couponID, s.vendor.ID, s.vendor.Role, s.now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	s.mock.ExpectCommit()

	receipt, err := s.svc.Redeem(context.Background(), lookup, s.vendor, "")
	s.Require().NoError(err)
	s.Equal(int64(42), receipt.TicketNumber)

	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *RedemptionServiceTestSuite) TestRedeemByTicketNumberAmbiguous() {
	ticket := int64(7)
	lookup := domain.RedeemLookup{TicketNumber: &ticket}

	rows := pgxmock.NewRows([]string{
		"id", "event_id", "meal_type", "ticket_number", "expires_at", "status", "created_at",
	}).
		AddRow(uuid.New(), uuid.New(), domain.MealLunch, ticket, s.now.Add(time.Hour), domain.CouponUnused, s.now).
		AddRow(uuid.New(), uuid.New(), domain.MealDinner, ticket, s.now.Add(time.Hour), domain.CouponUnused, s.now)

	s.mock.ExpectBeginTx(txOpts)
	s.mock.ExpectQuery("ticket_number").
		WithArgs(ticket).
		WillReturnRows(rows)

	_, err := s.svc.Redeem(context.Background(), lookup, s.vendor, "")
	s.ErrorIs(err, ErrAmbiguousTicket)

	s.NoError(s.mock.ExpectationsWereMet())
}
