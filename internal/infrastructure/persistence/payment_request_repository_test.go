package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/auctionhouse/backend/internal/domain/payment"
	"github.com/auctionhouse/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockPaymentRequestRepository creates a GormPaymentRequestRepository with a mocked SQL connection
func newMockPaymentRequestRepository(t *testing.T) (*GormPaymentRequestRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormPaymentRequestRepository(gormDB), mock, mockDB
}

func TestGormPaymentRequestRepository_FindByID(t *testing.T) {
	t.Run("finds existing request", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRequestRepository(t)
		defer mockDB.Close()

		requestID := uuid.New()
		rows := sqlmock.NewRows([]string{"id", "user_name", "payment_type", "verification_status"}).
			AddRow(requestID, "Winner One", "winner_payment", "pending")

		mock.ExpectQuery(`SELECT \* FROM "payment_requests" WHERE id = \$1 .* LIMIT .*`).
			WithArgs(requestID, 1).
			WillReturnRows(rows)

		pr, err := repo.FindByID(context.Background(), requestID)

		require.NoError(t, err)
		require.NotNil(t, pr)
		assert.Equal(t, requestID, pr.ID)
		assert.Equal(t, payment.VerificationPending, pr.VerificationStatus)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns nil for missing request", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRequestRepository(t)
		defer mockDB.Close()

		requestID := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "payment_requests" WHERE id = \$1 .* LIMIT .*`).
			WithArgs(requestID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		pr, err := repo.FindByID(context.Background(), requestID)

		require.NoError(t, err)
		assert.Nil(t, pr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPaymentRequestRepository_ExistsPending(t *testing.T) {
	repo, mock, mockDB := newMockPaymentRequestRepository(t)
	defer mockDB.Close()

	userID := uuid.New()
	auctionID := uuid.New()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "payment_requests"`).
		WithArgs(userID, auctionID, string(payment.TypeParticipationFee), string(payment.VerificationPending)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	exists, err := repo.ExistsPending(context.Background(), userID, auctionID, payment.TypeParticipationFee)

	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormPaymentRequestRepository_ResolveIfPending(t *testing.T) {
	newResolvedRequest := func(t *testing.T) *payment.PaymentRequest {
		pr := &payment.PaymentRequest{
			BaseAggregateRoot:  shared.NewBaseAggregateRoot(),
			VerificationStatus: payment.VerificationPending,
		}
		require.NoError(t, pr.Approve(uuid.New(), "ok", time.Now()))
		return pr
	}

	t.Run("writes the row while still pending", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRequestRepository(t)
		defer mockDB.Close()

		pr := newResolvedRequest(t)

		mock.ExpectExec(`UPDATE "payment_requests" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.ResolveIfPending(context.Background(), pr))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports AlreadyResolved when another admin won the race", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRequestRepository(t)
		defer mockDB.Close()

		pr := newResolvedRequest(t)

		mock.ExpectExec(`UPDATE "payment_requests" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.ResolveIfPending(context.Background(), pr)

		assert.ErrorIs(t, err, shared.ErrAlreadyResolved)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPaymentRequestRepository_CountByStatus(t *testing.T) {
	repo, mock, mockDB := newMockPaymentRequestRepository(t)
	defer mockDB.Close()

	rows := sqlmock.NewRows([]string{"verification_status", "count"}).
		AddRow("pending", 3).
		AddRow("approved", 2).
		AddRow("rejected", 1)

	mock.ExpectQuery(`SELECT verification_status, count\(\*\) as count FROM "payment_requests"`).
		WillReturnRows(rows)

	counts, err := repo.CountByStatus(context.Background(), payment.Filter{})

	require.NoError(t, err)
	assert.Equal(t, int64(3), counts.Pending)
	assert.Equal(t, int64(2), counts.Approved)
	assert.Equal(t, int64(1), counts.Rejected)
	assert.NoError(t, mock.ExpectationsWereMet())
}
