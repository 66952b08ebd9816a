package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/auctionhouse/backend/internal/domain/auction"
	"github.com/auctionhouse/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockAuctionRepository creates a GormAuctionRepository with a mocked SQL connection
func newMockAuctionRepository(t *testing.T) (*GormAuctionRepository, sqlmock.Sqlmock, *sql.DB) {
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

	return NewGormAuctionRepository(gormDB), mock, mockDB
}

func TestGormAuctionRepository_FindByID(t *testing.T) {
	t.Run("finds existing auction with bids", func(t *testing.T) {
		repo, mock, mockDB := newMockAuctionRepository(t)
		defer mockDB.Close()

		auctionID := uuid.New()

		auctionRows := sqlmock.NewRows([]string{"id", "title", "auction_type", "status"}).
			AddRow(auctionID, "Vintage Watch", "english", "active")
		mock.ExpectQuery(`SELECT \* FROM "auctions" WHERE id = \$1 .* LIMIT .*`).
			WithArgs(auctionID, 1).
			WillReturnRows(auctionRows)

		bidRows := sqlmock.NewRows([]string{"id", "auction_id", "bidder_name"}).
			AddRow(uuid.New(), auctionID, "Bidder One")
		mock.ExpectQuery(`SELECT \* FROM "bids" WHERE .*auction_id.*`).
			WillReturnRows(bidRows)

		a, err := repo.FindByID(context.Background(), auctionID)

		require.NoError(t, err)
		require.NotNil(t, a)
		assert.Equal(t, auctionID, a.ID)
		assert.Len(t, a.Bids, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns nil for missing auction", func(t *testing.T) {
		repo, mock, mockDB := newMockAuctionRepository(t)
		defer mockDB.Close()

		auctionID := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "auctions" WHERE id = \$1 .* LIMIT .*`).
			WithArgs(auctionID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		a, err := repo.FindByID(context.Background(), auctionID)

		require.NoError(t, err)
		assert.Nil(t, a)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormAuctionRepository_SaveWithLock(t *testing.T) {
	newVersionedAuction := func() *auction.Auction {
		a := &auction.Auction{
			BaseAggregateRoot: shared.NewBaseAggregateRoot(),
			Title:             "Vintage Watch",
			Status:            auction.StatusActive,
			StartAt:           time.Now().Add(-time.Hour),
			EndAt:             time.Now().Add(time.Hour),
		}
		a.IncrementVersion() // Simulates a domain mutation before save
		return a
	}

	t.Run("commits when the stored version matches", func(t *testing.T) {
		repo, mock, mockDB := newMockAuctionRepository(t)
		defer mockDB.Close()

		a := newVersionedAuction()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "auctions" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.SaveWithLock(context.Background(), a))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back with a concurrency conflict when the version moved", func(t *testing.T) {
		repo, mock, mockDB := newMockAuctionRepository(t)
		defer mockDB.Close()

		a := newVersionedAuction()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "auctions" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.SaveWithLock(context.Background(), a)

		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormAuctionRepository_Count(t *testing.T) {
	repo, mock, mockDB := newMockAuctionRepository(t)
	defer mockDB.Close()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "auctions"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := repo.Count(context.Background(), auction.Filter{})

	require.NoError(t, err)
	assert.Equal(t, int64(7), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
