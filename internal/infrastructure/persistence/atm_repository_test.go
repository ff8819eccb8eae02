package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/neighbourhood/backend/internal/domain/atm"
	"github.com/neighbourhood/backend/internal/domain/shared"
)

// newMockDB creates a gorm DB backed by sqlmock
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
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

	return gormDB, mock, mockDB
}

func atmRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "location", "parish", "deposit_available", "status",
		"last_used", "timestamp", "latitude", "longitude",
		"geocoding_failed", "created_at", "updated_at",
	})
}

func TestGormATMRepository_FindByID(t *testing.T) {
	t.Run("finds existing record", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormATMRepository(db)

		now := time.Now()
		rows := atmRows().AddRow(
			"ncb-001", "sbj_Half Way Tree", "St Andrew", true, "WORKING",
			"00:05:00", now, 18.0101, -76.7967, false, now, now,
		)
		mock.ExpectQuery(`SELECT \* FROM "atms" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs("ncb-001", 1).
			WillReturnRows(rows)

		record, err := repo.FindByID(context.Background(), "ncb-001")

		require.NoError(t, err)
		assert.Equal(t, "ncb-001", record.ID)
		assert.Equal(t, atm.StatusWorking, record.Status)
		assert.True(t, record.DepositAvailable)
		require.NotNil(t, record.Coordinates)
		assert.InDelta(t, 18.0101, record.Coordinates.Latitude, 1e-9)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound for missing record", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormATMRepository(db)

		mock.ExpectQuery(`SELECT \* FROM "atms" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs("missing", 1).
			WillReturnError(gorm.ErrRecordNotFound)

		record, err := repo.FindByID(context.Background(), "missing")

		assert.Nil(t, record)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps null coordinates to nil", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormATMRepository(db)

		now := time.Now()
		rows := atmRows().AddRow(
			"bns-002", "sbj_Port Antonio", "Portland", false, "UNKNOWN",
			"01:30:00", now, nil, nil, true, now, now,
		)
		mock.ExpectQuery(`SELECT \* FROM "atms" WHERE id = \$1`).
			WithArgs("bns-002", 1).
			WillReturnRows(rows)

		record, err := repo.FindByID(context.Background(), "bns-002")

		require.NoError(t, err)
		assert.Nil(t, record.Coordinates)
		assert.True(t, record.GeocodingFailed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormATMRepository_FindByParish(t *testing.T) {
	db, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewGormATMRepository(db)

	now := time.Now()
	rows := atmRows().
		AddRow("a1", "sbj_Sav-la-Mar", "Westmoreland", false, "WORKING", "00:10:00", now, 18.2194, -78.1332, false, now, now).
		AddRow("a2", "sbj_Negril", "Westmoreland", true, "DOWN", "02:00:00", now, 18.2687, -78.3480, false, now, now)

	mock.ExpectQuery(`SELECT \* FROM "atms" WHERE parish = \$1 ORDER BY location`).
		WithArgs("Westmoreland").
		WillReturnRows(rows)

	records, err := repo.FindByParish(context.Background(), "Westmoreland")

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, atm.StatusDown, records[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormATMRepository_Save(t *testing.T) {
	db, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewGormATMRepository(db)

	now := time.Now()
	record := &atm.ATM{
		ID:        "ncb-001",
		Location:  "sbj_Half Way Tree",
		Parish:    "St Andrew",
		Status:    atm.StatusWorking,
		LastUsed:  "00:05:00",
		Timestamp: now,
		CreatedAt: now,
		UpdatedAt: now,
	}

	mock.ExpectExec(`INSERT INTO "atms" .* ON CONFLICT \("id"\) DO UPDATE SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Save(context.Background(), record)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormATMRepository_Stats(t *testing.T) {
	db, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewGormATMRepository(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) AS total`).
		WithArgs("WORKING").
		WillReturnRows(sqlmock.NewRows([]string{"total", "working", "geocoding_failed", "parishes"}).
			AddRow(42, 30, 3, 9))

	updated := time.Now()
	mock.ExpectQuery(`SELECT MAX\(updated_at\) AS last_updated`).
		WillReturnRows(sqlmock.NewRows([]string{"last_updated"}).AddRow(updated))

	stats, err := repo.Stats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(42), stats.Total)
	assert.Equal(t, int64(30), stats.Working)
	assert.Equal(t, int64(3), stats.GeocodingFailed)
	assert.Equal(t, int64(9), stats.Parishes)
	require.NotNil(t, stats.LastUpdated)
	assert.NoError(t, mock.ExpectationsWereMet())
}
