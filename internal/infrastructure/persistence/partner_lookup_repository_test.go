package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/rentora/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockPartnerDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
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

func TestGormPartnerLookupRepository_FindByID(t *testing.T) {
	t.Run("resolves an active customer", func(t *testing.T) {
		db, mock, mockDB := newMockPartnerDB(t)
		defer mockDB.Close()
		repo := NewGormPartnerLookupRepository(db)

		tenantID := uuid.New()
		customerID := uuid.New()

		rows := sqlmock.NewRows([]string{
			"id", "tenant_id", "code", "name", "status", "email", "phone", "credit_balance",
			"created_at", "updated_at", "version",
		}).AddRow(
			customerID, tenantID, "CUST-001", "Acme Retail", "active", "ops@acme.test", "",
			"125.50", time.Now(), time.Now(), 1,
		)

		mock.ExpectQuery(`SELECT \* FROM "customers" WHERE tenant_id = \$1 AND id = \$2.*`).
			WithArgs(tenantID, customerID, 1).
			WillReturnRows(rows)

		customer, err := repo.FindByID(context.Background(), tenantID, customerID)
		require.NoError(t, err)
		assert.Equal(t, "CUST-001", customer.Code)
		assert.True(t, customer.IsActive())
		assert.True(t, customer.CreditBalance.Equal(decimal.RequireFromString("125.50")))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns NOT_FOUND for an unknown customer", func(t *testing.T) {
		db, mock, mockDB := newMockPartnerDB(t)
		defer mockDB.Close()
		repo := NewGormPartnerLookupRepository(db)

		tenantID := uuid.New()
		customerID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "customers" WHERE tenant_id = \$1 AND id = \$2.*`).
			WithArgs(tenantID, customerID, 1).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.FindByID(context.Background(), tenantID, customerID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormSupplierLookupRepository_FindByID(t *testing.T) {
	t.Run("resolves a supplier with RMA terms", func(t *testing.T) {
		db, mock, mockDB := newMockPartnerDB(t)
		defer mockDB.Close()
		repo := NewGormSupplierLookupRepository(db)

		tenantID := uuid.New()
		supplierID := uuid.New()

		rows := sqlmock.NewRows([]string{
			"id", "tenant_id", "code", "name", "status", "email", "phone",
			"requires_rma", "restocking_rate", "owed_credit",
			"created_at", "updated_at", "version",
		}).AddRow(
			supplierID, tenantID, "SUP-007", "Northwind Supply", "active", "", "",
			true, "0.0800", "0.00",
			time.Now(), time.Now(), 1,
		)

		mock.ExpectQuery(`SELECT \* FROM "suppliers" WHERE tenant_id = \$1 AND id = \$2.*`).
			WithArgs(tenantID, supplierID, 1).
			WillReturnRows(rows)

		supplier, err := repo.FindByID(context.Background(), tenantID, supplierID)
		require.NoError(t, err)
		assert.True(t, supplier.RequiresRMA)
		assert.True(t, supplier.RestockingRate.Equal(decimal.RequireFromString("0.08")))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormSupplierLookupRepository_AccrueOwedCredit(t *testing.T) {
	t.Run("adds the amount to the supplier balance", func(t *testing.T) {
		db, mock, mockDB := newMockPartnerDB(t)
		defer mockDB.Close()
		repo := NewGormSupplierLookupRepository(db)

		tenantID := uuid.New()
		supplierID := uuid.New()

		mock.ExpectExec(`UPDATE "suppliers" SET "owed_credit"=owed_credit \+ \$1,"updated_at"=\$2 WHERE tenant_id = \$3 AND id = \$4`).
			WithArgs(decimal.RequireFromString("41.85"), sqlmock.AnyArg(), tenantID, supplierID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.AccrueOwedCredit(context.Background(), tenantID, supplierID, decimal.RequireFromString("41.85"))
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns NOT_FOUND when the supplier does not exist", func(t *testing.T) {
		db, mock, mockDB := newMockPartnerDB(t)
		defer mockDB.Close()
		repo := NewGormSupplierLookupRepository(db)

		tenantID := uuid.New()
		supplierID := uuid.New()

		mock.ExpectExec(`UPDATE "suppliers" SET .*`).
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), tenantID, supplierID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.AccrueOwedCredit(context.Background(), tenantID, supplierID, decimal.RequireFromString("10.00"))
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
