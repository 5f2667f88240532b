package integration

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appreturns "github.com/rentora/backend/internal/application/returns"
	"github.com/rentora/backend/internal/domain/inventory"
	"github.com/rentora/backend/internal/domain/returns"
	"github.com/rentora/backend/internal/infrastructure/persistence"
)

// returnStack wires the full return processing graph over real repositories,
// the same way cmd/server does, minus HTTP and caching.
type returnStack struct {
	Service       *appreturns.ReturnService
	Engine        *appreturns.WorkflowEngine
	ReturnRepo    *persistence.GormReturnRepository
	AuditRepo     *persistence.GormAuditLogRepository
	InventoryRepo *persistence.GormInventoryRepository
	TxLookup      *persistence.GormTransactionRepository
}

func newReturnStack(t *testing.T, tdb *TestDB) *returnStack {
	t.Helper()

	logger := zap.NewNop()
	returnRepo := persistence.NewGormReturnRepository(tdb.DB)
	auditRepo := persistence.NewGormAuditLogRepository(tdb.DB)
	inventoryRepo := persistence.NewGormInventoryRepository(tdb.DB)
	txLookup := persistence.NewGormTransactionRepository(tdb.DB)

	policy := appreturns.DefaultPolicy()
	validator := appreturns.NewReturnValidator(policy)
	calculator := appreturns.NewFinancialCalculator()
	reconciler := appreturns.NewInventoryReconciler(inventoryRepo, inventoryRepo)
	factory := appreturns.NewProcessorFactory(validator, calculator, reconciler, policy)
	engine := appreturns.NewWorkflowEngine(returnRepo, auditRepo, reconciler, logger)
	service := appreturns.NewReturnService(returnRepo, auditRepo, txLookup, factory, engine, logger)

	return &returnStack{
		Service:       service,
		Engine:        engine,
		ReturnRepo:    returnRepo,
		AuditRepo:     auditRepo,
		InventoryRepo: inventoryRepo,
		TxLookup:      txLookup,
	}
}

// originalTransactionSeed describes an original transaction to insert
type originalTransactionSeed struct {
	TenantID           uuid.UUID
	Type               returns.ReturnType
	TransactionDate    time.Time
	ScheduledEndDate   *time.Time
	HeldDeposit        decimal.Decimal
	ReturnShippingCost decimal.Decimal
	ShippingBuyerBorne bool
	SupplierID         *uuid.UUID
	CustomerID         *uuid.UUID
	Lines              []originalLineSeed
}

type originalLineSeed struct {
	Quantity            string
	UnitPrice           string
	DailyLateRate       string
	ReplacementValue    string
	MandatoryFullReturn bool
}

// seedOriginalTransaction inserts an original transaction with its lines
// and returns the persisted aggregate
func seedOriginalTransaction(t *testing.T, tdb *TestDB, seed originalTransactionSeed) *returns.OriginalTransaction {
	t.Helper()

	original := &returns.OriginalTransaction{
		ID:                 uuid.New(),
		TenantID:           seed.TenantID,
		TransactionNumber:  "TX-" + uuid.NewString()[:8],
		Type:               seed.Type,
		TransactionDate:    seed.TransactionDate,
		CustomerID:         seed.CustomerID,
		SupplierID:         seed.SupplierID,
		ScheduledEndDate:   seed.ScheduledEndDate,
		HeldDeposit:        seed.HeldDeposit,
		ReturnShippingCost: seed.ReturnShippingCost,
		ShippingBuyerBorne: seed.ShippingBuyerBorne,
	}

	total := decimal.Zero
	for _, lineSeed := range seed.Lines {
		quantity := decimal.RequireFromString(lineSeed.Quantity)
		unitPrice := decimal.RequireFromString(lineSeed.UnitPrice)
		line := returns.OriginalTransactionLine{
			ID:                  uuid.New(),
			TransactionID:       original.ID,
			ItemID:              uuid.New(),
			ItemName:            "Test Item",
			ItemSKU:             "SKU-" + uuid.NewString()[:8],
			Quantity:            quantity,
			UnitPrice:           unitPrice,
			MandatoryFullReturn: lineSeed.MandatoryFullReturn,
		}
		if lineSeed.DailyLateRate != "" {
			line.DailyLateRate = decimal.RequireFromString(lineSeed.DailyLateRate)
		}
		if lineSeed.ReplacementValue != "" {
			line.ReplacementValue = decimal.RequireFromString(lineSeed.ReplacementValue)
		}
		total = total.Add(quantity.Mul(unitPrice))
		original.Lines = append(original.Lines, line)
	}
	original.TotalAmount = total

	require.NoError(t, tdb.DB.Create(original).Error, "Failed to seed original transaction")
	return original
}

// seedInventoryItem inserts an inventory row with the given available quantity
func seedInventoryItem(t *testing.T, tdb *TestDB, tenantID, locationID, itemID uuid.UUID, available string) *inventory.InventoryItem {
	t.Helper()

	item, err := inventory.NewInventoryItem(tenantID, locationID, itemID)
	require.NoError(t, err)
	item.AvailableQuantity = decimal.RequireFromString(available)
	item.ClearDomainEvents()

	require.NoError(t, tdb.DB.Create(item).Error, "Failed to seed inventory item")
	return item
}

func boolPtr(b bool) *bool            { return &b }
func strPtr(s string) *string         { return &s }
func timePtr(tm time.Time) *time.Time { return &tm }
