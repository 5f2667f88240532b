package returns

import "github.com/shopspring/decimal"

// Policy holds the configurable business parameters of return processing.
// Values come from the [returns] section of the configuration file; the
// defaults below apply when a parameter is not set.
type Policy struct {
	// SaleWindowDays is how long after the sale a return is accepted
	SaleWindowDays int

	// PurchaseWindowDays is how long after the purchase a supplier return is accepted
	PurchaseWindowDays int

	// SaleRestockingRate applies when sale packaging is not intact
	SaleRestockingRate decimal.Decimal

	// SupplierRestockingRate is the supplier's deduction, waived on supplier fault
	SupplierRestockingRate decimal.Decimal

	// CleaningFee is the flat fee for rental units returned needing cleaning
	CleaningFee decimal.Decimal
}

// DefaultPolicy returns the standard return policy
func DefaultPolicy() Policy {
	return Policy{
		SaleWindowDays:         30,
		PurchaseWindowDays:     90,
		SaleRestockingRate:     decimal.RequireFromString("0.15"),
		SupplierRestockingRate: decimal.RequireFromString("0.10"),
		CleaningFee:            decimal.RequireFromString("25.00"),
	}
}
