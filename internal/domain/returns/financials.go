package returns

import "github.com/shopspring/decimal"

// FeeKind identifies a deduction applied against a return's subtotal
type FeeKind string

const (
	FeeKindRestocking FeeKind = "RESTOCKING"
	FeeKindShipping   FeeKind = "SHIPPING"
	FeeKindLate       FeeKind = "LATE"
	FeeKindDamage     FeeKind = "DAMAGE"
	FeeKindCleaning   FeeKind = "CLEANING"
)

// FeeLine is one itemized deduction in a financial breakdown
type FeeLine struct {
	Kind        FeeKind         `json:"kind"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// FinancialBreakdown is the structured result of return fee/refund
// arithmetic. All amounts are truncated to 2 decimal places; identical
// inputs always produce an identical breakdown.
type FinancialBreakdown struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	Fees       []FeeLine       `json:"fees"`
	NetRefund  decimal.Decimal `json:"net_refund"`
	Receivable decimal.Decimal `json:"receivable"` // amount owed by the counterparty when fees exceed the refundable base
}

// TotalFees returns the sum of all itemized fees
func (b FinancialBreakdown) TotalFees() decimal.Decimal {
	total := decimal.Zero
	for _, fee := range b.Fees {
		total = total.Add(fee.Amount)
	}
	return total
}

// FeeAmount returns the summed amount of fees of the given kind
func (b FinancialBreakdown) FeeAmount(kind FeeKind) decimal.Decimal {
	total := decimal.Zero
	for _, fee := range b.Fees {
		if fee.Kind == kind {
			total = total.Add(fee.Amount)
		}
	}
	return total
}

// HasFee reports whether any fee of the given kind was applied
func (b FinancialBreakdown) HasFee(kind FeeKind) bool {
	for _, fee := range b.Fees {
		if fee.Kind == kind {
			return true
		}
	}
	return false
}
