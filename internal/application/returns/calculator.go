package returns

import (
	"errors"
	"fmt"
	"time"

	"github.com/rentora/backend/internal/domain/returns"
	"github.com/shopspring/decimal"
)

// conditionMultipliers scale the refundable unit price by the returned
// item's condition on sale returns
var conditionMultipliers = map[returns.ConditionCode]decimal.Decimal{
	returns.ConditionNew:     decimal.RequireFromString("1.00"),
	returns.ConditionOpened:  decimal.RequireFromString("0.95"),
	returns.ConditionUsed:    decimal.RequireFromString("0.80"),
	returns.ConditionSoiled:  decimal.RequireFromString("0.80"),
	returns.ConditionDamaged: decimal.RequireFromString("0.50"),
}

// ErrMissingPriceData is returned when a line lacks the price information
// the calculation needs. Processors convert it to a validation violation.
var ErrMissingPriceData = errors.New("line is missing price data")

// FinancialCalculator performs the fee and refund arithmetic for all three
// return types. It is pure: no entity is mutated and no state is kept
// between calls. All amounts are truncated to 2 decimal places at every
// fee boundary, so identical inputs always produce identical breakdowns.
type FinancialCalculator struct{}

// NewFinancialCalculator creates a calculator
func NewFinancialCalculator() *FinancialCalculator {
	return &FinancialCalculator{}
}

// CalculateSale computes the breakdown for a sale return: the condition
// multiplier scales each line's subtotal, and a restocking fee applies to
// lines returned without intact packaging.
func (c *FinancialCalculator) CalculateSale(lines []returns.ReturnLineItem, policy Policy) (returns.FinancialBreakdown, error) {
	subtotal := decimal.Zero
	restocking := decimal.Zero

	for i := range lines {
		line := &lines[i]
		if line.UnitPrice.LessThanOrEqual(decimal.Zero) {
			return returns.FinancialBreakdown{}, fmt.Errorf("%w: line %s", ErrMissingPriceData, line.ID)
		}

		multiplier, ok := conditionMultipliers[line.ConditionCode]
		if !ok {
			return returns.FinancialBreakdown{}, fmt.Errorf("no condition multiplier for %s", line.ConditionCode)
		}

		base := line.Subtotal().Mul(multiplier).Truncate(2)
		subtotal = subtotal.Add(base)

		if !line.IsPackagingIntact() {
			restocking = restocking.Add(base.Mul(policy.SaleRestockingRate).Truncate(2))
		}
	}

	breakdown := returns.FinancialBreakdown{
		Subtotal:   subtotal,
		Fees:       []returns.FeeLine{},
		Receivable: decimal.Zero,
	}
	if restocking.IsPositive() {
		breakdown.Fees = append(breakdown.Fees, returns.FeeLine{
			Kind:        returns.FeeKindRestocking,
			Description: "Restocking fee for packaging not intact",
			Amount:      restocking,
		})
	}
	breakdown.NetRefund = subtotal.Sub(breakdown.TotalFees()).Truncate(2)

	return breakdown, nil
}

// CalculatePurchase computes the expected supplier credit: line subtotals
// minus the supplier restocking fee, which is waived per line on supplier
// fault, minus the return shipping cost when the buyer bears it.
func (c *FinancialCalculator) CalculatePurchase(
	lines []returns.ReturnLineItem,
	original *returns.OriginalTransaction,
	policy Policy,
) (returns.FinancialBreakdown, error) {
	subtotal := decimal.Zero
	restocking := decimal.Zero

	for i := range lines {
		line := &lines[i]
		if line.UnitPrice.LessThanOrEqual(decimal.Zero) {
			return returns.FinancialBreakdown{}, fmt.Errorf("%w: line %s", ErrMissingPriceData, line.ID)
		}

		base := line.Subtotal().Truncate(2)
		subtotal = subtotal.Add(base)

		if !line.IsSupplierFault() {
			restocking = restocking.Add(base.Mul(policy.SupplierRestockingRate).Truncate(2))
		}
	}

	breakdown := returns.FinancialBreakdown{
		Subtotal:   subtotal,
		Fees:       []returns.FeeLine{},
		Receivable: decimal.Zero,
	}
	if restocking.IsPositive() {
		breakdown.Fees = append(breakdown.Fees, returns.FeeLine{
			Kind:        returns.FeeKindRestocking,
			Description: "Supplier restocking fee",
			Amount:      restocking,
		})
	}
	if original.ShippingBuyerBorne && original.ReturnShippingCost.IsPositive() {
		breakdown.Fees = append(breakdown.Fees, returns.FeeLine{
			Kind:        returns.FeeKindShipping,
			Description: "Buyer-borne return shipping",
			Amount:      original.ReturnShippingCost.Truncate(2),
		})
	}
	breakdown.NetRefund = subtotal.Sub(breakdown.TotalFees()).Truncate(2)

	return breakdown, nil
}

// CalculateRental computes the deposit settlement: late, damage, and
// cleaning fees are deducted from the held deposit. The refund is floored
// at zero; any remainder is recorded as a receivable, never as a negative
// refund.
func (c *FinancialCalculator) CalculateRental(
	lines []returns.ReturnLineItem,
	original *returns.OriginalTransaction,
	actualReturnDate time.Time,
	policy Policy,
) (returns.FinancialBreakdown, error) {
	if original.ScheduledEndDate == nil {
		return returns.FinancialBreakdown{}, fmt.Errorf("%w: original rental has no scheduled end date", ErrMissingPriceData)
	}

	daysLate := lateDays(*original.ScheduledEndDate, actualReturnDate)

	lateFee := decimal.Zero
	damageFee := decimal.Zero
	cleaningFee := decimal.Zero

	for i := range lines {
		line := &lines[i]

		// Late fee is days late times the line's daily rate; the rate
		// covers the whole line, so quantity is not a factor.
		if daysLate > 0 {
			lateFee = lateFee.Add(decimal.NewFromInt(int64(daysLate)).
				Mul(dailyLateRate(line, original)).
				Truncate(2))
		}

		if !line.FunctionalityPassed() {
			estimate := decimal.Zero
			if line.RepairCostEstimate != nil {
				estimate = *line.RepairCostEstimate
			}
			replacement := replacementValue(line, original)
			if replacement.IsPositive() && estimate.GreaterThan(replacement) {
				estimate = replacement
			}
			damageFee = damageFee.Add(estimate.Truncate(2))
		}

		if line.ConditionCode.RequiresCleaning() {
			cleaningFee = cleaningFee.Add(policy.CleaningFee.Truncate(2))
		}
	}

	breakdown := returns.FinancialBreakdown{
		Subtotal: original.HeldDeposit.Truncate(2),
		Fees:     []returns.FeeLine{},
	}
	if lateFee.IsPositive() {
		breakdown.Fees = append(breakdown.Fees, returns.FeeLine{
			Kind:        returns.FeeKindLate,
			Description: fmt.Sprintf("Late fee for %d day(s)", daysLate),
			Amount:      lateFee,
		})
	}
	if damageFee.IsPositive() {
		breakdown.Fees = append(breakdown.Fees, returns.FeeLine{
			Kind:        returns.FeeKindDamage,
			Description: "Damage fee capped at replacement value",
			Amount:      damageFee,
		})
	}
	if cleaningFee.IsPositive() {
		breakdown.Fees = append(breakdown.Fees, returns.FeeLine{
			Kind:        returns.FeeKindCleaning,
			Description: "Cleaning fee",
			Amount:      cleaningFee,
		})
	}

	totalFees := breakdown.TotalFees()
	refund := breakdown.Subtotal.Sub(totalFees).Truncate(2)
	if refund.IsNegative() {
		breakdown.Receivable = refund.Neg()
		refund = decimal.Zero
	} else {
		breakdown.Receivable = decimal.Zero
	}
	breakdown.NetRefund = refund

	return breakdown, nil
}

// lateDays returns the number of whole days the return is past the
// scheduled end date, never negative
func lateDays(scheduledEnd, actual time.Time) int {
	if !actual.After(scheduledEnd) {
		return 0
	}
	return int(actual.Sub(scheduledEnd).Hours() / 24)
}

// dailyLateRate resolves the per-line daily late rate from the original
// rental line
func dailyLateRate(line *returns.ReturnLineItem, original *returns.OriginalTransaction) decimal.Decimal {
	if originalLine := original.GetLine(line.OriginalLineID); originalLine != nil {
		return originalLine.DailyLateRate
	}
	return decimal.Zero
}

// replacementValue resolves the declared replacement value from the
// original rental line
func replacementValue(line *returns.ReturnLineItem, original *returns.OriginalTransaction) decimal.Decimal {
	if originalLine := original.GetLine(line.OriginalLineID); originalLine != nil {
		return originalLine.ReplacementValue
	}
	return decimal.Zero
}
