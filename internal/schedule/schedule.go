// Package schedule builds the amortization plan for a debt. It is pure:
// no clock, no storage, only arithmetic and calendar stepping.
package schedule

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/JulianGiraldo97/pagadiario-sub000/internal/domain"
)

// Generate produces the ordered installment plan for a debt.
//
// Every installment carries min(installmentAmount, remaining), so the last
// one absorbs the remainder and the amounts sum to totalAmount exactly.
// Due dates start at startDate and advance one day (daily) or seven days
// (weekly) per installment; time.AddDate handles month, year and leap-day
// rollover. A non-positive total yields an empty plan. An installment
// amount at or above the total yields a single installment of the total.
func Generate(totalAmount, installmentAmount decimal.Decimal, freq domain.Frequency, startDate time.Time) []domain.ScheduleItem {
	if !totalAmount.IsPositive() || !installmentAmount.IsPositive() {
		return nil
	}

	stepDays := freq.Step()

	// Midnight-normalize so due dates compare cleanly regardless of the
	// clock component of the input.
	due := time.Date(startDate.Year(), startDate.Month(), startDate.Day(), 0, 0, 0, 0, startDate.Location())

	var items []domain.ScheduleItem
	remaining := totalAmount
	for number := 1; remaining.IsPositive(); number++ {
		amount := installmentAmount
		if remaining.LessThan(installmentAmount) {
			amount = remaining
		}
		items = append(items, domain.ScheduleItem{
			InstallmentNumber: number,
			DueDate:           due,
			Amount:            amount,
			Status:            domain.InstallmentPending,
		})
		remaining = remaining.Sub(amount)
		due = due.AddDate(0, 0, stepDays)
	}
	return items
}

// Total sums the amounts of a plan.
func Total(items []domain.ScheduleItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Amount)
	}
	return total
}
