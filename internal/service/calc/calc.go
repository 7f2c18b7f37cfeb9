// Package calc holds the derived-field calculations for the order
// aggregate: ingredient weight totals and work-log labor units. Everything
// here is pure and is re-run on every write; the persisted columns are
// caches, never inputs.
package calc

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/yunhaimaster/capsuleDB-demo-sub001/internal/storage"
)

// UnitWeight sums the per-capsule content of every ingredient, in mg.
// An empty list yields zero; the validator guarantees it never is.
func UnitWeight(ingredients []storage.Ingredient) decimal.Decimal {
	total := decimal.Zero
	for _, ing := range ingredients {
		total = total.Add(ing.UnitContentMg)
	}
	return total
}

// BatchTotalWeight is the whole production run's weight in mg.
func BatchTotalWeight(unitWeight decimal.Decimal, quantity int64) decimal.Decimal {
	return unitWeight.Mul(decimal.NewFromInt(quantity))
}

// ParseClock parses an "HH:MM" wall-clock time into minutes since midnight.
// Both parts must be two digits; "8:30" is rejected.
func ParseClock(s string) (int64, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	h, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || h < 0 || h > 23 || len(parts[0]) != 2 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || m < 0 || m > 59 || len(parts[1]) != 2 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return h*60 + m, nil
}

// EffectiveMinutes is the worked span of one shift. Shifts do not cross
// midnight; endTime at or before startTime clamps to zero.
func EffectiveMinutes(startTime, endTime string) (int64, error) {
	start, err := ParseClock(startTime)
	if err != nil {
		return 0, err
	}
	end, err := ParseClock(endTime)
	if err != nil {
		return 0, err
	}
	if end <= start {
		return 0, nil
	}
	return end - start, nil
}

// WorkUnits normalizes worked minutes into person-shifts: minutes scaled by
// headcount over unitMinutes (one full single-person standard shift = 1.0).
func WorkUnits(minutes int64, headcount int, unitMinutes int64) decimal.Decimal {
	if unitMinutes <= 0 || minutes <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(minutes * int64(headcount)).
		Div(decimal.NewFromInt(unitMinutes)).
		Round(4)
}

// DayStart re-anchors a date at local midnight of the business zone. Work
// dates are stored as this instant so the calendar day survives a server
// running in any zone.
func DayStart(d storage.Date) storage.Date {
	local := d.In(storage.BusinessZone)
	return storage.NewDate(local.Year(), local.Month(), local.Day())
}
