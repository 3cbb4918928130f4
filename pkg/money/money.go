// Package money holds the decimal arithmetic shared by orders, purchase
// orders and notifications.
package money

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Cents is the number of decimal places amounts are rounded to.
const Cents = 2

// LineTotal is quantity * unit price, rounded to cents.
func LineTotal(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(Cents)
}

// Sum adds amounts.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// AllocateDiscount splits discount across lines proportionally to their
// subtotals. The result has one entry per line, each rounded to cents, and
// no share exceeds its own subtotal. The rounding remainder is handed out a
// cent at a time, largest line first, to lines that still have room. The
// shares sum to discount whenever discount is at most the sum of subtotals;
// any excess stays unallocated.
func AllocateDiscount(discount decimal.Decimal, subtotals []decimal.Decimal) []decimal.Decimal {
	out := make([]decimal.Decimal, len(subtotals))
	for i := range out {
		out[i] = decimal.Zero
	}
	discount = discount.Round(Cents)
	total := Sum(subtotals...)
	if len(subtotals) == 0 || !discount.IsPositive() || !total.IsPositive() {
		return out
	}

	allocated := decimal.Zero
	for i, sub := range subtotals {
		if !sub.IsPositive() {
			continue
		}
		out[i] = decimal.Min(discount.Mul(sub).Div(total).RoundDown(Cents), sub)
		allocated = allocated.Add(out[i])
	}

	cent := decimal.New(1, -Cents)
	rest := discount.Sub(allocated)
	order := bySizeDesc(subtotals)
	for rest.IsPositive() {
		progressed := false
		for _, i := range order {
			if !rest.IsPositive() {
				break
			}
			room := subtotals[i].Sub(out[i])
			if !room.IsPositive() {
				continue
			}
			step := decimal.Min(cent, room, rest)
			out[i] = out[i].Add(step)
			rest = rest.Sub(step)
			progressed = true
		}
		if !progressed {
			break
		}
	}
	return out
}

// bySizeDesc returns line indexes ordered by subtotal, biggest first, ties
// in input order.
func bySizeDesc(subtotals []decimal.Decimal) []int {
	idx := make([]int, len(subtotals))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return subtotals[idx[a]].GreaterThan(subtotals[idx[b]])
	})
	return idx
}

// PercentChange is (current-previous)/previous*100 rounded to 2 places.
// With no previous value it is 100 when current is positive, else 0.
func PercentChange(current, previous decimal.Decimal) decimal.Decimal {
	if previous.IsZero() {
		if current.IsPositive() {
			return decimal.NewFromInt(100)
		}
		return decimal.Zero
	}
	return current.Sub(previous).Div(previous.Abs()).Mul(decimal.NewFromInt(100)).Round(2)
}

// Format renders an amount as "$1,234.50".
func Format(amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}
	fixed := amount.StringFixed(Cents)
	whole, frac := fixed[:len(fixed)-3], fixed[len(fixed)-2:]

	var grouped []byte
	for i := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped = append(grouped, ',')
		}
		grouped = append(grouped, whole[i])
	}
	return sign + "$" + string(grouped) + "." + frac
}
