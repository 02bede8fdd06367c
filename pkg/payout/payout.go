// Package payout computes the commission split applied to each vendor's
// share of a delivered order.
package payout

import "github.com/shopspring/decimal"

// GatewayFeeRate is the payment-gateway cut applied to gross revenue.
var GatewayFeeRate = decimal.NewFromFloat(0.02)

// Split is the money breakdown for one vendor line.
type Split struct {
	Gross      decimal.Decimal
	Commission decimal.Decimal
	GatewayFee decimal.Decimal
	Net        decimal.Decimal
}

// Line is a single purchased item contributing to a vendor's split.
type Line struct {
	Price          decimal.Decimal
	Quantity       int
	CommissionRate decimal.Decimal
}

// Compute derives the split for one line. Net may be negative when the
// commission rate plus gateway fee exceeds 100%; callers record it as-is.
func Compute(line Line) Split {
	gross := line.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
	commission := gross.Mul(line.CommissionRate).Round(2)
	fee := gross.Mul(GatewayFeeRate).Round(2)

	return Split{
		Gross:      gross,
		Commission: commission,
		GatewayFee: fee,
		Net:        gross.Sub(commission).Sub(fee),
	}
}

// Accumulate folds a line's split into a running vendor total.
func Accumulate(total Split, line Line) Split {
	s := Compute(line)
	return Split{
		Gross:      total.Gross.Add(s.Gross),
		Commission: total.Commission.Add(s.Commission),
		GatewayFee: total.GatewayFee.Add(s.GatewayFee),
		Net:        total.Net.Add(s.Net),
	}
}
