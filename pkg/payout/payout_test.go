package payout

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestComputeStandardSplit(t *testing.T) {
	s := Compute(Line{
		Price:          dec("100.00"),
		Quantity:       2,
		CommissionRate: dec("0.10"),
	})

	if !s.Gross.Equal(dec("200.00")) {
		t.Fatalf("gross = %s, want 200.00", s.Gross)
	}
	if !s.Commission.Equal(dec("20.00")) {
		t.Fatalf("commission = %s, want 20.00", s.Commission)
	}
	if !s.GatewayFee.Equal(dec("4.00")) {
		t.Fatalf("gateway fee = %s, want 4.00", s.GatewayFee)
	}
	if !s.Net.Equal(dec("176.00")) {
		t.Fatalf("net = %s, want 176.00", s.Net)
	}
}

func TestComputeRoundsHalfCents(t *testing.T) {
	s := Compute(Line{
		Price:          dec("33.33"),
		Quantity:       1,
		CommissionRate: dec("0.15"),
	})

	// 33.33 * 0.15 = 4.9995 rounds to 5.00; 33.33 * 0.02 = 0.6666 rounds to 0.67.
	if !s.Commission.Equal(dec("5.00")) {
		t.Fatalf("commission = %s, want 5.00", s.Commission)
	}
	if !s.GatewayFee.Equal(dec("0.67")) {
		t.Fatalf("gateway fee = %s, want 0.67", s.GatewayFee)
	}
	if !s.Net.Equal(dec("27.66")) {
		t.Fatalf("net = %s, want 27.66", s.Net)
	}
}

func TestComputeAllowsNegativeNet(t *testing.T) {
	s := Compute(Line{
		Price:          dec("10.00"),
		Quantity:       1,
		CommissionRate: dec("0.99"),
	})

	if !s.Net.Equal(dec("-0.10")) {
		t.Fatalf("net = %s, want -0.10", s.Net)
	}
}

func TestAccumulate(t *testing.T) {
	var total Split
	total = Accumulate(total, Line{Price: dec("50.00"), Quantity: 1, CommissionRate: dec("0.10")})
	total = Accumulate(total, Line{Price: dec("25.00"), Quantity: 2, CommissionRate: dec("0.20")})

	if !total.Gross.Equal(dec("100.00")) {
		t.Fatalf("gross = %s, want 100.00", total.Gross)
	}
	if !total.Commission.Equal(dec("15.00")) {
		t.Fatalf("commission = %s, want 15.00", total.Commission)
	}
	if !total.GatewayFee.Equal(dec("2.00")) {
		t.Fatalf("gateway fee = %s, want 2.00", total.GatewayFee)
	}
	if !total.Net.Equal(dec("83.00")) {
		t.Fatalf("net = %s, want 83.00", total.Net)
	}
}
