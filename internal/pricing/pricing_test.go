package pricing

import (
	"errors"
	"testing"

	"storefront/internal/domain"
)

var testShipping = ShippingConfig{FreeThresholdCents: 5000, FeeCents: 499}

func TestComputeTotalsShippingThreshold(t *testing.T) {
	// Subtotal 4000 is below the 5000 threshold: flat fee applies.
	got, err := ComputeTotals([]Line{{ProductID: "p1", Quantity: 2, UnitPriceCents: 2000}}, nil, testShipping)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Totals{SubtotalCents: 4000, DiscountCents: 0, ShippingCents: 499, TotalCents: 4499}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}

	// Subtotal 6000 clears the threshold: free shipping.
	got, err = ComputeTotals([]Line{{ProductID: "p1", Quantity: 3, UnitPriceCents: 2000}}, nil, testShipping)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want = Totals{SubtotalCents: 6000, DiscountCents: 0, ShippingCents: 0, TotalCents: 6000}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestComputeTotalsDiscountDropsBelowThreshold(t *testing.T) {
	// Subtotal 6000 with 20% off leaves 4800, back under the threshold.
	discount := &Discount{Kind: domain.PromotionPercentage, Percent: 20}
	got, err := ComputeTotals([]Line{{ProductID: "p1", Quantity: 3, UnitPriceCents: 2000}}, discount, testShipping)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Totals{SubtotalCents: 6000, DiscountCents: 1200, ShippingCents: 499, TotalCents: 5299}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestComputeTotalsPercentageRounding(t *testing.T) {
	cases := []struct {
		subtotal int64
		pct      int
		want     int64
	}{
		{1000, 20, 200},
		{999, 15, 150},  // 149.85 rounds up
		{1010, 25, 253}, // 252.5 half rounds up
		{1, 50, 1},      // 0.5 half rounds up
		{1000, 0, 0},
		{1000, 100, 1000},
	}
	for _, tc := range cases {
		if got := PercentOf(tc.subtotal, tc.pct); got != tc.want {
			t.Errorf("PercentOf(%d, %d) = %d, want %d", tc.subtotal, tc.pct, got, tc.want)
		}
	}
}

func TestComputeTotalsFixedDiscountNeverNegative(t *testing.T) {
	discount := &Discount{Kind: domain.PromotionFixedAmount, AmountCents: 9999}
	got, err := ComputeTotals([]Line{{ProductID: "p1", Quantity: 1, UnitPriceCents: 1500}}, discount, testShipping)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.DiscountCents != 1500 {
		t.Fatalf("expected discount clamped to subtotal, got %d", got.DiscountCents)
	}
	if got.TotalCents != 499 {
		t.Fatalf("expected total to be the shipping fee only, got %d", got.TotalCents)
	}
	if got.TotalCents < 0 {
		t.Fatalf("total went negative: %d", got.TotalCents)
	}
}

func TestComputeTotalsIdempotent(t *testing.T) {
	lines := []Line{
		{ProductID: "p1", Quantity: 2, UnitPriceCents: 1250},
		{ProductID: "p2", Quantity: 1, UnitPriceCents: 4990},
	}
	discount := &Discount{Kind: domain.PromotionPercentage, Percent: 13}
	first, err := ComputeTotals(lines, discount, testShipping)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := ComputeTotals(lines, discount, testShipping)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Fatalf("totals differ across identical calls: %+v vs %+v", first, second)
	}
}

func TestComputeTotalsRejectsBadLines(t *testing.T) {
	_, err := ComputeTotals([]Line{{ProductID: "p1", Quantity: 0, UnitPriceCents: 100}}, nil, testShipping)
	if !errors.Is(err, domain.ErrInvalidLine) {
		t.Fatalf("expected ErrInvalidLine for zero quantity, got %v", err)
	}

	_, err = ComputeTotals([]Line{{ProductID: "p1", Quantity: 1, UnitPriceCents: 0}}, nil, testShipping)
	if !errors.Is(err, domain.ErrInvalidLine) {
		t.Fatalf("expected ErrInvalidLine for unresolved price, got %v", err)
	}
}
