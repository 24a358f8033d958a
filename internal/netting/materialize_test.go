package netting

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestMaterialize(t *testing.T) {
	ctx := context.Background()

	t.Run("re-denominates into the target currency", func(t *testing.T) {
		conv := &fakeConverter{rates: map[string]decimal.Decimal{"usd->kzt": dec("450.5")}}
		instructions := []Instruction{
			{LenderID: "u2", BorrowerID: "u1", GroupID: "g1", Amount: dec("100"), CurrencyID: "kzt"},
		}

		debts, err := Materialize(ctx, instructions, "usd", conv)
		if err != nil {
			t.Fatalf("Materialize failed: %v", err)
		}

		if len(debts) != 1 {
			t.Fatalf("got %d debts, want 1", len(debts))
		}
		d := debts[0]
		if !d.Amount.Equal(dec("45050")) {
			t.Errorf("amount = %s, want 45050", d.Amount)
		}
		if !d.Remainder.Equal(d.Amount) {
			t.Errorf("remainder = %s, want %s", d.Remainder, d.Amount)
		}
		if !d.Approved {
			t.Error("expected the settlement debt to be auto-approved")
		}
		if d.Completed {
			t.Error("settlement debt must start open")
		}
		if d.LenderID != "u2" || d.BorrowerID != "u1" || d.GroupID != "g1" || d.CurrencyID != "kzt" {
			t.Errorf("unexpected debt identity: %+v", d)
		}
		if d.CreatedAt == 0 {
			t.Error("expected CreatedAt to be set")
		}
	})

	t.Run("reference currency still takes the conversion round trip", func(t *testing.T) {
		conv := &fakeConverter{}
		instructions := []Instruction{
			{LenderID: "u2", BorrowerID: "u1", GroupID: "g1", Amount: dec("75.50"), CurrencyID: "usd"},
		}

		debts, err := Materialize(ctx, instructions, "usd", conv)
		if err != nil {
			t.Fatalf("Materialize failed: %v", err)
		}
		if conv.calls != 1 {
			t.Errorf("converter calls = %d, want 1", conv.calls)
		}
		if !debts[0].Amount.Equal(dec("75.50")) {
			t.Errorf("amount = %s, want 75.50", debts[0].Amount)
		}
	})

	t.Run("conversion failure aborts with no partial result", func(t *testing.T) {
		conv := &fakeConverter{err: errors.New("rate provider down")}
		instructions := []Instruction{
			{LenderID: "u2", BorrowerID: "u1", GroupID: "g1", Amount: dec("10"), CurrencyID: "kzt"},
		}

		_, err := Materialize(ctx, instructions, "usd", conv)
		if !errors.Is(err, ErrConversion) {
			t.Fatalf("err = %v, want ErrConversion", err)
		}
	})
}

// The materializer converts amounts that aggregation already pulled into the
// reference currency back out to a preferred currency. With consistent rates
// the round trip must reproduce the original amount within rounding.
func TestConversionRoundTrip(t *testing.T) {
	ctx := context.Background()
	conv := &fakeConverter{rates: map[string]decimal.Decimal{
		"kzt->usd": dec("0.00221975"), // 1/450.5
		"usd->kzt": dec("450.5"),
	}}

	original := dec("12345.67")
	inUSD, err := conv.Convert(ctx, original, "kzt", "usd")
	if err != nil {
		t.Fatalf("forward conversion failed: %v", err)
	}
	back, err := conv.Convert(ctx, inUSD, "usd", "kzt")
	if err != nil {
		t.Fatalf("backward conversion failed: %v", err)
	}

	tolerance := dec("2.6") // one cent of drift on the USD leg scales by the rate
	if back.Sub(original).Abs().GreaterThan(tolerance) {
		t.Errorf("round trip drifted: %s -> %s -> %s", original, inUSD, back)
	}
}
