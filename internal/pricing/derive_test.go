package pricing

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestDerivePrintPrices_A6OnSRA3(t *testing.T) {
	snap := newTestSnapshot(t)

	// 148x105 on 310x440 usable: as-is 2*4=8, rotated 2*2=4 => 8 per sheet.
	res, err := DerivePrintPrices(snap, DeriveRequest{
		TechnologyCode: "digital_sra3",
		Item:           Dimensions{Width: 148, Height: 105},
	})
	if err != nil {
		t.Fatalf("DerivePrintPrices: %v", err)
	}
	if res.ItemsPerSheet != 8 {
		t.Fatalf("ItemsPerSheet = %d, want 8", res.ItemsPerSheet)
	}
	if len(res.Tiers) != 2 {
		t.Fatalf("tiers = %d, want 2", len(res.Tiers))
	}

	first := res.Tiers[0]
	if first.MinQuantity != 8 {
		t.Errorf("first tier MinQuantity = %d, want 8", first.MinQuantity)
	}
	if first.MaxQuantity == nil || *first.MaxQuantity != 399 {
		t.Errorf("first tier MaxQuantity = %v, want 399", first.MaxQuantity)
	}
	wantDecimal(t, "first tier unit price", first.UnitPrice, "1.5")

	second := res.Tiers[1]
	if second.MinQuantity != 400 {
		t.Errorf("second tier MinQuantity = %d, want 400", second.MinQuantity)
	}
	if second.MaxQuantity != nil {
		t.Errorf("open-ended tier should have nil MaxQuantity, got %d", *second.MaxQuantity)
	}
	wantDecimal(t, "second tier unit price", second.UnitPrice, "1")
}

func TestDerivePrintPrices_RoundTrip(t *testing.T) {
	snap := newTestSnapshot(t)
	snap.PrintSheets = append(snap.PrintSheets, PrintPriceSheet{
		ID: 2, TechnologyCode: "offset_b2", CounterUnit: CounterUnitSheets,
		SheetWidthMM: 320, SheetHeightMM: 450, MarginMM: 5, GapMM: 2, Active: true,
		Tiers: []SheetTier{
			{ID: 10, SheetID: 2, PriceMode: "single", MinSheets: 1, PricePerSheet: decimal.RequireFromString("7.31")},
		},
	})

	// 200x210 packs 2 per sheet in either orientation.
	res, err := DerivePrintPrices(snap, DeriveRequest{
		TechnologyCode: "offset_b2",
		Item:           Dimensions{Width: 200, Height: 210},
	})
	if err != nil {
		t.Fatalf("DerivePrintPrices: %v", err)
	}
	if res.ItemsPerSheet != 2 {
		t.Fatalf("ItemsPerSheet = %d, want 2", res.ItemsPerSheet)
	}

	back := res.Tiers[0].UnitPrice.Mul(decimal.NewFromInt(int64(res.ItemsPerSheet)))
	diff := back.Sub(decimal.RequireFromString("7.31")).Abs()
	if diff.GreaterThan(decimal.RequireFromString("0.01")) {
		t.Fatalf("round-trip off by %s, want within 0.01 (unit %s)", diff, res.Tiers[0].UnitPrice)
	}
}

func TestDerivePrintPrices_UnknownTechnology(t *testing.T) {
	_, err := DerivePrintPrices(newTestSnapshot(t), DeriveRequest{
		TechnologyCode: "wide_format",
		Item:           Dimensions{Width: 100, Height: 100},
	})
	if KindOf(err) != KindNotFound {
		t.Fatalf("kind = %v, want not_found", KindOf(err))
	}
}

func TestDerivePrintPrices_NonPositiveDimensions(t *testing.T) {
	_, err := DerivePrintPrices(newTestSnapshot(t), DeriveRequest{
		TechnologyCode: "digital_sra3",
		Item:           Dimensions{Width: -10, Height: 100},
	})
	if KindOf(err) != KindInvalidArgument {
		t.Fatalf("kind = %v, want invalid_argument", KindOf(err))
	}
}

func TestDerivePrintPrices_EmptyScheduleIsAdvisory(t *testing.T) {
	snap := newTestSnapshot(t)
	snap.PrintSheets[0].Tiers = nil

	res, err := DerivePrintPrices(snap, DeriveRequest{
		TechnologyCode: "digital_sra3",
		Item:           Dimensions{Width: 148, Height: 105},
	})
	if err != nil {
		t.Fatalf("empty schedule must not be an error: %v", err)
	}
	if len(res.Tiers) != 0 {
		t.Fatalf("tiers = %v, want empty", res.Tiers)
	}
	if len(res.Notes) == 0 || !strings.Contains(res.Notes[0], "no configured") {
		t.Fatalf("expected advisory note, got %v", res.Notes)
	}
}

func TestDerivePrintPrices_ImpossibleFitNote(t *testing.T) {
	res, err := DerivePrintPrices(newTestSnapshot(t), DeriveRequest{
		TechnologyCode: "digital_sra3",
		Item:           Dimensions{Width: 600, Height: 600},
	})
	if err != nil {
		t.Fatalf("oversized item must still price: %v", err)
	}
	if res.ItemsPerSheet != 1 {
		t.Fatalf("ItemsPerSheet = %d, want lenient 1", res.ItemsPerSheet)
	}
	found := false
	for _, n := range res.Notes {
		if strings.Contains(n, "does not fit") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected does-not-fit note, got %v", res.Notes)
	}
}
