package pricing

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal fixture %q: %v", s, err)
	}
	return d
}

func wantDecimal(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Fatalf("%s = %s, want %s", name, got, want)
	}
}

func decRequire(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func boolPtr(v bool) *bool { return &v }

func newTestSnapshot(t *testing.T) *Snapshot {
	t.Helper()
	maxStaple := 60
	return &Snapshot{
		Services: []Service{
			{ID: 1, Name: "Digital print", Category: "print", Unit: "sheet", BaseRate: dec(t, "10"), Active: true},
			{ID: 2, Name: "Cutting", Category: "finishing", Unit: "cut", BaseRate: dec(t, "2"), Active: true},
		},
		TiersByService: map[int64][]VolumeTier{},
		RulesByService: map[int64][]PricingRuleRecord{},
		BindingTypes: map[string]BindingType{
			"staple": {
				Value: "staple", Label: "Staple", MinPages: intPtr(4), MaxPages: &maxStaple,
				DuplexDefault: true, UnitPrice: dec(t, "1"), Active: true,
			},
			"spring": {
				Value: "spring", Label: "Spring", MinPages: intPtr(4),
				DuplexDefault: false, UnitPrice: dec(t, "3.5"), Active: true,
			},
		},
		PrintSheets: []PrintPriceSheet{
			{
				ID: 1, TechnologyCode: "digital_sra3", CounterUnit: CounterUnitSheets,
				SheetWidthMM: 320, SheetHeightMM: 450, MarginMM: 5, GapMM: 2, Active: true,
				Tiers: []SheetTier{
					{ID: 1, SheetID: 1, PriceMode: "single", MinSheets: 1, MaxSheets: intPtr(49), PricePerSheet: decimal.RequireFromString("12.00")},
					{ID: 2, SheetID: 1, PriceMode: "single", MinSheets: 50, PricePerSheet: decimal.RequireFromString("8.00")},
				},
			},
		},
		PrintTypeRates: map[string]PrintTypeRate{
			"bw":    {PrintType: "bw", RatePerSheet: dec(t, "0.5"), SetupCost: decimal.Zero, Active: true},
			"color": {PrintType: "color", RatePerSheet: dec(t, "2"), SetupCost: dec(t, "150"), Active: true},
		},
		PaperRates: map[PaperKey]decimal.Decimal{
			{Type: "offset", Density: 80}:  decimal.RequireFromString("0.1"),
			{Type: "coated", Density: 130}: decimal.RequireFromString("0.35"),
		},
		FinishingRates: map[string]decimal.Decimal{
			"lamination_matte":  decimal.RequireFromString("0.8"),
			"lamination_glossy": decimal.RequireFromString("0.9"),
			"trim":              decimal.RequireFromString("0.2"),
		},
		QuantityDiscounts: []QuantityDiscountTier{
			{ID: 1, MinQuantity: 100, MaxQuantity: intPtr(499), DiscountPercent: decimal.RequireFromString("5"), Active: true},
			{ID: 2, MinQuantity: 500, DiscountPercent: decimal.RequireFromString("10"), Active: true},
		},
		Markup: MarkupSettings{
			DefaultMarkupPercent: decimal.RequireFromString("30"),
			UrgencyMarkupPercent: decimal.RequireFromString("50"),
			MinOrderTotal:        decimal.RequireFromString("500"),
		},
	}
}

func rawJSON(t *testing.T, s string) json.RawMessage {
	t.Helper()
	if !json.Valid([]byte(s)) {
		t.Fatalf("bad json fixture: %s", s)
	}
	return json.RawMessage(s)
}
