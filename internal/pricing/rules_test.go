package pricing

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func quantityDiscountRecord(t *testing.T, id int64, minQty int, percent string) PricingRuleRecord {
	t.Helper()
	return PricingRuleRecord{
		ID:          id,
		ServiceID:   1,
		RuleType:    RuleTypeQuantityDiscount,
		Conditions:  rawJSON(t, `{"min_quantity": `+itoa(minQty)+`}`),
		PricingData: rawJSON(t, `{"discount_percent": "`+percent+`"}`),
		Active:      true,
	}
}

func itoa(v int) string {
	return decimal.NewFromInt(int64(v)).String()
}

func TestApplyRules_MinQuantityBoundary(t *testing.T) {
	base := decimal.RequireFromString("10")
	records := []PricingRuleRecord{quantityDiscountRecord(t, 1, 500, "10")}

	below := ApplyRules(base, records, RuleContext{Quantity: 499})
	wantDecimal(t, "rate at 499", below.Rate, "10")
	if below.AppliedRuleID != 0 {
		t.Fatalf("rule applied below threshold: id %d", below.AppliedRuleID)
	}

	at := ApplyRules(base, records, RuleContext{Quantity: 500})
	wantDecimal(t, "rate at 500", at.Rate, "9")
	if at.AppliedRuleID != 1 {
		t.Fatalf("applied rule id = %d, want 1", at.AppliedRuleID)
	}
}

func TestApplyRules_SingleBestMatchNoStacking(t *testing.T) {
	base := decimal.RequireFromString("100")
	records := []PricingRuleRecord{
		quantityDiscountRecord(t, 1, 100, "5"),
		quantityDiscountRecord(t, 2, 500, "15"),
		quantityDiscountRecord(t, 3, 200, "10"),
	}

	out := ApplyRules(base, records, RuleContext{Quantity: 1000})
	// 5+10+15 stacked would be 70; single best match gives 85.
	wantDecimal(t, "rate", out.Rate, "85")
	if out.AppliedRuleID != 2 {
		t.Fatalf("applied rule id = %d, want 2 (highest discount)", out.AppliedRuleID)
	}
}

func TestApplyRules_SkipsMalformedWithWarning(t *testing.T) {
	base := decimal.RequireFromString("10")
	records := []PricingRuleRecord{
		{
			ID: 1, ServiceID: 1, RuleType: RuleTypeQuantityDiscount,
			Conditions:  rawJSON(t, `{}`),
			PricingData: rawJSON(t, `{"discount_percent":"10"}`),
			Active:      true,
		},
		quantityDiscountRecord(t, 2, 1, "5"),
	}

	out := ApplyRules(base, records, RuleContext{Quantity: 10})
	wantDecimal(t, "rate", out.Rate, "9.5")
	if len(out.Warnings) != 1 {
		t.Fatalf("warnings = %v, want exactly one", out.Warnings)
	}
	if !strings.Contains(out.Warnings[0], "min_quantity") {
		t.Fatalf("warning should name the missing key, got %q", out.Warnings[0])
	}
}

func TestApplyRules_UnknownTypeNeverMatches(t *testing.T) {
	base := decimal.RequireFromString("10")
	records := []PricingRuleRecord{
		{
			ID: 1, ServiceID: 1, RuleType: "loyalty_bonus",
			Conditions:  rawJSON(t, `{"customer_group":"vip"}`),
			PricingData: rawJSON(t, `{"bonus":"3"}`),
			Active:      true,
		},
	}
	out := ApplyRules(base, records, RuleContext{Quantity: 10000})
	wantDecimal(t, "rate", out.Rate, "10")
}

func TestApplyRules_IgnoresInactive(t *testing.T) {
	rec := quantityDiscountRecord(t, 1, 1, "50")
	rec.Active = false
	out := ApplyRules(decimal.RequireFromString("10"), []PricingRuleRecord{rec}, RuleContext{Quantity: 100})
	wantDecimal(t, "rate", out.Rate, "10")
}

func TestParseRule_UnknownFallback(t *testing.T) {
	rule, err := ParseRule(PricingRuleRecord{
		ID: 9, RuleType: "mystery",
		Conditions:  rawJSON(t, `{}`),
		PricingData: rawJSON(t, `{}`),
	})
	if err != nil {
		t.Fatalf("unknown rule type must parse to the fallback, got error: %v", err)
	}
	if _, ok := rule.(UnknownRule); !ok {
		t.Fatalf("parsed %T, want UnknownRule", rule)
	}
}
