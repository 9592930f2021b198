package pricing

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Conditional discounts and surcharges on an operation's base rate.
// The stored rule documents are loosely-typed JSON columns; they are
// parsed once at the store boundary into the closed variant set below
// instead of flowing through the engine as untyped maps.

// Recognized rule types.
const (
	RuleTypeQuantityDiscount = "quantity_discount"
)

// Rule is a parsed pricing rule variant.
type Rule interface {
	// Matches evaluates the rule's condition against the context.
	Matches(ctx RuleContext) bool
	// DiscountPercent is the candidate adjustment when the rule matches.
	DiscountPercent() decimal.Decimal
}

// RuleContext is what a rule condition can see.
type RuleContext struct {
	Quantity int
	Params   map[string]string
}

// QuantityDiscountRule discounts the rate by Percent once the quantity
// reaches MinQuantity (inclusive).
type QuantityDiscountRule struct {
	RuleID      int64
	MinQuantity int
	Percent     decimal.Decimal
}

func (r QuantityDiscountRule) Matches(ctx RuleContext) bool {
	return ctx.Quantity >= r.MinQuantity
}

func (r QuantityDiscountRule) DiscountPercent() decimal.Decimal { return r.Percent }

// UnknownRule is the forward-compatibility fallback for rule types this
// build does not understand. It never matches.
type UnknownRule struct {
	RuleID   int64
	RuleType string
}

func (r UnknownRule) Matches(RuleContext) bool         { return false }
func (r UnknownRule) DiscountPercent() decimal.Decimal { return decimal.Zero }

type quantityDiscountConditions struct {
	MinQuantity *int `json:"min_quantity"`
}

type quantityDiscountPricing struct {
	DiscountPercent *decimal.Decimal `json:"discount_percent"`
}

// ParseRule converts a stored rule record into its typed variant.
// A record whose declared type is recognized but whose documents are
// missing required keys is malformed and returns an error; callers skip
// such rules rather than failing the calculation.
func ParseRule(rec PricingRuleRecord) (Rule, error) {
	switch rec.RuleType {
	case RuleTypeQuantityDiscount:
		var cond quantityDiscountConditions
		if err := json.Unmarshal(rec.Conditions, &cond); err != nil {
			return nil, Unprocessable("rule %d: bad conditions document: %v", rec.ID, err)
		}
		if cond.MinQuantity == nil {
			return nil, Unprocessable("rule %d: quantity_discount requires conditions.min_quantity", rec.ID)
		}
		var pd quantityDiscountPricing
		if err := json.Unmarshal(rec.PricingData, &pd); err != nil {
			return nil, Unprocessable("rule %d: bad pricing_data document: %v", rec.ID, err)
		}
		if pd.DiscountPercent == nil {
			return nil, Unprocessable("rule %d: quantity_discount requires pricing_data.discount_percent", rec.ID)
		}
		return QuantityDiscountRule{
			RuleID:      rec.ID,
			MinQuantity: *cond.MinQuantity,
			Percent:     *pd.DiscountPercent,
		}, nil
	default:
		return UnknownRule{RuleID: rec.ID, RuleType: rec.RuleType}, nil
	}
}

// RuleOutcome reports what the engine did to a base rate.
type RuleOutcome struct {
	Rate            decimal.Decimal
	AppliedRuleID   int64
	DiscountPercent decimal.Decimal
	Warnings        []string
}

// ApplyRules evaluates an operation's active rules against the context
// and returns the adjusted rate. Conflict policy: the single matching
// rule with the highest discount applies; rules never stack, which
// bounds the total discount. Malformed rules are skipped with a warning
// and never abort the calculation.
func ApplyRules(baseRate decimal.Decimal, records []PricingRuleRecord, ctx RuleContext) RuleOutcome {
	out := RuleOutcome{Rate: baseRate}
	for _, rec := range records {
		if !rec.Active {
			continue
		}
		rule, err := ParseRule(rec)
		if err != nil {
			out.Warnings = append(out.Warnings, "skipped malformed pricing rule: "+err.Error())
			continue
		}
		if !rule.Matches(ctx) {
			continue
		}
		pct := rule.DiscountPercent()
		if pct.GreaterThan(out.DiscountPercent) {
			out.DiscountPercent = pct
			switch r := rule.(type) {
			case QuantityDiscountRule:
				out.AppliedRuleID = r.RuleID
			}
		}
	}
	if out.DiscountPercent.IsPositive() {
		out.Rate = baseRate.Sub(Percent(baseRate, out.DiscountPercent))
	}
	return out
}
