package pricing

import "github.com/shopspring/decimal"

// OperationQuote is the resolved rate for one catalog operation at a
// given quantity: base rate, then the volume tier, then the best
// matching pricing rule.
type OperationQuote struct {
	ServiceID       int64           `json:"service_id"`
	Name            string          `json:"name"`
	Unit            string          `json:"unit"`
	BaseRate        decimal.Decimal `json:"base_rate"`
	Rate            decimal.Decimal `json:"rate"`
	TierID          int64           `json:"tier_id,omitempty"`
	AppliedRuleID   int64           `json:"applied_rule_id,omitempty"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	Warnings        []string        `json:"warnings,omitempty"`
}

// QuoteOperation resolves the effective rate of a service for a
// quantity and variant. An absolute tier replaces the base rate, a
// percent tier discounts it; pricing rules then adjust the tiered rate.
func QuoteOperation(snap *Snapshot, serviceID int64, variantID string, ctx RuleContext) (*OperationQuote, error) {
	svc, ok := snap.ServiceByID(serviceID)
	if !ok {
		return nil, NotFound("service_id", "service %d not found", serviceID)
	}

	q := &OperationQuote{
		ServiceID: svc.ID,
		Name:      svc.Name,
		Unit:      svc.Unit,
		BaseRate:  svc.BaseRate,
		Rate:      svc.BaseRate,
	}

	if tier, ok := snap.ScheduleFor(serviceID, variantID).Resolve(ctx.Quantity); ok {
		q.TierID = tier.ID
		if tier.IsPercent {
			q.Rate = svc.BaseRate.Sub(Percent(svc.BaseRate, tier.Rate))
		} else {
			q.Rate = tier.Rate
		}
	}

	outcome := ApplyRules(q.Rate, snap.RulesByService[serviceID], ctx)
	q.Rate = outcome.Rate
	q.AppliedRuleID = outcome.AppliedRuleID
	q.DiscountPercent = outcome.DiscountPercent
	q.Warnings = outcome.Warnings
	return q, nil
}

// ResolveQuantityDiscount finds the order-level discount band covering
// quantity. Bands are inclusive on both bounds; MaxQuantity nil means
// open-ended.
func ResolveQuantityDiscount(snap *Snapshot, quantity int) (QuantityDiscountTier, bool) {
	var match QuantityDiscountTier
	found := false
	for _, t := range snap.QuantityDiscounts {
		if !t.Active || quantity < t.MinQuantity {
			continue
		}
		if t.MaxQuantity != nil && quantity > *t.MaxQuantity {
			continue
		}
		if !found || t.MinQuantity > match.MinQuantity {
			match = t
			found = true
		}
	}
	return match, found
}
