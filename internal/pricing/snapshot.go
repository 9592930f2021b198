package pricing

import "github.com/shopspring/decimal"

// Catalog is the flat, storage-shaped form of the reference data: plain
// slices as they come back from the database (or a cache dump).
type Catalog struct {
	Services          []Service              `json:"services"`
	Tiers             []VolumeTier           `json:"tiers"`
	Rules             []PricingRuleRecord    `json:"rules"`
	BindingTypes      []BindingType          `json:"binding_types"`
	Sheets            []PrintPriceSheet      `json:"sheets"`
	PrintTypeRates    []PrintTypeRate        `json:"print_type_rates"`
	PaperRates        []PaperRate            `json:"paper_rates"`
	FinishingRates    []FinishingRate        `json:"finishing_rates"`
	QuantityDiscounts []QuantityDiscountTier `json:"quantity_discounts"`
	Markup            MarkupSettings         `json:"markup"`
}

// NewSnapshot indexes a catalog into the immutable per-request view the
// engine reads. Inactive rate rows are dropped here so lookups see only
// priceable entries; services, tiers and rules keep their active flag
// because admin listings need the full set.
func NewSnapshot(c Catalog) *Snapshot {
	snap := &Snapshot{
		Services:          c.Services,
		TiersByService:    make(map[int64][]VolumeTier),
		RulesByService:    make(map[int64][]PricingRuleRecord),
		BindingTypes:      make(map[string]BindingType, len(c.BindingTypes)),
		PrintSheets:       c.Sheets,
		PrintTypeRates:    make(map[string]PrintTypeRate, len(c.PrintTypeRates)),
		PaperRates:        make(map[PaperKey]decimal.Decimal, len(c.PaperRates)),
		FinishingRates:    make(map[string]decimal.Decimal, len(c.FinishingRates)),
		QuantityDiscounts: c.QuantityDiscounts,
		Markup:            c.Markup,
	}
	for _, t := range c.Tiers {
		snap.TiersByService[t.ServiceID] = append(snap.TiersByService[t.ServiceID], t)
	}
	for _, r := range c.Rules {
		snap.RulesByService[r.ServiceID] = append(snap.RulesByService[r.ServiceID], r)
	}
	for _, bt := range c.BindingTypes {
		snap.BindingTypes[bt.Value] = bt
	}
	for _, pr := range c.PrintTypeRates {
		snap.PrintTypeRates[pr.PrintType] = pr
	}
	for _, pr := range c.PaperRates {
		if pr.Active {
			snap.PaperRates[PaperKey{Type: pr.PaperType, Density: pr.Density}] = pr.CostPerSheet
		}
	}
	for _, fr := range c.FinishingRates {
		if fr.Active {
			snap.FinishingRates[fr.Kind] = fr.RatePerItem
		}
	}
	return snap
}
