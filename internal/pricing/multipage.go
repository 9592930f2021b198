package pricing

import "github.com/shopspring/decimal"

// MultiPageCostCalculator: the top-level orchestrator for multi-page
// products (brochures, catalogs, booklets). Composes the binding
// validator and the snapshot rate catalogs into a total cost with a
// per-component breakdown.

// MultiPageInput is the calculation request. Duplex nil means "use the
// binding type's suggested default".
type MultiPageInput struct {
	Pages        int    `json:"pages"`
	Quantity     int    `json:"quantity"`
	Format       string `json:"format"`
	PrintType    string `json:"print_type"`
	BindingType  string `json:"binding_type"`
	PaperType    string `json:"paper_type"`
	PaperDensity int    `json:"paper_density"`
	Duplex       *bool  `json:"duplex,omitempty"`
	Lamination   string `json:"lamination"`
	TrimMargins  bool   `json:"trim_margins"`
}

// MultiPageBreakdown itemizes the cost components. Values are unrounded;
// rounding to 2 places happens only at the response boundary.
type MultiPageBreakdown struct {
	Print      decimal.Decimal `json:"print"`
	Binding    decimal.Decimal `json:"binding"`
	Paper      decimal.Decimal `json:"paper"`
	Lamination decimal.Decimal `json:"lamination"`
	Trim       decimal.Decimal `json:"trim"`
	Setup      decimal.Decimal `json:"setup"`
}

// MultiPageResult is the calculation outcome.
type MultiPageResult struct {
	TotalCost    decimal.Decimal    `json:"total_cost"`
	PricePerItem decimal.Decimal    `json:"price_per_item"`
	Breakdown    MultiPageBreakdown `json:"breakdown"`
	Sheets       int                `json:"sheets"`
	Duplex       bool               `json:"duplex"`
	Warnings     []string           `json:"warnings,omitempty"`
}

const laminationNone = "none"

// CalculateMultiPage prices a multi-page product against the snapshot.
//
// sheetsPerCopy is ceil(pages/2) when printing duplex, otherwise the
// page count itself. Binding bound violations are advisory: the price
// is still produced and the violations come back in Warnings.
func CalculateMultiPage(snap *Snapshot, in MultiPageInput) (*MultiPageResult, error) {
	if in.Quantity < 1 {
		return nil, InvalidArgument("quantity", "quantity must be at least 1, got %d", in.Quantity)
	}
	if in.Pages < 4 {
		return nil, InvalidArgument("pages", "multi-page products require at least 4 pages, got %d", in.Pages)
	}

	printRate, ok := snap.PrintTypeRates[in.PrintType]
	if !ok || !printRate.Active {
		return nil, InvalidArgument("print_type", "unknown print type %q", in.PrintType)
	}
	binding, ok := snap.BindingTypes[in.BindingType]
	if !ok || !binding.Active {
		return nil, InvalidArgument("binding_type", "unknown binding type %q", in.BindingType)
	}
	paperCost, ok := snap.PaperRates[PaperKey{Type: in.PaperType, Density: in.PaperDensity}]
	if !ok {
		return nil, InvalidArgument("paper_type", "no paper rate for type %q density %d", in.PaperType, in.PaperDensity)
	}

	check := ValidateBinding(binding, in.Pages)

	duplex := check.SuggestedDuplex
	if in.Duplex != nil {
		duplex = *in.Duplex
	}
	sheetsPerCopy := in.Pages
	if duplex {
		sheetsPerCopy = (in.Pages + 1) / 2
	}

	qty := decimal.NewFromInt(int64(in.Quantity))
	sheets := decimal.NewFromInt(int64(sheetsPerCopy))
	totalSheets := sheets.Mul(qty)

	b := MultiPageBreakdown{
		Print:      totalSheets.Mul(printRate.RatePerSheet),
		Binding:    qty.Mul(binding.UnitPrice),
		Paper:      totalSheets.Mul(paperCost),
		Lamination: decimal.Zero,
		Trim:       decimal.Zero,
		Setup:      printRate.SetupCost,
	}

	if in.Lamination != "" && in.Lamination != laminationNone {
		rate, ok := snap.FinishingRates["lamination_"+in.Lamination]
		if !ok {
			return nil, InvalidArgument("lamination", "unknown lamination kind %q", in.Lamination)
		}
		b.Lamination = qty.Mul(rate)
	}
	if in.TrimMargins {
		rate, ok := snap.FinishingRates["trim"]
		if !ok {
			return nil, Unprocessable("trim requested but no trim rate is configured")
		}
		b.Trim = qty.Mul(rate)
	}

	total := b.Print.Add(b.Binding).Add(b.Paper).Add(b.Lamination).Add(b.Trim).Add(b.Setup)

	return &MultiPageResult{
		TotalCost:    total,
		PricePerItem: total.Div(qty),
		Breakdown:    b,
		Sheets:       sheetsPerCopy,
		Duplex:       duplex,
		Warnings:     check.Warnings,
	}, nil
}

// Rounded returns a copy with every monetary field rounded to 2 places,
// for the response boundary.
func (r MultiPageResult) Rounded() MultiPageResult {
	r.TotalCost = Round2(r.TotalCost)
	r.PricePerItem = Round2(r.PricePerItem)
	r.Breakdown.Print = Round2(r.Breakdown.Print)
	r.Breakdown.Binding = Round2(r.Breakdown.Binding)
	r.Breakdown.Paper = Round2(r.Breakdown.Paper)
	r.Breakdown.Lamination = Round2(r.Breakdown.Lamination)
	r.Breakdown.Trim = Round2(r.Breakdown.Trim)
	r.Breakdown.Setup = Round2(r.Breakdown.Setup)
	return r
}
