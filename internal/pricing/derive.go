package pricing

import "github.com/shopspring/decimal"

// Conversion of a sheet-denominated price schedule into an
// item-denominated one for a concrete footprint: resolve the
// technology's sheet, pack the footprint, then rescale every sheet tier
// by items-per-sheet.

// DeriveRequest identifies the technology and the item footprint.
type DeriveRequest struct {
	TechnologyCode string
	Item           Dimensions
	ColorMode      string
	SidesMode      string
}

// DerivedTier is one item-denominated band of the resulting schedule.
type DerivedTier struct {
	PriceMode   string          `json:"price_mode"`
	MinQuantity int             `json:"min_quantity"`
	MaxQuantity *int            `json:"max_quantity,omitempty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// DeriveResult carries the derived schedule plus the layout facts that
// produced it.
type DeriveResult struct {
	TechnologyCode string        `json:"technology_code"`
	ItemsPerSheet  int           `json:"items_per_sheet"`
	SheetSize      Dimensions    `json:"sheet_size"`
	Tiers          []DerivedTier `json:"tiers"`
	Notes          []string      `json:"notes,omitempty"`
}

// DerivePrintPrices converts the sheet schedule of the requested
// technology into item prices for the given footprint.
//
// Each sheet tier (minSheets, maxSheets?, pricePerSheet) becomes
// (minSheets*ips, (maxSheets+1)*ips-1, pricePerSheet/ips). An empty
// configured schedule is not an error; the result carries an advisory
// note instead.
func DerivePrintPrices(snap *Snapshot, req DeriveRequest) (*DeriveResult, error) {
	if req.Item.Width <= 0 || req.Item.Height <= 0 {
		return nil, InvalidArgument("width_mm", "item dimensions must be positive, got %gx%g",
			req.Item.Width, req.Item.Height)
	}
	sheet, ok := snap.SheetByTechnology(req.TechnologyCode)
	if !ok {
		return nil, NotFound("technology_code", "no sheet price configured for technology %q", req.TechnologyCode)
	}

	sheetDims := Dimensions{Width: sheet.SheetWidthMM, Height: sheet.SheetHeightMM}
	ips, err := ItemsPerSheet(req.Item, sheetDims, sheet.MarginMM, sheet.GapMM)
	if err != nil {
		return nil, err
	}

	res := &DeriveResult{
		TechnologyCode: sheet.TechnologyCode,
		ItemsPerSheet:  ips,
		SheetSize:      sheetDims,
	}
	if !Fits(req.Item, sheetDims, sheet.MarginMM, sheet.GapMM) {
		res.Notes = append(res.Notes,
			"item footprint does not fit the sheet's usable area; priced as one item per sheet")
	}
	if len(sheet.Tiers) == 0 {
		res.Notes = append(res.Notes, "technology has no configured sheet tiers")
		return res, nil
	}

	ipsDec := decimal.NewFromInt(int64(ips))
	for _, st := range sheet.Tiers {
		dt := DerivedTier{
			PriceMode:   st.PriceMode,
			MinQuantity: st.MinSheets * ips,
			UnitPrice:   DivRound2(st.PricePerSheet, ipsDec),
		}
		if st.MaxSheets != nil {
			maxQty := (*st.MaxSheets+1)*ips - 1
			dt.MaxQuantity = &maxQty
		}
		res.Tiers = append(res.Tiers, dt)
	}
	return res, nil
}
