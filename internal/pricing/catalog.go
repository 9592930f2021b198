package pricing

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Reference data the engine prices against. All of it is admin-managed:
// records are soft-deactivated, never hard-deleted, and a calculation
// request reads an immutable snapshot loaded once per request.

// Service is a priced operation from the shop's catalog.
type Service struct {
	ID              int64            `db:"id" json:"id"`
	Name            string           `db:"name" json:"name"`
	Category        string           `db:"category" json:"category"`
	Unit            string           `db:"unit" json:"unit"`
	BaseRate        decimal.Decimal  `db:"base_rate" json:"base_rate"`
	OperatorPercent *decimal.Decimal `db:"operator_percent" json:"operator_percent,omitempty"`
	Active          bool             `db:"active" json:"active"`
	CreatedAt       time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time        `db:"updated_at" json:"updated_at"`
}

// VolumeTier overrides a service rate from MinQuantity upward.
// Rate is either an absolute per-unit rate or a percent discount off the
// base rate, depending on IsPercent.
type VolumeTier struct {
	ID          int64           `db:"id" json:"id"`
	ServiceID   int64           `db:"service_id" json:"service_id"`
	VariantID   *string         `db:"variant_id" json:"variant_id,omitempty"`
	MinQuantity int             `db:"min_quantity" json:"min_quantity"`
	Rate        decimal.Decimal `db:"rate" json:"rate"`
	IsPercent   bool            `db:"is_percent" json:"is_percent"`
	Active      bool            `db:"active" json:"active"`
}

// PricingRuleRecord is the stored form of a rule: the conditions and
// pricing documents are JSON columns parsed into typed variants by
// ParseRule at the store boundary.
type PricingRuleRecord struct {
	ID          int64           `db:"id" json:"id"`
	ServiceID   int64           `db:"service_id" json:"service_id"`
	RuleType    string          `db:"rule_type" json:"rule_type"`
	Conditions  json.RawMessage `db:"conditions" json:"conditions"`
	PricingData json.RawMessage `db:"pricing_data" json:"pricing_data"`
	Active      bool            `db:"active" json:"active"`
}

// BindingType is a catalog entry for a physical assembly method.
type BindingType struct {
	Value         string          `db:"value" json:"value"`
	Label         string          `db:"label" json:"label"`
	MinPages      *int            `db:"min_pages" json:"min_pages,omitempty"`
	MaxPages      *int            `db:"max_pages" json:"max_pages,omitempty"`
	DuplexDefault bool            `db:"duplex_default" json:"duplex_default"`
	UnitPrice     decimal.Decimal `db:"unit_price" json:"unit_price"`
	Active        bool            `db:"active" json:"active"`
}

// SheetTier prices a run of physical sheets on one technology.
// MaxSheets is open-ended when nil.
type SheetTier struct {
	ID            int64           `db:"id" json:"id"`
	SheetID       int64           `db:"sheet_id" json:"-"`
	PriceMode     string          `db:"price_mode" json:"price_mode"`
	MinSheets     int             `db:"min_sheets" json:"min_sheets"`
	MaxSheets     *int            `db:"max_sheets" json:"max_sheets,omitempty"`
	PricePerSheet decimal.Decimal `db:"price_per_sheet" json:"price_per_sheet"`
}

// PrintPriceSheet describes one technology's physical sheet and its
// sheet-denominated price schedule. CounterUnit is always "sheets" for
// records this engine consumes.
type PrintPriceSheet struct {
	ID             int64       `db:"id" json:"id"`
	TechnologyCode string      `db:"technology_code" json:"technology_code"`
	CounterUnit    string      `db:"counter_unit" json:"counter_unit"`
	SheetWidthMM   float64     `db:"sheet_width_mm" json:"sheet_width_mm"`
	SheetHeightMM  float64     `db:"sheet_height_mm" json:"sheet_height_mm"`
	MarginMM       float64     `db:"margin_mm" json:"margin_mm"`
	GapMM          float64     `db:"gap_mm" json:"gap_mm"`
	Active         bool        `db:"active" json:"active"`
	Tiers          []SheetTier `json:"tiers"`
}

// ProductOperationLink orders a service within a product's operation
// chain. DefaultParams and Conditions are pass-through configuration for
// the product schema endpoint.
type ProductOperationLink struct {
	ID              int64           `db:"id" json:"id"`
	ProductKey      string          `db:"product_key" json:"product_key"`
	ServiceID       int64           `db:"service_id" json:"service_id"`
	Sequence        int             `db:"sequence" json:"sequence"`
	IsRequired      bool            `db:"is_required" json:"is_required"`
	IsDefault       bool            `db:"is_default" json:"is_default"`
	PriceMultiplier decimal.Decimal `db:"price_multiplier" json:"price_multiplier"`
	DefaultParams   json.RawMessage `db:"default_params" json:"default_params,omitempty"`
	Conditions      json.RawMessage `db:"conditions" json:"conditions,omitempty"`
}

// QuantityDiscountTier is an order-level discount band.
type QuantityDiscountTier struct {
	ID              int64           `db:"id" json:"id"`
	MinQuantity     int             `db:"min_quantity" json:"min_quantity"`
	MaxQuantity     *int            `db:"max_quantity" json:"max_quantity,omitempty"`
	DiscountPercent decimal.Decimal `db:"discount_percent" json:"discount_percent"`
	Active          bool            `db:"active" json:"active"`
}

// MarkupSettings holds the shop-wide markup knobs surfaced to the admin UI.
type MarkupSettings struct {
	DefaultMarkupPercent decimal.Decimal `db:"default_markup_percent" json:"default_markup_percent"`
	UrgencyMarkupPercent decimal.Decimal `db:"urgency_markup_percent" json:"urgency_markup_percent"`
	MinOrderTotal        decimal.Decimal `db:"min_order_total" json:"min_order_total"`
}

// PrintTypeRate prices a multipage print technology: a per-sheet rate
// plus a one-time setup fee charged once per job.
type PrintTypeRate struct {
	PrintType    string          `db:"print_type" json:"print_type"`
	RatePerSheet decimal.Decimal `db:"rate_per_sheet" json:"rate_per_sheet"`
	SetupCost    decimal.Decimal `db:"setup_cost" json:"setup_cost"`
	Active       bool            `db:"active" json:"active"`
}

// PaperKey identifies a paper stock by type and grammage.
type PaperKey struct {
	Type    string
	Density int
}

// PaperRate is the per-sheet cost of one paper stock.
type PaperRate struct {
	PaperType    string          `db:"paper_type" json:"paper_type"`
	Density      int             `db:"density" json:"density"`
	CostPerSheet decimal.Decimal `db:"cost_per_sheet" json:"cost_per_sheet"`
	Active       bool            `db:"active" json:"active"`
}

// FinishingRate is a per-item finishing cost (lamination kinds, trim).
type FinishingRate struct {
	Kind        string          `db:"kind" json:"kind"`
	RatePerItem decimal.Decimal `db:"rate_per_item" json:"rate_per_item"`
	Active      bool            `db:"active" json:"active"`
}

// Snapshot is the immutable per-request view of all reference data.
// The engine only reads it; concurrent requests each hold their own.
type Snapshot struct {
	Services          []Service
	TiersByService    map[int64][]VolumeTier
	RulesByService    map[int64][]PricingRuleRecord
	BindingTypes      map[string]BindingType
	PrintSheets       []PrintPriceSheet
	PrintTypeRates    map[string]PrintTypeRate
	PaperRates        map[PaperKey]decimal.Decimal
	FinishingRates    map[string]decimal.Decimal
	QuantityDiscounts []QuantityDiscountTier
	Markup            MarkupSettings
}

// ServiceByID returns the active service with the given id.
func (s *Snapshot) ServiceByID(id int64) (Service, bool) {
	for _, svc := range s.Services {
		if svc.ID == id && svc.Active {
			return svc, true
		}
	}
	return Service{}, false
}

// SheetByTechnology resolves the active sheet-counted price sheet for a
// technology code.
func (s *Snapshot) SheetByTechnology(code string) (PrintPriceSheet, bool) {
	for _, ps := range s.PrintSheets {
		if ps.TechnologyCode == code && ps.CounterUnit == CounterUnitSheets && ps.Active {
			return ps, true
		}
	}
	return PrintPriceSheet{}, false
}

// CounterUnitSheets marks price sheets denominated in physical sheets,
// the only counter unit the derivation service understands.
const CounterUnitSheets = "sheets"
