package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"printdesk/internal/pricing"
)

func idParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, pricing.InvalidArgument("id", "invalid id %q", raw)
	}
	return id, nil
}

// --- services ---

type serviceRequest struct {
	Name            string           `json:"name"`
	Category        string           `json:"category"`
	Unit            string           `json:"unit"`
	BaseRate        decimal.Decimal  `json:"base_rate"`
	OperatorPercent *decimal.Decimal `json:"operator_percent"`
	Active          *bool            `json:"active"`
}

func (req *serviceRequest) validate() error {
	if req.Name == "" {
		return pricing.InvalidArgument("name", "name is required")
	}
	if req.Unit == "" {
		return pricing.InvalidArgument("unit", "unit is required")
	}
	if req.BaseRate.IsNegative() {
		return pricing.InvalidArgument("base_rate", "base_rate must not be negative")
	}
	return nil
}

func (s *Server) handleListServices(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("include_inactive") == "true"
	services, err := s.store.ListServices(r.Context(), includeInactive)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, services)
}

func (s *Server) handleCreateService(w http.ResponseWriter, r *http.Request) {
	var req serviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, pricing.InvalidArgument("body", "malformed request body: %v", err))
		return
	}
	if err := req.validate(); err != nil {
		s.writeError(w, r, err)
		return
	}
	created, err := s.store.CreateService(r.Context(), pricing.Service{
		Name:            req.Name,
		Category:        req.Category,
		Unit:            req.Unit,
		BaseRate:        req.BaseRate,
		OperatorPercent: req.OperatorPercent,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetService(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	svc, err := s.store.GetService(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, svc)
}

func (s *Server) handleUpdateService(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req serviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, pricing.InvalidArgument("body", "malformed request body: %v", err))
		return
	}
	if err := req.validate(); err != nil {
		s.writeError(w, r, err)
		return
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	updated, err := s.store.UpdateService(r.Context(), pricing.Service{
		ID:              id,
		Name:            req.Name,
		Category:        req.Category,
		Unit:            req.Unit,
		BaseRate:        req.BaseRate,
		OperatorPercent: req.OperatorPercent,
		Active:          active,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeactivateService(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.DeactivateService(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- volume tiers ---

type tierRequest struct {
	MinQuantity int             `json:"min_quantity"`
	Rate        decimal.Decimal `json:"rate"`
	IsPercent   bool            `json:"is_percent"`
}

func (s *Server) handleListTiers(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, err := s.store.GetService(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	tiers, err := s.store.ListTiers(r.Context(), id, chi.URLParam(r, "variant"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if tiers == nil {
		tiers = []pricing.VolumeTier{}
	}
	s.writeJSON(w, http.StatusOK, tiers)
}

func (s *Server) handleCreateTier(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req tierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, pricing.InvalidArgument("body", "malformed request body: %v", err))
		return
	}
	if req.Rate.IsNegative() {
		s.writeError(w, r, pricing.InvalidArgument("rate", "rate must not be negative"))
		return
	}
	tier := pricing.VolumeTier{
		ServiceID:   id,
		MinQuantity: req.MinQuantity,
		Rate:        req.Rate,
		IsPercent:   req.IsPercent,
	}
	if variant := chi.URLParam(r, "variant"); variant != "" {
		tier.VariantID = &variant
	}
	created, err := s.store.CreateTier(r.Context(), tier)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, created)
}

// --- product schema ---

type productOperationView struct {
	Sequence        int                     `json:"sequence"`
	IsRequired      bool                    `json:"is_required"`
	IsDefault       bool                    `json:"is_default"`
	PriceMultiplier decimal.Decimal         `json:"price_multiplier"`
	DefaultParams   json.RawMessage         `json:"default_params,omitempty"`
	Conditions      json.RawMessage         `json:"conditions,omitempty"`
	Operation       *pricing.OperationQuote `json:"operation"`
}

type productSchemaResponse struct {
	ProductKey string                 `json:"product_key"`
	Operations []productOperationView `json:"operations"`
}

func (s *Server) handleProductSchema(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	links, err := s.store.ListProductOperations(r.Context(), key)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(links) == 0 {
		s.writeError(w, r, pricing.NotFound("key", "product type %q not found", key))
		return
	}
	snap, err := s.store.LoadSnapshot(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := productSchemaResponse{ProductKey: key, Operations: make([]productOperationView, 0, len(links))}
	for _, link := range links {
		quote, err := pricing.QuoteOperation(snap, link.ServiceID, "", pricing.RuleContext{Quantity: 1})
		if err != nil {
			// Deactivated services drop out of the schema.
			continue
		}
		resp.Operations = append(resp.Operations, productOperationView{
			Sequence:        link.Sequence,
			IsRequired:      link.IsRequired,
			IsDefault:       link.IsDefault,
			PriceMultiplier: link.PriceMultiplier,
			DefaultParams:   link.DefaultParams,
			Conditions:      link.Conditions,
			Operation:       quote,
		})
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// --- print prices ---

func (s *Server) handleListPrintSheets(w http.ResponseWriter, r *http.Request) {
	sheets, err := s.store.ListPrintSheets(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if sheets == nil {
		sheets = []pricing.PrintPriceSheet{}
	}
	s.writeJSON(w, http.StatusOK, sheets)
}

func (s *Server) handleGetPrintSheet(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sheet, err := s.store.GetPrintSheet(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sheet)
}

func (s *Server) handleDerivePrintPrices(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	tech := q.Get("technology_code")
	if tech == "" {
		s.writeError(w, r, pricing.InvalidArgument("technology_code", "technology_code is required"))
		return
	}
	width, err := positiveFloat(q.Get("width_mm"), "width_mm")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	height, err := positiveFloat(q.Get("height_mm"), "height_mm")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	snap, err := s.store.LoadSnapshot(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := pricing.DerivePrintPrices(snap, pricing.DeriveRequest{
		TechnologyCode: tech,
		Item:           pricing.Dimensions{Width: width, Height: height},
		ColorMode:      q.Get("color_mode"),
		SidesMode:      q.Get("sides_mode"),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func positiveFloat(raw, field string) (float64, error) {
	if raw == "" {
		return 0, pricing.InvalidArgument(field, "%s is required", field)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, pricing.InvalidArgument(field, "%s must be a number, got %q", field, raw)
	}
	if v <= 0 {
		return 0, pricing.InvalidArgument(field, "%s must be positive, got %g", field, v)
	}
	return v, nil
}

// --- global reference data ---

func (s *Server) handleQuantityDiscounts(w http.ResponseWriter, r *http.Request) {
	snap, err := s.store.LoadSnapshot(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	discounts := snap.QuantityDiscounts
	if discounts == nil {
		discounts = []pricing.QuantityDiscountTier{}
	}
	s.writeJSON(w, http.StatusOK, discounts)
}

func (s *Server) handleMarkupSettings(w http.ResponseWriter, r *http.Request) {
	snap, err := s.store.LoadSnapshot(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap.Markup)
}

// --- multipage calculation ---

func (s *Server) handleMultiPageCalculate(w http.ResponseWriter, r *http.Request) {
	var in pricing.MultiPageInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		s.writeError(w, r, pricing.InvalidArgument("body", "malformed request body: %v", err))
		return
	}
	snap, err := s.store.LoadSnapshot(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := pricing.CalculateMultiPage(snap, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res.Rounded())
}
