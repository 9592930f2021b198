package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"printdesk/internal/pricing"
)

// MemoryStore is an in-memory Store used by handler tests and local
// development without Postgres.
type MemoryStore struct {
	mu      sync.RWMutex
	catalog pricing.Catalog
	links   []pricing.ProductOperationLink

	nextServiceID int64
	nextTierID    int64
}

func NewMemoryStore(catalog pricing.Catalog, links []pricing.ProductOperationLink) *MemoryStore {
	s := &MemoryStore{catalog: catalog, links: links, nextServiceID: 1, nextTierID: 1}
	for _, svc := range catalog.Services {
		if svc.ID >= s.nextServiceID {
			s.nextServiceID = svc.ID + 1
		}
	}
	for _, t := range catalog.Tiers {
		if t.ID >= s.nextTierID {
			s.nextTierID = t.ID + 1
		}
	}
	return s
}

func (s *MemoryStore) LoadSnapshot(ctx context.Context) (*pricing.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return pricing.NewSnapshot(s.catalog), nil
}

func (s *MemoryStore) ListServices(ctx context.Context, includeInactive bool) ([]pricing.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]pricing.Service, 0, len(s.catalog.Services))
	for _, svc := range s.catalog.Services {
		if includeInactive || svc.Active {
			out = append(out, svc)
		}
	}
	return out, nil
}

func (s *MemoryStore) GetService(ctx context.Context, id int64) (*pricing.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, svc := range s.catalog.Services {
		if svc.ID == id {
			svc := svc
			return &svc, nil
		}
	}
	return nil, pricing.NotFound("service_id", "service %d not found", id)
}

func (s *MemoryStore) CreateService(ctx context.Context, svc pricing.Service) (*pricing.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	svc.ID = s.nextServiceID
	s.nextServiceID++
	svc.Active = true
	svc.CreatedAt = time.Now()
	svc.UpdatedAt = svc.CreatedAt
	s.catalog.Services = append(s.catalog.Services, svc)
	return &svc, nil
}

func (s *MemoryStore) UpdateService(ctx context.Context, svc pricing.Service) (*pricing.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.catalog.Services {
		if s.catalog.Services[i].ID == svc.ID {
			svc.CreatedAt = s.catalog.Services[i].CreatedAt
			svc.UpdatedAt = time.Now()
			s.catalog.Services[i] = svc
			return &svc, nil
		}
	}
	return nil, pricing.NotFound("service_id", "service %d not found", svc.ID)
}

func (s *MemoryStore) DeactivateService(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.catalog.Services {
		if s.catalog.Services[i].ID == id {
			s.catalog.Services[i].Active = false
			s.catalog.Services[i].UpdatedAt = time.Now()
			return nil
		}
	}
	return pricing.NotFound("service_id", "service %d not found", id)
}

func (s *MemoryStore) ListTiers(ctx context.Context, serviceID int64, variantID string) ([]pricing.VolumeTier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []pricing.VolumeTier
	for _, t := range s.catalog.Tiers {
		v := ""
		if t.VariantID != nil {
			v = *t.VariantID
		}
		if t.ServiceID == serviceID && v == variantID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *MemoryStore) CreateTier(ctx context.Context, tier pricing.VolumeTier) (*pricing.VolumeTier, error) {
	if _, err := s.GetService(ctx, tier.ServiceID); err != nil {
		return nil, err
	}
	variant := ""
	if tier.VariantID != nil {
		variant = *tier.VariantID
	}
	existing, err := s.ListTiers(ctx, tier.ServiceID, variant)
	if err != nil {
		return nil, err
	}
	sched := pricing.NewTierSchedule(pricing.TierKey{ServiceID: tier.ServiceID, VariantID: variant}, existing)
	if err := sched.ValidateNewTier(tier.MinQuantity); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	tier.ID = s.nextTierID
	s.nextTierID++
	tier.Active = true
	s.catalog.Tiers = append(s.catalog.Tiers, tier)
	return &tier, nil
}

func (s *MemoryStore) ListProductOperations(ctx context.Context, productKey string) ([]pricing.ProductOperationLink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []pricing.ProductOperationLink
	for _, l := range s.links {
		if l.ProductKey == productKey {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Sequence != out[j].Sequence {
			return out[i].Sequence < out[j].Sequence
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) ListPrintSheets(ctx context.Context) ([]pricing.PrintPriceSheet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]pricing.PrintPriceSheet(nil), s.catalog.Sheets...), nil
}

func (s *MemoryStore) GetPrintSheet(ctx context.Context, id int64) (*pricing.PrintPriceSheet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.catalog.Sheets {
		if s.catalog.Sheets[i].ID == id {
			sheet := s.catalog.Sheets[i]
			return &sheet, nil
		}
	}
	return nil, pricing.NotFound("id", "print price sheet %d not found", id)
}
