package pricing

import (
	"fmt"
	"sort"
)

// TierKey scopes a volume schedule to a service and an optional variant.
// Variant-less services use the zero VariantID.
type TierKey struct {
	ServiceID int64
	VariantID string
}

// TierSchedule is an ascending-sorted volume schedule for one TierKey.
type TierSchedule struct {
	Key   TierKey
	tiers []VolumeTier
}

// NewTierSchedule builds a schedule from stored tiers, keeping only
// active rows, sorted ascending by MinQuantity. Duplicate thresholds are
// a write-time invariant violation; if legacy data still carries one,
// the later-inserted row (higher id) wins.
func NewTierSchedule(key TierKey, tiers []VolumeTier) TierSchedule {
	kept := make([]VolumeTier, 0, len(tiers))
	for _, t := range tiers {
		if t.Active {
			kept = append(kept, t)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].MinQuantity != kept[j].MinQuantity {
			return kept[i].MinQuantity < kept[j].MinQuantity
		}
		return kept[i].ID < kept[j].ID
	})
	// Collapse duplicates, last inserted wins.
	out := kept[:0]
	for i, t := range kept {
		if i+1 < len(kept) && kept[i+1].MinQuantity == t.MinQuantity {
			continue
		}
		out = append(out, t)
	}
	return TierSchedule{Key: key, tiers: out}
}

// Tiers returns the schedule's rows in ascending threshold order.
func (s TierSchedule) Tiers() []VolumeTier { return s.tiers }

// Resolve returns the tier with the largest MinQuantity <= quantity.
// The boundary is inclusive: quantity equal to a threshold activates
// that tier. Below the lowest threshold no tier applies and the caller
// keeps the base rate.
func (s TierSchedule) Resolve(quantity int) (VolumeTier, bool) {
	var match VolumeTier
	found := false
	for _, t := range s.tiers {
		if t.MinQuantity > quantity {
			break
		}
		match = t
		found = true
	}
	return match, found
}

// ValidateNewTier enforces the write-time uniqueness invariant: one
// threshold per (service, variant).
func (s TierSchedule) ValidateNewTier(minQuantity int) error {
	for _, t := range s.tiers {
		if t.MinQuantity == minQuantity {
			return InvalidArgument("min_quantity",
				"tier with min_quantity %d already exists for service %d", minQuantity, s.Key.ServiceID)
		}
	}
	if minQuantity < 1 {
		return InvalidArgument("min_quantity", "min_quantity must be at least 1, got %d", minQuantity)
	}
	return nil
}

// ScheduleFor assembles the schedule for a service/variant pair out of a
// snapshot. Tiers bound to a variant are invisible to the variant-less
// schedule and vice versa.
func (s *Snapshot) ScheduleFor(serviceID int64, variantID string) TierSchedule {
	all := s.TiersByService[serviceID]
	scoped := make([]VolumeTier, 0, len(all))
	for _, t := range all {
		v := ""
		if t.VariantID != nil {
			v = *t.VariantID
		}
		if v == variantID {
			scoped = append(scoped, t)
		}
	}
	return NewTierSchedule(TierKey{ServiceID: serviceID, VariantID: variantID}, scoped)
}

func (k TierKey) String() string {
	if k.VariantID == "" {
		return fmt.Sprintf("service:%d", k.ServiceID)
	}
	return fmt.Sprintf("service:%d:variant:%s", k.ServiceID, k.VariantID)
}
