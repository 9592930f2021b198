package pricing

import "fmt"

// BindingCheck is the advisory result of validating a page count
// against a binding type. Violations never block pricing: the
// calculator surfaces the warnings next to the computed price so the
// operator can decide whether the job is producible.
type BindingCheck struct {
	IsValid         bool     `json:"is_valid"`
	Warnings        []string `json:"warnings,omitempty"`
	SuggestedDuplex bool     `json:"suggested_duplex"`
}

// ValidateBinding checks pages against the binding type's optional
// min/max page bounds and resolves the suggested duplex setting.
func ValidateBinding(bt BindingType, pages int) BindingCheck {
	check := BindingCheck{IsValid: true, SuggestedDuplex: bt.DuplexDefault}
	if bt.MinPages != nil && pages < *bt.MinPages {
		check.IsValid = false
		check.Warnings = append(check.Warnings,
			fmt.Sprintf("binding %q requires at least %d pages, got %d", bt.Value, *bt.MinPages, pages))
	}
	if bt.MaxPages != nil && pages > *bt.MaxPages {
		check.IsValid = false
		check.Warnings = append(check.Warnings,
			fmt.Sprintf("binding %q supports at most %d pages, got %d", bt.Value, *bt.MaxPages, pages))
	}
	return check
}
