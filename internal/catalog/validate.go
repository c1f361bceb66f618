package catalog

import (
	"fmt"

	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/servererrors"
)

// ValidateVariants checks that options are unique and non-empty and that
// every variant assigns exactly one declared value to each declared option,
// with unique SKUs and unique combinations. It returns one message per
// problem found.
func ValidateVariants(options model.Options, variants []model.Variant) []string {
	var problems []string

	declared := make(map[string]map[string]struct{}, len(options))
	for _, opt := range options {
		if _, dup := declared[opt.Name]; dup {
			problems = append(problems, fmt.Sprintf("option %q declared twice", opt.Name))
			continue
		}
		values := make(map[string]struct{}, len(opt.Values))
		for _, v := range opt.Values {
			if _, dup := values[v]; dup {
				problems = append(problems, fmt.Sprintf("option %q lists value %q twice", opt.Name, v))
			}
			values[v] = struct{}{}
		}
		declared[opt.Name] = values
	}

	if len(variants) > 0 && len(options) == 0 {
		problems = append(problems, "variants require at least one option")
	}

	skus := make(map[string]struct{}, len(variants))
	combos := make(map[string]string, len(variants))
	for _, v := range variants {
		if v.SKU == "" {
			problems = append(problems, "variant sku is required")
		} else if _, dup := skus[v.SKU]; dup {
			problems = append(problems, fmt.Sprintf("sku %q used by more than one variant", v.SKU))
		}
		skus[v.SKU] = struct{}{}

		if v.PriceRetail < 0 || v.PriceWholesale < 0 {
			problems = append(problems, fmt.Sprintf("variant %q has a negative price", v.SKU))
		}
		if v.CountInStock < 0 {
			problems = append(problems, fmt.Sprintf("variant %q has negative stock", v.SKU))
		}

		if len(v.Attributes) != len(options) {
			problems = append(problems, fmt.Sprintf("variant %q must set exactly one value per option", v.SKU))
		}
		for _, attr := range v.Attributes {
			values, ok := declared[attr.Name]
			if !ok {
				problems = append(problems, fmt.Sprintf("variant %q uses undeclared option %q", v.SKU, attr.Name))
				continue
			}
			if _, ok := values[attr.Value]; !ok {
				problems = append(problems, fmt.Sprintf("variant %q uses undeclared value %q for %q", v.SKU, attr.Value, attr.Name))
			}
		}

		key := fmt.Sprint(v.Attributes.Map())
		if other, dup := combos[key]; dup {
			problems = append(problems, fmt.Sprintf("variants %q and %q have the same options", other, v.SKU))
		}
		combos[key] = v.SKU
	}

	return problems
}

// CheckVariants wraps ValidateVariants as a validation error.
func CheckVariants(options model.Options, variants []model.Variant) error {
	if problems := ValidateVariants(options, variants); len(problems) > 0 {
		return servererrors.Validation(servererrors.ErrMalformedVariant, problems)
	}
	return nil
}
