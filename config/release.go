package config

import (
	"fmt"
	"regexp"
	"sort"
)

// ResolveProduct matches "release" (the dist-tag-bearing release component
// of an NVR, e.g. "3.fc40" or "2.el9_3") against the configured
// "products" dist-tag regexes, returning the first product-release string,
// in sorted order, whose pattern matches. Grounded in the original source's release.c:
// spec.md names the "products" section but not the matching helper it
// feeds.
//
// Returns "" with no error if nothing matches; the caller decides whether an
// unmatched release is fatal.
func ResolveProduct(cfg *Config, release string) (string, error) {
	products := make([]string, 0, len(cfg.Products))
	for productRelease := range cfg.Products {
		products = append(products, productRelease)
	}
	sort.Strings(products)
	for _, productRelease := range products {
		pattern := cfg.Products[productRelease]
		re, err := regexp.Compile(pattern)
		if err != nil {
			return "", fmt.Errorf("config: products[%q]: invalid dist-tag regex %q: %w", productRelease, pattern, err)
		}
		if re.MatchString(release) {
			return productRelease, nil
		}
	}
	return "", nil
}
