package search

import (
	"fmt"
	"sort"

	"github.com/georgecharles/verygoodestates/internal/models"
)

type SortKey string

const (
	SortPriceAsc  SortKey = "price_asc"
	SortPriceDesc SortKey = "price_desc"
	SortNewest    SortKey = "newest"
)

// ParseSortKey maps a request value to a SortKey. An empty value means price ascending.
func ParseSortKey(value string) (SortKey, error) {
	switch SortKey(value) {
	case "":
		return SortPriceAsc, nil
	case SortPriceAsc, SortPriceDesc, SortNewest:
		return SortKey(value), nil
	default:
		return "", fmt.Errorf("%w: unknown sort key %q", ErrInvalidFilter, value)
	}
}

// Sort returns a new slice ordered by key. Equal elements keep their input order.
func Sort(properties []*models.Property, key SortKey) []*models.Property {
	sorted := make([]*models.Property, len(properties))
	copy(sorted, properties)

	less := lessFunc(key)
	if less == nil {
		return sorted
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		return less(sorted[i], sorted[j])
	})
	return sorted
}

func lessFunc(key SortKey) func(a, b *models.Property) bool {
	switch key {
	case SortPriceAsc:
		return func(a, b *models.Property) bool { return a.Price < b.Price }
	case SortPriceDesc:
		return func(a, b *models.Property) bool { return a.Price > b.Price }
	case SortNewest:
		return func(a, b *models.Property) bool { return a.ID > b.ID }
	default:
		return nil
	}
}
