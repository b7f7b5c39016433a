package search

import (
	"errors"
	"fmt"
	"math"

	"github.com/georgecharles/verygoodestates/internal/models"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

var (
	ErrInvalidFilter       = errors.New("invalid filter")
	ErrIncompatibleFilters = errors.New("incompatible filters")
)

// AnySelector matches every property or lease type
const AnySelector = "all"

const metersPerMile = 1609.344

// FilterSpec holds the user-controlled predicates. Unset fields never reject a property.
type FilterSpec struct {
	MinPrice          *int       `form:"min_price" json:"min_price,omitempty"`
	MaxPrice          *int       `form:"max_price" json:"max_price,omitempty"`
	Bedrooms          *int       `form:"bedrooms" json:"bedrooms,omitempty"`
	PropertyType      string     `form:"property_type" json:"property_type,omitempty"`
	LeaseType         string     `form:"lease_type" json:"lease_type,omitempty"`
	FixerUpperOnly    bool       `form:"fixer_upper_only" json:"fixer_upper_only,omitempty"`
	MortgageableOnly  bool       `form:"mortgageable_only" json:"mortgageable_only,omitempty"`
	MaxRenovationCost *int       `form:"max_renovation_cost" json:"max_renovation_cost,omitempty"`
	MinYield          *float64   `form:"min_yield" json:"min_yield,omitempty"`
	Origin            *orb.Point `form:"-" json:"-"`
	RadiusMiles       *float64   `form:"radius" json:"radius,omitempty"`
}

// Validate checks the spec is internally consistent
func (s FilterSpec) Validate() error {
	if s.MinPrice != nil && s.MaxPrice != nil && *s.MinPrice > *s.MaxPrice {
		return fmt.Errorf("%w: min price %d is above max price %d", ErrInvalidFilter, *s.MinPrice, *s.MaxPrice)
	}
	if s.MinYield != nil && *s.MinYield < 0 {
		return fmt.Errorf("%w: min yield cannot be negative", ErrInvalidFilter)
	}
	if s.RadiusMiles != nil {
		if *s.RadiusMiles <= 0 {
			return fmt.Errorf("%w: radius must be positive", ErrInvalidFilter)
		}
		if s.Origin == nil {
			return fmt.Errorf("%w: radius needs an origin", ErrInvalidFilter)
		}
	}
	return nil
}

// Matches reports whether p satisfies every active predicate in spec
func Matches(p *models.Property, spec FilterSpec) bool {
	if spec.MinPrice != nil && p.Price < *spec.MinPrice {
		return false
	}
	if spec.MaxPrice != nil && p.Price > *spec.MaxPrice {
		return false
	}

	if spec.Bedrooms != nil && p.Bedrooms != *spec.Bedrooms {
		return false
	}

	if !selected(spec.PropertyType) && p.PropertyType != spec.PropertyType {
		return false
	}
	if !selected(spec.LeaseType) && string(p.LeaseType) != spec.LeaseType {
		return false
	}

	if spec.FixerUpperOnly && !p.IsFixerUpper {
		return false
	}
	if spec.MortgageableOnly && !p.IsMortgageable {
		return false
	}

	// Properties without a renovation breakdown pass the cap
	if spec.MaxRenovationCost != nil && p.RenovationCosts != nil && p.RenovationCosts.Total > *spec.MaxRenovationCost {
		return false
	}

	if spec.MinYield != nil && p.AnnualYield() < *spec.MinYield {
		return false
	}

	if spec.RadiusMiles != nil && spec.Origin != nil && DistanceMiles(*spec.Origin, p.Point()) > *spec.RadiusMiles {
		return false
	}

	return true
}

func selected(selector string) bool {
	return selector == "" || selector == AnySelector
}

// Filter returns the subsequence of properties matching spec, in input order
func Filter(properties []*models.Property, spec FilterSpec) []*models.Property {
	result := make([]*models.Property, 0, len(properties))
	for _, p := range properties {
		if Matches(p, spec) {
			result = append(result, p)
		}
	}
	return result
}

// And returns a spec accepting exactly the properties both a and b accept
func And(a, b FilterSpec) (FilterSpec, error) {
	out := a

	out.MinPrice = maxInt(a.MinPrice, b.MinPrice)
	out.MaxPrice = minInt(a.MaxPrice, b.MaxPrice)
	out.MaxRenovationCost = minInt(a.MaxRenovationCost, b.MaxRenovationCost)

	if a.MinYield == nil || (b.MinYield != nil && *b.MinYield > *a.MinYield) {
		out.MinYield = b.MinYield
	}

	if a.Bedrooms != nil && b.Bedrooms != nil && *a.Bedrooms != *b.Bedrooms {
		return FilterSpec{}, fmt.Errorf("%w: bedrooms %d and %d", ErrIncompatibleFilters, *a.Bedrooms, *b.Bedrooms)
	}
	if out.Bedrooms == nil {
		out.Bedrooms = b.Bedrooms
	}

	var err error
	if out.PropertyType, err = andSelector("property type", a.PropertyType, b.PropertyType); err != nil {
		return FilterSpec{}, err
	}
	if out.LeaseType, err = andSelector("lease type", a.LeaseType, b.LeaseType); err != nil {
		return FilterSpec{}, err
	}

	out.FixerUpperOnly = a.FixerUpperOnly || b.FixerUpperOnly
	out.MortgageableOnly = a.MortgageableOnly || b.MortgageableOnly

	switch {
	case b.RadiusMiles == nil:
	case a.RadiusMiles == nil:
		out.Origin, out.RadiusMiles = b.Origin, b.RadiusMiles
	case a.Origin != nil && b.Origin != nil && *a.Origin == *b.Origin:
		if *b.RadiusMiles < *a.RadiusMiles {
			out.RadiusMiles = b.RadiusMiles
		}
	default:
		return FilterSpec{}, fmt.Errorf("%w: radius searches around different origins", ErrIncompatibleFilters)
	}

	return out, nil
}

func andSelector(name, a, b string) (string, error) {
	switch {
	case selected(b):
		return a, nil
	case selected(a):
		return b, nil
	case a == b:
		return a, nil
	default:
		return "", fmt.Errorf("%w: %s %q and %q", ErrIncompatibleFilters, name, a, b)
	}
}

func maxInt(a, b *int) *int {
	if a == nil || (b != nil && *b > *a) {
		return b
	}
	return a
}

func minInt(a, b *int) *int {
	if a == nil || (b != nil && *b < *a) {
		return b
	}
	return a
}

// DistanceMiles is the great-circle distance between two points
func DistanceMiles(from, to orb.Point) float64 {
	return geo.DistanceHaversine(from, to) / metersPerMile
}

// WithDistance returns copies of properties annotated with their distance from origin in miles
func WithDistance(properties []*models.Property, origin orb.Point) []*models.Property {
	result := make([]*models.Property, len(properties))
	for i, p := range properties {
		c := p.Clone()
		d := math.Round(DistanceMiles(origin, p.Point())*10) / 10
		c.Location.Distance = &d
		result[i] = c
	}
	return result
}
