package search

import (
	"math/rand"
	"testing"

	"github.com/georgecharles/verygoodestates/internal/models"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int               { return &v }
func floatPtr(v float64) *float64     { return &v }
func pointPtr(p orb.Point) *orb.Point { return &p }

func ids(properties []*models.Property) []int64 {
	out := make([]int64, len(properties))
	for i, p := range properties {
		out[i] = p.ID
	}
	return out
}

func sampleProperties() []*models.Property {
	return []*models.Property{
		{
			ID: 1, Price: 500000, Bedrooms: 2, PropertyType: "apartment", LeaseType: models.LeaseLeasehold,
			LeaseYears: intPtr(120), EstimatedRevenue: 2000, IsMortgageable: true,
			Location: models.Location{Latitude: 51.5074, Longitude: -0.1278},
		},
		{
			ID: 2, Price: 200000, Bedrooms: 3, PropertyType: "house", LeaseType: models.LeaseFreehold,
			EstimatedRevenue: 2000, IsFixerUpper: true,
			RenovationCosts: &models.RenovationCosts{Total: 60000, Structural: 30000, Interior: 20000, Exterior: 10000},
			Location:        models.Location{Latitude: 51.52, Longitude: -0.15},
		},
		{
			ID: 3, Price: 1500000, Bedrooms: 4, PropertyType: "penthouse", LeaseType: models.LeaseShareOfFreehold,
			EstimatedRevenue: 6000, IsMortgageable: true,
			Location: models.Location{Latitude: 53.4808, Longitude: -2.2426},
		},
		{
			ID: 4, Price: 800000, Bedrooms: 2, PropertyType: "house", LeaseType: models.LeaseFreehold,
			EstimatedRevenue: 3500, IsFixerUpper: true, IsMortgageable: true,
			RenovationCosts: &models.RenovationCosts{Total: 25000, Structural: 10000, Interior: 10000, Exterior: 5000},
			Location:        models.Location{Latitude: 51.49, Longitude: -0.10},
		},
	}
}

func TestFilter_Predicates(t *testing.T) {
	london := orb.Point{-0.1278, 51.5074}

	tests := []struct {
		name     string
		spec     FilterSpec
		expected []int64
	}{
		{name: "Empty spec keeps everything", spec: FilterSpec{}, expected: []int64{1, 2, 3, 4}},
		{name: "Price range inclusive", spec: FilterSpec{MinPrice: intPtr(200000), MaxPrice: intPtr(800000)}, expected: []int64{1, 2, 4}},
		{name: "Min price only", spec: FilterSpec{MinPrice: intPtr(800001)}, expected: []int64{3}},
		{name: "Exact bedrooms", spec: FilterSpec{Bedrooms: intPtr(2)}, expected: []int64{1, 4}},
		{name: "Property type", spec: FilterSpec{PropertyType: "house"}, expected: []int64{2, 4}},
		{name: "Property type all", spec: FilterSpec{PropertyType: AnySelector}, expected: []int64{1, 2, 3, 4}},
		{name: "Lease type", spec: FilterSpec{LeaseType: "share of freehold"}, expected: []int64{3}},
		{name: "Fixer upper only", spec: FilterSpec{FixerUpperOnly: true}, expected: []int64{2, 4}},
		{name: "Mortgageable only", spec: FilterSpec{MortgageableOnly: true}, expected: []int64{1, 3, 4}},
		{name: "Renovation cap keeps properties without breakdown", spec: FilterSpec{MaxRenovationCost: intPtr(30000)}, expected: []int64{1, 3, 4}},
		{name: "Min yield", spec: FilterSpec{MinYield: floatPtr(5)}, expected: []int64{2, 4}},
		{name: "Radius", spec: FilterSpec{Origin: pointPtr(london), RadiusMiles: floatPtr(5)}, expected: []int64{1, 2, 4}},
		{
			name:     "Composed predicates",
			spec:     FilterSpec{PropertyType: "house", MortgageableOnly: true, MinYield: floatPtr(5)},
			expected: []int64{4},
		},
		{name: "Nothing matches", spec: FilterSpec{Bedrooms: intPtr(7)}, expected: []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, tt.spec.Validate())
			assert.Equal(t, tt.expected, ids(Filter(sampleProperties(), tt.spec)))
		})
	}
}

func TestFilter_YieldThreshold(t *testing.T) {
	props := []*models.Property{{ID: 1, Price: 200000, EstimatedRevenue: 2000}}

	assert.Len(t, Filter(props, FilterSpec{MinYield: floatPtr(10)}), 1)
	assert.Len(t, Filter(props, FilterSpec{MinYield: floatPtr(12)}), 1)
	assert.Empty(t, Filter(props, FilterSpec{MinYield: floatPtr(15)}))
}

func TestFilter_EmptyCollection(t *testing.T) {
	result := Filter(nil, FilterSpec{Bedrooms: intPtr(2)})
	assert.NotNil(t, result)
	assert.Empty(t, result)
}

func randomProperties(rng *rand.Rand, count int) []*models.Property {
	props := make([]*models.Property, count)
	for i := range props {
		p := &models.Property{
			ID:             int64(i + 1),
			Price:          rng.Intn(4000000) + 500000,
			Bedrooms:       rng.Intn(5) + 1,
			PropertyType:   models.PropertyTypes[rng.Intn(len(models.PropertyTypes))],
			LeaseType:      models.LeaseTypes[rng.Intn(len(models.LeaseTypes))],
			IsFixerUpper:   rng.Float64() > 0.7,
			IsMortgageable: rng.Float64() > 0.2,
			Location:       models.Location{Latitude: 51.5 + rng.Float64() - 0.5, Longitude: -0.12 + rng.Float64() - 0.5},
		}
		p.EstimatedRevenue = int(float64(p.Price) * (rng.Float64()*0.005 + 0.003))
		if p.IsFixerUpper {
			s, in, ex := rng.Intn(50000), rng.Intn(30000), rng.Intn(20000)
			p.RenovationCosts = &models.RenovationCosts{Total: s + in + ex, Structural: s, Interior: in, Exterior: ex}
		}
		props[i] = p
	}
	return props
}

func TestFilter_IncludedAndExcludedAgreeWithMatches(t *testing.T) {
	props := randomProperties(rand.New(rand.NewSource(7)), 200)
	spec := FilterSpec{MinPrice: intPtr(1000000), MinYield: floatPtr(5), LeaseType: "leasehold"}

	included := Filter(props, spec)
	kept := make(map[int64]bool, len(included))
	for _, p := range included {
		assert.True(t, Matches(p, spec))
		assert.GreaterOrEqual(t, p.Price, 1000000)
		assert.GreaterOrEqual(t, p.AnnualYield(), 5.0)
		assert.Equal(t, models.LeaseLeasehold, p.LeaseType)
		kept[p.ID] = true
	}
	for _, p := range props {
		if !kept[p.ID] {
			assert.False(t, Matches(p, spec), "property %d excluded but matches", p.ID)
		}
	}
}

func TestFilter_Composition(t *testing.T) {
	props := randomProperties(rand.New(rand.NewSource(42)), 300)
	london := orb.Point{-0.1278, 51.5074}

	pairs := []struct {
		name string
		a, b FilterSpec
	}{
		{
			name: "Price and yield",
			a:    FilterSpec{MinPrice: intPtr(800000), MaxPrice: intPtr(3000000)},
			b:    FilterSpec{MinPrice: intPtr(1200000), MinYield: floatPtr(4.5)},
		},
		{
			name: "Selectors and flags",
			a:    FilterSpec{PropertyType: "house", FixerUpperOnly: true},
			b:    FilterSpec{PropertyType: AnySelector, LeaseType: "freehold", MaxRenovationCost: intPtr(40000)},
		},
		{
			name: "Bedrooms and mortgage",
			a:    FilterSpec{Bedrooms: intPtr(3)},
			b:    FilterSpec{Bedrooms: intPtr(3), MortgageableOnly: true, MinYield: floatPtr(3)},
		},
		{
			name: "Nested radius",
			a:    FilterSpec{Origin: pointPtr(london), RadiusMiles: floatPtr(25)},
			b:    FilterSpec{Origin: pointPtr(london), RadiusMiles: floatPtr(10)},
		},
	}

	for _, tt := range pairs {
		t.Run(tt.name, func(t *testing.T) {
			combined, err := And(tt.a, tt.b)
			require.NoError(t, err)

			sequential := Filter(Filter(props, tt.a), tt.b)
			assert.Equal(t, ids(Filter(props, combined)), ids(sequential))
		})
	}
}

func TestAnd_Incompatible(t *testing.T) {
	_, err := And(FilterSpec{Bedrooms: intPtr(2)}, FilterSpec{Bedrooms: intPtr(3)})
	assert.ErrorIs(t, err, ErrIncompatibleFilters)

	_, err = And(FilterSpec{PropertyType: "house"}, FilterSpec{PropertyType: "apartment"})
	assert.ErrorIs(t, err, ErrIncompatibleFilters)

	_, err = And(
		FilterSpec{Origin: pointPtr(orb.Point{0, 51}), RadiusMiles: floatPtr(5)},
		FilterSpec{Origin: pointPtr(orb.Point{1, 52}), RadiusMiles: floatPtr(5)},
	)
	assert.ErrorIs(t, err, ErrIncompatibleFilters)
}

func TestFilterSpec_Validate(t *testing.T) {
	tests := []struct {
		name    string
		spec    FilterSpec
		wantErr bool
	}{
		{name: "Empty", spec: FilterSpec{}},
		{name: "Min equals max", spec: FilterSpec{MinPrice: intPtr(5), MaxPrice: intPtr(5)}},
		{name: "Min above max", spec: FilterSpec{MinPrice: intPtr(6), MaxPrice: intPtr(5)}, wantErr: true},
		{name: "Negative yield", spec: FilterSpec{MinYield: floatPtr(-1)}, wantErr: true},
		{name: "Radius without origin", spec: FilterSpec{RadiusMiles: floatPtr(5)}, wantErr: true},
		{name: "Zero radius", spec: FilterSpec{Origin: pointPtr(orb.Point{0, 0}), RadiusMiles: floatPtr(0)}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidFilter)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWithDistance(t *testing.T) {
	props := sampleProperties()
	london := orb.Point{-0.1278, 51.5074}

	annotated := WithDistance(props, london)
	require.Len(t, annotated, len(props))

	require.NotNil(t, annotated[0].Location.Distance)
	assert.Equal(t, 0.0, *annotated[0].Location.Distance)
	// London to Manchester is roughly 163 miles as the crow flies
	assert.InDelta(t, 163, *annotated[2].Location.Distance, 3)

	for _, p := range props {
		assert.Nil(t, p.Location.Distance)
	}
}
