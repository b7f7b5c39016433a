package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func validProperty() *Property {
	return &Property{
		ID:               1,
		PropertyType:     "house",
		Bedrooms:         3,
		Bathrooms:        2,
		Sqft:             1200,
		Price:            500000,
		EstimatedRevenue: 2500,
		LeaseType:        LeaseFreehold,
		Location:         Location{Latitude: 51.51, Longitude: -0.12, Postcode: "SW1 2AB"},
		Analysis:         Analysis{Confidence: 80},
	}
}

func TestProperty_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *Property)
		wantErr bool
	}{
		{name: "Valid freehold", mutate: func(p *Property) {}},
		{
			name: "Valid leasehold",
			mutate: func(p *Property) {
				p.LeaseType = LeaseLeasehold
				p.LeaseYears = intPtr(125)
			},
		},
		{
			name: "Leasehold without years",
			mutate: func(p *Property) {
				p.LeaseType = LeaseLeasehold
			},
			wantErr: true,
		},
		{
			name: "Freehold with years",
			mutate: func(p *Property) {
				p.LeaseYears = intPtr(99)
			},
			wantErr: true,
		},
		{
			name: "Unknown lease type",
			mutate: func(p *Property) {
				p.LeaseType = "commonhold"
			},
			wantErr: true,
		},
		{
			name: "Renovation total matches parts",
			mutate: func(p *Property) {
				p.RenovationCosts = &RenovationCosts{Total: 60000, Structural: 30000, Interior: 20000, Exterior: 10000}
			},
		},
		{
			name: "Renovation total mismatch",
			mutate: func(p *Property) {
				p.RenovationCosts = &RenovationCosts{Total: 1, Structural: 30000, Interior: 20000, Exterior: 10000}
			},
			wantErr: true,
		},
		{
			name: "Confidence above range",
			mutate: func(p *Property) {
				p.Analysis.Confidence = 101
			},
			wantErr: true,
		},
		{
			name: "Zero bedrooms",
			mutate: func(p *Property) {
				p.Bedrooms = 0
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProperty()
			tt.mutate(p)
			err := p.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidProperty)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProperty_AnnualYield(t *testing.T) {
	p := validProperty()
	p.Price = 200000
	p.EstimatedRevenue = 2000
	assert.InDelta(t, 12.0, p.AnnualYield(), 1e-9)

	p.Price = 0
	assert.Equal(t, 0.0, p.AnnualYield())
}

func TestProperty_Point(t *testing.T) {
	p := validProperty()
	pt := p.Point()
	assert.Equal(t, -0.12, pt.Lon())
	assert.Equal(t, 51.51, pt.Lat())
}

func TestProperty_Clone(t *testing.T) {
	p := validProperty()
	p.RenovationCosts = &RenovationCosts{Total: 3, Structural: 1, Interior: 1, Exterior: 1}
	p.Features = []string{"Balcony", "Lift Access"}
	p.Images = []string{"https://example.com/1.jpg"}
	c := p.Clone()
	c.RenovationCosts.Total = 99
	c.Price = 1
	c.Features[0] = "Roof Terrace"
	c.Images[0] = ""

	assert.Equal(t, 3, p.RenovationCosts.Total)
	assert.Equal(t, 500000, p.Price)
	assert.Equal(t, []string{"Balcony", "Lift Access"}, p.Features)
	assert.Equal(t, "https://example.com/1.jpg", p.Images[0])
}
