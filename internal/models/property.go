package models

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
)

var ErrInvalidProperty = errors.New("invalid property")

type LeaseType string

const (
	LeaseFreehold        LeaseType = "freehold"
	LeaseLeasehold       LeaseType = "leasehold"
	LeaseShareOfFreehold LeaseType = "share of freehold"
)

// LeaseTypes lists every supported lease type in display order
var LeaseTypes = []LeaseType{LeaseFreehold, LeaseLeasehold, LeaseShareOfFreehold}

// PropertyTypes lists every supported property type in display order
var PropertyTypes = []string{"apartment", "house", "penthouse", "maisonette", "townhouse"}

type RenovationCosts struct {
	Total      int `json:"total"`
	Structural int `json:"structural"`
	Interior   int `json:"interior"`
	Exterior   int `json:"exterior"`
}

type Location struct {
	Latitude      float64  `json:"latitude"`
	Longitude     float64  `json:"longitude"`
	Postcode      string   `json:"postcode"`
	Distance      *float64 `json:"distance,omitempty"`
	DirectionsURL string   `json:"directions_url,omitempty"`
}

type MarketTrends struct {
	PriceGrowth      float64 `json:"price_growth"`
	DemandScore      int     `json:"demand_score"`
	InvestmentRating int     `json:"investment_rating"`
}

type Analysis struct {
	Confidence       int          `json:"confidence"`
	StructuralIssues bool         `json:"structural_issues"`
	OutdatedInterior bool         `json:"outdated_interior"`
	ExteriorDamage   bool         `json:"exterior_damage"`
	MarketTrends     MarketTrends `json:"market_trends"`
}

type Property struct {
	ID                int64            `json:"id"`
	Title             string           `json:"title"`
	Address           string           `json:"address"`
	Description       string           `json:"description"`
	PropertyType      string           `json:"property_type"`
	Bedrooms          int              `json:"bedrooms"`
	Bathrooms         int              `json:"bathrooms"`
	Sqft              int              `json:"sqft"`
	Price             int              `json:"price"`
	PricePerSqft      int              `json:"price_per_sqft"`
	EstimatedRevenue  int              `json:"estimated_revenue"`
	PredictedValue    int              `json:"predicted_value"`
	EstimatedSaleDate string           `json:"estimated_sale_date"` // e.g. "Mar 2027"
	Features          []string         `json:"features"`
	Images            []string         `json:"images"`
	RenovationCosts   *RenovationCosts `json:"renovation_costs"`
	LeaseType         LeaseType        `json:"lease_type"`
	LeaseYears        *int             `json:"lease_years,omitempty"`
	Location          Location         `json:"location"`
	IsFixerUpper      bool             `json:"is_fixer_upper"`
	IsMortgageable    bool             `json:"is_mortgageable"`
	Analysis          Analysis         `json:"analysis"`
}

// Point returns the property coordinates in orb's (lng, lat) order
func (p *Property) Point() orb.Point {
	return orb.Point{p.Location.Longitude, p.Location.Latitude}
}

// AnnualYield returns gross rental yield as a percentage of the purchase price
func (p *Property) AnnualYield() float64 {
	if p.Price <= 0 {
		return 0
	}
	return float64(p.EstimatedRevenue) * 12 / float64(p.Price) * 100
}

// Validate checks the record invariants a listing feed has to respect
func (p *Property) Validate() error {
	if p.Bedrooms <= 0 || p.Bathrooms <= 0 || p.Sqft <= 0 {
		return fmt.Errorf("%w: property %d has non-positive rooms or floor area", ErrInvalidProperty, p.ID)
	}

	if rc := p.RenovationCosts; rc != nil {
		if rc.Structural < 0 || rc.Interior < 0 || rc.Exterior < 0 {
			return fmt.Errorf("%w: property %d has negative renovation costs", ErrInvalidProperty, p.ID)
		}
		if rc.Total != rc.Structural+rc.Interior+rc.Exterior {
			return fmt.Errorf("%w: property %d renovation total %d does not match its parts", ErrInvalidProperty, p.ID, rc.Total)
		}
	}

	switch p.LeaseType {
	case LeaseLeasehold:
		if p.LeaseYears == nil || *p.LeaseYears <= 0 {
			return fmt.Errorf("%w: leasehold property %d needs positive lease years", ErrInvalidProperty, p.ID)
		}
	case LeaseFreehold, LeaseShareOfFreehold:
		if p.LeaseYears != nil {
			return fmt.Errorf("%w: %s property %d cannot carry lease years", ErrInvalidProperty, p.LeaseType, p.ID)
		}
	default:
		return fmt.Errorf("%w: property %d has unknown lease type %q", ErrInvalidProperty, p.ID, p.LeaseType)
	}

	if p.Analysis.Confidence < 0 || p.Analysis.Confidence > 100 {
		return fmt.Errorf("%w: property %d confidence %d outside 0-100", ErrInvalidProperty, p.ID, p.Analysis.Confidence)
	}

	return nil
}

// Clone returns a deep copy so callers can annotate results without touching the source
func (p *Property) Clone() *Property {
	c := *p
	if p.Features != nil {
		c.Features = append([]string(nil), p.Features...)
	}
	if p.Images != nil {
		c.Images = append([]string(nil), p.Images...)
	}
	if p.RenovationCosts != nil {
		rc := *p.RenovationCosts
		c.RenovationCosts = &rc
	}
	if p.LeaseYears != nil {
		ly := *p.LeaseYears
		c.LeaseYears = &ly
	}
	if p.Location.Distance != nil {
		d := *p.Location.Distance
		c.Location.Distance = &d
	}
	return &c
}
