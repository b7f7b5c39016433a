package labels

import (
	"fmt"
	"strings"

	"github.com/georgecharles/verygoodestates/internal/models"
	"github.com/paulmach/orb"
)

type Category string

const (
	CategoryValueAdd  Category = "value-add"
	CategoryHighYield Category = "high-yield"
	CategoryShortLet  Category = "short-let"
	CategorySublet    Category = "sublet"
	CategoryLease     Category = "lease"
	CategoryLending   Category = "lending"
)

// Label is an investment tag derived from a property on every request
type Label struct {
	Text     string   `json:"text"`
	Tooltip  string   `json:"tooltip"`
	Category Category `json:"category"`
}

// ShortLetZone is the area treated as prime for short-term accommodation.
// A point is inside when its latitude is above MinLat and its longitude below MaxLng.
type ShortLetZone struct {
	MinLat float64
	MaxLng float64
}

// DefaultShortLetZone covers central and west London
var DefaultShortLetZone = ShortLetZone{MinLat: 51.5, MaxLng: -0.1}

func (z ShortLetZone) Contains(p orb.Point) bool {
	return p.Lat() > z.MinLat && p.Lon() < z.MaxLng
}

const (
	highOccupancyRatio = 0.008
	subletRatio        = 0.006
)

type Classifier struct {
	Zone ShortLetZone
}

func NewClassifier(zone ShortLetZone) *Classifier {
	return &Classifier{Zone: zone}
}

// Classify returns the property's labels in render order. The lease label is always present.
func (c *Classifier) Classify(p *models.Property) []Label {
	labels := make([]Label, 0, 6)
	price := float64(p.Price)
	revenue := float64(p.EstimatedRevenue)

	if p.IsFixerUpper {
		labels = append(labels, Label{
			Text:     "BRRR",
			Tooltip:  "Buy, Refurbish, Refinance, Rent - Suitable for value-add strategy through renovation",
			Category: CategoryValueAdd,
		})
	}

	if revenue > price*highOccupancyRatio {
		labels = append(labels, Label{
			Text:     "HMO Potential",
			Tooltip:  "High yield potential suitable for House in Multiple Occupation conversion",
			Category: CategoryHighYield,
		})
	}

	if c.Zone.Contains(p.Point()) {
		labels = append(labels, Label{
			Text:     "SA Opportunity",
			Tooltip:  "Prime location for Short-term Accommodation / Holiday Let strategy",
			Category: CategoryShortLet,
		})
	}

	if revenue > price*subletRatio && !p.IsFixerUpper {
		labels = append(labels, Label{
			Text:     "R2R",
			Tooltip:  "Rent to Rent - Potential for subletting strategy with good rental margins",
			Category: CategorySublet,
		})
	}

	labels = append(labels, leaseLabel(p))

	if p.IsMortgageable {
		labels = append(labels, Label{
			Text:     "Mortgageable",
			Tooltip:  "Property meets standard lending criteria",
			Category: CategoryLending,
		})
	}

	return labels
}

func leaseLabel(p *models.Property) Label {
	tooltip := "Freehold property"
	if p.LeaseType == models.LeaseLeasehold {
		years := 0
		if p.LeaseYears != nil {
			years = *p.LeaseYears
		}
		tooltip = fmt.Sprintf("%d years remaining", years)
	}

	return Label{
		Text:     capitalize(string(p.LeaseType)),
		Tooltip:  tooltip,
		Category: CategoryLease,
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

var defaultClassifier = NewClassifier(DefaultShortLetZone)

// Classify labels a property using the default short-let zone
func Classify(p *models.Property) []Label {
	return defaultClassifier.Classify(p)
}
