package listings

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/georgecharles/verygoodestates/internal/models"
	"github.com/paulmach/orb"
)

// Areas used for titles when a search has no named location
var DefaultAreas = []string{
	"Mayfair", "Knightsbridge", "Chelsea", "Kensington", "Notting Hill",
	"Richmond", "Hampstead", "Islington", "Shoreditch", "Canary Wharf",
}

// Features is the pool each listing draws 4 to 6 amenities from
var Features = []string{
	"Underfloor Heating", "Private Garden", "Roof Terrace", "Concierge Service",
	"Parking Space", "Lift Access", "Period Features", "Smart Home System",
	"Air Conditioning", "High Ceilings", "Open-Plan Living", "Balcony",
}

// ImageSets are the photo galleries assigned to listings, one set per listing
var ImageSets = [][]string{
	{
		"https://images.unsplash.com/photo-1580587771525-78b9dba3b914?w=800&q=80",
		"https://images.unsplash.com/photo-1583608205776-bfd35f0d9f83?w=800&q=80",
		"https://images.unsplash.com/photo-1592595896551-12b371d546d5?w=800&q=80",
		"https://images.unsplash.com/photo-1512917774080-9991f1c4c750?w=800&q=80",
	},
	{
		"https://images.unsplash.com/photo-1600596542815-ffad4c1539a9?w=800&q=80",
		"https://images.unsplash.com/photo-1600607687939-ce8a6c25118c?w=800&q=80",
		"https://images.unsplash.com/photo-1600585154340-be6161a56a0c?w=800&q=80",
		"https://images.unsplash.com/photo-1600573472550-8090b5e0745e?w=800&q=80",
	},
	{
		"https://images.unsplash.com/photo-1600047509358-9dc75507daeb?w=800&q=80",
		"https://images.unsplash.com/photo-1600566753190-17f0baa2a6c3?w=800&q=80",
		"https://images.unsplash.com/photo-1600210492486-724fe5c67fb3?w=800&q=80",
		"https://images.unsplash.com/photo-1600585154526-990dced4db0d?w=800&q=80",
	},
}

// Generator produces synthetic listings scattered around a centre point.
// IDs keep increasing across calls so later batches sort as newer.
type Generator struct {
	mu     sync.Mutex
	rng    *rand.Rand
	now    func() time.Time
	nextID int64
}

// NewGenerator seeds a generator whose first listing gets lastID+1
func NewGenerator(rng *rand.Rand, lastID int64) *Generator {
	return &Generator{rng: rng, now: time.Now, nextID: lastID + 1}
}

// Generate returns count listings within about 0.05 degrees of center. An empty
// area picks one of DefaultAreas per listing.
func (g *Generator) Generate(area string, center orb.Point, count int) []*models.Property {
	g.mu.Lock()
	defer g.mu.Unlock()

	properties := make([]*models.Property, 0, count)
	for i := 0; i < count; i++ {
		properties = append(properties, g.property(area, center))
		g.nextID++
	}
	return properties
}

func (g *Generator) property(area string, center orb.Point) *models.Property {
	r := g.rng
	if area == "" {
		area = DefaultAreas[r.Intn(len(DefaultAreas))]
	}

	propertyType := models.PropertyTypes[r.Intn(len(models.PropertyTypes))]
	leaseType := models.LeaseTypes[r.Intn(len(models.LeaseTypes))]
	bedrooms := r.Intn(5) + 1
	bathrooms := r.Intn(bedrooms) + 1
	sqft := r.Intn(3000) + 500
	price := r.Intn(4000000) + 500000
	isFixerUpper := r.Float64() > 0.7
	isMortgageable := r.Float64() > 0.2
	growth := r.Intn(8) + 3

	p := &models.Property{
		ID:                g.nextID,
		Title:             fmt.Sprintf("%d Bedroom %s in %s", bedrooms, strings.ToUpper(propertyType[:1])+propertyType[1:], area),
		Address:           fmt.Sprintf("%d %s", r.Intn(200)+1, area),
		Description:       fmt.Sprintf(descriptionFormat, bedrooms, propertyType, area),
		PropertyType:      propertyType,
		Bedrooms:          bedrooms,
		Bathrooms:         bathrooms,
		Sqft:              sqft,
		Price:             price,
		PricePerSqft:      price / sqft,
		EstimatedRevenue:  int(float64(price) * (r.Float64()*0.005 + 0.003)),
		PredictedValue:    int(math.Floor(float64(price) * (1 + float64(growth)/100*5))),
		EstimatedSaleDate: g.now().AddDate(0, 0, 30*(r.Intn(6)+1)).Format("Jan 2006"),
		Features:          g.features(),
		Images:            append([]string(nil), ImageSets[r.Intn(len(ImageSets))]...),
		LeaseType:         leaseType,
		IsFixerUpper:      isFixerUpper,
		IsMortgageable:    isMortgageable,
		Analysis: models.Analysis{
			Confidence:       r.Intn(20) + 75,
			StructuralIssues: isFixerUpper && r.Float64() > 0.5,
			OutdatedInterior: isFixerUpper || r.Float64() > 0.7,
			ExteriorDamage:   isFixerUpper && r.Float64() > 0.7,
			MarketTrends: models.MarketTrends{
				PriceGrowth:      float64(growth),
				DemandScore:      r.Intn(3) + 7,
				InvestmentRating: r.Intn(3) + 6,
			},
		},
	}

	if isFixerUpper {
		structural := r.Intn(50000) + 10000
		interior := r.Intn(30000) + 5000
		exterior := r.Intn(20000) + 5000
		p.RenovationCosts = &models.RenovationCosts{
			Total:      structural + interior + exterior,
			Structural: structural,
			Interior:   interior,
			Exterior:   exterior,
		}
	}

	if leaseType == models.LeaseLeasehold {
		years := r.Intn(900) + 100
		p.LeaseYears = &years
	}

	lat := center.Lat() + (r.Float64()-0.5)*0.1
	lng := center.Lon() + (r.Float64()-0.5)*0.1
	p.Location = models.Location{
		Latitude:      lat,
		Longitude:     lng,
		Postcode:      g.postcode(),
		DirectionsURL: fmt.Sprintf("https://www.google.com/maps/dir/?api=1&destination=%f,%f", lat, lng),
	}

	return p
}

const descriptionFormat = "A stunning %d bedroom %s situated in the heart of %s. This exceptional property " +
	"offers spacious living accommodation throughout and has been finished to an extremely high standard."

// features picks 4 to 6 distinct entries of Features in random order
func (g *Generator) features() []string {
	n := g.rng.Intn(3) + 4
	picked := make([]string, n)
	for i, idx := range g.rng.Perm(len(Features))[:n] {
		picked[i] = Features[idx]
	}
	return picked
}

func (g *Generator) postcode() string {
	r := g.rng
	return fmt.Sprintf("SW%d %d%c%c", r.Intn(20)+1, r.Intn(9), 'A'+r.Intn(26), 'A'+r.Intn(26))
}
