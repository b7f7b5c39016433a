package database

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/georgecharles/verygoodestates/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

var ErrNotFound = errors.New("property not found")

// propertyRow is the flattened storage shape of models.Property
type propertyRow struct {
	ID                int64 `gorm:"primaryKey;autoIncrement:false"`
	Title             string
	Address           string
	Description       string
	PropertyType      string `gorm:"index"`
	Bedrooms          int
	Bathrooms         int
	Sqft              int
	Price             int `gorm:"index"`
	PricePerSqft      int
	EstimatedRevenue  int
	PredictedValue    int
	EstimatedSaleDate string
	Features          []string `gorm:"serializer:json"`
	Images            []string `gorm:"serializer:json"`

	RenovationTotal      *int
	RenovationStructural *int
	RenovationInterior   *int
	RenovationExterior   *int

	LeaseType  string
	LeaseYears *int

	Latitude      float64 `gorm:"index:idx_properties_coordinates"`
	Longitude     float64 `gorm:"index:idx_properties_coordinates"`
	Postcode      string
	DirectionsURL string

	IsFixerUpper   bool
	IsMortgageable bool

	Confidence       int
	StructuralIssues bool
	OutdatedInterior bool
	ExteriorDamage   bool
	PriceGrowth      float64
	DemandScore      int
	InvestmentRating int

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (propertyRow) TableName() string {
	return "properties"
}

// Columns rewritten when a listing with a known ID is stored again
var upsertColumns = []string{
	"title", "address", "description", "property_type", "bedrooms", "bathrooms", "sqft",
	"price", "price_per_sqft", "estimated_revenue", "predicted_value", "estimated_sale_date",
	"features", "images", "renovation_total", "renovation_structural",
	"renovation_interior", "renovation_exterior", "lease_type", "lease_years",
	"latitude", "longitude", "postcode", "directions_url", "is_fixer_upper",
	"is_mortgageable", "confidence", "structural_issues", "outdated_interior",
	"exterior_damage", "price_growth", "demand_score",
	"investment_rating", "updated_at",
}

type Database struct {
	db *gorm.DB
}

// NewDatabase opens the SQLite database at dbPath, creating its directory if needed.
// ":memory:" gives a private in-memory database.
func NewDatabase(dbPath string) (*Database, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// SQLite allows a single writer; one connection also keeps :memory: shared
	sqlDB.SetMaxOpenConns(1)

	return &Database{db: db}, nil
}

// RunMigrations creates or updates the properties table
func (d *Database) RunMigrations() error {
	if err := d.db.AutoMigrate(&propertyRow{}); err != nil {
		return fmt.Errorf("failed to migrate properties table: %w", err)
	}
	return nil
}

// DB returns the underlying gorm.DB instance
func (d *Database) DB() *gorm.DB {
	return d.db
}

func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// UpsertProperties inserts properties in one statement, replacing rows that share
// an ID. It runs on whatever handle it is given so callers can wrap it in a
// transaction; callers bound the statement size by chunking.
func UpsertProperties(tx *gorm.DB, properties []*models.Property) error {
	if len(properties) == 0 {
		return nil
	}

	rows := make([]propertyRow, len(properties))
	for i, p := range properties {
		rows[i] = toRow(p)
	}

	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(upsertColumns),
	}).Create(&rows).Error
}

// UpsertProperties stores properties in a single transaction
func (d *Database) UpsertProperties(properties []*models.Property) error {
	return d.db.Transaction(func(tx *gorm.DB) error {
		return UpsertProperties(tx, properties)
	})
}

// GetAllProperties returns every stored listing, oldest first
func (d *Database) GetAllProperties() ([]*models.Property, error) {
	var rows []propertyRow
	if err := d.db.Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load properties: %w", err)
	}

	properties := make([]*models.Property, len(rows))
	for i := range rows {
		properties[i] = rows[i].toModel()
	}
	return properties, nil
}

func (d *Database) GetProperty(id int64) (*models.Property, error) {
	var row propertyRow
	err := d.db.First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load property %d: %w", id, err)
	}
	return row.toModel(), nil
}

// LastPropertyID returns the highest stored ID, or 0 when the table is empty
func (d *Database) LastPropertyID() (int64, error) {
	var id int64
	if err := d.db.Model(&propertyRow{}).Select("COALESCE(MAX(id), 0)").Scan(&id).Error; err != nil {
		return 0, fmt.Errorf("failed to read last property id: %w", err)
	}
	return id, nil
}

func toRow(p *models.Property) propertyRow {
	row := propertyRow{
		ID:                p.ID,
		Title:             p.Title,
		Address:           p.Address,
		Description:       p.Description,
		PropertyType:      p.PropertyType,
		Bedrooms:          p.Bedrooms,
		Bathrooms:         p.Bathrooms,
		Sqft:              p.Sqft,
		Price:             p.Price,
		PricePerSqft:      p.PricePerSqft,
		EstimatedRevenue:  p.EstimatedRevenue,
		PredictedValue:    p.PredictedValue,
		EstimatedSaleDate: p.EstimatedSaleDate,
		Features:          p.Features,
		Images:            p.Images,
		LeaseType:         string(p.LeaseType),
		LeaseYears:        p.LeaseYears,
		Latitude:          p.Location.Latitude,
		Longitude:         p.Location.Longitude,
		Postcode:          p.Location.Postcode,
		DirectionsURL:     p.Location.DirectionsURL,
		IsFixerUpper:      p.IsFixerUpper,
		IsMortgageable:    p.IsMortgageable,
		Confidence:        p.Analysis.Confidence,
		StructuralIssues:  p.Analysis.StructuralIssues,
		OutdatedInterior:  p.Analysis.OutdatedInterior,
		ExteriorDamage:    p.Analysis.ExteriorDamage,
		PriceGrowth:       p.Analysis.MarketTrends.PriceGrowth,
		DemandScore:       p.Analysis.MarketTrends.DemandScore,
		InvestmentRating:  p.Analysis.MarketTrends.InvestmentRating,
	}

	if rc := p.RenovationCosts; rc != nil {
		total, structural, interior, exterior := rc.Total, rc.Structural, rc.Interior, rc.Exterior
		row.RenovationTotal = &total
		row.RenovationStructural = &structural
		row.RenovationInterior = &interior
		row.RenovationExterior = &exterior
	}

	return row
}

func (r *propertyRow) toModel() *models.Property {
	p := &models.Property{
		ID:                r.ID,
		Title:             r.Title,
		Address:           r.Address,
		Description:       r.Description,
		PropertyType:      r.PropertyType,
		Bedrooms:          r.Bedrooms,
		Bathrooms:         r.Bathrooms,
		Sqft:              r.Sqft,
		Price:             r.Price,
		PricePerSqft:      r.PricePerSqft,
		EstimatedRevenue:  r.EstimatedRevenue,
		PredictedValue:    r.PredictedValue,
		EstimatedSaleDate: r.EstimatedSaleDate,
		Features:          r.Features,
		Images:            r.Images,
		LeaseType:         models.LeaseType(r.LeaseType),
		LeaseYears:        r.LeaseYears,
		Location: models.Location{
			Latitude:      r.Latitude,
			Longitude:     r.Longitude,
			Postcode:      r.Postcode,
			DirectionsURL: r.DirectionsURL,
		},
		IsFixerUpper:   r.IsFixerUpper,
		IsMortgageable: r.IsMortgageable,
		Analysis: models.Analysis{
			Confidence:       r.Confidence,
			StructuralIssues: r.StructuralIssues,
			OutdatedInterior: r.OutdatedInterior,
			ExteriorDamage:   r.ExteriorDamage,
			MarketTrends: models.MarketTrends{
				PriceGrowth:      r.PriceGrowth,
				DemandScore:      r.DemandScore,
				InvestmentRating: r.InvestmentRating,
			},
		},
	}

	if r.RenovationTotal != nil {
		p.RenovationCosts = &models.RenovationCosts{
			Total:      *r.RenovationTotal,
			Structural: deref(r.RenovationStructural),
			Interior:   deref(r.RenovationInterior),
			Exterior:   deref(r.RenovationExterior),
		}
	}

	return p
}

func deref(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
