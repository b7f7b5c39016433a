package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"

	"github.com/georgecharles/verygoodestates/internal/calculator"
	"github.com/georgecharles/verygoodestates/internal/database"
	"github.com/georgecharles/verygoodestates/internal/labels"
	"github.com/georgecharles/verygoodestates/internal/listings"
	"github.com/georgecharles/verygoodestates/internal/locations"
	"github.com/georgecharles/verygoodestates/internal/models"
	"github.com/georgecharles/verygoodestates/internal/search"
)

// Listings returned by a location search
const searchResultCount = 9

// PropertyStore is implemented by *database.Database
type PropertyStore interface {
	GetAllProperties() ([]*models.Property, error)
	GetProperty(id int64) (*models.Property, error)
	UpsertProperties(properties []*models.Property) error
}

type Handler struct {
	db         PropertyStore
	logger     *logrus.Logger
	resolver   *locations.Resolver
	classifier *labels.Classifier
	generator  *listings.Generator
	debounce   time.Duration

	mu         sync.Mutex
	debouncers map[string]*locations.Debouncer
}

// PropertyResult is a listing with the labels derived from it
type PropertyResult struct {
	*models.Property
	AnnualYield float64        `json:"annual_yield"`
	Labels      []labels.Label `json:"labels"`
}

type originQuery struct {
	Lat *float64 `form:"lat" binding:"omitempty,gte=-90,lte=90"`
	Lng *float64 `form:"lng" binding:"omitempty,gte=-180,lte=180"`
}

type SearchRequest struct {
	Location string  `json:"location" binding:"required"`
	Radius   float64 `json:"radius" binding:"omitempty,gte=1,lte=50"`
	Sort     string  `json:"sort"`
}

type Center struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type SearchResponse struct {
	Location string           `json:"location"`
	Center   Center           `json:"center"`
	Radius   float64          `json:"radius"`
	Results  []PropertyResult `json:"results"`
}

func NewHandler(db PropertyStore, resolver *locations.Resolver, classifier *labels.Classifier, generator *listings.Generator, debounce time.Duration, logger *logrus.Logger) *Handler {
	return &Handler{
		db:         db,
		logger:     logger,
		resolver:   resolver,
		classifier: classifier,
		generator:  generator,
		debounce:   debounce,
		debouncers: make(map[string]*locations.Debouncer),
	}
}

func (h *Handler) GetAllProperties(c *gin.Context) {
	var spec search.FilterSpec
	if err := c.ShouldBindQuery(&spec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid filter: " + err.Error()})
		return
	}

	var origin originQuery
	if err := c.ShouldBindQuery(&origin); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid coordinates: " + err.Error()})
		return
	}
	if (origin.Lat == nil) != (origin.Lng == nil) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lng must be given together"})
		return
	}
	if origin.Lat != nil {
		spec.Origin = &orb.Point{*origin.Lng, *origin.Lat}
	}

	sortKey, err := search.ParseSortKey(c.Query("sort"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := spec.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	properties, err := h.db.GetAllProperties()
	if err != nil {
		h.logger.WithError(err).Error("Failed to get properties")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get properties"})
		return
	}

	matched := search.Sort(search.Filter(properties, spec), sortKey)
	if spec.Origin != nil {
		matched = search.WithDistance(matched, *spec.Origin)
	}

	c.JSON(http.StatusOK, h.label(matched))
}

func (h *Handler) GetProperty(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid property id"})
		return
	}

	property, err := h.db.GetProperty(id)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return
	}
	if err != nil {
		h.logger.WithError(err).WithField("property_id", id).Error("Failed to get property")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get property"})
		return
	}

	c.JSON(http.StatusOK, h.result(property))
}

// Search generates fresh listings around a location, stores them and returns
// the ones inside the radius
func (h *Handler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid search: " + err.Error()})
		return
	}
	if req.Radius == 0 {
		req.Radius = 10
	}

	sortKey, err := search.ParseSortKey(req.Sort)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	center := h.resolver.ResolveCenter(c.Request.Context(), req.Location)
	generated := h.validListings(h.generator.Generate(req.Location, center, searchResultCount))

	if err := h.db.UpsertProperties(generated); err != nil {
		h.logger.WithError(err).WithField("location", req.Location).Error("Failed to store search results")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store search results"})
		return
	}

	spec := search.FilterSpec{Origin: &center, RadiusMiles: &req.Radius}
	matched := search.WithDistance(search.Sort(search.Filter(generated, spec), sortKey), center)

	h.logger.WithFields(logrus.Fields{
		"location": req.Location,
		"radius":   req.Radius,
		"results":  len(matched),
	}).Info("Location search completed")

	c.JSON(http.StatusOK, SearchResponse{
		Location: req.Location,
		Center:   Center{Latitude: center.Lat(), Longitude: center.Lon()},
		Radius:   req.Radius,
		Results:  h.label(matched),
	})
}

// SuggestLocations answers type-ahead queries. Each client has its own debouncer,
// so a request overtaken by a newer one from the same client reports superseded.
func (h *Handler) SuggestLocations(c *gin.Context) {
	query := c.Query("q")

	suggestions, err := h.debouncer(c.ClientIP()).Suggest(c.Request.Context(), query)
	switch {
	case errors.Is(err, locations.ErrSuperseded):
		c.JSON(http.StatusOK, gin.H{"superseded": true})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.Status(http.StatusRequestTimeout)
	case err != nil:
		h.logger.WithError(err).WithField("query", query).Error("Failed to suggest locations")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to suggest locations"})
	default:
		c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
	}
}

func (h *Handler) debouncer(client string) *locations.Debouncer {
	h.mu.Lock()
	defer h.mu.Unlock()

	d, ok := h.debouncers[client]
	if !ok {
		d = locations.NewDebouncer(h.resolver, h.debounce)
		h.debouncers[client] = d
	}
	return d
}

func (h *Handler) GetPostcode(c *gin.Context) {
	postcode := c.Param("postcode")

	result, ok := h.resolver.ResolvePostcode(c.Request.Context(), postcode)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Postcode not found"})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) CalculateMortgage(c *gin.Context) {
	var params calculator.MortgageParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	result, err := calculator.CalculateMortgage(params)
	if err != nil {
		h.calculationError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) CalculateBTL(c *gin.Context) {
	var params calculator.BTLParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	result, err := calculator.CalculateBTLReturns(params)
	if err != nil {
		h.calculationError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) CalculateShortLet(c *gin.Context) {
	var params calculator.SAParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	result, err := calculator.CalculateSAReturns(params)
	if err != nil {
		h.calculationError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) calculationError(c *gin.Context, err error) {
	var cfgErr *calculator.ConfigError
	if errors.As(err, &cfgErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  err.Error(),
			"field":  cfgErr.Field,
			"reason": cfgErr.Reason,
		})
		return
	}
	if errors.Is(err, calculator.ErrInvalidConfig) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.logger.WithError(err).Error("Calculation failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Calculation failed"})
}

// validListings drops records that break the listing invariants, as the
// ingestion pipeline does before writing
func (h *Handler) validListings(properties []*models.Property) []*models.Property {
	valid := make([]*models.Property, 0, len(properties))
	for _, p := range properties {
		if err := p.Validate(); err != nil {
			h.logger.WithError(err).WithField("property_id", p.ID).Warn("Skipping invalid property")
			continue
		}
		valid = append(valid, p)
	}
	return valid
}

func (h *Handler) label(properties []*models.Property) []PropertyResult {
	results := make([]PropertyResult, len(properties))
	for i, p := range properties {
		results[i] = h.result(p)
	}
	return results
}

func (h *Handler) result(p *models.Property) PropertyResult {
	return PropertyResult{
		Property:    p,
		AnnualYield: p.AnnualYield(),
		Labels:      h.classifier.Classify(p),
	}
}
