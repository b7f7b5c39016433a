package locations

import (
	"context"
	"regexp"
	"strings"

	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"
)

var postcodePattern = regexp.MustCompile(`(?i)^[A-Z0-9]{2,4}\s?[0-9][A-Z]{2}$`)

// PostcodeService is implemented by Client
type PostcodeService interface {
	Lookup(ctx context.Context, postcode string) (*PostcodeResult, error)
	Autocomplete(ctx context.Context, query string) ([]string, error)
}

// Gazetteer is the static list of known places
type Gazetteer interface {
	Names() []string
	Center(name string) (orb.Point, bool)
	Default() orb.Point
}

// Resolver turns free text into place suggestions or coordinates. It owns the
// lookup caches, so one Resolver should be shared for the life of the process.
type Resolver struct {
	logger      *logrus.Logger
	service     PostcodeService
	places      Gazetteer
	postcodes   *Cache[*PostcodeResult]
	suggestions *Cache[[]string]
}

func NewResolver(logger *logrus.Logger, service PostcodeService, places Gazetteer) *Resolver {
	return &Resolver{
		logger:      logger,
		service:     service,
		places:      places,
		postcodes:   NewCache[*PostcodeResult](),
		suggestions: NewCache[[]string](),
	}
}

// IsPostcode reports whether text looks like a full UK postcode
func IsPostcode(text string) bool {
	return postcodePattern.MatchString(strings.TrimSpace(text))
}

// ResolveQuery returns suggestions for text. Postcode-shaped input goes to the
// autocomplete service; anything else, or any service failure, falls back to
// matching the place list.
func (r *Resolver) ResolveQuery(ctx context.Context, text string) []string {
	query := strings.TrimSpace(text)
	if query == "" {
		return []string{}
	}

	if postcodePattern.MatchString(query) {
		suggestions, err := r.autocomplete(ctx, query)
		if err == nil {
			return suggestions
		}
		r.logger.WithError(err).WithField("query", query).Debug("Falling back to place search")
	}

	return r.matchPlaces(query)
}

func (r *Resolver) autocomplete(ctx context.Context, query string) ([]string, error) {
	key := strings.ToLower(query)
	if cached, ok := r.suggestions.Get(key); ok {
		return cached, nil
	}

	suggestions, err := r.service.Autocomplete(ctx, query)
	if err != nil {
		return nil, err
	}
	r.suggestions.Set(key, suggestions)
	return suggestions, nil
}

func (r *Resolver) matchPlaces(query string) []string {
	needle := strings.ToLower(query)
	matches := []string{}
	for _, name := range r.places.Names() {
		if strings.Contains(strings.ToLower(name), needle) {
			matches = append(matches, name)
		}
	}
	return matches
}

// ResolvePostcode looks up an exact postcode. Successful lookups are cached under
// the query exactly as given; failures are not cached and report false.
func (r *Resolver) ResolvePostcode(ctx context.Context, text string) (*PostcodeResult, bool) {
	if cached, ok := r.postcodes.Get(text); ok {
		return cached, true
	}

	result, err := r.service.Lookup(ctx, strings.TrimSpace(text))
	if err != nil {
		return nil, false
	}

	r.postcodes.Set(text, result)
	return result, true
}

// ResolveCenter picks the point a location search is centred on: the postcode's
// coordinates, else a known place, else the default centre.
func (r *Resolver) ResolveCenter(ctx context.Context, text string) orb.Point {
	if IsPostcode(text) {
		if result, ok := r.ResolvePostcode(ctx, text); ok {
			return result.Point()
		}
	}

	if center, ok := r.places.Center(text); ok {
		return center
	}

	r.logger.WithField("location", text).Debug("Unknown location, using default centre")
	return r.places.Default()
}
