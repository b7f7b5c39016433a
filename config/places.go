package config

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/paulmach/orb"
	"gopkg.in/yaml.v3"
)

//go:embed places.yaml
var placesYAML []byte

var ErrInvalidPlaces = errors.New("invalid place list")

type Coordinates struct {
	Latitude  float64 `yaml:"lat"`
	Longitude float64 `yaml:"lng"`
}

// Place is a named UK location offered as a search suggestion
type Place struct {
	Name   string       `yaml:"name"`
	Center *Coordinates `yaml:"center,omitempty"`
}

// PlaceList is the static gazetteer used for suggestions and search centres
type PlaceList struct {
	DefaultCenter string  `yaml:"default_center"`
	Places        []Place `yaml:"places"`

	index  map[string]int
	origin orb.Point
}

// LoadPlaces parses the embedded place list
func LoadPlaces() (*PlaceList, error) {
	return ParsePlaces(placesYAML)
}

// ParsePlaces decodes a YAML place list. Names must be unique ignoring case and
// the default centre must be a listed place with coordinates.
func ParsePlaces(data []byte) (*PlaceList, error) {
	var list PlaceList
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to parse place list: %w", err)
	}

	list.index = make(map[string]int, len(list.Places))
	for i, p := range list.Places {
		key := strings.ToLower(strings.TrimSpace(p.Name))
		if key == "" {
			return nil, fmt.Errorf("%w: place %d has no name", ErrInvalidPlaces, i)
		}
		if _, dup := list.index[key]; dup {
			return nil, fmt.Errorf("%w: duplicate place %q", ErrInvalidPlaces, p.Name)
		}
		list.index[key] = i
	}

	def, ok := list.Center(list.DefaultCenter)
	if !ok {
		return nil, fmt.Errorf("%w: default centre %q has no coordinates", ErrInvalidPlaces, list.DefaultCenter)
	}
	list.origin = def

	return &list, nil
}

// Names returns place names in file order
func (l *PlaceList) Names() []string {
	names := make([]string, len(l.Places))
	for i, p := range l.Places {
		names[i] = p.Name
	}
	return names
}

// Center returns the coordinates of a named place, matched case-insensitively
func (l *PlaceList) Center(name string) (orb.Point, bool) {
	i, ok := l.index[strings.ToLower(strings.TrimSpace(name))]
	if !ok || l.Places[i].Center == nil {
		return orb.Point{}, false
	}
	c := l.Places[i].Center
	return orb.Point{c.Longitude, c.Latitude}, true
}

func (l *PlaceList) Default() orb.Point {
	return l.origin
}

// Located returns the places that have coordinates, in file order
func (l *PlaceList) Located() []Place {
	located := make([]Place, 0, len(l.Places))
	for _, p := range l.Places {
		if p.Center != nil {
			located = append(located, p)
		}
	}
	return located
}
