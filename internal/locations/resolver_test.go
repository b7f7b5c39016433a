package locations

import (
	"context"
	"errors"
	"testing"

	"github.com/georgecharles/verygoodestates/config"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPostcodeService struct {
	mock.Mock
}

func (m *MockPostcodeService) Lookup(ctx context.Context, postcode string) (*PostcodeResult, error) {
	args := m.Called(postcode)
	if r := args.Get(0); r != nil {
		return r.(*PostcodeResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPostcodeService) Autocomplete(ctx context.Context, query string) ([]string, error) {
	args := m.Called(query)
	if r := args.Get(0); r != nil {
		return r.([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

func newTestResolver(t *testing.T) (*Resolver, *MockPostcodeService) {
	places, err := config.LoadPlaces()
	require.NoError(t, err)

	service := &MockPostcodeService{}
	return NewResolver(testLogger(), service, places), service
}

var westminster = &PostcodeResult{Postcode: "SW1A 1AA", Latitude: 51.501009, Longitude: -0.141588, AdminDistrict: "Westminster"}

func TestIsPostcode(t *testing.T) {
	tests := []struct {
		text     string
		expected bool
	}{
		{"SW1A 1AA", true},
		{"sw1a1aa", true},
		{"  M1 1AE  ", true},
		{"EC1A 1BB", true},
		{"London", false},
		{"SW1A", false},
		{"SW1A 1A", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, IsPostcode(tt.text), tt.text)
	}
}

func TestResolver_ResolveQuery_Postcode(t *testing.T) {
	resolver, service := newTestResolver(t)
	service.On("Autocomplete", "SW1A 1AA").Return([]string{"SW1A 1AA"}, nil).Once()

	assert.Equal(t, []string{"SW1A 1AA"}, resolver.ResolveQuery(context.Background(), " SW1A 1AA "))
	// Suggestions are cached case-insensitively
	assert.Equal(t, []string{"SW1A 1AA"}, resolver.ResolveQuery(context.Background(), "sw1a 1aa"))

	service.AssertExpectations(t)
}

func TestResolver_ResolveQuery_PlaceNames(t *testing.T) {
	resolver, service := newTestResolver(t)

	tests := []struct {
		query    string
		expected []string
	}{
		{query: "London", expected: []string{"London"}},
		{query: "chester", expected: []string{"Manchester", "Chester", "Chichester", "Colchester", "Winchester"}},
		{query: "  ham ", expected: []string{"Birmingham", "Nottingham", "Southampton", "Durham", "Wolverhampton", "Hampstead", "Fulham", "Clapham"}},
		{query: "atlantis", expected: []string{}},
		{query: "   ", expected: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.expected, resolver.ResolveQuery(context.Background(), tt.query))
		})
	}

	service.AssertNotCalled(t, "Autocomplete", mock.Anything)
}

func TestResolver_ResolveQuery_FallsBackOnFailure(t *testing.T) {
	resolver, service := newTestResolver(t)
	service.On("Autocomplete", "CH1 1AA").Return(nil, errors.New("connection refused")).Twice()

	assert.Equal(t, []string{}, resolver.ResolveQuery(context.Background(), "CH1 1AA"))
	// Failures are not cached
	resolver.ResolveQuery(context.Background(), "CH1 1AA")

	service.AssertExpectations(t)
}

func TestResolver_ResolvePostcode(t *testing.T) {
	resolver, service := newTestResolver(t)
	service.On("Lookup", "SW1A 1AA").Return(westminster, nil).Once()
	service.On("Lookup", "sw1a 1aa").Return(westminster, nil).Once()

	result, ok := resolver.ResolvePostcode(context.Background(), "SW1A 1AA")
	require.True(t, ok)
	assert.Equal(t, westminster, result)

	result, ok = resolver.ResolvePostcode(context.Background(), "SW1A 1AA")
	require.True(t, ok)
	assert.Equal(t, westminster, result)

	// A differently cased query is a separate cache entry
	_, ok = resolver.ResolvePostcode(context.Background(), "sw1a 1aa")
	assert.True(t, ok)

	service.AssertExpectations(t)
	assert.Equal(t, 2, resolver.postcodes.Len())
}

func TestResolver_ResolvePostcode_NotFound(t *testing.T) {
	resolver, service := newTestResolver(t)
	service.On("Lookup", "XX1 1XX").Return(nil, ErrNotFound).Twice()

	for i := 0; i < 2; i++ {
		result, ok := resolver.ResolvePostcode(context.Background(), "XX1 1XX")
		assert.False(t, ok)
		assert.Nil(t, result)
	}

	service.AssertExpectations(t)
	assert.Zero(t, resolver.postcodes.Len())
}

func TestResolver_ResolveCenter(t *testing.T) {
	resolver, service := newTestResolver(t)
	service.On("Lookup", "SW1A 1AA").Return(westminster, nil).Once()
	service.On("Lookup", "XX1 1XX").Return(nil, ErrNotFound).Once()

	london := orb.Point{-0.1278, 51.5074}

	assert.Equal(t, westminster.Point(), resolver.ResolveCenter(context.Background(), "SW1A 1AA"))
	assert.Equal(t, orb.Point{-2.2426, 53.4808}, resolver.ResolveCenter(context.Background(), "manchester"))
	assert.Equal(t, london, resolver.ResolveCenter(context.Background(), "XX1 1XX"))
	assert.Equal(t, london, resolver.ResolveCenter(context.Background(), "Brixton"))
	assert.Equal(t, london, resolver.ResolveCenter(context.Background(), ""))

	service.AssertExpectations(t)
}
