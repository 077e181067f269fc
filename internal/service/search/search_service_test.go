package search

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/mkravets/flightdesk/internal/domain"
)

// MockFlightRepository is a mock implementation of repository.FlightRepository
type MockFlightRepository struct {
	mock.Mock
}

func (m *MockFlightRepository) GetByID(ctx context.Context, fid int64) (*domain.Flight, error) {
	args := m.Called(ctx, fid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) Capacity(ctx context.Context, fid int64) (int, error) {
	args := m.Called(ctx, fid)
	return args.Int(0), args.Error(1)
}

func (m *MockFlightRepository) PriceSum(ctx context.Context, fids []int64) (int, error) {
	args := m.Called(ctx, fids)
	return args.Int(0), args.Error(1)
}

func (m *MockFlightRepository) SearchDirect(ctx context.Context, originCity, destCity string, day, limit int) ([]domain.Flight, error) {
	args := m.Called(ctx, originCity, destCity, day, limit)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) SearchOneStop(ctx context.Context, originCity, destCity string, day, limit int) ([][2]domain.Flight, error) {
	args := m.Called(ctx, originCity, destCity, day, limit)
	return args.Get(0).([][2]domain.Flight), args.Error(1)
}

// MockCache is a mock implementation of Cache
type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetItineraries(ctx context.Context, key string) ([]domain.Itinerary, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Itinerary), args.Error(1)
}

func (m *MockCache) SetItineraries(ctx context.Context, key string, itineraries []domain.Itinerary, ttl time.Duration) error {
	args := m.Called(ctx, key, itineraries, ttl)
	return args.Error(0)
}

func flight(fid int64, origin, dest string, duration int) domain.Flight {
	return domain.Flight{FID: fid, DayOfMonth: 14, OriginCity: origin, DestCity: dest, Duration: duration, Capacity: 10, Price: 100}
}

func TestSearchService_mergesAndRenumbers(t *testing.T) {
	repo := &MockFlightRepository{}
	svc := NewSearchService(repo, nil, 0)
	ctx := context.Background()

	// one direct flight slower than the best one-stop pair
	repo.On("SearchDirect", ctx, "Seattle WA", "Boston MA", 14, 3).
		Return([]domain.Flight{flight(1, "Seattle WA", "Boston MA", 400)}, nil)
	repo.On("SearchOneStop", ctx, "Seattle WA", "Boston MA", 14, 2).
		Return([][2]domain.Flight{
			{flight(2, "Seattle WA", "Chicago IL", 150), flight(3, "Chicago IL", "Boston MA", 150)},
			{flight(4, "Seattle WA", "Denver CO", 300), flight(5, "Denver CO", "Boston MA", 200)},
		}, nil)

	results, err := svc.Search(ctx, SearchInput{
		OriginCity: "Seattle WA",
		DestCity:   "Boston MA",
		DayOfMonth: 14,
		Count:      3,
	})

	assert.NoError(t, err)
	assert.Len(t, results, 3)

	// sorted by total duration, renumbered from zero
	assert.Equal(t, 0, results[0].ID)
	assert.Equal(t, 300, results[0].TotalDuration)
	assert.Equal(t, "Chicago IL", results[0].Stopover)
	assert.False(t, results[0].Direct())

	assert.Equal(t, 1, results[1].ID)
	assert.Equal(t, 400, results[1].TotalDuration)
	assert.True(t, results[1].Direct())

	assert.Equal(t, 2, results[2].ID)
	assert.Equal(t, 500, results[2].TotalDuration)
}

func TestSearchService_directOnlySkipsOneStop(t *testing.T) {
	repo := &MockFlightRepository{}
	svc := NewSearchService(repo, nil, 0)
	ctx := context.Background()

	repo.On("SearchDirect", ctx, "Seattle WA", "Boston MA", 14, 5).
		Return([]domain.Flight{flight(1, "Seattle WA", "Boston MA", 400)}, nil)

	results, err := svc.Search(ctx, SearchInput{
		OriginCity: "Seattle WA",
		DestCity:   "Boston MA",
		DayOfMonth: 14,
		DirectOnly: true,
		Count:      5,
	})

	assert.NoError(t, err)
	assert.Len(t, results, 1)
	repo.AssertNotCalled(t, "SearchOneStop", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSearchService_directFlightsFillCount(t *testing.T) {
	repo := &MockFlightRepository{}
	svc := NewSearchService(repo, nil, 0)
	ctx := context.Background()

	repo.On("SearchDirect", ctx, "Seattle WA", "Boston MA", 14, 2).
		Return([]domain.Flight{
			flight(1, "Seattle WA", "Boston MA", 400),
			flight(2, "Seattle WA", "Boston MA", 420),
		}, nil)

	results, err := svc.Search(ctx, SearchInput{
		OriginCity: "Seattle WA",
		DestCity:   "Boston MA",
		DayOfMonth: 14,
		Count:      2,
	})

	assert.NoError(t, err)
	assert.Len(t, results, 2)
	repo.AssertNotCalled(t, "SearchOneStop", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSearchService_emptyResultIsNotAnError(t *testing.T) {
	repo := &MockFlightRepository{}
	svc := NewSearchService(repo, nil, 0)
	ctx := context.Background()

	repo.On("SearchDirect", ctx, "Nowhere ND", "Boston MA", 14, 5).Return([]domain.Flight{}, nil)
	repo.On("SearchOneStop", ctx, "Nowhere ND", "Boston MA", 14, 5).Return([][2]domain.Flight{}, nil)

	results, err := svc.Search(ctx, SearchInput{
		OriginCity: "Nowhere ND",
		DestCity:   "Boston MA",
		DayOfMonth: 14,
		Count:      5,
	})

	assert.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchService_cacheHitSkipsRepository(t *testing.T) {
	repo := &MockFlightRepository{}
	cache := &MockCache{}
	svc := NewSearchService(repo, cache, 30*time.Second)
	ctx := context.Background()

	cached := []domain.Itinerary{{ID: 0, Leg1: flight(1, "Seattle WA", "Boston MA", 400), TotalDuration: 400}}
	cache.On("GetItineraries", ctx, "search:Seattle WA:Boston MA:14:false:5").Return(cached, nil)

	results, err := svc.Search(ctx, SearchInput{
		OriginCity: "Seattle WA",
		DestCity:   "Boston MA",
		DayOfMonth: 14,
		Count:      5,
	})

	assert.NoError(t, err)
	assert.Equal(t, cached, results)
	repo.AssertNotCalled(t, "SearchDirect", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSearchService_cacheMissPopulatesCache(t *testing.T) {
	repo := &MockFlightRepository{}
	cache := &MockCache{}
	svc := NewSearchService(repo, cache, 30*time.Second)
	ctx := context.Background()

	cache.On("GetItineraries", ctx, mock.Anything).Return(nil, nil)
	repo.On("SearchDirect", ctx, "Seattle WA", "Boston MA", 14, 1).
		Return([]domain.Flight{flight(1, "Seattle WA", "Boston MA", 400)}, nil)
	cache.On("SetItineraries", ctx, mock.Anything, mock.AnythingOfType("[]domain.Itinerary"), 30*time.Second).Return(nil)

	results, err := svc.Search(ctx, SearchInput{
		OriginCity: "Seattle WA",
		DestCity:   "Boston MA",
		DayOfMonth: 14,
		Count:      1,
	})

	assert.NoError(t, err)
	assert.Len(t, results, 1)
	cache.AssertExpectations(t)
}
