package search

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/mkravets/flightdesk/internal/domain"
	"github.com/mkravets/flightdesk/internal/logger"
	"github.com/mkravets/flightdesk/internal/repository"
)

type SearchUseCase interface {
	Search(ctx context.Context, input SearchInput) ([]domain.Itinerary, error)
}

type SearchInput struct {
	OriginCity string
	DestCity   string
	DayOfMonth int
	DirectOnly bool
	Count      int
}

// Cache holds recent search results. A nil cache disables caching.
type Cache interface {
	GetItineraries(ctx context.Context, key string) ([]domain.Itinerary, error)
	SetItineraries(ctx context.Context, key string, itineraries []domain.Itinerary, ttl time.Duration) error
}

type SearchService struct {
	flights  repository.FlightRepository
	cache    Cache
	cacheTTL time.Duration
}

func NewSearchService(flights repository.FlightRepository, cache Cache, cacheTTL time.Duration) *SearchService {
	return &SearchService{flights: flights, cache: cache, cacheTTL: cacheTTL}
}

// Search returns up to input.Count itineraries between the two cities on the
// given day. Direct flights always take priority; one-stop pairs only fill
// the seats direct flights left open. Results are numbered 0..n-1 in the
// order returned, and booking refers to them by that number.
func (s *SearchService) Search(ctx context.Context, input SearchInput) ([]domain.Itinerary, error) {
	if input.Count <= 0 {
		return []domain.Itinerary{}, nil
	}

	key := cacheKey(input)
	if s.cache != nil {
		if cached, err := s.cache.GetItineraries(ctx, key); err != nil {
			logger.Warn("search cache read failed", zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	direct, err := s.flights.SearchDirect(ctx, input.OriginCity, input.DestCity, input.DayOfMonth, input.Count)
	if err != nil {
		return nil, err
	}

	itineraries := make([]domain.Itinerary, 0, input.Count)
	for _, f := range direct {
		itineraries = append(itineraries, domain.Itinerary{
			Leg1:          f,
			Origin:        f.OriginCity,
			Dest:          f.DestCity,
			TotalDuration: f.Duration,
		})
	}

	if !input.DirectOnly && len(itineraries) < input.Count {
		remaining := input.Count - len(itineraries)
		pairs, err := s.flights.SearchOneStop(ctx, input.OriginCity, input.DestCity, input.DayOfMonth, remaining)
		if err != nil {
			return nil, err
		}
		for _, pair := range pairs {
			f1, f2 := pair[0], pair[1]
			leg2 := f2
			itineraries = append(itineraries, domain.Itinerary{
				Leg1:          f1,
				Leg2:          &leg2,
				Origin:        f1.OriginCity,
				Dest:          f2.DestCity,
				Stopover:      f1.DestCity,
				TotalDuration: f1.Duration + f2.Duration,
			})
		}
	}

	sort.SliceStable(itineraries, func(i, j int) bool {
		a, b := itineraries[i], itineraries[j]
		if a.TotalDuration != b.TotalDuration {
			return a.TotalDuration < b.TotalDuration
		}
		if a.Leg1.FID != b.Leg1.FID {
			return a.Leg1.FID < b.Leg1.FID
		}
		return leg2ID(a) < leg2ID(b)
	})
	for i := range itineraries {
		itineraries[i].ID = i
	}

	if s.cache != nil {
		if err := s.cache.SetItineraries(ctx, key, itineraries, s.cacheTTL); err != nil {
			logger.Warn("search cache write failed", zap.Error(err))
		}
	}
	return itineraries, nil
}

func leg2ID(it domain.Itinerary) int64 {
	if it.Leg2 == nil {
		return -1
	}
	return it.Leg2.FID
}

func cacheKey(input SearchInput) string {
	return fmt.Sprintf("search:%s:%s:%d:%t:%d", input.OriginCity, input.DestCity, input.DayOfMonth, input.DirectOnly, input.Count)
}

var _ SearchUseCase = (*SearchService)(nil)
