package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"hotel_booking/internal/domain"
)

// QueryService serves hotel point lookups through the cache. Cache errors
// degrade to a repository read; they never fail the lookup.
type QueryService struct {
	repo     domain.HotelRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(r domain.HotelRepository, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, cache: c, cacheTTL: ttl}
}

func hotelKey(id string) string { return "hotel:" + id }

func (s *QueryService) GetHotel(ctx context.Context, id string) (domain.Hotel, error) {
	key := hotelKey(id)
	var h domain.Hotel
	if ok, err := s.cache.Get(ctx, key, &h); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache get failed")
	} else if ok {
		return h, nil
	}
	h, err := s.repo.GetHotel(ctx, id)
	if err != nil {
		return domain.Hotel{}, err
	}
	// bookings are never cached; the ledger is their only source
	h.Bookings = nil
	if err := s.cache.Set(ctx, key, h, int(s.cacheTTL.Seconds())); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache set failed")
	}
	return h, nil
}

// Invalidate drops the cached copy of a hotel after it changes.
func (s *QueryService) Invalidate(ctx context.Context, id string) {
	if err := s.cache.Del(ctx, hotelKey(id)); err != nil {
		log.Warn().Err(err).Str("hotel_id", id).Msg("cache invalidate failed")
	}
}
