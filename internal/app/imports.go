package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"hotel_booking/internal/domain"
)

// ImportService loads catalog hotels from fixture records.
type ImportService struct {
	repo    domain.HotelRepository
	queries *QueryService
	now     func() time.Time
}

func NewImportService(r domain.HotelRepository, q *QueryService) *ImportService {
	return &ImportService{repo: r, queries: q, now: func() time.Time { return time.Now().UTC() }}
}

// ImportHotel maps, validates and upserts one record. Records without an id
// get a fresh one; ownerID applies when the record names no owner.
func (s *ImportService) ImportHotel(ctx context.Context, raw map[string]any, ownerID string) (domain.Hotel, error) {
	h := mapHotel(raw)
	if err := validateHotel(h); err != nil {
		return domain.Hotel{}, fmt.Errorf("hotel %q: %w", h.Name, err)
	}
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	if h.OwnerID == "" {
		h.OwnerID = ownerID
	}
	h.LastUpdated = s.now()

	if err := s.repo.UpsertHotel(ctx, h); err != nil {
		return domain.Hotel{}, fmt.Errorf("upsert hotel %s: %w", h.ID, err)
	}
	if s.queries != nil {
		s.queries.Invalidate(ctx, h.ID)
	}
	log.Info().Str("hotel_id", h.ID).Str("name", h.Name).Msg("hotel imported")
	return h, nil
}
