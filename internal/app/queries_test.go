package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
	"hotel_booking/internal/storage/memory"
)

func TestGetHotel_CacheMissThenHit(t *testing.T) {
	repo := memory.New()
	_ = repo.UpsertHotel(context.Background(), domain.Hotel{ID: "h1", Name: "Harbour View", PricePerNight: 100})
	cache := &fakeCache{}
	q := app.NewQueryService(repo, cache, 10*time.Minute)

	// Miss (first time, populates cache)
	h, err := q.GetHotel(context.Background(), "h1")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if h.Name != "Harbour View" {
		t.Fatalf("unexpected hotel: %+v", h)
	}

	// Mutate repo to ensure second read indeed comes from cache
	_ = repo.UpsertHotel(context.Background(), domain.Hotel{ID: "h1", Name: "SHOULD NOT SEE THIS"})

	h2, err := q.GetHotel(context.Background(), "h1")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if h2.Name != "Harbour View" {
		t.Fatalf("expected cached name, got %s", h2.Name)
	}

	q.Invalidate(context.Background(), "h1")
	h3, _ := q.GetHotel(context.Background(), "h1")
	if h3.Name != "SHOULD NOT SEE THIS" {
		t.Fatalf("expected fresh read after invalidate, got %s", h3.Name)
	}
}

func TestGetHotel_NotFoundIsNotCached(t *testing.T) {
	cache := &fakeCache{}
	q := app.NewQueryService(memory.New(), cache, time.Minute)
	if _, err := q.GetHotel(context.Background(), "nope"); !errors.Is(err, domain.ErrHotelNotFound) {
		t.Fatalf("want ErrHotelNotFound, got %v", err)
	}
	if len(cache.store) != 0 {
		t.Fatalf("miss was cached: %+v", cache.store)
	}
}
