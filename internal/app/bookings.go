package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"hotel_booking/internal/adapters/observability"
	"hotel_booking/internal/domain"
)

const currencyGBP = "gbp"

// HotelReader is the point lookup the booking flows price against.
type HotelReader interface {
	GetHotel(ctx context.Context, id string) (domain.Hotel, error)
}

type BookingService struct {
	hotels   HotelReader
	ledger   domain.BookingLedger
	payments domain.PaymentProcessor
	verifier *PaymentVerifier
	notify   *Dispatcher
	now      func() time.Time
}

func NewBookingService(h HotelReader, l domain.BookingLedger, p domain.PaymentProcessor, d *Dispatcher) *BookingService {
	return &BookingService{
		hotels:   h,
		ledger:   l,
		payments: p,
		verifier: NewPaymentVerifier(p),
		notify:   d,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

type QuoteRequest struct {
	HotelID        string
	UserID         string
	AdultCount     int
	ChildrenCount  int
	NumberOfNights int
}

type Quote struct {
	PaymentIntentID string  `json:"paymentIntentId"`
	ClientSecret    string  `json:"clientSecret"`
	TotalCost       float64 `json:"bookingTotalCost"`
}

// CreatePaymentIntent prices the stay and opens a processor intent whose
// metadata pins hotel, caller and stay shape for the later booking check.
func (s *BookingService) CreatePaymentIntent(ctx context.Context, q QuoteRequest) (Quote, error) {
	if q.UserID == "" {
		return Quote{}, domain.ErrNotAuthenticated
	}
	switch {
	case q.AdultCount < 0 || q.ChildrenCount < 0:
		return Quote{}, domain.Invalid("guest counts must not be negative")
	case q.AdultCount+q.ChildrenCount == 0:
		return Quote{}, domain.Invalid("at least one guest is required")
	case q.NumberOfNights < 1:
		return Quote{}, domain.Invalid("number of nights must be at least 1")
	}

	h, err := s.hotels.GetHotel(ctx, q.HotelID)
	if err != nil {
		return Quote{}, err
	}
	cost := domain.BookingCost(h.PricePerNight, q.AdultCount, q.ChildrenCount, q.NumberOfNights)

	pi, err := s.payments.CreatePaymentIntent(ctx, domain.PaymentIntentParams{
		Amount:   domain.MinorUnits(cost),
		Currency: currencyGBP,
		Metadata: domain.PaymentMetadata{
			HotelID:        q.HotelID,
			UserID:         q.UserID,
			AdultCount:     q.AdultCount,
			ChildrenCount:  q.ChildrenCount,
			NumberOfNights: q.NumberOfNights,
		},
	})
	if err != nil {
		return Quote{}, fmt.Errorf("create payment intent: %w", err)
	}
	if pi.ClientSecret == "" {
		return Quote{}, fmt.Errorf("payment intent %s returned no client secret", pi.ID)
	}
	return Quote{PaymentIntentID: pi.ID, ClientSecret: pi.ClientSecret, TotalCost: cost}, nil
}

// CreateBooking turns a succeeded payment into a booking. The processor is
// consulted before anything is written; the ledger append is the single
// mutation; the confirmation email is queued after it and never awaited.
//
// A payment reference books at most once: resubmitting it returns the
// booking it already produced.
func (s *BookingService) CreateBooking(ctx context.Context, userID string, req domain.BookingRequest) (domain.Booking, error) {
	if userID == "" {
		return domain.Booking{}, domain.ErrNotAuthenticated
	}
	if err := req.Validate(); err != nil {
		return domain.Booking{}, err
	}
	nights := req.Nights()

	pi, err := s.verifier.Verify(ctx, req.PaymentRef, domain.PaymentMetadata{
		HotelID:        req.HotelID,
		UserID:         userID,
		AdultCount:     req.AdultCount,
		ChildrenCount:  req.ChildrenCount,
		NumberOfNights: nights,
	})
	if err != nil {
		return domain.Booking{}, err
	}

	h, err := s.hotels.GetHotel(ctx, req.HotelID)
	if err != nil {
		return domain.Booking{}, err
	}
	cost := domain.BookingCost(h.PricePerNight, req.AdultCount, req.ChildrenCount, nights)
	if domain.MinorUnits(cost) != pi.Amount {
		// price changed between quote and booking; the charge stands as paid
		log.Warn().Str("hotel_id", h.ID).Str("payment_ref", pi.ID).
			Int64("charged", pi.Amount).Int64("priced", domain.MinorUnits(cost)).
			Msg("booking cost differs from charged amount")
	}

	draft := domain.Booking{
		ID:            uuid.NewString(),
		HotelID:       req.HotelID,
		UserID:        userID,
		PaymentRef:    req.PaymentRef,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		AdultCount:    req.AdultCount,
		ChildrenCount: req.ChildrenCount,
		CheckIn:       req.CheckIn,
		CheckOut:      req.CheckOut,
		TotalCost:     cost,
		CreatedAt:     s.now(),
	}
	stored, created, err := s.ledger.Append(ctx, req.HotelID, draft)
	if err != nil {
		return domain.Booking{}, err
	}
	if !created {
		observability.ObserveBooking("replayed")
		log.Info().Str("booking_id", stored.ID).Str("payment_ref", req.PaymentRef).
			Msg("payment reference already booked; returning existing booking")
		return stored, nil
	}

	observability.ObserveBooking("created")
	log.Info().Str("booking_id", stored.ID).Str("hotel_id", stored.HotelID).Str("user_id", userID).Msg("booking created")
	s.notify.Dispatch("booking_confirmation", bookingConfirmation(stored, h))
	return stored, nil
}

// MyBookings returns the hotels the user has live bookings at, each carrying
// only that user's bookings, in booking order.
func (s *BookingService) MyBookings(ctx context.Context, userID string) ([]domain.Hotel, error) {
	if userID == "" {
		return nil, domain.ErrNotAuthenticated
	}
	bookings, err := s.ledger.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := []domain.Hotel{}
	idx := map[string]int{}
	for _, b := range bookings {
		i, ok := idx[b.HotelID]
		if !ok {
			h, err := s.hotels.GetHotel(ctx, b.HotelID)
			if errors.Is(err, domain.ErrHotelNotFound) {
				continue
			}
			if err != nil {
				return nil, err
			}
			h.Bookings = nil
			i = len(out)
			idx[b.HotelID] = i
			out = append(out, h)
		}
		out[i].Bookings = append(out[i].Bookings, b)
	}
	return out, nil
}
