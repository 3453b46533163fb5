package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"hotel_booking/internal/adapters/observability"
	"hotel_booking/internal/domain"
)

type ContactService struct {
	messages domain.MessageRepository
	ledger   domain.BookingLedger
	hotels   HotelReader
	notify   *Dispatcher
	now      func() time.Time
}

func NewContactService(m domain.MessageRepository, l domain.BookingLedger, h HotelReader, d *Dispatcher) *ContactService {
	return &ContactService{
		messages: m,
		ledger:   l,
		hotels:   h,
		notify:   d,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

type ContactRequest struct {
	Name      string
	Email     string
	Subject   string
	Message   string
	BookingID string
}

// Submit stores a contact message. Cancellation requests enter the review
// queue as pending.
func (s *ContactService) Submit(ctx context.Context, r ContactRequest) (domain.ContactMessage, error) {
	now := s.now()
	m := domain.ContactMessage{
		ID:                    uuid.NewString(),
		Name:                  strings.TrimSpace(r.Name),
		Email:                 strings.TrimSpace(r.Email),
		Subject:               strings.TrimSpace(r.Subject),
		Message:               r.Message,
		IsCancellationRequest: domain.IsCancellation(r.Subject, r.Message, r.BookingID),
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if id := strings.TrimSpace(r.BookingID); id != "" {
		m.BookingID = &id
	}
	if m.IsCancellationRequest {
		m.Status = domain.StatusPending
	}
	if err := s.messages.CreateMessage(ctx, m); err != nil {
		return domain.ContactMessage{}, err
	}
	return m, nil
}

func (s *ContactService) List(ctx context.Context) ([]domain.ContactMessage, error) {
	return s.messages.ListMessages(ctx)
}

func (s *ContactService) MarkRead(ctx context.Context, id string) (domain.ContactMessage, error) {
	return s.messages.MarkRead(ctx, id)
}

type CancellationOutcome struct {
	MessageID string               `json:"messageId"`
	BookingID string               `json:"bookingId"`
	Status    domain.MessageStatus `json:"status"`
}

// ProcessCancellation applies an admin decision to a pending cancellation
// request. The message is claimed first with a conditional status change so
// that two admins cannot both act on it; if the ledger cancel then fails the
// claim is released back to pending.
func (s *ContactService) ProcessCancellation(ctx context.Context, messageID string, d domain.Decision) (CancellationOutcome, error) {
	if !d.Valid() {
		return CancellationOutcome{}, domain.ErrInvalidDecision
	}
	m, err := s.messages.GetMessage(ctx, messageID)
	if err != nil {
		return CancellationOutcome{}, err
	}
	if !m.IsCancellationRequest {
		return CancellationOutcome{}, domain.ErrNotACancellationRequest
	}
	if m.BookingID == nil || *m.BookingID == "" {
		return CancellationOutcome{}, domain.ErrMissingBookingReference
	}
	if m.Status != domain.StatusPending {
		return CancellationOutcome{}, domain.ErrMessageAlreadyProcessed
	}
	bookingID := *m.BookingID

	hotelName := "your hotel booking"
	b, lerr := s.ledger.Locate(ctx, bookingID)
	switch {
	case lerr == nil:
		if h, err := s.hotels.GetHotel(ctx, b.HotelID); err == nil {
			hotelName = h.Name
		}
	case errors.Is(lerr, domain.ErrBookingNotFound):
		if d == domain.DecisionApproved {
			return CancellationOutcome{}, lerr
		}
	default:
		return CancellationOutcome{}, lerr
	}

	if err := s.messages.TransitionStatus(ctx, m.ID, domain.StatusPending, d.Status()); err != nil {
		return CancellationOutcome{}, err
	}

	if d == domain.DecisionApproved {
		if err := s.ledger.Cancel(ctx, b.HotelID, b.ID); err != nil {
			if rerr := s.messages.TransitionStatus(ctx, m.ID, d.Status(), domain.StatusPending); rerr != nil {
				log.Error().Err(rerr).Str("message_id", m.ID).Msg("release cancellation claim failed")
			}
			return CancellationOutcome{}, err
		}
		observability.ObserveBooking("cancelled")
		log.Info().Str("booking_id", b.ID).Str("hotel_id", b.HotelID).Msg("booking cancelled")
	} else {
		observability.ObserveBooking("cancel_rejected")
	}

	s.notify.Dispatch("cancellation_"+string(d), cancellationOutcome(d, m, hotelName, bookingID))
	return CancellationOutcome{MessageID: m.ID, BookingID: bookingID, Status: d.Status()}, nil
}
