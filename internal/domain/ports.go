package domain

import (
	"context"
	"time"
)

type HotelRepository interface {
	UpsertHotel(ctx context.Context, h Hotel) error
	// GetHotel returns the hotel without its bookings.
	GetHotel(ctx context.Context, id string) (Hotel, error)
}

// BookingLedger is the authoritative per-hotel booking sequence.
type BookingLedger interface {
	// Append adds b to the hotel's bookings in one atomic statement.
	// When b.PaymentRef already produced a booking, that booking is returned
	// with created=false and nothing is written. A reference whose booking was
	// cancelled stays consumed: ErrPaymentAlreadyUsed.
	Append(ctx context.Context, hotelID string, b Booking) (stored Booking, created bool, err error)
	// Cancel removes a booking from the hotel's sequence. Its payment
	// reference remains recorded as consumed.
	Cancel(ctx context.Context, hotelID, bookingID string) error
	// Locate finds a booking by id across hotels.
	Locate(ctx context.Context, bookingID string) (Booking, error)
	ListByHotel(ctx context.Context, hotelID string) ([]Booking, error)
	// ListByUser returns the caller's live bookings across hotels, oldest first.
	ListByUser(ctx context.Context, userID string) ([]Booking, error)
}

type UserRepository interface {
	CreateUser(ctx context.Context, u User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	UpdateUser(ctx context.Context, u User) error
	SetResetToken(ctx context.Context, userID, token string, expires time.Time) error
	// GetUserByResetToken only matches tokens expiring after now.
	GetUserByResetToken(ctx context.Context, token string, now time.Time) (User, error)
	// ResetPassword stores the new hash and clears the reset token.
	ResetPassword(ctx context.Context, userID, hash string) error
}

type MessageRepository interface {
	CreateMessage(ctx context.Context, m ContactMessage) error
	GetMessage(ctx context.Context, id string) (ContactMessage, error)
	// ListMessages returns messages newest first.
	ListMessages(ctx context.Context) ([]ContactMessage, error)
	MarkRead(ctx context.Context, id string) (ContactMessage, error)
	// TransitionStatus moves a message from one status to another only if it
	// is currently in `from`; otherwise ErrMessageAlreadyProcessed.
	TransitionStatus(ctx context.Context, id string, from, to MessageStatus) error
}

type PaymentProcessor interface {
	CreatePaymentIntent(ctx context.Context, p PaymentIntentParams) (PaymentIntent, error)
	RetrievePaymentIntent(ctx context.Context, id string) (PaymentIntent, error)
}

// Notifier delivers one message; no delivery guarantee is expected.
type Notifier interface {
	Send(ctx context.Context, n Notification) error
}

type Notification struct {
	To      string
	Subject string
	Body    string
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
