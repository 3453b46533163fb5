package domain

import (
	"strings"
	"time"
)

// CancellationSubject is the subject the contact form uses for cancellations.
const CancellationSubject = "Booking Cancellation Request"

type MessageStatus string

const (
	StatusNone     MessageStatus = ""
	StatusPending  MessageStatus = "pending"
	StatusApproved MessageStatus = "approved"
	StatusRejected MessageStatus = "rejected"
)

// Decision is an admin's verdict on a cancellation request.
type Decision string

const (
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
)

func (d Decision) Valid() bool { return d == DecisionApproved || d == DecisionRejected }

// Status is the message status a decision moves a pending request to.
func (d Decision) Status() MessageStatus { return MessageStatus(d) }

type ContactMessage struct {
	ID                    string
	Name                  string
	Email                 string
	Subject               string
	Message               string
	BookingID             *string
	IsRead                bool
	IsCancellationRequest bool
	Status                MessageStatus
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// IsCancellation reports whether a submitted message asks to cancel a booking:
// the dedicated subject, the keyword in the body, or an explicit booking id.
func IsCancellation(subject, body, bookingID string) bool {
	return subject == CancellationSubject ||
		strings.Contains(strings.ToLower(body), "cancellation") ||
		strings.TrimSpace(bookingID) != ""
}
