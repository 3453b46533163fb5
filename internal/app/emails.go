package app

import (
	"fmt"
	"strings"
	"time"

	"hotel_booking/internal/domain"
)

const dateLayout = "Mon, 02 Jan 2006"

func bookingConfirmation(b domain.Booking, h domain.Hotel) domain.Notification {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Hi %s,\n\n", strings.TrimSpace(b.FirstName+" "+b.LastName))
	fmt.Fprintf(&sb, "Your booking at %s (%s, %s) is confirmed.\n\n", h.Name, h.City, h.Country)
	fmt.Fprintf(&sb, "Booking reference: %s\n", b.ID)
	fmt.Fprintf(&sb, "Check-in:  %s\n", b.CheckIn.Format(dateLayout))
	fmt.Fprintf(&sb, "Check-out: %s\n", b.CheckOut.Format(dateLayout))
	fmt.Fprintf(&sb, "Guests:    %d adult(s), %d child(ren)\n", b.AdultCount, b.ChildrenCount)
	fmt.Fprintf(&sb, "Total paid: £%.2f\n\n", b.TotalCost)
	sb.WriteString("To cancel, contact us quoting the booking reference above.\n")
	return domain.Notification{
		To:      b.Email,
		Subject: "Booking confirmation - " + h.Name,
		Body:    sb.String(),
	}
}

func cancellationOutcome(d domain.Decision, m domain.ContactMessage, hotelName, bookingID string) domain.Notification {
	var subject, line string
	if d == domain.DecisionApproved {
		subject = "Your booking cancellation has been approved"
		line = fmt.Sprintf("Your request to cancel %s (booking %s) has been approved. The booking has been cancelled.", hotelName, bookingID)
	} else {
		subject = "Your booking cancellation request was declined"
		line = fmt.Sprintf("Your request to cancel %s (booking %s) was declined. Your booking remains confirmed.", hotelName, bookingID)
	}
	return domain.Notification{
		To:      m.Email,
		Subject: subject,
		Body:    fmt.Sprintf("Hi %s,\n\n%s\n\nIf you have any questions, reply to this message.\n", m.Name, line),
	}
}

func passwordReset(u domain.User, link string, ttl time.Duration) domain.Notification {
	return domain.Notification{
		To:      u.Email,
		Subject: "Reset your password",
		Body: fmt.Sprintf("Hi %s,\n\nUse the link below to choose a new password. It expires in %d minutes.\n\n%s\n\n"+
			"If you did not ask for this, you can ignore this email.\n", u.FirstName, int(ttl.Minutes()), link),
	}
}
