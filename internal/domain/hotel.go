package domain

import (
	"math"
	"time"
)

type Hotel struct {
	ID            string
	OwnerID       string
	Name          string
	City          string
	Country       string
	Description   string
	Type          string
	AdultCount    int // max adults the hotel accepts per booking
	ChildrenCount int // max children the hotel accepts per booking
	Facilities    []string
	PricePerNight float64 // per adult; children pay half
	Rating        int
	ImageURLs     []string
	LastUpdated   time.Time
	Bookings      []Booking // owned by the hotel, ordered by creation
}

// Booking is created once a payment is confirmed and never updated in place.
// Guest name/email are a snapshot taken at booking time.
type Booking struct {
	ID            string
	HotelID       string
	UserID        string
	PaymentRef    string
	FirstName     string
	LastName      string
	Email         string
	AdultCount    int
	ChildrenCount int
	CheckIn       time.Time
	CheckOut      time.Time
	TotalCost     float64
	CreatedAt     time.Time
}

// BookingRequest is what an authenticated caller submits after paying.
type BookingRequest struct {
	HotelID        string
	PaymentRef     string
	FirstName      string
	LastName       string
	Email          string
	AdultCount     int
	ChildrenCount  int
	NumberOfNights int // optional; must agree with the stay dates when set
	CheckIn        time.Time
	CheckOut       time.Time
}

// Nights returns the number of started days between check-in and check-out.
func Nights(checkIn, checkOut time.Time) int {
	d := checkOut.Sub(checkIn)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Hours() / 24))
}

// Validate checks the request shape; it does not look at payment or hotel state.
func (r BookingRequest) Validate() error {
	switch {
	case r.HotelID == "":
		return Invalid("hotel id is required")
	case r.PaymentRef == "":
		return Invalid("payment reference is required")
	case r.Email == "":
		return Invalid("guest email is required")
	case r.AdultCount < 0 || r.ChildrenCount < 0:
		return Invalid("guest counts must not be negative")
	case r.AdultCount+r.ChildrenCount == 0:
		return Invalid("at least one guest is required")
	case r.CheckIn.IsZero() || r.CheckOut.IsZero():
		return Invalid("check-in and check-out dates are required")
	case !r.CheckIn.Before(r.CheckOut):
		return Invalid("check-in must be before check-out")
	case r.NumberOfNights < 0:
		return Invalid("number of nights must not be negative")
	case r.NumberOfNights > 0 && r.NumberOfNights != Nights(r.CheckIn, r.CheckOut):
		return Invalid("number of nights does not match the stay dates")
	}
	return nil
}

// Nights is the length of the requested stay.
func (r BookingRequest) Nights() int { return Nights(r.CheckIn, r.CheckOut) }

// BookingCost prices a stay: adults pay the nightly rate, children half of it.
func BookingCost(pricePerNight float64, adults, children, nights int) float64 {
	adult := pricePerNight * float64(adults) * float64(nights)
	child := (pricePerNight / 2) * float64(children) * float64(nights)
	return adult + child
}

// MinorUnits converts a cost to the processor's smallest currency unit.
func MinorUnits(cost float64) int64 { return int64(math.Round(cost * 100)) }
