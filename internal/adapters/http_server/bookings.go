package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
)

// paymentIntentRequest takes the stay length as numberOfNight, the name the
// booking form posts; numberOfNights is accepted as well.
type paymentIntentRequest struct {
	NumberOfNight  int `json:"numberOfNight" validate:"min=0"`
	NumberOfNights int `json:"numberOfNights" validate:"min=0"`
	AdultCount     int `json:"adultCount" validate:"min=0"`
	ChildrenCount  int `json:"childrenCount" validate:"min=0"`
}

func (p paymentIntentRequest) nights() int {
	if p.NumberOfNight > 0 {
		return p.NumberOfNight
	}
	return p.NumberOfNights
}

type bookingRequest struct {
	PaymentIntentID string    `json:"paymentIntentId" validate:"required"`
	FirstName       string    `json:"firstName" validate:"required"`
	LastName        string    `json:"lastName" validate:"required"`
	Email           string    `json:"email" validate:"required,email"`
	AdultCount      int       `json:"adultCount" validate:"min=0"`
	ChildrenCount   int       `json:"childrenCount" validate:"min=0"`
	CheckIn         time.Time `json:"checkIn" validate:"required"`
	CheckOut        time.Time `json:"checkOut" validate:"required"`
	NumberOfNights  int       `json:"numberOfNights" validate:"min=0"`
}

func (h *Handlers) createPaymentIntent(w http.ResponseWriter, r *http.Request) {
	var req paymentIntentRequest
	if !decode(w, r, &req) {
		return
	}
	if req.nights() < 1 {
		writeProblem(w, http.StatusBadRequest, "ValidationFailed", "numberOfNight must be at least 1")
		return
	}
	q, err := h.Bookings.CreatePaymentIntent(r.Context(), app.QuoteRequest{
		HotelID:        chi.URLParam(r, "hotelId"),
		UserID:         UserID(r.Context()),
		AdultCount:     req.AdultCount,
		ChildrenCount:  req.ChildrenCount,
		NumberOfNights: req.nights(),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *Handlers) createBooking(w http.ResponseWriter, r *http.Request) {
	var req bookingRequest
	if !decode(w, r, &req) {
		return
	}
	b, err := h.Bookings.CreateBooking(r.Context(), UserID(r.Context()), domain.BookingRequest{
		HotelID:        chi.URLParam(r, "hotelId"),
		PaymentRef:     req.PaymentIntentID,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		AdultCount:     req.AdultCount,
		ChildrenCount:  req.ChildrenCount,
		NumberOfNights: req.NumberOfNights,
		CheckIn:        req.CheckIn,
		CheckOut:       req.CheckOut,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"bookingId": b.ID})
}

func (h *Handlers) myBookings(w http.ResponseWriter, r *http.Request) {
	hotels, err := h.Bookings.MyBookings(r.Context(), UserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]hotelView, 0, len(hotels))
	for _, ht := range hotels {
		out = append(out, toHotelView(ht))
	}
	writeJSON(w, http.StatusOK, out)
}
