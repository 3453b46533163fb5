// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
)

// SessionTokens issues the auth cookie value and verifies it on later requests.
type SessionTokens interface {
	TokenVerifier
	Issue(userID string) (string, error)
	TTL() time.Duration
}

type Handlers struct {
	Accounts *app.AccountService
	Bookings *app.BookingService
	Contact  *app.ContactService
	Hotels   *app.QueryService
	Tokens   SessionTokens

	// SecureCookies marks the auth cookie Secure with SameSite=None.
	SecureCookies bool
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

var validate = validator.New()

func (s *Server) MountHandlers(h *Handlers) {
	authed := RequireUser(h.Tokens)
	admin := RequireAdmin(h.Accounts)

	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Route("/api", func(api chi.Router) {
		api.Post("/users/register", h.register)
		api.With(authed).Get("/users/me", h.me)

		api.Post("/auth/login", h.login)
		api.Post("/auth/logout", h.logout)
		api.With(authed).Get("/auth/validate-token", h.validateToken)

		api.Post("/password/forgot-password", h.forgotPassword)
		api.Get("/password/validate-token/{token}", h.validateResetToken)
		api.Post("/password/reset-password/{token}", h.resetPassword)

		api.Get("/hotels/{id}", h.getHotel)
		api.With(authed).Post("/hotels/{hotelId}/bookings/payment-intent", h.createPaymentIntent)
		api.With(authed).Post("/hotels/{hotelId}/bookings", h.createBooking)
		api.With(authed).Get("/my-bookings", h.myBookings)

		api.Post("/contact", h.submitContact)
		api.Group(func(ad chi.Router) {
			ad.Use(authed, admin)
			ad.Get("/contact", h.listContact)
			ad.Patch("/contact/{messageId}/read", h.markRead)
			ad.Patch("/contact/{messageId}/process-cancellation", h.processCancellation)
		})
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrPrecondition):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrTransient):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// writeError maps a service error to problem+json. Server-side failures are
// logged and answered without internal detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	title := domain.Code(err)
	if title == "" {
		title = http.StatusText(status)
	}
	detail := err.Error()
	var de *domain.Error
	if errors.As(err, &de) {
		detail = de.Msg
	}
	if status >= 500 {
		log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
		detail = "something went wrong, please try again"
	}
	writeProblem(w, status, title, detail)
}

// decode reads a JSON body into dst and runs its validate tags.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(dst); err != nil {
		writeProblem(w, http.StatusBadRequest, "InvalidBody", "request body must be valid JSON")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeProblem(w, http.StatusBadRequest, "ValidationFailed", validationDetail(err))
		return false
	}
	return true
}

func validationDetail(err error) string {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return err.Error()
	}
	parts := make([]string, 0, len(ves))
	for _, fe := range ves {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s: %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s: %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// ---- hotels ----

type hotelView struct {
	ID            string        `json:"_id"`
	UserID        string        `json:"userId"`
	Name          string        `json:"name"`
	City          string        `json:"city"`
	Country       string        `json:"country"`
	Description   string        `json:"description"`
	Type          string        `json:"type"`
	AdultCount    int           `json:"adultCount"`
	ChildrenCount int           `json:"childrenCount"`
	Facilities    []string      `json:"facilities"`
	PricePerNight float64       `json:"pricePerNight"`
	Rating        int           `json:"rating"`
	ImageURLs     []string      `json:"imageURL"`
	LastUpdated   time.Time     `json:"lastUpdated"`
	Bookings      []bookingView `json:"bookings,omitempty"`
}

type bookingView struct {
	ID               string    `json:"_id"`
	UserID           string    `json:"userId"`
	FirstName        string    `json:"firstName"`
	LastName         string    `json:"lastName"`
	Email            string    `json:"email"`
	AdultCount       int       `json:"adultCount"`
	ChildrenCount    int       `json:"childrenCount"`
	CheckIn          time.Time `json:"checkIn"`
	CheckOut         time.Time `json:"checkOut"`
	BookingTotalCost float64   `json:"bookingTotalCost"`
}

func toHotelView(h domain.Hotel) hotelView {
	v := hotelView{
		ID: h.ID, UserID: h.OwnerID, Name: h.Name, City: h.City, Country: h.Country,
		Description: h.Description, Type: h.Type, AdultCount: h.AdultCount, ChildrenCount: h.ChildrenCount,
		Facilities: h.Facilities, PricePerNight: h.PricePerNight, Rating: h.Rating,
		ImageURLs: h.ImageURLs, LastUpdated: h.LastUpdated,
	}
	for _, b := range h.Bookings {
		v.Bookings = append(v.Bookings, bookingView{
			ID: b.ID, UserID: b.UserID, FirstName: b.FirstName, LastName: b.LastName, Email: b.Email,
			AdultCount: b.AdultCount, ChildrenCount: b.ChildrenCount,
			CheckIn: b.CheckIn, CheckOut: b.CheckOut, BookingTotalCost: b.TotalCost,
		})
	}
	return v
}

func (h *Handlers) getHotel(w http.ResponseWriter, r *http.Request) {
	hotel, err := h.Hotels.GetHotel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	etag, body := calcETagAndBody(toHotelView(hotel))
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write getHotel body")
	}
}
