// Package memory is an in-process store for local runs and tests. It keeps
// the same atomicity and uniqueness rules as the MySQL store.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"hotel_booking/internal/domain"
)

type Store struct {
	mu       sync.RWMutex
	hotels   map[string]domain.Hotel
	bookings map[string][]domain.Booking // hotel id -> bookings in append order
	byRef    map[string]domain.Booking   // payment ref -> live booking
	consumed map[string]struct{}         // payment refs of cancelled bookings
	users    map[string]domain.User
	messages map[string]domain.ContactMessage
}

func New() *Store {
	return &Store{
		hotels:   map[string]domain.Hotel{},
		bookings: map[string][]domain.Booking{},
		byRef:    map[string]domain.Booking{},
		consumed: map[string]struct{}{},
		users:    map[string]domain.User{},
		messages: map[string]domain.ContactMessage{},
	}
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

// ---- hotels ----

func (s *Store) UpsertHotel(_ context.Context, h domain.Hotel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h.Facilities = cloneStrings(h.Facilities)
	h.ImageURLs = cloneStrings(h.ImageURLs)
	h.Bookings = nil
	s.hotels[h.ID] = h
	return nil
}

func (s *Store) GetHotel(_ context.Context, id string) (domain.Hotel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.hotels[id]
	if !ok {
		return domain.Hotel{}, domain.ErrHotelNotFound
	}
	h.Facilities = cloneStrings(h.Facilities)
	h.ImageURLs = cloneStrings(h.ImageURLs)
	return h, nil
}

// ---- bookings ----

func (s *Store) Append(_ context.Context, hotelID string, b domain.Booking) (domain.Booking, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.hotels[hotelID]; !ok {
		return domain.Booking{}, false, domain.ErrHotelNotFound
	}
	if existing, ok := s.byRef[b.PaymentRef]; ok {
		return existing, false, nil
	}
	if _, ok := s.consumed[b.PaymentRef]; ok {
		return domain.Booking{}, false, domain.ErrPaymentAlreadyUsed
	}
	b.HotelID = hotelID
	s.bookings[hotelID] = append(s.bookings[hotelID], b)
	s.byRef[b.PaymentRef] = b
	return b, true, nil
}

func (s *Store) Cancel(_ context.Context, hotelID, bookingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.hotels[hotelID]; !ok {
		return domain.ErrHotelNotFound
	}
	seq := s.bookings[hotelID]
	for i, b := range seq {
		if b.ID != bookingID {
			continue
		}
		out := make([]domain.Booking, 0, len(seq)-1)
		out = append(out, seq[:i]...)
		s.bookings[hotelID] = append(out, seq[i+1:]...)
		delete(s.byRef, b.PaymentRef)
		s.consumed[b.PaymentRef] = struct{}{}
		return nil
	}
	return domain.ErrBookingNotFound
}

func (s *Store) Locate(_ context.Context, bookingID string) (domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, seq := range s.bookings {
		for _, b := range seq {
			if b.ID == bookingID {
				return b, nil
			}
		}
	}
	return domain.Booking{}, domain.ErrBookingNotFound
}

func (s *Store) ListByHotel(_ context.Context, hotelID string) ([]domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Booking(nil), s.bookings[hotelID]...), nil
}

func (s *Store) ListByUser(_ context.Context, userID string) ([]domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Booking
	for _, seq := range s.bookings {
		for _, b := range seq {
			if b.UserID == userID {
				out = append(out, b)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// ---- users ----

func (s *Store) emailTaken(email, exceptID string) bool {
	for _, u := range s.users {
		if u.Email == email && u.ID != exceptID {
			return true
		}
	}
	return false
}

func (s *Store) CreateUser(_ context.Context, u domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.emailTaken(u.Email, "") {
		return domain.ErrEmailTaken
	}
	s.users[u.ID] = u
	return nil
}

func (s *Store) GetUser(_ context.Context, id string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

func (s *Store) UpdateUser(_ context.Context, u domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.users[u.ID]
	if !ok {
		return domain.ErrUserNotFound
	}
	if s.emailTaken(u.Email, u.ID) {
		return domain.ErrEmailTaken
	}
	u.ResetPasswordToken, u.ResetPasswordExpires = cur.ResetPasswordToken, cur.ResetPasswordExpires
	s.users[u.ID] = u
	return nil
}

func (s *Store) SetResetToken(_ context.Context, userID, token string, expires time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.ResetPasswordToken, u.ResetPasswordExpires = &token, &expires
	s.users[userID] = u
	return nil
}

func (s *Store) GetUserByResetToken(_ context.Context, token string, now time.Time) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.ResetPasswordToken != nil && *u.ResetPasswordToken == token &&
			u.ResetPasswordExpires != nil && u.ResetPasswordExpires.After(now) {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

func (s *Store) ResetPassword(_ context.Context, userID, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = hash
	u.ResetPasswordToken, u.ResetPasswordExpires = nil, nil
	s.users[userID] = u
	return nil
}

// ---- contact messages ----

func (s *Store) CreateMessage(_ context.Context, m domain.ContactMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[m.ID] = m
	return nil
}

func (s *Store) GetMessage(_ context.Context, id string) (domain.ContactMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.messages[id]
	if !ok {
		return domain.ContactMessage{}, domain.ErrMessageNotFound
	}
	return m, nil
}

func (s *Store) ListMessages(_ context.Context) ([]domain.ContactMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ContactMessage, 0, len(s.messages))
	for _, m := range s.messages {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Store) MarkRead(_ context.Context, id string) (domain.ContactMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.messages[id]
	if !ok {
		return domain.ContactMessage{}, domain.ErrMessageNotFound
	}
	m.IsRead = true
	m.UpdatedAt = time.Now().UTC()
	s.messages[id] = m
	return m, nil
}

func (s *Store) TransitionStatus(_ context.Context, id string, from, to domain.MessageStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.messages[id]
	if !ok {
		return domain.ErrMessageNotFound
	}
	if m.Status != from {
		return domain.ErrMessageAlreadyProcessed
	}
	m.Status = to
	m.UpdatedAt = time.Now().UTC()
	s.messages[id] = m
	return nil
}
