package app_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
	"hotel_booking/internal/storage/memory"
)

// ---- fakes ----

type fakeProcessor struct {
	mu      sync.Mutex
	intents map[string]domain.PaymentIntent
	created []domain.PaymentIntentParams
	err     error
}

func (p *fakeProcessor) CreatePaymentIntent(ctx context.Context, in domain.PaymentIntentParams) (domain.PaymentIntent, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return domain.PaymentIntent{}, p.err
	}
	p.created = append(p.created, in)
	return domain.PaymentIntent{ID: "pi_new", ClientSecret: "pi_new_secret", Status: domain.PaymentRequiresPaymentMethod,
		Amount: in.Amount, Currency: in.Currency, Metadata: in.Metadata}, nil
}

func (p *fakeProcessor) RetrievePaymentIntent(ctx context.Context, id string) (domain.PaymentIntent, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return domain.PaymentIntent{}, p.err
	}
	pi, ok := p.intents[id]
	if !ok {
		return domain.PaymentIntent{}, domain.ErrPaymentNotFound
	}
	return pi, nil
}

type recordingNotifier struct {
	mu    sync.Mutex
	sent  []domain.Notification
	err   error
	block bool
}

func (n *recordingNotifier) Send(ctx context.Context, msg domain.Notification) error {
	if n.block {
		<-ctx.Done()
		return ctx.Err()
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, msg)
	return nil
}

func (n *recordingNotifier) Sent() []domain.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.Notification(nil), n.sent...)
}

// failingLedger delegates to a real ledger but fails Cancel.
type failingLedger struct {
	domain.BookingLedger
	cancelErr error
}

func (l failingLedger) Cancel(ctx context.Context, hotelID, bookingID string) error {
	return l.cancelErr
}

type fakeCache struct {
	mu    sync.Mutex
	store map[string]domain.Hotel
	gets  int
	dels  int
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	*dst.(*domain.Hotel) = v
	return true, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = map[string]domain.Hotel{}
	}
	c.store[key] = v.(domain.Hotel)
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dels++
	delete(c.store, key)
	return nil
}

// ---- fixture ----

const (
	hotelID = "hotel-1"
	userID  = "user-1"
)

type fixture struct {
	store    *memory.Store
	proc     *fakeProcessor
	notifier *recordingNotifier
	disp     *app.Dispatcher
	bookings *app.BookingService
	contact  *app.ContactService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:    memory.New(),
		proc:     &fakeProcessor{intents: map[string]domain.PaymentIntent{}},
		notifier: &recordingNotifier{},
	}
	if err := f.store.UpsertHotel(context.Background(), domain.Hotel{
		ID: hotelID, Name: "Harbour View", City: "Lisbon", Country: "Portugal", PricePerNight: 100,
	}); err != nil {
		t.Fatalf("seed hotel: %v", err)
	}
	f.disp = app.NewDispatcher(f.notifier, time.Second)
	f.bookings = app.NewBookingService(f.store, f.store, f.proc, f.disp)
	f.contact = app.NewContactService(f.store, f.store, f.store, f.disp)
	return f
}

// drain waits for queued notifications.
func (f *fixture) drain(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := f.disp.Shutdown(ctx); err != nil {
		t.Fatalf("dispatcher shutdown: %v", err)
	}
}

// paid registers a succeeded intent matching req for userID.
func (f *fixture) paid(ref string, req domain.BookingRequest) {
	f.proc.mu.Lock()
	defer f.proc.mu.Unlock()
	f.proc.intents[ref] = domain.PaymentIntent{
		ID:     ref,
		Status: domain.PaymentSucceeded,
		Amount: domain.MinorUnits(domain.BookingCost(100, req.AdultCount, req.ChildrenCount, req.Nights())),
		Metadata: domain.PaymentMetadata{
			HotelID:        req.HotelID,
			UserID:         userID,
			AdultCount:     req.AdultCount,
			ChildrenCount:  req.ChildrenCount,
			NumberOfNights: req.Nights(),
		},
	}
}

func bookingRequest(ref string) domain.BookingRequest {
	in := time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC)
	return domain.BookingRequest{
		HotelID:       hotelID,
		PaymentRef:    ref,
		FirstName:     "Ana",
		LastName:      "Lima",
		Email:         "ana@example.com",
		AdultCount:    2,
		ChildrenCount: 1,
		CheckIn:       in,
		CheckOut:      in.AddDate(0, 0, 3),
	}
}
