package memory_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"hotel_booking/internal/domain"
	"hotel_booking/internal/storage/memory"
)

func seedHotel(t *testing.T, s *memory.Store, id string) {
	t.Helper()
	if err := s.UpsertHotel(context.Background(), domain.Hotel{ID: id, Name: "Test Inn", PricePerNight: 100}); err != nil {
		t.Fatalf("UpsertHotel: %v", err)
	}
}

func TestAppend_ConcurrentDistinctRefsAllPresent(t *testing.T) {
	s := memory.New()
	seedHotel(t, s, "h1")
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b := domain.Booking{ID: fmt.Sprintf("b-%d", i), PaymentRef: fmt.Sprintf("pi_%d", i)}
			if _, created, err := s.Append(ctx, "h1", b); err != nil || !created {
				t.Errorf("Append %d: created=%v err=%v", i, created, err)
			}
		}(i)
	}
	wg.Wait()

	got, _ := s.ListByHotel(ctx, "h1")
	if len(got) != n {
		t.Fatalf("want %d bookings, got %d", n, len(got))
	}
}

func TestAppend_SamePaymentRefReturnsExisting(t *testing.T) {
	s := memory.New()
	seedHotel(t, s, "h1")
	ctx := context.Background()

	first, created, err := s.Append(ctx, "h1", domain.Booking{ID: "b-1", PaymentRef: "pi_1"})
	if err != nil || !created {
		t.Fatalf("first append: created=%v err=%v", created, err)
	}
	again, created, err := s.Append(ctx, "h1", domain.Booking{ID: "b-2", PaymentRef: "pi_1"})
	if err != nil {
		t.Fatalf("second append: %v", err)
	}
	if created || again.ID != first.ID {
		t.Fatalf("want replay of %s, got created=%v id=%s", first.ID, created, again.ID)
	}
	if got, _ := s.ListByHotel(ctx, "h1"); len(got) != 1 {
		t.Fatalf("want 1 booking, got %d", len(got))
	}
}

func TestAppend_UnknownHotel(t *testing.T) {
	s := memory.New()
	_, _, err := s.Append(context.Background(), "nope", domain.Booking{ID: "b", PaymentRef: "pi"})
	if !errors.Is(err, domain.ErrHotelNotFound) {
		t.Fatalf("want ErrHotelNotFound, got %v", err)
	}
}

func TestAppend_ReplayAgainstOtherHotelIsHotelNotFound(t *testing.T) {
	s := memory.New()
	seedHotel(t, s, "h1")
	ctx := context.Background()
	if _, _, err := s.Append(ctx, "h1", domain.Booking{ID: "b-1", PaymentRef: "pi_1"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if _, _, err := s.Append(ctx, "gone", domain.Booking{ID: "b-2", PaymentRef: "pi_1"}); !errors.Is(err, domain.ErrHotelNotFound) {
		t.Fatalf("want ErrHotelNotFound, got %v", err)
	}
}

func TestCancel_KeepsPaymentRefConsumed(t *testing.T) {
	s := memory.New()
	seedHotel(t, s, "h1")
	ctx := context.Background()
	if _, _, err := s.Append(ctx, "h1", domain.Booking{ID: "b-1", PaymentRef: "pi_1"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := s.Cancel(ctx, "h1", "b-1"); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	_, created, err := s.Append(ctx, "h1", domain.Booking{ID: "b-2", PaymentRef: "pi_1"})
	if created || !errors.Is(err, domain.ErrPaymentAlreadyUsed) {
		t.Fatalf("want ErrPaymentAlreadyUsed, got created=%v err=%v", created, err)
	}
	if got, _ := s.ListByHotel(ctx, "h1"); len(got) != 0 {
		t.Fatalf("want empty sequence, got %+v", got)
	}
}

func TestListByUser(t *testing.T) {
	s := memory.New()
	seedHotel(t, s, "h1")
	seedHotel(t, s, "h2")
	ctx := context.Background()
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, row := range []struct{ hotel, user string }{{"h1", "u1"}, {"h2", "u2"}, {"h2", "u1"}, {"h1", "u1"}} {
		b := domain.Booking{ID: fmt.Sprintf("b-%d", i), UserID: row.user, PaymentRef: fmt.Sprintf("pi_%d", i), CreatedAt: t0.Add(time.Duration(i) * time.Minute)}
		if _, _, err := s.Append(ctx, row.hotel, b); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	if err := s.Cancel(ctx, "h1", "b-3"); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	got, err := s.ListByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(got) != 2 || got[0].ID != "b-0" || got[1].ID != "b-2" {
		t.Fatalf("unexpected bookings: %+v", got)
	}
}

func TestCancel(t *testing.T) {
	s := memory.New()
	seedHotel(t, s, "h1")
	ctx := context.Background()
	for i := 1; i <= 3; i++ {
		_, _, _ = s.Append(ctx, "h1", domain.Booking{ID: fmt.Sprintf("b-%d", i), PaymentRef: fmt.Sprintf("pi_%d", i)})
	}

	if err := s.Cancel(ctx, "h1", "missing"); !errors.Is(err, domain.ErrBookingNotFound) {
		t.Fatalf("want ErrBookingNotFound, got %v", err)
	}
	if err := s.Cancel(ctx, "h2", "b-1"); !errors.Is(err, domain.ErrHotelNotFound) {
		t.Fatalf("want ErrHotelNotFound, got %v", err)
	}
	if got, _ := s.ListByHotel(ctx, "h1"); len(got) != 3 {
		t.Fatalf("failed cancels must not mutate: %d bookings", len(got))
	}

	if err := s.Cancel(ctx, "h1", "b-2"); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	got, _ := s.ListByHotel(ctx, "h1")
	if len(got) != 2 || got[0].ID != "b-1" || got[1].ID != "b-3" {
		t.Fatalf("unexpected sequence after cancel: %+v", got)
	}
	if _, err := s.Locate(ctx, "b-2"); !errors.Is(err, domain.ErrBookingNotFound) {
		t.Fatalf("cancelled booking still located: %v", err)
	}
}

func TestUsers_UniqueEmailAndResetToken(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	if err := s.CreateUser(ctx, domain.User{ID: "u1", Email: "a@example.com"}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if err := s.CreateUser(ctx, domain.User{ID: "u2", Email: "a@example.com"}); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("want ErrEmailTaken, got %v", err)
	}

	now := time.Now()
	if err := s.SetResetToken(ctx, "u1", "tok", now.Add(time.Hour)); err != nil {
		t.Fatalf("SetResetToken: %v", err)
	}
	if _, err := s.GetUserByResetToken(ctx, "tok", now.Add(2*time.Hour)); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expired token matched: %v", err)
	}
	if u, err := s.GetUserByResetToken(ctx, "tok", now); err != nil || u.ID != "u1" {
		t.Fatalf("GetUserByResetToken: %+v %v", u, err)
	}
	if err := s.ResetPassword(ctx, "u1", "hash"); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}
	if _, err := s.GetUserByResetToken(ctx, "tok", now); err == nil {
		t.Fatal("token should be cleared after reset")
	}
}

func TestMessages_TransitionAndOrder(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	_ = s.CreateMessage(ctx, domain.ContactMessage{ID: "old", CreatedAt: base, Status: domain.StatusPending})
	_ = s.CreateMessage(ctx, domain.ContactMessage{ID: "new", CreatedAt: base.Add(time.Minute)})

	list, _ := s.ListMessages(ctx)
	if len(list) != 2 || list[0].ID != "new" {
		t.Fatalf("want newest first, got %+v", list)
	}

	if err := s.TransitionStatus(ctx, "old", domain.StatusPending, domain.StatusApproved); err != nil {
		t.Fatalf("TransitionStatus: %v", err)
	}
	err := s.TransitionStatus(ctx, "old", domain.StatusPending, domain.StatusRejected)
	if !errors.Is(err, domain.ErrMessageAlreadyProcessed) {
		t.Fatalf("want ErrMessageAlreadyProcessed, got %v", err)
	}
	if err := s.TransitionStatus(ctx, "nope", domain.StatusPending, domain.StatusApproved); !errors.Is(err, domain.ErrMessageNotFound) {
		t.Fatalf("want ErrMessageNotFound, got %v", err)
	}
	m, _ := s.MarkRead(ctx, "old")
	if !m.IsRead || m.Status != domain.StatusApproved {
		t.Fatalf("unexpected message: %+v", m)
	}
}
