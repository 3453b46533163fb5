package mysql

import (
	"context"
	"database/sql"
	"errors"

	"hotel_booking/internal/domain"
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(s rowScanner) (domain.Booking, error) {
	var b domain.Booking
	err := s.Scan(
		&b.ID, &b.HotelID, &b.UserID, &b.PaymentRef, &b.FirstName, &b.LastName, &b.Email,
		&b.AdultCount, &b.ChildrenCount, &b.CheckIn, &b.CheckOut, &b.TotalCost, &b.CreatedAt,
	)
	return b, err
}

// Append inserts the booking with a single INSERT ... SELECT so concurrent
// appends to one hotel never overwrite each other. An unknown hotel yields no
// row to insert, so it reports HotelNotFound before the payment_ref check.
func (r *Repo) Append(ctx context.Context, hotelID string, b domain.Booking) (domain.Booking, bool, error) {
	res, err := r.db.ExecContext(ctx, appendBookingSQL,
		b.ID, b.UserID, b.PaymentRef, b.FirstName, b.LastName, b.Email,
		b.AdultCount, b.ChildrenCount, b.CheckIn.UTC(), b.CheckOut.UTC(), b.TotalCost, b.CreatedAt.UTC(),
		hotelID,
	)
	if isDuplicate(err) {
		existing, gerr := scanBooking(r.db.QueryRowContext(ctx, getBookingByPaymentSQL, b.PaymentRef))
		if errors.Is(gerr, sql.ErrNoRows) {
			// the row holding the reference is a cancelled booking
			return domain.Booking{}, false, domain.ErrPaymentAlreadyUsed
		}
		if gerr != nil {
			return domain.Booking{}, false, wrap("get booking by payment", gerr)
		}
		return existing, false, nil
	}
	if err != nil {
		return domain.Booking{}, false, wrap("append booking", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.Booking{}, false, wrap("append booking", err)
	}
	if n == 0 {
		return domain.Booking{}, false, domain.ErrHotelNotFound
	}
	b.HotelID = hotelID
	return b, true, nil
}

func (r *Repo) Cancel(ctx context.Context, hotelID, bookingID string) error {
	res, err := r.db.ExecContext(ctx, cancelBookingSQL, hotelID, bookingID)
	if err != nil {
		return wrap("cancel booking", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrap("cancel booking", err)
	}
	if n > 0 {
		return nil
	}
	ok, err := r.exists(ctx, hotelExistsSQL, hotelID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrHotelNotFound
	}
	return domain.ErrBookingNotFound
}

func (r *Repo) Locate(ctx context.Context, bookingID string) (domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx, getBookingSQL, bookingID))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Booking{}, domain.ErrBookingNotFound
	}
	if err != nil {
		return domain.Booking{}, wrap("locate booking", err)
	}
	return b, nil
}

func (r *Repo) ListByHotel(ctx context.Context, hotelID string) ([]domain.Booking, error) {
	return r.listBookings(ctx, listBookingsSQL, hotelID)
}

func (r *Repo) ListByUser(ctx context.Context, userID string) ([]domain.Booking, error) {
	return r.listBookings(ctx, listUserBookingsSQL, userID)
}

func (r *Repo) listBookings(ctx context.Context, query, arg string) ([]domain.Booking, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, wrap("list bookings", err)
	}
	defer rows.Close()

	var out []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, wrap("scan booking", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list bookings", err)
	}
	return out, nil
}
