package mysql

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	drv "github.com/go-sql-driver/mysql"

	"hotel_booking/internal/domain"
)

const errDupEntry = 1062

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func valJSON(v []string) any {
	if v == nil {
		return nil
	}
	b, _ := json.Marshal(v)
	return string(b)
}

func isDuplicate(err error) bool {
	var me *drv.MySQLError
	return errors.As(err, &me) && me.Number == errDupEntry
}

// wrap annotates a driver error; connection-level failures are marked
// transient so callers can tell an outage from a bad query.
func wrap(op string, err error) error {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, drv.ErrInvalidConn) ||
		errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrTransient, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// Open connects and pings with the pool settings used by the API and CLI.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		return nil, wrap("ping mysql", err)
	}
	return db, nil
}

func (r *Repo) exists(ctx context.Context, query, id string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, query, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, wrap("exists", err)
	}
	return true, nil
}

// -----------------------------------------------------------------------------
// hotels
// -----------------------------------------------------------------------------

func (r *Repo) UpsertHotel(ctx context.Context, h domain.Hotel) error {
	_, err := r.db.ExecContext(ctx, upsertHotelSQL,
		h.ID,
		h.OwnerID,
		h.Name,
		h.City,
		h.Country,
		h.Description,
		h.Type,
		h.AdultCount,
		h.ChildrenCount,
		valJSON(h.Facilities),
		h.PricePerNight,
		h.Rating,
		valJSON(h.ImageURLs),
		h.LastUpdated.UTC(),
	)
	if err != nil {
		return wrap("upsert hotel", err)
	}
	return nil
}

func (r *Repo) GetHotel(ctx context.Context, id string) (domain.Hotel, error) {
	var h domain.Hotel
	var desc sql.NullString
	var facilities, images []byte
	err := r.db.QueryRowContext(ctx, getHotelSQL, id).Scan(
		&h.ID, &h.OwnerID, &h.Name, &h.City, &h.Country, &desc, &h.Type,
		&h.AdultCount, &h.ChildrenCount,
		&facilities, &h.PricePerNight, &h.Rating, &images, &h.LastUpdated,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Hotel{}, domain.ErrHotelNotFound
	}
	if err != nil {
		return domain.Hotel{}, wrap("get hotel", err)
	}
	h.Description = desc.String
	if len(facilities) > 0 {
		_ = json.Unmarshal(facilities, &h.Facilities)
	}
	if len(images) > 0 {
		_ = json.Unmarshal(images, &h.ImageURLs)
	}
	return h, nil
}
