package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"hotel_booking/internal/domain"
)

func scanMessage(s rowScanner) (domain.ContactMessage, error) {
	var m domain.ContactMessage
	var bookingID sql.NullString
	var status string
	if err := s.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Message, &bookingID,
		&m.IsRead, &m.IsCancellationRequest, &status, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return domain.ContactMessage{}, err
	}
	if bookingID.Valid {
		id := bookingID.String
		m.BookingID = &id
	}
	m.Status = domain.MessageStatus(status)
	return m, nil
}

func (r *Repo) CreateMessage(ctx context.Context, m domain.ContactMessage) error {
	_, err := r.db.ExecContext(ctx, insertMessageSQL,
		m.ID, m.Name, m.Email, m.Subject, m.Message, valStr(m.BookingID),
		m.IsRead, m.IsCancellationRequest, string(m.Status),
		m.CreatedAt.UTC(), m.UpdatedAt.UTC(),
	)
	if err != nil {
		return wrap("create message", err)
	}
	return nil
}

func (r *Repo) GetMessage(ctx context.Context, id string) (domain.ContactMessage, error) {
	m, err := scanMessage(r.db.QueryRowContext(ctx, getMessageSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ContactMessage{}, domain.ErrMessageNotFound
	}
	if err != nil {
		return domain.ContactMessage{}, wrap("get message", err)
	}
	return m, nil
}

func (r *Repo) ListMessages(ctx context.Context) ([]domain.ContactMessage, error) {
	rows, err := r.db.QueryContext(ctx, listMessagesSQL)
	if err != nil {
		return nil, wrap("list messages", err)
	}
	defer rows.Close()

	out := []domain.ContactMessage{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, wrap("scan message", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list messages", err)
	}
	return out, nil
}

func (r *Repo) MarkRead(ctx context.Context, id string) (domain.ContactMessage, error) {
	if _, err := r.db.ExecContext(ctx, markReadSQL, time.Now().UTC(), id); err != nil {
		return domain.ContactMessage{}, wrap("mark read", err)
	}
	return r.GetMessage(ctx, id)
}

func (r *Repo) TransitionStatus(ctx context.Context, id string, from, to domain.MessageStatus) error {
	res, err := r.db.ExecContext(ctx, transitionStatusSQL, string(to), time.Now().UTC(), id, string(from))
	if err != nil {
		return wrap("transition message", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrap("transition message", err)
	}
	if n > 0 {
		return nil
	}
	ok, err := r.exists(ctx, messageExistsSQL, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrMessageNotFound
	}
	return domain.ErrMessageAlreadyProcessed
}
