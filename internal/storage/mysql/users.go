package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"hotel_booking/internal/domain"
)

func scanUser(s rowScanner) (domain.User, error) {
	var u domain.User
	var token sql.NullString
	var expires sql.NullTime
	if err := s.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.IsAdmin, &token, &expires); err != nil {
		return domain.User{}, err
	}
	if token.Valid {
		t := token.String
		u.ResetPasswordToken = &t
	}
	if expires.Valid {
		e := expires.Time
		u.ResetPasswordExpires = &e
	}
	return u, nil
}

func (r *Repo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx, insertUserSQL, u.ID, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.IsAdmin)
	if isDuplicate(err) {
		return domain.ErrEmailTaken
	}
	if err != nil {
		return wrap("create user", err)
	}
	return nil
}

func (r *Repo) getUser(ctx context.Context, query string, args ...any) (domain.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, wrap("get user", err)
	}
	return u, nil
}

func (r *Repo) GetUser(ctx context.Context, id string) (domain.User, error) {
	return r.getUser(ctx, getUserSQL, id)
}

func (r *Repo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.getUser(ctx, getUserByEmailSQL, email)
}

func (r *Repo) GetUserByResetToken(ctx context.Context, token string, now time.Time) (domain.User, error) {
	return r.getUser(ctx, getUserByResetTokenSQL, token, now.UTC())
}

// updateUserRow runs an UPDATE keyed by user id. MySQL reports zero affected
// rows for an unchanged row, so a miss is confirmed with a lookup.
func (r *Repo) updateUserRow(ctx context.Context, op, userID, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if isDuplicate(err) {
		return domain.ErrEmailTaken
	}
	if err != nil {
		return wrap(op, err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return nil
	}
	ok, err := r.exists(ctx, userExistsSQL, userID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *Repo) UpdateUser(ctx context.Context, u domain.User) error {
	return r.updateUserRow(ctx, "update user", u.ID, updateUserSQL,
		u.Email, u.PasswordHash, u.FirstName, u.LastName, u.IsAdmin, u.ID)
}

func (r *Repo) SetResetToken(ctx context.Context, userID, token string, expires time.Time) error {
	return r.updateUserRow(ctx, "set reset token", userID, setResetTokenSQL, token, expires.UTC(), userID)
}

func (r *Repo) ResetPassword(ctx context.Context, userID, hash string) error {
	return r.updateUserRow(ctx, "reset password", userID, resetPasswordSQL, hash, userID)
}
