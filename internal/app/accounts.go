package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"hotel_booking/internal/domain"
)

const passwordSpecials = `!@#$%^&*(),.?":{}|<>`

type AccountService struct {
	users    domain.UserRepository
	notify   *Dispatcher
	resetTTL time.Duration
	resetURL string
	now      func() time.Time
}

// NewAccountService builds reset links as frontendURL + "/reset-password/" + token.
func NewAccountService(u domain.UserRepository, d *Dispatcher, frontendURL string, resetTTL time.Duration) *AccountService {
	if resetTTL <= 0 {
		resetTTL = time.Hour
	}
	return &AccountService{
		users:    u,
		notify:   d,
		resetTTL: resetTTL,
		resetURL: strings.TrimRight(frontendURL, "/") + "/reset-password/",
		now:      func() time.Time { return time.Now().UTC() },
	}
}

type Registration struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

func (s *AccountService) Register(ctx context.Context, r Registration) (domain.User, error) {
	if err := CheckPasswordPolicy(r.Password); err != nil {
		return domain.User{}, err
	}
	hash, err := hashPassword(r.Password)
	if err != nil {
		return domain.User{}, err
	}
	u := domain.User{
		ID:           uuid.NewString(),
		Email:        normalizeEmail(r.Email),
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(r.FirstName),
		LastName:     strings.TrimSpace(r.LastName),
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		return domain.User{}, err
	}
	log.Info().Str("user_id", u.ID).Msg("user registered")
	return u, nil
}

// Login answers the same error for an unknown email and a wrong password.
func (s *AccountService) Login(ctx context.Context, email, password string) (domain.User, error) {
	u, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, domain.ErrNotFound) {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return domain.User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	return u, nil
}

func (s *AccountService) Get(ctx context.Context, id string) (domain.User, error) {
	if id == "" {
		return domain.User{}, domain.ErrNotAuthenticated
	}
	return s.users.GetUser(ctx, id)
}

// EnsureAdmin creates an admin account, or promotes and re-keys an existing one.
// r.Password may be plaintext or an existing bcrypt hash.
func (s *AccountService) EnsureAdmin(ctx context.Context, r Registration) (domain.User, bool, error) {
	hash, err := adminCredential(r.Password)
	if err != nil {
		return domain.User{}, false, err
	}
	u, err := s.users.GetUserByEmail(ctx, normalizeEmail(r.Email))
	switch {
	case errors.Is(err, domain.ErrNotFound):
		u = domain.User{
			ID:           uuid.NewString(),
			Email:        normalizeEmail(r.Email),
			PasswordHash: hash,
			FirstName:    r.FirstName,
			LastName:     r.LastName,
			IsAdmin:      true,
		}
		if err := s.users.CreateUser(ctx, u); err != nil {
			return domain.User{}, false, err
		}
		return u, true, nil
	case err != nil:
		return domain.User{}, false, err
	}
	u.IsAdmin = true
	u.PasswordHash = hash
	if r.FirstName != "" {
		u.FirstName = r.FirstName
	}
	if r.LastName != "" {
		u.LastName = r.LastName
	}
	if err := s.users.UpdateUser(ctx, u); err != nil {
		return domain.User{}, false, err
	}
	return u, false, nil
}

// RequestPasswordReset never reveals whether the email is registered.
func (s *AccountService) RequestPasswordReset(ctx context.Context, email string) error {
	u, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	token, err := newResetToken()
	if err != nil {
		return err
	}
	if err := s.users.SetResetToken(ctx, u.ID, token, s.now().Add(s.resetTTL)); err != nil {
		return err
	}
	s.notify.Dispatch("password_reset", passwordReset(u, s.resetURL+token, s.resetTTL))
	return nil
}

func (s *AccountService) ValidateResetToken(ctx context.Context, token string) error {
	_, err := s.userByResetToken(ctx, token)
	return err
}

func (s *AccountService) ResetPassword(ctx context.Context, token, password, confirm string) error {
	if password != confirm {
		return weakPassword("passwords do not match")
	}
	if err := CheckPasswordPolicy(password); err != nil {
		return err
	}
	u, err := s.userByResetToken(ctx, token)
	if err != nil {
		return err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	return s.users.ResetPassword(ctx, u.ID, hash)
}

func (s *AccountService) userByResetToken(ctx context.Context, token string) (domain.User, error) {
	if strings.TrimSpace(token) == "" {
		return domain.User{}, domain.ErrInvalidResetToken
	}
	u, err := s.users.GetUserByResetToken(ctx, token, s.now())
	if errors.Is(err, domain.ErrNotFound) {
		return domain.User{}, domain.ErrInvalidResetToken
	}
	return u, err
}

// CheckPasswordPolicy requires 8+ characters with upper, lower, digit and special.
func CheckPasswordPolicy(pw string) error {
	var upper, lower, digit, special bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}
	var missing []string
	if len(pw) < 8 {
		missing = append(missing, "at least 8 characters")
	}
	if !upper {
		missing = append(missing, "an uppercase letter")
	}
	if !lower {
		missing = append(missing, "a lowercase letter")
	}
	if !digit {
		missing = append(missing, "a number")
	}
	if !special {
		missing = append(missing, "a special character")
	}
	if len(missing) > 0 {
		return weakPassword("password must contain " + strings.Join(missing, ", "))
	}
	return nil
}

// hashPassword always hashes; user input is never trusted as a stored hash.
func hashPassword(secret string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// adminCredential keeps an operator-supplied bcrypt hash as is and hashes
// anything else.
func adminCredential(secret string) (string, error) {
	if _, err := bcrypt.Cost([]byte(secret)); err == nil {
		return secret, nil
	}
	return hashPassword(secret)
}

func newResetToken() (string, error) {
	var b [32]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("reset token: %w", err)
	}
	return hex.EncodeToString(b[:]), nil
}

func weakPassword(msg string) error {
	return &domain.Error{Kind: domain.ErrPrecondition, Code: domain.ErrWeakPassword.Code, Msg: msg}
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
