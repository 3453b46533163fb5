package domain

import "errors"

// Error kinds. Every error surfaced by the app layer wraps exactly one of these.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrPrecondition = errors.New("precondition failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrTransient    = errors.New("transient failure")
)

// Error is a named failure with a stable code that clients can switch on.
type Error struct {
	Kind error
	Code string
	Msg  string
}

func (e *Error) Error() string { return e.Msg }
func (e *Error) Unwrap() error { return e.Kind }

func newErr(kind error, code, msg string) *Error { return &Error{Kind: kind, Code: code, Msg: msg} }

var (
	ErrHotelNotFound   = newErr(ErrNotFound, "HotelNotFound", "hotel not found")
	ErrBookingNotFound = newErr(ErrNotFound, "BookingNotFound", "booking not found")
	ErrMessageNotFound = newErr(ErrNotFound, "MessageNotFound", "message not found")
	ErrUserNotFound    = newErr(ErrNotFound, "UserNotFound", "user not found")
	ErrPaymentNotFound = newErr(ErrNotFound, "PaymentNotFound", "payment not found")

	ErrPaymentMismatch         = newErr(ErrConflict, "PaymentMismatch", "payment intent mismatch")
	ErrEmailTaken              = newErr(ErrConflict, "EmailTaken", "email already exists")
	ErrMessageAlreadyProcessed = newErr(ErrConflict, "MessageAlreadyProcessed", "cancellation request already processed")
	ErrPaymentAlreadyUsed      = newErr(ErrConflict, "PaymentAlreadyUsed", "payment already used by a cancelled booking")

	ErrPaymentNotSucceeded     = newErr(ErrPrecondition, "PaymentNotSucceeded", "payment not succeeded")
	ErrInvalidBooking          = newErr(ErrPrecondition, "InvalidBooking", "invalid booking request")
	ErrNotACancellationRequest = newErr(ErrPrecondition, "NotACancellationRequest", "this message is not a cancellation request")
	ErrMissingBookingReference = newErr(ErrPrecondition, "MissingBookingReference", "no booking id associated with this request")
	ErrInvalidDecision         = newErr(ErrPrecondition, "InvalidDecision", "decision must be approved or rejected")
	ErrInvalidResetToken       = newErr(ErrPrecondition, "InvalidResetToken", "password reset token is invalid or has expired")
	ErrWeakPassword            = newErr(ErrPrecondition, "WeakPassword", "password does not meet the password policy")

	ErrInvalidCredentials = newErr(ErrUnauthorized, "InvalidCredentials", "invalid email or password")
	ErrNotAuthenticated   = newErr(ErrUnauthorized, "Unauthorized", "unauthorized")
	ErrAdminRequired      = newErr(ErrForbidden, "Forbidden", "admin privileges required")
)

// Code returns the stable code of err, or "" when err carries none.
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Invalid returns an InvalidBooking-coded precondition error with a specific detail.
func Invalid(msg string) error { return newErr(ErrPrecondition, "InvalidBooking", msg) }
