package domain

// PaymentStatus mirrors the processor's payment intent states.
type PaymentStatus string

const (
	PaymentSucceeded             PaymentStatus = "succeeded"
	PaymentProcessing            PaymentStatus = "processing"
	PaymentRequiresPaymentMethod PaymentStatus = "requires_payment_method"
	PaymentRequiresConfirmation  PaymentStatus = "requires_confirmation"
	PaymentRequiresAction        PaymentStatus = "requires_action"
	PaymentCanceled              PaymentStatus = "canceled"
)

// PaymentMetadata is attached when the intent is created and checked at booking time.
type PaymentMetadata struct {
	HotelID        string
	UserID         string
	AdultCount     int
	ChildrenCount  int
	NumberOfNights int
}

type PaymentIntent struct {
	ID           string
	ClientSecret string
	Status       PaymentStatus
	Amount       int64 // minor units
	Currency     string
	Metadata     PaymentMetadata
}

type PaymentIntentParams struct {
	Amount   int64
	Currency string
	Metadata PaymentMetadata
}
