package app

import (
	"context"
	"fmt"

	"hotel_booking/internal/domain"
)

// PaymentVerifier confirms that a client-supplied payment reference is a
// succeeded charge made for this hotel, this caller and this stay.
type PaymentVerifier struct {
	processor domain.PaymentProcessor
}

func NewPaymentVerifier(p domain.PaymentProcessor) *PaymentVerifier {
	return &PaymentVerifier{processor: p}
}

// Verify looks the reference up at the processor. Metadata is compared before
// status, so a foreign intent is reported as a mismatch whatever its state.
func (v *PaymentVerifier) Verify(ctx context.Context, ref string, want domain.PaymentMetadata) (domain.PaymentIntent, error) {
	pi, err := v.processor.RetrievePaymentIntent(ctx, ref)
	if err != nil {
		return domain.PaymentIntent{}, fmt.Errorf("retrieve payment %s: %w", ref, err)
	}
	if pi.Metadata.HotelID != want.HotelID || pi.Metadata.UserID != want.UserID {
		return pi, domain.ErrPaymentMismatch
	}
	if pi.Metadata.AdultCount != want.AdultCount ||
		pi.Metadata.ChildrenCount != want.ChildrenCount ||
		pi.Metadata.NumberOfNights != want.NumberOfNights {
		return pi, domain.ErrPaymentMismatch
	}
	if pi.Status != domain.PaymentSucceeded {
		return pi, domain.ErrPaymentNotSucceeded
	}
	return pi, nil
}
