package payments

import (
	"context"

	"github.com/pkg/errors"
)

// Provider is the payment processor contract used by checkout.
type Provider interface {
	CreatePaymentIntent(ctx context.Context, amount float64, metadata map[string]string) (*PaymentIntent, error)
	AuthorizeCard(ctx context.Context, cardFingerprint string) (*Authorization, error)
	TransferToPayee(ctx context.Context, amount float64, payeeAccountRef string) (*Transfer, error)
}

type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
}

type Transfer struct {
	ID string `json:"id"`
}

type Authorization struct {
	Approved      bool
	DeclineReason DeclineReason
}

type DeclineReason string

const (
	DeclineInsufficientFunds      DeclineReason = "insufficient_funds"
	DeclineLostCard               DeclineReason = "lost_card"
	DeclineStolenCard             DeclineReason = "stolen_card"
	DeclineExpiredCard            DeclineReason = "expired_card"
	DeclineIncorrectCVC           DeclineReason = "incorrect_cvc"
	DeclineProcessingError        DeclineReason = "processing_error"
	DeclineAuthenticationRequired DeclineReason = "authentication_required"
	DeclineGeneric                DeclineReason = "generic_decline"
)

var declineMessages = map[DeclineReason]string{
	DeclineInsufficientFunds:      "Your card has insufficient funds.",
	DeclineLostCard:               "Your card has been reported lost.",
	DeclineStolenCard:             "Your card has been reported stolen.",
	DeclineExpiredCard:            "Your card has expired.",
	DeclineIncorrectCVC:           "Your card's security code is incorrect.",
	DeclineProcessingError:        "An error occurred while processing your card. Try again.",
	DeclineAuthenticationRequired: "This card requires 3-D Secure authentication.",
	DeclineGeneric:                "Your card was declined.",
}

// Message is the user-facing explanation of the decline.
func (r DeclineReason) Message() string {
	if msg, ok := declineMessages[r]; ok {
		return msg
	}
	return declineMessages[DeclineGeneric]
}

// ProviderError is a failure reported by the processor itself, as opposed to a decline.
type ProviderError struct {
	Op      string
	Status  int
	Message string
}

func (e *ProviderError) Error() string {
	return "payment provider " + e.Op + " failed: " + e.Message
}

func IsProviderError(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe)
}
