package payments

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

// resty retries POSTs on transport errors; the processor dedups them on this header.
const idempotencyHeader = "Idempotency-Key"

type stripeError struct {
	Error struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}

// StripeProvider talks to a Stripe-compatible REST API for payment intents and payouts.
// Card authorization is decided locally from the test-card table.
type StripeProvider struct {
	*TestCardAuthorizer

	client   *resty.Client
	currency string
}

func NewStripeProvider(baseURL, secretKey, currency string, fingerprintKey []byte) *StripeProvider {
	client := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(secretKey).
		SetTimeout(15 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)

	return &StripeProvider{
		TestCardAuthorizer: NewTestCardAuthorizer(fingerprintKey),
		client:             client,
		currency:           currency,
	}
}

func (p *StripeProvider) CreatePaymentIntent(ctx context.Context, amount float64, metadata map[string]string) (*PaymentIntent, error) {
	form := map[string]string{
		"amount":                             toMinorUnits(amount),
		"currency":                           p.currency,
		"automatic_payment_methods[enabled]": "true",
	}
	for k, v := range metadata {
		form[fmt.Sprintf("metadata[%s]", k)] = v
	}

	var intent PaymentIntent
	var apiErr stripeError
	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader(idempotencyHeader, IdempotencyKey(ctx)).
		SetFormData(form).
		SetResult(&intent).
		SetError(&apiErr).
		Post("/v1/payment_intents")
	if err := checkResponse("create payment intent", resp, err, &apiErr); err != nil {
		return nil, err
	}
	return &intent, nil
}

func (p *StripeProvider) TransferToPayee(ctx context.Context, amount float64, payeeAccountRef string) (*Transfer, error) {
	var transfer Transfer
	var apiErr stripeError
	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader(idempotencyHeader, IdempotencyKey(ctx)).
		SetFormData(map[string]string{
			"amount":      toMinorUnits(amount),
			"currency":    p.currency,
			"destination": payeeAccountRef,
		}).
		SetResult(&transfer).
		SetError(&apiErr).
		Post("/v1/transfers")
	if err := checkResponse("transfer", resp, err, &apiErr); err != nil {
		return nil, err
	}
	return &transfer, nil
}

func checkResponse(op string, resp *resty.Response, err error, apiErr *stripeError) error {
	if err != nil {
		return errors.Wrapf(err, "payment provider %s", op)
	}
	if resp.IsError() {
		msg := apiErr.Error.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode())
		}
		return &ProviderError{Op: op, Status: resp.StatusCode(), Message: msg}
	}
	return nil
}

func toMinorUnits(amount float64) string {
	return strconv.FormatInt(int64(math.Round(amount*100)), 10)
}
