package payments

import (
	"context"

	"github.com/google/uuid"
)

type idempotencyKey struct{}

// WithIdempotencyKey makes the provider send key with the next money-moving request, so the
// processor executes it at most once however often it is retried.
func WithIdempotencyKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, idempotencyKey{}, key)
}

// IdempotencyKey returns the key carried by ctx, or a fresh one. A fresh key still covers the
// transport retries of a single call.
func IdempotencyKey(ctx context.Context) string {
	if key, ok := ctx.Value(idempotencyKey{}).(string); ok && key != "" {
		return key
	}
	return uuid.NewString()
}

// IntentKey identifies one checkout attempt of a student for a course.
func IntentKey(courseID, studentID uuid.UUID, attempt string) string {
	return "intent_" + courseID.String() + "_" + studentID.String() + "_" + attempt
}

// TransferKey ties a payout to the payment intent it pays out, so a retried payout never
// moves the money twice.
func TransferKey(paymentIntentID string) string {
	return "transfer_" + paymentIntentID
}
