package payments

import (
	"context"

	"github.com/anjiri1684/educonnect/database"
	"github.com/anjiri1684/educonnect/metrics"
	"github.com/anjiri1684/educonnect/models"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// RetryPendingTransfers re-attempts every instructor payout left pending by checkout and
// returns how many completed.
func RetryPendingTransfers(ctx context.Context, store database.Collection[models.Payment], provider Provider, log *zap.Logger) (int, error) {
	pending, err := store.QueryByField(ctx, "transfer_status", models.TransferPending)
	if err != nil {
		return 0, errors.Wrap(err, "query pending transfers")
	}

	var completed int
	var errs error
	for _, p := range pending {
		if p.PayeeAccountRef == "" {
			continue
		}
		transfer, err := provider.TransferToPayee(WithIdempotencyKey(ctx, TransferKey(p.PaymentIntentID)), p.InstructorAmount, p.PayeeAccountRef)
		if err != nil {
			metrics.PayoutTransfers.WithLabelValues("pending").Inc()
			log.Warn("payout retry failed", zap.String("payment_id", p.ID.String()), zap.Error(err))
			continue
		}
		err = store.Update(ctx, p.ID, map[string]any{
			"transfer_status": models.TransferCompleted,
			"transfer_id":     transfer.ID,
		})
		if err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "record transfer for payment %s", p.ID))
			continue
		}
		metrics.PayoutTransfers.WithLabelValues("completed").Inc()
		completed++
	}
	return completed, errs
}
