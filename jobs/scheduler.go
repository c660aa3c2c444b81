package jobs

import (
	"context"
	"time"

	"github.com/anjiri1684/educonnect/database"
	"github.com/anjiri1684/educonnect/models"
	"github.com/anjiri1684/educonnect/payments"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ScheduleRepairer re-materializes missing sessions for every enrolled student.
type ScheduleRepairer interface {
	RepairAll(ctx context.Context) (int, error)
}

type Deps struct {
	Payments  database.Collection[models.Payment]
	Provider  payments.Provider
	Reminders *SessionReminders
	Repairer  ScheduleRepairer
}

const jobTimeout = 10 * time.Minute

// Schedule registers every background job on a new cron. The caller starts and stops it.
func Schedule(deps Deps, log *zap.Logger) (*cron.Cron, error) {
	c := cron.New()

	jobs := []struct {
		spec string
		name string
		run  func(ctx context.Context) (int, error)
	}{
		{"*/5 * * * *", "session reminders", deps.Reminders.Run},
		{"*/30 * * * *", "payout retry", func(ctx context.Context) (int, error) {
			return payments.RetryPendingTransfers(ctx, deps.Payments, deps.Provider, log)
		}},
		{"0 3 * * *", "schedule repair", deps.Repairer.RepairAll},
	}

	for _, j := range jobs {
		if _, err := c.AddFunc(j.spec, func() { runJob(j.name, j.run, log) }); err != nil {
			return nil, err
		}
	}
	log.Info("✅ Cron jobs scheduled successfully.", zap.Int("jobs", len(jobs)))
	return c, nil
}

func runJob(name string, run func(ctx context.Context) (int, error), log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := run(ctx)
	if err != nil {
		log.Error("🔥 job failed", zap.String("job", name), zap.Int("processed", n), zap.Error(err))
		return
	}
	log.Info("job finished", zap.String("job", name), zap.Int("processed", n))
}
