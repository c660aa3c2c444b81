package jobs

import (
	"context"
	"time"

	"github.com/anjiri1684/educonnect/database"
	"github.com/anjiri1684/educonnect/models"
	"github.com/anjiri1684/educonnect/scheduling"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	reminderLead   = 60 * time.Minute
	reminderWindow = 5 * time.Minute
)

type Notifier interface {
	Notify(ctx context.Context, fromID, toID uuid.UUID, kind models.NotificationKind, payload map[string]any)
}

// SessionReminders tells each student about a session starting in about an hour. Session
// dates and times are wall-clock values in loc.
type SessionReminders struct {
	sessions database.Collection[models.Session]
	notifier Notifier
	loc      *time.Location
	now      func() time.Time
	log      *zap.Logger
}

func NewSessionReminders(sessions database.Collection[models.Session], notifier Notifier, loc *time.Location, log *zap.Logger) *SessionReminders {
	if loc == nil {
		loc = time.Local
	}
	return &SessionReminders{sessions: sessions, notifier: notifier, loc: loc, now: time.Now, log: log}
}

// Run sends reminders for sessions starting in [now+60m, now+65m) and returns how many went out.
// A session is reminded at most once.
func (j *SessionReminders) Run(ctx context.Context) (int, error) {
	j.log.Debug("Running job: SessionReminders...")

	now := j.now().In(j.loc)
	lower := now.Add(reminderLead)
	upper := lower.Add(reminderWindow)

	dates := []string{lower.Format(scheduling.DateLayout)}
	if d := upper.Format(scheduling.DateLayout); d != dates[0] {
		dates = append(dates, d)
	}

	var sent int
	for _, date := range dates {
		upcoming, err := j.sessions.QueryByField(ctx, "date", date)
		if err != nil {
			return sent, errors.Wrap(err, "error checking for upcoming sessions")
		}
		for _, s := range upcoming {
			if s.ReminderSentAt != nil {
				continue
			}
			start, err := time.ParseInLocation(scheduling.DateLayout+" 15:04", s.Date+" "+s.StartTime, j.loc)
			if err != nil || start.Before(lower) || !start.Before(upper) {
				continue
			}

			payload := map[string]any{
				"session_id": s.ID.String(),
				"title":      s.Title,
				"date":       s.Date,
				"start_time": s.StartTime,
			}
			if s.CourseID != nil {
				payload["course_id"] = s.CourseID.String()
			}
			if s.OnlineLink != nil {
				payload["online_link"] = *s.OnlineLink
			}
			j.notifier.Notify(ctx, s.CreatedBy, s.OwnerID, models.KindSessionReminder, payload)

			if err := j.sessions.Update(ctx, s.ID, map[string]any{"reminder_sent_at": now}); err != nil {
				j.log.Warn("failed to mark session reminded", zap.String("session_id", s.ID.String()), zap.Error(err))
			}
			sent++
		}
	}
	return sent, nil
}
