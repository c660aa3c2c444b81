package jobs

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/anjiri1684/educonnect/database/dbtest"
	"github.com/anjiri1684/educonnect/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingNotifier struct {
	mu   sync.Mutex
	sent map[uuid.UUID]int
}

func (n *countingNotifier) Notify(_ context.Context, _, toID uuid.UUID, kind models.NotificationKind, _ map[string]any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if kind != models.KindSessionReminder {
		return
	}
	if n.sent == nil {
		n.sent = map[uuid.UUID]int{}
	}
	n.sent[toID]++
}

func TestSessionReminders(t *testing.T) {
	ctx := context.Background()
	stores := dbtest.Stores(t)
	notifier := &countingNotifier{}

	newSession := func(date, start string) *models.Session {
		s := &models.Session{
			Title: "Physique-chimie", Date: date, StartTime: start, EndTime: "23:00",
			OwnerID: uuid.New(), CreatedBy: uuid.New(),
		}
		require.NoError(t, stores.Sessions.Create(ctx, s))
		return s
	}
	soon := newSession("2024-01-08", "15:02")
	tooEarly := newSession("2024-01-08", "14:30")
	tooLate := newSession("2024-01-08", "15:05")
	otherDay := newSession("2024-01-09", "15:02")

	j := NewSessionReminders(stores.Sessions, notifier, time.UTC, zap.NewNop())
	j.now = func() time.Time { return time.Date(2024, 1, 8, 14, 0, 0, 0, time.UTC) }

	n, err := j.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, notifier.sent[soon.OwnerID])
	for _, s := range []*models.Session{tooEarly, tooLate, otherDay} {
		assert.Zero(t, notifier.sent[s.OwnerID])
	}

	// a rerun over the same window does not remind twice
	n, err = j.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestSessionRemindersAcrossMidnight(t *testing.T) {
	ctx := context.Background()
	stores := dbtest.Stores(t)
	notifier := &countingNotifier{}

	s := &models.Session{Title: "Late class", Date: "2024-01-09", StartTime: "00:02", OwnerID: uuid.New(), CreatedBy: uuid.New()}
	require.NoError(t, stores.Sessions.Create(ctx, s))

	j := NewSessionReminders(stores.Sessions, notifier, time.UTC, zap.NewNop())
	j.now = func() time.Time { return time.Date(2024, 1, 8, 22, 59, 0, 0, time.UTC) }

	n, err := j.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
