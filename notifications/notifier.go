package notifications

import (
	"context"
	"sync"

	"github.com/anjiri1684/educonnect/database"
	"github.com/anjiri1684/educonnect/models"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var ErrNotificationNotFound = errors.New("notification not found")

// Pusher delivers a live event to a connected user.
type Pusher interface {
	Push(userID uuid.UUID, v any)
}

// Notifier records in-app notifications and fans them out to live sockets and e-mail.
// Delivery is fire-and-forget: failures are logged, never returned.
type Notifier struct {
	store  database.Collection[models.Notification]
	users  database.Collection[models.User]
	pusher Pusher
	mailer Mailer
	log    *zap.Logger

	wg sync.WaitGroup
}

// NewNotifier wires the delivery channels. pusher and mailer may be nil.
func NewNotifier(store database.Collection[models.Notification], users database.Collection[models.User], pusher Pusher, mailer Mailer, log *zap.Logger) *Notifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Notifier{store: store, users: users, pusher: pusher, mailer: mailer, log: log}
}

func (n *Notifier) Notify(ctx context.Context, fromID, toID uuid.UUID, kind models.NotificationKind, payload map[string]any) {
	rec := &models.Notification{FromID: fromID, ToID: toID, Kind: kind, Payload: payload}
	if err := n.store.Create(ctx, rec); err != nil {
		n.log.Error("🔥 failed to store notification",
			zap.String("to_id", toID.String()), zap.String("kind", string(kind)), zap.Error(err))
		return
	}

	if n.pusher != nil {
		n.pusher.Push(toID, rec)
	}
	if n.mailer == nil {
		return
	}
	subject, body, ok := render(kind, payload)
	if !ok {
		return
	}

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		n.email(context.WithoutCancel(ctx), toID, subject, body)
	}()
}

func (n *Notifier) email(ctx context.Context, toID uuid.UUID, subject, body string) {
	user, err := n.users.Get(ctx, toID)
	if err != nil {
		n.log.Warn("notification recipient not found for email", zap.String("to_id", toID.String()), zap.Error(err))
		return
	}
	if err := n.mailer.Send(ctx, Recipient{Name: user.FullName, Email: user.Email}, subject, body); err != nil {
		n.log.Error("🔥 failed to send email", zap.String("to", user.Email), zap.Error(err))
		return
	}
	n.log.Debug("✅ email sent", zap.String("to", user.Email))
}

// Wait blocks until every in-flight e-mail has been attempted.
func (n *Notifier) Wait() {
	n.wg.Wait()
}

func (n *Notifier) List(ctx context.Context, userID uuid.UUID) ([]models.Notification, error) {
	list, err := n.store.QueryByField(ctx, "to_id", userID)
	return list, errors.Wrap(err, "list notifications")
}

func (n *Notifier) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	rec, err := n.store.Get(ctx, notificationID)
	if errors.Is(err, database.ErrNotFound) || (err == nil && rec.ToID != userID) {
		return ErrNotificationNotFound
	}
	if err != nil {
		return errors.Wrap(err, "load notification")
	}
	return errors.Wrap(n.store.Update(ctx, notificationID, map[string]any{"read": true}), "mark notification read")
}
