package enrollment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/anjiri1684/educonnect/database"
	"github.com/anjiri1684/educonnect/database/dbtest"
	"github.com/anjiri1684/educonnect/models"
	"github.com/anjiri1684/educonnect/payments"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var (
	fingerprintKey = []byte("enrollment-test-key")
	errTransient   = errors.New("transient write error")
)

type sentNotification struct {
	From, To uuid.UUID
	Kind     models.NotificationKind
	Payload  map[string]any
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (n *fakeNotifier) Notify(_ context.Context, fromID, toID uuid.UUID, kind models.NotificationKind, payload map[string]any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{From: fromID, To: toID, Kind: kind, Payload: payload})
}

func (n *fakeNotifier) kinds(to uuid.UUID) []models.NotificationKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	var kinds []models.NotificationKind
	for _, s := range n.sent {
		if s.To == to {
			kinds = append(kinds, s.Kind)
		}
	}
	return kinds
}

type fakeProvider struct {
	*payments.TestCardAuthorizer

	intentErr   error
	transferErr error
	intents     []float64
	transfers   []float64
	intentIDs   []string
	keys        []string
}

func (p *fakeProvider) CreatePaymentIntent(ctx context.Context, amount float64, _ map[string]string) (*payments.PaymentIntent, error) {
	p.keys = append(p.keys, payments.IdempotencyKey(ctx))
	if p.intentErr != nil {
		return nil, p.intentErr
	}
	p.intents = append(p.intents, amount)
	id := "pi_" + uuid.NewString()
	p.intentIDs = append(p.intentIDs, id)
	return &payments.PaymentIntent{ID: id, ClientSecret: "secret"}, nil
}

func (p *fakeProvider) TransferToPayee(ctx context.Context, amount float64, _ string) (*payments.Transfer, error) {
	p.keys = append(p.keys, payments.IdempotencyKey(ctx))
	if p.transferErr != nil {
		return nil, p.transferErr
	}
	p.transfers = append(p.transfers, amount)
	return &payments.Transfer{ID: "tr_" + uuid.NewString()}, nil
}

type flakySessions struct {
	database.Collection[models.Session]
	failDates map[string]bool
}

func (f *flakySessions) Create(ctx context.Context, s *models.Session) error {
	if f.failDates[s.Date] {
		return errTransient
	}
	return f.Collection.Create(ctx, s)
}

type failingCreates[T any] struct {
	database.Collection[T]
	err error
}

func (f *failingCreates[T]) Create(context.Context, *T) error {
	return f.err
}

type failingUpdates[T any] struct {
	database.Collection[T]
}

func (f *failingUpdates[T]) Update(context.Context, uuid.UUID, map[string]any) error {
	return errTransient
}

type failingDeletes[T any] struct {
	database.Collection[T]
}

func (f *failingDeletes[T]) Delete(context.Context, uuid.UUID) error {
	return errTransient
}

type fixture struct {
	ctx        context.Context
	stores     *database.Stores
	notifier   *fakeNotifier
	provider   *fakeProvider
	coord      *Coordinator
	instructor *models.User
	student    *models.User
}

func newFixture(t *testing.T, wrap ...func(*database.Stores)) *fixture {
	t.Helper()
	f := &fixture{
		ctx:      context.Background(),
		stores:   dbtest.Stores(t),
		notifier: &fakeNotifier{},
		provider: &fakeProvider{TestCardAuthorizer: payments.NewTestCardAuthorizer(fingerprintKey)},
	}
	f.instructor = f.newUser(t, "Claire Martin", models.RoleInstructor)
	payout := "acct_claire"
	require.NoError(t, f.stores.Users.Update(f.ctx, f.instructor.ID, map[string]any{"payout_account_id": payout}))
	f.student = f.newUser(t, "Yanis Benali", models.RoleStudent)

	// wrappers apply after the fixture's own records exist
	healthy := *f.stores
	for _, w := range wrap {
		w(f.stores)
	}
	f.coord = f.newCoordinator()
	f.stores = &healthy
	return f
}

func (f *fixture) newCoordinator() *Coordinator {
	return NewCoordinator(f.stores, f.provider, f.notifier, Options{
		FingerprintKey:     fingerprintKey,
		Currency:           "eur",
		SessionConcurrency: 4,
		Now:                func() time.Time { return time.Date(2023, 12, 20, 10, 0, 0, 0, time.UTC) },
	}, nil)
}

func (f *fixture) newUser(t *testing.T, name, role string) *models.User {
	t.Helper()
	u := &models.User{FullName: name, Email: uuid.NewString() + "@example.com", Role: role}
	require.NoError(t, f.stores.Users.Create(f.ctx, u))
	return u
}

func (f *fixture) instructorActor() Actor {
	return Actor{ID: f.instructor.ID, Role: models.RoleInstructor}
}

func strPtr(s string) *string { return &s }

// newCourse stores a Mon/Wed course running 2024-01-01 to 2024-01-14: four sessions per student.
func (f *fixture) newCourse(t *testing.T, paid bool) *models.Course {
	t.Helper()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 14, 0, 0, 0, 0, time.UTC)
	c := &models.Course{
		InstructorID: f.instructor.ID,
		Title:        "Physique-chimie",
		Category:     "science",
		CourseType:   models.CourseTypeTimeBased,
		Schedule:     "Lun, Mer 14:00 - 16:00",
		StartTime:    "14:00",
		EndTime:      "16:00",
		StartDate:    &start,
		EndDate:      &end,
		WeekDays:     []int{1, 3},
		IsRepetitive: true,
		IsOnline:     true,
		OnlineLink:   strPtr("https://meet.example.org/physique"),
	}
	if paid {
		c.IsPaid = true
		c.BasePrice = 100
		c.FinalPrice = 102.5
	}
	require.NoError(t, f.stores.Courses.Create(f.ctx, c))
	return c
}

func (f *fixture) reload(t *testing.T, courseID uuid.UUID) *models.Course {
	t.Helper()
	c, err := f.stores.Courses.Get(f.ctx, courseID)
	require.NoError(t, err)
	return c
}

func (f *fixture) sessionsOf(t *testing.T, field string, value any) []models.Session {
	t.Helper()
	list, err := f.stores.Sessions.QueryByField(f.ctx, field, value)
	require.NoError(t, err)
	return list
}
