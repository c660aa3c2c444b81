package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anjiri1684/educonnect/assistant"
	"github.com/anjiri1684/educonnect/courses"
	"github.com/anjiri1684/educonnect/database"
	"github.com/anjiri1684/educonnect/database/dbtest"
	"github.com/anjiri1684/educonnect/enrollment"
	"github.com/anjiri1684/educonnect/handlers"
	"github.com/anjiri1684/educonnect/models"
	"github.com/anjiri1684/educonnect/notifications"
	"github.com/anjiri1684/educonnect/payments"
	"github.com/anjiri1684/educonnect/routes"
	ws "github.com/anjiri1684/educonnect/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "handler-secret"

type api struct {
	app        *fiber.App
	stores     *database.Stores
	notifier   *notifications.Notifier
	instructor *models.User
	student    *models.User
}

func newAPI(t *testing.T, wrap ...func(*database.Stores)) *api {
	t.Helper()

	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/payment_intents":
			_, _ = w.Write([]byte(`{"id":"pi_1","client_secret":"pi_1_secret"}`))
		case "/v1/transfers":
			_, _ = w.Write([]byte(`{"id":"tr_1"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(gateway.Close)

	key := []byte("fingerprint-key")
	stores := dbtest.Stores(t)
	hub := ws.NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	notifier := notifications.NewNotifier(stores.Notifications, stores.Users, hub, nil, nil)
	wrapped := *stores
	for _, w := range wrap {
		w(&wrapped)
	}
	coordinator := enrollment.NewCoordinator(&wrapped,
		payments.NewStripeProvider(gateway.URL, "sk_test", "eur", key),
		notifier,
		enrollment.Options{FingerprintKey: key, Currency: "eur"},
		nil)

	h := handlers.New(handlers.Handler{
		Courses:    courses.NewService(stores.Courses, courses.DefaultPlatformFeeRate, nil),
		Enrollment: coordinator,
		Notifier:   notifier,
		Hub:        hub,
		Assistant:  assistant.NewService(nil, assistant.NewConversationStore(0), nil),
	})
	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler(nil)})
	routes.Setup(app, h, routes.Options{JWTSecret: secret, CheckoutRatePerMinute: 100})

	account := "acct_claire"
	a := &api{
		app:        app,
		stores:     stores,
		notifier:   notifier,
		instructor: &models.User{FullName: "Claire", Email: "claire@example.com", Role: models.RoleInstructor, PayoutAccountID: &account},
		student:    &models.User{FullName: "Sam", Email: "sam@example.com", Role: models.RoleStudent},
	}
	require.NoError(t, stores.Users.Create(context.Background(), a.instructor))
	require.NoError(t, stores.Users.Create(context.Background(), a.student))
	t.Cleanup(notifier.Wait)
	return a
}

func (a *api) token(t *testing.T, u *models.User) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": u.ID.String(),
		"role":    u.Role,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func (a *api) do(t *testing.T, as *models.User, method, path string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if as != nil {
		req.Header.Set("Authorization", "Bearer "+a.token(t, as))
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

func (a *api) createCourse(t *testing.T, paid bool) string {
	t.Helper()
	body := map[string]any{
		"title":         "Conversational French",
		"category":      "languages",
		"course_type":   "time-based",
		"start_time":    "14:00",
		"end_time":      "16:00",
		"start_date":    "2024-01-01",
		"end_date":      "2024-01-14",
		"week_days":     []int{1, 3},
		"is_repetitive": true,
		"is_online":     true,
		"online_link":   "https://meet.example.com/french",
		"is_paid":       paid,
	}
	if paid {
		body["base_price"] = 100
	}
	status, out := a.do(t, a.instructor, fiber.MethodPost, "/api/v1/courses", body)
	require.Equal(t, fiber.StatusCreated, status, out)
	return out["id"].(string)
}

func card(number string) map[string]any {
	return map[string]any{
		"cardholder_name": "Sam Student",
		"card_number":     number,
		"expiry":          "12/30",
		"cvv":             "123",
	}
}

func TestHealthIsPublic(t *testing.T) {
	a := newAPI(t)
	status, out := a.do(t, nil, fiber.MethodGet, "/health", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "ok", out["status"])

	status, _ = a.do(t, nil, fiber.MethodGet, "/api/v1/sessions/me", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestCreateAndGetCourse(t *testing.T) {
	a := newAPI(t)
	id := a.createCourse(t, true)

	status, out := a.do(t, a.student, fiber.MethodGet, "/api/v1/courses/"+id, nil)
	require.Equal(t, fiber.StatusOK, status)
	pricing := out["pricing"].(map[string]any)
	assert.Equal(t, 102.5, pricing["final_price"])
	assert.Equal(t, 2.5, pricing["platform_fee"])
}

func TestCreateCourseRequiresInstructor(t *testing.T) {
	a := newAPI(t)
	status, _ := a.do(t, a.student, fiber.MethodPost, "/api/v1/courses", map[string]any{"title": "Nope"})
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestInvalidIDIsBadRequest(t *testing.T) {
	a := newAPI(t)
	status, out := a.do(t, a.student, fiber.MethodGet, "/api/v1/courses/not-a-uuid", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Invalid courseId", out["error"])

	status, _ = a.do(t, a.student, fiber.MethodGet, "/api/v1/courses/"+uuid.NewString(), nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestRequestAndAcceptFlow(t *testing.T) {
	a := newAPI(t)
	id := a.createCourse(t, false)

	status, out := a.do(t, a.student, fiber.MethodPost, "/api/v1/courses/"+id+"/enrollment-requests", nil)
	require.Equal(t, fiber.StatusCreated, status, out)
	requestID := out["id"].(string)

	status, _ = a.do(t, a.student, fiber.MethodPost, "/api/v1/courses/"+id+"/enrollment-requests", nil)
	assert.Equal(t, fiber.StatusConflict, status)

	status, _ = a.do(t, a.student, fiber.MethodPost, "/api/v1/enrollment-requests/"+requestID+"/accept", nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, out = a.do(t, a.instructor, fiber.MethodPost, "/api/v1/enrollment-requests/"+requestID+"/accept", nil)
	require.Equal(t, fiber.StatusOK, status, out)
	assert.EqualValues(t, 4, out["sessions_created"])

	req := httptest.NewRequest(fiber.MethodGet, "/api/v1/sessions/me", nil)
	req.Header.Set("Authorization", "Bearer "+a.token(t, a.student))
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	var sessions []models.Session
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sessions))
	require.Len(t, sessions, 4)
	assert.Equal(t, "2024-01-01", sessions[0].Date)
}

func TestCheckout(t *testing.T) {
	a := newAPI(t)
	id := a.createCourse(t, true)

	status, out := a.do(t, a.student, fiber.MethodPost, "/api/v1/courses/"+id+"/checkout", card("4000 0000 0000 9987"))
	assert.Equal(t, fiber.StatusPaymentRequired, status)
	assert.Equal(t, string(payments.DeclineLostCard), out["decline_reason"])

	status, out = a.do(t, a.student, fiber.MethodPost, "/api/v1/courses/"+id+"/checkout", map[string]any{"card_number": "42"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.NotEmpty(t, out["fields"])

	status, out = a.do(t, a.student, fiber.MethodPost, "/api/v1/courses/"+id+"/checkout", card("4242424242424242"))
	require.Equal(t, fiber.StatusCreated, status, out)
	assert.EqualValues(t, 4, out["sessions_created"])
	assert.Empty(t, out["warnings"])

	status, _ = a.do(t, a.student, fiber.MethodPost, "/api/v1/courses/"+id+"/checkout", card("4242424242424242"))
	assert.Equal(t, fiber.StatusConflict, status)
}

func TestDeleteCourseByOtherInstructor(t *testing.T) {
	a := newAPI(t)
	id := a.createCourse(t, false)

	other := &models.User{FullName: "Omar", Email: "omar@example.com", Role: models.RoleInstructor}
	require.NoError(t, a.stores.Users.Create(context.Background(), other))

	status, _ := a.do(t, other, fiber.MethodDelete, "/api/v1/courses/"+id, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _ = a.do(t, a.instructor, fiber.MethodDelete, "/api/v1/courses/"+id, nil)
	assert.Equal(t, fiber.StatusOK, status)

	status, _ = a.do(t, a.instructor, fiber.MethodGet, "/api/v1/courses/"+id, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestNotificationsAreScopedToCaller(t *testing.T) {
	a := newAPI(t)
	id := a.createCourse(t, false)
	status, _ := a.do(t, a.student, fiber.MethodPost, "/api/v1/courses/"+id+"/enrollment-requests", nil)
	require.Equal(t, fiber.StatusCreated, status)

	req := httptest.NewRequest(fiber.MethodGet, "/api/v1/notifications", nil)
	req.Header.Set("Authorization", "Bearer "+a.token(t, a.instructor))
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	var list []models.Notification
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list, 1)

	status, _ = a.do(t, a.student, fiber.MethodPost, "/api/v1/notifications/"+list[0].ID.String()+"/read", nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = a.do(t, a.instructor, fiber.MethodPost, "/api/v1/notifications/"+list[0].ID.String()+"/read", nil)
	assert.Equal(t, fiber.StatusNoContent, status)
}

func TestUploadsDisabledWithoutStorage(t *testing.T) {
	a := newAPI(t)
	status, _ := a.do(t, a.instructor, fiber.MethodPost, "/api/v1/uploads/thumbnail-signature", nil)
	assert.Equal(t, fiber.StatusServiceUnavailable, status)
}

type brokenPayments struct {
	database.Collection[models.Payment]
}

func (brokenPayments) Create(context.Context, *models.Payment) error {
	return errors.New(`pq: duplicate key value violates unique constraint "idx_payments_payment_intent_id" host=db-internal-7`)
}

func TestCheckoutIncompleteHidesStoreError(t *testing.T) {
	a := newAPI(t, func(s *database.Stores) {
		s.Payments = brokenPayments{Collection: s.Payments}
	})
	id := a.createCourse(t, true)

	status, out := a.do(t, a.student, fiber.MethodPost, "/api/v1/courses/"+id+"/checkout", card("4242424242424242"))
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, enrollment.ErrEnrollmentIncomplete.Error(), out["error"])
	assert.Equal(t, []any{"card charged", "instructor paid"}, out["completed"])
	assert.NotContains(t, fmt.Sprint(out), "pq:")
	assert.NotContains(t, fmt.Sprint(out), "db-internal")
}
