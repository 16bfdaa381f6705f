package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/streamnest-app/streamnest/app/models"
	"github.com/streamnest-app/streamnest/internal/pkg/entitlements"
	"github.com/streamnest-app/streamnest/internal/pkg/subscription"
)

// stubRepo is a minimal in-memory subscription.Repository for endpoint tests.
// Dispatcher semantics have their own tests; here we only need a known user
// and working writes.
type stubRepo struct {
	user  *models.User
	subs  []*models.Subscription
	plans []*models.SubscriptionPlan
}

func (s *stubRepo) Transaction(fn func(subscription.Repository) error) error { return fn(s) }

func (s *stubRepo) FindUserByIDOrCorrelationID(appUserID string) (*models.User, error) {
	if s.user != nil && appUserID == "7" {
		return s.user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) FindActiveSubscriptionsForUser(userID uint) ([]models.Subscription, error) {
	var out []models.Subscription
	for _, sub := range s.subs {
		if sub.UserID == userID && sub.Status == models.SubscriptionStatusActive {
			out = append(out, *sub)
		}
	}
	return out, nil
}

func (s *stubRepo) FindSubscriptionByOriginalTransactionID(userID uint, originalTransactionID string) (*models.Subscription, error) {
	for _, sub := range s.subs {
		if sub.UserID == userID && sub.OriginalTransactionID == originalTransactionID {
			return sub, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) UpsertSubscriptionPlanByTier(tier entitlements.Tier) (*models.SubscriptionPlan, error) {
	plan := &models.SubscriptionPlan{ID: uint(len(s.plans) + 1), Tier: string(tier)}
	s.plans = append(s.plans, plan)
	return plan, nil
}

func (s *stubRepo) CreateSubscription(sub *models.Subscription) error {
	sub.ID = uint(len(s.subs) + 1)
	s.subs = append(s.subs, sub)
	return nil
}

func (s *stubRepo) UpdateSubscription(sub *models.Subscription) error { return nil }

func (s *stubRepo) UpdateUserEntitlement(userID uint, tier entitlements.Tier, expiresAt *time.Time) error {
	s.user.SubscriptionTier = string(tier)
	s.user.SubscriptionExpiresAt = expiresAt
	return nil
}

func (s *stubRepo) AppendAuditLogEntry(entry *models.AuditLogEntry) error { return nil }

func newWebhookTestApp(repo subscription.Repository) *fiber.App {
	app := fiber.New()
	wc := NewWebhookController(subscription.NewDispatcher(repo, nil, zerolog.Nop()), zerolog.Nop())
	app.Post("/webhooks/subscription-events", wc.HandleSubscriptionEvent)
	return app
}

func postWebhook(t *testing.T, app *fiber.App, body []byte, headers map[string]string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/subscription-events", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func webhookBody(t *testing.T, ev map[string]interface{}) []byte {
	t.Helper()
	b, err := json.Marshal(map[string]interface{}{"event": ev, "api_version": "1.0"})
	require.NoError(t, err)
	return b
}

func TestWebhookRejectsMalformedPayload(t *testing.T) {
	app := newWebhookTestApp(&stubRepo{})

	resp := postWebhook(t, app, []byte("not json"), nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	// Structurally valid JSON without an event object is equally malformed.
	resp = postWebhook(t, app, []byte(`{"api_version":"1.0"}`), nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestWebhookAcknowledgesUnknownUser(t *testing.T) {
	app := newWebhookTestApp(&stubRepo{})

	resp := postWebhook(t, app, webhookBody(t, map[string]interface{}{
		"type":                    "INITIAL_PURCHASE",
		"app_user_id":             "does-not-exist",
		"product_id":              "premium_monthly",
		"original_transaction_id": "T1",
	}), nil)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, false, body["success"])
}

func TestWebhookProcessesActivation(t *testing.T) {
	repo := &stubRepo{user: &models.User{ID: 7, SubscriptionTier: "free"}}
	app := newWebhookTestApp(repo)

	resp := postWebhook(t, app, webhookBody(t, map[string]interface{}{
		"type":                    "INITIAL_PURCHASE",
		"app_user_id":             "7",
		"product_id":              "premium_monthly",
		"purchased_at_ms":         time.Now().UnixMilli(),
		"expiration_at_ms":        time.Now().Add(30 * 24 * time.Hour).UnixMilli(),
		"transaction_id":          "txn-1",
		"original_transaction_id": "T1",
	}), nil)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "premium", repo.user.SubscriptionTier)
	require.Len(t, repo.subs, 1)
}

func TestWebhookAuthTokenEnforcedWhenConfigured(t *testing.T) {
	t.Setenv("BILLING_WEBHOOK_AUTH_TOKEN", "hook-secret")

	repo := &stubRepo{user: &models.User{ID: 7, SubscriptionTier: "free"}}
	app := newWebhookTestApp(repo)

	body := webhookBody(t, map[string]interface{}{
		"type":                    "CANCELLATION",
		"app_user_id":             "7",
		"original_transaction_id": "T1",
	})

	resp := postWebhook(t, app, body, nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = postWebhook(t, app, body, map[string]string{"Authorization": "Bearer wrong"})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = postWebhook(t, app, body, map[string]string{"Authorization": "Bearer hook-secret"})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
