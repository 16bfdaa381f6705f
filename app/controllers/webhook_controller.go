package controllers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/streamnest-app/streamnest/internal/pkg/cache"
	"github.com/streamnest-app/streamnest/internal/pkg/database"
	"github.com/streamnest-app/streamnest/internal/pkg/env"
	"github.com/streamnest-app/streamnest/internal/pkg/metrics/counter"
	"github.com/streamnest-app/streamnest/internal/pkg/subscription"
)

// WebhookController receives billing-lifecycle events from the payment
// provider. The endpoint contract is strict: respond 200 for everything the
// provider should not redeliver, 400 only for structurally invalid payloads,
// 401 only when an authentication secret is configured and the request fails
// it. Business failures never surface as transport errors.
type WebhookController struct {
	dispatcher *subscription.Dispatcher
	log        zerolog.Logger
}

// NewWebhookController creates a webhook controller with an injected dispatcher.
func NewWebhookController(d *subscription.Dispatcher, logger zerolog.Logger) *WebhookController {
	return &WebhookController{dispatcher: d, log: logger}
}

// HandleSubscriptionWebhook is the route-level entry point, wired against the
// global database handle the way the rest of the controllers are.
func HandleSubscriptionWebhook(c *fiber.Ctx) error {
	wc := NewWebhookController(subscription.NewDispatcherFromDB(database.GetDB(), log.Logger), log.Logger)
	return wc.HandleSubscriptionEvent(c)
}

// HandleSubscriptionEvent processes one provider event delivery.
func (wc *WebhookController) HandleSubscriptionEvent(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)

	if token := env.GetEnv("BILLING_WEBHOOK_AUTH_TOKEN", ""); token != "" {
		if !subscription.VerifySharedSecret(c.Get(fiber.HeaderAuthorization), token) {
			wc.log.Warn().Str("ip", c.IP()).Msg("webhook delivery rejected: bad authorization token")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid_authorization"})
		}
	}
	if secret := env.GetEnv("BILLING_WEBHOOK_SIGNING_SECRET", ""); secret != "" {
		if !subscription.VerifySignature(rawBody, c.Get("X-Signature"), secret) {
			wc.log.Warn().Str("ip", c.IP()).Msg("webhook delivery rejected: bad signature")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid_signature"})
		}
	}

	var envelope subscription.EventEnvelope
	if err := json.Unmarshal(rawBody, &envelope); err != nil || envelope.Event == nil {
		_ = counter.AddWebhookResult("malformed")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid webhook payload"})
	}
	ev := envelope.Event
	_ = counter.AddWebhookEvent(ev.Type)

	ctx, cancel := context.WithTimeout(c.UserContext(), 15*time.Second)
	defer cancel()

	res := wc.dispatcher.Dispatch(ctx, ev)

	outcome := "processed"
	if !res.Success {
		outcome = "failed"
	}
	_ = counter.AddWebhookResult(outcome)

	// Entitlement reads are cached per user; every write-through drops the
	// cached summary so clients converge immediately.
	if res.UserID != 0 {
		_ = cache.InvalidateEntitlement(res.UserID)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": res.Success,
		"action":  res.Action,
		"message": res.Message,
	})
}
