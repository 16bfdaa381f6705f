package counter

import (
	"context"
	"strings"

	"github.com/streamnest-app/streamnest/internal/pkg/cache"
)

const (
	webhookEventsKey  = "webhook:counters:events"
	webhookResultsKey = "webhook:counters:results"
	tierFallbackKey   = "webhook:counters:tier_fallback"
)

// AddWebhookEvent increments the per-event-type delivery counter in Redis.
func AddWebhookEvent(eventType string) error {
	ctx := context.Background()
	field := strings.ToLower(strings.TrimSpace(eventType))
	if field == "" {
		field = "unknown"
	}
	return cache.GetClient().HIncrBy(ctx, webhookEventsKey, field, 1).Err()
}

// AddWebhookResult tracks dispatch outcomes (processed, noop, failed).
func AddWebhookResult(outcome string) error {
	ctx := context.Background()
	return cache.GetClient().HIncrBy(ctx, webhookResultsKey, outcome, 1).Err()
}

// AddTierFallback counts entitlement grants that did not come from an exact
// catalog match. The fail-open tier default silently grants access for
// unrecognized products, so every such grant must be countable.
func AddTierFallback(productID string) error {
	ctx := context.Background()
	field := strings.TrimSpace(productID)
	if field == "" {
		field = "unknown"
	}
	return cache.GetClient().HIncrBy(ctx, tierFallbackKey, field, 1).Err()
}
