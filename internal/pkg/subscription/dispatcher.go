package subscription

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/streamnest-app/streamnest/app/models"
	"github.com/streamnest-app/streamnest/internal/pkg/entitlements"
	"github.com/streamnest-app/streamnest/internal/pkg/metrics/counter"
	"gorm.io/gorm"
)

// Dispatcher routes provider billing-lifecycle events to transition handlers
// and owns the write path for entitlement state. Handlers are idempotent and
// run inside one transaction each, so redelivered or out-of-order events
// converge on the last-applied provider payload.
type Dispatcher struct {
	repo  Repository
	tiers TierMap
	log   zerolog.Logger
}

// Transition actions recorded in the audit trail.
const (
	ActionActivation    = "subscription.activation"
	ActionCancellation  = "subscription.cancellation"
	ActionExpiration    = "subscription.expiration"
	ActionBillingIssue  = "subscription.billing_issue"
	ActionProductChange = "subscription.product_change"
	ActionIgnored       = "subscription.ignored"
)

// NewDispatcher creates a dispatcher from an injected repository and tier map.
func NewDispatcher(repo Repository, tiers TierMap, log zerolog.Logger) *Dispatcher {
	if tiers == nil {
		tiers = DefaultTierMap()
	}
	return &Dispatcher{repo: repo, tiers: tiers, log: log}
}

// NewDispatcherFromDB creates a dispatcher from a GORM DB handle.
func NewDispatcherFromDB(db *gorm.DB, log zerolog.Logger) *Dispatcher {
	return NewDispatcher(NewRepository(db), DefaultTierMap(), log)
}

// Dispatch applies one event. It never returns an error: business failures
// are absorbed into the Result so the endpoint can keep its always-200
// contract, and are logged at error severity for operator follow-up.
func (d *Dispatcher) Dispatch(ctx context.Context, ev *Event) Result {
	_ = ctx

	user, err := d.repo.FindUserByIDOrCorrelationID(ev.AppUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Test events and not-yet-provisioned accounts land here; the
			// provider must not retry them.
			d.log.Info().
				Str("event_type", ev.Type).
				Str("app_user_id", ev.AppUserID).
				Msg("webhook event for unknown user acknowledged without mutation")
			return Result{Success: false, Action: ActionIgnored, Message: "user not found"}
		}
		d.log.Error().Err(err).
			Str("event_type", ev.Type).
			Str("app_user_id", ev.AppUserID).
			Msg("user lookup failed")
		return Result{Success: false, Action: ActionIgnored, Message: "user lookup failed"}
	}

	action, handlerErr := d.applyTransition(user, ev)

	if auditErr := d.audit(user.ID, action, ev, handlerErr); auditErr != nil {
		d.log.Error().Err(auditErr).
			Str("event_type", ev.Type).
			Uint("user_id", user.ID).
			Msg("audit log write failed")
		if handlerErr == nil {
			handlerErr = auditErr
		}
	}

	if handlerErr != nil {
		// Ack-and-alert: the provider still gets a success-shaped response,
		// the failure context lands in the error log for replay tooling.
		d.log.Error().Err(handlerErr).
			Str("event_type", ev.Type).
			Str("product_id", ev.ProductID).
			Str("transaction_id", ev.TransactionID).
			Str("original_transaction_id", ev.OriginalTransactionID).
			Uint("user_id", user.ID).
			Msg("webhook transition failed")
		return Result{Success: false, Action: action, Message: "event processing failed", UserID: user.ID}
	}

	return Result{Success: true, Action: action, UserID: user.ID}
}

func (d *Dispatcher) applyTransition(user *models.User, ev *Event) (string, error) {
	switch ev.Type {
	case EventInitialPurchase, EventRenewal, EventNonRenewingPurchase, EventUncancellation:
		return ActionActivation, d.repo.Transaction(func(tx Repository) error {
			return d.applyActivation(tx, user, ev)
		})
	case EventCancellation:
		return ActionCancellation, d.repo.Transaction(func(tx Repository) error {
			return applyCancellation(tx, user, ev)
		})
	case EventExpiration:
		return ActionExpiration, d.repo.Transaction(func(tx Repository) error {
			return applyExpiration(tx, user)
		})
	case EventBillingIssue:
		return ActionBillingIssue, d.repo.Transaction(func(tx Repository) error {
			return applyBillingIssue(tx, user)
		})
	case EventProductChange:
		return ActionProductChange, d.repo.Transaction(func(tx Repository) error {
			return d.applyProductChange(tx, user, ev)
		})
	default:
		// Forward-compatible with event types added after this code was
		// written (SUBSCRIPTION_PAUSED, TRANSFER, ...).
		d.log.Info().
			Str("event_type", ev.Type).
			Uint("user_id", user.ID).
			Msg("unhandled webhook event type acknowledged")
		return ActionIgnored, nil
	}
}

// applyActivation covers initial purchase, renewal, non-renewing purchase and
// uncancellation. It is idempotent: replays match on the original transaction
// id, which survives renewals, and update the same row in place.
func (d *Dispatcher) applyActivation(tx Repository, user *models.User, ev *Event) error {
	tier := d.resolveTier(ev, user.ID)

	plan, err := tx.UpsertSubscriptionPlanByTier(tier)
	if err != nil {
		return err
	}

	// At most one subscription per user may be active. Any other active
	// lineage is superseded by this one.
	actives, err := tx.FindActiveSubscriptionsForUser(user.ID)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	for i := range actives {
		other := &actives[i]
		if other.OriginalTransactionID == ev.OriginalTransactionID {
			continue
		}
		other.Status = models.SubscriptionStatusCancelled
		other.AutoRenew = false
		other.CancelledAt = &now
		other.CancelReason = models.CancelReasonSuperseded
		if err := tx.UpdateSubscription(other); err != nil {
			return err
		}
	}

	sub, err := tx.FindSubscriptionByOriginalTransactionID(user.ID, ev.OriginalTransactionID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if sub == nil {
		sub = &models.Subscription{
			UserID:                user.ID,
			PlanID:                plan.ID,
			OriginalTransactionID: ev.OriginalTransactionID,
			Status:                models.SubscriptionStatusActive,
			BillingInterval:       ev.Interval(),
			CurrentPeriodStart:    &now,
			CurrentPeriodEnd:      ev.ExpiresAt(),
			AutoRenew:             true,
			Store:                 ev.Store,
			Environment:           ev.Environment,
			ProviderData:          ev.ProviderSnapshot(),
		}
		if err := tx.CreateSubscription(sub); err != nil {
			return err
		}
	} else {
		sub.PlanID = plan.ID
		sub.Status = models.SubscriptionStatusActive
		sub.BillingInterval = ev.Interval()
		sub.CurrentPeriodEnd = ev.ExpiresAt()
		sub.AutoRenew = true
		sub.CancelledAt = nil
		sub.CancelReason = ""
		sub.Store = ev.Store
		sub.Environment = ev.Environment
		sub.ProviderData = ev.ProviderSnapshot()
		if err := tx.UpdateSubscription(sub); err != nil {
			return err
		}
	}

	return tx.UpdateUserEntitlement(user.ID, tier, ev.ExpiresAt())
}

// applyCancellation disables renewal only. The subscription stays ACTIVE and
// the cached entitlement is untouched until the period actually expires.
func applyCancellation(tx Repository, user *models.User, ev *Event) error {
	_ = ev
	actives, err := tx.FindActiveSubscriptionsForUser(user.ID)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	for i := range actives {
		sub := &actives[i]
		sub.AutoRenew = false
		sub.CancelledAt = &now
		sub.CancelReason = models.CancelReasonCustomer
		if err := tx.UpdateSubscription(sub); err != nil {
			return err
		}
	}
	return nil
}

// applyExpiration is the only transition that revokes entitlement.
func applyExpiration(tx Repository, user *models.User) error {
	actives, err := tx.FindActiveSubscriptionsForUser(user.ID)
	if err != nil {
		return err
	}
	for i := range actives {
		sub := &actives[i]
		sub.Status = models.SubscriptionStatusExpired
		sub.AutoRenew = false
		if err := tx.UpdateSubscription(sub); err != nil {
			return err
		}
	}
	return tx.UpdateUserEntitlement(user.ID, entitlements.TierFree, nil)
}

// applyBillingIssue marks the lineage PAST_DUE for downstream dunning flows.
// Whether a grace period keeps entitlement alive is a product decision made
// elsewhere; nothing is revoked here.
func applyBillingIssue(tx Repository, user *models.User) error {
	actives, err := tx.FindActiveSubscriptionsForUser(user.ID)
	if err != nil {
		return err
	}
	for i := range actives {
		sub := &actives[i]
		sub.Status = models.SubscriptionStatusPastDue
		if err := tx.UpdateSubscription(sub); err != nil {
			return err
		}
	}
	return nil
}

// applyProductChange re-points the active lineage at the new plan in place.
// Unlike activation it never creates a new lineage record.
func (d *Dispatcher) applyProductChange(tx Repository, user *models.User, ev *Event) error {
	tier := d.resolveTier(ev, user.ID)

	plan, err := tx.UpsertSubscriptionPlanByTier(tier)
	if err != nil {
		return err
	}

	actives, err := tx.FindActiveSubscriptionsForUser(user.ID)
	if err != nil {
		return err
	}
	if len(actives) == 0 {
		return nil
	}
	for i := range actives {
		sub := &actives[i]
		sub.PlanID = plan.ID
		sub.BillingInterval = ev.Interval()
		sub.CurrentPeriodEnd = ev.ExpiresAt()
		sub.ProviderData = ev.ProviderSnapshot()
		if err := tx.UpdateSubscription(sub); err != nil {
			return err
		}
	}

	return tx.UpdateUserEntitlement(user.ID, tier, ev.ExpiresAt())
}

func (d *Dispatcher) resolveTier(ev *Event, userID uint) entitlements.Tier {
	tier, source := d.tiers.Resolve(ev.ProductID, ev.EntitlementIDs)
	if source == SourceHeuristic || source == SourceDefault {
		d.log.Warn().
			Str("product_id", ev.ProductID).
			Str("tier", string(tier)).
			Str("match_source", string(source)).
			Uint("user_id", userID).
			Msg("unmapped product granted tier via fallback")
		_ = counter.AddTierFallback(ev.ProductID)
	}
	return tier
}

func (d *Dispatcher) audit(userID uint, action string, ev *Event, handlerErr error) error {
	metadata := map[string]interface{}{
		"event_type":  ev.Type,
		"product_id":  ev.ProductID,
		"store":       ev.Store,
		"environment": ev.Environment,
		"price":       ev.Price,
		"currency":    ev.Currency,
	}
	if handlerErr != nil {
		metadata["processing_error"] = handlerErr.Error()
	}
	raw, err := json.Marshal(metadata)
	if err != nil {
		return err
	}

	entityID := ev.TransactionID
	if entityID == "" {
		entityID = ev.OriginalTransactionID
	}

	return d.repo.AppendAuditLogEntry(&models.AuditLogEntry{
		UUID:         uuid.NewString(),
		UserID:       userID,
		Action:       action,
		EntityType:   "provider_transaction",
		EntityID:     entityID,
		MetadataJSON: string(raw),
	})
}
