package subscription

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/streamnest-app/streamnest/app/models"
	"github.com/streamnest-app/streamnest/internal/pkg/entitlements"
	"gorm.io/gorm"
)

type fakeRepo struct {
	users  []*models.User
	subs   []*models.Subscription
	plans  []*models.SubscriptionPlan
	audits []*models.AuditLogEntry

	nextSubID  uint
	nextPlanID uint

	failWrites bool
}

func newFakeRepo(users ...*models.User) *fakeRepo {
	return &fakeRepo{users: users, nextSubID: 1, nextPlanID: 1}
}

func (f *fakeRepo) Transaction(fn func(Repository) error) error {
	return fn(f)
}

func (f *fakeRepo) FindUserByIDOrCorrelationID(appUserID string) (*models.User, error) {
	for _, u := range f.users {
		if fmt.Sprint(u.ID) == appUserID || u.ProviderCustomerID == appUserID {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) FindActiveSubscriptionsForUser(userID uint) ([]models.Subscription, error) {
	var out []models.Subscription
	for _, s := range f.subs {
		if s.UserID == userID && s.Status == models.SubscriptionStatusActive {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeRepo) FindSubscriptionByOriginalTransactionID(userID uint, originalTransactionID string) (*models.Subscription, error) {
	for _, s := range f.subs {
		if s.UserID == userID && s.OriginalTransactionID == originalTransactionID {
			copied := *s
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) UpsertSubscriptionPlanByTier(tier entitlements.Tier) (*models.SubscriptionPlan, error) {
	for _, p := range f.plans {
		if p.Tier == string(tier) {
			return p, nil
		}
	}
	p := &models.SubscriptionPlan{ID: f.nextPlanID, Tier: string(tier), Currency: "USD", AutoProvisioned: true}
	f.nextPlanID++
	f.plans = append(f.plans, p)
	return p, nil
}

func (f *fakeRepo) CreateSubscription(sub *models.Subscription) error {
	if f.failWrites {
		return errors.New("write failed")
	}
	sub.ID = f.nextSubID
	f.nextSubID++
	copied := *sub
	f.subs = append(f.subs, &copied)
	return nil
}

func (f *fakeRepo) UpdateSubscription(sub *models.Subscription) error {
	if f.failWrites {
		return errors.New("write failed")
	}
	for i, s := range f.subs {
		if s.ID == sub.ID {
			copied := *sub
			f.subs[i] = &copied
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeRepo) UpdateUserEntitlement(userID uint, tier entitlements.Tier, expiresAt *time.Time) error {
	if f.failWrites {
		return errors.New("write failed")
	}
	for _, u := range f.users {
		if u.ID == userID {
			u.SubscriptionTier = string(tier)
			u.SubscriptionExpiresAt = expiresAt
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeRepo) AppendAuditLogEntry(entry *models.AuditLogEntry) error {
	copied := *entry
	f.audits = append(f.audits, &copied)
	return nil
}

func (f *fakeRepo) subscriptionsFor(userID uint) []*models.Subscription {
	var out []*models.Subscription
	for _, s := range f.subs {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out
}

func testUser() *models.User {
	return &models.User{ID: 42, Name: "Test User", SubscriptionTier: "free", ProviderCustomerID: "rc_cust_42"}
}

func testDispatcher(repo Repository) *Dispatcher {
	return NewDispatcher(repo, DefaultTierMap(), zerolog.Nop())
}

func activationEvent(eventType, originalTxn, productID string, expiresAt time.Time) *Event {
	return &Event{
		Type:                  eventType,
		AppUserID:             "42",
		ProductID:             productID,
		PurchasedAtMs:         time.Now().Add(-time.Minute).UnixMilli(),
		ExpirationAtMs:        expiresAt.UnixMilli(),
		Store:                 "APP_STORE",
		Environment:           "PRODUCTION",
		Price:                 9.99,
		Currency:              "USD",
		TransactionID:         originalTxn + "-txn-1",
		OriginalTransactionID: originalTxn,
	}
}

func TestActivationCreatesSubscription(t *testing.T) {
	user := testUser()
	repo := newFakeRepo(user)
	d := testDispatcher(repo)

	expiry := time.Now().Add(365 * 24 * time.Hour).UTC().Truncate(time.Millisecond)
	res := d.Dispatch(context.Background(), activationEvent(EventInitialPurchase, "T1", "premium_yearly", expiry))

	if !res.Success {
		t.Fatalf("expected success, got %+v", res)
	}
	subs := repo.subscriptionsFor(user.ID)
	if len(subs) != 1 {
		t.Fatalf("expected 1 subscription, got %d", len(subs))
	}
	sub := subs[0]
	if sub.Status != models.SubscriptionStatusActive {
		t.Fatalf("expected active subscription, got %q", sub.Status)
	}
	if sub.BillingInterval != models.SubscriptionIntervalYearly {
		t.Fatalf("expected yearly interval, got %q", sub.BillingInterval)
	}
	if user.SubscriptionTier != string(entitlements.TierPremium) {
		t.Fatalf("expected premium write-through, got %q", user.SubscriptionTier)
	}
	if user.SubscriptionExpiresAt == nil || !user.SubscriptionExpiresAt.Equal(expiry) {
		t.Fatalf("expected cached expiry %v, got %v", expiry, user.SubscriptionExpiresAt)
	}
	if len(repo.audits) != 1 {
		t.Fatalf("expected 1 audit entry, got %d", len(repo.audits))
	}
	if repo.audits[0].Action != ActionActivation {
		t.Fatalf("unexpected audit action %q", repo.audits[0].Action)
	}
}

func TestActivationIsIdempotent(t *testing.T) {
	user := testUser()
	repo := newFakeRepo(user)
	d := testDispatcher(repo)

	expiry := time.Now().Add(30 * 24 * time.Hour).UTC().Truncate(time.Millisecond)
	ev := activationEvent(EventInitialPurchase, "T1", "premium_monthly", expiry)

	for i := 0; i < 3; i++ {
		if res := d.Dispatch(context.Background(), ev); !res.Success {
			t.Fatalf("replay %d failed: %+v", i, res)
		}
	}

	subs := repo.subscriptionsFor(user.ID)
	if len(subs) != 1 {
		t.Fatalf("expected exactly 1 subscription after replays, got %d", len(subs))
	}
	if user.SubscriptionTier != string(entitlements.TierPremium) {
		t.Fatalf("expected premium after replays, got %q", user.SubscriptionTier)
	}
	if user.SubscriptionExpiresAt == nil || !user.SubscriptionExpiresAt.Equal(expiry) {
		t.Fatalf("cached expiry drifted across replays: %v", user.SubscriptionExpiresAt)
	}
}

func TestRenewalUpdatesLineageInPlace(t *testing.T) {
	user := testUser()
	repo := newFakeRepo(user)
	d := testDispatcher(repo)

	first := time.Now().Add(30 * 24 * time.Hour).UTC().Truncate(time.Millisecond)
	d.Dispatch(context.Background(), activationEvent(EventInitialPurchase, "T1", "premium_monthly", first))

	renewed := first.Add(30 * 24 * time.Hour)
	renewal := activationEvent(EventRenewal, "T1", "premium_monthly", renewed)
	renewal.TransactionID = "T1-txn-2" // transaction id changes every renewal
	if res := d.Dispatch(context.Background(), renewal); !res.Success {
		t.Fatalf("renewal failed: %+v", res)
	}

	subs := repo.subscriptionsFor(user.ID)
	if len(subs) != 1 {
		t.Fatalf("renewal must not create a second row, got %d", len(subs))
	}
	if subs[0].CurrentPeriodEnd == nil || !subs[0].CurrentPeriodEnd.Equal(renewed) {
		t.Fatalf("expected period end %v, got %v", renewed, subs[0].CurrentPeriodEnd)
	}
}

func TestRenewalReactivatesPastDueLineage(t *testing.T) {
	user := testUser()
	repo := newFakeRepo(user)
	d := testDispatcher(repo)

	expiry := time.Now().Add(30 * 24 * time.Hour).UTC()
	d.Dispatch(context.Background(), activationEvent(EventInitialPurchase, "T1", "premium_monthly", expiry))
	d.Dispatch(context.Background(), &Event{Type: EventBillingIssue, AppUserID: "42", OriginalTransactionID: "T1"})

	if got := repo.subscriptionsFor(user.ID)[0].Status; got != models.SubscriptionStatusPastDue {
		t.Fatalf("expected past_due before renewal, got %q", got)
	}

	d.Dispatch(context.Background(), activationEvent(EventRenewal, "T1", "premium_monthly", expiry.Add(30*24*time.Hour)))
	if got := repo.subscriptionsFor(user.ID)[0].Status; got != models.SubscriptionStatusActive {
		t.Fatalf("expected active after renewal, got %q", got)
	}
}

func TestSingleActiveInvariantAcrossLineages(t *testing.T) {
	user := testUser()
	repo := newFakeRepo(user)
	d := testDispatcher(repo)

	expiry := time.Now().Add(30 * 24 * time.Hour).UTC()
	d.Dispatch(context.Background(), activationEvent(EventInitialPurchase, "T1", "premium_monthly", expiry))
	d.Dispatch(context.Background(), activationEvent(EventInitialPurchase, "T2", "family_monthly", expiry))

	active := 0
	for _, s := range repo.subscriptionsFor(user.ID) {
		if s.Status == models.SubscriptionStatusActive {
			active++
			if s.OriginalTransactionID != "T2" {
				t.Fatalf("wrong lineage active: %q", s.OriginalTransactionID)
			}
		}
		if s.OriginalTransactionID == "T1" {
			if s.Status != models.SubscriptionStatusCancelled {
				t.Fatalf("expected superseded lineage cancelled, got %q", s.Status)
			}
			if s.CancelReason != models.CancelReasonSuperseded {
				t.Fatalf("expected superseded cancel reason, got %q", s.CancelReason)
			}
		}
	}
	if active != 1 {
		t.Fatalf("expected exactly 1 active subscription, got %d", active)
	}
	if user.SubscriptionTier != string(entitlements.TierFamily) {
		t.Fatalf("expected family tier after second activation, got %q", user.SubscriptionTier)
	}
}

func TestCancellationDisablesRenewalOnly(t *testing.T) {
	user := testUser()
	repo := newFakeRepo(user)
	d := testDispatcher(repo)

	expiry := time.Now().Add(30 * 24 * time.Hour).UTC()
	d.Dispatch(context.Background(), activationEvent(EventInitialPurchase, "T1", "premium_monthly", expiry))

	res := d.Dispatch(context.Background(), &Event{
		Type:                  EventCancellation,
		AppUserID:             "42",
		TransactionID:         "T1-txn-1",
		OriginalTransactionID: "T1",
	})
	if !res.Success {
		t.Fatalf("cancellation failed: %+v", res)
	}

	sub := repo.subscriptionsFor(user.ID)[0]
	if sub.Status != models.SubscriptionStatusActive {
		t.Fatalf("cancellation must not change status, got %q", sub.Status)
	}
	if sub.AutoRenew {
		t.Fatalf("expected auto_renew disabled")
	}
	if sub.CancelledAt == nil || sub.CancelReason != models.CancelReasonCustomer {
		t.Fatalf("expected cancellation metadata, got %v %q", sub.CancelledAt, sub.CancelReason)
	}
	if user.SubscriptionTier != string(entitlements.TierPremium) {
		t.Fatalf("cancellation must not revoke entitlement, got %q", user.SubscriptionTier)
	}
}

func TestCancellationWithoutActiveSubscriptionIsNoop(t *testing.T) {
	user := testUser()
	repo := newFakeRepo(user)
	d := testDispatcher(repo)

	res := d.Dispatch(context.Background(), &Event{Type: EventCancellation, AppUserID: "42", OriginalTransactionID: "T9"})
	if !res.Success {
		t.Fatalf("expected no-op success, got %+v", res)
	}
	if len(repo.subs) != 0 {
		t.Fatalf("no-op must not create rows")
	}
	if len(repo.audits) != 1 {
		t.Fatalf("no-op dispatch still writes one audit entry, got %d", len(repo.audits))
	}
}

func TestExpirationRevokesEntitlement(t *testing.T) {
	user := testUser()
	repo := newFakeRepo(user)
	d := testDispatcher(repo)

	expiry := time.Now().Add(30 * 24 * time.Hour).UTC()
	d.Dispatch(context.Background(), activationEvent(EventInitialPurchase, "T1", "premium_monthly", expiry))

	res := d.Dispatch(context.Background(), &Event{
		Type:                  EventExpiration,
		AppUserID:             "42",
		TransactionID:         "T1-txn-3",
		OriginalTransactionID: "T1",
	})
	if !res.Success {
		t.Fatalf("expiration failed: %+v", res)
	}

	for _, s := range repo.subscriptionsFor(user.ID) {
		if s.Status != models.SubscriptionStatusExpired {
			t.Fatalf("expected expired, got %q", s.Status)
		}
	}
	if user.SubscriptionTier != string(entitlements.TierFree) {
		t.Fatalf("expected base tier after expiration, got %q", user.SubscriptionTier)
	}
	if user.SubscriptionExpiresAt != nil {
		t.Fatalf("expected cached expiry cleared, got %v", user.SubscriptionExpiresAt)
	}
}

func TestBillingIssueMarksPastDueWithoutRevoking(t *testing.T) {
	user := testUser()
	repo := newFakeRepo(user)
	d := testDispatcher(repo)

	expiry := time.Now().Add(30 * 24 * time.Hour).UTC()
	d.Dispatch(context.Background(), activationEvent(EventInitialPurchase, "T1", "premium_monthly", expiry))
	d.Dispatch(context.Background(), &Event{Type: EventBillingIssue, AppUserID: "42", OriginalTransactionID: "T1"})

	if got := repo.subscriptionsFor(user.ID)[0].Status; got != models.SubscriptionStatusPastDue {
		t.Fatalf("expected past_due, got %q", got)
	}
	if user.SubscriptionTier != string(entitlements.TierPremium) {
		t.Fatalf("billing issue must not revoke entitlement, got %q", user.SubscriptionTier)
	}
}

func TestProductChangeUpdatesActiveLineageInPlace(t *testing.T) {
	user := testUser()
	repo := newFakeRepo(user)
	d := testDispatcher(repo)

	expiry := time.Now().Add(30 * 24 * time.Hour).UTC().Truncate(time.Millisecond)
	d.Dispatch(context.Background(), activationEvent(EventInitialPurchase, "T1", "premium_monthly", expiry))

	change := activationEvent(EventProductChange, "T1", "family_monthly", expiry.Add(24*time.Hour))
	if res := d.Dispatch(context.Background(), change); !res.Success {
		t.Fatalf("product change failed: %+v", res)
	}

	subs := repo.subscriptionsFor(user.ID)
	if len(subs) != 1 {
		t.Fatalf("product change must not create a new lineage, got %d rows", len(subs))
	}
	if user.SubscriptionTier != string(entitlements.TierFamily) {
		t.Fatalf("expected family tier after product change, got %q", user.SubscriptionTier)
	}
}

func TestUnknownUserIsAcknowledgedWithoutMutation(t *testing.T) {
	repo := newFakeRepo() // no users provisioned
	d := testDispatcher(repo)

	res := d.Dispatch(context.Background(), &Event{
		Type:                  EventInitialPurchase,
		AppUserID:             "nobody",
		ProductID:             "premium_monthly",
		OriginalTransactionID: "T1",
	})
	if res.Success {
		t.Fatalf("expected success=false for unknown user")
	}
	if len(repo.subs) != 0 {
		t.Fatalf("unknown user must not create subscriptions")
	}
	if len(repo.audits) != 0 {
		t.Fatalf("audit entries require a resolved user, got %d", len(repo.audits))
	}
}

func TestUserResolvedByCorrelationID(t *testing.T) {
	user := testUser()
	repo := newFakeRepo(user)
	d := testDispatcher(repo)

	ev := activationEvent(EventInitialPurchase, "T1", "premium_monthly", time.Now().Add(24*time.Hour))
	ev.AppUserID = "rc_cust_42"
	if res := d.Dispatch(context.Background(), ev); !res.Success {
		t.Fatalf("expected correlation-id resolution to succeed: %+v", res)
	}
	if len(repo.subscriptionsFor(user.ID)) != 1 {
		t.Fatalf("expected subscription for correlated user")
	}
}

func TestUnrecognizedEventTypeIsAcknowledged(t *testing.T) {
	user := testUser()
	repo := newFakeRepo(user)
	d := testDispatcher(repo)

	res := d.Dispatch(context.Background(), &Event{
		Type:                  EventSubscriptionPaused,
		AppUserID:             "42",
		OriginalTransactionID: "T1",
	})
	if !res.Success {
		t.Fatalf("unrecognized type must be acknowledged: %+v", res)
	}
	if res.Action != ActionIgnored {
		t.Fatalf("expected ignored action, got %q", res.Action)
	}
	if len(repo.subs) != 0 {
		t.Fatalf("unrecognized type must not mutate")
	}
	if len(repo.audits) != 1 {
		t.Fatalf("expected audit entry for acknowledged event, got %d", len(repo.audits))
	}
}

func TestHandlerFailureIsAbsorbed(t *testing.T) {
	user := testUser()
	repo := newFakeRepo(user)
	repo.failWrites = true
	d := testDispatcher(repo)

	res := d.Dispatch(context.Background(), activationEvent(EventInitialPurchase, "T1", "premium_monthly", time.Now().Add(24*time.Hour)))
	if res.Success {
		t.Fatalf("expected success=false on persistence failure")
	}
	if res.Action != ActionActivation {
		t.Fatalf("expected activation action on failed dispatch, got %q", res.Action)
	}
	if len(repo.audits) != 1 {
		t.Fatalf("failed dispatch still writes the audit entry, got %d", len(repo.audits))
	}
}
