package billing

import (
	"context"
	"errors"
	"testing"

	"github.com/opsboard/opsboard/internal/action"
	"github.com/opsboard/opsboard/internal/session"
	"github.com/opsboard/opsboard/internal/store"
	"github.com/opsboard/opsboard/internal/store/memory"
)

func seedWorkspace(t *testing.T, db *memory.Store, userID, email string, role store.Role) *store.Tenant {
	t.Helper()
	ctx := context.Background()

	if err := db.CreateUser(ctx, &store.User{ID: userID, Email: email}); err != nil {
		t.Fatal(err)
	}
	tn := &store.Tenant{ID: "tenant-1", Slug: "acme", Name: "Acme"}
	if err := db.CreateTenant(ctx, tn); err != nil {
		t.Fatal(err)
	}
	if err := db.AddMembership(ctx, &store.Membership{TenantID: tn.ID, UserID: userID, Role: role}); err != nil {
		t.Fatal(err)
	}
	return tn
}

func seedPlan(t *testing.T, db *memory.Store, id, slug string) *store.Plan {
	t.Helper()
	p := &store.Plan{ID: id, ProviderID: "prod_" + slug, Slug: slug, Name: slug, Active: true}
	if err := db.UpsertPlan(context.Background(), p); err != nil {
		t.Fatal(err)
	}
	return p
}

func memberCtx(db *memory.Store, userID, email, tenantID string) context.Context {
	claims := &session.Claims{Email: email, TenantID: tenantID}
	claims.Subject = userID
	return session.WithScope(context.Background(), session.NewScope(claims, db, db))
}

func TestSubscriptionActions(t *testing.T) {
	db := memory.New()
	client := action.New(nil)
	RegisterActions(client, db)

	tn := seedWorkspace(t, db, "user-1", "ada@example.com", store.RoleOwner)
	plan := seedPlan(t, db, "plan-pro", "pro")
	ctx := memberCtx(db, "user-1", "ada@example.com", tn.ID)

	t.Run("no subscription yet", func(t *testing.T) {
		res, err := client.Execute(ctx, "app.billing.subscription", nil)
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if got := res.Data.(*SubscriptionResult); got.Subscription != nil {
			t.Errorf("subscription = %+v, want nil", got.Subscription)
		}
	})

	t.Run("owner subscribes", func(t *testing.T) {
		_, err := client.Execute(ctx, "app.billing.subscribe", &SubscribeInput{PlanID: plan.ID})
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}

		sub, err := db.GetSubscription(context.Background(), tn.ID)
		if err != nil {
			t.Fatalf("GetSubscription() error = %v", err)
		}
		if sub.PlanID != plan.ID || sub.Status != "active" {
			t.Errorf("subscription = %+v", sub)
		}
	})

	t.Run("query returns subscription with its plan", func(t *testing.T) {
		// Fresh scope so the tenant memoization from the earlier
		// subtests does not mask the read path.
		res, err := client.Execute(memberCtx(db, "user-1", "ada@example.com", tn.ID), "app.billing.subscription", nil)
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		got := res.Data.(*SubscriptionResult)
		if got.Subscription == nil || got.Subscription.PlanID != plan.ID {
			t.Fatalf("subscription = %+v", got.Subscription)
		}
		if got.Plan == nil || got.Plan.Slug != "pro" {
			t.Errorf("plan = %+v", got.Plan)
		}
	})

	t.Run("unknown plan is rejected", func(t *testing.T) {
		_, err := client.Execute(ctx, "app.billing.subscribe", &SubscribeInput{PlanID: "plan-ghost"})
		if !errors.Is(err, ErrUnknownPlan) {
			t.Errorf("error = %v, want ErrUnknownPlan", err)
		}
	})

	t.Run("member cannot subscribe", func(t *testing.T) {
		member := memory.New()
		c := action.New(nil)
		RegisterActions(c, member)
		mtn := seedWorkspace(t, member, "user-2", "bob@example.com", store.RoleMember)
		seedPlan(t, member, "plan-pro", "pro")

		_, err := c.Execute(memberCtx(member, "user-2", "bob@example.com", mtn.ID), "app.billing.subscribe", &SubscribeInput{PlanID: "plan-pro"})
		if !errors.Is(err, action.ErrUnauthorized) {
			t.Errorf("error = %v, want ErrUnauthorized", err)
		}
	})

	t.Run("anonymous is rejected", func(t *testing.T) {
		_, err := client.Execute(context.Background(), "app.billing.subscription", nil)
		if !errors.Is(err, action.ErrUnauthorized) {
			t.Errorf("error = %v, want ErrUnauthorized", err)
		}
	})
}
