package billing

import (
	"context"
	"errors"

	"github.com/opsboard/opsboard/internal/action"
	"github.com/opsboard/opsboard/internal/store"
)

// ErrUnknownPlan is returned when subscribing to a plan the sync has not
// imported.
var ErrUnknownPlan = errors.New("unknown plan")

// SubscribeInput is the payload for the app.billing.subscribe action.
type SubscribeInput struct {
	PlanID string `json:"planId" validate:"required"`
}

// SubscriptionResult wraps the active subscription and its plan.
// Subscription is nil when the workspace has none.
type SubscriptionResult struct {
	Subscription *store.Subscription `json:"subscription"`
	Plan         *store.Plan         `json:"plan,omitempty"`
}

// RegisterActions wires the subscription actions into the client.
func RegisterActions(client *action.Client, db store.BillingStore) {
	client.Register(action.Definition{
		Name: "app.billing.subscription",
		Kind: action.Query,
		Handler: func(ctx context.Context, inv *action.Invocation) (*action.Result, error) {
			tenant, _, err := inv.Scope.Tenant(ctx)
			if err != nil {
				return nil, action.ErrUnauthorized
			}

			sub, err := db.GetSubscription(ctx, tenant.ID)
			if errors.Is(err, store.ErrNotFound) {
				return &action.Result{Data: &SubscriptionResult{}}, nil
			}
			if err != nil {
				return nil, err
			}

			result := &SubscriptionResult{Subscription: sub}
			if plan := findPlan(ctx, db, sub.PlanID); plan != nil {
				result.Plan = plan
			}
			return &action.Result{Data: result}, nil
		},
	})

	client.Register(action.Definition{
		Name:  "app.billing.subscribe",
		Kind:  action.Mutate,
		Input: func() any { return &SubscribeInput{} },
		Handler: func(ctx context.Context, inv *action.Invocation) (*action.Result, error) {
			tenant, membership, err := inv.Scope.Tenant(ctx)
			if err != nil {
				return nil, action.ErrUnauthorized
			}
			if membership == nil || membership.Role != store.RoleOwner {
				return nil, action.ErrUnauthorized
			}

			in := inv.Input.(*SubscribeInput)
			if findPlan(ctx, db, in.PlanID) == nil {
				return nil, ErrUnknownPlan
			}

			sub := &store.Subscription{
				TenantID: tenant.ID,
				PlanID:   in.PlanID,
				Status:   "active",
			}
			if err := db.SetSubscription(ctx, sub); err != nil {
				return nil, err
			}

			return &action.Result{Data: &SubscriptionResult{Subscription: sub}}, nil
		},
	})
}

func findPlan(ctx context.Context, db store.BillingStore, planID string) *store.Plan {
	plans, err := db.ListPlans(ctx)
	if err != nil {
		return nil
	}
	for _, p := range plans {
		if p.ID == planID {
			return p
		}
	}
	return nil
}
