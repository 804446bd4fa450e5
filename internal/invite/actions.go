package invite

import (
	"context"

	"github.com/opsboard/opsboard/internal/action"
	"github.com/opsboard/opsboard/internal/store"
)

// CreateInput is the payload for the app.invites.create action. The
// target tenant comes from the session's active tenant.
type CreateInput struct {
	Email string     `json:"email" validate:"required,email"`
	Role  store.Role `json:"role" validate:"required,oneof=owner member"`
}

// GetInput is the payload for the app.invites.get action.
type GetInput struct {
	InviteID string `json:"inviteId" validate:"required,uuid4"`
}

// AcceptInput is the payload for the app.invites.accept action.
type AcceptInput struct {
	InviteID string `json:"inviteId" validate:"required,uuid4"`
}

// GetResult wraps the invite lookup; Invite is nil when the invite is
// not redeemable by the current user.
type GetResult struct {
	Invite *store.Invite `json:"invite"`
}

// RegisterActions wires the invite actions into the client.
func RegisterActions(client *action.Client, svc *Service) {
	client.Register(action.Definition{
		Name:  "app.invites.create",
		Kind:  action.Mutate,
		Input: func() any { return &CreateInput{} },
		Handler: func(ctx context.Context, inv *action.Invocation) (*action.Result, error) {
			tenant, membership, err := inv.Scope.Tenant(ctx)
			if err != nil {
				return nil, action.ErrUnauthorized
			}
			if membership.Role != store.RoleOwner {
				return nil, action.ErrUnauthorized
			}

			in := inv.Input.(*CreateInput)
			created, err := svc.Create(ctx, tenant.ID, in.Email, in.Role)
			if err != nil {
				return nil, err
			}

			return &action.Result{Data: created}, nil
		},
	})

	client.Register(action.Definition{
		Name:  "app.invites.get",
		Kind:  action.Query,
		Input: func() any { return &GetInput{} },
		Handler: func(ctx context.Context, inv *action.Invocation) (*action.Result, error) {
			user, err := inv.Scope.User(ctx)
			if err != nil {
				return nil, action.ErrUnauthorized
			}

			in := inv.Input.(*GetInput)
			found, err := svc.Get(ctx, in.InviteID, user.Email)
			if err != nil {
				return nil, err
			}

			return &action.Result{Data: &GetResult{Invite: found}}, nil
		},
	})

	client.Register(action.Definition{
		Name:  "app.invites.accept",
		Kind:  action.Mutate,
		Input: func() any { return &AcceptInput{} },
		Handler: func(ctx context.Context, inv *action.Invocation) (*action.Result, error) {
			user, err := inv.Scope.User(ctx)
			if err != nil {
				return nil, action.ErrUnauthorized
			}

			in := inv.Input.(*AcceptInput)
			tenant, err := svc.Accept(ctx, in.InviteID, user)
			if err != nil {
				return nil, err
			}

			return &action.Result{Redirect: "/app/" + tenant.Slug}, nil
		},
	})
}
