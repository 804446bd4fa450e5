package tenant

import (
	"context"

	"github.com/opsboard/opsboard/internal/action"
	"github.com/opsboard/opsboard/internal/store"
)

// CreateInput is the payload for the app.tenants.create action.
type CreateInput struct {
	Name string `json:"name" validate:"required,min=2,max=80"`
}

// RemoveMemberInput is the payload for the app.tenants.members.remove
// action. The target tenant comes from the session's active tenant.
type RemoveMemberInput struct {
	UserID string `json:"userId" validate:"required,uuid4"`
}

// ListResult wraps the workspaces the current user belongs to.
type ListResult struct {
	Tenants []*store.Tenant `json:"tenants"`
}

// RegisterActions wires the workspace actions into the client.
func RegisterActions(client *action.Client, svc *Service) {
	client.Register(action.Definition{
		Name:  "app.tenants.create",
		Kind:  action.Mutate,
		Input: func() any { return &CreateInput{} },
		Handler: func(ctx context.Context, inv *action.Invocation) (*action.Result, error) {
			user, err := inv.Scope.User(ctx)
			if err != nil {
				return nil, action.ErrUnauthorized
			}

			in := inv.Input.(*CreateInput)
			created, err := svc.Create(ctx, in.Name, user)
			if err != nil {
				return nil, err
			}

			return &action.Result{Redirect: "/app/" + created.Slug}, nil
		},
	})

	client.Register(action.Definition{
		Name: "app.tenants.list",
		Kind: action.Query,
		Handler: func(ctx context.Context, inv *action.Invocation) (*action.Result, error) {
			user, err := inv.Scope.User(ctx)
			if err != nil {
				return nil, action.ErrUnauthorized
			}

			tenants, err := svc.ListForUser(ctx, user.ID)
			if err != nil {
				return nil, err
			}

			return &action.Result{Data: &ListResult{Tenants: tenants}}, nil
		},
	})

	client.Register(action.Definition{
		Name:  "app.tenants.members.remove",
		Kind:  action.Mutate,
		Input: func() any { return &RemoveMemberInput{} },
		Handler: func(ctx context.Context, inv *action.Invocation) (*action.Result, error) {
			current, membership, err := inv.Scope.Tenant(ctx)
			if err != nil {
				return nil, action.ErrUnauthorized
			}
			if membership.Role != store.RoleOwner {
				return nil, action.ErrUnauthorized
			}

			in := inv.Input.(*RemoveMemberInput)
			if err := svc.RemoveMember(ctx, current.ID, in.UserID); err != nil {
				return nil, err
			}

			return &action.Result{Data: map[string]bool{"removed": true}}, nil
		},
	})
}
