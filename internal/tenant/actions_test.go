package tenant

import (
	"context"
	"errors"
	"testing"

	"github.com/opsboard/opsboard/internal/action"
	"github.com/opsboard/opsboard/internal/session"
	"github.com/opsboard/opsboard/internal/store"
	"github.com/opsboard/opsboard/internal/store/memory"
)

func scopedCtx(db store.Store, userID, email, tenantID string) context.Context {
	claims := &session.Claims{Email: email, TenantID: tenantID}
	claims.Subject = userID
	return session.WithScope(context.Background(), session.NewScope(claims, db, db))
}

func TestCreateAction(t *testing.T) {
	db := memory.New()
	client := action.New(nil)
	RegisterActions(client, NewService(db))

	seedUser(t, db, "user-1", "ada@example.com")
	ctx := scopedCtx(db, "user-1", "ada@example.com", "")

	res, err := client.Execute(ctx, "app.tenants.create", &CreateInput{Name: "Acme Corp"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.Redirect != "/app/acme-corp" {
		t.Errorf("redirect = %q", res.Redirect)
	}

	t.Run("anonymous is rejected", func(t *testing.T) {
		_, err := client.Execute(context.Background(), "app.tenants.create", &CreateInput{Name: "Side Project"})
		if !errors.Is(err, action.ErrUnauthorized) {
			t.Errorf("error = %v, want ErrUnauthorized", err)
		}
	})
}

func TestListAction(t *testing.T) {
	db := memory.New()
	svc := NewService(db)
	client := action.New(nil)
	RegisterActions(client, svc)

	ada := seedUser(t, db, "user-1", "ada@example.com")
	seedUser(t, db, "user-2", "bob@example.com")
	ctx := context.Background()

	if _, err := svc.Create(ctx, "Acme", ada); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Create(ctx, "Globex", ada); err != nil {
		t.Fatal(err)
	}

	res, err := client.Execute(scopedCtx(db, "user-1", "ada@example.com", ""), "app.tenants.list", nil)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got := len(res.Data.(*ListResult).Tenants); got != 2 {
		t.Errorf("tenants = %d, want 2", got)
	}

	res, err = client.Execute(scopedCtx(db, "user-2", "bob@example.com", ""), "app.tenants.list", nil)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got := len(res.Data.(*ListResult).Tenants); got != 0 {
		t.Errorf("tenants for non-member = %d, want 0", got)
	}
}

func TestRemoveMemberAction(t *testing.T) {
	db := memory.New()
	svc := NewService(db)
	client := action.New(nil)
	RegisterActions(client, svc)

	ada := seedUser(t, db, "11111111-1111-4111-8111-111111111111", "ada@example.com")
	bob := seedUser(t, db, "22222222-2222-4222-8222-222222222222", "bob@example.com")
	ctx := context.Background()

	tn, err := svc.Create(ctx, "Acme", ada)
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.AddMember(ctx, tn.ID, bob.ID, store.RoleMember); err != nil {
		t.Fatal(err)
	}

	t.Run("member cannot remove", func(t *testing.T) {
		_, err := client.Execute(
			scopedCtx(db, bob.ID, bob.Email, tn.ID),
			"app.tenants.members.remove",
			&RemoveMemberInput{UserID: ada.ID},
		)
		if !errors.Is(err, action.ErrUnauthorized) {
			t.Errorf("error = %v, want ErrUnauthorized", err)
		}
	})

	t.Run("owner removes member", func(t *testing.T) {
		_, err := client.Execute(
			scopedCtx(db, ada.ID, ada.Email, tn.ID),
			"app.tenants.members.remove",
			&RemoveMemberInput{UserID: bob.ID},
		)
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if _, err := db.GetMembership(ctx, tn.ID, bob.ID); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("membership still present, err = %v", err)
		}
	})

	t.Run("sole owner cannot be removed", func(t *testing.T) {
		_, err := client.Execute(
			scopedCtx(db, ada.ID, ada.Email, tn.ID),
			"app.tenants.members.remove",
			&RemoveMemberInput{UserID: ada.ID},
		)
		if !errors.Is(err, ErrLastOwner) {
			t.Errorf("error = %v, want ErrLastOwner", err)
		}
	})
}
