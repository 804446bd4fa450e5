// Package invite issues and redeems tenant membership invites.
package invite

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/opsboard/opsboard/internal/store"
)

// ErrInvalid is the domain error for an invite that cannot be redeemed:
// unknown, expired, already accepted, or addressed to another email.
var ErrInvalid = errors.New("invite is invalid")

// Service implements invite use-cases over the injected store.
type Service struct {
	db  store.Store
	ttl time.Duration
}

// NewService creates an invite service. ttl bounds how long new invites
// stay redeemable.
func NewService(db store.Store, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Service{db: db, ttl: ttl}
}

// Create issues an invite for email to join the tenant.
func (s *Service) Create(ctx context.Context, tenantID, email string, role store.Role) (*store.Invite, error) {
	inv := &store.Invite{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		Email:     strings.ToLower(email),
		Role:      role,
		ExpiresAt: time.Now().Add(s.ttl),
	}

	if err := s.db.CreateInvite(ctx, inv); err != nil {
		return nil, fmt.Errorf("create invite: %w", err)
	}

	return inv, nil
}

// Get returns the invite when it is still redeemable by currentEmail.
// Email mismatch, expiry, and prior acceptance all yield (nil, nil): the
// caller renders "no invite" rather than an error.
func (s *Service) Get(ctx context.Context, id, currentEmail string) (*store.Invite, error) {
	inv, err := s.db.GetInvite(ctx, id)
	if err == store.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get invite: %w", err)
	}

	if !redeemable(inv, currentEmail) {
		return nil, nil
	}

	return inv, nil
}

// Accept redeems the invite for the user, creating the membership. Under
// the same mismatch conditions Get treats as absent, Accept returns
// ErrInvalid and never touches membership.
func (s *Service) Accept(ctx context.Context, id string, user *store.User) (*store.Tenant, error) {
	inv, err := s.db.GetInvite(ctx, id)
	if err == store.ErrNotFound {
		return nil, ErrInvalid
	}
	if err != nil {
		return nil, fmt.Errorf("get invite: %w", err)
	}

	if !redeemable(inv, user.Email) {
		return nil, ErrInvalid
	}

	if err := s.db.MarkInviteAccepted(ctx, inv.ID, time.Now()); err != nil {
		if err == store.ErrNotFound {
			return nil, ErrInvalid
		}
		return nil, fmt.Errorf("mark invite accepted: %w", err)
	}

	m := &store.Membership{TenantID: inv.TenantID, UserID: user.ID, Role: inv.Role}
	if err := s.db.AddMembership(ctx, m); err != nil {
		return nil, fmt.Errorf("add membership: %w", err)
	}

	tenant, err := s.db.GetTenant(ctx, inv.TenantID)
	if err != nil {
		return nil, fmt.Errorf("get tenant: %w", err)
	}

	return tenant, nil
}

func redeemable(inv *store.Invite, email string) bool {
	if inv.AcceptedAt != nil {
		return false
	}
	if !strings.EqualFold(inv.Email, email) {
		return false
	}
	if time.Now().After(inv.ExpiresAt) {
		return false
	}
	return true
}
