// Package tenant manages organizations and their memberships.
package tenant

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/opsboard/opsboard/internal/store"
)

// ErrLastOwner is returned when removing a member would leave the tenant
// without an owner.
var ErrLastOwner = errors.New("cannot remove the last owner")

// ErrSlugTaken is returned when a tenant slug is already in use.
var ErrSlugTaken = errors.New("slug is already taken")

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Service implements tenant use-cases over the injected store.
type Service struct {
	db store.Store
}

// NewService creates a tenant service.
func NewService(db store.Store) *Service {
	return &Service{db: db}
}

// Create provisions a tenant and makes the creator its owner.
func (s *Service) Create(ctx context.Context, name string, creator *store.User) (*store.Tenant, error) {
	slug := Slugify(name)
	if slug == "" {
		return nil, fmt.Errorf("tenant name %q produces an empty slug", name)
	}

	if _, err := s.db.GetTenantBySlug(ctx, slug); err == nil {
		return nil, ErrSlugTaken
	} else if err != store.ErrNotFound {
		return nil, fmt.Errorf("check slug: %w", err)
	}

	t := &store.Tenant{
		ID:   uuid.New().String(),
		Slug: slug,
		Name: name,
	}
	if err := s.db.CreateTenant(ctx, t); err != nil {
		return nil, fmt.Errorf("create tenant: %w", err)
	}

	m := &store.Membership{TenantID: t.ID, UserID: creator.ID, Role: store.RoleOwner}
	if err := s.db.AddMembership(ctx, m); err != nil {
		return nil, fmt.Errorf("add owner membership: %w", err)
	}

	return t, nil
}

// GetBySlug returns the tenant registered under slug.
func (s *Service) GetBySlug(ctx context.Context, slug string) (*store.Tenant, error) {
	return s.db.GetTenantBySlug(ctx, slug)
}

// ListForUser returns the tenants the user is a member of.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]*store.Tenant, error) {
	return s.db.ListTenantsForUser(ctx, userID)
}

// AddMember attaches a user to the tenant with the given role.
func (s *Service) AddMember(ctx context.Context, tenantID, userID string, role store.Role) error {
	m := &store.Membership{TenantID: tenantID, UserID: userID, Role: role}
	if err := s.db.AddMembership(ctx, m); err != nil {
		return fmt.Errorf("add member: %w", err)
	}
	return nil
}

// RemoveMember detaches a user from the tenant. The sole remaining owner
// cannot be removed.
func (s *Service) RemoveMember(ctx context.Context, tenantID, userID string) error {
	m, err := s.db.GetMembership(ctx, tenantID, userID)
	if err != nil {
		return err
	}

	if m.Role == store.RoleOwner {
		owners, err := s.db.CountByRole(ctx, tenantID, store.RoleOwner)
		if err != nil {
			return fmt.Errorf("count owners: %w", err)
		}
		if owners <= 1 {
			return ErrLastOwner
		}
	}

	return s.db.RemoveMembership(ctx, tenantID, userID)
}

// Slugify lowercases a name and collapses runs of non-alphanumerics into
// single hyphens.
func Slugify(name string) string {
	slug := slugPattern.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}
