// Package store defines the persisted domain model and the storage
// interface implemented by concrete backends.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Role is a membership role within a tenant.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleMember Role = "member"
)

// User is an authenticated account.
type User struct {
	ID        string
	Email     string
	Name      string
	Locale    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Tenant is an organization owning dashboards, files, and a subscription.
type Tenant struct {
	ID        string
	Slug      string
	Name      string
	PlanID    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Membership links a user to a tenant with a role.
type Membership struct {
	TenantID  string
	UserID    string
	Role      Role
	CreatedAt time.Time
}

// Invite is a pending offer of membership, addressed to an email.
type Invite struct {
	ID         string
	TenantID   string
	Email      string
	Role       Role
	ExpiresAt  time.Time
	AcceptedAt *time.Time
	CreatedAt  time.Time
}

// Plan mirrors a product in the payment provider's catalog.
type Plan struct {
	ID         string
	ProviderID string
	Slug       string
	Name       string
	Active     bool
	UpdatedAt  time.Time
}

// Price is a billing interval/amount attached to a plan.
type Price struct {
	ID         string
	PlanID     string
	ProviderID string
	Interval   string
	UnitAmount int64
	Currency   string
	UpdatedAt  time.Time
}

// Subscription records a tenant's current plan.
type Subscription struct {
	TenantID  string
	PlanID    string
	Status    string
	UpdatedAt time.Time
}

// PostKind distinguishes blog entries from changelog entries.
type PostKind string

const (
	PostBlog      PostKind = "blog"
	PostChangelog PostKind = "changelog"
)

// Post is a published blog or changelog entry rendered into the feed.
type Post struct {
	ID          string
	Slug        string
	Kind        PostKind
	Title       string
	Summary     string
	Body        string
	PublishedAt time.Time
}

type UserStore interface {
	CreateUser(ctx context.Context, u *User) error
	GetUser(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
}

type TenantStore interface {
	CreateTenant(ctx context.Context, t *Tenant) error
	GetTenant(ctx context.Context, id string) (*Tenant, error)
	GetTenantBySlug(ctx context.Context, slug string) (*Tenant, error)
	ListTenantsForUser(ctx context.Context, userID string) ([]*Tenant, error)
}

type MembershipStore interface {
	AddMembership(ctx context.Context, m *Membership) error
	RemoveMembership(ctx context.Context, tenantID, userID string) error
	GetMembership(ctx context.Context, tenantID, userID string) (*Membership, error)
	ListMemberships(ctx context.Context, tenantID string) ([]*Membership, error)
	CountByRole(ctx context.Context, tenantID string, role Role) (int, error)
}

type InviteStore interface {
	CreateInvite(ctx context.Context, inv *Invite) error
	GetInvite(ctx context.Context, id string) (*Invite, error)
	MarkInviteAccepted(ctx context.Context, id string, at time.Time) error
}

type BillingStore interface {
	UpsertPlan(ctx context.Context, p *Plan) error
	UpsertPrice(ctx context.Context, pr *Price) error
	ListPlans(ctx context.Context) ([]*Plan, error)
	ListPrices(ctx context.Context, planID string) ([]*Price, error)
	SetSubscription(ctx context.Context, s *Subscription) error
	GetSubscription(ctx context.Context, tenantID string) (*Subscription, error)
}

type PostStore interface {
	CreatePost(ctx context.Context, p *Post) error
	ListPublishedPosts(ctx context.Context, limit int) ([]*Post, error)
}

// Store is the full persistence surface, constructed once in main and
// injected into services.
type Store interface {
	UserStore
	TenantStore
	MembershipStore
	InviteStore
	BillingStore
	PostStore
	Close() error
}
