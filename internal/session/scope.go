package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/opsboard/opsboard/internal/store"
)

// ErrNoSession is returned by Scope resolvers when the request carries no
// valid session.
var ErrNoSession = fmt.Errorf("no session")

// ErrNoTenant is returned when the session has no active tenant or the
// user is not a member of it.
var ErrNoTenant = fmt.Errorf("no active tenant")

// Scope resolves the current actor for exactly one request. User and
// tenant lookups are memoized so multiple handlers or actions within the
// same request hit the store once. A Scope must never be shared across
// requests; a process-wide cache would break tenant isolation.
type Scope struct {
	claims *Claims
	users  store.UserStore
	db     TenantReader

	userOnce sync.Once
	user     *store.User
	userErr  error

	tenantOnce sync.Once
	tenant     *store.Tenant
	membership *store.Membership
	tenantErr  error
}

// TenantReader is the slice of the store the tenant resolver needs.
type TenantReader interface {
	GetTenant(ctx context.Context, id string) (*store.Tenant, error)
	GetMembership(ctx context.Context, tenantID, userID string) (*store.Membership, error)
}

// NewScope builds a request scope from parsed claims. Claims may be nil
// for anonymous requests; resolvers then return ErrNoSession.
func NewScope(claims *Claims, users store.UserStore, db TenantReader) *Scope {
	return &Scope{claims: claims, users: users, db: db}
}

// Authenticated reports whether the scope carries a session.
func (s *Scope) Authenticated() bool {
	return s.claims != nil
}

// Claims returns the raw session claims, or nil for anonymous scopes.
func (s *Scope) Claims() *Claims {
	return s.claims
}

// Machine reports whether the scope was minted from an API key: tenant
// scoped, no user behind it.
func (s *Scope) Machine() bool {
	return s.claims != nil && s.claims.Subject == "" && s.claims.TenantID != ""
}

// User resolves the current user. The lookup runs at most once per scope.
func (s *Scope) User(ctx context.Context) (*store.User, error) {
	s.userOnce.Do(func() {
		if s.claims == nil {
			s.userErr = ErrNoSession
			return
		}
		s.user, s.userErr = s.users.GetUser(ctx, s.claims.Subject)
	})
	return s.user, s.userErr
}

// Tenant resolves the active tenant and the current user's membership in
// it. The lookup runs at most once per scope.
func (s *Scope) Tenant(ctx context.Context) (*store.Tenant, *store.Membership, error) {
	s.tenantOnce.Do(func() {
		if s.claims == nil {
			s.tenantErr = ErrNoSession
			return
		}
		if s.claims.TenantID == "" {
			s.tenantErr = ErrNoTenant
			return
		}

		tenant, err := s.db.GetTenant(ctx, s.claims.TenantID)
		if err != nil {
			s.tenantErr = fmt.Errorf("resolve tenant: %w", err)
			return
		}

		// Machine credentials are tenant-scoped with no user, so there
		// is no membership to resolve.
		if s.Machine() {
			s.tenant = tenant
			return
		}

		membership, err := s.db.GetMembership(ctx, tenant.ID, s.claims.Subject)
		if err == store.ErrNotFound {
			s.tenantErr = ErrNoTenant
			return
		}
		if err != nil {
			s.tenantErr = fmt.Errorf("resolve membership: %w", err)
			return
		}

		s.tenant = tenant
		s.membership = membership
	})
	return s.tenant, s.membership, s.tenantErr
}

type scopeContextKey struct{}

// WithScope attaches a request scope to the context.
func WithScope(ctx context.Context, s *Scope) context.Context {
	return context.WithValue(ctx, scopeContextKey{}, s)
}

// FromContext returns the scope attached to the context, or an anonymous
// scope when none is present.
func FromContext(ctx context.Context) *Scope {
	if s, ok := ctx.Value(scopeContextKey{}).(*Scope); ok {
		return s
	}
	return &Scope{}
}
