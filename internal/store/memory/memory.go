// Package memory is an in-memory implementation of store.Store, used in
// tests and for ephemeral development servers.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/opsboard/opsboard/internal/store"
)

// Store keeps all records in maps guarded by one mutex.
type Store struct {
	mu            sync.RWMutex
	users         map[string]*store.User
	tenants       map[string]*store.Tenant
	memberships   map[string]*store.Membership // tenantID/userID
	invites       map[string]*store.Invite
	plans         map[string]*store.Plan  // keyed by provider ID
	prices        map[string]*store.Price // keyed by provider ID
	subscriptions map[string]*store.Subscription
	posts         map[string]*store.Post
}

var _ store.Store = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		users:         make(map[string]*store.User),
		tenants:       make(map[string]*store.Tenant),
		memberships:   make(map[string]*store.Membership),
		invites:       make(map[string]*store.Invite),
		plans:         make(map[string]*store.Plan),
		prices:        make(map[string]*store.Price),
		subscriptions: make(map[string]*store.Subscription),
		posts:         make(map[string]*store.Post),
	}
}

func (s *Store) Close() error { return nil }

func membershipKey(tenantID, userID string) string {
	return tenantID + "/" + userID
}

func (s *Store) CreateUser(ctx context.Context, u *store.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*store.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*store.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) CreateTenant(ctx context.Context, t *store.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	cp := *t
	s.tenants[t.ID] = &cp
	return nil
}

func (s *Store) GetTenant(ctx context.Context, id string) (*store.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tenants[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *Store) GetTenantBySlug(ctx context.Context, slug string) (*store.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.tenants {
		if t.Slug == slug {
			cp := *t
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) ListTenantsForUser(ctx context.Context, userID string) ([]*store.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var tenants []*store.Tenant
	for _, m := range s.memberships {
		if m.UserID != userID {
			continue
		}
		if t, ok := s.tenants[m.TenantID]; ok {
			cp := *t
			tenants = append(tenants, &cp)
		}
	}

	sort.Slice(tenants, func(i, j int) bool {
		return tenants[i].CreatedAt.Before(tenants[j].CreatedAt)
	})
	return tenants, nil
}

func (s *Store) AddMembership(ctx context.Context, m *store.Membership) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m.CreatedAt = time.Now()
	cp := *m
	s.memberships[membershipKey(m.TenantID, m.UserID)] = &cp
	return nil
}

func (s *Store) RemoveMembership(ctx context.Context, tenantID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := membershipKey(tenantID, userID)
	if _, ok := s.memberships[key]; !ok {
		return store.ErrNotFound
	}
	delete(s.memberships, key)
	return nil
}

func (s *Store) GetMembership(ctx context.Context, tenantID, userID string) (*store.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.memberships[membershipKey(tenantID, userID)]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (s *Store) ListMemberships(ctx context.Context, tenantID string) ([]*store.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var memberships []*store.Membership
	for _, m := range s.memberships {
		if m.TenantID == tenantID {
			cp := *m
			memberships = append(memberships, &cp)
		}
	}

	sort.Slice(memberships, func(i, j int) bool {
		return memberships[i].CreatedAt.Before(memberships[j].CreatedAt)
	})
	return memberships, nil
}

func (s *Store) CountByRole(ctx context.Context, tenantID string, role store.Role) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, m := range s.memberships {
		if m.TenantID == tenantID && m.Role == role {
			count++
		}
	}
	return count, nil
}

func (s *Store) CreateInvite(ctx context.Context, inv *store.Invite) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv.CreatedAt = time.Now()
	cp := *inv
	s.invites[inv.ID] = &cp
	return nil
}

func (s *Store) GetInvite(ctx context.Context, id string) (*store.Invite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inv, ok := s.invites[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *inv
	return &cp, nil
}

func (s *Store) MarkInviteAccepted(ctx context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.invites[id]
	if !ok || inv.AcceptedAt != nil {
		return store.ErrNotFound
	}
	inv.AcceptedAt = &at
	return nil
}

func (s *Store) UpsertPlan(ctx context.Context, p *store.Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.UpdatedAt = time.Now()
	if existing, ok := s.plans[p.ProviderID]; ok {
		p.ID = existing.ID
	}
	cp := *p
	s.plans[p.ProviderID] = &cp
	return nil
}

func (s *Store) UpsertPrice(ctx context.Context, pr *store.Price) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pr.UpdatedAt = time.Now()
	if existing, ok := s.prices[pr.ProviderID]; ok {
		pr.ID = existing.ID
	}
	cp := *pr
	s.prices[pr.ProviderID] = &cp
	return nil
}

func (s *Store) ListPlans(ctx context.Context) ([]*store.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var plans []*store.Plan
	for _, p := range s.plans {
		cp := *p
		plans = append(plans, &cp)
	}

	sort.Slice(plans, func(i, j int) bool { return plans[i].Slug < plans[j].Slug })
	return plans, nil
}

func (s *Store) ListPrices(ctx context.Context, planID string) ([]*store.Price, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var prices []*store.Price
	for _, pr := range s.prices {
		if pr.PlanID == planID {
			cp := *pr
			prices = append(prices, &cp)
		}
	}

	sort.Slice(prices, func(i, j int) bool { return prices[i].UnitAmount < prices[j].UnitAmount })
	return prices, nil
}

func (s *Store) SetSubscription(ctx context.Context, sub *store.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub.UpdatedAt = time.Now()
	cp := *sub
	s.subscriptions[sub.TenantID] = &cp
	return nil
}

func (s *Store) GetSubscription(ctx context.Context, tenantID string) (*store.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.subscriptions[tenantID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *sub
	return &cp, nil
}

func (s *Store) CreatePost(ctx context.Context, p *store.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *p
	s.posts[p.ID] = &cp
	return nil
}

func (s *Store) ListPublishedPosts(ctx context.Context, limit int) ([]*store.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit == 0 {
		limit = 50
	}

	now := time.Now()
	var posts []*store.Post
	for _, p := range s.posts {
		if p.PublishedAt.After(now) {
			continue
		}
		cp := *p
		posts = append(posts, &cp)
	}

	sort.Slice(posts, func(i, j int) bool {
		return posts[i].PublishedAt.After(posts[j].PublishedAt)
	})

	if len(posts) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}
