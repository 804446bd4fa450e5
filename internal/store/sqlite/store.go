// Package sqlite is the SQLite-backed implementation of store.Store.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/opsboard/opsboard/internal/store"
)

// Store is a SQLite implementation of store.Store.
type Store struct {
	db *sql.DB
}

var _ store.Store = (*Store)(nil)

// New opens (or creates) the database at dbPath and initializes the schema.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL; PRAGMA foreign_keys=ON;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set pragmas: %w", err)
	}

	s := &Store{db: db}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

func (s *Store) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			locale TEXT NOT NULL DEFAULT 'en',
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS tenants (
			id TEXT PRIMARY KEY,
			slug TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			plan_id TEXT,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS memberships (
			tenant_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			role TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			PRIMARY KEY (tenant_id, user_id),
			FOREIGN KEY (tenant_id) REFERENCES tenants(id) ON DELETE CASCADE,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS invites (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			email TEXT NOT NULL,
			role TEXT NOT NULL,
			expires_at TIMESTAMP NOT NULL,
			accepted_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL,
			FOREIGN KEY (tenant_id) REFERENCES tenants(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS plans (
			id TEXT PRIMARY KEY,
			provider_id TEXT NOT NULL UNIQUE,
			slug TEXT NOT NULL,
			name TEXT NOT NULL,
			active INTEGER NOT NULL DEFAULT 1,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS prices (
			id TEXT PRIMARY KEY,
			plan_id TEXT NOT NULL,
			provider_id TEXT NOT NULL UNIQUE,
			billing_interval TEXT NOT NULL,
			unit_amount INTEGER NOT NULL,
			currency TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			FOREIGN KEY (plan_id) REFERENCES plans(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS subscriptions (
			tenant_id TEXT PRIMARY KEY,
			plan_id TEXT NOT NULL,
			status TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			FOREIGN KEY (tenant_id) REFERENCES tenants(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS posts (
			id TEXT PRIMARY KEY,
			slug TEXT NOT NULL UNIQUE,
			kind TEXT NOT NULL,
			title TEXT NOT NULL,
			summary TEXT NOT NULL,
			body TEXT NOT NULL,
			published_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_memberships_user ON memberships(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_invites_tenant ON invites(tenant_id)`,
		`CREATE INDEX IF NOT EXISTS idx_invites_email ON invites(email)`,
		`CREATE INDEX IF NOT EXISTS idx_prices_plan ON prices(plan_id)`,
		`CREATE INDEX IF NOT EXISTS idx_posts_published ON posts(published_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}

	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// UserStore implementation

func (s *Store) CreateUser(ctx context.Context, u *store.User) error {
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt

	query := `INSERT INTO users (id, email, name, locale, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		u.ID, u.Email, u.Name, u.Locale, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*store.User, error) {
	return s.getUser(ctx, `SELECT id, email, name, locale, created_at, updated_at
	          FROM users WHERE id = ?`, id)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*store.User, error) {
	return s.getUser(ctx, `SELECT id, email, name, locale, created_at, updated_at
	          FROM users WHERE email = ?`, email)
}

func (s *Store) getUser(ctx context.Context, query, arg string) (*store.User, error) {
	var u store.User

	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.Email, &u.Name, &u.Locale, &u.CreatedAt, &u.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &u, nil
}

// TenantStore implementation

func (s *Store) CreateTenant(ctx context.Context, t *store.Tenant) error {
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt

	query := `INSERT INTO tenants (id, slug, name, plan_id, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		t.ID, t.Slug, t.Name, t.PlanID, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create tenant: %w", err)
	}

	return nil
}

func (s *Store) GetTenant(ctx context.Context, id string) (*store.Tenant, error) {
	return s.getTenant(ctx, `SELECT id, slug, name, plan_id, created_at, updated_at
	          FROM tenants WHERE id = ?`, id)
}

func (s *Store) GetTenantBySlug(ctx context.Context, slug string) (*store.Tenant, error) {
	return s.getTenant(ctx, `SELECT id, slug, name, plan_id, created_at, updated_at
	          FROM tenants WHERE slug = ?`, slug)
}

func (s *Store) getTenant(ctx context.Context, query, arg string) (*store.Tenant, error) {
	var t store.Tenant
	var planID sql.NullString

	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&t.ID, &t.Slug, &t.Name, &planID, &t.CreatedAt, &t.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}

	if planID.Valid {
		t.PlanID = planID.String
	}

	return &t, nil
}

func (s *Store) ListTenantsForUser(ctx context.Context, userID string) ([]*store.Tenant, error) {
	query := `SELECT t.id, t.slug, t.name, t.plan_id, t.created_at, t.updated_at
	          FROM tenants t
	          JOIN memberships m ON m.tenant_id = t.id
	          WHERE m.user_id = ?
	          ORDER BY t.created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tenants: %w", err)
	}
	defer rows.Close()

	var tenants []*store.Tenant
	for rows.Next() {
		var t store.Tenant
		var planID sql.NullString

		if err := rows.Scan(&t.ID, &t.Slug, &t.Name, &planID,
			&t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tenant: %w", err)
		}

		if planID.Valid {
			t.PlanID = planID.String
		}

		tenants = append(tenants, &t)
	}

	return tenants, rows.Err()
}

// MembershipStore implementation

func (s *Store) AddMembership(ctx context.Context, m *store.Membership) error {
	m.CreatedAt = time.Now()

	query := `INSERT INTO memberships (tenant_id, user_id, role, created_at)
	          VALUES (?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query, m.TenantID, m.UserID, m.Role, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to add membership: %w", err)
	}

	return nil
}

func (s *Store) RemoveMembership(ctx context.Context, tenantID, userID string) error {
	query := `DELETE FROM memberships WHERE tenant_id = ? AND user_id = ?`

	result, err := s.db.ExecContext(ctx, query, tenantID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove membership: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return store.ErrNotFound
	}

	return nil
}

func (s *Store) GetMembership(ctx context.Context, tenantID, userID string) (*store.Membership, error) {
	query := `SELECT tenant_id, user_id, role, created_at
	          FROM memberships WHERE tenant_id = ? AND user_id = ?`

	var m store.Membership

	err := s.db.QueryRowContext(ctx, query, tenantID, userID).Scan(
		&m.TenantID, &m.UserID, &m.Role, &m.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}

	return &m, nil
}

func (s *Store) ListMemberships(ctx context.Context, tenantID string) ([]*store.Membership, error) {
	query := `SELECT tenant_id, user_id, role, created_at
	          FROM memberships WHERE tenant_id = ?
	          ORDER BY created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query memberships: %w", err)
	}
	defer rows.Close()

	var memberships []*store.Membership
	for rows.Next() {
		var m store.Membership
		if err := rows.Scan(&m.TenantID, &m.UserID, &m.Role, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		memberships = append(memberships, &m)
	}

	return memberships, rows.Err()
}

func (s *Store) CountByRole(ctx context.Context, tenantID string, role store.Role) (int, error) {
	query := `SELECT COUNT(*) FROM memberships WHERE tenant_id = ? AND role = ?`

	var count int
	if err := s.db.QueryRowContext(ctx, query, tenantID, role).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count memberships: %w", err)
	}

	return count, nil
}

// InviteStore implementation

func (s *Store) CreateInvite(ctx context.Context, inv *store.Invite) error {
	inv.CreatedAt = time.Now()

	query := `INSERT INTO invites (id, tenant_id, email, role, expires_at, accepted_at, created_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		inv.ID, inv.TenantID, inv.Email, inv.Role, inv.ExpiresAt, inv.AcceptedAt, inv.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create invite: %w", err)
	}

	return nil
}

func (s *Store) GetInvite(ctx context.Context, id string) (*store.Invite, error) {
	query := `SELECT id, tenant_id, email, role, expires_at, accepted_at, created_at
	          FROM invites WHERE id = ?`

	var inv store.Invite
	var acceptedAt sql.NullTime

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&inv.ID, &inv.TenantID, &inv.Email, &inv.Role,
		&inv.ExpiresAt, &acceptedAt, &inv.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invite: %w", err)
	}

	if acceptedAt.Valid {
		inv.AcceptedAt = &acceptedAt.Time
	}

	return &inv, nil
}

func (s *Store) MarkInviteAccepted(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE invites SET accepted_at = ? WHERE id = ? AND accepted_at IS NULL`

	result, err := s.db.ExecContext(ctx, query, at, id)
	if err != nil {
		return fmt.Errorf("failed to mark invite accepted: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return store.ErrNotFound
	}

	return nil
}

// BillingStore implementation

func (s *Store) UpsertPlan(ctx context.Context, p *store.Plan) error {
	p.UpdatedAt = time.Now()

	query := `INSERT INTO plans (id, provider_id, slug, name, active, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?)
	          ON CONFLICT(provider_id) DO UPDATE SET
	            slug=excluded.slug, name=excluded.name,
	            active=excluded.active, updated_at=excluded.updated_at`

	_, err := s.db.ExecContext(ctx, query,
		p.ID, p.ProviderID, p.Slug, p.Name, p.Active, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert plan: %w", err)
	}

	return nil
}

func (s *Store) UpsertPrice(ctx context.Context, pr *store.Price) error {
	pr.UpdatedAt = time.Now()

	query := `INSERT INTO prices (id, plan_id, provider_id, billing_interval, unit_amount, currency, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?)
	          ON CONFLICT(provider_id) DO UPDATE SET
	            plan_id=excluded.plan_id, billing_interval=excluded.billing_interval,
	            unit_amount=excluded.unit_amount, currency=excluded.currency,
	            updated_at=excluded.updated_at`

	_, err := s.db.ExecContext(ctx, query,
		pr.ID, pr.PlanID, pr.ProviderID, pr.Interval, pr.UnitAmount, pr.Currency, pr.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert price: %w", err)
	}

	return nil
}

func (s *Store) ListPlans(ctx context.Context) ([]*store.Plan, error) {
	query := `SELECT id, provider_id, slug, name, active, updated_at
	          FROM plans ORDER BY slug ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query plans: %w", err)
	}
	defer rows.Close()

	var plans []*store.Plan
	for rows.Next() {
		var p store.Plan
		if err := rows.Scan(&p.ID, &p.ProviderID, &p.Slug, &p.Name, &p.Active, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan plan: %w", err)
		}
		plans = append(plans, &p)
	}

	return plans, rows.Err()
}

func (s *Store) ListPrices(ctx context.Context, planID string) ([]*store.Price, error) {
	query := `SELECT id, plan_id, provider_id, billing_interval, unit_amount, currency, updated_at
	          FROM prices WHERE plan_id = ?
	          ORDER BY unit_amount ASC`

	rows, err := s.db.QueryContext(ctx, query, planID)
	if err != nil {
		return nil, fmt.Errorf("failed to query prices: %w", err)
	}
	defer rows.Close()

	var prices []*store.Price
	for rows.Next() {
		var pr store.Price
		if err := rows.Scan(&pr.ID, &pr.PlanID, &pr.ProviderID, &pr.Interval,
			&pr.UnitAmount, &pr.Currency, &pr.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan price: %w", err)
		}
		prices = append(prices, &pr)
	}

	return prices, rows.Err()
}

func (s *Store) SetSubscription(ctx context.Context, sub *store.Subscription) error {
	sub.UpdatedAt = time.Now()

	query := `INSERT INTO subscriptions (tenant_id, plan_id, status, updated_at)
	          VALUES (?, ?, ?, ?)
	          ON CONFLICT(tenant_id) DO UPDATE SET
	            plan_id=excluded.plan_id, status=excluded.status, updated_at=excluded.updated_at`

	_, err := s.db.ExecContext(ctx, query, sub.TenantID, sub.PlanID, sub.Status, sub.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to set subscription: %w", err)
	}

	return nil
}

func (s *Store) GetSubscription(ctx context.Context, tenantID string) (*store.Subscription, error) {
	query := `SELECT tenant_id, plan_id, status, updated_at
	          FROM subscriptions WHERE tenant_id = ?`

	var sub store.Subscription

	err := s.db.QueryRowContext(ctx, query, tenantID).Scan(
		&sub.TenantID, &sub.PlanID, &sub.Status, &sub.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	return &sub, nil
}

// PostStore implementation

func (s *Store) CreatePost(ctx context.Context, p *store.Post) error {
	query := `INSERT INTO posts (id, slug, kind, title, summary, body, published_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		p.ID, p.Slug, p.Kind, p.Title, p.Summary, p.Body, p.PublishedAt)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}

	return nil
}

func (s *Store) ListPublishedPosts(ctx context.Context, limit int) ([]*store.Post, error) {
	if limit == 0 {
		limit = 50
	}

	query := `SELECT id, slug, kind, title, summary, body, published_at
	          FROM posts WHERE published_at <= ?
	          ORDER BY published_at DESC
	          LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, time.Now(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer rows.Close()

	var posts []*store.Post
	for rows.Next() {
		var p store.Post
		if err := rows.Scan(&p.ID, &p.Slug, &p.Kind, &p.Title, &p.Summary,
			&p.Body, &p.PublishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, &p)
	}

	return posts, rows.Err()
}
