package session

import (
	"net/http"

	"github.com/opsboard/opsboard/internal/httpx"
	"github.com/opsboard/opsboard/internal/store"
)

// Middleware attaches a request scope to every request's context. The
// bearer credential may be a session token or, when a keychain is
// configured, an API key that mints a tenant-scoped machine scope.
// Parsing failures produce an anonymous scope rather than an error;
// routes that need a session gate on it with RequireSession.
func Middleware(manager *Manager, keychain *Keychain, users store.UserStore, db TenantReader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var claims *Claims

			if token := TokenFromRequest(r); token != "" {
				if parsed, err := manager.Parse(token); err == nil {
					claims = parsed
				} else if keychain != nil {
					if tenantID, kerr := keychain.Validate(token); kerr == nil {
						claims = &Claims{TenantID: tenantID}
					}
				}
			}

			scope := NewScope(claims, users, db)
			next.ServeHTTP(w, r.WithContext(WithScope(r.Context(), scope)))
		})
	}
}

// RequireSession short-circuits with 401 unless the request carries a
// valid session. The resolved user is attached to the request context
// under "user".
func RequireSession() httpx.Middleware {
	return func(w http.ResponseWriter, r *http.Request, rc *httpx.RequestContext) error {
		scope := FromContext(r.Context())
		if !scope.Authenticated() {
			return httpx.Unauthorized("session required")
		}

		// Machine scopes carry no user; the credential itself is the
		// authentication.
		if scope.Machine() {
			return nil
		}

		user, err := scope.User(r.Context())
		if err != nil {
			return httpx.Unauthorized("session required")
		}

		rc.Set("user", user)
		return nil
	}
}

// RequireTenant short-circuits with 403 unless the session has an active
// tenant the user is a member of. Attaches "tenant" and "membership" to
// the request context. Implies RequireSession.
func RequireTenant() httpx.Middleware {
	return func(w http.ResponseWriter, r *http.Request, rc *httpx.RequestContext) error {
		scope := FromContext(r.Context())
		if !scope.Authenticated() {
			return httpx.Unauthorized("session required")
		}

		tenant, membership, err := scope.Tenant(r.Context())
		if err != nil {
			return httpx.Forbidden("active tenant required")
		}

		rc.Set("tenant", tenant)
		if membership != nil {
			rc.Set("membership", membership)
		}
		return nil
	}
}
