// Package storage stores uploaded files under per-scope prefixes:
// tenants/<id>, users/<id>, and shared/<id>.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// Scope partitions stored files by owner kind.
type Scope string

const (
	ScopeTenants Scope = "tenants"
	ScopeUsers   Scope = "users"
	ScopeShared  Scope = "shared"
)

// ErrInvalidPath is returned for paths that escape their scope prefix.
var ErrInvalidPath = errors.New("invalid file path")

// FileInfo describes one stored file.
type FileInfo struct {
	Path      string    `json:"path"`
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Provider is the file storage capability handlers depend on. Every call
// may fail and must honor context cancellation.
type Provider interface {
	Upload(ctx context.Context, scope Scope, id, name string, r io.Reader) (string, error)
	Delete(ctx context.Context, scope Scope, id, path string) error
	DeleteAll(ctx context.Context, scope Scope, id string) error
	List(ctx context.Context, scope Scope, id string) ([]FileInfo, error)
}

// ValidScope reports whether s names a known scope.
func ValidScope(s string) bool {
	switch Scope(s) {
	case ScopeTenants, ScopeUsers, ScopeShared:
		return true
	}
	return false
}
