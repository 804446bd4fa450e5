package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// FS is a Provider backed by a local directory tree.
type FS struct {
	root string
}

var _ Provider = (*FS)(nil)

// NewFS creates a filesystem provider rooted at dir.
func NewFS(dir string) (*FS, error) {
	if dir == "" {
		return nil, fmt.Errorf("storage root cannot be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}

	return &FS{root: dir}, nil
}

// resolve maps a scope/id/name triple onto a filesystem path, rejecting
// anything that would escape the scope prefix.
func (f *FS) resolve(scope Scope, id, name string) (string, error) {
	if id == "" || name == "" || strings.Contains(name, "..") {
		return "", ErrInvalidPath
	}

	clean := path.Clean("/" + name)
	if clean == "/" {
		return "", ErrInvalidPath
	}

	return filepath.Join(f.root, string(scope), id, filepath.FromSlash(clean)), nil
}

func (f *FS) Upload(ctx context.Context, scope Scope, id, name string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	target, err := f.resolve(scope, id, name)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	dst, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		os.Remove(target)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	rel, err := filepath.Rel(f.root, target)
	if err != nil {
		return "", fmt.Errorf("failed to relativize path: %w", err)
	}

	return filepath.ToSlash(rel), nil
}

func (f *FS) Delete(ctx context.Context, scope Scope, id, p string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// Stored paths are scope-prefixed; strip the prefix before resolving
	prefix := string(scope) + "/" + id + "/"
	name := strings.TrimPrefix(p, prefix)

	target, err := f.resolve(scope, id, name)
	if err != nil {
		return err
	}

	if err := os.Remove(target); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file %s not found", p)
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}

func (f *FS) DeleteAll(ctx context.Context, scope Scope, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if id == "" {
		return ErrInvalidPath
	}

	dir := filepath.Join(f.root, string(scope), id)
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to delete files: %w", err)
	}

	return nil
}

func (f *FS) List(ctx context.Context, scope Scope, id string) ([]FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, ErrInvalidPath
	}

	dir := filepath.Join(f.root, string(scope), id)

	files := []FileInfo{}
	err := filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(f.root, p)
		if err != nil {
			return err
		}

		files = append(files, FileInfo{
			Path:      filepath.ToSlash(rel),
			Name:      d.Name(),
			Size:      info.Size(),
			UpdatedAt: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	return files, nil
}
