// Package blob stores uploaded images. Uploads land under a temporary prefix
// and are moved into their final folder once the owning record accepts them.
package blob

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a path holds no object.
var ErrNotFound = errors.New("blob not found")

// Upload is one file received from a client.
type Upload struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Store is the blob backend used by the catalog.
type Store interface {
	// Put stores an upload under the temporary prefix and returns its path.
	Put(ctx context.Context, u Upload) (string, error)
	// Move relocates the object at src to dst.
	Move(ctx context.Context, src, dst string) error
	Delete(ctx context.Context, p string) error
	Ping(ctx context.Context) error
}

// tempName builds a collision-free temporary object name that keeps the
// upload's extension.
func tempName(prefix, name string) string {
	ext := strings.ToLower(path.Ext(path.Base(name)))
	return path.Join(prefix, uuid.NewString()+ext)
}

// Destination places src's base name under folder.
func Destination(folder, src string) string {
	return path.Join(strings.Trim(folder, "/"), path.Base(src))
}
