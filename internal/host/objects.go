package host

import (
	"sync"

	"github.com/google/uuid"

	"github.com/wellwelwel/jpegr/internal/blob"
)

const objectURLPrefix = "blob:jpegr/"

// ObjectRegistry is an in-memory ObjectURLs. References stay alive until
// revoked, so callers must revoke what they no longer display.
type ObjectRegistry struct {
	mu      sync.RWMutex
	objects map[string]*blob.Blob
}

func NewObjectRegistry() *ObjectRegistry {
	return &ObjectRegistry{objects: make(map[string]*blob.Blob)}
}

func (r *ObjectRegistry) CreateObjectURL(b *blob.Blob) (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	url := objectURLPrefix + id.String()

	r.mu.Lock()
	r.objects[url] = b
	r.mu.Unlock()
	return url, nil
}

// RevokeObjectURL is a no-op for unknown URLs.
func (r *ObjectRegistry) RevokeObjectURL(url string) {
	r.mu.Lock()
	delete(r.objects, url)
	r.mu.Unlock()
}

func (r *ObjectRegistry) Lookup(url string) (*blob.Blob, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.objects[url]
	return b, ok
}

// Len reports how many references are live.
func (r *ObjectRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.objects)
}
