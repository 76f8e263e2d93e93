// Package frameres manages displayable frame resources with explicit
// acquire/release lifecycle. A handle is the analog of a browser object
// URL: it must be released when replaced or when the stream stops, never
// left to the garbage collector.
package frameres

import (
	"fmt"
	"sync"
)

// Handle is one live frame resource addressable by its URI.
type Handle struct {
	registry    *Registry
	uri         string
	contentType string

	mu       sync.Mutex
	data     []byte
	released bool
}

// URI returns the stable address of the resource, valid until release.
func (h *Handle) URI() string {
	return h.uri
}

// ContentType returns the MIME type recorded at acquire time.
func (h *Handle) ContentType() string {
	return h.contentType
}

// Bytes returns the frame data, or nil once the handle is released.
// Callers receive read-only access and must not retain the slice past
// the handle's lifetime.
func (h *Handle) Bytes() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.released {
		return nil
	}
	return h.data
}

// Release frees the resource and unregisters its URI. Safe to call
// multiple times.
func (h *Handle) Release() {
	h.mu.Lock()
	if h.released {
		h.mu.Unlock()
		return
	}
	h.released = true
	h.data = nil
	h.mu.Unlock()

	h.registry.drop(h.uri)
}

// Registry tracks every live handle so leaks are observable.
type Registry struct {
	mu       sync.Mutex
	next     uint64
	live     map[string]*Handle
	onChange func(live int)
}

func NewRegistry() *Registry {
	return &Registry{
		live: make(map[string]*Handle),
	}
}

// OnChange registers a hook invoked with the live-handle count after
// every acquire and release; used to feed a metrics gauge.
func (r *Registry) OnChange(fn func(live int)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onChange = fn
}

// Acquire registers the frame bytes under a fresh URI.
func (r *Registry) Acquire(data []byte, contentType string) *Handle {
	r.mu.Lock()
	r.next++
	h := &Handle{
		registry:    r,
		uri:         fmt.Sprintf("frame://%d", r.next),
		contentType: contentType,
		data:        data,
	}
	r.live[h.uri] = h
	hook, count := r.onChange, len(r.live)
	r.mu.Unlock()

	if hook != nil {
		hook(count)
	}
	return h
}

// Resolve returns the live handle for a URI, if any.
func (r *Registry) Resolve(uri string) (*Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.live[uri]
	return h, ok
}

// Live returns the number of unreleased handles.
func (r *Registry) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live)
}

func (r *Registry) drop(uri string) {
	r.mu.Lock()
	delete(r.live, uri)
	hook, count := r.onChange, len(r.live)
	r.mu.Unlock()

	if hook != nil {
		hook(count)
	}
}
