// Package vendors holds the per-vendor totals extraction routines and the
// registry that dispatches to them.
package vendors

import (
	"sort"
	"strings"
	"sync"

	"github.com/facturaIA/factura-extractor-ar/internal/models"
)

// Handler extracts the totals block of one vendor's invoice layout
type Handler interface {
	ExtractTotals(lines models.Lines) models.Totals
}

// ProviderNamer is implemented by handlers that know how their vendor prints
// its legal name
type ProviderNamer interface {
	// ProviderName returns the first header line naming the vendor, or "".
	ProviderName(head models.Lines) string
	// LegalName is the canonical name used when the header does not show it.
	LegalName() string
}

// Registry maps upper-case vendor tags to handlers
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	fallback Handler
}

// NewRegistry creates an empty registry that resolves unknown tags to fallback
func NewRegistry(fallback Handler) *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
		fallback: fallback,
	}
}

// NewDefaultRegistry returns a registry with the built-in vendors
func NewDefaultRegistry() *Registry {
	r := NewRegistry(Fallback{})
	r.Register(GuerriniTag, Guerrini{})
	r.Register(PirelliTag, Pirelli{})
	return r
}

// Register adds or replaces the handler for tag
func (r *Registry) Register(tag string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[strings.ToUpper(tag)] = h
}

// Lookup returns the handler registered for tag
func (r *Registry) Lookup(tag string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[strings.ToUpper(tag)]
	return h, ok
}

// Resolve returns the handler for tag, or the fallback handler
func (r *Registry) Resolve(tag string) Handler {
	if h, ok := r.Lookup(tag); ok {
		return h
	}
	return r.fallback
}

// Namer returns the provider namer of tag's handler, if it has one
func (r *Registry) Namer(tag string) ProviderNamer {
	h, ok := r.Lookup(tag)
	if !ok {
		return nil
	}
	n, _ := h.(ProviderNamer)
	return n
}

// Tags lists the registered vendor tags in alphabetical order
func (r *Registry) Tags() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tags := make([]string, 0, len(r.handlers))
	for t := range r.handlers {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}
