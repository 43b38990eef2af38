package typegraph

import (
	"reflect"
	"sync/atomic"
)

// Provider supplies live instances of resolver shapes. Construction policy is
// entirely the provider's concern; the compiler only performs lookups.
type Provider interface {
	Instance(t reflect.Type) (any, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(t reflect.Type) (any, error)

func (f ProviderFunc) Instance(t reflect.Type) (any, error) { return f(t) }

type providerBox struct{ p Provider }

var globalProvider atomic.Pointer[providerBox]

// SetInstanceProvider registers the process-wide instance provider consulted
// when a compiled schema has no explicit container. Exactly one provider is
// active at a time; the last writer wins.
func SetInstanceProvider(p Provider) {
	globalProvider.Store(&providerBox{p: p})
}

// ResetInstanceProvider clears the process-wide provider. Intended for test
// isolation.
func ResetInstanceProvider() {
	globalProvider.Store(nil)
}

// lookupInstance resolves an instance of shape through the explicit provider
// when set, falling back to the process-wide provider.
func lookupInstance(explicit Provider, shape reflect.Type) (any, error) {
	p := explicit
	if p == nil {
		if box := globalProvider.Load(); box != nil {
			p = box.p
		}
	}
	if p == nil {
		return nil, &NoProviderConfiguredError{Shape: shape}
	}
	return p.Instance(shape)
}
