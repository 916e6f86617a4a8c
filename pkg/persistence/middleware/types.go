// Package middleware decorates run stores.
package middleware

import "github.com/aretw0/turing/pkg/ports"

// Middleware wraps a RunStore with extra behavior.
type Middleware func(ports.RunStore) ports.RunStore

// Chain applies middlewares so the first one is the outermost.
func Chain(store ports.RunStore, mws ...Middleware) ports.RunStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
