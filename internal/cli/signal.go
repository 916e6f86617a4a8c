package cli

import (
	"context"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
)

// SignalContext is canceled on SIGINT or SIGTERM and remembers which one arrived,
// so long runs can report why they stopped.
type SignalContext struct {
	context.Context
	Cancel context.CancelFunc
	caught atomic.Value
}

// NewSignalContext derives a SignalContext from parent.
// Callers must call Cancel to release the signal handler.
func NewSignalContext(parent context.Context) *SignalContext {
	return notify(parent, os.Interrupt, syscall.SIGTERM)
}

func notify(parent context.Context, sigs ...os.Signal) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{Context: ctx, Cancel: cancel}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sigs...)
	go func() {
		defer signal.Stop(ch)
		select {
		case sig := <-ch:
			sc.caught.Store(sig)
			cancel()
		case <-ctx.Done():
		}
	}()
	return sc
}

// Signal returns the signal that canceled the context, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sig, _ := sc.caught.Load().(os.Signal)
	return sig
}
