package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStep       EventType = "step"
	EventHalt       EventType = "halt"
	EventGeneration EventType = "generation"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Machine   string    `json:"machine"`
}

// StepEvent is emitted after every applied deterministic step.
type StepEvent struct {
	EventBase
	Result StepResult `json:"result"`
}

// HaltEvent is emitted once, when a deterministic run or a search reaches a final status.
type HaltEvent struct {
	EventBase
	Status Status `json:"status"`
	Steps  int    `json:"steps"`
}

// GenerationEvent is emitted after every nondeterministic generation.
type GenerationEvent struct {
	EventBase
	Result GenerationResult `json:"result"`
}

// LifecycleHooks defines callbacks for engine observability.
// Hooks run synchronously inside Step/StepGeneration and must not call back into the engine.
type LifecycleHooks struct {
	OnStep       func(context.Context, *StepEvent)
	OnHalt       func(context.Context, *HaltEvent)
	OnGeneration func(context.Context, *GenerationEvent)
}

// Merge combines two sets of hooks; both are invoked, h first.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnStep:       chain(h.OnStep, other.OnStep),
		OnHalt:       chain(h.OnHalt, other.OnHalt),
		OnGeneration: chain(h.OnGeneration, other.OnGeneration),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
