// Package pubsub fans parse results out to any number of listeners.
package pubsub

import (
	"context"
	"time"
)

type EventType string

const (
	// OutlineEvent carries a freshly normalized outline.
	OutlineEvent EventType = "outline"
	// HighlightEvent carries the spans applied by a highlight pass.
	HighlightEvent EventType = "highlight"
	// ResetEvent is sent when a grammar swap discards earlier results.
	ResetEvent EventType = "reset"
)

type Event[T any] struct {
	Type       EventType
	Payload    T
	Generation uint64
	Timestamp  time.Time
}

type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

type Publisher[T any] interface {
	Publish(eventType EventType, generation uint64, payload T)
}
