package pubsub

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// ListenCmd waits for the next event on ch and hands it to the program.
// It yields nil once ctx ends or ch is closed.
func ListenCmd[T any](ctx context.Context, ch <-chan Event[T]) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-ch:
			if !ok {
				return nil
			}
			return ev
		}
	}
}

// Listener keeps one subscription alive across update cycles.
type Listener[T any] struct {
	ctx context.Context
	ch  <-chan Event[T]
}

func NewListener[T any](ctx context.Context, s Subscriber[T]) *Listener[T] {
	return &Listener[T]{ctx: ctx, ch: s.Subscribe(ctx)}
}

// Listen must be re-issued after every delivered event.
func (l *Listener[T]) Listen() tea.Cmd {
	return ListenCmd(l.ctx, l.ch)
}
