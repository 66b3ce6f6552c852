package eventbus

import (
	"github.com/asaskevich/EventBus"
)

type EventID string

type Event interface {
	EventID() EventID
}

type Handler func(e Event)

type Bus interface {
	Publish(e Event)
	Subscribe(id EventID, handler Handler) error
	SubscribeAsync(id EventID, handler Handler) error
	WaitAsync()
}

type bus struct {
	inner EventBus.Bus
}

func New() Bus {
	return &bus{inner: EventBus.New()}
}

func (b *bus) Publish(e Event) {
	b.inner.Publish(string(e.EventID()), e)
}

func (b *bus) Subscribe(id EventID, handler Handler) error {
	return b.inner.Subscribe(string(id), func(e Event) { handler(e) })
}

// SubscribeAsync delivers events on a separate goroutine, in publishing order.
func (b *bus) SubscribeAsync(id EventID, handler Handler) error {
	return b.inner.SubscribeAsync(string(id), func(e Event) { handler(e) }, true)
}

func (b *bus) WaitAsync() {
	b.inner.WaitAsync()
}
