package parsing

import (
	"sync"

	"malim/internal/ports"
)

// Bus routes progress events to subscribers keyed by article id. The analyzer
// publishes; the runner subscribes for the duration of one job. Events for
// ids without a subscriber are dropped.
type Bus struct {
	mu   sync.Mutex
	subs map[string][]chan ports.ProgressEvent
}

func NewBus() *Bus {
	return &Bus{subs: map[string][]chan ports.ProgressEvent{}}
}

// Subscribe opens a channel receiving events for the given id. The returned
// cancel func detaches and closes the channel; it is safe to call more than
// once.
func (b *Bus) Subscribe(id string) (<-chan ports.ProgressEvent, func()) {
	ch := make(chan ports.ProgressEvent, 64)
	b.mu.Lock()
	b.subs[id] = append(b.subs[id], ch)
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			chans := b.subs[id]
			for i, c := range chans {
				if c == ch {
					b.subs[id] = append(chans[:i], chans[i+1:]...)
					break
				}
			}
			if len(b.subs[id]) == 0 {
				delete(b.subs, id)
			}
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers ev to subscribers of ev.ID. Delivery is in arrival order;
// a full subscriber drops the event rather than blocking the publisher.
func (b *Bus) Publish(ev ports.ProgressEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs[ev.ID] {
		select {
		case ch <- ev:
		default:
		}
	}
}
