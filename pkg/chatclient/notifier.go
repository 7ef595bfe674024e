package chatclient

import "sync"

// notifier runs callbacks one at a time in submission order. The queue is
// unbounded so the transport never waits on a slow handler.
type notifier struct {
	mu      sync.Mutex
	queue   []func()
	running bool
}

func (n *notifier) push(f func()) {
	n.mu.Lock()
	n.queue = append(n.queue, f)
	if n.running {
		n.mu.Unlock()
		return
	}
	n.running = true
	n.mu.Unlock()

	go n.run()
}

func (n *notifier) run() {
	for {
		n.mu.Lock()
		if len(n.queue) == 0 {
			n.running = false
			n.mu.Unlock()
			return
		}
		f := n.queue[0]
		n.queue[0] = nil
		n.queue = n.queue[1:]
		n.mu.Unlock()

		f()
	}
}
