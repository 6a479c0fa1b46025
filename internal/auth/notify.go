package auth

import (
	"sync"
	"time"
)

// notifier owns a single hide timer. Every show stops the pending timer and
// bumps the generation, so a hide that already fired for an older
// notification is ignored.
type notifier struct {
	mu      sync.Mutex
	current Notification
	timer   *time.Timer
	gen     uint64
}

func newNotifier() *notifier {
	return &notifier{current: Notification{Severity: SeveritySuccess}}
}

func (n *notifier) show(msg Notification, d time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.timer != nil {
		n.timer.Stop()
	}
	n.gen++
	gen := n.gen
	n.current = msg
	n.timer = time.AfterFunc(d, func() { n.hide(gen) })
}

func (n *notifier) hide(gen uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if gen != n.gen {
		return
	}
	n.current.Visible = false
	n.timer = nil
}

func (n *notifier) get() Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

func (n *notifier) stop() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
}
