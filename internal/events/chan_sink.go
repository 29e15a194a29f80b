package events

import "sync"

// ChanSink fans download:completed events out to any number of
// subscriber channels, used by the SSE endpoint in the Control-plane
// Server (SPEC_FULL.md §4.H). Subscribers that aren't reading are
// skipped via a non-blocking send, matching the "drop on a full channel"
// behavior the teacher's SSE client/server pair uses for its own
// progress channel.
type ChanSink struct {
	mu   sync.Mutex
	subs map[chan Completed]struct{}
}

// NewChanSink returns an empty ChanSink.
func NewChanSink() *ChanSink {
	return &ChanSink{subs: make(map[chan Completed]struct{})}
}

// Subscribe returns a channel that receives every future Completed
// event, and an unsubscribe function the caller must call when done.
func (c *ChanSink) Subscribe() (<-chan Completed, func()) {
	ch := make(chan Completed, 16)
	c.mu.Lock()
	c.subs[ch] = struct{}{}
	c.mu.Unlock()

	unsubscribe := func() {
		c.mu.Lock()
		delete(c.subs, ch)
		c.mu.Unlock()
	}
	return ch, unsubscribe
}

// Completed implements Sink.
func (c *ChanSink) Completed(evt Completed) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for ch := range c.subs {
		select {
		case ch <- evt:
		default:
		}
	}
}
