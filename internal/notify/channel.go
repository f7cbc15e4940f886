package notify

import (
	"context"
	"sync"
)

// Channel is the per-session notification queue (§4.8). It is safe for
// concurrent Send from any number of producers; Attach/Detach/Drain are
// expected to be called from the single consumer goroutine that owns the
// currently-attached listener.
type Channel struct {
	mu        sync.Mutex
	cond      *sync.Cond
	queue     []Message
	attached  bool
	closed    bool
}

func NewChannel() *Channel {
	c := &Channel{}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// Send enqueues a message. If no listener is attached, it is buffered for
// the resume window and dropped only when the session is ultimately
// destroyed (§4.8 delivery guarantee).
func (c *Channel) Send(msg Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.queue = append(c.queue, msg)
	c.cond.Signal()
}

// Attach marks a listener as present. Callers typically follow this with
// Drain to flush anything buffered during the resume window.
func (c *Channel) Attach() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attached = true
}

// Detach marks no listener as present; subsequent Sends keep buffering.
func (c *Channel) Detach() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attached = false
}

// Drain atomically removes and returns every currently queued message, in
// order, for replay to a freshly (re)attached listener (§4.8 step 3).
func (c *Channel) Drain() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.queue
	c.queue = nil
	return out
}

// DropQueued discards any buffered messages without delivering them (§4.8
// step 2: a fresh session never replays another listener's backlog).
func (c *Channel) DropQueued() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queue = nil
}

// Recv blocks until at least one message is queued, then returns and
// removes it. It returns ok=false if the channel was closed while waiting.
func (c *Channel) Recv() (Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for len(c.queue) == 0 && !c.closed {
		c.cond.Wait()
	}
	if len(c.queue) == 0 {
		return Message{}, false
	}
	msg := c.queue[0]
	c.queue = c.queue[1:]
	return msg, true
}

// RecvCtx behaves like Recv but also unblocks and returns ok=false once ctx
// is cancelled, so a consumer that has lost its downstream connection can
// stop competing for queued messages instead of silently consuming one
// meant for a later listener's resume replay.
func (c *Channel) RecvCtx(ctx context.Context) (Message, bool) {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			c.mu.Lock()
			c.cond.Broadcast()
			c.mu.Unlock()
		case <-stop:
		}
	}()

	c.mu.Lock()
	defer c.mu.Unlock()
	for len(c.queue) == 0 && !c.closed {
		if ctx.Err() != nil {
			return Message{}, false
		}
		c.cond.Wait()
	}
	if ctx.Err() != nil || len(c.queue) == 0 {
		return Message{}, false
	}
	msg := c.queue[0]
	c.queue = c.queue[1:]
	return msg, true
}

// Close permanently ends the channel, waking any blocked Recv.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.cond.Broadcast()
}
