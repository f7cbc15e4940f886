package notify

import (
	"testing"
	"time"
)

func TestSendThenDrainPreservesOrder(t *testing.T) {
	c := NewChannel()
	c.Send(Message{Op: OpEvent, Type: EventTrackStart})
	c.Send(Message{Op: OpPlayerUpdate, PositionMs: 100})
	c.Send(Message{Op: OpEvent, Type: EventTrackEnd})

	msgs := c.Drain()
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	if msgs[0].Type != EventTrackStart || msgs[1].Op != OpPlayerUpdate || msgs[2].Type != EventTrackEnd {
		t.Fatalf("messages out of order: %+v", msgs)
	}
}

func TestDropQueuedDiscardsBacklog(t *testing.T) {
	c := NewChannel()
	c.Send(Message{Op: OpStats})
	c.DropQueued()
	if msgs := c.Drain(); len(msgs) != 0 {
		t.Fatalf("expected empty queue after drop, got %v", msgs)
	}
}

func TestRecvBlocksUntilSend(t *testing.T) {
	c := NewChannel()
	done := make(chan Message, 1)
	go func() {
		msg, ok := c.Recv()
		if !ok {
			return
		}
		done <- msg
	}()

	time.Sleep(10 * time.Millisecond)
	c.Send(Message{Op: OpReady, SessionID: "abc"})

	select {
	case msg := <-done:
		if msg.SessionID != "abc" {
			t.Fatalf("unexpected message: %+v", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("Recv did not unblock after Send")
	}
}

func TestCloseWakesBlockedRecv(t *testing.T) {
	c := NewChannel()
	done := make(chan bool, 1)
	go func() {
		_, ok := c.Recv()
		done <- ok
	}()
	time.Sleep(10 * time.Millisecond)
	c.Close()
	select {
	case ok := <-done:
		if ok {
			t.Fatal("expected Recv to report closed")
		}
	case <-time.After(time.Second):
		t.Fatal("Recv did not unblock after Close")
	}
}
