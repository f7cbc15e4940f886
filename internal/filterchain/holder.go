package filterchain

import "sync/atomic"

// Holder is the RCU/swap-pointer scheme §9's design notes call out as
// equivalent to an exclusive lock, lock-free on the read side at the cost of
// one extra allocation per update. The filtered source reads Current() once
// per buffer; the player command path calls Swap() on a filter update. A
// reader never observes a half-updated chain (§4.2 tie-break).
type Holder struct {
	ptr atomic.Pointer[Chain]
}

func NewHolder(initial *Chain) *Holder {
	h := &Holder{}
	if initial == nil {
		initial = Empty()
	}
	h.ptr.Store(initial)
	return h
}

func (h *Holder) Current() *Chain { return h.ptr.Load() }

func (h *Holder) Swap(next *Chain) { h.ptr.Store(next) }
