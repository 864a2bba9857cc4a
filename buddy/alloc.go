package buddy

// Allocate finds, splits, and returns a block satisfying size and
// alignment, per spec.md §4.3. On success the returned address is a
// multiple of alignment. Possible errors are InvalidAlignment,
// AllocationTooLarge, and OutOfMemory.
func (h *Heap) Allocate(size, alignment uintptr) (uintptr, error) {
	order, err := h.orderFor(size, alignment)
	if err != nil {
		return 0, err
	}

	m := order
	for m < h.orders && h.free[m] == nullOffset {
		m++
	}
	if m >= h.orders {
		return 0, newError(KindOutOfMemory, ErrOutOfMemory).withSize(size).withAlignment(alignment).withOrder(order)
	}

	offset, _ := h.popFree(m)

	// Split down to the target order, pushing the upper half of each
	// split onto its free list and keeping the lower half — the returned
	// block therefore always starts at the address that was popped,
	// which is what spec.md §4.3 relies on for deterministic addresses.
	for m > order {
		m--
		upper := offset + orderSize(h.minOrder, m)
		h.pushFree(m, upper)
		h.emit(Event{Kind: EventSplit, Address: h.base + offset, Order: m})
	}

	h.emit(Event{Kind: EventAllocate, Address: h.base + offset, Order: order})
	return h.base + offset, nil
}
