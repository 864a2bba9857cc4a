package buddy

// Free returns a previously allocated block to its free list, coalescing
// with its buddy as far as possible, per spec.md §4.4. size and alignment
// must match the values passed to the corresponding Allocate call.
// Possible errors are InvalidAlignment, AllocationTooLarge, and
// InvalidPointer. On error the heap's state is unchanged.
func (h *Heap) Free(address, size, alignment uintptr) error {
	order, offset, err := h.validateFree(address, size, alignment)
	if err != nil {
		return err
	}

	top := h.orders - 1
	for order < top {
		buddy := h.buddyOffset(offset, order)
		if !h.removeFree(order, buddy) {
			break
		}

		if buddy < offset {
			offset = buddy
		}
		order++
		h.emit(Event{Kind: EventCoalesce, Address: h.base + offset, Order: order})
	}

	h.pushFree(order, offset)
	h.emit(Event{Kind: EventFree, Address: h.base + offset, Order: order})
	return nil
}
