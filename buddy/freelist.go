package buddy

import "unsafe"

// readNext reads the intrusive link pointer stored at the start of the
// free block at offset. The block must currently be free: this is the
// only pointer-sized slot in a free block's bytes that this package ever
// touches, and it never touches an allocated block's bytes (spec.md §5).
func (h *Heap) readNext(offset uintptr) uintptr {
	return *(*uintptr)(unsafe.Pointer(&h.region[offset]))
}

// writeNext stores next into the intrusive link pointer slot at offset.
func (h *Heap) writeNext(offset, next uintptr) {
	*(*uintptr)(unsafe.Pointer(&h.region[offset])) = next
}

// pushFree links the block at offset onto the head of order's free list.
func (h *Heap) pushFree(order int, offset uintptr) {
	h.writeNext(offset, h.free[order])
	h.free[order] = offset
}

// popFree unlinks and returns the head of order's free list, or ok=false
// if the list is empty.
func (h *Heap) popFree(order int) (offset uintptr, ok bool) {
	head := h.free[order]
	if head == nullOffset {
		return 0, false
	}
	h.free[order] = h.readNext(head)
	return head, true
}

// removeFree unlinks the block at offset from order's free list, if
// present. It reports whether the block was found. The free lists are
// singly linked, so this is O(list length) — spec.md §4.2's documented
// tradeoff for keeping per-block overhead at one pointer.
func (h *Heap) removeFree(order int, offset uintptr) bool {
	prev := nullOffset
	cur := h.free[order]
	for cur != nullOffset {
		if cur == offset {
			if prev == nullOffset {
				h.free[order] = h.readNext(cur)
			} else {
				h.writeNext(prev, h.readNext(cur))
			}
			return true
		}
		prev = cur
		cur = h.readNext(cur)
	}
	return false
}
