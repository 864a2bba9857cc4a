package buddy

import (
	"math/bits"
	"unsafe"
)

// nullOffset is the free-list sentinel meaning "no next block." It cannot
// be a valid offset into the region (0 is a valid offset — the first
// byte of the region — so the sentinel must live outside the addressable
// range instead of colliding with it).
const nullOffset = ^uintptr(0)

// pointerSize is the minimum number of bytes a free block must have in
// order to store one intrusive link pointer.
var pointerSize = unsafe.Sizeof(uintptr(0))

// Heap is a binary buddy allocator over a single contiguous region of
// memory supplied by the caller. It is not safe for concurrent use; see
// spec.md §5 / SPEC_FULL.md for the single-threaded contract.
type Heap struct {
	base         uintptr
	region       []byte
	minOrder     uint      // log2(minBlockSize)
	orders       int       // K: number of order levels
	free         []uintptr // K free-list heads, each a relative offset or nullOffset

	// OnEvent, if non-nil, is invoked synchronously for every split,
	// coalesce, allocate and free (the construction event is emitted
	// before OnEvent can be assigned; see EventConstruct).
	// It is never required for correctness and defaults to nil (no-op):
	// see SPEC_FULL.md "Ambient stack / Logging" for why the core does
	// not import a logging package directly.
	OnEvent func(Event)
}

// New is the checked constructor. It validates that region's length is a
// power of two no smaller than minBlockSize, that minBlockSize itself is a
// power of two large enough to hold one intrusive link pointer, and that
// base is aligned to the region size and non-zero. On success the entire
// region is placed on the free list at the top order.
func New(base uintptr, region []byte, minBlockSize uintptr) (*Heap, error) {
	if base == 0 {
		return nil, newError(KindNullBase, ErrNullBase).withAddress(base)
	}

	size := uintptr(len(region))
	if size == 0 || size&(size-1) != 0 {
		return nil, newError(KindHeapSizeNotPowerOfTwo, ErrHeapSizeNotPowerOfTwo).withSize(size)
	}

	if minBlockSize == 0 || minBlockSize&(minBlockSize-1) != 0 || minBlockSize < pointerSize {
		return nil, newError(KindHeapTooSmall, ErrHeapTooSmall).withSize(minBlockSize)
	}

	if size < minBlockSize {
		return nil, newError(KindHeapTooSmall, ErrHeapTooSmall).withSize(size)
	}

	if base%size != 0 {
		return nil, newError(KindHeapMisaligned, ErrHeapMisaligned).withAddress(base).withSize(size)
	}

	return NewUnchecked(base, region, minBlockSize), nil
}

// NewUnchecked builds a Heap without validating its arguments. It exists
// for placement in statically initialized storage, where the checks in
// New cannot run before the heap must already exist (spec.md §4.5, §9).
// Calling it with arguments that violate New's preconditions produces
// undefined behavior from this package's perspective.
func NewUnchecked(base uintptr, region []byte, minBlockSize uintptr) *Heap {
	minOrder := uint(bits.TrailingZeros64(uint64(minBlockSize)))
	orders := bits.Len64(uint64(len(region))/uint64(minBlockSize)) // log2(size/minBlockSize) + 1

	h := &Heap{
		base:     base,
		region:   region,
		minOrder: minOrder,
		orders:   orders,
		free:     make([]uintptr, orders),
	}
	for i := range h.free {
		h.free[i] = nullOffset
	}

	top := orders - 1
	h.free[top] = 0
	h.writeNext(0, nullOffset)

	h.emit(Event{Kind: EventConstruct, Order: top})
	return h
}

// orderSize returns the size in bytes of a block at the given order.
func orderSize(minOrder uint, order int) uintptr {
	return uintptr(1) << (minOrder + uint(order))
}

// orderFor computes the smallest order whose block size is at least
// max(size, alignment, pointerSize), per spec.md §4.1. It also validates
// that alignment is a power of two and that the resulting order fits
// within the heap.
func (h *Heap) orderFor(size, alignment uintptr) (int, error) {
	if alignment == 0 || alignment&(alignment-1) != 0 {
		return 0, newError(KindInvalidAlignment, ErrInvalidAlignment).withSize(size).withAlignment(alignment)
	}

	need := size
	if alignment > need {
		need = alignment
	}
	if pointerSize > need {
		need = pointerSize
	}

	order := 0
	for orderSize(h.minOrder, order) < need {
		order++
		if order >= h.orders {
			return 0, newError(KindAllocationTooLarge, ErrAllocationTooLarge).withSize(size).withAlignment(alignment)
		}
	}
	return order, nil
}

// buddyOffset returns the relative offset of the buddy of the block at
// offset, order (spec.md §4.1's XOR rule).
func (h *Heap) buddyOffset(offset uintptr, order int) uintptr {
	return offset ^ orderSize(h.minOrder, order)
}

// validateFree computes the order for (size, alignment) and validates
// that address is a legal pointer to free: inside the region and aligned
// to that order's block size (spec.md §4.1, §4.4).
func (h *Heap) validateFree(address, size, alignment uintptr) (int, uintptr, error) {
	order, err := h.orderFor(size, alignment)
	if err != nil {
		return 0, 0, err
	}

	regionEnd := h.base + uintptr(len(h.region))
	if address < h.base || address >= regionEnd {
		return 0, 0, newError(KindInvalidPointer, ErrInvalidPointer).withAddress(address).withSize(size).withAlignment(alignment).withOrder(order)
	}

	offset := address - h.base
	blockSize := orderSize(h.minOrder, order)
	if offset%blockSize != 0 {
		return 0, 0, newError(KindInvalidPointer, ErrInvalidPointer).withAddress(address).withSize(size).withAlignment(alignment).withOrder(order)
	}

	return order, offset, nil
}
