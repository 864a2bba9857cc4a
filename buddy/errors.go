package buddy

import (
	"errors"
	"fmt"
)

// Kind tags a HeapError with the specific failure it represents, so a
// caller can distinguish failures without string-matching Error().
type Kind int

const (
	// KindNullBase means the base address passed to New is zero.
	KindNullBase Kind = iota
	// KindHeapMisaligned means the base address is not aligned to the
	// region size.
	KindHeapMisaligned
	// KindHeapSizeNotPowerOfTwo means the region length is not a power of
	// two.
	KindHeapSizeNotPowerOfTwo
	// KindHeapTooSmall means the region is smaller than minBlockSize, or
	// minBlockSize itself is zero, not a power of two, or smaller than one
	// link pointer.
	KindHeapTooSmall
	// KindInvalidAlignment means the requested alignment is zero or not a
	// power of two.
	KindInvalidAlignment
	// KindAllocationTooLarge means the request exceeds the heap's
	// capacity (the top order block).
	KindAllocationTooLarge
	// KindOutOfMemory means no free block of sufficient order exists.
	KindOutOfMemory
	// KindInvalidPointer means the address passed to Free lies outside
	// the region or is misaligned for the order implied by (size, alignment).
	KindInvalidPointer
)

func (k Kind) String() string {
	switch k {
	case KindNullBase:
		return "null base"
	case KindHeapMisaligned:
		return "heap misaligned"
	case KindHeapSizeNotPowerOfTwo:
		return "heap size not a power of two"
	case KindHeapTooSmall:
		return "heap too small"
	case KindInvalidAlignment:
		return "invalid alignment"
	case KindAllocationTooLarge:
		return "allocation too large"
	case KindOutOfMemory:
		return "out of memory"
	case KindInvalidPointer:
		return "invalid pointer"
	default:
		return "unknown"
	}
}

// Sentinel errors. Every HeapError wraps exactly one of these, so callers
// that only care about the category can use errors.Is against the
// sentinel instead of switching on Kind.
var (
	ErrNullBase              = errors.New("buddy: base address is null")
	ErrHeapMisaligned        = errors.New("buddy: base address is not aligned to region size")
	ErrHeapSizeNotPowerOfTwo = errors.New("buddy: region size is not a power of two")
	ErrHeapTooSmall          = errors.New("buddy: region size is smaller than the minimum block size")
	ErrInvalidAlignment      = errors.New("buddy: alignment is zero or not a power of two")
	ErrAllocationTooLarge    = errors.New("buddy: requested size exceeds heap capacity")
	ErrOutOfMemory           = errors.New("buddy: no free block large enough to satisfy the request")
	ErrInvalidPointer        = errors.New("buddy: pointer is outside the region or misaligned for its order")
)

// HeapError is the concrete error type returned by every operation in this
// package. It carries the offending values so a caller without a debugger
// attached can still diagnose the failure.
type HeapError struct {
	Kind      Kind
	Address   uintptr
	Size      uintptr
	Alignment uintptr
	Order     int

	sentinel error
}

func (e *HeapError) Error() string {
	return fmt.Sprintf("%s: address=%#x size=%#x alignment=%#x order=%d", e.sentinel, e.Address, e.Size, e.Alignment, e.Order)
}

// Unwrap exposes the underlying sentinel for errors.Is/errors.As.
func (e *HeapError) Unwrap() error {
	return e.sentinel
}

func newError(kind Kind, sentinel error) *HeapError {
	return &HeapError{Kind: kind, sentinel: sentinel}
}

func (e *HeapError) withAddress(addr uintptr) *HeapError {
	e.Address = addr
	return e
}

func (e *HeapError) withSize(size uintptr) *HeapError {
	e.Size = size
	return e
}

func (e *HeapError) withAlignment(alignment uintptr) *HeapError {
	e.Alignment = alignment
	return e
}

func (e *HeapError) withOrder(order int) *HeapError {
	e.Order = order
	return e
}
