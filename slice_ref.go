package anyref

import (
	"fmt"
	"unsafe"
)

// View is a handle to an erased run of elements: a SliceRef or a *SliceMut.
type View interface {
	Handle
	Len() int
	Stride() uintptr
	view() (unsafe.Pointer, int, Tag, bool)
}

// SliceRef is a type-erased shared view of contiguous elements.
//
// Element i lives at Pointer() + i*Stride(). Stride and tag never change
// across At and Sub; only the base and length do.
type SliceRef struct {
	ptr    unsafe.Pointer
	len    int
	stride uintptr
	tag    Tag
}

// EraseSlice hides the element type of s. Capacity beyond len(s) is not
// part of the view.
func EraseSlice[T any](s []T) SliceRef {
	var zero T
	return SliceRef{
		ptr:    unsafe.Pointer(unsafe.SliceData(s)),
		len:    len(s),
		stride: unsafe.Sizeof(zero),
		tag:    TagOf[T](),
	}
}

// SliceRefFromRawParts builds a SliceRef from its fields.
//
// Nothing is checked. The caller guarantees that p is the address of the
// first of length live, initialized elements of the type tag was minted for,
// that stride is that type's size, and that nothing writes to the elements
// while the view or anything restored from it is in use.
func SliceRefFromRawParts(p unsafe.Pointer, length int, stride uintptr, tag Tag) SliceRef {
	return SliceRef{ptr: p, len: length, stride: stride, tag: tag}
}

func (s SliceRef) Tag() Tag { return s.tag }

func (s SliceRef) Is(tag Tag) bool { return s.tag == tag }

func (s SliceRef) Pointer() unsafe.Pointer { return s.ptr }

func (s SliceRef) Len() int { return s.len }

func (s SliceRef) IsEmpty() bool { return s.len == 0 }

// Stride is the byte size of one element, padding included.
func (s SliceRef) Stride() uintptr { return s.stride }

func (s SliceRef) view() (unsafe.Pointer, int, Tag, bool) { return s.ptr, s.len, s.tag, true }

func (s SliceRef) String() string {
	return fmt.Sprintf("anyref.SliceRef[%s](%p, len=%d, stride=%d)", s.tag, s.ptr, s.len, s.stride)
}

// At returns element i as a shared handle. It reports false when i is out
// of range.
func (s SliceRef) At(i int) (Ref, bool) {
	p, ok := elem(s.ptr, s.len, s.stride, i)
	if !ok {
		return Ref{}, false
	}
	return Ref{ptr: p, tag: s.tag}, true
}

// Sub returns the elements selected by r. Bounds are clamped to Len, so Sub
// never fails; a range entirely past the end gives an empty view.
func (s SliceRef) Sub(r Range) SliceRef {
	p, n := sub(s.ptr, s.len, s.stride, r)
	return SliceRef{ptr: p, len: n, stride: s.stride, tag: s.tag}
}

// RestoreSlice returns the erased view as a []T when it was erased from a
// []T. The result has cap == len and is read-only. On a *SliceMut it also
// reports false while the handle is lent or consumed.
func RestoreSlice[T any](v View) ([]T, bool) {
	p, n, tag, ok := v.view()
	if !ok || tag != TagOf[T]() {
		return nil, false
	}
	return unsafe.Slice((*T)(p), n), true
}

func elem(base unsafe.Pointer, length int, stride uintptr, i int) (unsafe.Pointer, bool) {
	if i < 0 || i >= length {
		return nil, false
	}
	return unsafe.Add(base, uintptr(i)*stride), true
}

// sub keeps the base address for an empty result: Go does not allow a
// pointer one past the end of an allocation.
func sub(base unsafe.Pointer, length int, stride uintptr, r Range) (unsafe.Pointer, int) {
	start, end := Constrain(length, r)
	if start == end {
		return base, 0
	}
	return unsafe.Add(base, uintptr(start)*stride), end - start
}
