package anyref

import (
	"fmt"
	"unsafe"
)

// SliceMut is a type-erased exclusive view of contiguous elements.
//
// Like Mut it must not be copied after first use. Exclusive sub-views,
// elements and the scoped WithSliceMut are only handed out for the duration
// of a callback, during which the parent is lent and refuses every other
// operation.
type SliceMut struct {
	ptr    unsafe.Pointer
	len    int
	stride uintptr
	tag    Tag
	g      guard
}

// EraseSliceMut hides the element type of s, keeping exclusive access.
func EraseSliceMut[T any](s []T) SliceMut {
	var zero T
	return SliceMut{
		ptr:    unsafe.Pointer(unsafe.SliceData(s)),
		len:    len(s),
		stride: unsafe.Sizeof(zero),
		tag:    TagOf[T](),
	}
}

// SliceMutFromRawParts builds a SliceMut from its fields.
//
// Nothing is checked. On top of the SliceRefFromRawParts obligations, the
// caller guarantees that no other handle or pointer reaches the elements
// while the SliceMut is in use.
func SliceMutFromRawParts(p unsafe.Pointer, length int, stride uintptr, tag Tag) SliceMut {
	return SliceMut{ptr: p, len: length, stride: stride, tag: tag}
}

func (s *SliceMut) Tag() Tag { return s.tag }

func (s *SliceMut) Is(tag Tag) bool { return s.tag == tag }

func (s *SliceMut) Pointer() unsafe.Pointer { return s.ptr }

func (s *SliceMut) Len() int { return s.len }

func (s *SliceMut) IsEmpty() bool { return s.len == 0 }

func (s *SliceMut) Stride() uintptr { return s.stride }

func (s *SliceMut) Consumed() bool { return s.g.consumed() }

func (s *SliceMut) view() (unsafe.Pointer, int, Tag, bool) {
	return s.ptr, s.len, s.tag, s.g.readable()
}

func (s *SliceMut) String() string {
	return fmt.Sprintf("anyref.SliceMut[%s](%p, len=%d, stride=%d)", s.tag, s.ptr, s.len, s.stride)
}

// Share downgrades to a shared view without opening a loan. The caller must
// not write through s while the result is in use, and must not use it after
// s is written to or consumed. A lent or consumed handle yields the zero
// SliceRef.
func (s *SliceMut) Share() SliceRef {
	if !s.g.readable() {
		return SliceRef{}
	}
	return SliceRef{ptr: s.ptr, len: s.len, stride: s.stride, tag: s.tag}
}

// WithShared runs fn with a shared view of s; see Mut.WithShared.
func (s *SliceMut) WithShared(fn func(SliceRef)) bool {
	if !s.g.share() {
		return false
	}
	defer s.g.unshare()
	fn(SliceRef{ptr: s.ptr, len: s.len, stride: s.stride, tag: s.tag})
	return true
}

// At returns element i as a shared handle, with the same obligations as
// Share: the result must not be used after s is written to or consumed.
func (s *SliceMut) At(i int) (Ref, bool) {
	if !s.g.readable() {
		return Ref{}, false
	}
	p, ok := elem(s.ptr, s.len, s.stride, i)
	if !ok {
		return Ref{}, false
	}
	return Ref{ptr: p, tag: s.tag}, true
}

// Sub returns a shared view of the elements selected by r, with the same
// obligations as Share: the result must not be used after s is written to
// or consumed. Bounds are clamped as in SliceRef.Sub.
func (s *SliceMut) Sub(r Range) SliceRef {
	if !s.g.readable() {
		return SliceRef{}
	}
	p, n := sub(s.ptr, s.len, s.stride, r)
	return SliceRef{ptr: p, len: n, stride: s.stride, tag: s.tag}
}

// WithSub lends the elements selected by r to fn as an exclusive view. s is
// unusable until fn returns. It reports false, without calling fn, when s
// is busy or consumed; an empty selection still calls fn.
func (s *SliceMut) WithSub(r Range, fn func(*SliceMut)) bool {
	if !s.g.lend() {
		return false
	}
	defer s.g.restore()
	p, n := sub(s.ptr, s.len, s.stride, r)
	child := SliceMut{ptr: p, len: n, stride: s.stride, tag: s.tag}
	fn(&child)
	return true
}

// WithElem lends element i to fn as an exclusive handle. It reports false
// for an out-of-range index or when s is busy or consumed.
func (s *SliceMut) WithElem(i int, fn func(*Mut)) bool {
	p, ok := elem(s.ptr, s.len, s.stride, i)
	if !ok || !s.g.lend() {
		return false
	}
	defer s.g.restore()
	child := Mut{ptr: p, tag: s.tag}
	fn(&child)
	return true
}

// IntoPtr gives up s and returns its address-only form.
func (s *SliceMut) IntoPtr() (SlicePtr, bool) {
	if !s.g.consume() {
		return SlicePtr{}, false
	}
	return SlicePtr{ptr: s.ptr, len: s.len, stride: s.stride, tag: s.tag}, true
}

// RestoreSliceMut returns the erased view as a writable []T when it was
// erased from a []T and no loan is open. The result has cap == len.
//
// Like RestoreMut it holds no loan afterwards; WithSliceMut is the scoped
// form.
func RestoreSliceMut[T any](s *SliceMut) ([]T, bool) {
	if s.tag != TagOf[T]() || !s.g.writable() {
		return nil, false
	}
	return unsafe.Slice((*T)(s.ptr), s.len), true
}

// WithSliceMut runs fn with the erased view as a writable []T. Until fn
// returns, s is lent and refuses every other operation. It reports false,
// without calling fn, on a tag mismatch or when s is shared, lent or
// consumed.
func WithSliceMut[T any](s *SliceMut, fn func([]T)) bool {
	if s.tag != TagOf[T]() || !s.g.lend() {
		return false
	}
	defer s.g.restore()
	fn(unsafe.Slice((*T)(s.ptr), s.len))
	return true
}

// RestoreSliceInto is RestoreSliceMut that also consumes s. A tag mismatch
// leaves s untouched.
func RestoreSliceInto[T any](s *SliceMut) ([]T, bool) {
	if s.tag != TagOf[T]() || !s.g.consume() {
		return nil, false
	}
	return unsafe.Slice((*T)(s.ptr), s.len), true
}
