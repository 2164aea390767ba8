package anyref

import (
	"fmt"
	"unsafe"
)

// Scalar is a handle to a single erased value: a Ref or a *Mut.
type Scalar interface {
	Handle
	scalar() (unsafe.Pointer, Tag, bool)
}

// Ref is a type-erased shared reference. It is freely copyable.
//
// The pointer restored from a Ref must only be read. Go cannot express a
// read-only pointer, so this is the caller's obligation.
type Ref struct {
	ptr unsafe.Pointer
	tag Tag
}

// Erase hides the type of p. It panics if p is nil.
func Erase[T any](p *T) Ref {
	if p == nil {
		panic("anyref: erase of nil pointer")
	}
	return Ref{ptr: unsafe.Pointer(p), tag: TagOf[T]()}
}

// RefFromRawParts builds a Ref from an address and a tag.
//
// Nothing is checked. The caller guarantees that p points to a live,
// initialized value of exactly the type tag was minted for, and that
// nothing writes to it while the Ref or anything restored from it is in use.
func RefFromRawParts(p unsafe.Pointer, tag Tag) Ref {
	return Ref{ptr: p, tag: tag}
}

func (r Ref) Tag() Tag { return r.tag }

func (r Ref) Is(tag Tag) bool { return r.tag == tag }

func (r Ref) Pointer() unsafe.Pointer { return r.ptr }

func (r Ref) scalar() (unsafe.Pointer, Tag, bool) { return r.ptr, r.tag, true }

func (r Ref) String() string {
	return fmt.Sprintf("anyref.Ref[%s](%p)", r.tag, r.ptr)
}

// Restore returns the erased value as a *T when s was erased from a T.
// Any other T reports false.
//
// The result is read-only. On a *Mut it also reports false while the handle
// is lent to a sub-handle or has been consumed.
func Restore[T any](s Scalar) (*T, bool) {
	p, tag, ok := s.scalar()
	if !ok || tag != TagOf[T]() {
		return nil, false
	}
	// The tag was minted from the erased type, so p holds a T.
	return (*T)(p), true
}
