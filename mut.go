package anyref

import (
	"fmt"
	"unsafe"
)

// Mut is a type-erased exclusive reference.
//
// A Mut must not be copied after first use; use it through a pointer. Its
// guard tracks scoped shared loans, exclusive lending and consumption. The
// scoped forms, WithShared and WithMut, never overlap a reader with a
// writer; the unscoped Share and RestoreMut only check the guard when
// called.
type Mut struct {
	ptr unsafe.Pointer
	tag Tag
	g   guard
}

// EraseMut hides the type of p, keeping exclusive access. It panics if p is nil.
func EraseMut[T any](p *T) Mut {
	if p == nil {
		panic("anyref: erase of nil pointer")
	}
	return Mut{ptr: unsafe.Pointer(p), tag: TagOf[T]()}
}

// MutFromRawParts builds a Mut from an address and a tag.
//
// Nothing is checked. The caller guarantees that p points to a live,
// initialized value of exactly the type tag was minted for, and that no
// other handle or pointer accesses it while the Mut is in use.
func MutFromRawParts(p unsafe.Pointer, tag Tag) Mut {
	return Mut{ptr: p, tag: tag}
}

func (m *Mut) Tag() Tag { return m.tag }

func (m *Mut) Is(tag Tag) bool { return m.tag == tag }

func (m *Mut) Pointer() unsafe.Pointer { return m.ptr }

// Consumed reports whether the handle was given up by RestoreInto or IntoPtr.
func (m *Mut) Consumed() bool { return m.g.consumed() }

func (m *Mut) scalar() (unsafe.Pointer, Tag, bool) { return m.ptr, m.tag, m.g.readable() }

func (m *Mut) String() string {
	return fmt.Sprintf("anyref.Mut[%s](%p)", m.tag, m.ptr)
}

// Share downgrades to a shared handle without opening a loan. The caller
// must not write through m while the returned Ref is in use, and must not
// use it after m is written to or consumed. A lent or consumed handle
// yields the zero Ref.
func (m *Mut) Share() Ref {
	if !m.g.readable() {
		return Ref{}
	}
	return Ref{ptr: m.ptr, tag: m.tag}
}

// WithShared runs fn with a shared view of m. Until fn returns, RestoreMut
// and RestoreInto on m report false. Calls may nest and may run from
// several goroutines at once. It reports false, without calling fn, if m is
// lent or consumed.
func (m *Mut) WithShared(fn func(Ref)) bool {
	if !m.g.share() {
		return false
	}
	defer m.g.unshare()
	fn(Ref{ptr: m.ptr, tag: m.tag})
	return true
}

// IntoPtr gives up m and returns its address-only form.
func (m *Mut) IntoPtr() (Ptr, bool) {
	if !m.g.consume() {
		return Ptr{}, false
	}
	return Ptr{ptr: m.ptr, tag: m.tag}, true
}

// RestoreMut returns the erased value as a writable *T when m was erased
// from a T and no loan is open.
//
// No loan is held afterwards, so m keeps handing out shared handles while
// the pointer is live. The caller must not use the pointer once another
// handle derived from m is in use; WithMut enforces this instead.
func RestoreMut[T any](m *Mut) (*T, bool) {
	if m.tag != TagOf[T]() || !m.g.writable() {
		return nil, false
	}
	return (*T)(m.ptr), true
}

// WithMut runs fn with the erased value as a writable *T. Until fn returns,
// m is lent: WithShared, Share, Restore and every write restore on it
// report false. It reports false, without calling fn, on a tag mismatch or
// when m is shared, lent or consumed.
func WithMut[T any](m *Mut, fn func(*T)) bool {
	if m.tag != TagOf[T]() || !m.g.lend() {
		return false
	}
	defer m.g.restore()
	fn((*T)(m.ptr))
	return true
}

// RestoreInto is RestoreMut that also consumes m. Afterwards every
// operation on m reports false, and the returned pointer is the only way
// left to reach the value. A tag mismatch leaves m untouched.
func RestoreInto[T any](m *Mut) (*T, bool) {
	if m.tag != TagOf[T]() || !m.g.consume() {
		return nil, false
	}
	return (*T)(m.ptr), true
}
