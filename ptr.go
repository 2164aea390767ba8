package anyref

import "unsafe"

// Ptr is the address-only form of an erased reference. Copying a Ptr is
// always fine; turning one back into a handle is not checked in any way.
//
// Ptr exists to carry an erased reference through places that cannot hold
// a handle, such as a map value or a channel. Whoever calls Deref or
// DerefMut takes on every obligation of RefFromRawParts or MutFromRawParts,
// including that no two handles derived from copies of the same Ptr are
// used to read and write at once.
type Ptr struct {
	ptr unsafe.Pointer
	tag Tag
}

// PtrOf drops the borrow of r.
func PtrOf(r Ref) Ptr { return Ptr{ptr: r.ptr, tag: r.tag} }

func (p Ptr) Tag() Tag { return p.tag }

func (p Ptr) Pointer() unsafe.Pointer { return p.ptr }

func (p Ptr) Deref() Ref { return Ref{ptr: p.ptr, tag: p.tag} }

func (p Ptr) DerefMut() Mut { return Mut{ptr: p.ptr, tag: p.tag} }

// SlicePtr is the address-only form of an erased view; see Ptr.
type SlicePtr struct {
	ptr    unsafe.Pointer
	len    int
	stride uintptr
	tag    Tag
}

// SlicePtrOf drops the borrow of s.
func SlicePtrOf(s SliceRef) SlicePtr {
	return SlicePtr{ptr: s.ptr, len: s.len, stride: s.stride, tag: s.tag}
}

func (p SlicePtr) Tag() Tag { return p.tag }

func (p SlicePtr) Pointer() unsafe.Pointer { return p.ptr }

func (p SlicePtr) Len() int { return p.len }

func (p SlicePtr) IsEmpty() bool { return p.len == 0 }

func (p SlicePtr) Stride() uintptr { return p.stride }

func (p SlicePtr) Deref() SliceRef {
	return SliceRef{ptr: p.ptr, len: p.len, stride: p.stride, tag: p.tag}
}

func (p SlicePtr) DerefMut() SliceMut {
	return SliceMut{ptr: p.ptr, len: p.len, stride: p.stride, tag: p.tag}
}
