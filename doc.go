// Package anyref provides type-erased references: handles that point at a
// value (or a run of values) of a type the holder does not know statically,
// and that can be turned back into a typed pointer or slice once the caller
// names the right type.
//
// There are four handles:
//
//   - [Ref]: shared reference to one value (like *T that is only read)
//   - [Mut]: exclusive reference to one value
//   - [SliceRef]: shared view of contiguous values (like []T that is only read)
//   - [SliceMut]: exclusive view of contiguous values
//
// Each one stores an address, a [Tag] for the erased type and, for views,
// the length and element stride. Restoring with the wrong type reports
// false; it never reinterprets memory:
//
//	x := int32(7)
//	r := anyref.Erase(&x)
//	_, ok := anyref.Restore[bool](r) // ok == false
//	p, ok := anyref.Restore[int32](r) // p == &x, ok == true
//
// Views can be indexed and sub-ranged without knowing the element type.
// [SliceRef.At] is bounds-checked and reports false past the end, while
// [SliceRef.Sub] clamps its [Range] and always succeeds:
//
//	v := anyref.EraseSlice([]int32{10, 20, 30, 40, 50})
//	w := v.Sub(anyref.Span(1, 4))  // len 3
//	e, _ := w.At(0)                 // restores to 20
//	v.Sub(anyref.Span(10, 20)).Len() // 0
//
// # Aliasing
//
// Go has no borrow checker, so the exclusive handles carry a small atomic
// guard. [Mut.WithShared] and [SliceMut.WithShared] open a shared loan for
// the duration of a callback, during which write restoration is refused.
// [SliceMut.WithSub] and [SliceMut.WithElem] lend part of a view exclusively,
// during which the parent refuses everything. [WithMut] and [WithSliceMut]
// lend the whole handle to a writer the same way. [RestoreInto] and
// [RestoreSliceInto] consume the handle. The unscoped [Mut.Share],
// [SliceMut.Share], [RestoreMut] and [RestoreSliceMut] only check the guard
// when called and leave the discipline to the caller.
//
// Exclusive handles must not be copied; go vet reports copies.
//
// # Raw parts
//
// [RefFromRawParts], [MutFromRawParts], [SliceRefFromRawParts] and
// [SliceMutFromRawParts] build handles from fields supplied by the caller,
// as do [Ptr.Deref] and [SlicePtr.Deref]. Nothing about them is checked: a
// wrong address, length, stride or tag is undefined behavior.
package anyref
