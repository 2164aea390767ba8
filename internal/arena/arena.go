// Package arena carves typed, pointer-free views out of a single byte buffer.
//
// The views alias the buffer without copying, so the arena owns the memory
// and anything erased from a view borrows from it. Reset invalidates every
// view handed out so far.
package arena

import (
	"errors"
	"fmt"
	"math/bits"
	"reflect"
	"unsafe"
)

var (
	ErrExhausted   = errors.New("arena: exhausted")
	ErrUnsupported = errors.New("arena: unsupported element type")
	ErrNegative    = errors.New("arena: negative count")
)

type Options struct {
	// Align is the minimum alignment of every view, on top of the element
	// type's own. Zero means the element alignment alone.
	Align uintptr
}

type Option func(*Options)

// WithAlign raises the alignment of every view to n bytes. n is rounded up
// to the next power of two.
func WithAlign(n uintptr) Option {
	return func(o *Options) {
		o.Align = ceilPow2(n)
	}
}

func ceilPow2(n uintptr) uintptr {
	if n <= 1 {
		return n
	}
	return 1 << bits.Len(uint(n-1))
}

type Arena struct {
	buf  []byte
	off  int
	opts Options
}

func New(size int, opts ...Option) *Arena {
	a := &Arena{buf: make([]byte, size)}
	for _, opt := range opts {
		opt(&a.opts)
	}
	return a
}

func (a *Arena) Cap() int       { return len(a.buf) }
func (a *Arena) Used() int      { return a.off }
func (a *Arena) Remaining() int { return len(a.buf) - a.off }

// Reset zeroes the used part of the buffer and makes it available again.
// Views returned earlier must no longer be used.
func (a *Arena) Reset() {
	clear(a.buf[:a.off])
	a.off = 0
}

// Alloc returns n zeroed elements of T backed by the arena. T must not
// contain pointers, since the garbage collector does not scan the buffer.
// The result has cap == len.
func Alloc[T any](a *Arena, n int) ([]T, error) {
	t := reflect.TypeFor[T]()
	if !PointerFree(t) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, t)
	}
	if n < 0 {
		return nil, ErrNegative
	}
	size := t.Size()
	if n == 0 || size == 0 {
		return make([]T, n), nil
	}
	align := max(uintptr(t.Align()), a.opts.Align, 1)
	pad := padding(a.base(), uintptr(a.off), align)
	rem := uintptr(a.Remaining())
	if pad > rem || uintptr(n) > (rem-pad)/size {
		return nil, fmt.Errorf("%w: %d x %s with %d bytes remaining", ErrExhausted, n, t, rem)
	}
	need := pad + size*uintptr(n)
	start := a.off + int(pad)
	a.off += int(need)
	return unsafe.Slice((*T)(unsafe.Pointer(&a.buf[start])), n), nil
}

func (a *Arena) base() uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(a.buf)))
}

func padding(base, off, align uintptr) uintptr {
	addr := base + off
	return (align - addr%align) % align
}

// IsFixedKind reports whether k is a fixed-size primitive kind.
func IsFixedKind(k reflect.Kind) bool {
	switch k {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	default:
		return false
	}
}

// PointerFree reports whether values of t hold no pointers: fixed kinds and
// arrays or structs made only of them.
func PointerFree(t reflect.Type) bool {
	switch k := t.Kind(); {
	case IsFixedKind(k):
		return true
	case k == reflect.Array:
		return PointerFree(t.Elem())
	case k == reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if !PointerFree(t.Field(i).Type) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
