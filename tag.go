package anyref

import "reflect"

// Tag identifies the static type a handle was erased from.
//
// Tags are comparable with == and are unique per Go type. The zero Tag
// belongs to no type, so a zero-valued handle never restores.
type Tag struct {
	rt reflect.Type
}

// TagOf returns the tag of T.
func TagOf[T any]() Tag {
	return Tag{rt: reflect.TypeFor[T]()}
}

func (t Tag) Equal(other Tag) bool { return t.rt == other.rt }

func (t Tag) IsZero() bool { return t.rt == nil }

// String names the tagged type. It is meant for diagnostics only.
func (t Tag) String() string {
	if t.rt == nil {
		return "<none>"
	}
	return t.rt.String()
}

// Handle is implemented by every erased handle in this package.
type Handle interface {
	Tag() Tag
}

// Contains reports whether h was erased from a T (or, for views, from a []T).
func Contains[T any](h Handle) bool {
	return h.Tag() == TagOf[T]()
}
