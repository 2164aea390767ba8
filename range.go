package anyref

import (
	"fmt"
	"math"
)

type BoundKind uint8

const (
	Unbounded BoundKind = iota
	Included
	Excluded
)

// Bound is one endpoint of a Range.
type Bound struct {
	Kind  BoundKind
	Index int
}

func IncludedBound(i int) Bound { return Bound{Kind: Included, Index: i} }
func ExcludedBound(i int) Bound { return Bound{Kind: Excluded, Index: i} }
func UnboundedBound() Bound     { return Bound{} }

// Range is a start/end pair of bounds. The zero Range covers everything.
type Range struct {
	Start Bound
	End   Bound
}

func NewRange(start, end Bound) Range { return Range{Start: start, End: end} }

// Span is a..b
func Span(a, b int) Range { return Range{IncludedBound(a), ExcludedBound(b)} }

// SpanInclusive is a..=b
func SpanInclusive(a, b int) Range { return Range{IncludedBound(a), IncludedBound(b)} }

// From is a..
func From(a int) Range { return Range{IncludedBound(a), UnboundedBound()} }

// FromExcluded starts just after a.
func FromExcluded(a int) Range { return Range{ExcludedBound(a), UnboundedBound()} }

// To is ..b
func To(b int) Range { return Range{UnboundedBound(), ExcludedBound(b)} }

// ToInclusive is ..=b
func ToInclusive(b int) Range { return Range{UnboundedBound(), IncludedBound(b)} }

// Full is ..
func Full() Range { return Range{} }

func (r Range) String() string {
	var start, end string
	switch r.Start.Kind {
	case Included:
		start = fmt.Sprint(r.Start.Index)
	case Excluded:
		start = fmt.Sprintf("(%d", r.Start.Index)
	}
	switch r.End.Kind {
	case Included:
		end = fmt.Sprintf("=%d", r.End.Index)
	case Excluded:
		end = fmt.Sprint(r.End.Index)
	}
	return start + ".." + end
}

// Constrain resolves r against a container of the given length and returns
// a half-open [start, end) with 0 <= start <= end <= length.
//
// Both endpoints are clamped to length independently, so a range that starts
// past the end yields an empty range instead of an error. Negative indices
// clamp to zero.
func Constrain(length int, r Range) (start, end int) {
	if length < 0 {
		length = 0
	}
	switch r.Start.Kind {
	case Included:
		start = r.Start.Index
	case Excluded:
		start = succ(r.Start.Index)
	default:
		start = 0
	}
	switch r.End.Kind {
	case Included:
		end = succ(r.End.Index)
	case Excluded:
		end = r.End.Index
	default:
		end = length
	}
	start = clamp(start, length)
	end = clamp(end, length)
	if start > end {
		end = start
	}
	return start, end
}

// succ is i+1 saturating at MaxInt.
func succ(i int) int {
	if i == math.MaxInt {
		return i
	}
	return i + 1
}

func clamp(i, length int) int {
	if i < 0 {
		return 0
	}
	return min(i, length)
}
