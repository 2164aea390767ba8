package anyref

import (
	"sync"
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEraseRestoreBool(t *testing.T) {
	r := require.New(t)
	v := true
	ref := Erase(&v)

	r.True(Contains[bool](ref))
	r.False(Contains[int32](ref))

	p, ok := Restore[int32](ref)
	r.False(ok)
	r.Nil(p)

	b, ok := Restore[bool](ref)
	r.True(ok)
	r.True(*b)
	r.Same(&v, b)
}

func TestEraseRestoreRune(t *testing.T) {
	data := '🦀'
	ref := Erase(&data)
	p, ok := Restore[rune](ref)
	require.True(t, ok)
	require.Equal(t, data, *p)
}

func TestErasePanicsOnNil(t *testing.T) {
	require.PanicsWithValue(t, "anyref: erase of nil pointer", func() {
		Erase[int](nil)
	})
	require.PanicsWithValue(t, "anyref: erase of nil pointer", func() {
		_ = EraseMut[int](nil)
	})
}

func TestRoundTripProperty(t *testing.T) {
	type pair struct {
		A uint8
		B uint16
	}
	condition := func(i int64, s string, p pair) bool {
		ri, rs, rp := Erase(&i), Erase(&s), Erase(&p)
		gi, ok1 := Restore[int64](ri)
		gs, ok2 := Restore[string](rs)
		gp, ok3 := Restore[pair](rp)
		_, bad1 := Restore[uint64](ri)
		_, bad2 := Restore[[]byte](rs)
		_, bad3 := Restore[struct {
			A uint8
			B uint16
		}](rp)
		return ok1 && ok2 && ok3 && !bad1 && !bad2 && !bad3 &&
			*gi == i && *gs == s && *gp == p && gi == &i
	}
	require.NoError(t, quick.Check(condition, &quick.Config{}))
}

func TestMutationVisibility(t *testing.T) {
	r := require.New(t)
	data := 'z'
	m := EraseMut(&data)

	p, ok := RestoreMut[rune](&m)
	r.True(ok)
	*p = '💤'
	r.Equal('💤', data)

	_, ok = RestoreMut[bool](&m)
	r.False(ok)
}

func TestRestoreFromMut(t *testing.T) {
	r := require.New(t)
	data := int32(7)
	m := EraseMut(&data)

	_, ok := Restore[bool](&m)
	r.False(ok)
	p, ok := Restore[int32](&m)
	r.True(ok)
	r.Equal(int32(7), *p)
	r.Equal(TagOf[int32](), m.Tag())
	r.True(m.Is(TagOf[int32]()))
}

func TestRestoreInto(t *testing.T) {
	r := require.New(t)
	data := int32(7)
	m := EraseMut(&data)

	// a mismatch keeps the handle
	_, ok := RestoreInto[int64](&m)
	r.False(ok)
	r.False(m.Consumed())

	p, ok := RestoreInto[int32](&m)
	r.True(ok)
	r.True(m.Consumed())
	*p = 8
	r.Equal(int32(8), data)

	_, ok = RestoreInto[int32](&m)
	r.False(ok)
	_, ok = RestoreMut[int32](&m)
	r.False(ok)
	_, ok = Restore[int32](&m)
	r.False(ok)
	r.Equal(Ref{}, m.Share())
	r.False(m.WithShared(func(Ref) { t.Fatal("called on consumed handle") }))
	_, ok = m.IntoPtr()
	r.False(ok)
}

func TestShareTwice(t *testing.T) {
	r := require.New(t)
	data := []int{1, 2, 3}
	m := EraseMut(&data)
	a, b := m.Share(), m.Share()
	pa, ok := Restore[[]int](a)
	r.True(ok)
	pb, ok := Restore[[]int](b)
	r.True(ok)
	r.Equal(*pa, *pb)
	r.Same(pa, pb)
}

func TestWithSharedBlocksWrites(t *testing.T) {
	r := require.New(t)
	data := 3.5
	m := EraseMut(&data)

	r.True(m.WithShared(func(s Ref) {
		r.Equal(m.Pointer(), s.Pointer())
		p, ok := Restore[float64](s)
		r.True(ok)
		r.Equal(3.5, *p)

		_, ok = RestoreMut[float64](&m)
		r.False(ok, "write restore during a shared loan")
		_, ok = RestoreInto[float64](&m)
		r.False(ok)
		_, ok = Restore[float64](&m)
		r.True(ok, "reads stay allowed")

		r.True(m.WithShared(func(inner Ref) {
			r.Equal(s, inner)
		}))
	}))

	_, ok := RestoreMut[float64](&m)
	r.True(ok, "loan released")
}

func TestWithSharedReleasesOnPanic(t *testing.T) {
	data := 1
	m := EraseMut(&data)
	require.Panics(t, func() {
		m.WithShared(func(Ref) { panic("boom") })
	})
	_, ok := RestoreMut[int](&m)
	require.True(t, ok)
}

func TestWithSharedConcurrent(t *testing.T) {
	data := uint64(42)
	m := EraseMut(&data)

	const readers = 32
	var wg sync.WaitGroup
	start := make(chan struct{})
	wg.Add(readers)
	for range readers {
		go func() {
			defer wg.Done()
			<-start
			ok := m.WithShared(func(s Ref) {
				p, ok := Restore[uint64](s)
				assert.True(t, ok)
				assert.Equal(t, uint64(42), *p)
			})
			assert.True(t, ok)
		}()
	}
	close(start)
	wg.Wait()

	_, ok := RestoreMut[uint64](&m)
	require.True(t, ok)
}

func TestRawParts(t *testing.T) {
	r := require.New(t)
	data := int16(-3)
	ref := Erase(&data)

	back := RefFromRawParts(ref.Pointer(), ref.Tag())
	p, ok := Restore[int16](back)
	r.True(ok)
	r.Same(&data, p)

	m := MutFromRawParts(ref.Pointer(), TagOf[int16]())
	q, ok := RestoreMut[int16](&m)
	r.True(ok)
	*q = 4
	r.Equal(int16(4), data)
}

func TestZeroRef(t *testing.T) {
	var ref Ref
	_, ok := Restore[int](ref)
	require.False(t, ok)
	require.True(t, ref.Tag().IsZero())
	require.False(t, Contains[struct{}](ref))
}

func TestRefString(t *testing.T) {
	x := 1
	require.Contains(t, Erase(&x).String(), "anyref.Ref[int]")
	m := EraseMut(&x)
	require.Contains(t, m.String(), "anyref.Mut[int]")
}

func TestWithMutLendsHandle(t *testing.T) {
	r := require.New(t)
	data := 5
	m := EraseMut(&data)

	r.False(WithMut(&m, func(*int64) { t.Fatal("called on a tag mismatch") }))
	r.True(WithMut(&m, func(p *int) {
		*p = 99
		r.False(m.WithShared(func(Ref) { t.Fatal("reader opened beside a writer") }))
		r.Equal(Ref{}, m.Share())
		_, ok := Restore[int](&m)
		r.False(ok)
		_, ok = RestoreMut[int](&m)
		r.False(ok)
		_, ok = RestoreInto[int](&m)
		r.False(ok)
		r.False(WithMut(&m, func(*int) { t.Fatal("second writer") }))
		_, ok = m.IntoPtr()
		r.False(ok)
	}))
	r.Equal(99, data)

	r.True(m.WithShared(func(Ref) {
		r.False(WithMut(&m, func(*int) { t.Fatal("writer opened beside a reader") }))
	}))

	_, ok := RestoreInto[int](&m)
	r.True(ok)
	r.False(WithMut(&m, func(*int) { t.Fatal("called on a consumed handle") }))
}

func TestWithMutReleasesOnPanic(t *testing.T) {
	data := 1
	m := EraseMut(&data)
	require.Panics(t, func() {
		WithMut(&m, func(*int) { panic("boom") })
	})
	require.True(t, m.WithShared(func(Ref) {}))
	_, ok := RestoreMut[int](&m)
	require.True(t, ok)
}
