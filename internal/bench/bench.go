// Package bench drives the anyref handles through timed workloads over
// arena-backed views and checks every result against a checksum computed
// without erasure.
package bench

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"time"
	"unsafe"

	"golang.org/x/sync/errgroup"

	"github.com/rawbytedev/anyref"
	"github.com/rawbytedev/anyref/internal/arena"
)

var (
	ErrInvalidConfig = errors.New("bench: invalid config")
	ErrChecksum      = errors.New("bench: checksum mismatch")
	ErrRestore       = errors.New("bench: restore failed")
)

const (
	elemSize   = int(unsafe.Sizeof(int64(0)))
	arenaSlack = 64

	// MaxElements keeps the arena size within an int.
	MaxElements = (math.MaxInt - arenaSlack) / elemSize
)

type Config struct {
	Iterations int // operations per workload
	Elements   int // length of the erased view
	Workers    int // concurrent readers in the shared workload
}

func DefaultConfig() Config {
	return Config{
		Iterations: 1_000_000,
		Elements:   4096,
		Workers:    runtime.GOMAXPROCS(0),
	}
}

func (c Config) Validate() error {
	switch {
	case c.Iterations <= 0:
		return fmt.Errorf("%w: iterations must be positive, got %d", ErrInvalidConfig, c.Iterations)
	case c.Elements <= 0:
		return fmt.Errorf("%w: elements must be positive, got %d", ErrInvalidConfig, c.Elements)
	case c.Elements > MaxElements:
		return fmt.Errorf("%w: elements must be at most %d, got %d", ErrInvalidConfig, MaxElements, c.Elements)
	case c.Workers <= 0:
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidConfig, c.Workers)
	}
	return nil
}

type Result struct {
	Name     string        `json:"name"`
	Ops      int           `json:"ops"`
	Duration time.Duration `json:"duration"`
	Allocs   uint64        `json:"allocs"`
	Checksum uint64        `json:"checksum"`
}

func (r Result) NsPerOp() float64 {
	if r.Ops == 0 {
		return 0
	}
	return float64(r.Duration.Nanoseconds()) / float64(r.Ops)
}

func (r Result) AllocsPerOp() float64 {
	if r.Ops == 0 {
		return 0
	}
	return float64(r.Allocs) / float64(r.Ops)
}

type Report struct {
	Config  Config   `json:"config"`
	Results []Result `json:"results"`
}

type workload struct {
	name string
	run  func(ctx context.Context, s *state) (ops int, sum, want uint64, err error)
}

// state is the memory every workload borrows from.
type state struct {
	cfg   Config
	arena *arena.Arena
	data  []int64
}

// reset hands the arena back and carves a fresh view, so every workload
// starts from the same values at the same address.
func (s *state) reset() error {
	s.arena.Reset()
	data, err := arena.Alloc[int64](s.arena, s.cfg.Elements)
	if err != nil {
		return fmt.Errorf("could not carve view: %w", err)
	}
	for i := range data {
		data[i] = int64(i)
	}
	s.data = data
	return nil
}

var workloads = []workload{
	{"scalar", scalar},
	{"view-at", viewAt},
	{"view-sub", viewSub},
	{"shared-readers", sharedReaders},
	{"exclusive-writer", exclusiveWriter},
}

// Run executes every workload in order and stops at the first failure.
func Run(ctx context.Context, cfg Config, logger *slog.Logger) (Report, error) {
	if err := cfg.Validate(); err != nil {
		return Report{}, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	st := &state{cfg: cfg, arena: arena.New(cfg.Elements*elemSize + arenaSlack)}
	logger.DebugContext(ctx, "arena ready", "capacity", st.arena.Cap())

	report := Report{Config: cfg}
	for _, w := range workloads {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := st.reset(); err != nil {
			return report, err
		}

		var before, after runtime.MemStats
		runtime.ReadMemStats(&before)
		start := time.Now()
		ops, sum, want, err := w.run(ctx, st)
		elapsed := time.Since(start)
		runtime.ReadMemStats(&after)
		if err != nil {
			return report, fmt.Errorf("workload %s: %w", w.name, err)
		}
		if sum != want {
			return report, fmt.Errorf("workload %s: %w: got %d, want %d", w.name, ErrChecksum, sum, want)
		}

		res := Result{
			Name:     w.name,
			Ops:      ops,
			Duration: elapsed,
			Allocs:   after.Mallocs - before.Mallocs,
			Checksum: sum,
		}
		logger.InfoContext(ctx, "workload completed", "name", res.Name, "ops", res.Ops,
			"duration", res.Duration.String(), "ns_per_op", res.NsPerOp())
		report.Results = append(report.Results, res)
	}
	return report, nil
}

func scalar(_ context.Context, s *state) (int, uint64, uint64, error) {
	var sum, want uint64
	for i := 0; i < s.cfg.Iterations; i++ {
		x := int64(i)
		r := anyref.Erase(&x)
		if _, ok := anyref.Restore[uint64](r); ok {
			return i, sum, want, fmt.Errorf("%w: int64 restored as uint64", ErrRestore)
		}
		p, ok := anyref.Restore[int64](r)
		if !ok {
			return i, sum, want, fmt.Errorf("%w: int64", ErrRestore)
		}
		sum += uint64(*p)
		want += uint64(i)
	}
	return s.cfg.Iterations, sum, want, nil
}

func viewAt(_ context.Context, s *state) (int, uint64, uint64, error) {
	v := anyref.EraseSlice(s.data)
	n := len(s.data)
	var sum, want uint64
	for i := 0; i < s.cfg.Iterations; i++ {
		e, ok := v.At(i % n)
		if !ok {
			return i, sum, want, fmt.Errorf("%w: index %d of %d", ErrRestore, i%n, n)
		}
		p, ok := anyref.Restore[int64](e)
		if !ok {
			return i, sum, want, fmt.Errorf("%w: element %d", ErrRestore, i%n)
		}
		sum += uint64(*p)
		want += uint64(s.data[i%n])
	}
	return s.cfg.Iterations, sum, want, nil
}

// viewSub takes windows of eight elements that run off the end of the view,
// so the clamping path is exercised as often as the plain one.
func viewSub(_ context.Context, s *state) (int, uint64, uint64, error) {
	const window = 8
	v := anyref.EraseSlice(s.data)
	n := len(s.data)
	var sum, want uint64
	for i := 0; i < s.cfg.Iterations; i++ {
		lo := i % n
		sub := v.Sub(anyref.Span(lo, lo+window))
		got, ok := anyref.RestoreSlice[int64](sub)
		if !ok {
			return i, sum, want, fmt.Errorf("%w: window at %d", ErrRestore, lo)
		}
		sum += uint64(len(got))
		if len(got) > 0 {
			sum += uint64(got[0])
		}
		hi := min(lo+window, n)
		want += uint64(hi - lo)
		if hi > lo {
			want += uint64(s.data[lo])
		}
	}
	return s.cfg.Iterations, sum, want, nil
}

// sharedReaders opens one shared loan on an exclusive view and lets every
// worker read through its own copy of the shared handle.
func sharedReaders(ctx context.Context, s *state) (int, uint64, uint64, error) {
	m := anyref.EraseSliceMut(s.data)
	workers := s.cfg.Workers
	per := max(s.cfg.Iterations/workers, 1)
	sums := make([]uint64, workers)

	var err error
	lent := m.WithShared(func(shared anyref.SliceRef) {
		eg, egctx := errgroup.WithContext(ctx)
		eg.SetLimit(workers)
		for w := range workers {
			eg.Go(func() error {
				got, ok := anyref.RestoreSlice[int64](shared)
				if !ok {
					return fmt.Errorf("%w: worker %d", ErrRestore, w)
				}
				var local uint64
				for i := 0; i < per; i++ {
					if i%4096 == 0 {
						if err := egctx.Err(); err != nil {
							return err
						}
					}
					local += uint64(got[(w+i)%len(got)])
				}
				sums[w] = local
				return nil
			})
		}
		err = eg.Wait()
	})
	if !lent {
		return 0, 0, 0, fmt.Errorf("%w: view busy", ErrRestore)
	}
	if err != nil {
		return 0, 0, 0, err
	}

	var sum, want uint64
	n := len(s.data)
	for w := range workers {
		sum += sums[w]
		for i := 0; i < per; i++ {
			want += uint64(s.data[(w+i)%n])
		}
	}
	return per * workers, sum, want, nil
}

// exclusiveWriter lends one element at a time and increments it.
func exclusiveWriter(_ context.Context, s *state) (int, uint64, uint64, error) {
	m := anyref.EraseSliceMut(s.data)
	n := len(s.data)
	var before uint64
	for _, x := range s.data {
		before += uint64(x)
	}
	for i := 0; i < s.cfg.Iterations; i++ {
		var ok bool
		lent := m.WithElem(i%n, func(e *anyref.Mut) {
			ok = anyref.WithMut(e, func(p *int64) { *p++ })
		})
		if !lent || !ok {
			return i, 0, 0, fmt.Errorf("%w: element %d", ErrRestore, i%n)
		}
	}
	all, ok := anyref.RestoreSliceInto[int64](&m)
	if !ok {
		return s.cfg.Iterations, 0, 0, fmt.Errorf("%w: view", ErrRestore)
	}
	var after uint64
	for _, x := range all {
		after += uint64(x)
	}
	return s.cfg.Iterations, after - before, uint64(s.cfg.Iterations), nil
}
