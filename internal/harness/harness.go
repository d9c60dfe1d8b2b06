// Package harness drives the workload protocol spec'd for every Set and
// Queue variant: seed a structure, start N worker goroutines at a common
// barrier, have each operate over a disjoint key range, then verify global
// correctness with a checksum identity. It is the one place in this module
// that talks to zap, prometheus and go-multierror — every pkg/list,
// pkg/skiplist, pkg/hash and pkg/queue package stays free of logging and
// metrics concerns, matching the teacher's habit of keeping the data
// structure itself silent and pushing "something unexpected happened"
// upward to whoever is driving it.
package harness

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gaarutyunov/concurrent-collections/pkg/ckv"
)

// Config describes one workload run.
type Config struct {
	// Structure names which Set or Queue variant to drive; see SetNames and
	// QueueNames for the accepted values.
	Structure string
	// Threads is the worker count N, protocol range [1, 200].
	Threads int
	// ItemsPerThread is M, protocol range [1, 30000].
	ItemsPerThread int
	// Buckets seeds chainhash/stripedhash/refinablehash's initial bucket count.
	Buckets int
	// SizeExp seeds openaddrhash/cuckoohash/ccuckoohash's initial table size
	// as 1<<SizeExp; zero selects a table size of 16.
	SizeExp uint
	// MaxLevel seeds the three skiplist variants.
	MaxLevel int
}

// ThreadStats is one worker's interval statistics, printed by cmd/workload.
type ThreadStats struct {
	ID       int
	Inserted int
	Removed  int
	Sum      int64
	Elapsed  time.Duration
}

// Result is the outcome of a full workload run.
type Result struct {
	OK        bool
	Checksum  int64
	Want      int64
	Elapsed   time.Duration
	PerThread []ThreadStats
}

// Run seeds the named structure, drives the barrier-started worker pool, and
// verifies the checksum identity. For a configuration problem (threads or
// items-per-thread below 1, unknown structure name) it returns a nil Result
// and a plain error. Otherwise it returns a Result whose OK reports the
// checksum verdict, together with the accumulated *multierror.Error of every
// worker-observed bug (nil when there were none), matching the harness's
// job of surfacing every bug rather than stopping at the first.
func Run(ctx context.Context, cfg Config, logger *zap.Logger) (*Result, error) {
	if cfg.Threads < 1 || cfg.ItemsPerThread < 1 {
		return nil, fmt.Errorf("harness: threads and items-per-thread must be >= 1")
	}

	metrics := newMetrics(cfg.Structure)

	if qf, ok := queueRegistry[cfg.Structure]; ok {
		return runQueue(ctx, cfg, logger, metrics, qf(cfg))
	}
	if sf, ok := setRegistry[cfg.Structure]; ok {
		return runSet(ctx, cfg, logger, metrics, sf(cfg))
	}
	return nil, fmt.Errorf("harness: unknown structure %q", cfg.Structure)
}

// runSet implements the protocol literally: thread t owns key range
// [t*M+1, (t+1)*M], inserts with value==key, then removes in the same
// order, accumulating returned values into a per-thread sum.
func runSet(ctx context.Context, cfg Config, logger *zap.Logger, m *metrics, set ckv.Set) (*Result, error) {
	start := time.Now()
	ready := barrier(cfg.Threads)

	g, _ := errgroup.WithContext(ctx)
	stats := make([]ThreadStats, cfg.Threads)

	var errMu sync.Mutex
	var errs *multierror.Error

	for t := 0; t < cfg.Threads; t++ {
		t := t
		g.Go(func() error {
			ready.arrive()
			ready.wait()

			logger.Debug("worker start", zap.Int("thread", t))
			base := int64(t) * int64(cfg.ItemsPerThread)
			wstart := time.Now()

			for i := 1; i <= cfg.ItemsPerThread; i++ {
				k := ckv.Key(base + int64(i))
				var ok bool
				m.timed(cfg.Structure, "insert", func() bool {
					ok = set.Insert(k, ckv.Value(k))
					return ok
				})
				if !ok {
					bug(&errMu, &errs, "thread %d: insert(%d) unexpectedly returned false", t, k)
					continue
				}
				stats[t].Inserted++
			}

			var sum int64
			for i := 1; i <= cfg.ItemsPerThread; i++ {
				k := ckv.Key(base + int64(i))
				var v ckv.Value
				ok := m.timed(cfg.Structure, "remove", func() bool {
					var got bool
					v, got = set.Remove(k)
					return got
				})
				if !ok {
					bug(&errMu, &errs, "thread %d: remove(%d) unexpectedly returned false", t, k)
					continue
				}
				stats[t].Removed++
				sum += int64(v)
			}

			stats[t].ID = t
			stats[t].Sum = sum
			stats[t].Elapsed = time.Since(wstart)
			logger.Debug("worker stop", zap.Int("thread", t), zap.Int64("sum", sum))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var checksum int64
	for _, s := range stats {
		checksum += s.Sum
	}
	n := int64(cfg.Threads) * int64(cfg.ItemsPerThread)
	want := n * (n + 1) / 2

	res := &Result{
		OK:        checksum == want && errs.ErrorOrNil() == nil,
		Checksum:  checksum,
		Want:      want,
		Elapsed:   time.Since(start),
		PerThread: stats,
	}
	return res, errs.ErrorOrNil()
}

// runQueue drives the simpler produce/consume mode: every thread enqueues
// its disjoint key range as values, then, once all producers are done, the
// same pool drains the queue collectively until empty, accumulating a
// shared checksum.
func runQueue(ctx context.Context, cfg Config, logger *zap.Logger, m *metrics, q ckv.Queue) (*Result, error) {
	start := time.Now()
	ready := barrier(cfg.Threads)

	g, _ := errgroup.WithContext(ctx)
	stats := make([]ThreadStats, cfg.Threads)

	var errMu sync.Mutex
	var errs *multierror.Error

	for t := 0; t < cfg.Threads; t++ {
		t := t
		g.Go(func() error {
			ready.arrive()
			ready.wait()

			logger.Debug("producer start", zap.Int("thread", t))
			base := int64(t) * int64(cfg.ItemsPerThread)
			wstart := time.Now()

			for i := 1; i <= cfg.ItemsPerThread; i++ {
				v := ckv.Value(base + int64(i))
				ok := m.timed(cfg.Structure, "enqueue", func() bool { return q.Enqueue(v) })
				if !ok {
					bug(&errMu, &errs, "thread %d: enqueue(%d) unexpectedly returned false", t, v)
					continue
				}
				stats[t].Inserted++
			}
			stats[t].ID = t
			stats[t].Elapsed = time.Since(wstart)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := cfg.Threads * cfg.ItemsPerThread
	var checksum int64
	var drained int
	var mu sync.Mutex

	g2, _ := errgroup.WithContext(ctx)
	for t := 0; t < cfg.Threads; t++ {
		t := t
		g2.Go(func() error {
			var sum int64
			var removed int
			for {
				mu.Lock()
				if drained >= total {
					mu.Unlock()
					break
				}
				drained++
				mu.Unlock()

				var v ckv.Value
				ok := m.timed(cfg.Structure, "dequeue", func() bool {
					var got bool
					v, got = q.Dequeue()
					return got
				})
				if !ok {
					bug(&errMu, &errs, "thread %d: dequeue unexpectedly reported empty", t)
					continue
				}
				sum += int64(v)
				removed++
			}
			mu.Lock()
			checksum += sum
			mu.Unlock()
			stats[t].Removed = removed
			return nil
		})
	}
	if err := g2.Wait(); err != nil {
		return nil, err
	}

	n := int64(cfg.Threads) * int64(cfg.ItemsPerThread)
	want := n * (n + 1) / 2

	res := &Result{
		OK:        checksum == want && errs.ErrorOrNil() == nil,
		Checksum:  checksum,
		Want:      want,
		Elapsed:   time.Since(start),
		PerThread: stats,
	}
	return res, errs.ErrorOrNil()
}

func bug(mu *sync.Mutex, errs **multierror.Error, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	*errs = multierror.Append(*errs, fmt.Errorf(format, args...))
}

// startBarrier is a rendezvous point: every worker calls arrive() once it is
// ready, then wait() blocks until all workers have arrived. errgroup alone
// only propagates errors and waits for completion, it has no concept of a
// start line, so the harness pairs it with this explicit barrier.
type startBarrier struct {
	wg    sync.WaitGroup
	start chan struct{}
	once  sync.Once
}

func barrier(n int) *startBarrier {
	b := &startBarrier{start: make(chan struct{})}
	b.wg.Add(n)
	return b
}

func (b *startBarrier) arrive() {
	b.wg.Done()
	b.once.Do(func() {
		go func() {
			b.wg.Wait()
			close(b.start)
		}()
	})
}

func (b *startBarrier) wait() { <-b.start }
