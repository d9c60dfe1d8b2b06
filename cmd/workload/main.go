// Command workload is the CLI front end for internal/harness: it parses the
// flags the workload protocol specifies, runs the chosen structure through
// the barrier-started worker pool, and prints the OK/FAILED verdict. The
// per-thread interval statistics are logged at Info level, so they appear
// only with -v or -V.
package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gaarutyunov/concurrent-collections/internal/harness"
)

func main() {
	var (
		structure = pflag.StringP("structure", "x", "lazylist", "structure to drive; see -h for the list")
		threads   = pflag.IntP("threads", "t", 10, "worker thread count (1..200)")
		items     = pflag.IntP("items", "n", 1000, "items per thread (1..30000)")
		buckets   = pflag.IntP("buckets", "b", 16, "initial bucket count (chainhash/stripedhash/refinablehash)")
		sizeExp   = pflag.UintP("size-exp", "s", 4, "initial table size exponent (openaddrhash/cuckoohash/ccuckoohash)")
		maxLevel  = pflag.IntP("level", "l", 16, "max level (plainskiplist/lazyskiplist/lockfreeskiplist)")
		info      = pflag.BoolP("verbose", "v", false, "raise log verbosity to Info")
		debug     = pflag.BoolP("debug", "V", false, "raise log verbosity to Debug")
		help      = pflag.BoolP("help", "h", false, "print usage and exit")
	)
	pflag.Parse()

	if *help {
		printUsage()
		return
	}

	if *threads < 1 || *threads > 200 {
		fmt.Fprintln(os.Stderr, "workload: -t must be in [1, 200]")
		os.Exit(2)
	}
	if *items < 1 || *items > 30000 {
		fmt.Fprintln(os.Stderr, "workload: -n must be in [1, 30000]")
		os.Exit(2)
	}

	logger := newLogger(*info, *debug)
	defer func() { _ = logger.Sync() }()

	cfg := harness.Config{
		Structure:      *structure,
		Threads:        *threads,
		ItemsPerThread: *items,
		Buckets:        *buckets,
		SizeExp:        *sizeExp,
		MaxLevel:       *maxLevel,
	}

	res, err := harness.Run(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("RESULT: test FAILED", zap.Error(err))
		fmt.Println("RESULT: test FAILED")
		os.Exit(1)
	}

	for _, s := range res.PerThread {
		logger.Info("thread interval stats",
			zap.Int("thread", s.ID),
			zap.Int("inserted", s.Inserted),
			zap.Int("removed", s.Removed),
			zap.Int64("sum", s.Sum),
			zap.Duration("elapsed", s.Elapsed),
		)
	}

	if res.OK {
		logger.Info("RESULT: test OK", zap.Int64("checksum", res.Checksum))
		fmt.Println("RESULT: test OK")
		return
	}

	logger.Error("RESULT: test FAILED", zap.Int64("checksum", res.Checksum), zap.Int64("want", res.Want))
	fmt.Println("RESULT: test FAILED")
	os.Exit(1)
}

func newLogger(info, debug bool) *zap.Logger {
	level := zapcore.WarnLevel
	switch {
	case debug:
		level = zapcore.DebugLevel
	case info:
		level = zapcore.InfoLevel
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func printUsage() {
	sets := harness.SetNames()
	queues := harness.QueueNames()
	sort.Strings(sets)
	sort.Strings(queues)

	fmt.Println("workload: drive a concurrent ordered-set or queue structure through the standard benchmark protocol")
	fmt.Println()
	pflag.PrintDefaults()
	fmt.Println()
	fmt.Println("structures (Set, disjoint-range insert/remove protocol):")
	fmt.Println("  " + strings.Join(sets, ", "))
	fmt.Println("structures (Queue, produce/consume protocol):")
	fmt.Println("  " + strings.Join(queues, ", "))
}
