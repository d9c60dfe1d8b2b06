package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// These run the full harness workload (Run) against the structures named
// in spec.md §8's end-to-end scenarios and check the checksum identity each
// run reports; they do not repeat each scenario's own per-operation checks
// (TestMSQueueFIFO, for one, checks the produce/consume checksum, not
// dequeue order). They use testify as SPEC_FULL.md §8 calls for
// here (and only here — every per-package _test.go elsewhere in this
// module stays on plain testing, matching the corpus's actual mixed
// texture rather than standardizing on one assertion library everywhere).

func TestSingleThreadChainedHash(t *testing.T) {
	res, err := Run(context.Background(), Config{
		Structure:      "chainhash",
		Threads:        1,
		ItemsPerThread: 10,
		Buckets:        4,
	}, zap.NewNop())
	require.NoError(t, err)
	require.True(t, res.OK, "checksum %d, want %d", res.Checksum, res.Want)
}

func TestMultiThreadLazyList(t *testing.T) {
	res, err := Run(context.Background(), Config{
		Structure:      "lazylist",
		Threads:        10,
		ItemsPerThread: 1000,
	}, zap.NewNop())
	require.NoError(t, err)
	require.True(t, res.OK)
	require.Equal(t, int64(10000*10001/2), res.Checksum)
}

func TestCuckooTableSaturation(t *testing.T) {
	res, err := Run(context.Background(), Config{
		Structure:      "cuckoohash",
		Threads:        1,
		ItemsPerThread: 500,
		SizeExp:        2,
	}, zap.NewNop())
	require.NoError(t, err)
	require.True(t, res.OK)
}

func TestMSQueueFIFO(t *testing.T) {
	res, err := Run(context.Background(), Config{
		Structure:      "msqueue",
		Threads:        8,
		ItemsPerThread: 2000,
	}, zap.NewNop())
	require.NoError(t, err)
	require.True(t, res.OK, "checksum %d, want %d", res.Checksum, res.Want)
}

func TestSkiplistRangeInsertion(t *testing.T) {
	res, err := Run(context.Background(), Config{
		Structure:      "plainskiplist",
		Threads:        4,
		ItemsPerThread: 2000,
		MaxLevel:       16,
	}, zap.NewNop())
	require.NoError(t, err)
	require.True(t, res.OK)
	require.Len(t, res.PerThread, 4)
}

func TestUnknownStructureIsRejected(t *testing.T) {
	_, err := Run(context.Background(), Config{Structure: "not-a-real-structure", Threads: 1, ItemsPerThread: 1}, zap.NewNop())
	require.Error(t, err)
}
