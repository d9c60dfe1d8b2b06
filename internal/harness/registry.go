package harness

import (
	"github.com/gaarutyunov/concurrent-collections/pkg/ckv"
	"github.com/gaarutyunov/concurrent-collections/pkg/hash/ccuckoohash"
	"github.com/gaarutyunov/concurrent-collections/pkg/hash/chainhash"
	"github.com/gaarutyunov/concurrent-collections/pkg/hash/cuckoohash"
	"github.com/gaarutyunov/concurrent-collections/pkg/hash/openaddrhash"
	"github.com/gaarutyunov/concurrent-collections/pkg/hash/refinablehash"
	"github.com/gaarutyunov/concurrent-collections/pkg/hash/stripedhash"
	"github.com/gaarutyunov/concurrent-collections/pkg/list/coarselist"
	"github.com/gaarutyunov/concurrent-collections/pkg/list/finelist"
	"github.com/gaarutyunov/concurrent-collections/pkg/list/fomitchevlist"
	"github.com/gaarutyunov/concurrent-collections/pkg/list/harrislist"
	"github.com/gaarutyunov/concurrent-collections/pkg/list/lazylist"
	"github.com/gaarutyunov/concurrent-collections/pkg/queue/llscqueue"
	"github.com/gaarutyunov/concurrent-collections/pkg/queue/msqueue"
	"github.com/gaarutyunov/concurrent-collections/pkg/skiplist/lazyskiplist"
	"github.com/gaarutyunov/concurrent-collections/pkg/skiplist/lockfreeskiplist"
	"github.com/gaarutyunov/concurrent-collections/pkg/skiplist/plainskiplist"
)

func skiplistBounds(cfg Config) (maxLevel int, minKey, maxKey ckv.Key) {
	maxLevel = cfg.MaxLevel
	if maxLevel < 1 {
		maxLevel = 16
	}
	return maxLevel, ckv.MinKey, ckv.MaxKey
}

func bucketCount(cfg Config) int {
	if cfg.Buckets < 1 {
		return 16
	}
	return cfg.Buckets
}

func tableSize(cfg Config) int {
	if cfg.SizeExp == 0 {
		return 16
	}
	return 1 << cfg.SizeExp
}

var setRegistry = map[string]func(Config) ckv.Set{
	"coarselist":    func(Config) ckv.Set { return coarselist.New() },
	"finelist":      func(Config) ckv.Set { return finelist.New() },
	"lazylist":      func(Config) ckv.Set { return lazylist.New() },
	"harrislist":    func(Config) ckv.Set { return harrislist.New() },
	"fomitchevlist": func(Config) ckv.Set { return fomitchevlist.New() },
	"plainskiplist": func(cfg Config) ckv.Set {
		ml, lo, hi := skiplistBounds(cfg)
		return plainskiplist.New(ml, lo, hi)
	},
	"lazyskiplist": func(cfg Config) ckv.Set {
		ml, lo, hi := skiplistBounds(cfg)
		return lazyskiplist.New(ml, lo, hi)
	},
	"lockfreeskiplist": func(cfg Config) ckv.Set {
		ml, lo, hi := skiplistBounds(cfg)
		return lockfreeskiplist.New(ml, lo, hi)
	},
	"chainhash":     func(cfg Config) ckv.Set { return chainhash.New(bucketCount(cfg)) },
	"openaddrhash":  func(cfg Config) ckv.Set { return openaddrhash.New(tableSize(cfg)) },
	"stripedhash":   func(cfg Config) ckv.Set { return stripedhash.New(bucketCount(cfg)) },
	"refinablehash": func(cfg Config) ckv.Set { return refinablehash.New(bucketCount(cfg)) },
	"cuckoohash":    func(cfg Config) ckv.Set { return cuckoohash.New(tableSize(cfg)) },
	"ccuckoohash": func(cfg Config) ckv.Set {
		return ccuckoohash.New(tableSize(cfg), 4, 2)
	},
}

var queueRegistry = map[string]func(Config) ckv.Queue{
	"msqueue":   func(Config) ckv.Queue { return msqueue.New() },
	"llscqueue": func(Config) ckv.Queue { return llscqueue.New() },
}

// SetNames lists the Set-variant structure names cmd/workload accepts.
func SetNames() []string {
	names := make([]string, 0, len(setRegistry))
	for n := range setRegistry {
		names = append(names, n)
	}
	return names
}

// QueueNames lists the Queue-variant structure names cmd/workload accepts.
func QueueNames() []string {
	names := make([]string, 0, len(queueRegistry))
	for n := range queueRegistry {
		names = append(names, n)
	}
	return names
}
