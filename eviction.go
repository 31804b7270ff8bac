package brickstream

import (
	"context"
	"fmt"

	"github.com/hupe1980/brickstream/brick"
)

// Tier identifies the eviction tier that released a brick. Lower tiers
// are cheaper to lose and are drained first.
type Tier uint8

const (
	// TierDatasetHidden holds bricks whose dataset is not displayed.
	TierDatasetHidden Tier = iota + 1
	// TierBrickHidden holds hidden bricks of displayed datasets.
	TierBrickHidden
	// TierDrawn holds bricks already drawn in their entry's mode.
	TierDrawn
	// TierProcessed is the last resort: bricks consumed by the current
	// Run whose every request has been drawn.
	TierProcessed

	numTiers = int(TierProcessed)
)

func (t Tier) String() string {
	switch t {
	case TierDatasetHidden:
		return "dataset-hidden"
	case TierBrickHidden:
		return "brick-hidden"
	case TierDrawn:
		return "drawn"
	case TierProcessed:
		return "processed"
	default:
		return fmt.Sprintf("tier(%d)", uint8(t))
	}
}

type tierPolicy struct {
	tier  Tier
	match func(e ResidentEntry) bool
}

// classifiedTiers partition the resident set; an entry belongs to the
// first tier that matches it.
var classifiedTiers = []tierPolicy{
	{
		tier: TierDatasetHidden,
		match: func(e ResidentEntry) bool {
			return e.Dataset != nil && !e.Dataset.IsDisplayed()
		},
	},
	{
		tier: TierBrickHidden,
		match: func(e ResidentEntry) bool {
			return !e.Brick.IsDisplayed()
		},
	},
	{
		tier: TierDrawn,
		match: func(e ResidentEntry) bool {
			return e.Brick.WasDrawn(e.Mode)
		},
	},
}

// evict releases resident bricks until required <= 0 and used < limit.
// It returns the number of bricks evicted and the bytes they freed.
func (l *Loader) evict(ctx context.Context, required int64) (int, int64) {
	var freed int64
	satisfied := func() bool {
		return required-freed <= 0 && l.used < l.limit
	}
	if satisfied() {
		return 0, 0
	}

	buckets := make([][]ResidentEntry, len(classifiedTiers))
	for _, e := range l.resident.snapshot() {
		for i, t := range classifiedTiers {
			if t.match(e) {
				buckets[i] = append(buckets[i], e)
				break
			}
		}
	}

	evicted := 0
	for i, t := range classifiedTiers {
		for _, e := range buckets[i] {
			if satisfied() {
				return evicted, freed
			}
			if !e.Brick.IsLoaded() {
				continue
			}
			if size, ok := l.evictEntry(ctx, e.Brick.ID(), t.tier); ok {
				freed += size
				evicted++
			}
		}
	}
	if satisfied() {
		return evicted, freed
	}

	undrawn := l.processed.undrawn()
	for i := l.processed.len() - 1; i >= 0 && !satisfied(); i-- {
		b := l.processed.reqs[i].Brick
		if !b.IsLoaded() {
			continue
		}
		if _, skip := undrawn[b.ID()]; skip {
			continue
		}
		if size, ok := l.evictEntry(ctx, b.ID(), TierProcessed); ok {
			freed += size
			evicted++
		}
	}
	return evicted, freed
}

// evictEntry frees the brick's data and drops its entry.
func (l *Loader) evictEntry(ctx context.Context, id brick.ID, tier Tier) (int64, bool) {
	e, ok := l.resident.remove(id)
	if !ok {
		return 0, false
	}
	e.Brick.FreeData()
	l.used -= e.Size
	l.opts.metricsCollector.RecordEviction(tier, e.Size)
	l.opts.logger.LogEviction(ctx, id, tier, e.Size)
	return e.Size, true
}
