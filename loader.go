package brickstream

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/hupe1980/brickstream/brick"
)

// Stats is a snapshot of the Loader's bookkeeping.
type Stats struct {
	// Used is the number of bytes accounted to resident bricks.
	Used int64
	// Limit is the memory budget in bytes.
	Limit int64
	// Resident is the number of resident entries.
	Resident int
	// Datasets is the number of datasets with at least one resident brick.
	Datasets int
	// Pending is the number of queued requests.
	Pending int
	// Processed is the number of requests consumed by the last Run.
	Processed int
}

// Loader streams bricks from a Source into a bounded CPU memory budget.
//
// A Loader is not safe for concurrent use. All methods are meant to be
// called from the goroutine that drives rendering.
type Loader struct {
	src   Source
	opts  options
	limit int64
	used  int64

	pending   []LoadRequest
	resident  *residentSet
	processed processedLog
}

// New creates a Loader reading from src. WithMemoryLimit is required.
func New(src Source, optFns ...Option) (*Loader, error) {
	if src == nil {
		return nil, ErrNilSource
	}

	o := defaultOptions()
	for _, fn := range optFns {
		fn(&o)
	}
	if o.memoryLimit <= 0 {
		return nil, ErrInvalidMemoryLimit
	}

	l := &Loader{
		src:      src,
		opts:     o,
		limit:    o.memoryLimit,
		resident: newResidentSet(),
	}
	l.warnSmallLimit()
	return l, nil
}

func (l *Loader) warnSmallLimit() {
	if l.limit < MinRecommendedMemoryLimit {
		l.opts.logger.Warn("memory limit below recommended minimum",
			"limit", l.limit,
			"recommended", MinRecommendedMemoryLimit,
		)
	}
}

// Queue appends req to the pending queue. Duplicates are not filtered.
func (l *Loader) Queue(req LoadRequest) {
	req.Size = 0
	l.pending = append(l.pending, req)
}

// SetQueue replaces the pending queue with a copy of reqs, which the
// caller has already ordered (see SortNearFirst and SortFarFirst).
func (l *Loader) SetQueue(reqs []LoadRequest) {
	l.pending = slices.Clone(reqs)
}

// ClearQueues discards every pending request. Resident bricks are kept.
func (l *Loader) ClearQueues() {
	clear(l.pending)
	l.pending = l.pending[:0]
}

// Run drains the pending queue in order, reading every brick that is
// neither loaded nor loading and evicting resident bricks to stay
// within the memory budget.
//
// Read failures drop the request silently; callers observe results via
// the brick's loaded flag. Run returns an error only when a brick could
// not be admitted within the budget (matching ErrBudgetExceeded) or
// when ctx is done. The pending queue is empty when Run returns.
func (l *Loader) Run(ctx context.Context) error {
	start := time.Now()

	l.healStalled(ctx)
	l.processed.reset()

	queue := l.pending
	l.pending = nil

	var errs []error
	loaded := 0
	for i, req := range queue {
		b := req.Brick
		b.SetLoading(false)
		l.processed.add(req)

		if b.IsLoaded() || b.IsLoading() {
			l.refresh(req)
			continue
		}
		if ctx.Err() != nil {
			continue
		}

		incoming := brick.ByteSize(b)
		if err := l.admit(ctx, b.ID(), incoming, queue[i+1:]); err != nil {
			l.opts.logger.WarnContext(ctx, "brick load dropped", "brick", uint64(b.ID()), "error", err)
			errs = append(errs, err)
			continue
		}
		if l.load(ctx, req) {
			loaded++
		}
	}

	if err := ctx.Err(); err != nil {
		errs = append(errs, err)
	}
	err := errors.Join(errs...)

	l.opts.metricsCollector.RecordRun(len(queue), loaded, time.Since(start), err)
	l.opts.logger.LogRun(ctx, l.Stats(), len(queue), loaded, time.Since(start), err)
	return err
}

// healStalled drops entries whose load never completed.
func (l *Loader) healStalled(ctx context.Context) {
	for _, e := range l.resident.snapshot() {
		b := e.Brick
		if !b.IsLoading() || b.IsLoaded() {
			continue
		}
		b.SetLoading(false)
		l.resident.remove(b.ID())
		l.used -= e.Size
		l.opts.logger.LogStalled(ctx, b.ID(), e.Size)
	}
}

// admit evicts until incoming bytes fit the budget, in at most
// maxEvictionRounds rounds.
func (l *Loader) admit(ctx context.Context, id brick.ID, incoming int64, pending []LoadRequest) error {
	required := incoming + pendingBytes(pending)
	exhausted := func() error {
		return &ErrBudgetExhausted{
			BrickID:  id,
			Required: required,
			Used:     l.used,
			Limit:    l.limit,
		}
	}
	// A brick that can never fit must not flush the resident set.
	if incoming > l.limit {
		return exhausted()
	}
	for round := 0; l.used >= l.limit || l.used+incoming > l.limit; round++ {
		if round == l.opts.maxEvictionRounds {
			return exhausted()
		}
		n, freed := l.evict(ctx, required)
		if n == 0 {
			return exhausted()
		}
		// The next round only has to cover what is still missing.
		required = max(required-freed, l.used+incoming-l.limit)
	}
	return nil
}

// pendingBytes sums the canonical size of pending bricks not yet loaded.
func pendingBytes(pending []LoadRequest) int64 {
	var n int64
	for _, r := range pending {
		if !r.Brick.IsLoaded() {
			n += brick.ByteSize(r.Brick)
		}
	}
	return n
}

// load reads one brick and makes it resident.
func (l *Loader) load(ctx context.Context, req LoadRequest) bool {
	b := req.Brick

	b.SetLoading(true)
	start := time.Now()
	buf, err := l.src.ReadBrick(ctx, req.File)
	b.SetLoading(false)
	if err == nil && buf == nil {
		err = ErrEmptyPayload
	}

	if err != nil {
		l.opts.metricsCollector.RecordLoad(0, time.Since(start), err)
		l.opts.logger.LogLoad(ctx, b.ID(), req.File, 0, err)
		return false
	}

	b.AttachData(buf)
	req.Size = int64(len(buf))
	if prev, replaced := l.resident.put(ResidentEntry{LoadRequest: req}); replaced {
		l.used -= prev
	}
	l.used += req.Size

	l.opts.metricsCollector.RecordLoad(req.Size, time.Since(start), nil)
	l.opts.logger.LogLoad(ctx, b.ID(), req.File, req.Size, nil)
	return true
}

// refresh re-accounts a brick that is already loaded or loading. Bricks
// without an entry are left untracked.
func (l *Loader) refresh(req LoadRequest) {
	if _, ok := l.resident.get(req.Brick.ID()); !ok {
		return
	}
	req.Size = brick.ByteSize(req.Brick)
	prev, _ := l.resident.put(ResidentEntry{LoadRequest: req})
	l.used += req.Size - prev
}

// RemoveAllResident frees every resident brick.
func (l *Loader) RemoveAllResident() {
	for _, e := range l.resident.snapshot() {
		if e.Brick.IsLoaded() {
			e.Brick.FreeData()
		}
		l.used -= e.Size
	}
	l.resident.clear()
}

// RemoveResidentForDataset frees exactly the resident bricks owned by ds.
func (l *Loader) RemoveResidentForDataset(ds brick.Dataset) {
	if ds == nil {
		return
	}
	var (
		removed int
		freed   int64
	)
	for _, id := range l.resident.datasetBricks(ds.ID()) {
		e, ok := l.resident.remove(id)
		if !ok {
			continue
		}
		if e.Brick.IsLoaded() {
			e.Brick.FreeData()
		}
		l.used -= e.Size
		removed++
		freed += e.Size
	}
	l.opts.logger.LogDatasetRemoved(ds.ID(), removed, freed)
}

// Resident returns the entry of a resident brick.
func (l *Loader) Resident(id brick.ID) (ResidentEntry, bool) {
	return l.resident.get(id)
}

// Used returns the bytes accounted to resident bricks.
func (l *Loader) Used() int64 { return l.used }

// Limit returns the memory budget.
func (l *Loader) Limit() int64 { return l.limit }

// SetMemoryLimit changes the memory budget. A smaller budget takes
// effect at the next admission; nothing is evicted immediately.
func (l *Loader) SetMemoryLimit(bytes int64) error {
	if bytes <= 0 {
		return ErrInvalidMemoryLimit
	}
	l.limit = bytes
	l.warnSmallLimit()
	return nil
}

// Stats returns a snapshot of the Loader's bookkeeping.
func (l *Loader) Stats() Stats {
	return Stats{
		Used:      l.used,
		Limit:     l.limit,
		Resident:  l.resident.len(),
		Datasets:  l.resident.datasets(),
		Pending:   len(l.pending),
		Processed: l.processed.len(),
	}
}
