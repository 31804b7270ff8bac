package brickstream

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"

	"github.com/hupe1980/brickstream/brick"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memSource serves zero-filled buffers sized by the tile registered
// under the file name.
type memSource struct {
	sizes  map[string]int
	errs   map[string]error
	reads  []string
	before func(name string)
}

func newMemSource() *memSource {
	return &memSource{
		sizes: make(map[string]int),
		errs:  make(map[string]error),
	}
}

func (s *memSource) ReadBrick(ctx context.Context, fi brick.FileInfo) ([]byte, error) {
	if s.before != nil {
		s.before(fi.Name)
	}
	s.reads = append(s.reads, fi.Name)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.errs[fi.Name]; err != nil {
		return nil, err
	}
	n, ok := s.sizes[fi.Name]
	if !ok {
		return nil, os.ErrNotExist
	}
	return make([]byte, n), nil
}

func (s *memSource) tile(id brick.ID, size int) *brick.Tile {
	s.sizes[fileName(id)] = size
	return brick.NewTile(brick.TileConfig{ID: id, Dims: [3]int{size, 1, 1}})
}

func fileName(id brick.ID) string { return fmt.Sprintf("brick-%d.raw", id) }

func request(t *brick.Tile, ds brick.Dataset, mode brick.RenderMode) LoadRequest {
	return LoadRequest{
		Brick:   t,
		Dataset: ds,
		File:    brick.FileInfo{Name: fileName(t.ID()), Format: brick.FormatRaw},
		Mode:    mode,
	}
}

func newTestLoader(t *testing.T, src Source, limit int64, opts ...Option) (*Loader, *BasicMetricsCollector) {
	t.Helper()
	mc := &BasicMetricsCollector{}
	l, err := New(src, append([]Option{WithMemoryLimit(limit), WithMetricsCollector(mc)}, opts...)...)
	require.NoError(t, err)
	return l, mc
}

// assertAccounting checks that Used equals the sum of entry sizes and
// that every brick ID appears once.
func assertAccounting(t *testing.T, l *Loader) {
	t.Helper()
	var sum int64
	seen := make(map[brick.ID]bool)
	for _, e := range l.resident.snapshot() {
		id := e.Brick.ID()
		assert.False(t, seen[id], "brick %d resident twice", id)
		seen[id] = true
		sum += e.Size
	}
	assert.Equal(t, sum, l.Used())
	assert.Equal(t, len(seen), l.Stats().Resident)
}

func TestNew(t *testing.T) {
	src := newMemSource()

	t.Run("NilSource", func(t *testing.T) {
		_, err := New(nil, WithMemoryLimit(1<<30))
		assert.ErrorIs(t, err, ErrNilSource)
	})

	t.Run("MissingLimit", func(t *testing.T) {
		_, err := New(src)
		assert.ErrorIs(t, err, ErrInvalidMemoryLimit)
	})

	t.Run("NegativeLimit", func(t *testing.T) {
		_, err := New(src, WithMemoryLimit(-1))
		assert.ErrorIs(t, err, ErrInvalidMemoryLimit)
	})

	t.Run("SmallLimitWarns", func(t *testing.T) {
		var buf bytes.Buffer
		h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})
		l, err := New(src, WithMemoryLimit(LegacyMemoryLimit), WithSlogHandler(h))
		require.NoError(t, err)
		assert.Equal(t, LegacyMemoryLimit, l.Limit())
		assert.Contains(t, buf.String(), "below recommended minimum")
	})

	t.Run("Defaults", func(t *testing.T) {
		l, err := New(src, WithMemoryLimit(1<<30), WithMaxEvictionRounds(0), WithLogger(nil), WithMetricsCollector(nil))
		require.NoError(t, err)
		assert.Equal(t, DefaultMaxEvictionRounds, l.opts.maxEvictionRounds)
		assert.IsType(t, NoopMetricsCollector{}, l.opts.metricsCollector)
		assert.NotNil(t, l.opts.logger)
		assert.Equal(t, Stats{Limit: 1 << 30}, l.Stats())
	})
}

func TestQueueAndRun(t *testing.T) {
	src := newMemSource()
	l, mc := newTestLoader(t, src, 1<<20)
	ds := brick.NewVolume(1, "vol")

	a, b, c := src.tile(1, 100), src.tile(2, 200), src.tile(3, 300)
	l.Queue(request(a, ds, brick.ModeComposite))
	l.Queue(request(b, ds, brick.ModeComposite))
	l.Queue(request(c, ds, brick.ModeComposite))
	assert.Equal(t, 3, l.Stats().Pending)

	require.NoError(t, l.Run(t.Context()))

	stats := l.Stats()
	assert.Equal(t, 0, stats.Pending)
	assert.Equal(t, 3, stats.Processed)
	assert.Equal(t, 3, stats.Resident)
	assert.Equal(t, 1, stats.Datasets)
	assert.Equal(t, int64(600), stats.Used)
	assert.Equal(t, []string{fileName(1), fileName(2), fileName(3)}, src.reads)

	for _, tile := range []*brick.Tile{a, b, c} {
		assert.True(t, tile.IsLoaded())
		assert.False(t, tile.IsLoading())
	}

	e, ok := l.Resident(2)
	require.True(t, ok)
	assert.Equal(t, int64(200), e.Size)
	assert.Equal(t, brick.DatasetID(1), e.Dataset.ID())

	ms := mc.GetStats()
	assert.Equal(t, int64(3), ms.LoadCount)
	assert.Equal(t, int64(600), ms.LoadBytes)
	assert.Equal(t, int64(1), ms.RunCount)
	assert.Equal(t, int64(3), ms.RunProcessed)
	assertAccounting(t, l)

	// A second Run over an empty queue changes nothing but resets the log.
	require.NoError(t, l.Run(t.Context()))
	assert.Equal(t, 0, l.Stats().Processed)
	assert.Equal(t, int64(600), l.Used())
}

func TestQueue_NoDedup(t *testing.T) {
	src := newMemSource()
	l, _ := newTestLoader(t, src, 1<<20)
	ds := brick.NewVolume(1, "vol")
	a := src.tile(1, 100)

	l.Queue(request(a, ds, brick.ModeComposite))
	l.Queue(request(a, ds, brick.ModeMIP))
	assert.Equal(t, 2, l.Stats().Pending)

	require.NoError(t, l.Run(t.Context()))

	// The second request finds the brick loaded and only refreshes it.
	assert.Len(t, src.reads, 1)
	assert.Equal(t, 2, l.Stats().Processed)
	e, ok := l.Resident(1)
	require.True(t, ok)
	assert.Equal(t, brick.ModeMIP, e.Mode)
	assertAccounting(t, l)
}

func TestSetQueue(t *testing.T) {
	src := newMemSource()
	l, _ := newTestLoader(t, src, 1<<20)
	ds := brick.NewVolume(1, "vol")
	a, b := src.tile(1, 10), src.tile(2, 10)

	l.Queue(request(a, ds, brick.ModeComposite))

	reqs := []LoadRequest{request(b, ds, brick.ModeComposite)}
	l.SetQueue(reqs)
	reqs[0] = request(a, ds, brick.ModeComposite)

	assert.Equal(t, 1, l.Stats().Pending)
	require.NoError(t, l.Run(t.Context()))
	assert.Equal(t, []string{fileName(2)}, src.reads)
	assert.False(t, a.IsLoaded())
	assert.True(t, b.IsLoaded())
}

func TestClearQueues(t *testing.T) {
	src := newMemSource()
	l, _ := newTestLoader(t, src, 1<<20)
	ds := brick.NewVolume(1, "vol")
	a, b := src.tile(1, 10), src.tile(2, 10)

	l.Queue(request(a, ds, brick.ModeComposite))
	require.NoError(t, l.Run(t.Context()))

	l.Queue(request(b, ds, brick.ModeComposite))
	l.ClearQueues()
	first := l.Stats()
	l.ClearQueues()
	assert.Equal(t, first, l.Stats())

	assert.Equal(t, 0, first.Pending)
	assert.Equal(t, 1, first.Resident)
	assert.True(t, a.IsLoaded())

	require.NoError(t, l.Run(t.Context()))
	assert.Len(t, src.reads, 1)
	assert.False(t, b.IsLoaded())
}

func TestRun_UndisplayedDatasetStaysWithinLimit(t *testing.T) {
	src := newMemSource()
	var l *Loader
	var usedAtRead []int64
	var evictionsAtRead []int64
	l, mc := newTestLoader(t, src, 1000)
	src.before = func(string) {
		usedAtRead = append(usedAtRead, l.Used())
		evictionsAtRead = append(evictionsAtRead, mc.EvictionCount.Load())
	}

	ds := brick.NewVolume(1, "hidden")
	ds.SetDisplayed(false)
	tiles := []*brick.Tile{src.tile(1, 400), src.tile(2, 400), src.tile(3, 400)}
	for _, tile := range tiles {
		l.Queue(request(tile, ds, brick.ModeComposite))
	}

	require.NoError(t, l.Run(t.Context()))

	require.Len(t, usedAtRead, 3)
	assert.Equal(t, []int64{0, 400, 400}, usedAtRead)
	assert.GreaterOrEqual(t, evictionsAtRead[2], int64(1))
	assert.LessOrEqual(t, l.Used(), l.Limit())
	assert.Equal(t, int64(800), l.Used())

	assert.False(t, tiles[0].IsLoaded())
	assert.True(t, tiles[1].IsLoaded())
	assert.True(t, tiles[2].IsLoaded())
	assert.Equal(t, int64(1), mc.GetStats().EvictionsByTier[TierDatasetHidden])
	assertAccounting(t, l)
}

func TestEviction_TierOrdering(t *testing.T) {
	src := newMemSource()
	l, mc := newTestLoader(t, src, 1000)

	hidden := brick.NewVolume(1, "hidden")
	shown := brick.NewVolume(2, "shown")
	a := src.tile(1, 300) // dataset hidden
	b := src.tile(2, 300) // brick hidden
	c := src.tile(3, 300) // drawn
	d := src.tile(4, 400)

	l.SetQueue([]LoadRequest{
		request(a, hidden, brick.ModeComposite),
		request(b, shown, brick.ModeComposite),
		request(c, shown, brick.ModeComposite),
	})
	require.NoError(t, l.Run(t.Context()))
	require.Equal(t, int64(900), l.Used())

	hidden.SetDisplayed(false)
	b.SetDisplayed(false)
	c.SetDrawn(brick.ModeComposite, true)

	l.Queue(request(d, shown, brick.ModeComposite))
	require.NoError(t, l.Run(t.Context()))

	assert.False(t, a.IsLoaded())
	assert.False(t, b.IsLoaded())
	assert.True(t, c.IsLoaded(), "drawn tier must not be touched when hidden tiers suffice")
	assert.True(t, d.IsLoaded())
	assert.Equal(t, int64(700), l.Used())

	ms := mc.GetStats()
	assert.Equal(t, int64(1), ms.EvictionsByTier[TierDatasetHidden])
	assert.Equal(t, int64(1), ms.EvictionsByTier[TierBrickHidden])
	assert.Zero(t, ms.EvictionsByTier[TierDrawn])
	assert.Zero(t, ms.EvictionsByTier[TierProcessed])
	assertAccounting(t, l)
}

func TestEviction_ExclusiveClassification(t *testing.T) {
	src := newMemSource()
	l, mc := newTestLoader(t, src, 1000)

	hidden := brick.NewVolume(1, "hidden")
	a := src.tile(1, 600)
	l.Queue(request(a, hidden, brick.ModeComposite))
	require.NoError(t, l.Run(t.Context()))

	// Matches every tier; only the first may claim it.
	hidden.SetDisplayed(false)
	a.SetDisplayed(false)
	a.SetDrawn(brick.ModeComposite, true)

	b := src.tile(2, 600)
	l.Queue(request(b, brick.NewVolume(2, "shown"), brick.ModeComposite))
	require.NoError(t, l.Run(t.Context()))

	ms := mc.GetStats()
	assert.Equal(t, int64(1), ms.EvictionCount)
	assert.Equal(t, int64(1), ms.EvictionsByTier[TierDatasetHidden])
	assertAccounting(t, l)
}

func TestEviction_ProcessedTier(t *testing.T) {
	src := newMemSource()
	l, mc := newTestLoader(t, src, 1000)
	ds := brick.NewVolume(1, "vol")

	a, b := src.tile(1, 500), src.tile(2, 500)
	for _, tile := range []*brick.Tile{a, b} {
		tile.AttachData(make([]byte, 500))
		l.resident.put(ResidentEntry{LoadRequest: LoadRequest{Brick: tile, Dataset: ds, Mode: brick.ModeMIP, Size: 500}})
		l.used += 500
	}
	a.SetDrawn(brick.ModeComposite, true)

	// a: every logged request drawn. b: one logged request still undrawn.
	l.processed.add(request(b, ds, brick.ModeComposite))
	l.processed.add(request(a, ds, brick.ModeComposite))
	l.processed.add(request(b, ds, brick.ModeComposite))
	b.SetDrawn(brick.ModeComposite, false)

	evicted, freed := l.evict(t.Context(), 400)
	assert.Equal(t, 1, evicted)
	assert.Equal(t, int64(500), freed)
	assert.False(t, a.IsLoaded())
	assert.True(t, b.IsLoaded())
	assert.Equal(t, int64(500), l.Used())
	assert.Equal(t, int64(1), mc.GetStats().EvictionsByTier[TierProcessed])
	assertAccounting(t, l)
}

func TestRun_ProcessedUndrawnProtected(t *testing.T) {
	src := newMemSource()
	l, mc := newTestLoader(t, src, 1000)
	ds := brick.NewVolume(1, "vol")

	a, b := src.tile(1, 400), src.tile(2, 400)
	l.SetQueue([]LoadRequest{request(a, ds, brick.ModeComposite), request(b, ds, brick.ModeComposite)})
	require.NoError(t, l.Run(t.Context()))

	// Both bricks are requested again this frame and neither has been
	// drawn yet: no tier may take them, so the incoming brick is dropped.
	c := src.tile(3, 400)
	l.SetQueue([]LoadRequest{
		request(b, ds, brick.ModeComposite),
		request(a, ds, brick.ModeComposite),
		request(c, ds, brick.ModeComposite),
	})
	err := l.Run(t.Context())
	assert.ErrorIs(t, err, ErrBudgetExceeded)
	assert.True(t, a.IsLoaded())
	assert.True(t, b.IsLoaded())
	assert.False(t, c.IsLoaded())
	assert.Zero(t, mc.GetStats().EvictionCount)

	// Once a is drawn it is released for the next request of c.
	a.SetDrawn(brick.ModeComposite, true)
	l.SetQueue([]LoadRequest{
		request(b, ds, brick.ModeComposite),
		request(a, ds, brick.ModeComposite),
		request(c, ds, brick.ModeComposite),
	})
	require.NoError(t, l.Run(t.Context()))
	assert.False(t, a.IsLoaded())
	assert.True(t, b.IsLoaded())
	assert.True(t, c.IsLoaded())
	assert.Equal(t, int64(800), l.Used())
	assertAccounting(t, l)
}

func TestEviction_StopsWhenGoalMet(t *testing.T) {
	src := newMemSource()
	l, mc := newTestLoader(t, src, 1000)
	hidden := brick.NewVolume(1, "hidden")

	var reqs []LoadRequest
	for id := brick.ID(1); id <= 4; id++ {
		reqs = append(reqs, request(src.tile(id, 200), hidden, brick.ModeComposite))
	}
	l.SetQueue(reqs)
	require.NoError(t, l.Run(t.Context()))
	hidden.SetDisplayed(false)

	l.Queue(request(src.tile(5, 400), brick.NewVolume(2, "shown"), brick.ModeComposite))
	require.NoError(t, l.Run(t.Context()))

	// 800 + 400 > 1000: eviction frees at least the incoming 400 bytes
	// and then stops.
	assert.Equal(t, int64(2), mc.GetStats().EvictionCount)
	assert.False(t, reqs[0].Brick.IsLoaded(), "insertion order decides within a tier")
	assert.False(t, reqs[1].Brick.IsLoaded())
	assert.True(t, reqs[2].Brick.IsLoaded())
	assert.True(t, reqs[3].Brick.IsLoaded())
	assert.Equal(t, int64(800), l.Used())
	assertAccounting(t, l)
}

func TestRun_BudgetExhausted(t *testing.T) {
	src := newMemSource()
	l, mc := newTestLoader(t, src, 1000)
	ds := brick.NewVolume(1, "vol")

	a := src.tile(1, 600)
	l.Queue(request(a, ds, brick.ModeComposite))
	require.NoError(t, l.Run(t.Context()))

	b, c := src.tile(2, 600), src.tile(3, 100)
	l.Queue(request(b, ds, brick.ModeComposite))
	l.Queue(request(c, ds, brick.ModeComposite))
	err := l.Run(t.Context())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBudgetExceeded)

	var be *ErrBudgetExhausted
	require.ErrorAs(t, err, &be)
	assert.Equal(t, brick.ID(2), be.BrickID)
	assert.Equal(t, int64(700), be.Required)
	assert.Equal(t, int64(600), be.Used)
	assert.Equal(t, int64(1000), be.Limit)

	// b is dropped, Run carries on with c.
	assert.True(t, a.IsLoaded())
	assert.False(t, b.IsLoaded())
	assert.True(t, c.IsLoaded())
	assert.Equal(t, 0, l.Stats().Pending)
	assert.Equal(t, []string{fileName(1), fileName(3)}, src.reads)
	assert.Equal(t, int64(1), mc.GetStats().RunErrors)
	assertAccounting(t, l)
}

func TestRun_BrickLargerThanLimit(t *testing.T) {
	src := newMemSource()
	l, mc := newTestLoader(t, src, 1000)

	hidden := brick.NewVolume(1, "hidden")
	a, b := src.tile(1, 400), src.tile(2, 400)
	l.SetQueue([]LoadRequest{
		request(a, hidden, brick.ModeComposite),
		request(b, hidden, brick.ModeComposite),
	})
	require.NoError(t, l.Run(t.Context()))
	hidden.SetDisplayed(false)

	big := src.tile(3, 2000)
	l.Queue(request(big, brick.NewVolume(2, "shown"), brick.ModeComposite))

	err := l.Run(t.Context())
	assert.ErrorIs(t, err, ErrBudgetExceeded)

	var be *ErrBudgetExhausted
	require.ErrorAs(t, err, &be)
	assert.Equal(t, brick.ID(3), be.BrickID)
	assert.Equal(t, int64(800), be.Used)

	// Evictable residents survive a load that can never fit.
	assert.False(t, big.IsLoaded())
	assert.True(t, a.IsLoaded())
	assert.True(t, b.IsLoaded())
	assert.Zero(t, mc.GetStats().EvictionCount)
	assert.Equal(t, []string{fileName(1), fileName(2)}, src.reads)
	assert.Equal(t, int64(800), l.Used())
	assertAccounting(t, l)
}

func TestRun_LoweredLimitEvictsOnlyWhatIsMissing(t *testing.T) {
	src := newMemSource()
	l, mc := newTestLoader(t, src, 2000)

	hidden := brick.NewVolume(1, "hidden")
	var reqs []LoadRequest
	for id := brick.ID(1); id <= 15; id++ {
		reqs = append(reqs, request(src.tile(id, 100), hidden, brick.ModeComposite))
	}
	l.SetQueue(reqs)
	require.NoError(t, l.Run(t.Context()))
	require.Equal(t, int64(1500), l.Used())
	hidden.SetDisplayed(false)

	// The first round brings Used under the new limit; the second only
	// has to make room for the remaining 200 bytes of the incoming brick.
	require.NoError(t, l.SetMemoryLimit(1000))
	c := src.tile(16, 300)
	l.Queue(request(c, brick.NewVolume(2, "shown"), brick.ModeComposite))
	require.NoError(t, l.Run(t.Context()))

	assert.True(t, c.IsLoaded())
	assert.Equal(t, int64(8), mc.GetStats().EvictionCount)
	assert.Equal(t, int64(1000), l.Used())
	for i, r := range reqs {
		assert.Equal(t, i >= 8, r.Brick.IsLoaded(), "brick %d", r.Brick.ID())
	}
	assertAccounting(t, l)
}

func TestRun_EvictionRoundsBounded(t *testing.T) {
	src := newMemSource()
	l, mc := newTestLoader(t, src, 2000, WithMaxEvictionRounds(1))

	hidden := brick.NewVolume(1, "hidden")
	shown := brick.NewVolume(2, "shown")
	l.SetQueue([]LoadRequest{
		request(src.tile(1, 400), hidden, brick.ModeComposite),
		request(src.tile(2, 400), hidden, brick.ModeComposite),
		request(src.tile(3, 400), shown, brick.ModeComposite),
		request(src.tile(4, 400), shown, brick.ModeComposite),
	})
	require.NoError(t, l.Run(t.Context()))
	hidden.SetDisplayed(false)

	require.NoError(t, l.SetMemoryLimit(500))
	l.Queue(request(src.tile(5, 100), shown, brick.ModeComposite))

	err := l.Run(t.Context())
	assert.ErrorIs(t, err, ErrBudgetExceeded)
	assert.Equal(t, int64(2), mc.GetStats().EvictionCount)
	assert.Equal(t, int64(800), l.Used())
	assertAccounting(t, l)
}

func TestRun_ReadFailureDropped(t *testing.T) {
	src := newMemSource()
	l, mc := newTestLoader(t, src, 1<<20)
	ds := brick.NewVolume(1, "vol")

	a, b := src.tile(1, 10), src.tile(2, 10)
	src.errs[fileName(1)] = errors.New("unsupported format")

	l.SetQueue([]LoadRequest{request(a, ds, brick.ModeComposite), request(b, ds, brick.ModeComposite)})
	require.NoError(t, l.Run(t.Context()))

	assert.False(t, a.IsLoaded())
	assert.False(t, a.IsLoading())
	_, ok := l.Resident(1)
	assert.False(t, ok)
	assert.True(t, b.IsLoaded())

	ms := mc.GetStats()
	assert.Equal(t, int64(2), ms.LoadCount)
	assert.Equal(t, int64(1), ms.LoadErrors)
	assertAccounting(t, l)
}

func TestRun_NilBufferDropped(t *testing.T) {
	var reads int
	src := SourceFunc(func(context.Context, brick.FileInfo) ([]byte, error) {
		reads++
		return nil, nil
	})
	l, mc := newTestLoader(t, src, 1<<20)

	a := brick.NewTile(brick.TileConfig{ID: 1, Dims: [3]int{10, 1, 1}})
	l.Queue(request(a, brick.NewVolume(1, "vol"), brick.ModeComposite))
	require.NoError(t, l.Run(t.Context()))

	assert.Equal(t, 1, reads)
	assert.False(t, a.IsLoaded())
	assert.False(t, a.IsLoading())
	_, ok := l.Resident(1)
	assert.False(t, ok)

	stats := l.Stats()
	assert.Zero(t, stats.Used)
	assert.Zero(t, stats.Resident)
	assert.Zero(t, stats.Datasets)

	ms := mc.GetStats()
	assert.Equal(t, int64(1), ms.LoadCount)
	assert.Equal(t, int64(1), ms.LoadErrors)
}

func TestRun_StalledLoadHealed(t *testing.T) {
	src := newMemSource()
	l, _ := newTestLoader(t, src, 1<<20)
	ds := brick.NewVolume(1, "vol")

	a := src.tile(1, 100)
	l.Queue(request(a, ds, brick.ModeComposite))
	require.NoError(t, l.Run(t.Context()))

	// Simulate a load that was interrupted after its data was dropped.
	a.FreeData()
	a.SetLoading(true)

	require.NoError(t, l.Run(t.Context()))
	assert.False(t, a.IsLoading())
	_, ok := l.Resident(1)
	assert.False(t, ok)
	assert.Zero(t, l.Used())
	assertAccounting(t, l)
}

func TestRun_RefreshAdjustsUsed(t *testing.T) {
	src := newMemSource()
	l, _ := newTestLoader(t, src, 1<<20)
	ds := brick.NewVolume(1, "vol")

	a := src.tile(1, 100)
	l.Queue(request(a, ds, brick.ModeComposite))
	require.NoError(t, l.Run(t.Context()))

	a.Resize(50, 2, 2)
	l.Queue(request(a, ds, brick.ModeMIP))
	require.NoError(t, l.Run(t.Context()))

	e, ok := l.Resident(1)
	require.True(t, ok)
	assert.Equal(t, int64(200), e.Size)
	assert.Equal(t, int64(200), l.Used())
	assert.Len(t, src.reads, 1)

	// Loaded elsewhere: not tracked, not accounted.
	foreign := src.tile(2, 100)
	foreign.AttachData(make([]byte, 100))
	l.Queue(request(foreign, ds, brick.ModeComposite))
	require.NoError(t, l.Run(t.Context()))
	_, ok = l.Resident(2)
	assert.False(t, ok)
	assert.Equal(t, int64(200), l.Used())
	assertAccounting(t, l)
}

func TestRun_ContextCancelled(t *testing.T) {
	src := newMemSource()
	l, _ := newTestLoader(t, src, 1<<20)
	ds := brick.NewVolume(1, "vol")

	l.Queue(request(src.tile(1, 10), ds, brick.ModeComposite))
	l.Queue(request(src.tile(2, 10), ds, brick.ModeComposite))

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	err := l.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, src.reads)
	assert.Equal(t, 0, l.Stats().Pending)
	assert.Equal(t, 2, l.Stats().Processed)
}

func TestRemoveResidentForDataset(t *testing.T) {
	src := newMemSource()
	l, _ := newTestLoader(t, src, 1<<20)
	ds1 := brick.NewVolume(1, "one")
	ds2 := brick.NewVolume(2, "two")

	a, b := src.tile(1, 100), src.tile(2, 200)
	c, d := src.tile(3, 300), src.tile(4, 400)
	ds1.Add(a, b)
	ds2.Add(c, d)
	l.SetQueue([]LoadRequest{
		request(a, ds1, brick.ModeComposite),
		request(c, ds2, brick.ModeComposite),
		request(b, ds1, brick.ModeComposite),
		request(d, ds2, brick.ModeComposite),
	})
	require.NoError(t, l.Run(t.Context()))
	require.Equal(t, int64(1000), l.Used())
	require.Equal(t, 2, l.Stats().Datasets)

	l.RemoveResidentForDataset(ds1)

	assert.Equal(t, int64(700), l.Used())
	assert.Zero(t, ds1.LoadedBytes())
	assert.Equal(t, int64(700), ds2.LoadedBytes())
	assert.Equal(t, 1, l.Stats().Datasets)
	assert.Equal(t, 2, l.Stats().Resident)
	assertAccounting(t, l)

	// Unrelated bricks stay readable.
	assert.Len(t, c.Data(), 300)
	assert.Len(t, d.Data(), 400)

	// Removing again or a nil dataset is a no-op.
	l.RemoveResidentForDataset(ds1)
	l.RemoveResidentForDataset(nil)
	assert.Equal(t, int64(700), l.Used())
}

func TestRemoveAllResident(t *testing.T) {
	src := newMemSource()
	l, _ := newTestLoader(t, src, 1<<20)
	ds1 := brick.NewVolume(1, "one")
	ds2 := brick.NewVolume(2, "two")

	a, b := src.tile(1, 100), src.tile(2, 200)
	l.SetQueue([]LoadRequest{request(a, ds1, brick.ModeComposite), request(b, ds2, brick.ModeComposite)})
	require.NoError(t, l.Run(t.Context()))

	l.RemoveAllResident()
	assert.Zero(t, l.Used())
	assert.Equal(t, 0, l.Stats().Resident)
	assert.Equal(t, 0, l.Stats().Datasets)
	assert.False(t, a.IsLoaded())
	assert.False(t, b.IsLoaded())
	assertAccounting(t, l)

	// Bricks can be loaded again afterwards.
	l.Queue(request(a, ds1, brick.ModeComposite))
	require.NoError(t, l.Run(t.Context()))
	assert.True(t, a.IsLoaded())
	assert.Equal(t, int64(100), l.Used())
}

func TestSetMemoryLimit(t *testing.T) {
	l, _ := newTestLoader(t, newMemSource(), 1<<30)

	assert.ErrorIs(t, l.SetMemoryLimit(0), ErrInvalidMemoryLimit)
	assert.Equal(t, int64(1<<30), l.Limit())

	require.NoError(t, l.SetMemoryLimit(2<<30))
	assert.Equal(t, int64(2<<30), l.Limit())
}

func TestSourceFunc(t *testing.T) {
	var got brick.FileInfo
	src := SourceFunc(func(_ context.Context, fi brick.FileInfo) ([]byte, error) {
		got = fi
		return []byte{1, 2, 3}, nil
	})
	l, _ := newTestLoader(t, src, 1<<20)

	tile := brick.NewTile(brick.TileConfig{ID: 7, Dims: [3]int{3, 1, 1}})
	l.Queue(request(tile, brick.NewVolume(1, "vol"), brick.ModeComposite))
	require.NoError(t, l.Run(t.Context()))

	assert.Equal(t, fileName(7), got.Name)
	assert.Equal(t, []byte{1, 2, 3}, tile.Data())
}
