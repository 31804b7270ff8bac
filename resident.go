package brickstream

import (
	"container/list"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/hupe1980/brickstream/brick"
)

// residentSet maps brick IDs to resident entries, iterates in insertion
// order and indexes brick IDs per dataset.
type residentSet struct {
	order     *list.List // of *ResidentEntry
	byID      map[brick.ID]*list.Element
	byDataset map[brick.DatasetID]*roaring64.Bitmap
}

func newResidentSet() *residentSet {
	return &residentSet{
		order:     list.New(),
		byID:      make(map[brick.ID]*list.Element),
		byDataset: make(map[brick.DatasetID]*roaring64.Bitmap),
	}
}

func (s *residentSet) len() int { return len(s.byID) }

func (s *residentSet) get(id brick.ID) (ResidentEntry, bool) {
	el, ok := s.byID[id]
	if !ok {
		return ResidentEntry{}, false
	}
	return *el.Value.(*ResidentEntry), true
}

// put inserts or replaces the entry for e.Brick.ID(). A replaced entry
// keeps its position. It returns the previous size when one existed.
func (s *residentSet) put(e ResidentEntry) (prevSize int64, replaced bool) {
	id := e.Brick.ID()
	if el, ok := s.byID[id]; ok {
		old := el.Value.(*ResidentEntry)
		prevSize = old.Size
		s.unindex(id, old.LoadRequest)
		*old = e
		s.index(id, e.LoadRequest)
		return prevSize, true
	}
	entry := e
	s.byID[id] = s.order.PushBack(&entry)
	s.index(id, e.LoadRequest)
	return 0, false
}

func (s *residentSet) remove(id brick.ID) (ResidentEntry, bool) {
	el, ok := s.byID[id]
	if !ok {
		return ResidentEntry{}, false
	}
	e := s.order.Remove(el).(*ResidentEntry)
	delete(s.byID, id)
	s.unindex(id, e.LoadRequest)
	return *e, true
}

// snapshot returns the entries in insertion order.
func (s *residentSet) snapshot() []ResidentEntry {
	out := make([]ResidentEntry, 0, len(s.byID))
	for el := s.order.Front(); el != nil; el = el.Next() {
		out = append(out, *el.Value.(*ResidentEntry))
	}
	return out
}

// datasetBricks returns the IDs of the bricks resident for ds in
// ascending order.
func (s *residentSet) datasetBricks(ds brick.DatasetID) []brick.ID {
	bm, ok := s.byDataset[ds]
	if !ok {
		return nil
	}
	ids := make([]brick.ID, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		ids = append(ids, brick.ID(it.Next()))
	}
	return ids
}

func (s *residentSet) datasets() int { return len(s.byDataset) }

func (s *residentSet) clear() {
	s.order.Init()
	clear(s.byID)
	clear(s.byDataset)
}

func (s *residentSet) index(id brick.ID, r LoadRequest) {
	ds, ok := r.datasetID()
	if !ok {
		return
	}
	bm, ok := s.byDataset[ds]
	if !ok {
		bm = roaring64.New()
		s.byDataset[ds] = bm
	}
	bm.Add(uint64(id))
}

func (s *residentSet) unindex(id brick.ID, r LoadRequest) {
	ds, ok := r.datasetID()
	if !ok {
		return
	}
	bm, ok := s.byDataset[ds]
	if !ok {
		return
	}
	bm.Remove(uint64(id))
	if bm.IsEmpty() {
		delete(s.byDataset, ds)
	}
}
