package brick

// Volume is an in-memory Dataset holding its Tiles.
type Volume struct {
	id        DatasetID
	name      string
	displayed bool
	tiles     []*Tile
}

var _ Dataset = (*Volume)(nil)

// NewVolume creates a displayed, empty Volume.
func NewVolume(id DatasetID, name string) *Volume {
	return &Volume{id: id, name: name, displayed: true}
}

func (v *Volume) ID() DatasetID          { return v.id }
func (v *Volume) Name() string           { return v.name }
func (v *Volume) IsDisplayed() bool      { return v.displayed }
func (v *Volume) SetDisplayed(disp bool) { v.displayed = disp }

// Add appends tiles to the volume.
func (v *Volume) Add(tiles ...*Tile) {
	v.tiles = append(v.tiles, tiles...)
}

// Tiles returns the volume's tiles in insertion order.
func (v *Volume) Tiles() []*Tile {
	return v.tiles
}

// UpdateViewDistances recomputes the view distance of every tile.
func (v *Volume) UpdateViewDistances(eye [3]float64) {
	for _, t := range v.tiles {
		t.UpdateViewDistance(eye)
	}
}

// ResetDrawn clears the drawn flags of every tile.
func (v *Volume) ResetDrawn() {
	for _, t := range v.tiles {
		t.ResetDrawn()
	}
}

// LoadedBytes returns the total size of attached buffers.
func (v *Volume) LoadedBytes() int64 {
	var n int64
	for _, t := range v.tiles {
		n += int64(len(t.data))
	}
	return n
}
