package brick

import "math"

// TileConfig describes a Tile.
type TileConfig struct {
	ID   ID
	Dims [3]int
	// BytesPerVoxel is the data channel voxel size. Defaults to 1.
	BytesPerVoxel int
	// Center is the brick center in world space, used by UpdateViewDistance.
	Center [3]float64
}

// Tile is an in-memory Brick.
type Tile struct {
	id        ID
	dims      [3]int
	bpv       [3]int
	center    [3]float64
	data      []byte
	loading   bool
	displayed bool
	drawn     [NumRenderModes]bool
	distance  float64
}

var _ Brick = (*Tile)(nil)

// NewTile creates a displayed, unloaded Tile.
func NewTile(cfg TileConfig) *Tile {
	bpv := cfg.BytesPerVoxel
	if bpv <= 0 {
		bpv = 1
	}
	return &Tile{
		id:        cfg.ID,
		dims:      cfg.Dims,
		bpv:       [3]int{bpv, 1, 4},
		center:    cfg.Center,
		displayed: true,
	}
}

func (t *Tile) ID() ID                    { return t.id }
func (t *Tile) IsLoaded() bool            { return t.data != nil }
func (t *Tile) IsLoading() bool           { return t.loading }
func (t *Tile) SetLoading(loading bool)   { t.loading = loading }
func (t *Tile) Dims() (nx, ny, nz int)    { return t.dims[0], t.dims[1], t.dims[2] }
func (t *Tile) IsDisplayed() bool         { return t.displayed }
func (t *Tile) SetDisplayed(disp bool)    { t.displayed = disp }
func (t *Tile) ViewDistance() float64     { return t.distance }
func (t *Tile) SetViewDistance(d float64) { t.distance = d }

// Data returns the attached buffer, or nil.
func (t *Tile) Data() []byte { return t.data }

// Resize changes the voxel extent, e.g. after a level-of-detail switch.
func (t *Tile) Resize(nx, ny, nz int) { t.dims = [3]int{nx, ny, nz} }

// BytesPerVoxel implements Brick. Unknown components report 0.
func (t *Tile) BytesPerVoxel(c Component) int {
	if int(c) >= len(t.bpv) {
		return 0
	}
	return t.bpv[c]
}

// SetBytesPerVoxel changes the voxel size of component c.
func (t *Tile) SetBytesPerVoxel(c Component, n int) {
	if int(c) < len(t.bpv) {
		t.bpv[c] = n
	}
}

// FreeData implements Brick.
func (t *Tile) FreeData() { t.data = nil }

// AttachData implements Brick.
func (t *Tile) AttachData(buf []byte) { t.data = buf }

// WasDrawn implements Brick. Out-of-range modes are never drawn.
func (t *Tile) WasDrawn(mode RenderMode) bool {
	if mode >= NumRenderModes {
		return false
	}
	return t.drawn[mode]
}

// SetDrawn sets the drawn flag of one mode.
func (t *Tile) SetDrawn(mode RenderMode, drawn bool) {
	if mode < NumRenderModes {
		t.drawn[mode] = drawn
	}
}

// ResetDrawn clears the drawn flag of every mode, typically at the
// start of a full redraw.
func (t *Tile) ResetDrawn() {
	t.drawn = [NumRenderModes]bool{}
}

// UpdateViewDistance sets the view distance to the Euclidean distance
// between eye and the tile center.
func (t *Tile) UpdateViewDistance(eye [3]float64) {
	dx := t.center[0] - eye[0]
	dy := t.center[1] - eye[1]
	dz := t.center[2] - eye[2]
	t.distance = math.Sqrt(dx*dx + dy*dy + dz*dz)
}
