package brick

import "fmt"

// ID is the stable handle of a brick. It must be unique across every
// dataset served by one cache.
type ID uint64

// DatasetID is the stable handle of a volume dataset.
type DatasetID uint64

// RenderMode identifies a rendering pass (e.g. compositing or
// maximum-intensity projection). Drawn status is tracked per mode.
type RenderMode uint8

const (
	// ModeComposite is front-to-back alpha compositing.
	ModeComposite RenderMode = iota
	// ModeMIP is maximum-intensity projection.
	ModeMIP
	// ModeMask renders the selection mask.
	ModeMask
	// ModeLabel renders the label volume.
	ModeLabel

	// NumRenderModes is the number of modes a brick tracks drawn state for.
	NumRenderModes
)

func (m RenderMode) String() string {
	switch m {
	case ModeComposite:
		return "composite"
	case ModeMIP:
		return "mip"
	case ModeMask:
		return "mask"
	case ModeLabel:
		return "label"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

// Component selects one of the per-voxel channels of a brick.
type Component uint8

const (
	// ComponentData is the intensity channel.
	ComponentData Component = iota
	// ComponentMask is the selection mask channel.
	ComponentMask
	// ComponentLabel is the label channel.
	ComponentLabel
)

// Brick is one level-of-detail tile of a volume dataset.
//
// Implementations are not required to be safe for concurrent use; the
// cache only touches bricks from the render goroutine.
type Brick interface {
	// ID returns the stable handle of the brick.
	ID() ID
	// IsLoaded reports whether CPU data is attached.
	IsLoaded() bool
	// IsLoading reports whether a load is in flight.
	IsLoading() bool
	// SetLoading sets the in-flight flag.
	SetLoading(loading bool)
	// Dims returns the voxel extent of the brick.
	Dims() (nx, ny, nz int)
	// BytesPerVoxel returns the size of one voxel of component c.
	BytesPerVoxel(c Component) int
	// FreeData releases the attached CPU buffer.
	FreeData()
	// AttachData hands ownership of buf to the brick.
	AttachData(buf []byte)
	// IsDisplayed reports whether the brick itself is visible.
	IsDisplayed() bool
	// WasDrawn reports whether the brick contributed to the current pass of mode.
	WasDrawn(mode RenderMode) bool
	// ViewDistance returns the precomputed distance from the viewer.
	ViewDistance() float64
}

// Dataset is the volume that owns a set of bricks.
type Dataset interface {
	ID() DatasetID
	IsDisplayed() bool
}

// ByteSize returns the canonical CPU size of a brick's data channel:
// nx*ny*nz*BytesPerVoxel(ComponentData).
func ByteSize(b Brick) int64 {
	nx, ny, nz := b.Dims()
	return int64(nx) * int64(ny) * int64(nz) * int64(b.BytesPerVoxel(ComponentData))
}
