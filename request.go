package brickstream

import (
	"context"

	"github.com/hupe1980/brickstream/brick"
)

// LoadRequest asks the Loader to make one brick resident for one
// render mode. Brick and Dataset are borrowed; the caller keeps them
// alive while the request or its resident entry exists.
type LoadRequest struct {
	Brick   brick.Brick
	Dataset brick.Dataset
	File    brick.FileInfo
	Mode    brick.RenderMode
	// Size is the byte size accounted for the brick. The Loader fills
	// it in; callers leave it zero.
	Size int64
}

// ResidentEntry is the record the Loader keeps for a resident brick.
type ResidentEntry struct {
	LoadRequest
}

func (r LoadRequest) datasetID() (brick.DatasetID, bool) {
	if r.Dataset == nil {
		return 0, false
	}
	return r.Dataset.ID(), true
}

// Source reads encoded brick payloads from a backing store and returns
// the decoded voxel buffer. Ownership of the buffer passes to the
// caller.
type Source interface {
	ReadBrick(ctx context.Context, file brick.FileInfo) ([]byte, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, file brick.FileInfo) ([]byte, error)

// ReadBrick implements Source.
func (f SourceFunc) ReadBrick(ctx context.Context, file brick.FileInfo) ([]byte, error) {
	return f(ctx, file)
}
