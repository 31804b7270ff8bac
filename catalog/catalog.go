// Package catalog describes a brick pyramid level as JSON and turns it
// into in-memory volumes and load requests.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hupe1980/brickstream"
	"github.com/hupe1980/brickstream/blobstore"
	"github.com/hupe1980/brickstream/brick"
)

// CurrentVersion is the catalog format version written by Save.
const CurrentVersion = 1

// DefaultName is the conventional blob name of a catalog.
const DefaultName = "CATALOG.json"

var (
	// ErrNotFound is returned by Load when the catalog blob does not exist.
	ErrNotFound = errors.New("catalog: not found")

	// ErrInvalid is matched by every validation error.
	ErrInvalid = errors.New("catalog: invalid")
)

// Catalog lists the datasets of one pyramid level and where their
// bricks are stored.
type Catalog struct {
	Version  int           `json:"version"`
	Datasets []DatasetInfo `json:"datasets"`
}

// DatasetInfo describes one volume.
type DatasetInfo struct {
	ID     brick.DatasetID `json:"id"`
	Name   string          `json:"name"`
	Bricks []BrickInfo     `json:"bricks"`
}

// BrickInfo describes one brick and its payload.
type BrickInfo struct {
	ID            brick.ID       `json:"id"`
	Dims          [3]int         `json:"dims"`
	BytesPerVoxel int            `json:"bytes_per_voxel,omitempty"`
	Center        [3]float64     `json:"center"`
	File          brick.FileInfo `json:"file"`
}

// Load reads and validates a catalog.
func Load(ctx context.Context, store blobstore.BlobStore, name string) (*Catalog, error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, err
	}
	defer func() { _ = blob.Close() }()

	data, err := blobstore.ReadRange(ctx, blob, 0, -1)
	if err != nil {
		return nil, err
	}

	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("catalog: decode %s: %w", name, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Save validates and writes a catalog. A zero Version is set to
// CurrentVersion.
func Save(ctx context.Context, store blobstore.BlobStore, name string, c *Catalog) error {
	if c.Version == 0 {
		c.Version = CurrentVersion
	}
	if err := c.Validate(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return store.Put(ctx, name, data)
}

// Validate checks the version, identifier uniqueness and brick extents.
func (c *Catalog) Validate() error {
	if c.Version != CurrentVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrInvalid, c.Version)
	}
	datasets := make(map[brick.DatasetID]bool, len(c.Datasets))
	bricks := make(map[brick.ID]bool)
	for _, ds := range c.Datasets {
		if datasets[ds.ID] {
			return fmt.Errorf("%w: duplicate dataset %d", ErrInvalid, ds.ID)
		}
		datasets[ds.ID] = true
		for _, b := range ds.Bricks {
			if bricks[b.ID] {
				return fmt.Errorf("%w: duplicate brick %d", ErrInvalid, b.ID)
			}
			bricks[b.ID] = true
			if b.Dims[0] <= 0 || b.Dims[1] <= 0 || b.Dims[2] <= 0 {
				return fmt.Errorf("%w: brick %d has extent %v", ErrInvalid, b.ID, b.Dims)
			}
			if b.File.Name == "" && b.File.Format != brick.FormatNone {
				return fmt.Errorf("%w: brick %d has no file", ErrInvalid, b.ID)
			}
		}
	}
	return nil
}

// Set is a built catalog: volumes with their tiles plus the payload
// location of every tile.
type Set struct {
	Volumes []*brick.Volume
	files   map[brick.ID]brick.FileInfo
}

// Build creates a displayed Volume with unloaded Tiles per dataset.
func (c *Catalog) Build() *Set {
	s := &Set{files: make(map[brick.ID]brick.FileInfo)}
	for _, ds := range c.Datasets {
		v := brick.NewVolume(ds.ID, ds.Name)
		for _, b := range ds.Bricks {
			v.Add(brick.NewTile(brick.TileConfig{
				ID:            b.ID,
				Dims:          b.Dims,
				BytesPerVoxel: b.BytesPerVoxel,
				Center:        b.Center,
			}))
			s.files[b.ID] = b.File
		}
		s.Volumes = append(s.Volumes, v)
	}
	return s
}

// File returns the payload location of a brick.
func (s *Set) File(id brick.ID) (brick.FileInfo, bool) {
	fi, ok := s.files[id]
	return fi, ok
}

// Requests returns one request per displayed tile of every displayed
// volume that has a payload, in catalog order.
func (s *Set) Requests(mode brick.RenderMode) []brickstream.LoadRequest {
	var reqs []brickstream.LoadRequest
	for _, v := range s.Volumes {
		if !v.IsDisplayed() {
			continue
		}
		for _, t := range v.Tiles() {
			fi := s.files[t.ID()]
			if !t.IsDisplayed() || fi.Format == brick.FormatNone {
				continue
			}
			reqs = append(reqs, brickstream.LoadRequest{
				Brick:   t,
				Dataset: v,
				File:    fi,
				Mode:    mode,
			})
		}
	}
	return reqs
}

// UpdateViewDistances recomputes the view distance of every tile.
func (s *Set) UpdateViewDistances(eye [3]float64) {
	for _, v := range s.Volumes {
		v.UpdateViewDistances(eye)
	}
}
