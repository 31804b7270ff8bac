package brickstream

import "github.com/hupe1980/brickstream/brick"

// processedLog records the requests consumed by the current Run, in
// processing order.
type processedLog struct {
	reqs []LoadRequest
}

func (p *processedLog) add(r LoadRequest) { p.reqs = append(p.reqs, r) }

func (p *processedLog) len() int { return len(p.reqs) }

func (p *processedLog) reset() {
	clear(p.reqs)
	p.reqs = p.reqs[:0]
}

// undrawn returns the bricks for which at least one logged request has
// not been drawn in its mode yet.
func (p *processedLog) undrawn() map[brick.ID]struct{} {
	out := make(map[brick.ID]struct{})
	for _, r := range p.reqs {
		if !r.Brick.WasDrawn(r.Mode) {
			out[r.Brick.ID()] = struct{}{}
		}
	}
	return out
}
