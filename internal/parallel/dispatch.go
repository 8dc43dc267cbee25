package parallel

import "context"

// Group is the invocation range of one workgroup. Max is exclusive.
type Group struct {
	MinX, MinY, MinZ int
	MaxX, MaxY, MaxZ int
}

// Groups splits a width×height×depth grid into tiles of tx×ty×tz invocations.
// Edge tiles are clipped to the grid.
func Groups(width, height, depth, tx, ty, tz int) []Group {
	if width <= 0 || height <= 0 || depth <= 0 {
		return nil
	}
	tx, ty, tz = max(tx, 1), max(ty, 1), max(tz, 1)

	nx := (width + tx - 1) / tx
	ny := (height + ty - 1) / ty
	nz := (depth + tz - 1) / tz

	groups := make([]Group, 0, nx*ny*nz)
	for gz := range nz {
		for gy := range ny {
			for gx := range nx {
				groups = append(groups, Group{
					MinX: gx * tx, MaxX: min((gx+1)*tx, width),
					MinY: gy * ty, MaxY: min((gy+1)*ty, height),
					MinZ: gz * tz, MaxZ: min((gz+1)*tz, depth),
				})
			}
		}
	}
	return groups
}

// Dispatch runs fn once per invocation of every group. Groups are batched so
// each worker receives a contiguous slab of work. Cancellation is checked
// before each group starts; groups already running complete.
func (p *Pool) Dispatch(ctx context.Context, groups []Group, fn func(x, y, z int)) error {
	if len(groups) == 0 {
		return ctx.Err()
	}

	batches := min(len(groups), p.workers*4)
	work := make([]func(), 0, batches)
	per := (len(groups) + batches - 1) / batches
	for start := 0; start < len(groups); start += per {
		chunk := groups[start:min(start+per, len(groups))]
		work = append(work, func() {
			for _, g := range chunk {
				if ctx.Err() != nil {
					return
				}
				for z := g.MinZ; z < g.MaxZ; z++ {
					for y := g.MinY; y < g.MaxY; y++ {
						for x := g.MinX; x < g.MaxX; x++ {
							fn(x, y, z)
						}
					}
				}
			}
		})
	}

	p.Run(work)
	return ctx.Err()
}
