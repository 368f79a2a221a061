package stego

import (
	"golang.org/x/sync/errgroup"
)

// minBandRows keeps bands large enough that goroutine overhead stays small
// next to the per-row work.
const minBandRows = 64

// forEachBand splits [0,height) into contiguous row bands and runs fn on each,
// using up to lsb.workers goroutines. Bands never overlap, so fn may write
// the rows it is given without locking.
func (lsb *LSBSteganography) forEachBand(height int, fn func(y0, y1 int)) {
	if lsb.workers <= 1 || height < 2*minBandRows {
		fn(0, height)
		return
	}

	band := max((height+lsb.workers-1)/lsb.workers, minBandRows)

	var g errgroup.Group
	g.SetLimit(lsb.workers)
	for y0 := 0; y0 < height; y0 += band {
		y1 := min(y0+band, height)
		g.Go(func() error {
			fn(y0, y1)
			return nil
		})
	}
	_ = g.Wait()
}
