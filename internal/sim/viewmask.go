package sim

import "github.com/vovakirdan/dunesim/internal/core"

const maxViewRadius = 16

// viewMasks[r] lists the offsets of a rounded circle of radius r: every
// offset whose distance is below r + 1/2.
var viewMasks [maxViewRadius + 1][]core.Coord

func init() {
	for r := 0; r <= maxViewRadius; r++ {
		limit := (2*r + 1) * (2*r + 1)
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				if 4*(dx*dx+dy*dy) < limit {
					viewMasks[r] = append(viewMasks[r], core.C(dx, dy))
				}
			}
		}
	}
}

func viewMask(radius int) []core.Coord {
	return viewMasks[core.Clamp(radius, 0, maxViewRadius)]
}
