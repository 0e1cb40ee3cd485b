package bitmap

// CorrelationScore computes a normalized similarity in [0, 1] between two
// binary templates. The nominal alignment translates b by (dx, dy) relative
// to a; the matcher additionally searches offsets within +-tolX and +-tolY
// pixels of the nominal alignment and reports the best score found.
//
// The score is overlap^2 / (areaA * areaB), where overlap is the count of
// foreground pixels common to both templates at the tried alignment. It is
// 1.0 only for identical, perfectly aligned templates.
func CorrelationScore(a, b *Bitmap, areaA, areaB int, dx, dy float64, tolX, tolY int) float64 {
	if areaA <= 0 || areaB <= 0 {
		return 0
	}
	baseX := int(roundHalf(dx))
	baseY := int(roundHalf(dy))
	if tolX < 0 {
		tolX = 0
	}
	if tolY < 0 {
		tolY = 0
	}

	best := 0.0
	denom := float64(areaA) * float64(areaB)
	for sy := -tolY; sy <= tolY; sy++ {
		for sx := -tolX; sx <= tolX; sx++ {
			overlap := overlapCount(a, b, baseX+sx, baseY+sy)
			score := float64(overlap) * float64(overlap) / denom
			if score > best {
				best = score
			}
		}
	}
	if best > 1 {
		best = 1
	}
	return best
}

// overlapCount counts foreground pixels common to a and b, with b
// translated by (dx, dy) in a's coordinate frame.
func overlapCount(a, b *Bitmap, dx, dy int) int {
	n := 0
	for y := 0; y < b.H; y++ {
		ay := y + dy
		if ay < 0 || ay >= a.H {
			continue
		}
		arow := a.pix[ay*a.W : (ay+1)*a.W]
		brow := b.pix[y*b.W : (y+1)*b.W]
		for x, v := range brow {
			if v == 0 {
				continue
			}
			ax := x + dx
			if ax < 0 || ax >= a.W {
				continue
			}
			if arow[ax] != 0 {
				n++
			}
		}
	}
	return n
}

func roundHalf(v float64) float64 {
	if v < 0 {
		return float64(int(v - 0.5))
	}
	return float64(int(v + 0.5))
}
