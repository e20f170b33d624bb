// internal/recommend/dimensions.go
package recommend

// Printable box limits in cm.
var (
	minSize = [3]float64{8.0, 8.0, 0.15}
	maxSize = [3]float64{15.0, 13.0, 2.2}
)

// printableVolume is the largest printable box volume in cm³.
var printableVolume = maxSize[0] * maxSize[1] * maxSize[2]

// boxDimensions finds box dimensions for a portion volume in cm³, returned
// in mm. Volumes outside the printable range are pinned to the smallest or
// largest box; (0, 0, 0) means no valid box exists.
func boxDimensions(volume float64) (x, y, z float64) {
	minVolume := minSize[0] * minSize[1] * minSize[2]
	if volume < minVolume {
		return minSize[0] * 10, minSize[1] * 10, minSize[2] * 10
	}
	if volume > printableVolume {
		return maxSize[0] * 10, maxSize[1] * 10, maxSize[2] * 10
	}

	for x := minSize[0]; x <= maxSize[0]+0.05; x += 0.1 {
		for y := minSize[1]; y <= maxSize[1]+0.05; y += 0.1 {
			z := volume / (x * y)
			if z >= minSize[2] && z <= maxSize[2] {
				return x * 10, y * 10, z * 10
			}
		}
	}
	return 0, 0, 0
}
