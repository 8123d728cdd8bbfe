// Package aggregate reduces observations to a single statistic.
package aggregate

import (
	"math"

	"gpustats/models"
)

// Mean returns the arithmetic mean of values rounded to 2 decimals, or an
// absent value when there are none. There is no outlier rejection; a single
// extreme price skews the result.
func Mean(values []float64) models.Value {
	if len(values) == 0 {
		return models.Absent()
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return models.Number(Round2(sum / float64(len(values))))
}

// Round2 rounds half away from zero to 2 decimal places
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}
