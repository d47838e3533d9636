package scoring

import "math"

// DefaultPercentile is used when the comparison population is empty or
// could not be retrieved.
const DefaultPercentile = 50

// Percentile ranks an overall score within the population of previously
// computed scores. Strict less-than: samples equal to the score do not
// count as below it, so a submission tied with the whole population ranks
// at 0, not 100.
func Percentile(overall float64, population []float64) int {
	if len(population) == 0 {
		return DefaultPercentile
	}
	below := 0
	for _, sample := range population {
		if sample < overall {
			below++
		}
	}
	return int(math.Round(100 * float64(below) / float64(len(population))))
}
