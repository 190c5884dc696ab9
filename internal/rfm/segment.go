package rfm

import "github.com/chrisdamba/bookrfm/internal/models"

// Classify maps an rfm_total to its segment band.
func Classify(total int) models.Segment {
	switch {
	case total >= 12:
		return models.SegmentChampions
	case total >= 9:
		return models.SegmentLoyal
	case total >= 6:
		return models.SegmentPotential
	default:
		return models.SegmentAtRisk
	}
}
