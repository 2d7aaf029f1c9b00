package ebsd

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// AreaSummary describes the grain-area distribution of a registry.
type AreaSummary struct {
	Grains     int
	TotalArea  float64
	MeanArea   float64
	StdDevArea float64
	MinArea    float64
	MedianArea float64
	MaxArea    float64
}

// Summarize computes the area distribution across all grains. An empty
// registry yields the zero summary.
func Summarize(r *Registry) AreaSummary {
	ids := r.IDs()
	if len(ids) == 0 {
		return AreaSummary{}
	}
	areas := make([]float64, len(ids))
	for i, id := range ids {
		areas[i] = r.Area(id)
	}
	sort.Float64s(areas)
	s := AreaSummary{
		Grains:     len(ids),
		TotalArea:  floats.Sum(areas),
		MeanArea:   stat.Mean(areas, nil),
		MinArea:    areas[0],
		MaxArea:    areas[len(areas)-1],
		MedianArea: stat.Quantile(0.5, stat.Empirical, areas, nil),
	}
	if len(areas) > 1 {
		s.StdDevArea = stat.StdDev(areas, nil)
	}
	return s
}
