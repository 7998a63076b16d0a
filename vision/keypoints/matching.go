package keypoints

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/robotics-cluedo/cluedo/vision/keypoints/descriptors"
)

// DescriptorMatch contains the index of a match in the first and second set of descriptors.
type DescriptorMatch struct {
	Idx1     int
	Idx2     int
	Distance int
}

// KnnMatch returns, for each query descriptor, its k nearest train descriptors by increasing
// distance. It compares every pair, which makes it the exact counterpart of LSHIndex.KnnMatch.
func KnnMatch(query, train descriptors.Descriptors, k int) ([][]DescriptorMatch, error) {
	if k < 1 {
		return nil, errors.New("k should be >= 1")
	}
	distances, err := descriptors.DescriptorsHammingDistance(query, train)
	if err != nil {
		return nil, err
	}
	out := make([][]DescriptorMatch, len(query))
	for i, row := range distances {
		neighbors := make([]DescriptorMatch, len(row))
		for j, dist := range row {
			neighbors[j] = DescriptorMatch{Idx1: i, Idx2: j, Distance: dist}
		}
		sortMatches(neighbors)
		out[i] = neighbors[:min(k, len(neighbors))]
	}
	return out, nil
}

// sortMatches orders matches by distance, then by train index.
func sortMatches(matches []DescriptorMatch) {
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Distance != matches[j].Distance {
			return matches[i].Distance < matches[j].Distance
		}
		return matches[i].Idx2 < matches[j].Idx2
	})
}

// RatioTest keeps the best neighbor of each query whose distance is below ratio times the distance
// of the second best neighbor. Queries with fewer than 2 neighbors are ambiguous and dropped.
func RatioTest(knn [][]DescriptorMatch, ratio float64) []DescriptorMatch {
	good := make([]DescriptorMatch, 0, len(knn))
	for _, neighbors := range knn {
		if len(neighbors) < 2 {
			continue
		}
		if float64(neighbors[0].Distance) < ratio*float64(neighbors[1].Distance) {
			good = append(good, neighbors[0])
		}
	}
	return good
}
