// Package keypoints contains the implementation of keypoints in an image. For now:
// - FAST keypoints
// - BRIEF and ORB descriptors
// - brute force and LSH descriptor matching
package keypoints

import (
	"image"
	"math"

	"github.com/golang/geo/r2"

	"github.com/robotics-cluedo/cluedo/utils"
)

type (
	// KeyPoint is an image.Point that contains coordinates of a kp.
	KeyPoint image.Point // keypoint type
	// KeyPoints is a slice of image.Point that contains several kps.
	KeyPoints []image.Point // set of keypoints type
)

// orientationRadius is the radius of the disc used to compute the orientation of corners.
const orientationRadius = 15

// orientationRowHalfWidths holds, for each row offset |dy|, the half-width of the orientation disc.
var orientationRowHalfWidths = []int{15, 15, 15, 15, 14, 14, 14, 13, 13, 12, 11, 10, 9, 8, 6, 3}

// computeKeypointsOrientations returns the intensity centroid angle of each keypoint. Pixels of the
// disc that fall outside of the image are ignored.
func computeKeypointsOrientations(img *image.Gray, kps KeyPoints) []float64 {
	bnd := img.Bounds()
	orientations := make([]float64, len(kps))
	for i, kp := range kps {
		m01, m10 := 0, 0
		for dy := -orientationRadius; dy <= orientationRadius; dy++ {
			y := kp.Y + dy
			if y < bnd.Min.Y || y >= bnd.Max.Y {
				continue
			}
			halfWidth := orientationRowHalfWidths[utils.AbsInt(dy)]
			m01Temp := 0
			for dx := -halfWidth; dx <= halfWidth; dx++ {
				x := kp.X + dx
				if x < bnd.Min.X || x >= bnd.Max.X {
					continue
				}
				pixVal := int(img.GrayAt(x, y).Y)
				m10 += pixVal * dx
				m01Temp += pixVal
			}
			m01 += m01Temp * dy
		}
		orientations[i] = math.Atan2(float64(m01), float64(m10))
	}
	return orientations
}

// RescaleKeypoints rescales given keypoints wrt scaleFactor.
func RescaleKeypoints(kps KeyPoints, scaleFactor int) KeyPoints {
	rescaledKeypoints := make(KeyPoints, len(kps))
	for i, kp := range kps {
		rescaledKeypoints[i] = image.Point{kp.X * scaleFactor, kp.Y * scaleFactor}
	}
	return rescaledKeypoints
}

// ToR2Points converts keypoints to float points.
func ToR2Points(kps KeyPoints) []r2.Point {
	pts := make([]r2.Point, len(kps))
	for i, kp := range kps {
		pts[i] = r2.Point{X: float64(kp.X), Y: float64(kp.Y)}
	}
	return pts
}
