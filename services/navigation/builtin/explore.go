package builtin

import (
	"context"
	"math"

	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/robotics-cluedo/cluedo/sensorhub"
	"github.com/robotics-cluedo/cluedo/utils"
)

// clearancePercentile summarizes a sector by a low percentile so a few spurious long readings do
// not make a blocked sector look open.
const clearancePercentile = 20

// headingToleranceDegs is the smallest turn worth issuing before driving.
const headingToleranceDegs = 1.0

// sector is a contiguous slice of a range scan.
type sector struct {
	index      int
	bearingDeg float64
	clearanceM float64
}

// sectorClearances splits scan into n sectors of consecutive readings. Sectors without a valid
// reading are left out.
func sectorClearances(scan *sensorhub.RangeScan, n int) []sector {
	if scan == nil || len(scan.Ranges) == 0 || n < 1 {
		return nil
	}
	n = utils.MinInt(n, len(scan.Ranges))
	var sectors []sector
	for k := 0; k < n; k++ {
		lo := k * len(scan.Ranges) / n
		hi := (k + 1) * len(scan.Ranges) / n
		var valid stats.Float64Data
		for _, r := range scan.Ranges[lo:hi] {
			if sensorhub.ValidReading(r) {
				valid = append(valid, r)
			}
		}
		if len(valid) == 0 {
			continue
		}
		clearance, err := stats.PercentileNearestRank(valid, clearancePercentile)
		if err != nil {
			continue
		}
		mid := float64(lo+hi-1) / 2
		sectors = append(sectors, sector{
			index:      k,
			bearingDeg: utils.WrapAngDeg(utils.RadToDeg(scan.AngleMin + mid*scan.AngleIncrement)),
			clearanceM: clearance,
		})
	}
	return sectors
}

// chooseSector returns the sector with the largest clearance beyond minClearanceM, the first one
// on ties.
func chooseSector(scan *sensorhub.RangeScan, n int, minClearanceM float64) (sector, bool) {
	sectors := sectorClearances(scan, n)
	if len(sectors) == 0 {
		return sector{}, false
	}
	clearances := make([]float64, len(sectors))
	for i, s := range sectors {
		clearances[i] = s.clearanceM
	}
	best := floats.MaxIdx(clearances)
	if clearances[best] <= minClearanceM {
		return sector{}, false
	}
	return sectors[best], true
}

// startExploreMode turns toward s and drives one step into it, never closer than the obstacle
// distance to the sector's clearance.
func (svc *builtIn) startExploreMode(ctx context.Context, s sector) error {
	svc.logger.CDebugw(ctx, "exploring", "sector", s.index, "bearing_deg", s.bearingDeg, "clearance_m", s.clearanceM)
	if math.Abs(s.bearingDeg) > headingToleranceDegs {
		if err := svc.Rotate(ctx, s.bearingDeg); err != nil {
			return err
		}
	}
	room := (s.clearanceM - svc.cfg.ObstacleDistanceM) * 1000
	step := int(math.Min(float64(svc.cfg.StepMm), room))
	if step < 1 {
		return nil
	}
	if err := svc.base.MoveStraight(ctx, step, svc.cfg.MmPerSec); err != nil {
		return errors.Wrapf(err, "driving %d mm", step)
	}
	return nil
}
