// Package builtin contains the default navigation service.
package builtin

import (
	"context"

	"github.com/pkg/errors"

	"github.com/robotics-cluedo/cluedo/components/base"
	"github.com/robotics-cluedo/cluedo/logging"
	"github.com/robotics-cluedo/cluedo/sensorhub"
	"github.com/robotics-cluedo/cluedo/services/navigation"
)

var _ navigation.Service = (*builtIn)(nil)

type builtIn struct {
	cfg    navigation.Config
	base   base.Base
	logger logging.Logger
}

// NewBuiltIn returns a navigation service driving b. cfg must already be validated.
func NewBuiltIn(cfg navigation.Config, b base.Base, logger logging.Logger) navigation.Service {
	return &builtIn{cfg: cfg, base: b, logger: logger}
}

func (svc *builtIn) Navigate(ctx context.Context, scan *sensorhub.RangeScan) error {
	sector, ok := chooseSector(scan, svc.cfg.Sectors, svc.cfg.ObstacleDistanceM)
	if !ok {
		svc.logger.CDebugw(ctx, "no open direction, rotating in place", "degs", svc.cfg.FallbackRotationDegs)
		return svc.Rotate(ctx, svc.cfg.FallbackRotationDegs)
	}
	return svc.startExploreMode(ctx, sector)
}

func (svc *builtIn) Rotate(ctx context.Context, angleDeg float64) error {
	if err := base.ValidateSpin(angleDeg, svc.cfg.DegsPerSec); err != nil {
		return err
	}
	if err := svc.base.Spin(ctx, angleDeg, svc.cfg.DegsPerSec); err != nil {
		return errors.Wrapf(err, "rotating by %.1f degrees", angleDeg)
	}
	return nil
}
