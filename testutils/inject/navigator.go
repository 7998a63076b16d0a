package inject

import (
	"context"

	"github.com/robotics-cluedo/cluedo/sensorhub"
	"github.com/robotics-cluedo/cluedo/services/navigation"
)

// Navigator is an injected navigation service.
type Navigator struct {
	navigation.Service
	NavigateFunc func(ctx context.Context, scan *sensorhub.RangeScan) error
	RotateFunc   func(ctx context.Context, angleDeg float64) error
}

// Navigate calls the injected Navigate or the real version.
func (n *Navigator) Navigate(ctx context.Context, scan *sensorhub.RangeScan) error {
	if n.NavigateFunc == nil {
		return n.Service.Navigate(ctx, scan)
	}
	return n.NavigateFunc(ctx, scan)
}

// Rotate calls the injected Rotate or the real version.
func (n *Navigator) Rotate(ctx context.Context, angleDeg float64) error {
	if n.RotateFunc == nil {
		return n.Service.Rotate(ctx, angleDeg)
	}
	return n.RotateFunc(ctx, angleDeg)
}
