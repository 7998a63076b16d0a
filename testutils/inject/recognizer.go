package inject

import (
	"context"
	"image"

	"github.com/robotics-cluedo/cluedo/vision/recognition"
)

// Recognizer is an injected recognizer.
type Recognizer struct {
	recognition.Recognizer
	IdentifyFunc func(ctx context.Context, frame image.Image) (*recognition.TrackedMatch, error)
}

// Identify calls the injected Identify or the real version.
func (r *Recognizer) Identify(ctx context.Context, frame image.Image) (*recognition.TrackedMatch, error) {
	if r.IdentifyFunc == nil {
		return r.Recognizer.Identify(ctx, frame)
	}
	return r.IdentifyFunc(ctx, frame)
}
