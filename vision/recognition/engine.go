package recognition

import (
	"context"
	"image"
	"math/rand/v2"
	"runtime"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/robotics-cluedo/cluedo/logging"
	"github.com/robotics-cluedo/cluedo/rimage"
	"github.com/robotics-cluedo/cluedo/rimage/transform"
	"github.com/robotics-cluedo/cluedo/vision/keypoints"
	"github.com/robotics-cluedo/cluedo/vision/keypoints/descriptors"
)

// TrackedMatch is the geometric correspondence found between a frame and one catalog card.
type TrackedMatch struct {
	Target *TargetTemplate
	// Homography maps reference image points to frame points.
	Homography  *transform.Homography
	InlierCount int
	// Confidence is the share of ratio-test matches that are homography inliers.
	Confidence float64
	// TemplatePoints and FramePoints are the inlier correspondences.
	TemplatePoints []r2.Point
	FramePoints    []r2.Point
	// Quad is the reference region projected into the frame.
	Quad []r2.Point
}

// Name returns the name of the matched card.
func (m *TrackedMatch) Name() string {
	return m.Target.Name()
}

// better reports whether m should be preferred over other, catalog order breaking exact ties.
func (m *TrackedMatch) better(other *TrackedMatch) bool {
	if other == nil {
		return true
	}
	if m.InlierCount != other.InlierCount {
		return m.InlierCount > other.InlierCount
	}
	return m.Confidence > other.Confidence
}

// A Recognizer identifies which catalog card, if any, a frame shows.
type Recognizer interface {
	Identify(ctx context.Context, frame image.Image) (*TrackedMatch, error)
}

var _ Recognizer = (*Engine)(nil)

// Engine matches frames against a fixed catalog. It holds no mutable state, so Identify may be
// called concurrently and always gives the same answer for the same frame.
type Engine struct {
	cfg       Config
	catalog   *Catalog
	extractor *keypoints.ORBExtractor
	logger    logging.Logger
}

// NewEngine returns an engine over catalog. The extractor must be the one the catalog was built with.
func NewEngine(cfg Config, catalog *Catalog, extractor *keypoints.ORBExtractor, logger logging.Logger) (*Engine, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate("recognition"); err != nil {
		return nil, err
	}
	if catalog == nil || catalog.Len() == 0 {
		return nil, errors.New("recognition needs a non empty catalog")
	}
	if extractor == nil {
		return nil, errors.New("recognition needs a feature extractor")
	}
	return &Engine{cfg: cfg, catalog: catalog, extractor: extractor, logger: logger}, nil
}

// Catalog returns the catalog the engine matches against.
func (e *Engine) Catalog() *Catalog {
	return e.catalog
}

// Identify returns the catalog card best supported by frame, or nil when no card passes geometric
// verification. ErrNoFeatures is returned when the frame has too little texture to be matched.
func (e *Engine) Identify(ctx context.Context, frame image.Image) (*TrackedMatch, error) {
	if frame == nil {
		return nil, errors.New("no frame to identify")
	}
	features, err := e.extractor.Extract(rimage.MakeGray(frame))
	if err != nil {
		return nil, errors.Wrap(err, "cannot extract frame features")
	}
	if features.Len() < 2 {
		e.logger.CDebugw(ctx, "frame has too few features", "features", features.Len())
		return nil, ErrNoFeatures
	}
	index, err := e.newMatcher(features.Descriptors)
	if err != nil {
		return nil, err
	}
	framePoints := keypoints.ToR2Points(features.Points)

	templates := e.catalog.Templates()
	candidates := make([]*TrackedMatch, len(templates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, tmpl := range templates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			m, err := e.verify(gctx, i, tmpl, index, framePoints)
			if err != nil {
				return err
			}
			candidates[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var best *TrackedMatch
	for _, m := range candidates {
		if m != nil && m.better(best) {
			best = m
		}
	}
	if best == nil {
		e.logger.CInfow(ctx, "Nothing Found", "frame_features", features.Len())
		return nil, nil
	}
	e.logger.CInfow(ctx, "Found "+best.Name(), "inliers", best.InlierCount, "confidence", best.Confidence)
	return best, nil
}

// knnMatcher finds the k nearest frame descriptors of each query descriptor.
type knnMatcher interface {
	KnnMatch(query descriptors.Descriptors, k int) ([][]keypoints.DescriptorMatch, error)
}

type bruteForceMatcher descriptors.Descriptors

func (m bruteForceMatcher) KnnMatch(query descriptors.Descriptors, k int) ([][]keypoints.DescriptorMatch, error) {
	return keypoints.KnnMatch(query, descriptors.Descriptors(m), k)
}

func (e *Engine) newMatcher(frameDescs descriptors.Descriptors) (knnMatcher, error) {
	if e.cfg.Matcher == MatcherBruteForce {
		return bruteForceMatcher(frameDescs), nil
	}
	return keypoints.NewLSHIndex(frameDescs, *e.cfg.LSH, rand.New(rand.NewPCG(e.cfg.Seed, 0)))
}

// verify matches one template against the indexed frame. A nil match means the template is rejected.
func (e *Engine) verify(
	ctx context.Context,
	templateIdx int,
	tmpl *TargetTemplate,
	index knnMatcher,
	framePoints []r2.Point,
) (*TrackedMatch, error) {
	knn, err := index.KnnMatch(tmpl.descs, 2)
	if err != nil {
		return nil, err
	}
	good := keypoints.RatioTest(knn, e.cfg.Ratio)
	if len(good) < e.cfg.MinMatchCount {
		e.logger.CDebugw(ctx, "not enough matches", "card", tmpl.Name(), "matches", len(good))
		return nil, nil
	}
	src := make([]r2.Point, len(good))
	dst := make([]r2.Point, len(good))
	for i, m := range good {
		src[i] = tmpl.points[m.Idx1]
		dst[i] = framePoints[m.Idx2]
	}
	// one source per template keeps the result independent of scheduling
	rng := rand.New(rand.NewPCG(e.cfg.Seed, uint64(templateIdx)+1))
	res, err := transform.EstimateHomographyRANSAC(src, dst, e.cfg.ransacConfig(), rng)
	if err != nil {
		e.logger.CDebugw(ctx, "no homography", "card", tmpl.Name(), "matches", len(good), "error", err)
		return nil, nil
	}
	if res.InlierCount < e.cfg.MinMatchCount {
		e.logger.CDebugw(ctx, "not enough inliers", "card", tmpl.Name(), "matches", len(good), "inliers", res.InlierCount)
		return nil, nil
	}
	if _, err := res.Homography.Inverse(); err != nil {
		e.logger.CDebugw(ctx, "singular homography", "card", tmpl.Name(), "error", err)
		return nil, nil
	}

	match := &TrackedMatch{
		Target:      tmpl,
		Homography:  res.Homography,
		InlierCount: res.InlierCount,
		Confidence:  float64(res.InlierCount) / float64(len(good)),
	}
	for i, in := range res.InlierMask {
		if in {
			match.TemplatePoints = append(match.TemplatePoints, src[i])
			match.FramePoints = append(match.FramePoints, dst[i])
		}
	}
	for _, c := range tmpl.corners() {
		p, ok := res.Homography.Apply(c)
		if !ok {
			e.logger.CDebugw(ctx, "region corner maps to infinity", "card", tmpl.Name())
			return nil, nil
		}
		match.Quad = append(match.Quad, p)
	}
	return match, nil
}

// DrawTrackedMatch returns a copy of frame with the matched card outline and inliers drawn on it.
func DrawTrackedMatch(frame image.Image, m *TrackedMatch) image.Image {
	if m == nil {
		return rimage.DrawOverlay(frame, rimage.Overlay{Label: "Nothing Found"})
	}
	return rimage.DrawOverlay(frame, rimage.Overlay{
		Label:  m.Name(),
		Quad:   m.Quad,
		Points: m.FramePoints,
	})
}
