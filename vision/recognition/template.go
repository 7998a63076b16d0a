package recognition

import (
	"context"
	"image"
	"path/filepath"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/robotics-cluedo/cluedo/logging"
	"github.com/robotics-cluedo/cluedo/rimage"
	"github.com/robotics-cluedo/cluedo/rimage/transform"
	"github.com/robotics-cluedo/cluedo/vision/keypoints"
	"github.com/robotics-cluedo/cluedo/vision/keypoints/descriptors"
)

// ErrNoFeatures is returned when an image yields too few keypoints to be matched.
var ErrNoFeatures = errors.New("not enough features")

// TargetTemplate is one catalog card. It is built once and never modified afterwards.
type TargetTemplate struct {
	name   string
	image  image.Image
	region image.Rectangle
	points []r2.Point
	descs  descriptors.Descriptors
}

// NewTargetTemplate extracts the features of img inside region. An empty region means the whole image.
// Keypoints are kept in the coordinates of img.
func NewTargetTemplate(name string, img image.Image, region image.Rectangle, extractor *keypoints.ORBExtractor,
) (*TargetTemplate, error) {
	if name == "" {
		return nil, errors.New("template name cannot be empty")
	}
	if img == nil {
		return nil, errors.Errorf("template %q has no reference image", name)
	}
	gray := rimage.MakeGray(img)
	if region.Empty() {
		region = gray.Bounds()
	}
	if !region.In(gray.Bounds()) {
		return nil, errors.Errorf("template %q region %v outside of image bounds %v", name, region, gray.Bounds())
	}
	features, err := extractor.Extract(rimage.CropGray(gray, region))
	if err != nil {
		return nil, errors.Wrapf(err, "cannot extract features of template %q", name)
	}
	if features.Len() < transform.MinHomographyPoints {
		return nil, errors.Wrapf(ErrNoFeatures, "template %q has %d keypoints", name, features.Len())
	}
	offset := r2.Point{X: float64(region.Min.X), Y: float64(region.Min.Y)}
	points := lo.Map(keypoints.ToR2Points(features.Points), func(p r2.Point, _ int) r2.Point {
		return p.Add(offset)
	})
	return &TargetTemplate{
		name:   name,
		image:  img,
		region: region,
		points: points,
		descs:  features.Descriptors,
	}, nil
}

// Name returns the unique name of the card.
func (t *TargetTemplate) Name() string {
	return t.name
}

// ReferenceImage returns the image the template was built from.
func (t *TargetTemplate) ReferenceImage() image.Image {
	return t.image
}

// ReferenceRegion returns the part of the reference image the features come from.
func (t *TargetTemplate) ReferenceRegion() image.Rectangle {
	return t.region
}

// NumFeatures returns the number of keypoints of the template.
func (t *TargetTemplate) NumFeatures() int {
	return len(t.points)
}

// corners returns the reference region corners, clockwise from the top-left one.
func (t *TargetTemplate) corners() []r2.Point {
	r := t.region
	return []r2.Point{
		{X: float64(r.Min.X), Y: float64(r.Min.Y)},
		{X: float64(r.Max.X), Y: float64(r.Min.Y)},
		{X: float64(r.Max.X), Y: float64(r.Max.Y)},
		{X: float64(r.Min.X), Y: float64(r.Max.Y)},
	}
}

// Catalog is the ordered, read-only set of cards the engine recognizes.
type Catalog struct {
	templates []*TargetTemplate
	byName    map[string]*TargetTemplate
}

// NewCatalog builds a catalog. Names must be unique.
func NewCatalog(templates ...*TargetTemplate) (*Catalog, error) {
	if len(templates) == 0 {
		return nil, errors.New("catalog cannot be empty")
	}
	names := lo.Map(templates, func(t *TargetTemplate, _ int) string { return t.Name() })
	if dups := lo.FindDuplicates(names); len(dups) > 0 {
		return nil, errors.Errorf("duplicate catalog names %v", dups)
	}
	c := &Catalog{
		templates: append([]*TargetTemplate(nil), templates...),
		byName:    make(map[string]*TargetTemplate, len(templates)),
	}
	for _, t := range templates {
		c.byName[t.Name()] = t
	}
	return c, nil
}

// Len returns the number of cards.
func (c *Catalog) Len() int {
	return len(c.templates)
}

// Templates returns the cards in catalog order.
func (c *Catalog) Templates() []*TargetTemplate {
	return append([]*TargetTemplate(nil), c.templates...)
}

// Names returns the card names in catalog order.
func (c *Catalog) Names() []string {
	return lo.Map(c.templates, func(t *TargetTemplate, _ int) string { return t.Name() })
}

// Get returns the card called name.
func (c *Catalog) Get(name string) (*TargetTemplate, bool) {
	t, ok := c.byName[name]
	return t, ok
}

// CatalogEntry describes one card on disk.
type CatalogEntry struct {
	Name  string `json:"name"`
	Image string `json:"image"`
	// Region is [x0, y0, x1, y1] in reference image pixels, empty or all zeros for the whole image.
	Region []int `json:"region,omitempty"`
}

// Rect converts the region to a rectangle.
func (e CatalogEntry) Rect() (image.Rectangle, error) {
	switch len(e.Region) {
	case 0:
		return image.Rectangle{}, nil
	case 4:
		r := image.Rectangle{
			Min: image.Point{e.Region[0], e.Region[1]},
			Max: image.Point{e.Region[2], e.Region[3]},
		}
		if r == (image.Rectangle{}) {
			return r, nil
		}
		if r.Empty() {
			return image.Rectangle{}, errors.Errorf("card %q region %v is empty", e.Name, e.Region)
		}
		return r, nil
	default:
		return image.Rectangle{}, errors.Errorf("card %q region should have 4 values, has %d", e.Name, len(e.Region))
	}
}

// LoadCatalog reads the card images and builds their templates. Relative image paths are resolved
// against baseDir.
func LoadCatalog(
	ctx context.Context,
	entries []CatalogEntry,
	baseDir string,
	extractor *keypoints.ORBExtractor,
	logger logging.Logger,
) (*Catalog, error) {
	templates := make([]*TargetTemplate, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		region, err := entry.Rect()
		if err != nil {
			return nil, err
		}
		path := entry.Image
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		img, err := rimage.ReadImageFromFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "cannot load card %q", entry.Name)
		}
		tmpl, err := NewTargetTemplate(entry.Name, img, region, extractor)
		if err != nil {
			return nil, err
		}
		logger.Debugw("loaded card", "name", tmpl.Name(), "features", tmpl.NumFeatures(), "region", tmpl.ReferenceRegion())
		templates = append(templates, tmpl)
	}
	return NewCatalog(templates...)
}
