package rimage

import (
	"image"
	"path/filepath"

	"github.com/disintegration/imaging"
	_ "github.com/lmittmann/ppm" // register ppm
	"github.com/pkg/errors"
	_ "github.com/xfmoulet/qoi" // register qoi
)

// ReadImageFromFile decodes the image stored at path. Besides the standard formats, ppm and qoi
// files are accepted.
func ReadImageFromFile(path string) (image.Image, error) {
	img, err := imaging.Open(filepath.Clean(path), imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read image %q", path)
	}
	return img, nil
}

// WriteImageToFile encodes img to path, picking the format from the file extension.
func WriteImageToFile(path string, img image.Image) error {
	if err := imaging.Save(img, filepath.Clean(path)); err != nil {
		return errors.Wrapf(err, "cannot write image %q", path)
	}
	return nil
}

// ResizeGray scales img by factor using a box filter.
func ResizeGray(img *image.Gray, factor float64) *image.Gray {
	w := int(float64(img.Bounds().Dx()) * factor)
	h := int(float64(img.Bounds().Dy()) * factor)
	if w < 1 || h < 1 {
		return image.NewGray(image.Rect(0, 0, 0, 0))
	}
	return MakeGray(imaging.Resize(img, w, h, imaging.Box))
}
