package simulation

import (
	"hash/fnv"
	"image"
	"image/color"
	"math/rand/v2"

	"github.com/fogleman/gg"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/robotics-cluedo/cluedo/rimage"
)

const (
	cardTile      = 10
	cardLabelSize = 14.0
)

// GenerateCard paints a printable card for name: a mosaic of colored tiles seeded by the name
// above a label band. The same name always gives the same card.
func GenerateCard(name string, w, h int) image.Image {
	hash := fnv.New64a()
	hash.Write([]byte(name)) //nolint:errcheck
	seed := hash.Sum64()
	rng := rand.New(rand.NewPCG(seed, seed>>1|1))

	dc := gg.NewContext(w, h)
	dc.SetColor(color.White)
	dc.Clear()

	labelTop := h - int(cardLabelSize*2)
	for y := 0; y < labelTop; y += cardTile {
		for x := 0; x < w; x += cardTile {
			c := colorful.Hsv(rng.Float64()*360, 0.4+0.6*rng.Float64(), 0.15+0.85*rng.Float64())
			dc.SetColor(c)
			dc.DrawRectangle(float64(x), float64(y), cardTile, cardTile)
			dc.Fill()
		}
	}
	dc.SetColor(color.Black)
	dc.DrawRectangle(0, float64(labelTop), float64(w), float64(h-labelTop))
	dc.Fill()
	rimage.DrawString(dc, name, image.Pt(4, labelTop+4), color.White, cardLabelSize)
	return dc.Image()
}
