package testutils

import (
	"image"
	"image/color"
	"image/draw"
	"math/rand/v2"
)

// cardBlock is the side in pixels of one texture block of a synthetic card.
const cardBlock = 8

var cardLevels = []uint8{0, 85, 170, 255}

// MakeCard returns a deterministic textured card: a grid of 8x8 blocks with random gray levels
// drawn from seed. Different seeds give cards that do not match each other.
func MakeCard(seed uint64, w, h int) *image.Gray {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	card := image.NewGray(image.Rect(0, 0, w, h))
	for by := 0; by < h; by += cardBlock {
		for bx := 0; bx < w; bx += cardBlock {
			level := cardLevels[rng.IntN(len(cardLevels))]
			block := image.Rect(bx, by, bx+cardBlock, by+cardBlock).Intersect(card.Bounds())
			draw.Draw(card, block, &image.Uniform{color.Gray{level}}, image.Point{}, draw.Src)
		}
	}
	return card
}

// NewFrame returns a w x h image filled with c.
func NewFrame(w, h int, c color.Color) *image.NRGBA {
	frame := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(frame, frame.Bounds(), &image.Uniform{c}, image.Point{}, draw.Src)
	return frame
}

// PasteCard draws card onto dst with its top-left corner at at.
func PasteCard(dst draw.Image, card image.Image, at image.Point) {
	r := card.Bounds().Sub(card.Bounds().Min).Add(at)
	draw.Draw(dst, r, card, card.Bounds().Min, draw.Src)
}

// WallColor is the plain background synthetic frames are drawn on.
var WallColor = color.NRGBA{R: 40, G: 70, B: 150, A: 255}

// MakeScene returns a frame of size w x h with card pasted at at, on a plain wall.
func MakeScene(card image.Image, w, h int, at image.Point) *image.NRGBA {
	frame := NewFrame(w, h, WallColor)
	PasteCard(frame, card, at)
	return frame
}
