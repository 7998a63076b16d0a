package rimage

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/golang/geo/r2"
	"golang.org/x/image/font/gofont/goregular"
)

var font *truetype.Font

// init sets up the fonts we want to use.
func init() {
	var err error
	font, err = truetype.Parse(goregular.TTF)
	if err != nil {
		panic(err)
	}
}

// Font returns the font we use for drawing.
func Font() *truetype.Font {
	return font
}

// DrawString writes a string to the given context at a particular point.
func DrawString(dc *gg.Context, text string, p image.Point, c color.Color, size float64) {
	dc.SetFontFace(truetype.NewFace(Font(), &truetype.Options{Size: size}))
	dc.SetColor(c)
	dc.DrawStringWrapped(text, float64(p.X), float64(p.Y), 0, 0, float64(dc.Width()), 1, 0)
}

// DrawRectangleEmpty draws the given rectangle into the context. The positions of the
// rectangle are used to place it within the context.
func DrawRectangleEmpty(dc *gg.Context, r image.Rectangle, c color.Color, width float64) {
	DrawPolygon(dc, []r2.Point{
		{X: float64(r.Min.X), Y: float64(r.Min.Y)},
		{X: float64(r.Max.X), Y: float64(r.Min.Y)},
		{X: float64(r.Max.X), Y: float64(r.Max.Y)},
		{X: float64(r.Min.X), Y: float64(r.Max.Y)},
	}, c, width)
}

// DrawPolygon strokes the closed polygon through pts.
func DrawPolygon(dc *gg.Context, pts []r2.Point, c color.Color, width float64) {
	if len(pts) < 2 {
		return
	}
	dc.SetColor(c)
	dc.SetLineWidth(width)
	dc.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		dc.LineTo(p.X, p.Y)
	}
	dc.ClosePath()
	dc.Stroke()
}

// DrawPoints fills a small circle at every point.
func DrawPoints(dc *gg.Context, pts []r2.Point, c color.Color, radius float64) {
	dc.SetColor(c)
	for _, p := range pts {
		dc.DrawCircle(p.X, p.Y, radius)
		dc.Fill()
	}
}

// Overlay describes the annotations DrawOverlay renders on top of an image.
type Overlay struct {
	Label   string
	Quad    []r2.Point
	Points  []r2.Point
	Region  image.Rectangle
	Color   color.Color
	Outline float64
}

// DrawOverlay returns a copy of img annotated with ov.
func DrawOverlay(img image.Image, ov Overlay) image.Image {
	dc := gg.NewContextForImage(img)
	c := ov.Color
	if c == nil {
		c = color.NRGBA{R: 0, G: 255, B: 0, A: 255}
	}
	width := ov.Outline
	if width <= 0 {
		width = 2
	}
	if !ov.Region.Empty() {
		DrawRectangleEmpty(dc, ov.Region, color.NRGBA{R: 255, G: 165, B: 0, A: 255}, width)
	}
	DrawPolygon(dc, ov.Quad, c, width)
	DrawPoints(dc, ov.Points, color.NRGBA{R: 0, G: 0, B: 255, A: 160}, 3)
	if ov.Label != "" {
		DrawString(dc, ov.Label, image.Point{5, 5}, c, 16)
	}
	return dc.Image()
}
