package rimage

import (
	"image"
)

// Kernel is a convolution matrix stored row by row.
type Kernel struct {
	Content [][]float64
	Height  int
	Width   int
}

// NewKernel returns a zeroed kernel of the given size.
func NewKernel(rows, cols int) (*Kernel, error) {
	if rows <= 0 || cols <= 0 {
		return nil, errInvalidKernelSize(rows, cols)
	}
	content := make([][]float64, rows)
	for i := range content {
		content[i] = make([]float64, cols)
	}
	return &Kernel{Content: content, Height: rows, Width: cols}, nil
}

// Size returns the kernel size as (width, height).
func (k *Kernel) Size() image.Point {
	return image.Point{k.Width, k.Height}
}

// At returns the kernel element at column x and row y.
func (k *Kernel) At(x, y int) float64 {
	return k.Content[y][x]
}

// AbSum returns the sum of the absolute values of the kernel elements.
func (k *Kernel) AbSum() float64 {
	var sum float64
	for y := 0; y < k.Height; y++ {
		for x := 0; x < k.Width; x++ {
			v := k.Content[y][x]
			if v < 0 {
				v = -v
			}
			sum += v
		}
	}
	return sum
}

// Normalize returns a copy of the kernel whose absolute values sum to 1.
func (k *Kernel) Normalize() *Kernel {
	normalized, err := NewKernel(k.Height, k.Width)
	if err != nil {
		return k
	}
	sum := k.AbSum()
	if sum == 0 {
		sum = 1
	}
	for y := 0; y < k.Height; y++ {
		for x := 0; x < k.Width; x++ {
			normalized.Content[y][x] = k.Content[y][x] / sum
		}
	}
	return normalized
}

// GetGaussian3 returns the 3x3 binomial approximation of a gaussian kernel.
func GetGaussian3() *Kernel {
	return &Kernel{
		Content: [][]float64{
			{1, 2, 1},
			{2, 4, 2},
			{1, 2, 1},
		},
		Height: 3,
		Width:  3,
	}
}

// GetGaussian5 returns the 5x5 binomial approximation of a gaussian kernel.
func GetGaussian5() *Kernel {
	return &Kernel{
		Content: [][]float64{
			{1, 4, 6, 4, 1},
			{4, 16, 24, 16, 4},
			{6, 24, 36, 24, 6},
			{4, 16, 24, 16, 4},
			{1, 4, 6, 4, 1},
		},
		Height: 5,
		Width:  5,
	}
}
