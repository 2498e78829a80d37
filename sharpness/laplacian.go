// Package sharpness scores image focus as the variance of a Laplacian edge
// response over an 8-bit grayscale image.
package sharpness

import (
	"image"
	"image/color"
	"math"
)

// Threshold is the score below which a region is considered too blurry to
// decode. It is calibrated to the kernel below and a 0-255 intensity range.
const Threshold = 300.0

// kernel is the 4-neighbour discrete Laplacian.
var kernel = [9]float64{
	0, 1, 0,
	1, -4, 1,
	0, 1, 0,
}

// Estimate returns the Laplacian variance of img. Images without interior
// pixels score 0.
func Estimate(img image.Image) float64 {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return 0
	}
	return variance(laplacian(Gray(img), w, h))
}

// Gray converts img to row-major 8-bit luminance using
// 0.299R + 0.587G + 0.114B on straight (non-premultiplied) channels.
func Gray(img image.Image) []uint8 {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	gray := make([]uint8, w*h)

	switch src := img.(type) {
	case *image.RGBA:
		for y := 0; y < h; y++ {
			off := src.PixOffset(b.Min.X, b.Min.Y+y)
			for x := 0; x < w; x++ {
				p := src.Pix[off+x*4 : off+x*4+4 : off+x*4+4]
				r, g, bl := unpremultiply(p[0], p[1], p[2], p[3])
				gray[y*w+x] = luma(r, g, bl)
			}
		}
	case *image.NRGBA:
		for y := 0; y < h; y++ {
			off := src.PixOffset(b.Min.X, b.Min.Y+y)
			for x := 0; x < w; x++ {
				p := src.Pix[off+x*4 : off+x*4+3 : off+x*4+3]
				gray[y*w+x] = luma(float64(p[0]), float64(p[1]), float64(p[2]))
			}
		}
	default:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
				gray[y*w+x] = luma(float64(c.R), float64(c.G), float64(c.B))
			}
		}
	}
	return gray
}

// unpremultiply recovers straight channel values from premultiplied ones.
func unpremultiply(r, g, b, a uint8) (float64, float64, float64) {
	switch a {
	case 0xff:
		return float64(r), float64(g), float64(b)
	case 0:
		return 0, 0, 0
	}
	c := color.NRGBAModel.Convert(color.RGBA{R: r, G: g, B: b, A: a}).(color.NRGBA)
	return float64(c.R), float64(c.G), float64(c.B)
}

// luma clamps and rounds half to even, matching a clamped 8-bit store.
func luma(r, g, b float64) uint8 {
	v := 0.299*r + 0.587*g + 0.114*b
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(math.RoundToEven(v))
}

// laplacian convolves the interior of gray with kernel. The one-pixel border
// is left at zero.
func laplacian(gray []uint8, w, h int) []float64 {
	out := make([]float64, w*h)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			var sum float64
			for ky := -1; ky <= 1; ky++ {
				row := (y + ky) * w
				for kx := -1; kx <= 1; kx++ {
					sum += float64(gray[row+x+kx]) * kernel[(ky+1)*3+(kx+1)]
				}
			}
			out[y*w+x] = sum
		}
	}
	return out
}

// variance is the population variance over every cell, border included.
func variance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var mean float64
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	var sum float64
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return sum / float64(len(values))
}
