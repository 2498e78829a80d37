package region

import (
	"image"
	"image/draw"
	"math"
)

// minArea is the smallest polygon area treated as a real region.
const minArea = 1e-9

// Extract copies the pixels of img that lie inside q into a new image sized
// to the quad's bounding box. Pixels outside the polygon, or outside img,
// are left transparent. img is not modified.
func Extract(img image.Image, q Quad) (*image.RGBA, error) {
	minX, minY, maxX, maxY := q.Bounds()

	w := int(maxX - minX)
	h := int(maxY - minY)
	if w <= 0 || h <= 0 {
		return nil, &DegenerateRegionError{Quad: q, Reason: "empty bounding box"}
	}
	if q.Area() < minArea {
		return nil, &DegenerateRegionError{Quad: q, Reason: "collinear points"}
	}

	// Rounding keeps every sampled pixel centre within [min, max], so an
	// axis-aligned box with fractional corners stays fully opaque.
	origin := image.Pt(int(math.Round(minX)), int(math.Round(minY)))
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	mask := polygonMask(q, origin, w, h)

	// Only the part of the box that overlaps the source is drawn.
	srcRect := image.Rect(origin.X, origin.Y, origin.X+w, origin.Y+h).Intersect(img.Bounds())
	if srcRect.Empty() {
		return dst, nil
	}
	dstRect := srcRect.Sub(origin)
	draw.DrawMask(dst, dstRect, img, srcRect.Min, mask, dstRect.Min, draw.Src)

	return dst, nil
}

// polygonMask rasterizes q into a w*h alpha mask whose (0,0) maps to origin
// in source space. A pixel is inside when its centre is.
func polygonMask(q Quad, origin image.Point, w, h int) *image.Alpha {
	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		cy := float64(origin.Y+y) + 0.5
		row := y * mask.Stride
		for x := 0; x < w; x++ {
			cx := float64(origin.X+x) + 0.5
			if q.Contains(Point{X: cx, Y: cy}) {
				mask.Pix[row+x] = 0xff
			}
		}
	}
	return mask
}

// Coverage is the fraction of opaque pixels in a region produced by Extract.
func Coverage(img *image.RGBA) float64 {
	b := img.Bounds()
	total := b.Dx() * b.Dy()
	if total == 0 {
		return 0
	}
	opaque := 0
	for y := 0; y < b.Dy(); y++ {
		row := y * img.Stride
		for x := 0; x < b.Dx(); x++ {
			if img.Pix[row+x*4+3] != 0 {
				opaque++
			}
		}
	}
	return float64(opaque) / float64(total)
}
