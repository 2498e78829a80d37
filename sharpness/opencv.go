//go:build opencv

package sharpness

import (
	"gocv.io/x/gocv"
)

// EstimateMat computes the same score as Estimate on an OpenCV matrix in
// BGR, BGRA or single-channel layout. Laplacian with ksize 1 applies the
// same 4-neighbour kernel; only interior cells are read so the border stays
// zero.
func EstimateMat(src gocv.Mat) float64 {
	rows, cols := src.Rows(), src.Cols()
	if rows <= 0 || cols <= 0 {
		return 0
	}

	gray := gocv.NewMat()
	defer gray.Close()
	switch src.Channels() {
	case 4:
		gocv.CvtColor(src, &gray, gocv.ColorBGRAToGray)
	case 3:
		gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)
	default:
		src.CopyTo(&gray)
	}

	lap := gocv.NewMat()
	defer lap.Close()
	gocv.Laplacian(gray, &lap, gocv.MatTypeCV64F, 1, 1, 0, gocv.BorderConstant)

	values := make([]float64, rows*cols)
	for y := 1; y < rows-1; y++ {
		for x := 1; x < cols-1; x++ {
			values[y*cols+x] = lap.GetDoubleAt(y, x)
		}
	}
	return variance(values)
}
