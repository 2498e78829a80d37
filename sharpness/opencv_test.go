//go:build opencv

package sharpness

import (
	"math"
	"testing"

	"gocv.io/x/gocv"
)

func TestEstimateMatMatchesEstimate(t *testing.T) {
	img := checkerboard(64, 48, 4)

	mat, err := gocv.ImageToMatRGBA(img)
	if err != nil {
		t.Fatalf("ImageToMatRGBA() error = %v", err)
	}
	defer mat.Close()

	want := Estimate(img)
	got := EstimateMat(mat)
	if math.Abs(got-want) > want*0.01 {
		t.Errorf("EstimateMat() = %.2f, Estimate() = %.2f", got, want)
	}
}

func TestEstimateMatFlat(t *testing.T) {
	mat := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(128, 0, 0, 0), 10, 10, gocv.MatTypeCV8UC1)
	defer mat.Close()
	if got := EstimateMat(mat); got != 0 {
		t.Errorf("EstimateMat(flat) = %v, want 0", got)
	}
}
