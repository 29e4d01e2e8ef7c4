//go:build !purego && !js

package depthfx

import (
	"image"

	"gocv.io/x/gocv"
)

// Mat wraps gocv.Mat for the native OpenCV backend.
type Mat struct {
	m gocv.Mat
}

func NewMat() Mat { return Mat{m: gocv.NewMat()} }
func NewMatWithSize(rows, cols int) Mat { return Mat{m: gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV32F)} }
func (mat Mat) Rows() int { return mat.m.Rows() }
func (mat Mat) Cols() int { return mat.m.Cols() }
func (mat *Mat) Close() { mat.m.Close() }

func (mat Mat) DataFloat32() []float32 {
	data, _ := mat.m.DataPtrFloat32()
	return data
}

// --- CV operations ---

func scaleAdd(src Mat, dst *Mat, alpha, beta float32) {
	src.m.ConvertToWithParams(&dst.m, gocv.MatTypeCV32F, alpha, beta)
}

func minMat(a, b Mat, dst *Mat) {
	gocv.Min(a.m, b.m, &dst.m)
}

func resizeCubic(src Mat, dst *Mat, cols, rows int) {
	gocv.Resize(src.m, &dst.m, image.Pt(cols, rows), 0, 0, gocv.InterpolationCubic)
}
