package imaging

import (
	"image"
	"math"
)

var (
	sobelX = [3][3]float64{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	sobelY = [3][3]float64{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}
)

// Canny runs Canny-style edge detection on an already smoothed grayscale
// image and returns the edge pixels as a mask.
//
// Parameters:
//   - gray: Smoothed intensity image. Smoothing is the caller's job; see Blur.
//   - low: Weak-edge threshold on the unnormalized Sobel gradient magnitude
//     of 8-bit intensities. Typical value: one third of high.
//   - high: Strong-edge threshold. Pixels above it always become edges.
//
// # Algorithm
//
//  1. Gradient computation: Sobel operators for X and Y gradients,
//     magnitude = sqrt(Gx² + Gy²), direction = atan2(Gy, Gx)
//
//  2. Non-maximum suppression: thin edges by keeping only local maxima in
//     the gradient direction
//
//  3. Hysteresis:
//     - Pixels with magnitude >= high are strong edges
//     - Pixels with magnitude >= low are weak edges, kept only when they are
//     8-connected (directly or through other weak edges) to a strong edge
//     - Everything else is discarded
//
// Border pixels never become edges.
func Canny(gray *image.Gray, low, high float64) *Mask {
	b := gray.Bounds()
	width, height := b.Dx(), b.Dy()

	magnitude := make([]float64, width*height)
	direction := make([]float64, width*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var gx, gy float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					py := clamp(y+ky, 0, height-1)
					px := clamp(x+kx, 0, width-1)
					v := float64(gray.Pix[gray.PixOffset(b.Min.X+px, b.Min.Y+py)])
					gx += v * sobelX[ky+1][kx+1]
					gy += v * sobelY[ky+1][kx+1]
				}
			}
			magnitude[y*width+x] = math.Hypot(gx, gy)
			direction[y*width+x] = math.Atan2(gy, gx)
		}
	}

	suppressed := suppressNonMaxima(magnitude, direction, width, height)
	return hysteresis(suppressed, width, height, low, high)
}

// suppressNonMaxima zeroes every pixel that is not a local maximum along its
// gradient direction, quantized to four orientations.
func suppressNonMaxima(magnitude, direction []float64, width, height int) []float64 {
	out := make([]float64, width*height)
	at := func(x, y int) float64 { return magnitude[y*width+x] }

	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			mag := at(x, y)
			if mag == 0 {
				continue
			}
			angle := direction[y*width+x]

			var n1, n2 float64
			switch {
			case (angle >= -math.Pi/8 && angle < math.Pi/8) || angle >= 7*math.Pi/8 || angle < -7*math.Pi/8:
				n1, n2 = at(x-1, y), at(x+1, y)
			case (angle >= math.Pi/8 && angle < 3*math.Pi/8) || (angle >= -7*math.Pi/8 && angle < -5*math.Pi/8):
				n1, n2 = at(x-1, y-1), at(x+1, y+1)
			case (angle >= 3*math.Pi/8 && angle < 5*math.Pi/8) || (angle >= -5*math.Pi/8 && angle < -3*math.Pi/8):
				n1, n2 = at(x, y-1), at(x, y+1)
			default:
				n1, n2 = at(x+1, y-1), at(x-1, y+1)
			}

			if mag >= n1 && mag >= n2 {
				out[y*width+x] = mag
			}
		}
	}
	return out
}

// hysteresis grows edges from strong pixels into connected weak pixels.
func hysteresis(suppressed []float64, width, height int, low, high float64) *Mask {
	edges := NewMask(width, height)
	stack := make([]int, 0, 256)

	for i, v := range suppressed {
		if v >= high && !edges.Pix[i] {
			edges.Pix[i] = true
			stack = append(stack, i)
		}
		for len(stack) > 0 {
			p := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			px, py := p%width, p/width
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := px+dx, py+dy
					if nx < 0 || ny < 0 || nx >= width || ny >= height {
						continue
					}
					n := ny*width + nx
					if !edges.Pix[n] && suppressed[n] >= low && suppressed[n] > 0 {
						edges.Pix[n] = true
						stack = append(stack, n)
					}
				}
			}
		}
	}
	return edges
}
