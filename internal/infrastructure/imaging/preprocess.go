// Package imaging prepares rendered pages and uploaded photos for text
// recognition: luminance normalization with adaptive thresholding, then a
// Laplacian sharpen pass.
package imaging

import (
	"bytes"
	"image"
	"image/png"
)

const (
	whiteThreshold = 185
	blackThreshold = 70
)

// Preprocess normalizes and sharpens img in place. A nil image is a no-op;
// callers are expected to supply a valid surface.
func Preprocess(img *image.RGBA) {
	if img == nil {
		return
	}
	normalizeLuminance(img)
	sharpen(img)
}

// normalizeLuminance rescales per-pixel relative luminance into the full
// 0-255 range, forces near-white and near-black pixels to their extremes and
// writes the resulting gray level into all three color channels. Alpha is
// left untouched.
func normalizeLuminance(img *image.RGBA) {
	bounds := img.Bounds()

	minLum, maxLum := 255.0, 0.0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			lum := luminanceAt(img, x, y)
			if lum < minLum {
				minLum = lum
			}
			if lum > maxLum {
				maxLum = lum
			}
		}
	}

	spread := maxLum - minLum
	if spread == 0 {
		spread = 1
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			lum := luminanceAt(img, x, y)
			value := (lum - minLum) * 255 / spread

			switch {
			case value > whiteThreshold:
				value = 255
			case value < blackThreshold:
				value = 0
			}

			gray := clampByte(value)
			offset := img.PixOffset(x, y)
			img.Pix[offset] = gray
			img.Pix[offset+1] = gray
			img.Pix[offset+2] = gray
		}
	}
}

func luminanceAt(img *image.RGBA, x, y int) float64 {
	offset := img.PixOffset(x, y)
	r := float64(img.Pix[offset])
	g := float64(img.Pix[offset+1])
	b := float64(img.Pix[offset+2])
	return 0.2126*r + 0.7152*g + 0.0722*b
}

// sharpenKernel is a unit-gain Laplacian sharpen; out-of-bounds neighbors
// contribute zero.
var sharpenKernel = [3][3]float64{
	{0, -1, 0},
	{-1, 5, -1},
	{0, -1, 0},
}

func sharpen(img *image.RGBA) {
	bounds := img.Bounds()

	// Neighbor reads must come from the pre-convolution pixels.
	snapshot := make([]uint8, len(img.Pix))
	copy(snapshot, img.Pix)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			var sumR, sumG, sumB float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					nx, ny := x+kx, y+ky
					if nx < bounds.Min.X || nx >= bounds.Max.X || ny < bounds.Min.Y || ny >= bounds.Max.Y {
						continue
					}
					weight := sharpenKernel[ky+1][kx+1]
					offset := img.PixOffset(nx, ny)
					sumR += weight * float64(snapshot[offset])
					sumG += weight * float64(snapshot[offset+1])
					sumB += weight * float64(snapshot[offset+2])
				}
			}

			offset := img.PixOffset(x, y)
			img.Pix[offset] = clampByte(sumR)
			img.Pix[offset+1] = clampByte(sumG)
			img.Pix[offset+2] = clampByte(sumB)
			img.Pix[offset+3] = 255
		}
	}
}

func clampByte(v float64) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	default:
		return uint8(v)
	}
}

// EncodePNG exports the processed surface for the recognition boundary.
func EncodePNG(img *image.RGBA) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
