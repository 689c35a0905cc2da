package extractor

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/dealsense/sales-intel/internal/core/domain"
	"github.com/dealsense/sales-intel/internal/core/ports"
	"github.com/dealsense/sales-intel/internal/infrastructure/imaging"
)

// extractImage runs the recognition pipeline over an uploaded photo at its
// native resolution. There is no non-recognition fallback for raw images.
func (e *Extractor) extractImage(ctx context.Context, data []byte, sink ports.ProgressSink) (domain.Extraction, error) {
	sink.RecognitionActive(true)
	defer sink.RecognitionActive(false)

	decoded, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return domain.Extraction{}, fmt.Errorf("decode image: %w", err)
	}

	surface := toRGBA(decoded)
	imaging.Preprocess(surface)

	encoded, err := imaging.EncodePNG(surface)
	if err != nil {
		return domain.Extraction{}, fmt.Errorf("encode image: %w", err)
	}

	text, err := e.recognizer.Recognize(ctx, encoded, "image/png")
	if err != nil {
		return domain.Extraction{}, fmt.Errorf("recognize image: %w", err)
	}

	return domain.Extraction{Text: text, Pages: 1, UsedRecognition: true}, nil
}

func toRGBA(src image.Image) *image.RGBA {
	if rgba, ok := src.(*image.RGBA); ok {
		return rgba
	}
	bounds := src.Bounds()
	rgba := image.NewRGBA(bounds)
	draw.Draw(rgba, bounds, src, bounds.Min, draw.Src)
	return rgba
}
