package extractor

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/ledongthuc/pdf"

	"github.com/dealsense/sales-intel/internal/core/domain"
	"github.com/dealsense/sales-intel/internal/core/ports"
	"github.com/dealsense/sales-intel/internal/infrastructure/imaging"
)

// minCharsPerPage decides whether a PDF's embedded text layer is
// trustworthy. Below 50 extracted characters per page on average the file is
// treated as a scan and re-derived through recognition.
const minCharsPerPage = 50

func needsRecognition(text string, pages int) bool {
	if pages <= 0 {
		return false
	}
	return len(strings.TrimSpace(text)) < minCharsPerPage*pages
}

func (e *Extractor) extractPDF(ctx context.Context, data []byte, sink ports.ProgressSink) (domain.Extraction, error) {
	text, pages, err := e.pdf.TextLayer(data)
	if err != nil {
		return domain.Extraction{}, fmt.Errorf("read pdf text layer: %w", err)
	}

	if !needsRecognition(text, pages) {
		return domain.Extraction{Text: strings.TrimSpace(text), Pages: pages}, nil
	}

	sink.RecognitionActive(true)
	defer func() {
		sink.Progress(0)
		sink.RecognitionActive(false)
	}()

	images, err := e.pdf.RenderPages(data, e.renderScale)
	if err != nil {
		return domain.Extraction{}, fmt.Errorf("render pdf pages: %w", err)
	}

	var out strings.Builder
	for i, img := range images {
		imaging.Preprocess(img)
		encoded, err := imaging.EncodePNG(img)
		if err != nil {
			return domain.Extraction{}, fmt.Errorf("encode page %d: %w", i+1, err)
		}
		pageText, err := e.recognizer.Recognize(ctx, encoded, "image/png")
		if err != nil {
			return domain.Extraction{}, fmt.Errorf("recognize page %d: %w", i+1, err)
		}
		fmt.Fprintf(&out, "--- PAGE %d ---\n%s\n\n", i+1, pageText)
		sink.Progress(int(math.Round(100 * float64(i+1) / float64(len(images)))))
	}

	return domain.Extraction{Text: out.String(), Pages: len(images), UsedRecognition: true}, nil
}

// FitzEngine reads PDFs with ledongthuc/pdf for the embedded text layer and
// go-fitz for rasterization.
type FitzEngine struct{}

func NewFitzEngine() *FitzEngine {
	return &FitzEngine{}
}

// TextLayer joins each page's text fragments with spaces and pages with
// newlines, without rendering anything.
func (*FitzEngine) TextLayer(data []byte) (string, int, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, fmt.Errorf("open pdf: %w", err)
	}

	total := reader.NumPage()
	pageTexts := make([]string, 0, total)
	for n := 1; n <= total; n++ {
		page := reader.Page(n)
		if page.V.IsNull() {
			pageTexts = append(pageTexts, "")
			continue
		}
		fragments := page.Content().Text
		parts := make([]string, 0, len(fragments))
		for _, fragment := range fragments {
			parts = append(parts, fragment.S)
		}
		pageTexts = append(pageTexts, strings.Join(parts, " "))
	}

	return strings.Join(pageTexts, "\n"), total, nil
}

// RenderPages rasterizes every page at scale times the native 72dpi page
// coordinate space, in ascending page order.
func (*FitzEngine) RenderPages(data []byte, scale float64) ([]*image.RGBA, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("open pdf for rendering: %w", err)
	}
	defer doc.Close()

	if scale <= 0 {
		scale = DefaultRenderScale
	}
	dpi := 72 * scale

	pages := make([]*image.RGBA, 0, doc.NumPage())
	for n := 0; n < doc.NumPage(); n++ {
		img, err := doc.ImageDPI(n, dpi)
		if err != nil {
			return nil, fmt.Errorf("render page %d: %w", n+1, err)
		}
		pages = append(pages, img)
	}
	return pages, nil
}
