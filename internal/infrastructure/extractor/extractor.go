// Package extractor turns uploaded files into plain text: direct decode for
// text-like formats, embedded-layer or recognition fallback for PDFs, and
// recognition for raster images.
package extractor

import (
	"context"
	"fmt"
	"image"
	"io"
	"strings"

	"github.com/dealsense/sales-intel/internal/core/domain"
	"github.com/dealsense/sales-intel/internal/core/ports"
)

// PDFEngine is the in-package seam for PDF structure access, so the dispatch
// and fallback policy stay testable without real PDF bytes.
type PDFEngine interface {
	TextLayer(data []byte) (text string, pages int, err error)
	RenderPages(data []byte, scale float64) ([]*image.RGBA, error)
}

// DefaultRenderScale rasterizes fallback pages at 4x the PDF's native page
// coordinate space to maximize recognition accuracy.
const DefaultRenderScale = 4.0

type Extractor struct {
	pdf         PDFEngine
	recognizer  ports.RecognitionClient
	office      ports.OfficeConverter
	renderScale float64
}

func New(pdf PDFEngine, recognizer ports.RecognitionClient, office ports.OfficeConverter) *Extractor {
	return &Extractor{
		pdf:         pdf,
		recognizer:  recognizer,
		office:      office,
		renderScale: DefaultRenderScale,
	}
}

type fileKind int

const (
	kindPlainText fileKind = iota
	kindPDF
	kindImage
	kindOffice
	kindSpreadsheet
	kindHTML
)

// classify picks the extraction path. First match wins; extensions compare
// case-insensitively.
func classify(filename, mimeType string) fileKind {
	name := strings.ToLower(filename)
	switch {
	case mimeType == "application/pdf" || mimeType == "application/x-pdf" || strings.HasSuffix(name, ".pdf"):
		return kindPDF
	case strings.HasPrefix(mimeType, "image/"):
		return kindImage
	case strings.HasSuffix(name, ".docx"):
		return kindOffice
	case strings.HasSuffix(name, ".xlsx"):
		return kindSpreadsheet
	case strings.HasSuffix(name, ".html") || strings.HasSuffix(name, ".htm"):
		return kindHTML
	default:
		return kindPlainText
	}
}

func (e *Extractor) Extract(ctx context.Context, doc *domain.Document, src io.Reader, sink ports.ProgressSink) (domain.Extraction, error) {
	if sink == nil {
		sink = nopSink{}
	}

	data, err := io.ReadAll(src)
	if err != nil {
		return domain.Extraction{}, fmt.Errorf("read source document: %w", err)
	}

	switch classify(doc.Filename, doc.MimeType) {
	case kindPDF:
		return e.extractPDF(ctx, data, sink)
	case kindImage:
		return e.extractImage(ctx, data, sink)
	case kindOffice:
		text, err := e.office.ExtractText(ctx, data, doc.Filename)
		if err != nil {
			return domain.Extraction{}, fmt.Errorf("office extract: %w", err)
		}
		return domain.Extraction{Text: strings.TrimSpace(text), Pages: 1}, nil
	case kindSpreadsheet:
		text, err := extractSpreadsheet(data)
		if err != nil {
			return domain.Extraction{}, fmt.Errorf("spreadsheet extract: %w", err)
		}
		return domain.Extraction{Text: text, Pages: 1}, nil
	case kindHTML:
		text, err := extractHTML(data)
		if err != nil {
			return domain.Extraction{}, fmt.Errorf("html extract: %w", err)
		}
		return domain.Extraction{Text: text, Pages: 1}, nil
	default:
		return domain.Extraction{Text: decodePlainText(data), Pages: 1}, nil
	}
}

// decodePlainText is the fallback path for .txt, .csv, .md and unknown
// types. Invalid byte sequences are replaced rather than rejected.
func decodePlainText(data []byte) string {
	return strings.TrimSpace(strings.ToValidUTF8(string(data), "�"))
}

type nopSink struct{}

func (nopSink) Progress(int)           {}
func (nopSink) RecognitionActive(bool) {}
