package report

import (
	"bytes"
	"context"
	"fmt"
	"sync/atomic"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// DocumentEngine loads a raw document buffer into a page-addressable
// document. Ready reports whether the engine has finished initializing;
// the extractor polls it before loading.
type DocumentEngine interface {
	Ready() bool
	Load(ctx context.Context, data []byte) (Document, error)
}

// Document is one loaded report, addressable by 1-indexed page number
type Document interface {
	PageCount() int
	PageFragments(pageNum int) ([]PositionedFragment, error)
	Close() error
}

// PDFEngine is the production DocumentEngine. It validates the buffer as
// a PDF with pdfcpu in relaxed mode, then reads positioned text through
// ledongthuc/pdf, which exposes per-fragment coordinates.
type PDFEngine struct {
	ready atomic.Bool
}

// NewPDFEngine creates a ready-to-use PDF engine
func NewPDFEngine() *PDFEngine {
	e := &PDFEngine{}
	e.ready.Store(true)
	return e
}

// Ready implements DocumentEngine
func (e *PDFEngine) Ready() bool {
	return e.ready.Load()
}

// Load implements DocumentEngine. A buffer that does not parse as a PDF
// fails with ErrInvalidInput; a buffer that passes validation but cannot
// be opened for text extraction fails with a ProcessingError.
func (e *PDFEngine) Load(ctx context.Context, data []byte) (Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty buffer", ErrInvalidInput)
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	pdfCtx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := pdfCtx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &ProcessingError{Op: "open", Err: err}
	}

	return &pdfDocument{reader: reader}, nil
}

type pdfDocument struct {
	reader *pdf.Reader
}

func (d *pdfDocument) PageCount() int {
	return d.reader.NumPage()
}

func (d *pdfDocument) PageFragments(pageNum int) (fragments []PositionedFragment, err error) {
	if pageNum < 1 || pageNum > d.reader.NumPage() {
		return nil, &ProcessingError{
			Op:   "page_fragments",
			Page: pageNum,
			Err:  fmt.Errorf("invalid page number (document has %d pages)", d.reader.NumPage()),
		}
	}

	// Content() can panic on malformed content streams.
	defer func() {
		if r := recover(); r != nil {
			fragments = nil
			err = &ProcessingError{
				Op:   "page_fragments",
				Page: pageNum,
				Err:  fmt.Errorf("panic while reading page content: %v", r),
			}
		}
	}()

	page := d.reader.Page(pageNum)
	if page.V.IsNull() {
		return nil, nil
	}

	content := page.Content()
	fragments = make([]PositionedFragment, 0, len(content.Text))
	for _, t := range content.Text {
		fragments = append(fragments, PositionedFragment{X: t.X, Y: t.Y, Text: t.S})
	}
	return fragments, nil
}

func (d *pdfDocument) Close() error {
	return nil
}
