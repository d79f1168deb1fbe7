package export

import (
	"fmt"
	"slices"

	"github.com/mandolyte/mdtopdf"
)

var paperSizes = []string{"A3", "A4", "A5", "Letter", "Legal"}

// PDFOptions is the page layout of a deck handout.
type PDFOptions struct {
	PaperSize string
	Landscape bool
}

// DefaultPDFOptions prints portrait A4 pages.
var DefaultPDFOptions = PDFOptions{PaperSize: "A4"}

func (o PDFOptions) orientation() string {
	if o.Landscape {
		return "L"
	}
	return "P"
}

// Validate rejects paper sizes the renderer does not know.
func (o PDFOptions) Validate() error {
	if !slices.Contains(paperSizes, o.PaperSize) {
		return fmt.Errorf("unsupported paper size %q, must be one of %v", o.PaperSize, paperSizes)
	}
	return nil
}

// RenderPDF writes the rendered markdown of a deck to pdfPath.
func RenderPDF(markdown []byte, pdfPath string, opts PDFOptions) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	renderer := mdtopdf.NewPdfRenderer(opts.orientation(), opts.PaperSize, pdfPath, "", nil, mdtopdf.LIGHT)
	if err := renderer.Process(markdown); err != nil {
		return fmt.Errorf("render %s: %w", pdfPath, err)
	}
	return nil
}
