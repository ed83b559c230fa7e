package service

import (
	"bytes"
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// TextExtractor produces plain text from an uploaded bill document. An
// empty result is treated by callers the same as an error: no usable text.
type TextExtractor interface {
	ExtractText(pdfData []byte) (string, error)
}

type pdfProcessor struct{}

func NewPDFProcessor() TextExtractor {
	return &pdfProcessor{}
}

func (p *pdfProcessor) ExtractText(pdfData []byte) (string, error) {
	// Structural validation up front catches truncated or non-PDF uploads
	// with a clear error instead of a reader panic further down.
	if err := validatePDF(pdfData); err != nil {
		return "", fmt.Errorf("document validation failed: %w", err)
	}

	r, err := pdf.NewReader(bytes.NewReader(pdfData), int64(len(pdfData)))
	if err != nil {
		return "", err
	}

	var textBuilder bytes.Buffer
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		pg := r.Page(pageIndex)
		if pg.V.IsNull() {
			continue
		}

		rows, _ := pg.GetTextByRow()
		for _, row := range rows {
			for _, word := range row.Content {
				textBuilder.WriteString(word.S)
			}
			textBuilder.WriteString("\n")
		}
	}
	return textBuilder.String(), nil
}

// validatePDF runs pdfcpu's validator over the upload. pdfcpu's API works
// on files, so the bytes take a round trip through a temp file.
func validatePDF(pdfData []byte) error {
	tempFile, err := os.CreateTemp("", "bill-*.pdf")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tempFile.Name())

	if _, err := tempFile.Write(pdfData); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to write pdf data: %w", err)
	}
	tempFile.Close()

	return api.ValidateFile(tempFile.Name(), model.NewDefaultConfiguration())
}
