package extract

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
)

// PDFExtractor extracts text from .pdf files by shelling out to
// pdftotext when it's available on PATH, falling back to a best-effort
// regex scan of parenthesized text-showing operators in the raw PDF
// content stream when it isn't.
type PDFExtractor struct{}

func NewPDFExtractor() *PDFExtractor { return &PDFExtractor{} }

func (e *PDFExtractor) Name() string         { return "pdftotext" }
func (e *PDFExtractor) Extensions() []string { return []string{"pdf"} }

func (e *PDFExtractor) Extract(ctx context.Context, content []byte) (string, error) {
	text, err := e.extractWithPdftotext(ctx, content)
	if err != nil {
		text = e.extractSimple(content)
	}
	return text, nil
}

func (e *PDFExtractor) extractWithPdftotext(ctx context.Context, content []byte) (string, error) {
	cmd := exec.CommandContext(ctx, "pdftotext", "-layout", "-", "-")
	cmd.Stdin = bytes.NewReader(content)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("pdftotext: %w (stderr: %s)", err, stderr.String())
	}
	return stdout.String(), nil
}

var pdfParenTextRe = regexp.MustCompile(`\(([^)]+)\)`)

// extractSimple pulls text out of PDF "show text" operators directly,
// for environments without pdftotext installed. It recovers most plain
// ASCII content but not layout or non-Latin encodings.
func (e *PDFExtractor) extractSimple(content []byte) string {
	var b strings.Builder
	matches := pdfParenTextRe.FindAllStringSubmatch(string(content), -1)
	for _, m := range matches {
		b.WriteString(m[1])
		b.WriteString(" ")
	}
	return b.String()
}
