package extract

import (
	"context"
	"strings"
	"unicode/utf8"
)

// TXTExtractor passes plain-text files through unchanged aside from
// scrubbing any invalid UTF-8 byte sequences, matching the reference
// implementation's flat "decode utf-8, replace errors" behavior rather
// than attempting legacy-encoding detection.
type TXTExtractor struct{}

func NewTXTExtractor() *TXTExtractor { return &TXTExtractor{} }

func (e *TXTExtractor) Name() string         { return "txt" }
func (e *TXTExtractor) Extensions() []string { return []string{"txt"} }

func (e *TXTExtractor) Extract(ctx context.Context, content []byte) (string, error) {
	if utf8.Valid(content) {
		return string(content), nil
	}
	return strings.ToValidUTF8(string(content), "�"), nil
}
