package extract

import (
	"context"
	"strings"
	"testing"
)

func TestTXTExtractorPassesValidUTF8Through(t *testing.T) {
	e := NewTXTExtractor()
	content := "Row 1: k4, p4\n"
	got, err := e.Extract(context.Background(), []byte(content))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != content {
		t.Errorf("got %q, want %q", got, content)
	}
}

func TestTXTExtractorScrubsInvalidUTF8(t *testing.T) {
	e := NewTXTExtractor()
	content := []byte{'k', '4', 0xff, 'p', '4'}
	got, err := e.Extract(context.Background(), content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "k4") || !strings.Contains(got, "p4") {
		t.Errorf("got %q, expected scrubbed text retaining ascii content", got)
	}
}
