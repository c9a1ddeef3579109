package extract

import (
	"context"
	"errors"
	"testing"
)

func TestRegistryExtractDispatchesByExtension(t *testing.T) {
	r := NewRegistry()
	got, err := r.Extract(context.Background(), "pattern.txt", []byte("Row 1: k4"))
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if got != "Row 1: k4" {
		t.Errorf("got %q, want %q", got, "Row 1: k4")
	}
}

func TestRegistryExtractUnsupportedType(t *testing.T) {
	r := NewRegistry()
	_, err := r.Extract(context.Background(), "pattern.xlsx", []byte("irrelevant"))
	if !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("err = %v, want wrapping ErrUnsupportedType", err)
	}
}

func TestRegistryExtractIsCaseInsensitive(t *testing.T) {
	r := NewRegistry()
	_, err := r.Extract(context.Background(), "PATTERN.TXT", []byte("hello"))
	if err != nil {
		t.Errorf("unexpected error for uppercase extension: %v", err)
	}
}
