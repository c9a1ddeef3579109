package extract

import "testing"

func TestDOCXExtractorFallbackExtractsRunText(t *testing.T) {
	e := NewDOCXExtractor()
	malformed := []byte(`<w:p><w:r><w:t>Row 1: k4</w:t></w:r></w:p><w:r><w:t>Row 2: p4</w:t>`)

	got, err := e.fallbackExtract(malformed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Row 1: k4 Row 2: p4" {
		t.Errorf("got %q, want %q", got, "Row 1: k4 Row 2: p4")
	}
}

func TestDOCXExtractorCleanNamespacesStripsPrefix(t *testing.T) {
	e := NewDOCXExtractor()
	src := []byte(`<w:document xmlns:w="ns"><w:body><w:p></w:p></w:body></w:document>`)
	cleaned := string(e.cleanNamespaces(src))
	if cleaned != `<document><body><p></p></body></document>` {
		t.Errorf("got %q", cleaned)
	}
}
