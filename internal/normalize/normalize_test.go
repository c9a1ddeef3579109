package normalize

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "CRLF to LF",
			input: "Row 1: k4\r\nRow 2: p4\r\n",
			want:  "Row 1: k4\nRow 2: p4",
		},
		{
			name:  "lone CR to LF",
			input: "Row 1: k4\rRow 2: p4",
			want:  "Row 1: k4\nRow 2: p4",
		},
		{
			name:  "collapses blank-line runs to one blank line",
			input: "Row 1: k4\n\n\n\nRow 2: p4",
			want:  "Row 1: k4\n\nRow 2: p4",
		},
		{
			name:  "rejoins hyphenated line-wrap continuations",
			input: "Row 1: k2tog, k4, yo, k2tog, k-\n4, yo",
			want:  "Row 1: k2tog, k4, yo, k2tog, k4, yo",
		},
		{
			name:  "trims surrounding whitespace",
			input: "  \n Row 1: k4 \n  ",
			want:  "Row 1: k4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestLines(t *testing.T) {
	normalized := Normalize("Row 1: k4\n\nRow 2: p4\n   \nRow 3: k4")
	lines := Lines(normalized)

	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3: %+v", len(lines), lines)
	}
	if lines[0].Text != "Row 1: k4" || lines[0].Number != 1 {
		t.Errorf("line 0 = %+v, want {1, \"Row 1: k4\"}", lines[0])
	}
	if lines[1].Text != "Row 2: p4" {
		t.Errorf("line 1 text = %q, want %q", lines[1].Text, "Row 2: p4")
	}
}
