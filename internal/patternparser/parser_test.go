package patternparser

import (
	"testing"

	"stitchcheck/internal/model"
)

const ribbingPattern = `Sizes: S (M, L)
CO 60 (68, 76) sts

Body
Row 1 (RS): *k1, p1* to end
Row 2 (WS): *p1, k1* to end
`

func assertParsesWithoutPanic(t *testing.T, input string) *model.Pattern {
	t.Helper()
	p := ParsePattern(input)
	if p == nil {
		t.Fatalf("ParsePattern(%q) returned nil", input)
	}
	return p
}

func TestParsePatternSizesAndCastOn(t *testing.T) {
	p := assertParsesWithoutPanic(t, ribbingPattern)

	wantSizes := []string{"S", "M", "L"}
	if len(p.Sizes) != len(wantSizes) {
		t.Fatalf("sizes = %v, want %v", p.Sizes, wantSizes)
	}
	for i, s := range wantSizes {
		if p.Sizes[i] != s {
			t.Errorf("sizes[%d] = %q, want %q", i, p.Sizes[i], s)
		}
	}

	wantCastOn := map[string]int{"S": 60, "M": 68, "L": 76}
	for size, count := range wantCastOn {
		if p.CastOnCounts[size] != count {
			t.Errorf("cast-on[%s] = %d, want %d", size, p.CastOnCounts[size], count)
		}
	}
}

func TestParsePatternSections(t *testing.T) {
	p := assertParsesWithoutPanic(t, ribbingPattern)

	var body *model.Section
	for i := range p.Sections {
		if p.Sections[i].Name == "Body" {
			body = &p.Sections[i]
		}
	}
	if body == nil {
		t.Fatalf("no Body section found among %+v", p.Sections)
	}

	if len(body.Rows) != 2 {
		t.Fatalf("Body has %d rows, want 2: %+v", len(body.Rows), body.Rows)
	}
	if body.Rows[0].Number != 1 || body.Rows[0].Side != "RS" {
		t.Errorf("row 0 = %+v, want Number=1 Side=RS", body.Rows[0])
	}
	if body.Rows[1].Number != 2 || body.Rows[1].Side != "WS" {
		t.Errorf("row 1 = %+v, want Number=2 Side=WS", body.Rows[1])
	}
	if len(body.Rows[0].RepeatBlocks) != 1 {
		t.Errorf("row 0 repeat blocks = %+v, want 1", body.Rows[0].RepeatBlocks)
	}
}

func TestParsePatternCastOnRowIsSynthesizedAsRowZero(t *testing.T) {
	p := assertParsesWithoutPanic(t, ribbingPattern)

	var castOnRow *model.Row
	for si := range p.Sections {
		for ri := range p.Sections[si].Rows {
			if p.Sections[si].Rows[ri].Number == 0 {
				castOnRow = &p.Sections[si].Rows[ri]
			}
		}
	}
	if castOnRow == nil {
		t.Fatal("no synthetic Row 0 found for the cast-on line")
	}
	if castOnRow.ExpectedSts["M"] != 68 {
		t.Errorf("Row 0 expected sts[M] = %d, want 68", castOnRow.ExpectedSts["M"])
	}
}

func TestParsePatternRowWithStatedStitchCount(t *testing.T) {
	text := "CO 40 sts\nRow 1: k2tog, k36, k2tog (38 sts)\n"
	p := assertParsesWithoutPanic(t, text)

	var row1 *model.Row
	for si := range p.Sections {
		for ri := range p.Sections[si].Rows {
			if p.Sections[si].Rows[ri].Number == 1 {
				row1 = &p.Sections[si].Rows[ri]
			}
		}
	}
	if row1 == nil {
		t.Fatal("row 1 not found")
	}
	if row1.ExpectedSts["Size1"] != 38 {
		t.Errorf("row 1 expected sts = %v, want Size1:38", row1.ExpectedSts)
	}
}

func TestParsePatternStandaloneMidPatternCastOnExtra(t *testing.T) {
	text := "CO 40 sts\nRow 5: k40\nCast on 8 sts at underarm\nRow 6: k48\n"
	p := assertParsesWithoutPanic(t, text)

	var extraRow *model.Row
	for si := range p.Sections {
		for ri := range p.Sections[si].Rows {
			r := &p.Sections[si].Rows[ri]
			if r.SegmentLabel == "mid_pattern_cast_on" {
				extraRow = r
			}
		}
	}
	if extraRow == nil {
		t.Fatal("expected a synthesized cast_on_extra row for the standalone 'Cast on 8 sts' prose line")
	}
	if extraRow.CastOnExtra["Size1"] != 8 {
		t.Errorf("extra row cast-on extra = %v, want Size1:8", extraRow.CastOnExtra)
	}

	// The primary cast-on must remain untouched by the later standalone line.
	if p.CastOnCounts["Size1"] != 40 {
		t.Errorf("cast_on_counts = %v, want Size1:40 (unaffected by the mid-pattern line)", p.CastOnCounts)
	}
}

func TestParsePatternMidPatternCastOnExtra(t *testing.T) {
	text := "CO 40 sts\nRow 10: CO 4 sts at beginning of row\n"
	p := assertParsesWithoutPanic(t, text)

	var row10 *model.Row
	for si := range p.Sections {
		for ri := range p.Sections[si].Rows {
			if p.Sections[si].Rows[ri].Number == 10 {
				row10 = &p.Sections[si].Rows[ri]
			}
		}
	}
	if row10 == nil {
		t.Fatal("row 10 not found")
	}
	if row10.CastOnExtra["Size1"] != 4 {
		t.Errorf("row 10 cast-on extra = %v, want Size1:4", row10.CastOnExtra)
	}
}
