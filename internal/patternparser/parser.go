// Package patternparser implements the Pattern Parser stage: classifying
// normalized lines into sizes/gauge/materials/cast-on/section-heading/row
// lines and assembling the resulting Pattern aggregate.
package patternparser

import (
	"regexp"
	"strconv"
	"strings"

	"stitchcheck/internal/model"
	"stitchcheck/internal/normalize"
	"stitchcheck/internal/stitch"
)

var rowLineRe = regexp.MustCompile(
	`(?i)^(?:Next\s+)?(Row|Rnd|Round)\s+(\d+)\.?\s*(?:\(([RW]S)\))?\s*[:\-–—]\s*(.+)$`,
)

var sectionHeadingRe = regexp.MustCompile(`^(?:#{1,3}\s+|=+\s*)?([A-Z][A-Za-z\s]+)(?:\s*=+)?\s*$`)

var excludedHeadingWords = map[string]bool{
	"row": true, "rnd": true, "round": true, "repeat": true, "next": true,
}

var workUntilRe = regexp.MustCompile(`(?i)work\s+(?:as\s+above|as\s+established|even)\s+until`)

var gaugeLineRe = regexp.MustCompile(`(?i)^gauge\s*:\s*(.+)`)
var materialsLineRe = regexp.MustCompile(`(?i)^materials?\s*:\s*(.+)`)
var measurementsLineRe = regexp.MustCompile(`(?i)^(?:finished\s+measurements?|measurements?)\s*:\s*(.+)`)
var abbreviationsLineRe = regexp.MustCompile(`(?i)^abbreviations?\s*:\s*(.+)`)
var notesLineRe = regexp.MustCompile(`(?i)^notes?\s*:\s*(.+)`)
var castOnHintRe = regexp.MustCompile(`(?i)\b(?:CO|cast\s*on)\b`)

// midPatternCastOnRe recognizes an instruction that adds stitches partway
// through a section without starting a new row count (e.g. an underarm
// cast-on after binding off for an armhole: "CO 4 sts at beginning of next
// 2 rows"), a supplement over the original distillation's row-0-only
// cast-on handling.
var midPatternCastOnRe = regexp.MustCompile(`(?i)\b(?:CO|cast\s*on)\s+(\d+(?:\s*\([\d,\s]+\))?)\s*sts?\b`)

// ParsePattern classifies every line of normalized text and builds the
// resulting Pattern. raw is the original (pre-normalization) text, stored
// on Pattern.RawText for document-wide assertion scanning.
func ParsePattern(raw string) *model.Pattern {
	normalized := normalize.Normalize(raw)
	lines := normalize.Lines(normalized)

	p := &model.Pattern{RawText: raw}
	currentSection := &model.Section{Name: "Main"}
	var sections []model.Section

	haveCastOn := false

	for _, nl := range lines {
		text := nl.Text

		switch {
		case sizesLineRe.MatchString(text):
			p.Sizes = ParseSizeDefinitions(text)

		case gaugeLineRe.MatchString(text):
			p.Gauge = gaugeLineRe.FindStringSubmatch(text)[1]

		case materialsLineRe.MatchString(text):
			p.Materials = materialsLineRe.FindStringSubmatch(text)[1]

		case measurementsLineRe.MatchString(text):
			p.FinishedMeasurements = measurementsLineRe.FindStringSubmatch(text)[1]

		case abbreviationsLineRe.MatchString(text):
			p.Abbreviations = abbreviationsLineRe.FindStringSubmatch(text)[1]

		case notesLineRe.MatchString(text) && len(currentSection.Rows) == 0:
			p.Notes = notesLineRe.FindStringSubmatch(text)[1]

		case castOnHintRe.MatchString(text) && !rowLineRe.MatchString(text):
			counts := ParseCastOnLine(text)
			switch {
			case !haveCastOn && len(counts) > 0:
				p.CastOnCounts = MapSizesToCounts(p.Sizes, counts)
				row := model.Row{
					Number:        0,
					LineNumber:    nl.Number,
					RawText:       text,
					ExpectedSts:   cloneIntMap(p.CastOnCounts),
					CalculatedSts: cloneIntMap(p.CastOnCounts),
				}
				currentSection.Rows = append(currentSection.Rows, row)
				haveCastOn = true
			case haveCastOn && len(counts) == 1:
				// Mid-pattern "cast on N more" prose: the primary cast-on is
				// already recorded, so this line's single count becomes a
				// cast_on_extra row rather than overwriting cast_on_counts.
				row := model.Row{
					LineNumber:   nl.Number,
					RawText:      text,
					CastOnExtra:  broadcastToSizes(p.Sizes, counts[0]),
					SegmentLabel: "mid_pattern_cast_on",
				}
				currentSection.Rows = append(currentSection.Rows, row)
			}

		case isSectionHeading(text):
			if len(currentSection.Rows) > 0 || currentSection.Notes != "" {
				sections = append(sections, *currentSection)
			}
			m := sectionHeadingRe.FindStringSubmatch(text)
			currentSection = &model.Section{Name: strings.TrimSpace(m[1])}

		case workUntilRe.MatchString(text):
			row := model.Row{
				LineNumber:  nl.Number,
				RawText:     text,
				IsRepeatRef: true,
			}
			currentSection.Rows = append(currentSection.Rows, row)

		case rowLineRe.MatchString(text):
			m := rowLineRe.FindStringSubmatch(text)
			keyword := strings.ToLower(m[1])
			num, _ := strconv.Atoi(m[2])
			side := m[3]
			instr := m[4]

			row := model.Row{
				Number:     num,
				LineNumber: nl.Number,
				RawText:    text,
				Side:       side,
				IsRound:    keyword == "rnd" || keyword == "round",
			}

			if stated, ok := ExtractStatedStitchCount(instr); ok {
				counts := ParseMultiSizeValues(stated)
				if len(counts) > 0 {
					row.ExpectedSts = MapSizesToCounts(p.Sizes, counts)
				}
			}

			if extra := extractMidPatternCastOnExtra(instr, p.Sizes); extra != nil {
				row.CastOnExtra = extra
			}

			ops, blocks := stitch.ParseRowInstructions(instr)
			row.Operations = ops
			row.RepeatBlocks = blocks

			currentSection.Rows = append(currentSection.Rows, row)

		default:
			// Unclassified line: ignored, matching the reference parser's
			// behavior of silently skipping prose it doesn't recognize.
		}
	}

	if len(currentSection.Rows) > 0 || currentSection.Notes != "" || len(sections) == 0 {
		sections = append(sections, *currentSection)
	}
	if len(sections) == 0 {
		sections = []model.Section{{Name: "Main"}}
	}
	p.Sections = sections

	return p
}

func isSectionHeading(text string) bool {
	m := sectionHeadingRe.FindStringSubmatch(text)
	if m == nil {
		return false
	}
	name := strings.TrimSpace(m[1])
	if len(name) <= 3 {
		return false
	}
	first := strings.ToLower(strings.Fields(name)[0])
	if excludedHeadingWords[first] {
		return false
	}
	return true
}

func extractMidPatternCastOnExtra(instr string, sizes []string) map[string]int {
	m := midPatternCastOnRe.FindStringSubmatch(instr)
	if m == nil {
		return nil
	}
	counts := ParseMultiSizeValues(m[1])
	if len(counts) == 0 {
		return nil
	}
	return MapSizesToCounts(sizes, counts)
}

// broadcastToSizes applies a single cast-on-extra count uniformly to every
// declared size (or "Size1" if none are declared), matching the
// single-count prose form ("Cast on 8 sts at underarm") where the extra
// stitches apply equally regardless of size.
func broadcastToSizes(sizes []string, value int) map[string]int {
	if len(sizes) == 0 {
		return map[string]int{"Size1": value}
	}
	out := make(map[string]int, len(sizes))
	for _, s := range sizes {
		out[s] = value
	}
	return out
}

func cloneIntMap(m map[string]int) map[string]int {
	if m == nil {
		return nil
	}
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

