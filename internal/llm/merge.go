package llm

import (
	"fmt"

	"stitchcheck/internal/model"
)

// Merge folds an LLM Result into pattern, filling gaps the deterministic
// parser left rather than overwriting anything it already found. The
// rules, in order, mirror llm_enhanced_parser.py's merge semantics:
//
//  1. Sizes and cast-on counts are only taken from the LLM result if the
//     deterministic parser found none at all.
//  2. Per row: if the LLM marks the row as work-even and the deterministic
//     row has no WorkEven operation of its own, replace its Operations with
//     a single WorkEven and clear its RepeatBlocks.
//  3. Otherwise, if the deterministic row has no Operations and no
//     RepeatBlocks at all but the LLM found some, adopt the LLM's.
//  4. Missing per-row Side and ExpectedSts are filled in only when the
//     deterministic row left them empty — a deterministic value never
//     loses to an LLM one.
//  5. Section names the LLM found but the deterministic parser didn't
//     become llm_insight Issues, not new Sections: the document structure
//     stays whatever the deterministic parser decided.
//  6. BetweenSteps become synthetic cast-on-extra Rows inserted
//     immediately after the row they reference.
func Merge(p *model.Pattern, result *Result) {
	if result == nil {
		return
	}

	if len(p.Sizes) == 0 && len(result.Sizes) > 0 {
		p.Sizes = result.Sizes
	}
	if len(p.CastOnCounts) == 0 && len(result.CastOnCounts) > 0 {
		p.CastOnCounts = result.CastOnCounts
	}

	knownSections := make(map[string]bool)
	for si := range p.Sections {
		section := &p.Sections[si]
		knownSections[section.Name] = true
		for ri := range section.Rows {
			mergeRow(&section.Rows[ri], result.Rows)
		}
	}

	for _, name := range result.SectionNames {
		if !knownSections[name] {
			p.Issues = append(p.Issues, model.Issue{
				Type: model.IssueLLMInsight, Severity: model.SeverityWarning,
				Message: fmt.Sprintf("LLM detected a possible section %q not found by the deterministic parser", name),
				Source:  "llm",
			})
		}
	}

	applyBetweenSteps(p, result.BetweenSteps)
}

func mergeRow(row *model.Row, augments map[int]RowAugment) {
	aug, ok := augments[row.Number]
	if !ok {
		return
	}

	hasWorkEven := false
	for _, op := range row.Operations {
		if op.Kind == model.OpWorkEven {
			hasWorkEven = true
		}
	}

	switch {
	case aug.IsWorkEven && !hasWorkEven:
		row.Operations = []model.Operation{{Raw: row.RawText, Kind: model.OpWorkEven, Count: 1}}
		row.RepeatBlocks = nil
	case len(row.Operations) == 0 && len(row.RepeatBlocks) == 0 && (len(aug.Operations) > 0 || len(aug.RepeatBlocks) > 0):
		row.Operations = aug.Operations
		row.RepeatBlocks = aug.RepeatBlocks
	}

	if len(row.ExpectedSts) == 0 && len(aug.ExpectedSts) > 0 {
		row.ExpectedSts = aug.ExpectedSts
	}
	if row.Side == "" && aug.Side != "" {
		row.Side = aug.Side
	}
}

func applyBetweenSteps(p *model.Pattern, steps []BetweenStep) {
	if len(steps) == 0 {
		return
	}
	byAfter := make(map[int][]BetweenStep)
	for _, s := range steps {
		byAfter[s.AfterRow] = append(byAfter[s.AfterRow], s)
	}

	for si := range p.Sections {
		section := &p.Sections[si]
		var rebuilt []model.Row
		for _, row := range section.Rows {
			rebuilt = append(rebuilt, row)
			for _, s := range byAfter[row.Number] {
				rebuilt = append(rebuilt, model.Row{
					RawText:     s.Description,
					CastOnExtra: s.CastOnExtra,
					SegmentLabel: "llm_between_steps",
				})
			}
		}
		section.Rows = rebuilt
	}
}
