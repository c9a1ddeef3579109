// Package evaluate implements the Stitch Count Evaluator stage: simulating
// every Row's operations and RepeatBlocks per size, reconciling against
// stated stitch-count assertions, and flagging repetition and consistency
// problems as Issues on the Pattern.
package evaluate

import (
	"fmt"
	"sort"

	"stitchcheck/internal/assertions"
	"stitchcheck/internal/model"
	"stitchcheck/internal/normalize"
)

// Evaluate runs the evaluator over every size in the pattern, writing
// Row.CalculatedSts and appending model.Issues to Pattern.Issues. It
// mutates p in place and also returns it for convenient chaining.
func Evaluate(p *model.Pattern) *model.Pattern {
	sizes := p.Sizes
	if len(sizes) == 0 {
		sizes = []string{"Size1"}
	}
	castOn := p.CastOnCounts
	if castOn == nil {
		castOn = map[string]int{}
		for _, s := range sizes {
			castOn[s] = 0
		}
	}

	for _, size := range sizes {
		current := castOn[size]
		for si := range p.Sections {
			section := &p.Sections[si]
			for ri := range section.Rows {
				row := &section.Rows[ri]

				if row.Number == 0 && len(row.CastOnExtra) == 0 {
					if exp, ok := row.ExpectedSts[size]; ok {
						current = exp
					}
					setCalculated(row, size, current)
					continue
				}

				ending, errs, warns := calculateRowStitches(*row, current, size)
				setCalculated(row, size, ending)
				current = ending

				for _, e := range errs {
					row.Errors = append(row.Errors, e)
					p.Issues = append(p.Issues, model.Issue{
						Type: model.IssueStitchCount, Severity: model.SeverityError,
						Size: size, RowNum: row.Number, Line: row.LineNumber,
						Message: e, Source: "deterministic",
					})
				}
				for _, w := range warns {
					row.Warnings = append(row.Warnings, w)
					p.Issues = append(p.Issues, model.Issue{
						Type: model.IssueStitchCountWarning, Severity: model.SeverityWarning,
						Size: size, RowNum: row.Number, Line: row.LineNumber,
						Message: w, Source: "deterministic",
					})
				}
			}
		}
	}

	checkCrossRowConsistency(p, sizes)
	checkDocumentAssertions(p, sizes)

	return p
}

func setCalculated(row *model.Row, size string, value int) {
	if row.CalculatedSts == nil {
		row.CalculatedSts = map[string]int{}
	}
	row.CalculatedSts[size] = value
}

// calculateRowStitches simulates a single row's effect on the running
// stitch count for one size, then reconciles against any stated
// expected-count assertion the row itself carries (its end-of-row count,
// extracted by the pattern parser).
func calculateRowStitches(row model.Row, startingSts int, size string) (ending int, errs []string, warns []string) {
	if row.IsRepeatRef {
		return startingSts, nil, nil
	}
	if extra, ok := row.CastOnExtra[size]; ok {
		return startingSts + extra, nil, nil
	}
	for _, op := range row.Operations {
		if op.Kind == model.OpWorkEven {
			return startingSts, nil, nil
		}
	}

	netChange := 0
	stsAccounted := 0
	for _, op := range row.Operations {
		netChange += op.TotalEffect()
		stsAccounted += op.TotalConsumed()
	}

	remaining := startingSts - stsAccounted
	for _, block := range row.RepeatBlocks {
		net, warn, errMsg := evalRepeatBlock(block, remaining)
		netChange += net
		if errMsg != "" {
			errs = append(errs, errMsg)
		}
		if warn != "" {
			warns = append(warns, warn)
		}
		remaining = remainingAfterBlock(block, remaining)
	}

	ending = startingSts + netChange

	if expected, ok := row.ExpectedSts[size]; ok {
		switch {
		case expected == startingSts && netChange != 0:
			// Stale assertion: the stated count matches where the row
			// started, not where it should end — likely copied forward
			// from a previous size or an earlier draft. Suppressed rather
			// than flagged.
		case netChange == 0 && expected < ending:
			// Another stale-assertion shape: no operations changed the
			// count but the stated value is lower than the running total,
			// suggesting the assertion predates a later insertion.
		case ending != expected:
			var msg string
			switch {
			case netChange > 0:
				msg = fmt.Sprintf(
					"Row %d: Stitch count mismatch: calculated %d sts (includes +%d from increases in this row), pattern states %d sts",
					row.Number, ending, netChange, expected,
				)
			case netChange < 0:
				msg = fmt.Sprintf(
					"Row %d: Stitch count mismatch: calculated %d sts (includes %d from decreases in this row), pattern states %d sts",
					row.Number, ending, netChange, expected,
				)
			default:
				msg = fmt.Sprintf(
					"Row %d: Stitch count mismatch: calculated %d sts, pattern states %d sts",
					row.Number, ending, expected,
				)
			}
			errs = append(errs, msg)
		}
	}

	if ending < 0 {
		ending = 0
	}
	return ending, errs, warns
}

// checkCrossRowConsistency flags rows whose stitch count changed even
// though the parser found no Operations or RepeatBlocks to explain the
// change — usually a sign the tokenizer missed something.
func checkCrossRowConsistency(p *model.Pattern, sizes []string) {
	for _, size := range sizes {
		prevEnd, havePrev := 0, false
		for si := range p.Sections {
			section := &p.Sections[si]
			for ri := range section.Rows {
				row := &section.Rows[ri]
				if row.IsRepeatRef {
					continue
				}
				curr, ok := row.CalculatedSts[size]
				if !ok {
					continue
				}
				if havePrev && row.Number != 0 {
					_, hasExpected := row.ExpectedSts[size]
					if !hasExpected && len(row.Operations) == 0 && len(row.RepeatBlocks) == 0 && curr != prevEnd {
						msg := fmt.Sprintf(
							"Row %d has no parsed operations but stitch count changed from %d to %d",
							row.Number, prevEnd, curr,
						)
						row.Warnings = append(row.Warnings, msg)
						p.Issues = append(p.Issues, model.Issue{
							Type: model.IssueConsistency, Severity: model.SeverityWarning,
							Size: size, RowNum: row.Number, Line: row.LineNumber,
							Message: msg, Source: "deterministic",
						})
					}
				}
				prevEnd = curr
				havePrev = true
			}
		}
	}
}

type rowPos struct {
	line int
	row  *model.Row
}

// checkDocumentAssertions cross-checks prose stitch-count claims found
// anywhere in the document (not just at row ends) against the calculated
// running count at that point in the pattern.
func checkDocumentAssertions(p *model.Pattern, sizes []string) {
	var positions []rowPos
	for si := range p.Sections {
		section := &p.Sections[si]
		for ri := range section.Rows {
			positions = append(positions, rowPos{line: section.Rows[ri].LineNumber, row: &section.Rows[ri]})
		}
	}
	sort.Slice(positions, func(i, j int) bool { return positions[i].line < positions[j].line })
	if len(positions) == 0 {
		return
	}

	found := assertions.ExtractAll(normalize.Normalize(p.RawText))
	for _, a := range found {
		var applicable *rowPos
		for i := range positions {
			if positions[i].line <= a.Line {
				applicable = &positions[i]
			} else {
				break
			}
		}
		if applicable == nil || applicable.line == a.Line {
			continue
		}

		var sizeCounts map[string]int
		switch {
		case len(a.Counts) == len(sizes):
			sizeCounts = map[string]int{}
			for i, s := range sizes {
				sizeCounts[s] = a.Counts[i]
			}
		case len(a.Counts) == 1:
			sizeCounts = map[string]int{}
			for _, s := range sizes {
				sizeCounts[s] = a.Counts[0]
			}
		default:
			continue
		}

		row := applicable.row
		for _, size := range sizes {
			expected, ok := sizeCounts[size]
			if !ok {
				continue
			}
			calc, ok := row.CalculatedSts[size]
			if !ok || calc == expected {
				continue
			}
			msg := fmt.Sprintf(
				"Stated count in pattern (%s) is %d sts but computed count at this point is %d sts",
				a.Raw, expected, calc,
			)
			label := fmt.Sprintf("Row %d (pattern states count at line %d)", row.Number, a.Line)
			p.Issues = append(p.Issues, model.Issue{
				Type: model.IssueStitchCount, Severity: model.SeverityError,
				Size: size, RowNum: row.Number, Line: a.Line,
				Message: label + ": " + msg, Source: "deterministic",
			})
		}
	}
}
