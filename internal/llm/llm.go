// Package llm implements the optional LLM-augmentation collaborator
// described in spec.md §6: a best-effort structured re-parse of the raw
// pattern text that fills in gaps the deterministic parser left empty, and
// a supplemental grammar review. The pipeline runs deterministically first
// and always treats augmentation as optional — a missing or failing
// Augmenter changes nothing about the result other than skipping the fill.
package llm

import (
	"context"

	"stitchcheck/internal/model"
)

// RowAugment is the LLM's reconstruction of a single row, keyed by row
// number in Result.Rows.
type RowAugment struct {
	Operations   []model.Operation
	RepeatBlocks []model.RepeatBlock
	ExpectedSts  map[string]int
	Side         string
	IsWorkEven   bool
}

// BetweenStep describes an instruction the LLM found between two numbered
// rows that the deterministic line-oriented parser has no row to attach
// to — most often a mid-pattern cast-on ("CO 4 sts for the underarm")
// described in prose rather than as its own numbered row.
type BetweenStep struct {
	AfterRow    int
	Description string
	CastOnExtra map[string]int
}

// Result is the LLM's structured reconstruction of the pattern, parallel
// to but independent from the deterministic Pattern Parser's output.
type Result struct {
	Sizes         []string
	CastOnCounts  map[string]int
	Rows          map[int]RowAugment
	SectionNames  []string
	BetweenSteps  []BetweenStep
}

// Augmenter is implemented by anything that can offer a second,
// LLM-backed opinion on a pattern's structure and grammar. Spec.md §6
// names this collaborator llm_parse; ReviewGrammar is a supplemental
// capability the reference implementation also exposes
// (llm_service.py:llm_grammar_review) that spec.md's distillation omitted.
type Augmenter interface {
	Augment(ctx context.Context, rawText string) (*Result, error)
	ReviewGrammar(ctx context.Context, rawText string) ([]model.Issue, error)
}
