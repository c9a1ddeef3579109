// Package pipeline wires the five core stages together with the optional
// LLM augmentation and the format/grammar checks, in the fixed order
// spec.md §5 describes: normalize, tokenize+parse, evaluate, then format
// checks, with LLM augmentation (if configured) run deterministically
// first and merged in before evaluation. There is no polling, no worker
// pool, and no per-call cache in this package — a single call runs the
// whole sequence synchronously and returns.
package pipeline

import (
	"context"
	"log/slog"

	"stitchcheck/internal/evaluate"
	"stitchcheck/internal/format"
	"stitchcheck/internal/llm"
	"stitchcheck/internal/model"
	"stitchcheck/internal/patternparser"
)

// Options configures a single pipeline run. Augmenter may be nil, meaning
// no LLM augmentation is attempted.
type Options struct {
	Augmenter  llm.Augmenter
	UseLLM     bool
	Logger     *slog.Logger
}

// Run executes the full analysis pipeline over rawText and returns the
// resulting Pattern. It never returns an error for malformed pattern text
// — parse and evaluation ambiguity are recorded as model.Issues on the
// returned Pattern, per spec.md §7. An error is only returned if ctx is
// already canceled before the run starts.
func Run(ctx context.Context, rawText string, opts Options) (*model.Pattern, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("pipeline starting", "bytes", len(rawText))

	pattern := patternparser.ParsePattern(rawText)

	if opts.UseLLM && opts.Augmenter != nil {
		result, err := opts.Augmenter.Augment(ctx, rawText)
		if err != nil {
			logger.Warn("llm augmentation failed, continuing without it", "error", err)
		} else {
			llm.Merge(pattern, result)
		}
	}

	evaluate.Evaluate(pattern)

	pattern.Issues = append(pattern.Issues, format.CheckFormat(pattern)...)
	pattern.Issues = append(pattern.Issues, format.CheckGrammar(pattern)...)

	if opts.UseLLM && opts.Augmenter != nil {
		grammarIssues, err := opts.Augmenter.ReviewGrammar(ctx, rawText)
		if err != nil {
			logger.Warn("llm grammar review failed, continuing without it", "error", err)
		} else {
			pattern.Issues = append(pattern.Issues, dedupeGrammarIssues(pattern.Issues, grammarIssues)...)
		}
	}

	logger.Debug("pipeline finished", "issues", len(pattern.Issues), "sections", len(pattern.Sections))
	return pattern, nil
}

// dedupeGrammarIssues drops any LLM-sourced grammar issue whose message
// already appears among the deterministic ones, mirroring main.py's
// dedup-against-existing-messages behavior for llm_grammar_review.
func dedupeGrammarIssues(existing []model.Issue, incoming []model.Issue) []model.Issue {
	seen := make(map[string]bool, len(existing))
	for _, e := range existing {
		if e.Type == model.IssueGrammar {
			seen[e.Message] = true
		}
	}

	var out []model.Issue
	for _, i := range incoming {
		if seen[i.Message] {
			continue
		}
		out = append(out, i)
	}
	return out
}
