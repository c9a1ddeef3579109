package pipeline

import (
	"context"
	"errors"
	"testing"

	"stitchcheck/internal/llm"
	"stitchcheck/internal/model"
)

const simplePattern = `Sizes: S (M)
CO 10 (12) sts

Body
Row 1: k2tog, k6, k2tog (8 sts)
Row 2: purl across
`

func TestRunProducesEvaluatedPattern(t *testing.T) {
	p, err := Run(context.Background(), simplePattern, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Sections) == 0 {
		t.Fatal("expected at least one section")
	}
	if p.CastOnCounts["S"] != 10 {
		t.Errorf("cast-on[S] = %d, want 10", p.CastOnCounts["S"])
	}
}

func TestRunReturnsErrorForCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, simplePattern, Options{})
	if err == nil {
		t.Fatal("expected an error for an already-canceled context")
	}
}

type fakeAugmenter struct {
	result     *llm.Result
	augmentErr error
	grammar    []model.Issue
	grammarErr error
}

func (f *fakeAugmenter) Augment(ctx context.Context, rawText string) (*llm.Result, error) {
	if f.augmentErr != nil {
		return nil, f.augmentErr
	}
	return f.result, nil
}

func (f *fakeAugmenter) ReviewGrammar(ctx context.Context, rawText string) ([]model.Issue, error) {
	if f.grammarErr != nil {
		return nil, f.grammarErr
	}
	return f.grammar, nil
}

func TestRunSwallowsAugmenterFailure(t *testing.T) {
	aug := &fakeAugmenter{augmentErr: errors.New("llm unavailable")}
	p, err := Run(context.Background(), simplePattern, Options{Augmenter: aug, UseLLM: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Sections) == 0 {
		t.Fatal("pipeline should still produce a result when augmentation fails")
	}
}

func TestRunMergesAugmenterResultAndReviewsGrammar(t *testing.T) {
	aug := &fakeAugmenter{
		result: &llm.Result{SectionNames: []string{"Cuff"}},
		grammar: []model.Issue{
			{Type: model.IssueGrammar, Message: "llm-only grammar note", Severity: model.SeverityWarning},
		},
	}
	p, err := Run(context.Background(), simplePattern, Options{Augmenter: aug, UseLLM: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	found := false
	for _, i := range p.Issues {
		if i.Message == "llm-only grammar note" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected the LLM grammar issue to be merged in, got %+v", p.Issues)
	}
}

func TestDedupeGrammarIssuesDropsDuplicateMessages(t *testing.T) {
	existing := []model.Issue{{Type: model.IssueGrammar, Message: "possible typo: knt"}}
	incoming := []model.Issue{
		{Type: model.IssueGrammar, Message: "possible typo: knt"},
		{Type: model.IssueGrammar, Message: "inconsistent terminology"},
	}
	got := dedupeGrammarIssues(existing, incoming)
	if len(got) != 1 || got[0].Message != "inconsistent terminology" {
		t.Errorf("got %+v, want only the non-duplicate issue", got)
	}
}
