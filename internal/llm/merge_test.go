package llm

import (
	"testing"

	"stitchcheck/internal/model"
)

func TestMergeFillsSizesOnlyWhenAbsent(t *testing.T) {
	p := &model.Pattern{Sizes: []string{"S"}}
	Merge(p, &Result{Sizes: []string{"S", "M", "L"}})
	if len(p.Sizes) != 1 || p.Sizes[0] != "S" {
		t.Errorf("deterministic sizes should not be overwritten, got %v", p.Sizes)
	}
}

func TestMergeAdoptsLLMOpsWhenRowEmpty(t *testing.T) {
	p := &model.Pattern{
		Sections: []model.Section{{Name: "Body", Rows: []model.Row{{Number: 1}}}},
	}
	result := &Result{
		Rows: map[int]RowAugment{
			1: {Operations: []model.Operation{{Kind: model.OpKnit, Count: 4}}},
		},
	}
	Merge(p, result)

	row := p.Sections[0].Rows[0]
	if len(row.Operations) != 1 || row.Operations[0].Kind != model.OpKnit {
		t.Errorf("expected row to adopt the LLM's operations, got %+v", row)
	}
}

func TestMergeDoesNotOverrideExistingOps(t *testing.T) {
	p := &model.Pattern{
		Sections: []model.Section{{Name: "Body", Rows: []model.Row{
			{Number: 1, Operations: []model.Operation{{Kind: model.OpPurl, Count: 4}}},
		}}},
	}
	result := &Result{
		Rows: map[int]RowAugment{
			1: {Operations: []model.Operation{{Kind: model.OpKnit, Count: 4}}},
		},
	}
	Merge(p, result)

	row := p.Sections[0].Rows[0]
	if row.Operations[0].Kind != model.OpPurl {
		t.Errorf("deterministic operations should win, got %+v", row.Operations)
	}
}

func TestMergeWorkEvenOverridesRegardlessOfExistingOps(t *testing.T) {
	p := &model.Pattern{
		Sections: []model.Section{{Name: "Body", Rows: []model.Row{
			{Number: 1, Operations: []model.Operation{{Kind: model.OpPurl, Count: 4}}},
		}}},
	}
	result := &Result{Rows: map[int]RowAugment{1: {IsWorkEven: true}}}
	Merge(p, result)

	row := p.Sections[0].Rows[0]
	if len(row.Operations) != 1 || row.Operations[0].Kind != model.OpWorkEven {
		t.Errorf("expected work-even override, got %+v", row.Operations)
	}
}

func TestMergeUnknownSectionNameBecomesInsightIssue(t *testing.T) {
	p := &model.Pattern{
		Sections: []model.Section{{Name: "Body", Rows: []model.Row{{Number: 1}}}},
	}
	Merge(p, &Result{SectionNames: []string{"Body", "Cuff"}})

	found := false
	for _, i := range p.Issues {
		if i.Type == model.IssueLLMInsight {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an llm_insight issue for the unknown section name, got %+v", p.Issues)
	}
}

func TestMergeAppliesBetweenStepsAsSyntheticRows(t *testing.T) {
	p := &model.Pattern{
		Sections: []model.Section{{Name: "Body", Rows: []model.Row{
			{Number: 9}, {Number: 10},
		}}},
	}
	Merge(p, &Result{
		BetweenSteps: []BetweenStep{
			{AfterRow: 9, Description: "CO 4 sts for underarm", CastOnExtra: map[string]int{"Size1": 4}},
		},
	})

	rows := p.Sections[0].Rows
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3 (original 2 plus synthetic)", len(rows))
	}
	if rows[1].SegmentLabel != "llm_between_steps" || rows[1].CastOnExtra["Size1"] != 4 {
		t.Errorf("synthetic row = %+v, want CastOnExtra Size1:4", rows[1])
	}
	if rows[2].Number != 10 {
		t.Errorf("row after the synthetic insert = %+v, want Number 10", rows[2])
	}
}
