package format

import (
	"testing"

	"stitchcheck/internal/model"
)

func TestCheckFormatFlagsMissingSections(t *testing.T) {
	p := &model.Pattern{RawText: "Row 1: k4\nRow 2: p4\n"}
	issues := CheckFormat(p)

	foundMaterials := false
	for _, i := range issues {
		if i.Message == "Materials section not found" {
			foundMaterials = true
		}
	}
	if !foundMaterials {
		t.Errorf("expected a missing-Materials issue, got %+v", issues)
	}
}

func TestCheckFormatInstructionsPresent(t *testing.T) {
	p := &model.Pattern{RawText: "Materials: wool\nGauge: 20 sts\nRow 1: k4\n"}
	issues := CheckFormat(p)
	for _, i := range issues {
		if i.Message == "Instructions section not found" {
			t.Errorf("did not expect missing-Instructions issue when a Row line is present")
		}
	}
}

func TestCheckGrammarTypo(t *testing.T) {
	p := &model.Pattern{RawText: "Row 1: knt 4, p4\n"}
	issues := CheckGrammar(p)

	found := false
	for _, i := range issues {
		if i.Line == 1 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a typo issue on line 1, got %+v", issues)
	}
}

func TestCheckGrammarUnbalancedBrackets(t *testing.T) {
	p := &model.Pattern{RawText: "Row 1: (k2tog, k4\n"}
	issues := CheckGrammar(p)

	found := false
	for _, i := range issues {
		if i.Message == "unbalanced brackets" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an unbalanced-brackets issue, got %+v", issues)
	}
}
