package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"stitchcheck/internal/model"
)

// HTTPAugmenter is a minimal JSON-over-HTTP Augmenter. It hand-rolls its
// request/response handling against a provider-agnostic contract rather
// than depending on a vendor SDK, the same choice the reference
// implementation's own LLM client made when it picked a single HTTP-based
// provider (llm_service.py) over a heavier framework.
type HTTPAugmenter struct {
	Endpoint string
	APIKey   string
	Client   *http.Client
}

// NewHTTPAugmenter builds an HTTPAugmenter with a sane request timeout.
func NewHTTPAugmenter(endpoint, apiKey string) *HTTPAugmenter {
	return &HTTPAugmenter{
		Endpoint: endpoint,
		APIKey:   apiKey,
		Client:   &http.Client{Timeout: 30 * time.Second},
	}
}

type parseRequest struct {
	Text string `json:"text"`
	Task string `json:"task"`
}

type parseResponse struct {
	Sizes        []string               `json:"sizes"`
	CastOnCounts map[string]int         `json:"cast_on_counts"`
	Rows         []rowAugmentWire       `json:"rows"`
	Sections     []string               `json:"sections"`
	BetweenSteps []betweenStepWire      `json:"between_steps"`
}

type rowAugmentWire struct {
	Number       int                `json:"number"`
	Operations   []operationWire    `json:"operations"`
	RepeatBlocks []repeatBlockWire  `json:"repeat_blocks"`
	ExpectedSts  map[string]int     `json:"expected_sts"`
	Side         string             `json:"side"`
	IsWorkEven   bool               `json:"is_work_even"`
}

type operationWire struct {
	Raw   string `json:"raw"`
	Kind  string `json:"kind"`
	Count int    `json:"count"`
}

type repeatBlockWire struct {
	Raw            string          `json:"raw"`
	Operations     []operationWire `json:"operations"`
	Mode           string          `json:"mode"`
	RepeatCount    int             `json:"repeat_count"`
	UntilStsRemain int             `json:"until_sts_remain"`
}

type betweenStepWire struct {
	AfterRow    int            `json:"after_row"`
	Description string         `json:"description"`
	CastOnExtra map[string]int `json:"cast_on_extra"`
}

type grammarResponse struct {
	Issues []struct {
		Line    int    `json:"line"`
		Message string `json:"message"`
	} `json:"issues"`
}

// Augment sends rawText to the configured endpoint and parses the JSON
// response into a Result. A non-2xx response or malformed body is
// returned as an error; the caller (internal/pipeline) treats any error
// from Augment as "no augmentation available" and proceeds without it.
func (a *HTTPAugmenter) Augment(ctx context.Context, rawText string) (*Result, error) {
	var resp parseResponse
	if err := a.call(ctx, "parse", rawText, &resp); err != nil {
		return nil, err
	}

	rows := make(map[int]RowAugment, len(resp.Rows))
	for _, r := range resp.Rows {
		rows[r.Number] = RowAugment{
			Operations:   toOperations(r.Operations),
			RepeatBlocks: toRepeatBlocks(r.RepeatBlocks),
			ExpectedSts:  r.ExpectedSts,
			Side:         r.Side,
			IsWorkEven:   r.IsWorkEven,
		}
	}

	steps := make([]BetweenStep, 0, len(resp.BetweenSteps))
	for _, s := range resp.BetweenSteps {
		steps = append(steps, BetweenStep{
			AfterRow:    s.AfterRow,
			Description: s.Description,
			CastOnExtra: s.CastOnExtra,
		})
	}

	return &Result{
		Sizes:        resp.Sizes,
		CastOnCounts: resp.CastOnCounts,
		Rows:         rows,
		SectionNames: resp.Sections,
		BetweenSteps: steps,
	}, nil
}

// ReviewGrammar asks the endpoint for a grammar-only pass over rawText,
// supplementing internal/format's deterministic checks the way
// llm_service.py:llm_grammar_review supplements format_checker.py.
func (a *HTTPAugmenter) ReviewGrammar(ctx context.Context, rawText string) ([]model.Issue, error) {
	var resp grammarResponse
	if err := a.call(ctx, "grammar", rawText, &resp); err != nil {
		return nil, err
	}

	issues := make([]model.Issue, 0, len(resp.Issues))
	for _, i := range resp.Issues {
		issues = append(issues, model.Issue{
			Type: model.IssueGrammar, Severity: model.SeverityWarning,
			Line: i.Line, Message: i.Message, Source: "llm",
		})
	}
	return issues, nil
}

func (a *HTTPAugmenter) call(ctx context.Context, task, rawText string, out interface{}) error {
	body, err := json.Marshal(parseRequest{Text: rawText, Task: task})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if a.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.APIKey)
	}

	resp, err := a.Client.Do(req)
	if err != nil {
		return fmt.Errorf("llm request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read llm response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("llm endpoint returned %d: %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode llm response: %w", err)
	}
	return nil
}

func toOperations(wire []operationWire) []model.Operation {
	ops := make([]model.Operation, 0, len(wire))
	for _, w := range wire {
		ops = append(ops, model.Operation{Raw: w.Raw, Kind: model.OperationKind(w.Kind), Count: w.Count})
	}
	return ops
}

func toRepeatBlocks(wire []repeatBlockWire) []model.RepeatBlock {
	blocks := make([]model.RepeatBlock, 0, len(wire))
	for _, w := range wire {
		blocks = append(blocks, model.RepeatBlock{
			Raw:            w.Raw,
			Operations:     toOperations(w.Operations),
			Mode:           model.RepeatMode(w.Mode),
			RepeatCount:    w.RepeatCount,
			UntilStsRemain: w.UntilStsRemain,
		})
	}
	return blocks
}
