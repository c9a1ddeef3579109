// Package model defines the data structures shared by every stage of the
// pattern analysis pipeline: Operation, RepeatBlock, Row, Section, Pattern,
// and Issue.
package model

// OperationKind identifies a single stitch instruction's canonical form,
// after alias resolution (e.g. "knit" and "k" both resolve to OpKnit).
type OperationKind string

const (
	OpKnit      OperationKind = "k"
	OpPurl      OperationKind = "p"
	OpSlip      OperationKind = "sl"
	OpSlip1     OperationKind = "sl1"
	OpWyif      OperationKind = "wyif"
	OpWyib      OperationKind = "wyib"
	OpSlipMark  OperationKind = "sm"
	OpPlaceMark OperationKind = "pm"
	OpK2tog     OperationKind = "k2tog"
	OpSsk       OperationKind = "ssk"
	OpP2tog     OperationKind = "p2tog"
	OpSsp       OperationKind = "ssp"
	OpSk2p      OperationKind = "sk2p"
	OpS2kp      OperationKind = "s2kp"
	OpK3tog     OperationKind = "k3tog"
	OpP3tog     OperationKind = "p3tog"
	OpCdd       OperationKind = "cdd"
	OpYo        OperationKind = "yo"
	OpM1l       OperationKind = "m1l"
	OpM1r       OperationKind = "m1r"
	OpM1        OperationKind = "m1"
	OpM1p       OperationKind = "m1p"
	OpKfb       OperationKind = "kfb"
	OpPfb       OperationKind = "pfb"
	OpWorkEven  OperationKind = "work_even"
	OpBindOff   OperationKind = "bo"
	OpCastOn    OperationKind = "co"
	OpUnknown   OperationKind = "unknown"
)

// effects maps each OperationKind to its net stitch-count effect per single
// instance (before multiplying by Count) and the number of existing stitches
// it consumes per instance. These tables mirror STITCH_EFFECTS and
// _stitches_consumed_per_one from the reference implementation.
var effects = map[OperationKind]int{
	OpKnit:      0,
	OpPurl:      0,
	OpSlip:      0,
	OpSlip1:     0,
	OpWyif:      0,
	OpWyib:      0,
	OpSlipMark:  0,
	OpPlaceMark: 0,
	OpK2tog:     -1,
	OpSsk:       -1,
	OpP2tog:     -1,
	OpSsp:       -1,
	OpSk2p:      -2,
	OpS2kp:      -2,
	OpK3tog:     -2,
	OpP3tog:     -2,
	OpCdd:       -2,
	OpYo:        1,
	OpM1l:       1,
	OpM1r:       1,
	OpM1:        1,
	OpM1p:       1,
	OpKfb:       1,
	OpPfb:       1,
	OpWorkEven:  0,
	OpBindOff:   -1,
	OpCastOn:    0,
	OpUnknown:   0,
}

var consumedPerOne = map[OperationKind]int{
	OpYo:        0,
	OpM1:        0,
	OpM1l:       0,
	OpM1r:       0,
	OpM1p:       0,
	OpSlipMark:  0,
	OpPlaceMark: 0,
	OpK2tog:     2,
	OpSsk:       2,
	OpP2tog:     2,
	OpSsp:       2,
	OpSk2p:      3,
	OpS2kp:      3,
	OpK3tog:     3,
	OpP3tog:     3,
	OpCdd:       3,
	OpKfb:       1,
	OpPfb:       1,
}

// Effect returns the net stitch-count change of a single instance of kind,
// as listed in the effects table; a kind not present in the table returns 0.
func Effect(kind OperationKind) int {
	return effects[kind]
}

// ConsumedPerOne returns how many existing stitches a single instance of kind
// consumes. Anything not in the table (plain knit/purl/slip/work-even/
// bind-off/cast-on/unknown) consumes exactly 1 stitch per instance.
func ConsumedPerOne(kind OperationKind) int {
	if v, ok := consumedPerOne[kind]; ok {
		return v
	}
	return 1
}

// Operation is a single stitch instruction, possibly repeated Count times
// (e.g. "k4" is Operation{Kind: OpKnit, Count: 4}).
type Operation struct {
	Raw   string        `json:"raw"`
	Kind  OperationKind `json:"kind"`
	Count int           `json:"count"`
}

// TotalEffect is the net stitch-count change contributed by all Count
// instances of this operation.
func (o Operation) TotalEffect() int {
	return Effect(o.Kind) * o.Count
}

// TotalConsumed is the number of existing stitches all Count instances of
// this operation consume.
func (o Operation) TotalConsumed() int {
	return ConsumedPerOne(o.Kind) * o.Count
}

// RepeatMode selects how a RepeatBlock's repeat count is determined.
type RepeatMode string

const (
	RepeatFixedCount  RepeatMode = "fixed_count"
	RepeatToEnd       RepeatMode = "repeat_to_end"
	RepeatUntilRemain RepeatMode = "until_sts_remain"
)

// RepeatBlock is a `*...* repeat N times` (or `to end` / `until K sts
// remain`) instruction group.
type RepeatBlock struct {
	Raw             string      `json:"raw"`
	Operations      []Operation `json:"operations"`
	Mode            RepeatMode  `json:"mode"`
	RepeatCount     int         `json:"repeat_count,omitempty"`
	UntilStsRemain  int         `json:"until_sts_remain,omitempty"`
}

// NetStitchesPerRepeat is the net stitch-count change of one pass through
// the block's operations.
func (b RepeatBlock) NetStitchesPerRepeat() int {
	total := 0
	for _, op := range b.Operations {
		total += op.TotalEffect()
	}
	return total
}

// StitchesConsumedPerRepeat is how many existing stitches one pass through
// the block's operations consumes: the sum over its operations of Count
// times the per-instance consumption — 0 for increases (yo/m1/m1l/m1r/m1p)
// and marker moves (sm/pm), 1 for kfb/pfb, 2 for 2-stitch decreases, 3 for
// 3-stitch decreases, and 1 for anything else.
func (b RepeatBlock) StitchesConsumedPerRepeat() int {
	total := 0
	for _, op := range b.Operations {
		switch op.Kind {
		case OpYo, OpM1l, OpM1r, OpM1, OpM1p, OpSlipMark, OpPlaceMark:
			// consumes nothing
		case OpKfb, OpPfb:
			total += 1 * op.Count
		case OpK2tog, OpSsk, OpP2tog, OpSsp:
			total += 2 * op.Count
		case OpSk2p, OpS2kp, OpK3tog, OpP3tog, OpCdd:
			total += 3 * op.Count
		default:
			total += 1 * op.Count
		}
	}
	return total
}

// Row is one parsed instruction line (a numbered Row/Rnd/Round, or the
// synthetic Row 0 representing the cast-on).
type Row struct {
	Number       int                `json:"number"`
	LineNumber   int                `json:"line_number"`
	RawText      string             `json:"raw_text"`
	Side         string             `json:"side,omitempty"` // "RS", "WS", or ""
	IsRound      bool               `json:"is_round"`
	Operations   []Operation        `json:"operations,omitempty"`
	RepeatBlocks []RepeatBlock      `json:"repeat_blocks,omitempty"`
	ExpectedSts  map[string]int     `json:"expected_sts,omitempty"`
	CalculatedSts map[string]int    `json:"calculated_sts,omitempty"`
	Errors       []string           `json:"errors,omitempty"`
	Warnings     []string           `json:"warnings,omitempty"`
	IsRepeatRef  bool               `json:"is_repeat_ref,omitempty"`
	SegmentLabel string             `json:"segment_label,omitempty"`
	CastOnExtra  map[string]int     `json:"cast_on_extra,omitempty"`
}

// Section is a named group of Rows ("Body", "Sleeve", etc).
type Section struct {
	Name            string `json:"name"`
	Rows            []Row  `json:"rows"`
	Notes           string `json:"notes,omitempty"`
	IsRepeatSegment bool   `json:"is_repeat_segment,omitempty"`
}

// Pattern is the root aggregate produced by the parser and populated by the
// evaluator and format checker.
type Pattern struct {
	RawText              string         `json:"raw_text"`
	Sizes                []string       `json:"sizes,omitempty"`
	CastOnCounts         map[string]int `json:"cast_on_counts,omitempty"`
	Sections             []Section      `json:"sections"`
	Materials            string         `json:"materials,omitempty"`
	Gauge                string         `json:"gauge,omitempty"`
	FinishedMeasurements string         `json:"finished_measurements,omitempty"`
	Abbreviations        string         `json:"abbreviations,omitempty"`
	Notes                string         `json:"notes,omitempty"`
	Issues               []Issue        `json:"issues,omitempty"`
}

// IssueSeverity classifies how serious an Issue is.
type IssueSeverity string

const (
	SeverityError   IssueSeverity = "error"
	SeverityWarning IssueSeverity = "warning"
)

// IssueType classifies what kind of problem an Issue records.
type IssueType string

const (
	IssueStitchCount        IssueType = "stitch_count"
	IssueStitchCountWarning IssueType = "stitch_count_warning"
	IssueConsistency        IssueType = "consistency"
	IssueGrammar            IssueType = "grammar"
	IssueFormat             IssueType = "format"
	IssueLLMInsight         IssueType = "llm_insight"
)

// Issue is a single problem or observation surfaced anywhere in the
// pipeline: a stitch-count mismatch, a repeat block that doesn't divide
// evenly, a grammar slip, a missing required section, and so on.
type Issue struct {
	Type     IssueType     `json:"type"`
	Severity IssueSeverity `json:"severity"`
	Size     string        `json:"size,omitempty"`
	RowNum   int           `json:"row_number,omitempty"`
	Line     int           `json:"line,omitempty"`
	Message  string        `json:"message"`
	Source   string        `json:"source,omitempty"` // "deterministic" or "llm"
}
