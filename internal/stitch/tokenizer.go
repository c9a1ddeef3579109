// Package stitch implements the Stitch Tokenizer stage: turning a single
// row's free-text instruction string into a flat list of Operations plus
// any RepeatBlocks found within it.
package stitch

import (
	"regexp"
	"strconv"
	"strings"

	"stitchcheck/internal/model"
)

// stitchPattern recognizes one stitch token plus an optional trailing
// instance count, e.g. "k4", "k2tog", "yo". Longer, more specific
// alternatives are listed before their prefixes (k3tog before k2tog before
// k) so the regex engine's leftmost alternative preference picks the most
// specific match.
var stitchPattern = regexp.MustCompile(
	`(?i)^(k3tog|p3tog|k2tog|p2tog|ssk|ssp|sk2p|s2kp|cdd|kfb|pfb|m1l|m1r|m1p|m1|yo|sl1|sl|wyif|wyib|sm|pm|bo|co|k|p)(\d+)?$`,
)

var workEvenRe = regexp.MustCompile(`(?i)work\s+even`)

// repeatBlockPattern matches a `*...*` instruction group with an optional
// trailing repeat-mode clause: a fixed count ("3 times"), "to end"/
// "across", or "until N sts remain". If none of those clauses is present,
// the block defaults to repeat-to-end.
var repeatBlockPattern = regexp.MustCompile(
	`(?i)\*([^*]+)\*\s*(?:,?\s*repeat\s+)?(?:(?:(\d+)\s*times)|(to\s+end)|(across)|(?:until\s+(\d+)\s+sts?\s+remain))?`,
)

var splitTokenRe = regexp.MustCompile(`,\s*|\s+`)

// ParseRowInstructions tokenizes a row's free-text instructions. A row
// whose text contains a "work even" phrase anywhere returns a single
// WorkEven operation and no repeat blocks, short-circuiting the rest of
// the tokenizer (an explicit row like "Work even for 2 inches" carries no
// stitch-count-changing content); any other tokens on that row are ignored.
func ParseRowInstructions(text string) ([]model.Operation, []model.RepeatBlock) {
	if workEvenRe.MatchString(text) {
		return []model.Operation{{Raw: strings.TrimSpace(text), Kind: model.OpWorkEven, Count: 1}}, nil
	}

	var blocks []model.RepeatBlock
	matches := repeatBlockPattern.FindAllStringSubmatchIndex(text, -1)

	var b strings.Builder
	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		b.WriteString(text[last:start])
		b.WriteString(" __REPEAT__ ")
		last = end

		raw := text[start:end]
		inner := text[m[2]:m[3]]
		block := model.RepeatBlock{Raw: raw, Mode: model.RepeatToEnd}

		innerOps, _ := ParseInstructionSegment(inner)
		block.Operations = innerOps

		switch {
		case m[4] != -1:
			n, _ := strconv.Atoi(text[m[4]:m[5]])
			block.Mode = model.RepeatFixedCount
			block.RepeatCount = n
		case m[6] != -1:
			block.Mode = model.RepeatToEnd
		case m[8] != -1:
			block.Mode = model.RepeatToEnd
		case m[10] != -1:
			n, _ := strconv.Atoi(text[m[10]:m[11]])
			block.Mode = model.RepeatUntilRemain
			block.UntilStsRemain = n
		default:
			block.Mode = model.RepeatToEnd
		}
		blocks = append(blocks, block)
	}
	b.WriteString(text[last:])

	remaining := b.String()
	remaining = strings.ReplaceAll(remaining, "__REPEAT__", "")
	flatOps, _ := ParseInstructionSegment(remaining)

	return flatOps, blocks
}

// ParseInstructionSegment tokenizes a flat (repeat-block-free) instruction
// segment into Operations. It merges a plain-language count following a
// knit/purl token ("Knit 4" -> k4) and reinterprets a bare slip token
// immediately followed by the word "marker" as a slip-marker operation.
func ParseInstructionSegment(text string) ([]model.Operation, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	rawTokens := splitTokenRe.Split(text, -1)
	tokens := make([]string, 0, len(rawTokens))
	for _, t := range rawTokens {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		tokens = append(tokens, t)
	}

	var ops []model.Operation
	i := 0
	for i < len(tokens) {
		tok := tokens[i]

		// Marker-hint: "sl"/"slip" followed by a bare "marker" token.
		lower := strings.ToLower(tok)
		if (lower == "sl" || lower == "slip") && i+1 < len(tokens) && strings.ToLower(tokens[i+1]) == "marker" {
			ops = append(ops, model.Operation{Raw: tok + " " + tokens[i+1], Kind: model.OpSlipMark, Count: 1})
			i += 2
			continue
		}

		op, ok := ParseStitch(tok)
		if !ok {
			i++
			continue
		}

		// Adjacent-number merge: a bare numeral token immediately following
		// a countless knit/purl-family op attaches as that op's count, e.g.
		// ["Knit", "4"] -> k4.
		if (op.Kind == model.OpKnit || op.Kind == model.OpPurl) && op.Count == 1 && !hasDigitSuffix(tok) && i+1 < len(tokens) {
			if n, err := strconv.Atoi(tokens[i+1]); err == nil {
				op.Count = n
				i += 2
				ops = append(ops, op)
				continue
			}
		}

		ops = append(ops, op)
		i++
	}
	return ops, nil
}

func hasDigitSuffix(tok string) bool {
	if tok == "" {
		return false
	}
	last := tok[len(tok)-1]
	return last >= '0' && last <= '9'
}

// ParseStitch resolves a single token (after trailing-comma stripping and
// alias substitution) into an Operation. ok is false if the token does not
// match any known stitch form.
func ParseStitch(token string) (model.Operation, bool) {
	raw := strings.TrimSpace(token)
	stripped := strings.TrimSuffix(raw, ",")
	lower := strings.ToLower(stripped)

	if canonical, ok := aliases[lower]; ok {
		lower = canonical
	}

	m := stitchPattern.FindStringSubmatch(lower)
	if m == nil {
		return model.Operation{}, false
	}

	count := 1
	if m[2] != "" {
		if n, err := strconv.Atoi(m[2]); err == nil {
			count = n
		}
	}

	return model.Operation{
		Raw:   raw,
		Kind:  kindFromStr(m[1]),
		Count: count,
	}, true
}
