// Package integrity provides a content-hash idempotence check: spec.md §8
// requires that running the full pipeline twice on the same raw text
// produces identical Sections, Rows, and calculated counts. Rather than
// deep-comparing two Pattern values field by field, this package hashes a
// canonical encoding of the parts that must be stable and compares hashes
// — the same sha256-over-canonical-content approach pkg/egocheck uses to
// self-verify a worker's source tree, repurposed here to hash pipeline
// output instead of source files.
package integrity

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"stitchcheck/internal/model"
)

// canonical is the subset of a Pattern that an idempotent pipeline run
// must reproduce exactly: section/row structure and the calculated
// stitch counts. Issues are deliberately excluded — Issue ordering is not
// guaranteed to be stable across runs (internal/format ranges over its
// typo and terminology maps, whose iteration order varies), and idempotence is a claim about the parse/evaluate result,
// not about issue-slice ordering.
type canonical struct {
	Sizes        []string       `json:"sizes"`
	CastOnCounts map[string]int `json:"cast_on_counts"`
	Sections     []model.Section `json:"sections"`
}

// Hash returns a hex-encoded sha256 digest of p's canonical content.
func Hash(p *model.Pattern) (string, error) {
	c := canonical{
		Sizes:        p.Sizes,
		CastOnCounts: p.CastOnCounts,
		Sections:     p.Sections,
	}
	encoded, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encode pattern for hashing: %w", err)
	}
	sum := sha256.Sum256(encoded)
	return hex.EncodeToString(sum[:]), nil
}

// VerifyIdempotent re-runs run against p.RawText and checks the two
// resulting hashes match. run is typically pipeline.Run bound to the same
// Options the original analysis used.
func VerifyIdempotent(p *model.Pattern, run func(rawText string) (*model.Pattern, error)) (bool, error) {
	first, err := Hash(p)
	if err != nil {
		return false, err
	}

	again, err := run(p.RawText)
	if err != nil {
		return false, fmt.Errorf("re-run pipeline: %w", err)
	}
	second, err := Hash(again)
	if err != nil {
		return false, err
	}

	return first == second, nil
}
