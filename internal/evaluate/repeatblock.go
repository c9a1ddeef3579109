package evaluate

import (
	"fmt"

	"stitchcheck/internal/model"
)

// evalRepeatBlock computes the net stitch-count change contributed by a
// single RepeatBlock given the number of stitches available to it, per
// spec.md §4.5.1's three expansion modes. It returns the net change and,
// at most, one of a warning or an error message — never both.
func evalRepeatBlock(b model.RepeatBlock, availableSts int) (net int, warning string, errMsg string) {
	consumedPer := b.StitchesConsumedPerRepeat()
	netPer := b.NetStitchesPerRepeat()

	switch b.Mode {
	case model.RepeatFixedCount:
		totalConsumed := consumedPer * b.RepeatCount
		if totalConsumed > availableSts {
			return 0, "", fmt.Sprintf(
				"Repeat block consumes %d sts x %d = %d sts, but only %d available",
				consumedPer, b.RepeatCount, totalConsumed, availableSts,
			)
		}
		return netPer * b.RepeatCount, "", ""

	case model.RepeatUntilRemain:
		workable := availableSts - b.UntilStsRemain
		if workable < 0 {
			return 0, "", fmt.Sprintf(
				"'Until %d sts remain' but only %d available",
				b.UntilStsRemain, availableSts,
			)
		}
		if consumedPer == 0 {
			return 0, "", "Repeat block consumes 0 stitches — infinite loop"
		}
		repeats := workable / consumedPer
		if repeats == 0 {
			return 0, "", ""
		}
		leftover := workable - repeats*consumedPer
		if leftover != 0 {
			return netPer * repeats, fmt.Sprintf(
				"Repeat block does not divide evenly: %d workable sts / %d per repeat = %d repeats with %d leftover",
				workable, consumedPer, repeats, leftover,
			), ""
		}
		return netPer * repeats, "", ""

	case model.RepeatToEnd:
		if consumedPer == 0 {
			return 0, "", "Repeat-to-end block consumes 0 stitches — infinite loop"
		}
		repeats := availableSts / consumedPer
		leftover := availableSts - repeats*consumedPer
		if leftover != 0 {
			return netPer * repeats, fmt.Sprintf(
				"Repeat-to-end does not divide evenly: %d sts / %d per repeat = %d repeats with %d leftover",
				availableSts, consumedPer, repeats, leftover,
			), ""
		}
		return netPer * repeats, "", ""

	default:
		return 0, "", ""
	}
}

// remainingAfterBlock returns the number of stitches still available to
// subsequent repeat blocks (or flat operations) on the same row after this
// block has consumed its share, per mode.
func remainingAfterBlock(b model.RepeatBlock, availableSts int) int {
	consumedPer := b.StitchesConsumedPerRepeat()
	switch b.Mode {
	case model.RepeatFixedCount:
		return availableSts - consumedPer*b.RepeatCount
	case model.RepeatUntilRemain:
		return b.UntilStsRemain
	case model.RepeatToEnd:
		if consumedPer == 0 {
			return availableSts
		}
		repeats := availableSts / consumedPer
		return availableSts - repeats*consumedPer
	default:
		return availableSts
	}
}
