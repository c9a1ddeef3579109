package stitch

import "stitchcheck/internal/model"

// aliases maps verbose or alternate phrasings onto the compact token form
// the stitch pattern regex recognizes, mirroring STITCH_ALIASES in the
// reference implementation. ParseStitch looks an entry up against one whole
// token. ParseInstructionSegment splits row text on commas and whitespace
// before that lookup, so multi-word entries ("yarn over", "slip marker",
// "cast on", ...) match only when ParseStitch is handed the phrase directly,
// never inside row text; there "sl marker"/"slip marker" is caught by the
// marker hint in ParseInstructionSegment instead.
var aliases = map[string]string{
	"knit":          "k",
	"purl":          "p",
	"slip":          "sl",
	"slip 1":        "sl1",
	"slip marker":   "sm",
	"place marker":  "pm",
	"k2 tog":        "k2tog",
	"k 2 tog":       "k2tog",
	"p2 tog":        "p2tog",
	"p 2 tog":       "p2tog",
	"k3 tog":        "k3tog",
	"p3 tog":        "p3tog",
	"kfab":          "kfb",
	"m 1 l":         "m1l",
	"m 1 r":         "m1r",
	"m 1":           "m1",
	"make 1 left":   "m1l",
	"make 1 right":  "m1r",
	"yarn over":     "yo",
	"bind off":      "bo",
	"cast on":       "co",
}

// kindFromToken maps a canonical (post-alias) token string to its
// OperationKind, matching _op_type_from_str in the reference implementation.
var kindFromToken = map[string]model.OperationKind{
	"k":     model.OpKnit,
	"p":     model.OpPurl,
	"sl":    model.OpSlip,
	"sl1":   model.OpSlip1,
	"wyif":  model.OpWyif,
	"wyib":  model.OpWyib,
	"sm":    model.OpSlipMark,
	"pm":    model.OpPlaceMark,
	"k2tog": model.OpK2tog,
	"ssk":   model.OpSsk,
	"p2tog": model.OpP2tog,
	"ssp":   model.OpSsp,
	"sk2p":  model.OpSk2p,
	"s2kp":  model.OpS2kp,
	"k3tog": model.OpK3tog,
	"p3tog": model.OpP3tog,
	"cdd":   model.OpCdd,
	"yo":    model.OpYo,
	"m1l":   model.OpM1l,
	"m1r":   model.OpM1r,
	"m1":    model.OpM1,
	"m1p":   model.OpM1p,
	"kfb":   model.OpKfb,
	"pfb":   model.OpPfb,
	"bo":    model.OpBindOff,
	"co":    model.OpCastOn,
}

func kindFromStr(tok string) model.OperationKind {
	if k, ok := kindFromToken[tok]; ok {
		return k
	}
	return model.OpUnknown
}
