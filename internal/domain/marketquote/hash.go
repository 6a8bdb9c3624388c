package marketquote

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/riskibarqy/propline/internal/domain/payout"
	"github.com/riskibarqy/propline/internal/domain/prop"
)

const (
	hashDelimiter = "|"
	noneLiteral   = "None"
)

// LineHash digests exactly the fields that define a distinct market. The line
// is collapsed to one decimal and multipliers to three, so movements below
// that precision hash to the same market.
func LineHash(propType prop.Type, offeredLine float64, p payout.CanonicalPayout) string {
	parts := []string{
		string(propType),
		strconv.FormatFloat(offeredLine, 'f', 1, 64),
		orNone(string(p.Type)),
		orNone(string(p.VariantCode)),
		formatMultiplier(p.OverMultiplier),
		formatMultiplier(p.UnderMultiplier),
		formatMultiplier(p.BoostMultiplier),
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, hashDelimiter)))
	return hex.EncodeToString(sum[:])
}

func formatMultiplier(v *float64) string {
	if v == nil {
		return noneLiteral
	}
	return strconv.FormatFloat(*v, 'f', 3, 64)
}

func orNone(v string) string {
	if strings.TrimSpace(v) == "" {
		return noneLiteral
	}
	return v
}
