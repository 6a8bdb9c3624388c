package taxonomy

import (
	"strings"

	"github.com/riskibarqy/propline/internal/domain/prop"
)

type termSet struct {
	text   string
	tokens map[string]struct{}
}

func newTermSet(raw string) termSet {
	var b strings.Builder
	for _, r := range strings.ToLower(raw) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			continue
		}
		b.WriteByte(' ')
	}
	text := strings.Join(strings.Fields(b.String()), " ")
	tokens := make(map[string]struct{})
	for _, tok := range strings.Fields(text) {
		tokens[tok] = struct{}{}
	}
	return termSet{text: " " + text + " ", tokens: tokens}
}

func (s termSet) contains(fragments ...string) bool {
	for _, f := range fragments {
		if strings.Contains(s.text, f) {
			return true
		}
	}
	return false
}

func (s termSet) token(tokens ...string) bool {
	for _, t := range tokens {
		if _, ok := s.tokens[t]; ok {
			return true
		}
	}
	return false
}

type heuristicRule struct {
	match func(s termSet) bool
	t     prop.Type
}

func hasPoint(s termSet) bool   { return s.contains("point") || s.token("pts") }
func hasRebound(s termSet) bool { return s.contains("rebound") || s.token("reb", "rebs") }
func hasAssist(s termSet) bool  { return s.contains("assist") || s.token("ast", "asts") }
func hasSteal(s termSet) bool   { return s.contains("steal") || s.token("stl", "stls") }
func hasBlock(s termSet) bool   { return s.contains("block") || s.token("blk", "blks") }

func hasThree(s termSet) bool {
	return s.contains("three", " 3pt", " 3pm", " 3 point", " 3 pt ", " 3s ")
}

// heuristicRules run in order; combined stats come before their components
// and the bare digit rule runs last.
var heuristicRules = []heuristicRule{
	{match: func(s termSet) bool { return s.contains("double double", "dbl dbl") }, t: prop.TypeDoubleDouble},
	{match: func(s termSet) bool { return s.contains("triple") }, t: prop.TypeTripleDouble},
	{match: func(s termSet) bool { return s.contains("fantasy") }, t: prop.TypeFantasyScore},
	{match: func(s termSet) bool {
		return s.token("pra") || (hasPoint(s) && hasRebound(s) && hasAssist(s))
	}, t: prop.TypePointsReboundsAssists},
	{match: func(s termSet) bool { return s.token("pr") || (hasPoint(s) && hasRebound(s)) }, t: prop.TypePointsRebounds},
	{match: func(s termSet) bool { return s.token("pa") || (hasPoint(s) && hasAssist(s)) }, t: prop.TypePointsAssists},
	{match: func(s termSet) bool { return s.token("ra") || (hasRebound(s) && hasAssist(s)) }, t: prop.TypeReboundsAssists},
	{match: func(s termSet) bool { return s.contains("stocks") || (hasSteal(s) && hasBlock(s)) }, t: prop.TypeStealsBlocks},
	{match: hasThree, t: prop.TypeThreePointersMade},
	{match: hasRebound, t: prop.TypeRebounds},
	{match: hasAssist, t: prop.TypeAssists},
	{match: hasSteal, t: prop.TypeSteals},
	{match: hasBlock, t: prop.TypeBlocks},
	{match: func(s termSet) bool { return s.contains("turnover") || s.token("to", "tov") }, t: prop.TypeTurnovers},
	{match: func(s termSet) bool { return s.contains("free throw") || s.token("ft", "ftm") }, t: prop.TypeFreeThrowsMade},
	{match: func(s termSet) bool { return s.contains("field goal") || s.token("fg", "fgm") }, t: prop.TypeFieldGoalsMade},
	{match: func(s termSet) bool { return s.contains("minute") || s.token("min", "mins") }, t: prop.TypeMinutes},
	{match: hasPoint, t: prop.TypePoints},
	{match: func(s termSet) bool { return s.token("3") }, t: prop.TypeThreePointersMade},
}

func heuristicPropType(raw string) (prop.Type, bool) {
	terms := newTermSet(raw)
	for _, rule := range heuristicRules {
		if rule.match(terms) {
			return rule.t, true
		}
	}
	return "", false
}
