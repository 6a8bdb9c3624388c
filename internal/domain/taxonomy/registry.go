package taxonomy

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/riskibarqy/propline/internal/domain/prop"
)

type Kind string

const (
	KindPropCategory Kind = "prop_category"
	KindTeam         Kind = "team"
)

const wildcard = "*"

// ErrUnmapped matches every *Error with errors.Is.
var ErrUnmapped = errors.New("taxonomy mapping not found")

// Error reports a provider term that no table or heuristic could map.
type Error struct {
	Kind     Kind
	Value    string
	Sport    string
	Provider string
}

func (e *Error) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("unmapped %s %q (sport=%s provider=%s)", e.Kind, e.Value, e.Sport, e.Provider)
	}
	return fmt.Sprintf("unmapped %s %q (sport=%s)", e.Kind, e.Value, e.Sport)
}

func (e *Error) Is(target error) bool {
	return target == ErrUnmapped
}

// Registry maps provider vocabulary to canonical prop types and team codes.
// It is safe for concurrent use and is meant to be built once per process and
// injected into its consumers.
type Registry struct {
	mu    sync.RWMutex
	props map[string]map[string]prop.Type // scope "provider|sport"
	teams map[string]map[string]string    // sport -> identifier -> abbreviation
}

// NewRegistry returns a registry seeded with the NBA vocabulary.
func NewRegistry() *Registry {
	r := &Registry{
		props: map[string]map[string]prop.Type{scopeKey(wildcard, wildcard): {}},
		teams: map[string]map[string]string{DefaultSport: defaultTeamTable()},
	}
	for raw, t := range defaultPropCategories {
		r.props[scopeKey(wildcard, wildcard)][raw] = t
	}
	return r
}

// NormalizePropCategory resolves raw into a prop type: exact match, then
// case-insensitive match, each across the scoped tables from most to least
// specific, then substring heuristics.
func (r *Registry) NormalizePropCategory(raw, sport, provider string) (prop.Type, error) {
	value := strings.TrimSpace(raw)
	sport = normalizeSport(sport)
	provider = strings.TrimSpace(provider)
	if value == "" {
		return "", &Error{Kind: KindPropCategory, Value: raw, Sport: sport, Provider: provider}
	}

	r.mu.RLock()
	scopes := r.propScopes(sport, normalizeProvider(provider))
	for _, table := range scopes {
		if t, ok := table[value]; ok {
			r.mu.RUnlock()
			return t, nil
		}
	}
	for _, table := range scopes {
		for key, t := range table {
			if strings.EqualFold(key, value) {
				r.mu.RUnlock()
				return t, nil
			}
		}
	}
	r.mu.RUnlock()

	if t, ok := heuristicPropType(value); ok {
		return t, nil
	}
	return "", &Error{Kind: KindPropCategory, Value: raw, Sport: sport, Provider: provider}
}

// NormalizeTeamCode resolves a full name, abbreviation or nickname to the
// canonical abbreviation.
func (r *Registry) NormalizeTeamCode(raw, sport string) (string, error) {
	value := strings.TrimSpace(raw)
	sport = normalizeSport(sport)

	r.mu.RLock()
	defer r.mu.RUnlock()

	table := r.teams[sport]
	if value != "" && table != nil {
		if code, ok := table[value]; ok {
			return code, nil
		}
		for key, code := range table {
			if strings.EqualFold(key, value) {
				return code, nil
			}
		}
	}
	return "", &Error{Kind: KindTeam, Value: raw, Sport: sport}
}

// AddPropMapping registers raw for a sport and provider. Empty sport or
// provider applies the mapping to every sport or provider.
func (r *Registry) AddPropMapping(raw string, t prop.Type, sport, provider string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return errors.New("prop mapping requires a raw category")
	}
	if !t.Valid() {
		return errors.Newf("unknown prop type %q", t)
	}
	scope := scopeKey(normalizeProvider(provider), scopeSport(sport))

	r.mu.Lock()
	defer r.mu.Unlock()
	table, ok := r.props[scope]
	if !ok {
		table = make(map[string]prop.Type)
		r.props[scope] = table
	}
	table[raw] = t
	return nil
}

// AddTeamMapping registers raw as an identifier of the team code in sport.
func (r *Registry) AddTeamMapping(raw, code, sport string) error {
	raw = strings.TrimSpace(raw)
	code = strings.ToUpper(strings.TrimSpace(code))
	if raw == "" || code == "" {
		return errors.New("team mapping requires raw value and code")
	}
	sport = normalizeSport(sport)

	r.mu.Lock()
	defer r.mu.Unlock()
	table, ok := r.teams[sport]
	if !ok {
		table = make(map[string]string)
		r.teams[sport] = table
	}
	table[raw] = code
	return nil
}

// KnownPropCategories lists every category string in the global table.
func (r *Registry) KnownPropCategories() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.props[scopeKey(wildcard, wildcard)])
}

// KnownTeamIdentifiers lists every identifier registered for sport.
func (r *Registry) KnownTeamIdentifiers(sport string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.teams[normalizeSport(sport)])
}

// propScopes must be called with the read lock held.
func (r *Registry) propScopes(sport, provider string) []map[string]prop.Type {
	keys := []string{
		scopeKey(provider, sport),
		scopeKey(provider, wildcard),
		scopeKey(wildcard, sport),
		scopeKey(wildcard, wildcard),
	}
	out := make([]map[string]prop.Type, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if table, ok := r.props[key]; ok {
			out = append(out, table)
		}
	}
	return out
}

func scopeKey(provider, sport string) string {
	return provider + "|" + sport
}

func scopeSport(sport string) string {
	sport = strings.ToUpper(strings.TrimSpace(sport))
	if sport == "" {
		return wildcard
	}
	return sport
}

func normalizeSport(sport string) string {
	sport = strings.ToUpper(strings.TrimSpace(sport))
	if sport == "" {
		return DefaultSport
	}
	return sport
}

func normalizeProvider(provider string) string {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider == "" {
		return wildcard
	}
	return provider
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for key := range m {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}
