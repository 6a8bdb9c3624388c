package taxonomy

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/riskibarqy/propline/internal/domain/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_AllKnownPropCategoriesResolve(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	known := r.KnownPropCategories()
	require.GreaterOrEqual(t, len(known), 60)
	for _, raw := range known {
		got, err := r.NormalizePropCategory(raw, "", "")
		require.NoError(t, err, raw)
		assert.Equal(t, defaultPropCategories[raw], got, raw)
	}
}

func TestRegistry_AllKnownTeamsResolve(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	known := r.KnownTeamIdentifiers("NBA")
	require.Len(t, known, 90)
	for _, raw := range known {
		_, err := r.NormalizeTeamCode(raw, "NBA")
		require.NoError(t, err, raw)
	}

	code, err := r.NormalizeTeamCode("golden state warriors", "")
	require.NoError(t, err)
	assert.Equal(t, "GSW", code)

	code, err = r.NormalizeTeamCode("Lakers", "nba")
	require.NoError(t, err)
	assert.Equal(t, "LAL", code)
}

func TestRegistry_UnknownValuesFail(t *testing.T) {
	t.Parallel()

	r := NewRegistry()

	_, err := r.NormalizePropCategory("zzz_unknown_stat", "NBA", "prizepicks")
	require.Error(t, err)
	var taxErr *Error
	require.True(t, errors.As(err, &taxErr))
	assert.Equal(t, KindPropCategory, taxErr.Kind)
	assert.Equal(t, "prizepicks", taxErr.Provider)
	assert.True(t, errors.Is(err, ErrUnmapped))

	_, err = r.NormalizeTeamCode("Seattle SuperSonics", "NBA")
	require.True(t, errors.As(err, &taxErr))
	assert.Equal(t, KindTeam, taxErr.Kind)

	_, err = r.NormalizeTeamCode("LAL", "NFL")
	assert.Error(t, err)
}

func TestRegistry_CaseInsensitiveAndHeuristics(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	cases := map[string]prop.Type{
		"points":                prop.TypePoints,
		"PTS+REBS+ASTS":         prop.TypePointsReboundsAssists,
		"Total Rebounds O/U":    prop.TypeRebounds,
		"3-Pointers Attempted":  prop.TypeThreePointersMade,
		"Player Three Pointers": prop.TypeThreePointersMade,
		"pts + ast":             prop.TypePointsAssists,
		"Reb + Ast":             prop.TypeReboundsAssists,
		"Steals and Blocks":     prop.TypeStealsBlocks,
		"Triple Doubles":        prop.TypeTripleDouble,
		"double-double yes/no":  prop.TypeDoubleDouble,
		"Fantasy Pts":           prop.TypeFantasyScore,
		"Total Turnovers":       prop.TypeTurnovers,
		"FT made (game)":        prop.TypeFreeThrowsMade,
		"FG":                    prop.TypeFieldGoalsMade,
		"Mins played":           prop.TypeMinutes,
		"Total Points Scored":   prop.TypePoints,
		"Made 3s":               prop.TypeThreePointersMade,
		"Q1 3":                  prop.TypeThreePointersMade,
	}
	for raw, want := range cases {
		got, err := r.NormalizePropCategory(raw, "NBA", "")
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}
}

func TestRegistry_ScopedMappings(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	require.NoError(t, r.AddPropMapping("Big Number", prop.TypeFantasyScore, "NBA", "sleeper"))
	require.NoError(t, r.AddPropMapping("Points", prop.TypeFantasyScore, "", "oddball"))

	got, err := r.NormalizePropCategory("Big Number", "NBA", "Sleeper")
	require.NoError(t, err)
	assert.Equal(t, prop.TypeFantasyScore, got)

	_, err = r.NormalizePropCategory("Big Number", "NBA", "prizepicks")
	assert.Error(t, err)

	got, err = r.NormalizePropCategory("Points", "NBA", "oddball")
	require.NoError(t, err)
	assert.Equal(t, prop.TypeFantasyScore, got)

	got, err = r.NormalizePropCategory("Points", "NBA", "prizepicks")
	require.NoError(t, err)
	assert.Equal(t, prop.TypePoints, got)

	assert.ErrorContains(t, r.AddPropMapping("x", prop.Type("nonsense"), "", ""), `unknown prop type "nonsense"`)
	assert.ErrorContains(t, r.AddPropMapping(" ", prop.TypePoints, "", ""), "requires a raw category")
	err = r.AddTeamMapping("", "LAL", "")
	assert.ErrorContains(t, err, "requires raw value and code")
	assert.False(t, errors.Is(err, ErrUnmapped))
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = r.AddPropMapping(fmt.Sprintf("custom-%d", i), prop.TypeMinutes, "NBA", "")
			_ = r.AddTeamMapping(fmt.Sprintf("Alias %d", i), "BOS", "NBA")
		}(i)
		go func() {
			defer wg.Done()
			_, _ = r.NormalizePropCategory("Rebounds", "NBA", "")
			_, _ = r.NormalizeTeamCode("Celtics", "NBA")
		}()
	}
	wg.Wait()

	for i := 0; i < 16; i++ {
		got, err := r.NormalizePropCategory(fmt.Sprintf("custom-%d", i), "NBA", "")
		require.NoError(t, err)
		assert.Equal(t, prop.TypeMinutes, got)
	}
}

func TestOverrides_LoadAndApply(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "taxonomy.toml")
	doc := `
[[props]]
raw = "Pts Scored Tonight"
type = "points"
provider = "sleeper"

[[teams]]
raw = "LA Lakers"
code = "lal"
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	overrides, err := LoadOverrides(path)
	require.NoError(t, err)
	require.Len(t, overrides.Props, 1)

	r := NewRegistry()
	require.NoError(t, overrides.Apply(r))

	code, err := r.NormalizeTeamCode("LA Lakers", "")
	require.NoError(t, err)
	assert.Equal(t, "LAL", code)

	bad, err := ParseOverrides("[[props]]\nraw = \"x\"\ntype = \"bogus\"\n")
	require.NoError(t, err)
	assert.Error(t, bad.Apply(r))
}
