package rawdata

import (
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestExtrasUnmarshalJSONKeepsOrderAndTypes(t *testing.T) {
	var extras Extras
	err := sonic.Unmarshal([]byte(`{"zeta":"G","promo":true,"boost_multiplier":1.5,"missing":null,"tiers":{"a":1},"tags":["x"]}`), &extras)
	require.NoError(t, err)

	assert.Equal(t, []string{"zeta", "promo", "boost_multiplier", "missing", "tiers", "tags"}, extras.Keys())

	position, ok := extras.String("zeta")
	require.True(t, ok)
	assert.Equal(t, "G", position)

	promo, ok := extras.Get("promo")
	require.True(t, ok)
	assert.Equal(t, true, promo)

	boost, ok := extras.Float("boost_multiplier")
	require.True(t, ok)
	assert.InDelta(t, 1.5, boost, 1e-9)

	missing, ok := extras.Get("missing")
	require.True(t, ok)
	assert.Nil(t, missing)

	tiers, _ := extras.Get("tiers")
	assert.JSONEq(t, `{"a":1}`, tiers.(string))
	tags, _ := extras.Get("tags")
	assert.JSONEq(t, `["x"]`, tags.(string))
}

func TestExtrasMarshalJSONRoundTripsOrder(t *testing.T) {
	extras := NewExtras("b", 2, "a", "x", "c", false)

	out, err := extras.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"b":2,"a":"x","c":false}`, string(out))

	var decoded Extras
	require.NoError(t, decoded.UnmarshalJSON(out))
	assert.Equal(t, extras.Keys(), decoded.Keys())
}

func TestExtrasUnmarshalJSONRejectsNonObjects(t *testing.T) {
	var extras Extras
	assert.Error(t, extras.UnmarshalJSON([]byte(`[1,2]`)))
	assert.Error(t, extras.UnmarshalJSON([]byte(`"promo"`)))

	require.NoError(t, extras.UnmarshalJSON([]byte(`null`)))
	assert.Equal(t, 0, extras.Len())
}

func TestExtrasUnmarshalYAML(t *testing.T) {
	var holder struct {
		Extras Extras `yaml:"additional_data"`
	}
	doc := "additional_data:\n  position: C\n  odds_boost: 1.25\n  tiers:\n    b: 2\n    a: 1\n"
	require.NoError(t, yaml.Unmarshal([]byte(doc), &holder))

	assert.Equal(t, []string{"position", "odds_boost", "tiers"}, holder.Extras.Keys())
	boost, ok := holder.Extras.Float("odds_boost")
	require.True(t, ok)
	assert.InDelta(t, 1.25, boost, 1e-9)
	tiers, _ := holder.Extras.Get("tiers")
	assert.Equal(t, `{"a":1,"b":2}`, tiers)
}
