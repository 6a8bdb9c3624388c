package player

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlayer_RefreshBackfillsMissingRefOnly(t *testing.T) {
	t.Parallel()

	p := Player{Name: "LeBron James", Team: "LAL", ExternalRefs: map[string]string{"prizepicks": "pp-1"}}

	assert.False(t, p.Refresh("LeBron James", "LAL", "", "prizepicks", "pp-other"))
	assert.Equal(t, "pp-1", p.ExternalRefs["prizepicks"])

	assert.True(t, p.Refresh("LeBron James", "LAL", "F", "underdog", "ud-9"))
	ref, ok := p.ExternalRef("underdog")
	assert.True(t, ok)
	assert.Equal(t, "ud-9", ref)
	assert.Equal(t, "F", p.Position)
}
