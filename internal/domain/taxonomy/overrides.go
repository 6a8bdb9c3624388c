package taxonomy

import (
	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
	"github.com/riskibarqy/propline/internal/domain/prop"
)

// Overrides is the TOML document of provider- and sport-scoped mappings
// applied on top of the seeded vocabulary.
//
//	[[props]]
//	raw = "Pts Scored"
//	type = "points"
//	provider = "sleeper"
//
//	[[teams]]
//	raw = "LA Lakers"
//	code = "LAL"
type Overrides struct {
	Props []PropOverride `toml:"props"`
	Teams []TeamOverride `toml:"teams"`
}

type PropOverride struct {
	Raw      string `toml:"raw"`
	Type     string `toml:"type"`
	Sport    string `toml:"sport"`
	Provider string `toml:"provider"`
}

type TeamOverride struct {
	Raw   string `toml:"raw"`
	Code  string `toml:"code"`
	Sport string `toml:"sport"`
}

func LoadOverrides(path string) (Overrides, error) {
	var out Overrides
	meta, err := toml.DecodeFile(path, &out)
	if err != nil {
		return Overrides{}, errors.Wrapf(err, "decode taxonomy overrides %s", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Overrides{}, errors.Newf("taxonomy overrides %s: unknown key %s", path, undecoded[0].String())
	}
	return out, nil
}

func ParseOverrides(doc string) (Overrides, error) {
	var out Overrides
	if _, err := toml.Decode(doc, &out); err != nil {
		return Overrides{}, errors.Wrap(err, "decode taxonomy overrides")
	}
	return out, nil
}

// Apply registers every override, stopping at the first invalid entry.
func (o Overrides) Apply(r *Registry) error {
	for i, item := range o.Props {
		if err := r.AddPropMapping(item.Raw, prop.Type(item.Type), item.Sport, item.Provider); err != nil {
			return errors.Wrapf(err, "props[%d]", i)
		}
	}
	for i, item := range o.Teams {
		if err := r.AddTeamMapping(item.Raw, item.Code, item.Sport); err != nil {
			return errors.Wrapf(err, "teams[%d]", i)
		}
	}
	return nil
}
