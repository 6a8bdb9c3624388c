package propfeed

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/riskibarqy/propline/internal/domain/rawdata"
	"github.com/riskibarqy/propline/internal/usecase"
	"gopkg.in/yaml.v3"
)

// FileProvider serves raw props from a JSON or YAML fixture on disk. The file
// is read on every fetch so it can be edited between runs.
//
// Accepted shapes: a bare list of props, or {"data": [...]}.
type FileProvider struct {
	name  string
	path  string
	sport string
}

func NewFileProvider(name, path, sport string) (*FileProvider, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil, errors.New("file provider name is required")
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.Newf("file provider %s: fixture path is required", name)
	}
	return &FileProvider{name: name, path: path, sport: strings.TrimSpace(sport)}, nil
}

func (p *FileProvider) Name() string {
	return p.name
}

func (p *FileProvider) FetchBatch(_ context.Context, limit int) ([]rawdata.ExternalProp, error) {
	raw, err := os.ReadFile(p.path)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "read fixture %s", p.path), usecase.ErrProviderFetch)
	}

	items, err := decodeFixture(p.path, raw)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "decode fixture %s", p.path), usecase.ErrProviderFetch)
	}

	for i := range items {
		if strings.TrimSpace(items[i].ProviderName) == "" {
			items[i].ProviderName = p.name
		}
		if strings.TrimSpace(items[i].Sport) == "" {
			items[i].Sport = p.sport
		}
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func decodeFixture(path string, raw []byte) ([]rawdata.ExternalProp, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return decodeYAMLFixture(raw)
	default:
		return decodeJSONFixture(raw)
	}
}

func decodeJSONFixture(raw []byte) ([]rawdata.ExternalProp, error) {
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		var items []rawdata.ExternalProp
		if err := sonic.UnmarshalString(trimmed, &items); err != nil {
			return nil, err
		}
		return items, nil
	}

	var envelope feedEnvelope
	if err := sonic.UnmarshalString(trimmed, &envelope); err != nil {
		return nil, err
	}
	return envelope.Data, nil
}

func decodeYAMLFixture(raw []byte) ([]rawdata.ExternalProp, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return nil, err
	}
	if len(node.Content) == 0 {
		return nil, nil
	}

	root := node.Content[0]
	if root.Kind == yaml.MappingNode {
		var envelope struct {
			Data []rawdata.ExternalProp `yaml:"data"`
		}
		if err := root.Decode(&envelope); err != nil {
			return nil, err
		}
		return envelope.Data, nil
	}

	var items []rawdata.ExternalProp
	if err := root.Decode(&items); err != nil {
		return nil, err
	}
	return items, nil
}
