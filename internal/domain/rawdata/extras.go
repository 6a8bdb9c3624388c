package rawdata

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/bytedance/sonic/ast"
	"gopkg.in/yaml.v3"
)

// Extras is the open-ended provider bag (position, boost hints, promo flags).
// Keys keep insertion order and values are restricted to string, float64, bool
// or nil. Nested provider structures are kept as their raw JSON text.
type Extras struct {
	keys   []string
	values map[string]any
}

// NewExtras builds an Extras from alternating key/value pairs.
func NewExtras(pairs ...any) Extras {
	var e Extras
	for i := 0; i+1 < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			continue
		}
		e.Set(key, pairs[i+1])
	}
	return e
}

func (e *Extras) Set(key string, value any) {
	key = strings.TrimSpace(key)
	if key == "" {
		return
	}
	if e.values == nil {
		e.values = make(map[string]any)
	}
	if _, exists := e.values[key]; !exists {
		e.keys = append(e.keys, key)
	}
	e.values[key] = scalar(value)
}

func (e Extras) Get(key string) (any, bool) {
	if e.values == nil {
		return nil, false
	}
	v, ok := e.values[key]
	return v, ok
}

// Float probes key for a numeric value; numeric strings are accepted.
func (e Extras) Float(key string) (float64, bool) {
	v, ok := e.Get(key)
	if !ok {
		return 0, false
	}
	switch typed := v.(type) {
	case float64:
		return typed, true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(typed), 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

func (e Extras) String(key string) (string, bool) {
	v, ok := e.Get(key)
	if !ok || v == nil {
		return "", false
	}
	switch typed := v.(type) {
	case string:
		return typed, true
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(typed), true
	default:
		return "", false
	}
}

func (e Extras) Keys() []string {
	return append([]string(nil), e.keys...)
}

func (e Extras) Len() int {
	return len(e.keys)
}

// Map returns an unordered copy, used when the bag is persisted as part of a
// larger JSON document.
func (e Extras) Map() map[string]any {
	out := make(map[string]any, len(e.keys))
	for _, key := range e.keys {
		out[key] = e.values[key]
	}
	return out
}

func (e Extras) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range e.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := sonic.ConfigStd.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := sonic.ConfigStd.Marshal(e.values[key])
		if err != nil {
			return nil, fmt.Errorf("marshal extras key %q: %w", key, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON walks the object with sonic's ast so keys keep source order.
func (e *Extras) UnmarshalJSON(data []byte) error {
	*e = Extras{}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	root, err := sonic.Get(trimmed)
	if err != nil {
		return fmt.Errorf("decode additional data: %w", err)
	}
	if root.TypeSafe() != ast.V_OBJECT {
		return fmt.Errorf("additional data must be a JSON object")
	}

	var walkErr error
	err = root.ForEach(func(path ast.Sequence, node *ast.Node) bool {
		if path.Key == nil {
			walkErr = fmt.Errorf("additional data key must be a string")
			return false
		}
		value, err := nodeScalar(node)
		if err != nil {
			walkErr = fmt.Errorf("decode additional data key %q: %w", *path.Key, err)
			return false
		}
		e.Set(*path.Key, value)
		return true
	})
	if walkErr != nil {
		return walkErr
	}
	if err != nil {
		return fmt.Errorf("decode additional data: %w", err)
	}
	return nil
}

func (e *Extras) UnmarshalYAML(node *yaml.Node) error {
	*e = Extras{}
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("additional data must be a mapping (line %d)", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valueNode := node.Content[i], node.Content[i+1]
		if valueNode.Kind != yaml.ScalarNode {
			var nested any
			if err := valueNode.Decode(&nested); err != nil {
				return err
			}
			encoded, err := sonic.ConfigStd.Marshal(nested)
			if err != nil {
				return err
			}
			e.Set(keyNode.Value, string(encoded))
			continue
		}
		var value any
		if err := valueNode.Decode(&value); err != nil {
			return err
		}
		e.Set(keyNode.Value, value)
	}
	return nil
}

// nodeScalar keeps scalars typed and nested objects or arrays as raw JSON text.
func nodeScalar(node *ast.Node) (any, error) {
	switch node.TypeSafe() {
	case ast.V_NULL:
		return nil, nil
	case ast.V_TRUE:
		return true, nil
	case ast.V_FALSE:
		return false, nil
	case ast.V_STRING:
		return node.String()
	case ast.V_NUMBER:
		return node.Float64()
	case ast.V_OBJECT, ast.V_ARRAY:
		return node.Raw()
	default:
		if err := node.Check(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("unsupported JSON value type %d", node.TypeSafe())
	}
}

func scalar(value any) any {
	switch typed := value.(type) {
	case nil:
		return nil
	case string:
		return typed
	case bool:
		return typed
	case float64:
		return typed
	case float32:
		return float64(typed)
	case int:
		return float64(typed)
	case int32:
		return float64(typed)
	case int64:
		return float64(typed)
	case uint:
		return float64(typed)
	case uint64:
		return float64(typed)
	case interface{ Float64() (float64, error) }:
		if f, err := typed.Float64(); err == nil {
			return f
		}
		return fmt.Sprint(typed)
	default:
		return fmt.Sprint(typed)
	}
}
