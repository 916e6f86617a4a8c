package machine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// UnmarshalJSON accepts an object, a bare next-state string or a list of either.
func (s *OutcomeSet) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	set, err := outcomesFrom(raw)
	if err != nil {
		return err
	}
	*s = set
	return nil
}

// MarshalJSON writes a single outcome as an object and choices as a list.
func (s OutcomeSet) MarshalJSON() ([]byte, error) {
	if len(s) == 1 {
		return json.Marshal(s[0])
	}
	return json.Marshal([]OutcomeSpec(s))
}

// UnmarshalYAML accepts the same shapes as UnmarshalJSON.
func (s *OutcomeSet) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	set, err := outcomesFrom(raw)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*s = set
	return nil
}

// MarshalYAML mirrors MarshalJSON.
func (s OutcomeSet) MarshalYAML() (any, error) {
	if len(s) == 1 {
		return s[0], nil
	}
	return []OutcomeSpec(s), nil
}

func outcomesFrom(raw any) (OutcomeSet, error) {
	switch v := raw.(type) {
	case string:
		return OutcomeSet{{Next: v}}, nil
	case []any:
		set := make(OutcomeSet, 0, len(v))
		for i, item := range v {
			o, err := outcomeFrom(item)
			if err != nil {
				return nil, fmt.Errorf("choice %d: %w", i, err)
			}
			set = append(set, o)
		}
		return set, nil
	default:
		o, err := outcomeFrom(raw)
		if err != nil {
			return nil, err
		}
		return OutcomeSet{o}, nil
	}
}

func outcomeFrom(raw any) (OutcomeSpec, error) {
	switch v := raw.(type) {
	case string:
		return OutcomeSpec{Next: v}, nil
	case map[string]any, map[any]any:
		var o OutcomeSpec
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           &o,
			WeaklyTypedInput: true,
			ErrorUnused:      true,
		})
		if err != nil {
			return o, err
		}
		if err := dec.Decode(v); err != nil {
			return o, fmt.Errorf("invalid outcome: %w", err)
		}
		return o, nil
	default:
		return OutcomeSpec{}, fmt.Errorf("invalid outcome type %T", raw)
	}
}

// outcomeSetHook lets mapstructure reuse the shorthand rules for loosely typed input.
func outcomeSetHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(OutcomeSet{}) {
		return data, nil
	}
	return outcomesFrom(data)
}

// FromMap decodes a definition from loosely typed data such as Markdown front matter.
func FromMap(data map[string]any) (*Definition, error) {
	var def Definition
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       outcomeSetHook,
		Result:           &def,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(data); err != nil {
		return nil, fmt.Errorf("failed to decode machine: %w", err)
	}
	return &def, nil
}

// ParseJSON decodes a JSON definition, refusing unknown fields.
func ParseJSON(data []byte) (*Definition, error) {
	var def Definition
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&def); err != nil {
		return nil, fmt.Errorf("failed to parse machine json: %w", err)
	}
	return &def, nil
}

// ParseYAML decodes a YAML definition, refusing unknown fields.
func ParseYAML(data []byte) (*Definition, error) {
	var def Definition
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&def); err != nil {
		return nil, fmt.Errorf("failed to parse machine yaml: %w", err)
	}
	return &def, nil
}

// Parse picks the decoder from a file name extension (.json, .yaml, .yml).
func Parse(name string, data []byte) (*Definition, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return ParseJSON(data)
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return nil, fmt.Errorf("unsupported machine format %q", filepath.Ext(name))
	}
}

// MarshalYAML renders a definition back to YAML.
func MarshalYAML(def *Definition) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(def); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
