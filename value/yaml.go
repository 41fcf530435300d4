package value

import (
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/arloliu/treeblob/errs"
	"github.com/arloliu/treeblob/format"
)

// Resolved YAML tags.
const (
	yamlNullTag      = "!!null"
	yamlBoolTag      = "!!bool"
	yamlIntTag       = "!!int"
	yamlFloatTag     = "!!float"
	yamlStrTag       = "!!str"
	yamlBinaryTag    = "!!binary"
	yamlTimestampTag = "!!timestamp"
	yamlMergeTag     = "!!merge"
)

// maxYAMLDepth bounds alias expansion.
const maxYAMLDepth = 1000

// FromYAML parses a single YAML document into a Value.
//
// Mapping order is preserved, !!binary scalars become Bytes, timestamps stay
// Strings, and merge keys (<<) are expanded without overriding explicit keys.
// An empty document yields Null.
func FromYAML(data []byte) (Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Value{}, fmt.Errorf("parsing yaml: %w", err)
	}

	if doc.Kind == 0 {
		return Null(), nil
	}

	v, err := fromYAMLNode(&doc, 0)
	if err != nil {
		return Value{}, fmt.Errorf("parsing yaml: %w", err)
	}

	return v, nil
}

func fromYAMLNode(n *yaml.Node, depth int) (Value, error) {
	if depth > maxYAMLDepth {
		return Value{}, errors.New("document nested too deeply")
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Null(), nil
		}

		return fromYAMLNode(n.Content[0], depth+1)
	case yaml.AliasNode:
		return fromYAMLNode(n.Alias, depth+1)
	case yaml.SequenceNode:
		arr := NewArray()
		for _, c := range n.Content {
			elem, err := fromYAMLNode(c, depth+1)
			if err != nil {
				return Value{}, err
			}
			arr.arr.elems = append(arr.arr.elems, elem)
		}

		return arr, nil
	case yaml.MappingNode:
		obj := NewObject()
		if err := addYAMLMapping(obj, n, depth); err != nil {
			return Value{}, err
		}

		return obj, nil
	case yaml.ScalarNode:
		return fromYAMLScalar(n)
	default:
		return Value{}, fmt.Errorf("unexpected yaml node kind %d", n.Kind)
	}
}

func addYAMLMapping(obj Value, n *yaml.Node, depth int) error {
	var merges []*yaml.Node

	for i := 0; i+1 < len(n.Content); i += 2 {
		k, val := n.Content[i], n.Content[i+1]
		if k.ShortTag() == yamlMergeTag {
			merges = append(merges, val)
			continue
		}

		member, err := fromYAMLNode(val, depth+1)
		if err != nil {
			return err
		}

		if k.Value != "" {
			_ = obj.Set(k.Value, member)
		}
	}

	for _, m := range merges {
		src, err := fromYAMLNode(m, depth+1)
		if err != nil {
			return err
		}

		sources := []Value{src}
		if src.Type() == format.TypeArray {
			sources = src.arr.elems
		}

		for _, s := range sources {
			for key, val := range s.All() {
				if !obj.Has(key) {
					_ = obj.Set(key, val)
				}
			}
		}
	}

	return nil
}

func fromYAMLScalar(n *yaml.Node) (Value, error) {
	switch n.ShortTag() {
	case yamlNullTag:
		return Null(), nil
	case yamlBoolTag:
		var b bool
		if err := n.Decode(&b); err != nil {
			return Value{}, err
		}

		return Bool(b), nil
	case yamlIntTag:
		var i int64
		if err := n.Decode(&i); err == nil {
			return Int64(i), nil
		}

		var f float64
		if err := n.Decode(&f); err != nil {
			return Value{}, err
		}

		return Float64(f), nil
	case yamlFloatTag:
		var f float64
		if err := n.Decode(&f); err != nil {
			return Value{}, err
		}

		return Float64(f), nil
	case yamlBinaryTag:
		raw, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(n.Value), ""))
		if err != nil {
			return Value{}, fmt.Errorf("invalid !!binary scalar: %w", err)
		}

		return Bytes(raw), nil
	case yamlStrTag, yamlTimestampTag:
		return String(n.Value), nil
	default:
		// custom tags keep their literal text
		return String(n.Value), nil
	}
}

// ToYAML renders v as a YAML document with object members in order.
// Undefined members and elements are omitted.
func ToYAML(v Value) ([]byte, error) {
	n, err := toYAMLNode(v)
	if err != nil {
		return nil, err
	}

	return yaml.Marshal(n)
}

// MarshalYAML lets a Value be embedded in structs marshaled by yaml.v3.
func (v Value) MarshalYAML() (any, error) {
	return toYAMLNode(v)
}

// UnmarshalYAML lets a Value be decoded from yaml.v3 documents.
func (v *Value) UnmarshalYAML(n *yaml.Node) error {
	parsed, err := fromYAMLNode(n, 0)
	if err != nil {
		return err
	}
	*v = parsed

	return nil
}

func toYAMLNode(v Value) (*yaml.Node, error) {
	switch v.typ {
	case format.TypeNull:
		return yamlScalar(yamlNullTag, "null"), nil
	case format.TypeBool:
		return yamlScalar(yamlBoolTag, strconv.FormatBool(v.num != 0)), nil
	case format.TypeInt64:
		return yamlScalar(yamlIntTag, strconv.FormatInt(int64(v.num), 10)), nil //nolint:gosec
	case format.TypeFloat64:
		return yamlScalar(yamlFloatTag, yamlFloat(math.Float64frombits(v.num))), nil
	case format.TypeString:
		return yamlScalar(yamlStrTag, v.str), nil
	case format.TypeBytes:
		return yamlScalar(yamlBinaryTag, base64.StdEncoding.EncodeToString(v.raw)), nil
	case format.TypeObject:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, m := range v.obj.members {
			if !m.Value.IsValid() {
				continue
			}

			child, err := toYAMLNode(m.Value)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, yamlScalar(yamlStrTag, m.Key), child)
		}

		return n, nil
	case format.TypeArray:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, e := range v.arr.elems {
			if !e.IsValid() {
				continue
			}

			child, err := toYAMLNode(e)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, child)
		}

		return n, nil
	default:
		return nil, fmt.Errorf("%w: undefined value", errs.ErrUnsupportedType)
	}
}

func yamlScalar(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

func yamlFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	}

	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}

	return s
}
