package value

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/jsonc"

	"github.com/arloliu/treeblob/errs"
	"github.com/arloliu/treeblob/format"
)

// FromJSON parses JSON into a Value, preserving object member order.
//
// Comments and trailing commas (JSONC) are accepted. Number literals without
// a fraction or exponent become Int64 when they fit, everything else becomes
// Float64. Members with an empty key are dropped; a repeated key keeps the
// first position and the last value.
func FromJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	dec.UseNumber()

	v, err := readJSON(dec)
	if err != nil {
		return Value{}, fmt.Errorf("parsing json: %w", err)
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Value{}, errors.New("parsing json: trailing data after top-level value")
	}

	return v, nil
}

func readJSON(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return readJSONObject(dec)
		case '[':
			return readJSONArray(dec)
		default:
			return Value{}, fmt.Errorf("unexpected %q", t)
		}
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		return fromNumberLiteral(t.String()), nil
	default:
		return Value{}, fmt.Errorf("unexpected token %v", t)
	}
}

func readJSONObject(dec *json.Decoder) (Value, error) {
	obj := NewObject()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Value{}, err
		}

		key, ok := tok.(string)
		if !ok {
			return Value{}, fmt.Errorf("object key is %T", tok)
		}

		member, err := readJSON(dec)
		if err != nil {
			return Value{}, err
		}

		if key != "" {
			_ = obj.Set(key, member)
		}
	}

	// closing brace
	if _, err := dec.Token(); err != nil {
		return Value{}, err
	}

	return obj, nil
}

func readJSONArray(dec *json.Decoder) (Value, error) {
	arr := NewArray()
	for dec.More() {
		elem, err := readJSON(dec)
		if err != nil {
			return Value{}, err
		}
		arr.arr.elems = append(arr.arr.elems, elem)
	}

	// closing bracket
	if _, err := dec.Token(); err != nil {
		return Value{}, err
	}

	return arr, nil
}

// fromNumberLiteral classifies a JSON number literal as Int64 or Float64.
func fromNumberLiteral(s string) Value {
	if !strings.ContainsAny(s, ".eE") {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return Int64(i)
		}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return Value{}
	}

	return Float64(f)
}

// MarshalJSON renders v as JSON with object members in order.
//
// Bytes render as base64 strings and integral doubles keep a ".0" suffix so
// the numeric kind survives a FromJSON round trip. Undefined members and
// elements are omitted; NaN and infinities cannot be represented.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, v); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// UnmarshalJSON replaces v with the Value parsed from data.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := FromJSON(data)
	if err != nil {
		return err
	}
	*v = parsed

	return nil
}

func writeJSON(buf *bytes.Buffer, v Value) error {
	switch v.typ {
	case format.TypeNull:
		buf.WriteString("null")
	case format.TypeBool:
		buf.WriteString(strconv.FormatBool(v.num != 0))
	case format.TypeInt64:
		buf.Write(strconv.AppendInt(buf.AvailableBuffer(), int64(v.num), 10)) //nolint:gosec
	case format.TypeFloat64:
		return writeJSONFloat(buf, math.Float64frombits(v.num))
	case format.TypeString:
		return writeJSONString(buf, v.str)
	case format.TypeBytes:
		buf.WriteByte('"')
		buf.WriteString(base64.StdEncoding.EncodeToString(v.raw))
		buf.WriteByte('"')
	case format.TypeObject:
		buf.WriteByte('{')
		first := true
		for _, m := range v.obj.members {
			if !m.Value.IsValid() {
				continue
			}
			if !first {
				buf.WriteByte(',')
			}
			first = false

			if err := writeJSONString(buf, m.Key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := writeJSON(buf, m.Value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case format.TypeArray:
		buf.WriteByte('[')
		first := true
		for _, e := range v.arr.elems {
			if !e.IsValid() {
				continue
			}
			if !first {
				buf.WriteByte(',')
			}
			first = false

			if err := writeJSON(buf, e); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		return fmt.Errorf("%w: undefined value", errs.ErrUnsupportedType)
	}

	return nil
}

func writeJSONFloat(buf *bytes.Buffer, f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("%w: %v has no JSON form", errs.ErrUnsupportedType, f)
	}

	fmtByte := byte('f')
	if abs := math.Abs(f); abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		fmtByte = 'e'
	}

	b := strconv.AppendFloat(buf.AvailableBuffer(), f, fmtByte, -1, 64)
	if !bytes.ContainsAny(b, ".e") {
		b = append(b, '.', '0')
	}
	buf.Write(b)

	return nil
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	quoted, err := json.Marshal(s)
	if err != nil {
		return err
	}
	buf.Write(quoted)

	return nil
}
