package value

import (
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"

	"github.com/arloliu/treeblob/errs"
)

// cborEncMode uses Core Deterministic Encoding: sorted map keys and the
// shortest integer and float forms, so equal trees give identical bytes.
var cborEncMode cbor.EncMode

// cborDecMode decodes maps into map[string]any; non-string keys are an error.
var cborDecMode cbor.DecMode

func init() {
	var err error

	cborEncMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("value: CBOR encoder initialization failed: " + err.Error())
	}

	cborDecMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("value: CBOR decoder initialization failed: " + err.Error())
	}
}

// FromCBOR decodes a CBOR data item into a Value.
//
// Byte strings become Bytes, text strings become Strings, and map keys come
// out in sorted order. Positive integers above math.MaxInt64 are not
// representable and are rejected at the top level or left undefined inside
// containers.
func FromCBOR(data []byte) (Value, error) {
	var decoded any
	if err := cborDecMode.Unmarshal(data, &decoded); err != nil {
		return Value{}, fmt.Errorf("parsing cbor: %w", err)
	}

	return FromAny(decoded)
}

// ToCBOR encodes v as a deterministic CBOR data item.
func ToCBOR(v Value) ([]byte, error) {
	if !v.IsValid() {
		return nil, fmt.Errorf("%w: undefined value", errs.ErrUnsupportedType)
	}

	return cborEncMode.Marshal(v.Interface())
}
