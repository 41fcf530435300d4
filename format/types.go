// Package format defines the tag and enum types shared by every layer of a
// treeblob artifact.
package format

type (
	// Type is the one-byte tag stored with every value in a treeblob buffer.
	Type uint8
	// CompressionType identifies the codec used by a compressed envelope.
	CompressionType uint8
)

const (
	TypeInvalid Type = 0x0 // TypeInvalid marks a missing or unknown value.
	TypeNull    Type = 0x1 // TypeNull represents the null value.
	TypeBool    Type = 0x2 // TypeBool represents a boolean.
	TypeInt64   Type = 0x3 // TypeInt64 represents a signed 64-bit integer.
	TypeFloat64 Type = 0x4 // TypeFloat64 represents an IEEE 754 double.
	TypeBytes   Type = 0x5 // TypeBytes represents an opaque byte blob.
	TypeString  Type = 0x6 // TypeString represents a UTF-8 string.
	TypeObject  Type = 0x7 // TypeObject represents a keyed container.
	TypeArray   Type = 0x8 // TypeArray represents a positional container.

	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
)

// Type names reported by the proxy layer.
const (
	NameObject    = "object"
	NameArray     = "array"
	NameString    = "string"
	NameNumber    = "number"
	NameBoolean   = "boolean"
	NameNull      = "null"
	NameBytes     = "bytes"
	NameUndefined = "undefined"
)

func (t Type) String() string {
	switch t {
	case TypeNull:
		return "Null"
	case TypeBool:
		return "Bool"
	case TypeInt64:
		return "Int64"
	case TypeFloat64:
		return "Float64"
	case TypeBytes:
		return "Bytes"
	case TypeString:
		return "String"
	case TypeObject:
		return "Object"
	case TypeArray:
		return "Array"
	default:
		return "Invalid"
	}
}

// Name returns the type name exposed to proxy callers.
//
// Int64 and Float64 both report "number"; anything that is not one of the
// eight value kinds reports "undefined".
func (t Type) Name() string {
	switch t {
	case TypeObject:
		return NameObject
	case TypeArray:
		return NameArray
	case TypeString:
		return NameString
	case TypeInt64, TypeFloat64:
		return NameNumber
	case TypeBool:
		return NameBoolean
	case TypeNull:
		return NameNull
	case TypeBytes:
		return NameBytes
	default:
		return NameUndefined
	}
}

// IsValid reports whether t is one of the eight value kinds.
func (t Type) IsValid() bool {
	return t >= TypeNull && t <= TypeArray
}

// IsContainer reports whether t is an Object or an Array.
func (t Type) IsContainer() bool {
	return t == TypeObject || t == TypeArray
}

// IsScalar reports whether t is a valid non-container kind.
func (t Type) IsScalar() bool {
	return t.IsValid() && !t.IsContainer()
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}
