package confstack

import "fmt"

// ConfigType enumerates the primitive and array content tags a ConfigValue
// may carry (spec.md §3).
type ConfigType int

const (
	TypeString ConfigType = iota
	TypeInt
	TypeDouble
	TypeBool
	TypeBytes
	TypeStringArray
	TypeIntArray
	TypeDoubleArray
	TypeBoolArray
	TypeByteChunkArray
)

func (t ConfigType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInt:
		return "int"
	case TypeDouble:
		return "double"
	case TypeBool:
		return "bool"
	case TypeBytes:
		return "bytes"
	case TypeStringArray:
		return "stringArray"
	case TypeIntArray:
		return "intArray"
	case TypeDoubleArray:
		return "doubleArray"
	case TypeBoolArray:
		return "boolArray"
	case TypeByteChunkArray:
		return "byteChunkArray"
	default:
		return "unknown"
	}
}

// TypeMismatch is returned by ConfigContent's typed accessors when the
// requested type does not match the content's actual tag (V1).
type TypeMismatch struct {
	Actual    ConfigType
	Requested ConfigType
}

func (e *TypeMismatch) Error() string {
	return fmt.Sprintf("confstack: type mismatch: requested %s but value is %s", e.Requested, e.Actual)
}

// ConfigContent is a tagged union parallel to ConfigType, carrying the
// actual payload for exactly one variant. Construct one via the NewXxx
// constructors; the zero value is not a valid ConfigContent.
type ConfigContent struct {
	typ            ConfigType
	str            string
	i              int64
	f              float64
	b              bool
	bytes          []byte
	strArray       []string
	intArray       []int64
	doubleArray    []float64
	boolArray      []bool
	byteChunkArray [][]byte
}

// Type returns the content's tag.
func (c ConfigContent) Type() ConfigType { return c.typ }

func NewStringContent(v string) ConfigContent { return ConfigContent{typ: TypeString, str: v} }
func NewIntContent(v int64) ConfigContent     { return ConfigContent{typ: TypeInt, i: v} }
func NewDoubleContent(v float64) ConfigContent {
	return ConfigContent{typ: TypeDouble, f: v}
}
func NewBoolContent(v bool) ConfigContent   { return ConfigContent{typ: TypeBool, b: v} }
func NewBytesContent(v []byte) ConfigContent { return ConfigContent{typ: TypeBytes, bytes: v} }
func NewStringArrayContent(v []string) ConfigContent {
	return ConfigContent{typ: TypeStringArray, strArray: v}
}
func NewIntArrayContent(v []int64) ConfigContent {
	return ConfigContent{typ: TypeIntArray, intArray: v}
}
func NewDoubleArrayContent(v []float64) ConfigContent {
	return ConfigContent{typ: TypeDoubleArray, doubleArray: v}
}
func NewBoolArrayContent(v []bool) ConfigContent {
	return ConfigContent{typ: TypeBoolArray, boolArray: v}
}
func NewByteChunkArrayContent(v [][]byte) ConfigContent {
	return ConfigContent{typ: TypeByteChunkArray, byteChunkArray: v}
}

func (c ConfigContent) String() (string, error) {
	if c.typ != TypeString {
		return "", &TypeMismatch{Actual: c.typ, Requested: TypeString}
	}
	return c.str, nil
}

func (c ConfigContent) Int() (int64, error) {
	if c.typ != TypeInt {
		return 0, &TypeMismatch{Actual: c.typ, Requested: TypeInt}
	}
	return c.i, nil
}

func (c ConfigContent) Double() (float64, error) {
	if c.typ != TypeDouble {
		return 0, &TypeMismatch{Actual: c.typ, Requested: TypeDouble}
	}
	return c.f, nil
}

func (c ConfigContent) Bool() (bool, error) {
	if c.typ != TypeBool {
		return false, &TypeMismatch{Actual: c.typ, Requested: TypeBool}
	}
	return c.b, nil
}

func (c ConfigContent) Bytes() ([]byte, error) {
	if c.typ != TypeBytes {
		return nil, &TypeMismatch{Actual: c.typ, Requested: TypeBytes}
	}
	return c.bytes, nil
}

func (c ConfigContent) StringArray() ([]string, error) {
	if c.typ != TypeStringArray {
		return nil, &TypeMismatch{Actual: c.typ, Requested: TypeStringArray}
	}
	return c.strArray, nil
}

func (c ConfigContent) IntArray() ([]int64, error) {
	if c.typ != TypeIntArray {
		return nil, &TypeMismatch{Actual: c.typ, Requested: TypeIntArray}
	}
	return c.intArray, nil
}

func (c ConfigContent) DoubleArray() ([]float64, error) {
	if c.typ != TypeDoubleArray {
		return nil, &TypeMismatch{Actual: c.typ, Requested: TypeDoubleArray}
	}
	return c.doubleArray, nil
}

func (c ConfigContent) BoolArray() ([]bool, error) {
	if c.typ != TypeBoolArray {
		return nil, &TypeMismatch{Actual: c.typ, Requested: TypeBoolArray}
	}
	return c.boolArray, nil
}

func (c ConfigContent) ByteChunkArray() ([][]byte, error) {
	if c.typ != TypeByteChunkArray {
		return nil, &TypeMismatch{Actual: c.typ, Requested: TypeByteChunkArray}
	}
	return c.byteChunkArray, nil
}

// Display renders the content's payload as a string, used by ConfigValue's
// redaction-aware Display and by the file access-log sink.
func (c ConfigContent) Display() string {
	switch c.typ {
	case TypeString:
		return c.str
	case TypeInt:
		return fmt.Sprintf("%d", c.i)
	case TypeDouble:
		return fmt.Sprintf("%g", c.f)
	case TypeBool:
		return fmt.Sprintf("%t", c.b)
	case TypeBytes:
		return fmt.Sprintf("%d bytes", len(c.bytes))
	case TypeStringArray:
		return fmt.Sprintf("%v", c.strArray)
	case TypeIntArray:
		return fmt.Sprintf("%v", c.intArray)
	case TypeDoubleArray:
		return fmt.Sprintf("%v", c.doubleArray)
	case TypeBoolArray:
		return fmt.Sprintf("%v", c.boolArray)
	case TypeByteChunkArray:
		return fmt.Sprintf("%d chunks", len(c.byteChunkArray))
	default:
		return ""
	}
}

// Equal reports whether two ConfigContent values have the same tag and
// payload, used by R2 round-trip tests and by the reloading provider's
// change-detection comparison.
func (c ConfigContent) Equal(other ConfigContent) bool {
	if c.typ != other.typ {
		return false
	}
	switch c.typ {
	case TypeString:
		return c.str == other.str
	case TypeInt:
		return c.i == other.i
	case TypeDouble:
		return c.f == other.f
	case TypeBool:
		return c.b == other.b
	case TypeBytes:
		return string(c.bytes) == string(other.bytes)
	case TypeStringArray:
		return equalSlices(c.strArray, other.strArray)
	case TypeIntArray:
		return equalSlices(c.intArray, other.intArray)
	case TypeDoubleArray:
		return equalSlices(c.doubleArray, other.doubleArray)
	case TypeBoolArray:
		return equalSlices(c.boolArray, other.boolArray)
	case TypeByteChunkArray:
		if len(c.byteChunkArray) != len(other.byteChunkArray) {
			return false
		}
		for i := range c.byteChunkArray {
			if string(c.byteChunkArray[i]) != string(other.byteChunkArray[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func equalSlices[T comparable](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
