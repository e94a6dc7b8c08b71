// Package textvalue converts raw string values, as found in environment
// variables, CLI arguments, and directory-file contents, into typed
// ConfigContent per spec.md §4.2. It is shared by the envvar, cliargs, and
// dirfiles providers so the three text-sourced providers agree on grammar.
package textvalue

import (
	"encoding/base64"
	"strconv"
	"strings"

	"github.com/mapoio/confstack"
)

// Parse converts raw (a single textual value, or a separator-joined list
// for array types) into ConfigContent matching typ.
func Parse(raw string, typ confstack.ConfigType, separator string) (confstack.ConfigContent, error) {
	switch typ {
	case confstack.TypeString:
		return confstack.NewStringContent(raw), nil
	case confstack.TypeInt:
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return confstack.ConfigContent{}, err
		}
		return confstack.NewIntContent(n), nil
	case confstack.TypeDouble:
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return confstack.ConfigContent{}, err
		}
		return confstack.NewDoubleContent(f), nil
	case confstack.TypeBool:
		b, err := ParseBool(raw)
		if err != nil {
			return confstack.ConfigContent{}, err
		}
		return confstack.NewBoolContent(b), nil
	case confstack.TypeBytes:
		decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(raw))
		if err != nil {
			return confstack.ConfigContent{}, err
		}
		return confstack.NewBytesContent(decoded), nil
	case confstack.TypeStringArray:
		return confstack.NewStringArrayContent(Split(raw, separator)), nil
	case confstack.TypeIntArray:
		parts := Split(raw, separator)
		out := make([]int64, len(parts))
		for i, p := range parts {
			n, err := strconv.ParseInt(p, 10, 64)
			if err != nil {
				return confstack.ConfigContent{}, err
			}
			out[i] = n
		}
		return confstack.NewIntArrayContent(out), nil
	case confstack.TypeDoubleArray:
		parts := Split(raw, separator)
		out := make([]float64, len(parts))
		for i, p := range parts {
			f, err := strconv.ParseFloat(p, 64)
			if err != nil {
				return confstack.ConfigContent{}, err
			}
			out[i] = f
		}
		return confstack.NewDoubleArrayContent(out), nil
	case confstack.TypeBoolArray:
		parts := Split(raw, separator)
		out := make([]bool, len(parts))
		for i, p := range parts {
			b, err := ParseBool(p)
			if err != nil {
				return confstack.ConfigContent{}, err
			}
			out[i] = b
		}
		return confstack.NewBoolArrayContent(out), nil
	case confstack.TypeByteChunkArray:
		parts := Split(raw, separator)
		out := make([][]byte, len(parts))
		for i, p := range parts {
			decoded, err := base64.StdEncoding.DecodeString(p)
			if err != nil {
				return confstack.ConfigContent{}, err
			}
			out[i] = decoded
		}
		return confstack.NewByteChunkArrayContent(out), nil
	default:
		return confstack.ConfigContent{}, &confstack.TypeMismatch{Requested: typ}
	}
}

// ParseBool accepts the case-insensitive grammar of spec.md §4.2:
// true/false/1/0/yes/no.
func ParseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	default:
		return false, strconv.ErrSyntax
	}
}

// Split divides raw on separator and trims whitespace from each element.
func Split(raw, separator string) []string {
	parts := strings.Split(raw, separator)
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = strings.TrimSpace(p)
	}
	return out
}
